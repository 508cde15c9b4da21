package archive

import (
	"bytes"
	"compress/gzip"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"time"
)

// ErrFrameNotFound is returned when an archive has no frame at an index.
var ErrFrameNotFound = errors.New("frame not found")

// Reader reads frames from an archive database.
type Reader struct {
	db   *sql.DB
	path string
}

// OpenReader opens an archive database for reading.
func OpenReader(path string) (*Reader, error) {
	db, err := sql.Open("sqlite", path+"?mode=ro&immutable=1")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	var count int
	err = db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='frames'").Scan(&count)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to verify schema: %w", err)
	}
	if count == 0 {
		db.Close()
		return nil, fmt.Errorf("database does not contain frames table")
	}

	return &Reader{
		db:   db,
		path: path,
	}, nil
}

// ReadFrame returns the ungzipped PNG data and timestamp of a frame.
func (r *Reader) ReadFrame(index int) ([]byte, time.Duration, error) {
	var (
		compressed []byte
		elapsedMS  int64
	)
	err := r.db.QueryRow(
		"SELECT frame_data, elapsed_ms FROM frames WHERE frame_index=?", index,
	).Scan(&compressed, &elapsedMS)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, 0, fmt.Errorf("%w: %d", ErrFrameNotFound, index)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query frame: %w", err)
	}

	data, err := gzipDecompress(compressed)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to decompress frame: %w", err)
	}

	return data, time.Duration(elapsedMS) * time.Millisecond, nil
}

// Count returns the number of stored frames.
func (r *Reader) Count() (int, error) {
	var n int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM frames").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count frames: %w", err)
	}
	return n, nil
}

// Indices returns the stored frame indices in ascending order.
func (r *Reader) Indices() ([]int, error) {
	rows, err := r.db.Query("SELECT frame_index FROM frames ORDER BY frame_index")
	if err != nil {
		return nil, fmt.Errorf("failed to query frame indices: %w", err)
	}
	defer rows.Close()

	var out []int
	for rows.Next() {
		var i int
		if err := rows.Scan(&i); err != nil {
			return nil, fmt.Errorf("failed to scan frame index: %w", err)
		}
		out = append(out, i)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating frames: %w", err)
	}
	return out, nil
}

// Metadata reads metadata from the database.
func (r *Reader) Metadata() (Metadata, error) {
	rows, err := r.db.Query("SELECT name, value FROM metadata")
	if err != nil {
		return Metadata{}, fmt.Errorf("failed to query metadata: %w", err)
	}
	defer rows.Close()

	values := make(map[string]string)
	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return Metadata{}, fmt.Errorf("failed to scan metadata row: %w", err)
		}
		values[name] = value
	}

	if err := rows.Err(); err != nil {
		return Metadata{}, fmt.Errorf("error iterating metadata: %w", err)
	}

	return metadataFromMap(values), nil
}

// Close closes the database connection.
func (r *Reader) Close() error {
	if err := r.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}

func gzipDecompress(data []byte) ([]byte, error) {
	gr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer gr.Close()

	return io.ReadAll(gr)
}
