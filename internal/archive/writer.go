package archive

import (
	"bytes"
	"compress/gzip"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

const (
	// DefaultBatchSize is the number of frames to buffer before flushing to the database.
	DefaultBatchSize = 32
)

// FrameEntry is a single encoded frame waiting to be written.
type FrameEntry struct {
	Data    []byte // PNG data (gzip-compressed before storage)
	Index   int
	Elapsed time.Duration
}

// Writer writes frames to an archive database. It is safe for concurrent use
// by render workers.
type Writer struct {
	db        *sql.DB
	path      string
	batch     []FrameEntry
	metadata  Metadata
	batchSize int
	mu        sync.Mutex
}

// New creates a new archive writer.
// The database is created if it doesn't exist, and the schema is initialized.
func New(path string, metadata Metadata) (*Writer, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA temp_store = MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma %q: %w", pragma, err)
		}
	}

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	if metadata.Format == "" {
		metadata.Format = "png"
	}
	if err := insertMetadata(db, metadata); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to insert metadata: %w", err)
	}

	return &Writer{
		db:        db,
		path:      path,
		batch:     make([]FrameEntry, 0, DefaultBatchSize),
		batchSize: DefaultBatchSize,
		metadata:  metadata,
	}, nil
}

func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS metadata (
			name TEXT NOT NULL,
			value TEXT
		);

		CREATE TABLE IF NOT EXISTS frames (
			frame_index INTEGER NOT NULL,
			elapsed_ms INTEGER NOT NULL,
			frame_data BLOB NOT NULL
		);

		CREATE UNIQUE INDEX IF NOT EXISTS frame_index ON frames (frame_index);
	`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	return nil
}

func insertMetadata(db *sql.DB, meta Metadata) error {
	if _, err := db.Exec("DELETE FROM metadata"); err != nil {
		return fmt.Errorf("failed to clear metadata: %w", err)
	}

	stmt, err := db.Prepare("INSERT INTO metadata (name, value) VALUES (?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare metadata insert: %w", err)
	}
	defer stmt.Close()

	for key, value := range meta.ToMap() {
		if _, err := stmt.Exec(key, value); err != nil {
			return fmt.Errorf("failed to insert metadata %q: %w", key, err)
		}
	}

	return nil
}

// Path returns the database file path.
func (w *Writer) Path() string { return w.path }

// Metadata returns the metadata the archive was created with.
func (w *Writer) Metadata() Metadata { return w.metadata }

// WriteFrame adds an encoded frame to the batch. When the batch is full, it is
// flushed. Writing an index twice keeps the last frame.
func (w *Writer) WriteFrame(index int, elapsed time.Duration, pngData []byte) error {
	if index < 0 {
		return fmt.Errorf("frame index must not be negative, got %d", index)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.batch = append(w.batch, FrameEntry{
		Index:   index,
		Elapsed: elapsed,
		Data:    pngData,
	})

	if len(w.batch) >= w.batchSize {
		return w.flushLocked()
	}

	return nil
}

// Flush writes any buffered frames to the database.
func (w *Writer) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.flushLocked()
}

// flushLocked writes buffered frames. Must be called with lock held.
func (w *Writer) flushLocked() error {
	if len(w.batch) == 0 {
		return nil
	}

	tx, err := w.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // nolint:errcheck

	stmt, err := tx.Prepare("INSERT OR REPLACE INTO frames (frame_index, elapsed_ms, frame_data) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, frame := range w.batch {
		compressed, err := gzipCompress(frame.Data)
		if err != nil {
			return fmt.Errorf("failed to compress frame %d: %w", frame.Index, err)
		}

		if _, err := stmt.Exec(frame.Index, frame.Elapsed.Milliseconds(), compressed); err != nil {
			return fmt.Errorf("failed to insert frame %d: %w", frame.Index, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	w.batch = w.batch[:0]
	return nil
}

// Close flushes any remaining frames and closes the database.
func (w *Writer) Close() error {
	if err := w.Flush(); err != nil {
		w.db.Close()
		return err
	}

	if err := w.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	return nil
}

func gzipCompress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)

	if _, err := gw.Write(data); err != nil {
		gw.Close()
		return nil, err
	}

	if err := gw.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
