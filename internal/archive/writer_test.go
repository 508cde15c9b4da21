package archive

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func TestWriter_New(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.sgf")

	metadata := Metadata{
		Name:        "Spike loop",
		Demo:        "spike",
		Description: "Test description",
		Version:     "1.0",
		Width:       640,
		Height:      480,
		FPS:         30,
		Frames:      90,
		Seed:        7,
	}

	w, err := New(dbPath, metadata)
	if err != nil {
		t.Fatalf("Failed to create writer: %v", err)
	}
	defer w.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Fatal("Database file was not created")
	}

	var count int
	err = w.db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='frames'").Scan(&count)
	if err != nil {
		t.Fatalf("Failed to query schema: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected frames table to exist, got count=%d", count)
	}

	var format string
	if err := w.db.QueryRow("SELECT value FROM metadata WHERE name='format'").Scan(&format); err != nil {
		t.Fatalf("Failed to query format: %v", err)
	}
	if format != "png" {
		t.Errorf("Expected default format png, got %q", format)
	}
}

func TestWriter_WriteFrame(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.sgf")

	w, err := New(dbPath, Metadata{Name: "Test"})
	if err != nil {
		t.Fatalf("Failed to create writer: %v", err)
	}
	defer w.Close()

	if err := w.WriteFrame(12, 400*time.Millisecond, []byte("fake png data")); err != nil {
		t.Fatalf("Failed to write frame: %v", err)
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Failed to flush: %v", err)
	}

	var elapsed int64
	var data []byte
	err = w.db.QueryRow("SELECT elapsed_ms, frame_data FROM frames WHERE frame_index=?", 12).Scan(&elapsed, &data)
	if err != nil {
		t.Fatalf("Failed to read frame: %v", err)
	}
	if elapsed != 400 {
		t.Errorf("Expected elapsed 400ms, got %d", elapsed)
	}
	if len(data) == 0 {
		t.Error("Expected frame data to be stored")
	}

	if err := w.WriteFrame(-1, 0, nil); err == nil {
		t.Error("Expected error for negative frame index")
	}
}

func TestWriter_BatchFlush(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.sgf")

	w, err := New(dbPath, Metadata{Name: "Test"})
	if err != nil {
		t.Fatalf("Failed to create writer: %v", err)
	}

	for i := 0; i < 75; i++ {
		if err := w.WriteFrame(i, time.Duration(i)*time.Second/30, []byte("frame")); err != nil {
			t.Fatalf("Failed to write frame %d: %v", i, err)
		}
	}

	// Close should flush remaining frames
	if err := w.Close(); err != nil {
		t.Fatalf("Failed to close: %v", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM frames").Scan(&count); err != nil {
		t.Fatalf("Failed to query frames: %v", err)
	}
	if count != 75 {
		t.Errorf("Expected 75 frames, got %d", count)
	}
}

func TestWriter_ConcurrentWrites(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.sgf")

	w, err := New(dbPath, Metadata{Name: "Test"})
	if err != nil {
		t.Fatalf("Failed to create writer: %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 100)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if err := w.WriteFrame(i, 0, []byte(fmt.Sprintf("frame %d", i))); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("Concurrent write failed: %v", err)
	}

	if err := w.Close(); err != nil {
		t.Fatalf("Failed to close: %v", err)
	}

	r, err := OpenReader(dbPath)
	if err != nil {
		t.Fatalf("Failed to open reader: %v", err)
	}
	defer r.Close()

	n, err := r.Count()
	if err != nil {
		t.Fatalf("Failed to count: %v", err)
	}
	if n != 100 {
		t.Errorf("Expected 100 frames, got %d", n)
	}
}

func TestWriter_ReplaceExisting(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.sgf")

	w, err := New(dbPath, Metadata{Name: "Test"})
	if err != nil {
		t.Fatalf("Failed to create writer: %v", err)
	}
	defer w.Close()

	if err := w.WriteFrame(3, 0, []byte("first version")); err != nil {
		t.Fatalf("Failed to write first frame: %v", err)
	}
	w.Flush()

	if err := w.WriteFrame(3, 0, []byte("second version")); err != nil {
		t.Fatalf("Failed to write second frame: %v", err)
	}
	w.Flush()

	var count int
	if err := w.db.QueryRow("SELECT COUNT(*) FROM frames").Scan(&count); err != nil {
		t.Fatalf("Failed to query frames: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 frame (replaced), got %d", count)
	}
}
