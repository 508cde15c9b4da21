package archive

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestReader_RoundTrip(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.sgf")

	w, err := New(dbPath, Metadata{Name: "Noise loop", Demo: "noise"})
	if err != nil {
		t.Fatalf("Failed to create writer: %v", err)
	}

	frames := map[int]string{
		0:  "frame zero",
		1:  "frame one",
		29: "frame twenty-nine",
	}
	for i, data := range frames {
		if err := w.WriteFrame(i, time.Duration(i)*100*time.Millisecond, []byte(data)); err != nil {
			t.Fatalf("Failed to write frame %d: %v", i, err)
		}
	}

	if err := w.Close(); err != nil {
		t.Fatalf("Failed to close writer: %v", err)
	}

	r, err := OpenReader(dbPath)
	if err != nil {
		t.Fatalf("Failed to open reader: %v", err)
	}
	defer r.Close()

	for i, want := range frames {
		data, elapsed, err := r.ReadFrame(i)
		if err != nil {
			t.Fatalf("Failed to read frame %d: %v", i, err)
		}
		if string(data) != want {
			t.Errorf("Frame %d data mismatch: got %q, want %q", i, string(data), want)
		}
		if elapsed != time.Duration(i)*100*time.Millisecond {
			t.Errorf("Frame %d elapsed mismatch: got %s", i, elapsed)
		}
	}

	indices, err := r.Indices()
	if err != nil {
		t.Fatalf("Failed to list indices: %v", err)
	}
	if !reflect.DeepEqual(indices, []int{0, 1, 29}) {
		t.Errorf("Unexpected indices: %v", indices)
	}
}

func TestReader_Metadata(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.sgf")

	metadata := Metadata{
		Name:        "Point loop",
		Demo:        "point",
		Description: "Test description",
		Version:     "1.0",
		Width:       320,
		Height:      240,
		FPS:         24,
		Frames:      48,
		Seed:        -3,
	}

	w, err := New(dbPath, metadata)
	if err != nil {
		t.Fatalf("Failed to create writer: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Failed to close writer: %v", err)
	}

	r, err := OpenReader(dbPath)
	if err != nil {
		t.Fatalf("Failed to open reader: %v", err)
	}
	defer r.Close()

	got, err := r.Metadata()
	if err != nil {
		t.Fatalf("Failed to read metadata: %v", err)
	}

	metadata.Format = "png"
	if got != metadata {
		t.Errorf("Metadata mismatch:\n got  %+v\n want %+v", got, metadata)
	}
}

func TestReader_FrameNotFound(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.sgf")

	w, err := New(dbPath, Metadata{Name: "Test"})
	if err != nil {
		t.Fatalf("Failed to create writer: %v", err)
	}
	w.Close()

	r, err := OpenReader(dbPath)
	if err != nil {
		t.Fatalf("Failed to open reader: %v", err)
	}
	defer r.Close()

	_, _, err = r.ReadFrame(5)
	if !errors.Is(err, ErrFrameNotFound) {
		t.Errorf("Expected ErrFrameNotFound, got %v", err)
	}
}

func TestReader_InvalidDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "invalid.sgf")

	if err := os.WriteFile(dbPath, []byte("not a database"), 0o644); err != nil {
		t.Fatalf("Failed to create invalid file: %v", err)
	}

	if _, err := OpenReader(dbPath); err == nil {
		t.Error("Expected error for invalid database, got nil")
	}
}
