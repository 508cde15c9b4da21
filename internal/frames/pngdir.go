package frames

import (
	"fmt"
	"image/png"
	"os"
	"path/filepath"
)

// PNGDir writes each frame to its own numbered PNG file.
type PNGDir struct {
	dir   string
	level png.CompressionLevel
}

// NewPNGDir creates dir if needed.
func NewPNGDir(dir string, level png.CompressionLevel) (*PNGDir, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output dir: %w", err)
	}
	return &PNGDir{dir: dir, level: level}, nil
}

// Path returns the file a frame is written to.
func (d *PNGDir) Path(index int) string { return FramePath(d.dir, index) }

// Exists reports whether the frame file is already on disk.
func (d *PNGDir) Exists(index int) bool {
	_, err := os.Stat(d.Path(index))
	return err == nil
}

func (d *PNGDir) WriteFrame(f Frame) error {
	data, err := EncodePNG(f.Image, d.level)
	if err != nil {
		return err
	}

	// Write then rename so readers never see a partial frame.
	path := d.Path(f.Index)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write frame file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp) // nolint:errcheck
		return fmt.Errorf("failed to move frame file into place: %w", err)
	}
	return nil
}

func (d *PNGDir) Close() error { return nil }

func ensureParent(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}
	return nil
}
