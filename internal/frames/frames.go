// Package frames writes rendered animation frames to disk.
package frames

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"path/filepath"
	"strings"
	"time"

	"github.com/MeKo-Tech/signalglobe/internal/archive"
)

// Output formats.
const (
	FormatPNG     = "png"
	FormatGIF     = "gif"
	FormatArchive = "archive"
)

// Frame is one rendered frame of an animation.
type Frame struct {
	Image   image.Image
	Index   int
	Elapsed time.Duration
}

// Writer consumes frames. Implementations are safe for concurrent use.
type Writer interface {
	WriteFrame(Frame) error
	Close() error
}

// Options selects and configures a Writer.
type Options struct {
	Format      string
	Path        string // directory for png, file for gif and archive
	FPS         int
	Compression png.CompressionLevel
	Background  color.NRGBA // gif only, which has no partial alpha
	Metadata    archive.Metadata
}

// Open creates the writer for opts.Format.
func Open(opts Options) (Writer, error) {
	if opts.Path == "" {
		return nil, fmt.Errorf("output path is required")
	}
	switch strings.ToLower(opts.Format) {
	case FormatPNG, "":
		return NewPNGDir(opts.Path, opts.Compression)
	case FormatGIF:
		return NewGIFFile(opts.Path, opts.FPS, opts.Background), nil
	case FormatArchive:
		return NewArchive(opts.Path, opts.Metadata, opts.Compression)
	default:
		return nil, fmt.Errorf("unknown output format %q (want %s, %s or %s)", opts.Format, FormatPNG, FormatGIF, FormatArchive)
	}
}

// ParseCompression maps a level name to a PNG compression level.
func ParseCompression(name string) (png.CompressionLevel, error) {
	switch strings.ToLower(name) {
	case "", "default":
		return png.DefaultCompression, nil
	case "speed", "fast":
		return png.BestSpeed, nil
	case "best":
		return png.BestCompression, nil
	case "none":
		return png.NoCompression, nil
	default:
		return 0, fmt.Errorf("unknown png compression %q", name)
	}
}

// EncodePNG encodes img at the given compression level.
func EncodePNG(img image.Image, level png.CompressionLevel) ([]byte, error) {
	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: level}
	if err := enc.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// FramePath returns the file name of frame index inside dir.
func FramePath(dir string, index int) string {
	return filepath.Join(dir, fmt.Sprintf("frame_%05d.png", index))
}

// Archive stores PNG-encoded frames in an archive database.
type Archive struct {
	w     *archive.Writer
	level png.CompressionLevel
}

// NewArchive creates the archive file at path.
func NewArchive(path string, meta archive.Metadata, level png.CompressionLevel) (*Archive, error) {
	if err := ensureParent(path); err != nil {
		return nil, err
	}
	w, err := archive.New(path, meta)
	if err != nil {
		return nil, fmt.Errorf("failed to create frame archive: %w", err)
	}
	return &Archive{w: w, level: level}, nil
}

func (a *Archive) WriteFrame(f Frame) error {
	data, err := EncodePNG(f.Image, a.level)
	if err != nil {
		return err
	}
	if err := a.w.WriteFrame(f.Index, f.Elapsed, data); err != nil {
		return fmt.Errorf("failed to archive frame %d: %w", f.Index, err)
	}
	return nil
}

func (a *Archive) Close() error { return a.w.Close() }
