package frames

import (
	"fmt"
	"image"
	"image/color"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"io"
	"os"
	"sort"
	"sync"

	"github.com/MeKo-Tech/signalglobe/internal/composite"
)

// GIFCollector buffers frames in memory and encodes them as one looping
// animated GIF. Frames may arrive in any order.
type GIFCollector struct {
	frames     map[int]image.Image
	fps        int
	background color.NRGBA
	mu         sync.Mutex
}

// NewGIFCollector creates an empty collector.
func NewGIFCollector(fps int, background color.NRGBA) *GIFCollector {
	if fps <= 0 {
		fps = 30
	}
	return &GIFCollector{
		frames:     make(map[int]image.Image),
		fps:        fps,
		background: background,
	}
}

func (c *GIFCollector) WriteFrame(f Frame) error {
	if f.Image == nil {
		return fmt.Errorf("frame %d has no image", f.Index)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames[f.Index] = f.Image
	return nil
}

// Len returns the number of buffered frames.
func (c *GIFCollector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.frames)
}

// Encode writes the buffered frames in index order.
func (c *GIFCollector) Encode(w io.Writer) error {
	c.mu.Lock()
	indices := make([]int, 0, len(c.frames))
	for i := range c.frames {
		indices = append(indices, i)
	}
	sort.Ints(indices)
	images := make([]image.Image, len(indices))
	for n, i := range indices {
		images[n] = c.frames[i]
	}
	c.mu.Unlock()

	if len(images) == 0 {
		return fmt.Errorf("no frames to encode")
	}

	// GIF delays are in hundredths of a second.
	delay := 100 / c.fps
	if delay < 2 {
		delay = 2
	}

	anim := &gif.GIF{LoopCount: 0}
	for _, img := range images {
		flat := composite.Flatten(img, c.background)
		pal := image.NewPaletted(flat.Bounds(), palette.Plan9)
		draw.FloydSteinberg.Draw(pal, flat.Bounds(), flat, flat.Bounds().Min)
		anim.Image = append(anim.Image, pal)
		anim.Delay = append(anim.Delay, delay)
	}

	if err := gif.EncodeAll(w, anim); err != nil {
		return fmt.Errorf("failed to encode gif: %w", err)
	}
	return nil
}

func (c *GIFCollector) Close() error { return nil }

// GIFFile is a GIFCollector that writes its file on Close.
type GIFFile struct {
	*GIFCollector
	path string
}

// NewGIFFile collects frames for the GIF at path.
func NewGIFFile(path string, fps int, background color.NRGBA) *GIFFile {
	return &GIFFile{GIFCollector: NewGIFCollector(fps, background), path: path}
}

func (g *GIFFile) Close() error {
	if err := ensureParent(g.path); err != nil {
		return err
	}
	f, err := os.Create(g.path)
	if err != nil {
		return fmt.Errorf("failed to create gif file: %w", err)
	}
	if err := g.Encode(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close gif file: %w", err)
	}
	return nil
}
