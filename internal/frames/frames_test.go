package frames

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/MeKo-Tech/signalglobe/internal/archive"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

func TestParseCompression(t *testing.T) {
	cases := map[string]png.CompressionLevel{
		"":        png.DefaultCompression,
		"default": png.DefaultCompression,
		"speed":   png.BestSpeed,
		"BEST":    png.BestCompression,
		"none":    png.NoCompression,
	}
	for name, want := range cases {
		got, err := ParseCompression(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}

	_, err := ParseCompression("extreme")
	assert.Error(t, err)
}

func TestFramePath(t *testing.T) {
	assert.Equal(t, filepath.Join("out", "frame_00042.png"), FramePath("out", 42))
}

func TestPNGDirWritesFrames(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "seq")
	w, err := Open(Options{Format: FormatPNG, Path: dir})
	require.NoError(t, err)

	d := w.(*PNGDir)
	assert.False(t, d.Exists(3))

	require.NoError(t, w.WriteFrame(Frame{Index: 3, Image: solid(4, 2, color.NRGBA{R: 9, A: 255})}))
	require.NoError(t, w.Close())
	assert.True(t, d.Exists(3))

	f, err := os.Open(FramePath(dir, 3))
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 4, 2), img.Bounds())

	_, err = os.Stat(FramePath(dir, 3) + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file should be renamed away")
}

func TestGIFCollectorOrdersFrames(t *testing.T) {
	c := NewGIFCollector(25, color.NRGBA{})
	red := color.NRGBA{R: 255, A: 255}
	blue := color.NRGBA{B: 255, A: 255}

	require.NoError(t, c.WriteFrame(Frame{Index: 1, Image: solid(8, 8, blue)}))
	require.NoError(t, c.WriteFrame(Frame{Index: 0, Image: solid(8, 8, red)}))
	assert.Equal(t, 2, c.Len())

	var buf bytes.Buffer
	require.NoError(t, c.Encode(&buf))

	anim, err := gif.DecodeAll(&buf)
	require.NoError(t, err)
	require.Len(t, anim.Image, 2)
	assert.Equal(t, []int{4, 4}, anim.Delay)

	r0, _, b0, _ := anim.Image[0].At(4, 4).RGBA()
	r1, _, b1, _ := anim.Image[1].At(4, 4).RGBA()
	assert.Greater(t, r0, b0, "first frame is the red one")
	assert.Greater(t, b1, r1, "second frame is the blue one")
}

func TestGIFCollectorRejectsEmpty(t *testing.T) {
	c := NewGIFCollector(30, color.NRGBA{})
	assert.Error(t, c.Encode(&bytes.Buffer{}))
	assert.Error(t, c.WriteFrame(Frame{Index: 0}))
}

func TestGIFFileWrittenOnClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "anim", "loop.gif")
	w, err := Open(Options{Format: FormatGIF, Path: path, FPS: 10})
	require.NoError(t, err)

	require.NoError(t, w.WriteFrame(Frame{Index: 0, Image: solid(4, 4, color.NRGBA{G: 255, A: 128})}))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	require.NoError(t, w.Close())
	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestArchiveSinkRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "loop.sgf")
	w, err := Open(Options{
		Format:   FormatArchive,
		Path:     path,
		Metadata: archive.Metadata{Name: "loop", Demo: "noise", Width: 4, Height: 4},
	})
	require.NoError(t, err)

	require.NoError(t, w.WriteFrame(Frame{Index: 2, Elapsed: 80 * time.Millisecond, Image: solid(4, 4, color.NRGBA{R: 1, A: 255})}))
	require.NoError(t, w.Close())

	r, err := archive.OpenReader(path)
	require.NoError(t, err)
	defer r.Close()

	data, elapsed, err := r.ReadFrame(2)
	require.NoError(t, err)
	assert.Equal(t, 80*time.Millisecond, elapsed)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 4, img.Bounds().Dx())
}

func TestOpenRejectsUnknownFormat(t *testing.T) {
	_, err := Open(Options{Format: "webm", Path: t.TempDir()})
	assert.Error(t, err)

	_, err = Open(Options{Format: FormatPNG})
	assert.Error(t, err)
}
