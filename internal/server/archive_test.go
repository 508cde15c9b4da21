package server

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/MeKo-Tech/signalglobe/internal/archive"
	"github.com/MeKo-Tech/signalglobe/internal/noise"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeArchive stores one solid 4x3 frame per color at indices 0, 1, ...
func writeArchive(t *testing.T, colors ...color.NRGBA) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "loop.sgf")
	w, err := archive.New(path, archive.Metadata{Name: "loop", Demo: "spike", Width: 4, Height: 3, FPS: 10})
	require.NoError(t, err)

	for i, c := range colors {
		img := image.NewNRGBA(image.Rect(0, 0, 4, 3))
		for p := 0; p < len(img.Pix); p += 4 {
			img.Pix[p], img.Pix[p+1], img.Pix[p+2], img.Pix[p+3] = c.R, c.G, c.B, c.A
		}
		var buf bytes.Buffer
		require.NoError(t, png.Encode(&buf, img))
		require.NoError(t, w.WriteFrame(i, time.Duration(i)*100*time.Millisecond, buf.Bytes()))
	}
	require.NoError(t, w.Close())
	return path
}

func newArchiveServer(t *testing.T, archivePath string) *httptest.Server {
	t.Helper()

	s, err := New(Config{Field: noise.DefaultField(), ArchivePath: archivePath}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func TestParseArchivePath(t *testing.T) {
	tests := []struct {
		path string
		want string
		ok   bool
	}{
		{"/archive/index.json", "index.json", true},
		{"/archive/12.png", "12.png", true},
		{"/archive/.png", "", false},
		{"/archive/12.gif", "", false},
		{"/archive/a/12.png", "", false},
		{"/frames/12.png", "", false},
	}
	for _, tt := range tests {
		got, ok := parseArchivePath(tt.path)
		if ok != tt.ok || got != tt.want {
			t.Errorf("parseArchivePath(%q) = %q, %v; want %q, %v", tt.path, got, ok, tt.want, tt.ok)
		}
	}
}

func TestArchivePlayback(t *testing.T) {
	red := color.NRGBA{R: 255, A: 255}
	green := color.NRGBA{G: 255, A: 255}
	ts := newArchiveServer(t, writeArchive(t, red, green))

	resp := get(t, ts.URL+"/archive/1.png")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	assert.Equal(t, "100", resp.Header.Get("X-Frame-Elapsed-Ms"))
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))

	img, err := png.Decode(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 4, 3), img.Bounds())
	assert.Equal(t, green, color.NRGBAModel.Convert(img.At(2, 1)))
}

func TestArchiveIndex(t *testing.T) {
	ts := newArchiveServer(t, writeArchive(t, color.NRGBA{A: 255}, color.NRGBA{A: 255}, color.NRGBA{A: 255}))

	resp := get(t, ts.URL+"/archive/index.json")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var info ArchiveInfo
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&info))
	assert.Equal(t, "loop", info.Name)
	assert.Equal(t, "spike", info.Demo)
	assert.Equal(t, 10, info.FPS)
	assert.Equal(t, []int{0, 1, 2}, info.Frames)
}

func TestArchiveErrors(t *testing.T) {
	ts := newArchiveServer(t, writeArchive(t, color.NRGBA{A: 255}))

	cases := map[string]int{
		"/archive/7.png":   http.StatusNotFound,
		"/archive/-1.png":  http.StatusBadRequest,
		"/archive/abc.png": http.StatusBadRequest,
		"/archive/0.jpg":   http.StatusNotFound,
	}
	for path, want := range cases {
		resp := get(t, ts.URL+path)
		_, _ = io.Copy(io.Discard, resp.Body)
		assert.Equal(t, want, resp.StatusCode, path)
	}
}

func TestArchiveRoutesNeedArchive(t *testing.T) {
	_, ts := newTestServer(t)
	resp := get(t, ts.URL+"/archive/index.json")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestNewRejectsMissingArchive(t *testing.T) {
	_, err := New(Config{
		Field:       noise.DefaultField(),
		ArchivePath: filepath.Join(t.TempDir(), "missing.sgf"),
	}, nil)
	assert.Error(t, err)
}
