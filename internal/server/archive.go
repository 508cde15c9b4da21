package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/MeKo-Tech/signalglobe/internal/archive"
)

// ArchiveHandler plays back frames stored by `render --format archive`.
type ArchiveHandler struct {
	reader       *archive.Reader
	logger       *slog.Logger
	cacheControl string
}

// ArchiveInfo is the JSON body of /archive/index.json.
type ArchiveInfo struct {
	Name        string `json:"name,omitempty"`
	Demo        string `json:"demo,omitempty"`
	Description string `json:"description,omitempty"`
	Width       int    `json:"width,omitempty"`
	Height      int    `json:"height,omitempty"`
	FPS         int    `json:"fps,omitempty"`
	Frames      []int  `json:"frames"`
}

// NewArchiveHandler opens the archive at path read-only.
func NewArchiveHandler(archivePath, cacheControl string, logger *slog.Logger) (*ArchiveHandler, error) {
	reader, err := archive.OpenReader(archivePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}
	if cacheControl == "" {
		cacheControl = "public, max-age=3600"
	}
	return &ArchiveHandler{reader: reader, logger: logger, cacheControl: cacheControl}, nil
}

func (h *ArchiveHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name, ok := parseArchivePath(r.URL.Path)
	if !ok {
		http.NotFound(w, r)
		return
	}
	if name == "index.json" {
		h.serveIndex(w)
		return
	}

	index, err := strconv.Atoi(strings.TrimSuffix(name, ".png"))
	if err != nil || index < 0 {
		http.Error(w, fmt.Sprintf("invalid frame %q", name), http.StatusBadRequest)
		return
	}

	data, elapsed, err := h.reader.ReadFrame(index)
	if errors.Is(err, archive.ErrFrameNotFound) {
		http.Error(w, "frame not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.log().Error("Failed to read archived frame", "frame", index, "error", err)
		http.Error(w, "failed to read frame", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", h.cacheControl)
	w.Header().Set("X-Frame-Elapsed-Ms", strconv.FormatInt(elapsed.Milliseconds(), 10))
	if _, err := w.Write(data); err != nil {
		h.log().Error("Failed to write response", "error", err)
	}
}

func (h *ArchiveHandler) serveIndex(w http.ResponseWriter) {
	info, err := h.Info()
	if err != nil {
		h.log().Error("Failed to read archive index", "error", err)
		http.Error(w, "failed to read archive", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	if err := json.NewEncoder(w).Encode(info); err != nil {
		h.log().Error("Failed to encode archive index", "error", err)
	}
}

// Info returns the archive metadata and the stored frame indices.
func (h *ArchiveHandler) Info() (ArchiveInfo, error) {
	meta, err := h.reader.Metadata()
	if err != nil {
		return ArchiveInfo{}, err
	}
	indices, err := h.reader.Indices()
	if err != nil {
		return ArchiveInfo{}, err
	}
	if indices == nil {
		indices = []int{}
	}
	return ArchiveInfo{
		Name:        meta.Name,
		Demo:        meta.Demo,
		Description: meta.Description,
		Width:       meta.Width,
		Height:      meta.Height,
		FPS:         meta.FPS,
		Frames:      indices,
	}, nil
}

// Close closes the archive reader.
func (h *ArchiveHandler) Close() error {
	return h.reader.Close()
}

func (h *ArchiveHandler) log() *slog.Logger {
	if h.logger != nil {
		return h.logger
	}
	return slog.Default()
}

// parseArchivePath accepts /archive/index.json and /archive/{n}.png.
func parseArchivePath(requestPath string) (string, bool) {
	if path.Dir(requestPath) != "/archive" {
		return "", false
	}
	base := path.Base(requestPath)
	if base != "index.json" && (!strings.HasSuffix(base, ".png") || base == ".png") {
		return "", false
	}
	return base, true
}
