// Package archive stores rendered animation frames in a single SQLite file.
package archive

import (
	"fmt"
	"strconv"
)

// Metadata describes an archived animation.
type Metadata struct {
	Name        string // Human-readable identifier
	Demo        string // noise, spike or point
	Format      string // Frame encoding, always png for now
	Description string
	Version     string
	Width       int
	Height      int
	FPS         int
	Frames      int // Frames the render was asked for
	Seed        int64
}

// ToMap converts Metadata to a map for database insertion.
func (m Metadata) ToMap() map[string]string {
	result := make(map[string]string)

	if m.Name != "" {
		result["name"] = m.Name
	}
	if m.Demo != "" {
		result["demo"] = m.Demo
	}
	if m.Format != "" {
		result["format"] = m.Format
	}
	if m.Description != "" {
		result["description"] = m.Description
	}
	if m.Version != "" {
		result["version"] = m.Version
	}
	if m.Width > 0 {
		result["width"] = strconv.Itoa(m.Width)
	}
	if m.Height > 0 {
		result["height"] = strconv.Itoa(m.Height)
	}
	if m.FPS > 0 {
		result["fps"] = strconv.Itoa(m.FPS)
	}
	if m.Frames > 0 {
		result["frames"] = strconv.Itoa(m.Frames)
	}
	if m.Seed != 0 {
		result["seed"] = fmt.Sprintf("%d", m.Seed)
	}

	return result
}

// metadataFromMap is the inverse of ToMap. Unparseable numbers are left zero.
func metadataFromMap(values map[string]string) Metadata {
	atoi := func(key string) int {
		i, _ := strconv.Atoi(values[key])
		return i
	}
	seed, _ := strconv.ParseInt(values["seed"], 10, 64)

	return Metadata{
		Name:        values["name"],
		Demo:        values["demo"],
		Format:      values["format"],
		Description: values["description"],
		Version:     values["version"],
		Width:       atoi("width"),
		Height:      atoi("height"),
		FPS:         atoi("fps"),
		Frames:      atoi("frames"),
		Seed:        seed,
	}
}
