//go:build js && wasm
// +build js,wasm

package main

import (
	"encoding/json"
	"fmt"
	"syscall/js"

	"github.com/MeKo-Tech/signalglobe/internal/noise"
	"github.com/MeKo-Tech/signalglobe/internal/render"
)

// NoiseFrameRequest is a frame request from JS. Field settings left out
// of the request keep their defaults.
type NoiseFrameRequest struct {
	Width   int     `json:"width"`
	Height  int     `json:"height"`
	Elapsed float64 `json:"elapsed"` // seconds
	noise.Overrides
}

var field = noise.DefaultField()

// noiseFrame renders one frame into a Uint8ClampedArray passed as the
// second argument, ready for ImageData. The array must hold w*h*4 bytes.
func noiseFrame(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return map[string]interface{}{"error": "missing arguments"}
	}

	var req NoiseFrameRequest
	if err := json.Unmarshal([]byte(args[0].String()), &req); err != nil {
		return map[string]interface{}{"error": fmt.Sprintf("failed to parse request: %v", err)}
	}

	f, err := req.Apply(field)
	if err != nil {
		return map[string]interface{}{"error": err.Error()}
	}

	img, err := render.NoiseFrame(f, req.Width, req.Height, req.Elapsed)
	if err != nil {
		return map[string]interface{}{"error": err.Error()}
	}

	dst := args[1]
	if dst.Length() < len(img.Pix) {
		return map[string]interface{}{"error": fmt.Sprintf("buffer holds %d bytes, need %d", dst.Length(), len(img.Pix))}
	}
	n := js.CopyBytesToJS(dst, img.Pix)
	return map[string]interface{}{"written": n}
}

func initModule(this js.Value, args []js.Value) interface{} {
	fmt.Println("signalglobe WASM module initialized")
	return map[string]interface{}{"status": "ready"}
}

func main() {
	c := make(chan struct{})

	js.Global().Set("signalglobeNoiseFrame", js.FuncOf(noiseFrame))
	js.Global().Set("signalglobeInit", js.FuncOf(initModule))

	fmt.Println("signalglobe WASM module loaded")
	<-c
}
