//go:build cgo || windows

package viewer

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"log/slog"
	"time"

	"github.com/MeKo-Tech/signalglobe/internal/globe"
	"github.com/MeKo-Tech/signalglobe/internal/render"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// Run opens the window and blocks until it is closed.
func Run(cfg Config, logger *slog.Logger) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.TPS <= 0 {
		cfg.TPS = 60
	}
	if cfg.Title == "" {
		cfg.Title = "signalglobe: " + cfg.Demo
	}

	g := &game{cfg: cfg, logger: logger, start: time.Now()}
	if cfg.Demo != "noise" {
		g.globe = globe.New(cfg.Globe, cfg.Seed)
		g.globe.Start(g.start)
		g.renderer = render.NewGlobeRenderer()
	}

	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(cfg.TPS)

	err := ebiten.RunGame(g)
	var shaderErr *ShaderError
	switch {
	case err == nil, errors.Is(err, ebiten.Termination):
		return nil
	case errors.As(err, &shaderErr):
		return err
	case !g.started:
		return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	default:
		return err
	}
}

type game struct {
	cfg    Config
	logger *slog.Logger
	start  time.Time

	shader *ebiten.Shader

	globe    *globe.Globe
	renderer *render.GlobeRenderer
	frame    *ebiten.Image
	rgba     *image.RGBA
	lastX    int
	lastY    int

	width   int
	height  int
	started bool
}

func (g *game) Update() error {
	if !g.started {
		g.started = true
		if err := g.setup(); err != nil {
			return err
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	if g.globe != nil {
		g.handleDrag()
		g.globe.Update(time.Now())
	}
	return nil
}

// setup compiles the noise shader on the first tick, once the graphics
// driver is up.
func (g *game) setup() error {
	if g.cfg.Demo != "noise" {
		return nil
	}
	src := NoiseShader()
	shader, err := ebiten.NewShader(src)
	if err != nil {
		g.logger.Error("failed to compile noise shader", "error", err, "source", string(src))
		return &ShaderError{Name: "noise", Source: src, Err: err}
	}
	g.shader = shader
	g.logger.Debug("noise shader compiled", "bytes", len(src))
	return nil
}

func (g *game) handleDrag() {
	x, y := ebiten.CursorPosition()
	switch {
	case inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft):
		g.globe.BeginDrag()
	case inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft):
		g.globe.EndDrag()
	case ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft):
		g.globe.Drag(float64(x-g.lastX), float64(y-g.lastY))
	}
	g.lastX, g.lastY = x, y
}

func (g *game) Draw(screen *ebiten.Image) {
	w, h := screen.Bounds().Dx(), screen.Bounds().Dy()
	if w <= 0 || h <= 0 {
		return
	}

	if g.shader != nil {
		screen.DrawRectShader(w, h, g.shader, &ebiten.DrawRectShaderOptions{
			Uniforms: NoiseUniforms(g.cfg.Field, time.Since(g.start)),
		})
		return
	}
	if g.globe == nil {
		return
	}

	img, err := g.renderer.Frame(g.globe.State(), w, h)
	if err != nil {
		g.logger.Error("failed to render globe frame", "error", err)
		return
	}

	if g.frame == nil || g.width != w || g.height != h {
		if g.frame != nil {
			g.frame.Deallocate()
		}
		g.frame = ebiten.NewImage(w, h)
		g.rgba = image.NewRGBA(image.Rect(0, 0, w, h))
		g.width, g.height = w, h
	}

	// WritePixels wants premultiplied alpha.
	draw.Draw(g.rgba, g.rgba.Bounds(), img, image.Point{}, draw.Src)
	g.frame.WritePixels(g.rgba.Pix)

	screen.Fill(color.Black)
	screen.DrawImage(g.frame, nil)
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return outsideWidth, outsideHeight
}
