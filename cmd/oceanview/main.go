// Command oceanview renders an animated open-ocean surface: cascaded
// wave maps composited in the shader, with CPU height queries served by
// the asynchronous readback pipeline.
package main

import (
	"fmt"
	gomath "math"
	"os"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/wavefarer/oceansim/internal/config"
	"github.com/wavefarer/oceansim/internal/engine/camera"
	"github.com/wavefarer/oceansim/internal/engine/framebuffer"
	"github.com/wavefarer/oceansim/internal/engine/input"
	"github.com/wavefarer/oceansim/internal/engine/lighting"
	"github.com/wavefarer/oceansim/internal/engine/renderer"
	"github.com/wavefarer/oceansim/internal/engine/water"
	"github.com/wavefarer/oceansim/internal/engine/window"
	"github.com/wavefarer/oceansim/internal/logger"
	"github.com/wavefarer/oceansim/internal/ocean"
	"github.com/wavefarer/oceansim/pkg/math"
)

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg); err != nil {
		logger.Error("fatal", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	win, err := window.New(window.Config{
		Title:       "Ocean Viewer",
		Width:       cfg.Graphics.Width,
		Height:      cfg.Graphics.Height,
		Fullscreen:  cfg.Graphics.Fullscreen,
		VSync:       cfg.Graphics.VSync,
		MSAASamples: 4,
	})
	if err != nil {
		return fmt.Errorf("creating window: %w", err)
	}
	defer win.Close()

	dw, dh := win.DrawableSize()
	rend, err := renderer.New(renderer.Config{Width: dw, Height: dh})
	if err != nil {
		return fmt.Errorf("creating renderer: %w", err)
	}
	defer rend.Close()

	gen := newGerstnerGenerator(logger.Log)
	defer gen.Destroy()

	surface, err := ocean.NewSurface(gen, ocean.Options{
		Resolution:     cfg.Ocean.Resolution,
		UpdateRate:     cfg.Ocean.UpdateRate,
		ReadbackBudget: cfg.Ocean.ReadbackBudget,
		HeightSteps:    cfg.Ocean.HeightSteps,
	}, logger.Log)
	if err != nil {
		return fmt.Errorf("creating surface: %w", err)
	}
	defer surface.Close()

	for _, c := range cfg.Ocean.Cascades {
		surface.Cascades().Add(
			math.Vec2{X: c.TileLength[0], Y: c.TileLength[1]},
			c.DisplacementScale,
			c.NormalScale,
		)
	}
	if err := surface.Rebuild(); err != nil {
		return fmt.Errorf("building cascades: %w", err)
	}

	// Populate the maps once, then confirm the FBO readback path agrees
	// with what was uploaded.
	gen.Step(0, surface.Cascades().Items())
	verifyDeviceReadback(gen)

	waterRend, err := water.NewRenderer(logger.Log)
	if err != nil {
		return fmt.Errorf("creating water renderer: %w", err)
	}
	defer waterRend.Destroy()

	sun := lighting.DefaultSun()
	params := water.DefaultRenderParams()
	params.WaterColor = cfg.Ocean.WaterColor
	params.ShallowColor = cfg.Ocean.ShallowColor
	params.FoamColor = cfg.Ocean.FoamColor
	params.Extinction = cfg.Ocean.Extinction
	params.Roughness = cfg.Ocean.Roughness
	params.SunDirection = sun.Direction()
	params.SunColor = sun.ScaledColor()

	cam := camera.NewOrbitCamera()
	in := input.New()

	perfFreq := float64(sdl.GetPerformanceFrequency())
	last := sdl.GetPerformanceCounter()
	var statsTimer float32

	for !in.Update() {
		now := sdl.GetPerformanceCounter()
		dt := float32(float64(now-last) / perfFreq)
		last = now
		if dt > 0.1 {
			dt = 0.1 // clamp pauses so the simulation doesn't jump
		}

		for _, e := range in.Events() {
			switch e.Type {
			case input.EventWindowResize:
				w, h := win.DrawableSize()
				rend.Resize(w, h)
			case input.EventMouseMove:
				if in.IsButtonHeld(sdl.BUTTON_LEFT) {
					cam.HandleDrag(float32(e.RelX), float32(e.RelY))
				}
			case input.EventMouseWheel:
				cam.HandleZoom(e.WheelY)
			case input.EventKeyDown:
				if e.Key == sdl.SCANCODE_ESCAPE {
					return nil
				}
			}
		}

		var forward, right float32
		if in.IsKeyHeld(sdl.SCANCODE_W) {
			forward++
		}
		if in.IsKeyHeld(sdl.SCANCODE_S) {
			forward--
		}
		if in.IsKeyHeld(sdl.SCANCODE_D) {
			right++
		}
		if in.IsKeyHeld(sdl.SCANCODE_A) {
			right--
		}
		if forward != 0 || right != 0 {
			cam.HandleMovement(forward, right, 0)
		}

		surface.Update(dt)

		params.Time += dt
		params.Cascades = cascadeUniforms(surface.Cascades().Items())
		if err := waterRend.Commit(params); err != nil {
			return fmt.Errorf("committing render params: %w", err)
		}

		rend.Begin()
		proj := math.Perspective(45*gomath.Pi/180, rend.Aspect(), 0.1, 4000)
		viewProj := proj.Mul(cam.ViewMatrix())
		waterRend.Draw(viewProj, cam.Position(), gen.DisplacementTexture(), gen.GradientTexture())
		rend.End()
		win.SwapBuffers()

		statsTimer += dt
		if statsTimer >= 5 {
			statsTimer = 0
			logWaveStats(surface, cam.Center)
		}
	}

	return nil
}

func cascadeUniforms(cascades []ocean.Cascade) []water.CascadeUniform {
	out := make([]water.CascadeUniform, 0, len(cascades))
	for _, c := range cascades {
		out = append(out, water.CascadeUniform{
			TileLength:        c.TileLength,
			DisplacementScale: c.DisplacementScale,
			NormalScale:       c.NormalScale,
		})
	}
	return out
}

// verifyDeviceReadback round-trips layer 0 of the displacement array
// through the FBO read path and compares it with the uploaded data.
func verifyDeviceReadback(gen *gerstnerGenerator) {
	res := gen.Resolution()
	if res == 0 || gen.DisplacementTexture() == nil {
		return
	}

	src, err := framebuffer.NewArraySource(gen.DisplacementTexture().Handle(), res)
	if err != nil {
		logger.Warn("readback check setup failed", zap.Error(err))
		return
	}
	defer src.Destroy()

	got := make([]float32, res*res*4)
	if err := src.ReadLayer(0, got); err != nil {
		logger.Warn("device readback check failed", zap.Error(err))
		return
	}

	want := make([]float32, res*res*4)
	if err := gen.Displacement().ReadLayer(0, want); err != nil {
		logger.Warn("readback check mirror read failed", zap.Error(err))
		return
	}

	var maxErr float64
	for i := range got {
		if d := gomath.Abs(float64(got[i] - want[i])); d > maxErr {
			maxErr = d
		}
	}
	if maxErr > 1e-4 {
		logger.Warn("device readback mismatch", zap.Float64("max_error", maxErr))
		return
	}
	logger.Info("device readback verified", zap.Float64("max_error", maxErr))
}

// logWaveStats reports sea state for the largest cascade plus the wave
// height under the camera's center point.
func logWaveStats(surface *ocean.Surface, center math.Vec3) {
	items := surface.Cascades().Items()
	if len(items) == 0 {
		return
	}
	stats, ok := surface.Stats(items[0].ID)
	if !ok {
		return
	}
	logger.Info("sea state",
		zap.Float64("significant_height", stats.SignificantHeight),
		zap.Float64("rms", stats.RMS),
		zap.Float64("max", stats.Max),
		zap.Float32("height_at_center", surface.Height(center)),
	)
}
