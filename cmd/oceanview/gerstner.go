package main

import (
	"fmt"
	gomath "math"
	"math/rand"
	"sync"

	"go.uber.org/zap"

	"github.com/wavefarer/oceansim/internal/engine/texture"
	"github.com/wavefarer/oceansim/internal/ocean"
)

const (
	wavesPerCascade = 8
	gravity         = 9.81
	chopiness       = 0.6
)

// gerstnerWave is one sinusoidal component with an integer wave count per
// tile axis, so the resulting maps tile seamlessly.
type gerstnerWave struct {
	kx, kz float32
	k      float32
	amp    float32
	omega  float32
	phase  float32
}

// gerstnerGenerator is a procedural stand-in for a spectral wave
// generator. It synthesizes Gerstner displacement and gradient maps on
// the CPU each simulation step and uploads them into the texture arrays
// the renderer samples. Readback is served from the CPU mirrors, so the
// background copy never touches GL.
type gerstnerGenerator struct {
	log        *zap.Logger
	resolution int
	time       float32

	displacementTex *texture.Array
	gradientTex     *texture.Array

	mu    sync.RWMutex
	disp  [][]float32
	grad  [][]float32
	waves []cascadeWaves
}

type cascadeWaves struct {
	cascade ocean.Cascade
	set     []gerstnerWave
}

func newGerstnerGenerator(log *zap.Logger) *gerstnerGenerator {
	if log == nil {
		log = zap.NewNop()
	}
	return &gerstnerGenerator{log: log}
}

// Configure allocates the texture arrays and CPU mirrors. Main-thread
// only: it issues GL calls.
func (g *gerstnerGenerator) Configure(cascadeCount, resolution int) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.displacementTex != nil {
		g.displacementTex.Destroy()
		g.gradientTex.Destroy()
		g.displacementTex = nil
		g.gradientTex = nil
	}

	var err error
	g.displacementTex, err = texture.NewArray(resolution, cascadeCount)
	if err != nil {
		return fmt.Errorf("displacement array: %w", err)
	}
	g.gradientTex, err = texture.NewArray(resolution, cascadeCount)
	if err != nil {
		g.displacementTex.Destroy()
		g.displacementTex = nil
		return fmt.Errorf("gradient array: %w", err)
	}

	g.resolution = resolution
	g.disp = make([][]float32, cascadeCount)
	g.grad = make([][]float32, cascadeCount)
	for i := range g.disp {
		g.disp[i] = make([]float32, resolution*resolution*4)
		g.grad[i] = make([]float32, resolution*resolution*4)
	}
	g.waves = make([]cascadeWaves, cascadeCount)

	g.log.Debug("generator configured",
		zap.Int("cascades", cascadeCount),
		zap.Int("resolution", resolution),
	)
	return nil
}

// Step advances wave time and regenerates every cascade's maps.
func (g *gerstnerGenerator) Step(dt float32, cascades []ocean.Cascade) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.resolution == 0 || len(cascades) > len(g.disp) {
		return
	}
	g.time += dt

	for layer, c := range cascades {
		if g.waves[layer].cascade != c {
			g.waves[layer] = cascadeWaves{cascade: c, set: buildWaves(c)}
		}
		g.synthesize(layer, c)
	}

	for layer := range cascades {
		if err := g.displacementTex.Upload(layer, g.disp[layer]); err != nil {
			g.log.Warn("displacement upload failed", zap.Int("layer", layer), zap.Error(err))
		}
		if err := g.gradientTex.Upload(layer, g.grad[layer]); err != nil {
			g.log.Warn("gradient upload failed", zap.Int("layer", layer), zap.Error(err))
		}
	}
}

// buildWaves derives a deterministic component set from the cascade's
// spectrum seed. Wave vectors use whole cycles per tile to keep tiling.
func buildWaves(c ocean.Cascade) []gerstnerWave {
	seed := int64(c.SpectrumSeed[0])<<32 | int64(uint32(c.SpectrumSeed[1]))
	rng := rand.New(rand.NewSource(seed))

	set := make([]gerstnerWave, 0, wavesPerCascade)
	var ampSum float32
	for len(set) < wavesPerCascade {
		nx := rng.Intn(13) - 6
		nz := rng.Intn(13) - 6
		if nx == 0 && nz == 0 {
			continue
		}
		kx := 2 * gomath.Pi * float64(nx) / float64(c.TileLength.X)
		kz := 2 * gomath.Pi * float64(nz) / float64(c.TileLength.Y)
		k := gomath.Sqrt(kx*kx + kz*kz)

		amp := float32((0.3 + 0.7*rng.Float64()) / (k * k * 40))
		set = append(set, gerstnerWave{
			kx:    float32(kx),
			kz:    float32(kz),
			k:     float32(k),
			amp:   amp,
			omega: float32(gomath.Sqrt(gravity * k)),
			phase: rng.Float32()*2*gomath.Pi + c.TimePhase,
		})
		ampSum += amp
	}

	// Normalize so the summed crest height is ~1 before the cascade's
	// displacement scale applies.
	if ampSum > 0 {
		for i := range set {
			set[i].amp /= ampSum
		}
	}
	return set
}

func (g *gerstnerGenerator) synthesize(layer int, c ocean.Cascade) {
	res := g.resolution
	disp := g.disp[layer]
	grad := g.grad[layer]
	waves := g.waves[layer].set

	for z := 0; z < res; z++ {
		wz := float32(z) / float32(res) * c.TileLength.Y
		for x := 0; x < res; x++ {
			wx := float32(x) / float32(res) * c.TileLength.X

			var dx, h, dz, gx, gz, pinch float32
			for _, wv := range waves {
				ph := float64(wv.kx*wx + wv.kz*wz - wv.omega*g.time + wv.phase)
				s, cph := gomath.Sincos(ph)
				sin, cos := float32(s), float32(cph)

				h += wv.amp * cos
				dx -= chopiness * wv.amp * (wv.kx / wv.k) * sin
				dz -= chopiness * wv.amp * (wv.kz / wv.k) * sin
				gx -= wv.amp * wv.kx * sin
				gz -= wv.amp * wv.kz * sin
				// Horizontal convergence; positive where crests pinch.
				pinch += chopiness * wv.amp * wv.k * cos
			}

			i := (z*res + x) * 4
			disp[i+0] = dx
			disp[i+1] = h
			disp[i+2] = dz
			disp[i+3] = 0

			grad[i+0] = gx
			if pinch > 0 {
				grad[i+1] = pinch
			} else {
				grad[i+1] = 0
			}
			grad[i+2] = gz
			grad[i+3] = 0
		}
	}
}

// Displacement returns the CPU-backed layer source for readback.
func (g *gerstnerGenerator) Displacement() ocean.LayerSource {
	return cpuLayers{gen: g, gradients: false}
}

// Normals returns the gradient-map layer source.
func (g *gerstnerGenerator) Normals() ocean.LayerSource {
	return cpuLayers{gen: g, gradients: true}
}

// DisplacementTexture returns the GPU-side displacement array.
func (g *gerstnerGenerator) DisplacementTexture() *texture.Array {
	return g.displacementTex
}

// GradientTexture returns the GPU-side gradient array.
func (g *gerstnerGenerator) GradientTexture() *texture.Array {
	return g.gradientTex
}

// Resolution returns the configured map side length.
func (g *gerstnerGenerator) Resolution() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.resolution
}

// Destroy releases the texture arrays. Call only after the surface has
// been closed.
func (g *gerstnerGenerator) Destroy() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.displacementTex != nil {
		g.displacementTex.Destroy()
		g.gradientTex.Destroy()
		g.displacementTex = nil
		g.gradientTex = nil
	}
}

// cpuLayers serves layer reads from the generator's CPU mirrors. Safe to
// call from the readback worker goroutine.
type cpuLayers struct {
	gen       *gerstnerGenerator
	gradients bool
}

func (c cpuLayers) Resolution() int {
	return c.gen.Resolution()
}

func (c cpuLayers) ReadLayer(layer int, dst []float32) error {
	c.gen.mu.RLock()
	defer c.gen.mu.RUnlock()

	src := c.gen.disp
	if c.gradients {
		src = c.gen.grad
	}
	if layer < 0 || layer >= len(src) {
		return fmt.Errorf("layer %d out of range [0, %d)", layer, len(src))
	}
	if len(dst) != len(src[layer]) {
		return fmt.Errorf("destination has %d floats, want %d", len(dst), len(src[layer]))
	}
	copy(dst, src[layer])
	return nil
}
