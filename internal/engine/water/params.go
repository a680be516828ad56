package water

import (
	"fmt"

	"github.com/wavefarer/oceansim/pkg/math"
)

// MaxCascades is the uniform array capacity of the surface shader.
const MaxCascades = 8

// Default displacement fade distances in world units.
const (
	DefaultFadeStart  = 512.0
	DefaultFadeCutoff = 1024.0
)

// CascadeUniform is the per-cascade tuple handed to the shader.
type CascadeUniform struct {
	TileLength        math.Vec2
	DisplacementScale float32
	NormalScale       float32
}

// RenderParams holds every per-draw shading parameter. The renderer takes
// a validated copy at Commit; later edits only reach the screen through
// the next Commit.
type RenderParams struct {
	Cascades []CascadeUniform

	WaterColor   [3]float32 // deep water, linear RGB
	ShallowColor [3]float32 // linear RGB
	FoamColor    [3]float32 // linear RGB
	// Extinction holds per-channel Beer-Lambert distances in world units.
	Extinction [3]float32

	Roughness float32
	// SeaDepth is the assumed water column depth below the rest surface,
	// driving the shallow-to-deep tint.
	SeaDepth float32

	SunDirection math.Vec3
	SunColor     [3]float32

	FadeStart  float32
	FadeCutoff float32

	Time float32
}

// DefaultRenderParams returns open-ocean defaults; cascades are left for
// the caller to fill in.
func DefaultRenderParams() RenderParams {
	return RenderParams{
		WaterColor:   [3]float32{0.012, 0.064, 0.094},
		ShallowColor: [3]float32{0.10, 0.35, 0.36},
		FoamColor:    [3]float32{0.73, 0.85, 0.86},
		Extinction:   [3]float32{4.5, 15.0, 32.0},
		Roughness:    0.1,
		SeaDepth:     22.0,
		SunDirection: math.Vec3{X: -0.4, Y: 0.55, Z: -0.73}.Normalize(),
		SunColor:     [3]float32{1.0, 0.93, 0.82},
		FadeStart:    DefaultFadeStart,
		FadeCutoff:   DefaultFadeCutoff,
	}
}

// Validate checks the parameter set before a Commit.
func (p *RenderParams) Validate() error {
	if len(p.Cascades) > MaxCascades {
		return fmt.Errorf("%d cascades exceed the shader capacity of %d",
			len(p.Cascades), MaxCascades)
	}
	for i, c := range p.Cascades {
		if c.TileLength.X <= 0 || c.TileLength.Y <= 0 {
			return fmt.Errorf("cascade %d: tile length must be positive, got %v", i, c.TileLength)
		}
	}
	if p.FadeCutoff < p.FadeStart {
		return fmt.Errorf("fade cutoff %v below fade start %v", p.FadeCutoff, p.FadeStart)
	}
	if p.Roughness < 0 || p.Roughness > 1 {
		return fmt.Errorf("roughness %v outside [0, 1]", p.Roughness)
	}
	return nil
}
