package ocean

import (
	"github.com/wavefarer/oceansim/pkg/math"
)

// DefaultHeightSteps is the default inversion iteration count: an
// empirical accuracy/cost compromise, not a convergence guarantee.
const DefaultHeightSteps = 3

// BufferSource provides the latest published displacement buffer per
// cascade. Implemented by ReadbackScheduler.
type BufferSource interface {
	Buffer(id CascadeID) *DisplacementBuffer
}

// HeightSampler answers point wave-height queries from the CPU-visible
// displacement buffers. It holds no mutable state beyond query scratch;
// queries are main-thread only.
type HeightSampler struct {
	buffers BufferSource
}

// NewHeightSampler creates a sampler reading from the given buffer source.
func NewHeightSampler(buffers BufferSource) *HeightSampler {
	return &HeightSampler{buffers: buffers}
}

// Height returns the wave height at a world position.
//
// A displacement texel means "the vertex rendered at world (x, z) started
// at (x-dx, z-dz) and is raised by dy", so sampling directly at the query
// position reads the wrong source texel. Each iteration re-samples at the
// corrected candidate position (fixed-point iteration on the inverse
// horizontal displacement); more steps improve accuracy for steep or
// high-frequency cascades but convergence is not guaranteed.
func (s *HeightSampler) Height(pos math.Vec3, cascades []Cascade, steps int) float32 {
	if steps < 1 {
		steps = DefaultHeightSteps
	}

	query := pos.XZ()
	var height float32

	for _, c := range cascades {
		if !c.Active() {
			continue
		}
		// Degenerate tiling would divide by zero; such a cascade
		// contributes no height instead of propagating NaN.
		if c.TileLength.X <= 0 || c.TileLength.Y <= 0 {
			continue
		}
		buf := s.buffers.Buffer(c.ID)
		if buf == nil {
			// Not published yet (first frames after activation).
			continue
		}

		candidate := query
		var d math.Vec3
		for i := 0; i < steps; i++ {
			uv := candidate.Div(c.TileLength).Fract()
			d = buf.Sample(uv.X, uv.Y)
			candidate = query.Sub(math.Vec2{X: d.X, Y: d.Z})
		}
		height += d.Y * c.DisplacementScale
	}

	return height
}
