package ocean

import (
	gomath "math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Stats summarizes the height distribution of a displacement buffer.
type Stats struct {
	// SignificantHeight is the mean of the highest third of heights,
	// the oceanographic H1/3 measure.
	SignificantHeight float64
	// RMS is the root mean square height.
	RMS float64
	// Max is the largest height in the buffer.
	Max float64
}

// BufferStats computes wave statistics over a published buffer, with the
// cascade's displacement scale applied. Returns the zero Stats for a nil
// or empty buffer.
func BufferStats(buf *DisplacementBuffer, displacementScale float32) Stats {
	if buf == nil || len(buf.texels) == 0 {
		return Stats{}
	}

	heights := make([]float64, len(buf.texels))
	for i, t := range buf.texels {
		heights[i] = float64(t.Y * displacementScale)
	}

	rms := gomath.Sqrt(floats.Dot(heights, heights) / float64(len(heights)))
	max := floats.Max(heights)

	sort.Float64s(heights)
	third := heights[len(heights)-(len(heights)+2)/3:]

	return Stats{
		SignificantHeight: stat.Mean(third, nil),
		RMS:               rms,
		Max:               max,
	}
}
