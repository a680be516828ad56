// Package lighting provides light source helpers for surface shading.
package lighting

import (
	gomath "math"

	"github.com/wavefarer/oceansim/pkg/math"
)

// Sun is a directional light positioned by horizon angles.
type Sun struct {
	// Azimuth in degrees, clockwise from +Z.
	Azimuth float32
	// Elevation in degrees above the horizon.
	Elevation float32
	Color     [3]float32
	Intensity float32
}

// DefaultSun returns a late-afternoon sun.
func DefaultSun() Sun {
	return Sun{
		Azimuth:   215,
		Elevation: 28,
		Color:     [3]float32{1.0, 0.93, 0.82},
		Intensity: 1.0,
	}
}

// Direction returns the normalized vector pointing towards the sun.
func (s Sun) Direction() math.Vec3 {
	return SunDirection(s.Azimuth, s.Elevation)
}

// ScaledColor returns the light color with intensity applied.
func (s Sun) ScaledColor() [3]float32 {
	return [3]float32{
		s.Color[0] * s.Intensity,
		s.Color[1] * s.Intensity,
		s.Color[2] * s.Intensity,
	}
}

// SunDirection converts azimuth/elevation angles in degrees to a unit
// direction vector. Azimuth rotates around Y, elevation lifts from the
// horizon; elevation is clamped to [-90, 90].
func SunDirection(azimuth, elevation float32) math.Vec3 {
	azRad := float64(azimuth) * gomath.Pi / 180.0
	elRad := float64(math.Clamp(elevation, -90, 90)) * gomath.Pi / 180.0

	return math.Vec3{
		X: float32(gomath.Cos(elRad) * gomath.Sin(azRad)),
		Y: float32(gomath.Sin(elRad)),
		Z: float32(gomath.Cos(elRad) * gomath.Cos(azRad)),
	}
}
