// Package water renders the cascaded wave surface and carries the CPU
// mirrors of the shading math used by the GLSL sources.
package water

import (
	gomath "math"

	"github.com/wavefarer/oceansim/pkg/math"
)

// BaseReflectance is the Fresnel floor of sea water at normal incidence.
const BaseReflectance = 0.02

// Foam mask tuning shared between the fragment shader and the mirrors.
const (
	foamRampLow  = 0.25
	foamRampHigh = 1.0
	// FoamFadeDistance is the e-folding distance of the foam mask.
	FoamFadeDistance = 240.0
)

// FresnelReflectance returns the reflectance for the given view angle
// cosine. The roughness term tempers the grazing-angle spike: a rough
// surface scatters the near-horizon reflection away. The result always
// lies within [BaseReflectance, 1] and out-of-range inputs clamp.
func FresnelReflectance(cosTheta, roughness float32) float32 {
	cosTheta = math.Clamp(cosTheta, 0, 1)
	if roughness < 0 {
		roughness = 0
	}

	grazing := gomath.Pow(float64(1-cosTheta), 5*gomath.Exp(-2.69*float64(roughness)))
	f := BaseReflectance + (1-BaseReflectance)*float32(grazing)/
		(1+22.7*float32(gomath.Pow(float64(roughness), 1.5)))
	return math.Clamp(f, BaseReflectance, 1)
}

// GGXDistribution is the GGX normal distribution for the half-vector
// cosine ndoth at the given roughness.
func GGXDistribution(ndoth, roughness float32) float32 {
	ndoth = math.Clamp(ndoth, 0, 1)
	a := roughness * roughness
	a2 := a * a
	d := ndoth*ndoth*(a2-1) + 1
	denom := gomath.Pi * float64(d) * float64(d)
	if denom <= 0 {
		return 0
	}
	return float32(float64(a2) / denom)
}

// SmithLambda is the rational approximation of the Smith Λ term for a
// Beckmann-type slope distribution. Zero for angle ratios at or above
// 1.6, where masking becomes negligible.
func SmithLambda(cosTheta, roughness float32) float32 {
	cosTheta = math.Clamp(cosTheta, 1e-4, 1)
	if roughness <= 0 {
		return 0
	}
	sinTheta := float32(gomath.Sqrt(float64(1 - cosTheta*cosTheta)))
	if sinTheta == 0 {
		return 0
	}
	a := cosTheta / (roughness * sinTheta)
	if a >= 1.6 {
		return 0
	}
	return (1 - 1.259*a + 0.396*a*a) / (3.535*a + 2.181*a*a)
}

// SmithMasking is the height-correlated masking-shadowing factor
// 1 / (1 + Λ(l) + Λ(v)).
func SmithMasking(ndotl, ndotv, roughness float32) float32 {
	return 1 / (1 + SmithLambda(ndotl, roughness) + SmithLambda(ndotv, roughness))
}

// FoamFactor maps the vertical gradient channel to a foam mask: a
// smoothstep ramp of its magnitude attenuated exponentially with camera
// distance so distant foam never shimmers.
func FoamFactor(gradY, dist float32) float32 {
	if dist < 0 {
		dist = 0
	}
	ramp := math.Smoothstep(foamRampLow, foamRampHigh, float32(gomath.Abs(float64(gradY))))
	return ramp * float32(gomath.Exp(float64(-dist/FoamFadeDistance)))
}

// BSplineWeights returns the four uniform cubic B-spline basis weights at
// fractional offset t in [0, 1]. The weights are nonnegative and sum to 1.
func BSplineWeights(t float32) [4]float32 {
	t = math.Clamp(t, 0, 1)
	it := 1 - t
	return [4]float32{
		it * it * it / 6,
		(3*t*t*t - 6*t*t + 4) / 6,
		(-3*t*t*t + 3*t*t + 3*t + 1) / 6,
		t * t * t / 6,
	}
}

// BicubicBlend returns the blend factor from bilinear (0) to B-spline
// bicubic (1) gradient filtering. texelSize is the world-space size of
// one map texel; far away, where texels span little screen area, the
// smoother kernel wins.
func BicubicBlend(dist, texelSize float32) float32 {
	return math.Smoothstep(2, 8, dist*texelSize)
}

// DistanceFade is the displacement fade: 1 up to start, an exponential
// rolloff normalized to reach exactly 0 at cutoff, 0 beyond.
func DistanceFade(dist, start, cutoff float32) float32 {
	if cutoff <= start {
		if dist < cutoff {
			return 1
		}
		return 0
	}
	if dist <= start {
		return 1
	}
	if dist >= cutoff {
		return 0
	}
	const k = 5.0
	t := float64((dist - start) / (cutoff - start))
	return float32((gomath.Exp(-k*t) - gomath.Exp(-k)) / (1 - gomath.Exp(-k)))
}

// ExtinctionTint attenuates the shallow color toward the deep color with
// per-channel Beer-Lambert extinction over the given water column depth.
// The result never drops below the deep-water floor.
func ExtinctionTint(depth float32, deep, shallow, extinction [3]float32) [3]float32 {
	if depth < 0 {
		depth = 0
	}
	var out [3]float32
	for i := 0; i < 3; i++ {
		var t float32
		if extinction[i] > 0 {
			t = float32(gomath.Exp(float64(-depth / extinction[i])))
		}
		c := deep[i] + (shallow[i]-deep[i])*t
		if c < deep[i] {
			c = deep[i]
		}
		out[i] = c
	}
	return out
}
