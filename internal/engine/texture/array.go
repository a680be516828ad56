// Package texture provides GPU texture containers for the wave pipeline.
package texture

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// Array is a square RGBA32F 2D texture array, one layer per cascade. The
// generator writes displacement or gradient maps into it; the surface
// shader and the readback path sample and read the same storage.
type Array struct {
	handle     uint32
	resolution int32
	layers     int32
}

// NewArray allocates an immutable-size texture array. Must be called on
// the thread owning the GL context.
func NewArray(resolution, layers int) (*Array, error) {
	if resolution < 1 {
		return nil, fmt.Errorf("resolution must be positive, got %d", resolution)
	}
	if layers < 1 {
		return nil, fmt.Errorf("layer count must be positive, got %d", layers)
	}

	a := &Array{
		resolution: int32(resolution),
		layers:     int32(layers),
	}

	gl.GenTextures(1, &a.handle)
	gl.BindTexture(gl.TEXTURE_2D_ARRAY, a.handle)
	gl.TexImage3D(gl.TEXTURE_2D_ARRAY, 0, gl.RGBA32F,
		a.resolution, a.resolution, a.layers, 0, gl.RGBA, gl.FLOAT, nil)

	// The maps tile, so both axes repeat.
	gl.TexParameteri(gl.TEXTURE_2D_ARRAY, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D_ARRAY, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D_ARRAY, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D_ARRAY, gl.TEXTURE_WRAP_T, gl.REPEAT)
	gl.BindTexture(gl.TEXTURE_2D_ARRAY, 0)

	return a, nil
}

// Upload replaces one layer with raw RGBA texels, row-major, 4 floats per
// texel.
func (a *Array) Upload(layer int, texels []float32) error {
	if layer < 0 || layer >= int(a.layers) {
		return fmt.Errorf("layer %d out of range [0, %d)", layer, a.layers)
	}
	if want := int(a.resolution * a.resolution * 4); len(texels) != want {
		return fmt.Errorf("texel slice has %d floats, want %d", len(texels), want)
	}

	gl.BindTexture(gl.TEXTURE_2D_ARRAY, a.handle)
	gl.TexSubImage3D(gl.TEXTURE_2D_ARRAY, 0, 0, 0, int32(layer),
		a.resolution, a.resolution, 1, gl.RGBA, gl.FLOAT, gl.Ptr(texels))
	gl.BindTexture(gl.TEXTURE_2D_ARRAY, 0)
	return nil
}

// Bind binds the array to the given texture unit.
func (a *Array) Bind(unit uint32) {
	gl.ActiveTexture(gl.TEXTURE0 + unit)
	gl.BindTexture(gl.TEXTURE_2D_ARRAY, a.handle)
}

// Handle returns the GL texture object.
func (a *Array) Handle() uint32 {
	return a.handle
}

// Resolution returns the side length in texels.
func (a *Array) Resolution() int {
	return int(a.resolution)
}

// Layers returns the layer count.
func (a *Array) Layers() int {
	return int(a.layers)
}

// Destroy releases the texture object.
func (a *Array) Destroy() {
	if a.handle != 0 {
		gl.DeleteTextures(1, &a.handle)
		a.handle = 0
	}
}
