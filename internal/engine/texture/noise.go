package texture

import (
	"math/rand"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/wavefarer/oceansim/pkg/math"
)

// NewNoise creates a tiling grayscale value-noise texture, used to break
// up the foam mask. size must be a multiple of the lattice cell count.
func NewNoise(size int, seed int64) uint32 {
	const cells = 16
	rng := rand.New(rand.NewSource(seed))

	lattice := make([]float32, cells*cells)
	for i := range lattice {
		lattice[i] = rng.Float32()
	}
	at := func(x, y int) float32 {
		return lattice[((y%cells)+cells)%cells*cells+((x%cells)+cells)%cells]
	}

	pixels := make([]uint8, size*size*4)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			fx := float32(x) / float32(size) * cells
			fy := float32(y) / float32(size) * cells
			x0, y0 := int(fx), int(fy)
			tx := math.Smoothstep(0, 1, fx-float32(x0))
			ty := math.Smoothstep(0, 1, fy-float32(y0))

			bottom := math.Lerp(at(x0, y0), at(x0+1, y0), tx)
			top := math.Lerp(at(x0, y0+1), at(x0+1, y0+1), tx)
			v := uint8(math.Clamp(math.Lerp(bottom, top, ty), 0, 1) * 255)

			i := (y*size + x) * 4
			pixels[i+0] = v
			pixels[i+1] = v
			pixels[i+2] = v
			pixels[i+3] = 255
		}
	}

	var tex uint32
	gl.GenTextures(1, &tex)
	gl.BindTexture(gl.TEXTURE_2D, tex)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, int32(size), int32(size), 0,
		gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	gl.GenerateMipmap(gl.TEXTURE_2D)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return tex
}
