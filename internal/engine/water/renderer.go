package water

import (
	"fmt"
	gomath "math"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/wavefarer/oceansim/internal/engine/shader"
	"github.com/wavefarer/oceansim/internal/engine/texture"
	"github.com/wavefarer/oceansim/internal/engine/water/shaders"
	"github.com/wavefarer/oceansim/pkg/math"
)

// Grid dimensions: the mesh must reach past the displacement fade cutoff.
const (
	gridCells   = 512
	gridSpacing = 2.0
)

// Renderer draws the displaced surface grid with the cascade compositor
// shader. Main-thread only.
type Renderer struct {
	log     *zap.Logger
	program *shader.Program

	vao, vbo, ebo uint32
	indexCount    int32
	noiseTex      uint32

	params RenderParams
}

// NewRenderer compiles the surface shader and uploads the grid mesh.
// Must be called after the GL context exists.
func NewRenderer(log *zap.Logger) (*Renderer, error) {
	if log == nil {
		log = zap.NewNop()
	}

	program, err := shader.NewProgram(shaders.OceanVertexShader, shaders.OceanFragmentShader)
	if err != nil {
		return nil, fmt.Errorf("ocean shader: %w", err)
	}

	r := &Renderer{
		log:     log,
		program: program,
		params:  DefaultRenderParams(),
	}
	r.uploadGrid(BuildGrid(gridCells, gridSpacing))
	r.noiseTex = texture.NewNoise(256, 1)

	log.Debug("water renderer created",
		zap.Int("grid_cells", gridCells),
		zap.Int32("indices", r.indexCount),
	)
	return r, nil
}

func (r *Renderer) uploadGrid(grid *Grid) {
	gl.GenVertexArrays(1, &r.vao)
	gl.BindVertexArray(r.vao)

	gl.GenBuffers(1, &r.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(grid.Vertices)*4,
		unsafe.Pointer(&grid.Vertices[0]), gl.STATIC_DRAW)

	gl.VertexAttribPointerWithOffset(0, 2, gl.FLOAT, false, 2*4, 0)
	gl.EnableVertexAttribArray(0)

	gl.GenBuffers(1, &r.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, r.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(grid.Indices)*4,
		unsafe.Pointer(&grid.Indices[0]), gl.STATIC_DRAW)

	gl.BindVertexArray(0)
	r.indexCount = int32(len(grid.Indices))
}

// Commit validates and installs the parameters used by subsequent draws.
// Edits to the argument after Commit do not reach the screen.
func (r *Renderer) Commit(p RenderParams) error {
	if err := p.Validate(); err != nil {
		return err
	}
	p.Cascades = append([]CascadeUniform(nil), p.Cascades...)
	r.params = p
	return nil
}

// Params returns the last committed parameters.
func (r *Renderer) Params() RenderParams {
	return r.params
}

// Draw renders the surface with the committed parameters. displacement
// and gradients hold one layer per cascade, in cascade order.
func (r *Renderer) Draw(viewProj math.Mat4, cameraPos math.Vec3, displacement, gradients *texture.Array) {
	p := &r.params
	if len(p.Cascades) == 0 {
		return
	}

	r.program.Use()

	// Snap the grid to whole spacings so vertices don't swim under a
	// moving camera.
	offX := float32(gomath.Floor(float64(cameraPos.X/gridSpacing))) * gridSpacing
	offZ := float32(gomath.Floor(float64(cameraPos.Z/gridSpacing))) * gridSpacing

	gl.UniformMatrix4fv(r.program.Uniform("uViewProj"), 1, false, viewProj.Ptr())
	gl.Uniform2f(r.program.Uniform("uWorldOffset"), offX, offZ)
	gl.Uniform3f(r.program.Uniform("uCameraPos"), cameraPos.X, cameraPos.Y, cameraPos.Z)
	gl.Uniform1i(r.program.Uniform("uCascadeCount"), int32(len(p.Cascades)))

	var tiles [MaxCascades * 2]float32
	var dispScale, normScale [MaxCascades]float32
	for i, c := range p.Cascades {
		tiles[i*2] = c.TileLength.X
		tiles[i*2+1] = c.TileLength.Y
		dispScale[i] = c.DisplacementScale
		normScale[i] = c.NormalScale
	}
	count := int32(len(p.Cascades))
	gl.Uniform2fv(r.program.Uniform("uTileLength"), count, &tiles[0])
	gl.Uniform1fv(r.program.Uniform("uDisplacementScale"), count, &dispScale[0])
	gl.Uniform1fv(r.program.Uniform("uNormalScale"), count, &normScale[0])

	gl.Uniform3f(r.program.Uniform("uWaterColor"), p.WaterColor[0], p.WaterColor[1], p.WaterColor[2])
	gl.Uniform3f(r.program.Uniform("uShallowColor"), p.ShallowColor[0], p.ShallowColor[1], p.ShallowColor[2])
	gl.Uniform3f(r.program.Uniform("uFoamColor"), p.FoamColor[0], p.FoamColor[1], p.FoamColor[2])
	gl.Uniform3f(r.program.Uniform("uExtinction"), p.Extinction[0], p.Extinction[1], p.Extinction[2])
	gl.Uniform3f(r.program.Uniform("uSunDirection"), p.SunDirection.X, p.SunDirection.Y, p.SunDirection.Z)
	gl.Uniform3f(r.program.Uniform("uSunColor"), p.SunColor[0], p.SunColor[1], p.SunColor[2])
	gl.Uniform1f(r.program.Uniform("uRoughness"), p.Roughness)
	gl.Uniform1f(r.program.Uniform("uSeaDepth"), p.SeaDepth)
	gl.Uniform1f(r.program.Uniform("uFadeStart"), p.FadeStart)
	gl.Uniform1f(r.program.Uniform("uFadeCutoff"), p.FadeCutoff)
	gl.Uniform1f(r.program.Uniform("uTime"), p.Time)
	gl.Uniform1f(r.program.Uniform("uResolution"), float32(displacement.Resolution()))

	displacement.Bind(0)
	gl.Uniform1i(r.program.Uniform("uDisplacement"), 0)
	gradients.Bind(1)
	gl.Uniform1i(r.program.Uniform("uGradients"), 1)
	gl.ActiveTexture(gl.TEXTURE2)
	gl.BindTexture(gl.TEXTURE_2D, r.noiseTex)
	gl.Uniform1i(r.program.Uniform("uFoamNoise"), 2)

	gl.BindVertexArray(r.vao)
	gl.DrawElementsWithOffset(gl.TRIANGLES, r.indexCount, gl.UNSIGNED_INT, 0)
	gl.BindVertexArray(0)
}

// Destroy releases all GL resources.
func (r *Renderer) Destroy() {
	if r.vao != 0 {
		gl.DeleteVertexArrays(1, &r.vao)
		r.vao = 0
	}
	if r.vbo != 0 {
		gl.DeleteBuffers(1, &r.vbo)
		r.vbo = 0
	}
	if r.ebo != 0 {
		gl.DeleteBuffers(1, &r.ebo)
		r.ebo = 0
	}
	if r.noiseTex != 0 {
		gl.DeleteTextures(1, &r.noiseTex)
		r.noiseTex = 0
	}
	if r.program != nil {
		r.program.Delete()
	}
}
