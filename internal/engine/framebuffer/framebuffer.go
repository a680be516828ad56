// Package framebuffer provides the FBO-based read primitive for texture
// array layers.
package framebuffer

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// LayerReader reads single layers of an RGBA32F texture array back into
// CPU memory through a read framebuffer. GL 4.1 has no direct sub-image
// download, so the layer is attached to an FBO and read with ReadPixels.
type LayerReader struct {
	fbo        uint32
	resolution int32
}

// NewLayerReader creates a reader for arrays of the given side length.
func NewLayerReader(resolution int) (*LayerReader, error) {
	if resolution < 1 {
		return nil, fmt.Errorf("resolution must be positive, got %d", resolution)
	}

	r := &LayerReader{resolution: int32(resolution)}
	gl.GenFramebuffers(1, &r.fbo)
	return r, nil
}

// ReadLayer downloads one layer of the texture array into dst, which must
// hold resolution*resolution*4 floats. The GL context must be current on
// the calling goroutine.
func (r *LayerReader) ReadLayer(texture uint32, layer int, dst []float32) error {
	if want := int(r.resolution * r.resolution * 4); len(dst) != want {
		return fmt.Errorf("destination has %d floats, want %d", len(dst), want)
	}

	var prevFBO int32
	gl.GetIntegerv(gl.READ_FRAMEBUFFER_BINDING, &prevFBO)

	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, r.fbo)
	gl.FramebufferTextureLayer(gl.READ_FRAMEBUFFER, gl.COLOR_ATTACHMENT0,
		texture, 0, int32(layer))

	status := gl.CheckFramebufferStatus(gl.READ_FRAMEBUFFER)
	if status != gl.FRAMEBUFFER_COMPLETE {
		gl.BindFramebuffer(gl.READ_FRAMEBUFFER, uint32(prevFBO))
		return fmt.Errorf("read framebuffer incomplete: 0x%x", status)
	}

	gl.ReadPixels(0, 0, r.resolution, r.resolution, gl.RGBA, gl.FLOAT, gl.Ptr(dst))
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, uint32(prevFBO))
	return nil
}

// Destroy releases the framebuffer object.
func (r *LayerReader) Destroy() {
	if r.fbo != 0 {
		gl.DeleteFramebuffers(1, &r.fbo)
		r.fbo = 0
	}
}

// ArraySource couples a texture array handle with a LayerReader. It
// satisfies the wave field's layer source contract for generators whose
// maps live only on the device. Reads issue GL calls, so the context must
// be current on whichever goroutine calls ReadLayer (a shared context for
// the readback worker, or main-thread use only).
type ArraySource struct {
	texture    uint32
	resolution int
	reader     *LayerReader
}

// NewArraySource creates a source reading from the given texture array.
func NewArraySource(texture uint32, resolution int) (*ArraySource, error) {
	reader, err := NewLayerReader(resolution)
	if err != nil {
		return nil, err
	}
	return &ArraySource{
		texture:    texture,
		resolution: resolution,
		reader:     reader,
	}, nil
}

// Resolution returns the side length in texels.
func (s *ArraySource) Resolution() int {
	return s.resolution
}

// ReadLayer downloads one layer into dst.
func (s *ArraySource) ReadLayer(layer int, dst []float32) error {
	return s.reader.ReadLayer(s.texture, layer, dst)
}

// Destroy releases the underlying framebuffer.
func (s *ArraySource) Destroy() {
	s.reader.Destroy()
}
