package ocean

// LayerSource provides synchronous read access to one GPU texture array
// with 4 float channels per texel and one layer per cascade. ReadLayer
// fills dst with resolution*resolution*4 values; it is the device texture
// read primitive and blocks the calling goroutine.
type LayerSource interface {
	Resolution() int
	ReadLayer(layer int, dst []float32) error
}

// SpectrumGenerator is the external spectral wave generator. It turns
// per-cascade parameters into displacement and normal texture arrays;
// this package consumes those maps, it does not produce them.
type SpectrumGenerator interface {
	// Configure sizes the generator's texture arrays. Called whenever the
	// cascade count or map resolution changes.
	Configure(cascadeCount, resolution int) error

	// Step advances the simulation by dt seconds. Cascades are given in
	// layer order; the generator's own step boundary synchronizes its
	// texture writes.
	Step(dt float32, cascades []Cascade)

	// Displacement returns read access to the displaced-height maps.
	// Texel channels: (horizontal-x offset, height, horizontal-z offset, -).
	Displacement() LayerSource

	// Normals returns read access to the gradient maps.
	Normals() LayerSource
}
