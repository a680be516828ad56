package ocean

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/wavefarer/oceansim/pkg/math"
)

// Options configures a Surface.
type Options struct {
	// Resolution of the displacement/normal maps in texels per side.
	Resolution int
	// UpdateRate in simulation steps per second; 0 steps every frame.
	UpdateRate float32
	// ReadbackBudget is the total CPU-buffer refresh budget in seconds.
	ReadbackBudget float32
	// HeightSteps is the default inversion iteration count for queries.
	HeightSteps int
}

// Surface owns one ocean wave field: the simulation clock, the spectral
// generator, the readback scheduler and the height sampler. All methods
// are main-thread only.
type Surface struct {
	log *zap.Logger

	gen      SpectrumGenerator
	clock    *SimulationClock
	sched    *ReadbackScheduler
	sampler  *HeightSampler
	cascades *CascadeList

	resolution  int
	heightSteps int
	configured  int // cascade count last passed to the generator
}

// NewSurface wires a surface around the given generator.
func NewSurface(gen SpectrumGenerator, opts Options, log *zap.Logger) (*Surface, error) {
	if opts.Resolution <= 0 {
		return nil, fmt.Errorf("resolution must be positive, got %d", opts.Resolution)
	}
	if log == nil {
		log = zap.NewNop()
	}
	if opts.HeightSteps < 1 {
		opts.HeightSteps = DefaultHeightSteps
	}

	s := &Surface{
		log:         log,
		gen:         gen,
		clock:       NewSimulationClock(opts.UpdateRate),
		cascades:    NewCascadeList(),
		resolution:  opts.Resolution,
		heightSteps: opts.HeightSteps,
		configured:  -1,
	}
	s.sched = NewReadbackScheduler(gen.Displacement(), opts.ReadbackBudget, log)
	s.sampler = NewHeightSampler(s.sched)
	return s, nil
}

// Cascades returns the cascade list for authoring. After any batch of
// edits, adds or removals, call Rebuild to commit.
func (s *Surface) Cascades() *CascadeList {
	return s.cascades
}

// Rebuild commits cascade edits: validates parameters, reconfigures the
// generator when the cascade count changed, and rebuilds the readback
// rotation. Dependent state keyed by removed cascades is dropped here.
func (s *Surface) Rebuild() error {
	if err := s.cascades.Validate(); err != nil {
		return err
	}

	if s.cascades.Len() != s.configured {
		if err := s.gen.Configure(s.cascades.Len(), s.resolution); err != nil {
			return fmt.Errorf("configuring generator: %w", err)
		}
		s.configured = s.cascades.Len()
	}

	s.sched.Rebuild(s.cascades.Items())

	s.log.Debug("surface rebuilt",
		zap.Int("cascades", s.cascades.Len()),
		zap.Int("resolution", s.resolution),
	)
	return nil
}

// Clock returns the simulation clock, e.g. for runtime rate changes.
func (s *Surface) Clock() *SimulationClock {
	return s.clock
}

// Update advances the surface by one rendered frame. When the clock
// reports a step due, the generator steps and the readback rotation
// ticks; otherwise this is bookkeeping only.
func (s *Surface) Update(frameDelta float32) {
	stepDelta, stepped := s.clock.Advance(frameDelta)
	if !stepped {
		return
	}
	s.gen.Step(stepDelta, s.cascades.Items())
	s.sched.Tick(stepDelta)
}

// Height returns the wave height at a world position using the configured
// iteration count.
func (s *Surface) Height(pos math.Vec3) float32 {
	return s.sampler.Height(pos, s.cascades.Items(), s.heightSteps)
}

// HeightN is Height with an explicit iteration count.
func (s *Surface) HeightN(pos math.Vec3, steps int) float32 {
	return s.sampler.Height(pos, s.cascades.Items(), steps)
}

// Stats returns wave statistics for one cascade's latest published
// buffer. The second return is false until a first readback has
// published, or when the ID is unknown.
func (s *Surface) Stats(id CascadeID) (Stats, bool) {
	c, ok := s.cascades.Get(id)
	if !ok {
		return Stats{}, false
	}
	buf := s.sched.Buffer(id)
	if buf == nil {
		return Stats{}, false
	}
	return BufferStats(buf, c.DisplacementScale), true
}

// Close drains the outstanding readback. The generator's GPU resources
// must only be released after Close returns.
func (s *Surface) Close() {
	s.sched.Close()
}
