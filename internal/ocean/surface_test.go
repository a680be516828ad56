package ocean

import (
	"testing"

	"github.com/wavefarer/oceansim/pkg/math"
)

// fakeGenerator satisfies SpectrumGenerator with fake layer sources and
// call counters.
type fakeGenerator struct {
	displacement *fakeLayerSource
	normals      *fakeLayerSource

	configures []int // cascade counts passed to Configure
	steps      int
	lastDt     float32
}

func newFakeGenerator(resolution int) *fakeGenerator {
	return &fakeGenerator{
		displacement: newFakeLayerSource(resolution),
		normals:      newFakeLayerSource(resolution),
	}
}

func (g *fakeGenerator) Configure(cascadeCount, resolution int) error {
	g.configures = append(g.configures, cascadeCount)
	return nil
}

func (g *fakeGenerator) Step(dt float32, cascades []Cascade) {
	g.steps++
	g.lastDt = dt
}

func (g *fakeGenerator) Displacement() LayerSource { return g.displacement }
func (g *fakeGenerator) Normals() LayerSource      { return g.normals }

func TestSurfaceRequiresResolution(t *testing.T) {
	if _, err := NewSurface(newFakeGenerator(4), Options{Resolution: 0}, nil); err == nil {
		t.Fatal("expected an error for zero resolution")
	}
}

func TestSurfaceRebuildConfiguresOnCountChange(t *testing.T) {
	gen := newFakeGenerator(4)
	s, err := NewSurface(gen, Options{Resolution: 4}, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	s.Cascades().Add(math.Vec2{X: 256, Y: 256}, 1.0, 1.0)
	s.Cascades().Add(math.Vec2{X: 32, Y: 32}, 0.5, 1.0)
	if err := s.Rebuild(); err != nil {
		t.Fatal(err)
	}
	if len(gen.configures) != 1 || gen.configures[0] != 2 {
		t.Fatalf("configures = %v, want [2]", gen.configures)
	}

	// Parameter-only edits keep the allocation.
	if err := s.Rebuild(); err != nil {
		t.Fatal(err)
	}
	if len(gen.configures) != 1 {
		t.Errorf("rebuild without a count change reconfigured: %v", gen.configures)
	}

	s.Cascades().Add(math.Vec2{X: 4, Y: 4}, 0.25, 1.0)
	if err := s.Rebuild(); err != nil {
		t.Fatal(err)
	}
	if len(gen.configures) != 2 || gen.configures[1] != 3 {
		t.Errorf("configures = %v, want [2 3]", gen.configures)
	}
}

func TestSurfaceRebuildRejectsInvalidCascade(t *testing.T) {
	gen := newFakeGenerator(4)
	s, err := NewSurface(gen, Options{Resolution: 4}, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	s.Cascades().Add(math.Vec2{X: 0, Y: 64}, 1.0, 1.0)
	if err := s.Rebuild(); err == nil {
		t.Fatal("expected a validation error for a zero tile length")
	}
	if len(gen.configures) != 0 {
		t.Error("a failed rebuild must not reconfigure the generator")
	}
}

func TestSurfaceUpdateStepsAtRate(t *testing.T) {
	gen := newFakeGenerator(4)
	s, err := NewSurface(gen, Options{Resolution: 4, UpdateRate: 10}, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	s.Cascades().Add(math.Vec2{X: 64, Y: 64}, 1.0, 1.0)
	if err := s.Rebuild(); err != nil {
		t.Fatal(err)
	}

	// First frame always steps; the next threshold is then 150ms out.
	s.Update(0.05)
	if gen.steps != 1 {
		t.Fatalf("steps = %d after the first frame, want 1", gen.steps)
	}
	s.Update(0.05) // t=100ms, below threshold
	if gen.steps != 1 {
		t.Errorf("stepped before the period elapsed")
	}
	s.Update(0.06) // t=160ms, crosses 150ms
	if gen.steps != 2 {
		t.Errorf("steps = %d, want 2", gen.steps)
	}
}

func TestSurfaceHeightEndToEnd(t *testing.T) {
	gen := newFakeGenerator(4)
	gen.displacement.fill = func(layer int, dst []float32) error {
		for i := 0; i < len(dst); i += 4 {
			dst[i+1] = 2.0
		}
		return nil
	}

	s, err := NewSurface(gen, Options{Resolution: 4, ReadbackBudget: 0.001}, nil)
	if err != nil {
		t.Fatal(err)
	}

	s.Cascades().Add(math.Vec2{X: 64, Y: 64}, 0.5, 1.0)
	if err := s.Rebuild(); err != nil {
		t.Fatal(err)
	}

	// Before the first publish the surface reads as flat.
	if h := s.Height(math.Vec3{X: 10}); h != 0 {
		t.Fatalf("pre-publish height = %v, want 0", h)
	}

	s.Update(0.01) // steps and crosses the readback interval
	s.sched.wg.Wait()

	if h := s.Height(math.Vec3{X: 10}); h != 1.0 {
		t.Errorf("height = %v, want 2.0 scaled by 0.5", h)
	}
	s.Close()
}

func TestSurfaceStats(t *testing.T) {
	gen := newFakeGenerator(4)
	gen.displacement.fill = func(layer int, dst []float32) error {
		for i := 0; i < len(dst); i += 4 {
			dst[i+1] = 3.0
		}
		return nil
	}

	s, err := NewSurface(gen, Options{Resolution: 4, ReadbackBudget: 0.001}, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	id := s.Cascades().Add(math.Vec2{X: 64, Y: 64}, 2.0, 1.0)
	if err := s.Rebuild(); err != nil {
		t.Fatal(err)
	}

	if _, ok := s.Stats(id); ok {
		t.Fatal("stats should be unavailable before the first publish")
	}
	if _, ok := s.Stats(CascadeID(999)); ok {
		t.Fatal("stats for an unknown cascade should report false")
	}

	s.Update(0.01)
	s.sched.wg.Wait()

	stats, ok := s.Stats(id)
	if !ok {
		t.Fatal("expected stats after the first publish")
	}
	// Uniform height 3 with scale 2: every statistic is 6.
	if stats.Max != 6.0 || stats.RMS != 6.0 || stats.SignificantHeight != 6.0 {
		t.Errorf("stats = %+v, want all 6", stats)
	}
}
