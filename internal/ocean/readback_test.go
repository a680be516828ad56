package ocean

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/wavefarer/oceansim/pkg/math"
)

// fakeLayerSource is a LayerSource with a programmable fill function and
// a record of read layers.
type fakeLayerSource struct {
	mu         sync.Mutex
	resolution int
	fill       func(layer int, dst []float32) error
	reads      []int
}

func newFakeLayerSource(resolution int) *fakeLayerSource {
	return &fakeLayerSource{resolution: resolution}
}

func (f *fakeLayerSource) Resolution() int {
	return f.resolution
}

func (f *fakeLayerSource) ReadLayer(layer int, dst []float32) error {
	f.mu.Lock()
	f.reads = append(f.reads, layer)
	fill := f.fill
	f.mu.Unlock()

	if fill != nil {
		return fill(layer, dst)
	}
	for i := range dst {
		dst[i] = 0
	}
	return nil
}

func (f *fakeLayerSource) readLog() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int(nil), f.reads...)
}

func activeCascades(n int) []Cascade {
	l := NewCascadeList()
	for i := 0; i < n; i++ {
		l.Add(math.Vec2{X: 64, Y: 64}, 1.0, 1.0)
	}
	return l.Items()
}

// tick drives one rotation turn and waits for the copy to publish, so
// tests observe a deterministic rotation order.
func tick(s *ReadbackScheduler, dt float32) {
	s.Tick(dt)
	s.wg.Wait()
}

func TestReadbackRotationFairness(t *testing.T) {
	const k = 3
	src := newFakeLayerSource(4)
	s := NewReadbackScheduler(src, 0.003, nil)
	s.Rebuild(activeCascades(k))

	const n = 31
	for i := 0; i < n; i++ {
		tick(s, 0.0011) // always past the 1ms per-cascade interval
	}
	s.Close()

	reads := src.readLog()
	if len(reads) != n {
		t.Fatalf("expected %d reads, got %d", n, len(reads))
	}

	counts := make(map[int]int)
	for i, layer := range reads {
		counts[layer]++
		if i > 0 && reads[i-1] == layer {
			t.Errorf("tick %d re-read layer %d consecutively", i, layer)
		}
	}
	lo, hi := n/k, (n+k-1)/k
	for layer := 0; layer < k; layer++ {
		if counts[layer] < lo || counts[layer] > hi {
			t.Errorf("layer %d read %d times, want %d..%d", layer, counts[layer], lo, hi)
		}
	}
}

func TestReadbackSingleCascade(t *testing.T) {
	src := newFakeLayerSource(4)
	s := NewReadbackScheduler(src, 0.001, nil)
	s.Rebuild(activeCascades(1))

	for i := 0; i < 5; i++ {
		tick(s, 0.0015)
	}
	s.Close()

	for _, layer := range src.readLog() {
		if layer != 0 {
			t.Errorf("single-cascade rotation read layer %d", layer)
		}
	}
}

func TestReadbackNoActiveCascades(t *testing.T) {
	src := newFakeLayerSource(4)
	s := NewReadbackScheduler(src, 0.001, nil)

	l := NewCascadeList()
	l.Add(math.Vec2{X: 64, Y: 64}, 0, 1.0) // inactive
	s.Rebuild(l.Items())

	for i := 0; i < 10; i++ {
		tick(s, 1.0)
	}
	s.Close()

	if len(src.readLog()) != 0 {
		t.Errorf("inactive cascades must not be read, got %d reads", len(src.readLog()))
	}
}

func TestReadbackAccumulatesBelowInterval(t *testing.T) {
	src := newFakeLayerSource(4)
	s := NewReadbackScheduler(src, 0.01, nil) // 10ms interval, one cascade
	s.Rebuild(activeCascades(1))

	for i := 0; i < 9; i++ {
		tick(s, 0.001)
	}
	if len(src.readLog()) != 0 {
		t.Fatalf("no copy should launch before the interval elapses")
	}
	tick(s, 0.002) // crosses 10ms
	s.Close()
	if len(src.readLog()) != 1 {
		t.Errorf("expected exactly one copy, got %d", len(src.readLog()))
	}
}

func TestReadbackPublishesTexels(t *testing.T) {
	src := newFakeLayerSource(2)
	src.fill = func(layer int, dst []float32) error {
		for i := 0; i < len(dst); i += 4 {
			dst[i+0] = float32(layer) + 0.5 // dx
			dst[i+1] = 2.0                  // height
			dst[i+2] = -1.0                 // dz
			dst[i+3] = 0                    // unused
		}
		return nil
	}

	cascades := activeCascades(2)
	s := NewReadbackScheduler(src, 0.002, nil)
	s.Rebuild(cascades)

	for i := 0; i < 4; i++ {
		tick(s, 0.0015)
	}
	s.Close()

	for layer, c := range cascades {
		buf := s.Buffer(c.ID)
		if buf == nil {
			t.Fatalf("cascade %d has no published buffer", c.ID)
		}
		got := buf.At(1, 1)
		want := math.Vec3{X: float32(layer) + 0.5, Y: 2.0, Z: -1.0}
		if got != want {
			t.Errorf("cascade %d texel = %v, want %v", c.ID, got, want)
		}
	}
}

func TestReadbackErrorKeepsPreviousBuffer(t *testing.T) {
	src := newFakeLayerSource(2)
	var fail atomic.Bool
	src.fill = func(layer int, dst []float32) error {
		if fail.Load() {
			return errors.New("device lost")
		}
		for i := 0; i < len(dst); i += 4 {
			dst[i+1] = 7.0
		}
		return nil
	}

	cascades := activeCascades(1)
	s := NewReadbackScheduler(src, 0.001, nil)
	s.Rebuild(cascades)

	tick(s, 0.002)
	first := s.Buffer(cascades[0].ID)
	if first == nil || first.At(0, 0).Y != 7.0 {
		t.Fatal("expected a successful first publish")
	}

	fail.Store(true)
	tick(s, 0.002)
	if got := s.Buffer(cascades[0].ID); got != first {
		t.Error("failed readback must retain the last published buffer")
	}

	// Recovery on a later rotation turn.
	fail.Store(false)
	tick(s, 0.002)
	if got := s.Buffer(cascades[0].ID); got == first {
		t.Error("expected a fresh buffer after the device recovered")
	}
	s.Close()
}

func TestReadbackRebuildDropsRemovedBuffers(t *testing.T) {
	src := newFakeLayerSource(2)
	l := NewCascadeList()
	a := l.Add(math.Vec2{X: 64, Y: 64}, 1.0, 1.0)
	b := l.Add(math.Vec2{X: 8, Y: 8}, 1.0, 1.0)

	s := NewReadbackScheduler(src, 0.002, nil)
	s.Rebuild(l.Items())
	for i := 0; i < 4; i++ {
		tick(s, 0.0015)
	}

	l.Remove(b)
	s.Rebuild(l.Items())

	if s.Buffer(a) == nil {
		t.Error("surviving cascade should keep its buffer")
	}
	if s.Buffer(b) != nil {
		t.Error("removed cascade's buffer should be dropped")
	}
	s.Close()
}

func TestReadbackStalePublishDiscarded(t *testing.T) {
	src := newFakeLayerSource(2)
	s := NewReadbackScheduler(src, 0.002, nil)
	s.Rebuild(activeCascades(1))

	// Simulate a copy that was in flight for a slot invalidated by a
	// rebuild: its ID/layer pair no longer exists, so the publish is
	// bounds-checked away.
	stale := readbackSlot{id: CascadeID(42), layer: 1}
	s.wg.Add(1)
	s.mu.Lock()
	s.inFlight = true
	s.mu.Unlock()
	s.copyAndPublish(stale)

	if s.Buffer(stale.id) != nil {
		t.Error("stale publish must be discarded")
	}
	s.Close()
}

func TestReadbackBufferAtomicity(t *testing.T) {
	// Every read fills the whole layer with one marker value; a reader
	// observing two different values inside one buffer has seen a torn
	// publish.
	src := newFakeLayerSource(8)
	var marker atomic.Int64
	src.fill = func(layer int, dst []float32) error {
		v := float32(marker.Add(1))
		for i := 0; i < len(dst); i += 4 {
			dst[i+1] = v
		}
		return nil
	}

	cascades := activeCascades(2)
	s := NewReadbackScheduler(src, 0.0002, nil)
	s.Rebuild(cascades)

	done := make(chan struct{})
	var torn atomic.Bool
	go func() {
		defer close(done)
		for i := 0; i < 5000; i++ {
			for _, c := range cascades {
				buf := s.Buffer(c.ID)
				if buf == nil {
					continue
				}
				want := buf.At(0, 0).Y
				if buf.At(3, 5).Y != want || buf.At(7, 7).Y != want {
					torn.Store(true)
					return
				}
			}
		}
	}()

	for i := 0; i < 500; i++ {
		s.Tick(0.001)
	}
	s.Close()
	<-done

	if torn.Load() {
		t.Fatal("reader observed a torn buffer")
	}
}

func TestDisplacementBufferSample(t *testing.T) {
	buf := NewDisplacementBuffer(4)
	buf.Set(0, 0, math.Vec3{Y: 1})
	buf.Set(1, 0, math.Vec3{Y: 3})

	// Exactly on texel 0
	if got := buf.Sample(0, 0); got.Y != 1 {
		t.Errorf("Sample(0,0).Y = %v, want 1", got.Y)
	}
	// Midway between texels 0 and 1
	if got := buf.Sample(0.125, 0); got.Y != 2 {
		t.Errorf("Sample(0.125,0).Y = %v, want 2", got.Y)
	}
}

func TestDisplacementBufferWrap(t *testing.T) {
	buf := NewDisplacementBuffer(4)
	buf.Set(0, 0, math.Vec3{Y: 5})

	if got := buf.At(4, 0); got.Y != 5 {
		t.Errorf("At(4,0) should wrap to (0,0), got %v", got.Y)
	}
	if got := buf.At(-4, -4); got.Y != 5 {
		t.Errorf("At(-4,-4) should wrap to (0,0), got %v", got.Y)
	}
	// Sampling just shy of 1.0 interpolates back toward texel 0 across
	// the tile seam.
	a := buf.Sample(0.999, 0)
	b := buf.Sample(0, 0)
	if a.Y > b.Y {
		t.Errorf("seam interpolation out of range: %v > %v", a.Y, b.Y)
	}
}
