package ocean

import (
	"sync"

	"go.uber.org/zap"

	"github.com/wavefarer/oceansim/pkg/math"
)

// DefaultReadbackBudget is the total refresh budget in seconds: each
// active cascade's CPU buffer is refreshed on average once per budget.
const DefaultReadbackBudget = 1.0 / 120.0

// DisplacementBuffer is an immutable CPU-visible snapshot of one
// cascade's displacement map. Published buffers are never written again,
// so a reader's reference stays valid across later refreshes.
type DisplacementBuffer struct {
	resolution int
	texels     []math.Vec3 // (dx, height, dz) per texel, row-major
}

// NewDisplacementBuffer returns a zero-filled buffer, used as the defined
// pre-first-publish state and as a test fixture.
func NewDisplacementBuffer(resolution int) *DisplacementBuffer {
	return &DisplacementBuffer{
		resolution: resolution,
		texels:     make([]math.Vec3, resolution*resolution),
	}
}

// Resolution returns the buffer's side length in texels.
func (b *DisplacementBuffer) Resolution() int {
	return b.resolution
}

// At returns the displacement at integer texel coordinates, wrapping both
// axes (the map tiles).
func (b *DisplacementBuffer) At(x, y int) math.Vec3 {
	n := b.resolution
	x = ((x % n) + n) % n
	y = ((y % n) + n) % n
	return b.texels[y*n+x]
}

// Set writes one texel. Only scratch buffers are mutated; published
// buffers are treated as immutable.
func (b *DisplacementBuffer) Set(x, y int, d math.Vec3) {
	b.texels[y*b.resolution+x] = d
}

// Sample returns the bilinearly interpolated displacement at normalized
// coordinates u, v in [0, 1), wrapping at the tile boundary.
func (b *DisplacementBuffer) Sample(u, v float32) math.Vec3 {
	n := b.resolution
	fx := u * float32(n)
	fy := v * float32(n)

	x0 := int(fx)
	y0 := int(fy)
	tx := fx - float32(x0)
	ty := fy - float32(y0)

	d00 := b.At(x0, y0)
	d10 := b.At(x0+1, y0)
	d01 := b.At(x0, y0+1)
	d11 := b.At(x0+1, y0+1)

	bottom := d00.Scale(1 - tx).Add(d10.Scale(tx))
	top := d01.Scale(1 - tx).Add(d11.Scale(tx))
	return bottom.Scale(1 - ty).Add(top.Scale(ty))
}

// fillFromRGBA converts raw 4-channel texels into displacement vectors.
func (b *DisplacementBuffer) fillFromRGBA(raw []float32) {
	for i := range b.texels {
		b.texels[i] = math.Vec3{X: raw[i*4+0], Y: raw[i*4+1], Z: raw[i*4+2]}
	}
}

// readbackSlot binds a cascade ID to its texture array layer for one
// scheduler generation.
type readbackSlot struct {
	id    CascadeID
	layer int
}

// ReadbackScheduler round-robins GPU-to-CPU copies of displacement
// layers. One rotation step launches one background copy; the result is
// published by swapping the per-cascade buffer pointer under a mutex, so
// readers never observe a partially written buffer. At most one copy is
// in flight at any time.
type ReadbackScheduler struct {
	log    *zap.Logger
	source LayerSource
	budget float32

	slots   []readbackSlot
	cursor  int
	elapsed float32

	mu       sync.Mutex
	buffers  map[CascadeID]*DisplacementBuffer
	inFlight bool
	wg       sync.WaitGroup

	scratch []float32 // owned by the single in-flight worker
}

// NewReadbackScheduler creates a scheduler reading from source with the
// given total refresh budget in seconds.
func NewReadbackScheduler(source LayerSource, budget float32, log *zap.Logger) *ReadbackScheduler {
	if budget <= 0 {
		budget = DefaultReadbackBudget
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &ReadbackScheduler{
		log:     log,
		source:  source,
		budget:  budget,
		buffers: make(map[CascadeID]*DisplacementBuffer),
	}
}

// Rebuild recomputes the rotation state from the cascade list. Buffers of
// removed cascades are dropped; an outstanding copy is drained first so a
// stale layer index can never publish into the new state.
func (s *ReadbackScheduler) Rebuild(cascades []Cascade) {
	s.wg.Wait()

	slots := make([]readbackSlot, 0, len(cascades))
	for layer, c := range cascades {
		if c.Active() {
			slots = append(slots, readbackSlot{id: c.ID, layer: layer})
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	keep := make(map[CascadeID]bool, len(slots))
	for _, sl := range slots {
		keep[sl.id] = true
	}
	for id := range s.buffers {
		if !keep[id] {
			delete(s.buffers, id)
		}
	}

	s.slots = slots
	s.cursor = 0
	s.elapsed = 0
}

// Tick advances the rotation. Call it only on frames where a simulation
// step happened; dt is the step delta. When the per-cascade interval has
// elapsed it advances the cursor and launches one background copy of that
// cascade's layer. If the previous copy has not published yet, the
// rotation is deferred to the next tick rather than overlapping copies.
func (s *ReadbackScheduler) Tick(dt float32) {
	if len(s.slots) == 0 {
		return
	}

	interval := s.budget / float32(len(s.slots))
	s.elapsed += dt
	if s.elapsed <= interval {
		return
	}

	s.mu.Lock()
	busy := s.inFlight
	if !busy {
		s.inFlight = true
	}
	s.mu.Unlock()
	if busy {
		return
	}

	s.elapsed = 0
	s.cursor = (s.cursor + 1) % len(s.slots)
	slot := s.slots[s.cursor]

	s.wg.Add(1)
	go s.copyAndPublish(slot)
}

// copyAndPublish runs on the auxiliary worker: blocking device read into
// the scratch buffer, then a fresh snapshot swapped in under the mutex.
func (s *ReadbackScheduler) copyAndPublish(slot readbackSlot) {
	defer s.wg.Done()
	defer func() {
		s.mu.Lock()
		s.inFlight = false
		s.mu.Unlock()
	}()

	// The source's resolution is only fixed once the generator is
	// configured, so the scratch buffer is sized at read time.
	res := s.source.Resolution()
	if want := res * res * 4; len(s.scratch) != want {
		s.scratch = make([]float32, want)
	}

	if err := s.source.ReadLayer(slot.layer, s.scratch); err != nil {
		// Keep the last published buffer; the rotation retries this
		// cascade on a later turn.
		s.log.Warn("displacement readback failed",
			zap.Uint32("cascade", uint32(slot.id)),
			zap.Int("layer", slot.layer),
			zap.Error(err),
		)
		return
	}

	buf := NewDisplacementBuffer(s.source.Resolution())
	buf.fillFromRGBA(s.scratch)

	s.mu.Lock()
	defer s.mu.Unlock()
	// A rebuild may have removed or moved this cascade while the copy ran;
	// publishing is ID-checked so the result lands nowhere stale.
	for _, sl := range s.slots {
		if sl.id == slot.id && sl.layer == slot.layer {
			s.buffers[slot.id] = buf
			return
		}
	}
}

// Buffer returns the latest published buffer for the cascade, or nil if
// none has been published yet.
func (s *ReadbackScheduler) Buffer(id CascadeID) *DisplacementBuffer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buffers[id]
}

// Publish installs a buffer directly, bypassing the rotation. Used by
// tests and warm-start paths.
func (s *ReadbackScheduler) Publish(id CascadeID, buf *DisplacementBuffer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buffers[id] = buf
}

// Close drains the outstanding copy. GPU-side resources must only be
// released after Close returns.
func (s *ReadbackScheduler) Close() {
	s.wg.Wait()
}
