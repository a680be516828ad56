// Package ocean implements the multi-cascade wave field core: cascade
// parameters, simulation cadence, GPU-to-CPU displacement readback and
// world-space height queries.
package ocean

import (
	"fmt"
	gomath "math"

	"github.com/wavefarer/oceansim/pkg/math"
)

// CascadeID identifies a cascade independently of its position in the
// cascade list. Readback buffers are keyed by ID so that resizing or
// reordering the list can never hand an in-flight readback to the wrong
// cascade.
type CascadeID uint32

// ActiveThreshold is the displacement scale below which a cascade is
// considered inactive and excluded from readback and height queries.
const ActiveThreshold = 0.001

// Cascade holds the parameters of one wave cascade. A cascade covers one
// spatial tiling scale; the surface is the sum of all cascades.
type Cascade struct {
	ID CascadeID

	// TileLength is the world-space period the displacement/normal maps
	// repeat over. Must be positive on both axes.
	TileLength math.Vec2

	// DisplacementScale is the vertical amplitude multiplier. Zero makes
	// the cascade contribute no visible or queryable height.
	DisplacementScale float32

	// NormalScale multiplies the stored gradient before lighting use.
	NormalScale float32

	// TimePhase is a per-cascade time offset in seconds so cascades with
	// identical noise seeds do not visually correlate.
	TimePhase float32

	// SpectrumSeed seeds the external spectral generator. Assigned once
	// and stable for the cascade's lifetime.
	SpectrumSeed [2]int32
}

// Active reports whether the cascade contributes to the surface.
func (c Cascade) Active() bool {
	return c.DisplacementScale > ActiveThreshold
}

// Validate checks the cascade parameters.
func (c Cascade) Validate() error {
	if c.TileLength.X <= 0 || c.TileLength.Y <= 0 {
		return fmt.Errorf("cascade %d: tile length must be positive, got (%g, %g)",
			c.ID, c.TileLength.X, c.TileLength.Y)
	}
	return nil
}

// CascadeList manages authored cascades. IDs are allocated once and never
// reused; the list position of a cascade is its texture array layer index.
type CascadeList struct {
	nextID CascadeID
	items  []Cascade
}

// NewCascadeList returns an empty cascade list.
func NewCascadeList() *CascadeList {
	return &CascadeList{nextID: 1}
}

// Add appends a cascade and returns its ID. The time phase defaults to
// pi times the new list index, which keeps every cascade's phase at least
// a full period apart from its neighbours.
func (l *CascadeList) Add(tileLength math.Vec2, displacementScale, normalScale float32) CascadeID {
	id := l.nextID
	l.nextID++

	l.items = append(l.items, Cascade{
		ID:                id,
		TileLength:        tileLength,
		DisplacementScale: displacementScale,
		NormalScale:       normalScale,
		TimePhase:         float32(gomath.Pi) * float32(len(l.items)),
		SpectrumSeed:      seedFromID(id),
	})
	return id
}

// Remove deletes the cascade with the given ID. Later cascades shift down
// one layer; callers must rebuild dependent state afterwards.
func (l *CascadeList) Remove(id CascadeID) bool {
	for i, c := range l.items {
		if c.ID == id {
			l.items = append(l.items[:i], l.items[i+1:]...)
			return true
		}
	}
	return false
}

// Get returns a pointer to the cascade with the given ID for editing.
// Edits take effect at the next Surface.Rebuild call.
func (l *CascadeList) Get(id CascadeID) (*Cascade, bool) {
	for i := range l.items {
		if l.items[i].ID == id {
			return &l.items[i], true
		}
	}
	return nil, false
}

// Items returns the cascades in layer order. The slice is shared; treat
// it as read-only.
func (l *CascadeList) Items() []Cascade {
	return l.items
}

// Len returns the number of cascades.
func (l *CascadeList) Len() int {
	return len(l.items)
}

// Validate checks every cascade in the list.
func (l *CascadeList) Validate() error {
	for _, c := range l.items {
		if err := c.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// seedFromID derives a stable two-component seed from a cascade ID
// (splitmix-style bit mixing).
func seedFromID(id CascadeID) [2]int32 {
	x := uint64(id)*0x9E3779B97F4A7C15 + 0xD1B54A32D192ED03
	x ^= x >> 31
	x *= 0xBF58476D1CE4E5B9
	x ^= x >> 27
	return [2]int32{int32(uint32(x)), int32(uint32(x >> 32))}
}
