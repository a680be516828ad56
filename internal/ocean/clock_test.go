package ocean

import (
	gomath "math"
	"math/rand"
	"testing"
)

func TestClockRateZeroStepsEveryFrame(t *testing.T) {
	c := NewSimulationClock(0)

	deltas := []float32{0.016, 0.033, 0.008, 0.1}
	for _, d := range deltas {
		stepDelta, stepped := c.Advance(d)
		if !stepped {
			t.Fatalf("rate 0 should step every frame")
		}
		if stepDelta != d {
			t.Errorf("rate 0 step delta = %v, want raw frame delta %v", stepDelta, d)
		}
	}
}

func TestClockStepCount(t *testing.T) {
	const rate = 25.0 // 40ms period

	tests := []struct {
		name   string
		deltas func() []float32
	}{
		{
			name: "frames at exactly the period",
			deltas: func() []float32 {
				d := make([]float32, 50)
				for i := range d {
					d[i] = 0.04
				}
				return d
			},
		},
		{
			name: "frames dividing the period",
			deltas: func() []float32 {
				d := make([]float32, 200)
				for i := range d {
					d[i] = 0.01
				}
				return d
			},
		},
		{
			name: "alternating chunks",
			deltas: func() []float32 {
				d := make([]float32, 100)
				for i := range d {
					if i%2 == 0 {
						d[i] = 0.01
					} else {
						d[i] = 0.03
					}
				}
				return d
			},
		},
		{
			name: "random jitter",
			deltas: func() []float32 {
				rng := rand.New(rand.NewSource(7))
				var d []float32
				total := 0.0
				for total < 1.0 {
					f := 0.001 + rng.Float64()*0.001
					d = append(d, float32(f))
					total += f
				}
				return d
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewSimulationClock(rate)

			var total float64
			steps := 0
			for _, d := range tt.deltas() {
				total += float64(d)
				if _, stepped := c.Advance(d); stepped {
					steps++
				}
			}

			want := int(gomath.Floor(total * rate))
			if steps < want-1 || steps > want+1 {
				t.Errorf("steps = %d over %.4fs at rate %v, want %d±1", steps, total, rate, want)
			}
		})
	}
}

func TestClockDriftCarry(t *testing.T) {
	// The sum of step deltas must track wall time: overshoot is carried
	// into the next step delta instead of being dropped.
	c := NewSimulationClock(30)
	rng := rand.New(rand.NewSource(3))

	var total, simulated float64
	for i := 0; i < 2000; i++ {
		d := 0.005 + rng.Float64()*0.02
		total += d
		if stepDelta, stepped := c.Advance(float32(d)); stepped {
			simulated += float64(stepDelta)
		}
	}

	// Allow one period plus one frame of slack for the unfinished
	// interval at the end.
	slack := 1.0/30.0 + 0.025
	if diff := gomath.Abs(simulated - total); diff > slack {
		t.Errorf("simulated time %v drifted from wall time %v by %v (max %v)",
			simulated, total, diff, slack)
	}
}

func TestClockLongFrameClamp(t *testing.T) {
	c := NewSimulationClock(25) // 40ms period
	if _, stepped := c.Advance(0.04); !stepped {
		t.Fatal("expected the anchoring step")
	}

	// A stall worth 25 periods steps once with the full delta.
	stepDelta, stepped := c.Advance(1.0)
	if !stepped {
		t.Fatal("expected a step after the stall")
	}
	if stepDelta != 1.0 {
		t.Errorf("stall step delta = %v, want the whole 1.0", stepDelta)
	}

	// The threshold lag is capped, so the lost periods are not replayed
	// as a burst of immediate catch-up steps.
	quick := 0
	for i := 0; i < 10; i++ {
		if _, stepped := c.Advance(0.001); stepped {
			quick++
		}
	}
	if quick > 2 {
		t.Errorf("catch-up steps after a stall = %d, want at most 2", quick)
	}
}

func TestClockSetRatePreservesPhase(t *testing.T) {
	c := NewSimulationClock(10) // 100ms period

	// First advance always steps (threshold starts at zero).
	if _, stepped := c.Advance(0.05); !stepped {
		t.Fatal("expected initial step")
	}
	// Threshold is now 150ms.
	if _, stepped := c.Advance(0.04); stepped {
		t.Fatal("unexpected step before threshold")
	}

	// Halving the period shifts the threshold from 150ms to 100ms.
	c.SetRate(20)
	if _, stepped := c.Advance(0.005); stepped {
		t.Fatal("rate change must not trigger an immediate double-step")
	}
	// t=95ms, threshold 100ms: next small advance crosses it.
	if _, stepped := c.Advance(0.01); !stepped {
		t.Fatal("expected step at the shifted threshold")
	}
}

func TestClockSetRateFromZero(t *testing.T) {
	c := NewSimulationClock(0)
	c.Advance(0.5)

	c.SetRate(10)
	// The next period starts from the current time.
	if _, stepped := c.Advance(0.05); stepped {
		t.Fatal("unexpected step before one full period at the new rate")
	}
	if _, stepped := c.Advance(0.06); !stepped {
		t.Fatal("expected step after one full period at the new rate")
	}
}

func TestClockSetRateNoop(t *testing.T) {
	c := NewSimulationClock(10)
	c.Advance(0.05)
	c.SetRate(10)
	if c.Rate() != 10 {
		t.Errorf("rate = %v, want 10", c.Rate())
	}
}
