package motion

import (
	"fmt"
	"math"
	"time"

	"github.com/roffe/txgauge/pkg/common"
)

// Stiffness scales the acceleration towards the target per unit of distance.
const Stiffness = 5.0

// MaxDistance bounds |target-current| so the integrator stays finite.
const MaxDistance = 1e100

// Kinematic simulates the needle as a mass pulled towards its target. It is
// Idle when lastTick is unset and animating is false; Animating otherwise.
// A zero lastTick while animating means the next Tick only seeds the clock.
type Kinematic struct {
	current, target        float64
	velocity, acceleration float64
	direction              float64 // sign of target-current when the approach began

	animating   bool
	lastTick    time.Time
	initialized bool

	clamp    bool
	min, max float64
}

type KinematicOption func(*Kinematic)

// WithRange clamps targets into [min, max].
func WithRange(min, max float64) KinematicOption {
	return func(k *Kinematic) {
		k.clamp = true
		k.min, k.max = min, max
	}
}

// NewKinematic starts idle at initial.
func NewKinematic(initial float64, opts ...KinematicOption) *Kinematic {
	k := &Kinematic{current: initial, target: initial}
	for _, o := range opts {
		o(k)
	}
	return k
}

func (k *Kinematic) Kind() Kind { return KindKinematic }

func (k *Kinematic) SetTarget(value float64, now time.Time) error {
	if err := checkFinite(value); err != nil {
		return err
	}
	if k.clamp {
		value = math.Max(k.min, math.Min(k.max, value))
	}
	if d := math.Abs(value - k.current); d > MaxDistance {
		return fmt.Errorf("%w: target %g is %g away from %g", common.ErrOutOfRange, value, d, k.current)
	}
	k.target = value
	k.initialized = true
	if k.animating {
		k.direction = sign(k.target - k.current)
		return nil
	}
	if math.Abs(k.current-k.target) > Tolerance {
		k.animating = true
		k.lastTick = now
		k.direction = sign(k.target - k.current)
	}
	return nil
}

func (k *Kinematic) Tick(now time.Time) bool {
	if !k.animating {
		return false
	}
	if k.lastTick.IsZero() {
		k.lastTick = now
		return true
	}
	if !now.After(k.lastTick) {
		// same frame delivered twice
		return true
	}
	if math.Abs(k.target-k.current) <= Tolerance || k.direction == 0 {
		k.settle()
		return false
	}

	elapsed := now.Sub(k.lastTick).Seconds()
	k.acceleration = Stiffness * (k.target - k.current)
	k.current += k.velocity * elapsed
	k.velocity += k.acceleration * elapsed
	if !common.Finite(k.current) || !common.Finite(k.velocity) {
		k.settle()
		return false
	}

	if (k.target-k.current)*k.direction < Tolerance {
		k.settle()
		return false
	}
	k.lastTick = now
	return true
}

func (k *Kinematic) settle() {
	k.current = k.target
	k.velocity = 0
	k.acceleration = 0
	k.direction = 0
	k.animating = false
	k.lastTick = time.Time{}
}

func (k *Kinematic) Current() float64      { return k.current }
func (k *Kinematic) Target() float64       { return k.target }
func (k *Kinematic) Velocity() float64     { return k.velocity }
func (k *Kinematic) Acceleration() float64 { return k.acceleration }
func (k *Kinematic) Initialized() bool     { return k.initialized }
func (k *Kinematic) Animating() bool       { return k.animating }

func (k *Kinematic) Snapshot() State {
	s := State{
		Initialized:  k.initialized,
		CurrentValue: k.current,
		TargetValue:  k.target,
		Velocity:     k.velocity,
		Acceleration: k.acceleration,
	}
	if k.animating {
		ts := k.lastTick
		if ts.IsZero() {
			ts = time.Unix(0, 0)
		}
		s.LastTick = &ts
	}
	return s
}

// Restore resumes from s. The stored timestamp is never reused: the first
// Tick after an animating restore only re-seeds the clock.
func (k *Kinematic) Restore(s State) error {
	if err := s.Validate(); err != nil {
		return err
	}
	k.initialized = s.Initialized
	k.current = s.CurrentValue
	k.target = s.TargetValue
	k.velocity = s.Velocity
	k.acceleration = s.Acceleration
	k.lastTick = time.Time{}
	k.animating = s.Animating()
	if k.animating {
		k.direction = sign(k.target - k.current)
	} else {
		k.direction = 0
	}
	return nil
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
