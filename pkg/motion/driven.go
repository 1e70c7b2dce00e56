package motion

import "time"

// Driven assigns externally interpolated values as they arrive. The target
// is informational only and records the end value of the latest animation.
type Driven struct {
	current     float64
	target      float64
	initialized bool
}

func NewDriven(initial float64) *Driven {
	return &Driven{current: initial, target: initial}
}

func (d *Driven) Kind() Kind { return KindDriven }

// SetCurrentValue assigns v as the rendered value without clamping.
func (d *Driven) SetCurrentValue(v float64) error {
	if err := checkFinite(v); err != nil {
		return err
	}
	d.current = v
	d.initialized = true
	return nil
}

// SetTarget jumps straight to value.
func (d *Driven) SetTarget(value float64, _ time.Time) error {
	if err := d.SetCurrentValue(value); err != nil {
		return err
	}
	d.target = value
	return nil
}

// AnimateTarget records value as the target and returns the value the host
// interpolator should start from.
func (d *Driven) AnimateTarget(value float64) (from float64, err error) {
	if err := checkFinite(value); err != nil {
		return d.current, err
	}
	d.target = value
	return d.current, nil
}

func (d *Driven) Tick(time.Time) bool { return false }

func (d *Driven) Current() float64  { return d.current }
func (d *Driven) Target() float64   { return d.target }
func (d *Driven) Initialized() bool { return d.initialized }
func (d *Driven) Animating() bool   { return false }

func (d *Driven) Snapshot() State {
	return State{
		Initialized:  d.initialized,
		CurrentValue: d.current,
		TargetValue:  d.target,
	}
}

func (d *Driven) Restore(s State) error {
	if err := s.Validate(); err != nil {
		return err
	}
	d.initialized = s.Initialized
	d.current = s.CurrentValue
	d.target = s.TargetValue
	return nil
}
