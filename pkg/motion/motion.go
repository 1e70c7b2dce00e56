// Package motion moves a gauge needle's current value towards its target.
//
// Two strategies exist. Kinematic integrates a spring-like acceleration
// over wall clock deltas and needs one Tick per redraw until it settles.
// Driven has no clock of its own: a host animation samples an easing curve
// and assigns each sample directly.
//
// Neither strategy is safe for concurrent use; the host calls them from its
// UI goroutine.
package motion

import (
	"fmt"
	"strings"
	"time"

	"github.com/roffe/txgauge/pkg/common"
)

// Tolerance is the absolute distance at which a value counts as arrived.
const Tolerance = 0.01

type Kind int

const (
	KindKinematic Kind = iota
	KindDriven
)

func (k Kind) String() string {
	switch k {
	case KindKinematic:
		return "kinematic"
	case KindDriven:
		return "driven"
	default:
		return "unknown"
	}
}

func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "kinematic":
		return KindKinematic, nil
	case "driven":
		return KindDriven, nil
	}
	return KindKinematic, fmt.Errorf("%w: unknown motion %q", common.ErrConfiguration, s)
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(b []byte) error {
	v, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

type Strategy interface {
	Kind() Kind
	// SetTarget accepts a new target. It returns an error for non-finite
	// values and leaves the state untouched in that case.
	SetTarget(value float64, now time.Time) error
	// Tick advances the motion and reports whether another tick is needed.
	Tick(now time.Time) bool
	Current() float64
	Target() float64
	Initialized() bool
	Animating() bool
	Snapshot() State
	Restore(State) error
}

// State is everything needed to resume a needle after the host suspended it.
// LastTick is nil when no animation was in progress.
type State struct {
	Initialized  bool       `json:"initialized" yaml:"initialized"`
	CurrentValue float64    `json:"currentValue" yaml:"currentValue"`
	TargetValue  float64    `json:"targetValue" yaml:"targetValue"`
	Velocity     float64    `json:"velocity" yaml:"velocity"`
	Acceleration float64    `json:"acceleration" yaml:"acceleration"`
	LastTick     *time.Time `json:"lastTick,omitempty" yaml:"lastTick,omitempty"`
}

func (s State) Validate() error {
	for name, v := range map[string]float64{
		"currentValue": s.CurrentValue,
		"targetValue":  s.TargetValue,
		"velocity":     s.Velocity,
		"acceleration": s.Acceleration,
	} {
		if !common.Finite(v) {
			return fmt.Errorf("%w: state %s is %v", common.ErrInvalidValue, name, v)
		}
	}
	return nil
}

// Animating reports whether the snapshot was taken mid animation.
func (s State) Animating() bool {
	return s.LastTick != nil
}

func checkFinite(v float64) error {
	if !common.Finite(v) {
		return fmt.Errorf("%w: %v", common.ErrInvalidValue, v)
	}
	return nil
}
