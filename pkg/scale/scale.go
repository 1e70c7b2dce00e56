// Package scale maps gauge values onto needle angles and decomposes the
// needle position into the two background arc sweeps.
//
// Angles are degrees measured clockwise from "up", in [0, 360).
package scale

import (
	"fmt"
	"math"

	"github.com/roffe/txgauge/pkg/common"
)

const (
	DefaultStartValue   = 0.0
	DefaultEndValue     = 100.0
	DefaultStartAngle   = 30.0
	DefaultDivisions    = 10
	DefaultSubdivisions = 5
)

type Config struct {
	StartValue   float64 `yaml:"startValue"`
	EndValue     float64 `yaml:"endValue"`
	StartAngle   float64 `yaml:"startAngle"`
	EndAngle     float64 `yaml:"endAngle"`
	Divisions    int     `yaml:"divisions"`
	Subdivisions int     `yaml:"subdivisions"`
}

// DefaultConfig returns the 0..100 scale spanning 30..330 degrees.
func DefaultConfig() Config {
	return Config{
		StartValue:   DefaultStartValue,
		EndValue:     DefaultEndValue,
		StartAngle:   DefaultStartAngle,
		EndAngle:     360 - DefaultStartAngle,
		Divisions:    DefaultDivisions,
		Subdivisions: DefaultSubdivisions,
	}
}

// TotalSweep is the angular length of the scale arc.
func (c Config) TotalSweep() float64 {
	return c.EndAngle - c.StartAngle
}

// Midpoint is the value halfway along the scale.
func (c Config) Midpoint() float64 {
	return (c.StartValue + c.EndValue) / 2
}

// Clamp limits v to [StartValue, EndValue].
func (c Config) Clamp(v float64) float64 {
	switch {
	case v < c.StartValue:
		return c.StartValue
	case v > c.EndValue:
		return c.EndValue
	}
	return v
}

func (c Config) Validate() error {
	for name, v := range map[string]float64{
		"startValue": c.StartValue,
		"endValue":   c.EndValue,
		"startAngle": c.StartAngle,
		"endAngle":   c.EndAngle,
	} {
		if !common.Finite(v) {
			return fmt.Errorf("%w: %s is not a finite number", common.ErrConfiguration, name)
		}
	}
	if c.EndValue == c.StartValue {
		return fmt.Errorf("%w: zero length value span (%g)", common.ErrConfiguration, c.StartValue)
	}
	if c.EndValue < c.StartValue {
		return fmt.Errorf("%w: endValue %g is below startValue %g", common.ErrConfiguration, c.EndValue, c.StartValue)
	}
	for name, a := range map[string]float64{"startAngle": c.StartAngle, "endAngle": c.EndAngle} {
		if a < 0 || a > 360 {
			return fmt.Errorf("%w: %s %g is outside [0,360]", common.ErrConfiguration, name, a)
		}
	}
	if c.EndAngle == c.StartAngle {
		return fmt.Errorf("%w: zero length angle span (%g)", common.ErrConfiguration, c.StartAngle)
	}
	if c.Divisions <= 0 || c.Subdivisions <= 0 {
		return fmt.Errorf("%w: divisions (%d) and subdivisions (%d) must be positive", common.ErrConfiguration, c.Divisions, c.Subdivisions)
	}
	return nil
}

// Pivot selects where the needle geometry is anchored, which determines the
// rotation base applied to every angle.
type Pivot int

const (
	// PivotCenter needles are drawn pointing up and rotated half a turn
	// about the dial centre.
	PivotCenter Pivot = iota
	// PivotBottom needles are drawn pointing up from a pivot on the bottom edge.
	PivotBottom
)

func (p Pivot) String() string {
	switch p {
	case PivotCenter:
		return "center"
	case PivotBottom:
		return "bottom"
	default:
		return "unknown"
	}
}

// Anchor returns the pivot position as fractions of the drawing square.
func (p Pivot) Anchor() (x, y float64) {
	if p == PivotBottom {
		return 0.5, 1.0
	}
	return 0.5, 0.5
}

type Mapper struct {
	cfg      Config
	pivot    Pivot
	rotation float64
	perValue float64 // degrees per unit of value
}

func NewMapper(cfg Config, pivot Pivot) (*Mapper, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	m := &Mapper{
		cfg:      cfg,
		pivot:    pivot,
		perValue: cfg.TotalSweep() / (cfg.EndValue - cfg.StartValue),
	}
	switch pivot {
	case PivotBottom:
		m.rotation = 270 + cfg.StartAngle
	default:
		m.rotation = math.Mod(cfg.StartAngle+180, 360)
	}
	return m, nil
}

func (m *Mapper) Config() Config { return m.cfg }

func (m *Mapper) Pivot() Pivot { return m.pivot }

// Rotation is the needle angle at StartValue before reduction.
func (m *Mapper) Rotation() float64 { return m.rotation }

// AngleForValue maps value onto the needle angle. Values outside the scale
// are extrapolated, not clamped.
func (m *Mapper) AngleForValue(value float64) float64 {
	return common.Mod360(m.rotation + (value-m.cfg.StartValue)*m.perValue)
}

type Tick struct {
	Value float64
	Angle float64
	Major bool
}

// Ticks lists every subdivision mark of the scale, majors on division
// boundaries.
func (m *Mapper) Ticks() []Tick {
	n := m.cfg.Divisions * m.cfg.Subdivisions
	step := (m.cfg.EndValue - m.cfg.StartValue) / float64(n)
	ticks := make([]Tick, 0, n+1)
	for i := 0; i <= n; i++ {
		v := m.cfg.StartValue + float64(i)*step
		if i == n {
			v = m.cfg.EndValue
		}
		ticks = append(ticks, Tick{
			Value: v,
			Angle: m.AngleForValue(v),
			Major: i%m.cfg.Subdivisions == 0,
		})
	}
	return ticks
}
