// Package gauge combines scale mapping, colour blending and a motion
// strategy into one needle gauge, producing a Frame for renderers.
package gauge

import (
	"fmt"
	"log"
	"time"

	"github.com/roffe/txgauge/pkg/colors"
	"github.com/roffe/txgauge/pkg/common"
	"github.com/roffe/txgauge/pkg/motion"
	"github.com/roffe/txgauge/pkg/scale"
)

type Gauge struct {
	cfg     *Config
	mapper  *scale.Mapper
	motion  motion.Strategy
	neutral float64
	ticks   []TickMark

	clock      func() time.Time
	invalidate func()

	buf []byte
}

type Option func(*Gauge)

// WithClock replaces time.Now for SetTargetValue timestamps.
func WithClock(clock func() time.Time) Option {
	return func(g *Gauge) { g.clock = clock }
}

// WithInvalidate registers the redraw request callback.
func WithInvalidate(f func()) Option {
	return func(g *Gauge) { g.invalidate = f }
}

func New(cfg *Config, opts ...Option) (*Gauge, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("gauge %q: %w", cfg.Name, err)
	}
	mapper, err := scale.NewMapper(cfg.Scale, cfg.Pivot())
	if err != nil {
		return nil, err
	}

	g := &Gauge{
		cfg:        cfg,
		mapper:     mapper,
		neutral:    cfg.NeutralValue(),
		clock:      time.Now,
		invalidate: func() {},
	}
	for _, o := range opts {
		o(g)
	}

	initial := cfg.Scale.Midpoint()
	switch cfg.Motion {
	case motion.KindDriven:
		g.motion = motion.NewDriven(initial)
	default:
		var kopts []motion.KinematicOption
		if cfg.ClampToRange {
			kopts = append(kopts, motion.WithRange(cfg.Scale.StartValue, cfg.Scale.EndValue))
		}
		g.motion = motion.NewKinematic(initial, kopts...)
	}

	if g.neutral != 50 {
		log.Printf("gauge %q: neutral value %g differs from 50", cfg.Name, g.neutral)
	}
	if cfg.UseGradient && (cfg.Scale.StartValue != 0 || cfg.Scale.EndValue != colors.FullScale) {
		log.Printf("gauge %q: gradient weights assume a 0..%g scale, configured %g..%g", cfg.Name, colors.FullScale, cfg.Scale.StartValue, cfg.Scale.EndValue)
	}

	g.ticks = g.buildTicks()
	return g, nil
}

func (g *Gauge) Config() *Config { return g.cfg }

func (g *Gauge) Mapper() *scale.Mapper { return g.mapper }

func (g *Gauge) Kind() motion.Kind { return g.motion.Kind() }

func (g *Gauge) SetTargetValue(v float64) error {
	if err := g.motion.SetTarget(v, g.clock()); err != nil {
		return fmt.Errorf("gauge %q: %w", g.cfg.Name, err)
	}
	g.invalidate()
	return nil
}

// AnimateTargetValue prepares an animation towards v and returns the value
// range the host should interpolate over. Kinematic gauges animate
// themselves, so for them this is SetTargetValue.
func (g *Gauge) AnimateTargetValue(v float64) (from, to float64, err error) {
	d, ok := g.motion.(*motion.Driven)
	if !ok {
		from = g.motion.Current()
		err = g.SetTargetValue(v)
		return from, g.motion.Target(), err
	}
	from, err = d.AnimateTarget(v)
	if err != nil {
		return from, from, fmt.Errorf("gauge %q: %w", g.cfg.Name, err)
	}
	return from, v, nil
}

// SetCurrentValue assigns an interpolated sample to a driven gauge.
func (g *Gauge) SetCurrentValue(v float64) error {
	d, ok := g.motion.(*motion.Driven)
	if !ok {
		return fmt.Errorf("gauge %q: %w: %s gauges compute their own current value", g.cfg.Name, common.ErrUnsupported, g.motion.Kind())
	}
	if err := d.SetCurrentValue(v); err != nil {
		return fmt.Errorf("gauge %q: %w", g.cfg.Name, err)
	}
	g.invalidate()
	return nil
}

// TargetValue returns the current value, not the pending target. Callers
// have always received the rendered value from this method; use
// PendingTarget for the value the needle is heading to.
func (g *Gauge) TargetValue() float64 { return g.motion.Current() }

func (g *Gauge) PendingTarget() float64 { return g.motion.Target() }

func (g *Gauge) CurrentValue() float64 { return g.motion.Current() }

func (g *Gauge) Initialized() bool { return g.motion.Initialized() }

func (g *Gauge) Animating() bool { return g.motion.Animating() }

// Tick advances the needle one frame and requests a redraw if more frames
// are needed.
func (g *Gauge) Tick(now time.Time) bool {
	more := g.motion.Tick(now)
	if more {
		g.invalidate()
	}
	return more
}

func (g *Gauge) Snapshot() motion.State { return g.motion.Snapshot() }

func (g *Gauge) Restore(s motion.State) error {
	if err := g.motion.Restore(s); err != nil {
		return fmt.Errorf("gauge %q: %w", g.cfg.Name, err)
	}
	g.invalidate()
	return nil
}
