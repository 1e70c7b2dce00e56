package gauge

import (
	"fmt"
	"image/color"
	"time"

	"github.com/roffe/txgauge/pkg/colors"
	"github.com/roffe/txgauge/pkg/common"
	"github.com/roffe/txgauge/pkg/motion"
	"github.com/roffe/txgauge/pkg/scale"
)

const (
	DefaultNeedleWidth       = 0.1
	DefaultNeedleHeight      = 1.0
	DefaultDisplayString     = "%.0f"
	DefaultAnimationDuration = 900 * time.Millisecond
)

var DefaultNeedleColor = color.RGBA{0x80, 0x80, 0x80, 0xFF}

type Config struct {
	Name          string
	Title         string
	Topic         string // event bus topic feeding the target value
	DisplayString string // default "%.0f"
	Unit          string

	Scale        scale.Config
	Motion       motion.Kind
	ClampToRange bool

	// Neutral is the value separating the negative and positive tones.
	// Nil means the scale midpoint.
	Neutral     *float64
	UseGradient bool
	ColorMode   colors.ColorBlindMode
	Stops       colors.Stops
	Ranges      *colors.Ranges

	// needle geometry as fractions of the drawing square
	NeedleWidth  float64
	NeedleHeight float64
	NeedleColor  color.RGBA

	ShowNeedle bool
	ShowScale  bool
	ShowRanges bool
	ShowText   bool

	// AnimationDuration is used by hosts animating a driven gauge.
	AnimationDuration time.Duration
}

func DefaultConfig() *Config {
	return &Config{
		DisplayString:     DefaultDisplayString,
		Scale:             scale.DefaultConfig(),
		Motion:            motion.KindKinematic,
		ClampToRange:      true,
		Stops:             colors.DefaultStops(),
		Ranges:            colors.DefaultRanges(),
		NeedleWidth:       DefaultNeedleWidth,
		NeedleHeight:      DefaultNeedleHeight,
		NeedleColor:       DefaultNeedleColor,
		ShowNeedle:        true,
		ShowRanges:        true,
		AnimationDuration: DefaultAnimationDuration,
	}
}

// NeutralValue resolves the neutral point.
func (c *Config) NeutralValue() float64 {
	if c.Neutral != nil {
		return *c.Neutral
	}
	return c.Scale.Midpoint()
}

// Pivot is implied by the motion kind: driven gauges are half dials
// pivoting on the bottom edge.
func (c *Config) Pivot() scale.Pivot {
	if c.Motion == motion.KindDriven {
		return scale.PivotBottom
	}
	return scale.PivotCenter
}

func (c *Config) Validate() error {
	if err := c.Scale.Validate(); err != nil {
		return err
	}
	if c.Neutral != nil && !common.Finite(*c.Neutral) {
		return fmt.Errorf("%w: neutral value is not finite", common.ErrConfiguration)
	}
	for name, v := range map[string]float64{"needleWidth": c.NeedleWidth, "needleHeight": c.NeedleHeight} {
		if !common.Finite(v) || v <= 0 {
			return fmt.Errorf("%w: %s must be a positive fraction, got %v", common.ErrConfiguration, name, v)
		}
	}
	if c.ShowRanges && c.Ranges == nil {
		return fmt.Errorf("%w: ranges shown but none configured", common.ErrConfiguration)
	}
	if c.AnimationDuration < 0 {
		return fmt.Errorf("%w: negative animation duration", common.ErrConfiguration)
	}
	return nil
}
