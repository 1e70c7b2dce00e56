package colors

import (
	"fmt"
	"image/color"

	"github.com/roffe/txgauge/pkg/common"
)

const (
	// DeadBand around the neutral value inside which the value counts as neutral.
	DeadBand = 0.1
	// FullScale is the value span gradient weights are computed against.
	FullScale = 100.0
)

// Background returns the light and dark arc colours for current.
//
// Without gradient the colours switch between the three stop pairs. With
// gradient, values above the dead-band blend neutral → positive weighted by
// current/100 and values below blend negative → neutral weighted by
// current*2/100. Gradient mode requires current within [0, 100].
func Background(current float64, s Stops, neutral float64, useGradient bool) (light, dark color.RGBA, err error) {
	if !common.Finite(current) {
		return light, dark, fmt.Errorf("%w: %v", common.ErrInvalidValue, current)
	}
	above := current > neutral+DeadBand
	below := current < neutral-DeadBand

	if !useGradient {
		switch {
		case above:
			return s.PositiveLight, s.PositiveDark, nil
		case below:
			return s.NegativeLight, s.NegativeDark, nil
		}
		return s.NeutralLight, s.NeutralDark, nil
	}

	if current < 0 || current > FullScale {
		return light, dark, fmt.Errorf("%w: gradient needs a value within [0,%g], got %g", common.ErrOutOfRange, FullScale, current)
	}
	switch {
	case above:
		w := current / FullScale
		if light, err = blend(s.NeutralLight, s.PositiveLight, w); err != nil {
			return
		}
		dark, err = blend(s.NeutralDark, s.PositiveDark, w)
		return
	case below:
		w := current * 2 / FullScale
		if light, err = blend(s.NegativeLight, s.NeutralLight, w); err != nil {
			return
		}
		dark, err = blend(s.NegativeDark, s.NeutralDark, w)
		return
	}
	return s.NeutralLight, s.NeutralDark, nil
}

func blend(from, to color.RGBA, w float64) (color.RGBA, error) {
	var out [3]uint8
	for i, ch := range [3][2]uint8{{from.R, to.R}, {from.G, to.G}, {from.B, to.B}} {
		v := lerp(float64(ch[0]), float64(ch[1]), w)
		if v < 0 || v >= 256 {
			return color.RGBA{}, fmt.Errorf("%w: channel %g at weight %g", common.ErrOutOfRange, v, w)
		}
		out[i] = uint8(v)
	}
	return color.RGBA{out[0], out[1], out[2], 0xFF}, nil
}

func lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}
