package colors

import (
	"fmt"
	"image/color"
	"math"
	"strings"

	"github.com/roffe/txgauge/pkg/common"
)

// ColorBlindMode selects one of the built-in negative/neutral/positive palettes.
type ColorBlindMode int

const (
	ModeNormal        ColorBlindMode = iota // red, gray, green
	ModeUniversal                           // orange, gray, blue
	ModeProtanopia                          // brown, white, blue
	ModeTritanopia                          // red, gray, teal
	ModeDeuteranomaly                       // brown, beige, blue
)

var modeNames = [...]string{
	ModeNormal:        "Normal",
	ModeUniversal:     "Universal",
	ModeProtanopia:    "Protanopia",
	ModeTritanopia:    "Tritanopia",
	ModeDeuteranomaly: "Deuteranomaly",
}

// Modes lists every palette in declaration order.
func Modes() []ColorBlindMode {
	out := make([]ColorBlindMode, len(modeNames))
	for i := range modeNames {
		out[i] = ColorBlindMode(i)
	}
	return out
}

func (m ColorBlindMode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return "Unknown"
	}
	return modeNames[m]
}

// ParseColorBlindMode matches s case-insensitively. An empty string is ModeNormal.
func ParseColorBlindMode(s string) (ColorBlindMode, error) {
	if s == "" {
		return ModeNormal, nil
	}
	for i, name := range modeNames {
		if strings.EqualFold(s, name) {
			return ColorBlindMode(i), nil
		}
	}
	return ModeNormal, fmt.Errorf("%w: unknown color mode %q", common.ErrConfiguration, s)
}

func (m ColorBlindMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *ColorBlindMode) UnmarshalText(b []byte) error {
	v, err := ParseColorBlindMode(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// TickColor places value on the palette's light tones, negative at min,
// neutral halfway and positive at max. Values outside [min, max] clamp.
func TickColor(min, max, value float64, mode ColorBlindMode) color.RGBA {
	t := (value - min) / (max - min)
	if math.IsNaN(t) || math.IsInf(t, 0) {
		return StopsFor(mode).NeutralLight
	}
	t = math.Max(0, math.Min(1, t))

	s := StopsFor(mode)
	from, to, w := s.NegativeLight, s.NeutralLight, t*2
	if t >= 0.5 {
		from, to, w = s.NeutralLight, s.PositiveLight, (t-0.5)*2
	}
	c, err := blend(from, to, w)
	if err != nil {
		return s.NeutralLight
	}
	return c
}
