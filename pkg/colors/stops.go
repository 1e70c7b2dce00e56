package colors

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/roffe/txgauge/pkg/common"
)

// Stops are the background arc colours. The light tone fills the arc
// between the start baseline and the needle, the dark tone the remainder.
type Stops struct {
	NegativeDark  color.RGBA
	NegativeLight color.RGBA
	NeutralDark   color.RGBA
	NeutralLight  color.RGBA
	PositiveDark  color.RGBA
	PositiveLight color.RGBA
}

func DefaultStops() Stops {
	return StopsFor(ModeNormal)
}

func StopsFor(mode ColorBlindMode) Stops {
	switch mode {
	case ModeUniversal:
		return Stops{
			NegativeDark:  color.RGBA{0x99, 0x5C, 0x00, 0xFF},
			NegativeLight: color.RGBA{0xFF, 0xA5, 0x00, 0xFF}, // #FFA500
			NeutralDark:   color.RGBA{0x88, 0x88, 0x88, 0xFF},
			NeutralLight:  color.RGBA{0xF7, 0xF7, 0xF7, 0xFF}, // #F7F7F7
			PositiveDark:  color.RGBA{0x10, 0x3A, 0x66, 0xFF},
			PositiveLight: color.RGBA{0x21, 0x66, 0xAC, 0xFF}, // #2166AC
		}
	case ModeProtanopia:
		return Stops{
			NegativeDark:  color.RGBA{0x5A, 0x2D, 0x00, 0xFF},
			NegativeLight: color.RGBA{0x96, 0x4B, 0x00, 0xFF}, // #964B00
			NeutralDark:   color.RGBA{0x99, 0x99, 0x99, 0xFF},
			NeutralLight:  color.RGBA{0xF7, 0xF7, 0xF7, 0xFF},
			PositiveDark:  color.RGBA{0x03, 0x44, 0x6A, 0xFF},
			PositiveLight: color.RGBA{0x05, 0x71, 0xB0, 0xFF}, // #0571B0
		}
	case ModeTritanopia:
		return Stops{
			NegativeDark:  color.RGBA{0x81, 0x1D, 0x17, 0xFF},
			NegativeLight: color.RGBA{0xD7, 0x30, 0x27, 0xFF}, // #D73027
			NeutralDark:   color.RGBA{0x88, 0x88, 0x88, 0xFF},
			NeutralLight:  color.RGBA{0xF7, 0xF7, 0xF7, 0xFF},
			PositiveDark:  color.RGBA{0x00, 0x4D, 0x4D, 0xFF},
			PositiveLight: color.RGBA{0x00, 0x80, 0x80, 0xFF}, // #008080
		}
	case ModeDeuteranomaly:
		return Stops{
			NegativeDark:  color.RGBA{0x53, 0x29, 0x0B, 0xFF},
			NegativeLight: color.RGBA{0x8B, 0x45, 0x13, 0xFF}, // #8B4513
			NeutralDark:   color.RGBA{0x93, 0x8A, 0x6B, 0xFF},
			NeutralLight:  color.RGBA{0xF5, 0xE6, 0xB3, 0xFF}, // #F5E6B3
			PositiveDark:  color.RGBA{0x2C, 0x56, 0x88, 0xFF},
			PositiveLight: color.RGBA{0x4A, 0x90, 0xE2, 0xFF}, // #4A90E2
		}
	default:
		return Stops{
			NegativeDark:  color.RGBA{0x80, 0x00, 0x00, 0xFF},
			NegativeLight: color.RGBA{0xFF, 0x00, 0x00, 0xFF},
			NeutralDark:   color.RGBA{0x88, 0x88, 0x88, 0xFF},
			NeutralLight:  color.RGBA{0xCC, 0xCC, 0xCC, 0xFF},
			PositiveDark:  color.RGBA{0x00, 0x80, 0x00, 0xFF},
			PositiveLight: color.RGBA{0x00, 0xFF, 0x00, 0xFF},
		}
	}
}

// ParseHex parses "#RGB", "#RRGGBB" and "#AARRGGBB" colour strings.
func ParseHex(s string) (color.RGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	switch len(hex) {
	case 3:
		v, err := strconv.ParseUint(hex, 16, 16)
		if err != nil {
			break
		}
		r, g, b := uint8(v>>8&0xF), uint8(v>>4&0xF), uint8(v&0xF)
		return color.RGBA{r * 17, g * 17, b * 17, 0xFF}, nil
	case 6:
		v, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			break
		}
		return color.RGBA{uint8(v >> 16), uint8(v >> 8), uint8(v), 0xFF}, nil
	case 8:
		v, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			break
		}
		// color.RGBA is alpha premultiplied
		return color.RGBAModel.Convert(color.NRGBA{uint8(v >> 16), uint8(v >> 8), uint8(v), uint8(v >> 24)}).(color.RGBA), nil
	}
	return color.RGBA{}, fmt.Errorf("%w: invalid colour %q", common.ErrConfiguration, s)
}

// FormatHex is the inverse of ParseHex for opaque colours.
func FormatHex(c color.RGBA) string {
	if c.A == 0xFF {
		return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
	}
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return fmt.Sprintf("#%02X%02X%02X%02X", n.A, n.R, n.G, n.B)
}
