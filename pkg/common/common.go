package common

import (
	"math"
	"strconv"
)

const (
	PiDiv180        = math.Pi / 180
	OneHalf         = 1.0 / 2.0   // 0.5
	OneFourth       = 1.0 / 4.0   // 0.25
	OneSixth        = 1.0 / 6.0   // 0.16666666666666666
	OneEight        = 1.0 / 8.0   // 0.125
	OneSixthieth    = 1.0 / 60.0  // 0.016666666666666666
	OneTwohundredth = 1.0 / 200.0 // 0.005
)

// Finite reports whether v is neither NaN nor an infinity.
func Finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Mod360 reduces deg into [0, 360).
func Mod360(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	// -0.0000000001 + 360 rounds to 360
	if deg >= 360 {
		deg = 0
	}
	return deg
}

// ParseFixedPrec tries to parse a format like "%.0f", "%.1f" and returns the precision, or -1 if unknown.
func ParseFixedPrec(format string) int {
	if len(format) >= 4 && format[0] == '%' && format[1] == '.' && format[len(format)-1] == 'f' {
		n := 0
		has := false
		for i := 2; i < len(format)-1; i++ {
			ch := format[i]
			if ch < '0' || ch > '9' {
				return -1
			}
			has = true
			n = n*10 + int(ch-'0')
		}
		if has {
			return n
		}
	}
	return -1
}

// AppendFormatFloat appends v formatted per a simple "%.Nf" format.
// Anything else falls back to "%.0f".
func AppendFormatFloat(dst []byte, format string, v float64) []byte {
	if n := ParseFixedPrec(format); n >= 0 {
		return strconv.AppendFloat(dst, v, 'f', n, 64)
	}
	return strconv.AppendFloat(dst, v, 'f', 0, 64)
}
