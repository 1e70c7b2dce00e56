package colors

import (
	"fmt"
	"image/color"
	"sort"

	"github.com/roffe/txgauge/pkg/common"
)

var (
	DefaultRangeValues = []float64{16, 25, 40, 100}
	DefaultRangeColors = []color.RGBA{
		{231, 32, 43, 255},
		{232, 111, 33, 255},
		{232, 231, 33, 255},
		{27, 202, 33, 255},
	}
)

// Ranges colour the scale in bands. Band i covers values up to and
// including Values[i].
type Ranges struct {
	Values []float64
	Colors []color.RGBA
}

func NewRanges(values []float64, cols []color.RGBA) (*Ranges, error) {
	if len(values) != len(cols) {
		return nil, fmt.Errorf("%w: %d range values but %d range colours", common.ErrConfiguration, len(values), len(cols))
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: no ranges", common.ErrConfiguration)
	}
	for i, v := range values {
		if !common.Finite(v) {
			return nil, fmt.Errorf("%w: range value %d is not finite", common.ErrConfiguration, i)
		}
	}
	if !sort.Float64sAreSorted(values) {
		return nil, fmt.Errorf("%w: range values must be ascending", common.ErrConfiguration)
	}
	return &Ranges{
		Values: append([]float64(nil), values...),
		Colors: append([]color.RGBA(nil), cols...),
	}, nil
}

// ParseRanges builds ranges from colour strings.
func ParseRanges(values []float64, hex []string) (*Ranges, error) {
	if len(values) != len(hex) {
		return nil, fmt.Errorf("%w: %d range values but %d range colours", common.ErrConfiguration, len(values), len(hex))
	}
	cols := make([]color.RGBA, len(hex))
	for i, h := range hex {
		c, err := ParseHex(h)
		if err != nil {
			return nil, err
		}
		cols[i] = c
	}
	return NewRanges(values, cols)
}

func DefaultRanges() *Ranges {
	r, _ := NewRanges(DefaultRangeValues, DefaultRangeColors)
	return r
}

// ColorFor returns the colour of the first band containing v. Values past
// the last band take its colour.
func (r *Ranges) ColorFor(v float64) color.RGBA {
	i := sort.SearchFloat64s(r.Values, v)
	if i >= len(r.Colors) {
		i = len(r.Colors) - 1
	}
	return r.Colors[i]
}
