package scale

import (
	"math"

	"github.com/roffe/txgauge/pkg/common"
)

// Sweep is an arc segment in the arc frame: Start in degrees counter
// clockwise from the positive x axis, Length in degrees travelled clockwise
// from Start.
type Sweep struct {
	Start  float64
	Length float64
}

// End is the arc frame angle where the sweep stops.
func (s Sweep) End() float64 {
	return s.Start - s.Length
}

// ToArcFrame converts a needle angle to the arc frame.
func ToArcFrame(angle float64) float64 {
	if angle < 270 {
		return 90 - angle
	}
	return 90 + (360 - angle)
}

// Sweeps splits the scale arc at a needle angle. The first sweep runs from
// the start baseline to the needle, the second from the needle to the end
// baseline. Their lengths always add up to the total sweep. A needle
// outside the arc is treated as sitting on the nearest baseline. On a full
// circle the end baseline shares its angle with the start; use
// SweepsForValue when the value is known.
func (m *Mapper) Sweeps(angle float64) (Sweep, Sweep) {
	total := math.Abs(m.cfg.TotalSweep())
	needle := ToArcFrame(common.Mod360(angle))
	base := m.baseline()

	var travelled float64
	if m.cfg.TotalSweep() < 0 {
		travelled = common.Mod360(needle - base)
	} else {
		travelled = common.Mod360(base - needle)
	}
	if travelled > total {
		if travelled-total < 360-travelled {
			travelled = total
		} else {
			travelled = 0
		}
	}
	return m.split(travelled)
}

// SweepsForValue splits the arc at the position of v, measured along the
// scale so both baselines stay distinct on a full circle. Values outside
// the scale sit on the nearest baseline.
func (m *Mapper) SweepsForValue(v float64) (Sweep, Sweep) {
	total := math.Abs(m.cfg.TotalSweep())
	f := (v - m.cfg.StartValue) / (m.cfg.EndValue - m.cfg.StartValue)
	return m.split(math.Max(0, math.Min(total, f*total)))
}

func (m *Mapper) baseline() float64 {
	return ToArcFrame(m.AngleForValue(m.cfg.StartValue))
}

func (m *Mapper) split(travelled float64) (Sweep, Sweep) {
	total := math.Abs(m.cfg.TotalSweep())
	base := m.baseline()
	rest := total - travelled
	if m.cfg.TotalSweep() < 0 {
		return Sweep{Start: base, Length: -travelled}, Sweep{Start: base + travelled, Length: -rest}
	}
	return Sweep{Start: base, Length: travelled}, Sweep{Start: base - travelled, Length: rest}
}
