// Package widgets holds the interfaces shared by the gauge widgets.
package widgets

import (
	"fyne.io/fyne/v2"
	"github.com/roffe/txgauge/pkg/gauge"
	"github.com/roffe/txgauge/pkg/motion"
)

// IGauge is a gauge widget the dashboard can route values to and persist.
type IGauge interface {
	fyne.Widget
	SetValue(float64)
	SetValue2(float64)
	GetConfig() *gauge.Config
	Snapshot() motion.State
	Restore(motion.State) error
}
