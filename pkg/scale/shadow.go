package scale

import (
	"image/color"

	"github.com/roffe/txgauge/pkg/common"
)

type NeedleHalf int

const (
	RightHalf NeedleHalf = iota
	LeftHalf
)

// Shadow describes the drop shadow cast by one half of the needle, in
// fractions of the drawing square.
type Shadow struct {
	Half   NeedleHalf
	Radius float64
	DX, DY float64
	Color  color.NRGBA
}

const shadowOffset = common.OneTwohundredth

var shadowColor = color.NRGBA{A: 127}

// ShadowFor keeps the light source fixed while the needle rotates: on the
// left side of the dial the shadow falls from the left half of the needle.
func ShadowFor(angle float64) Shadow {
	if angle > 180 && angle < 360 {
		return Shadow{Half: LeftHalf, Radius: 0.01, DX: -shadowOffset, DY: shadowOffset, Color: shadowColor}
	}
	return Shadow{Half: RightHalf, Radius: 0.01, DX: shadowOffset, DY: -shadowOffset, Color: shadowColor}
}
