// Package raster draws a gauge.Frame into an image without a GUI toolkit.
package raster

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"

	"github.com/roffe/txgauge/pkg/common"
	"github.com/roffe/txgauge/pkg/gauge"
	"github.com/roffe/txgauge/pkg/scale"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

var (
	screwColor  = color.RGBA{0x30, 0x30, 0x30, 0xFF}
	borderColor = color.RGBA{0x80, 0x80, 0x80, 0xFF}
	textColor   = color.RGBA{0xFF, 0xFF, 0xFF, 0xFF}
)

// Screw sizes are fractions of the drawing square.
const (
	ScrewRadius       = 0.1
	ScrewBorderRadius = 0.04
	majorTickLength   = 0.12
	minorTickLength   = 0.06

	// NeedleReach is the needle length at NeedleHeight 1, as a fraction
	// of the radius, keeping the tip inside the tick marks.
	NeedleReach = 0.85
)

// Layout is the pixel geometry of a frame drawn into a w*h image: the
// largest square centered in the image holds the dial.
type Layout struct {
	Side   float64
	OX, OY float64 // square origin
	CX, CY float64 // pivot
	Radius float64
}

func NewLayout(f gauge.Frame, w, h float64) Layout {
	side := math.Min(w, h)
	l := Layout{
		Side: side,
		OX:   (w - side) / 2,
		OY:   (h - side) / 2,
	}
	l.CX = l.OX + f.PivotX*side
	l.CY = l.OY + f.PivotY*side
	l.Radius = side * common.OneHalf
	return l
}

// Point returns the pixel at distance r (fraction of Radius) along an arc
// frame angle.
func (l Layout) Point(arcAngle, r float64) (float32, float32) {
	rad := arcAngle * common.PiDiv180
	return float32(l.CX + math.Cos(rad)*r*l.Radius), float32(l.CY - math.Sin(rad)*r*l.Radius)
}

// NeedleTip is the pixel position of the needle tip.
func (l Layout) NeedleTip(f gauge.Frame) (float32, float32) {
	return l.Point(scale.ToArcFrame(f.Angle), f.NeedleHeight*NeedleReach)
}

type Renderer struct {
	z *vector.Rasterizer
}

func NewRenderer() *Renderer {
	return &Renderer{z: vector.NewRasterizer(0, 0)}
}

// Render draws f into a new w*h image.
func Render(f gauge.Frame, w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	NewRenderer().Draw(img, f)
	return img
}

// WritePNG renders f and encodes it as PNG.
func WritePNG(out io.Writer, f gauge.Frame, w, h int) error {
	if w <= 0 || h <= 0 {
		return fmt.Errorf("%w: image size %dx%d", common.ErrConfiguration, w, h)
	}
	if err := png.Encode(out, Render(f, w, h)); err != nil {
		return fmt.Errorf("failed to encode png: %w", err)
	}
	return nil
}

// Draw paints f over dst.
func (r *Renderer) Draw(dst *image.RGBA, f gauge.Frame) {
	l, ok := r.DrawBackground(dst, f)
	if !ok {
		return
	}

	if f.ShowNeedle {
		r.needle(dst, l, f)
		r.circle(dst, float32(l.CX), float32(l.CY), float32(ScrewRadius*l.Side), screwColor)
		r.circle(dst, float32(l.CX), float32(l.CY), float32(ScrewBorderRadius*l.Side), borderColor)
	}

	if f.ShowText {
		r.text(dst, l, f)
	}
}

// DrawBackground paints the two-tone sweeps and the tick marks only.
func (r *Renderer) DrawBackground(dst *image.RGBA, f gauge.Frame) (Layout, bool) {
	b := dst.Bounds()
	l := NewLayout(f, float64(b.Dx()), float64(b.Dy()))
	if l.Side < 1 {
		return l, false
	}

	r.pie(dst, l, f.Before, f.Light)
	r.pie(dst, l, f.After, f.Dark)

	for _, t := range f.Ticks {
		length := minorTickLength
		if t.Major {
			length = majorTickLength
		}
		arc := scale.ToArcFrame(t.Angle)
		x0, y0 := l.Point(arc, 1-length)
		x1, y1 := l.Point(arc, 1)
		r.line(dst, x0, y0, x1, y1, float32(math.Max(1, l.Side/200)), t.Color)
	}
	return l, true
}

func (r *Renderer) reset(dst *image.RGBA) {
	b := dst.Bounds()
	r.z.Reset(b.Dx(), b.Dy())
	r.z.DrawOp = draw.Over
}

func (r *Renderer) fill(dst *image.RGBA, c color.Color) {
	r.z.Draw(dst, dst.Bounds(), image.NewUniform(c), image.Point{})
}

// pie fills the wedge between the pivot and the sweep.
func (r *Renderer) pie(dst *image.RGBA, l Layout, s scale.Sweep, c color.RGBA) {
	if s.Length == 0 {
		return
	}
	r.reset(dst)
	r.z.MoveTo(float32(l.CX), float32(l.CY))
	steps := int(math.Ceil(math.Abs(s.Length)/2)) + 1
	for i := 0; i <= steps; i++ {
		r.z.LineTo(l.Point(s.Start-s.Length*float64(i)/float64(steps), 1))
	}
	r.z.ClosePath()
	r.fill(dst, c)
}

func (r *Renderer) line(dst *image.RGBA, x0, y0, x1, y1, width float32, c color.RGBA) {
	dx, dy := x1-x0, y1-y0
	n := float32(math.Hypot(float64(dx), float64(dy)))
	if n == 0 {
		return
	}
	// half width normal
	nx, ny := -dy/n*width/2, dx/n*width/2
	r.reset(dst)
	r.z.MoveTo(x0+nx, y0+ny)
	r.z.LineTo(x1+nx, y1+ny)
	r.z.LineTo(x1-nx, y1-ny)
	r.z.LineTo(x0-nx, y0-ny)
	r.z.ClosePath()
	r.fill(dst, c)
}

func (r *Renderer) circle(dst *image.RGBA, cx, cy, radius float32, c color.RGBA) {
	const segments = 48
	r.reset(dst)
	for i := 0; i <= segments; i++ {
		a := 2 * math.Pi * float64(i) / segments
		x := cx + radius*float32(math.Cos(a))
		y := cy + radius*float32(math.Sin(a))
		if i == 0 {
			r.z.MoveTo(x, y)
			continue
		}
		r.z.LineTo(x, y)
	}
	r.z.ClosePath()
	r.fill(dst, c)
}

// needle draws the shadowed half first, then both halves of the needle as
// triangles from the pivot base to the tip.
func (r *Renderer) needle(dst *image.RGBA, l Layout, f gauge.Frame) {
	arc := scale.ToArcFrame(f.Angle)
	tipX, tipY := l.NeedleTip(f)
	halfW := f.NeedleWidth * l.Radius / 2
	rad := arc * common.PiDiv180
	// perpendicular to the needle, pointing to its right
	px, py := float32(math.Sin(rad)*halfW), float32(math.Cos(rad)*halfW)
	cx, cy := float32(l.CX), float32(l.CY)

	half := func(sign float32, dx, dy float32, c color.Color) {
		r.reset(dst)
		r.z.MoveTo(cx+dx, cy+dy)
		r.z.LineTo(cx+sign*px+dx, cy+sign*py+dy)
		r.z.LineTo(tipX+dx, tipY+dy)
		r.z.ClosePath()
		r.fill(dst, c)
	}

	sh := f.Shadow
	sign := float32(1)
	if sh.Half == scale.LeftHalf {
		sign = -1
	}
	// shadow offsets are y-up
	half(sign, float32(sh.DX*l.Side), float32(-sh.DY*l.Side), sh.Color)

	dark := f.NeedleColor
	dark.R, dark.G, dark.B = dark.R/2, dark.G/2, dark.B/2
	half(1, 0, 0, f.NeedleColor)
	half(-1, 0, 0, dark)
}

func (r *Renderer) text(dst *image.RGBA, l Layout, f gauge.Frame) {
	face := basicfont.Face7x13
	value := f.Text
	if f.Unit != "" {
		value += " " + f.Unit
	}
	y := l.CY + l.Radius*0.45
	if f.Pivot == scale.PivotBottom {
		y = l.CY - l.Radius*0.25
	}
	drawCentered(dst, face, value, l.CX, y, textColor)
	if f.Title != "" {
		drawCentered(dst, face, f.Title, l.CX, l.OY+float64(face.Height), textColor)
	}
}

func drawCentered(img *image.RGBA, face font.Face, text string, x, y float64, col color.RGBA) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: face,
	}
	width := d.MeasureString(text)
	d.Dot = fixed.Point26_6{X: fixed.Int26_6(x*64) - width/2, Y: fixed.Int26_6(y * 64)}
	d.DrawString(text)
}
