package gauge

import (
	"image/color"

	"github.com/roffe/txgauge/pkg/colors"
	"github.com/roffe/txgauge/pkg/common"
	"github.com/roffe/txgauge/pkg/scale"
)

// Frame is everything a renderer needs to draw the gauge once. Geometry is
// in fractions of the drawing square; renderers scale it to pixels.
type Frame struct {
	Value float64
	Text  string
	Unit  string
	Title string

	Angle       float64 // needle angle, degrees clockwise from up
	Light, Dark color.RGBA
	Before      scale.Sweep // start baseline to needle, light tone
	After       scale.Sweep // needle to end baseline, dark tone
	Shadow      scale.Shadow

	Pivot          scale.Pivot
	PivotX, PivotY float64
	NeedleWidth    float64
	NeedleHeight   float64
	NeedleColor    color.RGBA
	ShowNeedle     bool
	ShowText       bool

	Ticks []TickMark
}

type TickMark struct {
	scale.Tick
	Color color.RGBA
}

// Frame computes the draw descriptor for the current value. It fails when
// gradient colours are requested for a value outside [0,100].
func (g *Gauge) Frame() (Frame, error) {
	v := g.motion.Current()
	light, dark, err := colors.Background(v, g.cfg.Stops, g.neutral, g.cfg.UseGradient)
	if err != nil {
		return Frame{}, err
	}
	angle := g.mapper.AngleForValue(v)
	before, after := g.mapper.SweepsForValue(v)
	px, py := g.mapper.Pivot().Anchor()

	g.buf = common.AppendFormatFloat(g.buf[:0], g.cfg.DisplayString, v)

	return Frame{
		Value:        v,
		Text:         string(g.buf),
		Unit:         g.cfg.Unit,
		Title:        g.cfg.Title,
		Angle:        angle,
		Light:        light,
		Dark:         dark,
		Before:       before,
		After:        after,
		Shadow:       scale.ShadowFor(angle),
		Pivot:        g.mapper.Pivot(),
		PivotX:       px,
		PivotY:       py,
		NeedleWidth:  g.cfg.NeedleWidth,
		NeedleHeight: g.cfg.NeedleHeight,
		NeedleColor:  g.cfg.NeedleColor,
		ShowNeedle:   g.cfg.ShowNeedle && g.motion.Initialized(),
		ShowText:     g.cfg.ShowText,
		Ticks:        g.ticks,
	}, nil
}

func (g *Gauge) buildTicks() []TickMark {
	if !g.cfg.ShowScale && !g.cfg.ShowRanges {
		return nil
	}
	sc := g.cfg.Scale
	ticks := g.mapper.Ticks()
	out := make([]TickMark, len(ticks))
	for i, t := range ticks {
		out[i].Tick = t
		if g.cfg.ShowRanges && g.cfg.Ranges != nil {
			out[i].Color = g.cfg.Ranges.ColorFor(t.Value)
		} else {
			out[i].Color = colors.TickColor(sc.StartValue, sc.EndValue, t.Value, g.cfg.ColorMode)
		}
	}
	return out
}
