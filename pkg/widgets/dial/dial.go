// Package dial is the fyne rendering of a gauge.Gauge.
package dial

import (
	"image"
	"image/color"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	"github.com/lusingander/colorpicker"
	"github.com/roffe/txgauge/pkg/common"
	"github.com/roffe/txgauge/pkg/eventbus"
	"github.com/roffe/txgauge/pkg/gauge"
	"github.com/roffe/txgauge/pkg/motion"
	"github.com/roffe/txgauge/pkg/raster"
	"github.com/roffe/txgauge/pkg/scale"
	"github.com/roffe/txgauge/pkg/widgets"
)

type Dial struct {
	widget.BaseWidget

	cfg   *gauge.Config
	g     *gauge.Gauge
	frame gauge.Frame

	// ticker runs kinematic motion, tween interpolates driven motion
	ticker *fyne.Animation
	tween  *fyne.Animation

	bg          *raster.Renderer
	background  *canvas.Raster
	needle      *canvas.Line
	shadow      *canvas.Line
	screw       *canvas.Circle
	screwBorder *canvas.Circle
	displayText *canvas.Text
	unitText    *canvas.Text
	titleText   *canvas.Text

	size    fyne.Size
	minsize fyne.Size
	layout  raster.Layout

	// OnNeedleColor is called after the needle colour was picked.
	OnNeedleColor func(color.RGBA)
}

var _ widgets.IGauge = (*Dial)(nil)

// New builds a dial for cfg. A nil cfg uses gauge.DefaultConfig.
func New(cfg *gauge.Config) (*Dial, error) {
	c := &Dial{
		minsize: fyne.NewSize(100, 100),
		bg:      raster.NewRenderer(),
	}
	c.ExtendBaseWidget(c)

	g, err := gauge.New(cfg, gauge.WithInvalidate(c.invalidate))
	if err != nil {
		return nil, err
	}
	c.g = g
	c.cfg = g.Config()
	if c.cfg.Pivot() == scale.PivotBottom {
		c.minsize = fyne.NewSize(100, 50)
	}

	c.background = canvas.NewRaster(c.drawBackground)
	c.shadow = &canvas.Line{StrokeWidth: 3}
	c.needle = &canvas.Line{StrokeColor: c.cfg.NeedleColor, StrokeWidth: 3}
	c.screw = &canvas.Circle{FillColor: color.RGBA{R: 0x30, G: 0x30, B: 0x30, A: 0xFF}}
	c.screwBorder = &canvas.Circle{FillColor: color.RGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xFF}}

	c.titleText = &canvas.Text{Text: c.cfg.Title, Color: color.RGBA{R: 0xF0, G: 0xF0, B: 0xF0, A: 0xFF}, TextSize: 25}
	c.titleText.TextStyle.Monospace = true
	c.titleText.Alignment = fyne.TextAlignCenter

	c.displayText = &canvas.Text{Color: color.RGBA{R: 0x2c, G: 0xfc, B: 0x03, A: 0xFF}, TextSize: 52}
	c.displayText.TextStyle.Monospace = true
	c.displayText.Alignment = fyne.TextAlignCenter

	c.unitText = &canvas.Text{Text: c.cfg.Unit, Color: color.RGBA{R: 0xF0, G: 0xF0, B: 0xF0, A: 0xFF}, TextSize: 20}
	c.unitText.Alignment = fyne.TextAlignCenter

	c.updateFrame()
	return c, nil
}

func (c *Dial) GetConfig() *gauge.Config { return c.cfg }

// SetNeedleColor repaints the needle and reports the change to OnNeedleColor.
func (c *Dial) SetNeedleColor(col color.Color) {
	rgba := color.RGBAModel.Convert(col).(color.RGBA)
	rgba.A = 0xFF
	c.cfg.NeedleColor = rgba
	c.needle.StrokeColor = rgba
	c.invalidate()
	if c.OnNeedleColor != nil {
		c.OnNeedleColor(rgba)
	}
}

// TappedSecondary opens a colour picker for the needle.
func (c *Dial) TappedSecondary(*fyne.PointEvent) {
	cnv := fyne.CurrentApp().Driver().CanvasForObject(c)
	if cnv == nil {
		return
	}
	picker := colorpicker.New(200, colorpicker.StyleHueCircle)
	picker.SetColor(c.cfg.NeedleColor)
	picker.SetOnChanged(c.SetNeedleColor)

	title := c.cfg.Title
	if title == "" {
		title = c.cfg.Name
	}
	var modal *widget.PopUp
	modal = widget.NewModalPopUp(container.NewVBox(
		widget.NewLabel(title+" needle"),
		picker,
		widget.NewButton("Close", func() {
			modal.Hide()
		}),
	), cnv)
	modal.Show()
}

func (c *Dial) Gauge() *gauge.Gauge { return c.g }

// Frame returns the last computed draw descriptor.
func (c *Dial) Frame() gauge.Frame { return c.frame }

// SetValue moves the needle to value: kinematic dials start their ticker,
// driven dials tween over the configured animation duration.
func (c *Dial) SetValue(value float64) {
	if c.g.Kind() == motion.KindDriven {
		c.AnimateTargetValue(value)
		return
	}
	c.SetTargetValue(value)
}

func (c *Dial) SetValue2(value float64) { c.SetValue(value) }

func (c *Dial) SetTargetValue(value float64) {
	if err := c.g.SetTargetValue(value); err != nil {
		fyne.LogError("dial set target", err)
		return
	}
	if c.g.Animating() {
		c.startTicker()
	}
}

func (c *Dial) AnimateTargetValue(value float64) {
	from, to, err := c.g.AnimateTargetValue(value)
	if err != nil {
		fyne.LogError("dial animate target", err)
		return
	}
	if c.g.Kind() != motion.KindDriven {
		if c.g.Animating() {
			c.startTicker()
		}
		return
	}
	if c.tween != nil {
		c.tween.Stop()
	}
	c.tween = fyne.NewAnimation(c.cfg.AnimationDuration, func(p float32) {
		if err := c.g.SetCurrentValue(from + (to-from)*float64(p)); err != nil {
			fyne.LogError("dial tween", err)
		}
	})
	c.tween.Curve = fyne.AnimationEaseInOut
	c.tween.Start()
}

// Restore applies a saved motion state and resumes an interrupted
// animation.
func (c *Dial) Restore(s motion.State) error {
	if err := c.g.Restore(s); err != nil {
		return err
	}
	if c.g.Animating() {
		c.startTicker()
	}
	return nil
}

func (c *Dial) Snapshot() motion.State { return c.g.Snapshot() }

// Stop halts running animations, leaving the needle where it is.
func (c *Dial) Stop() {
	if c.ticker != nil {
		c.ticker.Stop()
		c.ticker = nil
	}
	if c.tween != nil {
		c.tween.Stop()
		c.tween = nil
	}
}

func (c *Dial) startTicker() {
	if c.ticker != nil {
		return
	}
	c.ticker = fyne.NewAnimation(time.Second, func(float32) {
		if !c.g.Tick(time.Now()) && c.ticker != nil {
			c.ticker.Stop()
			c.ticker = nil
		}
	})
	c.ticker.RepeatCount = fyne.AnimationRepeatForever
	c.ticker.Start()
}

func (c *Dial) invalidate() {
	c.updateFrame()
	c.refreshObjects()
}

func (c *Dial) updateFrame() {
	f, err := c.g.Frame()
	if err != nil {
		fyne.LogError("dial frame", err)
		return
	}
	c.frame = f
	c.displayText.Text = f.Text
	c.applyNeedle()
}

func (c *Dial) applyNeedle() {
	f := c.frame
	l := c.layout
	show := f.ShowNeedle
	c.needle.Hidden, c.shadow.Hidden = !show, !show
	c.screw.Hidden, c.screwBorder.Hidden = !show, !show
	c.displayText.Hidden = !f.ShowText
	c.unitText.Hidden = !f.ShowText || f.Unit == ""
	if l.Side < 1 {
		return
	}

	pivot := fyne.NewPos(float32(l.CX), float32(l.CY))
	tipX, tipY := l.NeedleTip(f)
	c.needle.Position1 = pivot
	c.needle.Position2 = fyne.NewPos(tipX, tipY)

	sh := f.Shadow
	off := fyne.NewPos(float32(sh.DX*l.Side), float32(-sh.DY*l.Side))
	c.shadow.StrokeColor = sh.Color
	c.shadow.Position1 = pivot.Add(off)
	c.shadow.Position2 = c.needle.Position2.Add(off)
}

func (c *Dial) refreshObjects() {
	canvas.Refresh(c.background)
	canvas.Refresh(c.shadow)
	canvas.Refresh(c.needle)
	canvas.Refresh(c.displayText)
}

func (c *Dial) drawBackground(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	c.bg.DrawBackground(img, c.frame)
	return img
}

func (c *Dial) CreateRenderer() fyne.WidgetRenderer { return &DialRenderer{Dial: c} }

type DialRenderer struct {
	*Dial
	objects []fyne.CanvasObject
}

func (c *DialRenderer) Layout(space fyne.Size) {
	if c.size == space {
		return
	}
	c.size = space
	c.layout = raster.NewLayout(c.frame, float64(space.Width), float64(space.Height))
	l := c.layout

	side := float32(l.Side)
	radius := float32(l.Radius)
	pivot := fyne.NewPos(float32(l.CX), float32(l.CY))

	c.background.Move(fyne.NewPos(0, 0))
	c.background.Resize(space)

	c.needle.StrokeWidth = max(2.0, side*common.OneSixthieth)
	c.shadow.StrokeWidth = c.needle.StrokeWidth

	screw := side * raster.ScrewRadius
	c.screw.Move(pivot.SubtractXY(screw, screw))
	c.screw.Resize(fyne.NewSize(screw*2, screw*2))
	border := side * raster.ScrewBorderRadius
	c.screwBorder.Move(pivot.SubtractXY(border, border))
	c.screwBorder.Resize(fyne.NewSize(border*2, border*2))

	textY := pivot.Y + radius*0.3
	if c.frame.Pivot == scale.PivotBottom {
		textY = pivot.Y - radius*0.6
	}
	c.displayText.TextSize = radius * common.OneFourth
	c.displayText.Move(fyne.NewPos(pivot.X, textY))
	c.unitText.TextSize = radius * common.OneEight
	c.unitText.Move(fyne.NewPos(pivot.X, textY+c.displayText.TextSize))

	c.titleText.TextSize = radius * common.OneSixth
	c.titleText.Move(fyne.NewPos(pivot.X, float32(l.OY)))

	c.applyNeedle()
	for _, o := range c.Objects() {
		canvas.Refresh(o)
	}
}

func (c *DialRenderer) MinSize() fyne.Size { return c.minsize }

func (c *DialRenderer) Refresh() {
	c.updateFrame()
	c.refreshObjects()
}

func (c *DialRenderer) Destroy() { c.Stop() }

func (c *DialRenderer) Objects() []fyne.CanvasObject {
	if c.objects == nil {
		c.objects = []fyne.CanvasObject{
			c.background, c.titleText, c.shadow, c.needle,
			c.screw, c.screwBorder, c.displayText, c.unitText,
		}
	}
	return c.objects
}

// Subscribe feeds the dial from its configured topic. Values arrive on the
// bus goroutine and are handed to the fyne main goroutine.
func Subscribe(bus *eventbus.Controller, c *Dial) (cancel func()) {
	return bus.SubscribeFunc(c.cfg.Topic, func(v float64) {
		fyne.Do(func() {
			c.SetValue(v)
		})
	})
}
