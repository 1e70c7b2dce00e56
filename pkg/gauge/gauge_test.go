package gauge

import (
	"errors"
	"image/color"
	"math"
	"testing"
	"time"

	"github.com/roffe/txgauge/pkg/colors"
	"github.com/roffe/txgauge/pkg/common"
	"github.com/roffe/txgauge/pkg/motion"
	"github.com/roffe/txgauge/pkg/scale"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) time.Time {
	c.now = c.now.Add(d)
	return c.now
}

func newClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 12, 7, 11, 2, 53, 0, time.UTC)}
}

func settle(t *testing.T, g *Gauge, clk *fakeClock) {
	t.Helper()
	for i := 0; g.Tick(clk.Advance(16 * time.Millisecond)); i++ {
		if i > 1000 {
			t.Fatalf("gauge did not settle, current=%v", g.CurrentValue())
		}
	}
}

func TestNewRejectsBadConfig(t *testing.T) {
	nan := math.NaN()
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero value span", func(c *Config) { c.Scale.EndValue = c.Scale.StartValue }},
		{"zero angle span", func(c *Config) { c.Scale.EndAngle = c.Scale.StartAngle }},
		{"nan neutral", func(c *Config) { c.Neutral = &nan }},
		{"zero needle width", func(c *Config) { c.NeedleWidth = 0 }},
		{"ranges missing", func(c *Config) { c.Ranges = nil }},
		{"negative duration", func(c *Config) { c.AnimationDuration = -time.Second }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if _, err := New(cfg); !errors.Is(err, common.ErrConfiguration) {
				t.Fatalf("New() error = %v, want ErrConfiguration", err)
			}
		})
	}
}

func TestGaugeColorScenario(t *testing.T) {
	clk := newClock()
	cfg := DefaultConfig()
	cfg.Scale = scale.Config{StartValue: 0, EndValue: 100, StartAngle: 30, EndAngle: 330, Divisions: 10, Subdivisions: 5}
	g, err := New(cfg, WithClock(clk.Now))
	if err != nil {
		t.Fatal(err)
	}
	s := cfg.Stops

	tests := []struct {
		value     float64
		wantLight color.RGBA
		wantDark  color.RGBA
	}{
		{16, s.NegativeLight, s.NegativeDark},
		{50, s.NeutralLight, s.NeutralDark},
		{90, s.PositiveLight, s.PositiveDark},
	}
	for _, tt := range tests {
		if err := g.SetTargetValue(tt.value); err != nil {
			t.Fatal(err)
		}
		settle(t, g, clk)
		f, err := g.Frame()
		if err != nil {
			t.Fatalf("Frame() failed: %v", err)
		}
		if f.Value != tt.value {
			t.Fatalf("Frame().Value = %v, want %v", f.Value, tt.value)
		}
		if f.Light != tt.wantLight || f.Dark != tt.wantDark {
			t.Errorf("value %v: colours %v/%v, want %v/%v", tt.value, f.Light, f.Dark, tt.wantLight, tt.wantDark)
		}
		if f.Angle != g.Mapper().AngleForValue(tt.value) {
			t.Errorf("value %v: angle %v, want %v", tt.value, f.Angle, g.Mapper().AngleForValue(tt.value))
		}
	}
}

func TestGaugeDrivenImmediate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Motion = motion.KindDriven
	invalidated := 0
	g, err := New(cfg, WithInvalidate(func() { invalidated++ }))
	if err != nil {
		t.Fatal(err)
	}
	if g.Initialized() {
		t.Fatal("fresh gauge is initialized")
	}
	if err := g.SetCurrentValue(37.5); err != nil {
		t.Fatal(err)
	}
	if g.CurrentValue() != 37.5 || !g.Initialized() {
		t.Errorf("current=%v initialized=%v", g.CurrentValue(), g.Initialized())
	}
	if invalidated != 1 {
		t.Errorf("invalidated %d times, want 1", invalidated)
	}
	f, err := g.Frame()
	if err != nil {
		t.Fatal(err)
	}
	if f.Angle != g.Mapper().AngleForValue(37.5) {
		t.Errorf("angle = %v, want %v", f.Angle, g.Mapper().AngleForValue(37.5))
	}
	if f.Pivot != scale.PivotBottom || f.PivotY != 1 {
		t.Errorf("driven gauge pivot = %v (%v,%v)", f.Pivot, f.PivotX, f.PivotY)
	}
	if f.Text != "38" {
		t.Errorf("Text = %q, want 38", f.Text)
	}
}

func TestGaugeAnimateTargetValue(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Motion = motion.KindDriven
	g, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	from, to, err := g.AnimateTargetValue(80)
	if err != nil {
		t.Fatal(err)
	}
	if from != 50 || to != 80 {
		t.Errorf("AnimateTargetValue() = %v..%v, want 50..80", from, to)
	}
	// host samples the curve
	for _, p := range []float64{0, 0.25, 0.5, 1} {
		if err := g.SetCurrentValue(from + (to-from)*p); err != nil {
			t.Fatal(err)
		}
	}
	if g.CurrentValue() != 80 || g.PendingTarget() != 80 {
		t.Errorf("current=%v pending=%v", g.CurrentValue(), g.PendingTarget())
	}
}

func TestGaugeTargetValueReturnsCurrent(t *testing.T) {
	clk := newClock()
	g, err := New(DefaultConfig(), WithClock(clk.Now))
	if err != nil {
		t.Fatal(err)
	}
	if err := g.SetTargetValue(90); err != nil {
		t.Fatal(err)
	}
	if g.TargetValue() != 50 {
		t.Errorf("TargetValue() = %v, want the current value 50", g.TargetValue())
	}
	if g.PendingTarget() != 90 {
		t.Errorf("PendingTarget() = %v, want 90", g.PendingTarget())
	}
}

func TestGaugeKinematicRejectsSetCurrentValue(t *testing.T) {
	g, err := New(DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if err := g.SetCurrentValue(10); !errors.Is(err, common.ErrUnsupported) {
		t.Fatalf("SetCurrentValue() error = %v, want ErrUnsupported", err)
	}
	from, to, err := g.AnimateTargetValue(70)
	if err != nil || from != 50 || to != 70 || !g.Animating() {
		t.Errorf("AnimateTargetValue() = %v, %v, %v animating=%v", from, to, err, g.Animating())
	}
}

func TestGaugeRejectsNaN(t *testing.T) {
	invalidated := 0
	g, err := New(DefaultConfig(), WithInvalidate(func() { invalidated++ }))
	if err != nil {
		t.Fatal(err)
	}
	if err := g.SetTargetValue(math.NaN()); !errors.Is(err, common.ErrInvalidValue) {
		t.Fatalf("SetTargetValue(NaN) error = %v", err)
	}
	if invalidated != 0 || g.Initialized() {
		t.Error("rejected value requested a redraw")
	}
}

func TestGaugeInvalidateOnTick(t *testing.T) {
	clk := newClock()
	invalidated := 0
	g, err := New(DefaultConfig(), WithClock(clk.Now), WithInvalidate(func() { invalidated++ }))
	if err != nil {
		t.Fatal(err)
	}
	if err := g.SetTargetValue(60); err != nil {
		t.Fatal(err)
	}
	ticks := 0
	for g.Tick(clk.Advance(16 * time.Millisecond)) {
		ticks++
	}
	// one for SetTargetValue, one per tick asking for more
	if invalidated != ticks+1 {
		t.Errorf("invalidated %d times for %d ticks", invalidated, ticks)
	}
}

func TestGaugeNeedleHiddenUntilInitialized(t *testing.T) {
	clk := newClock()
	g, err := New(DefaultConfig(), WithClock(clk.Now))
	if err != nil {
		t.Fatal(err)
	}
	f, err := g.Frame()
	if err != nil {
		t.Fatal(err)
	}
	if f.ShowNeedle {
		t.Error("needle shown before the first target")
	}
	g.SetTargetValue(50)
	if f, _ = g.Frame(); !f.ShowNeedle {
		t.Error("needle hidden after the first target")
	}
}

func TestGaugeGradientOutOfRange(t *testing.T) {
	clk := newClock()
	cfg := DefaultConfig()
	cfg.UseGradient = true
	cfg.ClampToRange = false
	g, err := New(cfg, WithClock(clk.Now))
	if err != nil {
		t.Fatal(err)
	}
	g.SetTargetValue(120)
	settle(t, g, clk)
	if _, err := g.Frame(); !errors.Is(err, common.ErrOutOfRange) {
		t.Fatalf("Frame() error = %v, want ErrOutOfRange", err)
	}
}

func TestGaugeSnapshotRestore(t *testing.T) {
	clk := newClock()
	a, err := New(DefaultConfig(), WithClock(clk.Now))
	if err != nil {
		t.Fatal(err)
	}
	a.SetTargetValue(20)
	for i := 0; i < 3; i++ {
		a.Tick(clk.Advance(16 * time.Millisecond))
	}
	snap := a.Snapshot()

	b, err := New(DefaultConfig(), WithClock(clk.Now))
	if err != nil {
		t.Fatal(err)
	}
	if err := b.Restore(snap); err != nil {
		t.Fatal(err)
	}
	if !b.Animating() || b.CurrentValue() != a.CurrentValue() {
		t.Fatalf("restored current=%v animating=%v", b.CurrentValue(), b.Animating())
	}
	b.Tick(clk.now.Add(time.Hour))
	if b.CurrentValue() != a.CurrentValue() {
		t.Error("first tick after restore integrated")
	}
}

func TestGaugeTicks(t *testing.T) {
	cfg := DefaultConfig()
	g, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	f, _ := g.Frame()
	if len(f.Ticks) != 51 {
		t.Fatalf("len(Ticks) = %d, want 51", len(f.Ticks))
	}
	if f.Ticks[0].Color != colors.DefaultRangeColors[0] || f.Ticks[50].Color != colors.DefaultRangeColors[3] {
		t.Errorf("tick colours do not follow ranges: %v .. %v", f.Ticks[0].Color, f.Ticks[50].Color)
	}

	cfg = DefaultConfig()
	cfg.ShowRanges = false
	g, _ = New(cfg)
	if f, _ := g.Frame(); f.Ticks != nil {
		t.Error("ticks produced with scale and ranges hidden")
	}
}
