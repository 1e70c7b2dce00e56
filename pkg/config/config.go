// Package config loads gauge dashboards from YAML.
package config

import (
	_ "embed"
	"fmt"
	"image/color"
	"os"
	"time"

	"github.com/roffe/txgauge/pkg/alarm"
	"github.com/roffe/txgauge/pkg/colors"
	"github.com/roffe/txgauge/pkg/common"
	"github.com/roffe/txgauge/pkg/eventbus"
	"github.com/roffe/txgauge/pkg/gauge"
	"github.com/roffe/txgauge/pkg/motion"
	"github.com/roffe/txgauge/pkg/scale"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

// File is the top level of a dashboard file.
type File struct {
	Title   string `yaml:"title"`
	Columns int    `yaml:"columns"`
	// AlarmSound is an mp3 played by alarms; empty uses a beep.
	AlarmSound  string             `yaml:"alarmSound"`
	Aggregators []AggregatorConfig `yaml:"aggregators"`
	Gauges      []GaugeConfig      `yaml:"gauges"`
}

// AggregatorConfig derives a topic from other topics. Type is "diff"
// (second-first) or "scale" (input*factor+offset).
type AggregatorConfig struct {
	Type   string  `yaml:"type"`
	First  string  `yaml:"first"`
	Second string  `yaml:"second"`
	Input  string  `yaml:"input"`
	Output string  `yaml:"output"`
	Factor float64 `yaml:"factor"`
	Offset float64 `yaml:"offset"`
}

type GaugeConfig struct {
	Name          string        `yaml:"name"`
	Title         string        `yaml:"title"`
	Topic         string        `yaml:"topic"`
	Unit          string        `yaml:"unit"`
	DisplayString string        `yaml:"displayString"`
	Scale         scale.Config  `yaml:"scale"`
	Motion        motion.Kind   `yaml:"motion"`
	ClampToRange  *bool         `yaml:"clampToRange"`
	Neutral       *float64      `yaml:"neutral"`
	UseGradient   bool          `yaml:"useGradient"`
	ColorMode     string        `yaml:"colorMode"`
	Stops         *StopsConfig  `yaml:"stops"`
	Ranges        *RangesConfig `yaml:"ranges"`
	Needle        NeedleConfig  `yaml:"needle"`
	Show          ShowConfig    `yaml:"show"`
	Alarm         *AlarmConfig  `yaml:"alarm"`

	AnimationDuration time.Duration `yaml:"animationDuration"`
}

// UnmarshalYAML starts from the default scale so a partial scale block
// only overrides the keys it names.
func (g *GaugeConfig) UnmarshalYAML(value *yaml.Node) error {
	type plain GaugeConfig
	p := plain{Scale: scale.DefaultConfig()}
	if err := value.Decode(&p); err != nil {
		return err
	}
	*g = GaugeConfig(p)
	return nil
}

// StopsConfig overrides single colour stops with hex strings.
type StopsConfig struct {
	NegativeDark  string `yaml:"negativeDark"`
	NegativeLight string `yaml:"negativeLight"`
	NeutralDark   string `yaml:"neutralDark"`
	NeutralLight  string `yaml:"neutralLight"`
	PositiveDark  string `yaml:"positiveDark"`
	PositiveLight string `yaml:"positiveLight"`
}

type RangesConfig struct {
	Values []float64 `yaml:"values"`
	Colors []string  `yaml:"colors"`
}

type NeedleConfig struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
	Color  string  `yaml:"color"`
}

type AlarmConfig struct {
	Above      *float64 `yaml:"above"`
	Below      *float64 `yaml:"below"`
	Hysteresis float64  `yaml:"hysteresis"`
}

// ShowConfig toggles gauge parts; unset fields keep the gauge defaults.
type ShowConfig struct {
	Needle *bool `yaml:"needle"`
	Scale  *bool `yaml:"scale"`
	Ranges *bool `yaml:"ranges"`
	Text   *bool `yaml:"text"`
}

// Load reads and validates a dashboard file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read gauge config: %w", err)
	}
	return Parse(data)
}

// Default returns the built-in demo dashboard.
func Default() *File {
	f, err := Parse(defaultYAML)
	if err != nil {
		panic(err)
	}
	return f
}

func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse gauge config: %w", err)
	}
	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("invalid gauge config: %w", err)
	}
	return &f, nil
}

func (f *File) Validate() error {
	if len(f.Gauges) == 0 {
		return fmt.Errorf("%w: no gauges defined", common.ErrConfiguration)
	}
	if f.Columns < 0 {
		return fmt.Errorf("%w: columns must not be negative", common.ErrConfiguration)
	}
	seen := make(map[string]bool, len(f.Gauges))
	for i := range f.Gauges {
		g := &f.Gauges[i]
		if g.Name == "" {
			return fmt.Errorf("%w: gauge %d has no name", common.ErrConfiguration, i)
		}
		if seen[g.Name] {
			return fmt.Errorf("%w: duplicate gauge name %q", common.ErrConfiguration, g.Name)
		}
		seen[g.Name] = true
		if _, err := g.Build(); err != nil {
			return err
		}
		if g.Alarm != nil {
			if err := g.alarmRule().Validate(); err != nil {
				return err
			}
		}
	}
	for i, a := range f.Aggregators {
		if _, err := a.Build(); err != nil {
			return fmt.Errorf("aggregator %d: %w", i, err)
		}
	}
	return nil
}

// GaugeConfigs builds a gauge.Config per entry, in file order.
func (f *File) GaugeConfigs() ([]*gauge.Config, error) {
	out := make([]*gauge.Config, 0, len(f.Gauges))
	for i := range f.Gauges {
		cfg, err := f.Gauges[i].Build()
		if err != nil {
			return nil, err
		}
		out = append(out, cfg)
	}
	return out, nil
}

// AlarmRules lists the alarm of every gauge that has one.
func (f *File) AlarmRules() []alarm.Rule {
	var out []alarm.Rule
	for i := range f.Gauges {
		if f.Gauges[i].Alarm != nil {
			out = append(out, f.Gauges[i].alarmRule())
		}
	}
	return out
}

func (g *GaugeConfig) alarmRule() alarm.Rule {
	topic := g.Topic
	if topic == "" {
		topic = g.Name
	}
	return alarm.Rule{
		Name:       g.Name,
		Topic:      topic,
		Above:      g.Alarm.Above,
		Below:      g.Alarm.Below,
		Hysteresis: g.Alarm.Hysteresis,
	}
}

// RegisterAggregators adds every configured aggregator to bus.
func (f *File) RegisterAggregators(bus *eventbus.Controller) error {
	for i, a := range f.Aggregators {
		agg, err := a.Build()
		if err != nil {
			return fmt.Errorf("aggregator %d: %w", i, err)
		}
		bus.RegisterAggregator(agg)
	}
	return nil
}

func (a AggregatorConfig) Build() (*eventbus.EventAggregator, error) {
	if a.Output == "" {
		return nil, fmt.Errorf("%w: aggregator without output topic", common.ErrConfiguration)
	}
	switch a.Type {
	case "diff":
		if a.First == "" || a.Second == "" {
			return nil, fmt.Errorf("%w: diff aggregator needs first and second", common.ErrConfiguration)
		}
		return eventbus.DIFFAggregator(a.First, a.Second, a.Output), nil
	case "scale":
		if a.Input == "" {
			return nil, fmt.Errorf("%w: scale aggregator needs input", common.ErrConfiguration)
		}
		if !common.Finite(a.Factor) || !common.Finite(a.Offset) {
			return nil, fmt.Errorf("%w: scale aggregator factor and offset must be finite", common.ErrConfiguration)
		}
		return eventbus.ScaleAggregator(a.Input, a.Output, a.Factor, a.Offset), nil
	}
	return nil, fmt.Errorf("%w: unknown aggregator type %q", common.ErrConfiguration, a.Type)
}

// Build converts the entry into a validated gauge.Config, filling unset
// fields from gauge.DefaultConfig.
func (g *GaugeConfig) Build() (*gauge.Config, error) {
	cfg := gauge.DefaultConfig()
	cfg.Name = g.Name
	cfg.Title = g.Title
	cfg.Topic = g.Topic
	cfg.Unit = g.Unit
	if g.Topic == "" {
		cfg.Topic = g.Name
	}
	if g.DisplayString != "" {
		if common.ParseFixedPrec(g.DisplayString) < 0 {
			return nil, fmt.Errorf("gauge %q: %w: unsupported displayString %q", g.Name, common.ErrConfiguration, g.DisplayString)
		}
		cfg.DisplayString = g.DisplayString
	}
	cfg.Scale = g.Scale
	cfg.Motion = g.Motion
	if g.ClampToRange != nil {
		cfg.ClampToRange = *g.ClampToRange
	}
	cfg.Neutral = g.Neutral
	cfg.UseGradient = g.UseGradient
	mode, err := colors.ParseColorBlindMode(g.ColorMode)
	if err != nil {
		return nil, fmt.Errorf("gauge %q: %w", g.Name, err)
	}
	cfg.ColorMode = mode
	cfg.Stops = colors.StopsFor(cfg.ColorMode)

	if err := g.Stops.apply(&cfg.Stops); err != nil {
		return nil, fmt.Errorf("gauge %q: %w", g.Name, err)
	}
	if g.Ranges != nil {
		r, err := colors.ParseRanges(g.Ranges.Values, g.Ranges.Colors)
		if err != nil {
			return nil, fmt.Errorf("gauge %q: %w", g.Name, err)
		}
		cfg.Ranges = r
	}

	if g.Needle.Width != 0 {
		cfg.NeedleWidth = g.Needle.Width
	}
	if g.Needle.Height != 0 {
		cfg.NeedleHeight = g.Needle.Height
	}
	if g.Needle.Color != "" {
		c, err := colors.ParseHex(g.Needle.Color)
		if err != nil {
			return nil, fmt.Errorf("gauge %q: needle: %w", g.Name, err)
		}
		cfg.NeedleColor = c
	}

	setBool(&cfg.ShowNeedle, g.Show.Needle)
	setBool(&cfg.ShowScale, g.Show.Scale)
	setBool(&cfg.ShowRanges, g.Show.Ranges)
	setBool(&cfg.ShowText, g.Show.Text)

	if g.AnimationDuration != 0 {
		cfg.AnimationDuration = g.AnimationDuration
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("gauge %q: %w", g.Name, err)
	}
	return cfg, nil
}

func (s *StopsConfig) apply(dst *colors.Stops) error {
	if s == nil {
		return nil
	}
	for _, f := range []struct {
		hex string
		dst *color.RGBA
	}{
		{s.NegativeDark, &dst.NegativeDark},
		{s.NegativeLight, &dst.NegativeLight},
		{s.NeutralDark, &dst.NeutralDark},
		{s.NeutralLight, &dst.NeutralLight},
		{s.PositiveDark, &dst.PositiveDark},
		{s.PositiveLight, &dst.PositiveLight},
	} {
		if f.hex == "" {
			continue
		}
		c, err := colors.ParseHex(f.hex)
		if err != nil {
			return fmt.Errorf("stops: %w", err)
		}
		*f.dst = c
	}
	return nil
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}
