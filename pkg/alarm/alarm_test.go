package alarm

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/roffe/txgauge/pkg/common"
)

type countingPlayer struct{ plays int }

func (p *countingPlayer) Play() error {
	p.plays++
	return nil
}

func ptr(v float64) *float64 { return &v }

func TestRuleValidate(t *testing.T) {
	tests := []struct {
		name string
		rule Rule
		ok   bool
	}{
		{"above", Rule{Name: "a", Above: ptr(1.8)}, true},
		{"band", Rule{Name: "a", Above: ptr(1.1), Below: ptr(0.8), Hysteresis: 0.02}, true},
		{"no bound", Rule{Name: "a"}, false},
		{"inverted", Rule{Name: "a", Above: ptr(0.8), Below: ptr(1.1)}, false},
		{"nan", Rule{Name: "a", Above: ptr(math.NaN())}, false},
		{"negative hysteresis", Rule{Name: "a", Above: ptr(1), Hysteresis: -1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rule.Validate()
			if tt.ok && err != nil {
				t.Errorf("Validate() failed: %v", err)
			}
			if !tt.ok && !errors.Is(err, common.ErrConfiguration) {
				t.Errorf("Validate() error = %v, want ErrConfiguration", err)
			}
		})
	}
}

func TestMonitorFiresOncePerExcursion(t *testing.T) {
	p := &countingPlayer{}
	m, err := NewMonitor(p, Rule{Name: "boost", Above: ptr(1.8), Hysteresis: 0.1})
	if err != nil {
		t.Fatal(err)
	}
	var alarms []float64
	m.OnAlarm = func(r Rule, v float64) { alarms = append(alarms, v) }

	steps := []struct {
		v      float64
		fired  bool
		active bool
	}{
		{1.0, false, false},
		{1.9, true, true},
		{2.1, false, true},
		{1.75, false, true}, // inside hysteresis
		{1.6, false, false},
		{1.85, true, true},
	}
	for i, s := range steps {
		fired, err := m.Check("boost", s.v)
		if err != nil {
			t.Fatal(err)
		}
		if fired != s.fired || m.Active("boost") != s.active {
			t.Errorf("step %d (%v): fired=%v active=%v, want %v %v", i, s.v, fired, m.Active("boost"), s.fired, s.active)
		}
	}
	if p.plays != 2 || len(alarms) != 2 {
		t.Errorf("played %d times, %d alarms, want 2", p.plays, len(alarms))
	}
}

func TestMonitorBelow(t *testing.T) {
	m, err := NewMonitor(nil, Rule{Name: "lambda", Above: ptr(1.2), Below: ptr(0.8)})
	if err != nil {
		t.Fatal(err)
	}
	if fired, _ := m.Check("lambda", 0.7); !fired {
		t.Error("value below the band did not fire")
	}
	if fired, _ := m.Check("lambda", 1.3); fired {
		t.Error("fired again without returning to the band")
	}
}

func TestMonitorErrors(t *testing.T) {
	if _, err := NewMonitor(nil, Rule{Name: "a", Above: ptr(1)}, Rule{Name: "a", Above: ptr(2)}); !errors.Is(err, common.ErrConfiguration) {
		t.Errorf("duplicate rule error = %v", err)
	}
	m, _ := NewMonitor(nil, Rule{Name: "a", Above: ptr(1)})
	if _, err := m.Check("b", 1); !errors.Is(err, common.ErrConfiguration) {
		t.Errorf("unknown rule error = %v", err)
	}
	if _, err := m.Check("a", math.Inf(1)); !errors.Is(err, common.ErrInvalidValue) {
		t.Errorf("Inf error = %v", err)
	}
}

func TestTone(t *testing.T) {
	s := Tone(880, 250*time.Millisecond)
	if got := len(s.pcm); got != SampleRate/4*ChannelCount*2 {
		t.Fatalf("pcm length = %d", got)
	}
	if d := s.Duration(); d != 250*time.Millisecond {
		t.Errorf("Duration() = %v", d)
	}
	// fade in starts silent
	if s.pcm[0] != 0 || s.pcm[1] != 0 {
		t.Errorf("first sample = %v, want silence", s.pcm[:2])
	}
}

func TestLoadMP3Missing(t *testing.T) {
	if _, err := LoadMP3(t.TempDir() + "/missing.mp3"); err == nil {
		t.Error("LoadMP3() of a missing file succeeded")
	}
}
