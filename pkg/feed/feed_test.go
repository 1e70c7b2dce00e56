package feed

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/roffe/txgauge/pkg/common"
	"github.com/roffe/txgauge/pkg/eventbus"
)

type recorder struct {
	mu       sync.Mutex
	failures int
	err      error
	got      []eventbus.Message
}

func (r *recorder) Publish(topic string, v float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	if r.failures > 0 {
		r.failures--
		return errors.New(topic + ": publish channel full")
	}
	r.got = append(r.got, eventbus.Message{Topic: topic, Value: v})
	return nil
}

func (r *recorder) messages() []eventbus.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]eventbus.Message(nil), r.got...)
}

func TestParseLine(t *testing.T) {
	tests := []struct {
		line    string
		topic   string
		value   float64
		wantErr bool
	}{
		{line: "rpm=3000", topic: "rpm", value: 3000},
		{line: "  boost = 1.25 ", topic: "boost", value: 1.25},
		{line: "lambda 0.98", topic: "lambda", value: 0.98},
		{line: ""},
		{line: "# comment"},
		{line: "   \t "},
		{line: "#rpm=1"},
		{line: "rpm=fast", wantErr: true},
		{line: "=12", wantErr: true},
		{line: "rpm", wantErr: true},
		{line: "a b c", wantErr: true},
		{line: "rpm=NaN", wantErr: true},
		{line: "rpm=+Inf", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			topic, v, err := ParseLine(tt.line)
			if tt.wantErr {
				if !errors.Is(err, common.ErrInvalidValue) {
					t.Fatalf("ParseLine() error = %v, want ErrInvalidValue", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseLine() failed: %v", err)
			}
			if topic != tt.topic || v != tt.value {
				t.Errorf("ParseLine() = %q, %v, want %q, %v", topic, v, tt.topic, tt.value)
			}
		})
	}
}

func TestPublishRetries(t *testing.T) {
	r := &recorder{failures: 2}
	if err := Publish(context.Background(), r, "rpm", 900); err != nil {
		t.Fatalf("Publish() failed: %v", err)
	}
	if got := r.messages(); len(got) != 1 || got[0].Value != 900 {
		t.Errorf("published %v", got)
	}

	r = &recorder{failures: 10}
	if err := Publish(context.Background(), r, "rpm", 900); err == nil {
		t.Error("Publish() succeeded on a bus that stays full")
	}
}

func TestPublishUnrecoverable(t *testing.T) {
	r := &recorder{err: eventbus.ErrClosed}
	start := time.Now()
	err := Publish(context.Background(), r, "rpm", 1)
	if !errors.Is(err, eventbus.ErrClosed) {
		t.Fatalf("Publish() error = %v, want ErrClosed", err)
	}
	if time.Since(start) >= RetryDelay {
		t.Error("closed bus was retried")
	}
}

func TestReadLines(t *testing.T) {
	in := strings.NewReader("rpm=1000\n# skip\nbad line here\nboost 1.5\n\nrpm=1100\n")
	r := &recorder{}
	if err := ReadLines(context.Background(), in, r); err != nil {
		t.Fatal(err)
	}
	want := []eventbus.Message{{Topic: "rpm", Value: 1000}, {Topic: "boost", Value: 1.5}, {Topic: "rpm", Value: 1100}}
	got := r.messages()
	if len(got) != len(want) {
		t.Fatalf("published %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("message %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestReadLinesStopsOnClosedBus(t *testing.T) {
	r := &recorder{err: eventbus.ErrClosed}
	err := ReadLines(context.Background(), strings.NewReader("rpm=1\nrpm=2\n"), r)
	if !errors.Is(err, eventbus.ErrClosed) {
		t.Errorf("ReadLines() error = %v, want ErrClosed", err)
	}
}

func TestWaveValue(t *testing.T) {
	w := Wave{Topic: "rpm", Min: 800, Max: 6000, Period: 4 * time.Second}
	for i := 0; i < 400; i++ {
		v := w.Value(time.Duration(i) * 10 * time.Millisecond)
		if v < w.Min || v > w.Max {
			t.Fatalf("Value(%d0ms) = %v outside [%v,%v]", i, v, w.Min, w.Max)
		}
	}
}

func TestRunDemo(t *testing.T) {
	r := &recorder{}
	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()
	err := RunDemo(ctx, r, 100, Wave{Topic: "a", Max: 1}, Wave{Topic: "b", Max: 2})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("RunDemo() error = %v", err)
	}
	got := r.messages()
	if len(got) < 2 {
		t.Fatalf("RunDemo() published %d values", len(got))
	}
	if got[0].Topic != "a" || got[1].Topic != "b" {
		t.Errorf("first round = %v", got[:2])
	}
}

func TestFormatLinesReadBack(t *testing.T) {
	values := map[string]float64{"rpm": 3000, "boost": 1.25, "air.diff": -80.5}
	text := FormatLines(values)
	if want := "air.diff=-80.5\nboost=1.25\nrpm=3000\n"; text != want {
		t.Fatalf("FormatLines() = %q, want %q", text, want)
	}

	r := &recorder{}
	if err := ReadLines(context.Background(), strings.NewReader(text), r); err != nil {
		t.Fatal(err)
	}
	got := r.messages()
	if len(got) != len(values) {
		t.Fatalf("read back %d values, want %d", len(got), len(values))
	}
	for _, m := range got {
		if values[m.Topic] != m.Value {
			t.Errorf("%s = %v, want %v", m.Topic, m.Value, values[m.Topic])
		}
	}
}
