package eventbus_test

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/roffe/txgauge/pkg/common"
	"github.com/roffe/txgauge/pkg/eventbus"
)

func receive(t *testing.T, ch <-chan float64) float64 {
	t.Helper()
	select {
	case v, ok := <-ch:
		if !ok {
			t.Fatal("channel closed")
		}
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for value")
	}
	return 0
}

func TestPublish(t *testing.T) {
	tests := []struct {
		name    string
		topic   string
		data    float64
		wantErr error
	}{
		{name: "finite", topic: "boost", data: 1.23},
		{name: "nan", topic: "boost", data: math.NaN(), wantErr: common.ErrInvalidValue},
		{name: "inf", topic: "boost", data: math.Inf(-1), wantErr: common.ErrInvalidValue},
	}
	bus := eventbus.New(nil)
	defer bus.Close()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := bus.Publish(tt.topic, tt.data)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Publish() failed: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Publish() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestSubscribe(t *testing.T) {
	bus := eventbus.New(nil)
	defer bus.Close()

	ch := bus.Subscribe("rpm")
	if err := bus.Publish("rpm", 3.14); err != nil {
		t.Fatal(err)
	}
	if v := receive(t, ch); v != 3.14 {
		t.Errorf("Subscribe() got %v, want 3.14", v)
	}
	bus.Unsubscribe(ch)
	// unsubscribe closes the channel
	select {
	case _, ok := <-ch:
		if ok {
			t.Error("received value after unsubscribe")
		}
	case <-time.After(2 * time.Second):
		t.Error("channel not closed after unsubscribe")
	}
}

func TestSubscribeCachedValue(t *testing.T) {
	bus := eventbus.New(nil)
	defer bus.Close()

	if err := bus.Publish("lambda", 0.98); err != nil {
		t.Fatal(err)
	}
	first := bus.Subscribe("lambda")
	receive(t, first)

	late := bus.Subscribe("lambda")
	if v := receive(t, late); v != 0.98 {
		t.Errorf("late subscriber got %v, want cached 0.98", v)
	}
	if got := bus.Values()["lambda"]; got != 0.98 {
		t.Errorf("Values()[lambda] = %v", got)
	}
}

func TestSubscribeFunc(t *testing.T) {
	bus := eventbus.New(nil)
	defer bus.Close()

	got := make(chan float64, 1)
	cancel := bus.SubscribeFunc("iat", func(v float64) { got <- v })
	defer cancel()
	if err := bus.Publish("iat", 21.5); err != nil {
		t.Fatal(err)
	}
	if v := receive(t, got); v != 21.5 {
		t.Errorf("SubscribeFunc() got %v, want 21.5", v)
	}
	cancel()
}

func TestAggregators(t *testing.T) {
	tests := []struct {
		name   string
		agg    *eventbus.EventAggregator
		inputs []eventbus.Message
		want   float64
	}{
		{
			name: "diff",
			agg:  eventbus.DIFFAggregator("air.actual", "air.request", "air.diff"),
			inputs: []eventbus.Message{
				{Topic: "air.actual", Value: 400},
				{Topic: "air.request", Value: 450},
			},
			want: 50,
		},
		{
			name:   "scale",
			agg:    eventbus.ScaleAggregator("boost.kpa", "air.diff", 0.01, -1),
			inputs: []eventbus.Message{{Topic: "boost.kpa", Value: 250}},
			want:   1.5,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bus := eventbus.New(nil)
			defer bus.Close()
			bus.RegisterAggregator(tt.agg)
			out := bus.Subscribe("air.diff")
			for _, in := range tt.inputs {
				if err := bus.Publish(in.Topic, in.Value); err != nil {
					t.Fatal(err)
				}
			}
			if v := receive(t, out); math.Abs(v-tt.want) > 1e-9 {
				t.Errorf("aggregated value = %v, want %v", v, tt.want)
			}
		})
	}
}

func TestClose(t *testing.T) {
	bus := eventbus.New(nil)
	ch := bus.Subscribe("rpm")
	bus.Close()
	bus.Close()
	if _, ok := <-ch; ok {
		t.Error("subscriber channel still open after Close")
	}
	if err := bus.Publish("rpm", 1); !errors.Is(err, eventbus.ErrClosed) {
		t.Errorf("Publish() after Close error = %v, want ErrClosed", err)
	}
}

func TestClearAggregators(t *testing.T) {
	bus := eventbus.New(nil)
	defer bus.Close()
	bus.RegisterAggregator(eventbus.ScaleAggregator("raw", "scaled", 2, 0))
	bus.ClearAggregators()

	raw := bus.Subscribe("raw")
	scaled := bus.Subscribe("scaled")
	if err := bus.Publish("raw", 3); err != nil {
		t.Fatal(err)
	}
	receive(t, raw)
	if _, ok := bus.Values()["scaled"]; ok {
		t.Error("cleared aggregator still published")
	}
	select {
	case v := <-scaled:
		t.Errorf("received %v from a cleared aggregator", v)
	default:
	}
}

func TestDroppedWhenSubscriberFull(t *testing.T) {
	bus := eventbus.New(&eventbus.Config{
		IncomingBuffer:    10,
		UnsubscribeBuffer: 1,
		ChannelBuffer:     1,
		CacheTTL:          time.Minute,
	})
	defer bus.Close()

	ch := bus.Subscribe("rpm")
	for _, v := range []float64{800, 900, 1000} {
		if err := bus.Publish("rpm", v); err != nil {
			t.Fatal(err)
		}
	}
	deadline := time.Now().Add(time.Second)
	for bus.Dropped() < 2 {
		if time.Now().After(deadline) {
			t.Fatalf("Dropped() = %d, want 2", bus.Dropped())
		}
		time.Sleep(time.Millisecond)
	}
	if got := receive(t, ch); got != 800 {
		t.Errorf("first value = %v, want 800", got)
	}
}

func TestSubscribeAfterClose(t *testing.T) {
	bus := eventbus.New(nil)
	bus.Close()

	for i := 0; i < 50; i++ {
		ch := bus.Subscribe("rpm")
		select {
		case _, ok := <-ch:
			if ok {
				t.Fatalf("subscription %d received a value after Close", i)
			}
		case <-time.After(time.Second):
			t.Fatalf("subscription %d was not closed", i)
		}
	}
}

func TestSubscribeRacingClose(t *testing.T) {
	for i := 0; i < 20; i++ {
		bus := eventbus.New(nil)
		chans := make(chan chan float64, 10)
		go func() {
			defer close(chans)
			for j := 0; j < 10; j++ {
				chans <- bus.Subscribe("rpm")
			}
		}()
		bus.Close()
		for ch := range chans {
			deadline := time.After(time.Second)
		drain:
			for {
				select {
				case _, ok := <-ch:
					if !ok {
						break drain
					}
				case <-deadline:
					t.Fatal("subscriber channel left open after Close")
				}
			}
		}
	}
}
