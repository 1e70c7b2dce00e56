package feed

import (
	"context"
	"errors"
	"log"
	"math"
	"time"

	"github.com/roffe/txgauge/pkg/eventbus"
)

// Wave is a demo signal oscillating between Min and Max.
type Wave struct {
	Topic    string
	Min, Max float64
	Period   time.Duration
	Phase    float64 // radians
}

// Value samples the wave at elapsed time t.
func (w Wave) Value(t time.Duration) float64 {
	period := w.Period
	if period <= 0 {
		period = 10 * time.Second
	}
	s := math.Sin(2*math.Pi*t.Seconds()/period.Seconds() + w.Phase)
	// the second harmonic keeps the needle from looking mechanical
	s = 0.8*s + 0.2*math.Sin(4*math.Pi*t.Seconds()/period.Seconds()+w.Phase*3)
	return w.Min + (w.Max-w.Min)*(s+1)/2
}

// RunDemo publishes every wave at rate samples per second until ctx is done.
func RunDemo(ctx context.Context, pub Publisher, rate int, waves ...Wave) error {
	if rate <= 0 {
		rate = 10
	}
	t := time.NewTicker(time.Second / time.Duration(rate))
	defer t.Stop()
	start := time.Now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-t.C:
			elapsed := now.Sub(start)
			for _, w := range waves {
				if err := Publish(ctx, pub, w.Topic, w.Value(elapsed)); err != nil {
					if errors.Is(err, eventbus.ErrClosed) || ctx.Err() != nil {
						return err
					}
					log.Printf("demo %s: %v", w.Topic, err)
				}
			}
		}
	}
}
