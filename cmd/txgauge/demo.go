package main

import (
	"time"

	"github.com/roffe/txgauge/pkg/config"
	"github.com/roffe/txgauge/pkg/feed"
)

// demoWaves generates a wave per gauge topic. Topics computed by an
// aggregator get waves on the aggregator inputs instead.
func demoWaves(f *config.File) []feed.Wave {
	derived := make(map[string]config.AggregatorConfig)
	for _, a := range f.Aggregators {
		derived[a.Output] = a
	}

	seen := make(map[string]bool)
	var waves []feed.Wave
	add := func(w feed.Wave) {
		if seen[w.Topic] {
			return
		}
		seen[w.Topic] = true
		w.Period = time.Duration(4+len(waves)*3) * time.Second
		w.Phase = float64(len(waves))
		waves = append(waves, w)
	}

	for _, g := range f.Gauges {
		topic := g.Topic
		if topic == "" {
			topic = g.Name
		}
		lo, hi := g.Scale.StartValue, g.Scale.EndValue
		a, ok := derived[topic]
		switch {
		case !ok:
			add(feed.Wave{Topic: topic, Min: lo, Max: hi})
		case a.Type == "scale" && a.Factor != 0:
			add(feed.Wave{Topic: a.Input, Min: (lo - a.Offset) / a.Factor, Max: (hi - a.Offset) / a.Factor})
		case a.Type == "diff":
			span := (hi - lo) / 2
			add(feed.Wave{Topic: a.First, Min: 2 * span, Max: 3 * span})
			add(feed.Wave{Topic: a.Second, Min: 2*span + lo/2, Max: 3*span + hi/2})
		}
	}
	return waves
}
