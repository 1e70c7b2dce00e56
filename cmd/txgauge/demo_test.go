package main

import (
	"testing"

	"github.com/roffe/txgauge/pkg/config"
)

func TestDemoWaves(t *testing.T) {
	waves := demoWaves(config.Default())

	got := make(map[string]bool)
	for _, w := range waves {
		if got[w.Topic] {
			t.Errorf("topic %s generated twice", w.Topic)
		}
		got[w.Topic] = true
		if w.Period <= 0 {
			t.Errorf("%s: period %v", w.Topic, w.Period)
		}
	}
	for _, topic := range []string{"load", "boost.kpa", "air.actual", "air.request", "lambda"} {
		if !got[topic] {
			t.Errorf("no wave for %s", topic)
		}
	}
	for _, derived := range []string{"boost", "air.diff"} {
		if got[derived] {
			t.Errorf("derived topic %s should not get its own wave", derived)
		}
	}
}

func TestDemoWavesScaleInverse(t *testing.T) {
	f, err := config.Parse([]byte(`
aggregators:
  - {type: scale, input: raw, output: pct, factor: 0.5, offset: 10}
gauges:
  - name: pct
    scale: {startValue: 10, endValue: 60}
`))
	if err != nil {
		t.Fatal(err)
	}
	waves := demoWaves(f)
	if len(waves) != 1 || waves[0].Topic != "raw" {
		t.Fatalf("waves = %+v", waves)
	}
	if waves[0].Min != 0 || waves[0].Max != 100 {
		t.Errorf("range = [%v, %v], want [0, 100]", waves[0].Min, waves[0].Max)
	}
}
