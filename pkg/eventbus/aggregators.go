package eventbus

import (
	"log"
	"sync/atomic"
)

type EventAggregatorFunc func(c Publisher, name string, value float64)

type Publisher interface {
	Publish(name string, value float64) error
}

// EventAggregator derives values for new topics from the topics it watches.
type EventAggregator struct {
	fun    EventAggregatorFunc
	topics []string
	failed atomic.Uint64
}

func (e *EventAggregator) GetTopics() []string {
	return e.topics
}

// Failed counts derived values the bus refused.
func (e *EventAggregator) Failed() uint64 {
	return e.failed.Load()
}

func (e *EventAggregator) publish(c Publisher, output string, value float64) bool {
	if err := c.Publish(output, value); err != nil {
		if e.failed.Add(1)%100 == 1 {
			log.Printf("aggregator %s: %v", output, err)
		}
		return false
	}
	return true
}

// DIFFAggregator publishes second-first on output once both inputs have
// reported since the last output.
func DIFFAggregator(first, second, output string) *EventAggregator {
	var firstUpdated, secondUpdated bool
	var firstValue, secondValue float64

	agg := &EventAggregator{topics: []string{first, second}}
	agg.fun = func(c Publisher, name string, value float64) {
		switch name {
		case first:
			firstValue = value
			firstUpdated = true
		case second:
			secondValue = value
			secondUpdated = true
		default:
			return
		}
		if firstUpdated && secondUpdated && agg.publish(c, output, secondValue-firstValue) {
			firstUpdated, secondUpdated = false, false
		}
	}
	return agg
}

// ScaleAggregator republishes input multiplied by factor plus offset, for
// unit conversions between a raw topic and a gauge topic.
func ScaleAggregator(input, output string, factor, offset float64) *EventAggregator {
	agg := &EventAggregator{topics: []string{input}}
	agg.fun = func(c Publisher, name string, value float64) {
		if name == input {
			agg.publish(c, output, value*factor+offset)
		}
	}
	return agg
}
