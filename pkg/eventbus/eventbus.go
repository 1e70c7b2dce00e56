// Package eventbus distributes named float64 values to gauge subscribers.
// The last value of each topic is cached so late subscribers start from it.
package eventbus

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"github.com/roffe/txgauge/pkg/common"
)

var (
	ErrClosed = errors.New("eventbus closed")
	ErrFull   = errors.New("eventbus publish queue full")
)

type Config struct {
	IncomingBuffer    int
	UnsubscribeBuffer int
	ChannelBuffer     int
	CacheTTL          time.Duration
}

var DefaultConfig = &Config{
	IncomingBuffer:    1000,
	UnsubscribeBuffer: 100,
	ChannelBuffer:     50,
	CacheTTL:          time.Minute,
}

type Message struct {
	Topic string
	Value float64
}

type subscription struct {
	topic string
	ch    chan float64
}

// Controller owns the topic table from a single goroutine. Publish,
// Subscribe and Unsubscribe only talk to it over channels.
type Controller struct {
	cfg *Config

	publish chan Message
	// unbuffered: a send only succeeds while loop is running
	attach chan subscription
	detach chan chan float64

	topics map[string][]chan float64
	last   *ttlcache.Cache[string, float64]

	aggMu       sync.RWMutex
	aggregators map[string][]*EventAggregator

	dropped atomic.Uint64
	hook    func(string, float64)

	stopOnce sync.Once
	stop     chan struct{}
	stopped  chan struct{}
}

func New(cfg *Config) *Controller {
	if cfg == nil {
		cfg = DefaultConfig
	}
	c := &Controller{
		cfg:         cfg,
		publish:     make(chan Message, cfg.IncomingBuffer),
		attach:      make(chan subscription),
		detach:      make(chan chan float64, cfg.UnsubscribeBuffer),
		topics:      make(map[string][]chan float64),
		last:        ttlcache.New[string, float64](ttlcache.WithTTL[string, float64](cfg.CacheTTL)),
		aggregators: make(map[string][]*EventAggregator),
		stop:        make(chan struct{}),
		stopped:     make(chan struct{}),
	}
	go c.loop()
	return c
}

// SetOnMessage installs a hook called for every message before delivery.
// It must be set before the first Publish.
func (c *Controller) SetOnMessage(f func(string, float64)) {
	c.hook = f
}

// Dropped counts values discarded because a subscriber channel was full.
func (c *Controller) Dropped() uint64 {
	return c.dropped.Load()
}

func (c *Controller) loop() {
	defer close(c.stopped)
	for {
		select {
		case <-c.stop:
			c.shutdown()
			return
		case msg := <-c.publish:
			if c.hook != nil {
				c.hook(msg.Topic, msg.Value)
			}
			c.deliver(msg)
		case s := <-c.attach:
			c.subscribe(s)
		case ch := <-c.detach:
			c.unsubscribe(ch)
		}
	}
}

func (c *Controller) deliver(msg Message) {
	c.last.Set(msg.Topic, msg.Value, ttlcache.DefaultTTL)
	for _, ch := range c.topics[msg.Topic] {
		c.offer(ch, msg.Topic, msg.Value)
	}

	c.aggMu.RLock()
	aggs := c.aggregators[msg.Topic]
	c.aggMu.RUnlock()
	for _, agg := range aggs {
		agg.fun(c, msg.Topic, msg.Value)
	}
}

func (c *Controller) offer(ch chan float64, topic string, v float64) {
	select {
	case ch <- v:
	default:
		if c.dropped.Add(1)%100 == 1 {
			log.Printf("subscriber channel full for topic %s", topic)
		}
	}
}

func (c *Controller) subscribe(s subscription) {
	c.topics[s.topic] = append(c.topics[s.topic], s.ch)
	if item := c.last.Get(s.topic); item != nil {
		c.offer(s.ch, s.topic, item.Value())
	}
}

func (c *Controller) unsubscribe(ch chan float64) {
	for topic, subs := range c.topics {
		for i, sub := range subs {
			if sub != ch {
				continue
			}
			subs = append(subs[:i], subs[i+1:]...)
			if len(subs) == 0 {
				delete(c.topics, topic)
			} else {
				c.topics[topic] = subs
			}
			close(ch)
			return
		}
	}
}

func (c *Controller) shutdown() {
	c.last.DeleteAll()
	for topic, subs := range c.topics {
		for _, ch := range subs {
			close(ch)
		}
		delete(c.topics, topic)
	}
}

// Close stops the controller and closes every subscriber channel.
func (c *Controller) Close() {
	c.stopOnce.Do(func() { close(c.stop) })
	<-c.stopped
}

func (c *Controller) RegisterAggregator(aggs ...*EventAggregator) {
	c.aggMu.Lock()
	defer c.aggMu.Unlock()
	for _, agg := range aggs {
		for _, topic := range agg.GetTopics() {
			c.aggregators[topic] = append(c.aggregators[topic], agg)
		}
	}
}

// ClearAggregators removes every registered aggregator.
func (c *Controller) ClearAggregators() {
	c.aggMu.Lock()
	c.aggregators = make(map[string][]*EventAggregator)
	c.aggMu.Unlock()
}

// Publish queues a value without blocking. Non-finite values are rejected.
func (c *Controller) Publish(topic string, value float64) error {
	if !common.Finite(value) {
		return fmt.Errorf("%w: topic %s: %v", common.ErrInvalidValue, topic, value)
	}
	select {
	case <-c.stop:
		return ErrClosed
	default:
	}
	select {
	case c.publish <- Message{Topic: topic, Value: value}:
		return nil
	default:
		return fmt.Errorf("%s: %w", topic, ErrFull)
	}
}

// SubscribeFunc calls fn from a dedicated goroutine for every value on
// topic. The returned cancel function unsubscribes.
func (c *Controller) SubscribeFunc(topic string, fn func(float64)) (cancel func()) {
	ch := c.Subscribe(topic)
	go func() {
		for v := range ch {
			fn(v)
		}
	}()
	var once sync.Once
	return func() {
		once.Do(func() { c.Unsubscribe(ch) })
	}
}

// Subscribe returns a buffered channel receiving every value on topic,
// starting with the cached one. The channel is closed by Unsubscribe or Close.
func (c *Controller) Subscribe(topic string) chan float64 {
	ch := make(chan float64, c.cfg.ChannelBuffer)
	select {
	case c.attach <- subscription{topic: topic, ch: ch}:
	case <-c.stop:
		close(ch)
	}
	return ch
}

func (c *Controller) Unsubscribe(ch chan float64) {
	select {
	case c.detach <- ch:
	case <-c.stop:
	}
}

// Values returns the cached last value of every live topic.
func (c *Controller) Values() map[string]float64 {
	values := make(map[string]float64)
	for k, item := range c.last.Items() {
		values[k] = item.Value()
	}
	return values
}
