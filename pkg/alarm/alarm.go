// Package alarm sounds a warning when a gauge value leaves its safe band.
package alarm

import (
	"fmt"
	"sync"

	"github.com/roffe/txgauge/pkg/common"
)

// Rule fires when a value rises above Above or falls below Below. Nil
// bounds are ignored.
type Rule struct {
	Name  string
	Topic string
	Above *float64
	Below *float64
	// Hysteresis is how far a value must come back inside the band
	// before the rule can fire again.
	Hysteresis float64
}

func (r Rule) Validate() error {
	if r.Above == nil && r.Below == nil {
		return fmt.Errorf("%w: alarm %s has no bound", common.ErrConfiguration, r.Name)
	}
	for _, b := range []*float64{r.Above, r.Below} {
		if b != nil && !common.Finite(*b) {
			return fmt.Errorf("%w: alarm %s bound is not finite", common.ErrConfiguration, r.Name)
		}
	}
	if r.Above != nil && r.Below != nil && *r.Below >= *r.Above {
		return fmt.Errorf("%w: alarm %s below %g must be less than above %g", common.ErrConfiguration, r.Name, *r.Below, *r.Above)
	}
	if !common.Finite(r.Hysteresis) || r.Hysteresis < 0 {
		return fmt.Errorf("%w: alarm %s hysteresis must be a non-negative number", common.ErrConfiguration, r.Name)
	}
	return nil
}

func (r Rule) outside(v float64) bool {
	return (r.Above != nil && v > *r.Above) || (r.Below != nil && v < *r.Below)
}

func (r Rule) clear(v float64) bool {
	if r.Above != nil && v > *r.Above-r.Hysteresis {
		return false
	}
	if r.Below != nil && v < *r.Below+r.Hysteresis {
		return false
	}
	return true
}

type Player interface {
	Play() error
}

// Monitor tracks which rules are firing and plays once per excursion.
type Monitor struct {
	mu     sync.Mutex
	rules  map[string]Rule
	active map[string]bool
	player Player

	OnAlarm func(r Rule, v float64)
}

func NewMonitor(p Player, rules ...Rule) (*Monitor, error) {
	m := &Monitor{
		rules:  make(map[string]Rule, len(rules)),
		active: make(map[string]bool, len(rules)),
		player: p,
	}
	for _, r := range rules {
		if err := r.Validate(); err != nil {
			return nil, err
		}
		if _, dup := m.rules[r.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate alarm %s", common.ErrConfiguration, r.Name)
		}
		m.rules[r.Name] = r
	}
	return m, nil
}

// Rules returns the configured rules.
func (m *Monitor) Rules() []Rule {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Rule, 0, len(m.rules))
	for _, r := range m.rules {
		out = append(out, r)
	}
	return out
}

// Check feeds v to the named rule and reports whether it started firing.
func (m *Monitor) Check(name string, v float64) (bool, error) {
	if !common.Finite(v) {
		return false, fmt.Errorf("%w: %v", common.ErrInvalidValue, v)
	}
	m.mu.Lock()
	r, ok := m.rules[name]
	if !ok {
		m.mu.Unlock()
		return false, fmt.Errorf("%w: unknown alarm %s", common.ErrConfiguration, name)
	}
	fired := false
	switch {
	case !m.active[name] && r.outside(v):
		m.active[name] = true
		fired = true
	case m.active[name] && r.clear(v):
		m.active[name] = false
	}
	m.mu.Unlock()

	if !fired {
		return false, nil
	}
	if m.OnAlarm != nil {
		m.OnAlarm(r, v)
	}
	if m.player != nil {
		if err := m.player.Play(); err != nil {
			return true, err
		}
	}
	return true, nil
}

// Active reports whether the named rule is firing.
func (m *Monitor) Active(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active[name]
}
