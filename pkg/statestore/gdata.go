package statestore

import (
	"fmt"

	"github.com/quasilyte/gdata/v2"
	"github.com/roffe/txgauge/pkg/motion"
	"gopkg.in/yaml.v3"
)

const gdataObject = "gauges"

// Gdata keeps each state as a YAML property of the "gauges" object in the
// per-user gdata directory.
type Gdata struct {
	m *gdata.Manager
}

func NewGdata(m *gdata.Manager) *Gdata {
	return &Gdata{m: m}
}

// OpenGdata opens the gdata storage of appName.
func OpenGdata(appName string) (*Gdata, error) {
	m, err := gdata.Open(gdata.Config{AppName: appName})
	if err != nil {
		return nil, fmt.Errorf("failed to open gdata storage: %w", err)
	}
	return NewGdata(m), nil
}

func (g *Gdata) Save(name string, s motion.State) error {
	if err := checkName(name); err != nil {
		return err
	}
	if err := s.Validate(); err != nil {
		return err
	}
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal state %s: %w", name, err)
	}
	if err := g.m.SaveObjectProp(gdataObject, name, data); err != nil {
		return fmt.Errorf("failed to save state %s: %w", name, err)
	}
	return nil
}

func (g *Gdata) Load(name string) (motion.State, bool, error) {
	var s motion.State
	if err := checkName(name); err != nil {
		return s, false, err
	}
	if !g.m.ObjectPropExists(gdataObject, name) {
		return s, false, nil
	}
	data, err := g.m.LoadObjectProp(gdataObject, name)
	if err != nil {
		return s, false, fmt.Errorf("failed to load state %s: %w", name, err)
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return s, false, fmt.Errorf("failed to unmarshal state %s: %w", name, err)
	}
	if err := s.Validate(); err != nil {
		return s, false, err
	}
	return s, true, nil
}
