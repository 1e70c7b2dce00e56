package statestore

import (
	"encoding/json"
	"fmt"

	"fyne.io/fyne/v2"
	"github.com/roffe/txgauge/pkg/motion"
)

const prefsPrefix = "gauge.state."

// Preferences keeps each state as a JSON string in the fyne app
// preferences.
type Preferences struct {
	prefs fyne.Preferences
}

func NewPreferences(p fyne.Preferences) *Preferences {
	return &Preferences{prefs: p}
}

func (p *Preferences) Save(name string, s motion.State) error {
	if err := checkName(name); err != nil {
		return err
	}
	if err := s.Validate(); err != nil {
		return err
	}
	b, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal state %s: %w", name, err)
	}
	p.prefs.SetString(prefsPrefix+name, string(b))
	return nil
}

func (p *Preferences) Load(name string) (motion.State, bool, error) {
	var s motion.State
	if err := checkName(name); err != nil {
		return s, false, err
	}
	data := p.prefs.String(prefsPrefix + name)
	if data == "" {
		return s, false, nil
	}
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		return s, false, fmt.Errorf("failed to unmarshal state %s: %w", name, err)
	}
	if err := s.Validate(); err != nil {
		return s, false, err
	}
	return s, true, nil
}

func (p *Preferences) Delete(name string) {
	p.prefs.RemoveValue(prefsPrefix + name)
}
