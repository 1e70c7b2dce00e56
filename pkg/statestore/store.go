// Package statestore persists gauge motion state between runs so a needle
// resumes where it stopped.
package statestore

import (
	"fmt"
	"strings"

	"github.com/roffe/txgauge/pkg/common"
	"github.com/roffe/txgauge/pkg/motion"
)

type Store interface {
	Save(name string, s motion.State) error
	// Load reports false when nothing was saved under name.
	Load(name string) (motion.State, bool, error)
}

// Snapshotter is satisfied by *gauge.Gauge.
type Snapshotter interface {
	Snapshot() motion.State
	Restore(motion.State) error
}

// SaveAll stores the snapshot of every named gauge, continuing past
// failures and returning the first error.
func SaveAll(st Store, gauges map[string]Snapshotter) error {
	var first error
	for name, g := range gauges {
		if err := st.Save(name, g.Snapshot()); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// RestoreAll restores every named gauge that has saved state.
func RestoreAll(st Store, gauges map[string]Snapshotter) error {
	var first error
	for name, g := range gauges {
		s, ok, err := st.Load(name)
		if err == nil && ok {
			err = g.Restore(s)
		}
		if err != nil && first == nil {
			first = err
		}
	}
	return first
}

func checkName(name string) error {
	if name == "" || strings.ContainsAny(name, `/\:`) {
		return fmt.Errorf("%w: invalid state name %q", common.ErrConfiguration, name)
	}
	return nil
}
