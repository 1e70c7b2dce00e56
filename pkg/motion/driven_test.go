package motion

import (
	"errors"
	"math"
	"testing"

	"github.com/roffe/txgauge/pkg/common"
)

func TestDrivenSetCurrentValue(t *testing.T) {
	d := NewDriven(50)
	if d.Initialized() {
		t.Fatal("new driven needle is initialized")
	}
	if err := d.SetCurrentValue(37.5); err != nil {
		t.Fatalf("SetCurrentValue() failed: %v", err)
	}
	if d.Current() != 37.5 || !d.Initialized() {
		t.Errorf("Current() = %v, Initialized() = %v", d.Current(), d.Initialized())
	}
	if d.Tick(t0) || d.Animating() {
		t.Error("driven motion reported pending work")
	}
	// no clamping
	if err := d.SetCurrentValue(-250); err != nil || d.Current() != -250 {
		t.Errorf("SetCurrentValue(-250) = %v, current %v", err, d.Current())
	}
}

func TestDrivenAnimateTarget(t *testing.T) {
	d := NewDriven(50)
	from, err := d.AnimateTarget(80)
	if err != nil {
		t.Fatal(err)
	}
	if from != 50 || d.Target() != 80 || d.Current() != 50 {
		t.Errorf("AnimateTarget() from=%v target=%v current=%v", from, d.Target(), d.Current())
	}
	if _, err := d.AnimateTarget(math.NaN()); !errors.Is(err, common.ErrInvalidValue) {
		t.Errorf("AnimateTarget(NaN) error = %v", err)
	}
	if d.Target() != 80 {
		t.Error("rejected target was recorded")
	}
}

func TestDrivenSetTarget(t *testing.T) {
	d := NewDriven(0)
	if err := d.SetTarget(12, t0); err != nil {
		t.Fatal(err)
	}
	if d.Current() != 12 || d.Target() != 12 {
		t.Errorf("SetTarget() current=%v target=%v", d.Current(), d.Target())
	}
	if err := d.SetTarget(math.Inf(-1), t0); !errors.Is(err, common.ErrInvalidValue) {
		t.Errorf("SetTarget(-Inf) error = %v", err)
	}
}

func TestDrivenSnapshotRestore(t *testing.T) {
	d := NewDriven(50)
	d.AnimateTarget(70)
	d.SetCurrentValue(64)
	snap := d.Snapshot()
	if snap.Animating() {
		t.Error("driven snapshot carries a timestamp")
	}
	r := NewDriven(0)
	if err := r.Restore(snap); err != nil {
		t.Fatal(err)
	}
	if r.Snapshot() != snap {
		t.Errorf("restored %+v, want %+v", r.Snapshot(), snap)
	}
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in      string
		want    Kind
		wantErr bool
	}{
		{in: "", want: KindKinematic},
		{in: "Kinematic", want: KindKinematic},
		{in: "driven", want: KindDriven},
		{in: "spring", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseKind(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseKind(%q) error = %v", tt.in, err)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseKind(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
