// Package dashboard lays out a dial per configured gauge and routes bus
// values to them.
package dashboard

import (
	"fmt"
	"log"
	"math"
	"sort"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/widget"
	"github.com/roffe/txgauge/pkg/config"
	"github.com/roffe/txgauge/pkg/eventbus"
	"github.com/roffe/txgauge/pkg/motion"
	"github.com/roffe/txgauge/pkg/statestore"
	"github.com/roffe/txgauge/pkg/widgets"
	"github.com/roffe/txgauge/pkg/widgets/dial"
)

const SweepDuration = 900 * time.Millisecond

type Config struct {
	File *config.File
}

type Dashboard struct {
	widget.BaseWidget

	cfg     *Config
	columns int

	dials        []*dial.Dial
	byName       map[string]*dial.Dial
	metricRouter map[string][]func(float64)

	cancels []func()
	sweep   *fyne.Animation
}

func NewDashboard(cfg *Config) (*Dashboard, error) {
	if cfg.File == nil {
		cfg.File = config.Default()
	}
	gcfgs, err := cfg.File.GaugeConfigs()
	if err != nil {
		return nil, err
	}

	db := &Dashboard{
		cfg:          cfg,
		columns:      cfg.File.Columns,
		byName:       make(map[string]*dial.Dial, len(gcfgs)),
		metricRouter: make(map[string][]func(float64)),
	}
	db.ExtendBaseWidget(db)

	for _, gc := range gcfgs {
		d, err := dial.New(gc)
		if err != nil {
			return nil, err
		}
		db.dials = append(db.dials, d)
		db.byName[gc.Name] = d
		db.route(d)
	}
	if db.columns <= 0 {
		db.columns = int(math.Ceil(math.Sqrt(float64(len(db.dials)))))
	}
	return db, nil
}

func (db *Dashboard) route(g widgets.IGauge) {
	topic := g.GetConfig().Topic
	db.metricRouter[topic] = append(db.metricRouter[topic], g.SetValue)
}

func (db *Dashboard) Dials() []*dial.Dial { return db.dials }

func (db *Dashboard) Dial(name string) (*dial.Dial, bool) {
	d, ok := db.byName[name]
	return d, ok
}

func (db *Dashboard) GetMetricNames() []string {
	names := make([]string, 0, len(db.metricRouter))
	for k := range db.metricRouter {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// SetValue routes value to every dial listening on topic. It must run on
// the fyne goroutine.
func (db *Dashboard) SetValue(topic string, value float64) {
	for _, set := range db.metricRouter[topic] {
		set(value)
	}
}

// Connect subscribes every topic on bus. Values are applied via fyne.Do.
func (db *Dashboard) Connect(bus *eventbus.Controller) {
	for _, topic := range db.GetMetricNames() {
		db.cancels = append(db.cancels, bus.SubscribeFunc(topic, func(v float64) {
			fyne.Do(func() {
				db.SetValue(topic, v)
			})
		}))
	}
}

// Sweep swings every needle from its scale start to its end and back.
func (db *Dashboard) Sweep() {
	if db.sweep != nil {
		db.sweep.Stop()
	}
	db.sweep = fyne.NewAnimation(SweepDuration, func(p float32) {
		pa := float64(p)
		for _, d := range db.dials {
			sc := d.GetConfig().Scale
			v := sc.StartValue + (sc.EndValue-sc.StartValue)*pa
			if d.Gauge().Kind() == motion.KindDriven {
				if err := d.Gauge().SetCurrentValue(v); err != nil {
					log.Printf("sweep %s: %v", d.GetConfig().Name, err)
				}
				continue
			}
			d.SetTargetValue(v)
		}
	})
	db.sweep.AutoReverse = true
	db.sweep.Curve = fyne.AnimationEaseInOut
	db.sweep.Start()
}

func (db *Dashboard) snapshotters() map[string]statestore.Snapshotter {
	m := make(map[string]statestore.Snapshotter, len(db.byName))
	for name, d := range db.byName {
		m[name] = d
	}
	return m
}

func (db *Dashboard) SaveState(st statestore.Store) error {
	if err := statestore.SaveAll(st, db.snapshotters()); err != nil {
		return fmt.Errorf("failed to save gauge state: %w", err)
	}
	return nil
}

func (db *Dashboard) RestoreState(st statestore.Store) error {
	if err := statestore.RestoreAll(st, db.snapshotters()); err != nil {
		return fmt.Errorf("failed to restore gauge state: %w", err)
	}
	return nil
}

// Close unsubscribes from the bus and stops every animation.
func (db *Dashboard) Close() {
	for _, cancel := range db.cancels {
		cancel()
	}
	db.cancels = nil
	if db.sweep != nil {
		db.sweep.Stop()
		db.sweep = nil
	}
	for _, d := range db.dials {
		d.Stop()
	}
}

func (db *Dashboard) CreateRenderer() fyne.WidgetRenderer {
	objs := make([]fyne.CanvasObject, len(db.dials))
	for i, d := range db.dials {
		objs[i] = d
	}
	return &DashboardRenderer{db: db, objects: objs}
}

type DashboardRenderer struct {
	db      *Dashboard
	objects []fyne.CanvasObject
	size    fyne.Size
}

func (dr *DashboardRenderer) rows() int {
	n := len(dr.objects)
	return (n + dr.db.columns - 1) / dr.db.columns
}

func (dr *DashboardRenderer) Layout(space fyne.Size) {
	dr.size = space
	rows := dr.rows()
	if rows == 0 {
		return
	}
	cell := fyne.NewSize(space.Width/float32(dr.db.columns), space.Height/float32(rows))
	for i, o := range dr.objects {
		col, row := i%dr.db.columns, i/dr.db.columns
		o.Resize(cell)
		o.Move(fyne.NewPos(float32(col)*cell.Width, float32(row)*cell.Height))
	}
}

func (dr *DashboardRenderer) MinSize() fyne.Size {
	var cell fyne.Size
	for _, o := range dr.objects {
		cell = cell.Max(o.MinSize())
	}
	return fyne.NewSize(cell.Width*float32(dr.db.columns), cell.Height*float32(dr.rows()))
}

func (dr *DashboardRenderer) Refresh() {
	for _, o := range dr.objects {
		o.Refresh()
	}
}

func (dr *DashboardRenderer) Destroy() {}

func (dr *DashboardRenderer) Objects() []fyne.CanvasObject { return dr.objects }
