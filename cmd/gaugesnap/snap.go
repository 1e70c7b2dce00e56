package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync/atomic"
	"time"

	"github.com/roffe/txgauge/pkg/common"
	"github.com/roffe/txgauge/pkg/config"
	"github.com/roffe/txgauge/pkg/gauge"
	"github.com/roffe/txgauge/pkg/motion"
	"github.com/roffe/txgauge/pkg/raster"
	"golang.org/x/sync/errgroup"
)

// settleLimit bounds the simulated time spent waiting for a kinematic
// needle to reach its target.
const settleLimit = 30 * time.Second

type job struct {
	cfg   *gauge.Config
	value float64
	index int
}

func planJobs(f *config.File, only string, values []float64) ([]job, error) {
	cfgs, err := f.GaugeConfigs()
	if err != nil {
		return nil, err
	}
	var jobs []job
	for _, cfg := range cfgs {
		if only != "" && cfg.Name != only {
			continue
		}
		vals := values
		if len(vals) == 0 {
			vals = []float64{cfg.Scale.StartValue, cfg.NeutralValue(), cfg.Scale.EndValue}
		}
		for i, v := range vals {
			jobs = append(jobs, job{cfg: cfg, value: v, index: i})
		}
	}
	if len(jobs) == 0 {
		return nil, fmt.Errorf("%w: no gauge named %q", common.ErrConfiguration, only)
	}
	return jobs, nil
}

type snapper struct {
	dir      string
	size     int
	sequence time.Duration
	fps      int
}

// run renders every job in parallel and returns the number of files written.
func (s *snapper) run(ctx context.Context, jobs []job) (int, error) {
	var written atomic.Int64
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for _, j := range jobs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			n, err := s.render(ctx, j)
			written.Add(int64(n))
			return err
		})
	}
	err := g.Wait()
	return int(written.Load()), err
}

func (s *snapper) render(ctx context.Context, j job) (int, error) {
	now := time.Unix(0, 0)
	g, err := gauge.New(j.cfg, gauge.WithClock(func() time.Time { return now }))
	if err != nil {
		return 0, err
	}

	if g.Kind() == motion.KindDriven {
		if err := g.SetCurrentValue(j.value); err != nil {
			return 0, err
		}
		return 1, s.write(g, s.name(j, -1))
	}

	// park the needle at the scale start so the travel is visible
	start := j.cfg.Scale.StartValue
	if err := g.Restore(motion.State{Initialized: true, CurrentValue: start, TargetValue: start}); err != nil {
		return 0, err
	}
	if err := g.SetTargetValue(j.value); err != nil {
		return 0, err
	}

	if s.sequence <= 0 {
		step := 16 * time.Millisecond
		for elapsed := time.Duration(0); g.Animating() && elapsed < settleLimit; elapsed += step {
			now = now.Add(step)
			g.Tick(now)
		}
		return 1, s.write(g, s.name(j, -1))
	}

	fps := s.fps
	if fps <= 0 {
		fps = 30
	}
	step := time.Second / time.Duration(fps)
	frames := int(s.sequence / step)
	n := 0
	for i := 0; i <= frames; i++ {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		if err := s.write(g, s.name(j, i)); err != nil {
			return n, err
		}
		n++
		now = now.Add(step)
		g.Tick(now)
	}
	return n, nil
}

func (s *snapper) name(j job, frame int) string {
	base := strings.NewReplacer("/", "_", "\\", "_", ":", "_", " ", "_").Replace(j.cfg.Name)
	if frame < 0 {
		return fmt.Sprintf("%s_%02d.png", base, j.index)
	}
	return fmt.Sprintf("%s_%02d_%04d.png", base, j.index, frame)
}

func (s *snapper) write(g *gauge.Gauge, name string) error {
	f, err := g.Frame()
	if err != nil {
		return err
	}
	out, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return err
	}
	if err := raster.WritePNG(out, f, s.size, s.size); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
