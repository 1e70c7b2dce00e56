// gaugesnap renders gauges from a config file to PNG images without a window.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/roffe/txgauge/pkg/config"
)

var (
	configFile string
	gaugeName  string
	valueList  string
	outDir     string
	size       int
	sequence   time.Duration
	fps        int
)

func init() {
	log.SetFlags(log.LstdFlags | log.Lshortfile | log.Lmicroseconds)
	flag.StringVar(&configFile, "config", "", "gauge config yaml, empty uses the built-in demo")
	flag.StringVar(&gaugeName, "gauge", "", "only render this gauge")
	flag.StringVar(&valueList, "values", "", "comma separated values, empty renders min, neutral and max")
	flag.StringVar(&outDir, "out", ".", "output directory")
	flag.IntVar(&size, "size", 256, "image width and height in pixels")
	flag.DurationVar(&sequence, "sequence", 0, "render kinematic needle travel for this long instead of the settled position")
	flag.IntVar(&fps, "fps", 30, "frames per second for -sequence")
}

func main() {
	flag.Parse()

	f := config.Default()
	if configFile != "" {
		var err error
		if f, err = config.Load(configFile); err != nil {
			log.Fatal(err)
		}
	}

	values, err := parseValues(valueList)
	if err != nil {
		log.Fatal(err)
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		log.Fatal(err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	jobs, err := planJobs(f, gaugeName, values)
	if err != nil {
		log.Fatal(err)
	}

	r := &snapper{dir: outDir, size: size, sequence: sequence, fps: fps}
	n, err := r.run(ctx, jobs)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("wrote %d images to %s", n, outDir)
}

func parseValues(s string) ([]float64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var out []float64
	for _, part := range strings.Split(s, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
