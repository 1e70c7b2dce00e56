// Package feed publishes gauge values onto the event bus from line based
// text streams and from a built-in demo signal generator.
package feed

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/roffe/txgauge/pkg/common"
	"github.com/roffe/txgauge/pkg/eventbus"
)

type Publisher interface {
	Publish(topic string, value float64) error
}

// RetryDelay is the pause between publish attempts on a full bus.
var RetryDelay = 5 * time.Millisecond

// ParseLine parses "topic=value" or "topic value". Empty lines and lines
// starting with '#' return an empty topic and no error.
func ParseLine(line string) (string, float64, error) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return "", 0, nil
	}
	topic, value, ok := strings.Cut(line, "=")
	if !ok {
		fields := strings.Fields(line)
		if len(fields) != 2 {
			return "", 0, fmt.Errorf("%w: malformed line %q", common.ErrInvalidValue, line)
		}
		topic, value = fields[0], fields[1]
	}
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return "", 0, fmt.Errorf("%w: missing topic in %q", common.ErrInvalidValue, line)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return "", 0, fmt.Errorf("%w: %s: %v", common.ErrInvalidValue, topic, err)
	}
	if !common.Finite(v) {
		return "", 0, fmt.Errorf("%w: %s: %v", common.ErrInvalidValue, topic, v)
	}
	return topic, v, nil
}

// Publish sends one value, retrying while the bus is full.
func Publish(ctx context.Context, pub Publisher, topic string, value float64) error {
	return retry.Do(func() error {
		err := pub.Publish(topic, value)
		if errors.Is(err, common.ErrInvalidValue) || errors.Is(err, eventbus.ErrClosed) {
			return retry.Unrecoverable(err)
		}
		return err
	},
		retry.Context(ctx),
		retry.DelayType(retry.FixedDelay),
		retry.Delay(RetryDelay),
		retry.Attempts(4),
		retry.LastErrorOnly(true),
	)
}

// ReadLines publishes every line of r until EOF or ctx is done. Malformed
// lines are logged and skipped.
func ReadLines(ctx context.Context, r io.Reader, pub Publisher) error {
	sc := bufio.NewScanner(r)
	n := 0
	for sc.Scan() {
		n++
		if err := ctx.Err(); err != nil {
			return err
		}
		topic, v, err := ParseLine(sc.Text())
		if err != nil {
			log.Printf("feed line %d: %v", n, err)
			continue
		}
		if topic == "" {
			continue
		}
		if err := Publish(ctx, pub, topic, v); err != nil {
			if errors.Is(err, eventbus.ErrClosed) || ctx.Err() != nil {
				return err
			}
			log.Printf("feed line %d: %v", n, err)
		}
	}
	return sc.Err()
}

// FormatLines renders values as sorted "topic=value" lines that ReadLines
// accepts.
func FormatLines(values map[string]float64) string {
	topics := make([]string, 0, len(values))
	for t := range values {
		topics = append(topics, t)
	}
	sort.Strings(topics)
	var b strings.Builder
	for _, t := range topics {
		b.WriteString(t)
		b.WriteByte('=')
		b.WriteString(strconv.FormatFloat(values[t], 'g', -1, 64))
		b.WriteByte('\n')
	}
	return b.String()
}
