package alarm

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/hajimehoshi/go-mp3"
)

const (
	SampleRate   = 44100
	ChannelCount = 2
)

var (
	octx    *oto.Context
	octxErr error
	octxMu  sync.Mutex
)

// audioContext returns the process wide oto context, creating it on first use.
func audioContext() (*oto.Context, error) {
	octxMu.Lock()
	defer octxMu.Unlock()
	if octx != nil || octxErr != nil {
		return octx, octxErr
	}
	op := &oto.NewContextOptions{
		SampleRate:   SampleRate,
		ChannelCount: ChannelCount,
		// go-mp3 decodes to signed 16 bit
		Format: oto.FormatSignedInt16LE,
	}
	c, ready, err := oto.NewContext(op)
	if err != nil {
		octxErr = fmt.Errorf("alarm sound init failed: %w", err)
		return nil, octxErr
	}
	select {
	case <-ready:
		octx = c
	case <-time.After(10 * time.Second):
		octxErr = fmt.Errorf("alarm sound init timed out")
	}
	return octx, octxErr
}

// Sound plays a PCM clip, signed 16 bit little endian stereo at SampleRate.
type Sound struct {
	pcm []byte
}

// Tone synthesises a sine beep with short fades against clicks.
func Tone(freq float64, d time.Duration) *Sound {
	n := int(d.Seconds() * SampleRate)
	fade := SampleRate / 100
	buf := bytes.NewBuffer(make([]byte, 0, n*ChannelCount*2))
	for i := 0; i < n; i++ {
		amp := 0.4
		if i < fade {
			amp *= float64(i) / float64(fade)
		} else if n-i < fade {
			amp *= float64(n-i) / float64(fade)
		}
		s := int16(amp * math.MaxInt16 * math.Sin(2*math.Pi*freq*float64(i)/SampleRate))
		for c := 0; c < ChannelCount; c++ {
			binary.Write(buf, binary.LittleEndian, s)
		}
	}
	return &Sound{pcm: buf.Bytes()}
}

// DecodeMP3 reads a whole mp3 stream. go-mp3 always yields 16 bit stereo.
func DecodeMP3(r io.Reader) (*Sound, error) {
	dec, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("mp3.NewDecoder failed: %w", err)
	}
	if dec.SampleRate() != SampleRate {
		log.Printf("alarm sound sample rate %d, playing at %d", dec.SampleRate(), SampleRate)
	}
	pcm, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("failed to decode mp3: %w", err)
	}
	return &Sound{pcm: pcm}, nil
}

func LoadMP3(path string) (*Sound, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open alarm sound: %w", err)
	}
	defer f.Close()
	return DecodeMP3(f)
}

// Duration is the playing time of the clip.
func (s *Sound) Duration() time.Duration {
	frames := len(s.pcm) / (ChannelCount * 2)
	return time.Duration(frames) * time.Second / SampleRate
}

// Play starts the clip and returns without waiting for it.
func (s *Sound) Play() error {
	c, err := audioContext()
	if err != nil {
		return err
	}
	player := c.NewPlayer(bytes.NewReader(s.pcm))
	player.Play()
	go func() {
		for player.IsPlaying() {
			time.Sleep(5 * time.Millisecond)
		}
		if err := player.Close(); err != nil {
			log.Printf("player.Close failed: %v", err)
		}
	}()
	return nil
}
