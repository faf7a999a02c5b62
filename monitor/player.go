package monitor

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"

	"github.com/ebitengine/oto/v3"
)

// Monitor plays a Synth on the default audio device
type Monitor struct {
	*Synth

	ctx    *oto.Context
	player *oto.Player
	buf    []float32 // owned by the oto goroutine calling Read

	closeOnce sync.Once
	closeErr  error
}

// Open creates the audio context and starts playback
func Open(cfg Config) (*Monitor, error) {
	s := NewSynth(cfg)
	op := &oto.NewContextOptions{
		SampleRate:   s.cfg.SampleRate,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
	}
	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("audio: %w", err)
	}
	<-ready

	m := &Monitor{Synth: s, ctx: ctx, buf: make([]float32, 1024)}
	m.player = ctx.NewPlayer(m)
	m.player.Play()
	return m, nil
}

// Read implements io.Reader for the oto player
func (m *Monitor) Read(p []byte) (int, error) {
	n := len(p) / 4
	if len(m.buf) < n {
		m.buf = make([]float32, n)
	}
	samples := m.buf[:n]
	m.Render(samples)
	for i, v := range samples {
		binary.LittleEndian.PutUint32(p[i*4:], math.Float32bits(v))
	}
	return n * 4, nil
}

// Close stops playback. Later calls return the first result.
func (m *Monitor) Close() error {
	m.closeOnce.Do(func() {
		if m.player != nil {
			m.closeErr = m.player.Close()
		}
	})
	return m.closeErr
}
