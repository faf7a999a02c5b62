// Package monitor plays the CV and gate outputs through the sound card so
// the keyboard can be heard without a synthesizer attached.
package monitor

import (
	"math"
	"sync/atomic"

	"go-cvkeys/dac"
)

// Config configures the monitor voice
type Config struct {
	SampleRate    int
	BaseFreq      float64 // Hz at 0V of CV
	Volume        float64
	AmplifierGain float64 // op-amp gain after the DAC
	DAC           dac.Config
}

// Synth is a sawtooth voice following DAC words and the gate. The bus and
// gate side may be called from any goroutine; Render belongs to the audio
// thread.
type Synth struct {
	cfg Config

	freq atomic.Uint64 // math.Float64bits
	gate atomic.Bool

	phase float64
	level float64
	step  float64 // envelope change per sample
}

// NewSynth creates a silent synth
func NewSynth(cfg Config) *Synth {
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = 48000
	}
	if cfg.BaseFreq <= 0 {
		cfg.BaseFreq = 32.703
	}
	if cfg.AmplifierGain <= 0 {
		cfg.AmplifierGain = 1
	}
	s := &Synth{
		cfg:  cfg,
		step: 1 / (0.005 * float64(cfg.SampleRate)), // 5ms attack and release
	}
	s.freq.Store(math.Float64bits(cfg.BaseFreq))
	return s
}

// Transfer16 implements dac.Bus: the word sets the pitch
func (s *Synth) Transfer16(word uint16) error {
	_, volts := dac.Decode(s.cfg.DAC, dac.Word(word))
	s.freq.Store(math.Float64bits(s.Frequency(volts)))
	return nil
}

// SetLevel implements gate.Output
func (s *Synth) SetLevel(high bool) error {
	s.gate.Store(high)
	return nil
}

// Frequency converts DAC output volts into Hz at 1V/octave after the
// amplifier
func (s *Synth) Frequency(dacVolts float64) float64 {
	return s.cfg.BaseFreq * math.Exp2(dacVolts*s.cfg.AmplifierGain)
}

// Pitch returns the current oscillator frequency
func (s *Synth) Pitch() float64 {
	return math.Float64frombits(s.freq.Load())
}

// Render fills buf with mono samples
func (s *Synth) Render(buf []float32) {
	inc := s.Pitch() / float64(s.cfg.SampleRate)
	target := 0.0
	if s.gate.Load() {
		target = 1
	}
	for i := range buf {
		switch {
		case s.level < target:
			s.level = math.Min(target, s.level+s.step)
		case s.level > target:
			s.level = math.Max(target, s.level-s.step)
		}
		buf[i] = float32((2*s.phase - 1) * s.level * s.cfg.Volume)
		s.phase += inc
		if s.phase >= 1 {
			s.phase -= math.Floor(s.phase)
		}
	}
}
