package monitor

import (
	"math"
	"testing"

	"go-cvkeys/dac"
)

func newTestSynth() *Synth {
	return NewSynth(Config{
		SampleRate:    1000,
		BaseFreq:      100,
		Volume:        1,
		AmplifierGain: 3.2,
		DAC:           dac.DefaultConfig(),
	})
}

func TestFrequencyFollowsWord(t *testing.T) {
	s := newTestSynth()
	// One volt of CV after the amplifier is one octave
	w := dac.Encode(dac.DefaultConfig(), 1/3.2)
	s.Transfer16(uint16(w))
	if got := s.Pitch(); math.Abs(got-200) > 0.5 {
		t.Fatalf("pitch=%v; want ~200", got)
	}
}

func TestGateShapesOutput(t *testing.T) {
	s := newTestSynth()
	buf := make([]float32, 64)

	s.Render(buf)
	for i, v := range buf {
		if v != 0 {
			t.Fatalf("sample %d=%v with gate low", i, v)
		}
	}

	s.SetLevel(true)
	s.Render(buf)
	peak := float32(0)
	for _, v := range buf {
		peak = max(peak, float32(math.Abs(float64(v))))
	}
	if peak == 0 {
		t.Fatalf("no output with gate high")
	}

	s.SetLevel(false)
	s.Render(buf)
	if s.level != 0 {
		t.Fatalf("envelope did not release: %v", s.level)
	}
}

func TestReadFillsBytes(t *testing.T) {
	m := &Monitor{Synth: newTestSynth()}
	m.SetLevel(true)
	p := make([]byte, 4096)
	n, err := m.Read(p)
	if err != nil || n != len(p) {
		t.Fatalf("Read=%d,%v", n, err)
	}
}

func TestCloseWithoutPlayer(t *testing.T) {
	m := &Monitor{Synth: newTestSynth()}
	for i := 0; i < 2; i++ {
		if err := m.Close(); err != nil {
			t.Fatalf("Close: %v", err)
		}
	}
}
