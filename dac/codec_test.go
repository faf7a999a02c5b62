package dac

import (
	"errors"
	"math"
	"testing"
)

func TestEncodeReferenceExample(t *testing.T) {
	// Key 1 at no shift is 1/12 V, divided by the 3.2x output amplifier
	volts := (1.0 / 12) / 3.2
	cfg := DefaultConfig()
	if got := Code(cfg, volts); got != 42 {
		t.Fatalf("Code=%d; want 42", got)
	}
	w := Encode(cfg, volts)
	if w != 0x702A {
		t.Fatalf("Encode=%v; want 0x702a", w)
	}
	if w>>12 != 0b0111 {
		t.Fatalf("flags=%04b", w>>12)
	}
}

func TestFlags(t *testing.T) {
	cases := []struct {
		name string
		mod  func(*Config)
		want Word
	}{
		{"default", func(*Config) {}, FlagBuffered | FlagGain1x | FlagActive},
		{"channel b", func(c *Config) { c.Channel = ChannelB }, FlagChannelB | FlagBuffered | FlagGain1x | FlagActive},
		{"unbuffered", func(c *Config) { c.Buffered = false }, FlagGain1x | FlagActive},
		{"2x", func(c *Config) { c.Gain = Gain2x }, FlagBuffered | FlagActive},
		{"shutdown", func(c *Config) { c.Enabled = false }, FlagBuffered | FlagGain1x},
	}
	for _, c := range cases {
		cfg := DefaultConfig()
		c.mod(&cfg)
		if got := cfg.Flags(); got != c.want {
			t.Errorf("%s: flags=%v; want %v", c.name, got, c.want)
		}
		if got := Encode(cfg, 0); got != c.want {
			t.Errorf("%s: Encode(0)=%v; want %v", c.name, got, c.want)
		}
	}
}

func TestCodeSaturates(t *testing.T) {
	cfg := DefaultConfig()
	cases := []struct {
		volts float64
		want  uint16
	}{
		{-1, 0},
		{0, 0},
		{math.NaN(), 0},
		{2.5, 4095},
		{100, 4095},
		{math.Inf(1), 4095},
		{1.25, 2047},
	}
	for _, c := range cases {
		if got := Code(cfg, c.volts); got != c.want {
			t.Errorf("Code(%v)=%d; want %d", c.volts, got, c.want)
		}
	}
}

func TestGain2xDoublesRange(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Gain = Gain2x
	if got := Code(cfg, 2.5); got != 2047 {
		t.Fatalf("Code(2.5)@2x=%d; want 2047", got)
	}
	if got := Code(cfg, 5); got != 4095 {
		t.Fatalf("Code(5)@2x=%d; want 4095", got)
	}
	if Encode(cfg, 0).Gain() != Gain2x {
		t.Fatalf("gain bit not cleared for 2x")
	}
}

func TestNarrowResolutionLeftAligned(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ResolutionBits = 10
	w := Encode(cfg, 2.5)
	if w&dataMask != 0x3ff<<2 {
		t.Fatalf("10-bit full scale data=%#x", uint16(w&dataMask))
	}
	code, _ := Decode(cfg, w)
	if code != 0x3ff {
		t.Fatalf("Decode code=%#x", code)
	}

	cfg.ResolutionBits = 8
	w = Encode(cfg, 1.25)
	if got := uint16(w&dataMask) >> 4; got != 127 {
		t.Fatalf("8-bit mid code=%d", got)
	}
}

func TestDecodeRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	for _, v := range []float64{0, 0.1, 0.5, 1, 2.49} {
		_, got := Decode(cfg, Encode(cfg, v))
		step := cfg.FullScale() / float64(cfg.MaxCode())
		if got > v+1e-9 || v-got > step {
			t.Errorf("Decode(Encode(%v))=%v", v, got)
		}
	}
}

func TestUnvalidatedResolution(t *testing.T) {
	for _, bits := range []int{-4, 0, 13, 16, 40} {
		cfg := DefaultConfig()
		cfg.ResolutionBits = bits
		w := Encode(cfg, 1.0)
		code, v := Decode(cfg, w)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Errorf("bits=%d: Decode volts=%v", bits, v)
		}
		if bits <= 0 && (code != 0 || v != 0) {
			t.Errorf("bits=%d: code=%d volts=%v; want zero", bits, code, v)
		}
	}

	// Wider than the data field behaves as 12 bits
	cfg := DefaultConfig()
	cfg.ResolutionBits = 16
	if got, want := Encode(cfg, 1.0), Encode(DefaultConfig(), 1.0); got != want {
		t.Fatalf("16-bit word=%v; want %v", got, want)
	}
}

func TestValidate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config: %v", err)
	}
	bad := []func(*Config){
		func(c *Config) { c.ReferenceVoltage = 0 },
		func(c *Config) { c.ReferenceVoltage = math.NaN() },
		func(c *Config) { c.Gain = 3 },
		func(c *Config) { c.Channel = 2 },
		func(c *Config) { c.ResolutionBits = 16 },
	}
	for i, mod := range bad {
		cfg := DefaultConfig()
		mod(&cfg)
		if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("case %d: err=%v", i, err)
		}
	}
}
