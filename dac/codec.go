package dac

import (
	"fmt"
	"math"
)

// Word is a 16-bit command frame, sent MSB first
type Word uint16

// Command word flags
const (
	FlagChannelB Word = 1 << 15
	FlagBuffered Word = 1 << 14
	FlagGain1x   Word = 1 << 13
	FlagActive   Word = 1 << 12

	dataMask Word = 0x0fff
)

// Code converts volts into a converter code, saturating at both ends
func Code(cfg Config, volts float64) uint16 {
	maxCode := cfg.MaxCode()
	if maxCode == 0 || math.IsNaN(volts) || volts <= 0 {
		return 0
	}
	v := math.Floor(float64(maxCode) * volts / cfg.FullScale())
	if v >= float64(maxCode) {
		return maxCode
	}
	return uint16(v)
}

// Encode builds the command word for volts. Codes for parts narrower than
// 12 bits are left-aligned in the data field. Resolutions outside 0..12 are
// treated as the nearest bound.
func Encode(cfg Config, volts float64) Word {
	code := Word(Code(cfg, volts)) << (12 - cfg.bits())
	return cfg.Flags() | code&dataMask
}

// Decode returns the code carried by w and the voltage it represents under
// cfg. A zero-bit config decodes every word as 0V.
func Decode(cfg Config, w Word) (uint16, float64) {
	maxCode := cfg.MaxCode()
	if maxCode == 0 {
		return 0, 0
	}
	code := uint16(w&dataMask) >> (12 - cfg.bits())
	return code, float64(code) * cfg.FullScale() / float64(maxCode)
}

// Active reports whether w keeps the output enabled
func (w Word) Active() bool { return w&FlagActive != 0 }

// Gain returns the gain selected by w
func (w Word) Gain() Gain {
	if w&FlagGain1x != 0 {
		return Gain1x
	}
	return Gain2x
}

func (w Word) String() string {
	return fmt.Sprintf("%#04x", uint16(w))
}
