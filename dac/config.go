// Package dac encodes voltages into MCP49x1 command words and frames the
// 16-bit transfer to the converter.
package dac

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is returned by Validate and Open
var ErrInvalidConfig = errors.New("dac: invalid config")

// Gain is the output amplifier setting of the converter
type Gain int

const (
	Gain1x Gain = 1
	Gain2x Gain = 2
)

// Channel selects the converter output on dual parts
type Channel int

const (
	ChannelA Channel = 0
	ChannelB Channel = 1
)

// Config describes a converter. It is validated once by Open and not
// changed afterwards.
type Config struct {
	ReferenceVoltage float64
	Gain             Gain
	Buffered         bool
	Channel          Channel
	ResolutionBits   int
	Enabled          bool
}

// DefaultConfig is an MCP4921 on a 2.5V reference, buffered, 1x, channel A
func DefaultConfig() Config {
	return Config{
		ReferenceVoltage: 2.5,
		Gain:             Gain1x,
		Buffered:         true,
		Channel:          ChannelA,
		ResolutionBits:   12,
		Enabled:          true,
	}
}

// Validate checks every field
func (c Config) Validate() error {
	if !(c.ReferenceVoltage > 0) {
		return fmt.Errorf("%w: reference voltage %v", ErrInvalidConfig, c.ReferenceVoltage)
	}
	if c.Gain != Gain1x && c.Gain != Gain2x {
		return fmt.Errorf("%w: gain %d", ErrInvalidConfig, c.Gain)
	}
	if c.Channel != ChannelA && c.Channel != ChannelB {
		return fmt.Errorf("%w: channel %d", ErrInvalidConfig, c.Channel)
	}
	switch c.ResolutionBits {
	case 8, 10, 12:
	default:
		return fmt.Errorf("%w: resolution %d bits", ErrInvalidConfig, c.ResolutionBits)
	}
	return nil
}

// MaxCode is the largest code the converter accepts
func (c Config) MaxCode() uint16 {
	return uint16(1)<<c.bits() - 1
}

// bits is ResolutionBits limited to the 12-bit data field
func (c Config) bits() uint {
	return uint(min(max(c.ResolutionBits, 0), 12))
}

// FullScale is the output voltage at MaxCode
func (c Config) FullScale() float64 {
	return c.ReferenceVoltage * float64(c.Gain)
}

// Flags returns the upper nibble of the command word
func (c Config) Flags() Word {
	var w Word
	if c.Channel == ChannelB {
		w |= FlagChannelB
	}
	if c.Buffered {
		w |= FlagBuffered
	}
	if c.Gain == Gain1x {
		w |= FlagGain1x
	}
	if c.Enabled {
		w |= FlagActive
	}
	return w
}

func (c Config) String() string {
	ch := "A"
	if c.Channel == ChannelB {
		ch = "B"
	}
	return fmt.Sprintf("%dbit ref=%.3gV gain=%dx buf=%t ch=%s on=%t",
		c.ResolutionBits, c.ReferenceVoltage, c.Gain, c.Buffered, ch, c.Enabled)
}
