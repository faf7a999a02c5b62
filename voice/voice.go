// Package voice is the consumer side of the keyboard: it owns the held-key
// stack and turns every change of the sounding key into a CV write and a
// gate retrigger.
package voice

import (
	"errors"
	"fmt"

	"go-cvkeys/dac"
	"go-cvkeys/debug"
	"go-cvkeys/gate"
	"go-cvkeys/keys"
	"go-cvkeys/lkp"
	"go-cvkeys/pitch"
)

// DefaultAmplifierGain is the gain of the op-amp stage after the DAC
const DefaultAmplifierGain = 3.2

// DAC is the converter the voice writes to
type DAC interface {
	Output(volts float64) (dac.Word, error)
}

// Config configures a Voice
type Config struct {
	Capacity      int
	AmplifierGain float64
	ShiftRange    pitch.Range
}

// DefaultConfig returns the firmware defaults
func DefaultConfig() Config {
	return Config{
		Capacity:      lkp.DefaultCapacity,
		AmplifierGain: DefaultAmplifierGain,
		ShiftRange:    pitch.DefaultRange,
	}
}

// Validate checks the config
func (c Config) Validate() error {
	if c.Capacity <= 0 || c.Capacity > 255 {
		return fmt.Errorf("voice: capacity %d out of range", c.Capacity)
	}
	if !(c.AmplifierGain > 0) {
		return fmt.Errorf("voice: amplifier gain %v", c.AmplifierGain)
	}
	if !c.ShiftRange.Valid() {
		return fmt.Errorf("voice: shift range %d..%d", c.ShiftRange.Min, c.ShiftRange.Max)
	}
	return nil
}

// Voice is a monophonic last-key-priority voice. It is owned by a single
// goroutine.
type Voice struct {
	cfg   Config
	stack *lkp.Stack
	dac   DAC
	gate  *gate.Controller
	shift pitch.Shift

	sounding keys.ID
	volts    pitch.Volts
	target   float64
	word     dac.Word

	retriggers uint64
	invalid    uint64
	dacErrors  uint64

	observers []func(State)
	held      []keys.ID
}

// New creates a voice writing to d and g
func New(cfg Config, d DAC, g *gate.Controller) (*Voice, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if d == nil {
		return nil, errors.New("voice: no DAC")
	}
	if g == nil {
		g = gate.New(nil)
	}
	return &Voice{
		cfg:   cfg,
		stack: lkp.New(cfg.Capacity),
		dac:   d,
		gate:  g,
		held:  make([]keys.ID, 0, cfg.Capacity),
	}, nil
}

// Observe registers fn to receive a State after every handled event. fn runs
// on the voice goroutine and must not block.
func (v *Voice) Observe(fn func(State)) {
	v.observers = append(v.observers, fn)
}

// Shift returns the current octave shift
func (v *Voice) Shift() pitch.Shift { return v.shift }

// Handle applies one key event
func (v *Voice) Handle(ev keys.Event) error {
	var err error
	switch {
	case keys.IsKeybed(ev.Key):
		err = v.handleKey(ev)
	case keys.IsFunction(ev.Key):
		v.handleFunction(ev)
	default:
		v.invalid++
		debug.Log("voice", "invalid key id %d (%s)", uint8(ev.Key), ev.Kind)
	}
	v.publish(ev)
	return err
}

func (v *Voice) handleKey(ev keys.Event) error {
	switch ev.Kind {
	case keys.Pressed:
		if !v.stack.Push(ev.Key) {
			debug.Log("voice", "press %s dropped, %d keys held (dropped=%d)", ev.Key, v.stack.Len(), v.stack.Dropped())
			return nil
		}
		return v.retrigger()
	case keys.Released:
		if v.stack.Pop(ev.Key) {
			return v.retrigger()
		}
		return nil
	default:
		v.invalid++
		return nil
	}
}

func (v *Voice) handleFunction(ev keys.Event) {
	if ev.Kind != keys.Pressed {
		return
	}
	switch ev.Key {
	case keys.OctaveUp:
		v.shift = v.cfg.ShiftRange.Up(v.shift)
		debug.Log("voice", "octave shift %+d", v.shift)
	case keys.OctaveDown:
		v.shift = v.cfg.ShiftRange.Down(v.shift)
		debug.Log("voice", "octave shift %+d", v.shift)
	default:
		debug.Log("voice", "function key %s ignored", ev.Key)
	}
}

// retrigger drops the gate, then re-reads the sounding key and, if one is
// held, writes its voltage and raises the gate again.
func (v *Voice) retrigger() error {
	if err := v.gate.Deassert(); err != nil {
		return fmt.Errorf("voice: %w", err)
	}

	key, ok := v.stack.Current()
	if !ok {
		v.sounding = keys.None
		return nil
	}

	cv := pitch.KeyToVoltage(key, v.shift)
	target := float64(cv) / v.cfg.AmplifierGain
	w, err := v.dac.Output(target)
	if err != nil {
		v.sounding = keys.None
		v.dacErrors++
		return fmt.Errorf("voice: output %s: %w", key, err)
	}
	v.sounding, v.volts, v.target, v.word = key, cv, target, w

	if err := v.gate.Assert(); err != nil {
		return fmt.Errorf("voice: %w", err)
	}
	v.retriggers++
	debug.Log("voice", "%s cv=%.4fV dac=%.4fV word=%v", key, cv, target, w)
	return nil
}

// Silence releases every held key and lowers the gate
func (v *Voice) Silence() error {
	v.stack.Reset()
	v.sounding = keys.None
	err := v.gate.Deassert()
	v.publish(keys.Event{})
	return err
}
