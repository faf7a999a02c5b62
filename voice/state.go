package voice

import (
	"go-cvkeys/dac"
	"go-cvkeys/keys"
	"go-cvkeys/pitch"
)

// State is a snapshot of the voice after an event
type State struct {
	Event      keys.Event
	Key        keys.ID     // sounding key, keys.None when silent
	Volts      pitch.Volts // last CV written
	Target     float64     // volts at the DAC, after gain compensation
	Word       dac.Word
	Gate       bool
	Held       []keys.ID // oldest first
	Shift      pitch.Shift
	Retriggers uint64
	Dropped    uint64
	Invalid    uint64
	DACErrors  uint64
}

// Sounding reports whether a key is playing
func (s State) Sounding() bool { return s.Key != keys.None }

// Snapshot returns the current state. Held is a fresh slice.
func (v *Voice) Snapshot() State {
	return v.snapshot(keys.Event{}, v.stack.AppendKeys(nil))
}

func (v *Voice) snapshot(ev keys.Event, held []keys.ID) State {
	return State{
		Event:      ev,
		Key:        v.sounding,
		Volts:      v.volts,
		Target:     v.target,
		Word:       v.word,
		Gate:       v.gate.Level(),
		Held:       held,
		Shift:      v.shift,
		Retriggers: v.retriggers,
		Dropped:    v.stack.Dropped(),
		Invalid:    v.invalid,
		DACErrors:  v.dacErrors,
	}
}

func (v *Voice) publish(ev keys.Event) {
	if len(v.observers) == 0 {
		return
	}
	// Observers may keep the state, so each publish gets its own slice
	st := v.snapshot(ev, v.stack.AppendKeys(make([]keys.ID, 0, v.stack.Len())))
	for _, fn := range v.observers {
		fn(st)
	}
}
