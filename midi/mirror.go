package midi

import (
	"fmt"

	gomidi "gitlab.com/gomidi/midi/v2"

	"go-cvkeys/debug"
	"go-cvkeys/voice"
)

// Mirror echoes the sounding key as MIDI notes so a software synth can
// follow the CV output. Every retrigger sends a note off then a note on.
type Mirror struct {
	send    func(gomidi.Message) error
	channel uint8 // 0-15
	nm      NoteMap

	note       uint8
	playing    bool
	retriggers uint64
}

// NewMirror sends through send on MIDI channel ch (1-16)
func NewMirror(send func(gomidi.Message) error, ch uint8, nm NoteMap) *Mirror {
	if ch > 0 {
		ch--
	}
	return &Mirror{send: send, channel: ch & 0x0f, nm: nm}
}

// OpenMirror opens the named output port
func OpenMirror(portName string, ch uint8, nm NoteMap) (*Mirror, error) {
	out, err := gomidi.FindOutPort(portName)
	if err != nil {
		return nil, fmt.Errorf("midi: find output %q: %w", portName, err)
	}
	send, err := gomidi.SendTo(out)
	if err != nil {
		return nil, fmt.Errorf("midi: open output %q: %w", portName, err)
	}
	return NewMirror(send, ch, nm), nil
}

// Update follows a voice state. Register it with voice.Observe.
func (m *Mirror) Update(st voice.State) {
	if st.Retriggers == m.retriggers && st.Gate == m.playing {
		return
	}
	m.retriggers = st.Retriggers

	if m.playing {
		m.emit(gomidi.NoteOff(m.channel, m.note))
		m.playing = false
	}
	if !st.Gate {
		return
	}
	note, ok := m.nm.Note(st.Key)
	if !ok {
		return
	}
	m.emit(gomidi.NoteOn(m.channel, note, 100))
	m.note, m.playing = note, true
}

func (m *Mirror) emit(msg gomidi.Message) {
	if err := m.send(msg); err != nil {
		debug.Log("midi", "mirror: %v", err)
	}
}
