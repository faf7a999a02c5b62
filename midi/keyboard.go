package midi

import (
	"fmt"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// KeyboardController handles a standard MIDI keyboard
type KeyboardController struct {
	id       string
	inPort   drivers.In
	stopFunc func()

	noteChan chan NoteEvent
}

// NewKeyboardController creates a keyboard controller (input only)
func NewKeyboardController(id string, inPort drivers.In) (*KeyboardController, error) {
	kb := &KeyboardController{
		id:       id,
		inPort:   inPort,
		noteChan: make(chan NoteEvent, 32),
	}

	// Open input
	if inPort != nil {
		stop, err := gomidi.ListenTo(inPort, func(msg gomidi.Message, timestampms int32) {
			if ev, ok := decodeNote(msg); ok {
				select {
				case kb.noteChan <- ev:
				default:
				}
			}
		})
		if err != nil {
			return nil, fmt.Errorf("open input: %w", err)
		}
		kb.stopFunc = stop
	}

	return kb, nil
}

// decodeNote turns note on/off messages into NoteEvents. A note on with zero
// velocity is a release.
func decodeNote(msg gomidi.Message) (NoteEvent, bool) {
	var channel, note, velocity uint8
	switch {
	case msg.GetNoteOn(&channel, &note, &velocity):
		return NoteEvent{Note: note, Velocity: velocity, Channel: channel, On: velocity > 0}, true
	case msg.GetNoteOff(&channel, &note, &velocity):
		return NoteEvent{Note: note, Velocity: velocity, Channel: channel}, true
	}
	return NoteEvent{}, false
}

func (kb *KeyboardController) ID() string {
	return kb.id
}

func (kb *KeyboardController) NoteEvents() <-chan NoteEvent {
	return kb.noteChan
}

func (kb *KeyboardController) Close() error {
	if kb.stopFunc != nil {
		kb.stopFunc()
	}
	close(kb.noteChan)
	return nil
}
