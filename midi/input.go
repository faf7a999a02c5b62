package midi

import (
	"context"

	"go-cvkeys/debug"
	"go-cvkeys/keys"
)

// Keyboard is the matrix MIDI notes are played onto
type Keyboard interface {
	Press(id keys.ID) error
	Release(id keys.ID) error
	ReleaseAll()
}

// Route plays the notes of every connected controller onto kb until ctx is
// done. Keys held on a controller that disconnects are released.
func Route(ctx context.Context, dm *DeviceManager, kb Keyboard, nm NoteMap) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-dm.Events():
			if !ok {
				return
			}
			switch ev.Type {
			case DeviceConnected:
				debug.Log("midi", "keyboard connected: %s", ev.ID)
				go Play(ctx, ev.Controller.NoteEvents(), kb, nm)
			case DeviceDisconnected:
				debug.Log("midi", "keyboard disconnected: %s", ev.ID)
				kb.ReleaseAll()
			}
		}
	}
}

// Play applies note events to kb until the channel closes or ctx is done
func Play(ctx context.Context, notes <-chan NoteEvent, kb Keyboard, nm NoteMap) {
	for {
		select {
		case <-ctx.Done():
			return
		case n, ok := <-notes:
			if !ok {
				return
			}
			id, ok := nm.Key(n.Note)
			if !ok {
				debug.Log("midi", "note %d outside keybed", n.Note)
				continue
			}
			var err error
			if n.On {
				err = kb.Press(id)
			} else {
				err = kb.Release(id)
			}
			if err != nil {
				debug.Log("midi", "note %d: %v", n.Note, err)
			}
		}
	}
}
