package midi

import "go-cvkeys/keys"

// NoteMap places the keybed on the MIDI note range. Base is the MIDI note
// that plays C1.
type NoteMap struct {
	Base uint8
}

// Key returns the keybed key for a MIDI note
func (m NoteMap) Key(note uint8) (keys.ID, bool) {
	if note < m.Base {
		return keys.None, false
	}
	id := int(note-m.Base) + int(keys.MinKeybed)
	if id > int(keys.MaxKeybed) {
		return keys.None, false
	}
	return keys.ID(id), true
}

// Note returns the MIDI note for a keybed key
func (m NoteMap) Note(id keys.ID) (uint8, bool) {
	if !keys.IsKeybed(id) {
		return 0, false
	}
	n := int(m.Base) + int(id-keys.MinKeybed)
	if n > 127 {
		return 0, false
	}
	return uint8(n), true
}
