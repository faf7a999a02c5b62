package midi

// NoteEvent is sent when a note is played or released on a keyboard
type NoteEvent struct {
	Note     uint8
	Velocity uint8
	Channel  uint8
	On       bool
}
