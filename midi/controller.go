package midi

// Controller is the interface for MIDI input devices
type Controller interface {
	ID() string

	// Input events from the controller
	NoteEvents() <-chan NoteEvent

	// Lifecycle
	Close() error
}
