package bridge

import (
	"fmt"
	"io"
	"sync"

	"go.bug.st/serial"

	"go-cvkeys/dac"
	"go-cvkeys/debug"
	"go-cvkeys/gate"
)

// DefaultBaud is used when the config leaves the rate unset
const DefaultBaud = 115200

// Bridge sends DAC words, chip select and gate levels as frames over a
// byte stream
type Bridge struct {
	mu     sync.Mutex
	w      io.Writer
	closer io.Closer
	frames uint64
}

// New writes frames to w
func New(w io.Writer) *Bridge {
	b := &Bridge{w: w}
	if c, ok := w.(io.Closer); ok {
		b.closer = c
	}
	return b
}

// Open opens the named serial device
func Open(name string, baud int) (*Bridge, error) {
	if baud <= 0 {
		baud = DefaultBaud
	}
	mode := &serial.Mode{BaudRate: baud}
	p, err := serial.Open(name, mode)
	if err != nil {
		return nil, fmt.Errorf("serial: open %s: %w", name, err)
	}
	debug.Log("serial", "port %s opened at %d baud", name, baud)
	return New(p), nil
}

// Ports lists the serial devices present
func Ports() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("serial: list ports: %w", err)
	}
	return ports, nil
}

func (b *Bridge) send(frame []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, err := b.w.Write(frame); err != nil {
		return fmt.Errorf("serial: write: %w", err)
	}
	b.frames++
	return nil
}

// Transfer16 implements dac.Bus
func (b *Bridge) Transfer16(word uint16) error {
	return b.send(DACFrame(word))
}

// Frames returns the number of frames written
func (b *Bridge) Frames() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.frames
}

// ChipSelect returns the remote chip select line
func (b *Bridge) ChipSelect() dac.Pin {
	return pin{b: b, cmd: CmdChipSelect}
}

// Gate returns the remote gate line
func (b *Bridge) Gate() gate.Output {
	return pin{b: b, cmd: CmdGate}
}

// Close closes the underlying port
func (b *Bridge) Close() error {
	if b.closer == nil {
		return nil
	}
	debug.Log("serial", "closing port")
	return b.closer.Close()
}

type pin struct {
	b   *Bridge
	cmd byte
}

func (p pin) Set(high bool) error      { return p.b.send(LevelFrame(p.cmd, high)) }
func (p pin) SetLevel(high bool) error { return p.Set(high) }
