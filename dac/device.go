package dac

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"
)

// Bus shifts one 16-bit frame out to the converter
type Bus interface {
	Transfer16(word uint16) error
}

// Pin is a digital output. Chip select is active low.
type Pin interface {
	Set(high bool) error
}

// Default chip select timing around a transfer
const (
	DefaultSetupDelay = time.Microsecond
	DefaultHoldDelay  = time.Microsecond
)

// Option configures a Device
type Option func(*Device)

// WithSetupDelay sets the delay between chip select and the first clock
func WithSetupDelay(d time.Duration) Option {
	return func(dev *Device) { dev.setup = d }
}

// WithHoldDelay sets the delay between the last clock and chip select release
func WithHoldDelay(d time.Duration) Option {
	return func(dev *Device) { dev.hold = d }
}

// Device is an opened converter
type Device struct {
	mu    sync.Mutex
	cfg   Config
	bus   Bus
	cs    Pin
	setup time.Duration
	hold  time.Duration

	last   Word
	writes uint64
}

// Open validates cfg and parks chip select high
func Open(cfg Config, bus Bus, cs Pin, opts ...Option) (*Device, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if bus == nil {
		return nil, fmt.Errorf("%w: no bus", ErrInvalidConfig)
	}
	if cs == nil {
		cs = NopPin{}
	}
	dev := &Device{
		cfg:   cfg,
		bus:   bus,
		cs:    cs,
		setup: DefaultSetupDelay,
		hold:  DefaultHoldDelay,
	}
	for _, opt := range opts {
		opt(dev)
	}
	if err := cs.Set(true); err != nil {
		return nil, fmt.Errorf("dac: chip select: %w", err)
	}
	return dev, nil
}

// Config returns the validated configuration
func (d *Device) Config() Config { return d.cfg }

// Write sends one command word. The whole chip select window runs with the
// device locked and the goroutine pinned to its thread.
func (d *Device) Write(w Word) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if err := d.cs.Set(false); err != nil {
		return fmt.Errorf("dac: chip select: %w", err)
	}
	waitFor(d.setup)
	txErr := d.bus.Transfer16(uint16(w))
	waitFor(d.hold)
	csErr := d.cs.Set(true)

	if txErr != nil {
		return errors.Join(fmt.Errorf("dac: transfer: %w", txErr), csErr)
	}
	if csErr != nil {
		return fmt.Errorf("dac: chip select: %w", csErr)
	}
	d.last = w
	d.writes++
	return nil
}

// Output encodes volts and writes the result
func (d *Device) Output(volts float64) (Word, error) {
	w := Encode(d.cfg, volts)
	return w, d.Write(w)
}

// Last returns the most recent word written and the total write count
func (d *Device) Last() (Word, uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.last, d.writes
}

// NopPin ignores every level change
type NopPin struct{}

func (NopPin) Set(bool) error { return nil }

// TeeBus sends each frame to every bus in order and returns the first error
type TeeBus []Bus

func (t TeeBus) Transfer16(word uint16) error {
	var first error
	for _, b := range t {
		if err := b.Transfer16(word); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// BusFunc adapts a function to Bus
type BusFunc func(word uint16) error

func (f BusFunc) Transfer16(word uint16) error { return f(word) }
