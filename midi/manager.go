package midi

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register MIDI driver
)

// DefaultExclude lists virtual/system ports that are never auto-connected
var DefaultExclude = []string{"midi through", "through port", "dummy"}

// DeviceEvent is emitted when controllers connect/disconnect
type DeviceEvent struct {
	Type       DeviceEventType
	Controller Controller
	ID         string
}

type DeviceEventType int

const (
	DeviceConnected DeviceEventType = iota
	DeviceDisconnected
)

// Filter picks which input ports become keyboards. Patterns are
// case-insensitive substrings; an empty Include accepts every port.
type Filter struct {
	Include []string
	Exclude []string
}

// Match reports whether the port name passes the filter
func (f Filter) Match(name string) bool {
	name = strings.ToLower(name)
	contains := func(p string) bool { return strings.Contains(name, strings.ToLower(p)) }
	if lo.SomeBy(f.Exclude, contains) {
		return false
	}
	return len(f.Include) == 0 || lo.SomeBy(f.Include, contains)
}

// DeviceManager handles hot-plug detection of MIDI keyboards
type DeviceManager struct {
	controllers map[string]Controller
	mu          sync.RWMutex
	events      chan DeviceEvent
	pollRate    time.Duration
	filter      Filter
}

// NewDeviceManager creates a new device manager
func NewDeviceManager(filter Filter) *DeviceManager {
	if filter.Exclude == nil {
		filter.Exclude = DefaultExclude
	}
	return &DeviceManager{
		controllers: make(map[string]Controller),
		events:      make(chan DeviceEvent, 16),
		pollRate:    time.Second,
		filter:      filter,
	}
}

// Events returns a channel of device connect/disconnect events
func (dm *DeviceManager) Events() <-chan DeviceEvent {
	return dm.events
}

// Controllers returns a snapshot of connected controller IDs
func (dm *DeviceManager) Controllers() []string {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	return lo.Keys(dm.controllers)
}

// Run starts the polling loop (blocking - run in goroutine)
func (dm *DeviceManager) Run(ctx context.Context) {
	ticker := time.NewTicker(dm.pollRate)
	defer ticker.Stop()

	// Initial scan
	dm.scan()

	for {
		select {
		case <-ctx.Done():
			dm.closeAll()
			close(dm.events)
			return
		case <-ticker.C:
			dm.scan()
		}
	}
}

// InPorts lists input port names, giving up after timeout (CoreMIDI can hang)
func InPorts(timeout time.Duration) ([]drivers.In, bool) {
	ch := make(chan []drivers.In, 1)
	go func() {
		ch <- gomidi.GetInPorts()
	}()
	select {
	case ins := <-ch:
		return ins, true
	case <-time.After(timeout):
		return nil, false
	}
}

func (dm *DeviceManager) scan() {
	inPorts, ok := InPorts(3 * time.Second)
	if !ok {
		// MIDI service is hung - skip this scan
		return
	}

	// Build map of what we see now
	seenIDs := make(map[string]bool)

	for _, inPort := range lo.Filter(inPorts, func(p drivers.In, _ int) bool { return dm.filter.Match(p.String()) }) {
		id := inPort.String()
		seenIDs[id] = true

		dm.mu.RLock()
		_, exists := dm.controllers[id]
		dm.mu.RUnlock()
		if exists {
			continue
		}

		kb, err := NewKeyboardController(id, inPort)
		if err != nil {
			continue
		}

		dm.mu.Lock()
		dm.controllers[id] = kb
		dm.mu.Unlock()

		dm.events <- DeviceEvent{
			Type:       DeviceConnected,
			Controller: kb,
			ID:         id,
		}
	}

	// Check for disconnects
	dm.mu.Lock()
	var toRemove []string
	for id := range dm.controllers {
		if !seenIDs[id] {
			toRemove = append(toRemove, id)
		}
	}
	for _, id := range toRemove {
		c := dm.controllers[id]
		c.Close()
		delete(dm.controllers, id)
		dm.events <- DeviceEvent{
			Type: DeviceDisconnected,
			ID:   id,
		}
	}
	dm.mu.Unlock()
}

func (dm *DeviceManager) closeAll() {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	for _, c := range dm.controllers {
		c.Close()
	}
	dm.controllers = make(map[string]Controller)
}
