package matrix

import (
	"fmt"
	"sync"

	"go-cvkeys/keys"
)

// Virtual is an in-memory matrix. Any goroutine may press and release keys;
// the producer reads it through ScanColumn.
type Virtual struct {
	mu     sync.Mutex
	layout Layout
	index  map[keys.ID]Position
	down   [256]bool
}

// NewVirtual creates an idle matrix with the given layout
func NewVirtual(layout Layout) *Virtual {
	return &Virtual{layout: layout, index: layout.Index()}
}

// Press closes the switch for id
func (v *Virtual) Press(id keys.ID) error { return v.set(id, true) }

// Release opens the switch for id
func (v *Virtual) Release(id keys.ID) error { return v.set(id, false) }

// Toggle flips id and returns the new state
func (v *Virtual) Toggle(id keys.ID) (bool, error) {
	if _, ok := v.index[id]; !ok {
		return false, fmt.Errorf("matrix: key %s not in layout", id)
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.down[id] = !v.down[id]
	return v.down[id], nil
}

// ReleaseAll opens every switch
func (v *Virtual) ReleaseAll() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.down = [256]bool{}
}

// Down reports whether id is held
func (v *Virtual) Down(id keys.ID) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.down[id]
}

func (v *Virtual) set(id keys.ID, pressed bool) error {
	if _, ok := v.index[id]; !ok {
		return fmt.Errorf("matrix: key %s not in layout", id)
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.down[id] = pressed
	return nil
}

// ScanColumn implements Scanner
func (v *Virtual) ScanColumn(col int) (uint32, error) {
	if col < 0 || col >= v.layout.Cols() {
		return 0, fmt.Errorf("column %d out of range", col)
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	var rows uint32
	for r := range v.layout {
		if id := v.layout[r][col]; id != keys.None && v.down[id] {
			rows |= 1 << r
		}
	}
	return rows, nil
}
