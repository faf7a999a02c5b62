package matrix

import "go-cvkeys/keys"

// Debouncer filters raw switch readings. It returns the stable state of key.
type Debouncer interface {
	Debounce(key keys.ID, pressed bool) bool
}

// Passthrough trusts every reading
type Passthrough struct{}

func (Passthrough) Debounce(_ keys.ID, pressed bool) bool { return pressed }

// Counter accepts a change once it has been read on n consecutive scans
type Counter struct {
	n      uint8
	stable [256]bool
	count  [256]uint8
}

// NewCounter returns a Counter requiring n consistent scans. n <= 1 accepts
// every change immediately.
func NewCounter(n int) *Counter {
	if n < 1 {
		n = 1
	}
	if n > 255 {
		n = 255
	}
	return &Counter{n: uint8(n)}
}

func (c *Counter) Debounce(key keys.ID, pressed bool) bool {
	if pressed == c.stable[key] {
		c.count[key] = 0
		return pressed
	}
	c.count[key]++
	if c.count[key] >= c.n {
		c.stable[key] = pressed
		c.count[key] = 0
	}
	return c.stable[key]
}
