// Package gate drives the boolean gate line that starts a synth envelope.
package gate

import (
	"errors"
	"fmt"
)

// Output is the physical gate line
type Output interface {
	SetLevel(high bool) error
}

// OutputFunc adapts a function to Output
type OutputFunc func(high bool) error

func (f OutputFunc) SetLevel(high bool) error { return f(high) }

// Controller tracks the gate level and counts triggers
type Controller struct {
	out      Output
	high     bool
	triggers uint64
}

// New wraps out. A nil output gives a gate that only tracks state.
func New(out Output) *Controller {
	if out == nil {
		out = OutputFunc(func(bool) error { return nil })
	}
	return &Controller{out: out}
}

// Assert raises the gate
func (c *Controller) Assert() error {
	if err := c.out.SetLevel(true); err != nil {
		return fmt.Errorf("gate: assert: %w", err)
	}
	c.high = true
	c.triggers++
	return nil
}

// Deassert lowers the gate. The level is recorded low even when the
// output reports an error.
func (c *Controller) Deassert() error {
	c.high = false
	if err := c.out.SetLevel(false); err != nil {
		return fmt.Errorf("gate: deassert: %w", err)
	}
	return nil
}

// Level returns the last level set
func (c *Controller) Level() bool { return c.high }

// Triggers returns how many times the gate went high
func (c *Controller) Triggers() uint64 { return c.triggers }

// Tee fans one level out to several outputs
type Tee []Output

func (t Tee) SetLevel(high bool) error {
	var errs []error
	for _, o := range t {
		if err := o.SetLevel(high); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
