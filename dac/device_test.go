package dac

import (
	"errors"
	"fmt"
	"slices"
	"testing"
)

// recorder logs chip select and bus activity in order
type recorder struct {
	ops   []string
	txErr error
}

func (r *recorder) Transfer16(w uint16) error {
	r.ops = append(r.ops, fmt.Sprintf("tx %#04x", w))
	return r.txErr
}

func (r *recorder) Set(high bool) error {
	if high {
		r.ops = append(r.ops, "cs high")
	} else {
		r.ops = append(r.ops, "cs low")
	}
	return nil
}

func TestOpenParksChipSelect(t *testing.T) {
	r := &recorder{}
	if _, err := Open(DefaultConfig(), r, r); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if !slices.Equal(r.ops, []string{"cs high"}) {
		t.Fatalf("ops=%v", r.ops)
	}
}

func TestOpenRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ResolutionBits = 11
	r := &recorder{}
	if _, err := Open(cfg, r, r); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("err=%v", err)
	}
	if len(r.ops) != 0 {
		t.Fatalf("invalid open touched hardware: %v", r.ops)
	}
	if _, err := Open(DefaultConfig(), nil, r); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("nil bus: err=%v", err)
	}
}

func TestWriteFraming(t *testing.T) {
	r := &recorder{}
	dev, err := Open(DefaultConfig(), r, r, WithSetupDelay(0), WithHoldDelay(0))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	r.ops = nil

	w, err := dev.Output((1.0 / 12) / 3.2)
	if err != nil {
		t.Fatalf("Output: %v", err)
	}
	if w != 0x702A {
		t.Fatalf("word=%v", w)
	}
	want := []string{"cs low", "tx 0x702a", "cs high"}
	if !slices.Equal(r.ops, want) {
		t.Fatalf("ops=%v; want %v", r.ops, want)
	}
	last, n := dev.Last()
	if last != w || n != 1 {
		t.Fatalf("Last=%v,%d", last, n)
	}
}

func TestWriteFailureReleasesChipSelect(t *testing.T) {
	boom := errors.New("boom")
	r := &recorder{}
	dev, err := Open(DefaultConfig(), r, r)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	r.ops = nil
	r.txErr = boom

	if err := dev.Write(0x7000); !errors.Is(err, boom) {
		t.Fatalf("err=%v", err)
	}
	if r.ops[len(r.ops)-1] != "cs high" {
		t.Fatalf("chip select left low: %v", r.ops)
	}
	if _, n := dev.Last(); n != 0 {
		t.Fatalf("failed write counted")
	}
}

func TestTeeBus(t *testing.T) {
	var a, b []uint16
	boom := errors.New("boom")
	tee := TeeBus{
		BusFunc(func(w uint16) error { a = append(a, w); return boom }),
		BusFunc(func(w uint16) error { b = append(b, w); return nil }),
	}
	if err := tee.Transfer16(0x1234); !errors.Is(err, boom) {
		t.Fatalf("err=%v", err)
	}
	if len(a) != 1 || len(b) != 1 {
		t.Fatalf("tee did not reach every bus: %v %v", a, b)
	}
}
