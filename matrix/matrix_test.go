package matrix

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"go-cvkeys/keys"
	"go-cvkeys/queue"
)

type sink struct {
	events []keys.Event
	full   bool
}

func (s *sink) Push(ev keys.Event) bool {
	if s.full {
		return false
	}
	s.events = append(s.events, ev)
	return true
}

func (s *sink) take() []keys.Event {
	e := s.events
	s.events = nil
	return e
}

func scanAll(t *testing.T, p *Producer) {
	t.Helper()
	for c := 0; c < DefaultLayout.Cols(); c++ {
		if err := p.Tick(); err != nil {
			t.Fatalf("Tick: %v", err)
		}
	}
}

func TestDefaultLayout(t *testing.T) {
	if err := DefaultLayout.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if DefaultLayout.Rows() != 6 || DefaultLayout.Cols() != 10 {
		t.Fatalf("layout %dx%d", DefaultLayout.Rows(), DefaultLayout.Cols())
	}
	idx := DefaultLayout.Index()
	for id := keys.MinKeybed; id <= keys.MaxFunction; id++ {
		if _, ok := idx[id]; !ok {
			t.Errorf("key %s missing from layout", id)
		}
	}
	if len(idx) != int(keys.MaxFunction) {
		t.Fatalf("layout holds %d keys", len(idx))
	}
}

func TestLayoutValidate(t *testing.T) {
	dup := Layout{{keys.C1, keys.C1}}
	if err := dup.Validate(); err == nil {
		t.Fatalf("duplicate key accepted")
	}
	ragged := Layout{{keys.C1, keys.D1}, {keys.E1}}
	if err := ragged.Validate(); err == nil {
		t.Fatalf("ragged layout accepted")
	}
	if err := (Layout{}).Validate(); err == nil {
		t.Fatalf("empty layout accepted")
	}
}

func TestProducerTransitions(t *testing.T) {
	vm := NewVirtual(DefaultLayout)
	s := &sink{}
	p, err := New(DefaultLayout, vm, s)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	scanAll(t, p)
	if got := s.take(); len(got) != 0 {
		t.Fatalf("idle matrix produced %v", got)
	}

	vm.Press(keys.C1)
	vm.Press(keys.G2)
	scanAll(t, p)
	got := s.take()
	// C1 is in column 0, G2 in column 4
	want := []keys.Event{keys.Press(keys.C1), keys.Press(keys.G2)}
	if !slices.Equal(got, want) {
		t.Fatalf("events=%v; want %v", got, want)
	}

	// Held keys do not repeat
	scanAll(t, p)
	if got := s.take(); len(got) != 0 {
		t.Fatalf("held keys repeated: %v", got)
	}

	vm.Release(keys.C1)
	scanAll(t, p)
	if got := s.take(); !slices.Equal(got, []keys.Event{keys.Release(keys.C1)}) {
		t.Fatalf("events=%v", got)
	}
}

func TestProducerCountsDrops(t *testing.T) {
	vm := NewVirtual(DefaultLayout)
	s := &sink{full: true}
	p, _ := New(DefaultLayout, vm, s)
	vm.Press(keys.E1)
	scanAll(t, p)
	st := p.Stats()
	if st.Events != 1 || st.Dropped != 1 {
		t.Fatalf("stats=%+v", st)
	}
}

func TestOverflowRetriesTransition(t *testing.T) {
	vm := NewVirtual(DefaultLayout)
	q := queue.New(queue.Options{Capacity: 1})
	p, _ := New(DefaultLayout, vm, q)

	vm.Press(keys.C1)
	scanAll(t, p)
	// Leave the press queued so the release finds the queue full
	vm.Release(keys.C1)
	scanAll(t, p)
	if q.Stats().Dropped != 1 {
		t.Fatalf("queue stats=%+v", q.Stats())
	}

	if ev, _ := q.TryPop(); ev != keys.Press(keys.C1) {
		t.Fatalf("got %v; want press C1", ev)
	}
	for r := 0; r < 5; r++ {
		scanAll(t, p)
	}
	if ev, ok := q.TryPop(); !ok || ev != keys.Release(keys.C1) {
		t.Fatalf("got %v ok=%v; want release C1 after the queue drained", ev, ok)
	}
	if _, ok := q.TryPop(); ok {
		t.Fatalf("release sent more than once")
	}
	st := p.Stats()
	if st.Events != 3 || st.Dropped != 1 {
		t.Fatalf("stats=%+v", st)
	}
}

func TestProducerRetriesUntilAccepted(t *testing.T) {
	vm := NewVirtual(DefaultLayout)
	s := &sink{full: true}
	p, _ := New(DefaultLayout, vm, s)
	vm.Press(keys.E1)
	scanAll(t, p)
	scanAll(t, p)
	if p.Stats().Dropped != 2 {
		t.Fatalf("stats=%+v", p.Stats())
	}
	s.full = false
	scanAll(t, p)
	if got := s.take(); !slices.Equal(got, []keys.Event{keys.Press(keys.E1)}) {
		t.Fatalf("events=%v", got)
	}
	scanAll(t, p)
	if got := s.take(); len(got) != 0 {
		t.Fatalf("accepted press repeated: %v", got)
	}
}

type failScanner struct{}

func (failScanner) ScanColumn(int) (uint32, error) { return 0, errors.New("bus fault") }

func TestProducerScanError(t *testing.T) {
	p, _ := New(DefaultLayout, failScanner{}, &sink{})
	if err := p.Tick(); err == nil {
		t.Fatalf("expected scan error")
	}
	if p.Stats().Errors != 1 {
		t.Fatalf("error not counted")
	}
}

func TestCounterDebounce(t *testing.T) {
	c := NewCounter(3)
	seq := []bool{true, false, true, true, true, true, false, false, false}
	want := []bool{false, false, false, false, true, true, true, true, false}
	for i, raw := range seq {
		if got := c.Debounce(keys.C1, raw); got != want[i] {
			t.Fatalf("step %d: got %v; want %v", i, got, want[i])
		}
	}
}

func TestProducerWithDebouncer(t *testing.T) {
	vm := NewVirtual(DefaultLayout)
	s := &sink{}
	p, _ := New(DefaultLayout, vm, s, WithDebouncer(NewCounter(2)))

	vm.Press(keys.C1)
	p.ScanColumn(0)
	if len(s.events) != 0 {
		t.Fatalf("single reading passed the debouncer")
	}
	p.ScanColumn(0)
	if !slices.Equal(s.take(), []keys.Event{keys.Press(keys.C1)}) {
		t.Fatalf("stable press not reported")
	}
}

func TestVirtual(t *testing.T) {
	vm := NewVirtual(DefaultLayout)
	if err := vm.Press(keys.ID(200)); err == nil {
		t.Fatalf("unknown key accepted")
	}
	on, err := vm.Toggle(keys.Mode)
	if err != nil || !on || !vm.Down(keys.Mode) {
		t.Fatalf("Toggle: on=%v err=%v", on, err)
	}
	// Mode sits on row 3 of the last column
	rows, _ := vm.ScanColumn(9)
	if rows != 1<<3 {
		t.Fatalf("rows=%b", rows)
	}
	vm.ReleaseAll()
	if vm.Down(keys.Mode) {
		t.Fatalf("ReleaseAll left Mode down")
	}
	if _, err := vm.ScanColumn(10); err == nil {
		t.Fatalf("out of range column accepted")
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	vm := NewVirtual(DefaultLayout)
	s := &chanSink{ch: make(chan keys.Event, 4)}
	p, _ := New(DefaultLayout, vm, s)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx, time.Millisecond) }()

	vm.Press(keys.A3)
	select {
	case ev := <-s.ch:
		if ev != keys.Press(keys.A3) {
			t.Fatalf("got %v", ev)
		}
	case <-time.After(time.Second):
		t.Fatalf("press not scanned")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("Run did not stop")
	}
}

type chanSink struct{ ch chan keys.Event }

func (c *chanSink) Push(ev keys.Event) bool {
	select {
	case c.ch <- ev:
		return true
	default:
		return false
	}
}
