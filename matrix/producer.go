package matrix

import (
	"context"
	"fmt"
	"time"

	"go-cvkeys/debug"
	"go-cvkeys/keys"
)

// DefaultScanPeriod is the time to scan every column once
const DefaultScanPeriod = 2 * time.Millisecond

// Scanner reads one column of the matrix. Bit r of the result is set when
// the switch on row r is closed.
type Scanner interface {
	ScanColumn(col int) (uint32, error)
}

// Sink accepts key events. queue.Queue satisfies it.
type Sink interface {
	Push(ev keys.Event) bool
}

// Option configures a Producer
type Option func(*Producer)

// WithDebouncer installs d between the scanner and the sink
func WithDebouncer(d Debouncer) Option {
	return func(p *Producer) { p.debounce = d }
}

// Stats counts producer activity
type Stats struct {
	Scans   uint64
	Events  uint64
	Dropped uint64
	Errors  uint64
}

// Producer owns the scan state. Only the scanning goroutine may call it.
type Producer struct {
	layout   Layout
	scanner  Scanner
	sink     Sink
	debounce Debouncer

	down  [256]bool
	col   int
	stats Stats
}

// New creates a producer scanning layout through s into sink
func New(layout Layout, s Scanner, sink Sink, opts ...Option) (*Producer, error) {
	if err := layout.Validate(); err != nil {
		return nil, err
	}
	if s == nil || sink == nil {
		return nil, fmt.Errorf("matrix: scanner and sink are required")
	}
	p := &Producer{
		layout:   layout,
		scanner:  s,
		sink:     sink,
		debounce: Passthrough{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// ScanColumn reads col and pushes one event per changed key. It returns the
// number of transitions found. A key only takes its new state once the sink
// accepts the event, so an overflow delays a transition without losing it.
func (p *Producer) ScanColumn(col int) (int, error) {
	rows, err := p.scanner.ScanColumn(col)
	if err != nil {
		p.stats.Errors++
		return 0, fmt.Errorf("matrix: scan column %d: %w", col, err)
	}
	p.stats.Scans++

	n := 0
	for r := range p.layout {
		key := p.layout[r][col]
		if key == keys.None {
			continue
		}
		pressed := p.debounce.Debounce(key, rows&(1<<r) != 0)
		if pressed == p.down[key] {
			continue
		}

		ev := keys.Release(key)
		if pressed {
			ev = keys.Press(key)
		}
		n++
		p.stats.Events++
		// A rejected transition stays pending and is sent again on the next
		// scan of this column
		if !p.sink.Push(ev) {
			p.stats.Dropped++
			debug.Log("scan", "queue full, dropped %s", ev)
			continue
		}
		p.down[key] = pressed
	}
	return n, nil
}

// Tick scans the next column
func (p *Producer) Tick() error {
	col := p.col
	p.col = (p.col + 1) % p.layout.Cols()
	_, err := p.ScanColumn(col)
	return err
}

// Stats returns the producer counters
func (p *Producer) Stats() Stats { return p.stats }

// Run ticks one column at a time so the whole matrix is read once per
// period. Scan errors are logged and scanning continues.
func (p *Producer) Run(ctx context.Context, period time.Duration) error {
	if period <= 0 {
		period = DefaultScanPeriod
	}
	interval := period / time.Duration(p.layout.Cols())
	if interval <= 0 {
		interval = time.Microsecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := p.Tick(); err != nil {
				debug.LogEvery(100, "scan", "%v", err)
			}
		}
	}
}
