// Package engine assembles the scanner, event queue and voice from a config
// and runs the scanning and voice goroutines.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bep/debounce"
	"golang.org/x/sync/errgroup"

	"go-cvkeys/config"
	"go-cvkeys/dac"
	"go-cvkeys/debug"
	"go-cvkeys/gate"
	"go-cvkeys/matrix"
	"go-cvkeys/queue"
	"go-cvkeys/voice"
)

// Hardware is what the engine drives
type Hardware struct {
	Scanner    matrix.Scanner
	Layout     matrix.Layout // DefaultLayout if nil
	Bus        dac.Bus
	ChipSelect dac.Pin
	Gate       gate.Output
}

// Stats aggregates counters from every stage
type Stats struct {
	Queue queue.Stats
	Voice voice.State
}

// Engine owns one keyboard pipeline
type Engine struct {
	cfg      *config.Config
	queue    *queue.Queue
	producer *matrix.Producer
	voice    *voice.Voice
	dac      *dac.Device

	mu   sync.Mutex
	last voice.State

	report      func(func())
	lastDropped uint64
	lastQueue   uint64
}

// New validates cfg and opens the DAC. Errors here are fatal at startup.
func New(cfg *config.Config, hw Hardware) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	if hw.Scanner == nil || hw.Bus == nil {
		return nil, errors.New("engine: scanner and bus are required")
	}
	if hw.Layout == nil {
		hw.Layout = matrix.DefaultLayout
	}

	dcfg, err := cfg.DACConfig()
	if err != nil {
		return nil, err
	}
	dev, err := dac.Open(dcfg, hw.Bus, hw.ChipSelect,
		dac.WithSetupDelay(time.Duration(cfg.DAC.SetupDelay)),
		dac.WithHoldDelay(time.Duration(cfg.DAC.HoldDelay)))
	if err != nil {
		return nil, fmt.Errorf("engine: open dac: %w", err)
	}

	qopts, err := cfg.QueueOptions()
	if err != nil {
		return nil, err
	}
	q := queue.New(qopts)

	var mopts []matrix.Option
	if cfg.Scan.Debounce > 1 {
		mopts = append(mopts, matrix.WithDebouncer(matrix.NewCounter(cfg.Scan.Debounce)))
	}
	prod, err := matrix.New(hw.Layout, hw.Scanner, q, mopts...)
	if err != nil {
		return nil, err
	}

	v, err := voice.New(cfg.VoiceConfig(), dev, gate.New(hw.Gate))
	if err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:      cfg,
		queue:    q,
		producer: prod,
		voice:    v,
		dac:      dev,
		report:   debounce.New(250 * time.Millisecond),
		last:     v.Snapshot(),
	}
	v.Observe(e.observe)
	return e, nil
}

// Observe registers fn for voice updates. Call before Run.
func (e *Engine) Observe(fn func(voice.State)) {
	e.voice.Observe(fn)
}

// Queue returns the event queue
func (e *Engine) Queue() *queue.Queue { return e.queue }

// DAC returns the opened converter
func (e *Engine) DAC() *dac.Device { return e.dac }

// Stats returns a snapshot of every counter
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Stats{Queue: e.queue.Stats(), Voice: e.last}
}

// Run scans and plays until ctx is done. On return the queue has been
// drained and the gate is low.
func (e *Engine) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	debug.Log("engine", "start mode=%s period=%v dac=%v", e.cfg.Scan.Mode, time.Duration(e.cfg.Scan.Period), e.dac.Config())

	g.Go(func() error {
		defer e.queue.Close()
		return e.producer.Run(gctx, time.Duration(e.cfg.Scan.Period))
	})
	g.Go(func() error {
		if e.cfg.Scan.Mode == config.ScanSignal {
			e.voice.RunSignalled(e.queue)
		} else {
			e.voice.Run(e.queue)
		}
		return nil
	})

	err := g.Wait()
	if serr := e.voice.Silence(); serr != nil {
		err = errors.Join(err, serr)
	}
	st := e.producer.Stats()
	debug.Log("engine", "stopped scans=%d events=%d dropped=%d errors=%d", st.Scans, st.Events, st.Dropped, st.Errors)
	return err
}

// observe runs on the voice goroutine
func (e *Engine) observe(st voice.State) {
	e.mu.Lock()
	e.last = st
	e.mu.Unlock()

	qd := e.queue.Stats().Dropped
	if st.Dropped == e.lastDropped && qd == e.lastQueue {
		return
	}
	e.lastDropped, e.lastQueue = st.Dropped, qd
	e.report(func() {
		debug.Log("engine", "overflow: %d presses over capacity, %d events dropped by queue", st.Dropped, qd)
	})
}
