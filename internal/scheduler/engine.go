package scheduler

import (
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sandeepkv93/eventd/internal/store"
)

const DefaultInterval = 30 * time.Second

var ErrInvalidInterval = errors.New("scheduler: interval must be positive")

// Source is the part of the event store a sweep needs. CollectDue must flip
// each returned reminder to fired before it releases its lock.
type Source interface {
	CollectDue(now time.Time, maxLateness time.Duration) ([]store.Due, int)
}

// DueFunc receives one due reminder. It runs on the engine goroutine, or on
// the caller's goroutine for Sweep, and never while the store is locked.
type DueFunc func(store.Due)

type Options struct {
	Interval    time.Duration
	MaxLateness time.Duration
	Now         func() time.Time
	Logger      *slog.Logger
}

type Stats struct {
	Sweeps    uint64
	Delivered uint64
	Skipped   uint64
	LastSweep time.Time
}

// Engine polls a Source on a fixed interval and hands every due reminder to
// its DueFunc exactly once.
type Engine struct {
	src   Source
	onDue DueFunc
	opts  Options

	mu      sync.Mutex
	kick    chan struct{}
	stopCh  chan struct{}
	doneCh  chan struct{}
	started bool
	stopped bool

	sweeps    atomic.Uint64
	delivered atomic.Uint64
	skipped   atomic.Uint64
	lastSweep atomic.Int64
}

func NewEngine(src Source, onDue DueFunc, opts Options) (*Engine, error) {
	if opts.Interval == 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Interval < 0 {
		return nil, ErrInvalidInterval
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if onDue == nil {
		onDue = func(store.Due) {}
	}
	return &Engine{
		src:    src,
		onDue:  onDue,
		opts:   opts,
		kick:   make(chan struct{}, 1),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}, nil
}

// Start launches the polling loop. The first sweep runs immediately. Calling
// Start twice, or after Stop, does nothing.
func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started || e.stopped {
		return
	}
	e.started = true
	go e.loop()
}

// Stop ends the loop and waits for an in-flight sweep to finish. No DueFunc
// call from the loop happens after Stop returns.
func (e *Engine) Stop() {
	e.mu.Lock()
	if e.stopped {
		e.mu.Unlock()
		return
	}
	e.stopped = true
	close(e.stopCh)
	started := e.started
	e.mu.Unlock()
	if started {
		<-e.doneCh
	}
}

// Kick asks the loop to sweep now instead of waiting for the next tick.
func (e *Engine) Kick() {
	select {
	case e.kick <- struct{}{}:
	default:
	}
}

// Sweep runs one pass synchronously and returns how many reminders were
// delivered. It does nothing once the engine is stopped.
func (e *Engine) Sweep() int {
	if e.isStopped() {
		return 0
	}
	return e.sweep()
}

func (e *Engine) Stats() Stats {
	st := Stats{
		Sweeps:    e.sweeps.Load(),
		Delivered: e.delivered.Load(),
		Skipped:   e.skipped.Load(),
	}
	if ns := e.lastSweep.Load(); ns != 0 {
		st.LastSweep = time.Unix(0, ns)
	}
	return st
}

func (e *Engine) Interval() time.Duration {
	return e.opts.Interval
}

func (e *Engine) loop() {
	defer close(e.doneCh)

	ticker := time.NewTicker(e.opts.Interval)
	defer ticker.Stop()

	e.sweep()
	for {
		select {
		case <-ticker.C:
		case <-e.kick:
		case <-e.stopCh:
			return
		}
		if e.isStopped() {
			return
		}
		e.sweep()
	}
}

func (e *Engine) sweep() int {
	now := e.opts.Now()
	due, skipped := e.src.CollectDue(now, e.opts.MaxLateness)

	e.sweeps.Add(1)
	e.lastSweep.Store(now.UnixNano())
	if skipped > 0 {
		e.skipped.Add(uint64(skipped))
		e.opts.Logger.Warn("skipped stale reminders", "count", skipped, "max_lateness", e.opts.MaxLateness)
	}

	for _, d := range due {
		e.opts.Logger.Info("reminder due",
			"title", d.Event.Title,
			"occurs_at", d.Event.OccursAt,
			"offset_minutes", d.OffsetMinutes,
		)
		e.onDue(d)
		e.delivered.Add(1)
	}
	return len(due)
}

func (e *Engine) isStopped() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stopped
}
