package tailer

import (
	"context"
	"errors"
	"path/filepath"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/hashicorp/go-hclog"

	"github.com/ccollicutt/logaroo/pkg/telemetry"
)

// DefaultWorkers is the number of workers used when none is configured.
const DefaultWorkers = 4

// ErrDispatcherClosed is returned by Dispatch after Close.
var ErrDispatcherClosed = errors.New("dispatcher closed")

// Dispatcher serializes notifications per path. Each path hashes onto one
// worker, which owns a Reader and handles that path's events in arrival
// order. Different paths may be processed concurrently.
type Dispatcher struct {
	workers []*worker
	logger  hclog.Logger
	stats   *Stats

	wg sync.WaitGroup

	// quit is closed at the start of Close so Dispatch calls blocked on a
	// full queue release their read lock.
	quit     chan struct{}
	quitOnce sync.Once

	mu      sync.RWMutex
	started bool
	closed  bool
}

type worker struct {
	id     int
	events chan Event
	reader *Reader
}

// NewDispatcher creates a Dispatcher with n workers. Options are shared by
// every worker's Reader.
func NewDispatcher(sink telemetry.Sink, n int, opts Options) *Dispatcher {
	if n <= 0 {
		n = DefaultWorkers
	}
	opts.setDefaults()

	d := &Dispatcher{
		workers: make([]*worker, n),
		logger:  opts.Logger,
		stats:   opts.Stats,
		quit:    make(chan struct{}),
	}
	for i := range d.workers {
		wopts := opts
		wopts.Logger = opts.Logger.With("worker", i)
		d.workers[i] = &worker{
			id:     i,
			events: make(chan Event, 64),
			reader: NewReader(sink, wopts),
		}
	}
	return d
}

// Start launches the workers. Events are handled with ctx.
func (d *Dispatcher) Start(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started || d.closed {
		return
	}
	d.started = true

	for _, w := range d.workers {
		d.wg.Add(1)
		go func(w *worker) {
			defer d.wg.Done()
			for ev := range w.events {
				w.reader.Handle(ctx, ev)
			}
			w.reader.Close(context.WithoutCancel(ctx))
		}(w)
	}
}

// Dispatch queues ev on the worker owning its path. It blocks while that
// worker's queue is full, until ctx is done or Close is called.
func (d *Dispatcher) Dispatch(ctx context.Context, ev Event) error {
	ev.Path = filepath.Clean(ev.Path)
	w := d.workerFor(ev.Path)

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrDispatcherClosed
	}

	select {
	case w.events <- ev:
		return nil
	case <-d.quit:
		return ErrDispatcherClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting events, lets workers drain their queues, emits held
// records and waits for the workers or ctx.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.quitOnce.Do(func() { close(d.quit) })

	d.mu.Lock()
	if !d.closed {
		d.closed = true
		for _, w := range d.workers {
			close(w.events)
		}
	}
	started := d.started
	d.mu.Unlock()

	if !started {
		return nil
	}

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stats returns the counters of all workers combined.
func (d *Dispatcher) Stats() StatsSnapshot {
	return d.stats.Snapshot()
}

func (d *Dispatcher) workerFor(path string) *worker {
	return d.workers[xxhash.Sum64String(path)%uint64(len(d.workers))]
}
