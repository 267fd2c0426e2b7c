package stream

import (
	"runtime"
	"sync"

	"github.com/pkg/errors"

	"github.com/JohannesEbke/a4io/logging"
)

// MaxRescheduleAttempts bounds how many times a Pool will put a stalled
// item back on the ready queue before reporting it as an error, per
// spec.md §5's "bounded retry counter".
const MaxRescheduleAttempts = 1

// errStalled marks an item that stalled past its reschedule budget.
var errStalled = errors.New("stream: item stalled past its reschedule budget")

// StepResult is what a worker reports back to a Pool after driving one
// item as far as it got.
type StepResult int

const (
	// StepDone means the item reached a terminal state: end-of-stream, or
	// an error carried alongside it.
	StepDone StepResult = iota
	// StepStalled means the driver returned without reaching either
	// end-of-stream or error (spec.md §5). The item is rescheduled once
	// before being treated as an error.
	StepStalled
)

// Item is one unit of work a Pool tracks through its ready, processing,
// finished, and error sets.
type Item struct {
	// Value is the caller-supplied payload, typically a *Reader.
	Value interface{}

	attempts int
	err      error
}

// Err returns the error that moved this item into the error set, or nil.
func (it *Item) Err() error { return it.err }

// Pool is the spec.md §5 "supervising structure": ready/processing/
// finished/error sets guarded by one mutex, handing each idle worker one
// item and rescheduling a stalled one once before treating it as an
// error. It is grounded on the teacher's packetDispatcher
// (device/dispatcher.go): a small state machine behind a single mutex,
// with an explicit bounded lifecycle rather than unbounded background
// work or a full job-queue library.
type Pool struct {
	logger logging.L

	mu         sync.Mutex
	ready      []*Item
	processing map[*Item]struct{}
	finished   []*Item
	errored    []*Item
}

// NewPool constructs a Pool with every value initially ready. logger may
// be nil.
func NewPool(logger logging.L, values []interface{}) *Pool {
	p := &Pool{
		logger:     logging.Must(logger),
		processing: make(map[*Item]struct{}),
	}
	for _, v := range values {
		p.ready = append(p.ready, &Item{Value: v})
	}
	return p
}

// Acquire hands the caller one ready item, moving it to processing. It
// reports ok=false when there is currently no ready item, whether or not
// the pool has other work still processing elsewhere.
func (p *Pool) Acquire() (it *Item, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.ready) == 0 {
		return nil, false
	}
	it, p.ready = p.ready[0], p.ready[1:]
	p.processing[it] = struct{}{}
	return it, true
}

// Report notifies the pool of a processing item's outcome, applying
// spec.md §5's reschedule policy: a stall is retried once, then treated
// as an error.
func (p *Pool) Report(it *Item, result StepResult, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	delete(p.processing, it)

	switch {
	case result == StepDone && err == nil:
		p.finished = append(p.finished, it)

	case result == StepDone:
		it.err = err
		p.errored = append(p.errored, it)

	case it.attempts < MaxRescheduleAttempts:
		it.attempts++
		p.logger.Warnf("stream pool: rescheduling stalled item (attempt %d)", it.attempts)
		p.ready = append(p.ready, it)

	default:
		it.err = errStalled
		p.errored = append(p.errored, it)
	}
}

// Idle reports whether the pool has no ready or in-flight work left.
func (p *Pool) Idle() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.ready) == 0 && len(p.processing) == 0
}

// Snapshot returns copies of the finished and error sets accumulated so
// far. Safe to call while workers are still running.
func (p *Pool) Snapshot() (finished, errored []*Item) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*Item(nil), p.finished...), append([]*Item(nil), p.errored...)
}

// Run drives the pool to completion using n worker goroutines. Each
// repeatedly acquires an item and calls step on it, which should drive
// the item (typically its Reader's Next loop) as far as it can go in one
// pass and report a StepResult; Run itself only owns scheduling.
func (p *Pool) Run(n int, step func(*Item) (StepResult, error)) {
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				it, ok := p.Acquire()
				if !ok {
					if p.Idle() {
						return
					}
					runtime.Gosched()
					continue
				}
				result, err := step(it)
				p.Report(it, result, err)
			}
		}()
	}
	wg.Wait()
}
