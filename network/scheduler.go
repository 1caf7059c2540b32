package network

import "time"

// Cancel aborts a pending ScheduleAfter call. Calling it after the
// timer has already fired is a no-op.
type Cancel func()

// Scheduler is the coordinator's only dependency on a host event loop.
// It must not hard-code time.AfterFunc or goroutines directly into the
// coordinator's own logic — every suspension point goes through this
// interface so that a deterministic test scheduler can be substituted.
type Scheduler interface {
	// Schedule runs fn on the next turn of the host loop. Used to defer
	// the sendInitials batch by one tick so subscribers can attach, and
	// to yield every 100th element during connect.
	Schedule(fn func())

	// ScheduleAfter runs fn after d, unless the returned Cancel is
	// called first. Used for the quiescence detector's debounced end
	// check.
	ScheduleAfter(d time.Duration, fn func()) Cancel
}

// defaultScheduler runs Schedule callbacks through a single worker
// goroutine draining a FIFO queue, so that two Schedule calls issued
// in order (e.g. sendInitials then sendDefaults) also run in order —
// mirroring a host microtask queue rather than firing N independent
// goroutines with no ordering guarantee between them. ScheduleAfter
// uses an independent time.AfterFunc per call, since debounced end
// checks have no ordering relationship with each other.
type defaultScheduler struct {
	tasks chan func()
}

// NewScheduler returns the default Scheduler, backed by a single
// worker goroutine and time.AfterFunc. Sufficient for production use;
// tests that need deterministic timing supply their own Scheduler via
// WithScheduler.
func NewScheduler() Scheduler {
	s := &defaultScheduler{tasks: make(chan func(), 256)}
	go s.run()
	return s
}

func (s *defaultScheduler) run() {
	for fn := range s.tasks {
		fn()
	}
}

func (s *defaultScheduler) Schedule(fn func()) {
	s.tasks <- fn
}

func (s *defaultScheduler) ScheduleAfter(d time.Duration, fn func()) Cancel {
	timer := time.AfterFunc(d, fn)
	return func() { timer.Stop() }
}
