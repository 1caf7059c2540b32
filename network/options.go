package network

import (
	"time"

	"github.com/berrylands/noflo/emit"
)

// defaultQuiescenceDebounce is the delay from §4.7: a deactivation
// schedules a re-check after this long, aborted by any activation that
// lands first.
const defaultQuiescenceDebounce = 50 * time.Millisecond

// Option configures a Network at construction time.
type Option func(*config)

type config struct {
	emitter            emit.Emitter
	metrics            *Metrics
	scheduler          Scheduler
	debug              bool
	quiescenceDebounce time.Duration
}

func defaultConfig() *config {
	return &config{
		emitter:            emit.NullEmitter{},
		scheduler:          NewScheduler(),
		quiescenceDebounce: defaultQuiescenceDebounce,
	}
}

// WithEmitter sends every coordinator event to e in addition to the
// network's own internal listeners. Default: emit.NullEmitter, which
// discards everything.
func WithEmitter(e emit.Emitter) Option {
	return func(c *config) { c.emitter = e }
}

// WithMetrics attaches Prometheus instrumentation. Default: nil, which
// disables metric recording entirely rather than registering
// zero-valued collectors.
func WithMetrics(m *Metrics) Option {
	return func(c *config) { c.metrics = m }
}

// WithScheduler overrides the host loop abstraction used for deferred
// sends and debounced quiescence checks. Default: NewScheduler(), a
// goroutine-and-timer implementation. Tests that need deterministic
// timing supply a fake here.
func WithScheduler(s Scheduler) Option {
	return func(c *config) { c.scheduler = s }
}

// WithDebug starts the network with debug mode already active, as if
// SetDebug(true) had been called immediately after construction.
func WithDebug(active bool) Option {
	return func(c *config) { c.debug = active }
}

// WithQuiescenceDebounce overrides the delay the quiescence detector
// waits, after every process has deactivated, before declaring the
// network finished. Default: 50ms, per §4.7 and §8's debounce scenario.
// A shorter debounce makes tests faster at the cost of more false
// "reactivated in time" positives in a genuinely slow component.
func WithQuiescenceDebounce(d time.Duration) Option {
	return func(c *config) { c.quiescenceDebounce = d }
}
