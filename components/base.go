// Package components ships small reference Component implementations
// used by the network package's own tests. None of this is part of the
// coordinator —
// it exists to give the coordinator something real to drive, and to
// give the domain-stack dependencies (LLM SDKs, SQL drivers) a
// concrete home.
package components

import (
	"sync"
	"sync/atomic"

	"github.com/berrylands/noflo/component"
)

// Base implements the bookkeeping every component.Component needs —
// port maps, readiness, start/shutdown idempotency, and load/activation
// accounting — so that reference components only need to implement
// their actual IP-handling logic. Embed it and bracket any work that
// should count as "busy" for quiescence purposes with beginWork/endWork.
type Base struct {
	mu       sync.Mutex
	nodeID   string
	inPorts  map[string]component.Port
	outPorts map[string]component.Port

	ready    bool
	readyFns []func()

	started bool

	load         int32
	onActivate   []func(int)
	onDeactivate []func(int)
}

// NewBase creates a Base that is ready immediately — the common case
// for reference components, which have no external resource to wait
// on before accepting socket attachment.
func NewBase() *Base {
	return &Base{
		inPorts:  make(map[string]component.Port),
		outPorts: make(map[string]component.Port),
		ready:    true,
	}
}

func (b *Base) AddInPort(name string, port component.Port)  { b.inPorts[name] = port }
func (b *Base) AddOutPort(name string, port component.Port) { b.outPorts[name] = port }

func (b *Base) InPorts() map[string]component.Port  { return b.inPorts }
func (b *Base) OutPorts() map[string]component.Port { return b.outPorts }

func (b *Base) SetNodeID(id string) { b.mu.Lock(); b.nodeID = id; b.mu.Unlock() }
func (b *Base) NodeID() string      { b.mu.Lock(); defer b.mu.Unlock(); return b.nodeID }

func (b *Base) IsReady() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.ready
}

func (b *Base) OnReady(fn func()) {
	b.mu.Lock()
	ready := b.ready
	if !ready {
		b.readyFns = append(b.readyFns, fn)
	}
	b.mu.Unlock()
	if ready {
		fn()
	}
}

// SetReady transitions a not-yet-ready Base to ready, firing every
// pending OnReady callback exactly once.
func (b *Base) SetReady() {
	b.mu.Lock()
	if b.ready {
		b.mu.Unlock()
		return
	}
	b.ready = true
	fns := b.readyFns
	b.readyFns = nil
	b.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

func (b *Base) IsStarted() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.started
}

func (b *Base) Start(done func(err error)) {
	b.mu.Lock()
	if b.started {
		b.mu.Unlock()
		done(nil)
		return
	}
	b.started = true
	b.mu.Unlock()
	done(nil)
}

func (b *Base) Shutdown(done func(err error)) {
	b.mu.Lock()
	if !b.started {
		b.mu.Unlock()
		done(nil)
		return
	}
	b.started = false
	b.mu.Unlock()
	done(nil)
}

func (b *Base) Load() int { return int(atomic.LoadInt32(&b.load)) }

func (b *Base) OnActivate(fn func(load int))   { b.mu.Lock(); b.onActivate = append(b.onActivate, fn); b.mu.Unlock() }
func (b *Base) OnDeactivate(fn func(load int)) { b.mu.Lock(); b.onDeactivate = append(b.onDeactivate, fn); b.mu.Unlock() }

// beginWork increments Load, firing OnActivate if it just transitioned
// from zero. endWork is the matching decrement.
func (b *Base) beginWork() {
	if atomic.AddInt32(&b.load, 1) == 1 {
		b.fire(b.onActivate, 1)
	}
}

func (b *Base) endWork() {
	load := atomic.AddInt32(&b.load, -1)
	if load == 0 {
		b.fire(b.onDeactivate, 0)
	}
}

func (b *Base) fire(fns []func(int), load int) {
	b.mu.Lock()
	snapshot := make([]func(int), len(fns))
	copy(snapshot, fns)
	b.mu.Unlock()
	for _, fn := range snapshot {
		fn(load)
	}
}
