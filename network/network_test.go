package network

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/berrylands/noflo/component"
	"github.com/berrylands/noflo/components"
	"github.com/berrylands/noflo/emit"
	"github.com/berrylands/noflo/graphdef"
	"github.com/berrylands/noflo/ip"
	"github.com/berrylands/noflo/loader"
)

func pipelineGraph() (graphdef.Graph, *loader.Registry) {
	reg := loader.New()
	reg.Register("Repeat", func() component.Component { return components.NewRepeat() })
	reg.Register("Sink", func() component.Component { return components.NewSink() })

	g := graphdef.Graph{
		Loader: reg,
		Nodes: []graphdef.Node{
			{ID: "a", Component: "Repeat"},
			{ID: "b", Component: "Sink"},
		},
		Edges: []graphdef.Edge{
			{From: graphdef.Endpoint{Node: "a", Port: "OUT"}, To: graphdef.Endpoint{Node: "b", Port: "IN"}},
		},
		Initializers: []graphdef.Initializer{
			{Data: "hello", To: graphdef.Endpoint{Node: "a", Port: "IN"}},
		},
	}
	return g, reg
}

func mustConnect(t *testing.T, n *Network, g graphdef.Graph) {
	t.Helper()
	var connectErr error
	done := make(chan struct{})
	n.Connect(g, func(err error) { connectErr = err; close(done) })
	<-done
	if connectErr != nil {
		t.Fatalf("connect failed: %v", connectErr)
	}
}

func mustStart(t *testing.T, n *Network) {
	t.Helper()
	var startErr error
	done := make(chan struct{})
	n.Start(func(err error) { startErr = err; close(done) })
	<-done
	if startErr != nil {
		t.Fatalf("start failed: %v", startErr)
	}
}

func mustStop(t *testing.T, n *Network) {
	t.Helper()
	var stopErr error
	done := make(chan struct{})
	n.Stop(func(err error) { stopErr = err; close(done) })
	<-done
	if stopErr != nil {
		t.Fatalf("stop failed: %v", stopErr)
	}
}

// Scenario 1 (§8): two-node pipeline with an IIP, restartable.
func TestPipelineWithIIP(t *testing.T) {
	g, _ := pipelineGraph()
	n := New()
	mustConnect(t, n, g)
	mustStart(t, n)

	proc, _ := n.GetNode("b")
	sink := proc.Component.(*components.Sink)

	waitFor(t, func() bool { return len(sink.All()) == 1 })
	if got := sink.All()[0].Data().(string); got != "hello" {
		t.Fatalf("first start: got %q, want %q", got, "hello")
	}

	mustStop(t, n)
	mustStart(t, n)

	waitFor(t, func() bool { return len(sink.All()) == 2 })
	if got := sink.All()[1].Data().(string); got != "hello" {
		t.Fatalf("second start: got %q, want %q", got, "hello")
	}
}

// Invariant (§8): addNode is idempotent by id and never reloads.
func TestAddNodeIdempotent(t *testing.T) {
	loads := 0
	reg := loader.New()
	reg.Register("Repeat", func() component.Component {
		loads++
		return components.NewRepeat()
	})

	n := New()
	n.loader = reg

	done := make(chan struct{})
	var p1, p2 *Process
	n.addNode(graphdef.Node{ID: "a", Component: "Repeat"}, func(proc *Process, err error) {
		p1 = proc
		n.addNode(graphdef.Node{ID: "a", Component: "Repeat"}, func(proc *Process, err error) {
			p2 = proc
			close(done)
		})
	})
	<-done

	if loads != 1 {
		t.Fatalf("loader invoked %d times, want 1", loads)
	}
	if p1 != p2 {
		t.Fatalf("addNode returned different records for the same id")
	}
}

// defaultingSink is a one-port test component whose IN port declares a
// default value, mirroring what components.Sink would look like if it
// needed one.
type defaultingSink struct {
	*components.Base
	in          *component.BasePort
	receivedPtr *[]ip.IP
}

func newDefaultingSink(defaultValue interface{}) *defaultingSink {
	s := &defaultingSink{
		Base: components.NewBase(),
		in:   component.NewPort("IN").WithDefault(defaultValue),
	}
	s.AddInPort("IN", s.in)
	var received []ip.IP
	s.in.OnAttachSocket(func(sock component.Socket, _ *int) {
		sock.OnIP(func(packet ip.IP) { received = append(received, packet) })
	})
	s.receivedPtr = &received
	return s
}

// All returns every IP received so far. Safe to call only after the
// caller has already synchronized with delivery (e.g. via waitFor),
// matching the single-writer-single-reader pattern of this test helper.
func (s *defaultingSink) All() []ip.IP {
	if s.receivedPtr == nil {
		return nil
	}
	return *s.receivedPtr
}

// Scenario 2 (§8): default-value injection and suppression.
func TestDefaultValueInjectionAndSuppression(t *testing.T) {
	t.Run("delivers default when no other socket attaches", func(t *testing.T) {
		reg := loader.New()
		var sink *defaultingSink
		reg.Register("Sink", func() component.Component {
			sink = newDefaultingSink(42)
			return sink
		})

		g := graphdef.Graph{
			Loader: reg,
			Nodes:  []graphdef.Node{{ID: "a", Component: "Sink"}},
		}

		n := New()
		mustConnect(t, n, g)
		mustStart(t, n)

		waitFor(t, func() bool { return len(sink.All()) == 1 })
		if got := sink.All()[0].Data().(int); got != 42 {
			t.Fatalf("got %v, want 42", got)
		}
	})

	t.Run("no default for a port already wired by an edge", func(t *testing.T) {
		reg := loader.New()
		var sink *defaultingSink
		reg.Register("Sink", func() component.Component {
			sink = newDefaultingSink(42)
			return sink
		})
		reg.Register("Repeat", func() component.Component { return components.NewRepeat() })

		g := graphdef.Graph{
			Loader: reg,
			Nodes: []graphdef.Node{
				{ID: "a", Component: "Sink"},
				{ID: "feeder", Component: "Repeat"},
			},
			Edges: []graphdef.Edge{
				{From: graphdef.Endpoint{Node: "feeder", Port: "OUT"}, To: graphdef.Endpoint{Node: "a", Port: "IN"}},
			},
		}

		n := New()
		mustConnect(t, n, g)
		mustStart(t, n)

		time.Sleep(30 * time.Millisecond)
		if got := len(sink.All()); got != 0 {
			t.Fatalf("default fired despite an edge-wired port: got %d IPs", got)
		}
	})
}

// Scenario 4 (§8): addEdge against a nonexistent port fails, with the
// exact message callers depend on, and registers nothing.
func TestAddEdgeMissingPort(t *testing.T) {
	reg := loader.New()
	reg.Register("Repeat", func() component.Component { return components.NewRepeat() })
	reg.Register("Sink", func() component.Component { return components.NewSink() })

	n := New()
	mustConnect(t, n, graphdef.Graph{
		Loader: reg,
		Nodes: []graphdef.Node{
			{ID: "A", Component: "Repeat"},
			{ID: "B", Component: "Sink"},
		},
	})

	var gotErr error
	done := make(chan struct{})
	n.addEdge(graphdef.Edge{
		From: graphdef.Endpoint{Node: "A", Port: "OUT"},
		To:   graphdef.Endpoint{Node: "B", Port: "NOSUCH"},
	}, func(err error) { gotErr = err; close(done) })
	<-done

	if gotErr == nil {
		t.Fatal("expected an error for a missing port")
	}
	var ce *CoordinatorError
	if !errors.As(gotErr, &ce) {
		t.Fatalf("expected a *CoordinatorError, got %T", gotErr)
	}
	want := "No inport 'NOSUCH' defined in process B"
	if ce.Message != want {
		t.Fatalf("got message %q, want %q", ce.Message, want)
	}
	if n.socketCount() != 0 {
		t.Fatal("socket was registered despite the failed attach")
	}
}

// Scenario 3 (§8): quiescence debounce, exercised directly against the
// run-state/quiescence hooks rather than through real components, so
// the timing windows aren't at the mercy of scheduler jitter.
func TestQuiescenceDebounce(t *testing.T) {
	t.Run("reactivation within the debounce window aborts end", func(t *testing.T) {
		n := New(WithQuiescenceDebounce(40 * time.Millisecond))
		ended := make(chan struct{}, 1)
		n.markStartedForTest()
		n.onEndHookForTest(func() { ended <- struct{}{} })

		n.onDeactivate()
		time.Sleep(15 * time.Millisecond)
		n.onActivate()
		time.Sleep(10 * time.Millisecond)
		n.onDeactivate()

		select {
		case <-ended:
			t.Fatal("end fired before the debounce window following reactivation")
		case <-time.After(30 * time.Millisecond):
		}

		select {
		case <-ended:
		case <-time.After(200 * time.Millisecond):
			t.Fatal("end never fired after the network stayed quiescent")
		}
	})

	t.Run("no reactivation ends at roughly one debounce window", func(t *testing.T) {
		n := New(WithQuiescenceDebounce(30 * time.Millisecond))
		ended := make(chan struct{}, 1)
		n.markStartedForTest()
		n.onEndHookForTest(func() { ended <- struct{}{} })

		start := time.Now()
		n.onDeactivate()

		select {
		case <-ended:
			if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
				t.Fatalf("end fired too early: %v", elapsed)
			}
		case <-time.After(200 * time.Millisecond):
			t.Fatal("end never fired")
		}
	})
}

// markStartedForTest puts a freshly constructed Network directly into
// the started state, bypassing Start's component fan-out so quiescence
// tests can drive onActivate/onDeactivate without any real processes.
func (n *Network) markStartedForTest() {
	n.mu.Lock()
	n.started = true
	n.stopped = false
	n.startupDate = time.Now()
	n.mu.Unlock()
}

// onEndHookForTest wires fn to fire whenever the event multiplexer
// dispatches "end", without otherwise touching its emitter chain.
func (n *Network) onEndHookForTest(fn func()) {
	n.mx.emitter = endHookEmitter{inner: n.mx.emitter, fn: fn}
}

type endHookEmitter struct {
	inner emit.Emitter
	fn    func()
}

func (e endHookEmitter) Emit(ev emit.Event) {
	if ev.Kind == "end" {
		e.fn()
	}
	e.inner.Emit(ev)
}

func (e endHookEmitter) EmitBatch(ctx context.Context, events []emit.Event) error {
	return e.inner.EmitBatch(ctx, events)
}

func (e endHookEmitter) Flush(ctx context.Context) error { return e.inner.Flush(ctx) }

// Invariant (§4.5): every non-bypass event emitted before start is
// held and flushed, in order, immediately after start.
func TestEventBufferingOrder(t *testing.T) {
	g, _ := pipelineGraph()
	buf := emit.NewBufferedEmitter()
	n := New(WithEmitter(buf))
	mustConnect(t, n, g)
	mustStart(t, n)

	history := buf.History("")
	if len(history) == 0 {
		t.Fatal("no network-level events recorded")
	}
	if history[0].Kind != "start" {
		t.Fatalf("first network-level event was %q, want start", history[0].Kind)
	}
}

// Scenario 5 (§8): an unhandled process-error is thrown synchronously
// rather than swallowed.
func TestUnhandledProcessErrorPanics(t *testing.T) {
	mx := newMultiplexer(emit.NullEmitter{}, nil)
	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected onProcessError to panic with no listener")
		}
	}()
	mx.onProcessError(errBoom, nil)
}

// A registered listener suppresses the panic.
func TestHandledProcessErrorDoesNotPanic(t *testing.T) {
	mx := newMultiplexer(emit.NullEmitter{}, nil)
	seen := make(chan error, 1)
	mx.OnProcessError(func(ev component.SubgraphProcessErrorEvent) { seen <- ev.Err })

	mx.onProcessError(errBoom, nil)

	select {
	case err := <-seen:
		if !errors.Is(err, errBoom) {
			t.Fatalf("got %v, want %v", err, errBoom)
		}
	default:
		t.Fatal("listener was not notified")
	}
}

var errBoom = errors.New("boom")

// Uptime is zero before start, non-decreasing while started, and zero
// again once stopped.
func TestUptime(t *testing.T) {
	g, _ := pipelineGraph()
	n := New()
	if got := n.Uptime(); got != 0 {
		t.Fatalf("uptime before connect: got %v, want 0", got)
	}

	mustConnect(t, n, g)
	mustStart(t, n)

	time.Sleep(5 * time.Millisecond)
	first := n.Uptime()
	if first <= 0 {
		t.Fatalf("uptime after start: got %v, want > 0", first)
	}

	time.Sleep(5 * time.Millisecond)
	second := n.Uptime()
	if second < first {
		t.Fatalf("uptime decreased: %v then %v", first, second)
	}

	mustStop(t, n)
	if got := n.Uptime(); got != 0 {
		t.Fatalf("uptime after stop: got %v, want 0", got)
	}
}

// §9 open-question decision: a network with no processes at all (or
// whose processes never activate) is already quiescent. It must still
// emit exactly one "end", roughly one debounce window after start,
// without an explicit Stop.
func TestEmptyNetworkQuiescesOnItsOwn(t *testing.T) {
	n := New(WithQuiescenceDebounce(30 * time.Millisecond))
	mustConnect(t, n, graphdef.Graph{Loader: loader.New()})

	ended := make(chan struct{}, 1)
	n.onEndHookForTest(func() { ended <- struct{}{} })

	start := time.Now()
	mustStart(t, n)

	select {
	case <-ended:
		if elapsed := time.Since(start); elapsed < 15*time.Millisecond {
			t.Fatalf("end fired too early for an empty network: %v", elapsed)
		}
	case <-time.After(300 * time.Millisecond):
		t.Fatal("end never fired for an empty, never-activating network")
	}
}

// subgraphComponent wraps an inner *Network behind the IsSubgraph
// capability, the minimal shape the event multiplexer needs to
// subscribe to a nested network (§4.5 subscribeSubgraph).
type subgraphComponent struct {
	*components.Base
	inner *Network
}

func newSubgraphComponent(inner *Network) *subgraphComponent {
	return &subgraphComponent{Base: components.NewBase(), inner: inner}
}

func (s *subgraphComponent) IsSubgraphComponent() bool         { return true }
func (s *subgraphComponent) Network() component.SubnetworkView { return s.inner }

// Scenario 6 (§8): an ip event produced inside a subgraph reaches the
// parent's subscribers tagged with the containing node id prepended to
// Subgraph, and with the originating node's process id preserved.
func TestSubgraphIPTagging(t *testing.T) {
	innerReg := loader.New()
	innerReg.Register("Repeat", func() component.Component { return components.NewRepeat() })
	var sink *components.Sink
	innerReg.Register("Sink", func() component.Component {
		sink = components.NewSink()
		return sink
	})

	inner := New()
	mustConnect(t, inner, graphdef.Graph{
		Loader: innerReg,
		Nodes: []graphdef.Node{
			{ID: "x", Component: "Repeat"},
			{ID: "b", Component: "Sink"},
		},
		Edges: []graphdef.Edge{
			{From: graphdef.Endpoint{Node: "x", Port: "OUT"}, To: graphdef.Endpoint{Node: "b", Port: "IN"}},
		},
		Initializers: []graphdef.Initializer{
			{Data: "hi", To: graphdef.Endpoint{Node: "x", Port: "IN"}},
		},
	})

	outerReg := loader.New()
	outerReg.Register("Subgraph", func() component.Component { return newSubgraphComponent(inner) })

	buf := emit.NewBufferedEmitter()
	outer := New(WithEmitter(buf))
	mustConnect(t, outer, graphdef.Graph{
		Loader: outerReg,
		Nodes:  []graphdef.Node{{ID: "S", Component: "Subgraph"}},
	})
	mustStart(t, outer)
	mustStart(t, inner)

	waitFor(t, func() bool { return len(sink.All()) == 1 })

	waitFor(t, func() bool {
		for _, ev := range buf.History("b") {
			if ev.Kind == "ip" {
				return true
			}
		}
		return false
	})

	var tagged *emit.Event
	for _, ev := range buf.History("b") {
		if ev.Kind == "ip" {
			ev := ev
			tagged = &ev
			break
		}
	}
	if tagged == nil {
		t.Fatal("no ip event observed for the subgraph's inner node")
	}
	if len(tagged.Subgraph) != 1 || tagged.Subgraph[0] != "S" {
		t.Fatalf("subgraph provenance: got %v, want [S]", tagged.Subgraph)
	}
}

// failingShutdown is a reference component whose Shutdown always fails,
// used to exercise removeNode's "only on success" clause.
type failingShutdown struct {
	*components.Base
}

func (f *failingShutdown) Shutdown(done func(error)) {
	done(errors.New("shutdown boom"))
}

// Open Question decision #1 (DESIGN.md): renameNode collision is an
// error and leaves both records untouched; the non-colliding path
// re-stamps the component's node id and never touches sockets.
func TestRenameNode(t *testing.T) {
	t.Run("collision leaves both records untouched", func(t *testing.T) {
		reg := loader.New()
		reg.Register("Repeat", func() component.Component { return components.NewRepeat() })
		reg.Register("Sink", func() component.Component { return components.NewSink() })

		n := New()
		mustConnect(t, n, graphdef.Graph{
			Loader: reg,
			Nodes: []graphdef.Node{
				{ID: "a", Component: "Repeat"},
				{ID: "b", Component: "Sink"},
			},
		})

		aBefore, _ := n.GetNode("a")
		bBefore, _ := n.GetNode("b")

		err := n.RenameNode("a", "b")
		if err == nil {
			t.Fatal("expected a collision error")
		}
		var ce *CoordinatorError
		if !errors.As(err, &ce) {
			t.Fatalf("expected a *CoordinatorError, got %T", err)
		}
		if ce.Kind != KindStructural {
			t.Fatalf("got Kind %q, want %q", ce.Kind, KindStructural)
		}

		aAfter, _ := n.GetNode("a")
		bAfter, _ := n.GetNode("b")
		if aAfter != aBefore || bAfter != bBefore {
			t.Fatal("rename collision mutated an existing process record")
		}
	})

	t.Run("happy path re-stamps the component and keeps sockets attached", func(t *testing.T) {
		g, _ := pipelineGraph()
		n := New()
		mustConnect(t, n, g)
		mustStart(t, n)

		proc, _ := n.GetNode("b")
		sink := proc.Component.(*components.Sink)
		waitFor(t, func() bool { return len(sink.All()) == 1 })

		before := n.socketCount()
		if err := n.RenameNode("a", "a2"); err != nil {
			t.Fatalf("rename failed: %v", err)
		}
		if got := n.socketCount(); got != before {
			t.Fatalf("socket count changed across rename: got %d, want %d", got, before)
		}

		if _, ok := n.GetNode("a"); ok {
			t.Fatal("old id still present after rename")
		}
		renamed, ok := n.GetNode("a2")
		if !ok {
			t.Fatal("new id not present after rename")
		}
		if got := renamed.Component.NodeID(); got != "a2" {
			t.Fatalf("component NodeID after rename: got %q, want %q", got, "a2")
		}

		// The edge socket from the renamed node stays attached: a
		// restart still delivers the replayed IIP through it to b.
		mustStop(t, n)
		mustStart(t, n)
		waitFor(t, func() bool { return len(sink.All()) == 2 })
	})
}

// removeNode (C1) and removeEdge/removeInitial (C4) are exercised
// directly against the unexported network package, since graphdef
// carries no public remove-element operation.
func TestRemoveNode(t *testing.T) {
	t.Run("removes the record only after a successful shutdown", func(t *testing.T) {
		reg := loader.New()
		reg.Register("Repeat", func() component.Component { return components.NewRepeat() })

		n := New()
		mustConnect(t, n, graphdef.Graph{Loader: reg, Nodes: []graphdef.Node{{ID: "a", Component: "Repeat"}}})
		mustStart(t, n)

		done := make(chan error, 1)
		n.RemoveNode("a", func(err error) { done <- err })
		if err := <-done; err != nil {
			t.Fatalf("RemoveNode failed: %v", err)
		}
		if _, ok := n.GetNode("a"); ok {
			t.Fatal("node still present after a successful removal")
		}
	})

	t.Run("a failed shutdown leaves the record in place", func(t *testing.T) {
		reg := loader.New()
		reg.Register("Broken", func() component.Component { return &failingShutdown{Base: components.NewBase()} })

		n := New()
		mustConnect(t, n, graphdef.Graph{Loader: reg, Nodes: []graphdef.Node{{ID: "a", Component: "Broken"}}})
		mustStart(t, n)

		done := make(chan error, 1)
		n.RemoveNode("a", func(err error) { done <- err })
		err := <-done
		if err == nil {
			t.Fatal("expected the shutdown failure to surface")
		}
		var ce *CoordinatorError
		if !errors.As(err, &ce) || ce.Kind != KindLifecycle {
			t.Fatalf("expected a KindLifecycle *CoordinatorError, got %v (%T)", err, err)
		}
		if _, ok := n.GetNode("a"); !ok {
			t.Fatal("node removed despite a failed shutdown")
		}
	})

	t.Run("unknown node is a structural error", func(t *testing.T) {
		n := New()
		done := make(chan error, 1)
		n.RemoveNode("nosuch", func(err error) { done <- err })
		err := <-done
		var ce *CoordinatorError
		if !errors.As(err, &ce) || ce.Kind != KindStructural {
			t.Fatalf("expected a KindStructural *CoordinatorError, got %v (%T)", err, err)
		}
	})
}

// removeEdge drops the matching socket from the registry and detaches
// it from the inport, so nothing further is delivered across it.
func TestRemoveEdge(t *testing.T) {
	g, _ := pipelineGraph()
	n := New()
	mustConnect(t, n, g)

	before := n.socketCount()
	edge := g.Edges[0]

	proc, _ := n.GetNode("b")
	inPort := proc.Component.InPorts()["IN"]
	if !inPort.IsAttached() {
		t.Fatal("b.IN should be attached before removeEdge")
	}

	done := make(chan error, 1)
	n.removeEdge(edge, func(err error) { done <- err })
	if err := <-done; err != nil {
		t.Fatalf("removeEdge failed: %v", err)
	}
	if got := n.socketCount(); got != before-1 {
		t.Fatalf("socket count after removeEdge: got %d, want %d", got, before-1)
	}
	if inPort.IsAttached() {
		t.Fatal("b.IN still reports attached after removeEdge")
	}

	again := make(chan error, 1)
	n.removeEdge(edge, func(err error) { again <- err })
	if err := <-again; err == nil {
		t.Fatal("expected an error removing an already-removed edge")
	}
}

// removeInitial drops both the socket and the matching initials/
// nextInitials records, so the IIP is not replayed on a later restart.
func TestRemoveInitial(t *testing.T) {
	g, _ := pipelineGraph()
	n := New()
	mustConnect(t, n, g)

	if got := n.initialCount(); got != 1 {
		t.Fatalf("initialCount before removeInitial: got %d, want 1", got)
	}

	initializer := g.Initializers[0]
	done := make(chan error, 1)
	n.removeInitial(initializer, func(err error) { done <- err })
	if err := <-done; err != nil {
		t.Fatalf("removeInitial failed: %v", err)
	}
	if got := n.initialCount(); got != 0 {
		t.Fatalf("initialCount after removeInitial: got %d, want 0", got)
	}

	mustStart(t, n)
	proc, _ := n.GetNode("b")
	sink := proc.Component.(*components.Sink)
	time.Sleep(20 * time.Millisecond)
	if got := len(sink.All()); got != 0 {
		t.Fatalf("sink received an IP despite the IIP being removed: got %d", got)
	}

	// nextInitials was cleared too, so a restart still delivers nothing.
	mustStop(t, n)
	mustStart(t, n)
	time.Sleep(20 * time.Millisecond)
	if got := len(sink.All()); got != 0 {
		t.Fatalf("sink received an IP on restart despite the IIP being removed: got %d", got)
	}
}

// SetDebug (C9) propagates to every attached socket and, recursively,
// into every subgraph's own nested network (events.go's subscribeSubgraph
// relies on the same Network() view SetDebug walks here).
func TestSetDebug(t *testing.T) {
	t.Run("propagates to every socket in the registry", func(t *testing.T) {
		g, _ := pipelineGraph()
		n := New()
		mustConnect(t, n, g)

		n.SetDebug(true)

		n.mu.Lock()
		sockets := append([]component.Socket(nil), n.sockets...)
		n.mu.Unlock()
		if len(sockets) == 0 {
			t.Fatal("no sockets to check")
		}
		for _, s := range sockets {
			bs, ok := s.(*component.BaseSocket)
			if !ok {
				t.Fatalf("socket is not a *component.BaseSocket: %T", s)
			}
			if !bs.Debug() {
				t.Fatal("SetDebug(true) did not propagate to an attached socket")
			}
		}
	})

	t.Run("propagates into a subgraph's nested network", func(t *testing.T) {
		innerReg := loader.New()
		innerReg.Register("Repeat", func() component.Component { return components.NewRepeat() })
		innerReg.Register("Sink", func() component.Component { return components.NewSink() })

		inner := New()
		mustConnect(t, inner, graphdef.Graph{
			Loader: innerReg,
			Nodes: []graphdef.Node{
				{ID: "x", Component: "Repeat"},
				{ID: "b", Component: "Sink"},
			},
			Edges: []graphdef.Edge{
				{From: graphdef.Endpoint{Node: "x", Port: "OUT"}, To: graphdef.Endpoint{Node: "b", Port: "IN"}},
			},
		})

		outerReg := loader.New()
		outerReg.Register("Subgraph", func() component.Component { return newSubgraphComponent(inner) })

		outer := New()
		mustConnect(t, outer, graphdef.Graph{
			Loader: outerReg,
			Nodes:  []graphdef.Node{{ID: "S", Component: "Subgraph"}},
		})

		if inner.IsDebug() {
			t.Fatal("inner network already in debug mode before propagation")
		}

		outer.SetDebug(true)

		if !inner.IsDebug() {
			t.Fatal("SetDebug did not propagate into the subgraph's nested network")
		}
	})
}

// countingScheduler wraps a real Scheduler and counts Schedule calls,
// so a test can confirm the connector actually yields mid-phase for a
// large graph rather than just trusting yieldEvery's arithmetic.
type countingScheduler struct {
	mu    sync.Mutex
	calls int
	real  Scheduler
}

func (c *countingScheduler) Schedule(fn func()) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	c.real.Schedule(fn)
}

func (c *countingScheduler) ScheduleAfter(d time.Duration, fn func()) Cancel {
	return c.real.ScheduleAfter(d, fn)
}

func (c *countingScheduler) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

// Connect yields to the scheduler every 100th element within a phase
// (§4.4), rather than running an entire large phase synchronously.
func TestConnectYieldsForLargeGraphs(t *testing.T) {
	const count = 250
	nodes := make([]graphdef.Node, count)
	for i := range nodes {
		nodes[i] = graphdef.Node{ID: fmt.Sprintf("node-%d", i)}
	}

	sched := &countingScheduler{real: NewScheduler()}
	n := New(WithScheduler(sched))

	var connectErr error
	done := make(chan struct{})
	n.Connect(graphdef.Graph{Loader: loader.New(), Nodes: nodes}, func(err error) {
		connectErr = err
		close(done)
	})
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("connect never completed")
	}
	if connectErr != nil {
		t.Fatalf("connect failed: %v", connectErr)
	}

	// yieldEvery=100 over 250 nodes yields twice in the nodes phase and
	// twice more in the defaults phase (which also walks every node).
	if got := sched.count(); got < 4 {
		t.Fatalf("expected at least 4 scheduler yields for a %d-node graph, got %d", count, got)
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("condition never became true")
}
