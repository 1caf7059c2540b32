package network

import (
	"fmt"
	"sync"
	"time"

	"github.com/berrylands/noflo/component"
	"github.com/berrylands/noflo/emit"
	"github.com/berrylands/noflo/ip"
)

// multiplexer implements C5: it subscribes to sockets, processes, and
// subgraph networks, re-emits what it sees as coordinator-level
// events, and applies the buffered-emission rule from §4.5. It holds
// no run-state or quiescence logic of its own — those stay in C6/C7 —
// it only knows how to turn raw signals into Event values and decide
// whether they are held or dispatched immediately.
type multiplexer struct {
	mu        sync.Mutex
	buffering bool
	buffer    []emit.Event

	ipListeners []func(component.SubgraphIPEvent)
	peListeners []func(component.SubgraphProcessErrorEvent)

	emitter emit.Emitter
	metrics *Metrics
}

func newMultiplexer(emitter emit.Emitter, metrics *Metrics) *multiplexer {
	return &multiplexer{emitter: emitter, metrics: metrics, buffering: true}
}

// clearBuffer discards anything accumulated in the buffer without
// touching the buffering flag itself.
func (mx *multiplexer) clearBuffer() {
	mx.mu.Lock()
	mx.buffer = nil
	mx.mu.Unlock()
}

// subscribeSocket re-emits a socket's ip events as coordinator ip
// events (plus their legacy begingroup/endgroup/data synthesis) and
// its error events as process-error.
func (mx *multiplexer) subscribeSocket(socket component.Socket) {
	socket.OnIP(func(packet ip.IP) {
		mx.onIP(socket, packet, nil)
	})
	socket.OnError(func(err error) {
		mx.onProcessError(err, nil)
	})
}

func (mx *multiplexer) onIP(socket component.Socket, packet ip.IP, subgraph []string) {
	meta := packet.Metadata()
	processID := socket.To().Process

	mx.bufferedEmit(emit.Event{
		Kind:      "ip",
		ProcessID: processID,
		Data:      packet.Data(),
		Metadata:  withIPMeta(meta, packet, socket),
		Subgraph:  subgraph,
	})

	mx.notifyIP(component.SubgraphIPEvent{
		ID:        packet.ID(),
		ProcessID: processID,
		Kind:      string(packet.Kind()),
		Data:      packet.Data(),
		Metadata:  meta,
		Subgraph:  subgraph,
	})

	switch packet.Kind() {
	case ip.OpenBracket:
		mx.bufferedEmit(emit.Event{Kind: "begingroup", ProcessID: processID, Data: packet.Data(), Subgraph: subgraph})
	case ip.CloseBracket:
		mx.bufferedEmit(emit.Event{Kind: "endgroup", ProcessID: processID, Data: packet.Data(), Subgraph: subgraph})
	case ip.Data:
		mx.bufferedEmit(emit.Event{Kind: "data", ProcessID: processID, Data: packet.Data(), Subgraph: subgraph})
	}
}

func withIPMeta(meta map[string]interface{}, packet ip.IP, socket component.Socket) map[string]interface{} {
	out := make(map[string]interface{}, len(meta)+2)
	for k, v := range meta {
		out[k] = v
	}
	out["ipKind"] = string(packet.Kind())
	out["socketID"] = socket.GetID()
	return out
}

// onProcessError implements the throw-on-no-listener policy from §7:
// a process-error with no registered listener panics synchronously
// rather than being silently swallowed.
func (mx *multiplexer) onProcessError(err error, subgraph []string) {
	mx.mu.Lock()
	hasListener := len(mx.peListeners) > 0
	mx.mu.Unlock()

	mx.bufferedEmit(emit.Event{Kind: "process-error", Data: err.Error(), Subgraph: subgraph})
	mx.notifyProcessError(component.SubgraphProcessErrorEvent{Err: err, Subgraph: subgraph})

	if !hasListener {
		panic(err)
	}
}

// subscribeNode wires a component's activate/deactivate (and, for
// HasLegacyActivation implementers, connect/disconnect) events to the
// quiescence detector's abort/check hooks, and relays HasIcon changes.
func (mx *multiplexer) subscribeNode(id string, c component.Component, onActivate func(), onDeactivate func()) {
	c.OnActivate(func(int) { onActivate() })
	c.OnDeactivate(func(int) { onDeactivate() })

	if hi, ok := c.(component.HasIcon); ok {
		hi.OnIconChange(func(icon string) {
			mx.dispatch(emit.Event{Kind: "icon", ProcessID: id, Data: icon})
		})
	}
	if legacy, ok := c.(component.HasLegacyActivation); ok {
		legacy.OnConnect(func() { onActivate() })
		legacy.OnDisconnect(func() { onDeactivate() })
	}
}

// subscribeSubgraph waits for the subgraph component's readiness, then
// propagates debug mode and prepends id to the Subgraph provenance of
// every ip/process-error event the nested network produces.
func (mx *multiplexer) subscribeSubgraph(id string, c component.Component, sg component.IsSubgraph, debug bool) {
	waitReady(c, func() {
		view := sg.Network()
		if view == nil {
			return
		}
		view.SetDebug(debug)
		view.OnIP(func(ev component.SubgraphIPEvent) {
			subgraph := append([]string{id}, ev.Subgraph...)
			mx.bufferedEmit(emit.Event{Kind: "ip", ProcessID: ev.ProcessID, Data: ev.Data, Metadata: ev.Metadata, Subgraph: subgraph})
			ev.Subgraph = subgraph
			mx.notifyIP(ev)
		})
		view.OnProcessError(func(ev component.SubgraphProcessErrorEvent) {
			subgraph := append([]string{id}, ev.Subgraph...)
			mx.onProcessError(ev.Err, subgraph)
		})
	})
}

// bufferedEmit implements §4.5's rule exactly: icon/error/process-error
// /end bypass the buffer unconditionally; everything else is held
// while the network is not started and flushed, in order, after start.
func (mx *multiplexer) bufferedEmit(event emit.Event) {
	bypass := event.Kind == "icon" || event.Kind == "error" || event.Kind == "process-error" || event.Kind == "end"

	mx.mu.Lock()
	if mx.buffering && !bypass {
		mx.buffer = append(mx.buffer, event)
		mx.mu.Unlock()
		return
	}
	mx.mu.Unlock()

	mx.dispatch(event)
}

// emitStart stops buffering, dispatches the start event itself, then
// flushes whatever accumulated in the buffer, in arrival order.
func (mx *multiplexer) emitStart(startupDate time.Time) {
	mx.mu.Lock()
	mx.buffering = false
	buffered := mx.buffer
	mx.buffer = nil
	mx.mu.Unlock()

	mx.dispatch(emit.Event{Kind: "start", Metadata: map[string]interface{}{"start": startupDate}})
	if mx.metrics != nil {
		mx.metrics.observeStart()
	}

	for _, event := range buffered {
		mx.dispatch(event)
	}
}

// emitEnd dispatches the end event (always a bypass kind) and resumes
// buffering for whatever comes next, since the network is stopped.
func (mx *multiplexer) emitEnd(start, end time.Time, uptime time.Duration) {
	mx.dispatch(emit.Event{Kind: "end", Metadata: map[string]interface{}{"start": start, "end": end, "uptime": uptime}})
	if mx.metrics != nil {
		mx.metrics.observeEnd(uptime.Seconds())
	}
	mx.mu.Lock()
	mx.buffering = true
	mx.mu.Unlock()
}

func (mx *multiplexer) dispatch(event emit.Event) {
	if mx.metrics != nil {
		switch event.Kind {
		case "ip":
			mx.metrics.observeIP(fmt.Sprint(event.Metadata["ipKind"]))
		case "process-error":
			mx.metrics.observeProcessError()
		}
	}
	mx.emitter.Emit(event)
}

// OnIP and OnProcessError satisfy component.SubnetworkView, so a
// *Network can itself be the subgraph network a parent subscribes to.
func (mx *multiplexer) OnIP(fn func(component.SubgraphIPEvent)) func() {
	mx.mu.Lock()
	mx.ipListeners = append(mx.ipListeners, fn)
	idx := len(mx.ipListeners) - 1
	mx.mu.Unlock()
	return func() {
		mx.mu.Lock()
		defer mx.mu.Unlock()
		if idx < len(mx.ipListeners) {
			mx.ipListeners = append(mx.ipListeners[:idx], mx.ipListeners[idx+1:]...)
		}
	}
}

func (mx *multiplexer) OnProcessError(fn func(component.SubgraphProcessErrorEvent)) func() {
	mx.mu.Lock()
	mx.peListeners = append(mx.peListeners, fn)
	idx := len(mx.peListeners) - 1
	mx.mu.Unlock()
	return func() {
		mx.mu.Lock()
		defer mx.mu.Unlock()
		if idx < len(mx.peListeners) {
			mx.peListeners = append(mx.peListeners[:idx], mx.peListeners[idx+1:]...)
		}
	}
}

func (mx *multiplexer) notifyIP(ev component.SubgraphIPEvent) {
	mx.mu.Lock()
	listeners := make([]func(component.SubgraphIPEvent), len(mx.ipListeners))
	copy(listeners, mx.ipListeners)
	mx.mu.Unlock()
	for _, fn := range listeners {
		fn(ev)
	}
}

func (mx *multiplexer) notifyProcessError(ev component.SubgraphProcessErrorEvent) {
	mx.mu.Lock()
	listeners := make([]func(component.SubgraphProcessErrorEvent), len(mx.peListeners))
	copy(listeners, mx.peListeners)
	mx.mu.Unlock()
	for _, fn := range listeners {
		fn(ev)
	}
}
