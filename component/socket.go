package component

import (
	"sync"

	"github.com/google/uuid"

	"github.com/berrylands/noflo/ip"
)

// Endpoint identifies one side of a socket: the process id it is bound
// to, the port name on that process, and — for addressable ports — the
// slot index.
type Endpoint struct {
	Process string
	Port    string
	Index   *int
}

// Socket is a point-to-point ordered channel between two ports. The
// coordinator creates sockets, attaches their endpoints, subscribes to
// their events, and tears them down; it never participates in the
// ordering or backpressure policy of IP delivery, which is entirely
// this type's concern.
type Socket interface {
	// From returns the outbound endpoint, or the zero Endpoint if this
	// socket carries an IIP or a default value (no upstream process).
	From() Endpoint
	// To returns the inbound endpoint.
	To() Endpoint

	SetFrom(e Endpoint)
	SetTo(e Endpoint)

	// Metadata returns the edge/IIP/default metadata this socket was
	// created with.
	Metadata() map[string]interface{}

	// GetID returns a stable identifier for this socket, suitable for
	// correlating coordinator-level ip events back to their socket.
	GetID() string

	// Post enqueues ip for delivery to the To endpoint.
	Post(packet ip.IP)

	// Connect/Disconnect mark the socket as open/closed for delivery.
	// Used by sendDefaults, which connects, sends, and disconnects a
	// default socket around a single post.
	Connect()
	Disconnect()
	IsConnected() bool

	SetDebug(active bool)

	// OnIP/OnError/OnConnect/OnDisconnect register socket-level event
	// listeners. Each returns an unsubscribe function.
	OnIP(fn func(ip.IP)) (unsubscribe func())
	OnError(fn func(err error)) (unsubscribe func())
	OnConnectEvent(fn func()) (unsubscribe func())
	OnDisconnectEvent(fn func()) (unsubscribe func())
}

// BaseSocket is a minimal, synchronous concrete Socket used by the
// reference components and the coordinator's own tests. Post delivers
// immediately, in call order, to every OnIP listener — there is no
// internal queue, which keeps test scenarios deterministic.
// OnIP returns a working unsubscribe function; the functions returned
// by OnError, OnConnectEvent and OnDisconnectEvent do nothing, so those
// listeners stay registered for the socket's lifetime.
type BaseSocket struct {
	mu        sync.Mutex
	id        string
	from      Endpoint
	to        Endpoint
	metadata  map[string]interface{}
	connected bool
	debug     bool

	ipListeners         []func(ip.IP)
	errorListeners      []func(error)
	connectListeners    []func()
	disconnectListeners []func()
}

// NewSocket creates an unconnected socket carrying the given metadata
// (may be nil).
func NewSocket(metadata map[string]interface{}) *BaseSocket {
	return &BaseSocket{id: uuid.NewString(), metadata: metadata}
}

func (s *BaseSocket) From() Endpoint { s.mu.Lock(); defer s.mu.Unlock(); return s.from }
func (s *BaseSocket) To() Endpoint   { s.mu.Lock(); defer s.mu.Unlock(); return s.to }

func (s *BaseSocket) SetFrom(e Endpoint) { s.mu.Lock(); s.from = e; s.mu.Unlock() }
func (s *BaseSocket) SetTo(e Endpoint)   { s.mu.Lock(); s.to = e; s.mu.Unlock() }

func (s *BaseSocket) Metadata() map[string]interface{} { return s.metadata }
func (s *BaseSocket) GetID() string                    { return s.id }

func (s *BaseSocket) Connect()          { s.mu.Lock(); s.connected = true; s.mu.Unlock(); s.fireConnect() }
func (s *BaseSocket) Disconnect()       { s.mu.Lock(); s.connected = false; s.mu.Unlock(); s.fireDisconnect() }
func (s *BaseSocket) IsConnected() bool { s.mu.Lock(); defer s.mu.Unlock(); return s.connected }
func (s *BaseSocket) SetDebug(active bool) { s.mu.Lock(); s.debug = active; s.mu.Unlock() }

// Debug reports the debug flag most recently set via SetDebug. Exposed
// for tests that need to confirm debug propagation reached this socket.
func (s *BaseSocket) Debug() bool { s.mu.Lock(); defer s.mu.Unlock(); return s.debug }

// Post delivers packet synchronously to every registered IP listener.
func (s *BaseSocket) Post(packet ip.IP) {
	s.mu.Lock()
	listeners := make([]func(ip.IP), len(s.ipListeners))
	copy(listeners, s.ipListeners)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(packet)
	}
}

func (s *BaseSocket) OnIP(fn func(ip.IP)) func() {
	s.mu.Lock()
	s.ipListeners = append(s.ipListeners, fn)
	idx := len(s.ipListeners) - 1
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if idx < len(s.ipListeners) {
			s.ipListeners = append(s.ipListeners[:idx], s.ipListeners[idx+1:]...)
		}
	}
}

func (s *BaseSocket) OnError(fn func(error)) func() {
	s.mu.Lock()
	s.errorListeners = append(s.errorListeners, fn)
	s.mu.Unlock()
	return func() {}
}

func (s *BaseSocket) OnConnectEvent(fn func()) func() {
	s.mu.Lock()
	s.connectListeners = append(s.connectListeners, fn)
	s.mu.Unlock()
	return func() {}
}

func (s *BaseSocket) OnDisconnectEvent(fn func()) func() {
	s.mu.Lock()
	s.disconnectListeners = append(s.disconnectListeners, fn)
	s.mu.Unlock()
	return func() {}
}

// Error delivers err to every registered error listener. Exposed for
// reference components that need to simulate a transport failure.
func (s *BaseSocket) Error(err error) {
	s.mu.Lock()
	listeners := make([]func(error), len(s.errorListeners))
	copy(listeners, s.errorListeners)
	s.mu.Unlock()
	for _, fn := range listeners {
		fn(err)
	}
}

func (s *BaseSocket) fireConnect() {
	s.mu.Lock()
	listeners := make([]func(), len(s.connectListeners))
	copy(listeners, s.connectListeners)
	s.mu.Unlock()
	for _, fn := range listeners {
		fn()
	}
}

func (s *BaseSocket) fireDisconnect() {
	s.mu.Lock()
	listeners := make([]func(), len(s.disconnectListeners))
	copy(listeners, s.disconnectListeners)
	s.mu.Unlock()
	for _, fn := range listeners {
		fn()
	}
}
