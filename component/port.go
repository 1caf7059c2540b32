package component

// Port is a named endpoint on a Component. Addressable ports expose
// indexed slots (array ports in FBP terms); non-addressable ports
// accept a single socket.
type Port interface {
	// Name returns the port's name as stamped by the process table.
	Name() string

	// IsAddressable reports whether Attach requires an index.
	IsAddressable() bool

	// HasDefault reports whether the port carries a declared default
	// value, used by the default builder (C4) when no edge or IIP
	// targets this port.
	HasDefault() bool

	// DefaultValue returns the declared default value. Only meaningful
	// when HasDefault is true.
	DefaultValue() interface{}

	// IsAttached reports whether at least one socket is currently
	// attached to this port.
	IsAttached() bool

	// Sockets returns the sockets currently attached to this port, in
	// attachment order. Non-addressable ports never return more than
	// one, except transiently when a default socket and a "real"
	// socket coexist (see §4.8 sendDefaults suppression rule).
	Sockets() []Socket

	// Attach binds socket to this port. index is non-nil only for
	// addressable ports.
	Attach(socket Socket, index *int) error

	// Detach unbinds socket from this port. It is not an error to
	// detach a socket that is not attached.
	Detach(socket Socket)
}

// BasePort is a minimal concrete Port implementation suitable for
// reference components and tests. Components that need genuinely
// different port behavior can implement Port directly.
type BasePort struct {
	name         string
	addressable  bool
	hasDefault   bool
	defaultValue interface{}
	sockets      []Socket
	indices      []*int
	attachFns    []func(socket Socket, index *int)
}

// NewPort creates a non-addressable port with no default value.
func NewPort(name string) *BasePort {
	return &BasePort{name: name}
}

// NewAddressablePort creates an addressable (array) port.
func NewAddressablePort(name string) *BasePort {
	return &BasePort{name: name, addressable: true}
}

// WithDefault returns p configured to report defaultValue as its
// declared default. Intended to be chained at construction time:
//
//	port := NewPort("IN").WithDefault(42)
func (p *BasePort) WithDefault(defaultValue interface{}) *BasePort {
	p.hasDefault = true
	p.defaultValue = defaultValue
	return p
}

func (p *BasePort) Name() string               { return p.name }
func (p *BasePort) IsAddressable() bool         { return p.addressable }
func (p *BasePort) HasDefault() bool            { return p.hasDefault }
func (p *BasePort) DefaultValue() interface{}   { return p.defaultValue }
func (p *BasePort) IsAttached() bool            { return len(p.sockets) > 0 }
func (p *BasePort) Sockets() []Socket {
	out := make([]Socket, len(p.sockets))
	copy(out, p.sockets)
	return out
}

func (p *BasePort) Attach(socket Socket, index *int) error {
	p.sockets = append(p.sockets, socket)
	p.indices = append(p.indices, index)
	for _, fn := range p.attachFns {
		fn(socket, index)
	}
	return nil
}

// OnAttachSocket registers fn to run every time a socket is attached to
// this port, including sockets already attached when OnAttachSocket is
// called. Reference components use this to wire their IP handling onto
// new sockets without the coordinator knowing anything about it.
func (p *BasePort) OnAttachSocket(fn func(socket Socket, index *int)) {
	for i, s := range p.sockets {
		fn(s, p.indices[i])
	}
	p.attachFns = append(p.attachFns, fn)
}

func (p *BasePort) Detach(socket Socket) {
	for i, s := range p.sockets {
		if s == socket {
			p.sockets = append(p.sockets[:i], p.sockets[i+1:]...)
			p.indices = append(p.indices[:i], p.indices[i+1:]...)
			return
		}
	}
}
