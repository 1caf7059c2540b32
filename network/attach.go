package network

import "github.com/berrylands/noflo/component"

// connectPort implements C3: sets the matching endpoint on socket (to
// when inbound, else from), looks up the named port on proc's
// component, and attaches with an index only if the port is
// addressable. No other side effects — subscription and registry
// bookkeeping are the builder's (C4) concern.
func connectPort(socket component.Socket, proc *Process, portName string, index *int, inbound bool) error {
	endpoint := component.Endpoint{Process: proc.ID, Port: portName, Index: index}
	if inbound {
		socket.SetTo(endpoint)
	} else {
		socket.SetFrom(endpoint)
	}

	if proc.Component == nil {
		return structuralErr("process %q has no component instance", proc.ID)
	}

	var port component.Port
	var ok bool
	direction := "outport"
	if inbound {
		direction = "inport"
		port, ok = proc.Component.InPorts()[portName]
	} else {
		port, ok = proc.Component.OutPorts()[portName]
	}
	if !ok {
		return structuralErr("No %s '%s' defined in process %s", direction, portName, proc.ID)
	}

	if port.IsAddressable() {
		return port.Attach(socket, index)
	}
	return port.Attach(socket, nil)
}
