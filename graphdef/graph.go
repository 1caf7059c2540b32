// Package graphdef defines the plain data shape the network
// coordinator's Graph Connector (C8) consumes to build a running
// network: nodes to instantiate, edges to wire, and initial values to
// inject. It has no algorithms and no persistence — just the external
// "Graph" input type named by the coordinator's contracts.
package graphdef

import "github.com/berrylands/noflo/component"

// Endpoint identifies a port on a named graph node, with an optional
// slot index for addressable ports.
type Endpoint struct {
	Node  string
	Port  string
	Index *int
}

// Node declares one process to instantiate: ID is the node id the
// coordinator's process table will use, Component is the name passed
// to the Loader, and Metadata is forwarded to the loader unchanged.
type Node struct {
	ID        string
	Component string
	Metadata  map[string]interface{}
}

// Edge declares a connection between two node ports.
type Edge struct {
	From     Endpoint
	To       Endpoint
	Metadata map[string]interface{}
}

// Initializer declares an Initial Information Packet: Data is
// delivered to To once, before any edge-sourced IP, and is replayed
// verbatim if the network is stopped and restarted.
type Initializer struct {
	Data     interface{}
	To       Endpoint
	Metadata map[string]interface{}
}

// Graph is the input the Graph Connector consumes. BaseDir is carried
// as plain data: the coordinator does not read it and does not pass it
// to Loader, and never reads the filesystem itself.
type Graph struct {
	Nodes        []Node
	Edges        []Edge
	Initializers []Initializer
	BaseDir      string
	Loader       component.Loader
}
