// Package viz bridges the harness to an external network-topology
// visualization and replay service. The bridge is entirely inert when no
// host is configured.
package viz

// Node is the capability interface for devices that participate in the
// network topology view. Device variants that cannot be visualized (border
// relays, instrumentation hosts) simply do not implement it.
type Node interface {
	VizNodeID() int
	VizName() string
}

// Session is the collaborator contract for one visualization subscription,
// created at class setup and closed at class teardown.
type Session interface {
	SetTestTitle(title string)
	SetReplaySpeed(speed float64)
	AddNode(n Node)
	RemoveNode(n Node)
	UpdateExtAddr(n Node, extaddr uint64)
	UnsubscribeFromAllNodes()
	Close() error
}
