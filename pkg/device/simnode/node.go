// Package simnode provides an in-process simulated mesh node. It stands in
// for real boards in the smoke suite and in harness tests, with scriptable
// packet loss and failure injection.
package simnode

import (
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/openwpan/hiltest/pkg/device"
)

// Config describes one simulated node.
type Config struct {
	Name    string
	ExtAddr uint64
	VizID   int

	// RTT reported by TimedPing6. Zero means DefaultRTT.
	RTT time.Duration
}

// DefaultRTT is reported by timed pings when the config leaves RTT unset.
const DefaultRTT = 15 * time.Millisecond

// Node simulates a claimed mesh device. All operations complete instantly;
// WaitForCompletion returns (and clears) any injected error.
type Node struct {
	mu  sync.Mutex
	cfg Config
	log logrus.FieldLogger

	sent     int
	received int
	rtt      time.Duration

	lossByAddr map[string]int
	nextErr    error
	tornDown   bool

	props map[string]string
}

// New creates a simulated node.
func New(log logrus.FieldLogger, cfg Config) *Node {
	if cfg.RTT == 0 {
		cfg.RTT = DefaultRTT
	}

	log.WithFields(logrus.Fields{
		"node":    cfg.Name,
		"extaddr": fmt.Sprintf("%016x", cfg.ExtAddr),
	}).Debug("simulated node created")

	return &Node{
		cfg:        cfg,
		log:        log,
		lossByAddr: make(map[string]int),
		props: map[string]string{
			device.KeyExtAddress: fmt.Sprintf("[%016x]", cfg.ExtAddr),
		},
	}
}

// SetLoss scripts n dropped pings for every future batch toward addr.
func (n *Node) SetLoss(addr string, lost int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.lossByAddr[addr] = lost
}

// FailNext injects an error to be reported by the next WaitForCompletion.
func (n *Node) FailNext(err error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.nextErr = err
}

// TornDown reports whether TearDown has been called.
func (n *Node) TornDown() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.tornDown
}

func (n *Node) Name() string {
	return n.cfg.Name
}

func (n *Node) WaitForCompletion() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	err := n.nextErr
	n.nextErr = nil
	return err
}

func (n *Node) Ping6(addr string, count, size int, iface string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	lost := n.lossByAddr[addr]
	received := count - lost
	if received < 0 {
		received = 0
	}

	n.sent = count
	n.received = received

	n.log.WithFields(logrus.Fields{
		"node":     n.cfg.Name,
		"target":   addr,
		"count":    count,
		"size":     size,
		"iface":    iface,
		"received": received,
	}).Debug("simulated ping6")

	return nil
}

func (n *Node) TimedPing6(addr string, count, size int, iface string) error {
	if err := n.Ping6(addr, count, size, iface); err != nil {
		return err
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	n.rtt = n.cfg.RTT
	return nil
}

func (n *Node) Ping6Sent() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.sent
}

func (n *Node) Ping6Received() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.received
}

func (n *Node) Ping6RTT() time.Duration {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.rtt
}

func (n *Node) Get(key string) (string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	value, ok := n.props[key]
	if !ok {
		return "", fmt.Errorf("unknown property %q", key)
	}
	return value, nil
}

func (n *Node) TearDown() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.tornDown = true
	n.log.WithField("node", n.cfg.Name).Debug("simulated node torn down")
	return nil
}

// VizNodeID implements the visualization capability.
func (n *Node) VizNodeID() int {
	return n.cfg.VizID
}

// VizName implements the visualization capability.
func (n *Node) VizName() string {
	return n.cfg.Name
}
