// Package device defines the contract the harness expects from claimed mesh
// nodes and tracks the devices owned by the active test class.
package device

import (
	"errors"
	"time"
)

// ErrHardwareNotFound signals that a required board could not be claimed.
// Class setup treats it as a distinguished condition: immediate cleanup and
// artifact flush, no hardware-configuration banner.
var ErrHardwareNotFound = errors.New("hardware not found")

// KeyExtAddress is the property key for a node's IEEE 802.15.4 extended
// address. Devices report it as a bracket-delimited hex string.
const KeyExtAddress = "NCP:ExtendedAddress"

// Device is the collaborator contract for a claimed node. Implementations
// live in the device-control layer; the harness only sequences calls and
// reads counters.
//
// Operations are asynchronous at the device layer: Ping6 and TimedPing6
// enqueue work, WaitForCompletion blocks until the device's queue drains and
// returns the first queued error, if any. The ping counters are only valid
// after a completed wait.
type Device interface {
	Name() string
	WaitForCompletion() error

	Ping6(addr string, count, size int, iface string) error
	TimedPing6(addr string, count, size int, iface string) error
	Ping6Sent() int
	Ping6Received() int
	Ping6RTT() time.Duration

	Get(key string) (string, error)
	TearDown() error
}
