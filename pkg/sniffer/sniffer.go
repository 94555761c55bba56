// Package sniffer orchestrates passive packet-capture sessions, one per
// radio channel, for the duration of a test class.
package sniffer

import (
	"github.com/sirupsen/logrus"
)

// Stats summarizes a capture session.
type Stats struct {
	PacketsCaptured int
	BytesCaptured   int64
}

// Sniffer is the collaborator contract for one capture session. Like
// devices, sniffers queue work: every operation must be followed by
// WaitForCompletion before its effect is observable.
type Sniffer interface {
	SetLogger(log logrus.FieldLogger)
	Start(channel int, outputPath string) error
	Stop() error
	Restart() error
	Stats() (Stats, error)
	TearDown() error
	WaitForCompletion() error
}

// Factory constructs a capture backend, failing when its hardware or
// helper process is unavailable.
type Factory func() (Sniffer, error)
