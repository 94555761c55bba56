package sniffer

import (
	"github.com/sirupsen/logrus"
)

// Stub is the fallback capture session used when no real backend can be
// constructed. Every operation succeeds and captures nothing, so tests run
// unchanged on benches without sniffer hardware.
type Stub struct {
	log logrus.FieldLogger
}

// NewStub creates a no-op sniffer.
func NewStub() Sniffer {
	return &Stub{}
}

func (s *Stub) SetLogger(log logrus.FieldLogger) {
	s.log = log
}

func (s *Stub) Start(channel int, outputPath string) error {
	if s.log != nil {
		s.log.WithField("channel", channel).Debug("stub sniffer start")
	}
	return nil
}

func (s *Stub) Stop() error {
	return nil
}

func (s *Stub) Restart() error {
	return nil
}

func (s *Stub) Stats() (Stats, error) {
	return Stats{}, nil
}

func (s *Stub) TearDown() error {
	return nil
}

func (s *Stub) WaitForCompletion() error {
	return nil
}
