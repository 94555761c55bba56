package sniffer

import (
	"github.com/sirupsen/logrus"
)

// Registry maps radio channels to capture sessions for the active test
// class. Sessions are created on first use per channel, reused across tests
// and torn down at class teardown.
//
// Per-channel operations on an unregistered channel are silent no-ops, so
// suites can share capture helpers without knowing which channels their
// topology actually initialized.
type Registry struct {
	log       logrus.FieldLogger
	factories []Factory

	channels []int
	sniffers map[int]Sniffer
}

// NewRegistry creates an empty registry. Factories are tried in order when
// a channel is initialized; when every factory fails the channel falls back
// to the no-op stub.
func NewRegistry(log logrus.FieldLogger, factories ...Factory) *Registry {
	return &Registry{
		log:       log,
		factories: factories,
		sniffers:  make(map[int]Sniffer),
	}
}

// Reset drops every registered session without stopping it. Class setup
// calls this before claiming hardware so a crashed previous class cannot
// leak handles into the new one.
func (r *Registry) Reset() {
	r.channels = nil
	r.sniffers = make(map[int]Sniffer)
}

// Channels returns the initialized channels in initialization order.
func (r *Registry) Channels() []int {
	out := make([]int, len(r.channels))
	copy(out, r.channels)
	return out
}

// Init binds a capture session to a channel. Already-initialized channels
// are left untouched. The new session gets the framework logger and is
// waited on until ready.
func (r *Registry) Init(channel int) error {
	if _, ok := r.sniffers[channel]; ok {
		return nil
	}

	var session Sniffer
	for _, factory := range r.factories {
		s, err := factory()
		if err != nil {
			r.log.WithError(err).WithField("channel", channel).
				Debug("capture backend unavailable, trying next")
			continue
		}
		session = s
		break
	}

	if session == nil {
		r.log.WithField("channel", channel).Debug("no capture backend, using stub sniffer")
		session = NewStub()
	}

	r.channels = append(r.channels, channel)
	r.sniffers[channel] = session

	session.SetLogger(r.log)
	return session.WaitForCompletion()
}

// Start begins capturing on one channel, writing the capture file under
// outputPath.
func (r *Registry) Start(channel int, outputPath string) error {
	s, ok := r.sniffers[channel]
	if !ok {
		return nil
	}

	r.log.WithField("channel", channel).Debug("starting sniffer")
	if err := s.Start(channel, outputPath); err != nil {
		return err
	}
	return s.WaitForCompletion()
}

// Stop halts capturing on one channel.
func (r *Registry) Stop(channel int) error {
	s, ok := r.sniffers[channel]
	if !ok {
		return nil
	}

	r.log.WithField("channel", channel).Debug("stopping sniffer")
	if err := s.Stop(); err != nil {
		return err
	}
	return s.WaitForCompletion()
}

// Restart stops and resumes capturing on one channel.
func (r *Registry) Restart(channel int) error {
	s, ok := r.sniffers[channel]
	if !ok {
		return nil
	}

	if err := s.Restart(); err != nil {
		return err
	}
	return s.WaitForCompletion()
}

// StatsFor fetches capture statistics for one channel. Unregistered
// channels report zero stats.
func (r *Registry) StatsFor(channel int) (Stats, error) {
	s, ok := r.sniffers[channel]
	if !ok {
		return Stats{}, nil
	}

	stats, err := s.Stats()
	if err != nil {
		return Stats{}, err
	}
	return stats, s.WaitForCompletion()
}

// TearDown releases one channel's session, leaving it registered so repeat
// teardowns stay no-ops at the session's discretion.
func (r *Registry) TearDown(channel int) error {
	s, ok := r.sniffers[channel]
	if !ok {
		return nil
	}

	if err := s.TearDown(); err != nil {
		return err
	}
	return s.WaitForCompletion()
}

// StartAll begins capturing on every initialized channel, in order.
func (r *Registry) StartAll(outputPath string) error {
	for _, channel := range r.Channels() {
		if err := r.Start(channel, outputPath); err != nil {
			return err
		}
	}
	return nil
}

// StopAll halts capturing on every initialized channel.
func (r *Registry) StopAll() error {
	var firstErr error
	for _, channel := range r.Channels() {
		if err := r.Stop(channel); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// TearDownAll stops and releases every session. All channels are attempted
// even when one fails; the first error is reported.
func (r *Registry) TearDownAll() error {
	var firstErr error
	for _, channel := range r.Channels() {
		if err := r.Stop(channel); err != nil && firstErr == nil {
			firstErr = err
		}
		if err := r.TearDown(channel); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
