package sniffer

import (
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

type fakeSniffer struct {
	log      logrus.FieldLogger
	started  []int
	stopped  int
	restarts int
	torn     int
	waits    int
	startErr error
}

func (f *fakeSniffer) SetLogger(log logrus.FieldLogger) { f.log = log }

func (f *fakeSniffer) Start(channel int, _ string) error {
	f.started = append(f.started, channel)
	return f.startErr
}

func (f *fakeSniffer) Stop() error              { f.stopped++; return nil }
func (f *fakeSniffer) Restart() error           { f.restarts++; return nil }
func (f *fakeSniffer) Stats() (Stats, error)    { return Stats{PacketsCaptured: 7}, nil }
func (f *fakeSniffer) TearDown() error          { f.torn++; return nil }
func (f *fakeSniffer) WaitForCompletion() error { f.waits++; return nil }

func testLogger() logrus.FieldLogger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestInitTriesFactoriesInOrder(t *testing.T) {
	t.Parallel()

	real := &fakeSniffer{}
	r := NewRegistry(testLogger(),
		func() (Sniffer, error) { return nil, errors.New("no hardware") },
		func() (Sniffer, error) { return real, nil },
	)

	require.NoError(t, r.Init(11))
	require.Equal(t, []int{11}, r.Channels())
	require.NotNil(t, real.log, "registry must bind its logger to the session")
	require.Equal(t, 1, real.waits, "init waits for sniffer readiness")
}

func TestInitFallsBackToStub(t *testing.T) {
	t.Parallel()

	r := NewRegistry(testLogger(),
		func() (Sniffer, error) { return nil, errors.New("no hardware") },
	)

	require.NoError(t, r.Init(15))
	require.Equal(t, []int{15}, r.Channels())

	// The stub accepts the full operation surface.
	require.NoError(t, r.Start(15, t.TempDir()))
	require.NoError(t, r.Stop(15))
	require.NoError(t, r.TearDown(15))
}

func TestInitIsIdempotentPerChannel(t *testing.T) {
	t.Parallel()

	constructed := 0
	r := NewRegistry(testLogger(), func() (Sniffer, error) {
		constructed++
		return &fakeSniffer{}, nil
	})

	require.NoError(t, r.Init(11))
	require.NoError(t, r.Init(11))
	require.Equal(t, 1, constructed)
	require.Equal(t, []int{11}, r.Channels())
}

func TestUnregisteredChannelOpsAreNoOps(t *testing.T) {
	t.Parallel()

	r := NewRegistry(testLogger())

	require.NoError(t, r.Start(11, t.TempDir()))
	require.NoError(t, r.Stop(11))
	require.NoError(t, r.Restart(11))
	require.NoError(t, r.TearDown(11))

	stats, err := r.StatsFor(11)
	require.NoError(t, err)
	require.Zero(t, stats)
	require.Empty(t, r.Channels())
}

func TestFanOutOperations(t *testing.T) {
	t.Parallel()

	first := &fakeSniffer{}
	second := &fakeSniffer{}
	handles := []Sniffer{first, second}
	next := 0
	r := NewRegistry(testLogger(), func() (Sniffer, error) {
		s := handles[next]
		next++
		return s, nil
	})

	require.NoError(t, r.Init(11))
	require.NoError(t, r.Init(20))

	require.NoError(t, r.StartAll(t.TempDir()))
	require.Equal(t, []int{11}, first.started)
	require.Equal(t, []int{20}, second.started)

	require.NoError(t, r.StopAll())
	require.Equal(t, 1, first.stopped)
	require.Equal(t, 1, second.stopped)

	require.NoError(t, r.TearDownAll())
	require.Equal(t, 1, first.torn)
	require.Equal(t, 1, second.torn)
	// TearDownAll stops again before tearing down.
	require.Equal(t, 2, first.stopped)
}

func TestResetDropsSessions(t *testing.T) {
	t.Parallel()

	r := NewRegistry(testLogger(), func() (Sniffer, error) { return &fakeSniffer{}, nil })
	require.NoError(t, r.Init(11))

	r.Reset()
	require.Empty(t, r.Channels())
	require.NoError(t, r.Start(11, t.TempDir()), "channel is unregistered again after reset")
}

func TestStatsForRegisteredChannel(t *testing.T) {
	t.Parallel()

	r := NewRegistry(testLogger(), func() (Sniffer, error) { return &fakeSniffer{}, nil })
	require.NoError(t, r.Init(11))

	stats, err := r.StatsFor(11)
	require.NoError(t, err)
	require.Equal(t, 7, stats.PacketsCaptured)
}
