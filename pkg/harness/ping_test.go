package harness

import (
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/openwpan/hiltest/pkg/config"
	"github.com/openwpan/hiltest/pkg/device"
	"github.com/openwpan/hiltest/pkg/device/simnode"
	"github.com/openwpan/hiltest/pkg/result"
)

// newPingContext builds a TestContext wired straight to simulated nodes,
// bypassing the runner. The ping helpers only need the device registry, the
// config and a live record.
func newPingContext(t *testing.T, nodes ...device.Device) *TestContext {
	t.Helper()

	log := logrus.New()
	log.SetOutput(io.Discard)

	reg := device.NewRegistry(log)
	for _, n := range nodes {
		reg.Add(n)
	}

	cc := &ClassContext{
		Suite:   "PingSuite",
		Log:     log,
		cfg:     &config.Config{SettleDelay: 0},
		devices: reg,
	}

	rec := result.NewLedger().Class("PingSuite").Begin("test_ping", "")
	return &TestContext{ClassContext: cc, Test: "test_ping", record: rec}
}

func TestPing6AllReceived(t *testing.T) {
	t.Parallel()

	node := simnode.New(discardLogger(), simnode.Config{Name: "leader"})
	tc := newPingContext(t, node)

	require.NoError(t, tc.Ping6(node, "fd00::1", 10))

	sent, received, ok := tc.Record().PingCounts()
	require.True(t, ok)
	require.Equal(t, 10, sent)
	require.Equal(t, 10, received)
}

func TestPing6LossOutsideWindowFails(t *testing.T) {
	t.Parallel()

	node := simnode.New(discardLogger(), simnode.Config{Name: "leader"})
	node.SetLoss("fd00::1", 3)
	tc := newPingContext(t, node)

	err := tc.Ping6(node, "fd00::1", 10)
	require.Error(t, err)
	require.Contains(t, err.Error(), "received 7 pings, expected 10")

	// The counters are recorded even for a failed assertion.
	sent, received, ok := tc.Record().PingCounts()
	require.True(t, ok)
	require.Equal(t, 10, sent)
	require.Equal(t, 7, received)
}

func TestPing6AllowedErrorsWidenWindow(t *testing.T) {
	t.Parallel()

	node := simnode.New(discardLogger(), simnode.Config{Name: "leader"})
	node.SetLoss("fd00::1", 1)
	tc := newPingContext(t, node)

	require.NoError(t, tc.Ping6(node, "fd00::1", 10, WithAllowedErrors(1)))
}

func TestPing6ExpectedOverride(t *testing.T) {
	t.Parallel()

	node := simnode.New(discardLogger(), simnode.Config{Name: "leader"})
	node.SetLoss("fd00::1", 2)
	tc := newPingContext(t, node)

	require.NoError(t, tc.Ping6(node, "fd00::1", 10, WithExpected(8)))
}

func TestPing6BarrierErrorSurfaces(t *testing.T) {
	t.Parallel()

	node := simnode.New(discardLogger(), simnode.Config{Name: "leader"})
	tc := newPingContext(t, node)

	injected := errors.New("tx queue stalled")
	node.FailNext(injected)

	err := tc.Ping6(node, "fd00::1", 5)
	require.ErrorIs(t, err, injected)

	_, _, ok := tc.Record().PingCounts()
	require.False(t, ok, "no counters recorded when the barrier fails")
}

func TestTimedPing6RecordsRTT(t *testing.T) {
	t.Parallel()

	node := simnode.New(discardLogger(), simnode.Config{
		Name: "leader",
		RTT:  40 * time.Millisecond,
	})
	tc := newPingContext(t, node)

	require.NoError(t, tc.TimedPing6(node, "fd00::1", 3))

	rtt, ok := tc.Record().RTT()
	require.True(t, ok)
	require.Equal(t, 40*time.Millisecond, rtt)
}

func TestPing6MultiDestCountsFailedTargets(t *testing.T) {
	t.Parallel()

	node := simnode.New(discardLogger(), simnode.Config{Name: "leader"})
	node.SetLoss("fd00::2", 5)
	tc := newPingContext(t, node)

	targets := []string{"fd00::1", "fd00::2", "fd00::3"}
	err := tc.Ping6MultiDest(node, targets, 10)
	require.Error(t, err)
	require.Contains(t, err.Error(), "1 of 3 ping targets failed")
}

func TestPing6MultiDestAllTargetsPass(t *testing.T) {
	t.Parallel()

	node := simnode.New(discardLogger(), simnode.Config{Name: "leader"})
	tc := newPingContext(t, node)

	targets := []string{"fd00::1", "fd00::2", "fd00::3"}
	require.NoError(t, tc.Ping6MultiDest(node, targets, 10))
}

func TestPing6MultiSourceCountsFailedSenders(t *testing.T) {
	t.Parallel()

	good := simnode.New(discardLogger(), simnode.Config{Name: "router"})
	lossy := simnode.New(discardLogger(), simnode.Config{Name: "end-device"})
	lossy.SetLoss("fd00::1", 4)
	tc := newPingContext(t, good, lossy)

	err := tc.Ping6MultiSource([]device.Device{good, lossy}, "fd00::1", 10)
	require.Error(t, err)
	require.Contains(t, err.Error(), "1 of 2 ping senders failed")
}

func TestPing6MultiSourceAllSendersPass(t *testing.T) {
	t.Parallel()

	a := simnode.New(discardLogger(), simnode.Config{Name: "router"})
	b := simnode.New(discardLogger(), simnode.Config{Name: "end-device"})
	tc := newPingContext(t, a, b)

	require.NoError(t, tc.Ping6MultiSource([]device.Device{a, b}, "fd00::1", 10))
}

func TestWithinWindow(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name                        string
		received, expected, allowed int
		want                        bool
	}{
		{"exact", 10, 10, 0, true},
		{"one short no tolerance", 9, 10, 0, false},
		{"one short tolerated", 9, 10, 1, true},
		{"one over tolerated", 11, 10, 1, true},
		{"two over tolerance of one", 12, 10, 1, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tc.want, withinWindow(tc.received, tc.expected, tc.allowed))
		})
	}
}
