package simnode

import (
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/openwpan/hiltest/pkg/device"
)

func newTestNode(t *testing.T, cfg Config) *Node {
	t.Helper()

	log := logrus.New()
	log.SetOutput(io.Discard)
	return New(log, cfg)
}

func TestNodeReportsPingCounters(t *testing.T) {
	t.Parallel()

	n := newTestNode(t, Config{Name: "leader"})

	require.NoError(t, n.Ping6("fd00::2", 10, 32, ""))
	require.NoError(t, n.WaitForCompletion())
	require.Equal(t, 10, n.Ping6Sent())
	require.Equal(t, 10, n.Ping6Received())
}

func TestNodeScriptedLossPerTarget(t *testing.T) {
	t.Parallel()

	n := newTestNode(t, Config{Name: "leader"})
	n.SetLoss("fd00::2", 3)

	require.NoError(t, n.Ping6("fd00::2", 10, 32, ""))
	require.Equal(t, 7, n.Ping6Received())

	// Other targets are unaffected.
	require.NoError(t, n.Ping6("fd00::3", 10, 32, ""))
	require.Equal(t, 10, n.Ping6Received())
}

func TestNodeInjectedFailureClearsAfterWait(t *testing.T) {
	t.Parallel()

	n := newTestNode(t, Config{Name: "router"})
	n.FailNext(errors.New("radio stuck"))

	require.EqualError(t, n.WaitForCompletion(), "radio stuck")
	require.NoError(t, n.WaitForCompletion())
}

func TestNodeTimedPingRTT(t *testing.T) {
	t.Parallel()

	n := newTestNode(t, Config{Name: "router"})
	require.NoError(t, n.TimedPing6("fd00::1", 5, 32, ""))
	require.Equal(t, DefaultRTT, n.Ping6RTT())
}

func TestNodeExtendedAddressProperty(t *testing.T) {
	t.Parallel()

	n := newTestNode(t, Config{Name: "leader", ExtAddr: 0x18b4300000000001})

	raw, err := n.Get(device.KeyExtAddress)
	require.NoError(t, err)
	require.Equal(t, "[18b4300000000001]", raw)

	addr, err := device.ParseExtAddr(raw)
	require.NoError(t, err)
	require.Equal(t, uint64(0x18b4300000000001), addr)

	_, err = n.Get("NCP:DoesNotExist")
	require.Error(t, err)
}

func TestNodeTearDown(t *testing.T) {
	t.Parallel()

	n := newTestNode(t, Config{Name: "leader"})
	require.False(t, n.TornDown())
	require.NoError(t, n.TearDown())
	require.True(t, n.TornDown())
}
