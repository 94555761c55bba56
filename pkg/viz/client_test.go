package viz

import (
	"io"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

type fakeNode struct {
	id   int
	name string
}

func (n fakeNode) VizNodeID() int  { return n.id }
func (n fakeNode) VizName() string { return n.name }

func testLogger() logrus.FieldLogger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// startListener binds a local UDP socket. The returned receive function
// reads count datagrams, one command per datagram.
func startListener(t *testing.T) (addr string, receive func(count int) []string) {
	t.Helper()

	conn, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	receive = func(count int) []string {
		out := make([]string, 0, count)
		buf := make([]byte, 1024)
		for len(out) < count {
			require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
			n, _, err := conn.ReadFrom(buf)
			require.NoError(t, err)
			out = append(out, strings.TrimSuffix(string(buf[:n]), "\n"))
		}
		return out
	}

	return conn.LocalAddr().String(), receive
}

func TestClientEncodesCommands(t *testing.T) {
	t.Parallel()

	addr, receive := startListener(t)

	session, err := Dial(testLogger(), addr)
	require.NoError(t, err)

	node := fakeNode{id: 3, name: "router"}
	session.SetTestTitle("SmokeMesh.set_up")
	session.SetReplaySpeed(1.0)
	session.AddNode(node)
	session.UpdateExtAddr(node, 0x18b4300000000002)
	session.RemoveNode(node)
	session.UnsubscribeFromAllNodes()

	require.NoError(t, session.Close())

	require.Equal(t, []string{
		"title SmokeMesh.set_up",
		"speed 1",
		"add 3 router",
		"extaddr 3 18b4300000000002",
		"remove 3",
		"unsubscribe",
	}, receive(6))
}

func TestClientDefaultPort(t *testing.T) {
	t.Parallel()

	session, err := Dial(testLogger(), "127.0.0.1")
	require.NoError(t, err)
	require.NoError(t, session.Close())
}

func TestClientCloseIsIdempotentAndLateSendsAreDropped(t *testing.T) {
	t.Parallel()

	addr, _ := startListener(t)

	session, err := Dial(testLogger(), addr)
	require.NoError(t, err)

	require.NoError(t, session.Close())
	require.NoError(t, session.Close())

	// Must not panic on a closed queue.
	session.SetTestTitle("late title")
}
