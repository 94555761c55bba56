package viz

import (
	"fmt"
	"net"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// DefaultPort is used when the configured host carries no port.
const DefaultPort = "9000"

// client talks to the visualization service over UDP with newline-terminated
// text commands. Commands are queued to a background pump so a slow or
// absent service never stalls the test run; queue overflows and send errors
// are logged and dropped.
type client struct {
	log  logrus.FieldLogger
	conn net.Conn

	mu     sync.Mutex
	closed bool
	cmds   chan string

	group *errgroup.Group
}

const commandQueueSize = 128

// Dial connects a visualization session to host ("addr" or "addr:port").
func Dial(log logrus.FieldLogger, host string) (Session, error) {
	if !strings.Contains(host, ":") {
		host = net.JoinHostPort(host, DefaultPort)
	}

	conn, err := net.Dial("udp", host)
	if err != nil {
		return nil, fmt.Errorf("dialing visualization host %s: %w", host, err)
	}

	c := &client{
		log:  log,
		conn: conn,
		cmds: make(chan string, commandQueueSize),
	}

	c.group = new(errgroup.Group)
	c.group.Go(c.pump)

	log.WithField("host", host).Debug("visualization session established")
	return c, nil
}

func (c *client) pump() error {
	for cmd := range c.cmds {
		if _, err := fmt.Fprintf(c.conn, "%s\n", cmd); err != nil {
			c.log.WithError(err).WithField("command", cmd).
				Debug("visualization command dropped")
		}
	}
	return nil
}

func (c *client) send(cmd string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	select {
	case c.cmds <- cmd:
	default:
		c.log.WithField("command", cmd).Debug("visualization queue full, command dropped")
	}
}

func (c *client) SetTestTitle(title string) {
	c.send("title " + title)
}

func (c *client) SetReplaySpeed(speed float64) {
	c.send(fmt.Sprintf("speed %g", speed))
}

func (c *client) AddNode(n Node) {
	c.send(fmt.Sprintf("add %d %s", n.VizNodeID(), n.VizName()))
}

func (c *client) RemoveNode(n Node) {
	c.send(fmt.Sprintf("remove %d", n.VizNodeID()))
}

func (c *client) UpdateExtAddr(n Node, extaddr uint64) {
	c.send(fmt.Sprintf("extaddr %d %016x", n.VizNodeID(), extaddr))
}

func (c *client) UnsubscribeFromAllNodes() {
	c.send("unsubscribe")
}

// Close drains the queued commands and releases the socket.
func (c *client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	close(c.cmds)
	c.mu.Unlock()

	_ = c.group.Wait()
	return c.conn.Close()
}
