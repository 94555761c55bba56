package harness

import (
	"time"

	"github.com/openwpan/hiltest/pkg/device"
)

// DefaultPingSize is the ICMPv6 payload size used when no option overrides
// it.
const DefaultPingSize = 32

type pingOptions struct {
	size          int
	allowedErrors int
	expected      int
	expectedSet   bool
	iface         string
}

// PingOption adjusts a ping assertion.
type PingOption func(*pingOptions)

// WithPingSize sets the ICMPv6 payload size.
func WithPingSize(size int) PingOption {
	return func(o *pingOptions) {
		o.size = size
	}
}

// WithAllowedErrors widens the received-count tolerance window.
func WithAllowedErrors(n int) PingOption {
	return func(o *pingOptions) {
		o.allowedErrors = n
	}
}

// WithExpected overrides the expected received count, which defaults to the
// requested count.
func WithExpected(n int) PingOption {
	return func(o *pingOptions) {
		o.expected = n
		o.expectedSet = true
	}
}

// WithInterface pins the ping to a named network interface.
func WithInterface(iface string) PingOption {
	return func(o *pingOptions) {
		o.iface = iface
	}
}

func resolvePingOptions(numPings int, opts []PingOption) pingOptions {
	o := pingOptions{size: DefaultPingSize}
	for _, opt := range opts {
		opt(&o)
	}
	if !o.expectedSet {
		o.expected = numPings
	}
	return o
}

func withinWindow(received, expected, allowed int) bool {
	return received >= expected-allowed && received <= expected+allowed
}

// Ping6 issues numPings pings from sender to targetAddr, waits for every
// claimed device to settle, records the counters and asserts the sent count
// matches exactly and the received count falls within the tolerance window.
func (t *TestContext) Ping6(sender device.Device, targetAddr string, numPings int, opts ...PingOption) error {
	o := resolvePingOptions(numPings, opts)

	if err := sender.Ping6(targetAddr, numPings, o.size, o.iface); err != nil {
		return err
	}
	if err := t.WaitForCompletion(); err != nil {
		return err
	}

	sent := sender.Ping6Sent()
	received := sender.Ping6Received()
	t.record.RecordPingCounts(sent, received)

	t.Log.Infof("Pings sent: %d", sent)
	t.Log.Infof("Pings received: %d", received)

	if sent != numPings {
		return t.Failf("sent %d pings, requested %d", sent, numPings)
	}
	if !withinWindow(received, o.expected, o.allowedErrors) {
		return t.Failf("received %d pings, expected %d (tolerance %d)",
			received, o.expected, o.allowedErrors)
	}
	return nil
}

// TimedPing6 issues pings and records the round-trip time. Measurement
// only, no assertion.
func (t *TestContext) TimedPing6(sender device.Device, targetAddr string, numPings int, opts ...PingOption) error {
	o := resolvePingOptions(numPings, opts)

	if err := sender.TimedPing6(targetAddr, numPings, o.size, o.iface); err != nil {
		return err
	}
	if err := t.WaitForCompletion(); err != nil {
		return err
	}

	rtt := sender.Ping6RTT()
	t.record.RecordRTT(rtt)
	t.Log.Infof("Ping RTT: %s", rtt)
	return nil
}

// Ping6MultiDest has one sender ping each target in turn. Every target that
// errors or lands outside the tolerance window counts one failure; the
// assertion is that no target failed.
func (t *TestContext) Ping6MultiDest(sender device.Device, targetAddrs []string, numPings int, opts ...PingOption) error {
	o := resolvePingOptions(numPings, opts)

	failed := 0
	for _, addr := range targetAddrs {
		err := sender.Ping6(addr, numPings, o.size, o.iface)
		if err == nil {
			err = sender.WaitForCompletion()
		}

		if err == nil {
			t.Log.Infof("Pings sent: %d", sender.Ping6Sent())
			t.Log.Infof("Pings received: %d", sender.Ping6Received())
		} else {
			t.Log.WithError(err).Errorf("ping to %s failed", addr)
		}

		if err != nil || !withinWindow(sender.Ping6Received(), o.expected, o.allowedErrors) {
			failed++
		}
	}

	if failed != 0 {
		return t.Failf("%d of %d ping targets failed", failed, len(targetAddrs))
	}
	return nil
}

// Ping6MultiSource has every sender ping the same target. Dispatches are
// issued sequentially with the configured settling delay and an all-device
// barrier between each, then results are collected per sender; the
// assertion is that no sender failed.
//
// The settling delay tolerates boards that drop responses when polled
// immediately after dispatch; tune it with Config.SetSettleDelay.
func (t *TestContext) Ping6MultiSource(senders []device.Device, targetAddr string, numPings int, opts ...PingOption) error {
	o := resolvePingOptions(numPings, opts)

	failed := 0
	for _, sender := range senders {
		if err := sender.Ping6(targetAddr, numPings, o.size, o.iface); err != nil {
			t.Log.WithError(err).Errorf("ping dispatch from %s failed", sender.Name())
			failed++
			continue
		}

		time.Sleep(t.cfg.SettleDelay)

		if err := t.WaitForCompletion(); err != nil {
			return err
		}
	}

	for _, sender := range senders {
		if err := sender.WaitForCompletion(); err != nil {
			t.Log.WithError(err).Errorf("ping from %s failed", sender.Name())
			failed++
			continue
		}
		if !withinWindow(sender.Ping6Received(), o.expected, o.allowedErrors) {
			failed++
		}
	}

	if failed != 0 {
		return t.Failf("%d of %d ping senders failed", failed, len(senders))
	}
	return nil
}
