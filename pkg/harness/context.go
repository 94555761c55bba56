package harness

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/openwpan/hiltest/pkg/config"
	"github.com/openwpan/hiltest/pkg/device"
	"github.com/openwpan/hiltest/pkg/result"
	"github.com/openwpan/hiltest/pkg/sniffer"
	"github.com/openwpan/hiltest/pkg/viz"
)

// ClassContext carries the per-class state a suite's hooks operate on: the
// timestamped output directory, the framework logger and the device,
// sniffer and visualization registries. It replaces the shared class-level
// attributes of older harnesses with an explicitly injected object.
type ClassContext struct {
	Suite     string
	OutputDir string
	Log       *logrus.Logger

	cfg      *config.Config
	devices  *device.Registry
	sniffers *sniffer.Registry
	viz      viz.Session

	suiteResult *result.SuiteResult
	closeLog    func() error
}

// Config returns the run configuration.
func (c *ClassContext) Config() *config.Config {
	return c.cfg
}

// Devices returns the devices claimed so far, in claim order.
func (c *ClassContext) Devices() []device.Device {
	return c.devices.Devices()
}

// Viz returns the class's visualization session, or nil when visualization
// is not configured.
func (c *ClassContext) Viz() viz.Session {
	return c.viz
}

// AddTestDevice registers a claimed device with the class. Devices that
// implement the visualization capability are mirrored to the topology view.
// Nil and already-registered devices are ignored.
func (c *ClassContext) AddTestDevice(d device.Device) {
	if !c.devices.Add(d) {
		return
	}
	if c.viz != nil {
		if n, ok := d.(viz.Node); ok {
			c.viz.AddNode(n)
		}
	}
}

// ReportExtAddr queries a visualization-tracked device for its extended
// address and forwards it to the topology view. Devices without the
// capability are skipped.
func (c *ClassContext) ReportExtAddr(d device.Device) error {
	if c.viz == nil {
		return nil
	}
	n, ok := d.(viz.Node)
	if !ok {
		return nil
	}

	raw, err := d.Get(device.KeyExtAddress)
	if err != nil {
		return fmt.Errorf("querying extended address of %s: %w", d.Name(), err)
	}
	extaddr, err := device.ParseExtAddr(raw)
	if err != nil {
		return err
	}

	c.viz.UpdateExtAddr(n, extaddr)
	return nil
}

// ClearTestDevices drains the device list without tearing devices down,
// removing visualization-tracked ones from the topology view. Idempotent.
func (c *ClassContext) ClearTestDevices() {
	c.devices.Clear(func(d device.Device) {
		if c.viz != nil {
			if n, ok := d.(viz.Node); ok {
				c.viz.RemoveNode(n)
			}
		}
	})
}

// ReleaseDevices tears down every claimed device and drains the list. Used
// at class teardown and when class setup fails with hardware still held.
func (c *ClassContext) ReleaseDevices() {
	for _, d := range c.devices.Devices() {
		if err := d.TearDown(); err != nil {
			c.Log.WithError(err).WithField("device", d.Name()).Error("device teardown failed")
		}
	}
	c.ClearTestDevices()
}

// WaitForCompletion blocks until every claimed device has drained its task
// queue, returning the first device error.
func (c *ClassContext) WaitForCompletion() error {
	return c.devices.WaitAll()
}

// SnifferInit binds a capture session to a radio channel.
func (c *ClassContext) SnifferInit(channel int) error {
	return c.sniffers.Init(channel)
}

// SnifferStart begins capturing on one channel into the class output
// directory.
func (c *ClassContext) SnifferStart(channel int) error {
	return c.sniffers.Start(channel, c.OutputDir)
}

// SnifferStop halts capturing on one channel.
func (c *ClassContext) SnifferStop(channel int) error {
	return c.sniffers.Stop(channel)
}

// SnifferRestart stops and resumes capturing on one channel.
func (c *ClassContext) SnifferRestart(channel int) error {
	return c.sniffers.Restart(channel)
}

// SnifferStats fetches capture statistics for one channel.
func (c *ClassContext) SnifferStats(channel int) (sniffer.Stats, error) {
	return c.sniffers.StatsFor(channel)
}

// SnifferTearDown releases one channel's capture session.
func (c *ClassContext) SnifferTearDown(channel int) error {
	return c.sniffers.TearDown(channel)
}

// TestContext extends the class context with the identity and result
// record of the running test. Ping assertion helpers live here so their
// metrics land in the right record.
type TestContext struct {
	*ClassContext

	Test   string
	record *result.Record
}

// Record exposes the test's result record.
func (t *TestContext) Record() *result.Record {
	return t.record
}

// Failf builds a test-failure error.
func (t *TestContext) Failf(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}
