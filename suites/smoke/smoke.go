// Package smoke registers a basic connectivity suite that exercises the
// harness end to end against simulated mesh nodes. It doubles as the
// template suites for real benches are copied from.
package smoke

import (
	"github.com/openwpan/hiltest/pkg/device"
	"github.com/openwpan/hiltest/pkg/device/simnode"
	"github.com/openwpan/hiltest/pkg/harness"
	"github.com/openwpan/hiltest/pkg/logging"
)

const (
	captureChannel = 11

	leaderAddr  = "fd00:db8::1"
	routerAddr  = "fd00:db8::2"
	endDevAddr  = "fd00:db8::3"
	numPings    = 10
	stressIters = 5
)

// Suite forms a three-node topology (leader, router, end device) and checks
// reachability in every direction.
type Suite struct {
	harness.BaseSuite

	leader *simnode.Node
	router *simnode.Node
	endDev *simnode.Node
}

func init() {
	harness.Register(&Suite{})
}

func (s *Suite) Name() string {
	return "SmokeMesh"
}

// TrackingIDs correlates this suite with the lab's test-management system.
func (s *Suite) TrackingIDs() map[string]string {
	return map[string]string{
		harness.SuiteIDKey:   "S100",
		"TestLeaderToRouter": "C1001",
		"TestRouterRTT":      "C1002",
		"TestLeaderFanOut":   "C1003",
		"TestConvergecast":   "C1004",
		"TestStressPing":     "C1005",
	}
}

func (s *Suite) SetUpClass(cc *harness.ClassContext) error {
	if err := cc.SnifferInit(captureChannel); err != nil {
		return err
	}

	log := cc.Log
	s.leader = simnode.New(logging.ChildLogger(log, "leader"), simnode.Config{
		Name:    "leader",
		ExtAddr: 0x18b4300000000001,
		VizID:   1,
	})
	s.router = simnode.New(logging.ChildLogger(log, "router"), simnode.Config{
		Name:    "router",
		ExtAddr: 0x18b4300000000002,
		VizID:   2,
	})
	s.endDev = simnode.New(logging.ChildLogger(log, "end-device"), simnode.Config{
		Name:    "end-device",
		ExtAddr: 0x18b4300000000003,
		VizID:   3,
	})

	cc.AddTestDevice(s.leader)
	cc.AddTestDevice(s.router)
	cc.AddTestDevice(s.endDev)

	return nil
}

func (s *Suite) TearDownClass(cc *harness.ClassContext) error {
	cc.ReleaseDevices()
	return nil
}

func (s *Suite) Tests() []harness.Test {
	return []harness.Test{
		{Name: "TestLeaderToRouter", Run: s.testLeaderToRouter},
		{Name: "TestRouterRTT", Run: s.testRouterRTT},
		{Name: "TestLeaderFanOut", Run: s.testLeaderFanOut},
		{Name: "TestConvergecast", Run: s.testConvergecast},
		{Name: "TestStressPing", Run: harness.Stress(stressIters, 1, s.testLeaderToRouter)},
	}
}

func (s *Suite) testLeaderToRouter(tc *harness.TestContext) error {
	return tc.Ping6(s.leader, routerAddr, numPings)
}

func (s *Suite) testRouterRTT(tc *harness.TestContext) error {
	return tc.TimedPing6(s.router, leaderAddr, numPings)
}

func (s *Suite) testLeaderFanOut(tc *harness.TestContext) error {
	return tc.Ping6MultiDest(s.leader, []string{routerAddr, endDevAddr}, numPings)
}

func (s *Suite) testConvergecast(tc *harness.TestContext) error {
	senders := []device.Device{s.router, s.endDev}
	return tc.Ping6MultiSource(senders, leaderAddr, numPings)
}
