package harness

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"time"

	"github.com/openwpan/hiltest/pkg/device"
	"github.com/openwpan/hiltest/pkg/logging"
	"github.com/openwpan/hiltest/pkg/sniffer"
	"github.com/openwpan/hiltest/pkg/viz"
)

// timestampLayout names the per-class artifact directory.
const timestampLayout = "2006-01-02_15.04.05"

const frameworkLogName = "harness.log"

// SuiteReport summarizes one suite's run for the caller.
type SuiteReport struct {
	Suite         string
	Total         int
	Passed        int
	Failed        int
	SetUpClassErr error
}

// RunReport aggregates suite reports for one Run call.
type RunReport struct {
	Suites []SuiteReport
}

// Failed reports whether any suite had a failing test or a failed class
// setup.
func (r *RunReport) Failed() bool {
	for _, sr := range r.Suites {
		if sr.Failed > 0 || sr.SetUpClassErr != nil {
			return true
		}
	}
	return false
}

// Run drives each suite through its full lifecycle in order. A suite whose
// class setup fails is reported and skipped; the remaining suites still
// run. Run itself only errors when it cannot create run artifacts at all.
func (s *Session) Run(ctx context.Context, suitesToRun ...Suite) (*RunReport, error) {
	report := &RunReport{}

	for _, suite := range suitesToRun {
		select {
		case <-ctx.Done():
			return report, ctx.Err()
		default:
		}

		report.Suites = append(report.Suites, s.runSuite(suite))
	}

	return report, nil
}

func (s *Session) runSuite(suite Suite) SuiteReport {
	sr := SuiteReport{Suite: suite.Name()}

	cc, err := s.setUpClass(suite)
	if err != nil {
		sr.SetUpClassErr = err
		return sr
	}

	for _, test := range suite.Tests() {
		sr.Total++
		if err := s.runTest(cc, suite, test); err != nil {
			sr.Failed++
		} else {
			sr.Passed++
		}
	}

	s.tearDownClass(cc, suite)
	return sr
}

// setUpClass prepares the class run: fresh output directory and logger,
// ledger slot, visualization session, then the user's SetUpClass. On
// success the registered sniffers are started and every claimed device's
// extended address is mirrored to the topology view.
func (s *Session) setUpClass(suite Suite) (*ClassContext, error) {
	name := suite.Name()
	stamp := time.Now().Format(timestampLayout)

	outputDir := filepath.Join(s.cfg.OutputDir, stamp+"_"+name)
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	closeLog, err := logging.Configure(s.log, filepath.Join(outputDir, frameworkLogName), s.cfg.Verbosity)
	if err != nil {
		return nil, err
	}

	s.log.Infof("Log dest: %s", outputDir)
	s.log.Infof("SET UP CLASS %s", name)

	suiteResult := s.ledger.Class(name)
	suiteResult.SetSuiteID(s.trackingID(suite, SuiteIDKey))

	cc := &ClassContext{
		Suite:       name,
		OutputDir:   outputDir,
		Log:         s.log,
		cfg:         s.cfg,
		devices:     device.NewRegistry(logging.ChildLogger(s.log, "devices")),
		sniffers:    sniffer.NewRegistry(logging.ChildLogger(s.log, "sniffers"), s.snifferFactories...),
		suiteResult: suiteResult,
		closeLog:    closeLog,
	}
	cc.sniffers.Reset()

	if s.cfg.VizHost != "" {
		session, err := viz.Dial(logging.ChildLogger(s.log, "viz"), s.cfg.VizHost)
		if err != nil {
			s.log.WithError(err).Warn("visualization host unreachable, continuing without it")
		} else {
			cc.viz = session
			session.SetTestTitle(name + ".set_up")
			session.SetReplaySpeed(1.0)
		}
	}

	if err := s.startClass(cc, suite); err != nil {
		suiteResult.MarkSetupClassFailed()

		if errors.Is(err, device.ErrHardwareNotFound) {
			cc.ReleaseDevices()
			s.log.Error("Hardware Not Found Error !!!")
			s.flushLedger(cc)
			s.closeClass(cc)
			return nil, err
		}

		s.log.WithError(err).Error("Hardware Configuration Error !!!")
		s.flushLedger(cc)
		s.printSetupBanner(name)
		cc.ReleaseDevices()
		s.closeClass(cc)
		return nil, err
	}

	return cc, nil
}

// startClass runs the failure-prone part of class setup under one error
// path: the user hook, the sniffer start fan-out and the visualization
// extaddr registration.
func (s *Session) startClass(cc *ClassContext, suite Suite) error {
	if err := s.callHook(func() error { return suite.SetUpClass(cc) }); err != nil {
		return err
	}

	if err := cc.sniffers.StartAll(cc.OutputDir); err != nil {
		return fmt.Errorf("starting sniffers: %w", err)
	}

	if cc.viz != nil {
		for _, d := range cc.devices.Devices() {
			if err := cc.ReportExtAddr(d); err != nil {
				return err
			}
		}
	}

	return nil
}

// runTest drives one test through setUp, body and tearDown, recording each
// phase. The test phase only runs when setup succeeded; teardown runs
// whenever setup was attempted to completion, mirroring the xUnit contract.
func (s *Session) runTest(cc *ClassContext, suite Suite, test Test) error {
	rec := cc.suiteResult.Begin(test.Name, s.trackingID(suite, test.Name))
	tc := &TestContext{ClassContext: cc, Test: test.Name, record: rec}

	s.log.Infof("SET UP %s.%s", cc.Suite, test.Name)
	if err := s.callHook(func() error { return suite.SetUp(tc) }); err != nil {
		s.log.WithError(err).Errorf("SET UP FAILED %s.%s", cc.Suite, test.Name)
		return err
	}
	rec.Setup = true

	testErr := s.runTestBody(cc, tc, test)
	if testErr == nil {
		rec.Test = true
	}

	teardownErr := s.runTestTeardown(cc, suite, tc)
	if teardownErr == nil {
		rec.Teardown = true
	}

	if testErr != nil {
		return testErr
	}
	return teardownErr
}

func (s *Session) runTestBody(cc *ClassContext, tc *TestContext, test Test) error {
	if err := cc.WaitForCompletion(); err != nil {
		s.log.WithError(err).Errorf("device not ready before %s.%s", cc.Suite, test.Name)
		return err
	}

	s.log.Infof("RUNNING TEST %s.%s", cc.Suite, test.Name)
	if cc.viz != nil {
		cc.viz.SetTestTitle(cc.Suite + "." + test.Name)
	}

	if err := s.callHook(func() error { return test.Run(tc) }); err != nil {
		s.log.WithError(err).Errorf("TEST FAILED %s.%s", cc.Suite, test.Name)
		return err
	}
	return nil
}

// runTestTeardown brackets the user tearDown. The teardown phase is only
// recorded successful when the hook returns nil; a non-nil error marks the
// test FAILED TEARDOWN rather than being silently absorbed.
func (s *Session) runTestTeardown(cc *ClassContext, suite Suite, tc *TestContext) error {
	if err := cc.WaitForCompletion(); err != nil {
		s.log.WithError(err).Errorf("device not ready before teardown of %s.%s", cc.Suite, tc.Test)
		return err
	}

	s.log.Infof("TEAR DOWN %s.%s", cc.Suite, tc.Test)
	if err := s.callHook(func() error { return suite.TearDown(tc) }); err != nil {
		s.log.WithError(err).Errorf("TEAR DOWN FAILED %s.%s", cc.Suite, tc.Test)
		return err
	}
	return nil
}

// tearDownClass always runs once class setup succeeded, regardless of test
// outcomes: sniffers down, user hook, summary, artifact flush, device and
// visualization cleanup.
func (s *Session) tearDownClass(cc *ClassContext, suite Suite) {
	s.log.Infof("TEAR DOWN CLASS %s", cc.Suite)

	if cc.viz != nil {
		cc.viz.SetTestTitle(cc.Suite + ".tear_down")
	}

	if err := cc.sniffers.TearDownAll(); err != nil {
		s.log.WithError(err).Error("sniffer teardown failed")
	}

	if err := s.callHook(func() error { return suite.TearDownClass(cc) }); err != nil {
		s.log.WithError(err).Errorf("TEAR DOWN CLASS FAILED %s", cc.Suite)
	}

	s.log.Infof("TEAR DOWN CLASS DONE %s", cc.Suite)

	s.printSummary()

	s.flushLedger(cc)
	cc.ClearTestDevices()

	if cc.viz != nil {
		cc.viz.UnsubscribeFromAllNodes()
		cc.viz.SetTestTitle("")
	}

	s.closeClass(cc)
}

// closeClass detaches the class's log sinks and closes the visualization
// session.
func (s *Session) closeClass(cc *ClassContext) {
	if cc.viz != nil {
		if err := cc.viz.Close(); err != nil {
			s.log.WithError(err).Debug("closing visualization session")
		}
	}
	if cc.closeLog != nil {
		_ = cc.closeLog()
		cc.closeLog = nil
	}
}

func (s *Session) flushLedger(cc *ClassContext) {
	if err := s.ledger.WriteJSON(cc.OutputDir); err != nil {
		s.log.WithError(err).Error("writing results artifact failed")
	}
}

// callHook invokes a user hook, converting panics into errors with the
// stack logged line by line so a crash in user code reads like any other
// failed phase.
func (s *Session) callHook(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			for _, line := range strings.Split(string(debug.Stack()), "\n") {
				if line != "" {
					s.log.Error(line)
				}
			}
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}
