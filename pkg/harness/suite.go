// Package harness implements the test-session controller: suite lifecycle
// sequencing, result bookkeeping, logging, sniffer and device orchestration,
// and the ping-based network assertion helpers.
package harness

// Test is one named test body within a suite. Tests run in declaration
// order; a returned error fails the test without aborting the suite.
type Test struct {
	Name string
	Run  func(*TestContext) error
}

// Suite is the contract test authors implement. The runner drives each
// suite through the xUnit lifecycle: SetUpClass once, then SetUp / body /
// TearDown per test, then TearDownClass once.
//
// Hooks receive the class or test context instead of mutating shared state;
// a suite struct should hold only its own topology (device handles, channel
// numbers) across hooks.
type Suite interface {
	Name() string
	SetUpClass(cc *ClassContext) error
	TearDownClass(cc *ClassContext) error
	SetUp(tc *TestContext) error
	TearDown(tc *TestContext) error
	Tests() []Test
}

// TrackingProvider is an optional Suite capability supplying external
// test-management identifiers keyed by test name, plus the SuiteIDKey
// pseudo-key for the suite itself. Entries from the run's tracking file
// take precedence over provider entries.
type TrackingProvider interface {
	TrackingIDs() map[string]string
}

// SuiteIDKey is the TrackingProvider pseudo-key for the suite-level
// identifier.
const SuiteIDKey = "suite_id"

// BaseSuite provides no-op lifecycle hooks for embedding, so suites only
// spell out the hooks they need.
type BaseSuite struct{}

func (BaseSuite) SetUpClass(*ClassContext) error    { return nil }
func (BaseSuite) TearDownClass(*ClassContext) error { return nil }
func (BaseSuite) SetUp(*TestContext) error          { return nil }
func (BaseSuite) TearDown(*TestContext) error       { return nil }
