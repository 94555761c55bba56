package result

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRecordOutcomeClassification(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		setup    bool
		test     bool
		teardown bool
		want     Outcome
	}{
		{"all phases pass", true, true, true, OutcomePass},
		{"setup failed", false, true, true, OutcomeFailedSetup},
		{"setup failure outranks teardown", false, false, false, OutcomeFailedSetup},
		{"teardown failed", true, true, false, OutcomeFailedTeardown},
		{"teardown failure outranks test", true, false, false, OutcomeFailedTeardown},
		{"test failed", true, false, true, OutcomeFailedTest},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			rec := &Record{Setup: tc.setup, Test: tc.test, Teardown: tc.teardown}
			require.Equal(t, tc.want, rec.Outcome())
		})
	}
}

func TestLedgerPreservesInsertionOrder(t *testing.T) {
	t.Parallel()

	ledger := NewLedger()
	sr := ledger.Class("PingSuite")
	sr.SetSuiteID("S42")

	first := sr.Begin("test_b", "C2")
	first.Setup = true
	first.Test = true
	first.Teardown = true

	second := sr.Begin("test_a", "")
	second.Setup = true

	require.Equal(t, []string{"PingSuite"}, ledger.Classes())
	require.Equal(t, []string{"test_b", "test_a"}, sr.Tests())

	// Same suite again reuses the slot.
	require.Same(t, sr, ledger.Class("PingSuite"))
}

func TestLedgerJSONLayout(t *testing.T) {
	t.Parallel()

	ledger := NewLedger()
	sr := ledger.Class("PingSuite")
	sr.SetSuiteID("S42")

	rec1 := sr.Begin("test_one", "C1")
	rec1.Setup = true
	rec1.Test = true
	rec1.Teardown = true
	rec1.RecordPingCounts(10, 10)

	rec2 := sr.Begin("test_two", "")
	rec2.Setup = true

	data, err := ledger.MarshalJSON()
	require.NoError(t, err)

	want := `{"PingSuite":{"suite_id":"S42",` +
		`"test_one":{"setUp":true,"test":true,"tearDown":true,"case_id":"C1","pings_sent":10,"pings_received":10},` +
		`"test_two":{"setUp":true,"test":false,"tearDown":false,"case_id":null}}}`
	require.JSONEq(t, want, string(data))
	// Byte-for-byte too: key order is the contract, not just content.
	require.Equal(t, want, string(data))
}

func TestLedgerJSONSetupClassFailure(t *testing.T) {
	t.Parallel()

	ledger := NewLedger()
	sr := ledger.Class("BrokenSuite")
	sr.MarkSetupClassFailed()

	data, err := ledger.MarshalJSON()
	require.NoError(t, err)
	require.Equal(t, `{"BrokenSuite":{"suite_id":null,"setupClass":false}}`, string(data))
}

func TestLedgerWriteJSON(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	ledger := NewLedger()
	sr := ledger.Class("PingSuite")
	rec := sr.Begin("test_rtt", "")
	rec.Setup = true
	rec.Test = true
	rec.Teardown = true
	rec.RecordRTT(1500 * time.Millisecond)

	require.NoError(t, ledger.WriteJSON(dir))

	data, err := os.ReadFile(filepath.Join(dir, ArtifactName))
	require.NoError(t, err)
	require.Contains(t, string(data), `"ping_rtt": 1.5`)
	require.Contains(t, string(data), "    \"PingSuite\"")

	// Rewriting replaces the artifact in place.
	require.NoError(t, ledger.WriteJSON(dir))
}

func TestRecordBeginResetsPriorState(t *testing.T) {
	t.Parallel()

	ledger := NewLedger()
	sr := ledger.Class("PingSuite")

	rec := sr.Begin("test_repeat", "C9")
	rec.Setup = true
	rec.Test = true

	fresh := sr.Begin("test_repeat", "C9")
	require.False(t, fresh.Setup)
	require.False(t, fresh.Test)
	require.False(t, fresh.Teardown)
	require.Equal(t, []string{"test_repeat"}, sr.Tests())
}
