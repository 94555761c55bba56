package result

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// ArtifactName is the filename of the per-class JSON artifact.
const ArtifactName = "results.json"

// Ledger records per-test outcomes for one harness run, keyed by suite name
// in insertion order. One ledger exists per run; suites are added lazily on
// class setup and never removed.
type Ledger struct {
	order  []string
	suites map[string]*SuiteResult
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{
		suites: make(map[string]*SuiteResult),
	}
}

// Class returns the result slot for the named suite, creating it on first
// use. A repeated run of the same suite reuses (and extends) its slot.
func (l *Ledger) Class(name string) *SuiteResult {
	if sr, ok := l.suites[name]; ok {
		return sr
	}
	sr := &SuiteResult{
		name:    name,
		records: make(map[string]*Record),
	}
	l.order = append(l.order, name)
	l.suites[name] = sr
	return sr
}

// Classes returns the suite names in insertion order.
func (l *Ledger) Classes() []string {
	out := make([]string, len(l.order))
	copy(out, l.order)
	return out
}

// Lookup returns the result slot for a suite without creating it.
func (l *Ledger) Lookup(name string) (*SuiteResult, bool) {
	sr, ok := l.suites[name]
	return sr, ok
}

// MarshalJSON renders the ledger as a nested object, suite insertion order
// preserved.
func (l *Ledger) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range l.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		data, err := json.Marshal(l.suites[name])
		if err != nil {
			return nil, err
		}
		fmt.Fprintf(&buf, "%q:%s", name, data)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// WriteJSON persists the ledger to <dir>/results.json, indented, replacing
// any previous artifact.
func (l *Ledger) WriteJSON(dir string) error {
	data, err := json.Marshal(l)
	if err != nil {
		return fmt.Errorf("marshalling ledger: %w", err)
	}

	var out bytes.Buffer
	if err := json.Indent(&out, data, "", "    "); err != nil {
		return fmt.Errorf("indenting ledger: %w", err)
	}
	out.WriteByte('\n')

	path := filepath.Join(dir, ArtifactName)
	if err := os.WriteFile(path, out.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// SuiteResult holds the ordered per-test records of one suite plus its
// suite-level tracking identifier.
type SuiteResult struct {
	name    string
	suiteID string

	setupClassFailed bool

	order   []string
	records map[string]*Record
}

// Name returns the suite name this slot belongs to.
func (s *SuiteResult) Name() string {
	return s.name
}

// SetSuiteID records the suite-level tracking identifier.
func (s *SuiteResult) SetSuiteID(id string) {
	s.suiteID = id
}

// SuiteID returns the suite-level tracking identifier.
func (s *SuiteResult) SuiteID() string {
	return s.suiteID
}

// Begin creates a fresh record for a test method, with all phases unset.
// Beginning an already-known test resets its record in place.
func (s *SuiteResult) Begin(test, trackingID string) *Record {
	if _, ok := s.records[test]; !ok {
		s.order = append(s.order, test)
	}
	rec := &Record{TrackingID: trackingID}
	s.records[test] = rec
	return rec
}

// MarkSetupClassFailed flags the whole class as failed during setup.
func (s *SuiteResult) MarkSetupClassFailed() {
	s.setupClassFailed = true
}

// SetupClassFailed reports whether class setup failed.
func (s *SuiteResult) SetupClassFailed() bool {
	return s.setupClassFailed
}

// Tests returns the test names in insertion order.
func (s *SuiteResult) Tests() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Record returns the record for one test.
func (s *SuiteResult) Record(test string) (*Record, bool) {
	rec, ok := s.records[test]
	return rec, ok
}

// MarshalJSON renders the suite slot with the suite_id pseudo-entry first,
// then a setupClass marker if class setup failed, then the per-test records
// in insertion order.
func (s *SuiteResult) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	if s.suiteID != "" {
		fmt.Fprintf(&buf, "%q:%q", SuiteIDKey, s.suiteID)
	} else {
		fmt.Fprintf(&buf, "%q:null", SuiteIDKey)
	}

	if s.setupClassFailed {
		fmt.Fprintf(&buf, ",%q:false", setupClassKey)
	}

	for _, test := range s.order {
		data, err := json.Marshal(s.records[test])
		if err != nil {
			return nil, err
		}
		fmt.Fprintf(&buf, ",%q:%s", test, data)
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}
