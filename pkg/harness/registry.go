package harness

import (
	"fmt"
	"sort"
	"sync"
)

var (
	registryMu sync.Mutex
	suiteOrder []string
	suites     = make(map[string]Suite)
)

// Register makes a suite available to the CLI. It is intended to be called
// from suite package init functions and panics on duplicate names, like
// database/sql driver registration.
func Register(s Suite) {
	registryMu.Lock()
	defer registryMu.Unlock()

	name := s.Name()
	if _, dup := suites[name]; dup {
		panic(fmt.Sprintf("harness: Register called twice for suite %q", name))
	}
	suiteOrder = append(suiteOrder, name)
	suites[name] = s
}

// Suites returns every registered suite, sorted by name.
func Suites() []Suite {
	registryMu.Lock()
	defer registryMu.Unlock()

	names := make([]string, len(suiteOrder))
	copy(names, suiteOrder)
	sort.Strings(names)

	out := make([]Suite, 0, len(names))
	for _, name := range names {
		out = append(out, suites[name])
	}
	return out
}

// Lookup returns a registered suite by name.
func Lookup(name string) (Suite, bool) {
	registryMu.Lock()
	defer registryMu.Unlock()

	s, ok := suites[name]
	return s, ok
}
