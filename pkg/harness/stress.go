package harness

import (
	"fmt"
	"runtime/debug"
	"strings"
)

// Stress wraps a test body to run it iterations times, tolerating up to
// allowedFailures failing iterations. Per-iteration errors are logged and
// swallowed; this is the one place the harness absorbs failures, giving
// flaky hardware a bounded benefit of the doubt. The wrapped test fails
// when the pass count drops below iterations-allowedFailures.
func Stress(iterations, allowedFailures int, fn func(*TestContext) error) func(*TestContext) error {
	return func(tc *TestContext) error {
		passCount := 0

		for i := 0; i < iterations; i++ {
			tc.Log.Infof("RUNNING TEST %s.%s (%d/%d)", tc.Suite, tc.Test, i+1, iterations)

			if err := runIteration(tc, fn); err != nil {
				tc.Log.WithError(err).Errorf("iteration %d/%d failed", i+1, iterations)
				continue
			}
			passCount++
		}

		if passCount < iterations-allowedFailures {
			tc.Log.Errorf("Pass Rate: %d/%d", passCount, iterations)
			return tc.Failf("Pass Rate: %d/%d", passCount, iterations)
		}

		tc.Log.Infof("Pass Rate: %d/%d", passCount, iterations)
		return nil
	}
}

func runIteration(tc *TestContext, fn func(*TestContext) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			for _, line := range strings.Split(string(debug.Stack()), "\n") {
				if line != "" {
					tc.Log.Error(line)
				}
			}
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn(tc)
}
