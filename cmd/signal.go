package cmd

import (
	"context"
	"os/signal"
	"syscall"
)

// contextForRun returns a context cancelled on SIGINT/SIGTERM so an
// interrupted run still stops between suites instead of mid-artifact.
func contextForRun() context.Context {
	ctx, _ := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	return ctx
}
