package result

import "context"

// Sink exports finished ledgers to an external store. The harness treats
// export as best effort: a sink failure is logged and never fails the run.
type Sink interface {
	// Flush exports every record currently in the ledger.
	Flush(ctx context.Context, ledger *Ledger) error
	Close() error
}
