// Package confirm implements the bounded receipt-polling policy: a fixed
// attempt cap and a fixed interval, composed with context cancellation instead
// of blocking sleeps, so a confirmation that never arrives cannot stall the
// pipeline.
package confirm

import (
	"context"
	"time"

	"golang.org/x/xerrors"

	"github.com/zera-audit/zera-pipeline/api"
)

// ErrUnconfirmed is returned when the attempt budget is exhausted without an
// observed receipt.
var ErrUnconfirmed = xerrors.New("transaction confirmation not observed within the attempt budget")

// ErrReverted is returned when a receipt is observed but the transaction
// failed on chain.
var ErrReverted = xerrors.New("transaction reverted on chain")

// WaitReceipt polls for the receipt of tx until it is observed, the attempt
// budget runs out, or ctx is cancelled. Each attempt is itself bounded by the
// polling interval.
func WaitReceipt(ctx context.Context, chain api.ChainAPI, tx api.TxHash, attempts int, interval time.Duration) (api.Receipt, error) {
	for i := 0; i < attempts; i++ {
		attemptCtx, cancel := context.WithTimeout(ctx, interval)
		receipt, err := chain.WaitReceipt(attemptCtx, tx)
		cancel()

		if err == nil {
			if !receipt.Ok {
				return receipt, xerrors.Errorf("transaction %s: %w", tx, ErrReverted)
			}
			return receipt, nil
		}

		if ctx.Err() != nil {
			return api.Receipt{}, ctx.Err()
		}

		// Receipt not available yet; wait out the interval before the next
		// attempt unless the attempt already consumed it.
		select {
		case <-ctx.Done():
			return api.Receipt{}, ctx.Err()
		case <-time.After(interval):
		}
	}

	return api.Receipt{}, xerrors.Errorf("transaction %s after %d attempts: %w", tx, attempts, ErrUnconfirmed)
}
