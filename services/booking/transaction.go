package booking

import (
	"context"
	"errors"
	"time"

	"nestly/database"
	"nestly/database/repository"
)

// maxTxAttempts bounds how often a transaction whose conditional write lost a
// race is re-run. Each attempt re-reads, so the guards see the winner's write.
const maxTxAttempts = 5

// txBackoff is the wait before the second attempt; later waits grow linearly.
var txBackoff = 20 * time.Millisecond

// RunGuarded runs fn in a store transaction, re-running it when a
// conditional write reports database.ErrConflict. Once the attempts are
// spent it returns ErrBusy.
func RunGuarded(ctx context.Context, repo repository.BookingRepository, fn func(ctx context.Context, tx repository.Tx) error) error {
	for attempt := 0; attempt < maxTxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(time.Duration(attempt) * txBackoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		err := repo.RunTransaction(ctx, fn)
		if !errors.Is(err, database.ErrConflict) {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	return ErrBusy
}
