package dbopen

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// Busy-contention policy for the audit DB: a handful of attempts with
// linearly growing pauses. WAL plus busy_timeout absorbs most contention;
// this covers the table-lock errors the driver still surfaces.
const (
	busyAttempts = 3
	busyBackoff  = 100 * time.Millisecond
)

var busyMarkers = []string{
	"SQLITE_BUSY",
	"database is locked",
	"database table is locked",
}

// IsBusy reports whether err is SQLite lock contention, in any of the
// message forms the driver produces.
func IsBusy(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, marker := range busyMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// retryBusy runs attempt until it succeeds, fails with a non-busy error, or
// the attempts run out. Non-busy errors pass through unwrapped so callers
// can errors.Is against their own sentinels.
func retryBusy(ctx context.Context, attempt func() error) error {
	var err error
	for try := 1; try <= busyAttempts; try++ {
		if err = attempt(); err == nil || !IsBusy(err) {
			return err
		}
		if try == busyAttempts {
			break
		}
		pause := time.NewTimer(time.Duration(try) * busyBackoff)
		select {
		case <-ctx.Done():
			pause.Stop()
			return fmt.Errorf("dbopen: retry interrupted: %w", ctx.Err())
		case <-pause.C:
		}
	}
	return fmt.Errorf("dbopen: still busy after %d attempts: %w", busyAttempts, err)
}

// RunTx executes fn inside a transaction, retrying the whole transaction on
// SQLITE_BUSY. A rollback caused by fn's error is not retried.
func RunTx(ctx context.Context, db *sql.DB, fn func(*sql.Tx) error) error {
	return retryBusy(ctx, func() error {
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("dbopen: begin tx: %w", err)
		}
		if err := fn(tx); err != nil {
			tx.Rollback()
			return err
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("dbopen: commit: %w", err)
		}
		return nil
	})
}

// Exec executes a single statement, retrying on SQLITE_BUSY.
func Exec(ctx context.Context, db *sql.DB, query string, args ...any) (sql.Result, error) {
	var res sql.Result
	err := retryBusy(ctx, func() error {
		var execErr error
		res, execErr = db.ExecContext(ctx, query, args...)
		return execErr
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}
