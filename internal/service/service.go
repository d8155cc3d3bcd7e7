// Package service implements the ledger use cases. Each use case resolves its aggregates,
// runs the guard checks and delegates the balance arithmetic to the ledger package, all
// inside one unit of work that is retried on optimistic version conflicts.
package service

import (
	"context"
	"time"

	"finance_tracker/internal/apperr"
	"finance_tracker/internal/cache"
	"finance_tracker/internal/events"
	"finance_tracker/internal/ledger"
	"finance_tracker/internal/metrics"
	"finance_tracker/internal/repository"

	"github.com/sirupsen/logrus"
)

// DefaultRetryLimit is the number of attempts per unit of work when none is configured
const DefaultRetryLimit = 3

// Deps are the collaborators shared by every service
type Deps struct {
	Store      *repository.Store
	Ledger     *ledger.WalletLedger
	Cache      *cache.SettlementCache // nil disables settlement caching
	Publisher  events.Publisher       // nil drops events
	RetryLimit int                    // attempts per unit of work
	Now        func() time.Time       // clock, UTC
}

func (d Deps) withDefaults() Deps {
	if d.Ledger == nil {
		d.Ledger = ledger.NewWalletLedger(false)
	}
	if d.Publisher == nil {
		d.Publisher = events.Nop{}
	}
	if d.RetryLimit <= 0 {
		d.RetryLimit = DefaultRetryLimit
	}
	if d.Now == nil {
		d.Now = func() time.Time { return time.Now().UTC() }
	}
	return d
}

type transactor interface {
	Transaction(ctx context.Context, fn func(tx *repository.Store) error) error
}

// runUnit runs fn in a fresh transaction, retrying the whole unit while it fails with a
// concurrency error and attempts remain. fn must reload everything it reads.
func runUnit(ctx context.Context, db transactor, limit int, op string, fn func(tx *repository.Store) error) error {
	start := time.Now()
	var err error
	for attempt := 1; ; attempt++ {
		err = db.Transaction(ctx, fn)
		if err == nil || !apperr.IsRetryable(err) || attempt >= limit || ctx.Err() != nil {
			break
		}
		metrics.VersionConflict(op)
		logrus.WithFields(logrus.Fields{
			"operation": op,
			"attempt":   attempt,
			"error":     err.Error(),
		}).Warn("Version conflict, retrying")
	}
	metrics.ObserveMutation(op, start, err)
	return err
}

// logResult logs the outcome of a use case. Internal errors are logged at error level,
// rejected requests at info level.
func logResult(op string, fields logrus.Fields, err error) {
	entry := logrus.WithFields(fields).WithField("operation", op)
	switch apperr.KindOf(err) {
	case "":
		entry.Info("Ledger operation completed")
	case apperr.KindInternal:
		entry.WithField("error", err.Error()).Error("Ledger operation failed")
	default:
		entry.WithFields(logrus.Fields{
			"error": err.Error(),
			"kind":  apperr.KindOf(err),
		}).Info("Ledger operation rejected")
	}
}
