// Command sharing-expirer periodically expires join requests left PENDING for longer
// than SHARING_REQUEST_TTL.
package main

import (
	"context"   // Cancellation on shutdown
	"os"        // Signals
	"os/signal" // Signal notification
	"syscall"   // SIGTERM
	"time"      // Ticker

	"finance_tracker/internal/config"     // Configuration
	"finance_tracker/internal/db"         // Database connection
	"finance_tracker/internal/repository" // Persistence
	"finance_tracker/internal/service"    // Sharing use cases

	"github.com/sirupsen/logrus" // Logging library
)

func run(ctx context.Context, svc *service.SharingService, ttl, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		n, err := svc.ExpirePending(ctx, ttl)
		if err != nil {
			logrus.WithError(err).Error("Expiring join requests failed")
		} else if n > 0 {
			logrus.WithField("expired", n).Info("Join requests expired")
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func main() {
	cfg := config.LoadConfig()
	if cfg.IsProd {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	gdb, err := db.Open(cfg)
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err)
	}
	svc := service.NewSharingService(service.Deps{
		Store:      repository.New(gdb),
		RetryLimit: cfg.BalanceRetryLimit,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logrus.WithFields(logrus.Fields{
		"ttl":      cfg.SharingRequestTTL,
		"interval": cfg.ExpirerInterval,
	}).Info("Sharing expirer started")
	run(ctx, svc, cfg.SharingRequestTTL, cfg.ExpirerInterval)
	logrus.Info("Sharing expirer stopped")
}
