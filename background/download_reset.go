// Package background contains tasks that run independently of the HTTP
// request cycle.
package background

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/audiostream-go/logger"
)

const (
	// resetTickerDuration is how often the worker looks for stale counters.
	// The reset granularity is a whole month, so a coarse tick is enough.
	resetTickerDuration = 1 * time.Hour

	// resetInterval is the age after which a user's monthly download
	// counter rolls over.
	resetInterval = 30 * 24 * time.Hour

	resetQueryTimeout = 30 * time.Second
)

// ResetStore resets stale monthly download counters.
type ResetStore interface {
	ResetMonthlyCounters(ctx context.Context, olderThan time.Time) (int64, error)
}

// PgxResetStore implements ResetStore against PostgreSQL.
type PgxResetStore struct {
	pool *pgxpool.Pool
}

// NewPgxResetStore creates a PgxResetStore.
func NewPgxResetStore(pool *pgxpool.Pool) *PgxResetStore {
	return &PgxResetStore{pool: pool}
}

// ResetMonthlyCounters zeroes monthly_download_count for every user whose
// last reset happened before olderThan and returns how many rows changed.
func (s *PgxResetStore) ResetMonthlyCounters(ctx context.Context, olderThan time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx,
		`UPDATE users
		 SET monthly_download_count = 0, last_download_reset = now()
		 WHERE last_download_reset < $1`,
		olderThan,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// StartDownloadResetWorker launches the periodic counter-reset loop. It runs
// until stopChan is closed and signals completion through wg.
func StartDownloadResetWorker(store ResetStore, log logger.Logger, stopChan <-chan struct{}, wg *sync.WaitGroup) {
	wg.Add(1)
	go func() {
		defer wg.Done()

		log.Info("download reset worker starting",
			logger.Duration("interval", resetTickerDuration))

		ticker := time.NewTicker(resetTickerDuration)
		defer ticker.Stop()

		// Run once at startup so a long-stopped deployment catches up
		// without waiting a full tick.
		runReset(store, log)

		for {
			select {
			case <-ticker.C:
				runReset(store, log)
			case <-stopChan:
				log.Info("download reset worker stopping")
				return
			}
		}
	}()
}

func runReset(store ResetStore, log logger.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), resetQueryTimeout)
	defer cancel()

	cutoff := time.Now().Add(-resetInterval)
	n, err := store.ResetMonthlyCounters(ctx, cutoff)
	if err != nil {
		log.Error("monthly download counter reset failed", logger.Error(err))
		return
	}
	if n > 0 {
		log.Info("monthly download counters reset", logger.Int64("users", n))
	}
}
