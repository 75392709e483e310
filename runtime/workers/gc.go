package workers

import (
	"context"
	goerrors "errors"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// ValueLogGC periodically reclaims space in Badger's value log.
// Badger never garbage-collects on its own; without this worker the
// store grows without bound as author documents get rewritten on
// every message append.
type ValueLogGC struct {
	log      *slog.Logger
	db       *badger.DB
	interval time.Duration
}

func NewValueLogGC(log *slog.Logger, db *badger.DB, interval time.Duration) *ValueLogGC {
	return &ValueLogGC{log: log, db: db, interval: interval}
}

func (w *ValueLogGC) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Stopping value log GC")
			return nil
		case <-ticker.C:
			// One GC call rewrites at most one value log file;
			// loop until there is nothing left to reclaim.
			for {
				err := w.db.RunValueLogGC(0.5)
				if goerrors.Is(err, badger.ErrNoRewrite) {
					break
				}
				if err != nil {
					w.log.Warn("Value log GC failed", "error", err)
					break
				}
			}
		}
	}
}
