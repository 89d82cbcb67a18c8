package sqlite

import (
	"context"
	"log/slog"
	"time"

	"github.com/myrjola/nextlift/internal/errors"
)

// runOptimizer runs PRAGMA optimize on every tick of interval until ctx is done.
// See https://www.sqlite.org/pragma.html#pragma_optimize.
func (db *Database) runOptimizer(ctx context.Context, interval time.Duration) {
	// Analyze tables without recent statistics when the connection is young.
	if _, err := db.ReadWrite.ExecContext(ctx, "PRAGMA optimize = 0x10002"); err != nil {
		db.logger.LogAttrs(ctx, slog.LevelWarn, "initial optimize failed",
			errors.SlogError(errors.Wrap(err, "optimize database")))
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		start := time.Now()
		if _, err := db.ReadWrite.ExecContext(ctx, "PRAGMA optimize"); err != nil {
			db.logger.LogAttrs(ctx, slog.LevelWarn, "optimize failed",
				errors.SlogError(errors.Wrap(err, "optimize database")))
			continue
		}
		db.logger.LogAttrs(ctx, slog.LevelDebug, "optimized database", slog.Duration("duration", time.Since(start)))
	}
}
