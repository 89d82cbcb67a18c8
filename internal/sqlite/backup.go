package sqlite

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"
)

// ErrBackupExists is returned when the backup destination already exists.
var ErrBackupExists = errors.New("backup destination exists")

// Backup writes a consistent copy of the database to a new SQLite file at path using VACUUM INTO.
// See https://www.sqlite.org/lang_vacuum.html#vacuuminto.
func (db *Database) Backup(ctx context.Context, path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%w: %s", ErrBackupExists, path)
	}
	start := time.Now()
	if _, err := db.ReadWrite.ExecContext(ctx, "VACUUM INTO ?", path); err != nil {
		return fmt.Errorf("vacuum into %s: %w", path, err)
	}
	db.logger.LogAttrs(ctx, slog.LevelInfo, "backed up database",
		slog.String("path", path), slog.Duration("duration", time.Since(start)))
	return nil
}
