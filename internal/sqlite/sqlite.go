package sqlite

import (
	"context"
	"crypto/rand"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaDefinition string

// Database is a single-writer, multi-reader pair of connections to one SQLite database.
type Database struct {
	ReadWrite *sql.DB
	ReadOnly  *sql.DB
	logger    *slog.Logger
}

// NewDatabase connects to the database at url and migrates it to the workout history schema.
//
// Writes go through a connection pool of one so SQLite never sees concurrent writers, while reads
// use their own pool. See https://github.com/mattn/go-sqlite3/issues/1179#issuecomment-1638083995.
//
// url is a file path or ":memory:" for a private in-memory database. The optimizer runs until ctx
// is done.
func NewDatabase(ctx context.Context, url string, logger *slog.Logger) (*Database, error) {
	db, err := connect(ctx, url, logger)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	if err = db.migrateTo(ctx, schemaDefinition); err != nil {
		return nil, errors.Join(fmt.Errorf("migrate: %w", err), db.Close())
	}

	go db.runOptimizer(ctx, time.Hour)

	return db, nil
}

//nolint:gochecknoglobals // the driver can be registered only once per process.
var registerDriver sync.Once

const driverName = "sqlite3nextlift"

// connectHook applies per-connection pragmas.
func connectHook(conn *sqlite3.SQLiteConn) error {
	pragmas := []string{
		// Temporary tables and indices live in memory.
		"PRAGMA temp_store = memory",
		// Memory-mapped I/O saves read syscalls.
		"PRAGMA mmap_size = 268435456",
	}
	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma, nil); err != nil {
			return fmt.Errorf("exec %q: %w", pragma, err)
		}
	}
	return nil
}

func dsn(url, mode string, extra ...string) string {
	params := append([]string{
		"mode=" + mode,
		// Timestamps are returned in the local time zone.
		"_loc=auto",
		// Write-ahead logging lets readers run next to the writer.
		"_journal_mode=wal",
		"_busy_timeout=5000",
		"_synchronous=normal",
		"_foreign_keys=on",
	}, extra...)
	// Parameters prefixed with an underscore are documented at
	// https://pkg.go.dev/github.com/mattn/go-sqlite3#SQLiteDriver.Open, the rest at https://www.sqlite.org/uri.html.
	return fmt.Sprintf("file:%s?%s", url, strings.Join(params, "&"))
}

func connect(ctx context.Context, url string, logger *slog.Logger) (*Database, error) {
	var shared []string
	if strings.Contains(url, ":memory:") {
		// Both pools must see the same in-memory database, and parallel tests must not.
		url = rand.Text()
		shared = []string{"cache=shared"}
	}
	rwMode, roMode := "rwc", "ro"
	if len(shared) > 0 {
		rwMode, roMode = "memory", "memory"
	}

	registerDriver.Do(func() {
		sql.Register(driverName, &sqlite3.SQLiteDriver{Extensions: nil, ConnectHook: connectHook})
	})

	readWriteDSN := dsn(url, rwMode, append([]string{"_txlock=immediate"}, shared...)...)
	readWrite, err := sql.Open(driverName, readWriteDSN)
	if err != nil {
		return nil, fmt.Errorf("open read-write database: %w", err)
	}
	readWrite.SetMaxOpenConns(1)
	readWrite.SetMaxIdleConns(1)
	readWrite.SetConnMaxIdleTime(time.Hour)
	// sql.Open is lazy, ping so the file is created and configured before the read pool opens it.
	if err = readWrite.PingContext(ctx); err != nil {
		return nil, errors.Join(fmt.Errorf("ping read-write database: %w", err), readWrite.Close())
	}
	logger.LogAttrs(ctx, slog.LevelInfo, "opened database", slog.String("sqlDsn", readWriteDSN))

	readOnlyDSN := dsn(url, roMode, append([]string{"_txlock=deferred", "_query_only=true"}, shared...)...)
	readOnly, err := sql.Open(driverName, readOnlyDSN)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("open read-only database: %w", err), readWrite.Close())
	}
	const maxReaders = 8
	readOnly.SetMaxOpenConns(maxReaders)
	readOnly.SetMaxIdleConns(maxReaders)
	readOnly.SetConnMaxIdleTime(time.Hour)

	return &Database{ReadWrite: readWrite, ReadOnly: readOnly, logger: logger}, nil
}

// Close closes both connection pools.
func (db *Database) Close() error {
	return errors.Join(db.ReadOnly.Close(), db.ReadWrite.Close())
}
