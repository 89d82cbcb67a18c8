package sqlite

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// schemaObject is a table, index or trigger present in the live schema, the target schema or both.
type schemaObject struct {
	name      string
	liveSQL   string
	targetSQL string
}

func (o schemaObject) added() bool   { return o.liveSQL == "" }
func (o schemaObject) removed() bool { return o.targetSQL == "" }

func (o schemaObject) changed() bool {
	// Renaming a table quotes its name in the stored SQL.
	return strings.ReplaceAll(o.liveSQL, `"`, "") != strings.ReplaceAll(o.targetSQL, `"`, "")
}

// migrateTo converges the live schema on targetSchema declaratively.
//
// The target schema is created in an attached in-memory database and diffed against the live one.
// Removed tables are dropped, new ones created and changed ones rebuilt with the generalized ALTER
// TABLE procedure of https://www.sqlite.org/lang_altertable.html#otheralter, keeping the columns
// both versions share. Indexes and triggers are then synchronized.
//
// Inspired by https://david.rothlis.net/declarative-schema-migration-for-sqlite/
func (db *Database) migrateTo(ctx context.Context, targetSchema string) (err error) {
	start := time.Now()

	detach, err := db.attachTarget(ctx, targetSchema)
	if err != nil {
		return fmt.Errorf("attach target schema: %w", err)
	}
	defer detach()

	// Table rebuilds would trip foreign keys half way. The pragma is a no-op inside a transaction.
	if _, err = db.ReadWrite.ExecContext(ctx, "PRAGMA foreign_keys = OFF"); err != nil {
		return fmt.Errorf("disable foreign keys: %w", err)
	}
	defer func() {
		if _, fkErr := db.ReadWrite.ExecContext(ctx, "PRAGMA foreign_keys = ON"); fkErr != nil {
			err = errors.Join(err, fmt.Errorf("enable foreign keys: %w", fkErr))
		}
	}()

	tx, err := db.ReadWrite.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			db.logger.LogAttrs(ctx, slog.LevelError, "rollback migration failed", slog.Any("error", rbErr))
		}
	}()

	if err = db.migrateTables(ctx, tx); err != nil {
		return fmt.Errorf("migrate tables: %w", err)
	}
	for _, typ := range []string{"index", "trigger"} {
		if err = db.migrateObjects(ctx, tx, typ); err != nil {
			return fmt.Errorf("migrate %ss: %w", typ, err)
		}
	}
	if _, err = tx.ExecContext(ctx, "PRAGMA foreign_key_check"); err != nil {
		return fmt.Errorf("foreign key check: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	db.logger.LogAttrs(ctx, slog.LevelInfo, "migrated database", slog.Duration("duration", time.Since(start)))
	return nil
}

// attachTarget attaches a fresh in-memory database holding targetSchema as schemaTarget. The returned
// function detaches it again.
func (db *Database) attachTarget(ctx context.Context, targetSchema string) (func(), error) {
	targetDSN := fmt.Sprintf("file:%s?mode=memory&cache=shared", rand.Text())
	target, err := sql.Open("sqlite3", targetDSN)
	if err != nil {
		return nil, fmt.Errorf("open target database: %w", err)
	}
	// Closing is safe once attached, the attachment keeps the shared cache alive.
	defer target.Close()

	if _, err = target.ExecContext(ctx, targetSchema); err != nil {
		return nil, fmt.Errorf("create target schema: %w", err)
	}
	if _, err = db.ReadWrite.ExecContext(ctx, "ATTACH DATABASE ? AS schemaTarget", targetDSN); err != nil {
		return nil, fmt.Errorf("attach: %w", err)
	}
	return func() {
		if _, detachErr := db.ReadWrite.ExecContext(ctx, "DETACH DATABASE schemaTarget"); detachErr != nil {
			db.logger.LogAttrs(ctx, slog.LevelError, "detach target schema failed", slog.Any("error", detachErr))
		}
	}, nil
}

// diffSchema lists the objects of typ in either schema.
func diffSchema(ctx context.Context, tx *sql.Tx, typ string) ([]schemaObject, error) {
	rows, err := tx.QueryContext(ctx, `
SELECT coalesce(live.name, target.name), coalesce(live.sql, ''), coalesce(target.sql, '')
FROM (SELECT name, sql FROM main.sqlite_schema
      WHERE type = :type AND name NOT LIKE 'sqlite_%' AND name NOT LIKE '_litestream_%') AS live
         FULL OUTER JOIN
     (SELECT name, sql FROM schemaTarget.sqlite_schema
      WHERE type = :type AND name NOT LIKE 'sqlite_%') AS target
     ON live.name = target.name
ORDER BY 1`, sql.Named("type", typ))
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	var objects []schemaObject
	for rows.Next() {
		var o schemaObject
		if err = rows.Scan(&o.name, &o.liveSQL, &o.targetSQL); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		objects = append(objects, o)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return objects, nil
}

func (db *Database) exec(ctx context.Context, tx *sql.Tx, msg string, query string) error {
	db.logger.LogAttrs(ctx, slog.LevelInfo, msg, slog.String("query", query))
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("%s: %w", msg, err)
	}
	return nil
}

func (db *Database) migrateTables(ctx context.Context, tx *sql.Tx) error {
	tables, err := diffSchema(ctx, tx, "table")
	if err != nil {
		return fmt.Errorf("diff tables: %w", err)
	}
	for _, table := range tables {
		switch {
		case table.removed():
			err = db.exec(ctx, tx, "dropping table", fmt.Sprintf("DROP TABLE %s", table.name))
		case table.added():
			err = db.exec(ctx, tx, "creating table", table.targetSQL)
		case table.changed():
			err = db.rebuildTable(ctx, tx, table)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// rebuildTable replaces table with its target definition, carrying over the shared columns.
func (db *Database) rebuildTable(ctx context.Context, tx *sql.Tx, table schemaObject) error {
	tempName := table.name + "_migration_temp"

	rows, err := tx.QueryContext(ctx, `
SELECT '"' || target.name || '"'
FROM pragma_table_info(:table) AS live
         JOIN pragma_table_info(:table, 'schemaTarget') AS target ON target.name = live.name`,
		sql.Named("table", table.name))
	if err != nil {
		return fmt.Errorf("query shared columns: %w", err)
	}
	var columns []string
	for rows.Next() {
		var column string
		if err = rows.Scan(&column); err != nil {
			rows.Close()
			return fmt.Errorf("scan shared column: %w", err)
		}
		columns = append(columns, column)
	}
	rows.Close()
	if err = rows.Err(); err != nil {
		return fmt.Errorf("shared columns: %w", err)
	}

	shared := strings.Join(columns, ", ")
	steps := []struct{ msg, query string }{
		{"creating rebuilt table", strings.Replace(table.targetSQL, table.name, tempName, 1)},
		{"copying rows", fmt.Sprintf("INSERT INTO %s (%s) SELECT %s FROM %s", tempName, shared, shared, table.name)},
		{"dropping old table", fmt.Sprintf("DROP TABLE %s", table.name)},
		{"renaming rebuilt table", fmt.Sprintf("ALTER TABLE %s RENAME TO %s", tempName, table.name)},
	}
	if len(columns) == 0 {
		steps = append(steps[:1], steps[2:]...)
	}
	for _, step := range steps {
		if err = db.exec(ctx, tx, step.msg, step.query); err != nil {
			return fmt.Errorf("rebuild %s: %w", table.name, err)
		}
	}
	return nil
}

// migrateObjects synchronizes indexes or triggers. Rebuilt tables lost theirs, so they show up as
// added.
func (db *Database) migrateObjects(ctx context.Context, tx *sql.Tx, typ string) error {
	objects, err := diffSchema(ctx, tx, typ)
	if err != nil {
		return fmt.Errorf("diff: %w", err)
	}
	drop := strings.ToUpper(typ)
	for _, o := range objects {
		if !o.added() && (o.removed() || o.changed()) {
			if err = db.exec(ctx, tx, "dropping "+typ, fmt.Sprintf("DROP %s %s", drop, o.name)); err != nil {
				return err
			}
		}
		if !o.removed() && (o.added() || o.changed()) {
			if err = db.exec(ctx, tx, "creating "+typ, o.targetSQL); err != nil {
				return err
			}
		}
	}
	return nil
}
