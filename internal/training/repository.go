package training

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/myrjola/nextlift/internal/recommend"
	"github.com/myrjola/nextlift/internal/sqlite"
)

const dateFormat = time.DateOnly

const entryColumns = `id, exercise_name, entry_date, weight_kg, reps, sets_logged, reps_in_reserve, excluded`

// entryRepository stores workout entries in SQLite.
type entryRepository struct {
	db     *sqlite.Database
	logger *slog.Logger
}

func newEntryRepository(db *sqlite.Database, logger *slog.Logger) *entryRepository {
	return &entryRepository{
		db:     db,
		logger: logger,
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (recommend.WorkoutEntry, error) {
	var (
		e             recommend.WorkoutEntry
		dateStr       string
		setsLogged    sql.NullInt64
		repsInReserve sql.NullInt64
	)
	if err := row.Scan(&e.ID, &e.ExerciseName, &dateStr, &e.WeightKg, &e.Reps, &setsLogged, &repsInReserve,
		&e.Excluded); err != nil {
		return recommend.WorkoutEntry{}, err
	}
	date, err := time.Parse(dateFormat, dateStr)
	if err != nil {
		return recommend.WorkoutEntry{}, fmt.Errorf("parse entry date %q: %w", dateStr, err)
	}
	e.Date = date
	if setsLogged.Valid {
		n := int(setsLogged.Int64)
		e.SetsLogged = &n
	}
	if repsInReserve.Valid {
		n := int(repsInReserve.Int64)
		e.RepsInReserve = &n
	}
	return e, nil
}

func nullableInt(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}

// withTx runs fn in a write transaction and commits when it succeeds.
func (r *entryRepository) withTx(ctx context.Context, fn func(tx *sql.Tx) error) (err error) {
	tx, err := r.db.ReadWrite.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rollbackErr := tx.Rollback(); rollbackErr != nil {
				r.logger.LogAttrs(ctx, slog.LevelError, "failed to rollback transaction",
					slog.Any("error", rollbackErr))
			}
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func insertEntries(ctx context.Context, tx *sql.Tx, source string, entries []recommend.WorkoutEntry) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO workout_entries (`+entryColumns+`, source)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		if _, err = stmt.ExecContext(ctx, e.ID, e.ExerciseName, e.Date.Format(dateFormat), e.WeightKg, e.Reps,
			nullableInt(e.SetsLogged), nullableInt(e.RepsInReserve), e.Excluded, source); err != nil {
			return fmt.Errorf("insert entry %s: %w", e.ID, err)
		}
	}
	return nil
}

// insert stores new entries in one transaction.
func (r *entryRepository) insert(ctx context.Context, source string, entries ...recommend.WorkoutEntry) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		return insertEntries(ctx, tx, source, entries)
	})
}

// get returns the entry with the given id or ErrNotFound.
func (r *entryRepository) get(ctx context.Context, id string) (recommend.WorkoutEntry, error) {
	row := r.db.ReadOnly.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM workout_entries WHERE id = ?`, id)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return recommend.WorkoutEntry{}, ErrNotFound
	}
	if err != nil {
		return recommend.WorkoutEntry{}, fmt.Errorf("query entry: %w", err)
	}
	return e, nil
}

// update loads the entry inside a write transaction, applies updateFn and saves the result if
// updateFn reports a change.
func (r *entryRepository) update(
	ctx context.Context,
	id string,
	updateFn func(e *recommend.WorkoutEntry) (bool, error),
) (recommend.WorkoutEntry, error) {
	var entry recommend.WorkoutEntry
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM workout_entries WHERE id = ?`, id)
		e, err := scanEntry(row)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("query entry: %w", err)
		}

		updated, err := updateFn(&e)
		if err != nil {
			return fmt.Errorf("update function: %w", err)
		}
		entry = e
		if !updated {
			return nil
		}

		if _, err = tx.ExecContext(ctx, `
			UPDATE workout_entries
			SET entry_date = ?, weight_kg = ?, reps = ?, sets_logged = ?, reps_in_reserve = ?, excluded = ?
			WHERE id = ?`,
			e.Date.Format(dateFormat), e.WeightKg, e.Reps, nullableInt(e.SetsLogged), nullableInt(e.RepsInReserve),
			e.Excluded, e.ID); err != nil {
			return fmt.Errorf("update entry: %w", err)
		}
		return nil
	})
	if err != nil {
		return recommend.WorkoutEntry{}, err
	}
	return entry, nil
}

// delete removes an entry permanently.
func (r *entryRepository) delete(ctx context.Context, id string) error {
	res, err := r.db.ReadWrite.ExecContext(ctx, `DELETE FROM workout_entries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// listByExercise returns every entry of an exercise, excluded ones included, oldest first.
// Exercise names match case-insensitively.
func (r *entryRepository) listByExercise(ctx context.Context, exercise string) (_ []recommend.WorkoutEntry, err error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT `+entryColumns+`
		FROM workout_entries
		WHERE exercise_name = ? COLLATE NOCASE
		ORDER BY entry_date, created_at, rowid`, strings.TrimSpace(exercise))
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close rows: %w", closeErr))
		}
	}()

	var entries []recommend.WorkoutEntry
	for rows.Next() {
		var e recommend.WorkoutEntry
		if e, err = scanEntry(rows); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return entries, nil
}

// listExercises summarises the logged exercises alphabetically.
func (r *entryRepository) listExercises(ctx context.Context) (_ []ExerciseSummary, err error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT min(exercise_name), count(*), sum(excluded), max(entry_date)
		FROM workout_entries
		GROUP BY exercise_name COLLATE NOCASE
		ORDER BY min(exercise_name) COLLATE NOCASE`)
	if err != nil {
		return nil, fmt.Errorf("query exercises: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close rows: %w", closeErr))
		}
	}()

	var exercises []ExerciseSummary
	for rows.Next() {
		var (
			s       ExerciseSummary
			lastStr string
		)
		if err = rows.Scan(&s.Name, &s.EntryCount, &s.ExcludedCount, &lastStr); err != nil {
			return nil, fmt.Errorf("scan exercise: %w", err)
		}
		if s.LastDate, err = time.Parse(dateFormat, lastStr); err != nil {
			return nil, fmt.Errorf("parse last date %q: %w", lastStr, err)
		}
		exercises = append(exercises, s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return exercises, nil
}

// replaceImported swaps all previously imported entries on the given dates for entries.
func (r *entryRepository) replaceImported(
	ctx context.Context,
	dates []time.Time,
	entries []recommend.WorkoutEntry,
) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		for _, d := range dates {
			if _, err := tx.ExecContext(ctx, `DELETE FROM workout_entries WHERE source = ? AND entry_date = ?`,
				sourceAlpha, d.Format(dateFormat)); err != nil {
				return fmt.Errorf("delete imported entries: %w", err)
			}
		}
		return insertEntries(ctx, tx, sourceAlpha, entries)
	})
}
