package history

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/felixgeelhaar/courseforge/internal/domain"
	"github.com/google/uuid"
)

// Store persists test runs
type Store struct {
	db *DB
}

// NewStore creates a new SQLite-backed run store.
func NewStore(db *DB) *Store {
	return &Store{db: db}
}

// OpenStore opens and migrates the database at path
func OpenStore(ctx context.Context, path string) (*Store, error) {
	db, err := Open(path, nil)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return NewStore(db), nil
}

// Close closes the underlying database
func (s *Store) Close() error {
	return s.db.Close()
}

// Record inserts a run
func (s *Store) Record(ctx context.Context, run *domain.TestRun) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO test_runs (id, course_name, module_id, layout, passed, advanced,
			total, succeeded, failed, timed_out, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID.String(), run.CourseName, run.ModuleID, run.Layout,
		boolToInt(run.Passed), boolToInt(run.Advanced),
		run.Total, run.Succeeded, run.Failed, boolToInt(run.TimedOut),
		run.Duration.Milliseconds(), run.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert test run: %w", err)
	}
	return nil
}

// Filter narrows List results. Zero fields match everything.
type Filter struct {
	CourseName string
	ModuleID   string
	Limit      int
}

// List returns runs newest first
func (s *Store) List(ctx context.Context, f Filter) ([]*domain.TestRun, error) {
	var where []string
	var args []any
	if f.CourseName != "" {
		where = append(where, "course_name = ?")
		args = append(args, f.CourseName)
	}
	if f.ModuleID != "" {
		where = append(where, "module_id = ?")
		args = append(args, f.ModuleID)
	}

	query := `
		SELECT id, course_name, module_id, layout, passed, advanced,
			total, succeeded, failed, timed_out, duration_ms, created_at
		FROM test_runs`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, rowid DESC"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list test runs: %w", err)
	}
	defer rows.Close()

	var runs []*domain.TestRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// ModuleStats aggregates the runs of one module
type ModuleStats struct {
	ModuleID string
	Runs     int
	Passes   int
	LastRun  time.Time
	LastPass bool
}

// Stats returns per-module aggregates for a course, ordered by module id
func (s *Store) Stats(ctx context.Context, courseName string) ([]ModuleStats, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT module_id, COUNT(*), SUM(passed), MAX(created_at),
			(SELECT passed FROM test_runs r2
			 WHERE r2.course_name = r.course_name AND r2.module_id = r.module_id
			 ORDER BY created_at DESC, rowid DESC LIMIT 1)
		FROM test_runs r
		WHERE course_name = ?
		GROUP BY module_id
		ORDER BY module_id`, courseName)
	if err != nil {
		return nil, fmt.Errorf("module stats: %w", err)
	}
	defer rows.Close()

	var stats []ModuleStats
	for rows.Next() {
		var st ModuleStats
		var last string
		var lastPass int
		if err := rows.Scan(&st.ModuleID, &st.Runs, &st.Passes, &last, &lastPass); err != nil {
			return nil, fmt.Errorf("scan module stats: %w", err)
		}
		st.LastRun = parseTime(last)
		st.LastPass = lastPass != 0
		stats = append(stats, st)
	}
	return stats, rows.Err()
}

func scanRun(rows *sql.Rows) (*domain.TestRun, error) {
	var run domain.TestRun
	var id string
	var passed, advanced, timedOut int
	var durationMS int64

	err := rows.Scan(
		&id, &run.CourseName, &run.ModuleID, &run.Layout, &passed, &advanced,
		&run.Total, &run.Succeeded, &run.Failed, &timedOut, &durationMS, &run.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("scan test run: %w", err)
	}

	run.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("parse run id %q: %w", id, err)
	}
	run.Passed = passed != 0
	run.Advanced = advanced != 0
	run.TimedOut = timedOut != 0
	run.Duration = time.Duration(durationMS) * time.Millisecond

	return &run, nil
}

// parseTime reads aggregate timestamps, which the driver returns as text
func parseTime(s string) time.Time {
	for _, layout := range []string{
		"2006-01-02 15:04:05.999999999-07:00",
		"2006-01-02T15:04:05.999999999-07:00",
		"2006-01-02 15:04:05.999999999",
		"2006-01-02T15:04:05Z",
		time.RFC3339Nano,
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
