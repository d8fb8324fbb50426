// Package history keeps a ledger of execution runs in SQLite.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/pders01/extraction-plan/internal/models"
)

// timeFormat sorts lexically in UTC
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// Run is one recorded execution
type Run struct {
	ID              string                    `json:"id"`
	ExecutionID     string                    `json:"execution_id"`
	PlanFile        string                    `json:"plan_file"`
	State           models.RunState           `json:"state"`
	SafeTotal       int                       `json:"safe_total"`
	SafeExecuted    int                       `json:"safe_executed"`
	RiskyTotal      int                       `json:"risky_total"`
	RiskyExecuted   int                       `json:"risky_executed"`
	Issues          []string                  `json:"issues,omitempty"`
	BackupDirectory string                    `json:"backup_directory,omitempty"`
	LogPath         string                    `json:"log_path,omitempty"`
	StartedAt       time.Time                 `json:"started_at"`
	FinishedAt      time.Time                 `json:"finished_at"`
	Outcomes        []models.OperationOutcome `json:"outcomes,omitempty"`
}

// FromResult builds the record of a finished run
func FromResult(res *models.ExecutionResult, started, finished time.Time) Run {
	return Run{
		ID:              res.RunID,
		ExecutionID:     res.ExecutionID,
		PlanFile:        res.PlanFile,
		State:           res.State,
		SafeTotal:       res.SafeTotal,
		SafeExecuted:    res.SafeExecuted,
		RiskyTotal:      res.RiskyTotal,
		RiskyExecuted:   res.RiskyExecuted,
		Issues:          res.Issues,
		BackupDirectory: res.BackupDirectory,
		LogPath:         res.LogPath,
		StartedAt:       started,
		FinishedAt:      finished,
		Outcomes:        res.Outcomes,
	}
}

// ListParams filters ListRuns
type ListParams struct {
	PlanFile string
	State    models.RunState
	Limit    int
}

// SQLiteStore records runs in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the database at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Close closes the database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id               TEXT PRIMARY KEY,
		execution_id     TEXT NOT NULL,
		plan_file        TEXT NOT NULL,
		state            TEXT NOT NULL,
		safe_total       INTEGER NOT NULL DEFAULT 0,
		safe_executed    INTEGER NOT NULL DEFAULT 0,
		risky_total      INTEGER NOT NULL DEFAULT 0,
		risky_executed   INTEGER NOT NULL DEFAULT 0,
		issues           TEXT,
		backup_directory TEXT,
		log_path         TEXT,
		started_at       TEXT NOT NULL,
		finished_at      TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_runs_plan ON runs(plan_file);
	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at DESC);

	CREATE TABLE IF NOT EXISTS operation_results (
		run_id           TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		seq              INTEGER NOT NULL,
		operation_number INTEGER NOT NULL,
		kind             TEXT NOT NULL,
		target           TEXT,
		is_safe          INTEGER NOT NULL,
		success          INTEGER NOT NULL,
		PRIMARY KEY (run_id, seq)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// RecordRun stores a run and its per-operation outcomes in one transaction
func (s *SQLiteStore) RecordRun(ctx context.Context, run Run) error {
	var issues sql.NullString
	if len(run.Issues) > 0 {
		data, err := json.Marshal(run.Issues)
		if err != nil {
			return fmt.Errorf("encode issues: %w", err)
		}
		issues = sql.NullString{String: string(data), Valid: true}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, execution_id, plan_file, state, safe_total, safe_executed,
		                  risky_total, risky_executed, issues, backup_directory, log_path,
		                  started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.ExecutionID, run.PlanFile, string(run.State), run.SafeTotal, run.SafeExecuted,
		run.RiskyTotal, run.RiskyExecuted, issues, nullString(run.BackupDirectory), nullString(run.LogPath),
		run.StartedAt.UTC().Format(timeFormat), run.FinishedAt.UTC().Format(timeFormat))
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for i, o := range run.Outcomes {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO operation_results (run_id, seq, operation_number, kind, target, is_safe, success)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			run.ID, i, o.Number, string(o.Kind), nullString(o.Target), o.Safe, o.Success)
		if err != nil {
			return fmt.Errorf("insert outcome: %w", err)
		}
	}

	return tx.Commit()
}

// ListRuns returns recorded runs, newest first. Outcomes are not loaded.
func (s *SQLiteStore) ListRuns(ctx context.Context, p ListParams) ([]Run, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = 20
	}

	where := []string{"1 = 1"}
	var args []interface{}
	if p.PlanFile != "" {
		where = append(where, "plan_file = ?")
		args = append(args, p.PlanFile)
	}
	if p.State != "" {
		where = append(where, "state = ?")
		args = append(args, string(p.State))
	}

	query := fmt.Sprintf(`
		SELECT id, execution_id, plan_file, state, safe_total, safe_executed, risky_total,
		       risky_executed, issues, backup_directory, log_path, started_at, finished_at
		FROM runs
		WHERE %s
		ORDER BY started_at DESC
		LIMIT ?`, strings.Join(where, " AND "))
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetRun returns one run with its outcomes
func (s *SQLiteStore) GetRun(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, execution_id, plan_file, state, safe_total, safe_executed, risky_total,
		       risky_executed, issues, backup_directory, log_path, started_at, finished_at
		FROM runs WHERE id = ?`, id)
	r, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run %s not found", id)
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT operation_number, kind, target, is_safe, success
		FROM operation_results WHERE run_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var o models.OperationOutcome
		var kind string
		var target sql.NullString
		if err := rows.Scan(&o.Number, &kind, &target, &o.Safe, &o.Success); err != nil {
			return nil, err
		}
		o.Kind = models.OperationKind(kind)
		o.Target = target.String
		r.Outcomes = append(r.Outcomes, o)
	}
	return &r, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(sc scanner) (Run, error) {
	var r Run
	var state, started, finished string
	var issues, backupDir, logPath sql.NullString

	err := sc.Scan(&r.ID, &r.ExecutionID, &r.PlanFile, &state, &r.SafeTotal, &r.SafeExecuted,
		&r.RiskyTotal, &r.RiskyExecuted, &issues, &backupDir, &logPath, &started, &finished)
	if err != nil {
		return r, err
	}

	r.State = models.RunState(state)
	r.BackupDirectory = backupDir.String
	r.LogPath = logPath.String
	if issues.Valid {
		json.Unmarshal([]byte(issues.String), &r.Issues)
	}
	r.StartedAt, _ = time.Parse(timeFormat, started)
	r.FinishedAt, _ = time.Parse(timeFormat, finished)
	return r, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
