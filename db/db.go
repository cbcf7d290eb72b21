package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	apperrors "github.com/nijaru/yt-summary/errors"
	"github.com/nijaru/yt-summary/models"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	DefaultRunLimit = 20
	MaxRunLimit     = 100
)

var ErrNotFound = errors.New("run not found")

// The run log holds operational metadata only: no transcript or summary text.
const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,
    video_id TEXT NOT NULL,
    status TEXT NOT NULL,
    error_kind TEXT NOT NULL DEFAULT '',
    model TEXT NOT NULL DEFAULT '',
    duration_ms INTEGER NOT NULL DEFAULT 0,
    created_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);
CREATE INDEX IF NOT EXISTS idx_runs_video_id ON runs(video_id);
`

const (
	insertRunQuery = `
        INSERT INTO runs (id, video_id, status, error_kind, model, duration_ms, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?)
    `

	getRunQuery = `
        SELECT id, video_id, status, error_kind, model, duration_ms, created_at
        FROM runs WHERE id = ?
    `

	recentRunsQuery = `
        SELECT id, video_id, status, error_kind, model, duration_ms, created_at
        FROM runs ORDER BY created_at DESC, rowid DESC LIMIT ?
    `
)

type Store struct {
	db *sql.DB
}

func Open(dbPath string) (*Store, error) {
	const op = "db.Open"
	logrus.WithField("path", dbPath).Info("Initializing database")

	if err := os.MkdirAll(filepath.Dir(dbPath), os.ModePerm); err != nil {
		return nil, apperrors.Internal(op, err, "failed to create database directory")
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, apperrors.Internal(op, err, "failed to open database")
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := configurePragmas(db); err != nil {
		db.Close()
		return nil, err
	}

	if err := execSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func configurePragmas(db *sql.DB) error {
	const op = "db.configurePragmas"

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA temp_store = MEMORY",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return apperrors.Internal(op, err, fmt.Sprintf("failed to set pragma: %s", pragma))
		}
	}
	return nil
}

func execSchema(db *sql.DB) error {
	const op = "db.execSchema"

	tx, err := db.Begin()
	if err != nil {
		return apperrors.Internal(op, err, "failed to begin transaction")
	}
	defer tx.Rollback()

	for _, stmt := range strings.Split(schema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := tx.Exec(stmt); err != nil {
			return apperrors.Internal(op, err, fmt.Sprintf("failed to execute schema statement: %s", stmt))
		}
	}

	if err := tx.Commit(); err != nil {
		return apperrors.Internal(op, err, "failed to commit schema transaction")
	}
	return nil
}

func (s *Store) RecordRun(ctx context.Context, run *models.Run) error {
	const op = "db.RecordRun"

	if run == nil || run.ID == "" {
		return apperrors.Internal(op, nil, "run id is required")
	}

	_, err := s.db.ExecContext(ctx, insertRunQuery,
		run.ID,
		run.VideoID,
		string(run.Status),
		run.ErrorKind,
		run.Model,
		run.DurationMS,
		run.CreatedAt.UTC(),
	)
	if err != nil {
		return apperrors.Internal(op, err, "failed to insert run")
	}
	return nil
}

func (s *Store) GetRun(ctx context.Context, id string) (*models.Run, error) {
	const op = "db.GetRun"

	run, err := scanRun(s.db.QueryRowContext(ctx, getRunQuery, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound(op, ErrNotFound)
		}
		return nil, apperrors.Internal(op, err, "failed to get run")
	}
	return run, nil
}

// RecentRuns returns the newest runs first. limit is clamped to
// [1, MaxRunLimit]; zero or negative means DefaultRunLimit.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]*models.Run, error) {
	const op = "db.RecentRuns"

	switch {
	case limit <= 0:
		limit = DefaultRunLimit
	case limit > MaxRunLimit:
		limit = MaxRunLimit
	}

	rows, err := s.db.QueryContext(ctx, recentRunsQuery, limit)
	if err != nil {
		return nil, apperrors.Internal(op, err, "failed to query runs")
	}
	defer rows.Close()

	runs := make([]*models.Run, 0, limit)
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, apperrors.Internal(op, err, "failed to scan run")
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Internal(op, err, "failed to iterate runs")
	}
	return runs, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*models.Run, error) {
	var (
		run    models.Run
		status string
	)
	if err := row.Scan(
		&run.ID,
		&run.VideoID,
		&status,
		&run.ErrorKind,
		&run.Model,
		&run.DurationMS,
		&run.CreatedAt,
	); err != nil {
		return nil, err
	}
	run.Status = models.Status(status)
	run.Duration = time.Duration(run.DurationMS) * time.Millisecond
	return &run, nil
}
