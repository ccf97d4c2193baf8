package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/credit-report-kz/internal/common"
)

// StoredResult is one processed report, keyed by the SHA-256 of the PDF.
type StoredResult struct {
	ID             uuid.UUID
	ContentHash    string
	SourcePath     string
	Dialect        string
	Procedure      string
	ParseQuality   string
	Report         json.RawMessage
	Recommendation json.RawMessage
	CreatedAt      time.Time
}

type ResultRepository interface {
	Migrate(ctx context.Context) error
	GetByHash(ctx context.Context, hash string) (*StoredResult, error)
	// Upsert stores rec unless its hash exists already; replace overwrites.
	// The bool reports whether an existing row was found.
	Upsert(ctx context.Context, rec StoredResult, replace bool) (*StoredResult, bool, error)
	List(ctx context.Context) ([]StoredResult, error)
}

type resultRepo struct {
	db     *sql.DB
	driver string
	logger *slog.Logger
}

func NewResultRepository(db *DB, logger *slog.Logger) ResultRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &resultRepo{db: db.DB, driver: db.Driver, logger: logger}
}

const schemaDDL = `CREATE TABLE IF NOT EXISTS report_results (
	id TEXT PRIMARY KEY,
	content_hash TEXT NOT NULL UNIQUE,
	source_path TEXT NOT NULL,
	dialect TEXT NOT NULL,
	procedure TEXT NOT NULL,
	parse_quality TEXT NOT NULL,
	report_json TEXT NOT NULL,
	recommendation_json TEXT NOT NULL,
	created_at TEXT NOT NULL
)`

const selectColumns = `id, content_hash, source_path, dialect, procedure, parse_quality, report_json, recommendation_json, created_at`

func (r *resultRepo) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schemaDDL); err != nil {
		r.logger.Error("failed to migrate result store", "error", err)
		return fmt.Errorf("%w: %w", common.ErrDatabase, err)
	}
	return nil
}

// rebind rewrites ? placeholders to $n for postgres.
func (r *resultRepo) rebind(q string) string {
	if r.driver != DriverPgx {
		return q
	}
	var b strings.Builder
	n := 0
	for _, c := range q {
		if c == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(c)
	}
	return b.String()
}

func (r *resultRepo) GetByHash(ctx context.Context, hash string) (*StoredResult, error) {
	row := r.db.QueryRowContext(ctx, r.rebind(`SELECT `+selectColumns+` FROM report_results WHERE content_hash = ?`), hash)
	rec, err := scanResult(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("result %s: %w", hash, common.ErrNotFound)
	}
	if err != nil {
		r.logger.Error("failed to get result by hash", "content_hash", hash, "error", err)
		return nil, fmt.Errorf("%w: %w", common.ErrDatabase, err)
	}
	return rec, nil
}

func (r *resultRepo) Upsert(ctx context.Context, rec StoredResult, replace bool) (*StoredResult, bool, error) {
	existing, err := r.GetByHash(ctx, rec.ContentHash)
	switch {
	case err == nil && !replace:
		return existing, true, nil
	case err != nil && !errors.Is(err, common.ErrNotFound):
		return nil, false, err
	}
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	if existing != nil {
		rec.ID = existing.ID
		_, err = r.db.ExecContext(ctx, r.rebind(`UPDATE report_results
			SET source_path = ?, dialect = ?, procedure = ?, parse_quality = ?, report_json = ?, recommendation_json = ?, created_at = ?
			WHERE content_hash = ?`),
			rec.SourcePath, rec.Dialect, rec.Procedure, rec.ParseQuality, string(rec.Report), string(rec.Recommendation),
			rec.CreatedAt.Format(time.RFC3339Nano), rec.ContentHash)
	} else {
		_, err = r.db.ExecContext(ctx, r.rebind(`INSERT INTO report_results (`+selectColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`),
			rec.ID.String(), rec.ContentHash, rec.SourcePath, rec.Dialect, rec.Procedure, rec.ParseQuality,
			string(rec.Report), string(rec.Recommendation), rec.CreatedAt.Format(time.RFC3339Nano))
	}
	if err != nil {
		r.logger.Error("failed to store result", "content_hash", rec.ContentHash, "source_path", rec.SourcePath, "error", err)
		return nil, false, fmt.Errorf("%w: %w", common.ErrDatabase, err)
	}
	return &rec, existing != nil, nil
}

func (r *resultRepo) List(ctx context.Context) ([]StoredResult, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+selectColumns+` FROM report_results ORDER BY created_at, source_path`)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrDatabase, err)
	}
	defer rows.Close()
	var out []StoredResult
	for rows.Next() {
		rec, err := scanResult(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", common.ErrDatabase, err)
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanResult(s scanner) (*StoredResult, error) {
	var (
		rec                      StoredResult
		id, report, rcm, created string
	)
	if err := s.Scan(&id, &rec.ContentHash, &rec.SourcePath, &rec.Dialect, &rec.Procedure, &rec.ParseQuality, &report, &rcm, &created); err != nil {
		return nil, err
	}
	var err error
	if rec.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("bad id %q: %w", id, err)
	}
	if rec.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
		return nil, fmt.Errorf("bad created_at %q: %w", created, err)
	}
	rec.Report = json.RawMessage(report)
	rec.Recommendation = json.RawMessage(rcm)
	return &rec, nil
}
