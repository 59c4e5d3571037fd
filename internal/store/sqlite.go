package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/nhle/notification-center/internal/model"
)

// SQLiteStore implements the Store interface using a local SQLite database.
type SQLiteStore struct {
	db *sqlx.DB
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens (or creates) a SQLite database at dbPath,
// enables WAL mode, and runs any pending schema migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// A single connection keeps ":memory:" databases shared and serializes
	// writes from concurrent fetch results.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (s *SQLiteStore) runMigrations() error {
	currentVersion := 0

	var tableCount int
	err := s.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// RecordSync appends a record to the journal. A missing ID is generated.
func (s *SQLiteStore) RecordSync(ctx context.Context, rec model.SyncRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.StartedAt.IsZero() {
		rec.StartedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sync_log (id, kind, op, started_at, duration_ms, items, new_items, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, string(rec.Kind), rec.Op, rec.StartedAt.UTC(),
		rec.Duration.Milliseconds(), rec.Items, rec.NewItems, rec.Error,
	)
	if err != nil {
		return fmt.Errorf("recording sync %s: %w", rec.ID, err)
	}
	return nil
}

// RecentSyncs returns journal entries, newest first.
func (s *SQLiteStore) RecentSyncs(ctx context.Context, filter SyncFilter) ([]model.SyncRecord, error) {
	var conditions []string
	var args []interface{}

	if filter.Kind != nil {
		conditions = append(conditions, "kind = ?")
		args = append(args, string(*filter.Kind))
	}
	if filter.FailedOnly {
		conditions = append(conditions, "error != ''")
	}

	query := "SELECT id, kind, op, started_at, duration_ms, items, new_items, error FROM sync_log"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY started_at DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	rows, err := s.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying sync log: %w", err)
	}
	defer rows.Close()

	var records []model.SyncRecord
	for rows.Next() {
		rec, err := scanSyncRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

// SyncSummary aggregates the whole journal.
func (s *SQLiteStore) SyncSummary(ctx context.Context) (Summary, error) {
	var sum Summary
	err := s.db.GetContext(ctx, &sum, `
		SELECT
			COUNT(*) AS total,
			COALESCE(SUM(CASE WHEN error != '' THEN 1 ELSE 0 END), 0) AS failed,
			COALESCE(SUM(new_items), 0) AS new_items,
			CAST(COALESCE(AVG(duration_ms), 0) AS INTEGER) AS avg_duration_ms
		FROM sync_log`)
	if err != nil {
		return Summary{}, fmt.Errorf("summarizing sync log: %w", err)
	}
	return sum, nil
}

// PruneSyncs deletes all but the newest keep records and returns how many
// were removed. keep <= 0 leaves the journal untouched.
func (s *SQLiteStore) PruneSyncs(ctx context.Context, keep int) (int64, error) {
	if keep <= 0 {
		return 0, nil
	}

	result, err := s.db.ExecContext(ctx, `
		DELETE FROM sync_log WHERE id NOT IN (
			SELECT id FROM sync_log ORDER BY started_at DESC LIMIT ?
		)`, keep)
	if err != nil {
		return 0, fmt.Errorf("pruning sync log: %w", err)
	}
	removed, _ := result.RowsAffected()
	return removed, nil
}

// scanSyncRecord scans a sync_log row from a sqlx.Rows result set.
func scanSyncRecord(rows *sqlx.Rows) (model.SyncRecord, error) {
	var (
		rec        model.SyncRecord
		kind       string
		startedAt  time.Time
		durationMs int64
	)

	err := rows.Scan(
		&rec.ID, &kind, &rec.Op, &startedAt, &durationMs,
		&rec.Items, &rec.NewItems, &rec.Error,
	)
	if err != nil {
		return model.SyncRecord{}, fmt.Errorf("scanning sync row: %w", err)
	}

	rec.Kind = model.SyncKind(kind)
	rec.StartedAt = startedAt.Local()
	rec.Duration = time.Duration(durationMs) * time.Millisecond

	return rec, nil
}
