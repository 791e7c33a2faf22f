package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/denisok6893-rgb/agent-commission-reports/internal/domain"
)

const timeLayout = "2006-01-02T15:04:05Z"

type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLite opens the database file at path. Every transaction begins
// IMMEDIATE so that concurrent writers to the same rows are serialised by
// SQLite's reserved lock instead of interleaving.
func OpenSQLite(path string) (*SQLiteStore, error) {
	dsn := fmt.Sprintf("file:%s?_txlock=immediate&_busy_timeout=5000&_foreign_keys=on", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	// базовые настройки
	if _, err := db.Exec(`PRAGMA journal_mode=WAL;`); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db, now: time.Now}, nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

func (s *SQLiteStore) EnsureSchema() error {
	stmts := []string{
		`
CREATE TABLE IF NOT EXISTS referrals (
  id TEXT PRIMARY KEY,
  subject_type TEXT NOT NULL,
  subject_id TEXT NOT NULL,
  referrer_id TEXT NOT NULL DEFAULT '',
  display_name TEXT NOT NULL DEFAULT '',
  kind TEXT NOT NULL DEFAULT 'employee',
  referral_date TEXT NOT NULL,
  external INTEGER NOT NULL DEFAULT 0,
  status TEXT NOT NULL DEFAULT 'pending',
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL
);`,
		`CREATE INDEX IF NOT EXISTS idx_referrals_subject ON referrals(subject_type, subject_id, referral_date DESC);`,
		`CREATE INDEX IF NOT EXISTS idx_referrals_referrer ON referrals(referrer_id);`,
		`
CREATE TABLE IF NOT EXISTS reports (
  id TEXT PRIMARY KEY,
  agent_id TEXT NOT NULL,
  agent_name TEXT NOT NULL DEFAULT '',
  start_date TEXT,
  end_date TEXT,
  year INTEGER,
  month INTEGER,
  listings_count INTEGER NOT NULL DEFAULT 0,
  viewings_count INTEGER NOT NULL DEFAULT 0,
  sales_count INTEGER NOT NULL DEFAULT 0,
  sales_amount REAL NOT NULL DEFAULT 0,
  agent_commission REAL NOT NULL DEFAULT 0,
  finders_commission REAL NOT NULL DEFAULT 0,
  referral_commission REAL NOT NULL DEFAULT 0,
  team_leader_commission REAL NOT NULL DEFAULT 0,
  administration_commission REAL NOT NULL DEFAULT 0,
  lead_sources_json TEXT NOT NULL DEFAULT '{}',
  referral_received_count INTEGER NOT NULL DEFAULT 0,
  referral_received_commission REAL NOT NULL DEFAULT 0,
  referrals_on_properties_count INTEGER NOT NULL DEFAULT 0,
  referrals_on_properties_commission REAL NOT NULL DEFAULT 0,
  total_commission REAL NOT NULL DEFAULT 0,
  boosts REAL NOT NULL DEFAULT 0,
  notes TEXT NOT NULL DEFAULT '',
  recalculations INTEGER NOT NULL DEFAULT 0,
  created_by TEXT NOT NULL DEFAULT '',
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL,
  computed_at TEXT
);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_reports_agent_range ON reports(agent_id, start_date, end_date);`,
		`CREATE INDEX IF NOT EXISTS idx_reports_start ON reports(start_date);`,
		`
CREATE TABLE IF NOT EXISTS settings (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updated_at TEXT NOT NULL
);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

func (s *SQLiteStore) stamp() string {
	return s.now().UTC().Format(timeLayout)
}

func formatTime(t time.Time) string { return t.UTC().Format(timeLayout) }

func parseTime(v string) time.Time {
	t, _ := time.Parse(timeLayout, v)
	return t
}

func formatDate(t time.Time) string { return t.UTC().Format(domain.DateLayout) }

func parseDate(v string) time.Time {
	t, _ := time.Parse(domain.DateLayout, v)
	return t
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}
