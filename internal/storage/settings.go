package storage

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/denisok6893-rgb/agent-commission-reports/internal/domain"
)

const ratePrefix = "commission_rate."

// Rates reads the commission rate settings. Missing, unparsable or negative
// values keep their defaults.
func (s *SQLiteStore) Rates(ctx context.Context) (domain.RateSettings, error) {
	rates := domain.DefaultRateSettings()

	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM settings WHERE key LIKE ?`, ratePrefix+"%")
	if err != nil {
		return rates, fmt.Errorf("read rate settings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return rates, fmt.Errorf("scan rate setting: %w", err)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil || v < 0 {
			continue
		}
		if field := rateField(&rates, strings.TrimPrefix(key, ratePrefix)); field != nil {
			*field = v
		}
	}
	return rates, rows.Err()
}

// SetRates upserts all six rate settings in one transaction.
func (s *SQLiteStore) SetRates(ctx context.Context, rates domain.RateSettings) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stamp := s.stamp()
	for _, name := range rateNames {
		v := *rateField(&rates, name)
		if v < 0 {
			return &domain.ValidationError{Field: name, Message: "rate must not be negative"}
		}
		if _, err := tx.ExecContext(ctx, `
INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
			ratePrefix+name, strconv.FormatFloat(v, 'f', -1, 64), stamp,
		); err != nil {
			return fmt.Errorf("write rate setting %s: %w", name, err)
		}
	}
	return tx.Commit()
}

var rateNames = []string{"agent", "finders", "referral_internal", "referral_external", "team_leader", "administration"}

func rateField(r *domain.RateSettings, name string) *float64 {
	switch name {
	case "agent":
		return &r.Agent
	case "finders":
		return &r.Finders
	case "referral_internal":
		return &r.ReferralInternal
	case "referral_external":
		return &r.ReferralExternal
	case "team_leader":
		return &r.TeamLeader
	case "administration":
		return &r.Administration
	}
	return nil
}
