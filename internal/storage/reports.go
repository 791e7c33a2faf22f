package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/denisok6893-rgb/agent-commission-reports/internal/domain"
)

const reportColumns = `id, agent_id, agent_name, start_date, end_date, year, month,
listings_count, viewings_count, sales_count, sales_amount,
agent_commission, finders_commission, referral_commission, team_leader_commission, administration_commission,
lead_sources_json, referral_received_count, referral_received_commission,
referrals_on_properties_count, referrals_on_properties_commission, total_commission,
boosts, notes, recalculations, created_by, created_at, updated_at, computed_at`

// Legacy rows have no explicit range; derive it from year and month.
const (
	rangeStartExpr = `COALESCE(start_date, printf('%04d-%02d-01', year, COALESCE(month, 1)))`
	rangeEndExpr   = `COALESCE(end_date, CASE WHEN month IS NULL THEN printf('%04d-12-31', year)
  ELSE date(printf('%04d-%02d-01', year, month), '+1 month', '-1 day') END)`
)

// CreateReport inserts the report with its computed metrics. A report whose
// range, explicit or derived from legacy year/month, matches the new one for
// the same agent is a conflict.
func (s *SQLiteStore) CreateReport(ctx context.Context, r domain.Report) (domain.Report, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	now := s.now().UTC().Truncate(time.Second)
	r.CreatedAt = now
	r.UpdatedAt = now
	r.ComputedAt = &now

	sources, err := json.Marshal(leadSources(r.Computed.LeadSources))
	if err != nil {
		return domain.Report{}, fmt.Errorf("marshal lead sources: %w", err)
	}
	m := r.Computed

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Report{}, fmt.Errorf("begin create report: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	exists, err := reportExists(ctx, tx, r.AgentID, r.StartDate, r.EndDate)
	if err != nil {
		return domain.Report{}, err
	}
	if exists {
		return domain.Report{}, &domain.ConflictError{Resource: "report", Key: rangeKey(r.AgentID, r.StartDate, r.EndDate)}
	}

	_, err = tx.ExecContext(ctx, `
INSERT INTO reports (`+reportColumns+`)
VALUES (?, ?, ?, ?, ?, NULL, NULL, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0, ?, ?, ?, ?)`,
		r.ID, r.AgentID, r.AgentName, formatDate(r.StartDate), formatDate(r.EndDate),
		m.ListingsCount, m.ViewingsCount, m.SalesCount, m.SalesAmount,
		m.AgentCommission, m.FindersCommission, m.ReferralCommission, m.TeamLeaderCommission, m.AdministrationCommission,
		string(sources), m.ReferralReceivedCount, m.ReferralReceivedCommission,
		m.ReferralsOnPropertiesCount, m.ReferralsOnPropertiesCommission, m.TotalCommission,
		r.Manual.Boosts, r.Manual.Notes, r.CreatedBy, formatTime(now), formatTime(now), formatTime(now),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Report{}, &domain.ConflictError{Resource: "report", Key: rangeKey(r.AgentID, r.StartDate, r.EndDate)}
		}
		return domain.Report{}, fmt.Errorf("insert report: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return domain.Report{}, fmt.Errorf("commit report: %w", err)
	}
	return r, nil
}

// ReportExists reports whether a report already covers exactly this agent and
// range. Legacy rows match on the range derived from their year and month.
func (s *SQLiteStore) ReportExists(ctx context.Context, agentID string, start, end time.Time) (bool, error) {
	return reportExists(ctx, s.db, agentID, start, end)
}

func reportExists(ctx context.Context, db execer, agentID string, start, end time.Time) (bool, error) {
	var n int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM reports WHERE agent_id = ? AND `+rangeStartExpr+` = ? AND `+rangeEndExpr+` = ?`,
		agentID, formatDate(start), formatDate(end),
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check report: %w", err)
	}
	return n > 0, nil
}

func (s *SQLiteStore) GetReport(ctx context.Context, id string) (domain.Report, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+reportColumns+` FROM reports WHERE id = ?`, id)
	if err != nil {
		return domain.Report{}, fmt.Errorf("get report: %w", err)
	}
	out, err := scanReports(rows)
	if err != nil {
		return domain.Report{}, err
	}
	if len(out) == 0 {
		return domain.Report{}, &domain.NotFoundError{Resource: "report", ID: id}
	}
	return out[0], nil
}

// ListReports applies every non-empty filter. Results are ordered by range start,
// newest first, then by agent name.
func (s *SQLiteStore) ListReports(ctx context.Context, f domain.ReportFilter) ([]domain.Report, error) {
	where := make([]string, 0, 4)
	args := make([]any, 0, 4+len(f.AgentIDs))

	if strings.TrimSpace(f.AgentID) != "" {
		where = append(where, "agent_id = ?")
		args = append(args, f.AgentID)
	}
	if len(f.AgentIDs) > 0 {
		marks := make([]string, len(f.AgentIDs))
		for i, id := range f.AgentIDs {
			marks[i] = "?"
			args = append(args, id)
		}
		where = append(where, "agent_id IN ("+strings.Join(marks, ", ")+")")
	}
	if f.From != nil {
		where = append(where, rangeStartExpr+" >= ?")
		args = append(args, formatDate(*f.From))
	}
	if f.To != nil {
		where = append(where, rangeEndExpr+" <= ?")
		args = append(args, formatDate(*f.To))
	}

	whereSQL := ""
	if len(where) > 0 {
		whereSQL = "WHERE " + strings.Join(where, " AND ")
	}

	rows, err := s.db.QueryContext(ctx, `SELECT `+reportColumns+` FROM reports
`+whereSQL+`
ORDER BY `+rangeStartExpr+` DESC, agent_name ASC, id ASC`, args...)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	return scanReports(rows)
}

// SaveComputed overwrites every computed field of a report in one statement.
// Manual fields are replaced only when manual is non-nil.
func (s *SQLiteStore) SaveComputed(ctx context.Context, id string, m domain.ComputedMetrics, manual *domain.ManualOverrides) error {
	sources, err := json.Marshal(leadSources(m.LeadSources))
	if err != nil {
		return fmt.Errorf("marshal lead sources: %w", err)
	}
	stamp := s.stamp()

	set := `listings_count = ?, viewings_count = ?, sales_count = ?, sales_amount = ?,
agent_commission = ?, finders_commission = ?, referral_commission = ?, team_leader_commission = ?, administration_commission = ?,
lead_sources_json = ?, referral_received_count = ?, referral_received_commission = ?,
referrals_on_properties_count = ?, referrals_on_properties_commission = ?, total_commission = ?,
recalculations = recalculations + 1, computed_at = ?, updated_at = ?`
	args := []any{
		m.ListingsCount, m.ViewingsCount, m.SalesCount, m.SalesAmount,
		m.AgentCommission, m.FindersCommission, m.ReferralCommission, m.TeamLeaderCommission, m.AdministrationCommission,
		string(sources), m.ReferralReceivedCount, m.ReferralReceivedCommission,
		m.ReferralsOnPropertiesCount, m.ReferralsOnPropertiesCommission, m.TotalCommission,
		stamp, stamp,
	}
	if manual != nil {
		set += `, boosts = ?, notes = ?`
		args = append(args, manual.Boosts, manual.Notes)
	}
	args = append(args, id)

	res, err := s.db.ExecContext(ctx, `UPDATE reports SET `+set+` WHERE id = ?`, args...)
	if err != nil {
		return fmt.Errorf("save computed metrics for report %s: %w", id, err)
	}
	if aff, _ := res.RowsAffected(); aff == 0 {
		return &domain.NotFoundError{Resource: "report", ID: id}
	}
	return nil
}

func (s *SQLiteStore) UpdateManual(ctx context.Context, id string, manual domain.ManualOverrides) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE reports SET boosts = ?, notes = ?, updated_at = ? WHERE id = ?`,
		manual.Boosts, manual.Notes, s.stamp(), id,
	)
	if err != nil {
		return fmt.Errorf("update report %s: %w", id, err)
	}
	if aff, _ := res.RowsAffected(); aff == 0 {
		return &domain.NotFoundError{Resource: "report", ID: id}
	}
	return nil
}

func (s *SQLiteStore) DeleteReport(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM reports WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete report %s: %w", id, err)
	}
	if aff, _ := res.RowsAffected(); aff == 0 {
		return &domain.NotFoundError{Resource: "report", ID: id}
	}
	return nil
}

func scanReports(rows *sql.Rows) ([]domain.Report, error) {
	defer rows.Close()

	var out []domain.Report
	for rows.Next() {
		var (
			r                    domain.Report
			start, end, computed sql.NullString
			year, month          sql.NullInt64
			sources              string
			createdAt, updatedAt string
		)
		m := &r.Computed
		if err := rows.Scan(
			&r.ID, &r.AgentID, &r.AgentName, &start, &end, &year, &month,
			&m.ListingsCount, &m.ViewingsCount, &m.SalesCount, &m.SalesAmount,
			&m.AgentCommission, &m.FindersCommission, &m.ReferralCommission, &m.TeamLeaderCommission, &m.AdministrationCommission,
			&sources, &m.ReferralReceivedCount, &m.ReferralReceivedCommission,
			&m.ReferralsOnPropertiesCount, &m.ReferralsOnPropertiesCommission, &m.TotalCommission,
			&r.Manual.Boosts, &r.Manual.Notes, &r.Recalculations, &r.CreatedBy, &createdAt, &updatedAt, &computed,
		); err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		if start.Valid {
			r.StartDate = parseDate(start.String)
		}
		if end.Valid {
			r.EndDate = parseDate(end.String)
		}
		r.LegacyYear = int(year.Int64)
		r.LegacyMonth = int(month.Int64)
		if from, to, ok := r.Period(); ok {
			r.StartDate, r.EndDate = from, to
		}
		r.CreatedAt = parseTime(createdAt)
		r.UpdatedAt = parseTime(updatedAt)
		if computed.Valid {
			t := parseTime(computed.String)
			r.ComputedAt = &t
		}
		m.LeadSources = map[string]int{}
		_ = json.Unmarshal([]byte(sources), &m.LeadSources)
		out = append(out, r)
	}
	return out, rows.Err()
}

func leadSources(m map[string]int) map[string]int {
	if m == nil {
		return map[string]int{}
	}
	return m
}

func rangeKey(agentID string, start, end time.Time) string {
	return fmt.Sprintf("%s %s..%s", agentID, formatDate(start), formatDate(end))
}
