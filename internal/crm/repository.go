// Package crm reads listings, leads, viewings and closed sales from the CRM
// database. It never writes to it.
package crm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/denisok6893-rgb/agent-commission-reports/internal/domain"
)

func Open(path string) (*gorm.DB, error) {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000", path)
	return OpenDSN(dsn)
}

func OpenDSN(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("open crm database: %w", err)
	}
	return db, nil
}

// Migrate creates the CRM tables. Production CRMs manage their own schema.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Agent{}, &DealStatus{}, &Property{}, &Lead{}, &Viewing{})
}

type Repository struct {
	db *gorm.DB

	// closed-date column per table, chosen once by probing the schema
	propertyClosedCol string
	leadClosedCol     string
}

// NewRepository probes which closed-date columns the CRM schema provides. Older
// CRM schemas have no closed_date and stamp the close into updated_at.
func NewRepository(db *gorm.DB) *Repository {
	r := &Repository{db: db, propertyClosedCol: "closed_date", leadClosedCol: "closed_date"}
	m := db.Migrator()
	if !m.HasColumn(&Property{}, "closed_date") {
		r.propertyClosedCol = "updated_at"
	}
	if !m.HasColumn(&Lead{}, "closed_date") {
		r.leadClosedCol = "updated_at"
	}
	return r
}

func (r *Repository) Agent(ctx context.Context, id string) (domain.Agent, error) {
	var a Agent
	if err := r.db.WithContext(ctx).First(&a, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Agent{}, &domain.NotFoundError{Resource: "agent", ID: id}
		}
		return domain.Agent{}, fmt.Errorf("get agent %s: %w", id, err)
	}
	return domain.Agent{ID: a.ID, Name: a.Name}, nil
}

// CountListings counts properties the agent created within [start, end].
func (r *Repository) CountListings(ctx context.Context, agentID string, start, end time.Time) (int, error) {
	from, until := bounds(start, end)
	var n int64
	err := r.db.WithContext(ctx).Model(&Property{}).
		Where("created_by = ? AND created_at >= ? AND created_at < ?", agentID, from, until).
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("count listings: %w", err)
	}
	return int(n), nil
}

const leadSourceExpr = `COALESCE(NULLIF(TRIM(source), ''), 'unknown')`

// LeadSources groups the agent's leads dated within [start, end] by source.
func (r *Repository) LeadSources(ctx context.Context, agentID string, start, end time.Time) (map[string]int, error) {
	from, until := bounds(start, end)
	var rows []struct {
		Source string
		Total  int
	}
	err := r.db.WithContext(ctx).Model(&Lead{}).
		Select(leadSourceExpr+" AS source, COUNT(*) AS total").
		Where("agent_id = ? AND lead_date >= ? AND lead_date < ?", agentID, from, until).
		Group(leadSourceExpr).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("group lead sources: %w", err)
	}
	out := make(map[string]int, len(rows))
	for _, row := range rows {
		out[row.Source] = row.Total
	}
	return out, nil
}

func (r *Repository) CountViewings(ctx context.Context, agentID string, start, end time.Time) (int, error) {
	from, until := bounds(start, end)
	var n int64
	err := r.db.WithContext(ctx).Model(&Viewing{}).
		Where("agent_id = ? AND viewing_date >= ? AND viewing_date < ?", agentID, from, until).
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("count viewings: %w", err)
	}
	return int(n), nil
}

type saleRow struct {
	ID           string
	Price        float64
	ClosedDate   time.Time
	StatusCode   string
	OwnerAgentID string
}

// ClosedSalesByOwner returns the agent's properties that reached a finalized
// status with a close date within [start, end].
func (r *Repository) ClosedSalesByOwner(ctx context.Context, agentID string, start, end time.Time) ([]domain.SaleRecord, error) {
	rows, err := r.closedProperties(ctx, start, end, func(q *gorm.DB) *gorm.DB {
		return q.Where("p.owner_agent_id = ?", agentID)
	})
	if err != nil {
		return nil, err
	}
	return toSales(domain.SubjectProperty, rows), nil
}

// ClosedSalesForSubjects returns the finalized sales, closed within [start, end],
// of the given properties and leads.
func (r *Repository) ClosedSalesForSubjects(ctx context.Context, subjects []domain.Subject, start, end time.Time) ([]domain.SaleRecord, error) {
	var propertyIDs, leadIDs []string
	for _, s := range subjects {
		switch s.Type {
		case domain.SubjectProperty:
			propertyIDs = append(propertyIDs, s.ID)
		case domain.SubjectLead:
			leadIDs = append(leadIDs, s.ID)
		}
	}

	var out []domain.SaleRecord
	if len(propertyIDs) > 0 {
		rows, err := r.closedProperties(ctx, start, end, func(q *gorm.DB) *gorm.DB {
			return q.Where("p.id IN ?", propertyIDs)
		})
		if err != nil {
			return nil, err
		}
		out = append(out, toSales(domain.SubjectProperty, rows)...)
	}
	if len(leadIDs) > 0 {
		rows, err := r.closedLeads(ctx, start, end, leadIDs)
		if err != nil {
			return nil, err
		}
		out = append(out, toSales(domain.SubjectLead, rows)...)
	}
	return out, nil
}

func (r *Repository) closedProperties(ctx context.Context, start, end time.Time, scope func(*gorm.DB) *gorm.DB) ([]saleRow, error) {
	from, until := bounds(start, end)
	col := "p." + r.propertyClosedCol
	var rows []saleRow
	err := r.db.WithContext(ctx).Table("properties AS p").
		Select("p.id AS id, p.price AS price, "+col+" AS closed_date, s.code AS status_code, p.owner_agent_id AS owner_agent_id").
		Joins("JOIN deal_statuses s ON s.id = p.status_id").
		Scopes(scope).
		Where(col+" >= ? AND "+col+" < ?", from, until).
		Where("(LOWER(s.code) IN ? OR LOWER(s.name) IN ?)", domain.FinalizedSaleStatuses, domain.FinalizedSaleStatuses).
		Order(col + " ASC, p.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("query closed properties: %w", err)
	}
	return rows, nil
}

func (r *Repository) closedLeads(ctx context.Context, start, end time.Time, ids []string) ([]saleRow, error) {
	from, until := bounds(start, end)
	col := "l." + r.leadClosedCol
	var rows []saleRow
	err := r.db.WithContext(ctx).Table("leads AS l").
		Select("l.id AS id, l.price AS price, "+col+" AS closed_date, s.code AS status_code, l.agent_id AS owner_agent_id").
		Joins("JOIN deal_statuses s ON s.id = l.status_id").
		Where("l.id IN ?", ids).
		Where(col+" >= ? AND "+col+" < ?", from, until).
		Where("(LOWER(s.code) IN ? OR LOWER(s.name) IN ?)", domain.FinalizedSaleStatuses, domain.FinalizedSaleStatuses).
		Order(col + " ASC, l.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("query closed leads: %w", err)
	}
	return rows, nil
}

func toSales(t domain.SubjectType, rows []saleRow) []domain.SaleRecord {
	out := make([]domain.SaleRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.SaleRecord{
			Subject:      domain.Subject{Type: t, ID: row.ID},
			Price:        row.Price,
			ClosedDate:   row.ClosedDate,
			Status:       row.StatusCode,
			OwnerAgentID: row.OwnerAgentID,
		})
	}
	return out
}

// bounds turns an inclusive date range into [from, until).
func bounds(start, end time.Time) (time.Time, time.Time) {
	from := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	until := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
	return from, until
}
