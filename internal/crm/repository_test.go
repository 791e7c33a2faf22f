package crm

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/denisok6893-rgb/agent-commission-reports/internal/domain"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	// Use a per-test in-memory database to avoid cross-test interference
	db, err := OpenDSN(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func at(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func ptr[T any](v T) *T { return &v }

func seed(t *testing.T, db *gorm.DB) {
	t.Helper()
	sold := DealStatus{Code: "SOLD", Name: "Sold"}
	rented := DealStatus{Code: "rnt", Name: "Rented"}
	open := DealStatus{Code: "open", Name: "Open"}
	for _, s := range []*DealStatus{&sold, &rented, &open} {
		require.NoError(t, db.Create(s).Error)
	}

	require.NoError(t, db.Create(&Agent{ID: "a-1", Name: "Anna"}).Error)
	require.NoError(t, db.Create([]Property{
		{ID: "p-1", Title: "Flat", Price: 300000, StatusID: &sold.ID, OwnerAgentID: "a-1", CreatedBy: "a-1", ClosedDate: ptr(at(2025, 3, 10)), CreatedAt: at(2025, 3, 1)},
		{ID: "p-2", Title: "House", Price: 1200, StatusID: &rented.ID, OwnerAgentID: "a-1", CreatedBy: "a-2", ClosedDate: ptr(at(2025, 3, 31)), CreatedAt: at(2025, 2, 1)},
		{ID: "p-3", Title: "Plot", Price: 50000, StatusID: &open.ID, OwnerAgentID: "a-1", CreatedBy: "a-1", ClosedDate: ptr(at(2025, 3, 15)), CreatedAt: at(2025, 3, 31)},
		{ID: "p-4", Title: "Loft", Price: 90000, StatusID: &sold.ID, OwnerAgentID: "a-1", CreatedBy: "a-1", ClosedDate: ptr(at(2025, 4, 1)), CreatedAt: at(2025, 4, 1)},
		{ID: "p-5", Title: "Barn", Price: 70000, StatusID: &sold.ID, OwnerAgentID: "a-2", CreatedBy: "a-2", ClosedDate: ptr(at(2025, 3, 5)), CreatedAt: at(2025, 1, 1)},
	}).Error)
	require.NoError(t, db.Create([]Lead{
		{ID: "l-1", AgentID: "a-1", Source: "website", LeadDate: at(2025, 3, 2), Price: 80000, StatusID: &sold.ID, ClosedDate: ptr(at(2025, 3, 20))},
		{ID: "l-2", AgentID: "a-1", Source: "website", LeadDate: at(2025, 3, 3)},
		{ID: "l-3", AgentID: "a-1", Source: "", LeadDate: at(2025, 3, 4)},
		{ID: "l-4", AgentID: "a-1", Source: "referral", LeadDate: at(2025, 4, 4)},
	}).Error)
	require.NoError(t, db.Create([]Viewing{
		{AgentID: "a-1", PropertyID: "p-1", ViewingDate: at(2025, 3, 1)},
		{AgentID: "a-1", PropertyID: "p-2", ViewingDate: at(2025, 3, 31)},
		{AgentID: "a-1", PropertyID: "p-2", ViewingDate: at(2025, 2, 28)},
		{AgentID: "a-2", PropertyID: "p-2", ViewingDate: at(2025, 3, 10)},
	}).Error)
}

var (
	march    = time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	endMarch = time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)
)

func TestRepository_Activity(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	db := setupDB(t)
	seed(t, db)
	r := NewRepository(db)

	listings, err := r.CountListings(ctx, "a-1", march, endMarch)
	require.NoError(t, err)
	assert.Equal(t, 2, listings)

	sources, err := r.LeadSources(ctx, "a-1", march, endMarch)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"website": 2, "unknown": 1}, sources)

	viewings, err := r.CountViewings(ctx, "a-1", march, endMarch)
	require.NoError(t, err)
	assert.Equal(t, 2, viewings)

	agent, err := r.Agent(ctx, "a-1")
	require.NoError(t, err)
	assert.Equal(t, "Anna", agent.Name)

	_, err = r.Agent(ctx, "nobody")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRepository_ClosedSalesByOwner(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)
	seed(t, db)
	r := NewRepository(db)

	sales, err := r.ClosedSalesByOwner(ctx, "a-1", march, endMarch)
	require.NoError(t, err)
	require.Len(t, sales, 2)
	assert.Equal(t, domain.Subject{Type: domain.SubjectProperty, ID: "p-1"}, sales[0].Subject)
	assert.Equal(t, 300000.0, sales[0].Price)
	assert.Equal(t, "SOLD", sales[0].Status)
	// matched on status name, closed on the last day of the range
	assert.Equal(t, "p-2", sales[1].Subject.ID)
	assert.Equal(t, "a-1", sales[1].OwnerAgentID)
}

func TestRepository_ClosedSalesForSubjects(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)
	seed(t, db)
	r := NewRepository(db)

	sales, err := r.ClosedSalesForSubjects(ctx, []domain.Subject{
		{Type: domain.SubjectProperty, ID: "p-4"},
		{Type: domain.SubjectProperty, ID: "p-5"},
		{Type: domain.SubjectLead, ID: "l-1"},
		{Type: domain.SubjectLead, ID: "l-2"},
	}, march, endMarch)
	require.NoError(t, err)
	require.Len(t, sales, 2)
	assert.Equal(t, domain.Subject{Type: domain.SubjectProperty, ID: "p-5"}, sales[0].Subject)
	assert.Equal(t, domain.Subject{Type: domain.SubjectLead, ID: "l-1"}, sales[1].Subject)
	assert.Equal(t, 80000.0, sales[1].Price)

	none, err := r.ClosedSalesForSubjects(ctx, nil, march, endMarch)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestNewRepository_ProbesClosedDateColumn(t *testing.T) {
	r := NewRepository(setupDB(t))
	assert.Equal(t, "closed_date", r.propertyClosedCol)
	assert.Equal(t, "closed_date", r.leadClosedCol)

	legacy, err := OpenDSN(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()+"_legacy"))
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := legacy.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	require.NoError(t, legacy.Exec(`CREATE TABLE properties (id TEXT PRIMARY KEY, price REAL, status_id INTEGER, owner_agent_id TEXT, created_by TEXT, created_at DATETIME, updated_at DATETIME)`).Error)
	require.NoError(t, legacy.Exec(`CREATE TABLE leads (id TEXT PRIMARY KEY, agent_id TEXT, closed_date DATETIME, updated_at DATETIME)`).Error)

	r = NewRepository(legacy)
	assert.Equal(t, "updated_at", r.propertyClosedCol)
	assert.Equal(t, "closed_date", r.leadClosedCol)
}

func TestRepository_ClosedSalesMatchFinalizedStatuses(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)
	r := NewRepository(db)

	statuses := []DealStatus{
		{Code: "SOLD", Name: "Sold"},
		{Code: "rnt", Name: "Rented"},
		{Code: "done", Name: "CLOSED"},
		{Code: "open", Name: "Open"},
		{Code: "pending", Name: "Awaiting payment"},
	}
	want := make(map[string]bool, len(statuses))
	for i := range statuses {
		s := &statuses[i]
		require.NoError(t, db.Create(s).Error)
		id := fmt.Sprintf("p-%s", s.Code)
		require.NoError(t, db.Create(&Property{
			ID: id, Title: s.Name, Price: 1000, StatusID: &s.ID,
			OwnerAgentID: "a-1", ClosedDate: ptr(at(2025, 3, 10)), CreatedAt: at(2025, 3, 1),
		}).Error)
		want[id] = domain.IsFinalizedStatus(s.Code) || domain.IsFinalizedStatus(s.Name)
	}

	sales, err := r.ClosedSalesByOwner(ctx, "a-1", march, endMarch)
	require.NoError(t, err)
	got := make(map[string]bool, len(statuses))
	for id := range want {
		got[id] = false
	}
	for _, s := range sales {
		got[s.Subject.ID] = true
	}
	assert.Equal(t, want, got)
	assert.Len(t, sales, 3)
}
