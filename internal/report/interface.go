package report

import (
	"context"
	"time"

	"github.com/denisok6893-rgb/agent-commission-reports/internal/domain"
	"github.com/denisok6893-rgb/agent-commission-reports/internal/referral"
)

//go:generate mockgen -destination=mocks/mock_interface.go -source=interface.go

// ReferralLedger is the read side of the referral store used by aggregation.
type ReferralLedger interface {
	ListByReferrer(ctx context.Context, referrerID string) ([]domain.Referral, error)
	ListBySubjects(ctx context.Context, subjects []domain.Subject) ([]domain.Referral, error)
}

// SubjectClassifier refreshes referral flags before commissions are read.
type SubjectClassifier interface {
	ClassifyAll(ctx context.Context, subjects []domain.Subject) ([]referral.Changes, []error)
}

// ActivitySource is the read-only CRM. Ranges are inclusive calendar days.
type ActivitySource interface {
	Agent(ctx context.Context, id string) (domain.Agent, error)
	CountListings(ctx context.Context, agentID string, start, end time.Time) (int, error)
	LeadSources(ctx context.Context, agentID string, start, end time.Time) (map[string]int, error)
	CountViewings(ctx context.Context, agentID string, start, end time.Time) (int, error)
	ClosedSalesByOwner(ctx context.Context, agentID string, start, end time.Time) ([]domain.SaleRecord, error)
	ClosedSalesForSubjects(ctx context.Context, subjects []domain.Subject, start, end time.Time) ([]domain.SaleRecord, error)
}

type RatesProvider interface {
	Rates(ctx context.Context) (domain.RateSettings, error)
}

// Store persists reports. It must reject a second report for the same agent and range.
type Store interface {
	ReportExists(ctx context.Context, agentID string, start, end time.Time) (bool, error)
	CreateReport(ctx context.Context, r domain.Report) (domain.Report, error)
	GetReport(ctx context.Context, id string) (domain.Report, error)
	ListReports(ctx context.Context, f domain.ReportFilter) ([]domain.Report, error)
	SaveComputed(ctx context.Context, id string, metrics domain.ComputedMetrics, manual *domain.ManualOverrides) error
	UpdateManual(ctx context.Context, id string, manual domain.ManualOverrides) error
	DeleteReport(ctx context.Context, id string) error
}
