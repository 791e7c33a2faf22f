package report

import (
	"context"
	"encoding/json"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/denisok6893-rgb/agent-commission-reports/internal/commission"
	"github.com/denisok6893-rgb/agent-commission-reports/internal/domain"
)

// MinYear is the earliest year a report range may start in.
const MinYear = 2000

type CreateRequest struct {
	AgentID   string
	Start     time.Time
	End       time.Time
	Boosts    float64
	Notes     string
	CreatedBy string
}

// Service drives the report lifecycle: created once per agent and range,
// recalculated in place, deleted by an admin.
type Service struct {
	store  Store
	agents ActivitySource
	agg    *Aggregator
	logger *slog.Logger
}

func NewService(store Store, agents ActivitySource, agg *Aggregator, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, agents: agents, agg: agg, logger: logger}
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (domain.Report, error) {
	req.AgentID = strings.TrimSpace(req.AgentID)
	if req.AgentID == "" {
		return domain.Report{}, &domain.ValidationError{Field: "agent_id", Message: "is required"}
	}
	if req.Start.IsZero() || req.End.IsZero() {
		return domain.Report{}, &domain.ValidationError{Field: "start_date", Message: "start and end dates are required"}
	}
	start, end := dateOnly(req.Start), dateOnly(req.End)
	if end.Before(start) {
		return domain.Report{}, &domain.ValidationError{Field: "end_date", Message: "must not be before start_date"}
	}
	if start.Year() < MinYear {
		return domain.Report{}, &domain.ValidationError{Field: "start_date", Message: "year must be 2000 or later"}
	}
	if err := checkManual(req.Boosts); err != nil {
		return domain.Report{}, err
	}

	exists, err := s.store.ReportExists(ctx, req.AgentID, start, end)
	if err != nil {
		return domain.Report{}, err
	}
	if exists {
		return domain.Report{}, &domain.ConflictError{
			Resource: "report",
			Key:      req.AgentID + " " + start.Format(domain.DateLayout) + ".." + end.Format(domain.DateLayout),
		}
	}

	agent, err := s.agents.Agent(ctx, req.AgentID)
	if err != nil {
		return domain.Report{}, err
	}
	metrics, err := s.agg.Aggregate(ctx, req.AgentID, start, end)
	if err != nil {
		return domain.Report{}, err
	}

	created, err := s.store.CreateReport(ctx, domain.Report{
		AgentID:   agent.ID,
		AgentName: agent.Name,
		StartDate: start,
		EndDate:   end,
		Computed:  metrics,
		Manual:    domain.ManualOverrides{Boosts: commission.Round2(req.Boosts), Notes: req.Notes},
		CreatedBy: req.CreatedBy,
	})
	if err != nil {
		return domain.Report{}, err
	}
	s.logger.Info("report created",
		"report_id", created.ID,
		"agent_id", created.AgentID,
		"total_commission", metrics.TotalCommission,
	)
	return created, nil
}

// Recalculate reruns aggregation over the report's range and overwrites every
// computed field. Manual fields change only when fields carries them.
func (s *Service) Recalculate(ctx context.Context, id string, fields map[string]any) (domain.Report, error) {
	r, err := s.store.GetReport(ctx, id)
	if err != nil {
		return domain.Report{}, err
	}
	start, end, ok := r.Period()
	if !ok {
		return domain.Report{}, &domain.ValidationError{Field: "period", Message: "report has no date range"}
	}

	manual := r.Manual
	touched, err := s.applyManual(&manual, fields)
	if err != nil {
		return domain.Report{}, err
	}

	metrics, err := s.agg.Aggregate(ctx, r.AgentID, start, end)
	if err != nil {
		return domain.Report{}, err
	}
	var override *domain.ManualOverrides
	if touched {
		override = &manual
	}
	if err := s.store.SaveComputed(ctx, id, metrics, override); err != nil {
		return domain.Report{}, err
	}
	s.logger.Info("report recalculated", "report_id", id, "total_commission", metrics.TotalCommission)
	return s.store.GetReport(ctx, id)
}

// Update applies whitelisted manual fields. Unknown keys are ignored.
func (s *Service) Update(ctx context.Context, id string, fields map[string]any) (domain.Report, error) {
	r, err := s.store.GetReport(ctx, id)
	if err != nil {
		return domain.Report{}, err
	}
	manual := r.Manual
	touched, err := s.applyManual(&manual, fields)
	if err != nil {
		return domain.Report{}, err
	}
	if !touched {
		return r, nil
	}
	if err := s.store.UpdateManual(ctx, id, manual); err != nil {
		return domain.Report{}, err
	}
	return s.store.GetReport(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteReport(ctx, id); err != nil {
		return err
	}
	s.logger.Info("report deleted", "report_id", id)
	return nil
}

func (s *Service) Get(ctx context.Context, id string) (domain.Report, error) {
	return s.store.GetReport(ctx, id)
}

func (s *Service) List(ctx context.Context, f domain.ReportFilter) ([]domain.Report, error) {
	if f.From != nil && f.To != nil && f.To.Before(*f.From) {
		return nil, &domain.ValidationError{Field: "to", Message: "must not be before from"}
	}
	return s.store.ListReports(ctx, f)
}

func (s *Service) applyManual(m *domain.ManualOverrides, fields map[string]any) (bool, error) {
	touched := false
	for key, v := range fields {
		switch key {
		case "boosts":
			f, ok := toFloat(v)
			if !ok {
				return false, &domain.ValidationError{Field: "boosts", Message: "must be a number"}
			}
			if err := checkManual(f); err != nil {
				return false, err
			}
			m.Boosts = commission.Round2(f)
			touched = true
		case "notes":
			str, ok := v.(string)
			if !ok {
				return false, &domain.ValidationError{Field: "notes", Message: "must be a string"}
			}
			m.Notes = str
			touched = true
		default:
			s.logger.Debug("ignoring unknown report field", "field", key)
		}
	}
	return touched, nil
}

func checkManual(boosts float64) error {
	if math.IsNaN(boosts) || math.IsInf(boosts, 0) {
		return &domain.ValidationError{Field: "boosts", Message: "must be a finite number"}
	}
	return nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
