package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/denisok6893-rgb/agent-commission-reports/internal/domain"
	"github.com/denisok6893-rgb/agent-commission-reports/internal/referral"
	"github.com/denisok6893-rgb/agent-commission-reports/internal/report"
)

type ReportService interface {
	Create(ctx context.Context, req report.CreateRequest) (domain.Report, error)
	Recalculate(ctx context.Context, id string, fields map[string]any) (domain.Report, error)
	Update(ctx context.Context, id string, fields map[string]any) (domain.Report, error)
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (domain.Report, error)
	List(ctx context.Context, f domain.ReportFilter) ([]domain.Report, error)
}

type Classifier interface {
	Record(ctx context.Context, r domain.Referral) (domain.Referral, referral.Changes, error)
	Classify(ctx context.Context, subject domain.Subject) (referral.Changes, error)
}

type Ledger interface {
	GetReferral(ctx context.Context, id string) (domain.Referral, error)
	ListBySubject(ctx context.Context, subject domain.Subject) ([]domain.Referral, error)
	SetStatus(ctx context.Context, id string, status domain.ReferralStatus) error
	DeleteReferral(ctx context.Context, id string) error
}

type RateStore interface {
	Rates(ctx context.Context) (domain.RateSettings, error)
	SetRates(ctx context.Context, rates domain.RateSettings) error
}

type Server struct {
	Reports    ReportService
	Classifier Classifier
	Ledger     Ledger
	Rates      RateStore
	// RatesCache, when set, is invalidated after the rates are changed.
	RatesCache interface{ Invalidate() }
	Logger     *slog.Logger
}

func NewServer(reports ReportService, classifier Classifier, ledger Ledger, rates RateStore, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{Reports: reports, Classifier: classifier, Ledger: ledger, Rates: rates, Logger: logger}
}

func (s *Server) Routes() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", s.handleHealth)

	r.POST("/referrals", s.handleReferralCreate)
	r.PATCH("/referrals/:id/status", s.handleReferralStatus)
	r.DELETE("/referrals/:id", s.handleReferralDelete)
	r.GET("/subjects/:type/:id/referrals", s.handleSubjectReferrals)
	r.POST("/subjects/:type/:id/classify", s.handleSubjectClassify)

	r.GET("/reports", s.handleReportsList)
	r.POST("/reports", s.handleReportCreate)
	r.GET("/reports/:id", s.handleReportGet)
	r.PATCH("/reports/:id", s.handleReportUpdate)
	r.POST("/reports/:id/recalculate", s.handleReportRecalculate)
	r.DELETE("/reports/:id", s.handleReportDelete)

	r.GET("/settings/commission-rates", s.handleRatesGet)
	r.PUT("/settings/commission-rates", s.handleRatesPut)
	return r
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ---- Referrals ----

type CreateReferralRequest struct {
	SubjectType string `json:"subject_type"`
	SubjectID   string `json:"subject_id"`
	ReferrerID  string `json:"referrer_id"`
	DisplayName string `json:"display_name"`
	Kind        string `json:"kind"`
	Date        string `json:"date"`
	Status      string `json:"status"`
}

type ReferralResponse struct {
	Referral domain.Referral  `json:"referral"`
	Changes  referral.Changes `json:"changes"`
}

func (s *Server) handleReferralCreate(c *gin.Context) {
	var req CreateReferralRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, &domain.ValidationError{Message: "invalid JSON"})
		return
	}
	date, err := parseDate("date", req.Date)
	if err != nil {
		s.writeError(c, err)
		return
	}

	created, changes, err := s.Classifier.Record(c.Request.Context(), domain.Referral{
		Subject:     domain.Subject{Type: domain.SubjectType(req.SubjectType), ID: req.SubjectID},
		ReferrerID:  req.ReferrerID,
		DisplayName: req.DisplayName,
		Kind:        domain.ReferralKind(req.Kind),
		Date:        date,
		Status:      domain.ReferralStatus(req.Status),
	})
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ReferralResponse{Referral: created, Changes: changes})
}

func (s *Server) handleReferralStatus(c *gin.Context) {
	var req struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, &domain.ValidationError{Message: "invalid JSON"})
		return
	}
	status := domain.ReferralStatus(req.Status)
	if !status.Valid() {
		s.writeError(c, &domain.ValidationError{Field: "status", Message: "must be pending, confirmed or rejected"})
		return
	}

	ctx := c.Request.Context()
	id := c.Param("id")
	if err := s.Ledger.SetStatus(ctx, id, status); err != nil {
		s.writeError(c, err)
		return
	}
	ref, err := s.Ledger.GetReferral(ctx, id)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ref)
}

// handleReferralDelete removes a referral and reclassifies what is left on its
// subject, since the deleted row may have been the anchor.
func (s *Server) handleReferralDelete(c *gin.Context) {
	ctx := c.Request.Context()
	ref, err := s.Ledger.GetReferral(ctx, c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	if err := s.Ledger.DeleteReferral(ctx, ref.ID); err != nil {
		s.writeError(c, err)
		return
	}
	changes, err := s.Classifier.Classify(ctx, ref.Subject)
	if err != nil {
		s.Logger.Warn("referral deleted but subject not reclassified", "referral_id", ref.ID, "error", err)
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted", "changes": changes})
}

func (s *Server) handleSubjectReferrals(c *gin.Context) {
	subject, err := subjectParam(c)
	if err != nil {
		s.writeError(c, err)
		return
	}
	items, err := s.Ledger.ListBySubject(c.Request.Context(), subject)
	if err != nil {
		s.writeError(c, err)
		return
	}
	if items == nil {
		items = []domain.Referral{}
	}
	c.JSON(http.StatusOK, gin.H{"subject": subject, "items": items})
}

func (s *Server) handleSubjectClassify(c *gin.Context) {
	subject, err := subjectParam(c)
	if err != nil {
		s.writeError(c, err)
		return
	}
	changes, err := s.Classifier.Classify(c.Request.Context(), subject)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, changes)
}

// ---- Reports ----

type CreateReportRequest struct {
	AgentID   string  `json:"agent_id"`
	StartDate string  `json:"start_date"`
	EndDate   string  `json:"end_date"`
	Boosts    float64 `json:"boosts"`
	Notes     string  `json:"notes"`
	CreatedBy string  `json:"created_by"`
}

type ReportsListResponse struct {
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`
	Total  int             `json:"total"`
	Items  []domain.Report `json:"items"`
}

func (s *Server) handleReportsList(c *gin.Context) {
	var f domain.ReportFilter
	f.AgentID = strings.TrimSpace(c.Query("agent_id"))
	if v := c.Query("agent_ids"); v != "" {
		for _, id := range strings.Split(v, ",") {
			if id = strings.TrimSpace(id); id != "" {
				f.AgentIDs = append(f.AgentIDs, id)
			}
		}
	}
	for _, q := range []struct {
		name string
		dst  **time.Time
	}{{"from", &f.From}, {"to", &f.To}} {
		v := c.Query(q.name)
		if v == "" {
			continue
		}
		d, err := parseDate(q.name, v)
		if err != nil {
			s.writeError(c, err)
			return
		}
		*q.dst = &d
	}

	items, err := s.Reports.List(c.Request.Context(), f)
	if err != nil {
		s.writeError(c, err)
		return
	}

	limit, offset := parseLimitOffset(c, 50, 0)
	total := len(items)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	page := make([]domain.Report, 0, end-offset)
	page = append(page, items[offset:end]...)

	c.JSON(http.StatusOK, ReportsListResponse{Limit: limit, Offset: offset, Total: total, Items: page})
}

func (s *Server) handleReportCreate(c *gin.Context) {
	var req CreateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, &domain.ValidationError{Message: "invalid JSON"})
		return
	}
	start, err := parseDate("start_date", req.StartDate)
	if err != nil {
		s.writeError(c, err)
		return
	}
	end, err := parseDate("end_date", req.EndDate)
	if err != nil {
		s.writeError(c, err)
		return
	}

	created, err := s.Reports.Create(c.Request.Context(), report.CreateRequest{
		AgentID:   req.AgentID,
		Start:     start,
		End:       end,
		Boosts:    req.Boosts,
		Notes:     req.Notes,
		CreatedBy: req.CreatedBy,
	})
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (s *Server) handleReportGet(c *gin.Context) {
	r, err := s.Reports.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (s *Server) handleReportUpdate(c *gin.Context) {
	fields, err := decodeFields(c, false)
	if err != nil {
		s.writeError(c, err)
		return
	}
	r, err := s.Reports.Update(c.Request.Context(), c.Param("id"), fields)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (s *Server) handleReportRecalculate(c *gin.Context) {
	fields, err := decodeFields(c, true)
	if err != nil {
		s.writeError(c, err)
		return
	}
	r, err := s.Reports.Recalculate(c.Request.Context(), c.Param("id"), fields)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (s *Server) handleReportDelete(c *gin.Context) {
	if err := s.Reports.Delete(c.Request.Context(), c.Param("id")); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// ---- Settings ----

func (s *Server) handleRatesGet(c *gin.Context) {
	rates, err := s.Rates.Rates(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rates)
}

// handleRatesPut accepts a partial body; omitted rates keep their current value.
func (s *Server) handleRatesPut(c *gin.Context) {
	ctx := c.Request.Context()
	rates, err := s.Rates.Rates(ctx)
	if err != nil {
		s.writeError(c, err)
		return
	}
	if err := c.ShouldBindJSON(&rates); err != nil {
		s.writeError(c, &domain.ValidationError{Message: "invalid JSON"})
		return
	}
	if err := s.Rates.SetRates(ctx, rates); err != nil {
		s.writeError(c, err)
		return
	}
	if s.RatesCache != nil {
		s.RatesCache.Invalidate()
	}
	s.Logger.Info("commission rates updated", "rates", rates)
	c.JSON(http.StatusOK, rates)
}

// ---- helpers ----

func (s *Server) writeError(c *gin.Context, err error) {
	status, code := http.StatusInternalServerError, "internal_error"
	switch {
	case errors.Is(err, domain.ErrValidation):
		status, code = http.StatusBadRequest, "validation_failed"
	case errors.Is(err, domain.ErrNotFound):
		status, code = http.StatusNotFound, "not_found"
	case errors.Is(err, domain.ErrConflict):
		status, code = http.StatusConflict, "conflict"
	}
	if status == http.StatusInternalServerError {
		s.Logger.Error("request failed", "method", c.Request.Method, "path", c.FullPath(), "error", err)
		c.JSON(status, gin.H{"error": code})
		return
	}
	c.JSON(status, gin.H{"error": code, "message": err.Error()})
}

func subjectParam(c *gin.Context) (domain.Subject, error) {
	subject := domain.Subject{Type: domain.SubjectType(c.Param("type")), ID: c.Param("id")}
	if !subject.Type.Valid() {
		return domain.Subject{}, &domain.ValidationError{Field: "subject_type", Message: "must be property or lead"}
	}
	return subject, nil
}

// parseDate accepts YYYY-MM-DD or RFC 3339.
func parseDate(field, v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, &domain.ValidationError{Field: field, Message: "is required"}
	}
	if t, err := time.Parse(domain.DateLayout, v); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, &domain.ValidationError{Field: field, Message: "must be YYYY-MM-DD"}
}

// decodeFields reads a JSON object keeping numbers as json.Number.
func decodeFields(c *gin.Context, optional bool) (map[string]any, error) {
	fields := map[string]any{}
	dec := json.NewDecoder(c.Request.Body)
	dec.UseNumber()
	if err := dec.Decode(&fields); err != nil {
		if optional && errors.Is(err, io.EOF) {
			return fields, nil
		}
		return nil, &domain.ValidationError{Message: "invalid JSON object"}
	}
	return fields, nil
}

func parseLimitOffset(c *gin.Context, defLimit, defOffset int) (int, int) {
	limit := defLimit
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	if limit <= 0 {
		limit = defLimit
	}
	// safety cap
	if limit > 200 {
		limit = 200
	}

	offset := defOffset
	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}
	if offset < 0 {
		offset = defOffset
	}
	return limit, offset
}
