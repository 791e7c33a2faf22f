package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/denisok6893-rgb/agent-commission-reports/internal/commission"
	"github.com/denisok6893-rgb/agent-commission-reports/internal/crm"
	"github.com/denisok6893-rgb/agent-commission-reports/internal/domain"
	"github.com/denisok6893-rgb/agent-commission-reports/internal/referral"
	"github.com/denisok6893-rgb/agent-commission-reports/internal/report"
	"github.com/denisok6893-rgb/agent-commission-reports/internal/storage"
)

func init() { gin.SetMode(gin.TestMode) }

// newTestServer wires the real stack: a SQLite ledger and report store plus an
// in-memory CRM with one agent who closed one 300000 sale in March 2025.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	store, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "reports.db"))
	require.NoError(t, err)
	require.NoError(t, store.EnsureSchema())
	t.Cleanup(func() { _ = store.Close() })

	db, err := crm.OpenDSN(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
	require.NoError(t, err)
	require.NoError(t, crm.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	sold := crm.DealStatus{Code: "sold", Name: "Sold"}
	require.NoError(t, db.Create(&sold).Error)
	require.NoError(t, db.Create(&crm.Agent{ID: "a-1", Name: "Anna"}).Error)
	closed := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	require.NoError(t, db.Create(&crm.Property{
		ID: "p-1", Title: "Flat", Price: 300000, StatusID: &sold.ID, OwnerAgentID: "a-1", CreatedBy: "a-1",
		ClosedDate: &closed, CreatedAt: time.Date(2025, 3, 2, 9, 0, 0, 0, time.UTC),
	}).Error)

	repo := crm.NewRepository(db)
	rates := commission.NewCachedRates(store, time.Minute)
	classifier := referral.NewClassifier(store, nil)
	agg := report.NewAggregator(store, classifier, repo, rates, nil)
	svc := report.NewService(store, repo, agg, nil)

	srv := NewServer(svc, classifier, store, store, nil)
	srv.RatesCache = rates
	ts := httptest.NewServer(srv.Routes())
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, ts *httptest.Server, method, path string, body any, out any) int {
	t.Helper()
	var rdr *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(b)
	} else {
		rdr = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, ts.URL+path, rdr)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	var got map[string]string
	require.Equal(t, http.StatusOK, doJSON(t, ts, http.MethodGet, "/health", nil, &got))
	assert.Equal(t, "ok", got["status"])
}

func TestReferralHandOffs(t *testing.T) {
	ts := newTestServer(t)

	var first ReferralResponse
	code := doJSON(t, ts, http.MethodPost, "/referrals", map[string]any{
		"subject_type": "property", "subject_id": "p-1", "referrer_id": "a-2", "date": "2025-01-01",
	}, &first)
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, domain.StatusPending, first.Referral.Status)
	assert.True(t, first.Changes.Empty())

	var second ReferralResponse
	code = doJSON(t, ts, http.MethodPost, "/referrals", map[string]any{
		"subject_type": "property", "subject_id": "p-1", "kind": "custom", "display_name": "Neighbour", "date": "2025-02-15",
	}, &second)
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, []string{first.Referral.ID}, second.Changes.ToExternal)

	var listed struct {
		Items []domain.Referral `json:"items"`
	}
	require.Equal(t, http.StatusOK, doJSON(t, ts, http.MethodGet, "/subjects/property/p-1/referrals", nil, &listed))
	require.Len(t, listed.Items, 2)
	assert.Equal(t, second.Referral.ID, listed.Items[0].ID)
	assert.False(t, listed.Items[0].External)
	assert.True(t, listed.Items[1].External)

	var updated domain.Referral
	code = doJSON(t, ts, http.MethodPatch, "/referrals/"+first.Referral.ID+"/status", map[string]string{"status": "confirmed"}, &updated)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, domain.StatusConfirmed, updated.Status)

	// deleting the anchor leaves the older referral as the only, internal one
	var deleted struct {
		Status  string           `json:"status"`
		Changes referral.Changes `json:"changes"`
	}
	require.Equal(t, http.StatusOK, doJSON(t, ts, http.MethodDelete, "/referrals/"+second.Referral.ID, nil, &deleted))
	assert.Equal(t, []string{first.Referral.ID}, deleted.Changes.ToInternal)

	var classified referral.Changes
	require.Equal(t, http.StatusOK, doJSON(t, ts, http.MethodPost, "/subjects/property/p-1/classify", nil, &classified))
	assert.True(t, classified.Empty())
}

func TestReferralErrors(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{name: "bad date", method: http.MethodPost, path: "/referrals", body: map[string]any{"subject_type": "lead", "subject_id": "l-1", "referrer_id": "a", "date": "01/02/2025"}, want: http.StatusBadRequest},
		{name: "bad subject type", method: http.MethodPost, path: "/referrals", body: map[string]any{"subject_type": "car", "subject_id": "c-1", "referrer_id": "a", "date": "2025-01-01"}, want: http.StatusBadRequest},
		{name: "unknown status", method: http.MethodPatch, path: "/referrals/x/status", body: map[string]string{"status": "won"}, want: http.StatusBadRequest},
		{name: "missing referral", method: http.MethodPatch, path: "/referrals/x/status", body: map[string]string{"status": "rejected"}, want: http.StatusNotFound},
		{name: "delete missing referral", method: http.MethodDelete, path: "/referrals/x", want: http.StatusNotFound},
		{name: "list bad subject type", method: http.MethodGet, path: "/subjects/car/1/referrals", want: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body map[string]string
			code := doJSON(t, ts, tt.method, tt.path, tt.body, &body)
			assert.Equal(t, tt.want, code)
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestReportLifecycle(t *testing.T) {
	ts := newTestServer(t)

	for _, r := range []map[string]any{
		{"subject_type": "property", "subject_id": "p-1", "referrer_id": "a-2", "date": "2025-01-01"},
		{"subject_type": "property", "subject_id": "p-1", "referrer_id": "a-3", "date": "2025-02-15"},
	} {
		require.Equal(t, http.StatusCreated, doJSON(t, ts, http.MethodPost, "/referrals", r, nil))
	}

	create := map[string]any{"agent_id": "a-1", "start_date": "2025-03-01", "end_date": "2025-03-31", "boosts": 10, "created_by": "admin"}
	var rep domain.Report
	require.Equal(t, http.StatusCreated, doJSON(t, ts, http.MethodPost, "/reports", create, &rep))
	assert.Equal(t, "Anna", rep.AgentName)
	assert.Equal(t, 1, rep.Computed.ListingsCount)
	assert.Equal(t, 1, rep.Computed.SalesCount)
	assert.Equal(t, 300000.0, rep.Computed.SalesAmount)
	assert.Equal(t, 2, rep.Computed.ReferralsOnPropertiesCount)
	assert.Equal(t, 7500.0, rep.Computed.ReferralsOnPropertiesCommission)
	assert.Equal(t, 24000.0, rep.Computed.TotalCommission)
	assert.Equal(t, 10.0, rep.Manual.Boosts)

	var conflict map[string]string
	require.Equal(t, http.StatusConflict, doJSON(t, ts, http.MethodPost, "/reports", create, &conflict))
	assert.Equal(t, "conflict", conflict["error"])

	var patched domain.Report
	require.Equal(t, http.StatusOK, doJSON(t, ts, http.MethodPatch, "/reports/"+rep.ID, map[string]any{"boosts": 150, "foo": 999}, &patched))
	assert.Equal(t, 150.0, patched.Manual.Boosts)

	var rates domain.RateSettings
	require.Equal(t, http.StatusOK, doJSON(t, ts, http.MethodPut, "/settings/commission-rates", map[string]any{"referral_external": 3}, &rates))
	assert.Equal(t, 3.0, rates.ReferralExternal)
	assert.Equal(t, 0.5, rates.ReferralInternal)

	var recalculated domain.Report
	require.Equal(t, http.StatusOK, doJSON(t, ts, http.MethodPost, "/reports/"+rep.ID+"/recalculate", nil, &recalculated))
	assert.Equal(t, 10500.0, recalculated.Computed.ReferralsOnPropertiesCommission)
	assert.Equal(t, 150.0, recalculated.Manual.Boosts)
	assert.Equal(t, 1, recalculated.Recalculations)

	var list ReportsListResponse
	require.Equal(t, http.StatusOK, doJSON(t, ts, http.MethodGet, "/reports?agent_ids=a-1,a-9&from=2025-01-01&to=2025-12-31", nil, &list))
	assert.Equal(t, 1, list.Total)
	require.Len(t, list.Items, 1)
	assert.Equal(t, rep.ID, list.Items[0].ID)

	require.Equal(t, http.StatusOK, doJSON(t, ts, http.MethodGet, "/reports?agent_id=a-9", nil, &list))
	assert.Zero(t, list.Total)

	require.Equal(t, http.StatusOK, doJSON(t, ts, http.MethodDelete, "/reports/"+rep.ID, nil, nil))
	assert.Equal(t, http.StatusNotFound, doJSON(t, ts, http.MethodDelete, "/reports/"+rep.ID, nil, nil))
	assert.Equal(t, http.StatusNotFound, doJSON(t, ts, http.MethodGet, "/reports/"+rep.ID, nil, nil))
}

func TestReportErrors(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name string
		body map[string]any
		want int
	}{
		{name: "end before start", body: map[string]any{"agent_id": "a-1", "start_date": "2025-03-31", "end_date": "2025-03-01"}, want: http.StatusBadRequest},
		{name: "before 2000", body: map[string]any{"agent_id": "a-1", "start_date": "1999-01-01", "end_date": "1999-01-31"}, want: http.StatusBadRequest},
		{name: "missing dates", body: map[string]any{"agent_id": "a-1"}, want: http.StatusBadRequest},
		{name: "unknown agent", body: map[string]any{"agent_id": "ghost", "start_date": "2025-03-01", "end_date": "2025-03-31"}, want: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, doJSON(t, ts, http.MethodPost, "/reports", tt.body, nil))
		})
	}

	assert.Equal(t, http.StatusBadRequest, doJSON(t, ts, http.MethodGet, "/reports?from=yesterday", nil, nil))
	assert.Equal(t, http.StatusNotFound, doJSON(t, ts, http.MethodPatch, "/reports/none", map[string]any{"notes": "x"}, nil))
	assert.Equal(t, http.StatusNotFound, doJSON(t, ts, http.MethodPost, "/reports/none/recalculate", nil, nil))
}

func TestRates(t *testing.T) {
	ts := newTestServer(t)

	var got domain.RateSettings
	require.Equal(t, http.StatusOK, doJSON(t, ts, http.MethodGet, "/settings/commission-rates", nil, &got))
	assert.Equal(t, domain.DefaultRateSettings(), got)

	assert.Equal(t, http.StatusBadRequest, doJSON(t, ts, http.MethodPut, "/settings/commission-rates", map[string]any{"agent": -1}, nil))
}
