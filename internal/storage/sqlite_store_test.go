package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/denisok6893-rgb/agent-commission-reports/internal/domain"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "reports.db"))
	require.NoError(t, err)
	require.NoError(t, s.EnsureSchema())
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestReferrals_CreateAndListBySubject(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	subject := domain.Subject{Type: domain.SubjectProperty, ID: "p-1"}

	first, err := s.CreateReferral(ctx, domain.Referral{Subject: subject, ReferrerID: "agent-1", Date: day(2025, 1, 1)})
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, domain.KindEmployee, first.Kind)
	assert.Equal(t, domain.StatusPending, first.Status)

	_, err = s.CreateReferral(ctx, domain.Referral{Subject: subject, DisplayName: "Walk-in", Kind: domain.KindCustom, Date: day(2025, 2, 10)})
	require.NoError(t, err)
	_, err = s.CreateReferral(ctx, domain.Referral{Subject: domain.Subject{Type: domain.SubjectLead, ID: "p-1"}, ReferrerID: "agent-1", Date: day(2025, 3, 1)})
	require.NoError(t, err)

	got, err := s.ListBySubject(ctx, subject)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, day(2025, 2, 10), got[0].Date)
	assert.Equal(t, "Walk-in", got[0].DisplayName)
	assert.Equal(t, first.ID, got[1].ID)
	assert.Equal(t, "agent-1", got[1].ReferrerID)

	byReferrer, err := s.ListByReferrer(ctx, "agent-1")
	require.NoError(t, err)
	assert.Len(t, byReferrer, 2)
}

func TestReferrals_SetExternalStatusAndDelete(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	r, err := s.CreateReferral(ctx, domain.Referral{Subject: domain.Subject{Type: domain.SubjectLead, ID: "l-9"}, ReferrerID: "a", Date: day(2025, 5, 5)})
	require.NoError(t, err)

	require.NoError(t, s.SetExternal(ctx, r.ID, true))
	require.NoError(t, s.SetStatus(ctx, r.ID, domain.StatusConfirmed))
	got, err := s.GetReferral(ctx, r.ID)
	require.NoError(t, err)
	assert.True(t, got.External)
	assert.Equal(t, domain.StatusConfirmed, got.Status)

	require.NoError(t, s.DeleteReferral(ctx, r.ID))
	assert.ErrorIs(t, s.DeleteReferral(ctx, r.ID), domain.ErrNotFound)
	assert.ErrorIs(t, s.SetExternal(ctx, r.ID, false), domain.ErrNotFound)
	_, err = s.GetReferral(ctx, r.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReferrals_ListBySubjects(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	a := domain.Subject{Type: domain.SubjectProperty, ID: "a"}
	b := domain.Subject{Type: domain.SubjectLead, ID: "b"}
	c := domain.Subject{Type: domain.SubjectProperty, ID: "c"}
	for _, sub := range []domain.Subject{a, b, b, c} {
		_, err := s.CreateReferral(ctx, domain.Referral{Subject: sub, ReferrerID: "x", Date: day(2025, 1, 1)})
		require.NoError(t, err)
	}

	got, err := s.ListBySubjects(ctx, []domain.Subject{a, b})
	require.NoError(t, err)
	assert.Len(t, got, 3)

	none, err := s.ListBySubjects(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestInSubjectTx_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	subject := domain.Subject{Type: domain.SubjectProperty, ID: "p-7"}
	r, err := s.CreateReferral(ctx, domain.Referral{Subject: subject, ReferrerID: "a", Date: day(2025, 1, 1)})
	require.NoError(t, err)

	err = s.InSubjectTx(ctx, subject, func(l domain.SubjectLedger) error {
		items, err := l.ListBySubject(ctx)
		require.NoError(t, err)
		require.Len(t, items, 1)
		require.NoError(t, l.SetExternal(ctx, r.ID, true))
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	got, err := s.GetReferral(ctx, r.ID)
	require.NoError(t, err)
	assert.False(t, got.External)
}

func TestImportReferrals_SkipsExistingIDs(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	items := []domain.Referral{
		{ID: "r-1", Subject: domain.Subject{Type: domain.SubjectProperty, ID: "p"}, ReferrerID: "a", Date: day(2025, 1, 1)},
		{ID: "r-2", Subject: domain.Subject{Type: domain.SubjectProperty, ID: "p"}, ReferrerID: "a", Date: day(2025, 1, 2)},
	}
	n, err := s.ImportReferrals(ctx, items)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = s.ImportReferrals(ctx, items)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestLoadReferralsFromFile(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.json")
	require.NoError(t, os.WriteFile(good, []byte(`[
  {"id": "r-1", "subject": {"type": "property", "id": "p-1"}, "referrer_id": "a", "kind": "employee", "date": "2025-01-01T00:00:00Z"}
]`), 0o600))
	items, err := LoadReferralsFromFile(good)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "p-1", items[0].Subject.ID)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`[{"subject": {"type": "house", "id": "x"}, "date": "2025-01-01T00:00:00Z"}]`), 0o600))
	_, err = LoadReferralsFromFile(bad)
	assert.Error(t, err)

	_, err = LoadReferralsFromFile(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestRates_DefaultsAndOverrides(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	got, err := s.Rates(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultRateSettings(), got)

	want := domain.RateSettings{Agent: 3, Finders: 1.5, ReferralInternal: 0.75, ReferralExternal: 2.5, TeamLeader: 0.5, Administration: 5}
	require.NoError(t, s.SetRates(ctx, want))
	got, err = s.Rates(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// a broken value falls back to the default for that key only
	_, err = s.db.ExecContext(ctx, `UPDATE settings SET value = 'n/a' WHERE key = ?`, ratePrefix+"agent")
	require.NoError(t, err)
	got, err = s.Rates(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2.0, got.Agent)
	assert.Equal(t, 1.5, got.Finders)

	bad := want
	bad.TeamLeader = -1
	assert.ErrorIs(t, s.SetRates(ctx, bad), domain.ErrValidation)
}
