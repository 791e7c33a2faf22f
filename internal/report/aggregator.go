// Package report aggregates per-agent metrics over a date range and manages the
// lifecycle of persisted reports.
package report

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/denisok6893-rgb/agent-commission-reports/internal/commission"
	"github.com/denisok6893-rgb/agent-commission-reports/internal/domain"
)

// totalTolerance is the largest accepted gap between the stored total and the
// sum of the commission components.
const totalTolerance = 0.01

type Aggregator struct {
	ledger     ReferralLedger
	classifier SubjectClassifier
	activity   ActivitySource
	rates      RatesProvider
	logger     *slog.Logger
}

func NewAggregator(ledger ReferralLedger, classifier SubjectClassifier, activity ActivitySource, rates RatesProvider, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{
		ledger:     ledger,
		classifier: classifier,
		activity:   activity,
		rates:      rates,
		logger:     logger,
	}
}

// Aggregate computes every metric for agentID over the inclusive range
// [start, end]. Nothing is persisted; a cancelled context aborts between steps.
func (a *Aggregator) Aggregate(ctx context.Context, agentID string, start, end time.Time) (domain.ComputedMetrics, error) {
	var m domain.ComputedMetrics
	log := a.logger.With("agent_id", agentID, "start", start.Format(domain.DateLayout), "end", end.Format(domain.DateLayout))

	rates := a.currentRates(ctx, log)

	var err error
	if m.ListingsCount, err = a.activity.CountListings(ctx, agentID, start, end); err != nil {
		return domain.ComputedMetrics{}, err
	}
	if m.LeadSources, err = a.activity.LeadSources(ctx, agentID, start, end); err != nil {
		return domain.ComputedMetrics{}, err
	}
	if m.ViewingsCount, err = a.activity.CountViewings(ctx, agentID, start, end); err != nil {
		return domain.ComputedMetrics{}, err
	}
	if err := ctx.Err(); err != nil {
		return domain.ComputedMetrics{}, err
	}

	owned, err := a.activity.ClosedSalesByOwner(ctx, agentID, start, end)
	if err != nil {
		return domain.ComputedMetrics{}, err
	}
	amount := decimal.Zero
	for _, s := range owned {
		amount = amount.Add(decimal.NewFromFloat(s.Price))
	}
	m.SalesCount = len(owned)
	m.SalesAmount = amount.Round(2).InexactFloat64()
	m.AgentCommission = commission.Percent(m.SalesAmount, rates.Agent)
	m.FindersCommission = commission.Percent(m.SalesAmount, rates.Finders)
	m.TeamLeaderCommission = commission.Percent(m.SalesAmount, rates.TeamLeader)
	m.AdministrationCommission = commission.Percent(m.SalesAmount, rates.Administration)
	if err := ctx.Err(); err != nil {
		return domain.ComputedMetrics{}, err
	}

	given, err := a.givenByAgent(ctx, log, agentID, start, end, rates)
	if err != nil {
		return domain.ComputedMetrics{}, err
	}
	m.ReferralReceivedCount = given.Count
	m.ReferralReceivedCommission = given.Amount()
	m.ReferralCommission = m.ReferralReceivedCommission
	if err := ctx.Err(); err != nil {
		return domain.ComputedMetrics{}, err
	}

	onOwned, err := a.onOwnedSales(ctx, owned, rates)
	if err != nil {
		return domain.ComputedMetrics{}, err
	}
	m.ReferralsOnPropertiesCount = onOwned.Count
	m.ReferralsOnPropertiesCommission = onOwned.Amount()

	m.TotalCommission = commission.Round2(m.AgentCommission + m.FindersCommission + m.ReferralCommission +
		m.TeamLeaderCommission + m.AdministrationCommission)
	if check := commission.Sum(m.CommissionComponents()...); math.Abs(check-m.TotalCommission) > totalTolerance {
		log.Warn("total commission mismatch, using recomputed sum", "total", m.TotalCommission, "recomputed", check)
		m.TotalCommission = check
	}
	return m, nil
}

func (a *Aggregator) currentRates(ctx context.Context, log *slog.Logger) domain.RateSettings {
	rates, err := a.rates.Rates(ctx)
	if err != nil {
		log.Warn("rate settings unavailable, using defaults", "error", err)
		return domain.DefaultRateSettings()
	}
	return rates
}

// givenByAgent sums the referrals the agent handed off on sales that closed in
// range, whoever owns them. Affected subjects are reclassified first.
func (a *Aggregator) givenByAgent(ctx context.Context, log *slog.Logger, agentID string, start, end time.Time, rates domain.RateSettings) (commission.Tally, error) {
	var tally commission.Tally

	handed, err := a.ledger.ListByReferrer(ctx, agentID)
	if err != nil {
		return tally, fmt.Errorf("list referrals given by %s: %w", agentID, err)
	}
	if len(handed) == 0 {
		return tally, nil
	}

	sales, err := a.activity.ClosedSalesForSubjects(ctx, subjectsOf(handed), start, end)
	if err != nil {
		return tally, err
	}
	if len(sales) == 0 {
		return tally, nil
	}
	closed := make([]domain.Subject, 0, len(sales))
	for _, s := range sales {
		closed = append(closed, s.Subject)
	}

	if _, errs := a.classifier.ClassifyAll(ctx, closed); len(errs) > 0 {
		log.Warn("some subjects were not reclassified", "failed", len(errs))
	}
	if err := ctx.Err(); err != nil {
		return tally, err
	}

	// re-read so the flags reflect the classification above
	refs, err := a.ledger.ListBySubjects(ctx, closed)
	if err != nil {
		return tally, fmt.Errorf("list referrals on closed subjects: %w", err)
	}
	price := pricesOf(sales)
	for _, r := range refs {
		if r.ReferrerID != agentID || r.Status == domain.StatusRejected {
			continue
		}
		tally.Add(price[r.Subject], r.External, rates)
	}
	return tally, nil
}

// onOwnedSales sums every referral, by any referrer, placed on the agent's own
// closed sales.
func (a *Aggregator) onOwnedSales(ctx context.Context, owned []domain.SaleRecord, rates domain.RateSettings) (commission.Tally, error) {
	var tally commission.Tally
	if len(owned) == 0 {
		return tally, nil
	}
	subjects := make([]domain.Subject, 0, len(owned))
	for _, s := range owned {
		subjects = append(subjects, s.Subject)
	}
	refs, err := a.ledger.ListBySubjects(ctx, subjects)
	if err != nil {
		return tally, fmt.Errorf("list referrals on owned sales: %w", err)
	}
	price := pricesOf(owned)
	for _, r := range refs {
		if r.Status == domain.StatusRejected {
			continue
		}
		tally.Add(price[r.Subject], r.External, rates)
	}
	return tally, nil
}

func subjectsOf(refs []domain.Referral) []domain.Subject {
	seen := make(map[domain.Subject]struct{}, len(refs))
	out := make([]domain.Subject, 0, len(refs))
	for _, r := range refs {
		if _, ok := seen[r.Subject]; ok {
			continue
		}
		seen[r.Subject] = struct{}{}
		out = append(out, r.Subject)
	}
	return out
}

func pricesOf(sales []domain.SaleRecord) map[domain.Subject]float64 {
	out := make(map[domain.Subject]float64, len(sales))
	for _, s := range sales {
		out[s.Subject] = s.Price
	}
	return out
}
