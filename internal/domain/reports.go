package domain

import "time"

// DateLayout is the wire and storage format of report range boundaries.
const DateLayout = "2006-01-02"

// ComputedMetrics holds every report field produced by aggregation.
// It is always overwritten as a whole on recalculation.
type ComputedMetrics struct {
	ListingsCount int     `json:"listings_count"`
	ViewingsCount int     `json:"viewings_count"`
	SalesCount    int     `json:"sales_count"`
	SalesAmount   float64 `json:"sales_amount"`

	AgentCommission          float64 `json:"agent_commission"`
	FindersCommission        float64 `json:"finders_commission"`
	ReferralCommission       float64 `json:"referral_commission"`
	TeamLeaderCommission     float64 `json:"team_leader_commission"`
	AdministrationCommission float64 `json:"administration_commission"`

	LeadSources map[string]int `json:"lead_sources"`

	ReferralReceivedCount      int     `json:"referral_received_count"`
	ReferralReceivedCommission float64 `json:"referral_received_commission"`

	ReferralsOnPropertiesCount      int     `json:"referrals_on_properties_count"`
	ReferralsOnPropertiesCommission float64 `json:"referrals_on_properties_commission"`

	TotalCommission float64 `json:"total_commission"`
}

// CommissionComponents returns the five fields that make up TotalCommission.
func (m ComputedMetrics) CommissionComponents() []float64 {
	return []float64{
		m.AgentCommission,
		m.FindersCommission,
		m.ReferralCommission,
		m.TeamLeaderCommission,
		m.AdministrationCommission,
	}
}

// ManualOverrides are admin-edited fields that survive recalculation.
type ManualOverrides struct {
	Boosts float64 `json:"boosts"`
	Notes  string  `json:"notes"`
}

type Report struct {
	ID        string    `json:"id"`
	AgentID   string    `json:"agent_id"`
	AgentName string    `json:"agent_name"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`

	// Legacy rows predate explicit ranges and only carry a year and an optional month.
	LegacyYear  int `json:"legacy_year,omitempty"`
	LegacyMonth int `json:"legacy_month,omitempty"`

	Computed       ComputedMetrics `json:"computed"`
	Manual         ManualOverrides `json:"manual"`
	Recalculations int             `json:"recalculations"`

	CreatedBy  string     `json:"created_by"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	ComputedAt *time.Time `json:"computed_at,omitempty"`
}

// Period returns the inclusive range the report covers, deriving it from the
// legacy year/month columns when no explicit range was stored.
func (r Report) Period() (start, end time.Time, ok bool) {
	if !r.StartDate.IsZero() && !r.EndDate.IsZero() {
		return r.StartDate, r.EndDate, true
	}
	if r.LegacyYear == 0 {
		return time.Time{}, time.Time{}, false
	}
	if r.LegacyMonth == 0 {
		start = time.Date(r.LegacyYear, time.January, 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(1, 0, -1), true
	}
	start = time.Date(r.LegacyYear, time.Month(r.LegacyMonth), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, -1), true
}

// ReportFilter is applied conjunctively. Zero values are ignored.
type ReportFilter struct {
	AgentID  string
	AgentIDs []string
	From     *time.Time
	To       *time.Time
}
