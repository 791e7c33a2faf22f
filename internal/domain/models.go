package domain

import (
	"context"
	"strings"
	"time"
)

type SubjectType string

const (
	SubjectProperty SubjectType = "property"
	SubjectLead     SubjectType = "lead"
)

// Subject is a property or lead capable of receiving referrals.
type Subject struct {
	Type SubjectType `json:"type"`
	ID   string      `json:"id"`
}

func (s Subject) String() string { return string(s.Type) + ":" + s.ID }

func (t SubjectType) Valid() bool {
	return t == SubjectProperty || t == SubjectLead
}

type ReferralKind string

const (
	KindEmployee ReferralKind = "employee"
	KindCustom   ReferralKind = "custom"
)

type ReferralStatus string

const (
	StatusPending   ReferralStatus = "pending"
	StatusConfirmed ReferralStatus = "confirmed"
	StatusRejected  ReferralStatus = "rejected"
)

func (s ReferralStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusRejected:
		return true
	}
	return false
}

type Referral struct {
	ID          string         `json:"id"`
	Subject     Subject        `json:"subject"`
	ReferrerID  string         `json:"referrer_id"`
	DisplayName string         `json:"display_name"`
	Kind        ReferralKind   `json:"kind"`
	Date        time.Time      `json:"date"`
	External    bool           `json:"external"`
	Status      ReferralStatus `json:"status"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// RateSettings holds commission percentages (2 means 2%).
type RateSettings struct {
	Agent            float64 `json:"agent"`
	Finders          float64 `json:"finders"`
	ReferralInternal float64 `json:"referral_internal"`
	ReferralExternal float64 `json:"referral_external"`
	TeamLeader       float64 `json:"team_leader"`
	Administration   float64 `json:"administration"`
}

// DefaultRateSettings returns the fallback percentages used for any missing setting.
func DefaultRateSettings() RateSettings {
	return RateSettings{
		Agent:            2,
		Finders:          1,
		ReferralInternal: 0.5,
		ReferralExternal: 2,
		TeamLeader:       1,
		Administration:   4,
	}
}

// SaleRecord is a closed deal on a property or lead. Owned by the CRM.
type SaleRecord struct {
	Subject      Subject   `json:"subject"`
	Price        float64   `json:"price"`
	ClosedDate   time.Time `json:"closed_date"`
	Status       string    `json:"status"`
	OwnerAgentID string    `json:"owner_agent_id"`
}

type Agent struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// FinalizedSaleStatuses are matched case-insensitively against status code or name.
var FinalizedSaleStatuses = []string{"sold", "rented", "closed"}

func IsFinalizedStatus(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, f := range FinalizedSaleStatuses {
		if s == f {
			return true
		}
	}
	return false
}

// SubjectLedger is the ledger scoped to one subject within a single atomic unit.
type SubjectLedger interface {
	ListBySubject(ctx context.Context) ([]Referral, error)
	SetExternal(ctx context.Context, id string, external bool) error
}
