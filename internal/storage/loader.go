package storage

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/denisok6893-rgb/agent-commission-reports/internal/domain"
)

// LoadReferralsFromFile reads a JSON array of referral hand-offs, as exported by
// the CRM, for a one-off import.
func LoadReferralsFromFile(path string) ([]domain.Referral, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read referrals file: %w", err)
	}

	var items []domain.Referral
	if err := json.Unmarshal(b, &items); err != nil {
		return nil, fmt.Errorf("unmarshal referrals: %w", err)
	}
	for i, r := range items {
		if r.Subject.ID == "" || !r.Subject.Type.Valid() {
			return nil, fmt.Errorf("referral %d: invalid subject %q", i, r.Subject)
		}
		if r.Date.IsZero() {
			return nil, fmt.Errorf("referral %d: missing date", i)
		}
	}
	return items, nil
}
