package commission

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/denisok6893-rgb/agent-commission-reports/internal/domain"
)

// LoadRatesFromFile reads rate settings from a JSON object. Rates missing from
// the file keep their defaults; on error the defaults are returned with it.
func LoadRatesFromFile(path string) (domain.RateSettings, error) {
	r := domain.DefaultRateSettings()
	b, err := os.ReadFile(path)
	if err != nil {
		return r, fmt.Errorf("read rates file: %w", err)
	}
	if err := json.Unmarshal(b, &r); err != nil {
		return domain.DefaultRateSettings(), fmt.Errorf("unmarshal rates: %w", err)
	}
	return r, nil
}
