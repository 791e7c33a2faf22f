package commission

import (
	"context"
	"sync"
	"time"

	"github.com/denisok6893-rgb/agent-commission-reports/internal/domain"
)

// RatesProvider supplies the commission rate settings in effect right now.
type RatesProvider interface {
	Rates(ctx context.Context) (domain.RateSettings, error)
}

// StaticRates always returns the same settings.
type StaticRates domain.RateSettings

func (s StaticRates) Rates(context.Context) (domain.RateSettings, error) {
	return domain.RateSettings(s), nil
}

// CachedRates wraps a provider and reuses its last successful answer for ttl.
type CachedRates struct {
	next RatesProvider
	ttl  time.Duration
	now  func() time.Time

	mu      sync.Mutex
	rates   domain.RateSettings
	fetched time.Time
	valid   bool
}

func NewCachedRates(next RatesProvider, ttl time.Duration) *CachedRates {
	return &CachedRates{next: next, ttl: ttl, now: time.Now}
}

func (c *CachedRates) Rates(ctx context.Context) (domain.RateSettings, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.valid && c.now().Sub(c.fetched) < c.ttl {
		return c.rates, nil
	}
	r, err := c.next.Rates(ctx)
	if err != nil {
		return r, err
	}
	c.rates, c.fetched, c.valid = r, c.now(), true
	return r, nil
}

// Invalidate drops the cached answer, e.g. after the settings were changed.
func (c *CachedRates) Invalidate() {
	c.mu.Lock()
	c.valid = false
	c.mu.Unlock()
}
