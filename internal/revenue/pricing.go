// Package revenue rolls subscription tiers and join dates up into
// per-client and aggregate monetary figures: total revenue, revenue per
// client, MRR, and projected ARR.
package revenue

import (
	"github.com/strivefit/engagement-engine/internal/domain"
)

// PriceTable maps each subscription tier to its monthly price in USD.
type PriceTable map[domain.SubscriptionTier]float64

// DefaultPrices returns the platform's standard tier pricing. The base
// tier is free; paid tiers ascend.
func DefaultPrices() PriceTable {
	return PriceTable{
		domain.TierBase:    0,
		domain.TierPremium: 9.99,
		domain.TierPro:     19.99,
		domain.TierElite:   29.99,
	}
}

// Valid reports whether every known tier has a price. A table missing a
// tier would turn valid client records into InvalidRecordErrors.
func (p PriceTable) Valid() bool {
	for _, tier := range domain.Tiers {
		if _, ok := p[tier]; !ok {
			return false
		}
	}
	return true
}
