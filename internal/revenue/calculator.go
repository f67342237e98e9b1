package revenue

import (
	"math"
	"sort"
	"time"

	"github.com/strivefit/engagement-engine/internal/domain"
)

// DefaultTopClients is the ranking size used when the caller does not
// choose one.
const DefaultTopClients = 10

// Calculator computes revenue snapshots against a fixed price table.
// It is stateless apart from the table and safe for concurrent use.
type Calculator struct {
	prices PriceTable
}

// NewCalculator returns a calculator over the given price table, or the
// default table when nil is passed.
func NewCalculator(prices PriceTable) *Calculator {
	if prices == nil {
		prices = DefaultPrices()
	}
	return &Calculator{prices: prices}
}

// Snapshot computes the full revenue rollup for a lookback period of
// lookbackMonths (0 means uncapped lifetime). A client on a tier missing
// from the price table, or with no join date, yields an
// InvalidRecordError: revenue math is meaningless without both.
func (c *Calculator) Snapshot(clients []domain.Client, lookbackMonths, topN int, now time.Time) (*domain.RevenueSnapshot, error) {
	if topN <= 0 {
		topN = DefaultTopClients
	}

	snap := &domain.RevenueSnapshot{ComputedAt: now}
	perTier := make(map[domain.SubscriptionTier]*domain.TierRevenue)

	var mrr float64
	for _, cl := range clients {
		price, ok := c.prices[cl.Tier]
		if !ok {
			return nil, &domain.InvalidRecordError{ClientID: cl.ID, Field: "tier", Reason: "not in price table"}
		}
		if cl.CreatedAt.IsZero() {
			return nil, &domain.InvalidRecordError{ClientID: cl.ID, Field: "created_at", Reason: "missing"}
		}

		months := monthsSubscribed(cl.CreatedAt, lookbackMonths, now)
		cr := domain.ClientRevenue{
			ClientID:      cl.ID,
			ClientName:    cl.FullName,
			Tier:          cl.Tier,
			JoinedAt:      cl.CreatedAt,
			MonthlyValue:  price,
			LifetimeValue: round2(price * float64(months)),
		}
		snap.Clients = append(snap.Clients, cr)
		snap.TotalRevenue += cr.LifetimeValue
		mrr += price

		tr, ok := perTier[cl.Tier]
		if !ok {
			tr = &domain.TierRevenue{Tier: cl.Tier}
			perTier[cl.Tier] = tr
		}
		tr.Count++
		tr.Revenue += cr.LifetimeValue
	}

	snap.TotalRevenue = round2(snap.TotalRevenue)
	snap.MRR = round2(mrr)
	snap.ProjectedARR = round2(mrr * 12)
	if len(clients) > 0 {
		snap.AverageRPC = round2(snap.TotalRevenue / float64(len(clients)))
	}

	// Tier breakdown in ascending price order; every tier is reported
	// even when empty so dashboards get a stable shape.
	for _, tier := range domain.Tiers {
		tr := perTier[tier]
		if tr == nil {
			tr = &domain.TierRevenue{Tier: tier}
		}
		tr.Revenue = round2(tr.Revenue)
		if tr.Count > 0 {
			tr.AvgRPC = round2(tr.Revenue / float64(tr.Count))
		}
		snap.ByTier = append(snap.ByTier, *tr)
	}

	// Stable per-client listing for callers that render the whole table.
	sort.Slice(snap.Clients, func(i, j int) bool {
		return snap.Clients[i].ClientID < snap.Clients[j].ClientID
	})

	snap.TopClients = topByLifetime(snap.Clients, topN)
	return snap, nil
}

// monthsSubscribed counts billing months since join: at least one, and
// capped by the lookback window when the join predates it.
func monthsSubscribed(joined time.Time, lookbackMonths int, now time.Time) int {
	days := int(now.Sub(joined).Hours() / 24)
	months := days / 30
	if months < 1 {
		months = 1
	}
	if lookbackMonths > 0 && months > lookbackMonths {
		months = lookbackMonths
	}
	return months
}

// topByLifetime ranks clients by lifetime value descending, breaking
// ties by earlier join date, then ID for full determinism.
func topByLifetime(clients []domain.ClientRevenue, n int) []domain.ClientRevenue {
	ranked := make([]domain.ClientRevenue, len(clients))
	copy(ranked, clients)
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].LifetimeValue != ranked[j].LifetimeValue {
			return ranked[i].LifetimeValue > ranked[j].LifetimeValue
		}
		if !ranked[i].JoinedAt.Equal(ranked[j].JoinedAt) {
			return ranked[i].JoinedAt.Before(ranked[j].JoinedAt)
		}
		return ranked[i].ClientID < ranked[j].ClientID
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
