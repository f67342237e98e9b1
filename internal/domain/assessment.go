package domain

import (
	"time"
)

// RiskTier classifies a composite churn-risk score.
type RiskTier string

const (
	RiskNone   RiskTier = "none"
	RiskLow    RiskTier = "low"
	RiskMedium RiskTier = "medium"
	RiskHigh   RiskTier = "high"
)

// RiskTierForScore maps a 0-100 composite score to its tier.
// Boundaries are inclusive on the lower bound: 75 is high, 74 is medium.
func RiskTierForScore(score int) RiskTier {
	switch {
	case score >= 75:
		return RiskHigh
	case score >= 50:
		return RiskMedium
	case score >= 25:
		return RiskLow
	default:
		return RiskNone
	}
}

// RiskFactors is the fixed-shape breakdown of the four score
// contributions. Consumers and tests rely on exactly these named fields;
// never collapse the breakdown to the scalar alone.
type RiskFactors struct {
	Recency      int `json:"recency"`       // 0-40: days since last activity
	Frequency    int `json:"frequency"`     // 0-30: active days in trailing 30
	Trend        int `json:"trend"`         // 0-20: 14d-over-14d decline
	GoalProgress int `json:"goal_progress"` // 0-10: active goal completion
}

// Total sums the four contributions before clamping.
func (f RiskFactors) Total() int {
	return f.Recency + f.Frequency + f.Trend + f.GoalProgress
}

// RiskAssessment is the scored churn-risk output for one client. It is
// derived, never stored canonically, and replaced wholesale on each
// recomputation.
type RiskAssessment struct {
	ID         string      `json:"id"`
	ClientID   string      `json:"client_id"`
	ClientName string      `json:"client_name"`
	Email      string      `json:"email"`
	Score      int         `json:"score"`
	Tier       RiskTier    `json:"tier"`
	Factors    RiskFactors `json:"factors"`
	ComputedAt time.Time   `json:"computed_at"`
}

// Recommendation is a suggested intervention for an at-risk client.
type Recommendation struct {
	Priority int    `json:"priority"` // 1 = act first
	Action   string `json:"action"`
}

// TrendBucket is one fixed-width window of activity counts for trend
// charts. Buckets are emitted oldest-first with no gaps.
type TrendBucket struct {
	Label  string               `json:"label"`
	Start  time.Time            `json:"start"`
	End    time.Time            `json:"end"`
	Count  int                  `json:"count"`
	ByKind map[ActivityKind]int `json:"by_kind,omitempty"`
}

// CohortRow reports retention for the set of clients who joined in the
// same calendar month.
type CohortRow struct {
	CohortMonth   string  `json:"cohort_month"` // "2006-01"
	TotalClients  int     `json:"total_clients"`
	ActiveClients int     `json:"active_clients"`
	RetentionRate float64 `json:"retention_rate"` // percent, 0 for empty cohorts
}

// ClientRevenue is the per-client slice of a revenue snapshot.
type ClientRevenue struct {
	ClientID      string           `json:"client_id"`
	ClientName    string           `json:"client_name"`
	Tier          SubscriptionTier `json:"tier"`
	JoinedAt      time.Time        `json:"joined_at"`
	MonthlyValue  float64          `json:"monthly_value"`
	LifetimeValue float64          `json:"lifetime_value"`
}

// TierRevenue aggregates revenue for one subscription tier.
type TierRevenue struct {
	Tier    SubscriptionTier `json:"tier"`
	Count   int              `json:"count"`
	Revenue float64          `json:"revenue"`
	AvgRPC  float64          `json:"avg_rpc"`
}

// RevenueSnapshot is the full monetary rollup for a lookback period.
type RevenueSnapshot struct {
	TotalRevenue float64         `json:"total_revenue"`
	AverageRPC   float64         `json:"average_rpc"`
	MRR          float64         `json:"mrr"`
	ProjectedARR float64         `json:"projected_arr"`
	ByTier       []TierRevenue   `json:"by_tier"`
	TopClients   []ClientRevenue `json:"top_clients"`
	Clients      []ClientRevenue `json:"clients"`
	ComputedAt   time.Time       `json:"computed_at"`
}
