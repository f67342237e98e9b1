package domain

import (
	"time"
)

// SubscriptionTier enumerates the billable plan levels a client can be on.
type SubscriptionTier string

const (
	TierBase    SubscriptionTier = "base"
	TierPremium SubscriptionTier = "premium"
	TierPro     SubscriptionTier = "pro"
	TierElite   SubscriptionTier = "elite"
)

// Tiers lists all known tiers in ascending price order.
var Tiers = []SubscriptionTier{TierBase, TierPremium, TierPro, TierElite}

// Client represents a coached client. Identity fields are immutable; only
// the subscription tier changes over time, and revenue math uses the
// current tier.
type Client struct {
	ID        string           `json:"id" db:"id"`
	FullName  string           `json:"full_name" db:"full_name"`
	Email     string           `json:"email" db:"email"`
	Tier      SubscriptionTier `json:"tier" db:"tier"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`
}

// JoinMonth returns the calendar month the client joined in, formatted
// as "2006-01". Cohort grouping keys on this value.
func (c Client) JoinMonth() string {
	return c.CreatedAt.Format("2006-01")
}

// ActivityKind enumerates the event types the logging features produce.
type ActivityKind string

const (
	KindMeal      ActivityKind = "meal"
	KindWorkout   ActivityKind = "workout"
	KindHydration ActivityKind = "hydration"
)

// ActivityEvent is a single logged action by a client. Events are
// append-only and produced outside this engine.
type ActivityEvent struct {
	ClientID   string       `json:"client_id" db:"client_id"`
	OccurredAt time.Time    `json:"occurred_at" db:"occurred_at"`
	Kind       ActivityKind `json:"kind" db:"kind"`
}

// GoalStatus enumerates goal lifecycle states.
type GoalStatus string

const (
	GoalActive    GoalStatus = "active"
	GoalCompleted GoalStatus = "completed"
)

// Goal is a measurable target a client is working toward. A client has at
// most one active goal per goal type at a time; the engine assumes but
// does not enforce that invariant.
type Goal struct {
	ClientID     string     `json:"client_id" db:"client_id"`
	GoalType     string     `json:"goal_type" db:"goal_type"`
	TargetValue  float64    `json:"target_value" db:"target_value"`
	CurrentValue float64    `json:"current_value" db:"current_value"`
	Status       GoalStatus `json:"status" db:"status"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	TargetDate   *time.Time `json:"target_date" db:"target_date"`
	CompletedAt  *time.Time `json:"completed_at" db:"completed_at"`
}

// ProgressPercent returns completion as a percentage of the target.
// A zero target yields 0 rather than dividing by zero.
func (g Goal) ProgressPercent() float64 {
	if g.TargetValue == 0 {
		return 0
	}
	return g.CurrentValue / g.TargetValue * 100
}
