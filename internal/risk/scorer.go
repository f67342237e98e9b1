package risk

import (
	"time"

	"github.com/google/uuid"
	"github.com/strivefit/engagement-engine/internal/domain"
	"github.com/strivefit/engagement-engine/internal/engagement"
)

// Factor caps. The caps sum to 100 so the clamped composite score stays
// a percentage.
const (
	maxRecency      = 40
	maxFrequency    = 30
	maxTrend        = 20
	maxGoalProgress = 10
)

// Window constants shared with cohort analysis: "active" there means at
// least one event inside the recency window here.
const (
	RecencyWindow   = 14 * 24 * time.Hour
	frequencyWindow = 30
	trendWindowDays = 14
)

// assessmentNamespace seeds deterministic assessment IDs. Identical
// snapshots scored at an identical now must produce identical output, so
// IDs are name-based rather than random.
var assessmentNamespace = uuid.MustParse("8f1f54d2-5a30-4b88-9c37-1de2e6a51f0d")

// Score assesses one client's churn risk from their activity timeline and
// active goal (nil when the client has none). The caller passes a single
// captured now; every window in the assessment derives from it.
func Score(client domain.Client, tl engagement.Timeline, goal *domain.Goal, now time.Time) domain.RiskAssessment {
	factors := domain.RiskFactors{
		Recency:      recencyFactor(tl, now),
		Frequency:    frequencyFactor(tl, now),
		Trend:        trendFactor(tl, now),
		GoalProgress: goalFactor(goal),
	}

	score := factors.Total()
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return domain.RiskAssessment{
		ID:         uuid.NewSHA1(assessmentNamespace, []byte(client.ID+now.UTC().Format(time.RFC3339Nano))).String(),
		ClientID:   client.ID,
		ClientName: client.FullName,
		Email:      client.Email,
		Score:      score,
		Tier:       domain.RiskTierForScore(score),
		Factors:    factors,
		ComputedAt: now,
	}
}

// recencyFactor scores days since the most recent event. A client with no
// events at all is maximally flagged regardless of join date: assume
// disengaged until proven otherwise. Brackets are inclusive on the lower
// bound, so exactly 14 days is not yet in the >14 bracket.
func recencyFactor(tl engagement.Timeline, now time.Time) int {
	last, ok := tl.Last()
	if !ok {
		return maxRecency
	}
	days := now.Sub(last.OccurredAt).Hours() / 24
	switch {
	case days > 14:
		return maxRecency
	case days > 7:
		return 30
	case days > 3:
		return 15
	default:
		return 0
	}
}

// frequencyFactor scores distinct calendar days with at least one event
// in the trailing 30 days.
func frequencyFactor(tl engagement.Timeline, now time.Time) int {
	active := tl.ActiveDays(now.AddDate(0, 0, -frequencyWindow), now)
	switch {
	case active < 5:
		return maxFrequency
	case active < 10:
		return 20
	case active < 15:
		return 10
	default:
		return 0
	}
}

// trendFactor compares the trailing 14 days of activity against the 14
// days before that. An empty prior window contributes 0: there is no
// baseline to regress from.
func trendFactor(tl engagement.Timeline, now time.Time) int {
	mid := now.AddDate(0, 0, -trendWindowDays)
	prior := tl.CountBetween(now.AddDate(0, 0, -2*trendWindowDays), mid)
	if prior == 0 {
		return 0
	}
	current := tl.CountBetween(mid, now)
	ratio := float64(current) / float64(prior)
	switch {
	case ratio < 0.5:
		return maxTrend
	case ratio < 0.75:
		return 10
	default:
		return 0
	}
}

// goalFactor scores progress on the active goal. No active goal is as
// risky as a stalled one. A zero target cannot be divided by; it is
// treated as no progress and awarded the full points.
func goalFactor(goal *domain.Goal) int {
	if goal == nil || goal.Status != domain.GoalActive {
		return maxGoalProgress
	}
	progress := goal.ProgressPercent()
	switch {
	case progress < 25:
		return maxGoalProgress
	case progress < 50:
		return 5
	default:
		return 0
	}
}
