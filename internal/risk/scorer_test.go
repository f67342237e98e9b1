package risk

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/strivefit/engagement-engine/internal/domain"
	"github.com/strivefit/engagement-engine/internal/engagement"
)

var testNow = time.Date(2026, 4, 15, 12, 0, 0, 0, time.UTC)

func testClient() domain.Client {
	return domain.Client{ID: "c1", FullName: "Ada Mensah", Email: "ada@example.com", Tier: domain.TierPremium,
		CreatedAt: testNow.AddDate(0, -4, 0)}
}

func eventsAt(times ...time.Time) engagement.Timeline {
	evs := make([]domain.ActivityEvent, 0, len(times))
	for _, ts := range times {
		evs = append(evs, domain.ActivityEvent{ClientID: "c1", OccurredAt: ts, Kind: domain.KindWorkout})
	}
	return engagement.Aggregate(evs)
}

// dailyEvents returns one event per day for n consecutive days ending
// the given number of days before now.
func dailyEvents(n, endingDaysAgo int) engagement.Timeline {
	var evs []domain.ActivityEvent
	for i := 0; i < n; i++ {
		ts := testNow.AddDate(0, 0, -(endingDaysAgo + i))
		evs = append(evs, domain.ActivityEvent{ClientID: "c1", OccurredAt: ts, Kind: domain.KindMeal})
	}
	return engagement.Aggregate(evs)
}

func TestScoreColdStartClientIsMaximallyFlagged(t *testing.T) {
	// Scenario A: no events, no goal.
	a := Score(testClient(), nil, nil, testNow)

	assert.Equal(t, 40, a.Factors.Recency, "no events ever scores max recency")
	assert.Equal(t, 30, a.Factors.Frequency, "zero active days")
	assert.Equal(t, 0, a.Factors.Trend, "no baseline to regress from")
	assert.Equal(t, 10, a.Factors.GoalProgress, "no active goal")
	assert.Equal(t, 80, a.Score)
	assert.Equal(t, domain.RiskHigh, a.Tier)
}

func TestScoreFullyEngagedClient(t *testing.T) {
	// Scenario B: 20 distinct active days in the last 30, last event
	// yesterday, stable week-over-week volume, goal at 60%.
	tl := dailyEvents(20, 1)
	goal := &domain.Goal{ClientID: "c1", GoalType: "weight_loss", TargetValue: 10, CurrentValue: 6,
		Status: domain.GoalActive, CreatedAt: testNow.AddDate(0, -1, 0)}

	a := Score(testClient(), tl, goal, testNow)

	assert.Equal(t, domain.RiskFactors{}, a.Factors)
	assert.Equal(t, 0, a.Score)
	assert.Equal(t, domain.RiskNone, a.Tier)
}

func TestRecencyBrackets(t *testing.T) {
	tests := []struct {
		name     string
		lastSeen time.Time
		want     int
	}{
		{"today", testNow.Add(-2 * time.Hour), 0},
		{"three days exactly", testNow.AddDate(0, 0, -3), 0},
		{"four days", testNow.AddDate(0, 0, -4), 15},
		{"seven days exactly", testNow.AddDate(0, 0, -7), 15},
		{"eight days", testNow.AddDate(0, 0, -8), 30},
		{"fourteen days exactly", testNow.AddDate(0, 0, -14), 30},
		{"fifteen days", testNow.AddDate(0, 0, -15), 40},
		{"ninety days", testNow.AddDate(0, 0, -90), 40},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := Score(testClient(), eventsAt(tt.lastSeen), nil, testNow)
			assert.Equal(t, tt.want, a.Factors.Recency)
		})
	}
}

func TestFrequencyBrackets(t *testing.T) {
	tests := []struct {
		activeDays int
		want       int
	}{
		{0, 30}, {4, 30}, {5, 20}, {9, 20}, {10, 10}, {14, 10}, {15, 0}, {25, 0},
	}
	for _, tt := range tests {
		tl := dailyEvents(tt.activeDays, 1)
		a := Score(testClient(), tl, nil, testNow)
		assert.Equal(t, tt.want, a.Factors.Frequency, "active days = %d", tt.activeDays)
	}
}

func TestTrendRequiresBaseline(t *testing.T) {
	// A burst of activity only in the current window: prior window is
	// empty, so trend contributes nothing.
	tl := eventsAt(
		testNow.AddDate(0, 0, -1),
		testNow.AddDate(0, 0, -2),
		testNow.AddDate(0, 0, -3),
	)
	a := Score(testClient(), tl, nil, testNow)
	assert.Equal(t, 0, a.Factors.Trend)
}

func TestTrendDeclineBrackets(t *testing.T) {
	prior := []time.Time{
		testNow.AddDate(0, 0, -16),
		testNow.AddDate(0, 0, -18),
		testNow.AddDate(0, 0, -20),
		testNow.AddDate(0, 0, -22),
	}

	tests := []struct {
		name    string
		current []time.Time
		want    int
	}{
		{"sharp drop below half", []time.Time{testNow.AddDate(0, 0, -1)}, 20},
		{"moderate drop below three quarters", []time.Time{testNow.AddDate(0, 0, -1), testNow.AddDate(0, 0, -2)}, 10},
		{"stable", []time.Time{testNow.AddDate(0, 0, -1), testNow.AddDate(0, 0, -2), testNow.AddDate(0, 0, -4)}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tl := eventsAt(append(append([]time.Time{}, prior...), tt.current...)...)
			a := Score(testClient(), tl, nil, testNow)
			assert.Equal(t, tt.want, a.Factors.Trend)
		})
	}
}

func TestGoalFactor(t *testing.T) {
	active := func(target, current float64) *domain.Goal {
		return &domain.Goal{ClientID: "c1", GoalType: "strength", TargetValue: target, CurrentValue: current,
			Status: domain.GoalActive, CreatedAt: testNow.AddDate(0, -1, 0)}
	}

	tests := []struct {
		name string
		goal *domain.Goal
		want int
	}{
		{"no goal", nil, 10},
		{"completed goal does not count as active", &domain.Goal{Status: domain.GoalCompleted, TargetValue: 10, CurrentValue: 10}, 10},
		{"barely started", active(100, 10), 10},
		{"under half", active(100, 40), 5},
		{"on track", active(100, 60), 0},
		{"zero target must not divide by zero", active(0, 50), 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := Score(testClient(), dailyEvents(20, 1), tt.goal, testNow)
			assert.Equal(t, tt.want, a.Factors.GoalProgress)
		})
	}
}

func TestTierBoundariesAreExact(t *testing.T) {
	assert.Equal(t, domain.RiskMedium, domain.RiskTierForScore(74))
	assert.Equal(t, domain.RiskHigh, domain.RiskTierForScore(75))
	assert.Equal(t, domain.RiskLow, domain.RiskTierForScore(25))
	assert.Equal(t, domain.RiskNone, domain.RiskTierForScore(24))
	assert.Equal(t, domain.RiskMedium, domain.RiskTierForScore(50))
}

func TestScoreWithinBounds(t *testing.T) {
	timelines := []engagement.Timeline{nil, dailyEvents(3, 2), dailyEvents(30, 1), eventsAt(testNow.AddDate(0, 0, -60))}
	for _, tl := range timelines {
		a := Score(testClient(), tl, nil, testNow)
		assert.GreaterOrEqual(t, a.Score, 0)
		assert.LessOrEqual(t, a.Score, 100)
	}
}

func TestOlderActivityNeverLowersRisk(t *testing.T) {
	// Monotonicity: with the rest of the history fixed, aging the most
	// recent event never decreases the composite score.
	baseline := dailyEvents(6, 15) // days 15-20 ago
	prev := -1
	for daysAgo := 0; daysAgo <= 14; daysAgo++ {
		tl := engagement.Aggregate(baseline, eventsAt(testNow.AddDate(0, 0, -daysAgo)))
		a := Score(testClient(), tl, nil, testNow)
		if prev >= 0 {
			assert.GreaterOrEqual(t, a.Score, prev, "score dropped when last activity aged to %d days", daysAgo)
		}
		prev = a.Score
	}
}

func TestScoreDeterministicForIdenticalSnapshot(t *testing.T) {
	tl := dailyEvents(8, 2)
	goal := &domain.Goal{ClientID: "c1", GoalType: "endurance", TargetValue: 50, CurrentValue: 20,
		Status: domain.GoalActive, CreatedAt: testNow.AddDate(0, -2, 0)}

	a := Score(testClient(), tl, goal, testNow)
	b := Score(testClient(), tl, goal, testNow)
	assert.Equal(t, a, b, "identical snapshot and now must yield identical output, IDs included")
}
