package cohort

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/strivefit/engagement-engine/internal/domain"
	"github.com/strivefit/engagement-engine/internal/engagement"
)

var testNow = time.Date(2026, 5, 20, 10, 0, 0, 0, time.UTC)

func member(id string, joined time.Time, lastActive *time.Time) Member {
	m := Member{Client: domain.Client{ID: id, Tier: domain.TierBase, CreatedAt: joined}}
	if lastActive != nil {
		m.Timeline = engagement.Aggregate([]domain.ActivityEvent{
			{ClientID: id, OccurredAt: *lastActive, Kind: domain.KindWorkout},
		})
	}
	return m
}

func TestRetentionMarchCohort(t *testing.T) {
	// Scenario: 10 clients joined in March, 4 still active.
	joined := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	recent := testNow.AddDate(0, 0, -2)
	stale := testNow.AddDate(0, 0, -30)

	var members []Member
	for i := 0; i < 4; i++ {
		members = append(members, member(fmt.Sprintf("active-%d", i), joined, &recent))
	}
	for i := 0; i < 6; i++ {
		members = append(members, member(fmt.Sprintf("stale-%d", i), joined, &stale))
	}

	rows, err := Retention(members, 6, testNow)
	require.NoError(t, err)
	require.Len(t, rows, 6)

	var march domain.CohortRow
	for _, r := range rows {
		if r.CohortMonth == "2026-03" {
			march = r
		}
	}
	assert.Equal(t, 10, march.TotalClients)
	assert.Equal(t, 4, march.ActiveClients)
	assert.InDelta(t, 40.0, march.RetentionRate, 1e-9)
}

func TestRetentionEmptyCohortIsZeroNotNaN(t *testing.T) {
	rows, err := Retention(nil, 3, testNow)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	for _, r := range rows {
		assert.Equal(t, 0, r.TotalClients)
		assert.Equal(t, 0.0, r.RetentionRate)
	}
}

func TestRetentionOrderedOldestFirst(t *testing.T) {
	rows, err := Retention(nil, 6, testNow)
	require.NoError(t, err)
	require.Len(t, rows, 6)
	assert.Equal(t, "2025-12", rows[0].CohortMonth)
	assert.Equal(t, "2026-05", rows[5].CohortMonth)
	for i := 1; i < len(rows); i++ {
		assert.Less(t, rows[i-1].CohortMonth, rows[i].CohortMonth)
	}
}

func TestRetentionDefaultsLookback(t *testing.T) {
	rows, err := Retention(nil, 0, testNow)
	require.NoError(t, err)
	assert.Len(t, rows, DefaultMonths)
}

func TestRetentionClientWithNoEventsIsInactive(t *testing.T) {
	joined := time.Date(2026, 5, 2, 0, 0, 0, 0, time.UTC)
	rows, err := Retention([]Member{member("ghost", joined, nil)}, 1, testNow)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 1, rows[0].TotalClients)
	assert.Equal(t, 0, rows[0].ActiveClients)
	assert.Equal(t, 0.0, rows[0].RetentionRate)
}

func TestRetentionMissingJoinDate(t *testing.T) {
	_, err := Retention([]Member{{Client: domain.Client{ID: "x"}}}, 3, testNow)

	var invalid *domain.InvalidRecordError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, "created_at", invalid.Field)
}

func TestRetentionMonthSteppingFromLateMonthNow(t *testing.T) {
	// March 31: naive month subtraction would land on Feb 31 -> Mar 3 and
	// emit March twice.
	lateNow := time.Date(2026, 3, 31, 23, 0, 0, 0, time.UTC)
	rows, err := Retention(nil, 3, lateNow)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "2026-01", rows[0].CohortMonth)
	assert.Equal(t, "2026-02", rows[1].CohortMonth)
	assert.Equal(t, "2026-03", rows[2].CohortMonth)
}
