package revenue

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/strivefit/engagement-engine/internal/domain"
)

var testNow = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

func client(id string, tier domain.SubscriptionTier, joinedDaysAgo int) domain.Client {
	return domain.Client{
		ID:        id,
		FullName:  "Client " + id,
		Tier:      tier,
		CreatedAt: testNow.AddDate(0, 0, -joinedDaysAgo),
	}
}

func TestSnapshotThreePremiumClients(t *testing.T) {
	// Scenario: 3 premium clients at $9.99, each subscribed 2 months.
	clients := []domain.Client{
		client("a", domain.TierPremium, 60),
		client("b", domain.TierPremium, 60),
		client("c", domain.TierPremium, 60),
	}

	snap, err := NewCalculator(nil).Snapshot(clients, 12, 10, testNow)
	require.NoError(t, err)

	assert.Equal(t, 29.97, snap.MRR)
	assert.Equal(t, 359.64, snap.ProjectedARR)
	assert.Equal(t, 59.94, snap.TotalRevenue) // 2 months each
	assert.Equal(t, 19.98, snap.AverageRPC)
}

func TestSnapshotZeroClients(t *testing.T) {
	snap, err := NewCalculator(nil).Snapshot(nil, 12, 10, testNow)
	require.NoError(t, err)

	assert.Equal(t, 0.0, snap.AverageRPC, "average RPC for zero clients is 0, never a division error")
	assert.Equal(t, 0.0, snap.TotalRevenue)
	assert.Equal(t, 0.0, snap.MRR)
	require.Len(t, snap.ByTier, 4, "tier breakdown keeps a stable shape")
	assert.Empty(t, snap.TopClients)
}

func TestMonthsSubscribed(t *testing.T) {
	tests := []struct {
		name     string
		daysAgo  int
		lookback int
		want     int
	}{
		{"brand new counts as one month", 3, 12, 1},
		{"29 days still one month", 29, 12, 1},
		{"60 days is two months", 60, 12, 2},
		{"long tenure capped by lookback", 900, 6, 6},
		{"uncapped when lookback is zero", 900, 0, 30},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := monthsSubscribed(testNow.AddDate(0, 0, -tt.daysAgo), tt.lookback, testNow)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSnapshotTierBreakdown(t *testing.T) {
	clients := []domain.Client{
		client("a", domain.TierElite, 90),   // 3 months * 29.99
		client("b", domain.TierPremium, 30), // 1 month * 9.99
		client("c", domain.TierPremium, 90), // 3 months * 9.99
		client("d", domain.TierBase, 400),   // free
	}

	snap, err := NewCalculator(nil).Snapshot(clients, 12, 10, testNow)
	require.NoError(t, err)
	require.Len(t, snap.ByTier, 4)

	byTier := make(map[domain.SubscriptionTier]domain.TierRevenue)
	for _, tr := range snap.ByTier {
		byTier[tr.Tier] = tr
	}

	assert.Equal(t, 1, byTier[domain.TierBase].Count)
	assert.Equal(t, 0.0, byTier[domain.TierBase].Revenue)
	assert.Equal(t, 2, byTier[domain.TierPremium].Count)
	assert.Equal(t, 39.96, byTier[domain.TierPremium].Revenue)
	assert.Equal(t, 19.98, byTier[domain.TierPremium].AvgRPC)
	assert.Equal(t, 89.97, byTier[domain.TierElite].Revenue)
	assert.Equal(t, 0, byTier[domain.TierPro].Count)
}

func TestSnapshotTopClientsRanking(t *testing.T) {
	clients := []domain.Client{
		client("newer", domain.TierPro, 60),
		client("older", domain.TierPro, 61), // same 2 billed months, earlier join
		client("whale", domain.TierElite, 180),
		client("free", domain.TierBase, 500),
	}

	snap, err := NewCalculator(nil).Snapshot(clients, 12, 3, testNow)
	require.NoError(t, err)
	require.Len(t, snap.TopClients, 3)

	assert.Equal(t, "whale", snap.TopClients[0].ClientID)
	assert.Equal(t, "older", snap.TopClients[1].ClientID, "ties break to the earlier join date")
	assert.Equal(t, "newer", snap.TopClients[2].ClientID)
}

func TestSnapshotUnknownTier(t *testing.T) {
	bad := client("x", "platinum", 30)
	_, err := NewCalculator(nil).Snapshot([]domain.Client{bad}, 12, 10, testNow)

	var invalid *domain.InvalidRecordError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, "x", invalid.ClientID)
	assert.Equal(t, "tier", invalid.Field)
}

func TestSnapshotMissingJoinDate(t *testing.T) {
	bad := domain.Client{ID: "y", Tier: domain.TierPremium}
	_, err := NewCalculator(nil).Snapshot([]domain.Client{bad}, 12, 10, testNow)

	var invalid *domain.InvalidRecordError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, "created_at", invalid.Field)
}

func TestSnapshotIdempotent(t *testing.T) {
	clients := []domain.Client{
		client("a", domain.TierElite, 45),
		client("b", domain.TierPremium, 10),
	}
	calc := NewCalculator(nil)

	first, err := calc.Snapshot(clients, 6, 5, testNow)
	require.NoError(t, err)
	second, err := calc.Snapshot(clients, 6, 5, testNow)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
