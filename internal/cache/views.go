// Package cache persists computed dashboard views in Redis. The cache is
// an optimization only: every view is re-derivable from the store, so a
// miss or a failed write just means the next caller recomputes.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/strivefit/engagement-engine/internal/service/insights"
)

const dashboardKey = "insights:dashboard"

// Views is a Redis-backed insights.ViewCache.
type Views struct {
	client *redis.Client
	ttl    time.Duration
}

// NewViews creates a view cache with the given TTL (0 means 5 minutes).
func NewViews(client *redis.Client, ttl time.Duration) *Views {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Views{client: client, ttl: ttl}
}

// SetDashboard stores the computed view, replacing any previous one.
func (v *Views) SetDashboard(ctx context.Context, view *insights.DashboardView) error {
	data, err := json.Marshal(view)
	if err != nil {
		return fmt.Errorf("marshal dashboard view: %w", err)
	}
	if err := v.client.Set(ctx, dashboardKey, data, v.ttl).Err(); err != nil {
		return fmt.Errorf("cache dashboard view: %w", err)
	}
	return nil
}

// GetDashboard returns the cached view, or nil with no error on a miss.
func (v *Views) GetDashboard(ctx context.Context) (*insights.DashboardView, error) {
	data, err := v.client.Get(ctx, dashboardKey).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read cached dashboard view: %w", err)
	}

	var view insights.DashboardView
	if err := json.Unmarshal(data, &view); err != nil {
		return nil, fmt.Errorf("unmarshal cached dashboard view: %w", err)
	}
	return &view, nil
}
