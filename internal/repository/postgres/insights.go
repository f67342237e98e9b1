// Package postgres implements the insights repository against the
// platform's relational store.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/strivefit/engagement-engine/internal/domain"
	"github.com/strivefit/engagement-engine/internal/service/insights"
)

// InsightsRepo implements insights.Repository against PostgreSQL. The
// three activity kinds live in separate log tables written by the
// logging features; this repo fetches each and tags the kind, and the
// aggregator merges them.
type InsightsRepo struct{ db *sql.DB }

// NewInsightsRepo creates a Postgres-backed insights repository.
func NewInsightsRepo(db *sql.DB) *InsightsRepo { return &InsightsRepo{db: db} }

// eventSources maps each activity kind to the log table and timestamp
// column it is recorded in.
var eventSources = []struct {
	kind   domain.ActivityKind
	table  string
	column string
}{
	{domain.KindMeal, "meal_logs", "logged_at"},
	{domain.KindWorkout, "workout_logs", "logged_at"},
	{domain.KindHydration, "hydration_logs", "logged_at"},
}

func (r *InsightsRepo) ListClients(ctx context.Context) ([]domain.Client, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, COALESCE(full_name,''), COALESCE(email,''), tier, created_at
		FROM clients
		ORDER BY created_at, id
	`)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()

	var out []domain.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *InsightsRepo) GetClient(ctx context.Context, id string) (*domain.Client, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, COALESCE(full_name,''), COALESCE(email,''), tier, created_at
		FROM clients
		WHERE id = $1
	`, id)

	c, err := scanClient(row)
	if err == sql.ErrNoRows {
		return nil, insights.ErrClientNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get client: %w", err)
	}
	return &c, nil
}

func (r *InsightsRepo) ListEvents(ctx context.Context, since time.Time) (map[string][]domain.ActivityEvent, error) {
	out := make(map[string][]domain.ActivityEvent)
	for _, src := range eventSources {
		q := fmt.Sprintf(`SELECT client_id, %s FROM %s WHERE %s >= $1`, src.column, src.table, src.column)
		rows, err := r.db.QueryContext(ctx, q, since)
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", src.table, err)
		}
		if err := appendEvents(rows, src.kind, out); err != nil {
			return nil, fmt.Errorf("scan %s: %w", src.table, err)
		}
	}
	return out, nil
}

func (r *InsightsRepo) ListClientEvents(ctx context.Context, clientID string, since time.Time) ([]domain.ActivityEvent, error) {
	byClient := make(map[string][]domain.ActivityEvent)
	for _, src := range eventSources {
		q := fmt.Sprintf(`SELECT client_id, %s FROM %s WHERE client_id = $1 AND %s >= $2`,
			src.column, src.table, src.column)
		rows, err := r.db.QueryContext(ctx, q, clientID, since)
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", src.table, err)
		}
		if err := appendEvents(rows, src.kind, byClient); err != nil {
			return nil, fmt.Errorf("scan %s: %w", src.table, err)
		}
	}
	return byClient[clientID], nil
}

func (r *InsightsRepo) ListActiveGoals(ctx context.Context) (map[string][]domain.Goal, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT client_id, goal_type, COALESCE(target_value,0), COALESCE(current_value,0),
		       status, created_at, target_date, completed_at
		FROM goals
		WHERE status = 'active'
	`)
	if err != nil {
		return nil, fmt.Errorf("list active goals: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]domain.Goal)
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		out[g.ClientID] = append(out[g.ClientID], g)
	}
	return out, rows.Err()
}

func (r *InsightsRepo) ListClientGoals(ctx context.Context, clientID string) ([]domain.Goal, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT client_id, goal_type, COALESCE(target_value,0), COALESCE(current_value,0),
		       status, created_at, target_date, completed_at
		FROM goals
		WHERE client_id = $1
	`, clientID)
	if err != nil {
		return nil, fmt.Errorf("list client goals: %w", err)
	}
	defer rows.Close()

	var out []domain.Goal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanClient reads a client row. A NULL created_at scans to the zero
// time and is deliberately not defaulted here: revenue and cohort math
// reject it with a typed error instead of silently misbilling.
func scanClient(row rowScanner) (domain.Client, error) {
	var c domain.Client
	var created sql.NullTime
	if err := row.Scan(&c.ID, &c.FullName, &c.Email, &c.Tier, &created); err != nil {
		return domain.Client{}, err
	}
	if created.Valid {
		c.CreatedAt = created.Time
	}
	return c, nil
}

func scanGoal(row rowScanner) (domain.Goal, error) {
	var g domain.Goal
	var targetDate, completedAt sql.NullTime
	if err := row.Scan(&g.ClientID, &g.GoalType, &g.TargetValue, &g.CurrentValue,
		&g.Status, &g.CreatedAt, &targetDate, &completedAt); err != nil {
		return domain.Goal{}, fmt.Errorf("scan goal: %w", err)
	}
	if targetDate.Valid {
		g.TargetDate = &targetDate.Time
	}
	if completedAt.Valid {
		g.CompletedAt = &completedAt.Time
	}
	return g, nil
}

func appendEvents(rows *sql.Rows, kind domain.ActivityKind, out map[string][]domain.ActivityEvent) error {
	defer rows.Close()
	for rows.Next() {
		var e domain.ActivityEvent
		if err := rows.Scan(&e.ClientID, &e.OccurredAt); err != nil {
			return err
		}
		e.Kind = kind
		out[e.ClientID] = append(out[e.ClientID], e)
	}
	return rows.Err()
}
