package insights

import (
	"context"
	"time"

	"github.com/strivefit/engagement-engine/internal/domain"
)

// Repository defines the data access contract for the engine's input
// snapshot. Implementations must be safe for concurrent use: the service
// fans fetches out in parallel.
//
// Missing collections come back empty, never as an error; NULL numeric
// columns come back as zero. A client with no events or goals is still a
// client to be scored.
type Repository interface {
	// ListClients returns every client. Returns ErrClientNotFound from
	// GetClient, never from here; an empty book is an empty slice.
	ListClients(ctx context.Context) ([]domain.Client, error)

	// GetClient returns one client. Returns ErrClientNotFound if the ID
	// is unknown.
	GetClient(ctx context.Context, id string) (*domain.Client, error)

	// ListEvents returns the union of meal/workout/hydration events since
	// the given time, keyed by client ID. Order within a slice is not
	// guaranteed; the aggregator sorts.
	ListEvents(ctx context.Context, since time.Time) (map[string][]domain.ActivityEvent, error)

	// ListClientEvents is the single-client form of ListEvents.
	ListClientEvents(ctx context.Context, clientID string, since time.Time) ([]domain.ActivityEvent, error)

	// ListActiveGoals returns all goals with active status, keyed by
	// client ID.
	ListActiveGoals(ctx context.Context) (map[string][]domain.Goal, error)

	// ListClientGoals returns one client's goals, all statuses.
	ListClientGoals(ctx context.Context, clientID string) ([]domain.Goal, error)
}

// ViewCache persists computed views as an optional cache. Correctness
// never depends on it: a failed write degrades to a log line.
type ViewCache interface {
	SetDashboard(ctx context.Context, view *DashboardView) error
	GetDashboard(ctx context.Context) (*DashboardView, error)
}

// Archiver stores timestamped copies of computed views for offline
// analysis. Optional, like the cache.
type Archiver interface {
	Store(ctx context.Context, view *DashboardView) error
}
