package insights

import (
	"context"
	"log"
	"time"
)

// Recomputer periodically re-runs the dashboard computation so the view
// cache stays warm and snapshots land in the archive. It is the explicit
// scheduled-recompute task; dashboards never run their own timer loops
// against the engine.
type Recomputer struct {
	service  *Service
	archiver Archiver // optional
	interval time.Duration
	stop     chan struct{}
	done     chan struct{}
}

// NewRecomputer creates a recompute loop. archiver may be nil.
func NewRecomputer(service *Service, archiver Archiver, interval time.Duration) *Recomputer {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	return &Recomputer{
		service:  service,
		archiver: archiver,
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the loop. One recompute runs immediately so a fresh
// deployment has a warm cache before the first tick.
func (r *Recomputer) Start(ctx context.Context) {
	go func() {
		defer close(r.done)
		log.Printf("[recompute] starting, interval=%s", r.interval)

		r.run(ctx)
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				r.run(ctx)
			case <-r.stop:
				log.Println("[recompute] stopped")
				return
			case <-ctx.Done():
				log.Println("[recompute] context cancelled")
				return
			}
		}
	}()
}

// Stop signals the loop to exit and waits for it.
func (r *Recomputer) Stop() {
	close(r.stop)
	<-r.done
}

func (r *Recomputer) run(ctx context.Context) {
	start := time.Now()
	view, err := r.service.Dashboard(ctx)
	if err != nil {
		log.Printf("[recompute] dashboard failed: %v", err)
		return
	}
	log.Printf("[recompute] dashboard refreshed in %s (%d clients, %d at risk)",
		time.Since(start).Round(time.Millisecond), view.TotalClients, len(view.AtRisk))

	if r.archiver != nil {
		if err := r.archiver.Store(ctx, view); err != nil {
			log.Printf("[recompute] archive failed: %v", err)
		}
	}
}
