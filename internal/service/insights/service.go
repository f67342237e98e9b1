package insights

import (
	"context"
	"log"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/strivefit/engagement-engine/internal/cohort"
	"github.com/strivefit/engagement-engine/internal/domain"
	"github.com/strivefit/engagement-engine/internal/engagement"
	"github.com/strivefit/engagement-engine/internal/revenue"
	"github.com/strivefit/engagement-engine/internal/risk"
)

// Options tunes the engine's windows and rankings. Zero values fall back
// to the defaults below.
type Options struct {
	LookbackDays          int               // event history fetched per computation
	CohortMonths          int               // retention table depth
	TrendWindow           engagement.Window // dashboard trend buckets
	RevenueLookbackMonths int               // billing months cap
	TopClients            int               // revenue ranking size

	// Now overrides the clock; tests pin it for reproducible windows.
	Now func() time.Time
}

func (o *Options) applyDefaults() {
	if o.LookbackDays <= 0 {
		o.LookbackDays = 90
	}
	if o.CohortMonths <= 0 {
		o.CohortMonths = cohort.DefaultMonths
	}
	if !o.TrendWindow.Valid() {
		o.TrendWindow = engagement.Window{Unit: engagement.UnitWeek, Count: 12}
	}
	if o.RevenueLookbackMonths <= 0 {
		o.RevenueLookbackMonths = 12
	}
	if o.TopClients <= 0 {
		o.TopClients = revenue.DefaultTopClients
	}
	if o.Now == nil {
		o.Now = time.Now
	}
}

// DashboardView is the combined output all four dashboard screens render
// from. It is derived wholesale on each computation and never mutated in
// place.
type DashboardView struct {
	GeneratedAt     time.Time               `json:"generated_at"`
	TotalClients    int                     `json:"total_clients"`
	AtRisk          []domain.RiskAssessment `json:"at_risk"`
	Trend           []domain.TrendBucket    `json:"trend"`
	Cohorts         []domain.CohortRow      `json:"cohorts"`
	Revenue         *domain.RevenueSnapshot `json:"revenue"`
	Degraded        bool                    `json:"degraded,omitempty"`
	Warnings        []string                `json:"warnings,omitempty"`
}

// ClientAssessment is the per-client view: the scored assessment, its
// intervention playbook, and the client's own activity trend.
type ClientAssessment struct {
	Assessment      domain.RiskAssessment   `json:"assessment"`
	Recommendations []domain.Recommendation `json:"recommendations"`
	Trend           []domain.TrendBucket    `json:"trend"`
}

// Service runs the analytics engine over snapshots fetched from the
// repository. Safe for concurrent use; invocations share nothing but the
// repository and the optional cache.
type Service struct {
	repo  Repository
	calc  *revenue.Calculator
	cache ViewCache // optional
	opts  Options

	// gen implements latest-request-wins: a computation only applies its
	// result to the cache if no newer computation has started since.
	gen atomic.Uint64
}

// NewService creates the insights service. calc may be nil to use default
// tier pricing; cache may be nil to disable view caching.
func NewService(repo Repository, calc *revenue.Calculator, cache ViewCache, opts Options) *Service {
	if calc == nil {
		calc = revenue.NewCalculator(nil)
	}
	opts.applyDefaults()
	return &Service{repo: repo, calc: calc, cache: cache, opts: opts}
}

// Dashboard computes the full combined view: at-risk listing, engagement
// trend, cohort retention, and the revenue snapshot.
//
// Fetches fan out concurrently. The events and goals paths feed risk and
// cohort math; the revenue path needs only the client records and runs
// in parallel with them. A goals fetch failure degrades the assessment
// (clients are scored as if goalless, and the view carries a warning)
// rather than failing the batch.
func (s *Service) Dashboard(ctx context.Context) (*DashboardView, error) {
	now := s.opts.Now()
	gen := s.gen.Add(1)

	clients, err := s.repo.ListClients(ctx)
	if err != nil {
		return nil, err
	}

	var (
		wg      sync.WaitGroup
		events  map[string][]domain.ActivityEvent
		goals   map[string][]domain.Goal
		snap    *domain.RevenueSnapshot
		evErr   error
		goalErr error
		revErr  error
	)

	since := now.AddDate(0, 0, -s.opts.LookbackDays)

	wg.Add(3)
	go func() {
		defer wg.Done()
		events, evErr = s.repo.ListEvents(ctx, since)
	}()
	go func() {
		defer wg.Done()
		goals, goalErr = s.repo.ListActiveGoals(ctx)
	}()
	go func() {
		defer wg.Done()
		snap, revErr = s.calc.Snapshot(clients, s.opts.RevenueLookbackMonths, s.opts.TopClients, now)
	}()
	wg.Wait()

	if evErr != nil {
		return nil, evErr
	}
	if revErr != nil {
		return nil, revErr
	}

	view := &DashboardView{
		GeneratedAt:  now,
		TotalClients: len(clients),
		Revenue:      snap,
	}
	if goalErr != nil {
		view.Degraded = true
		view.Warnings = append(view.Warnings,
			"goal data unavailable; assessments computed without goal progress")
		log.Printf("[insights] goals fetch failed, degrading: %v", goalErr)
		goals = nil
	}

	members := make([]cohort.Member, 0, len(clients))
	var global engagement.Timeline
	for _, cl := range clients {
		tl := engagement.Aggregate(events[cl.ID])
		global = append(global, tl...)

		a := risk.Score(cl, tl, activeGoal(goals[cl.ID]), now)
		if a.Tier != domain.RiskNone {
			view.AtRisk = append(view.AtRisk, a)
		}
		members = append(members, cohort.Member{Client: cl, Timeline: tl})
	}
	sortAssessments(view.AtRisk)

	view.Trend = engagement.Bucketize(engagement.Aggregate(global), s.opts.TrendWindow, now)
	view.Cohorts, err = cohort.Retention(members, s.opts.CohortMonths, now)
	if err != nil {
		return nil, err
	}

	s.applyView(ctx, gen, view)
	return view, nil
}

// AssessClient scores a single client and returns the assessment with
// its recommendations and personal trend.
func (s *Service) AssessClient(ctx context.Context, clientID string) (*ClientAssessment, error) {
	now := s.opts.Now()

	cl, err := s.repo.GetClient(ctx, clientID)
	if err != nil {
		return nil, err
	}

	since := now.AddDate(0, 0, -s.opts.LookbackDays)
	events, err := s.repo.ListClientEvents(ctx, clientID, since)
	if err != nil {
		return nil, err
	}
	tl := engagement.Aggregate(events)

	var goal *domain.Goal
	allGoals, err := s.repo.ListClientGoals(ctx, clientID)
	if err != nil {
		// Degrade: score without the goal factor's data rather than
		// refusing to assess. The factor treats this as "no active goal".
		log.Printf("[insights] goals fetch failed for client %s, degrading: %v", clientID, err)
	} else {
		goal = activeGoal(allGoals)
	}

	a := risk.Score(*cl, tl, goal, now)
	return &ClientAssessment{
		Assessment:      a,
		Recommendations: risk.Recommend(a),
		Trend:           engagement.Bucketize(tl, s.opts.TrendWindow, now),
	}, nil
}

// AtRisk returns every client whose tier is not "none", sorted by score
// descending.
func (s *Service) AtRisk(ctx context.Context) ([]domain.RiskAssessment, error) {
	view, err := s.Dashboard(ctx)
	if err != nil {
		return nil, err
	}
	return view.AtRisk, nil
}

// Trend buckets all clients' activity into the given window, or the
// configured default when w is the zero value.
func (s *Service) Trend(ctx context.Context, w engagement.Window) ([]domain.TrendBucket, error) {
	now := s.opts.Now()
	if w.Count == 0 && w.Unit == "" {
		w = s.opts.TrendWindow
	}
	if !w.Valid() {
		return nil, ErrInvalidWindow
	}

	events, err := s.repo.ListEvents(ctx, now.AddDate(0, 0, -s.opts.LookbackDays))
	if err != nil {
		return nil, err
	}
	var all []domain.ActivityEvent
	for _, evs := range events {
		all = append(all, evs...)
	}
	return engagement.Bucketize(engagement.Aggregate(all), w, now), nil
}

// CohortRetention computes the retention table for the trailing months
// (0 uses the configured default).
func (s *Service) CohortRetention(ctx context.Context, months int) ([]domain.CohortRow, error) {
	now := s.opts.Now()
	if months <= 0 {
		months = s.opts.CohortMonths
	}

	clients, err := s.repo.ListClients(ctx)
	if err != nil {
		return nil, err
	}
	events, err := s.repo.ListEvents(ctx, now.AddDate(0, 0, -s.opts.LookbackDays))
	if err != nil {
		return nil, err
	}

	members := make([]cohort.Member, 0, len(clients))
	for _, cl := range clients {
		members = append(members, cohort.Member{Client: cl, Timeline: engagement.Aggregate(events[cl.ID])})
	}
	return cohort.Retention(members, months, now)
}

// RevenueSnapshot computes the monetary rollup alone, without touching
// the activity paths.
func (s *Service) RevenueSnapshot(ctx context.Context, lookbackMonths, topN int) (*domain.RevenueSnapshot, error) {
	now := s.opts.Now()
	if lookbackMonths <= 0 {
		lookbackMonths = s.opts.RevenueLookbackMonths
	}
	if topN <= 0 {
		topN = s.opts.TopClients
	}

	clients, err := s.repo.ListClients(ctx)
	if err != nil {
		return nil, err
	}
	return s.calc.Snapshot(clients, lookbackMonths, topN, now)
}

// CachedDashboard returns the last cached view, or recomputes when the
// cache is cold or disabled.
func (s *Service) CachedDashboard(ctx context.Context) (*DashboardView, error) {
	if s.cache != nil {
		if view, err := s.cache.GetDashboard(ctx); err == nil && view != nil {
			return view, nil
		}
	}
	return s.Dashboard(ctx)
}

// applyView writes the computed view through to the cache unless a newer
// computation has started since this one began.
func (s *Service) applyView(ctx context.Context, gen uint64, view *DashboardView) {
	if s.cache == nil {
		return
	}
	if s.gen.Load() != gen {
		log.Printf("[insights] discarding stale view (gen %d)", gen)
		return
	}
	if err := s.cache.SetDashboard(ctx, view); err != nil {
		log.Printf("[insights] cache write failed: %v", err)
	}
}

// activeGoal picks the goal the scorer should look at: the most recently
// created active one. Ties on creation time break by goal type so the
// choice is deterministic.
func activeGoal(goals []domain.Goal) *domain.Goal {
	var best *domain.Goal
	for i := range goals {
		g := &goals[i]
		if g.Status != domain.GoalActive {
			continue
		}
		if best == nil ||
			g.CreatedAt.After(best.CreatedAt) ||
			(g.CreatedAt.Equal(best.CreatedAt) && g.GoalType < best.GoalType) {
			best = g
		}
	}
	return best
}

func sortAssessments(list []domain.RiskAssessment) {
	sort.Slice(list, func(i, j int) bool {
		if list[i].Score != list[j].Score {
			return list[i].Score > list[j].Score
		}
		return list[i].ClientID < list[j].ClientID
	})
}
