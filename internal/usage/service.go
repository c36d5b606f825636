package usage

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/forkintheroad/fitr-admin/internal/metrics"
)

const (
	cacheKeyReport = "usage:report:%s"

	projectedGrowth = 0.20
	staticTrend     = "stable"

	providerGooglePlaces = "google_places"
	providerGoogleMaps   = "google_maps"
)

var capacityRecommendations = []string{
	"Monitor database connection pool usage during peak decision hours",
	"Review Google Places quota ahead of projected user growth",
	"Consider caching popular restaurant searches to reduce API cost",
}

// Store is the read side the aggregator needs from the datastore.
type Store interface {
	CountDecisions(ctx context.Context, decisionType DecisionType, start, end time.Time) (int, error)
	CountCreated(ctx context.Context, table Table, start, end time.Time) (int, error)
	CountUsers(ctx context.Context) (int, error)
	DistinctUserIDs(ctx context.Context, source ActivitySource, start, end time.Time) ([]interface{}, error)
	DecisionActivity(ctx context.Context, start, end time.Time) ([]DecisionActivity, error)
	ProviderUsage(ctx context.Context, start, end time.Time) ([]ProviderUsage, error)
}

type CacheService interface {
	Get(ctx context.Context, key string, value interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// Service computes usage analytics reports.
type Service struct {
	store    Store
	cache    CacheService
	cacheTTL time.Duration
	metrics  *metrics.Collectors
	logger   *slog.Logger
	now      func() time.Time
}

type Option func(*Service)

// WithCache caches reports per period for ttl. A zero ttl disables caching.
func WithCache(cache CacheService, ttl time.Duration) Option {
	return func(s *Service) {
		s.cache = cache
		s.cacheTTL = ttl
	}
}

func WithMetrics(m *metrics.Collectors) Option {
	return func(s *Service) { s.metrics = m }
}

func NewService(store Store, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		store:  store,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Compute builds the report for period. Every query must succeed; a single
// failure fails the whole report.
func (s *Service) Compute(ctx context.Context, period string) (*Report, error) {
	p := ParsePeriod(period)
	cacheKey := fmt.Sprintf(cacheKeyReport, p)

	if s.cachingEnabled() {
		var cached Report
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	started := time.Now()
	start, end := p.Range(s.now())

	var (
		features        FeatureUsage
		totalUsers      int
		decisionIDs     []interface{}
		collectionIDs   []interface{}
		groupCreatorIDs []interface{}
		activity        []DecisionActivity
		providers       []ProviderUsage
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		features.RestaurantSearches, err = s.store.CountDecisions(gctx, DecisionPersonal, start, end)
		return err
	})
	g.Go(func() (err error) {
		features.GroupDecisions, err = s.store.CountDecisions(gctx, DecisionGroup, start, end)
		return err
	})
	g.Go(func() (err error) {
		features.CollectionsCreated, err = s.store.CountCreated(gctx, TableCollections, start, end)
		return err
	})
	g.Go(func() (err error) {
		features.GroupsCreated, err = s.store.CountCreated(gctx, TableGroups, start, end)
		return err
	})
	g.Go(func() (err error) {
		features.FriendRequests, err = s.store.CountCreated(gctx, TableFriendships, start, end)
		return err
	})
	g.Go(func() (err error) {
		totalUsers, err = s.store.CountUsers(gctx)
		return err
	})
	g.Go(func() (err error) {
		decisionIDs, err = s.store.DistinctUserIDs(gctx, SourceDecisions, start, end)
		return err
	})
	g.Go(func() (err error) {
		collectionIDs, err = s.store.DistinctUserIDs(gctx, SourceCollections, start, end)
		return err
	})
	g.Go(func() (err error) {
		groupCreatorIDs, err = s.store.DistinctUserIDs(gctx, SourceGroups, start, end)
		return err
	})
	g.Go(func() (err error) {
		activity, err = s.store.DecisionActivity(gctx, start, end)
		return err
	})
	g.Go(func() (err error) {
		providers, err = s.store.ProviderUsage(gctx, start, end)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("compute usage report for %s: %w", p, err)
	}

	activeUsers := len(unionIDs(decisionIDs, collectionIDs, groupCreatorIDs))

	report := &Report{
		Period:           p,
		DateRange:        DateRange{Start: start, End: end},
		APIUsage:         BuildAPIUsage(providers),
		FeatureUsage:     features,
		UserBehavior:     buildUserBehavior(features, totalUsers, activeUsers),
		Trends:           Trends{DailyActivity: BuildDailyActivity(activity)},
		PopularFeatures:  RankFeatures(features),
		CapacityPlanning: buildCapacityPlanning(totalUsers),
	}

	s.metrics.ObserveUsageReport(time.Since(started))
	s.logger.Debug("usage report computed",
		"period", p,
		"active_users", activeUsers,
		"total_users", totalUsers,
		"duration", time.Since(started),
	)

	if s.cachingEnabled() {
		if err := s.cache.Set(ctx, cacheKey, report, s.cacheTTL); err != nil {
			s.logger.Warn("failed to cache usage report", "period", p, "error", err)
		}
	}

	return report, nil
}

func (s *Service) cachingEnabled() bool {
	return s.cache != nil && s.cacheTTL > 0
}

// EngagementRate is active/total*100 rounded to two decimals, or 0 when
// there are no users.
func EngagementRate(active, total int) float64 {
	if total <= 0 {
		return 0
	}
	rate := round2(float64(active) / float64(total) * 100)
	return math.Min(math.Max(rate, 0), 100)
}

func buildUserBehavior(f FeatureUsage, totalUsers, activeUsers int) UserBehavior {
	ub := UserBehavior{
		TotalUsers:     totalUsers,
		ActiveUsers:    activeUsers,
		EngagementRate: EngagementRate(activeUsers, totalUsers),
	}
	if activeUsers > 0 {
		decisions := f.RestaurantSearches + f.GroupDecisions
		ub.AverageDecisionsPerUser = round2(float64(decisions) / float64(activeUsers))
		ub.AverageCollectionsPerUser = round2(float64(f.CollectionsCreated) / float64(activeUsers))
	}
	return ub
}

// BuildDailyActivity folds per-day, per-user decision counts into one entry
// per day, sorted ascending. Days without decisions are absent.
func BuildDailyActivity(rows []DecisionActivity) []DailyActivity {
	type day struct {
		decisions int
		users     idSet
	}
	days := make(map[string]*day)

	for _, r := range rows {
		d, ok := days[r.Day]
		if !ok {
			d = &day{users: make(idSet)}
			days[r.Day] = d
		}
		d.decisions += r.Count
		d.users.add(r.UserID)
	}

	out := make([]DailyActivity, 0, len(days))
	for date, d := range days {
		out = append(out, DailyActivity{
			Date:            date,
			DecisionCount:   d.decisions,
			UniqueUserCount: len(d.users),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })

	return out
}

// RankFeatures lists the feature counts by usage, highest first.
func RankFeatures(f FeatureUsage) []PopularFeature {
	features := []PopularFeature{
		{Feature: "Restaurant Search", Usage: f.RestaurantSearches, Trend: staticTrend},
		{Feature: "Group Decisions", Usage: f.GroupDecisions, Trend: staticTrend},
		{Feature: "Collections", Usage: f.CollectionsCreated, Trend: staticTrend},
		{Feature: "Group Creation", Usage: f.GroupsCreated, Trend: staticTrend},
		{Feature: "Friend Requests", Usage: f.FriendRequests, Trend: staticTrend},
	}
	sort.SliceStable(features, func(i, j int) bool { return features[i].Usage > features[j].Usage })
	return features
}

// BuildAPIUsage buckets provider totals into Google Places, Google Maps and
// everything else.
func BuildAPIUsage(providers []ProviderUsage) APIUsage {
	var usage APIUsage

	for _, p := range providers {
		bucket := &usage.Internal
		switch p.Provider {
		case providerGooglePlaces:
			bucket = &usage.GooglePlaces
		case providerGoogleMaps:
			bucket = &usage.GoogleMaps
		}
		bucket.Calls += p.Calls
		bucket.Cost += p.Cost
		bucket.Errors += p.Errors

		usage.TotalCalls += p.Calls
		usage.TotalCost += p.Cost
		usage.TotalErrors += p.Errors
	}

	for _, b := range []*ProviderBucket{&usage.GooglePlaces, &usage.GoogleMaps, &usage.Internal} {
		b.CostPerCall = formatCostPerCall(b.Cost, b.Calls)
	}

	return usage
}

func formatCostPerCall(cost float64, calls int) string {
	if calls <= 0 {
		return "$0.0000"
	}
	return fmt.Sprintf("$%.4f", cost/float64(calls))
}

func buildCapacityPlanning(totalUsers int) CapacityPlanning {
	recommendations := make([]string, len(capacityRecommendations))
	copy(recommendations, capacityRecommendations)

	return CapacityPlanning{
		CurrentUsers:    totalUsers,
		ProjectedUsers:  int(math.Round(float64(totalUsers) * (1 + projectedGrowth))),
		GrowthRate:      projectedGrowth * 100,
		Recommendations: recommendations,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
