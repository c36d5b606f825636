package usage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	decisions map[DecisionType]int
	created   map[Table]int
	users     int
	distinct  map[ActivitySource][]interface{}
	activity  []DecisionActivity
	providers []ProviderUsage
	failUsers error
}

func (f *fakeStore) CountDecisions(_ context.Context, dt DecisionType, _, _ time.Time) (int, error) {
	return f.decisions[dt], nil
}

func (f *fakeStore) CountCreated(_ context.Context, table Table, _, _ time.Time) (int, error) {
	return f.created[table], nil
}

func (f *fakeStore) CountUsers(context.Context) (int, error) {
	return f.users, f.failUsers
}

func (f *fakeStore) DistinctUserIDs(_ context.Context, source ActivitySource, _, _ time.Time) ([]interface{}, error) {
	return f.distinct[source], nil
}

func (f *fakeStore) DecisionActivity(context.Context, time.Time, time.Time) ([]DecisionActivity, error) {
	return f.activity, nil
}

func (f *fakeStore) ProviderUsage(context.Context, time.Time, time.Time) ([]ProviderUsage, error) {
	return f.providers, nil
}

type memoryCache struct {
	items map[string]interface{}
	gets  int
}

func (c *memoryCache) Get(_ context.Context, key string, value interface{}) error {
	c.gets++
	v, ok := c.items[key]
	if !ok {
		return errors.New("miss")
	}
	*value.(*Report) = *v.(*Report)
	return nil
}

func (c *memoryCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	c.items[key] = value
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var fixedNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func newTestService(store Store, opts ...Option) *Service {
	s := NewService(store, discardLogger(), opts...)
	s.now = func() time.Time { return fixedNow }
	return s
}

func sampleStore() *fakeStore {
	return &fakeStore{
		decisions: map[DecisionType]int{DecisionPersonal: 40, DecisionGroup: 12},
		created:   map[Table]int{TableCollections: 8, TableGroups: 3, TableFriendships: 20},
		users:     100,
		distinct: map[ActivitySource][]interface{}{
			SourceDecisions:   {"A", "B"},
			SourceCollections: {"A", "C", nil},
			SourceGroups:      {"B", "D"},
		},
		activity: []DecisionActivity{
			{Day: "2024-06-14", UserID: "A", Count: 3},
			{Day: "2024-06-10", UserID: "B", Count: 1},
			{Day: "2024-06-14", UserID: "C", Count: 2},
			{Day: "2024-06-10", UserID: nil, Count: 4},
		},
		providers: []ProviderUsage{
			{Provider: "google_places", Calls: 200, Cost: 0.9, Errors: 2},
			{Provider: "google_maps", Calls: 50, Cost: 0.35},
			{Provider: "geocoder", Calls: 10, Cost: 0, Errors: 1},
			{Provider: "internal_search", Calls: 5, Cost: 0},
		},
	}
}

func TestService_Compute(t *testing.T) {
	store := sampleStore()
	svc := newTestService(store)

	report, err := svc.Compute(context.Background(), "30d")
	require.NoError(t, err)

	assert.Equal(t, Period30d, report.Period)
	assert.Equal(t, fixedNow.AddDate(0, 0, -30), report.DateRange.Start)
	assert.Equal(t, fixedNow, report.DateRange.End)

	assert.Equal(t, FeatureUsage{
		RestaurantSearches: 40,
		GroupDecisions:     12,
		CollectionsCreated: 8,
		GroupsCreated:      3,
		FriendRequests:     20,
	}, report.FeatureUsage)

	assert.Equal(t, 100, report.UserBehavior.TotalUsers)
	assert.Equal(t, 4, report.UserBehavior.ActiveUsers)
	assert.Equal(t, 4.0, report.UserBehavior.EngagementRate)
	assert.Equal(t, 13.0, report.UserBehavior.AverageDecisionsPerUser)
	assert.Equal(t, 2.0, report.UserBehavior.AverageCollectionsPerUser)

	assert.Equal(t, []DailyActivity{
		{Date: "2024-06-10", DecisionCount: 5, UniqueUserCount: 1},
		{Date: "2024-06-14", DecisionCount: 5, UniqueUserCount: 2},
	}, report.Trends.DailyActivity)

	require.Len(t, report.PopularFeatures, 5)
	assert.Equal(t, "Restaurant Search", report.PopularFeatures[0].Feature)
	assert.Equal(t, "Friend Requests", report.PopularFeatures[1].Feature)

	assert.Equal(t, 200, report.APIUsage.GooglePlaces.Calls)
	assert.Equal(t, "$0.0045", report.APIUsage.GooglePlaces.CostPerCall)
	assert.Equal(t, "$0.0070", report.APIUsage.GoogleMaps.CostPerCall)
	assert.Equal(t, 15, report.APIUsage.Internal.Calls)
	assert.Equal(t, 1, report.APIUsage.Internal.Errors)
	assert.Equal(t, 265, report.APIUsage.TotalCalls)
	assert.Equal(t, 3, report.APIUsage.TotalErrors)

	assert.Equal(t, 100, report.CapacityPlanning.CurrentUsers)
	assert.Equal(t, 120, report.CapacityPlanning.ProjectedUsers)
	assert.Equal(t, 20.0, report.CapacityPlanning.GrowthRate)
	assert.NotEmpty(t, report.CapacityPlanning.Recommendations)
}

func TestService_ComputeUnknownPeriodDefaultsTo7d(t *testing.T) {
	report, err := newTestService(sampleStore()).Compute(context.Background(), "365d")
	require.NoError(t, err)
	assert.Equal(t, Period7d, report.Period)
	assert.Equal(t, fixedNow.AddDate(0, 0, -7), report.DateRange.Start)
}

func TestService_ComputeFailsWhole(t *testing.T) {
	store := sampleStore()
	store.failUsers = errors.New("connection refused")

	report, err := newTestService(store).Compute(context.Background(), "7d")
	require.Error(t, err)
	assert.Nil(t, report)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestService_ComputeCaches(t *testing.T) {
	cache := &memoryCache{items: map[string]interface{}{}}
	store := sampleStore()
	svc := newTestService(store, WithCache(cache, time.Minute))

	first, err := svc.Compute(context.Background(), "7d")
	require.NoError(t, err)
	require.Contains(t, cache.items, "usage:report:7d")

	store.users = 999
	second, err := svc.Compute(context.Background(), "7d")
	require.NoError(t, err)
	assert.Equal(t, first.UserBehavior.TotalUsers, second.UserBehavior.TotalUsers)

	disabled := newTestService(store, WithCache(cache, 0))
	third, err := disabled.Compute(context.Background(), "7d")
	require.NoError(t, err)
	assert.Equal(t, 999, third.UserBehavior.TotalUsers)
}

type failingCache struct{}

func (failingCache) Get(context.Context, string, interface{}) error { return errors.New("miss") }

func (failingCache) Set(context.Context, string, interface{}, time.Duration) error {
	return errors.New("cache table locked")
}

func TestService_ComputeCacheWriteFailure(t *testing.T) {
	var buf bytes.Buffer
	svc := NewService(sampleStore(), slog.New(slog.NewTextHandler(&buf, nil)), WithCache(failingCache{}, time.Minute))
	svc.now = func() time.Time { return fixedNow }

	report, err := svc.Compute(context.Background(), "30d")
	require.NoError(t, err)
	assert.Equal(t, 100, report.UserBehavior.TotalUsers)
	assert.Contains(t, buf.String(), "failed to cache usage report")
	assert.Contains(t, buf.String(), "cache table locked")
}

func TestEngagementRate(t *testing.T) {
	tests := []struct {
		name          string
		active, total int
		want          float64
	}{
		{"no users", 5, 0, 0},
		{"no users and no activity", 0, 0, 0},
		{"five of a hundred", 5, 100, 5.00},
		{"rounds to two decimals", 1, 3, 33.33},
		{"all active", 7, 7, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EngagementRate(tt.active, tt.total))
		})
	}
}

func TestBuildDailyActivity_Sparse(t *testing.T) {
	got := BuildDailyActivity([]DecisionActivity{
		{Day: "2024-01-03", UserID: "u1", Count: 1},
		{Day: "2024-01-01", UserID: "u1", Count: 2},
		{Day: "2024-01-01", UserID: "u2", Count: 1},
	})

	assert.Equal(t, []DailyActivity{
		{Date: "2024-01-01", DecisionCount: 3, UniqueUserCount: 2},
		{Date: "2024-01-03", DecisionCount: 1, UniqueUserCount: 1},
	}, got)

	assert.Empty(t, BuildDailyActivity(nil))
}

func TestRankFeatures(t *testing.T) {
	got := RankFeatures(FeatureUsage{
		RestaurantSearches: 1,
		GroupDecisions:     9,
		CollectionsCreated: 4,
		GroupsCreated:      4,
		FriendRequests:     0,
	})

	names := make([]string, len(got))
	for i, f := range got {
		names[i] = f.Feature
		assert.Equal(t, "stable", f.Trend)
	}
	assert.Equal(t, []string{"Group Decisions", "Collections", "Group Creation", "Restaurant Search", "Friend Requests"}, names)
}

func TestParsePeriod(t *testing.T) {
	assert.Equal(t, Period7d, ParsePeriod(""))
	assert.Equal(t, Period7d, ParsePeriod("7d"))
	assert.Equal(t, Period30d, ParsePeriod("30d"))
	assert.Equal(t, Period90d, ParsePeriod("90d"))
	assert.Equal(t, Period7d, ParsePeriod("1y"))
	assert.Equal(t, 90, Period90d.Days())
}
