package usage

import "time"

// Period is a fixed reporting window ending now.
type Period string

const (
	Period7d  Period = "7d"
	Period30d Period = "30d"
	Period90d Period = "90d"
)

// ParsePeriod maps a query value to a Period. Unknown values fall back to 7d.
func ParsePeriod(s string) Period {
	switch Period(s) {
	case Period30d:
		return Period30d
	case Period90d:
		return Period90d
	default:
		return Period7d
	}
}

func (p Period) Days() int {
	switch p {
	case Period30d:
		return 30
	case Period90d:
		return 90
	default:
		return 7
	}
}

// Range returns [now - N days, now].
func (p Period) Range(now time.Time) (time.Time, time.Time) {
	return now.AddDate(0, 0, -p.Days()), now
}

// Report is the usage analytics snapshot for one period.
type Report struct {
	Period           Period           `json:"period"`
	DateRange        DateRange        `json:"dateRange"`
	APIUsage         APIUsage         `json:"apiUsage"`
	FeatureUsage     FeatureUsage     `json:"featureUsage"`
	UserBehavior     UserBehavior     `json:"userBehavior"`
	Trends           Trends           `json:"trends"`
	PopularFeatures  []PopularFeature `json:"popularFeatures"`
	CapacityPlanning CapacityPlanning `json:"capacityPlanning"`
}

type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type FeatureUsage struct {
	RestaurantSearches int `json:"restaurantSearches"`
	GroupDecisions     int `json:"groupDecisions"`
	CollectionsCreated int `json:"collectionsCreated"`
	GroupsCreated      int `json:"groupsCreated"`
	FriendRequests     int `json:"friendRequests"`
}

type UserBehavior struct {
	TotalUsers                int     `json:"totalUsers"`
	ActiveUsers               int     `json:"activeUsers"`
	AverageDecisionsPerUser   float64 `json:"averageDecisionsPerUser"`
	AverageCollectionsPerUser float64 `json:"averageCollectionsPerUser"`
	EngagementRate            float64 `json:"engagementRate"`
}

type Trends struct {
	DailyActivity []DailyActivity `json:"dailyActivity"`
}

// DailyActivity counts decisions and distinct deciders on one UTC day.
type DailyActivity struct {
	Date            string `json:"date"`
	DecisionCount   int    `json:"decisionCount"`
	UniqueUserCount int    `json:"uniqueUserCount"`
}

type PopularFeature struct {
	Feature string `json:"feature"`
	Usage   int    `json:"usage"`
	Trend   string `json:"trend"`
}

// APIUsage tallies third-party and internal provider calls.
type APIUsage struct {
	GooglePlaces ProviderBucket `json:"googlePlaces"`
	GoogleMaps   ProviderBucket `json:"googleMaps"`
	Internal     ProviderBucket `json:"internal"`
	TotalCalls   int            `json:"totalCalls"`
	TotalCost    float64        `json:"totalCost"`
	TotalErrors  int            `json:"totalErrors"`
}

type ProviderBucket struct {
	Calls       int     `json:"calls"`
	Cost        float64 `json:"cost"`
	Errors      int     `json:"errors"`
	CostPerCall string  `json:"costPerCall"`
}

type CapacityPlanning struct {
	CurrentUsers    int      `json:"currentUsers"`
	ProjectedUsers  int      `json:"projectedUsers"`
	GrowthRate      float64  `json:"growthRate"`
	Recommendations []string `json:"recommendations"`
}

// ProviderUsage is one provider's raw totals for a window.
type ProviderUsage struct {
	Provider string
	Calls    int
	Cost     float64
	Errors   int
}

// DecisionActivity is the number of decisions one user made on one UTC day.
// UserID is whatever the driver returned and is normalised before use.
type DecisionActivity struct {
	Day    string
	UserID interface{}
	Count  int
}
