package usage

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// DB interface for database operations (compatible with pgxpool.Pool and pgxmock)
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
}

// DecisionType distinguishes personal restaurant searches from group votes.
type DecisionType string

const (
	DecisionPersonal DecisionType = "personal"
	DecisionGroup    DecisionType = "group"
)

// Table is a domain table counted by creation time.
type Table string

const (
	TableCollections Table = "collections"
	TableGroups      Table = "groups"
	TableFriendships Table = "friendships"
)

// ActivitySource names a table and the column holding the acting user.
type ActivitySource struct {
	Table  string
	Column string
}

var (
	SourceDecisions   = ActivitySource{Table: "decisions", Column: "user_id"}
	SourceCollections = ActivitySource{Table: "collections", Column: "owner_id"}
	SourceGroups      = ActivitySource{Table: "groups", Column: "created_by"}
)

var activitySources = map[ActivitySource]bool{
	SourceDecisions:   true,
	SourceCollections: true,
	SourceGroups:      true,
}

// Repository runs the read-only analytics queries.
type Repository struct {
	db DB
}

func NewRepository(db DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) CountDecisions(ctx context.Context, decisionType DecisionType, start, end time.Time) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM decisions
		WHERE type = $1 AND created_at >= $2 AND created_at <= $3
	`

	var count int
	if err := r.db.QueryRow(ctx, query, string(decisionType), start, end).Scan(&count); err != nil {
		return 0, fmt.Errorf("count %s decisions: %w", decisionType, err)
	}
	return count, nil
}

func (r *Repository) CountCreated(ctx context.Context, table Table, start, end time.Time) (int, error) {
	if table != TableCollections && table != TableGroups && table != TableFriendships {
		return 0, fmt.Errorf("invalid table: %s", table)
	}

	query := fmt.Sprintf(`
		SELECT COUNT(*)
		FROM %s
		WHERE created_at >= $1 AND created_at <= $2
	`, table)

	var count int
	if err := r.db.QueryRow(ctx, query, start, end).Scan(&count); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return count, nil
}

// CountUsers returns all registered users regardless of the window.
func (r *Repository) CountUsers(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return count, nil
}

// DistinctUserIDs returns the distinct non-null acting user ids of source
// within the window, as returned by the driver.
func (r *Repository) DistinctUserIDs(ctx context.Context, source ActivitySource, start, end time.Time) ([]interface{}, error) {
	if !activitySources[source] {
		return nil, fmt.Errorf("invalid activity source: %s.%s", source.Table, source.Column)
	}

	query := fmt.Sprintf(`
		SELECT DISTINCT %[2]s
		FROM %[1]s
		WHERE %[2]s IS NOT NULL AND created_at >= $1 AND created_at <= $2
	`, source.Table, source.Column)

	rows, err := r.db.Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("distinct %s.%s: %w", source.Table, source.Column, err)
	}
	defer rows.Close()

	ids := make([]interface{}, 0)
	for rows.Next() {
		var id interface{}
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan %s.%s: %w", source.Table, source.Column, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s.%s: %w", source.Table, source.Column, err)
	}

	return ids, nil
}

// DecisionActivity groups decisions by UTC calendar day and user.
func (r *Repository) DecisionActivity(ctx context.Context, start, end time.Time) ([]DecisionActivity, error) {
	query := `
		SELECT to_char(created_at AT TIME ZONE 'UTC', 'YYYY-MM-DD') AS day, user_id, COUNT(*)
		FROM decisions
		WHERE created_at >= $1 AND created_at <= $2
		GROUP BY day, user_id
	`

	rows, err := r.db.Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("decision activity: %w", err)
	}
	defer rows.Close()

	var activity []DecisionActivity
	for rows.Next() {
		var a DecisionActivity
		if err := rows.Scan(&a.Day, &a.UserID, &a.Count); err != nil {
			return nil, fmt.Errorf("scan decision activity: %w", err)
		}
		activity = append(activity, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate decision activity: %w", err)
	}

	return activity, nil
}

// ProviderUsage sums API calls, cost and error events per provider.
func (r *Repository) ProviderUsage(ctx context.Context, start, end time.Time) ([]ProviderUsage, error) {
	query := `
		SELECT
			provider,
			COALESCE(SUM(call_count), 0) AS calls,
			COALESCE(SUM(cost), 0)::float8 AS cost,
			COUNT(*) FILTER (WHERE is_error) AS errors
		FROM api_usage_events
		WHERE created_at >= $1 AND created_at <= $2
		GROUP BY provider
	`

	rows, err := r.db.Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("provider usage: %w", err)
	}
	defer rows.Close()

	var usage []ProviderUsage
	for rows.Next() {
		var u ProviderUsage
		if err := rows.Scan(&u.Provider, &u.Calls, &u.Cost, &u.Errors); err != nil {
			return nil, fmt.Errorf("scan provider usage: %w", err)
		}
		usage = append(usage, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate provider usage: %w", err)
	}

	return usage, nil
}

// CostSince returns the total API cost recorded since t.
func (r *Repository) CostSince(ctx context.Context, t time.Time) (float64, error) {
	query := `SELECT COALESCE(SUM(cost), 0)::float8 FROM api_usage_events WHERE created_at >= $1`

	var cost float64
	if err := r.db.QueryRow(ctx, query, t).Scan(&cost); err != nil {
		return 0, fmt.Errorf("cost since %s: %w", t.Format(time.RFC3339), err)
	}
	return cost, nil
}
