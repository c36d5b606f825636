package alert

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/forkintheroad/fitr-admin/internal/domain"
)

const pgUniqueViolation = "23505"

const alertColumns = `id, type, severity, title, message, timestamp, metadata, recommended_actions,
		       acknowledged, acknowledged_by, acknowledged_at,
		       resolved, resolved_by, resolved_at`

// DB interface for database operations (compatible with pgxpool.Pool and pgxmock)
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
}

// PGRepository stores alerts in the alerts table.
type PGRepository struct {
	db DB
}

func NewPGRepository(db DB) *PGRepository {
	return &PGRepository{db: db}
}

func (r *PGRepository) Get(ctx context.Context, id string) (*Alert, error) {
	query := `SELECT ` + alertColumns + ` FROM alerts WHERE id = $1`

	a, err := scanAlert(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAlertNotFound
		}
		return nil, fmt.Errorf("get alert %s: %w", id, err)
	}
	return a, nil
}

func (r *PGRepository) Put(ctx context.Context, a *Alert) error {
	metadata, err := json.Marshal(a.Metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	actions, err := json.Marshal(a.RecommendedActions)
	if err != nil {
		return fmt.Errorf("marshal recommended actions: %w", err)
	}

	query := `
		INSERT INTO alerts (
			id, type, severity, title, message, timestamp, metadata, recommended_actions,
			acknowledged, resolved
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err = r.db.Exec(ctx, query,
		a.ID, a.Type, string(a.Severity), a.Title, a.Message, a.Timestamp,
		metadata, actions, a.Acknowledged, a.Resolved,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return ErrDuplicateID
		}
		return fmt.Errorf("insert alert: %w", err)
	}
	return nil
}

func (r *PGRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.Exec(ctx, `DELETE FROM alerts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete alert %s: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrAlertNotFound
	}
	return nil
}

// Query pushes the filter down to SQL; ordering and paging are applied by
// the caller.
func (r *PGRepository) Query(ctx context.Context, f Filter) ([]Alert, error) {
	var (
		conditions []string
		args       []interface{}
	)
	add := func(column string, value interface{}) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if f.Severity != "" {
		add("severity", string(f.Severity))
	}
	if f.Type != "" {
		add("type", f.Type)
	}
	if f.Acknowledged != nil {
		add("acknowledged", *f.Acknowledged)
	}
	if f.Resolved != nil {
		add("resolved", *f.Resolved)
	}

	query := `SELECT ` + alertColumns + ` FROM alerts`
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, " AND ")
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query alerts: %w", err)
	}
	defer rows.Close()

	alerts := make([]Alert, 0)
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		alerts = append(alerts, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("alerts iteration error: %w", err)
	}

	return alerts, nil
}

func (r *PGRepository) MarkAcknowledged(ctx context.Context, id, by string, at time.Time) (*Alert, error) {
	query := `
		UPDATE alerts
		SET acknowledged = true, acknowledged_by = $2, acknowledged_at = $3
		WHERE id = $1
		RETURNING ` + alertColumns

	return r.update(ctx, id, query, by, at)
}

func (r *PGRepository) MarkResolved(ctx context.Context, id, by string, at time.Time) (*Alert, error) {
	query := `
		UPDATE alerts
		SET resolved = true, resolved_by = $2, resolved_at = $3
		WHERE id = $1
		RETURNING ` + alertColumns

	return r.update(ctx, id, query, by, at)
}

func (r *PGRepository) update(ctx context.Context, id, query, by string, at time.Time) (*Alert, error) {
	a, err := scanAlert(r.db.QueryRow(ctx, query, id, by, at))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAlertNotFound
		}
		return nil, fmt.Errorf("update alert %s: %w", id, err)
	}
	return a, nil
}

func scanAlert(row pgx.Row) (*Alert, error) {
	var (
		a              Alert
		severity       string
		metadata       []byte
		actions        []byte
		acknowledgedBy *string
		resolvedBy     *string
	)

	err := row.Scan(
		&a.ID, &a.Type, &severity, &a.Title, &a.Message, &a.Timestamp,
		&metadata, &actions,
		&a.Acknowledged, &acknowledgedBy, &a.AcknowledgedAt,
		&a.Resolved, &resolvedBy, &a.ResolvedAt,
	)
	if err != nil {
		return nil, err
	}

	a.Severity = Severity(severity)
	if acknowledgedBy != nil {
		a.AcknowledgedBy = *acknowledgedBy
	}
	if resolvedBy != nil {
		a.ResolvedBy = *resolvedBy
	}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &a.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal metadata: %w", err)
		}
	}
	if len(actions) > 0 {
		if err := json.Unmarshal(actions, &a.RecommendedActions); err != nil {
			return nil, fmt.Errorf("unmarshal recommended actions: %w", err)
		}
	}

	return &a, nil
}
