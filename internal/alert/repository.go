package alert

import (
	"context"
	"errors"
	"time"
)

// ErrDuplicateID is returned by Put when the id is already stored.
var ErrDuplicateID = errors.New("alert id already exists")

// Repository owns alert records. Get, Delete and the Mark methods return
// domain.ErrAlertNotFound for unknown ids. Mark methods update only their own
// fields so concurrent acknowledge and resolve calls both land.
type Repository interface {
	Get(ctx context.Context, id string) (*Alert, error)
	Put(ctx context.Context, a *Alert) error
	Delete(ctx context.Context, id string) error
	Query(ctx context.Context, f Filter) ([]Alert, error)
	MarkAcknowledged(ctx context.Context, id, by string, at time.Time) (*Alert, error)
	MarkResolved(ctx context.Context, id, by string, at time.Time) (*Alert, error)
}
