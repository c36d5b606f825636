package alert

import (
	"context"
	"sync"
	"time"

	"github.com/forkintheroad/fitr-admin/internal/domain"
)

// MemoryRepository keeps alerts in a process-wide map. Records are copied in
// and out so callers never share state with the store.
type MemoryRepository struct {
	mu     sync.RWMutex
	alerts map[string]*Alert
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		alerts: make(map[string]*Alert),
	}
}

func (r *MemoryRepository) Get(_ context.Context, id string) (*Alert, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.alerts[id]
	if !ok {
		return nil, domain.ErrAlertNotFound
	}
	return a.clone(), nil
}

func (r *MemoryRepository) Put(_ context.Context, a *Alert) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.alerts[a.ID]; exists {
		return ErrDuplicateID
	}
	r.alerts[a.ID] = a.clone()
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.alerts[id]; !ok {
		return domain.ErrAlertNotFound
	}
	delete(r.alerts, id)
	return nil
}

func (r *MemoryRepository) Query(_ context.Context, f Filter) ([]Alert, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Alert, 0, len(r.alerts))
	for _, a := range r.alerts {
		if f.Matches(a) {
			out = append(out, *a.clone())
		}
	}
	return out, nil
}

func (r *MemoryRepository) MarkAcknowledged(_ context.Context, id, by string, at time.Time) (*Alert, error) {
	return r.mutate(id, func(a *Alert) {
		a.Acknowledged = true
		a.AcknowledgedBy = by
		a.AcknowledgedAt = &at
	})
}

func (r *MemoryRepository) MarkResolved(_ context.Context, id, by string, at time.Time) (*Alert, error) {
	return r.mutate(id, func(a *Alert) {
		a.Resolved = true
		a.ResolvedBy = by
		a.ResolvedAt = &at
	})
}

func (r *MemoryRepository) mutate(id string, fn func(*Alert)) (*Alert, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.alerts[id]
	if !ok {
		return nil, domain.ErrAlertNotFound
	}
	fn(a)
	return a.clone(), nil
}

// Len returns the number of stored alerts.
func (r *MemoryRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.alerts)
}
