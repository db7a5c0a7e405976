package reporting

import (
	"context"
	"errors"
	"sync"
	"time"

	"receptionist-dashboard/internal/calls"
	"receptionist-dashboard/internal/leads"
)

// MemoryRepo is a simple in-memory reporting repository for tests and local runs.
// It enforces org isolation on reads.

type MemoryRepo struct {
	mu sync.Mutex

	Calls []calls.Call
	Leads []leads.Lead
}

func NewMemoryRepo() *MemoryRepo { return &MemoryRepo{} }

func inRange(t, from, to time.Time) bool {
	return !t.Before(from) && t.Before(to)
}

func (r *MemoryRepo) ListCallsBetween(ctx context.Context, orgID string, from, to time.Time) ([]calls.Call, error) {
	if orgID == "" {
		return nil, errors.New("org_id required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]calls.Call, 0)
	for _, c := range r.Calls {
		if c.OrgID == orgID && inRange(c.CreatedAt, from, to) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *MemoryRepo) CountLeadsBetween(ctx context.Context, orgID string, from, to time.Time) (int, int, error) {
	if orgID == "" {
		return 0, 0, errors.New("org_id required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var total, named int
	for _, l := range r.Leads {
		if l.OrgID != orgID || !inRange(l.CreatedAt, from, to) {
			continue
		}
		total++
		if l.Name != nil {
			named++
		}
	}
	return total, named, nil
}
