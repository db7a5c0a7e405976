package leads

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepo is an in-memory Repository with the same (org_id, phone)
// uniqueness as the Postgres schema.

type MemoryRepo struct {
	mu    sync.Mutex
	leads []Lead
	clock func() time.Time

	// FindErr and InsertErr force failures for tests.
	FindErr   error
	InsertErr error
}

func NewMemoryRepo() *MemoryRepo { return &MemoryRepo{clock: time.Now} }

func (r *MemoryRepo) FindByPhone(ctx context.Context, orgID, phone string) (*Lead, error) {
	if r.FindErr != nil {
		return nil, r.FindErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if i := r.indexOf(orgID, phone); i >= 0 {
		l := r.leads[i]
		return &l, nil
	}
	return nil, nil
}

func (r *MemoryRepo) InsertLead(ctx context.Context, l Lead) (Lead, bool, error) {
	if r.InsertErr != nil {
		return Lead{}, false, r.InsertErr
	}
	if l.OrgID == "" {
		return Lead{}, false, ErrInvalidArgument
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if l.Phone != nil {
		if i := r.indexOf(l.OrgID, *l.Phone); i >= 0 {
			existing := &r.leads[i]
			if existing.Name == nil && l.Name != nil {
				v := *l.Name
				existing.Name = &v
			}
			return *existing, false, nil
		}
	}
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = r.clock().UTC()
	}
	r.leads = append(r.leads, l)
	return l, true, nil
}

func (r *MemoryRepo) SetNameIfEmpty(ctx context.Context, orgID, id, name string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.leads {
		l := &r.leads[i]
		if l.OrgID == orgID && l.ID == id && l.Name == nil {
			v := name
			l.Name = &v
			return true, nil
		}
	}
	return false, nil
}

func (r *MemoryRepo) ListLeads(ctx context.Context, orgID string, limit, offset int) ([]Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Lead, 0)
	for _, l := range r.leads {
		if l.OrgID == orgID {
			out = append(out, l)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if offset >= len(out) {
		return []Lead{}, nil
	}
	out = out[offset:]
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MemoryRepo) ListNamed(ctx context.Context, orgID string) ([]Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Lead, 0)
	for _, l := range r.leads {
		if (orgID == "" || l.OrgID == orgID) && l.Phone != nil && l.Name != nil {
			out = append(out, l)
		}
	}
	return out, nil
}

// All returns a copy of every stored lead.
func (r *MemoryRepo) All() []Lead {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Lead, len(r.leads))
	copy(out, r.leads)
	return out
}

func (r *MemoryRepo) indexOf(orgID, phone string) int {
	for i, l := range r.leads {
		if l.OrgID == orgID && l.Phone != nil && *l.Phone == phone {
			return i
		}
	}
	return -1
}
