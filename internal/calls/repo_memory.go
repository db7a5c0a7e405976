package calls

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// MemoryRepo is an in-memory Repository for tests and local runs.
// It enforces org isolation and the (org_id, vapi_call_id) uniqueness.

type MemoryRepo struct {
	mu    sync.Mutex
	calls []Call

	// InsertErr, when set, fails every InsertCall.
	InsertErr error
	// BackfillErr, when set, fails every BackfillCallerName.
	BackfillErr error
}

func NewMemoryRepo() *MemoryRepo { return &MemoryRepo{} }

func (r *MemoryRepo) InsertCall(ctx context.Context, c Call) (Call, bool, error) {
	if r.InsertErr != nil {
		return Call{}, false, r.InsertErr
	}
	if c.OrgID == "" || c.AssistantID == "" {
		return Call{}, false, ErrInvalidArgument
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if c.VapiCallID != nil {
		for _, existing := range r.calls {
			if existing.OrgID == c.OrgID && existing.VapiCallID != nil && *existing.VapiCallID == *c.VapiCallID {
				c.ID, c.CreatedAt = existing.ID, existing.CreatedAt
				return c, false, nil
			}
		}
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	r.calls = append(r.calls, c)
	return c, true, nil
}

func (r *MemoryRepo) BackfillCallerName(ctx context.Context, orgID, callerNumber, name string) (int64, error) {
	if r.BackfillErr != nil {
		return 0, r.BackfillErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for i := range r.calls {
		c := &r.calls[i]
		if c.OrgID != orgID || c.CallerName != nil || c.CallerNumber == nil || *c.CallerNumber != callerNumber {
			continue
		}
		v := name
		c.CallerName = &v
		n++
	}
	return n, nil
}

func (r *MemoryRepo) GetCall(ctx context.Context, orgID, id string) (Call, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.calls {
		if c.OrgID == orgID && c.ID == id {
			return c, nil
		}
	}
	return Call{}, ErrNotFound
}

func (r *MemoryRepo) ListCalls(ctx context.Context, orgID string, f ListFilter) ([]Call, error) {
	f = f.Normalize()
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Call, 0)
	for _, c := range r.calls {
		if c.OrgID != orgID {
			continue
		}
		if f.CallerNumber != "" && (c.CallerNumber == nil || *c.CallerNumber != f.CallerNumber) {
			continue
		}
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })

	if f.Offset >= len(out) {
		return []Call{}, nil
	}
	out = out[f.Offset:]
	if len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

// All returns a copy of every stored call.
func (r *MemoryRepo) All() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Call, len(r.calls))
	copy(out, r.calls)
	return out
}
