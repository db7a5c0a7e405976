package assistants

import (
	"context"
	"sync"
)

// MemoryRepo is an in-memory Directory for tests and local runs.

type MemoryRepo struct {
	mu    sync.Mutex
	byExt map[string]Assistant

	// Lookups counts LookupAssistant calls.
	Lookups int
	// Err, when set, fails every lookup.
	Err error
}

func NewMemoryRepo(entries ...Assistant) *MemoryRepo {
	r := &MemoryRepo{byExt: map[string]Assistant{}}
	for _, a := range entries {
		r.byExt[a.VapiAssistantID] = a
	}
	return r
}

func (r *MemoryRepo) Put(a Assistant) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byExt[a.VapiAssistantID] = a
}

func (r *MemoryRepo) LookupAssistant(ctx context.Context, externalID string) (Assistant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Lookups++
	if r.Err != nil {
		return Assistant{}, r.Err
	}
	if externalID == "" {
		return Assistant{}, ErrNotFound
	}
	a, ok := r.byExt[externalID]
	if !ok {
		return Assistant{}, ErrNotFound
	}
	return a, nil
}
