package passes

import (
	"context"
	"errors"
	"sort"
	"sync"
)

type memoryRepository struct {
	mu      sync.RWMutex
	storage map[string]Pass
}

// NewMemoryRepository constructs an in-memory repository for development and tests.
func NewMemoryRepository() Repository {
	return &memoryRepository{storage: make(map[string]Pass)}
}

func (r *memoryRepository) Create(_ context.Context, pass Pass) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.storage[pass.ID]; exists {
		return errors.New("pass exists")
	}
	r.storage[pass.ID] = clonePass(pass)
	return nil
}

func (r *memoryRepository) ListByUser(_ context.Context, userID string) ([]Pass, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []Pass{}
	for _, p := range r.storage {
		if p.UserID == userID {
			out = append(out, clonePass(p))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *memoryRepository) Get(_ context.Context, userID, id string) (Pass, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.storage[id]
	if !ok || p.UserID != userID {
		return Pass{}, ErrNotFound
	}
	return clonePass(p), nil
}

func (r *memoryRepository) UpdateExpiry(_ context.Context, pass Pass) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.storage[pass.ID]
	if !ok || stored.UserID != pass.UserID {
		return ErrNotFound
	}
	stored.ExpiryDate = pass.ExpiryDate
	stored.Status = pass.Status
	stored.UpdatedAt = pass.UpdatedAt
	r.storage[pass.ID] = clonePass(stored)
	return nil
}

func (r *memoryRepository) Delete(_ context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.storage[id]
	if !ok || p.UserID != userID {
		return ErrNotFound
	}
	delete(r.storage, id)
	return nil
}

// clonePass copies the pointer fields so callers cannot mutate stored state.
func clonePass(p Pass) Pass {
	if p.DOB != nil {
		d := *p.DOB
		p.DOB = &d
	}
	if p.ExpiryDate != nil {
		e := *p.ExpiryDate
		p.ExpiryDate = &e
	}
	return p
}
