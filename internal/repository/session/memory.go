package session

import (
	"context"
	"sync"
	"time"

	"storefront/internal/domain"
)

type memoryRepo struct {
	mu      sync.RWMutex
	records map[string]Record
}

// NewMemory keeps sessions in process. They do not survive a restart.
func NewMemory() Repository {
	return &memoryRepo{records: make(map[string]Record)}
}

func (r *memoryRepo) Create(_ context.Context, rec Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[rec.TokenHash]; ok {
		return domain.ErrAlreadyExists
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	r.records[rec.TokenHash] = rec
	return nil
}

func (r *memoryRepo) Get(_ context.Context, tokenHash string) (*Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[tokenHash]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &rec, nil
}

func (r *memoryRepo) Delete(_ context.Context, tokenHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[tokenHash]; !ok {
		return domain.ErrNotFound
	}
	delete(r.records, tokenHash)
	return nil
}
