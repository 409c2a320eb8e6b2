package session

import (
	"context"
	"time"
)

// Record is an issued cart session keyed by the hash of its bearer token.
// The raw token is never stored.
type Record struct {
	TokenHash string
	SessionID string
	ExpiresAt time.Time
	CreatedAt time.Time
}

type Repository interface {
	Create(ctx context.Context, rec Record) error
	Get(ctx context.Context, tokenHash string) (*Record, error)
	Delete(ctx context.Context, tokenHash string) error
}
