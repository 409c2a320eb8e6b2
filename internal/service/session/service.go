// Package session issues the anonymous cart sessions browsers hold on to
// before and after signing in.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront/internal/domain"
	sessionrepo "storefront/internal/repository/session"

	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid session token")

const defaultTTL = 30 * 24 * time.Hour

type Service struct {
	repo sessionrepo.Repository
	ttl  time.Duration
	now  func() time.Time
}

// Session is an issued cart session. The token is the bearer secret; the ID
// keys the session's cart.
type Session struct {
	Token     string    `json:"token"`
	ID        string    `json:"sessionId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// New stores sessions in repo so tokens resolve across restarts. A nil repo
// keeps them in memory.
func New(repo sessionrepo.Repository, ttl time.Duration) *Service {
	return newWithClock(repo, ttl, func() time.Time { return time.Now().UTC() })
}

func newWithClock(repo sessionrepo.Repository, ttl time.Duration, now func() time.Time) *Service {
	if repo == nil {
		repo = sessionrepo.NewMemory()
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Service{repo: repo, ttl: ttl, now: now}
}

func (s *Service) Issue(ctx context.Context) (*Session, error) {
	token, err := randomToken()
	if err != nil {
		return nil, fmt.Errorf("generate session token: %w", err)
	}
	rec := sessionrepo.Record{
		TokenHash: hashToken(token),
		SessionID: uuid.NewString(),
		ExpiresAt: s.now().Add(s.ttl),
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}
	return &Session{Token: token, ID: rec.SessionID, ExpiresAt: rec.ExpiresAt}, nil
}

// Lookup resolves a token to its session id. Expired sessions are deleted.
func (s *Service) Lookup(ctx context.Context, token string) (string, error) {
	rec, err := s.lookup(ctx, token)
	if err != nil {
		return "", err
	}
	return rec.SessionID, nil
}

// End revokes the token and returns the session id it carried.
func (s *Service) End(ctx context.Context, token string) (string, error) {
	rec, err := s.lookup(ctx, token)
	if err != nil {
		return "", err
	}
	if err := s.repo.Delete(ctx, rec.TokenHash); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return "", fmt.Errorf("delete session: %w", err)
	}
	return rec.SessionID, nil
}

func (s *Service) TTLSeconds() int {
	return int(s.ttl.Seconds())
}

func (s *Service) lookup(ctx context.Context, token string) (*sessionrepo.Record, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrInvalidToken
	}
	rec, err := s.repo.Get(ctx, hashToken(token))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("load session: %w", err)
	}
	if s.now().After(rec.ExpiresAt) {
		_ = s.repo.Delete(ctx, rec.TokenHash)
		return nil, ErrInvalidToken
	}
	return rec, nil
}
