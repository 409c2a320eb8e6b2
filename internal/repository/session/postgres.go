package session

import (
	"context"
	"errors"
	"io"
	"log"

	"storefront/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

func (r *postgresRepo) Create(ctx context.Context, rec Record) error {
	const q = `
INSERT INTO cart_sessions (token_hash, session_id, expires_at)
VALUES ($1, $2, $3)
`
	_, err := r.pool.Exec(ctx, q, rec.TokenHash, rec.SessionID, rec.ExpiresAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrAlreadyExists
		}
		r.logger.Printf("session repo: create session=%s error=%v", rec.SessionID, err)
		return err
	}
	return nil
}

func (r *postgresRepo) Get(ctx context.Context, tokenHash string) (*Record, error) {
	const q = `
SELECT token_hash, session_id, expires_at, created_at
FROM cart_sessions
WHERE token_hash = $1
LIMIT 1
`
	var out Record
	if err := r.pool.QueryRow(ctx, q, tokenHash).Scan(
		&out.TokenHash,
		&out.SessionID,
		&out.ExpiresAt,
		&out.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("session repo: get error=%v", err)
		return nil, err
	}
	return &out, nil
}

func (r *postgresRepo) Delete(ctx context.Context, tokenHash string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM cart_sessions WHERE token_hash = $1`, tokenHash)
	if err != nil {
		r.logger.Printf("session repo: delete error=%v", err)
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
