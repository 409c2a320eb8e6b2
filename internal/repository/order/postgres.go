package order

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"storefront/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const selectColumns = `
SELECT id::text, owner_id, items, subtotal_cents, shipping_cents, total_cents, currency, status,
       created_at, updated_at, shipped_at, delivered_at
FROM orders
`

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

func (r *postgresRepo) Create(ctx context.Context, o domain.Order) error {
	const q = `
INSERT INTO orders (id, owner_id, items, subtotal_cents, shipping_cents, total_cents, currency, status, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
`
	_, err := r.pool.Exec(ctx, q,
		o.ID,
		o.OwnerID,
		o.Items,
		o.SubtotalCents,
		o.ShippingCents,
		o.TotalCents,
		o.Currency,
		string(o.Status),
		o.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrAlreadyExists
		}
		r.logger.Printf("order repo: create id=%s owner=%s error=%v", o.ID, o.OwnerID, err)
		return err
	}
	r.logger.Printf("order repo: created id=%s owner=%s total_cents=%d", o.ID, o.OwnerID, o.TotalCents)
	return nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	o, err := scanOrder(r.pool.QueryRow(ctx, selectColumns+"WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("order repo: get id=%s error=%v", id, err)
		return nil, err
	}
	return o, nil
}

func (r *postgresRepo) Update(ctx context.Context, id string, fn func(*domain.Order) error) (*domain.Order, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	o, err := scanOrder(tx.QueryRow(ctx, selectColumns+"WHERE id = $1 FOR UPDATE", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("order repo: lock id=%s error=%v", id, err)
		return nil, err
	}

	if err := fn(o); err != nil {
		return nil, err
	}

	const q = `
UPDATE orders
SET status = $2, updated_at = $3, shipped_at = $4, delivered_at = $5
WHERE id = $1
`
	if _, err := tx.Exec(ctx, q, id, string(o.Status), o.UpdatedAt, o.ShippedAt, o.DeliveredAt); err != nil {
		r.logger.Printf("order repo: update id=%s error=%v", id, err)
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	r.logger.Printf("order repo: updated id=%s status=%s", id, o.Status)
	return o, nil
}

func (r *postgresRepo) List(ctx context.Context, filter ListFilter) ([]domain.Order, error) {
	where, args := filter.clauses()
	q := selectColumns + where + "ORDER BY created_at DESC, id DESC"
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		r.logger.Printf("order repo: list filter=%+v error=%v", filter, err)
		return nil, err
	}
	defer rows.Close()

	result := []domain.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *o)
	}
	if err := rows.Err(); err != nil {
		r.logger.Printf("order repo: list rows error=%v", err)
		return nil, err
	}
	return result, nil
}

func (r *postgresRepo) StatusTotals(ctx context.Context) ([]StatusTotal, error) {
	const q = `
SELECT status, count(*), COALESCE(SUM(total_cents), 0)::bigint
FROM orders
GROUP BY status
ORDER BY status
`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		r.logger.Printf("order repo: status totals error=%v", err)
		return nil, err
	}
	defer rows.Close()

	result := []StatusTotal{}
	for rows.Next() {
		var (
			t      StatusTotal
			status string
		)
		if err := rows.Scan(&status, &t.Count, &t.TotalCents); err != nil {
			return nil, err
		}
		t.Status = domain.OrderStatus(status)
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		r.logger.Printf("order repo: status totals rows error=%v", err)
		return nil, err
	}
	return result, nil
}

func (r *postgresRepo) DeleteAll(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM orders`)
	if err != nil {
		r.logger.Printf("order repo: delete all error=%v", err)
		return 0, err
	}
	r.logger.Printf("order repo: deleted %d orders", tag.RowsAffected())
	return tag.RowsAffected(), nil
}

// clauses renders the filter as a WHERE clause with positional arguments.
// Owner and status predicates match orders_owner_idx and orders_status_idx.
func (f ListFilter) clauses() (string, []any) {
	var (
		conds []string
		args  []any
	)
	if f.OwnerID != "" {
		args = append(args, f.OwnerID)
		conds = append(conds, fmt.Sprintf("owner_id = $%d", len(args)))
	}
	if f.Status != "" {
		args = append(args, string(f.Status))
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if !f.Since.IsZero() {
		args = append(args, f.Since)
		conds = append(conds, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(conds, " AND ") + "\n", args
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var (
		o      domain.Order
		status string
	)
	err := row.Scan(
		&o.ID,
		&o.OwnerID,
		&o.Items,
		&o.SubtotalCents,
		&o.ShippingCents,
		&o.TotalCents,
		&o.Currency,
		&status,
		&o.CreatedAt,
		&o.UpdatedAt,
		&o.ShippedAt,
		&o.DeliveredAt,
	)
	if err != nil {
		return nil, err
	}
	o.Status = domain.OrderStatus(status)
	if o.Items == nil {
		o.Items = []domain.CartLine{}
	}
	return &o, nil
}
