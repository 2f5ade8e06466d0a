package users

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/trade-manager/trade-manager/internal/platform/httpx"
)

// Repository persists user accounts in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Get loads a profile by ID.
func (r *Repository) Get(ctx context.Context, id int64) (*Profile, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("users repository not initialised")
	}
	var p Profile
	err := r.pool.QueryRow(ctx, `SELECT id, email, name, is_active, currency, locale, created_at, updated_at
FROM users WHERE id = $1`, id).
		Scan(&p.ID, &p.Email, &p.Name, &p.IsActive, &p.Currency, &p.Locale, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, httpx.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateSettings applies the given settings columns.
func (r *Repository) UpdateSettings(ctx context.Context, id int64, updates map[string]string) error {
	if r == nil || r.pool == nil {
		return errors.New("users repository not initialised")
	}
	if len(updates) == 0 {
		return nil
	}
	sets := []string{"updated_at = now()"}
	args := []interface{}{}
	i := 1
	for _, col := range []string{"currency", "locale"} {
		if v, ok := updates[col]; ok {
			sets = append(sets, col+" = $"+strconv.Itoa(i))
			args = append(args, v)
			i++
		}
	}
	args = append(args, id)
	tag, err := r.pool.Exec(ctx, `UPDATE users SET `+strings.Join(sets, ", ")+` WHERE id = $`+strconv.Itoa(i), args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}
