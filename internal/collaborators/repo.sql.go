package collaborators

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/trade-manager/trade-manager/internal/platform/httpx"
)

// Repository persists collaborators in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Insert stores a new collaborator and returns its ID.
func (r *Repository) Insert(ctx context.Context, c Collaborator) (int64, error) {
	if r == nil || r.pool == nil {
		return 0, errors.New("collaborators repository not initialised")
	}
	var id int64
	err := r.pool.QueryRow(ctx, `INSERT INTO collaborators (name, email, phone, share_percent, is_active, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, now(), now())
RETURNING id`, c.Name, c.Email, c.Phone, c.SharePercent, c.IsActive).Scan(&id)
	return id, err
}

// Get loads a collaborator by ID.
func (r *Repository) Get(ctx context.Context, id int64) (*Collaborator, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("collaborators repository not initialised")
	}
	var c Collaborator
	err := r.pool.QueryRow(ctx, `SELECT id, name, email, phone, share_percent, is_active, created_at, updated_at
FROM collaborators WHERE id = $1`, id).Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.SharePercent, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, httpx.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// List returns all collaborators, optionally only active ones.
func (r *Repository) List(ctx context.Context, onlyActive bool) ([]Collaborator, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("collaborators repository not initialised")
	}
	rows, err := r.pool.Query(ctx, `SELECT id, name, email, phone, share_percent, is_active, created_at, updated_at
FROM collaborators
WHERE NOT $1::boolean OR is_active
ORDER BY name ASC, id ASC`, onlyActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Collaborator{}
	for rows.Next() {
		var c Collaborator
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.SharePercent, &c.IsActive, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Update applies the given column updates.
func (r *Repository) Update(ctx context.Context, id int64, updates map[string]interface{}) error {
	if r == nil || r.pool == nil {
		return errors.New("collaborators repository not initialised")
	}
	if len(updates) == 0 {
		return nil
	}
	query := `UPDATE collaborators SET updated_at = now()`
	args := []interface{}{}
	i := 1
	for _, col := range []string{"name", "email", "phone", "share_percent", "is_active"} {
		if v, ok := updates[col]; ok {
			query += `, ` + col + ` = $` + strconv.Itoa(i)
			args = append(args, v)
			i++
		}
	}
	query += ` WHERE id = $` + strconv.Itoa(i)
	args = append(args, id)

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

// SumSales aggregates sale revenue per collaborator over the window.
func (r *Repository) SumSales(ctx context.Context, from, to time.Time) (map[int64]float64, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("collaborators repository not initialised")
	}
	rows, err := r.pool.Query(ctx, `SELECT collaborator_id, SUM(amount)
FROM transactions
WHERE tx_type = 'sale' AND collaborator_id IS NOT NULL
  AND ($1::timestamptz IS NULL OR created_at >= $1)
  AND ($2::timestamptz IS NULL OR created_at < $2)
GROUP BY collaborator_id`, nullTime(from), nullTime(to))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sums := map[int64]float64{}
	for rows.Next() {
		var id int64
		var total float64
		if err := rows.Scan(&id, &total); err != nil {
			return nil, err
		}
		sums[id] = total
	}
	return sums, rows.Err()
}

func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
