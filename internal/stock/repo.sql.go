package stock

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/trade-manager/trade-manager/internal/platform/db"
)

// Repository persists stock levels and movements in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// TxRepository exposes the operations that must run inside one transaction.
type TxRepository interface {
	GetLevelForUpdate(ctx context.Context, articleID int64, variationID *int64) (Level, error)
	UpsertLevel(ctx context.Context, level Level) error
	InsertMovement(ctx context.Context, m Movement) (int64, error)
}

type txRepository struct {
	tx pgx.Tx
}

// WithTx executes the callback inside a repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	if r == nil || r.pool == nil {
		return errors.New("stock repository not initialised")
	}
	return db.WithTx(ctx, r.pool, pgx.TxOptions{IsoLevel: pgx.RepeatableRead}, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

// ListLevels returns every stock level with display names resolved.
func (r *Repository) ListLevels(ctx context.Context) ([]Level, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("stock repository not initialised")
	}
	rows, err := r.pool.Query(ctx, `SELECT s.id, s.article_id, s.variation_id, s.quantity, s.avg_cost, s.updated_at,
       COALESCE(a.name, ''), COALESCE(v.name, '')
FROM stock_levels s
JOIN articles a ON a.id = s.article_id
LEFT JOIN article_variations v ON v.id = s.variation_id
ORDER BY a.name ASC, v.name ASC NULLS FIRST`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	levels := []Level{}
	for rows.Next() {
		var l Level
		if err := rows.Scan(&l.ID, &l.ArticleID, &l.VariationID, &l.Quantity, &l.AvgCost, &l.UpdatedAt,
			&l.ArticleName, &l.VariationName); err != nil {
			return nil, err
		}
		levels = append(levels, l)
	}
	return levels, rows.Err()
}

// ListLow returns levels at or below the threshold.
func (r *Repository) ListLow(ctx context.Context, threshold float64) ([]Level, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("stock repository not initialised")
	}
	rows, err := r.pool.Query(ctx, `SELECT s.id, s.article_id, s.variation_id, s.quantity, s.avg_cost, s.updated_at,
       COALESCE(a.name, ''), COALESCE(v.name, '')
FROM stock_levels s
JOIN articles a ON a.id = s.article_id
LEFT JOIN article_variations v ON v.id = s.variation_id
WHERE s.quantity <= $1
ORDER BY s.quantity ASC`, threshold)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	levels := []Level{}
	for rows.Next() {
		var l Level
		if err := rows.Scan(&l.ID, &l.ArticleID, &l.VariationID, &l.Quantity, &l.AvgCost, &l.UpdatedAt,
			&l.ArticleName, &l.VariationName); err != nil {
			return nil, err
		}
		levels = append(levels, l)
	}
	return levels, rows.Err()
}

// ListMovements returns the recent movement history for an article.
func (r *Repository) ListMovements(ctx context.Context, articleID int64, limit int) ([]Movement, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("stock repository not initialised")
	}
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.pool.Query(ctx, `SELECT id, article_id, variation_id, movement_type, quantity, unit_cost, balance_qty, note, created_by, created_at
FROM stock_movements
WHERE article_id = $1
ORDER BY created_at DESC, id DESC
LIMIT $2`, articleID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	movements := []Movement{}
	for rows.Next() {
		var m Movement
		if err := rows.Scan(&m.ID, &m.ArticleID, &m.VariationID, &m.Type, &m.Quantity, &m.UnitCost,
			&m.BalanceQty, &m.Note, &m.CreatedBy, &m.CreatedAt); err != nil {
			return nil, err
		}
		movements = append(movements, m)
	}
	return movements, rows.Err()
}

// InsertLevel opens a zero-quantity level row, ignoring duplicates.
func (r *Repository) InsertLevel(ctx context.Context, articleID int64, variationID *int64) error {
	if r == nil || r.pool == nil {
		return errors.New("stock repository not initialised")
	}
	_, err := r.pool.Exec(ctx, `INSERT INTO stock_levels (article_id, variation_id, quantity, avg_cost, updated_at)
VALUES ($1, $2, 0, 0, now())
ON CONFLICT (article_id, variation_id) DO NOTHING`, articleID, variationID)
	return err
}

func (r *txRepository) GetLevelForUpdate(ctx context.Context, articleID int64, variationID *int64) (Level, error) {
	var l Level
	err := r.tx.QueryRow(ctx, `SELECT sl.id, sl.article_id, sl.variation_id, sl.quantity, sl.avg_cost, sl.updated_at,
       COALESCE(a.name, ''), COALESCE(av.name, '')
FROM stock_levels sl
JOIN articles a ON a.id = sl.article_id
LEFT JOIN article_variations av ON av.id = sl.variation_id
WHERE sl.article_id = $1 AND sl.variation_id IS NOT DISTINCT FROM $2
FOR UPDATE OF sl`, articleID, variationID).Scan(&l.ID, &l.ArticleID, &l.VariationID, &l.Quantity, &l.AvgCost, &l.UpdatedAt,
		&l.ArticleName, &l.VariationName)
	if errors.Is(err, pgx.ErrNoRows) {
		return Level{}, ErrLevelNotFound
	}
	return l, err
}

func (r *txRepository) UpsertLevel(ctx context.Context, level Level) error {
	_, err := r.tx.Exec(ctx, `INSERT INTO stock_levels (article_id, variation_id, quantity, avg_cost, updated_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (article_id, variation_id)
DO UPDATE SET quantity = EXCLUDED.quantity, avg_cost = EXCLUDED.avg_cost, updated_at = EXCLUDED.updated_at`,
		level.ArticleID, level.VariationID, level.Quantity, level.AvgCost, time.Now().UTC())
	return err
}

func (r *txRepository) InsertMovement(ctx context.Context, m Movement) (int64, error) {
	var id int64
	err := r.tx.QueryRow(ctx, `INSERT INTO stock_movements
(article_id, variation_id, movement_type, quantity, unit_cost, balance_qty, note, created_by, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING id`,
		m.ArticleID, m.VariationID, string(m.Type), m.Quantity, m.UnitCost, m.BalanceQty,
		m.Note, m.CreatedBy, m.CreatedAt).Scan(&id)
	return id, err
}
