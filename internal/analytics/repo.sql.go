package analytics

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PGRepository loads transaction snapshots from PostgreSQL with the article,
// variation, and collaborator names resolved in one pass.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewPGRepository constructs PGRepository.
func NewPGRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// ListBetween returns all transactions whose created_at falls inside the
// half-open day window. Zero bounds leave that side open.
func (r *PGRepository) ListBetween(ctx context.Context, from, to time.Time) ([]Transaction, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("analytics repository not initialised")
	}
	rows, err := r.pool.Query(ctx, `SELECT t.id, t.tx_type, t.amount, t.quantity, t.created_at,
       COALESCE(a.name, ''), COALESCE(v.name, ''), t.collaborator_id, COALESCE(c.name, '')
FROM transactions t
LEFT JOIN articles a ON a.id = t.article_id
LEFT JOIN article_variations v ON v.id = t.variation_id
LEFT JOIN collaborators c ON c.id = t.collaborator_id
WHERE t.created_at >= COALESCE($1, '-infinity'::timestamptz)
  AND t.created_at < COALESCE($2, 'infinity'::timestamptz)
ORDER BY t.created_at ASC, t.id ASC`, nullTime(from), nullTime(toExclusive(to)))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	txs := []Transaction{}
	for rows.Next() {
		var tx Transaction
		if err := rows.Scan(&tx.ID, &tx.Type, &tx.Amount, &tx.Quantity, &tx.CreatedAt,
			&tx.ArticleName, &tx.VariationName, &tx.CollaboratorID, &tx.CollaboratorName); err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return txs, nil
}

func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

// toExclusive widens an inclusive day bound to the start of the next day so
// the SQL window keeps every timestamp on the end date.
func toExclusive(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return dayOf(t).AddDate(0, 0, 1)
}
