package transactions

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/trade-manager/trade-manager/internal/platform/httpx"
)

// Repository persists transactions in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const selectColumns = `t.id, t.tx_type, t.amount, t.quantity, t.article_id, t.variation_id,
       t.collaborator_id, t.note, t.created_by, t.created_at,
       COALESCE(a.name, ''), COALESCE(v.name, ''), COALESCE(c.name, '')`

const selectJoins = `FROM transactions t
LEFT JOIN articles a ON a.id = t.article_id
LEFT JOIN article_variations v ON v.id = t.variation_id
LEFT JOIN collaborators c ON c.id = t.collaborator_id`

// Insert stores a new transaction and returns its ID.
func (r *Repository) Insert(ctx context.Context, tx Transaction) (int64, error) {
	if r == nil || r.pool == nil {
		return 0, errors.New("transactions repository not initialised")
	}
	var id int64
	err := r.pool.QueryRow(ctx, `INSERT INTO transactions
(tx_type, amount, quantity, article_id, variation_id, collaborator_id, note, created_by, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING id`,
		string(tx.Type), tx.Amount, tx.Quantity, tx.ArticleID, tx.VariationID,
		tx.CollaboratorID, tx.Note, tx.CreatedBy, tx.CreatedAt).Scan(&id)
	return id, err
}

// Get loads a single transaction with display names resolved.
func (r *Repository) Get(ctx context.Context, id int64) (*Transaction, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("transactions repository not initialised")
	}
	row := r.pool.QueryRow(ctx, `SELECT `+selectColumns+` `+selectJoins+` WHERE t.id = $1`, id)
	tx, err := scanTransaction(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, httpx.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return tx, nil
}

// List returns a filtered page of transactions plus the total row count.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]Transaction, int, error) {
	if r == nil || r.pool == nil {
		return nil, 0, errors.New("transactions repository not initialised")
	}
	where := ` WHERE ($1::timestamptz IS NULL OR t.created_at >= $1)
  AND ($2::timestamptz IS NULL OR t.created_at < $2)
  AND ($3::text = '' OR t.tx_type = $3)
  AND ($4::bigint IS NULL OR t.collaborator_id = $4)`
	from := nullTime(filter.From)
	to := nullTime(endExclusive(filter.To))
	txType := string(filter.Type)

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM transactions t`+where, from, to, txType, filter.CollaboratorID).Scan(&total); err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.PerPage
	if offset < 0 {
		offset = 0
	}
	rows, err := r.pool.Query(ctx, `SELECT `+selectColumns+` `+selectJoins+where+`
ORDER BY t.created_at DESC, t.id DESC
LIMIT $5 OFFSET $6`, from, to, txType, filter.CollaboratorID, filter.PerPage, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	txs := []Transaction{}
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, 0, err
		}
		txs = append(txs, *tx)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return txs, total, nil
}

// Delete removes a transaction by ID.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	if r == nil || r.pool == nil {
		return errors.New("transactions repository not initialised")
	}
	tag, err := r.pool.Exec(ctx, `DELETE FROM transactions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (*Transaction, error) {
	var tx Transaction
	err := row.Scan(&tx.ID, &tx.Type, &tx.Amount, &tx.Quantity, &tx.ArticleID, &tx.VariationID,
		&tx.CollaboratorID, &tx.Note, &tx.CreatedBy, &tx.CreatedAt,
		&tx.ArticleName, &tx.VariationName, &tx.CollaboratorName)
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

// endExclusive widens an inclusive day bound to the start of the next day.
func endExclusive(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
}
