package articles

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/trade-manager/trade-manager/internal/platform/httpx"
)

// Repository persists the article catalog in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const uniqueViolation = "23505"

// Insert stores a new article and returns its ID. A duplicate code maps to
// the conflict sentinel.
func (r *Repository) Insert(ctx context.Context, a Article) (int64, error) {
	if r == nil || r.pool == nil {
		return 0, errors.New("articles repository not initialised")
	}
	var id int64
	err := r.pool.QueryRow(ctx, `INSERT INTO articles (code, name, description, price, is_active, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, now(), now())
RETURNING id`, a.Code, a.Name, a.Description, a.Price, a.IsActive).Scan(&id)
	if isUnique(err) {
		return 0, httpx.ErrDuplicate
	}
	return id, err
}

// Get loads an article with its variations.
func (r *Repository) Get(ctx context.Context, id int64) (*Article, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("articles repository not initialised")
	}
	var a Article
	err := r.pool.QueryRow(ctx, `SELECT id, code, name, description, price, is_active, created_at, updated_at
FROM articles WHERE id = $1`, id).Scan(&a.ID, &a.Code, &a.Name, &a.Description, &a.Price, &a.IsActive, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, httpx.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	variations, err := r.ListVariations(ctx, id)
	if err != nil {
		return nil, err
	}
	a.Variations = variations
	return &a, nil
}

// List returns a filtered page of articles plus the total count.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]Article, int, error) {
	if r == nil || r.pool == nil {
		return nil, 0, errors.New("articles repository not initialised")
	}
	where := ` WHERE ($1::text = '' OR name ILIKE '%' || $1 || '%' OR code ILIKE '%' || $1 || '%')
  AND ($2::boolean IS NULL OR is_active = $2)`

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM articles`+where, filter.Search, filter.IsActive).Scan(&total); err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.PerPage
	if offset < 0 {
		offset = 0
	}
	rows, err := r.pool.Query(ctx, `SELECT id, code, name, description, price, is_active, created_at, updated_at
FROM articles`+where+`
ORDER BY name ASC, id ASC
LIMIT $3 OFFSET $4`, filter.Search, filter.IsActive, filter.PerPage, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	articles := []Article{}
	for rows.Next() {
		var a Article
		if err := rows.Scan(&a.ID, &a.Code, &a.Name, &a.Description, &a.Price, &a.IsActive, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, 0, err
		}
		articles = append(articles, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return articles, total, nil
}

// Update applies the given column updates.
func (r *Repository) Update(ctx context.Context, id int64, updates map[string]interface{}) error {
	if r == nil || r.pool == nil {
		return errors.New("articles repository not initialised")
	}
	if len(updates) == 0 {
		return nil
	}
	query := `UPDATE articles SET updated_at = now()`
	args := []interface{}{}
	i := 1
	for _, col := range []string{"name", "description", "price", "is_active"} {
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

// ListVariations loads the variations of an article.
func (r *Repository) ListVariations(ctx context.Context, articleID int64) ([]Variation, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, article_id, name, price, created_at
FROM article_variations WHERE article_id = $1 ORDER BY name ASC, id ASC`, articleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	variations := []Variation{}
	for rows.Next() {
		var v Variation
		if err := rows.Scan(&v.ID, &v.ArticleID, &v.Name, &v.Price, &v.CreatedAt); err != nil {
			return nil, err
		}
		variations = append(variations, v)
	}
	return variations, rows.Err()
}

// InsertVariation stores a new variation for an article.
func (r *Repository) InsertVariation(ctx context.Context, v Variation) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `INSERT INTO article_variations (article_id, name, price, created_at)
VALUES ($1, $2, $3, now())
RETURNING id`, v.ArticleID, v.Name, v.Price).Scan(&id)
	if isUnique(err) {
		return 0, httpx.ErrDuplicate
	}
	return id, err
}

// DeleteVariation removes a variation.
func (r *Repository) DeleteVariation(ctx context.Context, articleID, variationID int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM article_variations WHERE id = $1 AND article_id = $2`, variationID, articleID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func isUnique(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
