package articles

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/trade-manager/trade-manager/internal/platform/httpx"
	"github.com/trade-manager/trade-manager/internal/shared"
)

// Store abstracts article persistence.
type Store interface {
	Insert(ctx context.Context, a Article) (int64, error)
	Get(ctx context.Context, id int64) (*Article, error)
	List(ctx context.Context, filter ListFilter) ([]Article, int, error)
	Update(ctx context.Context, id int64, updates map[string]interface{}) error
	ListVariations(ctx context.Context, articleID int64) ([]Variation, error)
	InsertVariation(ctx context.Context, v Variation) (int64, error)
	DeleteVariation(ctx context.Context, articleID, variationID int64) error
}

// StockInitializer opens a stock record for a freshly created article.
type StockInitializer interface {
	InitArticle(ctx context.Context, articleID int64, variationIDs []int64) error
}

// Invalidator bumps derived caches after a mutation.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// Service provides business logic for the article catalog.
type Service struct {
	store    Store
	stock    StockInitializer
	caches   Invalidator
	validate *validator.Validate
}

// NewService constructs an articles service.
func NewService(store Store, stock StockInitializer, caches Invalidator) *Service {
	return &Service{store: store, stock: stock, caches: caches, validate: validator.New()}
}

// Create stores a new article together with its initial variations.
func (s *Service) Create(ctx context.Context, req CreateArticleRequest) (*Article, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: invalid article payload", httpx.ErrValidation)
	}
	article := Article{
		Code:        req.Code,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		IsActive:    true,
	}
	id, err := s.store.Insert(ctx, article)
	if err != nil {
		if errors.Is(err, httpx.ErrDuplicate) {
			return nil, fmt.Errorf("%w: article code already exists", httpx.ErrDuplicate)
		}
		return nil, fmt.Errorf("create article: %w", err)
	}
	article.ID = id

	variationIDs := make([]int64, 0, len(req.Variations))
	for _, name := range req.Variations {
		vid, err := s.store.InsertVariation(ctx, Variation{ArticleID: id, Name: name})
		if err != nil {
			return nil, fmt.Errorf("create variation %q: %w", name, err)
		}
		variationIDs = append(variationIDs, vid)
	}

	if s.stock != nil {
		if err := s.stock.InitArticle(ctx, id, variationIDs); err != nil {
			return nil, fmt.Errorf("init stock: %w", err)
		}
	}
	s.invalidate(ctx)
	return s.store.Get(ctx, id)
}

// Get loads an article with variations.
func (s *Service) Get(ctx context.Context, id int64) (*Article, error) {
	return s.store.Get(ctx, id)
}

// List returns a filtered, paginated catalog view.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Article, shared.Pagination, error) {
	page := shared.NewPagination(filter.Page, filter.PerPage, 0)
	filter.Page, filter.PerPage = page.Page, page.PerPage

	articles, total, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, shared.Pagination{}, fmt.Errorf("list articles: %w", err)
	}
	return articles, shared.NewPagination(filter.Page, filter.PerPage, total), nil
}

// Update applies a partial update.
func (s *Service) Update(ctx context.Context, id int64, req UpdateArticleRequest) (*Article, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: invalid article payload", httpx.ErrValidation)
	}
	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if len(updates) == 0 {
		return s.store.Get(ctx, id)
	}
	if err := s.store.Update(ctx, id, updates); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return s.store.Get(ctx, id)
}

// AddVariation attaches a new variation to an existing article.
func (s *Service) AddVariation(ctx context.Context, articleID int64, req AddVariationRequest) (*Variation, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: invalid variation payload", httpx.ErrValidation)
	}
	if _, err := s.store.Get(ctx, articleID); err != nil {
		return nil, err
	}
	v := Variation{ArticleID: articleID, Name: req.Name, Price: req.Price}
	id, err := s.store.InsertVariation(ctx, v)
	if err != nil {
		return nil, fmt.Errorf("add variation: %w", err)
	}
	v.ID = id
	if s.stock != nil {
		if err := s.stock.InitArticle(ctx, articleID, []int64{id}); err != nil {
			return nil, fmt.Errorf("init variation stock: %w", err)
		}
	}
	s.invalidate(ctx)
	return &v, nil
}

// RemoveVariation detaches a variation from an article.
func (s *Service) RemoveVariation(ctx context.Context, articleID, variationID int64) error {
	if err := s.store.DeleteVariation(ctx, articleID, variationID); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *Service) invalidate(ctx context.Context) {
	if s.caches != nil {
		_ = s.caches.Invalidate(ctx)
	}
}
