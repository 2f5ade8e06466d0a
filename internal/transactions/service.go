package transactions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trade-manager/trade-manager/internal/events"
	"github.com/trade-manager/trade-manager/internal/platform/httpx"
	"github.com/trade-manager/trade-manager/internal/shared"
)

// Store abstracts the persistence layer so tests can use an in-memory fake.
type Store interface {
	Insert(ctx context.Context, tx Transaction) (int64, error)
	Get(ctx context.Context, id int64) (*Transaction, error)
	List(ctx context.Context, filter ListFilter) ([]Transaction, int, error)
	Delete(ctx context.Context, id int64) error
}

// StockAdjuster applies stock movements triggered by transactions.
type StockAdjuster interface {
	RecordSale(ctx context.Context, articleID int64, variationID *int64, qty float64) error
	RestoreSale(ctx context.Context, articleID int64, variationID *int64, qty float64) error
}

// Publisher emits domain events.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload any) error
}

// Invalidator bumps derived caches after a mutation.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// Service provides business logic for the transaction ledger.
type Service struct {
	store    Store
	stock    StockAdjuster
	bus      Publisher
	caches   Invalidator
	validate *validator.Validate
	now      func() time.Time
}

// NewService constructs a transactions service.
func NewService(store Store, stock StockAdjuster, bus Publisher, caches Invalidator) *Service {
	return &Service{
		store:    store,
		stock:    stock,
		bus:      bus,
		caches:   caches,
		validate: validator.New(),
		now:      time.Now,
	}
}

// WithNow overrides the service clock for testing.
func (s *Service) WithNow(fn func() time.Time) {
	if fn != nil {
		s.now = fn
	}
}

// Record validates and stores a new transaction. A sale with an article and
// quantity decrements stock before the row is written; a failed stock guard
// aborts the whole operation.
func (s *Service) Record(ctx context.Context, req RecordRequest, createdBy int64) (*Transaction, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", httpx.ErrValidation, validationDetail(err))
	}
	if req.Type == TypeSale && req.ArticleID == nil {
		return nil, fmt.Errorf("%w: sale requires an article", httpx.ErrValidation)
	}
	if req.VariationID != nil && req.ArticleID == nil {
		return nil, fmt.Errorf("%w: variation requires an article", httpx.ErrValidation)
	}

	tx := Transaction{
		Type:           req.Type,
		Amount:         req.Amount,
		Quantity:       req.Quantity,
		ArticleID:      req.ArticleID,
		VariationID:    req.VariationID,
		CollaboratorID: req.CollaboratorID,
		Note:           req.Note,
		CreatedBy:      createdBy,
		CreatedAt:      s.now().UTC(),
	}

	movesStock := tx.Type == TypeSale && tx.ArticleID != nil && tx.Quantity != nil && s.stock != nil
	if movesStock {
		if err := s.stock.RecordSale(ctx, *tx.ArticleID, tx.VariationID, *tx.Quantity); err != nil {
			return nil, fmt.Errorf("record sale stock: %w", err)
		}
	}

	id, err := s.store.Insert(ctx, tx)
	if err != nil {
		// The stock decrement already committed; hand the units back so a
		// failed insert leaves no trace.
		if movesStock {
			if rerr := s.stock.RestoreSale(ctx, *tx.ArticleID, tx.VariationID, *tx.Quantity); rerr != nil {
				return nil, fmt.Errorf("insert transaction: %w (stock compensation failed: %v)", err, rerr)
			}
		}
		return nil, fmt.Errorf("insert transaction: %w", err)
	}
	tx.ID = id

	// Re-read the committed row so the event carries the resolved article
	// and collaborator names.
	if full, err := s.store.Get(ctx, id); err == nil {
		tx = *full
	}

	var qty float64
	if tx.Quantity != nil {
		qty = *tx.Quantity
	}
	s.afterMutation(ctx, events.TopicTransactionRecorded, events.TransactionRecorded{
		ID:             tx.ID,
		Type:           string(tx.Type),
		Amount:         tx.Amount,
		Quantity:       qty,
		ArticleName:    tx.ArticleName,
		CollaboratorID: tx.CollaboratorID,
		OccurredAt:     tx.CreatedAt,
	})
	return &tx, nil
}

// Get loads a transaction by ID.
func (s *Service) Get(ctx context.Context, id int64) (*Transaction, error) {
	return s.store.Get(ctx, id)
}

// List returns a filtered, paginated view of the ledger.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Transaction, shared.Pagination, error) {
	if filter.Type != "" && filter.Type != TypeSale && filter.Type != TypeExpense {
		return nil, shared.Pagination{}, fmt.Errorf("%w: unknown transaction type %q", httpx.ErrValidation, filter.Type)
	}
	if !filter.From.IsZero() && !filter.To.IsZero() && filter.From.After(filter.To) {
		// An inverted window answers empty rather than failing.
		return []Transaction{}, shared.NewPagination(filter.Page, filter.PerPage, 0), nil
	}
	page := shared.NewPagination(filter.Page, filter.PerPage, 0)
	filter.Page, filter.PerPage = page.Page, page.PerPage

	txs, total, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, shared.Pagination{}, fmt.Errorf("list transactions: %w", err)
	}
	return txs, shared.NewPagination(filter.Page, filter.PerPage, total), nil
}

// Delete removes a transaction and restores any stock a sale consumed.
func (s *Service) Delete(ctx context.Context, id int64) error {
	tx, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	// The row is gone either way, so derived caches must drop it even when
	// the stock restore below fails.
	var restoreErr error
	if tx.Type == TypeSale && tx.ArticleID != nil && tx.Quantity != nil && s.stock != nil {
		if err := s.stock.RestoreSale(ctx, *tx.ArticleID, tx.VariationID, *tx.Quantity); err != nil {
			restoreErr = fmt.Errorf("restore sale stock: %w", err)
		}
	}
	s.afterMutation(ctx, events.TopicTransactionDeleted, events.TransactionDeleted{
		ID:         tx.ID,
		Type:       string(tx.Type),
		OccurredAt: s.now().UTC(),
	})
	return restoreErr
}

// afterMutation bumps derived caches and emits the event. Both are best
// effort: the row is already committed, readers converge on the next bump.
func (s *Service) afterMutation(ctx context.Context, topic string, payload any) {
	if s.caches != nil {
		_ = s.caches.Invalidate(ctx)
	}
	if s.bus != nil {
		_ = s.bus.Publish(ctx, topic, payload)
	}
}

func validationDetail(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return verrs[0].Field() + " is invalid"
	}
	return "invalid payload"
}
