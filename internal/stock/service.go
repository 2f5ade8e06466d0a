package stock

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trade-manager/trade-manager/internal/events"
	"github.com/trade-manager/trade-manager/internal/platform/httpx"
)

// RepositoryPort abstracts repository usage for service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	ListLevels(ctx context.Context) ([]Level, error)
	ListLow(ctx context.Context, threshold float64) ([]Level, error)
	ListMovements(ctx context.Context, articleID int64, limit int) ([]Movement, error)
	InsertLevel(ctx context.Context, articleID int64, variationID *int64) error
}

// Publisher emits domain events.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload any) error
}

// ServiceConfig groups optional settings.
type ServiceConfig struct {
	AllowNegativeStock bool
	LowStockThreshold  float64
}

// Service coordinates stock movements. Inbound movements recompute the
// moving-average cost; outbound movements consume at the current average.
type Service struct {
	repo      RepositoryPort
	bus       Publisher
	validate  *validator.Validate
	allowNeg  bool
	threshold float64
	now       func() time.Time
}

// NewService builds Service.
func NewService(repo RepositoryPort, bus Publisher, cfg ServiceConfig) *Service {
	threshold := cfg.LowStockThreshold
	if threshold <= 0 {
		threshold = 5
	}
	return &Service{
		repo:      repo,
		bus:       bus,
		validate:  validator.New(),
		allowNeg:  cfg.AllowNegativeStock,
		threshold: threshold,
		now:       time.Now,
	}
}

// InitArticle opens zero levels for a new article and its variations.
// Satisfies the articles module's StockInitializer port.
func (s *Service) InitArticle(ctx context.Context, articleID int64, variationIDs []int64) error {
	if len(variationIDs) == 0 {
		return s.repo.InsertLevel(ctx, articleID, nil)
	}
	for _, vid := range variationIDs {
		vid := vid
		if err := s.repo.InsertLevel(ctx, articleID, &vid); err != nil {
			return err
		}
	}
	return nil
}

// RecordSale consumes stock for a sale. Satisfies the transactions module's
// StockAdjuster port.
func (s *Service) RecordSale(ctx context.Context, articleID int64, variationID *int64, qty float64) error {
	if qty <= 0 {
		return fmt.Errorf("%w: sale quantity must be positive", httpx.ErrValidation)
	}
	_, err := s.postMovement(ctx, movementParams{
		ArticleID:   articleID,
		VariationID: variationID,
		Type:        MovementOut,
		QtyChange:   -qty,
	})
	if errors.Is(err, ErrNegativeStock) {
		return fmt.Errorf("%w: insufficient stock", httpx.ErrValidation)
	}
	return err
}

// RestoreSale puts stock back after a sale transaction is deleted.
func (s *Service) RestoreSale(ctx context.Context, articleID int64, variationID *int64, qty float64) error {
	if qty <= 0 {
		return fmt.Errorf("%w: restore quantity must be positive", httpx.ErrValidation)
	}
	_, err := s.postMovement(ctx, movementParams{
		ArticleID:   articleID,
		VariationID: variationID,
		Type:        MovementIn,
		QtyChange:   qty,
	})
	return err
}

// Receive posts an inbound movement with a purchase cost.
func (s *Service) Receive(ctx context.Context, req ReceiveRequest, actorID int64) (Movement, error) {
	if err := s.validate.Struct(req); err != nil {
		return Movement{}, fmt.Errorf("%w: invalid receive payload", httpx.ErrValidation)
	}
	return s.postMovement(ctx, movementParams{
		ArticleID:   req.ArticleID,
		VariationID: req.VariationID,
		Type:        MovementIn,
		QtyChange:   req.Quantity,
		UnitCost:    req.UnitCost,
		Note:        req.Note,
		ActorID:     actorID,
	})
}

// Adjust posts a manual correction, positive or negative.
func (s *Service) Adjust(ctx context.Context, req AdjustRequest, actorID int64) (Movement, error) {
	if err := s.validate.Struct(req); err != nil {
		return Movement{}, fmt.Errorf("%w: invalid adjust payload", httpx.ErrValidation)
	}
	if math.Abs(req.Quantity) < 1e-9 {
		return Movement{}, fmt.Errorf("%w: quantity must be non-zero", httpx.ErrValidation)
	}
	m, err := s.postMovement(ctx, movementParams{
		ArticleID:   req.ArticleID,
		VariationID: req.VariationID,
		Type:        MovementAdjust,
		QtyChange:   req.Quantity,
		UnitCost:    req.UnitCost,
		Note:        req.Note,
		ActorID:     actorID,
	})
	if errors.Is(err, ErrNegativeStock) {
		return Movement{}, fmt.Errorf("%w: adjustment would drive stock negative", httpx.ErrValidation)
	}
	return m, err
}

// Levels lists the current stock position.
func (s *Service) Levels(ctx context.Context) ([]Level, error) {
	return s.repo.ListLevels(ctx)
}

// LowLevels lists positions at or below the low-stock threshold.
func (s *Service) LowLevels(ctx context.Context) ([]Level, error) {
	return s.repo.ListLow(ctx, s.threshold)
}

// Movements lists the recent history for an article.
func (s *Service) Movements(ctx context.Context, articleID int64, limit int) ([]Movement, error) {
	if articleID <= 0 {
		return nil, fmt.Errorf("%w: article required", httpx.ErrValidation)
	}
	return s.repo.ListMovements(ctx, articleID, limit)
}

type movementParams struct {
	ArticleID   int64
	VariationID *int64
	Type        MovementType
	QtyChange   float64
	UnitCost    float64
	Note        *string
	ActorID     int64
}

func (s *Service) postMovement(ctx context.Context, params movementParams) (Movement, error) {
	if params.ArticleID <= 0 {
		return Movement{}, fmt.Errorf("%w: article required", httpx.ErrValidation)
	}
	if params.QtyChange == 0 {
		return Movement{}, ErrInvalidQuantity
	}
	if params.UnitCost < 0 {
		return Movement{}, ErrInvalidUnitCost
	}
	now := s.now().UTC()

	var movement Movement
	var level Level
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := tx.GetLevelForUpdate(ctx, params.ArticleID, params.VariationID)
		if err != nil && !errors.Is(err, ErrLevelNotFound) {
			return err
		}
		if errors.Is(err, ErrLevelNotFound) {
			current = Level{ArticleID: params.ArticleID, VariationID: params.VariationID}
		}

		newQty := current.Quantity + params.QtyChange
		if !s.allowNeg && newQty < -0.0001 {
			return ErrNegativeStock
		}

		unitCost := params.UnitCost
		newAvg := current.AvgCost
		if params.QtyChange > 0 {
			if unitCost == 0 {
				unitCost = current.AvgCost
			}
			totalCost := current.Quantity*current.AvgCost + params.QtyChange*unitCost
			if newQty != 0 {
				newAvg = totalCost / newQty
			}
		} else {
			unitCost = current.AvgCost
			if math.Abs(newQty) < 0.0001 {
				newQty = 0
			}
			if newQty <= 0 {
				newAvg = 0
			}
		}

		current.Quantity = newQty
		current.AvgCost = newAvg
		if err := tx.UpsertLevel(ctx, current); err != nil {
			return err
		}

		movement = Movement{
			ArticleID:   params.ArticleID,
			VariationID: params.VariationID,
			Type:        params.Type,
			Quantity:    params.QtyChange,
			UnitCost:    unitCost,
			BalanceQty:  newQty,
			Note:        params.Note,
			CreatedBy:   params.ActorID,
			CreatedAt:   now,
		}
		id, err := tx.InsertMovement(ctx, movement)
		if err != nil {
			return err
		}
		movement.ID = id
		level = current
		return nil
	})
	if err != nil {
		return Movement{}, err
	}

	if s.bus != nil && level.Quantity <= s.threshold {
		_ = s.bus.Publish(ctx, events.TopicStockLow, events.StockLow{
			ArticleID:   level.ArticleID,
			VariationID: level.VariationID,
			Name:        level.ArticleName,
			Quantity:    level.Quantity,
			Threshold:   s.threshold,
		})
	}
	return movement, nil
}
