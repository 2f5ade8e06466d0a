package collaborators

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trade-manager/trade-manager/internal/platform/httpx"
)

// Store abstracts collaborator persistence.
type Store interface {
	Insert(ctx context.Context, c Collaborator) (int64, error)
	Get(ctx context.Context, id int64) (*Collaborator, error)
	List(ctx context.Context, onlyActive bool) ([]Collaborator, error)
	Update(ctx context.Context, id int64, updates map[string]interface{}) error
	SumSales(ctx context.Context, from, to time.Time) (map[int64]float64, error)
}

// Service provides business logic for collaborators and their payouts.
type Service struct {
	store    Store
	validate *validator.Validate
}

// NewService constructs a collaborators service.
func NewService(store Store) *Service {
	return &Service{store: store, validate: validator.New()}
}

// Create registers a new collaborator.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Collaborator, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: invalid collaborator payload", httpx.ErrValidation)
	}
	c := Collaborator{
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		SharePercent: req.SharePercent,
		IsActive:     true,
	}
	id, err := s.store.Insert(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("create collaborator: %w", err)
	}
	return s.store.Get(ctx, id)
}

// Get loads a collaborator by ID.
func (s *Service) Get(ctx context.Context, id int64) (*Collaborator, error) {
	return s.store.Get(ctx, id)
}

// List returns collaborators, optionally only active ones.
func (s *Service) List(ctx context.Context, onlyActive bool) ([]Collaborator, error) {
	return s.store.List(ctx, onlyActive)
}

// Update applies a partial update.
func (s *Service) Update(ctx context.Context, id int64, req UpdateRequest) (*Collaborator, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: invalid collaborator payload", httpx.ErrValidation)
	}
	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Email != nil {
		updates["email"] = *req.Email
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.SharePercent != nil {
		updates["share_percent"] = *req.SharePercent
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
	return s.store.Get(ctx, id)
}

// Earnings computes each collaborator's payout over the window: the revenue
// they generated times their share percentage. Collaborators with no sales
// in the window appear with zero figures.
func (s *Service) Earnings(ctx context.Context, from, to time.Time) ([]Earning, error) {
	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return []Earning{}, nil
	}
	all, err := s.store.List(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("list collaborators: %w", err)
	}
	sums, err := s.store.SumSales(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("sum sales: %w", err)
	}
	earnings := make([]Earning, 0, len(all))
	for _, c := range all {
		revenue := sums[c.ID]
		earnings = append(earnings, Earning{
			CollaboratorID: c.ID,
			Name:           c.Name,
			SharePercent:   c.SharePercent,
			Revenue:        revenue,
			Payout:         revenue * c.SharePercent / 100,
		})
	}
	sort.SliceStable(earnings, func(i, j int) bool {
		return earnings[i].Revenue > earnings[j].Revenue
	})
	return earnings, nil
}
