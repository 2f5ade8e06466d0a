package users

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/trade-manager/trade-manager/internal/platform/httpx"
	"github.com/trade-manager/trade-manager/internal/shared"
)

// Store abstracts user persistence.
type Store interface {
	Get(ctx context.Context, id int64) (*Profile, error)
	UpdateSettings(ctx context.Context, id int64, updates map[string]string) error
}

// Service provides account profile and settings logic.
type Service struct {
	store    Store
	validate *validator.Validate
}

// NewService constructs a users service.
func NewService(store Store) *Service {
	return &Service{store: store, validate: validator.New()}
}

// Profile loads the account record.
func (s *Service) Profile(ctx context.Context, id int64) (*Profile, error) {
	return s.store.Get(ctx, id)
}

// Settings returns the display preferences for a user, falling back to
// defaults for blank columns.
func (s *Service) Settings(ctx context.Context, id int64) (Settings, error) {
	p, err := s.store.Get(ctx, id)
	if err != nil {
		return Settings{}, err
	}
	settings := Settings{Currency: p.Currency, Locale: p.Locale}
	if settings.Currency == "" {
		settings.Currency = "USD"
	}
	if settings.Locale == "" {
		settings.Locale = "en"
	}
	return settings, nil
}

// UpdateSettings applies a partial settings update.
func (s *Service) UpdateSettings(ctx context.Context, id int64, req UpdateSettingsRequest) (Settings, error) {
	if err := s.validate.Struct(req); err != nil {
		return Settings{}, fmt.Errorf("%w: invalid settings payload", httpx.ErrValidation)
	}
	updates := make(map[string]string)
	if req.Currency != nil {
		updates["currency"] = strings.ToUpper(*req.Currency)
	}
	if req.Locale != nil {
		updates["locale"] = *req.Locale
	}
	if len(updates) > 0 {
		if err := s.store.UpdateSettings(ctx, id, updates); err != nil {
			return Settings{}, err
		}
	}
	return s.Settings(ctx, id)
}

// Formatter builds a money formatter honouring the user's settings.
func (s *Service) Formatter(ctx context.Context, id int64) (*shared.MoneyFormatter, error) {
	settings, err := s.Settings(ctx, id)
	if err != nil {
		return nil, err
	}
	return shared.NewMoneyFormatter(settings.Locale, settings.Currency), nil
}
