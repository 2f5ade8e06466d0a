package users

import "time"

// Profile is the user-facing account record. PasswordHash never leaves the
// repository layer.
type Profile struct {
	ID        int64     `json:"id" db:"id"`
	Email     string    `json:"email" db:"email"`
	Name      string    `json:"name" db:"name"`
	IsActive  bool      `json:"is_active" db:"is_active"`
	Currency  string    `json:"currency" db:"currency"`
	Locale    string    `json:"locale" db:"locale"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Settings are the display preferences applied to formatted amounts.
type Settings struct {
	Currency string `json:"currency"`
	Locale   string `json:"locale"`
}

// UpdateSettingsRequest carries partial settings updates.
type UpdateSettingsRequest struct {
	Currency *string `json:"currency,omitempty" validate:"omitempty,len=3,alpha"`
	Locale   *string `json:"locale,omitempty" validate:"omitempty,bcp47_language_tag"`
}
