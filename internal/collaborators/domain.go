package collaborators

import "time"

// Collaborator is a person who sells on behalf of the business and earns a
// percentage of the revenue they generate.
type Collaborator struct {
	ID           int64     `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Email        *string   `json:"email,omitempty" db:"email"`
	Phone        *string   `json:"phone,omitempty" db:"phone"`
	SharePercent float64   `json:"share_percent" db:"share_percent"`
	IsActive     bool      `json:"is_active" db:"is_active"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// CreateRequest is the payload for registering a collaborator.
type CreateRequest struct {
	Name         string  `json:"name" validate:"required,max=200"`
	Email        *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone        *string `json:"phone,omitempty" validate:"omitempty,max=50"`
	SharePercent float64 `json:"share_percent" validate:"gte=0,lte=100"`
}

// UpdateRequest carries partial updates; nil fields are untouched.
type UpdateRequest struct {
	Name         *string  `json:"name,omitempty" validate:"omitempty,max=200"`
	Email        *string  `json:"email,omitempty" validate:"omitempty,email"`
	Phone        *string  `json:"phone,omitempty" validate:"omitempty,max=50"`
	SharePercent *float64 `json:"share_percent,omitempty" validate:"omitempty,gte=0,lte=100"`
	IsActive     *bool    `json:"is_active,omitempty"`
}

// Earning is the computed payout line for one collaborator over a window.
type Earning struct {
	CollaboratorID int64   `json:"collaborator_id"`
	Name           string  `json:"name"`
	SharePercent   float64 `json:"share_percent"`
	Revenue        float64 `json:"revenue"`
	Payout         float64 `json:"payout"`
}
