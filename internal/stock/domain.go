package stock

import (
	"errors"
	"time"
)

// MovementType discriminates stock movements.
type MovementType string

const (
	MovementIn     MovementType = "in"
	MovementOut    MovementType = "out"
	MovementAdjust MovementType = "adjust"
)

// Movement errors.
var (
	ErrInvalidQuantity = errors.New("stock: quantity must be non-zero")
	ErrInvalidUnitCost = errors.New("stock: unit cost must be non-negative")
	ErrNegativeStock   = errors.New("stock: insufficient stock")
	ErrLevelNotFound   = errors.New("stock: level not found")
)

// Level is the on-hand quantity for an article or one of its variations.
// VariationID nil addresses article-level stock.
type Level struct {
	ID          int64     `json:"id" db:"id"`
	ArticleID   int64     `json:"article_id" db:"article_id"`
	VariationID *int64    `json:"variation_id,omitempty" db:"variation_id"`
	Quantity    float64   `json:"quantity" db:"quantity"`
	AvgCost     float64   `json:"avg_cost" db:"avg_cost"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`

	// Resolved display names, populated on reads.
	ArticleName   string `json:"article_name,omitempty" db:"-"`
	VariationName string `json:"variation_name,omitempty" db:"-"`
}

// Movement is one ledger entry in the stock history.
type Movement struct {
	ID          int64        `json:"id" db:"id"`
	ArticleID   int64        `json:"article_id" db:"article_id"`
	VariationID *int64       `json:"variation_id,omitempty" db:"variation_id"`
	Type        MovementType `json:"type" db:"movement_type"`
	Quantity    float64      `json:"quantity" db:"quantity"`
	UnitCost    float64      `json:"unit_cost" db:"unit_cost"`
	BalanceQty  float64      `json:"balance_qty" db:"balance_qty"`
	Note        *string      `json:"note,omitempty" db:"note"`
	CreatedBy   int64        `json:"created_by" db:"created_by"`
	CreatedAt   time.Time    `json:"created_at" db:"created_at"`
}

// ReceiveRequest is the payload for an inbound movement.
type ReceiveRequest struct {
	ArticleID   int64    `json:"article_id" validate:"required,gt=0"`
	VariationID *int64   `json:"variation_id,omitempty" validate:"omitempty,gt=0"`
	Quantity    float64  `json:"quantity" validate:"required,gt=0"`
	UnitCost    float64  `json:"unit_cost" validate:"gte=0"`
	Note        *string  `json:"note,omitempty" validate:"omitempty,max=500"`
}

// AdjustRequest is the payload for a manual correction, positive or negative.
type AdjustRequest struct {
	ArticleID   int64    `json:"article_id" validate:"required,gt=0"`
	VariationID *int64   `json:"variation_id,omitempty" validate:"omitempty,gt=0"`
	Quantity    float64  `json:"quantity" validate:"required"`
	UnitCost    float64  `json:"unit_cost" validate:"gte=0"`
	Note        *string  `json:"note,omitempty" validate:"omitempty,max=500"`
}
