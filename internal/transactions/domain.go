package transactions

import (
	"time"
)

// Type discriminates sales from expenses.
type Type string

const (
	TypeSale    Type = "sale"
	TypeExpense Type = "expense"
)

// Transaction is an immutable ledger row. Corrections are made by deleting
// and re-recording, never by editing in place.
type Transaction struct {
	ID             int64     `json:"id" db:"id"`
	Type           Type      `json:"type" db:"tx_type"`
	Amount         float64   `json:"amount" db:"amount"`
	Quantity       *float64  `json:"quantity,omitempty" db:"quantity"`
	ArticleID      *int64    `json:"article_id,omitempty" db:"article_id"`
	VariationID    *int64    `json:"variation_id,omitempty" db:"variation_id"`
	CollaboratorID *int64    `json:"collaborator_id,omitempty" db:"collaborator_id"`
	Note           *string   `json:"note,omitempty" db:"note"`
	CreatedBy      int64     `json:"created_by" db:"created_by"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`

	// Resolved display names, populated on reads.
	ArticleName      string `json:"article_name,omitempty" db:"-"`
	VariationName    string `json:"variation_name,omitempty" db:"-"`
	CollaboratorName string `json:"collaborator_name,omitempty" db:"-"`
}

// RecordRequest is the payload for recording a transaction.
type RecordRequest struct {
	Type           Type     `json:"type" validate:"required,oneof=sale expense"`
	Amount         float64  `json:"amount" validate:"required,gt=0"`
	Quantity       *float64 `json:"quantity,omitempty" validate:"omitempty,gt=0"`
	ArticleID      *int64   `json:"article_id,omitempty" validate:"omitempty,gt=0"`
	VariationID    *int64   `json:"variation_id,omitempty" validate:"omitempty,gt=0"`
	CollaboratorID *int64   `json:"collaborator_id,omitempty" validate:"omitempty,gt=0"`
	Note           *string  `json:"note,omitempty" validate:"omitempty,max=500"`
}

// ListFilter narrows the transaction listing.
type ListFilter struct {
	From           time.Time
	To             time.Time
	Type           Type
	CollaboratorID *int64
	Page           int
	PerPage        int
}
