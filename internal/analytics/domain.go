package analytics

import "time"

// TransactionType enumerates the two commercial event kinds.
type TransactionType string

const (
	// TypeSale represents revenue events.
	TypeSale TransactionType = "sale"
	// TypeExpense represents cost events.
	TypeExpense TransactionType = "expense"
)

// Transaction is the read-only snapshot the pipeline aggregates over.
// Related entity names are resolved at load time; an empty ArticleName
// means the reference could not be resolved.
type Transaction struct {
	ID               int64           `json:"id"`
	Type             TransactionType `json:"type"`
	Amount           float64         `json:"amount"`
	Quantity         *float64        `json:"quantity,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	ArticleName      string          `json:"article_name,omitempty"`
	VariationName    string          `json:"variation_name,omitempty"`
	CollaboratorID   *int64          `json:"collaborator_id,omitempty"`
	CollaboratorName string          `json:"collaborator_name,omitempty"`
}

// Bucket is a grouped sum keyed by a dimension such as article name,
// day, or collaborator.
type Bucket struct {
	Key           string  `json:"key"`
	TotalQuantity float64 `json:"total_quantity"`
	TotalAmount   float64 `json:"total_amount"`
}

func (t Transaction) quantityOrZero() float64 {
	if t.Quantity == nil {
		return 0
	}
	return *t.Quantity
}
