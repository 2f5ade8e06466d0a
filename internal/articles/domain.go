package articles

import "time"

// Article is a catalog entry. Price and stock live at the article level
// unless variations exist, in which case each variation carries its own.
type Article struct {
	ID          int64       `json:"id" db:"id"`
	Code        string      `json:"code" db:"code"`
	Name        string      `json:"name" db:"name"`
	Description *string     `json:"description,omitempty" db:"description"`
	Price       float64     `json:"price" db:"price"`
	IsActive    bool        `json:"is_active" db:"is_active"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at" db:"updated_at"`
	Variations  []Variation `json:"variations,omitempty" db:"-"`
}

// Variation is a sellable variant of an article, a size or colour.
type Variation struct {
	ID        int64     `json:"id" db:"id"`
	ArticleID int64     `json:"article_id" db:"article_id"`
	Name      string    `json:"name" db:"name"`
	Price     *float64  `json:"price,omitempty" db:"price"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// CreateArticleRequest is the payload for creating an article.
type CreateArticleRequest struct {
	Code        string   `json:"code" validate:"required,max=50"`
	Name        string   `json:"name" validate:"required,max=200"`
	Description *string  `json:"description,omitempty" validate:"omitempty,max=1000"`
	Price       float64  `json:"price" validate:"gte=0"`
	Variations  []string `json:"variations,omitempty" validate:"omitempty,dive,required,max=100"`
}

// UpdateArticleRequest carries partial updates; nil fields are untouched.
type UpdateArticleRequest struct {
	Name        *string  `json:"name,omitempty" validate:"omitempty,max=200"`
	Description *string  `json:"description,omitempty" validate:"omitempty,max=1000"`
	Price       *float64 `json:"price,omitempty" validate:"omitempty,gte=0"`
	IsActive    *bool    `json:"is_active,omitempty"`
}

// AddVariationRequest is the payload for adding a variation.
type AddVariationRequest struct {
	Name  string   `json:"name" validate:"required,max=100"`
	Price *float64 `json:"price,omitempty" validate:"omitempty,gte=0"`
}

// ListFilter narrows the article listing.
type ListFilter struct {
	Search   string
	IsActive *bool
	Page     int
	PerPage  int
}
