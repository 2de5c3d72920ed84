package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID                  uint64          `json:"id" gorm:"primaryKey;autoIncrement"`
	Name                string          `json:"name" gorm:"size:50;not null"`
	Description         string          `json:"description" gorm:"size:200"`
	Price               decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`
	Stock               int64           `json:"stock" gorm:"not null;default:0"`
	MaxQuantityPerOrder int64           `json:"maxQuantityPerOrder" gorm:"not null;default:10"`
	IsActive            bool            `json:"isActive" gorm:"not null;default:true"`
	Categories          []Category      `json:"categories,omitempty" gorm:"many2many:product_categories"`
}

type Category struct {
	ID          uint64 `json:"id" gorm:"primaryKey;autoIncrement"`
	Name        string `json:"name" gorm:"size:50;not null"`
	Description string `json:"description" gorm:"size:200"`
}

type Review struct {
	ID        uint64    `json:"id" gorm:"primaryKey;autoIncrement"`
	ProductID uint64    `json:"productId" gorm:"not null;index"`
	Rating    int       `json:"rating" gorm:"not null"`
	Comment   string    `json:"comment" gorm:"size:200;not null"`
	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
}

// ValidateReview checks rating and comment before a review is persisted.
func ValidateReview(rating int, comment string) error {
	if rating < 1 || rating > 5 {
		return ErrInvalidRating
	}
	trimmed := strings.TrimSpace(comment)
	if trimmed == "" || len(comment) > 200 {
		return ErrInvalidComment
	}
	return nil
}
