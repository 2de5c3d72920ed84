package repository

import (
	"context"

	"producthub/internal/domain"
)

type ProductRepository interface {
	// FindByID returns nil without error when the product does not exist.
	FindByID(ctx context.Context, id uint64) (*domain.Product, error)
	List(ctx context.Context, offset, limit int) ([]domain.Product, int64, error)

	// Save persists a product (create or update). Callers owning a cache
	// must invalidate the product's entry after a successful save.
	Save(ctx context.Context, product *domain.Product) error

	ListCategories(ctx context.Context) ([]domain.Category, error)

	CreateReview(ctx context.Context, review *domain.Review) error
	ListReviews(ctx context.Context, productID uint64) ([]domain.Review, error)
}
