package services

import (
	"context"

	"producthub/internal/cache"
	"producthub/internal/domain"
	"producthub/internal/repository"
)

type ProductService struct {
	products repository.ProductRepository
	cache    *cache.ProductCache
}

func NewProductService(products repository.ProductRepository, productCache *cache.ProductCache) *ProductService {
	return &ProductService{products: products, cache: productCache}
}

func (s *ProductService) GetProduct(ctx context.Context, id uint64) (*domain.Product, error) {
	p, err := s.cache.GetOrLoad(ctx, id, s.products.FindByID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrProductNotFound
	}
	return p, nil
}

func (s *ProductService) ListProducts(ctx context.Context, offset, limit int) ([]domain.Product, int64, error) {
	return s.products.List(ctx, offset, limit)
}

// SaveProduct persists the product and synchronously drops its cache entry
// so the next read sees the new state.
func (s *ProductService) SaveProduct(ctx context.Context, product *domain.Product) error {
	if err := s.products.Save(ctx, product); err != nil {
		return err
	}
	return s.cache.Invalidate(ctx, product.ID)
}

func (s *ProductService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.products.ListCategories(ctx)
}

func (s *ProductService) AddReview(ctx context.Context, productID uint64, rating int, comment string) (*domain.Review, error) {
	if err := domain.ValidateReview(rating, comment); err != nil {
		return nil, err
	}

	if _, err := s.GetProduct(ctx, productID); err != nil {
		return nil, err
	}

	review := &domain.Review{ProductID: productID, Rating: rating, Comment: comment}
	if err := s.products.CreateReview(ctx, review); err != nil {
		return nil, err
	}
	return review, nil
}

func (s *ProductService) ListReviews(ctx context.Context, productID uint64) ([]domain.Review, error) {
	if _, err := s.GetProduct(ctx, productID); err != nil {
		return nil, err
	}
	return s.products.ListReviews(ctx, productID)
}
