package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"producthub/internal/domain"
	"producthub/internal/repository"
)

type productRepo struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) repository.ProductRepository {
	return &productRepo{db: db}
}

func (r *productRepo) FindByID(ctx context.Context, id uint64) (*domain.Product, error) {
	var p domain.Product
	if err := r.db.WithContext(ctx).Preload("Categories").First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *productRepo) List(ctx context.Context, offset, limit int) ([]domain.Product, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&domain.Product{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var products []domain.Product
	err := r.db.WithContext(ctx).
		Preload("Categories").
		Order("id").
		Offset(offset).Limit(limit).
		Find(&products).Error
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func (r *productRepo) Save(ctx context.Context, product *domain.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}

func (r *productRepo) ListCategories(ctx context.Context) ([]domain.Category, error) {
	var categories []domain.Category
	if err := r.db.WithContext(ctx).Order("name").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *productRepo) CreateReview(ctx context.Context, review *domain.Review) error {
	return r.db.WithContext(ctx).Create(review).Error
}

func (r *productRepo) ListReviews(ctx context.Context, productID uint64) ([]domain.Review, error) {
	var reviews []domain.Review
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at DESC").
		Find(&reviews).Error
	if err != nil {
		return nil, err
	}
	return reviews, nil
}
