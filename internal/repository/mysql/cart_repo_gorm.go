package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"producthub/internal/domain"
	"producthub/internal/repository"
)

type cartRepo struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) repository.CartRepository {
	return &cartRepo{db: db}
}

func (r *cartRepo) FindOrCreateByCustomer(ctx context.Context, customerID uint64) (*domain.Cart, error) {
	cart, err := r.FindByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if cart != nil {
		return cart, nil
	}

	created := domain.Cart{CustomerID: customerID, Items: []domain.CartItem{}}
	if err := r.db.WithContext(ctx).Create(&created).Error; err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *cartRepo) FindByCustomer(ctx context.Context, customerID uint64) (*domain.Cart, error) {
	var cart domain.Cart
	err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Preload("Items.Product").
		First(&cart).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cart, nil
}

func (r *cartRepo) FindItem(ctx context.Context, customerID, itemID uint64) (*domain.CartItem, error) {
	var item domain.CartItem
	err := r.db.WithContext(ctx).
		Joins("JOIN carts ON carts.id = cart_items.cart_id").
		Where("cart_items.id = ? AND carts.customer_id = ?", itemID, customerID).
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// UpsertItem relies on the unique (cart_id, product_id) index: a second add
// of the same product increments the existing row instead of duplicating it.
func (r *cartRepo) UpsertItem(ctx context.Context, cartID, productID uint64, quantity int64) error {
	item := domain.CartItem{CartID: cartID, ProductID: productID, Quantity: quantity}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "cart_id"}, {Name: "product_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"quantity": gorm.Expr("quantity + ?", quantity),
		}),
	}).Create(&item).Error
}

func (r *cartRepo) UpdateItemQuantity(ctx context.Context, itemID uint64, quantity int64) error {
	return r.db.WithContext(ctx).Model(&domain.CartItem{}).
		Where("id = ?", itemID).
		Update("quantity", quantity).Error
}

func (r *cartRepo) DeleteItem(ctx context.Context, itemID uint64) error {
	return r.db.WithContext(ctx).Delete(&domain.CartItem{}, itemID).Error
}

func (r *cartRepo) ClearItems(ctx context.Context, cartID uint64) error {
	return r.db.WithContext(ctx).Where("cart_id = ?", cartID).Delete(&domain.CartItem{}).Error
}
