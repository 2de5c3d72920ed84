package mysql

import (
	"context"
	"errors"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"producthub/internal/domain"
	"producthub/internal/repository"
)

type orderRepo struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) repository.OrderRepository {
	return &orderRepo{db: db}
}

// CreateFromCart commits the checkout write set atomically. Stock is
// decremented with a conditional update (stock = stock - qty WHERE
// stock >= qty) so concurrent checkouts against the same product cannot
// overdraw; a zero-row update rolls the whole transaction back.
func (r *orderRepo) CreateFromCart(ctx context.Context, order *domain.Order, cartID uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range order.Items {
			item := &order.Items[i]
			res := tx.Model(&domain.Product{}).
				Where("id = ? AND stock >= ?", item.ProductID, item.Quantity).
				UpdateColumn("stock", gorm.Expr("stock - ?", item.Quantity))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return domain.ErrInsufficientStock
			}
		}

		// Creates the order items through the association in the same insert.
		if err := tx.Create(order).Error; err != nil {
			return err
		}

		history := domain.OrderStatusHistory{
			OrderID: order.ID,
			Status:  order.Status,
			Notes:   "Order created",
		}
		if err := tx.Create(&history).Error; err != nil {
			return err
		}

		return tx.Where("cart_id = ?", cartID).Delete(&domain.CartItem{}).Error
	})
}

func (r *orderRepo) FindByID(ctx context.Context, id uint64) (*domain.Order, error) {
	var o domain.Order
	if err := r.db.WithContext(ctx).Preload("Items").First(&o, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		log.WithError(err).Error("order lookup failed")
		return nil, err
	}
	return &o, nil
}

func (r *orderRepo) FindByCustomer(ctx context.Context, customerID uint64, offset, limit int) ([]domain.Order, int64, error) {
	q := r.db.WithContext(ctx).Model(&domain.Order{}).Where("customer_id = ?", customerID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []domain.Order
	err := q.Order("order_date DESC").Offset(offset).Limit(limit).Find(&orders).Error
	if err != nil {
		log.WithError(err).Error("order list failed")
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *orderRepo) FindByPaymentReference(ctx context.Context, reference string) (*domain.Order, error) {
	var o domain.Order
	err := r.db.WithContext(ctx).Where("payment_reference = ?", reference).First(&o).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &o, nil
}

func (r *orderRepo) FindItems(ctx context.Context, orderID uint64) ([]domain.OrderItem, error) {
	var items []domain.OrderItem
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *orderRepo) FindStatusHistory(ctx context.Context, orderID uint64) ([]domain.OrderStatusHistory, error) {
	var rows []domain.OrderStatusHistory
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("timestamp DESC, id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// UpdateStatus is conditional on the in-memory status still being current,
// so racing transitions cannot both apply; the loser sees zero rows updated.
func (r *orderRepo) UpdateStatus(ctx context.Context, order *domain.Order, newStatus domain.OrderStatus, notes string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.Order{}).
			Where("id = ? AND status = ?", order.ID, order.Status).
			Update("status", newStatus)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrInvalidTransition
		}

		history := domain.OrderStatusHistory{
			OrderID: order.ID,
			Status:  newStatus,
			Notes:   notes,
		}
		if err := tx.Create(&history).Error; err != nil {
			return err
		}

		order.Status = newStatus
		return nil
	})
}

func (r *orderRepo) SetPaymentReference(ctx context.Context, orderID uint64, reference string) error {
	return r.db.WithContext(ctx).Model(&domain.Order{}).
		Where("id = ?", orderID).
		Update("payment_reference", reference).Error
}
