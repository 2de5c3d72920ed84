package services

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"producthub/internal/cache"
	"producthub/internal/domain"
	"producthub/internal/infra"
	rabbit "producthub/internal/infra/rabbitmq"
	"producthub/internal/repository"
)

type OrderService struct {
	orders    repository.OrderRepository
	carts     repository.CartRepository
	products  repository.ProductRepository
	cache     *cache.ProductCache
	payments  infra.PaymentClientInterface
	publisher rabbit.PublisherInterface
	discount  DiscountStrategy
}

func NewOrderService(
	orders repository.OrderRepository,
	carts repository.CartRepository,
	products repository.ProductRepository,
	productCache *cache.ProductCache,
	payments infra.PaymentClientInterface,
	publisher rabbit.PublisherInterface,
) *OrderService {
	return &OrderService{
		orders:    orders,
		carts:     carts,
		products:  products,
		cache:     productCache,
		payments:  payments,
		publisher: publisher,
		discount:  ZeroDiscount{},
	}
}

// SetDiscountStrategy swaps the promotion logic applied at checkout.
func (s *OrderService) SetDiscountStrategy(strategy DiscountStrategy) {
	s.discount = strategy
}

// validateCartItems enforces the cart/catalog consistency rules: every
// referenced product must be active, stocked for the requested quantity and
// within its per-order cap. Fails fast on the first violation. Product
// reads go through the cache; the authoritative stock check happens again
// as a conditional update inside the checkout transaction.
func (s *OrderService) validateCartItems(ctx context.Context, items []domain.CartItem) ([]domain.Product, error) {
	products := make([]domain.Product, 0, len(items))
	for _, item := range items {
		p, err := s.cache.GetOrLoad(ctx, item.ProductID, s.products.FindByID)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, fmt.Errorf("%w: id %d", domain.ErrProductNotFound, item.ProductID)
		}
		if !p.IsActive {
			return nil, fmt.Errorf("%w: %s", domain.ErrProductUnavailable, p.Name)
		}
		if p.Stock < item.Quantity {
			return nil, fmt.Errorf("%w: %s", domain.ErrInsufficientStock, p.Name)
		}
		if item.Quantity > p.MaxQuantityPerOrder {
			return nil, fmt.Errorf("%w: %s (limit %d)", domain.ErrQuantityCapExceeded, p.Name, p.MaxQuantityPerOrder)
		}
		products = append(products, *p)
	}
	return products, nil
}

// CreateOrderFromCart converts the customer's cart into an order: prices are
// snapshotted, stock decremented, the initial history row written and the
// cart emptied, all in one transaction. On any failure nothing is persisted
// and the cart is left untouched.
func (s *OrderService) CreateOrderFromCart(ctx context.Context, customerID uint64, currency string) (*domain.Order, error) {
	cur, err := domain.ParseCurrency(currency)
	if err != nil {
		return nil, err
	}

	cart, err := s.carts.FindByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return nil, domain.ErrCartNotFound
	}
	if len(cart.Items) == 0 {
		return nil, domain.ErrEmptyCart
	}

	products, err := s.validateCartItems(ctx, cart.Items)
	if err != nil {
		return nil, err
	}

	items := make([]domain.OrderItem, 0, len(cart.Items))
	originalTotal := decimal.Zero
	for i, cartItem := range cart.Items {
		item := domain.OrderItem{
			ProductID: cartItem.ProductID,
			Quantity:  cartItem.Quantity,
			Price:     products[i].Price,
		}
		items = append(items, item)
		originalTotal = originalTotal.Add(item.Subtotal())
	}

	discountAmount := s.discount.Discount(originalTotal, items)
	if discountAmount.IsNegative() || discountAmount.GreaterThan(originalTotal) {
		return nil, domain.ErrDiscountOutOfBounds
	}

	order := &domain.Order{
		CustomerID:     customerID,
		Status:         domain.StatusPending,
		Currency:       cur,
		OriginalTotal:  originalTotal,
		DiscountAmount: discountAmount,
		Total:          originalTotal.Sub(discountAmount),
		Items:          items,
		OrderDate:      time.Now(),
	}

	if err := s.orders.CreateFromCart(ctx, order, cart.ID); err != nil {
		return nil, err
	}

	go s.publishOrderCreated(context.Background(), order)

	return order, nil
}

// ListOrders returns a page of the customer's orders, newest first.
func (s *OrderService) ListOrders(ctx context.Context, customerID uint64, offset, limit int) ([]domain.Order, int64, error) {
	return s.orders.FindByCustomer(ctx, customerID, offset, limit)
}

// GetOrder loads an order owned by the customer; orders belonging to anyone
// else are indistinguishable from missing ones.
func (s *OrderService) GetOrder(ctx context.Context, customerID, orderID uint64) (*domain.Order, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil || order.CustomerID != customerID {
		return nil, domain.ErrOrderNotFound
	}
	return order, nil
}

func (s *OrderService) GetOrderItems(ctx context.Context, customerID, orderID uint64) ([]domain.OrderItem, error) {
	if _, err := s.GetOrder(ctx, customerID, orderID); err != nil {
		return nil, err
	}
	return s.orders.FindItems(ctx, orderID)
}

func (s *OrderService) GetStatusHistory(ctx context.Context, customerID, orderID uint64) ([]domain.OrderStatusHistory, error) {
	if _, err := s.GetOrder(ctx, customerID, orderID); err != nil {
		return nil, err
	}
	return s.orders.FindStatusHistory(ctx, orderID)
}

// TransitionStatus is the only sanctioned way to change an order's status.
// Setting the current status again is a no-op; any edge missing from the
// transition table fails with ErrInvalidTransition and leaves the order and
// its history untouched.
func (s *OrderService) TransitionStatus(ctx context.Context, orderID uint64, newStatus domain.OrderStatus, notes string) (*domain.Order, error) {
	if !newStatus.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidTransition, newStatus)
	}

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrOrderNotFound
	}

	if order.Status == newStatus {
		return order, nil
	}
	if !order.Status.CanTransitionTo(newStatus) {
		return nil, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, order.Status, newStatus)
	}

	from := order.Status
	if err := s.orders.UpdateStatus(ctx, order, newStatus, notes); err != nil {
		return nil, err
	}

	go s.publishStatusChanged(context.Background(), order.ID, from, newStatus, notes)

	return order, nil
}

// InitiateCheckout opens a payment with the provider for an order the
// customer owns and stores the returned reference for webhook correlation.
func (s *OrderService) InitiateCheckout(ctx context.Context, customerID, orderID uint64) (*infra.PaymentInitiation, error) {
	order, err := s.GetOrder(ctx, customerID, orderID)
	if err != nil {
		return nil, err
	}

	initiation, err := s.payments.InitiateTransaction(ctx, order)
	if err != nil {
		return nil, err
	}

	if err := s.orders.SetPaymentReference(ctx, order.ID, initiation.Reference); err != nil {
		return nil, err
	}

	return initiation, nil
}

// ConfirmPayment applies a verified "payment succeeded" notification.
// Re-delivery is a no-op: once the order has left pending the event changes
// nothing and no extra history row is written.
func (s *OrderService) ConfirmPayment(ctx context.Context, reference string) (*domain.Order, error) {
	order, err := s.orders.FindByPaymentReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrOrderNotFound
	}

	if order.Status != domain.StatusPending {
		log.WithFields(log.Fields{"orderId": order.ID, "status": order.Status}).
			Info("payment confirmation ignored, order already progressed")
		return order, nil
	}

	if err := s.orders.UpdateStatus(ctx, order, domain.StatusPaid, "Payment confirmed"); err != nil {
		return nil, err
	}

	go s.publishStatusChanged(context.Background(), order.ID, domain.StatusPending, domain.StatusPaid, "Payment confirmed")

	return order, nil
}

func (s *OrderService) publishOrderCreated(ctx context.Context, order *domain.Order) {
	evt := domain.OrderCreatedEvent{
		OrderID:    order.ID,
		CustomerID: order.CustomerID,
		Total:      order.Total.StringFixed(2),
		Currency:   order.Currency,
		ItemCount:  len(order.Items),
		CreatedAt:  order.OrderDate,
	}

	if err := s.publisher.Publish(ctx, "order.created", evt); err != nil {
		log.WithError(err).WithField("orderId", order.ID).Error("failed to publish order.created")
	}
}

func (s *OrderService) publishStatusChanged(ctx context.Context, orderID uint64, from, to domain.OrderStatus, notes string) {
	evt := domain.OrderStatusChangedEvent{
		OrderID:   orderID,
		From:      from,
		To:        to,
		Notes:     notes,
		ChangedAt: time.Now(),
	}

	if err := s.publisher.Publish(ctx, "order.status_changed", evt); err != nil {
		log.WithError(err).WithField("orderId", orderID).Error("failed to publish order.status_changed")
	}
}
