package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/sync/errgroup"

	"producthub/internal/cache"
	"producthub/internal/domain"
	"producthub/internal/infra"
	"producthub/internal/mocks"
	"producthub/internal/repository"
)

var infraInitiation = infra.PaymentInitiation{
	AuthorizationURL: "https://pay.example.com/redirect/abc123",
	Reference:        "ref-1",
}

func newTestOrderService(orders repository.OrderRepository, carts *mocks.MockCartRepository, products *mocks.MockProductRepository, payments *mocks.MockPaymentClient, pub *mocks.MockPublisher) *OrderService {
	return NewOrderService(orders, carts, products, cache.New(nil, 0), payments, pub)
}

func TestOrderService_CreateOrderFromCart(t *testing.T) {
	productA := testProduct(1, "Dell XPS 13", "10.00", 5)
	productB := testProduct(2, "USB-C Cable", "5.00", 3)

	fullCart := testCart(testCartID, testCustomerID,
		testCartItem(11, testCartID, 1, 2),
		testCartItem(12, testCartID, 2, 1),
	)

	tests := []struct {
		name          string
		currency      string
		setupMocks    func(*mocks.MockOrderRepository, *mocks.MockCartRepository, *mocks.MockProductRepository, *mocks.MockPublisher)
		expectedError error
		check         func(*testing.T, *domain.Order)
	}{
		{
			name:     "successful checkout snapshots prices and totals",
			currency: "USD",
			setupMocks: func(orderRepo *mocks.MockOrderRepository, cartRepo *mocks.MockCartRepository, productRepo *mocks.MockProductRepository, pub *mocks.MockPublisher) {
				cartRepo.On("FindByCustomer", mock.Anything, testCustomerID).Return(fullCart, nil)
				productRepo.On("FindByID", mock.Anything, uint64(1)).Return(productA, nil)
				productRepo.On("FindByID", mock.Anything, uint64(2)).Return(productB, nil)
				orderRepo.On("CreateFromCart", mock.Anything, mock.AnythingOfType("*domain.Order"), testCartID).
					Return(nil).
					Run(func(args mock.Arguments) {
						order := args.Get(1).(*domain.Order)
						order.ID = 42
					})
				pub.On("Publish", mock.Anything, "order.created", mock.Anything).Return(nil).Maybe()
			},
			check: func(t *testing.T, order *domain.Order) {
				assert.Equal(t, uint64(42), order.ID)
				assert.Equal(t, domain.StatusPending, order.Status)
				assert.Equal(t, domain.CurrencyUSD, order.Currency)
				assert.True(t, order.OriginalTotal.Equal(decimal.RequireFromString("25.00")), "original total = %s", order.OriginalTotal)
				assert.True(t, order.DiscountAmount.IsZero())
				assert.True(t, order.Total.Equal(decimal.RequireFromString("25.00")))
				assert.Len(t, order.Items, 2)
				assert.True(t, order.Items[0].Price.Equal(decimal.RequireFromString("10.00")))
				assert.True(t, order.Items[1].Price.Equal(decimal.RequireFromString("5.00")))
				assert.Equal(t, int64(2), order.Items[0].Quantity)
				assert.Equal(t, int64(1), order.Items[1].Quantity)
			},
		},
		{
			name:     "empty currency defaults to USD",
			currency: "",
			setupMocks: func(orderRepo *mocks.MockOrderRepository, cartRepo *mocks.MockCartRepository, productRepo *mocks.MockProductRepository, pub *mocks.MockPublisher) {
				cartRepo.On("FindByCustomer", mock.Anything, testCustomerID).Return(fullCart, nil)
				productRepo.On("FindByID", mock.Anything, uint64(1)).Return(productA, nil)
				productRepo.On("FindByID", mock.Anything, uint64(2)).Return(productB, nil)
				orderRepo.On("CreateFromCart", mock.Anything, mock.AnythingOfType("*domain.Order"), testCartID).Return(nil)
				pub.On("Publish", mock.Anything, "order.created", mock.Anything).Return(nil).Maybe()
			},
			check: func(t *testing.T, order *domain.Order) {
				assert.Equal(t, domain.CurrencyUSD, order.Currency)
			},
		},
		{
			name:     "no cart",
			currency: "USD",
			setupMocks: func(orderRepo *mocks.MockOrderRepository, cartRepo *mocks.MockCartRepository, productRepo *mocks.MockProductRepository, pub *mocks.MockPublisher) {
				cartRepo.On("FindByCustomer", mock.Anything, testCustomerID).Return(nil, nil)
			},
			expectedError: domain.ErrCartNotFound,
		},
		{
			name:     "empty cart",
			currency: "USD",
			setupMocks: func(orderRepo *mocks.MockOrderRepository, cartRepo *mocks.MockCartRepository, productRepo *mocks.MockProductRepository, pub *mocks.MockPublisher) {
				cartRepo.On("FindByCustomer", mock.Anything, testCustomerID).Return(testCart(testCartID, testCustomerID), nil)
			},
			expectedError: domain.ErrEmptyCart,
		},
		{
			name:          "invalid currency",
			currency:      "BTC",
			setupMocks:    func(*mocks.MockOrderRepository, *mocks.MockCartRepository, *mocks.MockProductRepository, *mocks.MockPublisher) {},
			expectedError: domain.ErrInvalidCurrency,
		},
		{
			name:     "inactive product",
			currency: "USD",
			setupMocks: func(orderRepo *mocks.MockOrderRepository, cartRepo *mocks.MockCartRepository, productRepo *mocks.MockProductRepository, pub *mocks.MockPublisher) {
				inactive := testProduct(1, "Dell XPS 13", "10.00", 5)
				inactive.IsActive = false
				cartRepo.On("FindByCustomer", mock.Anything, testCustomerID).Return(fullCart, nil)
				productRepo.On("FindByID", mock.Anything, uint64(1)).Return(inactive, nil)
			},
			expectedError: domain.ErrProductUnavailable,
		},
		{
			name:     "insufficient stock at validation",
			currency: "USD",
			setupMocks: func(orderRepo *mocks.MockOrderRepository, cartRepo *mocks.MockCartRepository, productRepo *mocks.MockProductRepository, pub *mocks.MockPublisher) {
				lowStock := testProduct(1, "Dell XPS 13", "10.00", 1)
				cartRepo.On("FindByCustomer", mock.Anything, testCustomerID).Return(fullCart, nil)
				productRepo.On("FindByID", mock.Anything, uint64(1)).Return(lowStock, nil)
			},
			expectedError: domain.ErrInsufficientStock,
		},
		{
			name:     "quantity cap exceeded",
			currency: "USD",
			setupMocks: func(orderRepo *mocks.MockOrderRepository, cartRepo *mocks.MockCartRepository, productRepo *mocks.MockProductRepository, pub *mocks.MockPublisher) {
				capped := testProduct(1, "Dell XPS 13", "10.00", 5)
				capped.MaxQuantityPerOrder = 1
				cartRepo.On("FindByCustomer", mock.Anything, testCustomerID).Return(fullCart, nil)
				productRepo.On("FindByID", mock.Anything, uint64(1)).Return(capped, nil)
			},
			expectedError: domain.ErrQuantityCapExceeded,
		},
		{
			name:     "concurrent sale drains stock inside the transaction",
			currency: "USD",
			setupMocks: func(orderRepo *mocks.MockOrderRepository, cartRepo *mocks.MockCartRepository, productRepo *mocks.MockProductRepository, pub *mocks.MockPublisher) {
				cartRepo.On("FindByCustomer", mock.Anything, testCustomerID).Return(fullCart, nil)
				productRepo.On("FindByID", mock.Anything, uint64(1)).Return(productA, nil)
				productRepo.On("FindByID", mock.Anything, uint64(2)).Return(productB, nil)
				orderRepo.On("CreateFromCart", mock.Anything, mock.AnythingOfType("*domain.Order"), testCartID).
					Return(domain.ErrInsufficientStock)
			},
			expectedError: domain.ErrInsufficientStock,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orderRepo := new(mocks.MockOrderRepository)
			cartRepo := new(mocks.MockCartRepository)
			productRepo := new(mocks.MockProductRepository)
			paymentClient := new(mocks.MockPaymentClient)
			pub := new(mocks.MockPublisher)

			tt.setupMocks(orderRepo, cartRepo, productRepo, pub)

			service := newTestOrderService(orderRepo, cartRepo, productRepo, paymentClient, pub)
			order, err := service.CreateOrderFromCart(context.Background(), testCustomerID, tt.currency)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, order)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, order)
				if tt.check != nil {
					tt.check(t, order)
				}
			}

			// Event publishing is fire-and-forget; give the goroutine a beat.
			time.Sleep(50 * time.Millisecond)

			cartRepo.AssertExpectations(t)
			productRepo.AssertExpectations(t)
		})
	}
}

func TestOrderService_CreateOrderFromCart_ConcurrentSale(t *testing.T) {
	// The repository refuses the decrement: nothing must have been created.
	productA := testProduct(1, "Dell XPS 13", "10.00", 5)
	cart := testCart(testCartID, testCustomerID, testCartItem(11, testCartID, 1, 2))

	orderRepo := new(mocks.MockOrderRepository)
	cartRepo := new(mocks.MockCartRepository)
	productRepo := new(mocks.MockProductRepository)

	cartRepo.On("FindByCustomer", mock.Anything, testCustomerID).Return(cart, nil)
	productRepo.On("FindByID", mock.Anything, uint64(1)).Return(productA, nil)
	orderRepo.On("CreateFromCart", mock.Anything, mock.Anything, testCartID).Return(domain.ErrInsufficientStock)

	service := newTestOrderService(orderRepo, cartRepo, productRepo, new(mocks.MockPaymentClient), new(mocks.MockPublisher))

	order, err := service.CreateOrderFromCart(context.Background(), testCustomerID, "USD")
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Nil(t, order)
	orderRepo.AssertExpectations(t)
}

type fixedDiscount struct {
	amount decimal.Decimal
}

func (d fixedDiscount) Discount(decimal.Decimal, []domain.OrderItem) decimal.Decimal {
	return d.amount
}

func TestOrderService_DiscountStrategy(t *testing.T) {
	productA := testProduct(1, "Dell XPS 13", "10.00", 5)
	cart := testCart(testCartID, testCustomerID, testCartItem(11, testCartID, 1, 2))

	tests := []struct {
		name          string
		discount      string
		expectedTotal string
		expectedError error
	}{
		{name: "valid discount reduces total", discount: "5.00", expectedTotal: "15.00"},
		{name: "full discount allowed", discount: "20.00", expectedTotal: "0.00"},
		{name: "negative discount rejected", discount: "-1.00", expectedError: domain.ErrDiscountOutOfBounds},
		{name: "discount above total rejected", discount: "20.01", expectedError: domain.ErrDiscountOutOfBounds},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orderRepo := new(mocks.MockOrderRepository)
			cartRepo := new(mocks.MockCartRepository)
			productRepo := new(mocks.MockProductRepository)
			pub := new(mocks.MockPublisher)

			cartRepo.On("FindByCustomer", mock.Anything, testCustomerID).Return(cart, nil)
			productRepo.On("FindByID", mock.Anything, uint64(1)).Return(productA, nil)
			orderRepo.On("CreateFromCart", mock.Anything, mock.Anything, testCartID).Return(nil).Maybe()
			pub.On("Publish", mock.Anything, "order.created", mock.Anything).Return(nil).Maybe()

			service := newTestOrderService(orderRepo, cartRepo, productRepo, new(mocks.MockPaymentClient), pub)
			service.SetDiscountStrategy(fixedDiscount{amount: decimal.RequireFromString(tt.discount)})

			order, err := service.CreateOrderFromCart(context.Background(), testCustomerID, "USD")

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, order)
			} else {
				assert.NoError(t, err)
				assert.True(t, order.OriginalTotal.Equal(decimal.RequireFromString("20.00")))
				assert.True(t, order.Total.Equal(decimal.RequireFromString(tt.expectedTotal)), "total = %s", order.Total)
				assert.True(t, order.OriginalTotal.Sub(order.DiscountAmount).Equal(order.Total))
			}

			time.Sleep(50 * time.Millisecond)
		})
	}
}

func TestOrderService_TransitionStatus(t *testing.T) {
	tests := []struct {
		name          string
		current       domain.OrderStatus
		next          domain.OrderStatus
		expectedError error
		noOp          bool
	}{
		{name: "pending to processing", current: domain.StatusPending, next: domain.StatusProcessing},
		{name: "pending to cancelled", current: domain.StatusPending, next: domain.StatusCancelled},
		{name: "pending to paid", current: domain.StatusPending, next: domain.StatusPaid},
		{name: "paid to processing", current: domain.StatusPaid, next: domain.StatusProcessing},
		{name: "processing to delivered", current: domain.StatusProcessing, next: domain.StatusDelivered},
		{name: "processing to cancelled", current: domain.StatusProcessing, next: domain.StatusCancelled},
		{name: "processing back to pending rejected", current: domain.StatusProcessing, next: domain.StatusPending, expectedError: domain.ErrInvalidTransition},
		{name: "delivered is terminal", current: domain.StatusDelivered, next: domain.StatusProcessing, expectedError: domain.ErrInvalidTransition},
		{name: "cancelled is terminal", current: domain.StatusCancelled, next: domain.StatusPending, expectedError: domain.ErrInvalidTransition},
		{name: "pending straight to delivered rejected", current: domain.StatusPending, next: domain.StatusDelivered, expectedError: domain.ErrInvalidTransition},
		{name: "same status is a no-op", current: domain.StatusPending, next: domain.StatusPending, noOp: true},
		{name: "unknown status rejected", current: domain.StatusPending, next: domain.OrderStatus("shipped"), expectedError: domain.ErrInvalidTransition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orderRepo := new(mocks.MockOrderRepository)
			pub := new(mocks.MockPublisher)

			order := &domain.Order{ID: 42, CustomerID: testCustomerID, Status: tt.current}
			orderRepo.On("FindByID", mock.Anything, uint64(42)).Return(order, nil).Maybe()
			if tt.expectedError == nil && !tt.noOp {
				orderRepo.On("UpdateStatus", mock.Anything, order, tt.next, "by admin").Return(nil)
				pub.On("Publish", mock.Anything, "order.status_changed", mock.Anything).Return(nil).Maybe()
			}

			service := newTestOrderService(orderRepo, new(mocks.MockCartRepository), new(mocks.MockProductRepository), new(mocks.MockPaymentClient), pub)
			result, err := service.TransitionStatus(context.Background(), 42, tt.next, "by admin")

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, result)
				orderRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, result)
				if tt.noOp {
					assert.Equal(t, tt.current, result.Status)
					orderRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
				} else {
					assert.Equal(t, tt.next, result.Status)
				}
			}

			time.Sleep(50 * time.Millisecond)
			orderRepo.AssertExpectations(t)
		})
	}
}

func TestOrderService_TransitionStatus_OrderNotFound(t *testing.T) {
	orderRepo := new(mocks.MockOrderRepository)
	orderRepo.On("FindByID", mock.Anything, uint64(99)).Return(nil, nil)

	service := newTestOrderService(orderRepo, new(mocks.MockCartRepository), new(mocks.MockProductRepository), new(mocks.MockPaymentClient), new(mocks.MockPublisher))

	_, err := service.TransitionStatus(context.Background(), 99, domain.StatusProcessing, "")
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestOrderService_ConfirmPayment(t *testing.T) {
	tests := []struct {
		name          string
		order         *domain.Order
		expectedError error
		expectUpdate  bool
	}{
		{
			name:         "pending order becomes paid",
			order:        &domain.Order{ID: 42, Status: domain.StatusPending, PaymentReference: "ref-1"},
			expectUpdate: true,
		},
		{
			name:  "redelivery after paid is a no-op",
			order: &domain.Order{ID: 42, Status: domain.StatusPaid, PaymentReference: "ref-1"},
		},
		{
			name:  "order already progressed is a no-op",
			order: &domain.Order{ID: 42, Status: domain.StatusProcessing, PaymentReference: "ref-1"},
		},
		{
			name:          "unknown reference",
			order:         nil,
			expectedError: domain.ErrOrderNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orderRepo := new(mocks.MockOrderRepository)
			pub := new(mocks.MockPublisher)

			if tt.order != nil {
				orderRepo.On("FindByPaymentReference", mock.Anything, "ref-1").Return(tt.order, nil)
			} else {
				orderRepo.On("FindByPaymentReference", mock.Anything, "ref-1").Return(nil, nil)
			}
			if tt.expectUpdate {
				orderRepo.On("UpdateStatus", mock.Anything, tt.order, domain.StatusPaid, "Payment confirmed").Return(nil)
				pub.On("Publish", mock.Anything, "order.status_changed", mock.Anything).Return(nil).Maybe()
			}

			service := newTestOrderService(orderRepo, new(mocks.MockCartRepository), new(mocks.MockProductRepository), new(mocks.MockPaymentClient), pub)
			order, err := service.ConfirmPayment(context.Background(), "ref-1")

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, order)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, order)
				if tt.expectUpdate {
					assert.Equal(t, domain.StatusPaid, order.Status)
				} else {
					orderRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
				}
			}

			time.Sleep(50 * time.Millisecond)
			orderRepo.AssertExpectations(t)
		})
	}
}

func TestOrderService_InitiateCheckout(t *testing.T) {
	orderRepo := new(mocks.MockOrderRepository)
	paymentClient := new(mocks.MockPaymentClient)

	order := &domain.Order{ID: 42, CustomerID: testCustomerID, Status: domain.StatusPending}
	orderRepo.On("FindByID", mock.Anything, uint64(42)).Return(order, nil)
	paymentClient.On("InitiateTransaction", mock.Anything, order).Return(&infraInitiation, nil)
	orderRepo.On("SetPaymentReference", mock.Anything, uint64(42), infraInitiation.Reference).Return(nil)

	service := newTestOrderService(orderRepo, new(mocks.MockCartRepository), new(mocks.MockProductRepository), paymentClient, new(mocks.MockPublisher))

	initiation, err := service.InitiateCheckout(context.Background(), testCustomerID, 42)
	assert.NoError(t, err)
	assert.Equal(t, infraInitiation.Reference, initiation.Reference)
	assert.Equal(t, infraInitiation.AuthorizationURL, initiation.AuthorizationURL)

	orderRepo.AssertExpectations(t)
	paymentClient.AssertExpectations(t)
}

func TestOrderService_InitiateCheckout_NotOwned(t *testing.T) {
	orderRepo := new(mocks.MockOrderRepository)
	order := &domain.Order{ID: 42, CustomerID: 999, Status: domain.StatusPending}
	orderRepo.On("FindByID", mock.Anything, uint64(42)).Return(order, nil)

	service := newTestOrderService(orderRepo, new(mocks.MockCartRepository), new(mocks.MockProductRepository), new(mocks.MockPaymentClient), new(mocks.MockPublisher))

	_, err := service.InitiateCheckout(context.Background(), testCustomerID, 42)
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}

// conditionalStockRepo simulates the database's conditional decrement so the
// oversell property can be exercised with real goroutines.
type conditionalStockRepo struct {
	mocks.MockOrderRepository

	mu      sync.Mutex
	stock   map[uint64]int64
	created int
}

func (r *conditionalStockRepo) CreateFromCart(ctx context.Context, order *domain.Order, cartID uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, item := range order.Items {
		if r.stock[item.ProductID] < item.Quantity {
			return domain.ErrInsufficientStock
		}
	}
	for _, item := range order.Items {
		r.stock[item.ProductID] -= item.Quantity
	}
	r.created++
	order.ID = uint64(r.created)
	return nil
}

func TestOrderService_ConcurrentCheckouts_NoOversell(t *testing.T) {
	const stock = 5
	const attempts = 12

	productA := testProduct(1, "Dell XPS 13", "10.00", stock)

	cartRepo := new(mocks.MockCartRepository)
	productRepo := new(mocks.MockProductRepository)
	pub := new(mocks.MockPublisher)

	cartRepo.On("FindByCustomer", mock.Anything, mock.AnythingOfType("uint64")).
		Return(testCart(testCartID, testCustomerID, testCartItem(11, testCartID, 1, 1)), nil)
	productRepo.On("FindByID", mock.Anything, uint64(1)).Return(productA, nil)
	pub.On("Publish", mock.Anything, "order.created", mock.Anything).Return(nil).Maybe()

	orderRepo := &conditionalStockRepo{stock: map[uint64]int64{1: stock}}

	service := newTestOrderService(orderRepo, cartRepo, productRepo, new(mocks.MockPaymentClient), pub)

	var successes, conflicts int64
	var mu sync.Mutex
	g := new(errgroup.Group)
	for i := 0; i < attempts; i++ {
		g.Go(func() error {
			_, err := service.CreateOrderFromCart(context.Background(), testCustomerID, "USD")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, domain.ErrInsufficientStock):
				conflicts++
			default:
				return err
			}
			return nil
		})
	}
	assert.NoError(t, g.Wait())

	assert.Equal(t, int64(stock), successes)
	assert.Equal(t, int64(attempts-stock), conflicts)
	assert.Equal(t, int64(0), orderRepo.stock[1])

	time.Sleep(100 * time.Millisecond)
}
