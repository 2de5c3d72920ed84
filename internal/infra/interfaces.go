package infra

import (
	"context"

	"producthub/internal/domain"
)

type PaymentClientInterface interface {
	InitiateTransaction(ctx context.Context, order *domain.Order) (*PaymentInitiation, error)
}

var _ PaymentClientInterface = (*PaymentClient)(nil)
