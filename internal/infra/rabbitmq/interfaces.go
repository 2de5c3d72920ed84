package rabbitmq

import "context"

// PublisherInterface is what the services publish order lifecycle events
// through; swapped for a mock in tests.
type PublisherInterface interface {
	Publish(ctx context.Context, routingKey string, data any) error
}

var _ PublisherInterface = (*Publisher)(nil)
