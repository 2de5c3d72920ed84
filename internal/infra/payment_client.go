package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"producthub/internal/domain"
)

// PaymentInitiation is what the provider hands back when a transaction is
// opened: where to send the customer and the reference the webhook will
// later carry.
type PaymentInitiation struct {
	AuthorizationURL string `json:"authorization_url"`
	Reference        string `json:"reference"`
}

type PaymentClient struct {
	baseURL    string
	secretKey  string
	httpClient *http.Client
}

func NewPaymentClient(baseURL, secretKey string, timeout time.Duration) *PaymentClient {
	return &PaymentClient{
		baseURL:    baseURL,
		secretKey:  secretKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// InitiateTransaction opens a payment for the order with the provider. The
// reference is generated client-side so the order can be linked even if the
// provider response is lost.
func (c *PaymentClient) InitiateTransaction(ctx context.Context, order *domain.Order) (*PaymentInitiation, error) {
	reference := uuid.NewString()

	payload := map[string]interface{}{
		"reference": reference,
		"amount":    order.Total.StringFixed(2),
		"currency":  order.Currency,
		"metadata":  map[string]uint64{"order_id": order.ID},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/transaction/initialize", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("payment provider returned status %d", resp.StatusCode)
	}

	var out struct {
		Data PaymentInitiation `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	if out.Data.Reference == "" {
		out.Data.Reference = reference
	}

	return &out.Data, nil
}
