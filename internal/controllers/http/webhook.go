package http

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"producthub/internal/domain"
)

const signatureHeader = "X-Webhook-Signature"

type webhookEvent struct {
	Event string `json:"event"`
	Data  struct {
		Reference string `json:"reference"`
	} `json:"data"`
}

// verifySignature checks a hex-encoded HMAC-SHA256 of the raw payload.
// hmac.Equal keeps the comparison constant-time.
func verifySignature(secret string, payload []byte, signature string) bool {
	provided, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hmac.Equal(mac.Sum(nil), provided)
}

// PaymentWebhook receives provider notifications. The signature covers the
// raw body, so the body is read before any JSON decoding. Event types this
// service does not act on are acknowledged as no-ops.
func (h *Handler) PaymentWebhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unable to read request body"})
		return
	}

	if !verifySignature(h.webhookSecret, body, c.GetHeader(signatureHeader)) {
		respondError(c, domain.ErrSignatureMismatch)
		return
	}

	var evt webhookEvent
	if err := json.Unmarshal(body, &evt); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed payload"})
		return
	}

	if evt.Event != "charge.success" {
		log.WithField("event", evt.Event).Debug("ignoring webhook event")
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}

	order, err := h.orders.ConfirmPayment(c.Request.Context(), evt.Data.Reference)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok", "orderId": order.ID})
}
