package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"producthub/internal/domain"
)

// respondError maps the domain error taxonomy onto HTTP responses. Anything
// unrecognized is an internal failure: logged for the operator, generic
// message to the caller.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrCartNotFound),
		errors.Is(err, domain.ErrCartItemNotFound),
		errors.Is(err, domain.ErrOrderNotFound),
		errors.Is(err, domain.ErrProductNotFound),
		errors.Is(err, domain.ErrCategoryNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})

	case errors.Is(err, domain.ErrEmptyCart),
		errors.Is(err, domain.ErrInvalidCurrency),
		errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, domain.ErrInvalidRating),
		errors.Is(err, domain.ErrInvalidComment),
		errors.Is(err, domain.ErrInsufficientStock),
		errors.Is(err, domain.ErrProductUnavailable),
		errors.Is(err, domain.ErrQuantityCapExceeded),
		errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrDiscountOutOfBounds):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

	case errors.Is(err, domain.ErrSignatureMismatch):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})

	default:
		log.WithError(err).Error("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "an unexpected error occurred"})
	}
}
