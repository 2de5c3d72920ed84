package http

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

type CreateOrderRequest struct {
	Currency string `json:"currency"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Notes  string `json:"notes"`
}

type AddCartItemRequest struct {
	ProductID uint64 `json:"productId" binding:"required"`
	Quantity  int64  `json:"quantity"`
}

type UpdateCartItemRequest struct {
	// Zero or negative removes the item.
	Quantity int64 `json:"quantity"`
}

type AddReviewRequest struct {
	Rating  int    `json:"rating" binding:"required"`
	Comment string `json:"comment" binding:"required"`
}

type CheckoutResponse struct {
	AuthorizationURL string `json:"authorizationUrl"`
	Reference        string `json:"reference"`
}

type PaginatedResponse struct {
	Items    interface{} `json:"items"`
	Total    int64       `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"pageSize"`
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// pageParams reads page/page_size query params with sane bounds.
func pageParams(c *gin.Context) (page, pageSize, offset int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	pageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(defaultPageSize)))
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize, (page - 1) * pageSize
}
