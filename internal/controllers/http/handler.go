package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"producthub/internal/domain"
	"producthub/internal/services"
)

type Handler struct {
	orders        *services.OrderService
	carts         *services.CartService
	products      *services.ProductService
	webhookSecret string
}

func NewHandler(orders *services.OrderService, carts *services.CartService, products *services.ProductService, webhookSecret string) *Handler {
	return &Handler{
		orders:        orders,
		carts:         carts,
		products:      products,
		webhookSecret: webhookSecret,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/products", h.ListProducts)
	r.GET("/products/:id", h.GetProduct)
	r.GET("/products/:id/reviews", h.ListReviews)
	r.GET("/categories", h.ListCategories)

	r.POST("/payments/webhook", h.PaymentWebhook)

	auth := r.Group("/", CustomerAuth())
	auth.POST("/products/:id/reviews", h.AddReview)

	auth.GET("/cart", h.GetCart)
	auth.POST("/cart/items", h.AddCartItem)
	auth.PUT("/cart/items/:id", h.UpdateCartItem)
	auth.DELETE("/cart/items/:id", h.RemoveCartItem)
	auth.POST("/cart/clear", h.ClearCart)

	auth.POST("/orders", h.CreateOrder)
	auth.GET("/orders", h.ListOrders)
	auth.GET("/orders/:id", h.GetOrder)
	auth.GET("/orders/:id/items", h.GetOrderItems)
	auth.GET("/orders/:id/history", h.GetOrderHistory)
	auth.POST("/orders/:id/checkout", h.CheckoutOrder)
	auth.PATCH("/orders/:id", AdminOnly(), h.UpdateOrderStatus)
}

func pathID(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

// --- orders ---

func (h *Handler) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := h.orders.CreateOrderFromCart(c.Request.Context(), customerID(c), req.Currency)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, order)
}

func (h *Handler) ListOrders(c *gin.Context) {
	page, pageSize, offset := pageParams(c)

	orders, total, err := h.orders.ListOrders(c.Request.Context(), customerID(c), offset, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, PaginatedResponse{Items: orders, Total: total, Page: page, PageSize: pageSize})
}

func (h *Handler) GetOrder(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	order, err := h.orders.GetOrder(c.Request.Context(), customerID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

func (h *Handler) GetOrderItems(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	items, err := h.orders.GetOrderItems(c.Request.Context(), customerID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, items)
}

func (h *Handler) GetOrderHistory(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	history, err := h.orders.GetStatusHistory(c.Request.Context(), customerID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, history)
}

func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := h.orders.TransitionStatus(c.Request.Context(), id, domain.OrderStatus(req.Status), req.Notes)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

func (h *Handler) CheckoutOrder(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	initiation, err := h.orders.InitiateCheckout(c.Request.Context(), customerID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, CheckoutResponse{
		AuthorizationURL: initiation.AuthorizationURL,
		Reference:        initiation.Reference,
	})
}

// --- cart ---

func (h *Handler) GetCart(c *gin.Context) {
	cart, err := h.carts.GetCart(c.Request.Context(), customerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cartResponse(cart))
}

func (h *Handler) AddCartItem(c *gin.Context) {
	var req AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	cart, err := h.carts.AddItem(c.Request.Context(), customerID(c), req.ProductID, req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, cartResponse(cart))
}

func (h *Handler) UpdateCartItem(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cart, err := h.carts.UpdateItemQuantity(c.Request.Context(), customerID(c), id, req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, cartResponse(cart))
}

func (h *Handler) RemoveCartItem(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	cart, err := h.carts.RemoveItem(c.Request.Context(), customerID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, cartResponse(cart))
}

func (h *Handler) ClearCart(c *gin.Context) {
	cart, err := h.carts.Clear(c.Request.Context(), customerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cartResponse(cart))
}

func cartResponse(cart *domain.Cart) gin.H {
	return gin.H{
		"id":          cart.ID,
		"items":       cart.Items,
		"totalAmount": cart.TotalAmount(),
		"itemsCount":  cart.ItemsCount(),
		"createdAt":   cart.CreatedAt,
		"updatedAt":   cart.UpdatedAt,
	}
}

// --- products ---

func (h *Handler) ListProducts(c *gin.Context) {
	page, pageSize, offset := pageParams(c)

	products, total, err := h.products.ListProducts(c.Request.Context(), offset, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, PaginatedResponse{Items: products, Total: total, Page: page, PageSize: pageSize})
}

func (h *Handler) GetProduct(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	product, err := h.products.GetProduct(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, product)
}

func (h *Handler) ListCategories(c *gin.Context) {
	categories, err := h.products.ListCategories(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

func (h *Handler) AddReview(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req AddReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	review, err := h.products.AddReview(c.Request.Context(), id, req.Rating, req.Comment)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, review)
}

func (h *Handler) ListReviews(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	reviews, err := h.products.ListReviews(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, reviews)
}
