package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strconv"
	"time"

	"storefront-service/internal/domain"
	mdt "storefront-service/internal/infra/midtrans"
	"storefront-service/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const orderListCacheTTL = 10 * time.Second

type Handler struct {
	orders   *services.OrderService
	carts    *services.CartService
	payments *services.PaymentService
	rdb      *redis.Client
	logger   *zap.Logger
}

func NewHandler(orders *services.OrderService, carts *services.CartService, payments *services.PaymentService, rdb *redis.Client, logger *zap.Logger) *Handler {
	return &Handler{
		orders:   orders,
		carts:    carts,
		payments: payments,
		rdb:      rdb,
		logger:   logger,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/cart", h.GetCart)
	r.POST("/cart/items", h.AddCartItem)
	r.PATCH("/cart/items/:id", h.UpdateCartItem)
	r.DELETE("/cart/items/:id", h.RemoveCartItem)

	r.POST("/orders", h.CreateOrder)
	r.GET("/orders", h.ListOrders)
	r.GET("/orders/:id", h.GetOrder)

	r.POST("/payments/midtrans/charge/:orderId", h.CreateCharge)
	r.POST("/payments/midtrans/webhook", h.MidtransWebhook)

	admin := r.Group("/admin", adminOnly())
	admin.GET("/orders", h.ListAllOrders)
	admin.PATCH("/orders/:id/status", h.UpdateOrderStatus)
	admin.PATCH("/orders/:id/payment-status", h.OverridePaymentStatus)
}

// The upstream gateway authenticates requests and forwards the caller's
// identity and role in headers.
func userID(c *gin.Context) string {
	return c.GetHeader("X-User-ID")
}

func adminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("X-User-Role") != "ADMIN" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin only"})
			return
		}
		c.Next()
	}
}

func (h *Handler) GetCart(c *gin.Context) {
	uid := userID(c)
	if uid == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing user"})
		return
	}

	cart, err := h.carts.Get(c.Request.Context(), uid)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (h *Handler) AddCartItem(c *gin.Context) {
	uid := userID(c)
	if uid == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing user"})
		return
	}

	var req AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cart, err := h.carts.AddItem(c.Request.Context(), uid, req.VariantID, req.Quantity)
	if err != nil {
		h.renderCartError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (h *Handler) UpdateCartItem(c *gin.Context) {
	uid := userID(c)
	if uid == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing user"})
		return
	}

	var req UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cart, err := h.carts.UpdateItem(c.Request.Context(), uid, c.Param("id"), req.Quantity)
	if err != nil {
		h.renderCartError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (h *Handler) RemoveCartItem(c *gin.Context) {
	uid := userID(c)
	if uid == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing user"})
		return
	}

	cart, err := h.carts.RemoveItem(c.Request.Context(), uid, c.Param("id"))
	if err != nil {
		h.renderCartError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (h *Handler) CreateOrder(c *gin.Context) {
	uid := userID(c)
	if uid == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing user"})
		return
	}

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	addr := domain.ShippingAddress{
		FullName:    req.ShippingAddress.FullName,
		Phone:       req.ShippingAddress.Phone,
		FullAddress: req.ShippingAddress.FullAddress,
		City:        req.ShippingAddress.City,
		Province:    req.ShippingAddress.Province,
		PostalCode:  req.ShippingAddress.PostalCode,
	}

	order, err := h.orders.PlaceOrder(c.Request.Context(), uid, addr, req.Notes)
	if err != nil {
		var notFound *services.VariantNotFoundError
		var noStock *services.InsufficientStockError
		switch {
		case errors.Is(err, services.ErrEmptyCart):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.As(err, &notFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.As(err, &noStock):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	h.rdb.Del(context.Background(), orderListCacheKey(uid, 1, 10))

	c.JSON(http.StatusCreated, order)
}

func (h *Handler) ListOrders(c *gin.Context) {
	uid := userID(c)
	if uid == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing user"})
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	ctx := c.Request.Context()
	cacheKey := orderListCacheKey(uid, page, limit)
	if b, err := h.rdb.Get(ctx, cacheKey).Bytes(); err == nil {
		c.Data(http.StatusOK, "application/json", b)
		return
	}

	orders, total, err := h.orders.ListByUser(ctx, uid, page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	body := gin.H{"data": orders, "total": total, "page": page, "limit": limit}
	c.JSON(http.StatusOK, body)

	if data, err := json.Marshal(body); err == nil {
		h.rdb.Set(ctx, cacheKey, data, orderListCacheTTL)
	}
}

func (h *Handler) GetOrder(c *gin.Context) {
	uid := userID(c)
	if uid == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing user"})
		return
	}

	order, err := h.orders.GetOrder(c.Request.Context(), c.Param("id"), uid)
	if err != nil {
		if errors.Is(err, services.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) CreateCharge(c *gin.Context) {
	uid := userID(c)
	if uid == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing user"})
		return
	}

	result, err := h.payments.CreateSnapToken(c.Request.Context(), c.Param("orderId"))
	if err != nil {
		if errors.Is(err, services.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

// MidtransWebhook always acknowledges with 200: the gateway can only react
// to a non-2xx by retrying, so internal failures are logged, never leaked.
func (h *Handler) MidtransWebhook(c *gin.Context) {
	ack := gin.H{"received": true}

	var n WebhookNotification
	if err := c.ShouldBindJSON(&n); err != nil {
		h.logger.Warn("malformed webhook payload", zap.Error(err))
		c.JSON(http.StatusOK, ack)
		return
	}

	if key := os.Getenv("MIDTRANS_SERVER_KEY"); key != "" && n.SignatureKey != "" {
		if !mdt.VerifySignature(n.OrderID, n.StatusCode, n.GrossAmount, n.SignatureKey, key) {
			h.logger.Warn("webhook signature mismatch", zap.String("order_id", n.OrderID))
			c.JSON(http.StatusOK, ack)
			return
		}
	}

	err := h.payments.HandleNotification(c.Request.Context(), domain.PaymentNotification{
		OrderID:           n.OrderID,
		TransactionStatus: n.TransactionStatus,
		FraudStatus:       n.FraudStatus,
		TransactionID:     n.TransactionID,
	})
	if err != nil {
		h.logger.Error("webhook reconciliation failed",
			zap.String("order_id", n.OrderID),
			zap.Error(err))
	}

	c.JSON(http.StatusOK, ack)
}

func (h *Handler) ListAllOrders(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	status := domain.OrderStatus(c.Query("status"))

	orders, total, err := h.orders.ListAll(c.Request.Context(), page, limit, status)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": orders, "total": total, "page": page, "limit": limit})
}

func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.orders.UpdateStatus(c.Request.Context(), c.Param("id"), domain.OrderStatus(req.Status))
	if err != nil {
		if errors.Is(err, services.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": true})
}

func (h *Handler) OverridePaymentStatus(c *gin.Context) {
	var req UpdatePaymentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.payments.OverridePaymentStatus(c.Request.Context(), c.Param("id"), domain.PaymentStatus(req.PaymentStatus))
	if err != nil {
		if errors.Is(err, services.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": true})
}

func (h *Handler) renderCartError(c *gin.Context, err error) {
	var notFound *services.VariantNotFoundError
	var noStock *services.InsufficientStockError
	switch {
	case errors.As(err, &notFound), errors.Is(err, services.ErrCartItemNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.As(err, &noStock), errors.Is(err, services.ErrInvalidQuantity):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func orderListCacheKey(userID string, page, limit int) string {
	return "orders:user:" + userID + ":" + strconv.Itoa(page) + ":" + strconv.Itoa(limit)
}
