package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/safar/go-storefront/internal/store"
)

type OrderHandler struct {
	orders   OrderStore
	checkout CheckoutService
}

func NewOrderHandler(orders OrderStore, checkout CheckoutService) *OrderHandler {
	return &OrderHandler{orders: orders, checkout: checkout}
}

// Checkout places an order from the caller's cart. The response carries the
// chat link; opening it is left to the client.
func (h *OrderHandler) Checkout(c *gin.Context) {
	receipt, err := h.checkout.PlaceOrder(c.Request.Context(), mustUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, receipt)
}

func (h *OrderHandler) ListMine(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))

	page, err := h.orders.ListForUser(c.Request.Context(), mustUser(c), c.Query("cursor"), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *OrderHandler) GetMine(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	order, err := h.orders.GetForUser(c.Request.Context(), mustUser(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) List(c *gin.Context) {
	page, err := h.orders.List(c.Request.Context(), pageRequest(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

type StatusRequest struct {
	PaymentStatus  *string `json:"payment_status" binding:"omitempty,oneof=pending paid failed refunded"`
	DeliveryStatus *string `json:"delivery_status" binding:"omitempty,oneof=pending processing shipped delivered cancelled"`
}

func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalid(c, FromBindError(err, &req))
		return
	}
	if req.PaymentStatus == nil && req.DeliveryStatus == nil {
		respondInvalid(c, FieldErrors{"_": "payment_status or delivery_status is required"})
		return
	}

	order, err := h.orders.UpdateStatus(c.Request.Context(), id, store.StatusUpdate{
		PaymentStatus:  req.PaymentStatus,
		DeliveryStatus: req.DeliveryStatus,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}
