package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/safar/go-storefront/internal/checkout"
	"github.com/safar/go-storefront/internal/models"
	"github.com/shopspring/decimal"
)

type CartHandler struct {
	cart CartStore
}

func NewCartHandler(cart CartStore) *CartHandler {
	return &CartHandler{cart: cart}
}

type AddToCartRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,min=1,max=99"`
}

type UpdateCartRequest struct {
	Quantity int `json:"quantity" binding:"required,min=1,max=99"`
}

type cartResponse struct {
	Items []models.CartItem `json:"items"`
	Total decimal.Decimal   `json:"total"`
}

func (h *CartHandler) List(c *gin.Context) {
	items, err := h.cart.List(c.Request.Context(), mustUser(c))
	if err != nil {
		respondError(c, err)
		return
	}

	lines := make([]checkout.Line, 0, len(items))
	for _, item := range items {
		lines = append(lines, checkout.Line{Name: item.Product.Name, UnitPrice: item.Product.Price, Quantity: item.Quantity})
	}

	c.JSON(http.StatusOK, cartResponse{Items: items, Total: checkout.Total(lines)})
}

func (h *CartHandler) Add(c *gin.Context) {
	var req AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalid(c, FromBindError(err, &req))
		return
	}

	item, err := h.cart.Add(c.Request.Context(), mustUser(c), req.ProductID, req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *CartHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req UpdateCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalid(c, FromBindError(err, &req))
		return
	}

	item, err := h.cart.UpdateQuantity(c.Request.Context(), mustUser(c), id, req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *CartHandler) Remove(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.cart.Remove(c.Request.Context(), mustUser(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
