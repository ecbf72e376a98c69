package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/safar/go-storefront/internal/media"
	"github.com/safar/go-storefront/internal/store"
	"github.com/shopspring/decimal"
)

type ProductHandler struct {
	products ProductService
}

func NewProductHandler(products ProductService) *ProductHandler {
	return &ProductHandler{products: products}
}

type ProductRequest struct {
	Name              string           `json:"name" binding:"required,max=200"`
	Description       string           `json:"description"`
	Benefits          string           `json:"benefits"`
	Ingredients       string           `json:"ingredients"`
	UsageInstructions string           `json:"usage_instructions"`
	Price             *decimal.Decimal `json:"price" binding:"required"`
	StockCount        int              `json:"stock_count" binding:"gte=0"`
	ImageURL          string           `json:"image_url"`
	IsActive          *bool            `json:"is_active"`
}

func (r *ProductRequest) input() (store.ProductInput, FieldErrors) {
	if r.Price.IsNegative() {
		return store.ProductInput{}, FieldErrors{"price": "must not be negative"}
	}

	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}

	return store.ProductInput{
		Name:              r.Name,
		Description:       r.Description,
		Benefits:          r.Benefits,
		Ingredients:       r.Ingredients,
		UsageInstructions: r.UsageInstructions,
		Price:             r.Price.Round(2),
		StockCount:        r.StockCount,
		ImageURL:          r.ImageURL,
		IsActive:          active,
	}, nil
}

func (h *ProductHandler) bind(c *gin.Context) (store.ProductInput, bool) {
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalid(c, FromBindError(err, &req))
		return store.ProductInput{}, false
	}

	in, fields := req.input()
	if fields != nil {
		respondInvalid(c, fields)
		return store.ProductInput{}, false
	}

	return in, true
}

// ListActive serves the storefront catalog.
func (h *ProductHandler) ListActive(c *gin.Context) {
	page, err := h.products.List(c.Request.Context(), store.ProductFilter{ActiveOnly: true}, pageRequest(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *ProductHandler) GetActive(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	product, err := h.products.GetActive(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) List(c *gin.Context) {
	page, err := h.products.List(c.Request.Context(), store.ProductFilter{}, pageRequest(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *ProductHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	product, err := h.products.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) Create(c *gin.Context) {
	in, ok := h.bind(c)
	if !ok {
		return
	}

	product, err := h.products.Create(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	in, ok := h.bind(c)
	if !ok {
		return
	}

	product, err := h.products.Update(c.Request.Context(), id, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.products.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UploadImage stores the "image" form file and returns its public URL. The
// client puts the URL into the product form.
func (h *ProductHandler) UploadImage(c *gin.Context) {
	fh, err := c.FormFile("image")
	if err != nil {
		respondInvalid(c, FieldErrors{"image": "this field is required"})
		return
	}

	url, err := h.products.UploadImage(c.Request.Context(), mustUser(c), media.FromMultipart(fh))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"url": url})
}
