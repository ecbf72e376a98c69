package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/safar/go-storefront/internal/catalog"
	"github.com/safar/go-storefront/internal/media"
	"github.com/safar/go-storefront/internal/models"
	"github.com/safar/go-storefront/internal/store"
)

type BlogHandler struct {
	blogs BlogService
}

func NewBlogHandler(blogs BlogService) *BlogHandler {
	return &BlogHandler{blogs: blogs}
}

// BlogForm is submitted as multipart/form-data. New files go under "files";
// "media", when present, is the JSON list of saved media to keep.
type BlogForm struct {
	Title       string `form:"title" binding:"required,max=300"`
	Content     string `form:"content" binding:"required"`
	Excerpt     string `form:"excerpt" binding:"max=500"`
	IsPublished bool   `form:"is_published"`
}

func (h *BlogHandler) bind(c *gin.Context) (catalog.BlogDraft, bool) {
	var form BlogForm
	if err := c.ShouldBind(&form); err != nil {
		respondInvalid(c, FromBindError(err, &form))
		return catalog.BlogDraft{}, false
	}

	draft := catalog.BlogDraft{
		Title:       form.Title,
		Content:     form.Content,
		Excerpt:     form.Excerpt,
		IsPublished: form.IsPublished,
	}

	if raw, ok := c.GetPostForm("media"); ok {
		keep := models.ParseMedia(raw)
		draft.Keep = &keep
	}

	if mf, err := c.MultipartForm(); err == nil && mf != nil {
		draft.Files = media.FromMultipartList(mf.File["files"])
	}

	return draft, true
}

func (h *BlogHandler) ListPublished(c *gin.Context) {
	page, err := h.blogs.List(c.Request.Context(), store.BlogFilter{PublishedOnly: true}, pageRequest(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *BlogHandler) GetPublished(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	blog, err := h.blogs.GetPublished(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, blog)
}

func (h *BlogHandler) List(c *gin.Context) {
	page, err := h.blogs.List(c.Request.Context(), store.BlogFilter{}, pageRequest(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *BlogHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	blog, err := h.blogs.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, blog)
}

func (h *BlogHandler) Create(c *gin.Context) {
	draft, ok := h.bind(c)
	if !ok {
		return
	}

	res, err := h.blogs.Create(c.Request.Context(), mustUser(c), draft)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (h *BlogHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	draft, ok := h.bind(c)
	if !ok {
		return
	}

	res, err := h.blogs.Update(c.Request.Context(), mustUser(c), id, draft)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *BlogHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.blogs.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
