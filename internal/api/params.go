package api

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/safar/go-storefront/internal/store"
)

func pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		respondInvalid(c, FieldErrors{name: "must be a valid id"})
		return uuid.Nil, false
	}
	return id, true
}

func pageRequest(c *gin.Context) store.PageRequest {
	page, _ := strconv.Atoi(c.Query("page"))
	pageSize, _ := strconv.Atoi(c.Query("page_size"))
	return store.PageRequest{Page: page, PageSize: pageSize}.Normalize()
}

// mustUser returns the authenticated user. Routes using it sit behind
// AuthMiddleware.
func mustUser(c *gin.Context) uuid.UUID {
	id, _ := currentUser(c)
	return id
}
