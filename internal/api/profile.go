package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/safar/go-storefront/internal/database"
	"github.com/safar/go-storefront/internal/models"
	"github.com/safar/go-storefront/internal/store"
)

type ProfileHandler struct {
	profiles ProfileStore
}

func NewProfileHandler(profiles ProfileStore) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

type ProfileRequest struct {
	FullName string `json:"full_name" binding:"required,max=200"`
	Phone    string `json:"phone" binding:"max=50"`
	Address  string `json:"address" binding:"max=500"`
}

// Get returns an empty profile for users who have not saved one yet.
func (h *ProfileHandler) Get(c *gin.Context) {
	userID := mustUser(c)

	profile, err := h.profiles.Get(c.Request.Context(), userID)
	if errors.Is(err, database.ErrProfileNotFound) {
		c.JSON(http.StatusOK, models.Profile{ID: userID})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *ProfileHandler) Update(c *gin.Context) {
	var req ProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalid(c, FromBindError(err, &req))
		return
	}

	profile, err := h.profiles.Upsert(c.Request.Context(), mustUser(c), store.ProfileInput{
		FullName: req.FullName,
		Phone:    req.Phone,
		Address:  req.Address,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}
