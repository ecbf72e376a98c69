package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/safar/go-storefront/internal/checkout"
	"github.com/safar/go-storefront/internal/database"
	"github.com/safar/go-storefront/internal/store"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, database.ErrProductNotFound),
		errors.Is(err, database.ErrBlogNotFound),
		errors.Is(err, database.ErrCartItemNotFound),
		errors.Is(err, database.ErrOrderNotFound),
		errors.Is(err, database.ErrProfileNotFound):
		return http.StatusNotFound

	case errors.Is(err, store.ErrInvalidCursor):
		return http.StatusBadRequest

	case errors.Is(err, database.ErrCartChanged):
		return http.StatusConflict

	case errors.Is(err, database.ErrInvalidQuantity),
		errors.Is(err, checkout.ErrEmptyCart),
		errors.Is(err, checkout.ErrIncompleteProfile),
		errors.Is(err, checkout.ErrProductUnavailable):
		return http.StatusUnprocessableEntity

	default:
		return http.StatusInternalServerError
	}
}

// respondError maps domain errors onto HTTP statuses and records the error on
// the context so the request logger picks it up.
func respondError(c *gin.Context, err error) {
	_ = c.Error(err)

	body := gin.H{
		"error":      err.Error(),
		"request_id": GetRequestID(c),
	}

	var incomplete *checkout.IncompleteProfileError
	if errors.As(err, &incomplete) {
		fields := FieldErrors{}
		for _, name := range incomplete.Missing {
			fields[name] = "this field is required"
		}
		body["fields"] = fields
	}

	c.AbortWithStatusJSON(statusFor(err), body)
}

func respondInvalid(c *gin.Context, fields FieldErrors) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
		"error":      "invalid request",
		"fields":     fields,
		"request_id": GetRequestID(c),
	})
}

func abortJSON(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"error":      message,
		"request_id": GetRequestID(c),
	})
}
