package handler

import (
	"errors"
	"net/http"

	"salesops/internal/middleware"
	"salesops/internal/policy"
	"salesops/pkg/apperr"
	"salesops/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// validationBody is an error response carrying per-field messages.
type validationBody struct {
	response.Response
	Fields map[string]string `json:"fields,omitempty"`
}

// writeError maps service errors onto HTTP statuses. Anything unrecognized is
// a 500 with a generic message; internals never leak to the client.
func writeError(c *gin.Context, err error) {
	if verr, ok := apperr.AsValidation(err); ok {
		c.JSON(http.StatusBadRequest, validationBody{
			Response: response.Error(http.StatusBadRequest, verr.Message),
			Fields:   verr.Fields,
		})
		return
	}

	switch {
	case errors.Is(err, apperr.ErrDenied):
		c.JSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Access denied: insufficient permissions"))
	case errors.Is(err, apperr.ErrNotFound):
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, "Resource not found"))
	case errors.Is(err, apperr.ErrNotAssigned):
		c.JSON(http.StatusConflict, response.Error(http.StatusConflict, "Account is not assigned in the hierarchy"))
	default:
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Internal server error"))
	}
}

// requirePrincipal rebuilds the principal set by the auth middleware, writing
// a 401 when it is missing.
func requirePrincipal(c *gin.Context) (policy.Principal, bool) {
	p, ok := middleware.CurrentPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Account not found in context"))
		return policy.Principal{}, false
	}
	return p, true
}

// parseIDParam reads and validates a UUID path parameter.
func parseIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid "+name))
		return uuid.Nil, false
	}
	return id, true
}
