package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"backoffice/internal/errs"
	"backoffice/internal/middleware"
	"backoffice/internal/service"
	"backoffice/pkg/response"
)

// mutationContext builds the audit context for the current request.
func mutationContext(c *gin.Context) service.MutationContext {
	return service.MutationContext{
		ActorID:   middleware.ActorID(c),
		IP:        c.ClientIP(),
		UserAgent: c.GetHeader("User-Agent"),
	}
}

// writeError maps the service error taxonomy to HTTP responses. A
// ValidationError gets 422 so the client keeps its confirmation dialog open;
// everything else renders as a regular toast-style error.
func writeError(c *gin.Context, err error) {
	if errs.IsValidation(err) {
		c.JSON(http.StatusUnprocessableEntity, response.Error(http.StatusUnprocessableEntity, err.Error()))
		return
	}
	if _, ok := errs.AsField(err); ok {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	switch {
	case errors.Is(err, errs.ErrNotFound):
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
	case errors.Is(err, errs.ErrNoChanges):
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
	case errors.Is(err, errs.ErrVersionConflict),
		errors.Is(err, errs.ErrHasDependents),
		errors.Is(err, errs.ErrAlreadyAssigned),
		errors.Is(err, errs.ErrDuplicateIdentifier):
		c.JSON(http.StatusConflict, response.Error(http.StatusConflict, err.Error()))
	default:
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
	}
}

// tenant extracts the company scope set by the auth middleware, writing a
// 403 when it is missing.
func tenant(c *gin.Context) (uuid.UUID, bool) {
	id, ok := middleware.CompanyID(c)
	if !ok {
		c.JSON(http.StatusForbidden, response.Error(http.StatusForbidden, "missing tenant scope"))
	}
	return id, ok
}
