package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/fixitek/services-api/internal/model"
	"github.com/fixitek/services-api/internal/repository"
	"github.com/fixitek/services-api/internal/service"
)

var notFoundErrors = []error{
	service.ErrOptionNotFound,
	service.ErrCategoryNotFound,
	service.ErrTaxonNotFound,
	service.ErrCartItemNotFound,
	service.ErrOrderNotFound,
	service.ErrUserNotFound,
	repository.ErrUnknownTaxonomy,
	model.ErrUnknownKind,
}

// writeError maps service and repository errors onto HTTP responses.
func writeError(c *gin.Context, err error) {
	var verr *model.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": verr.Fields})
		return
	}
	for _, target := range notFoundErrors {
		if errors.Is(err, target) {
			c.JSON(http.StatusNotFound, gin.H{"error": target.Error()})
			return
		}
	}

	var ierr *repository.IntegrityError
	switch {
	case errors.Is(err, service.ErrEmptyOrder):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrOrderAccessDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrUserAlreadyExists), errors.Is(err, service.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.As(err, &ierr):
		c.JSON(http.StatusConflict, gin.H{"error": "integrity violation", "constraint": ierr.Constraint})
	default:
		slog.ErrorContext(c.Request.Context(), "request failed",
			"method", c.Request.Method, "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// bindJSON decodes the body into req and runs its validate tags.
func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	if err := model.Validate(req); err != nil {
		writeError(c, err)
		return false
	}
	return true
}

func int64Param(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}

func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}

// parseRef accepts the kind in any case, so "TV_MOUNTING" names tv_mounting.
func parseRef(kind string, id int64) (model.Ref, error) {
	k, err := model.ParseKind(kind)
	if err != nil {
		names := make([]string, 0, len(model.Kinds()))
		for _, known := range model.Kinds() {
			names = append(names, string(known))
		}
		return model.Ref{}, model.NewValidationError("kind", "oneof", "must be one of "+strings.Join(names, " "))
	}
	return model.Ref{Kind: k, ID: id}, nil
}
