package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fixitek/services-api/internal/dto"
	"github.com/fixitek/services-api/internal/model"
	"github.com/fixitek/services-api/internal/repository"
	"github.com/fixitek/services-api/internal/service"
)

// OptionHandler serves the options of a single kind.
type OptionHandler struct {
	svc  *service.OptionService
	kind model.Kind
}

func NewOptionHandler(svc *service.OptionService, kind model.Kind) *OptionHandler {
	return &OptionHandler{svc: svc, kind: kind}
}

type listOptionsQuery struct {
	CategoryID *int64 `form:"category_id"`
}

func (h *OptionHandler) List(c *gin.Context) {
	var q listOptionsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	opts, err := h.svc.List(c.Request.Context(), h.kind, repository.OptionFilter{CategoryID: q.CategoryID})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOptionList(opts))
}

func (h *OptionHandler) Get(c *gin.Context) {
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}
	opt, err := h.svc.Get(c.Request.Context(), model.Ref{Kind: h.kind, ID: id})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewOptionResponse(opt))
}

func (h *OptionHandler) Create(c *gin.Context) {
	opt, ok := h.bind(c)
	if !ok {
		return
	}
	if err := h.svc.Create(c.Request.Context(), opt); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewOptionResponse(opt))
}

// Update replaces the option; omitted fields fall back to their defaults.
func (h *OptionHandler) Update(c *gin.Context) {
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}
	opt, ok := h.bind(c)
	if !ok {
		return
	}
	opt.Base().ID = id
	if err := h.svc.Update(c.Request.Context(), opt); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewOptionResponse(opt))
}

func (h *OptionHandler) Delete(c *gin.Context) {
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), model.Ref{Kind: h.kind, ID: id}); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *OptionHandler) bind(c *gin.Context) (model.ServiceOption, bool) {
	opt, err := model.NewOption(h.kind)
	if err != nil {
		writeError(c, err)
		return nil, false
	}
	if err := c.ShouldBindJSON(opt); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}
	return opt, true
}

func toOptionList(opts []model.ServiceOption) dto.OptionListResponse {
	items := make([]dto.OptionResponse, 0, len(opts))
	for _, opt := range opts {
		items = append(items, dto.NewOptionResponse(opt))
	}
	return dto.OptionListResponse{Options: items, Total: len(items)}
}
