package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fixitek/services-api/internal/dto"
	"github.com/fixitek/services-api/internal/model"
	"github.com/fixitek/services-api/internal/service"
)

// TaxonomyHandler serves one lookup table; register one per taxonomy.
type TaxonomyHandler struct {
	svc      *service.TaxonomyService
	taxonomy model.Taxonomy
}

func NewTaxonomyHandler(svc *service.TaxonomyService, taxonomy model.Taxonomy) *TaxonomyHandler {
	return &TaxonomyHandler{svc: svc, taxonomy: taxonomy}
}

func (h *TaxonomyHandler) List(c *gin.Context) {
	entries, err := h.svc.List(c.Request.Context(), h.taxonomy)
	if err != nil {
		writeError(c, err)
		return
	}
	if entries == nil {
		entries = []model.Taxon{}
	}
	c.JSON(http.StatusOK, entries)
}

func (h *TaxonomyHandler) Get(c *gin.Context) {
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}
	taxon, err := h.svc.Get(c.Request.Context(), h.taxonomy, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, taxon)
}

func (h *TaxonomyHandler) Create(c *gin.Context) {
	var req dto.TaxonRequest
	if !bindJSON(c, &req) {
		return
	}
	taxon := &model.Taxon{Name: req.Name, Description: req.Description, Photo: req.Photo}
	if err := h.svc.Create(c.Request.Context(), h.taxonomy, taxon); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, taxon)
}

func (h *TaxonomyHandler) Update(c *gin.Context) {
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}
	var req dto.TaxonRequest
	if !bindJSON(c, &req) {
		return
	}
	taxon := &model.Taxon{ID: id, Name: req.Name, Description: req.Description, Photo: req.Photo}
	if err := h.svc.Update(c.Request.Context(), h.taxonomy, taxon); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, taxon)
}

func (h *TaxonomyHandler) Delete(c *gin.Context) {
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), h.taxonomy, id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type CategoryHandler struct {
	svc     *service.CategoryService
	options *service.OptionService
}

func NewCategoryHandler(svc *service.CategoryService, options *service.OptionService) *CategoryHandler {
	return &CategoryHandler{svc: svc, options: options}
}

func (h *CategoryHandler) List(c *gin.Context) {
	categories, err := h.svc.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	if categories == nil {
		categories = []model.ServiceCategory{}
	}
	c.JSON(http.StatusOK, categories)
}

func (h *CategoryHandler) Get(c *gin.Context) {
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}
	category, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, category)
}

func (h *CategoryHandler) Create(c *gin.Context) {
	var req dto.CategoryRequest
	if !bindJSON(c, &req) {
		return
	}
	category := &model.ServiceCategory{Name: req.Name, Description: req.Description, FeatureImage: req.FeatureImage}
	if err := h.svc.Create(c.Request.Context(), category); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, category)
}

func (h *CategoryHandler) Update(c *gin.Context) {
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}
	var req dto.CategoryRequest
	if !bindJSON(c, &req) {
		return
	}
	category := &model.ServiceCategory{ID: id, Name: req.Name, Description: req.Description, FeatureImage: req.FeatureImage}
	if err := h.svc.Update(c.Request.Context(), category); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, category)
}

// Delete removes the category together with every option filed under it.
func (h *CategoryHandler) Delete(c *gin.Context) {
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CategoryHandler) ListOptions(c *gin.Context) {
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}
	opts, err := h.options.ListByCategory(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOptionList(opts))
}
