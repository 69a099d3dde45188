package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fixitek/services-api/internal/dto"
	"github.com/fixitek/services-api/internal/middleware"
	"github.com/fixitek/services-api/internal/service"
)

type CartHandler struct {
	svc *service.CartService
}

func NewCartHandler(svc *service.CartService) *CartHandler {
	return &CartHandler{svc: svc}
}

func (h *CartHandler) GetCart(c *gin.Context) {
	view, err := h.svc.GetCart(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCartResponse(view))
}

func (h *CartHandler) ListItems(c *gin.Context) {
	view, err := h.svc.GetCart(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCartResponse(view).Items)
}

func (h *CartHandler) Total(c *gin.Context) {
	total, err := h.svc.Total(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.CartTotalResponse{TotalPrice: total})
}

func (h *CartHandler) AddItem(c *gin.Context) {
	var req dto.AddCartItemRequest
	if !bindJSON(c, &req) {
		return
	}
	ref, err := parseRef(req.Kind, req.OptionID)
	if err != nil {
		writeError(c, err)
		return
	}
	item, err := h.svc.AddItem(c.Request.Context(), middleware.GetUserID(c), ref, req.Quantity)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": item.ID, "kind": item.Ref.Kind, "option_id": item.Ref.ID, "quantity": item.Quantity})
}

func (h *CartHandler) UpdateItem(c *gin.Context) {
	itemID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateCartItemRequest
	if !bindJSON(c, &req) {
		return
	}
	if _, err := h.svc.UpdateItem(c.Request.Context(), middleware.GetUserID(c), itemID, req.Quantity); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "item updated"})
}

func (h *CartHandler) DeleteItem(c *gin.Context) {
	itemID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.RemoveItem(c.Request.Context(), middleware.GetUserID(c), itemID); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CartHandler) Clear(c *gin.Context) {
	if err := h.svc.Clear(c.Request.Context(), middleware.GetUserID(c)); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func toCartResponse(view *service.CartView) dto.CartResponse {
	items := make([]dto.CartItemResponse, 0, len(view.Cart.Items))
	for _, item := range view.Cart.Items {
		resp := dto.CartItemResponse{
			ID:         item.ID,
			Kind:       item.Ref.Kind,
			OptionID:   item.Ref.ID,
			Quantity:   item.Quantity,
			TotalPrice: item.TotalPrice(nil),
		}
		if opt, ok := view.Options[item.Ref]; ok {
			resp.Title = opt.DisplayTitle()
			resp.UnitPrice = opt.TotalPrice()
			resp.TotalPrice = item.TotalPrice(opt)
			resp.Available = true
			resp.Option = opt
		}
		items = append(items, resp)
	}
	return dto.CartResponse{
		ID:         view.Cart.ID,
		Items:      items,
		TotalPrice: view.Total,
		UpdatedAt:  view.Cart.UpdatedAt,
	}
}
