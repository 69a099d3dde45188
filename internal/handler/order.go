package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fixitek/services-api/internal/dto"
	"github.com/fixitek/services-api/internal/middleware"
	"github.com/fixitek/services-api/internal/model"
	"github.com/fixitek/services-api/internal/service"
)

type OrderHandler struct {
	orderService *service.OrderService
}

func NewOrderHandler(orderService *service.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// CreateOrder accepts authenticated and guest callers.
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req dto.CreateOrderRequest
	if !bindJSON(c, &req) {
		return
	}

	in := service.CreateOrderInput{
		UserID:   middleware.GetUserIDPtr(c),
		FromCart: req.FromCart,
		Items:    make([]service.OrderLine, 0, len(req.Items)),
	}
	if in.UserID == nil {
		in.Guest = req.Guest
	}
	for _, line := range req.Items {
		ref, err := parseRef(line.Kind, line.OptionID)
		if err != nil {
			writeError(c, err)
			return
		}
		in.Items = append(in.Items, service.OrderLine{Ref: ref, Quantity: line.Quantity})
	}

	order, err := h.orderService.CreateOrder(c.Request.Context(), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toOrderResponse(order, h.liveOptions(c, order.Items)))
}

func (h *OrderHandler) ListOrders(c *gin.Context) {
	orders, err := h.orderService.ListByUserID(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}

	var all []model.OrderItem
	for _, order := range orders {
		all = append(all, order.Items...)
	}
	live := h.liveOptions(c, all)

	items := make([]dto.OrderResponse, 0, len(orders))
	for i := range orders {
		items = append(items, toOrderResponse(&orders[i], live))
	}
	c.JSON(http.StatusOK, dto.OrderListResponse{Orders: items, Total: len(items)})
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	order, ok := h.load(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(order, h.liveOptions(c, order.Items)))
}

func (h *OrderHandler) ListItems(c *gin.Context) {
	order, ok := h.load(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(order, h.liveOptions(c, order.Items)).Items)
}

func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	orderID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateOrderStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	order, err := h.orderService.UpdateStatus(c.Request.Context(), orderID, req.Status)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(order, h.liveOptions(c, order.Items)))
}

func (h *OrderHandler) load(c *gin.Context) (*model.Order, bool) {
	orderID, ok := uuidParam(c, "id")
	if !ok {
		return nil, false
	}
	who := service.Requester{
		UserID:  middleware.GetUserIDPtr(c),
		IsAdmin: middleware.GetUserRole(c) == model.RoleAdmin,
	}
	order, err := h.orderService.GetByID(c.Request.Context(), orderID, who)
	if err != nil {
		writeError(c, err)
		return nil, false
	}
	return order, true
}

// liveOptions attaches current option details to order lines. A lookup
// failure only drops the details; the frozen order is still served.
func (h *OrderHandler) liveOptions(c *gin.Context, items []model.OrderItem) map[model.Ref]model.ServiceOption {
	if len(items) == 0 {
		return nil
	}
	live, err := h.orderService.LiveOptions(c.Request.Context(), items)
	if err != nil {
		slog.WarnContext(c.Request.Context(), "resolve order options", "error", err)
		return nil
	}
	return live
}

func toOrderResponse(order *model.Order, live map[model.Ref]model.ServiceOption) dto.OrderResponse {
	items := make([]dto.OrderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, dto.OrderItemResponse{
			ID:        item.ID,
			Kind:      item.Ref.Kind,
			OptionID:  item.Ref.ID,
			Title:     item.Title,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Price:     item.Price,
			Option:    live[item.Ref],
		})
	}
	resp := dto.OrderResponse{
		ID:         order.ID,
		UserID:     order.UserID,
		CartID:     order.CartID,
		Status:     order.Status,
		TotalPrice: order.TotalPrice,
		Items:      items,
		CreatedAt:  order.CreatedAt,
		UpdatedAt:  order.UpdatedAt,
	}
	if order.IsGuest() {
		guest := order.Guest
		resp.Guest = &guest
	}
	return resp
}
