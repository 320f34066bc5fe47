package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/flicky/homeclick-store/internal/dto"
	"github.com/flicky/homeclick-store/internal/middleware"
	"github.com/flicky/homeclick-store/internal/model"
	"github.com/flicky/homeclick-store/internal/service"
)

type OrderHandler struct {
	orderService *service.OrderService
}

func NewOrderHandler(orderService *service.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

func (h *OrderHandler) ListOrders(c *gin.Context) {
	orders, err := h.orderService.ListCompleted(c.Request.Context(), middleware.GetIdentity(c))
	if err != nil {
		respondError(c, err)
		return
	}

	items := make([]dto.OrderResponse, 0, len(orders))
	for i := range orders {
		items = append(items, toOrderResponse(&orders[i], nil))
	}

	c.JSON(http.StatusOK, dto.OrderListResponse{Orders: items, Total: len(items)})
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	orderID, ok := pathID(c, "order")
	if !ok {
		return
	}

	receipt, err := h.orderService.GetByID(c.Request.Context(), middleware.GetIdentity(c), orderID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toOrderResponse(receipt.Order, receipt.Delivery))
}

func toOrderResponse(order *model.Order, delivery *model.ShippingAddress) dto.OrderResponse {
	resp := dto.OrderResponse{
		ID:          order.ID,
		Complete:    order.Complete,
		Items:       toItemResponses(order.Items),
		CartItems:   order.CartItemCount(),
		CartTotal:   order.CartTotal(),
		CreatedAt:   order.CreatedAt,
		CompletedAt: order.CompletedAt,
	}
	if delivery != nil {
		resp.Delivery = &dto.DeliveryFields{
			Name:    delivery.Name,
			Address: delivery.Address,
			City:    delivery.City,
			State:   delivery.State,
			Mobile:  delivery.Mobile,
		}
	}
	return resp
}
