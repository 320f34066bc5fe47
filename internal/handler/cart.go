package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/flicky/homeclick-store/internal/dto"
	"github.com/flicky/homeclick-store/internal/middleware"
	"github.com/flicky/homeclick-store/internal/model"
	"github.com/flicky/homeclick-store/internal/service"
)

type CartHandler struct {
	svc      *service.CartService
	checkout *service.CheckoutService
}

func NewCartHandler(svc *service.CartService, checkout *service.CheckoutService) *CartHandler {
	return &CartHandler{svc: svc, checkout: checkout}
}

func (h *CartHandler) GetCart(c *gin.Context) {
	view, err := h.svc.GetCart(c.Request.Context(), middleware.GetIdentity(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCartResponse(view))
}

func (h *CartHandler) UpdateItem(c *gin.Context) {
	var req dto.UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		req = dto.UpdateCartItemRequest{}
	}
	if strings.TrimSpace(req.ProductID) == "" {
		respondError(c, service.ErrMissingProduct)
		return
	}
	productID, err := uuid.Parse(strings.TrimSpace(req.ProductID))
	if err != nil {
		respondError(c, service.ErrProductNotFound)
		return
	}
	action, err := service.ParseAction(req.Action)
	if err != nil {
		respondError(c, err)
		return
	}

	order, err := h.svc.AddOrRemove(c.Request.Context(), middleware.GetIdentity(c), productID, action)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "cart_items": order.CartItemCount(), "cart_total": order.CartTotal()})
}

func (h *CartHandler) ApplyDiscount(c *gin.Context) {
	var req dto.ApplyDiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		req = dto.ApplyDiscountRequest{}
	}
	res, err := h.checkout.ApplyDiscount(c.Request.Context(), middleware.GetIdentity(c), req.Code)
	if err != nil {
		respondError(c, err)
		return
	}
	resp := dto.ApplyDiscountResponse{
		OK:       res.Accepted,
		Subtotal: res.Subtotal,
		Discount: res.DiscountAmount,
		Total:    res.Total,
	}
	if res.Accepted {
		resp.Code = res.Code
	} else {
		resp.Error = "Invalid discount code."
	}
	c.JSON(http.StatusOK, resp)
}

func toCartResponse(view service.CartView) dto.CartResponse {
	switch v := view.(type) {
	case service.OpenCart:
		id := v.Order.ID
		return dto.CartResponse{
			OrderID:   &id,
			Items:     toItemResponses(v.Order.Items),
			CartItems: v.ItemCount(),
			CartTotal: v.Total(),
		}
	default:
		return dto.CartResponse{Items: []dto.CartItemResponse{}, ReadOnly: true}
	}
}

func toItemResponses(items []model.OrderItem) []dto.CartItemResponse {
	out := make([]dto.CartItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, dto.CartItemResponse{
			ID:        item.ID,
			ProductID: item.ProductID,
			Name:      item.Product.Name,
			Code:      item.Product.Code,
			Image:     item.Product.Image,
			Price:     item.Product.Price,
			Quantity:  item.Quantity,
			LineTotal: item.LineTotal(),
		})
	}
	return out
}
