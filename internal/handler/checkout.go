package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/flicky/homeclick-store/internal/dto"
	"github.com/flicky/homeclick-store/internal/middleware"
	"github.com/flicky/homeclick-store/internal/service"
)

type CheckoutHandler struct {
	svc *service.CheckoutService
}

func NewCheckoutHandler(svc *service.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{svc: svc}
}

func (h *CheckoutHandler) Begin(c *gin.Context) {
	view, err := h.svc.BeginCheckout(c.Request.Context(), middleware.GetIdentity(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.CheckoutResponse{
		Cart:           toCartResponse(view.Cart),
		Subtotal:       view.Subtotal,
		DiscountCode:   view.DiscountCode,
		DiscountAmount: view.DiscountAmount,
		FinalTotal:     view.FinalTotal,
		Delivery:       dto.DeliveryFields(view.Delivery),
	})
}

func (h *CheckoutHandler) Complete(c *gin.Context) {
	var req dto.DeliveryFields
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sum, err := h.svc.CompleteCheckout(c.Request.Context(), middleware.GetIdentity(c), service.DeliveryForm(req))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.CompleteCheckoutResponse{
		OrderID:  sum.OrderID,
		Redirect: fmt.Sprintf("/api/v1/orders/%s/confirmation", sum.OrderID),
	})
}

func (h *CheckoutHandler) Confirmation(c *gin.Context) {
	orderID, ok := pathID(c, "order")
	if !ok {
		return
	}
	conf, err := h.svc.GetConfirmation(c.Request.Context(), middleware.GetIdentity(c), orderID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ConfirmationResponse{
		Order:          toOrderResponse(conf.Order, nil),
		Subtotal:       conf.Subtotal,
		DiscountCode:   conf.DiscountCode,
		DiscountAmount: conf.DiscountAmount,
		FinalTotal:     conf.FinalTotal,
	})
}
