package handlers

import (
	"net/http"

	"rentalhub/internal/common"
	"rentalhub/internal/services"

	"github.com/labstack/echo/v4"
)

// PaymentHandlers handles payment orders raised against confirmed rentals
type PaymentHandlers struct {
	paymentService services.PaymentService
}

func NewPaymentHandlers(paymentService services.PaymentService) *PaymentHandlers {
	return &PaymentHandlers{paymentService: paymentService}
}

func (h *PaymentHandlers) Register(g *echo.Group) {
	g.POST("/rentals/:id/payments", h.CreatePayment)
	g.GET("/rentals/:id/payments", h.ListPayments)
}

// CreatePayment handles POST /rentals/:id/payments. The amount is always
// the stored rental total.
func (h *PaymentHandlers) CreatePayment(c echo.Context) error {
	id, err := rentalIDParam(c)
	if err != nil {
		return common.SendError(c, err)
	}

	payment, err := h.paymentService.CreatePayment(c.Request().Context(), id)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusCreated, payment)
}

// ListPayments handles GET /rentals/:id/payments
func (h *PaymentHandlers) ListPayments(c echo.Context) error {
	id, err := rentalIDParam(c)
	if err != nil {
		return common.SendError(c, err)
	}

	payments, err := h.paymentService.ListPayments(c.Request().Context(), id)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"payments": payments})
}
