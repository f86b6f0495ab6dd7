package handlers

import (
	"errors"
	"io"
	"net/http"

	"rentalhub/internal/common"
	"rentalhub/internal/services"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const (
	signatureHeader    = "X-Razorpay-Signature"
	maxWebhookBodySize = 1 << 20
)

// WebhookHandlers receives payment gateway callbacks. These routes sit
// outside JWT auth and are verified by signature instead.
type WebhookHandlers struct {
	paymentService services.PaymentService
	logger         *zap.Logger
}

// NewWebhookHandlers creates a new webhook handlers instance
func NewWebhookHandlers(paymentService services.PaymentService, logger *zap.Logger) *WebhookHandlers {
	return &WebhookHandlers{
		paymentService: paymentService,
		logger:         logger,
	}
}

func (h *WebhookHandlers) Register(g *echo.Group) {
	g.POST("/webhooks/payments", h.PaymentWebhook)
}

// PaymentWebhook handles POST /webhooks/payments
func (h *WebhookHandlers) PaymentWebhook(c echo.Context) error {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookBodySize))
	if err != nil {
		return common.SendClientError(c, "Failed to read request body")
	}

	signature := c.Request().Header.Get(signatureHeader)
	if signature == "" {
		return common.SendUnauthorizedError(c)
	}

	event, err := h.paymentService.HandleWebhook(c.Request().Context(), body, signature)
	if errors.Is(err, services.ErrInvalidSignature) {
		h.logger.Warn("rejected webhook with bad signature", zap.String("remote_ip", c.RealIP()))
		return common.SendUnauthorizedError(c)
	}
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok", "event": event.Event})
}
