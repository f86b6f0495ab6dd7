package services

import (
	"context"
	"encoding/json"
	"errors"

	"rentalhub/internal/common"
	"rentalhub/internal/models"
	"rentalhub/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Webhook event names handled by HandleWebhook
const (
	EventPaymentCaptured = "payment.captured"
	EventPaymentFailed   = "payment.failed"
)

const (
	MsgPaymentNeedsConfirmed = "Payments can only be taken for confirmed rentals"
	MsgPaymentNothingDue     = "Rental total is zero, nothing to pay"
	MsgPaymentAlreadyPaid    = "Rental is already paid"
)

// ErrInvalidSignature is returned for webhooks that fail verification
var ErrInvalidSignature = errors.New("invalid webhook signature")

// WebhookEvent is the subset of a gateway webhook this service reads
type WebhookEvent struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity struct {
				ID      string `json:"id"`
				OrderID string `json:"order_id"`
				Status  string `json:"status"`
				Amount  int64  `json:"amount"`
			} `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

type PaymentService interface {
	CreatePayment(ctx context.Context, rentalID string) (*models.Payment, error)
	ListPayments(ctx context.Context, rentalID string) ([]*models.Payment, error)
	HandleWebhook(ctx context.Context, body []byte, signature string) (*WebhookEvent, error)
}

type paymentService struct {
	paymentRepo repositories.PaymentRepository
	rentalRepo  repositories.RentalRepository
	gateway     PaymentGateway
	currency    string
	logger      *zap.Logger
}

func NewPaymentService(paymentRepo repositories.PaymentRepository, rentalRepo repositories.RentalRepository, gateway PaymentGateway, currency string, logger *zap.Logger) PaymentService {
	if currency == "" {
		currency = "INR"
	}
	return &paymentService{
		paymentRepo: paymentRepo,
		rentalRepo:  rentalRepo,
		gateway:     gateway,
		currency:    currency,
		logger:      logger,
	}
}

// CreatePayment raises a gateway order for the full rental total
func (s *paymentService) CreatePayment(ctx context.Context, rentalID string) (*models.Payment, error) {
	order, err := s.rentalRepo.GetByID(ctx, rentalID)
	if err != nil {
		return nil, err
	}
	if order.Status != models.RentalStatusConfirmed {
		return nil, common.BusinessRuleError(MsgPaymentNeedsConfirmed)
	}
	if !order.Total.IsPositive() {
		return nil, common.BusinessRuleError(MsgPaymentNothingDue)
	}

	existing, err := s.paymentRepo.ListByRental(ctx, rentalID)
	if err != nil {
		return nil, err
	}
	for _, p := range existing {
		if p.Status == models.PaymentStatusCaptured {
			return nil, common.BusinessRuleError(MsgPaymentAlreadyPaid)
		}
	}

	gwOrder, err := s.gateway.CreateOrder(ctx, ToMinorUnits(order.Total), s.currency, order.ID)
	if err != nil {
		s.logger.Error("gateway order failed", zap.String("rental_id", rentalID), zap.Error(err))
		return nil, common.PersistenceError("create payment order", err)
	}

	payment := &models.Payment{
		ID:             uuid.New(),
		RentalID:       order.ID,
		GatewayOrderID: gwOrder.ID,
		Amount:         order.Total,
		Currency:       s.currency,
		Status:         models.PaymentStatusCreated,
	}
	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		return nil, err
	}
	s.logger.Info("payment order created",
		zap.String("rental_id", rentalID),
		zap.String("gateway_order_id", gwOrder.ID),
		zap.String("amount", order.Total.String()),
	)
	return payment, nil
}

func (s *paymentService) ListPayments(ctx context.Context, rentalID string) ([]*models.Payment, error) {
	if _, err := s.rentalRepo.GetByID(ctx, rentalID); err != nil {
		return nil, err
	}
	return s.paymentRepo.ListByRental(ctx, rentalID)
}

// HandleWebhook verifies the signature and applies payment status changes.
// Events other than captured and failed are acknowledged and ignored.
func (s *paymentService) HandleWebhook(ctx context.Context, body []byte, signature string) (*WebhookEvent, error) {
	if !s.gateway.VerifyWebhookSignature(body, signature) {
		return nil, ErrInvalidSignature
	}

	var event WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, common.ValidationError("malformed webhook payload")
	}

	var status string
	switch event.Event {
	case EventPaymentCaptured:
		status = models.PaymentStatusCaptured
	case EventPaymentFailed:
		status = models.PaymentStatusFailed
	default:
		s.logger.Debug("ignoring webhook event", zap.String("event", event.Event))
		return &event, nil
	}

	entity := event.Payload.Payment.Entity
	if entity.OrderID == "" {
		return nil, common.ValidationError("webhook payload has no order id")
	}
	payment, err := s.paymentRepo.GetByGatewayOrderID(ctx, entity.OrderID)
	if err != nil {
		return nil, err
	}
	if payment.Status == models.PaymentStatusCaptured {
		return &event, nil
	}

	payment.Status = status
	if entity.ID != "" {
		paymentID := entity.ID
		payment.GatewayPaymentID = &paymentID
	}
	if err := s.paymentRepo.UpdateStatus(ctx, payment); err != nil {
		return nil, err
	}
	s.logger.Info("payment status updated",
		zap.String("rental_id", payment.RentalID),
		zap.String("gateway_order_id", entity.OrderID),
		zap.String("status", status),
	)
	return &event, nil
}

// ToMinorUnits converts an amount to the smallest currency unit, rounding
// half away from zero.
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
