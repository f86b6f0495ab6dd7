package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	PaymentStatusCreated  = "created"
	PaymentStatusCaptured = "captured"
	PaymentStatusFailed   = "failed"
)

// Payment tracks one gateway order raised against a confirmed rental
type Payment struct {
	ID               uuid.UUID       `json:"id" db:"id"`
	RentalID         string          `json:"rental_id" db:"rental_id"`
	GatewayOrderID   string          `json:"gateway_order_id" db:"gateway_order_id"`
	GatewayPaymentID *string         `json:"gateway_payment_id,omitempty" db:"gateway_payment_id"`
	Amount           decimal.Decimal `json:"amount" db:"amount"`
	Currency         string          `json:"currency" db:"currency"`
	Status           string          `json:"status" db:"status"`
	CreatedAt        time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at" db:"updated_at"`
}
