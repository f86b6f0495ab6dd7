package repositories

import (
	"context"

	"rentalhub/internal/common"
	"rentalhub/internal/models"
)

type PaymentRepository interface {
	Create(ctx context.Context, payment *models.Payment) error
	GetByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*models.Payment, error)
	UpdateStatus(ctx context.Context, payment *models.Payment) error
	ListByRental(ctx context.Context, rentalID string) ([]*models.Payment, error)
}

type paymentRepo struct {
	db Database
}

func NewPaymentRepo(db Database) PaymentRepository {
	return &paymentRepo{db: db}
}

const paymentColumns = `id, rental_id, gateway_order_id, gateway_payment_id, amount, currency, status, created_at, updated_at`

func (r *paymentRepo) Create(ctx context.Context, payment *models.Payment) error {
	query := `
		INSERT INTO payments (id, rental_id, gateway_order_id, gateway_payment_id, amount, currency, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query, payment.ID, payment.RentalID, payment.GatewayOrderID, payment.GatewayPaymentID, payment.Amount, payment.Currency, payment.Status).
		Scan(&payment.CreatedAt, &payment.UpdatedAt)
	return translate(err, "record payment", "payment", payment.ID.String())
}

func (r *paymentRepo) GetByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*models.Payment, error) {
	p := &models.Payment{}
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE gateway_order_id = $1
	`
	err := r.db.QueryRow(ctx, query, gatewayOrderID).Scan(&p.ID, &p.RentalID, &p.GatewayOrderID, &p.GatewayPaymentID, &p.Amount, &p.Currency, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, translate(err, "load payment", "payment", gatewayOrderID)
	}
	return p, nil
}

// UpdateStatus stores the gateway payment id and status reported by a webhook
func (r *paymentRepo) UpdateStatus(ctx context.Context, payment *models.Payment) error {
	query := `
		UPDATE payments
		SET status = $1, gateway_payment_id = $2, updated_at = NOW()
		WHERE id = $3
	`
	tag, err := r.db.Exec(ctx, query, payment.Status, payment.GatewayPaymentID, payment.ID)
	if err != nil {
		return translate(err, "update payment", "payment", payment.ID.String())
	}
	if tag.RowsAffected() == 0 {
		return common.NotFoundError("payment", payment.ID.String())
	}
	return nil
}

func (r *paymentRepo) ListByRental(ctx context.Context, rentalID string) ([]*models.Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE rental_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query, rentalID)
	if err != nil {
		return nil, common.PersistenceError("list payments", err)
	}
	defer rows.Close()

	payments := []*models.Payment{}
	for rows.Next() {
		p := &models.Payment{}
		if err := rows.Scan(&p.ID, &p.RentalID, &p.GatewayOrderID, &p.GatewayPaymentID, &p.Amount, &p.Currency, &p.Status, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, common.PersistenceError("list payments", err)
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, common.PersistenceError("list payments", err)
	}
	return payments, nil
}
