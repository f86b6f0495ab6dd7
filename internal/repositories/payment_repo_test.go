package repositories

import (
	"context"
	"regexp"
	"testing"
	"time"

	"rentalhub/internal/common"
	"rentalhub/internal/models"

	"github.com/google/uuid"
	pgx "github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaymentRepo_GetByGatewayOrderID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPaymentRepo(mock)
	id := uuid.New()
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE gateway_order_id = $1`)).
		WithArgs("order_abc").
		WillReturnRows(pgxmock.NewRows([]string{"id", "rental_id", "gateway_order_id", "gateway_payment_id", "amount", "currency", "status", "created_at", "updated_at"}).
			AddRow(id, "R0001", "order_abc", (*string)(nil), "3772", "INR", models.PaymentStatusCreated, now, now))

	p, err := repo.GetByGatewayOrderID(context.Background(), "order_abc")
	require.NoError(t, err)
	assert.Equal(t, id, p.ID)
	assert.Equal(t, "R0001", p.RentalID)
	assert.True(t, p.Amount.Equal(decimal.NewFromInt(3772)))
	assert.Nil(t, p.GatewayPaymentID)

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE gateway_order_id = $1`)).
		WithArgs("order_missing").
		WillReturnError(pgx.ErrNoRows)

	_, err = repo.GetByGatewayOrderID(context.Background(), "order_missing")
	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepo_UpdateStatus(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPaymentRepo(mock)
	payID := "pay_123"
	payment := &models.Payment{ID: uuid.New(), Status: models.PaymentStatusCaptured, GatewayPaymentID: &payID}

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE payments`)).
		WithArgs(models.PaymentStatusCaptured, &payID, payment.ID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, repo.UpdateStatus(context.Background(), payment))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttachmentRepo_ListByRental(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewAttachmentRepo(mock)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM attachments`)).
		WithArgs("R0001").
		WillReturnRows(pgxmock.NewRows([]string{"id", "rental_id", "file_name", "object_key", "content_type", "size", "created_at"}).
			AddRow(uuid.New(), "R0001", "contract.pdf", "rentals/R0001/x-contract.pdf", "application/pdf", int64(2048), now))

	attachments, err := repo.ListByRental(context.Background(), "R0001")
	require.NoError(t, err)
	require.Len(t, attachments, 1)
	assert.Equal(t, "contract.pdf", attachments[0].FileName)
	assert.Equal(t, int64(2048), attachments[0].Size)
	assert.NoError(t, mock.ExpectationsWereMet())
}
