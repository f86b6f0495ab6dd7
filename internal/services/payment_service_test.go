package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"rentalhub/internal/common"
	"rentalhub/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockPaymentRepository) GetByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*models.Payment, error) {
	args := m.Called(ctx, gatewayOrderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payment), args.Error(1)
}

func (m *MockPaymentRepository) UpdateStatus(ctx context.Context, payment *models.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockPaymentRepository) ListByRental(ctx context.Context, rentalID string) ([]*models.Payment, error) {
	args := m.Called(ctx, rentalID)
	return args.Get(0).([]*models.Payment), args.Error(1)
}

func sign(secret string, body []byte) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

func TestRazorpay_CreateOrder(t *testing.T) {
	var got createOrderRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/orders", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "rzp_key", user)
		assert.Equal(t, "rzp_secret", pass)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"order_abc","entity":"order","amount":377200,"currency":"INR","receipt":"R0001","status":"created"}`))
	}))
	defer server.Close()

	gw := NewRazorpayService("rzp_key", "rzp_secret", "whsec", server.URL)
	order, err := gw.CreateOrder(context.Background(), 377200, "INR", "R0001")
	require.NoError(t, err)
	assert.Equal(t, "order_abc", order.ID)
	assert.Equal(t, int64(377200), got.Amount)
	assert.Equal(t, "R0001", got.Receipt)
}

func TestRazorpay_CreateOrderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":"BAD_REQUEST_ERROR","description":"amount must be at least 100"}}`))
	}))
	defer server.Close()

	gw := NewRazorpayService("k", "s", "w", server.URL)
	_, err := gw.CreateOrder(context.Background(), 50, "INR", "R0002")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "amount must be at least 100")
}

func TestRazorpay_VerifyWebhookSignature(t *testing.T) {
	gw := NewRazorpayService("k", "s", "whsec", "")
	body := []byte(`{"event":"payment.captured"}`)

	assert.True(t, gw.VerifyWebhookSignature(body, sign("whsec", body)))
	assert.False(t, gw.VerifyWebhookSignature(body, sign("other", body)))
	assert.False(t, gw.VerifyWebhookSignature(body, ""))
	assert.False(t, NewRazorpayService("k", "s", "", "").VerifyWebhookSignature(body, sign("", body)))
}

func TestToMinorUnits(t *testing.T) {
	assert.Equal(t, int64(377200), ToMinorUnits(decimal.NewFromInt(3772)))
	assert.Equal(t, int64(1999), ToMinorUnits(decimal.RequireFromString("19.99")))
	assert.Equal(t, int64(1000), ToMinorUnits(decimal.RequireFromString("9.995")))
}

type paymentFixture struct {
	payments *MockPaymentRepository
	rentals  *MockRentalRepository
	service  PaymentService
	server   *httptest.Server
	ctx      context.Context
}

func newPaymentFixture(t *testing.T) *paymentFixture {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req createOrderRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		_ = json.NewEncoder(w).Encode(GatewayOrder{ID: "order_" + req.Receipt, Amount: req.Amount, Currency: req.Currency, Status: "created"})
	}))
	t.Cleanup(server.Close)

	f := &paymentFixture{
		payments: new(MockPaymentRepository),
		rentals:  new(MockRentalRepository),
		server:   server,
		ctx:      context.Background(),
	}
	gw := NewRazorpayService("k", "s", "whsec", server.URL)
	f.service = NewPaymentService(f.payments, f.rentals, gw, "INR", zaptest.NewLogger(t))
	return f
}

func TestPaymentService_CreatePayment(t *testing.T) {
	f := newPaymentFixture(t)
	f.rentals.On("GetByID", f.ctx, "R0001").Return(&models.RentalOrder{ID: "R0001", Status: models.RentalStatusConfirmed, Total: decimal.NewFromInt(3772)}, nil)
	f.payments.On("ListByRental", f.ctx, "R0001").Return([]*models.Payment{}, nil)
	f.payments.On("Create", f.ctx, mock.AnythingOfType("*models.Payment")).Return(nil)

	p, err := f.service.CreatePayment(f.ctx, "R0001")
	require.NoError(t, err)
	assert.Equal(t, "order_R0001", p.GatewayOrderID)
	assert.Equal(t, models.PaymentStatusCreated, p.Status)
	assert.True(t, p.Amount.Equal(decimal.NewFromInt(3772)))
}

func TestPaymentService_CreatePaymentRules(t *testing.T) {
	f := newPaymentFixture(t)
	f.rentals.On("GetByID", f.ctx, "R0002").Return(&models.RentalOrder{ID: "R0002", Status: models.RentalStatusQuotationSent, Total: decimal.NewFromInt(10)}, nil)
	f.rentals.On("GetByID", f.ctx, "R0003").Return(&models.RentalOrder{ID: "R0003", Status: models.RentalStatusConfirmed}, nil)
	f.rentals.On("GetByID", f.ctx, "R0004").Return(&models.RentalOrder{ID: "R0004", Status: models.RentalStatusConfirmed, Total: decimal.NewFromInt(10)}, nil)
	f.payments.On("ListByRental", f.ctx, "R0004").Return([]*models.Payment{{Status: models.PaymentStatusCaptured}}, nil)

	_, err := f.service.CreatePayment(f.ctx, "R0002")
	assert.ErrorIs(t, err, common.ErrBusinessRule)
	assert.Equal(t, MsgPaymentNeedsConfirmed, common.PublicMessage(err))

	_, err = f.service.CreatePayment(f.ctx, "R0003")
	assert.Equal(t, MsgPaymentNothingDue, common.PublicMessage(err))

	_, err = f.service.CreatePayment(f.ctx, "R0004")
	assert.Equal(t, MsgPaymentAlreadyPaid, common.PublicMessage(err))

	f.payments.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestPaymentService_HandleWebhookCaptured(t *testing.T) {
	f := newPaymentFixture(t)
	payment := &models.Payment{ID: uuid.New(), RentalID: "R0001", GatewayOrderID: "order_R0001", Status: models.PaymentStatusCreated}
	f.payments.On("GetByGatewayOrderID", f.ctx, "order_R0001").Return(payment, nil)
	f.payments.On("UpdateStatus", f.ctx, payment).Return(nil)

	body := []byte(`{"event":"payment.captured","payload":{"payment":{"entity":{"id":"pay_9","order_id":"order_R0001","status":"captured","amount":377200}}}}`)
	event, err := f.service.HandleWebhook(f.ctx, body, sign("whsec", body))
	require.NoError(t, err)
	assert.Equal(t, EventPaymentCaptured, event.Event)
	assert.Equal(t, models.PaymentStatusCaptured, payment.Status)
	assert.Equal(t, "pay_9", *payment.GatewayPaymentID)
}

func TestPaymentService_HandleWebhookRejectsBadSignature(t *testing.T) {
	f := newPaymentFixture(t)
	body := []byte(`{"event":"payment.captured"}`)

	_, err := f.service.HandleWebhook(f.ctx, body, "deadbeef")
	assert.True(t, errors.Is(err, ErrInvalidSignature))
	f.payments.AssertNotCalled(t, "GetByGatewayOrderID", mock.Anything, mock.Anything)
}

func TestPaymentService_HandleWebhookIgnoresOtherEvents(t *testing.T) {
	f := newPaymentFixture(t)
	body := []byte(`{"event":"order.paid","payload":{}}`)

	event, err := f.service.HandleWebhook(f.ctx, body, sign("whsec", body))
	require.NoError(t, err)
	assert.Equal(t, "order.paid", event.Event)
	f.payments.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything)
}
