package handlers

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"rentalhub/internal/common"
	"rentalhub/internal/models"
	"rentalhub/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type MockPaymentService struct {
	mock.Mock
}

func (m *MockPaymentService) CreatePayment(ctx context.Context, rentalID string) (*models.Payment, error) {
	args := m.Called(ctx, rentalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payment), args.Error(1)
}

func (m *MockPaymentService) ListPayments(ctx context.Context, rentalID string) ([]*models.Payment, error) {
	args := m.Called(ctx, rentalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Payment), args.Error(1)
}

func (m *MockPaymentService) HandleWebhook(ctx context.Context, body []byte, signature string) (*services.WebhookEvent, error) {
	args := m.Called(ctx, body, signature)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.WebhookEvent), args.Error(1)
}

type MockAttachmentService struct {
	mock.Mock
}

func (m *MockAttachmentService) Upload(ctx context.Context, rentalID, fileName, contentType string, reader io.Reader, size int64) (*models.Attachment, error) {
	args := m.Called(ctx, rentalID, fileName, contentType, reader, size)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Attachment), args.Error(1)
}

func (m *MockAttachmentService) List(ctx context.Context, rentalID string) ([]*models.Attachment, error) {
	args := m.Called(ctx, rentalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Attachment), args.Error(1)
}

func TestPaymentHandlers_Create(t *testing.T) {
	svc := new(MockPaymentService)
	h := NewPaymentHandlers(svc)
	svc.On("CreatePayment", mock.Anything, "R0001").Return(&models.Payment{
		ID:             uuid.New(),
		RentalID:       "R0001",
		GatewayOrderID: "order_123",
		Amount:         decimal.NewFromInt(3772),
		Currency:       "INR",
		Status:         models.PaymentStatusCreated,
	}, nil)

	rec := serve(h.Register, http.MethodPost, "/v1/rentals/R0001/payments", "")

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), "order_123")
	svc.AssertExpectations(t)
}

func TestPaymentHandlers_CreateRequiresConfirmed(t *testing.T) {
	svc := new(MockPaymentService)
	h := NewPaymentHandlers(svc)
	svc.On("CreatePayment", mock.Anything, "R0002").Return(nil, common.BusinessRuleError(services.MsgPaymentNeedsConfirmed))

	rec := serve(h.Register, http.MethodPost, "/v1/rentals/R0002/payments", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, services.MsgPaymentNeedsConfirmed, decodeError(t, rec).Error.Message)
}

func TestPaymentHandlers_List(t *testing.T) {
	svc := new(MockPaymentService)
	h := NewPaymentHandlers(svc)
	svc.On("ListPayments", mock.Anything, "R0001").Return([]*models.Payment{}, nil)

	rec := serve(h.Register, http.MethodGet, "/v1/rentals/R0001/payments", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"payments":[]}`, rec.Body.String())
}

func postWebhook(h *WebhookHandlers, body, signature string) *httptest.ResponseRecorder {
	e := echo.New()
	h.Register(e.Group(""))
	req := httptest.NewRequest(http.MethodPost, "/webhooks/payments", bytes.NewBufferString(body))
	if signature != "" {
		req.Header.Set(signatureHeader, signature)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestWebhookHandlers(t *testing.T) {
	const body = `{"event":"payment.captured"}`

	t.Run("missing signature", func(t *testing.T) {
		svc := new(MockPaymentService)
		rec := postWebhook(NewWebhookHandlers(svc, zaptest.NewLogger(t)), body, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		svc.AssertNotCalled(t, "HandleWebhook", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("bad signature", func(t *testing.T) {
		svc := new(MockPaymentService)
		svc.On("HandleWebhook", mock.Anything, []byte(body), "bad").Return(nil, services.ErrInvalidSignature)
		rec := postWebhook(NewWebhookHandlers(svc, zaptest.NewLogger(t)), body, "bad")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("unknown order", func(t *testing.T) {
		svc := new(MockPaymentService)
		svc.On("HandleWebhook", mock.Anything, []byte(body), "sig").Return(nil, common.NotFoundError("payment", "order_x"))
		rec := postWebhook(NewWebhookHandlers(svc, zaptest.NewLogger(t)), body, "sig")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("accepted", func(t *testing.T) {
		svc := new(MockPaymentService)
		svc.On("HandleWebhook", mock.Anything, []byte(body), "sig").Return(&services.WebhookEvent{Event: services.EventPaymentCaptured}, nil)
		rec := postWebhook(NewWebhookHandlers(svc, zaptest.NewLogger(t)), body, "sig")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"ok","event":"payment.captured"}`, rec.Body.String())
		svc.AssertExpectations(t)
	})
}

func multipartRequest(t *testing.T, target, field, fileName string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if field != "" {
		part, err := w.CreateFormFile(field, fileName)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	return req
}

func TestAttachmentHandlers_Upload(t *testing.T) {
	svc := new(MockAttachmentService)
	h := NewAttachmentHandlers(svc)
	e := echo.New()
	h.Register(e.Group("/v1"))

	content := []byte("signed delivery note")
	svc.On("Upload", mock.Anything, "R0001", "note.pdf", "application/octet-stream", mock.Anything, int64(len(content))).
		Return(&models.Attachment{ID: uuid.New(), RentalID: "R0001", FileName: "note.pdf", URL: "https://files/x"}, nil)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, multipartRequest(t, "/v1/rentals/R0001/attachments", "file", "note.pdf", content))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), "https://files/x")
	svc.AssertExpectations(t)
}

func TestAttachmentHandlers_UploadMissingFile(t *testing.T) {
	svc := new(MockAttachmentService)
	h := NewAttachmentHandlers(svc)
	e := echo.New()
	h.Register(e.Group("/v1"))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, multipartRequest(t, "/v1/rentals/R0001/attachments", "", "", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", decodeError(t, rec).Error.Code)
	svc.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAttachmentHandlers_List(t *testing.T) {
	svc := new(MockAttachmentService)
	h := NewAttachmentHandlers(svc)
	svc.On("List", mock.Anything, "R0404").Return(nil, common.NotFoundError("rental", "R0404"))

	rec := serve(h.Register, http.MethodGet, "/v1/rentals/R0404/attachments", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
