package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"rentalhub/internal/common"
	"rentalhub/internal/jobs/background"
	"rentalhub/internal/models"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error {
	return f(ctx)
}

type bucketFunc func(ctx context.Context) error

func (f bucketFunc) EnsureBucket(ctx context.Context) error {
	return f(ctx)
}

func up(context.Context) error {
	return nil
}

func down(context.Context) error {
	return errors.New("connection refused")
}

func getHealth(h *HealthHandlers, path string) *httptest.ResponseRecorder {
	e := echo.New()
	h.Register(e)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealthCheck(t *testing.T) {
	h := NewHealthHandlers(pingFunc(up), pingFunc(up), bucketFunc(down), "test")

	rec := getHealth(h, "/health")

	assert.Equal(t, http.StatusOK, rec.Code)
	var status HealthStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "degraded", status.Status)
	assert.Equal(t, "healthy", status.Services["database"])
	assert.Equal(t, "healthy", status.Services["redis"])
	assert.Equal(t, "unhealthy", status.Services["storage"])
	assert.Equal(t, "test", status.Version)
}

func TestHealthCheck_WithoutStorage(t *testing.T) {
	h := NewHealthHandlers(pingFunc(up), pingFunc(up), nil, "test")

	var status HealthStatus
	require.NoError(t, json.Unmarshal(getHealth(h, "/health").Body.Bytes(), &status))
	assert.Equal(t, "healthy", status.Status)
	assert.NotContains(t, status.Services, "storage")
}

func TestReadinessCheck(t *testing.T) {
	assert.Equal(t, http.StatusOK, getHealth(NewHealthHandlers(pingFunc(up), pingFunc(up), bucketFunc(down), "t"), "/health/ready").Code)
	assert.Equal(t, http.StatusServiceUnavailable, getHealth(NewHealthHandlers(pingFunc(down), pingFunc(up), nil, "t"), "/health/ready").Code)
	assert.Equal(t, http.StatusServiceUnavailable, getHealth(NewHealthHandlers(pingFunc(up), pingFunc(down), nil, "t"), "/health/ready").Code)
	assert.Equal(t, http.StatusOK, getHealth(NewHealthHandlers(pingFunc(down), pingFunc(down), nil, "t"), "/health/live").Code)
}

type MockReporter struct {
	mock.Mock
}

func (m *MockReporter) RentalSummary(ctx context.Context) (*models.RentalReport, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RentalReport), args.Error(1)
}

func (m *MockReporter) Refresh(ctx context.Context) (*models.RentalReport, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RentalReport), args.Error(1)
}

func sampleReport() *models.RentalReport {
	return &models.RentalReport{
		TotalRentals:     3,
		ConfirmedRevenue: decimal.NewFromInt(3772),
		PipelineValue:    decimal.NewFromInt(500),
		GeneratedAt:      time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestReportHandlers(t *testing.T) {
	reports := new(MockReporter)
	h := NewReportHandlers(reports)
	reports.On("RentalSummary", mock.Anything).Return(sampleReport(), nil).Once()
	reports.On("Refresh", mock.Anything).Return(nil, common.PersistenceError("load rental summary", errors.New("boom"))).Once()

	rec := serve(h.Register, http.MethodGet, "/v1/reports/rentals", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"confirmed_revenue":"3772"`)

	rec = serve(h.Register, http.MethodGet, "/v1/reports/rentals?refresh=true", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "boom")
	reports.AssertExpectations(t)
}

type staticStatus []background.JobStatus

func (s staticStatus) Status() []background.JobStatus {
	return s
}

func TestJobHandlers(t *testing.T) {
	reports := new(MockReporter)
	reports.On("Refresh", mock.Anything).Return(sampleReport(), nil)
	h := NewJobHandlers(staticStatus{{Name: "rental-report-refresh"}}, reports)

	rec := serve(h.Register, http.MethodGet, "/v1/jobs", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "rental-report-refresh")

	rec = serve(h.Register, http.MethodPost, "/v1/jobs/report-refresh", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"completed"`)
	reports.AssertExpectations(t)
}
