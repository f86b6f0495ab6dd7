package handlers

import (
	"context"
	"net/http"

	"rentalhub/internal/common"
	"rentalhub/internal/models"

	"github.com/labstack/echo/v4"
)

// RentalReporter is implemented by analytics.ReportService
type RentalReporter interface {
	RentalSummary(ctx context.Context) (*models.RentalReport, error)
	Refresh(ctx context.Context) (*models.RentalReport, error)
}

type ReportHandlers struct {
	reports RentalReporter
}

func NewReportHandlers(reports RentalReporter) *ReportHandlers {
	return &ReportHandlers{reports: reports}
}

func (h *ReportHandlers) Register(g *echo.Group) {
	g.GET("/reports/rentals", h.RentalSummary)
}

// RentalSummary handles GET /reports/rentals. ?refresh=true bypasses the
// cached copy.
func (h *ReportHandlers) RentalSummary(c echo.Context) error {
	get := h.reports.RentalSummary
	if c.QueryParam("refresh") == "true" {
		get = h.reports.Refresh
	}

	report, err := get(c.Request().Context())
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, report)
}
