package handlers

import (
	"net/http"

	"rentalhub/internal/common"
	"rentalhub/internal/jobs/background"

	"github.com/labstack/echo/v4"
)

// JobStatusSource is implemented by background.JobScheduler
type JobStatusSource interface {
	Status() []background.JobStatus
}

type JobHandlers struct {
	scheduler JobStatusSource
	reports   RentalReporter
}

func NewJobHandlers(scheduler JobStatusSource, reports RentalReporter) *JobHandlers {
	return &JobHandlers{
		scheduler: scheduler,
		reports:   reports,
	}
}

func (h *JobHandlers) Register(g *echo.Group) {
	g.GET("/jobs", h.ListJobs)
	g.POST("/jobs/report-refresh", h.RunReportRefresh)
}

// ListJobs handles GET /jobs
func (h *JobHandlers) ListJobs(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{"jobs": h.scheduler.Status()})
}

// RunReportRefresh handles POST /jobs/report-refresh, running the refresh
// inline instead of waiting for the next tick
func (h *JobHandlers) RunReportRefresh(c echo.Context) error {
	report, err := h.reports.Refresh(c.Request().Context())
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status": "completed",
		"report": report,
	})
}
