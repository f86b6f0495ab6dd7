package analytics

import (
	"context"
	"time"

	"rentalhub/internal/caching"
	"rentalhub/internal/models"
	"rentalhub/internal/repositories"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ReportTTL bounds how stale a cached report may get if refresh stops
const ReportTTL = 30 * time.Minute

// ReportService builds the rental dashboard summary and keeps it cached
type ReportService struct {
	rentalRepo   repositories.RentalRepository
	cacheService caching.CacheService
	logger       *zap.Logger
	now          func() time.Time
}

func NewReportService(rentalRepo repositories.RentalRepository, cacheService caching.CacheService, logger *zap.Logger) *ReportService {
	return &ReportService{
		rentalRepo:   rentalRepo,
		cacheService: cacheService,
		logger:       logger,
		now:          time.Now,
	}
}

// RentalSummary returns the cached report, building it on a miss
func (s *ReportService) RentalSummary(ctx context.Context) (*models.RentalReport, error) {
	if cached, err := s.cacheService.GetRentalReport(ctx); cached != nil {
		return cached, nil
	} else if err != nil {
		s.logger.Warn("report cache read failed", zap.Error(err))
	}
	return s.Refresh(ctx)
}

// Refresh recalculates the report from the database and stores it
func (s *ReportService) Refresh(ctx context.Context) (*models.RentalReport, error) {
	summary, err := s.rentalRepo.StatusSummary(ctx)
	if err != nil {
		return nil, err
	}

	report := BuildReport(summary, s.now().UTC())
	if err := s.cacheService.SetRentalReport(ctx, report, ReportTTL); err != nil {
		s.logger.Warn("report cache write failed", zap.Error(err))
	}
	s.logger.Debug("rental report refreshed",
		zap.Int("rentals", report.TotalRentals),
		zap.String("confirmed_revenue", report.ConfirmedRevenue.String()),
	)
	return report, nil
}

// BuildReport folds per-status rows into the dashboard report. Every status
// appears in the output, with zero rows for statuses that have no rentals.
func BuildReport(rows []models.StatusSummary, generatedAt time.Time) *models.RentalReport {
	byStatus := make(map[models.RentalStatus]models.StatusSummary, len(rows))
	for _, r := range rows {
		byStatus[r.Status] = r
	}

	report := &models.RentalReport{
		Statuses:         make([]models.StatusSummary, 0, len(models.RentalStatuses)),
		ConfirmedRevenue: decimal.Zero,
		PipelineValue:    decimal.Zero,
		GeneratedAt:      generatedAt,
	}
	for _, status := range models.RentalStatuses {
		row, ok := byStatus[status]
		if !ok {
			row = models.StatusSummary{Status: status, Total: decimal.Zero}
		}
		report.Statuses = append(report.Statuses, row)
		report.TotalRentals += row.Count

		switch status {
		case models.RentalStatusConfirmed:
			report.ConfirmedRevenue = report.ConfirmedRevenue.Add(row.Total)
		case models.RentalStatusDraft, models.RentalStatusQuotationSent:
			report.PipelineValue = report.PipelineValue.Add(row.Total)
		}
	}
	return report
}
