package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/port"
)

type StatsService struct {
	deliveries port.DeliveryRepository
	reports    port.ReportRepository
	logger     *zap.Logger
	now        func() time.Time
}

// NewStatsService builds the stats service. reports may be nil, in which case
// Export is a no-op.
func NewStatsService(deliveries port.DeliveryRepository, reports port.ReportRepository, logger *zap.Logger) *StatsService {
	return &StatsService{deliveries: deliveries, reports: reports, logger: logger, now: time.Now}
}

func (s *StatsService) Report(ctx context.Context, session domain.Session) (domain.SalesReport, error) {
	if !session.IsAdmin() {
		return domain.SalesReport{}, ErrForbidden
	}
	return s.build(ctx)
}

const (
	DefaultHistoryDays = 30
	maxHistoryDays     = 366
)

// History returns the exported daily revenue for the last days days, ending
// today (UTC). Zero selects DefaultHistoryDays.
func (s *StatsService) History(ctx context.Context, session domain.Session, days int) ([]domain.DailyRevenue, error) {
	if !session.IsAdmin() {
		return nil, ErrForbidden
	}
	if s.reports == nil {
		return nil, ErrHistoryDisabled
	}
	if days == 0 {
		days = DefaultHistoryDays
	}
	if days < 0 || days > maxHistoryDays {
		return nil, fmt.Errorf("%w: days must be between 1 and %d", ErrValidation, maxHistoryDays)
	}

	today := s.now().UTC()
	from := today.AddDate(0, 0, -(days - 1)).Format(time.DateOnly)
	to := today.Format(time.DateOnly)

	history, err := s.reports.ListDailyRevenue(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("list daily revenue: %w", err)
	}
	if history == nil {
		history = []domain.DailyRevenue{}
	}
	return history, nil
}

// Export persists the recent daily revenue buckets.
func (s *StatsService) Export(ctx context.Context) error {
	if s.reports == nil {
		return nil
	}
	report, err := s.build(ctx)
	if err != nil {
		return err
	}
	if err := s.reports.SaveDailyRevenue(ctx, report.RecentDays); err != nil {
		return fmt.Errorf("save daily revenue: %w", err)
	}

	s.logger.Info("stats exported", zap.Int("days", len(report.RecentDays)), zap.Int64("revenue", report.TotalRevenue))
	return nil
}

// RunExporter calls Export every interval until ctx is cancelled.
func (s *StatsService) RunExporter(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			exportCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
			if err := s.Export(exportCtx); err != nil {
				s.logger.Error("stats export failed", zap.Error(err))
			}
			cancel()
		}
	}
}

func (s *StatsService) build(ctx context.Context) (domain.SalesReport, error) {
	deliveries, err := s.deliveries.ListDeliveries(ctx)
	if err != nil {
		return domain.SalesReport{}, fmt.Errorf("list deliveries: %w", err)
	}
	return domain.BuildSalesReport(deliveries, s.now()), nil
}
