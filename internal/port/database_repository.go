package port

import (
	"context"

	"github.com/rl1809/storefront/internal/core/domain"
)

type ReportRepository interface {
	// SaveDailyRevenue upserts revenue buckets keyed by day
	SaveDailyRevenue(ctx context.Context, days []domain.DailyRevenue) error

	// ListDailyRevenue returns stored buckets between from and to (inclusive, YYYY-MM-DD)
	ListDailyRevenue(ctx context.Context, from, to string) ([]domain.DailyRevenue, error)
}
