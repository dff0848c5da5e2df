package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rl1809/storefront/internal/core/domain"
)

type MySQLAdapter struct {
	db *sql.DB
}

func NewMySQLAdapter(db *sql.DB) *MySQLAdapter {
	return &MySQLAdapter{db: db}
}

// EnsureSchema creates the report table if it does not exist yet.
func (m *MySQLAdapter) EnsureSchema(ctx context.Context) error {
	_, err := m.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS daily_revenue (
			day        DATE        NOT NULL PRIMARY KEY,
			revenue    BIGINT      NOT NULL,
			updated_at DATETIME    NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("create daily_revenue: %w", err)
	}
	return nil
}

func (m *MySQLAdapter) SaveDailyRevenue(ctx context.Context, days []domain.DailyRevenue) error {
	if len(days) == 0 {
		return nil
	}

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO daily_revenue (day, revenue, updated_at)
		VALUES (?, ?, NOW())
		ON DUPLICATE KEY UPDATE revenue = VALUES(revenue), updated_at = NOW()`)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, d := range days {
		if _, err := stmt.ExecContext(ctx, d.Day, d.Revenue); err != nil {
			return fmt.Errorf("upsert %s: %w", d.Day, err)
		}
	}

	return tx.Commit()
}

func (m *MySQLAdapter) ListDailyRevenue(ctx context.Context, from, to string) ([]domain.DailyRevenue, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT DATE_FORMAT(day, '%Y-%m-%d'), revenue
		FROM daily_revenue
		WHERE day BETWEEN ? AND ?
		ORDER BY day`, from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("query daily_revenue: %w", err)
	}
	defer rows.Close()

	var out []domain.DailyRevenue
	for rows.Next() {
		var d domain.DailyRevenue
		if err := rows.Scan(&d.Day, &d.Revenue); err != nil {
			return nil, fmt.Errorf("scan daily_revenue: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
