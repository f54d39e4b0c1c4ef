package marketdata

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/esgproxy/backend/internal/contracts"
)

// PostgresName identifies the database-backed provider
const PostgresName = "postgres"

// PostgresStore reads daily closes and fundamentals collected by an upstream loader
// Read-only: scores are never written back.
// ⭐ SSOT: market.daily_prices / market.fundamentals 조회는 여기서만
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a store over an existing pool
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Name returns the provider name
func (s *PostgresStore) Name() string {
	return PostgresName
}

// FetchPrices retrieves closes for a ticker within the date range, oldest first
func (s *PostgresStore) FetchPrices(ctx context.Context, ticker string, from, to time.Time) (contracts.PriceSeries, error) {
	query := `
		SELECT trade_date, close_price
		FROM market.daily_prices
		WHERE ticker = $1 AND trade_date BETWEEN $2 AND $3
		  AND close_price IS NOT NULL
		ORDER BY trade_date ASC
	`

	rows, err := s.pool.Query(ctx, query, ticker, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily prices: %w", err)
	}
	defer rows.Close()

	series := contracts.PriceSeries{}
	for rows.Next() {
		var p contracts.PricePoint
		if err := rows.Scan(&p.Date, &p.Close); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		series = append(series, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return series, nil
}

// FetchFundamentals retrieves the most recent fundamentals row for a ticker
func (s *PostgresStore) FetchFundamentals(ctx context.Context, ticker string) (*contracts.Fundamentals, error) {
	query := `
		SELECT COALESCE(market_cap, 0), COALESCE(total_debt, 0),
		       COALESCE(net_income, 0), COALESCE(revenue, 0)
		FROM market.fundamentals
		WHERE ticker = $1
		ORDER BY report_date DESC
		LIMIT 1
	`

	var f contracts.Fundamentals
	err := s.pool.QueryRow(ctx, query, ticker).Scan(&f.MarketCap, &f.TotalDebt, &f.NetIncome, &f.Revenue)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("ticker %s: %w", ticker, contracts.ErrFundamentalsUnavailable)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get fundamentals: %w", err)
	}
	if f.MarketCap <= 0 {
		return nil, fmt.Errorf("ticker %s: market cap missing: %w", ticker, contracts.ErrFundamentalsUnavailable)
	}

	f.DebtRatio = f.TotalDebt / f.MarketCap
	if f.Revenue != 0 {
		f.ProfitMargin = f.NetIncome / f.Revenue
	}
	return &f, nil
}
