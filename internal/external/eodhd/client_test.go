package eodhd

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/esgproxy/backend/pkg/config"
	"github.com/wonny/esgproxy/backend/pkg/httputil"
	"github.com/wonny/esgproxy/backend/pkg/logger"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := &config.Config{MarketData: config.MarketDataConfig{Timeout: 5 * time.Second}}
	return NewClient(httputil.New(cfg, logger.Nop()), logger.Nop(), "demo-key", server.URL)
}

func TestFetchPrices(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/eod/AAPL.US", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "demo-key", q.Get("api_token"))
		assert.Equal(t, "json", q.Get("fmt"))
		assert.Equal(t, "2025-01-01", q.Get("from"))
		assert.Equal(t, "2025-01-10", q.Get("to"))

		// out of order on purpose, plus a row without adjusted close and a bad date
		_, _ = w.Write([]byte(`[
			{"date":"2025-01-03","open":1,"high":1,"low":1,"close":101,"adjusted_close":100.5,"volume":10},
			{"date":"2025-01-02","open":1,"high":1,"low":1,"close":100,"adjusted_close":0,"volume":10},
			{"date":"bad","close":5},
			{"date":"2025-01-06","close":0,"adjusted_close":0}
		]`))
	})

	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	series, err := client.FetchPrices(context.Background(), "AAPL.US", from, to)
	require.NoError(t, err)
	require.Len(t, series, 2)

	assert.Equal(t, 100.0, series[0].Close, "falls back to close when adjusted is missing")
	assert.Equal(t, 100.5, series[1].Close)
	assert.True(t, series[0].Date.Before(series[1].Date))
	assert.Equal(t, ProviderName, client.Name())
}

func TestFetchPrices_NotFoundIsEmpty(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Ticker Not Found.", http.StatusNotFound)
	})

	series, err := client.FetchPrices(context.Background(), "NOPE.US", time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Empty(t, series)
}

func TestFetchPrices_APIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Unauthenticated", http.StatusUnauthorized)
	})

	_, err := client.FetchPrices(context.Background(), "AAPL.US", time.Time{}, time.Time{})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "/eod/AAPL.US", apiErr.Endpoint)
	assert.NotContains(t, err.Error(), "demo-key")
}

func TestFetchFundamentals(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/fundamentals/AAPL.US", r.URL.Path)
		_, _ = w.Write([]byte(`{
			"Highlights": {"MarketCapitalization": 3000000000000, "ProfitMargin": "0.25", "RevenueTTM": 400000000000},
			"Financials": {"Balance_Sheet": {"quarterly": {
				"2025-06-30": {"date":"2025-06-30","shortLongTermDebtTotal":"100000000000","totalLiab":"280000000000"},
				"2025-03-31": {"date":"2025-03-31","shortLongTermDebtTotal":"90000000000","totalLiab":null}
			}}}
		}`))
	})

	f, err := client.FetchFundamentals(context.Background(), "AAPL.US")
	require.NoError(t, err)
	assert.Equal(t, 3e12, f.MarketCap)
	assert.Equal(t, 1e11, f.TotalDebt, "latest quarter wins")
	assert.InDelta(t, 1.0/30.0, f.DebtRatio, 1e-12)
	assert.Equal(t, 0.25, f.ProfitMargin)
	assert.InDelta(t, 1e11, f.NetIncome, 1)
}

func TestFetchFundamentals_Missing(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"Highlights": {"MarketCapitalization": null}}`))
	})

	_, err := client.FetchFundamentals(context.Background(), "ETF.US")
	assert.Error(t, err)
}

func TestLatestDebt(t *testing.T) {
	assert.Equal(t, 0.0, latestDebt(nil))
	assert.Equal(t, 5.0, latestDebt(map[string]balanceSheetRow{
		"2024-12-31": {TotalLiab: 5},
		"2024-09-30": {ShortLongTermDebtTotal: 3},
	}))
}
