package eodhd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/wonny/esgproxy/backend/internal/contracts"
	"github.com/wonny/esgproxy/backend/pkg/httputil"
	"github.com/wonny/esgproxy/backend/pkg/logger"
)

// ProviderName identifies this provider in results and errors
const ProviderName = "eodhd"

// DefaultBaseURL is the base URL for the EODHD API
const DefaultBaseURL = "https://eodhd.com/api"

// Client is an EODHD API client for daily closes and fundamentals
// ⭐ SSOT: EODHD API 호출은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
	apiKey     string
}

// NewClient creates a new EODHD client
func NewClient(httpClient *httputil.Client, log *logger.Logger, apiKey, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpClient: httpClient,
		logger:     log,
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
	}
}

// Name returns the provider name
func (c *Client) Name() string {
	return ProviderName
}

// get performs a GET against path and decodes the JSON answer
func (c *Client) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	if params == nil {
		params = url.Values{}
	}
	params.Set("api_token", c.apiKey)
	params.Set("fmt", "json")

	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())
	err := c.httpClient.GetJSON(ctx, reqURL, result)

	var se *httputil.StatusError
	if errors.As(err, &se) {
		return &APIError{StatusCode: se.StatusCode, Message: se.Body, Endpoint: path}
	}
	return err
}

// FetchPrices returns daily closes for symbol (TICKER.EXCHANGE, e.g. AAPL.US) in ascending order
// An unknown symbol yields an empty series, not an error.
func (c *Client) FetchPrices(ctx context.Context, symbol string, from, to time.Time) (contracts.PriceSeries, error) {
	params := url.Values{}
	params.Set("period", "d")
	params.Set("order", "a")
	if !from.IsZero() {
		params.Set("from", from.Format("2006-01-02"))
	}
	if !to.IsZero() {
		params.Set("to", to.Format("2006-01-02"))
	}

	var bars []eodBar
	if err := c.get(ctx, "/eod/"+url.PathEscape(symbol), params, &bars); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return contracts.PriceSeries{}, nil
		}
		return nil, err
	}

	series := make(contracts.PriceSeries, 0, len(bars))
	for _, b := range bars {
		date, err := time.Parse("2006-01-02", b.Date)
		if err != nil {
			continue
		}
		px := b.AdjustedClose
		if px == 0 {
			px = b.Close
		}
		if px <= 0 {
			continue
		}
		series = append(series, contracts.PricePoint{Date: date, Close: px})
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Date.Before(series[j].Date) })

	c.logger.WithFields(map[string]interface{}{
		"symbol": symbol,
		"count":  len(series),
	}).Debug("Fetched EODHD prices")
	return series, nil
}

// FetchFundamentals returns market cap, debt, revenue and margin for symbol
func (c *Client) FetchFundamentals(ctx context.Context, symbol string) (*contracts.Fundamentals, error) {
	var doc fundamentalsDoc
	if err := c.get(ctx, "/fundamentals/"+url.PathEscape(symbol), nil, &doc); err != nil {
		return nil, err
	}

	h := doc.Highlights
	if h.MarketCapitalization <= 0 {
		return nil, fmt.Errorf("%w: no market capitalization for %s", contracts.ErrFundamentalsUnavailable, symbol)
	}

	f := &contracts.Fundamentals{
		MarketCap:    float64(h.MarketCapitalization),
		Revenue:      float64(h.RevenueTTM),
		ProfitMargin: float64(h.ProfitMargin),
		NetIncome:    float64(h.ProfitMargin) * float64(h.RevenueTTM),
		TotalDebt:    latestDebt(doc.Financials.BalanceSheet.Quarterly),
	}
	if f.MarketCap > 0 {
		f.DebtRatio = f.TotalDebt / f.MarketCap
	}
	return f, nil
}

// latestDebt picks total debt from the most recent quarter, falling back to total liabilities
func latestDebt(quarters map[string]balanceSheetRow) float64 {
	keys := make([]string, 0, len(quarters))
	for k := range quarters {
		keys = append(keys, k)
	}
	// keys are ISO dates; lexical order is chronological
	sort.Sort(sort.Reverse(sort.StringSlice(keys)))

	for _, k := range keys {
		row := quarters[k]
		if row.ShortLongTermDebtTotal > 0 {
			return float64(row.ShortLongTermDebtTotal)
		}
		if row.TotalLiab > 0 {
			return float64(row.TotalLiab)
		}
	}
	return 0
}
