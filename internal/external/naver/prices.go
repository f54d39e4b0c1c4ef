package naver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/wonny/esgproxy/backend/internal/contracts"
)

var priceRowRe = regexp.MustCompile(`\["(\d{8})",\s*([\d.]+),\s*([\d.]+),\s*([\d.]+),\s*([\d.]+),\s*([\d.]+)`)

// FetchPrices fetches daily closes from the Naver chart API, oldest first
// ⭐ SSOT: Naver Finance 가격 API 호출은 이 함수에서만
func (c *Client) FetchPrices(ctx context.Context, code string, from, to time.Time) (contracts.PriceSeries, error) {
	params := url.Values{}
	params.Set("symbol", code)
	params.Set("requestType", "1")
	params.Set("startTime", from.Format("20060102"))
	params.Set("endTime", to.Format("20060102"))
	params.Set("timeframe", "day")

	body, err := c.httpClient.GetBody(ctx, c.chartURL+"/siseJson.naver?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}

	series, err := parsePriceResponse(string(body))
	if err != nil {
		return nil, fmt.Errorf("parse response failed: %w", err)
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Date.Before(series[j].Date) })

	c.logger.WithFields(map[string]interface{}{
		"stock_code": code,
		"count":      len(series),
	}).Debug("Fetched prices")
	return series, nil
}

// parsePriceResponse parses the single-quoted JSON array the chart API returns
func parsePriceResponse(body string) (contracts.PriceSeries, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return contracts.PriceSeries{}, nil
	}
	body = strings.ReplaceAll(body, "'", "\"")

	// Try JSON parsing first
	var rawData [][]interface{}
	if err := json.Unmarshal([]byte(body), &rawData); err == nil {
		return parsePriceJSON(rawData), nil
	}

	// Fallback to regex parsing
	return parsePriceRegex(body), nil
}

// parsePriceJSON reads [date, open, high, low, close, volume, ...] rows after the header
func parsePriceJSON(rawData [][]interface{}) contracts.PriceSeries {
	series := contracts.PriceSeries{}
	for i, row := range rawData {
		if i == 0 || len(row) < 5 {
			continue // Skip header
		}

		dateStr, ok := row[0].(string)
		if !ok {
			continue
		}
		date, err := time.Parse("20060102", strings.TrimSpace(dateStr))
		if err != nil {
			continue
		}

		closePrice := toFloat(row[4])
		if closePrice <= 0 {
			continue
		}
		series = append(series, contracts.PricePoint{Date: date, Close: closePrice})
	}
	return series
}

// parsePriceRegex parses using regex (fallback)
func parsePriceRegex(body string) contracts.PriceSeries {
	series := contracts.PriceSeries{}
	for _, match := range priceRowRe.FindAllStringSubmatch(body, -1) {
		date, err := time.Parse("20060102", match[1])
		if err != nil {
			continue
		}
		closePrice, _ := strconv.ParseFloat(match[5], 64)
		if closePrice <= 0 {
			continue
		}
		series = append(series, contracts.PricePoint{Date: date, Close: closePrice})
	}
	return series
}

// toFloat converts JSON scalars to float64
func toFloat(v interface{}) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int64:
		return float64(val)
	case int:
		return float64(val)
	case string:
		n, _ := strconv.ParseFloat(strings.TrimSpace(val), 64)
		return n
	default:
		return 0
	}
}
