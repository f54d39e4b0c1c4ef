package eodhd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// APIError represents a non-2xx answer from the EODHD API
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("EODHD API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// eodBar is one row of /eod/{symbol}
type eodBar struct {
	Date          string  `json:"date"`
	Open          float64 `json:"open"`
	High          float64 `json:"high"`
	Low           float64 `json:"low"`
	Close         float64 `json:"close"`
	AdjustedClose float64 `json:"adjusted_close"`
	Volume        int64   `json:"volume"`
}

// fundamentalsDoc is the subset of /fundamentals/{symbol} we read
type fundamentalsDoc struct {
	Highlights struct {
		MarketCapitalization flexFloat `json:"MarketCapitalization"`
		ProfitMargin         flexFloat `json:"ProfitMargin"`
		RevenueTTM           flexFloat `json:"RevenueTTM"`
	} `json:"Highlights"`
	Financials struct {
		BalanceSheet struct {
			Quarterly map[string]balanceSheetRow `json:"quarterly"`
		} `json:"Balance_Sheet"`
	} `json:"Financials"`
}

type balanceSheetRow struct {
	Date                   string    `json:"date"`
	ShortLongTermDebtTotal flexFloat `json:"shortLongTermDebtTotal"`
	TotalLiab              flexFloat `json:"totalLiab"`
}

// flexFloat decodes numbers that EODHD sends as number, string or null
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" || s == "NA" || s == "None" {
			*f = 0
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("parse %q: %w", s, err)
		}
		*f = flexFloat(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = flexFloat(v)
	return nil
}
