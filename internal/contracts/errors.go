package contracts

import (
	"errors"
	"fmt"
	"strconv"
)

var (
	// ErrInsufficientData means a price series is too short to derive returns
	ErrInsufficientData = errors.New("insufficient data for scoring")
	// ErrNotConfigured means model or standardization parameters are missing
	ErrNotConfigured = errors.New("scoring parameters not configured")
	// ErrUnknownScheme means no weighting scheme is registered under the name
	ErrUnknownScheme = errors.New("unknown weighting scheme")
	// ErrFundamentalsUnavailable means the scheme needs fundamentals the provider lacks
	ErrFundamentalsUnavailable = errors.New("fundamentals unavailable")
)

// ValidationError reports an input or configuration value outside its contract
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ProviderError wraps any failure of an external market data provider
type ProviderError struct {
	Provider string
	Ticker   string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s: ticker %s: %v", e.Provider, e.Ticker, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// UserMessage is the text shown to an end user for this failure
func (e *ProviderError) UserMessage() string {
	return fmt.Sprintf("Could not fetch market data for %q. Please try another ticker.", e.Ticker)
}

// NewProviderError wraps err unless it already is a ProviderError
func NewProviderError(provider, ticker string, err error) error {
	if err == nil {
		return nil
	}
	var pe *ProviderError
	if errors.As(err, &pe) {
		return err
	}
	return &ProviderError{Provider: provider, Ticker: ticker, Err: err}
}

func formatRange(r FeatureRange) string {
	return "must be in [" + strconv.FormatFloat(r.Min, 'f', -1, 64) + ", " +
		strconv.FormatFloat(r.Max, 'f', -1, 64) + "]"
}
