package pipeline

import (
	"errors"

	"github.com/wonny/esgproxy/backend/internal/contracts"
)

// Failure reasons used for metrics labels and HTTP status mapping
const (
	ReasonValidation    = "validation"
	ReasonInsufficient  = "insufficient_data"
	ReasonProvider      = "provider"
	ReasonConfiguration = "configuration"
	ReasonUnknownScheme = "unknown_scheme"
	ReasonInternal      = "internal"
)

// Reason classifies a scoring error
func Reason(err error) string {
	var ve contracts.ValidationError
	var pe *contracts.ProviderError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &ve):
		return ReasonValidation
	case errors.Is(err, contracts.ErrUnknownScheme):
		return ReasonUnknownScheme
	case errors.As(err, &pe):
		return ReasonProvider
	case errors.Is(err, contracts.ErrInsufficientData):
		return ReasonInsufficient
	case errors.Is(err, contracts.ErrNotConfigured):
		return ReasonConfiguration
	default:
		return ReasonInternal
	}
}
