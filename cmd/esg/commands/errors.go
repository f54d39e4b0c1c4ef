package commands

import (
	"errors"

	"github.com/wonny/esgproxy/backend/internal/contracts"
)

type userMessage string

func (m userMessage) Error() string { return string(m) }

func asProviderError(err error) (*contracts.ProviderError, bool) {
	var pe *contracts.ProviderError
	ok := errors.As(err, &pe)
	return pe, ok
}
