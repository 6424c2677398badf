package service

import (
	"errors"
	"fmt"

	"github.com/alexanderramin/itinera/internal/llm"
	"github.com/alexanderramin/itinera/internal/planner"
	"github.com/alexanderramin/itinera/internal/repository"
)

var (
	// ErrParseFailure indicates the oracle answered but no usable day could
	// be read from the response.
	ErrParseFailure = errors.New("could not parse itinerary from response")

	// ErrRefinementInFlight indicates another oracle call for the same
	// journey has not finished yet.
	ErrRefinementInFlight = errors.New("another generation is already running for this journey")

	// ErrOracle marks a failed oracle call. The caller may retry.
	ErrOracle = errors.New("itinerary generation failed")

	ErrDayNotFound = planner.ErrDayNotFound
	ErrNotEditable = planner.ErrNotEditable
)

func oracleError(err error) error {
	return fmt.Errorf("%w: %w", ErrOracle, err)
}

// IsRetryable reports whether err is transient: an oracle failure or a
// rate-limited write.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrOracle) ||
		errors.Is(err, llm.ErrRateLimited) ||
		errors.Is(err, repository.ErrRateLimited)
}
