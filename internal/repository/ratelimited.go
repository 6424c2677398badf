package repository

import (
	"context"
	"fmt"

	"github.com/alexanderramin/itinera/internal/domain"
	"golang.org/x/time/rate"
)

// RateLimitedJourneyRepo rejects Update calls that exceed a write rate with
// ErrRateLimited. Reads and the other writes pass through.
type RateLimitedJourneyRepo struct {
	JourneyRepo
	limiter *rate.Limiter
}

// NewRateLimitedJourneyRepo wraps next. rps <= 0 disables limiting.
func NewRateLimitedJourneyRepo(next JourneyRepo, rps float64, burst int) *RateLimitedJourneyRepo {
	limit := rate.Limit(rps)
	if rps <= 0 {
		limit = rate.Inf
	}
	if burst < 1 {
		burst = 1
	}
	return &RateLimitedJourneyRepo{JourneyRepo: next, limiter: rate.NewLimiter(limit, burst)}
}

func (r *RateLimitedJourneyRepo) Update(ctx context.Context, id string, patch JourneyPatch) (*domain.Journey, error) {
	if !r.limiter.Allow() {
		return nil, fmt.Errorf("%w: journey %s", ErrRateLimited, id)
	}
	return r.JourneyRepo.Update(ctx, id, patch)
}
