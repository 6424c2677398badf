package autosave_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alexanderramin/itinera/internal/autosave"
	"github.com/alexanderramin/itinera/internal/domain"
	"github.com/alexanderramin/itinera/internal/repository"
	"github.com/alexanderramin/itinera/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder is a SaveFunc that fails with the queued errors first.
type recorder struct {
	mu    sync.Mutex
	errs  []error
	saved []*domain.Journey
	calls int
}

func (r *recorder) save(_ context.Context, j *domain.Journey) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if len(r.errs) > 0 {
		err := r.errs[0]
		r.errs = r.errs[1:]
		return err
	}
	r.saved = append(r.saved, j)
	return nil
}

func newCoordinator(r *recorder, clock *testutil.FakeClock, statuses *[]autosave.Status) *autosave.Coordinator {
	return autosave.New(r.save, autosave.Options{
		Clock: clock,
		OnStatus: func(s autosave.Status, _ error) {
			if statuses != nil {
				*statuses = append(*statuses, s)
			}
		},
	})
}

func TestCoordinator_DebouncesNotifications(t *testing.T) {
	clock := testutil.NewFakeClock()
	r := &recorder{}
	c := newCoordinator(r, clock, nil)
	first := testutil.NewTestJourney(testutil.WithDays(2))
	second := first.Clone()
	second.PreferredDuration = 9

	c.Notify(first)
	clock.Advance(2 * time.Second)
	c.Notify(second)
	clock.Advance(2 * time.Second)
	assert.Zero(t, r.calls, "quiet period restarts on every notify")

	clock.Advance(500 * time.Millisecond)
	require.Len(t, r.saved, 1)
	assert.Same(t, second, r.saved[0])

	status, err := c.Status()
	assert.Equal(t, autosave.StatusSaved, status)
	assert.NoError(t, err)
	assert.False(t, c.Dirty())
}

func TestCoordinator_StatusSequence(t *testing.T) {
	clock := testutil.NewFakeClock()
	var statuses []autosave.Status
	c := newCoordinator(&recorder{}, clock, &statuses)

	c.Notify(testutil.NewTestJourney())
	clock.Advance(autosave.DefaultDelay)

	assert.Equal(t, []autosave.Status{autosave.StatusPending, autosave.StatusSaving, autosave.StatusSaved}, statuses)
}

func TestCoordinator_RateLimitRetriesOnce(t *testing.T) {
	clock := testutil.NewFakeClock()
	r := &recorder{errs: []error{repository.ErrRateLimited}}
	c := newCoordinator(r, clock, nil)
	j := testutil.NewTestJourney()

	c.Notify(j)
	clock.Advance(autosave.DefaultDelay)

	status, err := c.Status()
	assert.Equal(t, autosave.StatusRetrying, status)
	assert.ErrorIs(t, err, repository.ErrRateLimited)
	assert.True(t, c.Dirty(), "local state is kept for the retry")

	clock.Advance(autosave.DefaultRetryDelay)
	assert.Equal(t, 2, r.calls)
	require.Len(t, r.saved, 1)
	status, _ = c.Status()
	assert.Equal(t, autosave.StatusSaved, status)
}

func TestCoordinator_RateLimitTwiceStops(t *testing.T) {
	clock := testutil.NewFakeClock()
	r := &recorder{errs: []error{repository.ErrRateLimited, repository.ErrRateLimited}}
	c := newCoordinator(r, clock, nil)
	j := testutil.NewTestJourney()

	c.Notify(j)
	clock.Advance(autosave.DefaultDelay)
	clock.Advance(autosave.DefaultRetryDelay)

	status, err := c.Status()
	assert.Equal(t, autosave.StatusError, status)
	assert.ErrorIs(t, err, repository.ErrRateLimited)
	assert.Zero(t, clock.Pending(), "no retry storm")
	assert.True(t, c.Dirty())

	clock.Advance(time.Minute)
	assert.Equal(t, 2, r.calls)

	// The next edit re-arms autosave.
	c.Notify(j)
	clock.Advance(autosave.DefaultDelay)
	assert.Equal(t, 3, r.calls)
	require.Len(t, r.saved, 1)
}

func TestCoordinator_OtherErrorsStopImmediately(t *testing.T) {
	clock := testutil.NewFakeClock()
	boom := errors.New("disk full")
	r := &recorder{errs: []error{boom}}
	c := newCoordinator(r, clock, nil)

	c.Notify(testutil.NewTestJourney())
	clock.Advance(autosave.DefaultDelay)

	status, err := c.Status()
	assert.Equal(t, autosave.StatusError, status)
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, clock.Pending())
	assert.Equal(t, 1, r.calls)

	// A manual flush retries the kept document.
	require.NoError(t, c.Flush(context.Background()))
	assert.Len(t, r.saved, 1)
}

func TestCoordinator_FlushWritesWithoutWaiting(t *testing.T) {
	clock := testutil.NewFakeClock()
	r := &recorder{}
	c := newCoordinator(r, clock, nil)

	require.NoError(t, c.Flush(context.Background()), "nothing pending is a no-op")
	assert.Zero(t, r.calls)

	c.Notify(testutil.NewTestJourney())
	require.NoError(t, c.Flush(context.Background()))
	assert.Equal(t, 1, r.calls)
	assert.Zero(t, clock.Pending(), "flush cancels the scheduled save")

	clock.Advance(autosave.DefaultDelay)
	assert.Equal(t, 1, r.calls)
}

func TestCoordinator_CloseFlushesAndStops(t *testing.T) {
	clock := testutil.NewFakeClock()
	r := &recorder{}
	c := newCoordinator(r, clock, nil)

	c.Notify(testutil.NewTestJourney())
	require.NoError(t, c.Close(context.Background()))
	assert.Equal(t, 1, r.calls)

	c.Notify(testutil.NewTestJourney())
	clock.Advance(autosave.DefaultDelay)
	assert.Equal(t, 1, r.calls, "closed coordinator ignores new documents")
	assert.False(t, c.Dirty())
}

func TestCoordinator_CustomDelay(t *testing.T) {
	clock := testutil.NewFakeClock()
	r := &recorder{}
	c := autosave.New(r.save, autosave.Options{Clock: clock, Delay: 100 * time.Millisecond})

	c.Notify(testutil.NewTestJourney())
	clock.Advance(99 * time.Millisecond)
	assert.Zero(t, r.calls)
	clock.Advance(time.Millisecond)
	assert.Equal(t, 1, r.calls)
}
