// Package autosave persists an edited journey after a quiet period. Every
// Notify restarts the countdown; only the latest document is written.
package autosave

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/alexanderramin/itinera/internal/domain"
	"github.com/alexanderramin/itinera/internal/repository"
	"go.uber.org/zap"
)

const (
	DefaultDelay      = 2500 * time.Millisecond
	DefaultRetryDelay = 5 * time.Second
)

// Status is the save indicator shown to the user.
type Status string

const (
	StatusIdle     Status = "idle"
	StatusPending  Status = "pending"
	StatusSaving   Status = "saving"
	StatusSaved    Status = "saved"
	StatusRetrying Status = "retrying"
	StatusError    Status = "error"
)

// Timer is a scheduled callback that can be cancelled.
type Timer interface {
	Stop() bool
}

// Clock schedules callbacks. Tests substitute a manual clock.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, fn func()) Timer
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, fn func()) Timer { return time.AfterFunc(d, fn) }

// RealClock is the wall clock.
func RealClock() Clock { return realClock{} }

// SaveFunc writes the persisted subset of j.
type SaveFunc func(ctx context.Context, j *domain.Journey) error

type Options struct {
	Delay      time.Duration
	RetryDelay time.Duration
	Clock      Clock
	Logger     *zap.Logger
	// OnStatus is called after every status change, outside any lock.
	OnStatus func(status Status, err error)
	// IsRateLimited decides which failures earn the single delayed retry.
	// The default matches repository.ErrRateLimited.
	IsRateLimited func(err error) bool
}

// Coordinator debounces saves of one journey document.
type Coordinator struct {
	save SaveFunc
	opts Options
	log  *zap.Logger

	// saveMu serializes writes so an older document never lands after a
	// newer one.
	saveMu sync.Mutex

	mu      sync.Mutex
	pending *domain.Journey
	timer   Timer
	status  Status
	lastErr error
	retried bool
	closed  bool
}

func New(save SaveFunc, opts Options) *Coordinator {
	if opts.Delay <= 0 {
		opts.Delay = DefaultDelay
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = DefaultRetryDelay
	}
	if opts.Clock == nil {
		opts.Clock = RealClock()
	}
	if opts.IsRateLimited == nil {
		opts.IsRateLimited = func(err error) bool { return errors.Is(err, repository.ErrRateLimited) }
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Coordinator{save: save, opts: opts, log: log, status: StatusIdle}
}

// Notify records j as the latest document and restarts the quiet period.
// j must not be mutated afterwards.
func (c *Coordinator) Notify(j *domain.Journey) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.pending = j
	c.retried = false
	c.arm(c.opts.Delay)
	c.status, c.lastErr = StatusPending, nil
	c.mu.Unlock()

	c.emit(StatusPending, nil)
}

// arm replaces the scheduled save. Callers hold mu.
func (c *Coordinator) arm(d time.Duration) {
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = c.opts.Clock.AfterFunc(d, c.fire)
}

func (c *Coordinator) fire() {
	_ = c.flush(context.Background(), false)
}

// Flush writes the pending document now, if there is one.
func (c *Coordinator) Flush(ctx context.Context) error {
	return c.flush(ctx, true)
}

func (c *Coordinator) flush(ctx context.Context, manual bool) error {
	c.saveMu.Lock()
	defer c.saveMu.Unlock()

	c.mu.Lock()
	j := c.pending
	if j == nil {
		c.mu.Unlock()
		return nil
	}
	c.pending = nil
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.status = StatusSaving
	c.mu.Unlock()
	c.emit(StatusSaving, nil)

	start := c.opts.Clock.Now()
	err := c.save(ctx, j)

	c.mu.Lock()
	newer := c.pending != nil
	var status Status
	switch {
	case err == nil:
		c.lastErr = nil
		status = StatusSaved
		if newer {
			status = StatusPending
		}
		c.log.Debug("journey saved",
			zap.String("journey_id", j.ID),
			zap.Duration("took", c.opts.Clock.Now().Sub(start)))
	case newer:
		// A newer document is already scheduled; it supersedes this one.
		c.lastErr = err
		status = StatusPending
		c.log.Warn("save failed, newer edit pending", zap.String("journey_id", j.ID), zap.Error(err))
	case c.opts.IsRateLimited(err) && !c.retried && !c.closed && !manual:
		c.pending = j
		c.retried = true
		c.lastErr = err
		c.arm(c.opts.RetryDelay)
		status = StatusRetrying
		c.log.Warn("save rate limited, retrying once",
			zap.String("journey_id", j.ID), zap.Duration("retry_in", c.opts.RetryDelay))
	default:
		// Keep the document so a manual Flush can try again. No timer is
		// armed until the next Notify.
		c.pending = j
		c.lastErr = err
		status = StatusError
		c.log.Error("save failed", zap.String("journey_id", j.ID), zap.Error(err))
	}
	c.status = status
	c.mu.Unlock()

	c.emit(status, err)
	return err
}

// Close flushes any pending document and stops accepting new ones.
func (c *Coordinator) Close(ctx context.Context) error {
	c.mu.Lock()
	c.closed = true
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.mu.Unlock()
	return c.Flush(ctx)
}

// Status returns the current save status and the last save error.
func (c *Coordinator) Status() (Status, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status, c.lastErr
}

// Dirty reports whether a document is waiting to be written.
func (c *Coordinator) Dirty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending != nil
}

func (c *Coordinator) emit(status Status, err error) {
	if c.opts.OnStatus != nil {
		c.opts.OnStatus(status, err)
	}
}
