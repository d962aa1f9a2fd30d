package ratelimit

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"
)

const (
	DefaultMinDelay = 1 * time.Second
	DefaultMaxDelay = 3 * time.Second

	// Conservative pacing for sources that aggressively fingerprint automation.
	ConservativeMinDelay = 3 * time.Second
	ConservativeMaxDelay = 8 * time.Second
)

// Limiter is a pacing gate: each Wait returns no sooner than a random delay
// drawn from [min, max] after the previous Wait returned.
type Limiter struct {
	min, max time.Duration

	// gate serializes waiters; a channel instead of a mutex so a waiter
	// can give up when its context is cancelled
	gate chan struct{}

	mu   sync.Mutex
	rnd  *rand.Rand
	last time.Time

	now   func() time.Time
	after func(time.Duration) <-chan time.Time
}

// Option configures a Limiter
type Option func(*Limiter)

// WithRand sets the random source used to draw delays
func WithRand(r *rand.Rand) Option {
	return func(l *Limiter) {
		l.rnd = r
	}
}

// WithClock overrides the time source and timer, for tests
func WithClock(now func() time.Time, after func(time.Duration) <-chan time.Time) Option {
	return func(l *Limiter) {
		l.now = now
		l.after = after
	}
}

// New creates a Limiter. Zero or negative bounds are allowed and disable pacing.
func New(min, max time.Duration, opts ...Option) (*Limiter, error) {
	if min < 0 {
		min = 0
	}
	if max < min {
		return nil, fmt.Errorf("ratelimit: max delay %s is below min delay %s", max, min)
	}

	l := &Limiter{
		min:   min,
		max:   max,
		gate:  make(chan struct{}, 1),
		now:   time.Now,
		after: time.After,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.rnd == nil {
		l.rnd = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x6a6f6273))
	}

	return l, nil
}

// MustNew is New for statically known bounds
func MustNew(min, max time.Duration, opts ...Option) *Limiter {
	l, err := New(min, max, opts...)
	if err != nil {
		panic(err)
	}
	return l
}

// Unlimited returns a Limiter that never delays
func Unlimited() *Limiter {
	return MustNew(0, 0)
}

// Bounds reports the configured delay window
func (l *Limiter) Bounds() (time.Duration, time.Duration) {
	return l.min, l.max
}

// Wait blocks until the next call is allowed or ctx is done. The first call on
// a fresh limiter returns immediately.
func (l *Limiter) Wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	select {
	case l.gate <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-l.gate }()

	l.mu.Lock()
	last := l.last
	delay := l.nextDelay()
	l.mu.Unlock()

	if !last.IsZero() {
		if remaining := last.Add(delay).Sub(l.now()); remaining > 0 {
			select {
			case <-l.after(remaining):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	l.mu.Lock()
	l.last = l.now()
	l.mu.Unlock()

	return nil
}

func (l *Limiter) nextDelay() time.Duration {
	if l.max <= 0 {
		return 0
	}
	span := l.max - l.min
	if span <= 0 {
		return l.min
	}
	return l.min + time.Duration(l.rnd.Int64N(int64(span)+1))
}
