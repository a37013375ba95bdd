// Package resilience provides a circuit breaker for flaky upstreams.
//
// The ingestion worker scrapes third-party review pages; when a site starts
// refusing connections the breaker trips so queued tasks fail fast instead of
// each burning a full fetch timeout.
package resilience

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/profsage/profsage/pkg/fn"
)

// ErrOpen is returned while the breaker is rejecting calls.
var ErrOpen = errors.New("circuit breaker open")

// State of the breaker.
type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	}
	return "unknown"
}

// BreakerOpts configures a Breaker. Zero values fall back to the defaults.
type BreakerOpts struct {
	FailThreshold int           // consecutive failures before tripping
	Cooldown      time.Duration // open duration before a probe is allowed
	ProbeMax      int           // probe calls permitted while half-open
}

var defaultBreakerOpts = BreakerOpts{
	FailThreshold: 5,
	Cooldown:      30 * time.Second,
	ProbeMax:      1,
}

// Breaker is a closed/open/half-open circuit breaker. The zero value is not
// usable; construct with NewBreaker.
type Breaker struct {
	mu       sync.Mutex
	opts     BreakerOpts
	state    State
	failures int
	openedAt time.Time
	probes   int
	now      func() time.Time // for testing
}

func NewBreaker(opts BreakerOpts) *Breaker {
	if opts.FailThreshold <= 0 {
		opts.FailThreshold = defaultBreakerOpts.FailThreshold
	}
	if opts.Cooldown <= 0 {
		opts.Cooldown = defaultBreakerOpts.Cooldown
	}
	if opts.ProbeMax <= 0 {
		opts.ProbeMax = defaultBreakerOpts.ProbeMax
	}
	return &Breaker{opts: opts, now: time.Now}
}

// State reports the current state, applying the open to half-open transition
// if the cooldown has elapsed.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.tick()
}

// tick advances open to half-open after the cooldown. Caller holds mu.
func (b *Breaker) tick() State {
	if b.state == StateOpen && b.now().Sub(b.openedAt) >= b.opts.Cooldown {
		b.state = StateHalfOpen
		b.probes = 0
	}
	return b.state
}

// admit reserves a slot for one call, or reports that the breaker rejects it.
func (b *Breaker) admit() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch b.tick() {
	case StateOpen:
		return false
	case StateHalfOpen:
		if b.probes >= b.opts.ProbeMax {
			return false
		}
		b.probes++
	}
	return true
}

// record feeds one call outcome back into the state machine.
func (b *Breaker) record(failed bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if failed {
		b.failures++
		if b.state == StateHalfOpen || b.failures >= b.opts.FailThreshold {
			b.state = StateOpen
			b.openedAt = b.now()
			b.failures = 0
			b.probes = 0
		}
		return
	}
	if b.state == StateHalfOpen {
		b.state = StateClosed
	}
	b.failures = 0
}

// Do runs f through the breaker, returning ErrOpen without calling f when the
// breaker is rejecting.
func Do[T any](b *Breaker, ctx context.Context, f func(context.Context) fn.Result[T]) fn.Result[T] {
	if !b.admit() {
		return fn.Err[T](ErrOpen)
	}
	res := f(ctx)
	b.record(res.IsErr())
	return res
}

// Call is Do for plain error-returning functions.
func (b *Breaker) Call(ctx context.Context, f func(context.Context) error) error {
	_, err := Do(b, ctx, func(ctx context.Context) fn.Result[struct{}] {
		if err := f(ctx); err != nil {
			return fn.Err[struct{}](err)
		}
		return fn.Ok(struct{}{})
	}).Unwrap()
	return err
}

// BreakerStage guards a pipeline stage with b.
func BreakerStage[In, Out any](b *Breaker, stage fn.Stage[In, Out]) fn.Stage[In, Out] {
	return func(ctx context.Context, in In) fn.Result[Out] {
		return Do(b, ctx, func(ctx context.Context) fn.Result[Out] {
			return stage(ctx, in)
		})
	}
}
