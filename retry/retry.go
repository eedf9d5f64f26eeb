// Package retry re-runs Lexia calls that failed with a rate limit or a
// service error. The lexia client itself never retries.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"github.com/lexia/kurai/lexia"
)

// Policy bounds retries. MaxRetries 0 disables retrying.
type Policy struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
	// MaxElapsed stops retrying once this much time has passed; 0 means no limit
	MaxElapsed time.Duration
}

// DefaultPolicy returns a policy with three retries
func DefaultPolicy() Policy {
	return Policy{
		MaxRetries:      3,
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     30 * time.Second,
		MaxElapsed:      2 * time.Minute,
	}
}

// Enabled reports whether the policy retries at all
func (p Policy) Enabled() bool {
	return p.MaxRetries > 0
}

// Retrier runs operations under a Policy
type Retrier struct {
	policy Policy
	logger zerolog.Logger
}

// New creates a Retrier
func New(policy Policy, logger zerolog.Logger) *Retrier {
	return &Retrier{policy: policy, logger: logger}
}

// Retryable reports whether err is worth retrying
func Retryable(err error) bool {
	kind, ok := lexia.KindOf(err)
	return ok && (kind == lexia.KindRateLimit || kind == lexia.KindService)
}

// Do runs op until it succeeds, fails with a non-retryable error or the
// policy is exhausted, and returns the last operation error. If ctx ends
// while waiting, the context error is returned. A server Retry-After
// longer than the computed backoff is honoured.
func (r *Retrier) Do(ctx context.Context, op func(ctx context.Context) error) error {
	if !r.policy.Enabled() {
		return op(ctx)
	}

	b := &retryAfterBackOff{BackOff: r.exponential()}
	attempt := 0

	operation := func() error {
		attempt++
		err := op(ctx)
		if err == nil {
			return nil
		}
		if !Retryable(err) {
			return backoff.Permanent(err)
		}

		b.retryAfter = 0
		if lexiaErr, ok := lexia.AsError(err); ok {
			b.retryAfter = lexiaErr.RetryAfter
		}
		return err
	}

	notify := func(err error, wait time.Duration) {
		r.logger.Warn().
			Err(err).
			Int("attempt", attempt).
			Dur("wait", wait).
			Msg("Retrying Lexia request")
	}

	return backoff.RetryNotify(operation, backoff.WithContext(b, ctx), notify)
}

func (r *Retrier) exponential() backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = r.policy.InitialInterval
	exp.MaxInterval = r.policy.MaxInterval
	exp.MaxElapsedTime = r.policy.MaxElapsed
	exp.Reset()

	return backoff.WithMaxRetries(exp, uint64(r.policy.MaxRetries))
}

// retryAfterBackOff waits at least the server's Retry-After
type retryAfterBackOff struct {
	backoff.BackOff
	retryAfter time.Duration
}

func (b *retryAfterBackOff) NextBackOff() time.Duration {
	next := b.BackOff.NextBackOff()
	if next == backoff.Stop {
		return backoff.Stop
	}
	return max(next, b.retryAfter)
}
