package interact

import (
	"context"

	"time"

	"github.com/qaops/insider-e2e/internal/browser"
)

// RetryPolicy bounds re-execution of an operation whose element handle may
// be invalidated by a DOM re-render between resolution and use.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     time.Duration
}

// DefaultStaleRetry matches the suite-wide convention for reads racing the
// job-list re-render.
var DefaultStaleRetry = RetryPolicy{MaxAttempts: 3, Backoff: 500 * time.Millisecond}

func (p RetryPolicy) normalized() RetryPolicy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = DefaultStaleRetry.MaxAttempts
	}
	if p.Backoff < 0 {
		p.Backoff = 0
	}
	return p
}

// RetryStale invokes op up to MaxAttempts times, sleeping Backoff between
// attempts, as long as the failure is a stale-reference error. The last
// stale error is re-raised on exhaustion; it is never swallowed. Any other
// error aborts immediately.
func RetryStale[T any](ctx context.Context, policy RetryPolicy, op func() (T, error)) (T, error) {
	policy = policy.normalized()

	var zero T
	var lastErr error
	for attempt := 0; attempt < policy.MaxAttempts; attempt++ {
		if attempt > 0 && policy.Backoff > 0 {
			if err := sleep(ctx, policy.Backoff); err != nil {
				return zero, err
			}
		}
		result, err := op()
		if err == nil {
			return result, nil
		}
		if !browser.IsStale(err) {
			return zero, err
		}
		lastErr = err
	}
	return zero, lastErr
}
