package browser

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// NotFoundError reports that a locator/condition pair was never satisfied
// within its timeout. It is fatal to the calling operation and is not
// retried automatically.
type NotFoundError struct {
	Locator   Locator
	Condition string
	Timeout   time.Duration
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("element not found: %s did not become %s within %s", e.Locator, e.Condition, e.Timeout)
}

// StaleReferenceError reports that an element handle was invalidated by a
// DOM re-render. Staleness is only detectable on access, never proactively.
type StaleReferenceError struct {
	Locator Locator
	Err     error
}

func (e *StaleReferenceError) Error() string {
	if e.Locator.IsZero() {
		return fmt.Sprintf("stale element reference: %v", e.Err)
	}
	return fmt.Sprintf("stale element reference for %s: %v", e.Locator, e.Err)
}

func (e *StaleReferenceError) Unwrap() error { return e.Err }

// GateTimeoutError reports that a precondition gate never reached its
// required state. It carries the last observed value and elapsed time for
// diagnostics.
type GateTimeoutError struct {
	Gate         string
	LastObserved string
	Elapsed      time.Duration
	Attempts     int
}

func (e *GateTimeoutError) Error() string {
	return fmt.Sprintf("%s gate not reached after %s (%d samples, last observed %q)",
		e.Gate, e.Elapsed.Round(time.Millisecond), e.Attempts, e.LastObserved)
}

// TransientReadError reports that element reads failed too many consecutive
// times during polling. Individual read failures are tolerated; this error
// is the escalation once the bound is hit.
type TransientReadError struct {
	Gate        string
	Consecutive int
	Elapsed     time.Duration
	Err         error
}

func (e *TransientReadError) Error() string {
	return fmt.Sprintf("%s: element unreadable for %d consecutive attempts over %s: %v",
		e.Gate, e.Consecutive, e.Elapsed.Round(time.Millisecond), e.Err)
}

func (e *TransientReadError) Unwrap() error { return e.Err }

// IsNotFound reports whether err is a NotFoundError or a raw driver
// "no such element" failure.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	if errors.As(err, &nf) {
		return true
	}
	return err != nil && strings.Contains(err.Error(), "no such element")
}

// IsStale reports whether err indicates an invalidated element handle.
// The remote WebDriver surfaces staleness only as an error message, so the
// raw form is sniffed alongside the typed wrapper.
func IsStale(err error) bool {
	var st *StaleReferenceError
	if errors.As(err, &st) {
		return true
	}
	return err != nil && strings.Contains(err.Error(), "stale element reference")
}

// classify wraps raw driver errors into the typed taxonomy where they have a
// typed equivalent, and passes everything else through unchanged.
func classify(err error, loc Locator) error {
	if err == nil {
		return nil
	}
	if strings.Contains(err.Error(), "stale element reference") {
		return &StaleReferenceError{Locator: loc, Err: err}
	}
	return err
}
