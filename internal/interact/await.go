// Package interact holds the synchronization layer that makes automated
// interaction with asynchronously rendering pages deterministic: bounded
// explicit waits, stale-reference retry, custom-dropdown driving, the filter
// auto-selection gate, and list-stability detection.
//
// Every wait in this package is bounded by an explicit deadline computed at
// loop entry and paced by cooperative sleeps; nothing busy-spins and nothing
// relies on driver-side implicit waits.
package interact

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/qaops/insider-e2e/internal/browser"
)

// Condition names what a wait requires of the located element.
type Condition string

const (
	// Present: the element exists in the DOM.
	Present Condition = "present"
	// Visible: the element exists and is displayed.
	Visible Condition = "visible"
	// Clickable: the element is displayed and enabled.
	Clickable Condition = "clickable"
	// AllPresent: at least one element matches the locator.
	AllPresent Condition = "all-present"
)

// DefaultPollInterval paces element waits when no interval is configured.
const DefaultPollInterval = 250 * time.Millisecond

// Actions wraps raw driver calls with bounded explicit waits. A timeout that
// elapses surfaces as a typed NotFoundError carrying the locator and the
// condition attempted; a nil element is never returned silently.
type Actions struct {
	session browser.Session
	logger  *zap.Logger
	poll    time.Duration
}

// New creates the wait facade over one session. A non-positive poll interval
// falls back to DefaultPollInterval.
func New(session browser.Session, logger *zap.Logger, poll time.Duration) *Actions {
	if logger == nil {
		logger = zap.NewNop()
	}
	if poll <= 0 {
		poll = DefaultPollInterval
	}
	return &Actions{session: session, logger: logger, poll: poll}
}

// Session exposes the underlying session for script execution and
// navigation-level reads.
func (a *Actions) Session() browser.Session { return a.session }

// Await polls until the locator satisfies the condition or the timeout
// elapses.
func (a *Actions) Await(ctx context.Context, loc browser.Locator, cond Condition, timeout time.Duration) (browser.Element, error) {
	var found browser.Element
	err := a.pollUntil(ctx, timeout, func() bool {
		el, err := a.session.FindElement(loc)
		if err != nil {
			return false
		}
		if !satisfies(el, cond) {
			return false
		}
		found = el
		return true
	})
	if err != nil {
		return nil, &browser.NotFoundError{Locator: loc, Condition: string(cond), Timeout: timeout}
	}
	return found, nil
}

// AwaitAll polls until the locator matches at least one element, then
// returns the full collection.
func (a *Actions) AwaitAll(ctx context.Context, loc browser.Locator, timeout time.Duration) ([]browser.Element, error) {
	var found []browser.Element
	err := a.pollUntil(ctx, timeout, func() bool {
		els, err := a.session.FindElements(loc)
		if err != nil || len(els) == 0 {
			return false
		}
		found = els
		return true
	})
	if err != nil {
		return nil, &browser.NotFoundError{Locator: loc, Condition: string(AllPresent), Timeout: timeout}
	}
	return found, nil
}

// Click waits for the element to become clickable and issues the native
// click.
func (a *Actions) Click(ctx context.Context, loc browser.Locator, timeout time.Duration) error {
	el, err := a.Await(ctx, loc, Clickable, timeout)
	if err != nil {
		return err
	}
	return el.Click()
}

// Type waits for presence, clears existing content, then sends the text.
func (a *Actions) Type(ctx context.Context, loc browser.Locator, text string, timeout time.Duration) error {
	el, err := a.Await(ctx, loc, Present, timeout)
	if err != nil {
		return err
	}
	if err := el.Clear(); err != nil {
		return err
	}
	return el.SendKeys(text)
}

// IsVisible reports whether the element becomes visible within the timeout.
// This is the one operation that swallows the not-found failure and returns
// false instead of propagating; it exists for optional UI such as consent
// banners and must not be used where absence is an error.
func (a *Actions) IsVisible(ctx context.Context, loc browser.Locator, timeout time.Duration) bool {
	_, err := a.Await(ctx, loc, Visible, timeout)
	return err == nil
}

// WaitURLContains polls the current URL until it contains the fragment.
func (a *Actions) WaitURLContains(ctx context.Context, fragment string, timeout time.Duration) error {
	start := time.Now()
	var last string
	attempts := 0
	err := a.pollUntil(ctx, timeout, func() bool {
		attempts++
		url, err := a.session.CurrentURL()
		if err != nil {
			return false
		}
		last = url
		return strings.Contains(strings.ToLower(url), strings.ToLower(fragment))
	})
	if err != nil {
		return &browser.GateTimeoutError{
			Gate:         "url contains " + fragment,
			LastObserved: last,
			Elapsed:      time.Since(start),
			Attempts:     attempts,
		}
	}
	return nil
}

// ScrollIntoView scrolls the first element matched by the locator to the top
// of the viewport via script, for targets below the fold.
func (a *Actions) ScrollIntoView(ctx context.Context, loc browser.Locator, timeout time.Duration) error {
	el, err := a.Await(ctx, loc, Present, timeout)
	if err != nil {
		return err
	}
	_, err = a.session.ExecuteScript(scriptScrollIntoView, []interface{}{el})
	return err
}

// ScriptClick clicks via injected script instead of the native click
// endpoint. Needed where overlays intercept native clicks.
func (a *Actions) ScriptClick(ctx context.Context, loc browser.Locator, timeout time.Duration) error {
	el, err := a.Await(ctx, loc, Present, timeout)
	if err != nil {
		return err
	}
	return a.ScriptClickElement(el)
}

// ScriptClickElement script-clicks an already resolved element.
func (a *Actions) ScriptClickElement(el browser.Element) error {
	_, err := a.session.ExecuteScript(scriptClick, []interface{}{el})
	return err
}

// pollUntil evaluates check at the configured interval until it returns
// true, the deadline passes, or the context is cancelled. The check always
// runs at least once.
func (a *Actions) pollUntil(ctx context.Context, timeout time.Duration, check func() bool) error {
	deadline := time.Now().Add(timeout)
	for {
		if check() {
			return nil
		}
		if time.Now().After(deadline) {
			return context.DeadlineExceeded
		}
		if err := sleep(ctx, a.poll); err != nil {
			return err
		}
	}
}

// satisfies evaluates a single-element condition against a live handle.
// Read failures (including staleness) count as unsatisfied; the caller's
// next poll re-resolves the locator.
func satisfies(el browser.Element, cond Condition) bool {
	switch cond {
	case Present:
		return true
	case Visible:
		shown, err := el.IsDisplayed()
		return err == nil && shown
	case Clickable:
		shown, err := el.IsDisplayed()
		if err != nil || !shown {
			return false
		}
		enabled, err := el.IsEnabled()
		return err == nil && enabled
	default:
		return false
	}
}

// sleep pauses cooperatively, honoring context cancellation.
func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

const (
	scriptClick          = `arguments[0].click();`
	scriptScrollIntoView = `arguments[0].scrollIntoView({block: 'start', behavior: 'smooth'});`
)
