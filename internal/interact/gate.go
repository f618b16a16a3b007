package interact

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/qaops/insider-e2e/internal/browser"
)

// SelectionGate blocks until a filter control that page script initializes
// to a non-default value actually reaches that state. The page auto-selects
// a department shortly after the listing scrolls into view, but the timing
// varies; filtering before the auto-selection lands operates against the
// wrong baseline.
type SelectionGate struct {
	session browser.Session
	logger  *zap.Logger

	// Control is the filter's display element whose text is polled.
	Control browser.Locator
	// Sentinel marks the not-yet-selected state. Matching is by substring:
	// the widget decorates the placeholder (e.g. "× All"), so equality would
	// never fire.
	Sentinel string
	// Interval paces the polling loop.
	Interval time.Duration
	// MaxReadFailures bounds consecutive transient lookup failures before
	// the gate aborts instead of waiting out the full timeout.
	MaxReadFailures int
}

// NewSelectionGate builds a gate over the given control.
func NewSelectionGate(session browser.Session, logger *zap.Logger, control browser.Locator, sentinel string) *SelectionGate {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SelectionGate{
		session:         session,
		logger:          logger,
		Control:         control,
		Sentinel:        sentinel,
		Interval:        time.Second,
		MaxReadFailures: 10,
	}
}

// Wait polls the control's displayed text until it is non-empty and free of
// the sentinel, or fails. The control's value is re-read on every sample and
// never cached across polls.
//
// Failure modes are distinct: exhausting MaxReadFailures consecutive read
// failures raises TransientReadError immediately (the page is broken, not
// slow), while an overall timeout raises GateTimeoutError carrying the last
// observed value.
func (g *SelectionGate) Wait(ctx context.Context, timeout time.Duration) error {
	start := time.Now()
	deadline := start.Add(timeout)

	var lastObserved string
	attempts := 0
	consecutiveFailures := 0

	for {
		attempts++
		text, err := g.read()
		if err != nil {
			consecutiveFailures++
			g.logger.Warn("Failed to read filter control",
				zap.String("control", g.Control.String()),
				zap.Int("consecutive_failures", consecutiveFailures),
				zap.Int("max_failures", g.MaxReadFailures),
				zap.Error(err))
			if consecutiveFailures >= g.MaxReadFailures {
				return &browser.TransientReadError{
					Gate:        "auto-selection",
					Consecutive: consecutiveFailures,
					Elapsed:     time.Since(start),
					Err:         err,
				}
			}
		} else {
			consecutiveFailures = 0
			lastObserved = text

			if text != "" && !strings.Contains(text, g.Sentinel) {
				g.logger.Info("Filter auto-selection complete",
					zap.String("value", text),
					zap.Duration("elapsed", time.Since(start)))
				return nil
			}
			g.logger.Debug("Filter still at sentinel value",
				zap.String("observed", text),
				zap.Duration("elapsed", time.Since(start)))
		}

		if time.Now().After(deadline) {
			return &browser.GateTimeoutError{
				Gate:         "auto-selection",
				LastObserved: lastObserved,
				Elapsed:      time.Since(start),
				Attempts:     attempts,
			}
		}
		if err := sleep(ctx, g.Interval); err != nil {
			return err
		}
	}
}

func (g *SelectionGate) read() (string, error) {
	el, err := g.session.FindElement(g.Control)
	if err != nil {
		return "", err
	}
	text, err := el.Text()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}
