package interact

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/qaops/insider-e2e/internal/browser"
)

// DefaultStabilityThreshold is the number of consecutive unchanged samples
// required before the rendered list is considered settled.
const DefaultStabilityThreshold = 3

// Criteria optionally narrows when a settled list counts as a success.
// Department matches by substring, Location by exact equality (locations are
// rendered verbatim; departments carry surrounding text).
type Criteria struct {
	Department string
	Location   string
	// Threshold overrides DefaultStabilityThreshold when positive.
	Threshold int
}

func (c Criteria) empty() bool { return c.Department == "" && c.Location == "" }

func (c Criteria) threshold() int {
	if c.Threshold > 0 {
		return c.Threshold
	}
	return DefaultStabilityThreshold
}

// StabilityProbe watches the rendered job card collection after a filter
// mutation. A single filter action makes the widget re-render its result set
// several times in quick succession, passing through intermediate (wrong)
// states; consumers must not read the list until its cardinality has stopped
// changing across enough consecutive samples.
type StabilityProbe struct {
	session browser.Session
	logger  *zap.Logger

	// Items matches every rendered card; DeptField and LocField are resolved
	// relative to a card.
	Items     browser.Locator
	DeptField browser.Locator
	LocField  browser.Locator

	// Interval paces sampling.
	Interval time.Duration
}

// NewStabilityProbe builds a probe over the card collection.
func NewStabilityProbe(session browser.Session, logger *zap.Logger, items, deptField, locField browser.Locator) *StabilityProbe {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StabilityProbe{
		session:   session,
		logger:    logger,
		Items:     items,
		DeptField: deptField,
		LocField:  locField,
		Interval:  time.Second,
	}
}

// WaitSettled samples the card collection until it is stable, or the timeout
// elapses. It returns a boolean, not an error: callers decide whether an
// unsettled list is fatal.
//
// The stability counter tracks cardinality alone: an unchanged count always
// increments it and a changed count resets it to 1. When criteria are given
// they gate only the success decision; a stable-but-unmatching sample keeps
// the counter growing so a late-arriving match succeeds immediately.
func (p *StabilityProbe) WaitSettled(ctx context.Context, crit Criteria, timeout time.Duration) bool {
	threshold := crit.threshold()
	deadline := time.Now().Add(timeout)

	seen := false
	lastCount := 0
	stableChecks := 0

	for {
		cards, err := p.session.FindElements(p.Items)
		if err != nil {
			cards = nil
		}
		count := len(cards)

		matches := false
		if !crit.empty() {
			matches = p.anyCardMatches(cards, crit)
		}

		switch {
		case !seen:
			seen = true
			lastCount = count
			stableChecks = 1
		case count == lastCount && (count > 0 || !crit.empty()):
			stableChecks++
		default:
			lastCount = count
			stableChecks = 1
		}

		p.logger.Debug("Sampled job list",
			zap.Int("cards", count),
			zap.Int("stable_checks", stableChecks),
			zap.Int("threshold", threshold),
			zap.Bool("matches", matches))

		if stableChecks >= threshold {
			if crit.empty() {
				if count > 0 {
					return true
				}
			} else if matches {
				return true
			}
		}

		if time.Now().After(deadline) {
			p.logger.Warn("Job list never settled",
				zap.Int("last_cardinality", lastCount),
				zap.Int("stable_checks", stableChecks))
			return false
		}
		if err := sleep(ctx, p.Interval); err != nil {
			return false
		}
	}
}

// anyCardMatches reports whether at least one card satisfies the criteria.
// Cards that fail to read (mid-render staleness) are skipped; the next
// sample sees the re-rendered collection.
func (p *StabilityProbe) anyCardMatches(cards []browser.Element, crit Criteria) bool {
	for _, card := range cards {
		if crit.Department != "" {
			dept, err := p.cardField(card, p.DeptField)
			if err != nil || !strings.Contains(dept, crit.Department) {
				continue
			}
		}
		if crit.Location != "" {
			loc, err := p.cardField(card, p.LocField)
			if err != nil || loc != crit.Location {
				continue
			}
		}
		return true
	}
	return false
}

func (p *StabilityProbe) cardField(card browser.Element, field browser.Locator) (string, error) {
	el, err := card.FindElement(field)
	if err != nil {
		return "", err
	}
	text, err := el.Text()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}
