package interact

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/qaops/insider-e2e/internal/browser"
)

func newTestGate(session *fakeSession) *SelectionGate {
	gate := NewSelectionGate(session, nil, browser.ByID("select2-filter-by-department-container"), "All")
	gate.Interval = 10 * time.Millisecond
	return gate
}

func TestGateSucceedsOnceSentinelClears(t *testing.T) {
	session := newFakeSession()
	texts := []string{"× All", "× All", "Quality Assurance"}
	session.findElement = func(call int, loc browser.Locator) (browser.Element, error) {
		idx := call - 1
		if idx >= len(texts) {
			idx = len(texts) - 1
		}
		return visibleElement(texts[idx]), nil
	}

	gate := newTestGate(session)

	start := time.Now()
	require.NoError(t, gate.Wait(context.Background(), time.Second))
	elapsed := time.Since(start)

	session.mu.Lock()
	samples := session.findCalls[gate.Control.String()]
	session.mu.Unlock()
	assert.Equal(t, 3, samples, "must return on the exact sample that clears the sentinel")
	assert.GreaterOrEqual(t, elapsed, 2*gate.Interval, "first sample is immediate, so success lands near two intervals")
}

func TestGateRejectsEmptyText(t *testing.T) {
	session := newFakeSession()
	session.findElement = func(call int, loc browser.Locator) (browser.Element, error) {
		if call < 4 {
			return visibleElement("   "), nil // whitespace-only is still unselected
		}
		return visibleElement("Quality Assurance"), nil
	}

	gate := newTestGate(session)
	require.NoError(t, gate.Wait(context.Background(), time.Second))
}

func TestGateSentinelMatchIsSubstring(t *testing.T) {
	session := newFakeSession()
	session.findElement = func(call int, loc browser.Locator) (browser.Element, error) {
		return visibleElement("× All"), nil // decorated placeholder never equals the sentinel
	}

	gate := newTestGate(session)
	err := gate.Wait(context.Background(), 60*time.Millisecond)

	var gt *browser.GateTimeoutError
	require.ErrorAs(t, err, &gt)
	assert.Equal(t, "auto-selection", gt.Gate)
	assert.Equal(t, "× All", gt.LastObserved)
	assert.Greater(t, gt.Attempts, 1)
	assert.Greater(t, gt.Elapsed, time.Duration(0))
}

func TestGateEscalatesAfterConsecutiveReadFailures(t *testing.T) {
	session := newFakeSession()
	session.findElement = func(call int, loc browser.Locator) (browser.Element, error) {
		return nil, errors.New("no such element: filter container detached")
	}

	gate := newTestGate(session)
	gate.MaxReadFailures = 5

	err := gate.Wait(context.Background(), time.Minute)

	var tr *browser.TransientReadError
	require.ErrorAs(t, err, &tr)
	assert.Equal(t, "auto-selection", tr.Gate)
	assert.Equal(t, 5, tr.Consecutive)

	session.mu.Lock()
	samples := session.findCalls[gate.Control.String()]
	session.mu.Unlock()
	assert.Equal(t, 5, samples, "must abort at the bound, well before the timeout")
}

func TestGateSuccessfulReadResetsFailureStreak(t *testing.T) {
	session := newFakeSession()
	// Alternate failure and sentinel reads; the streak never reaches the
	// bound, then the selection lands.
	session.findElement = func(call int, loc browser.Locator) (browser.Element, error) {
		switch {
		case call >= 9:
			return visibleElement("Quality Assurance"), nil
		case call%2 == 1:
			return nil, errors.New("stale element reference: container re-rendered")
		default:
			return visibleElement("× All"), nil
		}
	}

	gate := newTestGate(session)
	gate.MaxReadFailures = 3
	require.NoError(t, gate.Wait(context.Background(), time.Second))
}

func TestGateTextReadFailureCountsAsReadFailure(t *testing.T) {
	session := newFakeSession()
	broken := visibleElement("")
	broken.textErr = errors.New("stale element reference: text read raced a re-render")
	session.findElement = func(call int, loc browser.Locator) (browser.Element, error) {
		return broken, nil
	}

	gate := newTestGate(session)
	gate.MaxReadFailures = 4

	err := gate.Wait(context.Background(), time.Minute)
	var tr *browser.TransientReadError
	require.ErrorAs(t, err, &tr)
	assert.Equal(t, 4, tr.Consecutive)
}

func TestGateHonorsContextCancellation(t *testing.T) {
	defer goleak.VerifyNone(t)

	session := newFakeSession()
	session.findElement = func(call int, loc browser.Locator) (browser.Element, error) {
		return visibleElement("× All"), nil
	}

	gate := newTestGate(session)
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(25 * time.Millisecond)
		cancel()
	}()

	err := gate.Wait(ctx, time.Minute)
	assert.ErrorIs(t, err, context.Canceled)
}
