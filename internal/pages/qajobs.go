package pages

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/qaops/insider-e2e/internal/browser"
	"github.com/qaops/insider-e2e/internal/config"
	"github.com/qaops/insider-e2e/internal/interact"
)

// Locators on the QA listing page. The filter widgets are select2 instances:
// the container div is the interactable control, the real <select> stays
// hidden.
var (
	locSeeAllQAJobsButton = browser.ByXPath("//a[contains(text(),'See all QA jobs')]")
	locLocationFilter     = browser.ByID("select2-filter-by-location-container")
	locDepartmentFilter   = browser.ByID("select2-filter-by-department-container")
	locFilterSection      = browser.ByID("career-position-filter")
	locJobsList           = browser.ByID("jobs-list")
	locJobItems           = browser.ByCSS(".position-list-item")
	locJobTitle           = browser.ByCSS(".position-title")
	locJobDepartment      = browser.ByCSS(".position-department")
	locJobLocation        = browser.ByCSS(".position-location")
	locViewRole           = browser.ByXPath(".//a[contains(text(),'View Role')]")
	locDropdownPanel      = browser.ByCSS(".select2-results__options")
	locDropdownOptions    = browser.ByCSS(".select2-results__options li")
)

func locationOption(location string) browser.Locator {
	return browser.ByCSS(fmt.Sprintf("li[data-select2-id*='%s']", location))
}

func departmentOption(department string) browser.Locator {
	return browser.ByXPath(fmt.Sprintf("//li[contains(text(),'%s')]", department))
}

// sentinelAll marks the filter's unselected placeholder. Matched by
// substring: the widget renders it decorated ("× All").
const sentinelAll = "All"

// Job is one listing read off a job card.
type Job struct {
	Title      string
	Department string
	Location   string
}

// QAJobs is the quality-assurance listing page: entry point, the two filter
// widgets, the asynchronously reloading card list, and the handoff to the
// external application form.
type QAJobs struct {
	base
	URL string

	gate         *interact.SelectionGate
	locationDD   *interact.Dropdown
	departmentDD *interact.Dropdown
	probe        *interact.StabilityProbe

	// settleDelay gives page script room to kick off the department
	// auto-selection after the filter section scrolls into view.
	settleDelay time.Duration
	// safetyWait bounds the defensive re-check of the auto-selection before
	// location filtering. The gate normally passed long before; this only
	// catches a selection reverted by late page script.
	safetyWait time.Duration
	retry      interact.RetryPolicy
}

// NewQAJobs builds the QA jobs page object and its synchronization helpers
// from the site configuration.
func NewQAJobs(actions *interact.Actions, logger *zap.Logger, site config.SiteConfig) *QAJobs {
	b := newBase(actions, logger, site)

	gate := interact.NewSelectionGate(actions.Session(), b.logger, locDepartmentFilter, sentinelAll)
	if site.GateInterval > 0 {
		gate.Interval = site.GateInterval
	}
	if site.GateMaxReadFailures > 0 {
		gate.MaxReadFailures = site.GateMaxReadFailures
	}

	probe := interact.NewStabilityProbe(actions.Session(), b.logger, locJobItems, locJobDepartment, locJobLocation)
	if site.StabilityInterval > 0 {
		probe.Interval = site.StabilityInterval
	}

	return &QAJobs{
		base:         b,
		URL:          strings.TrimRight(site.BaseURL, "/") + "/careers/quality-assurance/",
		gate:         gate,
		locationDD:   interact.NewDropdown(actions, b.logger, locLocationFilter, locDropdownPanel, locDropdownOptions),
		departmentDD: interact.NewDropdown(actions, b.logger, locDepartmentFilter, locDropdownPanel, locDropdownOptions),
		probe:        probe,
		settleDelay:  2 * time.Second,
		safetyWait:   10 * time.Second,
		retry:        interact.DefaultStaleRetry,
	}
}

// threshold returns the configured base stability threshold.
func (q *QAJobs) threshold() int {
	if q.site.StabilityThreshold > 0 {
		return q.site.StabilityThreshold
	}
	return interact.DefaultStabilityThreshold
}

// Open navigates to the QA careers page and waits for the document to load.
func (q *QAJobs) Open(ctx context.Context) error {
	if err := q.navigate(q.URL); err != nil {
		return err
	}
	q.acceptCookiesIfPresent(ctx)
	_, err := q.actions.Await(ctx, locBody, interact.Present, q.site.LongWait)
	return err
}

// SeeAllQAJobs clicks through to the open-positions listing and does not
// return until the page is genuinely ready for filtering: URL switched, list
// container present, filter section scrolled into view (card rendering is
// scroll-triggered), department auto-selection landed, and the card list
// settled. The click goes through script because a sticky header overlays
// the native click point.
func (q *QAJobs) SeeAllQAJobs(ctx context.Context) error {
	if err := q.actions.ScriptClick(ctx, locSeeAllQAJobsButton, q.site.LongWait); err != nil {
		return err
	}
	if err := q.actions.WaitURLContains(ctx, "/careers/open-positions", q.site.LongWait); err != nil {
		return err
	}
	if _, err := q.actions.Await(ctx, locJobsList, interact.Present, q.site.LongWait); err != nil {
		return err
	}

	if err := q.actions.ScrollIntoView(ctx, locFilterSection, q.site.LongWait); err != nil {
		return err
	}
	if _, err := q.actions.Await(ctx, locDepartmentFilter, interact.Visible, q.site.LongWait); err != nil {
		return err
	}
	if err := pause(ctx, q.settleDelay); err != nil {
		return err
	}

	q.logger.Info("Waiting for department auto-selection")
	if err := q.gate.Wait(ctx, q.site.LongWait); err != nil {
		return err
	}

	// The list re-renders more times right after the auto-selection than
	// after a manual filter pick; require a doubled settle run here.
	crit := interact.Criteria{Threshold: 2 * q.threshold()}
	if !q.probe.WaitSettled(ctx, crit, q.site.LongWait) {
		return fmt.Errorf("job list never settled after department auto-selection")
	}
	return nil
}

// FilterByLocation commits a location pick and waits for the list to settle
// on cards matching both the expected department and the picked location.
func (q *QAJobs) FilterByLocation(ctx context.Context, location, expectedDepartment string) error {
	// Late page script can revert the auto-selection; re-check it cheaply
	// before touching the other filter.
	if err := q.gate.Wait(ctx, q.safetyWait); err != nil {
		return fmt.Errorf("department selection not ready before location filter: %w", err)
	}

	if err := q.locationDD.Select(ctx, locationOption(location), locJobItems, q.site.LongWait); err != nil {
		return err
	}

	crit := interact.Criteria{
		Department: expectedDepartment,
		Location:   location,
		Threshold:  q.threshold(),
	}
	if !q.probe.WaitSettled(ctx, crit, q.site.LongWait) {
		return fmt.Errorf("job list never settled on location %q with department %q", location, expectedDepartment)
	}
	return nil
}

// FilterByDepartment commits a department pick. The settle run is shorter
// than elsewhere: the department change triggers a single re-render.
func (q *QAJobs) FilterByDepartment(ctx context.Context, department string) error {
	if err := q.departmentDD.Select(ctx, departmentOption(department), locJobItems, q.site.LongWait); err != nil {
		return err
	}

	threshold := q.threshold() - 1
	if threshold < 1 {
		threshold = 1
	}
	crit := interact.Criteria{Department: department, Threshold: threshold}
	if !q.probe.WaitSettled(ctx, crit, q.site.LongWait) {
		return fmt.Errorf("job list never settled on department %q", department)
	}
	return nil
}

// Jobs snapshots every rendered job card. Field reads race the list's
// re-renders, so each card is read under stale retry; a retry re-resolves
// the card by its index in a fresh lookup rather than trusting the old
// handle.
func (q *QAJobs) Jobs(ctx context.Context) ([]Job, error) {
	cards, err := q.actions.AwaitAll(ctx, locJobItems, q.site.ExplicitWait)
	if err != nil {
		return nil, err
	}

	jobs := make([]Job, 0, len(cards))
	for i := range cards {
		job, err := q.jobAt(ctx, i)
		if err != nil {
			return nil, fmt.Errorf("reading job card %d: %w", i, err)
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

// jobAt reads one card's fields, resolving the card fresh on every attempt
// so a stale handle never poisons the retry.
func (q *QAJobs) jobAt(ctx context.Context, index int) (Job, error) {
	return interact.RetryStale(ctx, q.retry, func() (Job, error) {
		cards, err := q.session().FindElements(locJobItems)
		if err != nil {
			return Job{}, err
		}
		if index >= len(cards) {
			return Job{}, fmt.Errorf("job card %d gone, %d cards remain", index, len(cards))
		}
		card := cards[index]

		title, err := fieldText(card, locJobTitle)
		if err != nil {
			return Job{}, err
		}
		department, err := fieldText(card, locJobDepartment)
		if err != nil {
			return Job{}, err
		}
		location, err := fieldText(card, locJobLocation)
		if err != nil {
			return Job{}, err
		}
		return Job{Title: title, Department: department, Location: location}, nil
	})
}

func fieldText(card browser.Element, field browser.Locator) (string, error) {
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

// OpenFirstRole script-clicks the first card's View Role button. The list is
// re-settled first: the page reloads cards several times after filtering and
// a click into a mid-reload list lands on the wrong role.
func (q *QAJobs) OpenFirstRole(ctx context.Context) error {
	if !q.probe.WaitSettled(ctx, interact.Criteria{Threshold: q.threshold()}, q.site.LongWait) {
		return fmt.Errorf("job list never settled before opening a role")
	}

	_, err := interact.RetryStale(ctx, q.retry, func() (bool, error) {
		cards, err := q.actions.AwaitAll(ctx, locJobItems, q.site.ExplicitWait)
		if err != nil {
			return false, err
		}
		first := cards[0]

		if _, err := q.session().ExecuteScript(scriptScrollCard, []interface{}{first}); err != nil {
			return false, err
		}
		if err := pause(ctx, 500*time.Millisecond); err != nil {
			return false, err
		}

		button, err := first.FindElement(locViewRole)
		if err != nil {
			return false, err
		}
		if err := q.actions.ScriptClickElement(button); err != nil {
			return false, err
		}
		return true, nil
	})
	return err
}

// RedirectedToLever reports whether the application handoff reached the
// external form. The role opens in a new tab when the browser allows it, so
// the newest window is adopted before the URL is polled.
func (q *QAJobs) RedirectedToLever(ctx context.Context) bool {
	handles, err := q.session().WindowHandles()
	if err == nil && len(handles) > 1 {
		if err := q.session().SwitchWindow(handles[len(handles)-1]); err != nil {
			q.logger.Warn("Could not switch to new window", zap.Error(err))
		}
	}
	return q.actions.WaitURLContains(ctx, "lever", q.site.LongWait) == nil
}

const scriptScrollCard = `arguments[0].scrollIntoView(true);`
