// Package scenarios names the suite's end-to-end flows and runs them over
// fresh browser sessions. Each scenario is idempotent and owns no state
// beyond the session handed to it.
package scenarios

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/qaops/insider-e2e/internal/config"
	"github.com/qaops/insider-e2e/internal/interact"
	"github.com/qaops/insider-e2e/internal/pages"
)

// Tags for scenario selection.
const (
	TagSmoke      = "smoke"
	TagRegression = "regression"
	TagCareers    = "careers"
)

// Filter defaults exercised by the careers flows.
const (
	defaultLocation   = "Istanbul, Turkiye"
	defaultDepartment = "Quality Assurance"
)

// Env is everything one scenario run receives: a wait facade over a fresh
// session, a run-scoped logger, and the site parameters.
type Env struct {
	Actions *interact.Actions
	Logger  *zap.Logger
	Site    config.SiteConfig
}

// Scenario is one named, tagged flow.
type Scenario struct {
	Name string
	Tags []string
	Run  func(ctx context.Context, env Env) error
}

// HasAnyTag reports whether the scenario carries at least one of the tags.
func (s Scenario) HasAnyTag(tags []string) bool {
	for _, want := range tags {
		for _, have := range s.Tags {
			if strings.EqualFold(have, want) {
				return true
			}
		}
	}
	return false
}

// Registry lists every scenario in execution order.
func Registry() []Scenario {
	return []Scenario{
		{Name: "home-opens", Tags: []string{TagSmoke}, Run: homeOpens},
		{Name: "careers-navigation-blocks", Tags: []string{TagCareers, TagRegression}, Run: careersNavigationBlocks},
		{Name: "qa-jobs-filter", Tags: []string{TagCareers, TagRegression}, Run: qaJobsFilter},
		{Name: "qa-jobs-details", Tags: []string{TagCareers, TagRegression}, Run: qaJobsDetails},
		{Name: "view-role-lever-redirect", Tags: []string{TagCareers, TagRegression}, Run: viewRoleLeverRedirect},
	}
}

// Select returns the scenarios matching any of the tags; no tags selects the
// whole registry.
func Select(all []Scenario, tags []string) []Scenario {
	if len(tags) == 0 {
		return all
	}
	var out []Scenario
	for _, s := range all {
		if s.HasAnyTag(tags) {
			out = append(out, s)
		}
	}
	return out
}

func homeOpens(ctx context.Context, env Env) error {
	home := pages.NewHome(env.Actions, env.Logger, env.Site)
	if err := home.Open(ctx); err != nil {
		return err
	}
	opened, err := home.IsOpened(ctx)
	if err != nil {
		return err
	}
	if !opened {
		url, _ := env.Actions.Session().CurrentURL()
		title, _ := env.Actions.Session().Title()
		return fmt.Errorf("home page did not open: expected %q with branded title, got url=%q title=%q", home.URL, url, title)
	}
	return nil
}

func careersNavigationBlocks(ctx context.Context, env Env) error {
	home := pages.NewHome(env.Actions, env.Logger, env.Site)
	careers := pages.NewCareers(env.Actions, env.Logger, env.Site)

	if err := home.Open(ctx); err != nil {
		return err
	}
	if err := home.NavigateToCareers(ctx); err != nil {
		return err
	}

	opened, err := careers.IsOpened()
	if err != nil {
		return err
	}
	if !opened {
		url, _ := env.Actions.Session().CurrentURL()
		return fmt.Errorf("careers page did not open, landed on %q", url)
	}

	var missing []string
	if !careers.LocationsBlockVisible(ctx) {
		missing = append(missing, "locations")
	}
	if !careers.TeamsBlockVisible(ctx) {
		missing = append(missing, "teams")
	}
	if !careers.LifeAtInsiderBlockVisible(ctx) {
		missing = append(missing, "life-at-insider")
	}
	if len(missing) > 0 {
		return fmt.Errorf("careers page blocks not displayed: %s", strings.Join(missing, ", "))
	}
	return nil
}

// openFilteredQAJobs walks the shared prefix of the QA job flows: open the
// listing, pass the auto-selection gate, and commit both filters.
func openFilteredQAJobs(ctx context.Context, env Env) (*pages.QAJobs, error) {
	qa := pages.NewQAJobs(env.Actions, env.Logger, env.Site)
	if err := qa.Open(ctx); err != nil {
		return nil, err
	}
	if err := qa.SeeAllQAJobs(ctx); err != nil {
		return nil, err
	}
	if err := qa.FilterByLocation(ctx, defaultLocation, defaultDepartment); err != nil {
		return nil, err
	}
	if err := qa.FilterByDepartment(ctx, defaultDepartment); err != nil {
		return nil, err
	}
	return qa, nil
}

func qaJobsFilter(ctx context.Context, env Env) error {
	qa, err := openFilteredQAJobs(ctx, env)
	if err != nil {
		return err
	}
	jobs, err := qa.Jobs(ctx)
	if err != nil {
		return err
	}
	if len(jobs) == 0 {
		return fmt.Errorf("no jobs listed after filtering by %q / %q", defaultLocation, defaultDepartment)
	}
	env.Logger.Info("Filtered job list verified", zap.Int("jobs", len(jobs)))
	return nil
}

func qaJobsDetails(ctx context.Context, env Env) error {
	qa, err := openFilteredQAJobs(ctx, env)
	if err != nil {
		return err
	}
	jobs, err := qa.Jobs(ctx)
	if err != nil {
		return err
	}
	if len(jobs) == 0 {
		return fmt.Errorf("no jobs to verify after filtering")
	}

	var bad []string
	for i, job := range jobs {
		if !strings.Contains(job.Title, defaultDepartment) ||
			!strings.Contains(job.Department, defaultDepartment) ||
			!strings.Contains(job.Location, defaultLocation) {
			bad = append(bad, fmt.Sprintf("card %d: title=%q department=%q location=%q", i, job.Title, job.Department, job.Location))
		}
	}
	if len(bad) > 0 {
		return fmt.Errorf("%d of %d jobs do not match %q / %q: %s",
			len(bad), len(jobs), defaultDepartment, defaultLocation, strings.Join(bad, "; "))
	}
	env.Logger.Info("All job cards match the filter criteria", zap.Int("jobs", len(jobs)))
	return nil
}

func viewRoleLeverRedirect(ctx context.Context, env Env) error {
	qa, err := openFilteredQAJobs(ctx, env)
	if err != nil {
		return err
	}
	if err := qa.OpenFirstRole(ctx); err != nil {
		return err
	}
	if !qa.RedirectedToLever(ctx) {
		url, _ := env.Actions.Session().CurrentURL()
		return fmt.Errorf("view role did not hand off to the application form, landed on %q", url)
	}
	return nil
}
