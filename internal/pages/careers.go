package pages

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/qaops/insider-e2e/internal/browser"
	"github.com/qaops/insider-e2e/internal/config"
	"github.com/qaops/insider-e2e/internal/interact"
)

var (
	locLocationsBlock = browser.ByCSS("#career-our-location")
	locTeamsBlock     = browser.ByCSS("#career-find-our-calling")
	// The Life at Insider section carries no id; located by its heading.
	locLifeAtInsiderBlock = browser.ByXPath("//h2[text()='Life at Insider']")
	locSeeAllQAJobsLink   = browser.ByXPath("//a[contains(text(),'See all QA jobs')]")
)

// Careers is the careers landing page with its three content blocks.
type Careers struct {
	base
	URL string
}

// NewCareers builds the careers page object.
func NewCareers(actions *interact.Actions, logger *zap.Logger, site config.SiteConfig) *Careers {
	return &Careers{
		base: newBase(actions, logger, site),
		URL:  strings.TrimRight(site.BaseURL, "/") + "/careers/",
	}
}

// Open navigates directly to the careers page.
func (c *Careers) Open(ctx context.Context) error {
	if err := c.navigate(c.URL); err != nil {
		return err
	}
	c.acceptCookiesIfPresent(ctx)
	return nil
}

// IsOpened reports whether the browser landed on a careers URL. Matching is
// by fragment, not equality: the menu navigation may land on a localized or
// trailing-slash variant.
func (c *Careers) IsOpened() (bool, error) {
	url, err := c.session().CurrentURL()
	if err != nil {
		return false, err
	}
	return strings.Contains(url, "careers"), nil
}

// LocationsBlockVisible reports whether the office locations block rendered.
func (c *Careers) LocationsBlockVisible(ctx context.Context) bool {
	return c.actions.IsVisible(ctx, locLocationsBlock, c.site.ExplicitWait)
}

// TeamsBlockVisible reports whether the teams block rendered.
func (c *Careers) TeamsBlockVisible(ctx context.Context) bool {
	return c.actions.IsVisible(ctx, locTeamsBlock, c.site.ExplicitWait)
}

// LifeAtInsiderBlockVisible reports whether the culture block rendered.
func (c *Careers) LifeAtInsiderBlockVisible(ctx context.Context) bool {
	return c.actions.IsVisible(ctx, locLifeAtInsiderBlock, c.site.ExplicitWait)
}

// AllBlocksVisible reports whether every key content block is displayed.
func (c *Careers) AllBlocksVisible(ctx context.Context) bool {
	return c.LocationsBlockVisible(ctx) &&
		c.TeamsBlockVisible(ctx) &&
		c.LifeAtInsiderBlockVisible(ctx)
}

// SeeAllQAJobs scrolls the link into view and clicks it. The link sits below
// the fold, so the scroll must land before the native click.
func (c *Careers) SeeAllQAJobs(ctx context.Context) error {
	if err := c.actions.ScrollIntoView(ctx, locSeeAllQAJobsLink, c.site.ExplicitWait); err != nil {
		return err
	}
	return c.actions.Click(ctx, locSeeAllQAJobsLink, c.site.ExplicitWait)
}
