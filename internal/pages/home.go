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
	locCompanyMenu = browser.ByXPath("//a[contains(text(),'Company')]")
	locCareersMenu = browser.ByXPath("//a[contains(text(),'Careers')]")
)

// Home is the site's landing page.
type Home struct {
	base
	URL string
}

// NewHome builds the home page object. Its URL is the base URL with a
// trailing slash; opened-ness is checked by exact URL equality.
func NewHome(actions *interact.Actions, logger *zap.Logger, site config.SiteConfig) *Home {
	return &Home{
		base: newBase(actions, logger, site),
		URL:  strings.TrimRight(site.BaseURL, "/") + "/",
	}
}

// Open navigates to the home page and dismisses the cookie banner if it
// appears.
func (h *Home) Open(ctx context.Context) error {
	if err := h.navigate(h.URL); err != nil {
		return err
	}
	h.acceptCookiesIfPresent(ctx)
	return nil
}

// IsOpened reports whether the home page actually loaded: the current URL
// equals the expected one and the title carries the brand name.
func (h *Home) IsOpened(ctx context.Context) (bool, error) {
	url, err := h.session().CurrentURL()
	if err != nil {
		return false, err
	}
	title, err := h.session().Title()
	if err != nil {
		return false, err
	}
	return url == h.URL && strings.Contains(title, "Insider"), nil
}

// NavigateToCareers walks the top navigation: Company, then Careers.
func (h *Home) NavigateToCareers(ctx context.Context) error {
	if err := h.actions.Click(ctx, locCompanyMenu, h.site.ExplicitWait); err != nil {
		return err
	}
	return h.actions.Click(ctx, locCareersMenu, h.site.ExplicitWait)
}
