// Package pages models the site's pages as objects over the synchronization
// layer. Pages own locators and flows; all waiting goes through interact so
// no page ever calls the raw driver with an unbounded operation.
package pages

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/qaops/insider-e2e/internal/browser"
	"github.com/qaops/insider-e2e/internal/config"
	"github.com/qaops/insider-e2e/internal/interact"
)

// Locators shared across pages.
var (
	locAcceptCookies = browser.ByID("wt-cli-accept-all-btn")
	locBody          = browser.ByTag("body")
)

type base struct {
	actions *interact.Actions
	logger  *zap.Logger
	site    config.SiteConfig
}

func newBase(actions *interact.Actions, logger *zap.Logger, site config.SiteConfig) base {
	if logger == nil {
		logger = zap.NewNop()
	}
	return base{actions: actions, logger: logger, site: site}
}

func (b *base) session() browser.Session { return b.actions.Session() }

func (b *base) navigate(url string) error {
	b.logger.Info("Navigating", zap.String("url", url))
	return b.session().Navigate(url)
}

// acceptCookiesIfPresent dismisses the consent banner when it shows up.
// Absence and dismissal failures are both non-fatal; the banner does not
// render on every session.
func (b *base) acceptCookiesIfPresent(ctx context.Context) {
	if !b.actions.IsVisible(ctx, locAcceptCookies, b.site.BannerWait) {
		return
	}
	if err := b.actions.Click(ctx, locAcceptCookies, b.site.BannerWait); err != nil {
		b.logger.Debug("Cookie banner dismissal failed", zap.Error(err))
	}
}

// pause sleeps cooperatively, honoring context cancellation.
func pause(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
