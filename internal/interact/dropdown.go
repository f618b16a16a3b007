package interact

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/qaops/insider-e2e/internal/browser"
)

// Dropdown drives a scripted (non-native) dropdown widget. The widget
// renders its option list asynchronously, scrolls inside a custom container,
// and toggles its selection state from the pointer down/up sequence, so a
// plain element click is not enough to commit a choice.
type Dropdown struct {
	actions *Actions
	logger  *zap.Logger

	// Control is the always-visible display element that opens the widget.
	Control browser.Locator
	// Panel is the scrollable container holding the rendered options.
	Panel browser.Locator
	// Options matches every rendered option item.
	Options browser.Locator
}

// NewDropdown builds a driver for one dropdown instance.
func NewDropdown(actions *Actions, logger *zap.Logger, control, panel, options browser.Locator) *Dropdown {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dropdown{actions: actions, logger: logger, Control: control, Panel: panel, Options: options}
}

// Select walks the widget through one committed selection:
// open the control, wait for the option list to render, scroll the target
// option into the panel's viewport, activate it with a synthetic
// down/up/click sequence, and wait until at least one settle element is
// present and clickable again.
//
// A missing option is a fatal NotFoundError with no retry: a selector that
// matches nothing is a configuration error and must not be masked. The
// settle condition only proves the list re-rendered; whether the rendered
// set is *correct* is the stability detector's job.
func (d *Dropdown) Select(ctx context.Context, option, settle browser.Locator, timeout time.Duration) error {
	// Opening.
	if err := d.actions.Click(ctx, d.Control, timeout); err != nil {
		return fmt.Errorf("opening dropdown %s: %w", d.Control, err)
	}

	// OptionsVisible.
	panel, err := d.actions.Await(ctx, d.Panel, Visible, timeout)
	if err != nil {
		return err
	}
	if _, err := d.actions.AwaitAll(ctx, d.Options, timeout); err != nil {
		return err
	}

	target, err := d.actions.Await(ctx, option, Present, timeout)
	if err != nil {
		return err
	}

	// OptionScrolledIntoView. The panel scrolls internally, so the native
	// scroll-into-view does not move it; position the panel's scrollTop from
	// the option's own offset instead.
	session := d.actions.Session()
	offset, err := session.ExecuteScript(scriptOptionOffset, []interface{}{target})
	if err != nil {
		return fmt.Errorf("reading option offset for %s: %w", option, err)
	}
	if _, err := session.ExecuteScript(scriptPanelScroll, []interface{}{panel, offset}); err != nil {
		return fmt.Errorf("scrolling option %s into view: %w", option, err)
	}

	// OptionActivated.
	d.logger.Debug("Activating dropdown option", zap.String("option", option.String()))
	if _, err := session.ExecuteScript(scriptActivateOption, []interface{}{target}); err != nil {
		return fmt.Errorf("activating option %s: %w", option, err)
	}

	// Committed: the widget re-renders the dependent list; do not return
	// until it has at least one interactable entry again.
	if _, err := d.actions.AwaitAll(ctx, settle, timeout); err != nil {
		return err
	}
	if _, err := d.actions.Await(ctx, settle, Clickable, timeout); err != nil {
		return err
	}
	return nil
}

const (
	scriptOptionOffset = `return arguments[0].offsetTop;`
	// Leave headroom above the option so it lands inside the visible band,
	// not flush against the panel edge.
	scriptPanelScroll = `arguments[0].scrollTop = arguments[1] - 100;`

	// The widget commits selection from the mousedown/mouseup pair; the
	// trailing click covers handlers bound to click alone. Order matters.
	scriptActivateOption = `
		var element = arguments[0];
		var down = new MouseEvent('mousedown', {bubbles: true, cancelable: true, view: window});
		element.dispatchEvent(down);
		var up = new MouseEvent('mouseup', {bubbles: true, cancelable: true, view: window});
		element.dispatchEvent(up);
		element.click();
	`
)
