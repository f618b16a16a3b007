package browser

import (
	"fmt"

	"github.com/tebeka/selenium"
	"github.com/tebeka/selenium/chrome"
	"go.uber.org/zap"

	"github.com/qaops/insider-e2e/internal/config"
)

// seleniumSession adapts a remote WebDriver to the Session interface. When
// the session was started against a locally managed chromedriver, it also
// owns the driver service and stops it on Quit.
type seleniumSession struct {
	wd      selenium.WebDriver
	service *selenium.Service
	logger  *zap.Logger
}

// NewSession starts a browser session according to the configuration. A
// configured remote endpoint routes to a pooled grid browser (the
// containerized execution mode); otherwise a local chromedriver is started
// and owned by the returned session.
//
// No session-wide implicit wait is configured: every wait above this layer
// carries its own explicit timeout.
func NewSession(cfg config.BrowserConfig, logger *zap.Logger) (Session, error) {
	caps := selenium.Capabilities{"browserName": "chrome"}
	caps.AddChrome(chrome.Capabilities{Args: chromeArgs(cfg)})

	if cfg.RemoteURL != "" {
		logger.Info("Starting remote browser session", zap.String("endpoint", cfg.RemoteURL))
		wd, err := selenium.NewRemote(caps, cfg.RemoteURL)
		if err != nil {
			return nil, fmt.Errorf("failed to start remote session at %s: %w", cfg.RemoteURL, err)
		}
		return &seleniumSession{wd: wd, logger: logger}, nil
	}

	logger.Info("Starting local browser session",
		zap.String("driver", cfg.DriverPath), zap.Int("port", cfg.DriverPort))
	service, err := selenium.NewChromeDriverService(cfg.DriverPath, cfg.DriverPort)
	if err != nil {
		return nil, fmt.Errorf("failed to start chromedriver: %w", err)
	}

	wd, err := selenium.NewRemote(caps, fmt.Sprintf("http://127.0.0.1:%d/wd/hub", cfg.DriverPort))
	if err != nil {
		service.Stop()
		return nil, fmt.Errorf("failed to attach to local chromedriver: %w", err)
	}
	return &seleniumSession{wd: wd, service: service, logger: logger}, nil
}

// chromeArgs builds the Chrome command line. The containerized grid nodes
// need the sandbox and shared memory workarounds; local runs only get the
// window sizing.
func chromeArgs(cfg config.BrowserConfig) []string {
	args := make([]string, 0, 8)
	if cfg.RemoteURL != "" {
		if cfg.Headless {
			args = append(args, "--headless=new")
		}
		args = append(args,
			"--no-sandbox",
			"--disable-dev-shm-usage",
			"--disable-gpu",
		)
	}
	args = append(args,
		fmt.Sprintf("--window-size=%d,%d", cfg.WindowWidth, cfg.WindowHeight),
		"--start-maximized",
	)
	return append(args, cfg.ExtraArgs...)
}

func (s *seleniumSession) Navigate(url string) error {
	return s.wd.Get(url)
}

func (s *seleniumSession) FindElement(loc Locator) (Element, error) {
	el, err := s.wd.FindElement(string(loc.Strategy), loc.Value)
	if err != nil {
		return nil, classify(err, loc)
	}
	return &seleniumElement{el: el, loc: loc}, nil
}

func (s *seleniumSession) FindElements(loc Locator) ([]Element, error) {
	raw, err := s.wd.FindElements(string(loc.Strategy), loc.Value)
	if err != nil {
		return nil, classify(err, loc)
	}
	els := make([]Element, len(raw))
	for i, el := range raw {
		els[i] = &seleniumElement{el: el, loc: loc}
	}
	return els, nil
}

func (s *seleniumSession) ExecuteScript(script string, args []interface{}) (interface{}, error) {
	return s.wd.ExecuteScript(script, unwrapArgs(args))
}

func (s *seleniumSession) CurrentURL() (string, error)     { return s.wd.CurrentURL() }
func (s *seleniumSession) Title() (string, error)          { return s.wd.Title() }
func (s *seleniumSession) WindowHandles() ([]string, error) { return s.wd.WindowHandles() }
func (s *seleniumSession) SwitchWindow(handle string) error { return s.wd.SwitchWindow(handle) }

func (s *seleniumSession) Quit() error {
	err := s.wd.Quit()
	if s.service != nil {
		if stopErr := s.service.Stop(); stopErr != nil && err == nil {
			err = stopErr
		}
	}
	return err
}

// unwrapArgs replaces adapter elements with the underlying WebElement values
// so the wire protocol serializes them as DOM node references.
func unwrapArgs(args []interface{}) []interface{} {
	out := make([]interface{}, len(args))
	for i, a := range args {
		if el, ok := a.(*seleniumElement); ok {
			out[i] = el.el
			continue
		}
		out[i] = a
	}
	return out
}

type seleniumElement struct {
	el  selenium.WebElement
	loc Locator
}

func (e *seleniumElement) Click() error              { return classify(e.el.Click(), e.loc) }
func (e *seleniumElement) Clear() error              { return classify(e.el.Clear(), e.loc) }
func (e *seleniumElement) SendKeys(text string) error { return classify(e.el.SendKeys(text), e.loc) }

func (e *seleniumElement) Text() (string, error) {
	text, err := e.el.Text()
	return text, classify(err, e.loc)
}

func (e *seleniumElement) Attribute(name string) (string, error) {
	val, err := e.el.GetAttribute(name)
	return val, classify(err, e.loc)
}

func (e *seleniumElement) IsDisplayed() (bool, error) {
	ok, err := e.el.IsDisplayed()
	return ok, classify(err, e.loc)
}

func (e *seleniumElement) IsEnabled() (bool, error) {
	ok, err := e.el.IsEnabled()
	return ok, classify(err, e.loc)
}

func (e *seleniumElement) FindElement(loc Locator) (Element, error) {
	el, err := e.el.FindElement(string(loc.Strategy), loc.Value)
	if err != nil {
		return nil, classify(err, loc)
	}
	return &seleniumElement{el: el, loc: loc}, nil
}

func (e *seleniumElement) FindElements(loc Locator) ([]Element, error) {
	raw, err := e.el.FindElements(string(loc.Strategy), loc.Value)
	if err != nil {
		return nil, classify(err, loc)
	}
	els := make([]Element, len(raw))
	for i, el := range raw {
		els[i] = &seleniumElement{el: el, loc: loc}
	}
	return els, nil
}
