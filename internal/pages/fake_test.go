package pages

import (
	"fmt"
	"sync"
	"time"

	"github.com/qaops/insider-e2e/internal/browser"
	"github.com/qaops/insider-e2e/internal/config"
	"github.com/qaops/insider-e2e/internal/interact"
)

// testSite shrinks every wait so page flows run in milliseconds.
func testSite() config.SiteConfig {
	return config.SiteConfig{
		BaseURL:             "https://useinsider.com",
		ExplicitWait:        150 * time.Millisecond,
		LongWait:            400 * time.Millisecond,
		BannerWait:          40 * time.Millisecond,
		PollInterval:        5 * time.Millisecond,
		GateInterval:        5 * time.Millisecond,
		StabilityInterval:   5 * time.Millisecond,
		GateMaxReadFailures: 10,
		StabilityThreshold:  3,
	}
}

type scriptCall struct {
	script string
	args   []interface{}
}

// fakeSession is a map-driven DOM stand-in: locator lookups dispatch to
// per-locator hooks receiving that locator's call count.
type fakeSession struct {
	mu sync.Mutex

	dom    map[string]func(call int) (browser.Element, error)
	domAll map[string]func(call int) ([]browser.Element, error)
	calls  map[string]int

	urlFn func(call int) (string, error)
	urls  int

	navigated     []string
	scriptCalls   []scriptCall
	scriptResults map[string]interface{}

	title    string
	handles  []string
	switched []string
	quits    int
}

func newFakeSession() *fakeSession {
	return &fakeSession{
		dom:           make(map[string]func(call int) (browser.Element, error)),
		domAll:        make(map[string]func(call int) ([]browser.Element, error)),
		calls:         make(map[string]int),
		scriptResults: make(map[string]interface{}),
	}
}

// place makes the locator resolve to a fixed element from now on.
func (s *fakeSession) place(loc browser.Locator, el browser.Element) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dom[loc.String()] = func(int) (browser.Element, error) { return el, nil }
}

// placeFn installs a call-aware resolver for the locator.
func (s *fakeSession) placeFn(loc browser.Locator, fn func(call int) (browser.Element, error)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dom[loc.String()] = fn
}

// placeAll makes the collection locator resolve to a fixed slice.
func (s *fakeSession) placeAll(loc browser.Locator, els []browser.Element) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.domAll[loc.String()] = func(int) ([]browser.Element, error) { return els, nil }
}

func (s *fakeSession) placeAllFn(loc browser.Locator, fn func(call int) ([]browser.Element, error)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.domAll[loc.String()] = fn
}

func (s *fakeSession) callCount(loc browser.Locator) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[loc.String()]
}

func (s *fakeSession) Navigate(url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.navigated = append(s.navigated, url)
	return nil
}

func (s *fakeSession) FindElement(loc browser.Locator) (browser.Element, error) {
	s.mu.Lock()
	s.calls[loc.String()]++
	call := s.calls[loc.String()]
	fn := s.dom[loc.String()]
	s.mu.Unlock()
	if fn == nil {
		return nil, fmt.Errorf("no such element: %s", loc)
	}
	return fn(call)
}

func (s *fakeSession) FindElements(loc browser.Locator) ([]browser.Element, error) {
	s.mu.Lock()
	s.calls[loc.String()]++
	call := s.calls[loc.String()]
	fn := s.domAll[loc.String()]
	s.mu.Unlock()
	if fn == nil {
		return nil, nil
	}
	return fn(call)
}

func (s *fakeSession) ExecuteScript(script string, args []interface{}) (interface{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scriptCalls = append(s.scriptCalls, scriptCall{script: script, args: args})
	return s.scriptResults[script], nil
}

func (s *fakeSession) CurrentURL() (string, error) {
	s.mu.Lock()
	s.urls++
	call := s.urls
	fn := s.urlFn
	s.mu.Unlock()
	if fn == nil {
		return "", nil
	}
	return fn(call)
}

func (s *fakeSession) Title() (string, error)           { return s.title, nil }
func (s *fakeSession) WindowHandles() ([]string, error) { return s.handles, nil }

func (s *fakeSession) SwitchWindow(handle string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.switched = append(s.switched, handle)
	return nil
}

func (s *fakeSession) Quit() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quits++
	return nil
}

func (s *fakeSession) scripts() []scriptCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]scriptCall, len(s.scriptCalls))
	copy(out, s.scriptCalls)
	return out
}

func (s *fakeSession) scriptsFor(script string) []scriptCall {
	var out []scriptCall
	for _, c := range s.scripts() {
		if c.script == script {
			out = append(out, c)
		}
	}
	return out
}

func (s *fakeSession) actions() *interact.Actions {
	return interact.New(s, nil, 5*time.Millisecond)
}

// fakeElement is a scripted element handle; nested lookups dispatch through
// childFn with the child locator's per-element call count.
type fakeElement struct {
	mu sync.Mutex

	text      string
	textErr   error
	displayed bool
	enabled   bool

	clickErr error
	clicks   int
	cleared  int
	typed    []string

	childFn    func(call int, loc browser.Locator) (browser.Element, error)
	childCalls map[string]int
}

func visibleElement(text string) *fakeElement {
	return &fakeElement{text: text, displayed: true, enabled: true, childCalls: make(map[string]int)}
}

func staleErr() error {
	return &browser.StaleReferenceError{Err: fmt.Errorf("stale element reference: element is not attached to the page document")}
}

func (e *fakeElement) Click() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.clicks++
	return e.clickErr
}

func (e *fakeElement) Clear() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cleared++
	return nil
}

func (e *fakeElement) SendKeys(text string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.typed = append(e.typed, text)
	return nil
}

func (e *fakeElement) Text() (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.text, e.textErr
}

func (e *fakeElement) Attribute(string) (string, error) { return "", nil }

func (e *fakeElement) IsDisplayed() (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.displayed, nil
}

func (e *fakeElement) IsEnabled() (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.enabled, nil
}

func (e *fakeElement) FindElement(loc browser.Locator) (browser.Element, error) {
	e.mu.Lock()
	if e.childCalls == nil {
		e.childCalls = make(map[string]int)
	}
	e.childCalls[loc.String()]++
	call := e.childCalls[loc.String()]
	fn := e.childFn
	e.mu.Unlock()
	if fn == nil {
		return nil, fmt.Errorf("no such element: %s", loc)
	}
	return fn(call, loc)
}

func (e *fakeElement) FindElements(loc browser.Locator) ([]browser.Element, error) {
	el, err := e.FindElement(loc)
	if err != nil {
		return nil, nil
	}
	return []browser.Element{el}, nil
}

// card builds a job card whose title/department/location children resolve to
// fixed texts.
func card(title, dept, location string) *fakeElement {
	c := visibleElement("")
	c.childFn = func(call int, loc browser.Locator) (browser.Element, error) {
		switch loc {
		case locJobTitle:
			return visibleElement(title), nil
		case locJobDepartment:
			return visibleElement(dept), nil
		case locJobLocation:
			return visibleElement(location), nil
		case locViewRole:
			return visibleElement("View Role"), nil
		}
		return nil, fmt.Errorf("no such element: %s", loc)
	}
	return c
}
