package interact

import (
	"fmt"
	"sync"

	"github.com/qaops/insider-e2e/internal/browser"
)

// fakeSession is a scripted stand-in for a browser session. Lookup behavior
// is driven by per-locator hooks receiving the per-locator call count, so
// tests can model elements that appear, disappear, or churn between polls.
type fakeSession struct {
	mu sync.Mutex

	findElement  func(call int, loc browser.Locator) (browser.Element, error)
	findElements func(call int, loc browser.Locator) ([]browser.Element, error)
	currentURL   func(call int) (string, error)

	findCalls     map[string]int
	findAllCalls  map[string]int
	urlCalls      int
	scriptCalls   []scriptCall
	scriptResults map[string]interface{}

	title    string
	handles  []string
	switched []string
	quits    int
}

type scriptCall struct {
	script string
	args   []interface{}
}

func newFakeSession() *fakeSession {
	return &fakeSession{
		findCalls:     make(map[string]int),
		findAllCalls:  make(map[string]int),
		scriptResults: make(map[string]interface{}),
	}
}

func (s *fakeSession) Navigate(string) error { return nil }

func (s *fakeSession) FindElement(loc browser.Locator) (browser.Element, error) {
	s.mu.Lock()
	s.findCalls[loc.String()]++
	call := s.findCalls[loc.String()]
	fn := s.findElement
	s.mu.Unlock()
	if fn == nil {
		return nil, fmt.Errorf("no such element: %s", loc)
	}
	return fn(call, loc)
}

func (s *fakeSession) FindElements(loc browser.Locator) ([]browser.Element, error) {
	s.mu.Lock()
	s.findAllCalls[loc.String()]++
	call := s.findAllCalls[loc.String()]
	fn := s.findElements
	s.mu.Unlock()
	if fn == nil {
		return nil, nil
	}
	return fn(call, loc)
}

func (s *fakeSession) ExecuteScript(script string, args []interface{}) (interface{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scriptCalls = append(s.scriptCalls, scriptCall{script: script, args: args})
	return s.scriptResults[script], nil
}

func (s *fakeSession) CurrentURL() (string, error) {
	s.mu.Lock()
	s.urlCalls++
	call := s.urlCalls
	fn := s.currentURL
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

// fakeElement is a scripted element handle.
type fakeElement struct {
	mu sync.Mutex

	text      string
	textErr   error
	attrs     map[string]string
	displayed bool
	enabled   bool

	clickErr error
	clicks   int
	cleared  int
	typed    []string

	children func(loc browser.Locator) (browser.Element, error)
}

func visibleElement(text string) *fakeElement {
	return &fakeElement{text: text, displayed: true, enabled: true}
}

func staleError() error {
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

func (e *fakeElement) Attribute(name string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.attrs[name], nil
}

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
	fn := e.children
	e.mu.Unlock()
	if fn == nil {
		return nil, fmt.Errorf("no such element: %s", loc)
	}
	return fn(loc)
}

func (e *fakeElement) FindElements(loc browser.Locator) ([]browser.Element, error) {
	el, err := e.FindElement(loc)
	if err != nil {
		return nil, nil
	}
	return []browser.Element{el}, nil
}

// jobCard builds a card element exposing department and location fields
// under the given locators.
func jobCard(deptLoc, locLoc browser.Locator, dept, location string) *fakeElement {
	card := visibleElement("")
	card.children = func(loc browser.Locator) (browser.Element, error) {
		switch loc {
		case deptLoc:
			return visibleElement(dept), nil
		case locLoc:
			return visibleElement(location), nil
		}
		return nil, fmt.Errorf("no such element: %s", loc)
	}
	return card
}
