// Package browser is the boundary to the WebDriver. Everything above this
// package talks to the Session/Element capability interfaces; only the
// adapter in this package knows which client library is underneath.
package browser

// Session is one browser session. All interactions within a test are
// synchronous round-trips through a single Session; concurrent test
// executions must each own their own Session.
type Session interface {
	// Navigate loads the given URL in the current window.
	Navigate(url string) error

	// FindElement resolves the locator to the first matching element.
	FindElement(loc Locator) (Element, error)
	// FindElements resolves the locator to all matching elements. An empty
	// result is not an error.
	FindElements(loc Locator) ([]Element, error)

	// ExecuteScript runs JavaScript in the page. Element values produced by
	// this Session may be passed in args and are handed to the script as DOM
	// nodes.
	ExecuteScript(script string, args []interface{}) (interface{}, error)

	CurrentURL() (string, error)
	Title() (string, error)

	WindowHandles() ([]string, error)
	SwitchWindow(handle string) error

	// Quit ends the session and closes the browser. It must be called
	// unconditionally at test end, pass or fail.
	Quit() error
}

// Element is a live reference to a DOM node, owned by the Session. It
// becomes stale when the underlying node is removed or replaced by a page
// re-render; stale handles surface StaleReferenceError on next access.
type Element interface {
	Click() error
	Clear() error
	SendKeys(text string) error

	Text() (string, error)
	Attribute(name string) (string, error)

	IsDisplayed() (bool, error)
	IsEnabled() (bool, error)

	FindElement(loc Locator) (Element, error)
	FindElements(loc Locator) ([]Element, error)
}
