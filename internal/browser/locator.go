package browser

import "fmt"

// Strategy identifies how a selector string is interpreted by the driver.
type Strategy string

const (
	StrategyID       Strategy = "id"
	StrategyCSS      Strategy = "css selector"
	StrategyXPath    Strategy = "xpath"
	StrategyTag      Strategy = "tag name"
	StrategyLinkText Strategy = "partial link text"
)

// Locator is an immutable strategy+selector pair identifying zero or more
// elements. It has no behavior of its own; resolution is owned by the
// session. Equality is structural, so locators are safe map keys.
type Locator struct {
	Strategy Strategy
	Value    string
}

func ByID(id string) Locator { return Locator{Strategy: StrategyID, Value: id} }

func ByCSS(sel string) Locator { return Locator{Strategy: StrategyCSS, Value: sel} }

func ByXPath(expr string) Locator { return Locator{Strategy: StrategyXPath, Value: expr} }

func ByTag(name string) Locator { return Locator{Strategy: StrategyTag, Value: name} }

func ByLinkText(s string) Locator { return Locator{Strategy: StrategyLinkText, Value: s} }

// IsZero reports whether the locator has not been populated.
func (l Locator) IsZero() bool { return l.Strategy == "" && l.Value == "" }

func (l Locator) String() string {
	return fmt.Sprintf("%s=%q", l.Strategy, l.Value)
}
