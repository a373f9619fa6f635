// Package portal describes the ITSM web portal HAF drives: the browser
// session contract and the profile of URLs, selectors and pacing delays.
package portal

import "context"

// Keys understood by Session.Type and Session.SendKeys.
const (
	Tab   = "\t"
	Enter = "\r"
	Space = " "
)

// Session is a live browser tab logged into the portal. Selector arguments
// are XPath expressions; implementations wait for the element to be visible
// before acting on it.
type Session interface {
	Navigate(ctx context.Context, url string) error
	Reload(ctx context.Context) error
	CurrentURL(ctx context.Context) (string, error)
	Click(ctx context.Context, selector string) error
	// SendKeys types keys into the element matched by selector.
	SendKeys(ctx context.Context, selector, keys string) error
	// Clear empties a text input.
	Clear(ctx context.Context, selector string) error
	// Type sends keys to whichever element has focus.
	Type(ctx context.Context, keys string) error
	// Focus brings the browser window to the front; keyboard navigation of
	// the ticket menu does not work on a background window.
	Focus(ctx context.Context) error
	Close() error
}
