// Package portaltest provides a scripted portal.Session for tests.
package portaltest

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/spec-kit/haf/internal/portal"
)

var _ portal.Session = (*Session)(nil)

// Call is one recorded session interaction.
type Call struct {
	Op       string
	Selector string
	Keys     string
}

func (c Call) String() string {
	switch {
	case c.Selector != "" && c.Keys != "":
		return fmt.Sprintf("%s %s %q", c.Op, c.Selector, c.Keys)
	case c.Selector != "":
		return c.Op + " " + c.Selector
	case c.Keys != "":
		return fmt.Sprintf("%s %q", c.Op, c.Keys)
	}
	return c.Op
}

// Session records every call. CurrentURL answers from URLs in order and
// repeats the last one when they run out. FailOn makes the first call whose
// op and selector match return Err.
type Session struct {
	mu     sync.Mutex
	URLs   []string
	FailOn Call
	Err    error
	calls  []Call
	urlPos int
	closed bool
}

// New returns a session whose CurrentURL answers with urls.
func New(urls ...string) *Session {
	return &Session{URLs: urls}
}

func (s *Session) record(c Call) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, c)
	if s.Err != nil && s.FailOn.Op == c.Op && (s.FailOn.Selector == "" || s.FailOn.Selector == c.Selector) {
		return s.Err
	}
	return nil
}

// Calls returns a copy of the recorded calls.
func (s *Session) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

// Count returns how many recorded calls match op and, when not empty, selector.
func (s *Session) Count(op, selector string) int {
	n := 0
	for _, c := range s.Calls() {
		if c.Op == op && (selector == "" || c.Selector == selector) {
			n++
		}
	}
	return n
}

// Transcript renders the recorded calls one per line.
func (s *Session) Transcript() string {
	var b strings.Builder
	for _, c := range s.Calls() {
		b.WriteString(c.String())
		b.WriteByte('\n')
	}
	return b.String()
}

// Closed reports whether Close was called.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Session) Navigate(ctx context.Context, url string) error {
	return s.record(Call{Op: "navigate", Selector: url})
}

func (s *Session) Reload(ctx context.Context) error {
	return s.record(Call{Op: "reload"})
}

func (s *Session) CurrentURL(ctx context.Context) (string, error) {
	if err := s.record(Call{Op: "url"}); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.URLs) == 0 {
		return "", nil
	}
	url := s.URLs[s.urlPos]
	if s.urlPos < len(s.URLs)-1 {
		s.urlPos++
	}
	return url, nil
}

func (s *Session) Click(ctx context.Context, selector string) error {
	return s.record(Call{Op: "click", Selector: selector})
}

func (s *Session) SendKeys(ctx context.Context, selector, keys string) error {
	return s.record(Call{Op: "send", Selector: selector, Keys: keys})
}

func (s *Session) Clear(ctx context.Context, selector string) error {
	return s.record(Call{Op: "clear", Selector: selector})
}

func (s *Session) Type(ctx context.Context, keys string) error {
	return s.record(Call{Op: "type", Keys: keys})
}

func (s *Session) Focus(ctx context.Context) error {
	return s.record(Call{Op: "focus"})
}

func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
