package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/spec-kit/haf/internal/portal"
)

// script runs session steps in order and stops at the first error, which is
// kept in err. Every step checks the context first.
type script struct {
	ctx     context.Context
	session portal.Session
	err     error
}

func newScript(ctx context.Context, session portal.Session) *script {
	return &script{ctx: ctx, session: session}
}

func (s *script) do(step string, fn func() error) {
	if s.err != nil {
		return
	}
	if err := s.ctx.Err(); err != nil {
		s.err = err
		return
	}
	if err := fn(); err != nil {
		s.err = fmt.Errorf("%s: %w", step, err)
	}
}

func (s *script) navigate(url string) {
	s.do("navigate "+url, func() error { return s.session.Navigate(s.ctx, url) })
}

func (s *script) reload() {
	s.do("reload", func() error { return s.session.Reload(s.ctx) })
}

func (s *script) click(selector string) {
	s.do("click "+selector, func() error { return s.session.Click(s.ctx, selector) })
}

func (s *script) sendKeys(selector, keys string) {
	s.do("send keys to "+selector, func() error { return s.session.SendKeys(s.ctx, selector, keys) })
}

// replace overwrites the text of an input.
func (s *script) replace(selector, text string) {
	s.do("clear "+selector, func() error { return s.session.Clear(s.ctx, selector) })
	s.sendKeys(selector, text)
}

func (s *script) typeKeys(keys string) {
	s.do("type", func() error { return s.session.Type(s.ctx, keys) })
}

func (s *script) focus() {
	s.do("focus", func() error { return s.session.Focus(s.ctx) })
}

func (s *script) currentURL() string {
	var url string
	s.do("read url", func() error {
		var err error
		url, err = s.session.CurrentURL(s.ctx)
		return err
	})
	return url
}

func (s *script) pause(d time.Duration) {
	s.do("wait", func() error { return sleep(s.ctx, d) })
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
