// Package browser drives a real Chrome instance through the DevTools
// protocol and implements portal.Session on top of it.
package browser

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/spec-kit/haf/internal/config"
	"github.com/spec-kit/haf/internal/portal"
)

const navigateTimeout = 60 * time.Second

// Options configures Launch.
type Options struct {
	Browser     config.BrowserConfig
	UserDataDir string
	Logger      *zap.Logger
	// Notify receives operator-facing progress lines such as the MFA prompt.
	Notify func(msg string)
}

// Session is a Chrome tab logged into the portal.
type Session struct {
	ctx           context.Context
	cancelTab     context.CancelFunc
	cancelAlloc   context.CancelFunc
	actionTimeout time.Duration
	logger        *zap.Logger
	closeOnce     sync.Once
}

var _ portal.Session = (*Session)(nil)

func allocatorOptions(opts Options) []chromedp.ExecAllocatorOption {
	out := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	out = append(out,
		chromedp.Flag("headless", opts.Browser.Headless),
		chromedp.Flag("start-maximized", true),
		chromedp.Flag("disable-extensions", true),
	)
	if opts.UserDataDir != "" {
		out = append(out, chromedp.UserDataDir(opts.UserDataDir))
	}
	if opts.Browser.ExecPath != "" {
		out = append(out, chromedp.ExecPath(opts.Browser.ExecPath))
	}
	return out
}

// Start opens Chrome without logging in. The returned session owns the
// browser process until Close.
func Start(opts Options) (*Session, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), allocatorOptions(opts)...)
	tabCtx, cancelTab := chromedp.NewContext(allocCtx, chromedp.WithLogf(logger.Sugar().Debugf))

	if err := chromedp.Run(tabCtx); err != nil {
		cancelTab()
		cancelAlloc()
		return nil, fmt.Errorf("start chrome: %w", err)
	}
	logger.Info("chrome started", zap.Bool("headless", opts.Browser.Headless), zap.String("user_data_dir", opts.UserDataDir))

	return &Session{
		ctx:           tabCtx,
		cancelTab:     cancelTab,
		cancelAlloc:   cancelAlloc,
		actionTimeout: opts.Browser.ActionTimeout(),
		logger:        logger,
	}, nil
}

// run executes actions on the tab, bounded by timeout and by the caller's ctx.
func (s *Session) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	err := chromedp.Run(runCtx, actions...)
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

func (s *Session) Navigate(ctx context.Context, url string) error {
	if err := s.run(ctx, navigateTimeout, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	return nil
}

func (s *Session) Reload(ctx context.Context) error {
	if err := s.run(ctx, navigateTimeout, chromedp.Reload()); err != nil {
		return fmt.Errorf("reload: %w", err)
	}
	return nil
}

func (s *Session) CurrentURL(ctx context.Context) (string, error) {
	var url string
	if err := s.run(ctx, s.actionTimeout, chromedp.Location(&url)); err != nil {
		return "", fmt.Errorf("read location: %w", err)
	}
	return url, nil
}

func (s *Session) Click(ctx context.Context, selector string) error {
	err := s.run(ctx, s.actionTimeout,
		chromedp.WaitVisible(selector, chromedp.BySearch),
		chromedp.Click(selector, chromedp.BySearch),
	)
	if err != nil {
		return fmt.Errorf("click %s: %w", selector, err)
	}
	return nil
}

func (s *Session) SendKeys(ctx context.Context, selector, keys string) error {
	err := s.run(ctx, s.actionTimeout,
		chromedp.WaitVisible(selector, chromedp.BySearch),
		chromedp.SendKeys(selector, keys, chromedp.BySearch),
	)
	if err != nil {
		return fmt.Errorf("send keys to %s: %w", selector, err)
	}
	return nil
}

func (s *Session) Clear(ctx context.Context, selector string) error {
	err := s.run(ctx, s.actionTimeout,
		chromedp.WaitVisible(selector, chromedp.BySearch),
		chromedp.Clear(selector, chromedp.BySearch),
	)
	if err != nil {
		return fmt.Errorf("clear %s: %w", selector, err)
	}
	return nil
}

func (s *Session) Type(ctx context.Context, keys string) error {
	if err := s.run(ctx, s.actionTimeout, chromedp.KeyEvent(keys)); err != nil {
		return fmt.Errorf("type %q: %w", keys, err)
	}
	return nil
}

func (s *Session) Focus(ctx context.Context) error {
	if err := s.run(ctx, s.actionTimeout, page.BringToFront()); err != nil {
		return fmt.Errorf("focus window: %w", err)
	}
	return nil
}

// Close shuts the tab and the browser process.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.cancelTab()
		s.cancelAlloc()
		s.logger.Info("chrome closed")
	})
	return nil
}

// exists reports whether selector matches a node right now, without waiting.
func (s *Session) exists(ctx context.Context, selector string) (bool, error) {
	var nodes []*cdp.Node
	err := s.run(ctx, s.actionTimeout, chromedp.Nodes(selector, &nodes, chromedp.BySearch, chromedp.AtLeast(0)))
	if err != nil {
		return false, err
	}
	return len(nodes) > 0, nil
}

func hasPrefix(url, prefix string) bool {
	return prefix != "" && strings.HasPrefix(url, prefix)
}
