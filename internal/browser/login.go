package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/haf/internal/portal"
	"github.com/spec-kit/haf/internal/settings"
)

// ErrMissingCredentials is returned when the portal asks for a Microsoft
// login and no credentials are configured.
var ErrMissingCredentials = errors.New("microsoft credentials not configured")

const mfaPollInterval = time.Second

type loginStage int

const (
	stagePortal loginStage = iota
	stageCredentials
	stagePrompt
	stageApproved
)

// stageOf places url in the Microsoft sign-in sequence.
func stageOf(login portal.Login, url string) loginStage {
	switch {
	case url == login.ApprovalURL:
		return stageApproved
	case !hasPrefix(url, login.MicrosoftPrefix):
		return stagePortal
	case login.PromptSuffix != "" && strings.HasSuffix(url, login.PromptSuffix):
		return stagePrompt
	default:
		return stageCredentials
	}
}

// Launch starts Chrome, opens the portal and completes the Microsoft login,
// waiting for MFA approval when the account requires it.
func Launch(ctx context.Context, profile portal.Profile, creds settings.Settings, opts Options) (*Session, error) {
	s, err := Start(opts)
	if err != nil {
		return nil, err
	}
	if err := s.Navigate(ctx, profile.URLs.Portal); err != nil {
		_ = s.Close()
		return nil, err
	}
	notify(opts, "- Driver Loaded.")

	loginCtx, cancel := context.WithTimeout(ctx, opts.Browser.LoginTimeout())
	defer cancel()
	if err := s.login(loginCtx, profile, creds, opts); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("microsoft login: %w", err)
	}
	notify(opts, "- Logged in.")
	return s, nil
}

func (s *Session) login(ctx context.Context, profile portal.Profile, creds settings.Settings, opts Options) error {
	login := profile.Login
	pause := func() error { return sleep(ctx, profile.Delays.LoginAnimation) }

	if err := pause(); err != nil {
		return err
	}
	url, err := s.CurrentURL(ctx)
	if err != nil {
		return err
	}
	if stageOf(login, url) == stagePortal {
		s.logger.Info("portal session reused")
		return nil
	}
	if creds.Email == "" || creds.Password == "" {
		return ErrMissingCredentials
	}

	tile, err := s.exists(ctx, login.AccountTile)
	if err != nil {
		return err
	}
	if tile {
		if err := s.Click(ctx, login.AccountTile); err != nil {
			return err
		}
		if url, err = s.CurrentURL(ctx); err != nil {
			return err
		}
		if stageOf(login, url) != stagePrompt {
			if err := s.SendKeys(ctx, login.PasswordInput, creds.Password+portal.Enter); err != nil {
				return err
			}
		}
	} else {
		if err := s.SendKeys(ctx, login.EmailInput, creds.Email+portal.Enter); err != nil {
			return err
		}
		if err := pause(); err != nil {
			return err
		}
		if err := s.SendKeys(ctx, login.PasswordInput, creds.Password+portal.Enter); err != nil {
			return err
		}
	}
	if err := pause(); err != nil {
		return err
	}

	if url, err = s.CurrentURL(ctx); err != nil {
		return err
	}
	if stageOf(login, url) != stagePrompt {
		return nil
	}

	staySignedIn, err := s.exists(ctx, login.StaySignedIn)
	if err != nil {
		return err
	}
	if !staySignedIn {
		notify(opts, "- MFA Confirmation Requested.")
		s.logger.Info("waiting for mfa approval")
		if remember, _ := s.exists(ctx, login.RememberMFA); remember {
			if err := s.Click(ctx, login.RememberMFA); err != nil {
				s.logger.Debug("remember mfa checkbox not clickable", zap.Error(err))
			}
		}
		if err := s.waitForApproval(ctx, login); err != nil {
			return err
		}
	}
	if err := s.Click(ctx, login.StaySignedIn); err != nil {
		return err
	}
	return s.Click(ctx, login.SubmitButton)
}

// waitForApproval polls the location until Microsoft reports the MFA
// approval or ctx ends.
func (s *Session) waitForApproval(ctx context.Context, login portal.Login) error {
	for {
		url, err := s.CurrentURL(ctx)
		if err != nil {
			return err
		}
		if stageOf(login, url) == stageApproved {
			return nil
		}
		if err := sleep(ctx, mfaPollInterval); err != nil {
			return fmt.Errorf("mfa approval: %w", err)
		}
	}
}

func notify(opts Options, msg string) {
	if opts.Notify != nil {
		opts.Notify(msg)
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
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
