// File: internal/session/authenticator.go
package session

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"go.uber.org/zap"

	"github.com/riku-sakamoto/manabo-cli/api/schemas"
	"github.com/riku-sakamoto/manabo-cli/internal/browser"
	"github.com/riku-sakamoto/manabo-cli/internal/config"
)

// Identity-provider form artifacts. The portal fronts a Shibboleth login
// whose field ids are stable across pages.
const (
	usernameSelector = "#username"
	passwordSelector = "#password"
	submitSelector   = `input[type="submit"], button[type="submit"]`
)

// Authenticator drives the federated login handshake against the portal.
// One attempt, one determinate outcome; it never retries and never persists
// anything itself.
type Authenticator struct {
	browser   *browser.Manager
	cfg       *config.Config
	logger    *zap.Logger
	authedURL *regexp.Regexp
}

var _ schemas.Authenticator = (*Authenticator)(nil)

// NewAuthenticator creates an authenticator. The authenticated-domain
// pattern comes from configuration and is compiled once.
func NewAuthenticator(mgr *browser.Manager, cfg *config.Config, logger *zap.Logger) (*Authenticator, error) {
	pattern, err := regexp.Compile(cfg.Portal.AuthenticatedPattern)
	if err != nil {
		return nil, fmt.Errorf("invalid authenticated_pattern %q: %w", cfg.Portal.AuthenticatedPattern, err)
	}
	return &Authenticator{
		browser:   mgr,
		cfg:       cfg,
		logger:    logger.Named("authenticator"),
		authedURL: pattern,
	}, nil
}

// Authenticate performs the login handshake: open the login entry point,
// wait for the credential fields, submit, wait for the redirect back onto
// the authenticated domain, then export the resulting session state.
func (a *Authenticator) Authenticate(ctx context.Context, creds schemas.Credentials) (*schemas.SessionState, error) {
	if creds.Username == "" || creds.Password == "" {
		return nil, &schemas.AuthError{
			Reason:      "missing credentials",
			Remediation: remediationText,
		}
	}

	page, err := a.browser.NewPage(ctx)
	if err != nil {
		return nil, &schemas.AuthError{Reason: "failed to open login page scope", Err: err}
	}
	defer page.Close()

	a.logger.Info("Starting login handshake.", zap.String("login_url", a.cfg.Portal.LoginURL))

	if err := page.Navigate(ctx, a.cfg.Portal.LoginURL); err != nil {
		return nil, &schemas.AuthError{Reason: "failed to reach login entry point", Err: err}
	}

	fieldTimeout := a.cfg.Network.FieldWaitTimeout
	if err := page.WaitVisible(ctx, usernameSelector, fieldTimeout); err != nil {
		return nil, &schemas.AuthError{Reason: "timeout waiting for identity field", Err: err}
	}
	if err := page.WaitVisible(ctx, passwordSelector, fieldTimeout); err != nil {
		return nil, &schemas.AuthError{Reason: "timeout waiting for secret field", Err: err}
	}

	if err := page.Fill(ctx, usernameSelector, creds.Username); err != nil {
		return nil, &schemas.AuthError{Reason: "failed to fill identity field", Err: err}
	}
	if err := page.Fill(ctx, passwordSelector, creds.Password); err != nil {
		return nil, &schemas.AuthError{Reason: "failed to fill secret field", Err: err}
	}
	if err := page.Click(ctx, submitSelector); err != nil {
		return nil, &schemas.AuthError{Reason: "failed to submit login form", Err: err}
	}

	if err := page.WaitURLMatch(ctx, a.authedURL, a.cfg.Network.NavigationTimeout); err != nil {
		return nil, &schemas.AuthError{
			Reason:      "login failed",
			Remediation: remediationText,
			Err:         err,
		}
	}

	cookies, err := page.ExportCookies(ctx)
	if err != nil {
		return nil, &schemas.AuthError{Reason: "failed to export session state", Err: err}
	}

	a.logger.Info("Login handshake succeeded.", zap.Int("cookies", len(cookies)))
	return &schemas.SessionState{Cookies: cookies, SavedAt: time.Now()}, nil
}

// Probe verifies that a persisted session state is still usable by opening
// a browsing context with it. It satisfies schemas.SessionProber.
func (a *Authenticator) Probe(ctx context.Context, state *schemas.SessionState) error {
	if state.Empty() {
		return fmt.Errorf("session state carries no cookies")
	}
	page, err := a.browser.NewPage(ctx)
	if err != nil {
		return fmt.Errorf("failed to open probe page scope: %w", err)
	}
	defer page.Close()

	if err := page.ImportCookies(ctx, state.Cookies); err != nil {
		return fmt.Errorf("session state rejected by browser: %w", err)
	}
	return nil
}
