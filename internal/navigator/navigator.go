// File: internal/navigator/navigator.go
package navigator

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/riku-sakamoto/manabo-cli/api/schemas"
	"github.com/riku-sakamoto/manabo-cli/internal/browser"
)

// authRedirectMarkers are the substrings that mark a landed URL as an
// identity-provider redirect. Substring matching can false-positive on
// legitimate pages whose paths happen to contain one of these; that
// imprecision is a known limitation of the heuristic, kept as-is.
var authRedirectMarkers = []string{"auth", "login", "shibboleth"}

// Page is the surface the navigator needs from a page scope.
type Page interface {
	schemas.LoadedPage
	ImportCookies(ctx context.Context, cookies []schemas.Cookie) error
	Navigate(ctx context.Context, url string) error
}

// PageOpener opens fresh page scopes.
type PageOpener interface {
	OpenPage(ctx context.Context) (Page, error)
}

// ManagerOpener adapts the browser manager to the PageOpener seam.
type ManagerOpener struct {
	Manager *browser.Manager
}

func (o ManagerOpener) OpenPage(ctx context.Context) (Page, error) {
	return o.Manager.NewPage(ctx)
}

// Navigator opens pages under an authenticated session. When navigation
// lands on an identity-provider redirect, or fails at the transport level
// (which may be a stale-session side effect), it forces re-authentication
// through the session manager and retries exactly once. A second failure is
// terminal.
type Navigator struct {
	opener   PageOpener
	sessions schemas.SessionManager
	logger   *zap.Logger
}

var _ schemas.Navigator = (*Navigator)(nil)

// New creates a navigator.
func New(opener PageOpener, sessions schemas.SessionManager, logger *zap.Logger) *Navigator {
	return &Navigator{
		opener:   opener,
		sessions: sessions,
		logger:   logger.Named("navigator"),
	}
}

// Open navigates to the target under the given session state. The returned
// page is owned by the caller and must be closed on every exit path.
func (n *Navigator) Open(ctx context.Context, state *schemas.SessionState, target schemas.PageTarget) (schemas.LoadedPage, error) {
	page, landedURL, err := n.attempt(ctx, state, target)
	if err == nil && !IsAuthRedirect(landedURL) {
		return page, nil
	}
	if page != nil {
		page.Close()
	}

	if err != nil {
		n.logger.Warn("Navigation failed; forcing re-authentication once.",
			zap.String("url", target.URL), zap.Error(err))
	} else {
		n.logger.Warn("Landed on a login redirect; forcing re-authentication once.",
			zap.String("url", target.URL), zap.String("landed", landedURL))
	}

	// One-shot recovery: discard the session, obtain a fresh one, retry.
	n.sessions.Invalidate()
	fresh, authErr := n.sessions.EnsureSession(ctx)
	if authErr != nil {
		return nil, authErr
	}

	page, landedURL, err = n.attempt(ctx, fresh, target)
	if err != nil {
		if page != nil {
			page.Close()
		}
		return nil, &schemas.NavigationError{
			URL:    target.URL,
			Reason: "navigation failed after re-authentication",
			Err:    err,
		}
	}
	if IsAuthRedirect(landedURL) {
		page.Close()
		return nil, &schemas.NavigationError{
			URL:    target.URL,
			Reason: "re-authentication failed",
		}
	}
	return page, nil
}

// attempt opens a page scope, installs the session cookies, navigates, and
// reports where the page landed.
func (n *Navigator) attempt(ctx context.Context, state *schemas.SessionState, target schemas.PageTarget) (Page, string, error) {
	page, err := n.opener.OpenPage(ctx)
	if err != nil {
		return nil, "", err
	}
	if state != nil && len(state.Cookies) > 0 {
		if err := page.ImportCookies(ctx, state.Cookies); err != nil {
			return page, "", err
		}
	}
	if err := page.Navigate(ctx, target.URL); err != nil {
		return page, "", err
	}
	landedURL, err := page.CurrentURL(ctx)
	if err != nil {
		return page, "", err
	}
	return page, landedURL, nil
}

// IsAuthRedirect reports whether a landed URL looks like an
// identity-provider redirect.
func IsAuthRedirect(url string) bool {
	lowered := strings.ToLower(url)
	for _, marker := range authRedirectMarkers {
		if strings.Contains(lowered, marker) {
			return true
		}
	}
	return false
}
