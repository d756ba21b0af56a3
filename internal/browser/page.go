// File: internal/browser/page.go
package browser

import (
	"context"
	"fmt"
	"regexp"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/riku-sakamoto/manabo-cli/api/schemas"
	"github.com/riku-sakamoto/manabo-cli/internal/config"
)

// urlPollInterval is how often bounded URL waits re-check the location.
const urlPollInterval = 250 * time.Millisecond

// Page is a single browser tab: the base page-operations capability set
// (navigate, fill, click, capture) that session authentication and the
// navigator compose. It also harvests the network responses observed while
// it is open.
type Page struct {
	id     string
	ctx    context.Context
	cancel context.CancelFunc
	logger *zap.Logger
	cfg    *config.Config

	mu      sync.Mutex
	logs    []schemas.NetworkLog
	methods map[network.RequestID]string

	closeOnce sync.Once
	onClose   func()
}

var _ schemas.LoadedPage = (*Page)(nil)

func newPage(allocCtx context.Context, cfg *config.Config, logger *zap.Logger) (*Page, error) {
	pageID := uuid.New().String()
	ctx, cancel := chromedp.NewContext(allocCtx)

	p := &Page{
		id:      pageID,
		ctx:     ctx,
		cancel:  cancel,
		logger:  logger.Named("page").With(zap.String("page_id", pageID)),
		cfg:     cfg,
		methods: make(map[network.RequestID]string),
	}

	// Harvest request methods and responses for the network log.
	chromedp.ListenTarget(ctx, func(ev interface{}) {
		switch e := ev.(type) {
		case *network.EventRequestWillBeSent:
			p.mu.Lock()
			p.methods[e.RequestID] = e.Request.Method
			p.mu.Unlock()
		case *network.EventResponseReceived:
			p.mu.Lock()
			p.logs = append(p.logs, schemas.NetworkLog{
				URL:       e.Response.URL,
				Method:    p.methods[e.RequestID],
				Status:    e.Response.Status,
				Timestamp: time.Now(),
			})
			p.mu.Unlock()
		}
	})

	// The first Run starts the tab and enables network events.
	if err := chromedp.Run(ctx, network.Enable()); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to open page scope: %w", err)
	}
	return p, nil
}

// ID returns the page scope identifier used for log correlation.
func (p *Page) ID() string {
	return p.id
}

// run executes chromedp actions against this page, bounded by the given
// timeout and aborted early if the caller's context is done.
func (p *Page) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithTimeout(p.ctx, timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	err := chromedp.Run(runCtx, actions...)
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

// Navigate loads a URL and waits out the post-load settle period so dynamic
// content has a chance to render.
func (p *Page) Navigate(ctx context.Context, url string) error {
	p.logger.Debug("Navigating.", zap.String("url", url))
	actions := []chromedp.Action{chromedp.Navigate(url)}
	if p.cfg.Network.PostLoadWait > 0 {
		actions = append(actions, chromedp.Sleep(p.cfg.Network.PostLoadWait))
	}
	if err := p.run(ctx, p.cfg.Network.NavigationTimeout, actions...); err != nil {
		return fmt.Errorf("navigation to %s failed: %w", url, err)
	}
	return nil
}

// CurrentURL returns the URL the page actually landed on.
func (p *Page) CurrentURL(ctx context.Context) (string, error) {
	var loc string
	if err := p.run(ctx, p.cfg.Network.NavigationTimeout, chromedp.Location(&loc)); err != nil {
		return "", fmt.Errorf("failed to read page location: %w", err)
	}
	return loc, nil
}

// Title returns the document title.
func (p *Page) Title(ctx context.Context) (string, error) {
	var title string
	if err := p.run(ctx, p.cfg.Network.NavigationTimeout, chromedp.Title(&title)); err != nil {
		return "", fmt.Errorf("failed to read page title: %w", err)
	}
	return title, nil
}

// HTML captures the rendered document markup.
func (p *Page) HTML(ctx context.Context) (string, error) {
	var html string
	err := p.run(ctx, p.cfg.Network.NavigationTimeout, chromedp.ActionFunc(func(ctx context.Context) error {
		node, err := dom.GetDocument().Do(ctx)
		if err != nil {
			return err
		}
		html, err = dom.GetOuterHTML().WithNodeID(node.NodeID).Do(ctx)
		return err
	}))
	if err != nil {
		return "", fmt.Errorf("failed to capture page content: %w", err)
	}
	return html, nil
}

// Screenshot captures a full-page PNG.
func (p *Page) Screenshot(ctx context.Context) ([]byte, error) {
	var buf []byte
	if err := p.run(ctx, p.cfg.Network.NavigationTimeout, chromedp.FullScreenshot(&buf, 90)); err != nil {
		return nil, fmt.Errorf("failed to capture screenshot: %w", err)
	}
	return buf, nil
}

// WaitVisible blocks until the selector matches a visible element, bounded
// by the given timeout.
func (p *Page) WaitVisible(ctx context.Context, selector string, timeout time.Duration) error {
	if err := p.run(ctx, timeout, chromedp.WaitVisible(selector, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("timed out waiting for %q: %w", selector, err)
	}
	return nil
}

// Fill sets the value of a form field.
func (p *Page) Fill(ctx context.Context, selector, value string) error {
	if err := p.run(ctx, p.cfg.Network.FieldWaitTimeout, chromedp.SetValue(selector, value, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("failed to fill %q: %w", selector, err)
	}
	return nil
}

// Click clicks the first element matching the selector.
func (p *Page) Click(ctx context.Context, selector string) error {
	if err := p.run(ctx, p.cfg.Network.FieldWaitTimeout, chromedp.Click(selector, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("failed to click %q: %w", selector, err)
	}
	return nil
}

// WaitURLMatch polls the page location until it matches the pattern or the
// timeout elapses.
func (p *Page) WaitURLMatch(ctx context.Context, pattern *regexp.Regexp, timeout time.Duration) error {
	err := p.run(ctx, timeout, chromedp.ActionFunc(func(ctx context.Context) error {
		ticker := time.NewTicker(urlPollInterval)
		defer ticker.Stop()
		for {
			var loc string
			if err := chromedp.Location(&loc).Do(ctx); err != nil {
				return err
			}
			if pattern.MatchString(loc) {
				return nil
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
			}
		}
	}))
	if err != nil {
		return fmt.Errorf("timed out waiting for URL matching %q: %w", pattern.String(), err)
	}
	return nil
}

// ImportCookies installs session cookies into the browser profile.
func (p *Page) ImportCookies(ctx context.Context, cookies []schemas.Cookie) error {
	err := p.run(ctx, p.cfg.Network.FieldWaitTimeout, chromedp.ActionFunc(func(ctx context.Context) error {
		for _, c := range cookies {
			params := network.SetCookie(c.Name, c.Value).
				WithDomain(c.Domain).
				WithPath(c.Path).
				WithHTTPOnly(c.HTTPOnly).
				WithSecure(c.Secure)
			if c.Expires > 0 {
				exp := cdp.TimeSinceEpoch(time.Unix(int64(c.Expires), 0))
				params = params.WithExpires(&exp)
			}
			if err := params.Do(ctx); err != nil {
				return fmt.Errorf("failed to set cookie %q: %w", c.Name, err)
			}
		}
		return nil
	}))
	if err != nil {
		return fmt.Errorf("failed to import session cookies: %w", err)
	}
	return nil
}

// ExportCookies reads the browser profile's cookies back out for
// persistence.
func (p *Page) ExportCookies(ctx context.Context) ([]schemas.Cookie, error) {
	var out []schemas.Cookie
	err := p.run(ctx, p.cfg.Network.FieldWaitTimeout, chromedp.ActionFunc(func(ctx context.Context) error {
		cookies, err := network.GetCookies().Do(ctx)
		if err != nil {
			return err
		}
		for _, c := range cookies {
			out = append(out, schemas.Cookie{
				Name:     c.Name,
				Value:    c.Value,
				Domain:   c.Domain,
				Path:     c.Path,
				Expires:  c.Expires,
				HTTPOnly: c.HTTPOnly,
				Secure:   c.Secure,
			})
		}
		return nil
	}))
	if err != nil {
		return nil, fmt.Errorf("failed to export session cookies: %w", err)
	}
	return out, nil
}

// NetworkLogs returns a copy of the responses observed so far.
func (p *Page) NetworkLogs() []schemas.NetworkLog {
	p.mu.Lock()
	defer p.mu.Unlock()
	logs := make([]schemas.NetworkLog, len(p.logs))
	copy(logs, p.logs)
	return logs
}

// Close releases the page scope. Safe to call more than once.
func (p *Page) Close() {
	p.closeOnce.Do(func() {
		p.logger.Debug("Closing page scope.")
		p.cancel()
		if p.onClose != nil {
			p.onClose()
		}
	})
}
