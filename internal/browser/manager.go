// File: internal/browser/manager.go
package browser

import (
	"context"
	"fmt"
	"sync"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/riku-sakamoto/manabo-cli/internal/config"
)

// Manager owns the Chrome allocator and hands out page scopes. All page
// scopes share one browser profile, so cookies imported into any page are
// visible to every page opened from the same manager; this is what lets a
// single live session serve concurrent analyses.
type Manager struct {
	allocCtx    context.Context
	cancelAlloc context.CancelFunc
	logger      *zap.Logger
	cfg         *config.Config
	limiter     *rate.Limiter

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// NewManager creates a browser manager. The Chrome process itself is
// launched lazily by the first page scope.
func NewManager(ctx context.Context, cfg *config.Config, logger *zap.Logger) *Manager {
	opts := append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Browser.Headless),
		chromedp.WindowSize(cfg.Browser.WindowWidth, cfg.Browser.WindowHeight),
		// Required for stability in containers.
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if cfg.Browser.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(cfg.Browser.UserAgent))
	}
	for _, arg := range cfg.Browser.Args {
		opts = append(opts, chromedp.Flag(arg, true))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)

	var limiter *rate.Limiter
	if cfg.Browser.PageOpenRate > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.Browser.PageOpenRate), 1)
	}

	return &Manager{
		allocCtx:    allocCtx,
		cancelAlloc: cancelAlloc,
		logger:      logger.Named("browser_manager"),
		cfg:         cfg,
		limiter:     limiter,
	}
}

// NewPage opens a fresh page scope (a browser tab) and starts harvesting its
// network responses. The caller owns the page and must Close it on every
// exit path.
func (m *Manager) NewPage(ctx context.Context) (*Page, error) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, fmt.Errorf("browser manager is shut down")
	}
	m.wg.Add(1)
	m.mu.Unlock()

	if m.limiter != nil {
		if err := m.limiter.Wait(ctx); err != nil {
			m.wg.Done()
			return nil, fmt.Errorf("rate limit wait aborted: %w", err)
		}
	}

	page, err := newPage(m.allocCtx, m.cfg, m.logger)
	if err != nil {
		m.wg.Done()
		return nil, err
	}
	page.onClose = m.wg.Done

	m.logger.Debug("Page scope opened.", zap.String("page_id", page.ID()))
	return page, nil
}

// Shutdown closes the browser process after all outstanding page scopes are
// released. Safe to call more than once.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	m.mu.Unlock()

	m.wg.Wait()
	m.cancelAlloc()
	m.logger.Info("Browser manager shut down.")
}
