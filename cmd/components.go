// File: cmd/components.go
package cmd

import (
	"context"

	"go.uber.org/zap"

	"github.com/riku-sakamoto/manabo-cli/internal/analyzer"
	"github.com/riku-sakamoto/manabo-cli/internal/browser"
	"github.com/riku-sakamoto/manabo-cli/internal/cache"
	"github.com/riku-sakamoto/manabo-cli/internal/config"
	"github.com/riku-sakamoto/manabo-cli/internal/extract"
	"github.com/riku-sakamoto/manabo-cli/internal/navigator"
	"github.com/riku-sakamoto/manabo-cli/internal/session"
)

// engineComponents bundles the wired engine for one CLI invocation.
type engineComponents struct {
	Browser  *browser.Manager
	Sessions *session.Manager
	Cache    *cache.Cache
	Analyzer *analyzer.Analyzer

	cacheFile string
	logger    *zap.Logger
}

// buildEngine wires the full analysis stack from configuration. The caller
// owns the result and must call Shutdown.
func buildEngine(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*engineComponents, error) {
	statePath, err := cfg.StateFilePath()
	if err != nil {
		return nil, err
	}
	cachePath, err := cfg.CacheFilePath()
	if err != nil {
		return nil, err
	}

	mgr := browser.NewManager(ctx, cfg, logger)

	auth, err := session.NewAuthenticator(mgr, cfg, logger)
	if err != nil {
		mgr.Shutdown()
		return nil, err
	}

	store := session.NewStore(statePath, logger)
	sessions := session.NewManager(store, auth, auth, logger)

	resultCache := cache.New(logger)
	if cachePath != "" {
		if err := resultCache.LoadSnapshot(cachePath); err != nil {
			logger.Warn("Cache snapshot unreadable; starting cold.", zap.Error(err))
		}
	}

	nav := navigator.New(navigator.ManagerOpener{Manager: mgr}, sessions, logger)
	classifier := analyzer.NewClassifier(cfg.Portal.BaseURL)
	extractor := extract.New(logger)

	return &engineComponents{
		Browser:   mgr,
		Sessions:  sessions,
		Cache:     resultCache,
		Analyzer:  analyzer.New(sessions, nav, extractor, resultCache, classifier, logger),
		cacheFile: cachePath,
		logger:    logger,
	}, nil
}

// Shutdown persists the cache snapshot and releases the browser.
func (c *engineComponents) Shutdown() {
	if c.cacheFile != "" {
		if err := c.Cache.SaveSnapshot(c.cacheFile); err != nil {
			c.logger.Warn("Failed to persist cache snapshot.", zap.Error(err))
		}
	}
	c.Browser.Shutdown()
}
