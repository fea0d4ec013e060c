//go:build !js && !wasm

// Package app assembles a studio.Service from loaded configuration, wiring
// the pieces that hold external resources (redis, tesseract).
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/himanishpuri/studiokit/internal/config"
	"github.com/himanishpuri/studiokit/pkg/logger"
	"github.com/himanishpuri/studiokit/pkg/studio"
	"github.com/himanishpuri/studiokit/pkg/studio/cache"
	"github.com/himanishpuri/studiokit/pkg/studio/pdftext"
	"github.com/himanishpuri/studiokit/pkg/studio/pdftext/tesseract"
)

const redisDialTimeout = 5 * time.Second

// NewService builds the service described by cfg. A configured but
// unreachable redis is logged and skipped; assets are then searched live.
func NewService(ctx context.Context, cfg *config.Config, extra ...studio.Option) (studio.Service, error) {
	log := logger.GetLogger()
	if lvl, ok := logger.ParseLevel(cfg.LogLevel); ok {
		log.SetLevel(lvl)
	}

	opts := cfg.ServiceOptions()
	opts = append(opts, studio.WithLogger(log))

	opts = append(opts, studio.WithPDFExtractor(pdftext.NewExtractor(
		pdftext.WithEngine(tesseract.New(cfg.PDF.DPI)),
		pdftext.WithPdftoppm(cfg.PDF.Pdftoppm),
		pdftext.WithTempDir(cfg.TempDir),
		pdftext.WithLogger(log.With("pdf")),
	)))

	if cfg.Cache.RedisURL != "" {
		ttl, err := cfg.CacheTTL()
		if err != nil {
			return nil, err
		}
		dialCtx, cancel := context.WithTimeout(ctx, redisDialTimeout)
		store, err := cache.NewRedisStore(dialCtx, cfg.Cache.RedisURL)
		cancel()
		if err != nil {
			log.Warnf("Asset cache disabled: %v", err)
		} else {
			log.Infof("Asset cache enabled (ttl %s)", ttl)
			opts = append(opts, studio.WithAssetCache(store, ttl))
		}
	}

	opts = append(opts, extra...)

	svc, err := studio.NewService(opts...)
	if err != nil {
		return nil, fmt.Errorf("create studio service: %w", err)
	}
	return svc, nil
}
