// Package server assembles the HTTP surface: the AI proxy endpoint, the REST
// API, the assignment feed, and the background Canvas sync, wired over one
// echo instance.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/satchelhq/satchel/internal/profile"
	"github.com/satchelhq/satchel/plugin/ai/assist"
	"github.com/satchelhq/satchel/plugin/ai/batch"
	"github.com/satchelhq/satchel/plugin/ai/cache"
	"github.com/satchelhq/satchel/plugin/ai/dispatch"
	"github.com/satchelhq/satchel/plugin/canvas"
	"github.com/satchelhq/satchel/plugin/webclip"
	"github.com/satchelhq/satchel/server/ai"
	"github.com/satchelhq/satchel/server/finops"
	"github.com/satchelhq/satchel/server/internal/observability"
	"github.com/satchelhq/satchel/server/middleware"
	"github.com/satchelhq/satchel/server/proxy"
	apiv1 "github.com/satchelhq/satchel/server/router/api/v1"
	"github.com/satchelhq/satchel/server/router/feed"
	"github.com/satchelhq/satchel/server/runner/canvassync"
	"github.com/satchelhq/satchel/store"
)

// usageRetention is how long finops usage rows are kept before pruning.
const usageRetention = 90 * 24 * time.Hour

type Server struct {
	Profile *profile.Profile
	Store   *store.Store

	echoServer *echo.Echo

	resultCache  cache.ResultCache
	batcher      *batch.Batcher
	monitor      *finops.Monitor
	canvasRunner *canvassync.Runner
}

// NewServer wires the full service graph from the profile. Features without
// configuration stay unmounted: no AI key or proxy URL means the assist
// endpoints answer 503, no Canvas credentials means no sync runner.
func NewServer(instanceProfile *profile.Profile, storeInstance *store.Store) (*Server, error) {
	s := &Server{
		Profile: instanceProfile,
		Store:   storeInstance,
		monitor: finops.NewMonitor(storeInstance),
	}

	echoServer := echo.New()
	echoServer.Debug = true
	echoServer.HideBanner = true
	echoServer.HidePort = true
	s.echoServer = echoServer

	echoServer.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOriginFunc: func(_ string) (bool, error) {
			return true, nil
		},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"*"},
		AllowCredentials: true,
	}))
	echoServer.Use(observability.HTTPMetrics())
	echoServer.Use(observability.RequestLogger())

	echoServer.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "Service ready.")
	})
	echoServer.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	apiV1Service := apiv1.NewAPIV1Service(instanceProfile, storeInstance)
	apiV1Service.Monitor = s.monitor

	// The proxy endpoint is mounted only when this instance holds a provider
	// key. A deployment may instead point ProxyURL at another instance and
	// keep the key off this one entirely.
	if instanceProfile.AIEnabled && instanceProfile.AIAPIKey != "" {
		provider, err := ai.NewProvider(&ai.Config{
			BaseURL:     instanceProfile.AIBaseURL,
			APIKey:      instanceProfile.AIAPIKey,
			ChatModel:   instanceProfile.AIChatModel,
			ImageModel:  instanceProfile.AIImageModel,
			SpeechModel: instanceProfile.AISpeechModel,
		})
		if err != nil {
			return nil, errors.Wrap(err, "failed to create AI provider")
		}

		limiter := middleware.NewRateLimiter(10, 20)
		proxyGroup := echoServer.Group("/api/ai", limiter.Middleware(), proxy.VerifyToken(instanceProfile.ProxySecret))
		proxy.NewHandler(provider, s.monitor).Register(proxyGroup)
	}

	if instanceProfile.IsAIEnabled() {
		resultCache, err := s.newResultCache()
		if err != nil {
			return nil, err
		}
		s.resultCache = resultCache

		client := dispatch.NewClient(dispatch.Config{
			URL:    s.dispatchURL(),
			Secret: instanceProfile.ProxySecret,
		})
		s.batcher = batch.NewBatcher(batch.DefaultConfig(), client.Do)

		apiV1Service.Assist = assist.NewService(resultCache, s.batcher, webclip.NewExtractor(nil))
	}

	if instanceProfile.IsCanvasEnabled() {
		canvasClient, err := canvas.NewClient(&canvas.Config{
			BaseURL: instanceProfile.CanvasBaseURL,
			Token:   instanceProfile.CanvasToken,
		})
		if err != nil {
			return nil, errors.Wrap(err, "failed to create canvas client")
		}
		s.canvasRunner = canvassync.NewRunner(storeInstance, canvasClient, instanceProfile.CanvasSyncInterval)
		apiV1Service.Syncer = s.canvasRunner
	}

	apiV1Service.Register(echoServer.Group("/api/v1"))
	feed.NewFeedService(instanceProfile, storeInstance).Register(echoServer.Group("/feed"))

	return s, nil
}

// Start launches the background runners and blocks serving HTTP.
func (s *Server) Start(ctx context.Context) error {
	if s.canvasRunner != nil {
		go s.canvasRunner.Run(ctx)
	}
	go s.pruneUsageLoop(ctx)

	return s.echoServer.Start(fmt.Sprintf("%s:%d", s.Profile.Addr, s.Profile.Port))
}

// Shutdown stops accepting requests, flushes in-flight dispatch waves and
// closes the store.
func (s *Server) Shutdown(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := s.echoServer.Shutdown(ctx); err != nil {
		slog.Error("failed to shutdown server", "error", err)
	}

	if s.batcher != nil {
		s.batcher.Close()
	}
	if s.resultCache != nil {
		s.resultCache.Close()
	}

	if err := s.Store.Close(); err != nil {
		slog.Error("failed to close store", "error", err)
	}

	slog.Info("satchel stopped properly")
}

// newResultCache picks the cache backend from the profile: redis when an
// address is configured, a bounded LRU when a size cap is set, otherwise the
// unbounded in-process cache.
func (s *Server) newResultCache() (cache.ResultCache, error) {
	switch {
	case s.Profile.CacheRedisAddr != "":
		redisCache, err := cache.NewRedisCache(cache.RedisConfig{
			Addr:     s.Profile.CacheRedisAddr,
			Password: s.Profile.CacheRedisPassword,
		})
		if err != nil {
			return nil, errors.Wrap(err, "failed to create redis result cache")
		}
		return redisCache, nil
	case s.Profile.CacheMaxEntries > 0:
		return cache.NewLRUCache(s.Profile.CacheMaxEntries, 0), nil
	default:
		return cache.NewMemoryCache(cache.DefaultConfig()), nil
	}
}

// dispatchURL is where the batcher posts its waves: the configured external
// proxy, or this instance's own proxy endpoint.
func (s *Server) dispatchURL() string {
	if s.Profile.ProxyURL != "" {
		return s.Profile.ProxyURL
	}
	host := s.Profile.Addr
	if host == "" || host == "0.0.0.0" {
		host = "127.0.0.1"
	}
	return fmt.Sprintf("http://%s:%d/api/ai", host, s.Profile.Port)
}

// pruneUsageLoop deletes usage rows past the retention window once a day.
func (s *Server) pruneUsageLoop(ctx context.Context) {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := s.monitor.Prune(ctx, usageRetention); err != nil {
				slog.Error("failed to prune usage records", "error", err)
			}
		case <-ctx.Done():
			return
		}
	}
}
