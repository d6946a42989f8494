// Package server provides the public entry point for initializing the
// daybrief server.
//
// Usage:
//
//	srv, err := server.New(ctx)
//	http.ListenAndServe(":8080", srv.Handler)
package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/daybrief/daybrief/internal/api"
	"github.com/daybrief/daybrief/internal/api/handlers"
	"github.com/daybrief/daybrief/internal/api/middleware"
	"github.com/daybrief/daybrief/internal/auth"
	"github.com/daybrief/daybrief/internal/briefing"
	"github.com/daybrief/daybrief/internal/cache"
	"github.com/daybrief/daybrief/internal/calendar"
	"github.com/daybrief/daybrief/internal/config"
	"github.com/daybrief/daybrief/internal/gemini"
	"github.com/daybrief/daybrief/internal/notion"
	"github.com/daybrief/daybrief/internal/telemetry"

	"github.com/rs/zerolog/log"
)

// Server holds the initialized daybrief service.
type Server struct {
	// Handler is the HTTP handler with all routes and middleware.
	Handler http.Handler

	// Cache is the per-user context cache. Exposed so callers can flush it.
	Cache *cache.ContextCache

	// Config is the loaded server configuration.
	Config *config.Config

	// Port is the port the server should listen on.
	Port int

	// ShutdownFunc should be called on graceful shutdown to flush telemetry.
	ShutdownFunc func(context.Context) error
}

// New initializes all components and returns a ready Server.
func New(ctx context.Context) (*Server, error) {
	return NewWithConfig(ctx, config.Load())
}

// NewWithConfig initializes the server with an explicit configuration.
func NewWithConfig(ctx context.Context, cfg *config.Config) (*Server, error) {
	shutdown, err := telemetry.Init(cfg.Telemetry, cfg.Version)
	if err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}

	contextCache := cache.New(cfg.Cache.TTL)
	log.Info().Dur("ttl", cfg.Cache.TTL).Msg("✅ Context cache initialized")

	chain := auth.NewChain(cfg.Google.AllowedDomain,
		auth.NewIDTokenVerifier(cfg.Google.ClientID),
		auth.NewAccessTokenVerifier(cfg.Google.ClientID),
	)
	if cfg.Google.ClientID == "" {
		log.Warn().Msg("⚠️  GOOGLE_CLIENT_ID not set, all requests will be rejected")
	}

	calendarFetcher := calendar.NewFetcher()

	notionFetcher := notion.NewFetcher(cfg.Notion.Token)
	if !notionFetcher.Enabled() {
		log.Warn().Msg("⚠️  NOTION_TOKEN not set, task fetching disabled")
	} else {
		log.Info().Int("databases", len(cfg.Notion.DatabaseIDs)).Msg("✅ Notion fetcher initialized")
	}

	generator, err := gemini.NewGenerator(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
	if err != nil {
		return nil, fmt.Errorf("init gemini: %w", err)
	}
	if !generator.Enabled() {
		log.Warn().Msg("⚠️  GEMINI_API_KEY not set, summaries will report no data")
	} else {
		log.Info().Str("model", cfg.Gemini.Model).Msg("✅ Gemini generator initialized")
	}

	svc := briefing.NewService(calendarFetcher, notionFetcher, generator, contextCache, cfg.Notion.DatabaseIDs)

	h := handlers.New(svc)
	authmw := middleware.NewAuthMiddleware(chain)
	router := api.NewRouter(cfg, h, authmw)

	return &Server{
		Handler:      router,
		Cache:        contextCache,
		Config:       cfg,
		Port:         cfg.Port,
		ShutdownFunc: shutdown,
	}, nil
}
