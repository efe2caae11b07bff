// go_studio — YouTube production assistant MCP server.
//
// Turns a creator's saved per-video tasks into an AI-organized, gated
// checklist. Exposes MCP tools for task CRUD, AI organization (Claude with
// OpenAI fallback), checklist persistence and navigation, and video
// metadata/transcript lookup.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/anatolykoptev/go-kit/llm"
	"github.com/anatolykoptev/go-mcpserver"
	"github.com/anatolykoptev/go_studio/internal/engine"
	"github.com/anatolykoptev/go_studio/internal/engine/store"
	"github.com/anatolykoptev/go_studio/internal/studioserver"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

var (
	version = "dev"
	mcpPort = env.Str("MCP_PORT", "8893")
)

func main() {
	initEngine()

	slog.Info("starting go_studio",
		slog.String("port", mcpPort),
	)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "go_studio",
		Version: version,
	}, nil)

	studioserver.RegisterTools(server)
	slog.Info("tools registered", slog.Int("count", 11))

	if err := mcpserver.Run(server, mcpserver.Config{
		Name:         "go_studio",
		Version:      version,
		Port:         mcpPort,
		WriteTimeout: 600 * time.Second,
		Metrics:      engine.FormatMetrics,
	}); err != nil {
		slog.Error("server failed", slog.Any("error", err))
	}
}

func initEngine() {
	c := engine.Config{
		LLMTimeout:           env.Duration("LLM_TIMEOUT", 120*time.Second),
		LLMMaxTokens:         env.Int("LLM_MAX_TOKENS", 8000),
		LLMFallbackMaxTokens: env.Int("LLM_FALLBACK_MAX_TOKENS", 4000),
		TranscriptLangs:      env.List("TRANSCRIPT_LANGS", "en"),
		MaxContentChars:      env.Int("MAX_CONTENT_CHARS", 12000),
		CacheMaxEntries:      env.Int("CACHE_MAX_ENTRIES", 1000),
		CacheCleanupInterval: env.Duration("CACHE_CLEANUP_INTERVAL", 300*time.Second),
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     60 * time.Second,
			},
		},
	}

	// Provider clients are built only when a key is present; the gateway
	// reports which keys are missing instead of calling anything.
	claudeKey := env.Str("CLAUDE_API_KEY", env.Str("ANTHROPIC_API_KEY", ""))
	if claudeKey != "" {
		c.LLMPrimary = llm.NewClient(
			env.Str("CLAUDE_API_BASE", "https://api.anthropic.com/v1"),
			claudeKey,
			env.Str("CLAUDE_MODEL", "claude-3-7-sonnet-20250219"),
			llm.WithMaxTokens(c.LLMMaxTokens),
			llm.WithHTTPClient(&http.Client{Timeout: c.LLMTimeout}),
		)
	}
	if openaiKey := env.Str("OPENAI_API_KEY", ""); openaiKey != "" {
		c.LLMFallback = llm.NewClient(
			env.Str("OPENAI_API_BASE", "https://api.openai.com/v1"),
			openaiKey,
			env.Str("OPENAI_MODEL", "gpt-3.5-turbo-16k"),
			llm.WithMaxTokens(c.LLMFallbackMaxTokens),
			llm.WithTemperature(0.3),
			llm.WithHTTPClient(&http.Client{Timeout: c.LLMTimeout}),
		)
	}

	if apiKey := env.Str("SCHEMATIC_API_KEY", ""); apiKey != "" {
		c.Analytics = engine.NewAnalyticsClient(
			env.Str("SCHEMATIC_API_BASE", "https://api.schematichq.com"),
			apiKey,
		)
		slog.Info("analytics client initialized")
	}

	engine.Init(c)

	// Durable checklist store (PostgreSQL). Optional: without it, organized
	// checklists live in the cache only.
	if dbURL := env.Str("DATABASE_URL", ""); dbURL != "" {
		db, err := store.ConnectChecklistDB(context.Background(), dbURL)
		if err != nil {
			slog.Warn("checklist DB init failed", slog.Any("error", err))
		} else {
			store.SetChecklistDB(db)
			slog.Info("checklist DB initialized")
		}
	}

	cacheTTL := env.Duration("CACHE_TTL", 24*time.Hour)
	engine.InitCache(env.Str("REDIS_URL", ""), cacheTTL, c.CacheMaxEntries, c.CacheCleanupInterval)
}
