package engine

import (
	"context"
	"net/http"
	"time"

	"github.com/anatolykoptev/go-kit/llm"
)

// Completer is the slice of the go-kit llm client used by the gateway.
// Satisfied by *llm.Client; tests substitute fakes.
type Completer interface {
	Complete(ctx context.Context, system, prompt string, opts ...llm.ChatOption) (string, error)
}

// Config holds all engine configuration, injected from main.
type Config struct {
	// LLMPrimary is the Claude client. nil = no Claude API key configured.
	LLMPrimary Completer
	// LLMFallback is the OpenAI client. nil = no OpenAI API key configured.
	LLMFallback Completer

	LLMTimeout           time.Duration // per provider call
	LLMMaxTokens         int           // primary output token budget
	LLMFallbackMaxTokens int           // fallback output token budget

	Analytics *AnalyticsClient // nil = event tracking disabled

	TranscriptLangs      []string
	MaxContentChars      int
	CacheMaxEntries      int
	CacheCleanupInterval time.Duration
	HTTPClient           *http.Client
}

var cfg Config

// Cfg exposes the engine configuration for sub-packages (store, sources).
// Always points to the current cfg value.
var Cfg = &cfg

// Init initializes the engine with the given configuration.
func Init(c Config) {
	if c.LLMTimeout <= 0 {
		c.LLMTimeout = 120 * time.Second
	}
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: 15 * time.Second}
	}
	cfg = c
	Cfg = &cfg
}
