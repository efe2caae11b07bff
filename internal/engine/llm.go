package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/anatolykoptev/go-kit/llm"
)

// Provider identifiers reported in results and diagnostics.
const (
	ProviderClaude = "claude"
	ProviderOpenAI = "openai"
)

// replyKind classifies a raw provider reply instead of probing an untyped
// response object.
type replyKind int

const (
	replyText replyKind = iota
	replyEmpty
	replyError
)

type providerReply struct {
	kind replyKind
	text string
	err  error
}

func classifyReply(text string, err error) providerReply {
	if err != nil {
		return providerReply{kind: replyError, err: err}
	}
	if strings.TrimSpace(text) == "" {
		return providerReply{kind: replyEmpty}
	}
	return providerReply{kind: replyText, text: text}
}

// GatewayResult is a successful gateway response: raw text from whichever
// provider answered, plus the primary's failure reason when the fallback
// produced it.
type GatewayResult struct {
	Text         string
	Provider     string
	PrimaryIssue string
}

// GatewayFailure is returned when no provider produced text. It carries
// enough detail for the caller to render a diagnostic message.
type GatewayFailure struct {
	Message       string
	PrimaryIssue  string
	FallbackIssue string
}

func (f *GatewayFailure) Error() string { return f.Message }

// CallOrganizeLLM sends the organize prompt to the primary provider and, on
// any failure or empty reply, to the fallback — strictly in sequence, the
// fallback at most once. Missing credentials for a provider are a non-fatal
// configuration state; both missing is terminal with no network call.
func CallOrganizeLLM(ctx context.Context, taskList string) (GatewayResult, error) {
	prompt := buildOrganizePrompt(taskList)

	primaryIssue := "No valid Claude API key"
	if cfg.LLMPrimary != nil {
		metricLLMPrimaryCalls.Add(1)
		callCtx, cancel := context.WithTimeout(ctx, cfg.LLMTimeout)
		raw, err := cfg.LLMPrimary.Complete(callCtx, organizeSystemPrompt, prompt,
			llm.WithChatMaxTokens(cfg.LLMMaxTokens),
		)
		cancel()

		switch reply := classifyReply(raw, err); reply.kind {
		case replyText:
			return GatewayResult{Text: reply.text, Provider: ProviderClaude}, nil
		case replyEmpty:
			metricLLMPrimaryErrors.Add(1)
			primaryIssue = "Empty response from Claude"
		case replyError:
			metricLLMPrimaryErrors.Add(1)
			primaryIssue = "Claude error: " + reply.err.Error()
		}
		slog.Warn("organize: primary provider failed, falling back",
			slog.String("issue", primaryIssue))
	}

	if cfg.LLMFallback == nil {
		return GatewayResult{}, &GatewayFailure{
			Message:      fmt.Sprintf("No AI service available. Please set up API keys for Claude or OpenAI. Claude issue: %s", primaryIssue),
			PrimaryIssue: primaryIssue,
		}
	}

	metricLLMFallbackCalls.Add(1)
	callCtx, cancel := context.WithTimeout(ctx, cfg.LLMTimeout)
	raw, err := cfg.LLMFallback.Complete(callCtx, organizeSystemPrompt, prompt,
		llm.WithChatTemperature(0.3),
		llm.WithChatMaxTokens(cfg.LLMFallbackMaxTokens),
	)
	cancel()

	switch reply := classifyReply(raw, err); reply.kind {
	case replyText:
		return GatewayResult{Text: reply.text, Provider: ProviderOpenAI, PrimaryIssue: primaryIssue}, nil
	case replyEmpty:
		metricLLMFallbackErrors.Add(1)
		return GatewayResult{}, &GatewayFailure{
			Message:       fmt.Sprintf("Failed with both AI services. Claude issue: %s. OpenAI issue: Empty response from OpenAI", primaryIssue),
			PrimaryIssue:  primaryIssue,
			FallbackIssue: "Empty response from OpenAI",
		}
	default:
		metricLLMFallbackErrors.Add(1)
		return GatewayResult{}, &GatewayFailure{
			Message:       fmt.Sprintf("Failed with both AI services. Claude issue: %s. OpenAI issue: %s", primaryIssue, reply.err),
			PrimaryIssue:  primaryIssue,
			FallbackIssue: reply.err.Error(),
		}
	}
}
