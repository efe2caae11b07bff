package engine

import (
	"context"
	"errors"
	"log/slog"
)

// OrganizeResult is the outcome of one organize request. Every failure path
// is represented as data in Error plus optional diagnostics; the function
// never panics or returns a Go error to the caller.
type OrganizeResult struct {
	OrganizedTasks     []OrganizedTask `json:"organizedTasks,omitempty"`
	Provider           string          `json:"provider,omitempty"`
	Error              string          `json:"error,omitempty"`
	RawResponsePreview string          `json:"rawResponsePreview,omitempty"`
	RawResponse        string          `json:"rawResponse,omitempty"`
}

// OrganizeTasks runs the full pipeline for one video's task set:
// validate → call provider (with fallback) → parse → expand → track.
// The analytics event is detached — its failure never affects the result.
func OrganizeTasks(ctx context.Context, userID string, tasks []RawTask) OrganizeResult {
	metricOrganizeRequests.Add(1)

	if len(tasks) == 0 {
		return OrganizeResult{Error: "No tasks to organize"}
	}

	slog.Info("organize: starting", slog.Int("tasks", len(tasks)))
	taskList := BuildTaskList(tasks)

	gw, err := CallOrganizeLLM(ctx, taskList)
	if err != nil {
		var failure *GatewayFailure
		if errors.As(err, &failure) {
			slog.Warn("organize: all providers failed",
				slog.String("primary", failure.PrimaryIssue),
				slog.String("fallback", failure.FallbackIssue))
		}
		return OrganizeResult{Error: err.Error()}
	}

	parsed := ParseOrganizeResponse(gw.Text)
	if parsed.Err != "" {
		slog.Warn("organize: parse failed",
			slog.String("provider", gw.Provider),
			slog.String("error", parsed.Err))
		return OrganizeResult{
			Error:              parsed.Err,
			RawResponsePreview: parsed.RawResponsePreview,
			RawResponse:        parsed.RawResponse,
		}
	}

	organized := ExpandTasks(parsed.Tasks)

	TrackOrganization(userID)

	slog.Info("organize: done",
		slog.String("provider", gw.Provider),
		slog.Int("organized", len(organized)))
	return OrganizeResult{OrganizedTasks: organized, Provider: gw.Provider}
}
