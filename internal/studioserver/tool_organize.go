package studioserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/anatolykoptev/go_studio/internal/engine"
	"github.com/anatolykoptev/go_studio/internal/engine/store"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// OrganizeInput is the input for organize_tasks.
type OrganizeInput struct {
	VideoID string `json:"video_id"`
	UserID  string `json:"user_id"`
}

// OrganizeOutput is the output for organize_tasks. On failure, Error carries
// the reason and OrganizedTasks is empty; the tool itself does not error so
// the caller always gets diagnostics.
type OrganizeOutput struct {
	OrganizedTasks     []engine.OrganizedTask `json:"organizedTasks,omitempty"`
	Provider           string                 `json:"provider,omitempty"`
	Error              string                 `json:"error,omitempty"`
	RawResponsePreview string                 `json:"rawResponsePreview,omitempty"`
	Message            string                 `json:"message,omitempty"`
}

// organizeState tracks the in-flight guard and last applied generation for
// one video.
type organizeState struct {
	mu       sync.Mutex
	inFlight bool
	lastGen  uint64
}

var (
	organizeStates sync.Map // videoID → *organizeState
	organizeGen    atomic.Uint64
)

func stateFor(videoID string) *organizeState {
	v, _ := organizeStates.LoadOrStore(videoID, &organizeState{})
	return v.(*organizeState)
}

func registerOrganizeTasks(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "organize_tasks",
		Description: "Organize a video's saved tasks into an AI-generated step-by-step checklist. Uses Claude with OpenAI fallback; each task gets an order, a reason, and sub-steps where useful. The result is cached and, when a database is configured, persisted.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input OrganizeInput) (*mcp.CallToolResult, *OrganizeOutput, error) {
		if input.VideoID == "" || input.UserID == "" {
			return nil, nil, errors.New("video_id and user_id are required")
		}

		st := stateFor(input.VideoID)
		st.mu.Lock()
		if st.inFlight {
			st.mu.Unlock()
			return nil, &OrganizeOutput{Error: "Organization already in progress for this video"}, nil
		}
		st.inFlight = true
		st.mu.Unlock()
		defer func() {
			st.mu.Lock()
			st.inFlight = false
			st.mu.Unlock()
		}()

		gen := organizeGen.Add(1)

		list, err := store.ListTasks(ctx, input.VideoID, input.UserID)
		if err != nil {
			return nil, nil, err
		}

		result := engine.OrganizeTasks(ctx, input.UserID, store.RawTasks(list.Tasks))
		if result.Error != "" {
			return nil, &OrganizeOutput{
				Error:              result.Error,
				RawResponsePreview: result.RawResponsePreview,
			}, nil
		}

		// Drop the result if a newer organize already finished for this video.
		st.mu.Lock()
		if gen <= st.lastGen {
			st.mu.Unlock()
			slog.Info("organize_tasks: stale result dropped",
				slog.String("video", input.VideoID), slog.Uint64("gen", gen))
			return nil, &OrganizeOutput{Error: "Superseded by a newer organization request"}, nil
		}
		st.lastGen = gen
		st.mu.Unlock()

		msg := persistChecklist(ctx, input.VideoID, input.UserID, result.OrganizedTasks)

		return nil, &OrganizeOutput{
			OrganizedTasks: result.OrganizedTasks,
			Provider:       result.Provider,
			Message:        msg,
		}, nil
	})
}

// persistChecklist writes the organized list to the ephemeral cache first,
// then to the durable store when one is configured. The cache write is
// unconditional so a finished organization survives a database outage.
func persistChecklist(ctx context.Context, videoID, userID string, tasks []engine.OrganizedTask) string {
	engine.CacheSetChecklist(ctx, videoID, tasks, nil)

	db := store.GetChecklistDB()
	if db == nil {
		return "Tasks organized (cached only; no database configured)"
	}

	engine.IncrChecklistSaves()
	if err := db.SaveChecklist(ctx, videoID, userID, tasks); err != nil {
		engine.IncrChecklistSaveFails()
		slog.Warn("organize_tasks: durable save failed",
			slog.String("video", videoID), slog.Any("error", err))
		return "Tasks organized but couldn't be saved to database"
	}
	return fmt.Sprintf("Tasks organized and saved (%d items)", len(tasks))
}
