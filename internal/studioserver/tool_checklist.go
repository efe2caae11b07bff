package studioserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/anatolykoptev/go_studio/internal/engine"
	"github.com/anatolykoptev/go_studio/internal/engine/store"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ChecklistInput identifies a stored checklist.
type ChecklistInput struct {
	VideoID string `json:"video_id"`
	UserID  string `json:"user_id"`
}

// ChecklistSaveResult is the output for checklist_save.
type ChecklistSaveResult struct {
	Saved   bool   `json:"saved"`
	Message string `json:"message"`
}

// ChecklistGetResult is the output for checklist_get.
type ChecklistGetResult struct {
	Tasks     []engine.OrganizedTask `json:"tasks"`
	Completed map[string]bool        `json:"completed,omitempty"`
	Source    string                 `json:"source"` // "database" or "cache"
}

// ChecklistToggleInput is the input for checklist_toggle.
type ChecklistToggleInput struct {
	VideoID         string   `json:"video_id"`
	UserID          string   `json:"user_id"`
	TaskID          string   `json:"task_id"`
	CurrentStep     int      `json:"current_step,omitempty"`
	ExpandedParents []string `json:"expanded_parents,omitempty"`
}

// ChecklistToggleResult is the output for checklist_toggle.
type ChecklistToggleResult struct {
	Applied     bool   `json:"applied"`
	Completed   bool   `json:"completed"`
	CurrentStep int    `json:"current_step"`
	Message     string `json:"message"`
}

// ChecklistStepInput is the input for checklist_step.
type ChecklistStepInput struct {
	VideoID         string   `json:"video_id"`
	UserID          string   `json:"user_id"`
	CurrentStep     int      `json:"current_step"`
	Direction       string   `json:"direction"` // "next" or "prev"
	ExpandedParents []string `json:"expanded_parents,omitempty"`
}

// ChecklistStepResult is the output for checklist_step.
type ChecklistStepResult struct {
	CurrentStep int `json:"current_step"`
}

// loadChecklist reads the stored checklist: database first, cache fallback.
func loadChecklist(ctx context.Context, videoID, userID string) ([]engine.OrganizedTask, map[string]bool, string, error) {
	if db := store.GetChecklistDB(); db != nil {
		tasks, completed, err := db.LoadChecklist(ctx, videoID, userID)
		if err != nil {
			slog.Warn("checklist: database load failed, trying cache",
				slog.String("video", videoID), slog.Any("error", err))
		} else if tasks != nil {
			return tasks, completed, "database", nil
		}
	}
	if tasks, completed, ok := engine.CacheGetChecklist(ctx, videoID); ok {
		return tasks, completed, "cache", nil
	}
	return nil, nil, "", errors.New("no organized checklist found; run organize_tasks first")
}

// rebuildChecklist constructs the state machine from stored data plus the
// caller's view state (current step, which parents are expanded).
func rebuildChecklist(tasks []engine.OrganizedTask, completed map[string]bool, currentStep int, expandedParents []string) engine.Checklist {
	c := engine.NewChecklist(tasks, completed)
	if currentStep > 0 {
		c.CurrentStep = currentStep
	}
	for _, p := range expandedParents {
		c.ExpandedParents[p] = true
	}
	return c
}

func registerChecklistSave(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "checklist_save",
		Description: "Persist the cached organized checklist for a video to the database. Replaces any previously saved checklist for that video and user.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input ChecklistInput) (*mcp.CallToolResult, *ChecklistSaveResult, error) {
		if input.VideoID == "" || input.UserID == "" {
			return nil, nil, errors.New("video_id and user_id are required")
		}

		tasks, _, ok := engine.CacheGetChecklist(ctx, input.VideoID)
		if !ok {
			return nil, nil, errors.New("no cached checklist for this video; run organize_tasks first")
		}

		db := store.GetChecklistDB()
		if db == nil {
			return nil, &ChecklistSaveResult{
				Saved:   false,
				Message: "No database configured; checklist remains cached only",
			}, nil
		}

		engine.IncrChecklistSaves()
		if err := db.SaveChecklist(ctx, input.VideoID, input.UserID, tasks); err != nil {
			engine.IncrChecklistSaveFails()
			slog.Warn("checklist_save: durable save failed",
				slog.String("video", input.VideoID), slog.Any("error", err))
			return nil, &ChecklistSaveResult{
				Saved:   false,
				Message: "Checklist couldn't be saved to database; it remains cached",
			}, nil
		}
		return nil, &ChecklistSaveResult{
			Saved:   true,
			Message: fmt.Sprintf("Checklist saved (%d items)", len(tasks)),
		}, nil
	})
}

func registerChecklistGet(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "checklist_get",
		Description: "Fetch the organized checklist for a video: database first, cache fallback. Returns tasks with per-item completion where available.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input ChecklistInput) (*mcp.CallToolResult, *ChecklistGetResult, error) {
		if input.VideoID == "" || input.UserID == "" {
			return nil, nil, errors.New("video_id and user_id are required")
		}
		tasks, completed, source, err := loadChecklist(ctx, input.VideoID, input.UserID)
		if err != nil {
			return nil, nil, err
		}
		return nil, &ChecklistGetResult{Tasks: tasks, Completed: completed, Source: source}, nil
	})
}

// toggleChecklistItem applies a completion toggle against the stored
// checklist and persists the outcome everywhere the checklist lives.
func toggleChecklistItem(ctx context.Context, input ChecklistToggleInput) (*ChecklistToggleResult, error) {
	tasks, completed, source, err := loadChecklist(ctx, input.VideoID, input.UserID)
	if err != nil {
		return nil, err
	}

	c := rebuildChecklist(tasks, completed, input.CurrentStep, input.ExpandedParents)
	next, applied := c.ToggleComplete(input.TaskID)
	if !applied {
		return &ChecklistToggleResult{
			Applied:     false,
			Completed:   c.Completed[input.TaskID],
			CurrentStep: c.CurrentStep,
			Message:     "Complete the previous steps first",
		}, nil
	}

	nowDone := next.Completed[input.TaskID]
	if source == "database" {
		if db := store.GetChecklistDB(); db != nil {
			if err := db.SetItemCompleted(ctx, input.VideoID, input.UserID, input.TaskID, nowDone); err != nil {
				slog.Warn("checklist_toggle: persist failed",
					slog.String("task", input.TaskID), slog.Any("error", err))
			}
		}
	}
	// Refresh the cached copy with the new flags; without a database this is
	// the only place completion survives until the next call.
	engine.CacheSetChecklist(ctx, input.VideoID, tasks, next.Completed)
	// Mirror completion onto the underlying saved task when the item maps
	// to one. Generated sub-steps have non-numeric ids and live only in
	// the checklist.
	if id, err := strconv.ParseInt(input.TaskID, 10, 64); err == nil {
		if _, err := store.SetTaskCompleted(ctx, id, nowDone); err != nil {
			slog.Debug("checklist_toggle: task store sync skipped", slog.Any("error", err))
		}
	}

	return &ChecklistToggleResult{
		Applied:     true,
		Completed:   nowDone,
		CurrentStep: next.CurrentStep,
		Message:     fmt.Sprintf("Item %s completed=%t", input.TaskID, nowDone),
	}, nil
}

func registerChecklistToggle(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "checklist_toggle",
		Description: "Toggle completion of a checklist item, enforcing step order: an item can only be completed once every visible item before it is done. Completing the current step advances the stepper. Pass expanded_parents for sub-steps you have open.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input ChecklistToggleInput) (*mcp.CallToolResult, *ChecklistToggleResult, error) {
		if input.VideoID == "" || input.UserID == "" || input.TaskID == "" {
			return nil, nil, errors.New("video_id, user_id and task_id are required")
		}
		result, err := toggleChecklistItem(ctx, input)
		if err != nil {
			return nil, nil, err
		}
		return nil, result, nil
	})
}

func registerChecklistStep(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "checklist_step",
		Description: "Move the checklist stepper to the nearest visible item before or after the current one. Direction: next or prev.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input ChecklistStepInput) (*mcp.CallToolResult, *ChecklistStepResult, error) {
		if input.VideoID == "" || input.UserID == "" {
			return nil, nil, errors.New("video_id and user_id are required")
		}

		tasks, completed, _, err := loadChecklist(ctx, input.VideoID, input.UserID)
		if err != nil {
			return nil, nil, err
		}

		c := rebuildChecklist(tasks, completed, input.CurrentStep, input.ExpandedParents)
		switch input.Direction {
		case "next":
			c = c.NextStep()
		case "prev":
			c = c.PrevStep()
		default:
			return nil, nil, fmt.Errorf("invalid direction %q (valid: next, prev)", input.Direction)
		}
		return nil, &ChecklistStepResult{CurrentStep: c.CurrentStep}, nil
	})
}
