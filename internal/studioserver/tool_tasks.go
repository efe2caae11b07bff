package studioserver

import (
	"context"
	"errors"

	"github.com/anatolykoptev/go_studio/internal/engine/store"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// TaskListInput is the input for task_list.
type TaskListInput struct {
	VideoID string `json:"video_id"`
	UserID  string `json:"user_id"`
}

// TaskCompleteInput is the input for task_complete.
type TaskCompleteInput struct {
	ID        int64 `json:"id"`
	Completed *bool `json:"completed,omitempty"`
}

// TaskDeleteInput is the input for task_delete.
type TaskDeleteInput struct {
	ID int64 `json:"id"`
}

func registerTaskAdd(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "task_add",
		Description: "Save a production task for a video (SQLite). Type options: script, title, thumbnail, general (default). Returns the assigned ID for future updates.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input store.TaskAddInput) (*mcp.CallToolResult, *store.TaskResult, error) {
		if input.VideoID == "" || input.UserID == "" || input.Content == "" {
			return nil, nil, errors.New("video_id, user_id and content are required")
		}
		result, err := store.AddTask(ctx, input)
		if err != nil {
			return nil, nil, err
		}
		return nil, result, nil
	})
}

func registerTaskList(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "task_list",
		Description: "List saved production tasks for a video, oldest first. Returns id, content, type, and completion for each task.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input TaskListInput) (*mcp.CallToolResult, *store.TaskListResult, error) {
		result, err := store.ListTasks(ctx, input.VideoID, input.UserID)
		if err != nil {
			return nil, nil, err
		}
		return nil, result, nil
	})
}

func registerTaskComplete(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "task_complete",
		Description: "Mark a saved task completed (or not, with completed=false) by ID. Get IDs from task_list.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input TaskCompleteInput) (*mcp.CallToolResult, *store.TaskResult, error) {
		if input.ID <= 0 {
			return nil, nil, errors.New("id is required")
		}
		completed := true
		if input.Completed != nil {
			completed = *input.Completed
		}
		result, err := store.SetTaskCompleted(ctx, input.ID, completed)
		if err != nil {
			return nil, nil, err
		}
		return nil, result, nil
	})
}

func registerTaskDelete(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "task_delete",
		Description: "Delete a saved task by ID. Get IDs from task_list.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input TaskDeleteInput) (*mcp.CallToolResult, *store.TaskResult, error) {
		if input.ID <= 0 {
			return nil, nil, errors.New("id is required")
		}
		result, err := store.DeleteTask(ctx, input.ID)
		if err != nil {
			return nil, nil, err
		}
		return nil, result, nil
	})
}
