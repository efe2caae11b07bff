package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/anatolykoptev/go_studio/internal/engine"
)

// Task is a single entry in the task store, keyed by video and user.
type Task struct {
	ID        int64  `json:"id"`
	VideoID   string `json:"video_id"`
	UserID    string `json:"user_id"`
	Content   string `json:"content"`
	Type      string `json:"type"`
	Completed bool   `json:"completed"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// TaskAddInput is the input for task_add.
type TaskAddInput struct {
	VideoID string `json:"video_id"`
	UserID  string `json:"user_id"`
	Content string `json:"content"`
	Type    string `json:"type,omitempty"`
}

// TaskResult is the output for add/complete/delete operations.
type TaskResult struct {
	ID      int64  `json:"id"`
	Message string `json:"message"`
}

// TaskListResult is the output for list operations.
type TaskListResult struct {
	Tasks []Task `json:"tasks"`
	Total int    `json:"total"`
}

var (
	taskDB   *sql.DB
	taskOnce sync.Once
	taskErr  error
)

// openTaskDB opens (or creates) the SQLite task database.
func openTaskDB() (*sql.DB, error) {
	taskOnce.Do(func() {
		dir := filepath.Join(os.Getenv("HOME"), ".go_studio")
		if err := os.MkdirAll(dir, 0750); err != nil {
			taskErr = fmt.Errorf("tasks: mkdir %s: %w", dir, err)
			return
		}
		dbPath := filepath.Join(dir, "studio.db")
		db, err := sql.Open("sqlite", dbPath)
		if err != nil {
			taskErr = fmt.Errorf("tasks: open db: %w", err)
			return
		}
		db.SetMaxOpenConns(1) // SQLite: single writer
		if err := initTaskSchema(db); err != nil {
			taskErr = fmt.Errorf("tasks: init schema: %w", err)
			return
		}
		taskDB = db
	})
	return taskDB, taskErr
}

// initTaskSchema creates the tasks table if it doesn't exist.
func initTaskSchema(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS tasks (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		video_id   TEXT NOT NULL,
		user_id    TEXT NOT NULL,
		content    TEXT NOT NULL,
		type       TEXT NOT NULL DEFAULT 'general',
		completed  INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`)
	if err != nil {
		return err
	}
	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_tasks_video_user ON tasks (video_id, user_id)`)
	return err
}

// AddTask saves a new task.
func AddTask(_ context.Context, input TaskAddInput) (*TaskResult, error) {
	if input.VideoID == "" || input.UserID == "" || input.Content == "" {
		return nil, errors.New("task_add: video_id, user_id and content are required")
	}

	taskType := strings.ToLower(input.Type)
	if taskType == "" {
		taskType = engine.TypeGeneral
	}
	if !engine.ValidTaskType(taskType) {
		return nil, fmt.Errorf("task_add: invalid type %q (valid: script, title, thumbnail, general)", taskType)
	}

	db, err := openTaskDB()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC().Format(time.RFC3339)
	res, err := db.Exec(
		`INSERT INTO tasks (video_id, user_id, content, type, completed, created_at, updated_at)
		 VALUES (?, ?, ?, ?, 0, ?, ?)`,
		input.VideoID, input.UserID, input.Content, taskType, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("task_add: insert: %w", err)
	}

	id, _ := res.LastInsertId()
	return &TaskResult{
		ID:      id,
		Message: fmt.Sprintf("Task saved with type '%s' (id=%d)", taskType, id),
	}, nil
}

// ListTasks returns all tasks for a video/user pair, oldest first.
func ListTasks(_ context.Context, videoID, userID string) (*TaskListResult, error) {
	if videoID == "" || userID == "" {
		return nil, errors.New("task_list: video_id and user_id are required")
	}

	db, err := openTaskDB()
	if err != nil {
		return nil, err
	}

	rows, err := db.Query(
		`SELECT id, video_id, user_id, content, type, completed, created_at, updated_at
		 FROM tasks WHERE video_id = ? AND user_id = ? ORDER BY id`,
		videoID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("task_list: query: %w", err)
	}
	defer rows.Close()

	var tasks []Task
	for rows.Next() {
		var t Task
		var completed int
		if err := rows.Scan(&t.ID, &t.VideoID, &t.UserID, &t.Content, &t.Type,
			&completed, &t.CreatedAt, &t.UpdatedAt); err != nil {
			continue
		}
		t.Completed = completed != 0
		tasks = append(tasks, t)
	}

	if tasks == nil {
		tasks = []Task{}
	}
	return &TaskListResult{Tasks: tasks, Total: len(tasks)}, nil
}

// SetTaskCompleted flips the completion flag on a task.
func SetTaskCompleted(_ context.Context, id int64, completed bool) (*TaskResult, error) {
	if id <= 0 {
		return nil, errors.New("task_complete: id is required")
	}

	db, err := openTaskDB()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC().Format(time.RFC3339)
	val := 0
	if completed {
		val = 1
	}
	res, err := db.Exec(`UPDATE tasks SET completed=?, updated_at=? WHERE id=?`, val, now, id)
	if err != nil {
		return nil, fmt.Errorf("task_complete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("task_complete: task #%d not found", id)
	}

	return &TaskResult{
		ID:      id,
		Message: fmt.Sprintf("Task #%d marked completed=%t", id, completed),
	}, nil
}

// DeleteTask removes a task.
func DeleteTask(_ context.Context, id int64) (*TaskResult, error) {
	if id <= 0 {
		return nil, errors.New("task_delete: id is required")
	}

	db, err := openTaskDB()
	if err != nil {
		return nil, err
	}

	res, err := db.Exec(`DELETE FROM tasks WHERE id=?`, id)
	if err != nil {
		return nil, fmt.Errorf("task_delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("task_delete: task #%d not found", id)
	}

	return &TaskResult{
		ID:      id,
		Message: fmt.Sprintf("Task #%d deleted", id),
	}, nil
}

// RawTasks converts stored tasks to the shape the organization pipeline
// consumes. Store IDs are numeric; the pipeline uses opaque strings.
func RawTasks(tasks []Task) []engine.RawTask {
	out := make([]engine.RawTask, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, engine.RawTask{
			ID:        fmt.Sprintf("%d", t.ID),
			Content:   t.Content,
			Type:      t.Type,
			Completed: t.Completed,
		})
	}
	return out
}
