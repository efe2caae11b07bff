package store

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anatolykoptev/go_studio/internal/engine"
)

// resetTasks resets the singleton so each test gets a fresh DB.
func resetTasks(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	// Override HOME so openTaskDB uses the temp dir.
	t.Setenv("HOME", dir)
	// Reset the singleton.
	taskDB = nil
	taskErr = nil
	taskOnce = sync.Once{}
	return filepath.Join(dir, ".go_studio", "studio.db")
}

func TestAddTask_Basic(t *testing.T) {
	resetTasks(t)
	ctx := context.Background()

	result, err := AddTask(ctx, TaskAddInput{
		VideoID: "dQw4w9WgXcQ",
		UserID:  "user-1",
		Content: "Write the script",
		Type:    "script",
	})
	require.NoError(t, err)
	assert.Greater(t, result.ID, int64(0))
	assert.NotEmpty(t, result.Message)
}

func TestAddTask_DefaultType(t *testing.T) {
	resetTasks(t)
	ctx := context.Background()

	added, err := AddTask(ctx, TaskAddInput{
		VideoID: "dQw4w9WgXcQ", UserID: "user-1", Content: "Misc prep",
	})
	require.NoError(t, err)

	list, err := ListTasks(ctx, "dQw4w9WgXcQ", "user-1")
	require.NoError(t, err)
	require.Len(t, list.Tasks, 1)
	assert.Equal(t, engine.TypeGeneral, list.Tasks[0].Type)
	assert.Equal(t, added.ID, list.Tasks[0].ID)
}

func TestAddTask_MissingRequired(t *testing.T) {
	resetTasks(t)
	ctx := context.Background()

	_, err := AddTask(ctx, TaskAddInput{UserID: "u", Content: "c"})
	assert.Error(t, err)
	_, err = AddTask(ctx, TaskAddInput{VideoID: "v", Content: "c"})
	assert.Error(t, err)
	_, err = AddTask(ctx, TaskAddInput{VideoID: "v", UserID: "u"})
	assert.Error(t, err)
}

func TestAddTask_InvalidType(t *testing.T) {
	resetTasks(t)
	ctx := context.Background()

	_, err := AddTask(ctx, TaskAddInput{
		VideoID: "v", UserID: "u", Content: "c", Type: "color_grading",
	})
	assert.Error(t, err)
}

func TestListTasks_ScopedByVideoAndUser(t *testing.T) {
	resetTasks(t)
	ctx := context.Background()

	for _, tc := range []struct{ video, user, content string }{
		{"vid-a", "user-1", "script for A"},
		{"vid-a", "user-1", "thumbnail for A"},
		{"vid-a", "user-2", "someone else's task"},
		{"vid-b", "user-1", "script for B"},
	} {
		_, err := AddTask(ctx, TaskAddInput{VideoID: tc.video, UserID: tc.user, Content: tc.content})
		require.NoError(t, err)
	}

	list, err := ListTasks(ctx, "vid-a", "user-1")
	require.NoError(t, err)
	assert.Equal(t, 2, list.Total)
	assert.Equal(t, "script for A", list.Tasks[0].Content) // oldest first
}

func TestListTasks_Empty(t *testing.T) {
	resetTasks(t)
	list, err := ListTasks(context.Background(), "none", "nobody")
	require.NoError(t, err)
	assert.Equal(t, 0, list.Total)
	assert.NotNil(t, list.Tasks)
}

func TestSetTaskCompleted(t *testing.T) {
	resetTasks(t)
	ctx := context.Background()

	added, err := AddTask(ctx, TaskAddInput{VideoID: "v", UserID: "u", Content: "c"})
	require.NoError(t, err)

	_, err = SetTaskCompleted(ctx, added.ID, true)
	require.NoError(t, err)

	list, _ := ListTasks(ctx, "v", "u")
	require.Len(t, list.Tasks, 1)
	assert.True(t, list.Tasks[0].Completed)

	_, err = SetTaskCompleted(ctx, added.ID, false)
	require.NoError(t, err)
	list, _ = ListTasks(ctx, "v", "u")
	assert.False(t, list.Tasks[0].Completed)
}

func TestSetTaskCompleted_NotFound(t *testing.T) {
	resetTasks(t)
	_, err := SetTaskCompleted(context.Background(), 9999, true)
	assert.Error(t, err)
}

func TestDeleteTask(t *testing.T) {
	resetTasks(t)
	ctx := context.Background()

	added, err := AddTask(ctx, TaskAddInput{VideoID: "v", UserID: "u", Content: "c"})
	require.NoError(t, err)

	_, err = DeleteTask(ctx, added.ID)
	require.NoError(t, err)

	list, _ := ListTasks(ctx, "v", "u")
	assert.Equal(t, 0, list.Total)

	_, err = DeleteTask(ctx, added.ID)
	assert.Error(t, err, "double delete should report not found")
}

func TestRawTasks_Conversion(t *testing.T) {
	raw := RawTasks([]Task{
		{ID: 7, Content: "Write script", Type: "script", Completed: true},
	})
	require.Len(t, raw, 1)
	assert.Equal(t, engine.RawTask{ID: "7", Content: "Write script", Type: "script", Completed: true}, raw[0])
}
