package studioserver

import (
	"context"
	"testing"
	"time"

	"github.com/anatolykoptev/go_studio/internal/engine"
)

// seedCachedChecklist stores a two-step checklist in the cache with no
// database configured, the way organize_tasks leaves it on a DB-less setup.
func seedCachedChecklist(t *testing.T, videoID string) {
	t.Helper()
	engine.InitCache("", time.Minute, 100, time.Minute)
	engine.CacheSetChecklist(context.Background(), videoID, []engine.OrganizedTask{
		{ID: "a", Content: "Write script", Type: "script", Order: 1, IsParent: true},
		{ID: "b", Content: "Design thumbnail", Type: "thumbnail", Order: 2, IsParent: true},
	}, nil)
}

func TestToggleChecklistItem_CompletionSurvivesAcrossCalls(t *testing.T) {
	seedCachedChecklist(t, "vid-toggle-1")
	ctx := context.Background()

	// Call 1: complete step 1.
	res, err := toggleChecklistItem(ctx, ChecklistToggleInput{
		VideoID: "vid-toggle-1", UserID: "user-1", TaskID: "a",
	})
	if err != nil {
		t.Fatalf("first toggle: %v", err)
	}
	if !res.Applied || !res.Completed {
		t.Fatalf("first toggle = %+v", res)
	}

	// Call 2 rebuilds from storage. Step 1's completion must have survived,
	// or step 2 stays gated forever.
	res, err = toggleChecklistItem(ctx, ChecklistToggleInput{
		VideoID: "vid-toggle-1", UserID: "user-1", TaskID: "b",
	})
	if err != nil {
		t.Fatalf("second toggle: %v", err)
	}
	if !res.Applied {
		t.Fatalf("step 2 still gated after completing step 1: %+v", res)
	}
}

func TestToggleChecklistItem_GatedWithoutPredecessor(t *testing.T) {
	seedCachedChecklist(t, "vid-toggle-2")
	ctx := context.Background()

	res, err := toggleChecklistItem(ctx, ChecklistToggleInput{
		VideoID: "vid-toggle-2", UserID: "user-1", TaskID: "b",
	})
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if res.Applied {
		t.Fatal("completing step 2 before step 1 must be rejected")
	}
	if res.Message != "Complete the previous steps first" {
		t.Errorf("message = %q", res.Message)
	}
}

func TestToggleChecklistItem_UncompleteSurvives(t *testing.T) {
	seedCachedChecklist(t, "vid-toggle-3")
	ctx := context.Background()

	input := ChecklistToggleInput{VideoID: "vid-toggle-3", UserID: "user-1", TaskID: "a"}
	if _, err := toggleChecklistItem(ctx, input); err != nil {
		t.Fatalf("complete: %v", err)
	}
	res, err := toggleChecklistItem(ctx, input) // un-complete
	if err != nil {
		t.Fatalf("un-complete: %v", err)
	}
	if !res.Applied || res.Completed {
		t.Fatalf("un-complete = %+v", res)
	}

	// The next call must see step 1 incomplete again and gate step 2.
	res, err = toggleChecklistItem(ctx, ChecklistToggleInput{
		VideoID: "vid-toggle-3", UserID: "user-1", TaskID: "b",
	})
	if err != nil {
		t.Fatalf("toggle b: %v", err)
	}
	if res.Applied {
		t.Error("step 2 should be gated after step 1 was un-completed")
	}
}
