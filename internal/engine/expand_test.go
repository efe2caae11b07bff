package engine

import (
	"fmt"
	"testing"
)

func TestExpandTasks_ParentsAndSteps(t *testing.T) {
	raw := []RawOrganizedTask{
		{ID: "a", Content: "Write script", Type: "script", Reason: "First",
			ExpandedSteps: []string{"outline", "draft", "revise"}},
		{ID: "b", Content: "Make thumbnail", Type: "thumbnail", Reason: "Second",
			ExpandedSteps: []string{"sketch", "render", "export"}},
	}

	out := ExpandTasks(raw)
	if len(out) != 8 {
		t.Fatalf("len = %d, want 8", len(out))
	}

	// Orders are dense 1..N across parents and children.
	for i, task := range out {
		if task.Order != i+1 {
			t.Errorf("out[%d].Order = %d, want %d", i, task.Order, i+1)
		}
	}

	parent := out[0]
	if !parent.IsParent || parent.ID != "a" || len(parent.ExpandedSteps) != 0 {
		t.Errorf("parent = %+v", parent)
	}
	if parent.ExpandedSteps == nil {
		t.Error("parent ExpandedSteps should be an empty slice, not nil")
	}

	child := out[1]
	if child.ID != "a_step_0" || child.Content != "outline" {
		t.Errorf("child = %+v", child)
	}
	if child.ParentID != "a" || child.ParentOrder != 1 {
		t.Errorf("child linkage = parent %q order %d", child.ParentID, child.ParentOrder)
	}
	if child.Type != "script" {
		t.Errorf("child type = %q, want inherited script", child.Type)
	}
	if child.Reason != "Sub-task for: Write script" {
		t.Errorf("child reason = %q", child.Reason)
	}

	second := out[4]
	if second.ID != "b" || second.Order != 5 || !second.IsParent {
		t.Errorf("second parent = %+v", second)
	}
	if out[5].ParentOrder != 5 {
		t.Errorf("second parent's child ParentOrder = %d, want 5", out[5].ParentOrder)
	}
}

func TestExpandTasks_Defaults(t *testing.T) {
	out := ExpandTasks([]RawOrganizedTask{{ExpandedSteps: []string{"step one"}}})
	if len(out) != 2 {
		t.Fatalf("len = %d, want 2", len(out))
	}

	parent := out[0]
	if parent.ID != "task_0" {
		t.Errorf("id = %q", parent.ID)
	}
	if parent.Content != "Unnamed task" {
		t.Errorf("content = %q", parent.Content)
	}
	if parent.Type != TypeGeneral {
		t.Errorf("type = %q", parent.Type)
	}
	if parent.Reason != "This task is an important part of the workflow" {
		t.Errorf("reason = %q", parent.Reason)
	}

	// A content-less parent is referenced generically in child reasons.
	if out[1].Reason != "Sub-task for: parent task" {
		t.Errorf("child reason = %q", out[1].Reason)
	}
	if out[1].ID != "task_0_step_0" {
		t.Errorf("child id = %q", out[1].ID)
	}
}

func TestExpandTasks_NoSteps(t *testing.T) {
	out := ExpandTasks([]RawOrganizedTask{
		{ID: "only", Content: "Upload", Type: "general", Reason: "Last"},
	})
	if len(out) != 1 {
		t.Fatalf("len = %d, want 1", len(out))
	}
	if !out[0].IsParent || out[0].Order != 1 {
		t.Errorf("task = %+v", out[0])
	}
}

func TestExpandTasks_SuppliedOrderIgnored(t *testing.T) {
	out := ExpandTasks([]RawOrganizedTask{
		{ID: "a", Content: "x", Order: 99},
		{ID: "b", Content: "y", Order: 1},
	})
	if out[0].Order != 1 || out[1].Order != 2 {
		t.Errorf("orders = %d, %d; model-supplied order must not leak through", out[0].Order, out[1].Order)
	}
}

func TestExpandTasks_Empty(t *testing.T) {
	out := ExpandTasks(nil)
	if len(out) != 0 {
		t.Errorf("len = %d, want 0", len(out))
	}
}

func TestExpandTasks_SingleTaskManySteps(t *testing.T) {
	steps := make([]string, 9)
	for i := range steps {
		steps[i] = fmt.Sprintf("step %d", i)
	}
	out := ExpandTasks([]RawOrganizedTask{{ID: "s", Content: "Script", Type: "script", ExpandedSteps: steps}})
	if len(out) != 10 {
		t.Fatalf("len = %d, want 10", len(out))
	}
	last := out[len(out)-1]
	if last.Order != 10 || last.ID != "s_step_8" {
		t.Errorf("last = %+v", last)
	}
}
