package engine

import (
	"strings"
	"testing"
)

func TestExtractJSONObject_LabeledFence(t *testing.T) {
	raw := "Here is your checklist:\n```json\n{\"organizedTasks\": []}\n```\nHope this helps!"
	got := ExtractJSONObject(raw)
	if got != `{"organizedTasks": []}` {
		t.Errorf("got %q", got)
	}
}

func TestExtractJSONObject_PlainFence(t *testing.T) {
	raw := "Sure!\n```\n{\"organizedTasks\": []}\n```"
	got := ExtractJSONObject(raw)
	if got != `{"organizedTasks": []}` {
		t.Errorf("got %q", got)
	}
}

func TestExtractJSONObject_BraceSpan_NestedObjects(t *testing.T) {
	// A lazy {...} regex would stop at the first '}' inside the nested
	// object. The brace scanner must return the complete outer object.
	raw := `The result: {"organizedTasks": [{"id": "a", "content": "x"}]} done`
	got := ExtractJSONObject(raw)
	want := `{"organizedTasks": [{"id": "a", "content": "x"}]}`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestExtractJSONObject_BracesInsideStrings(t *testing.T) {
	raw := `prefix {"organizedTasks": [{"id": "a", "content": "use {curly} braces"}]} suffix`
	got := ExtractJSONObject(raw)
	if !strings.HasSuffix(got, `]}`) || !strings.HasPrefix(got, `{"organizedTasks"`) {
		t.Errorf("got %q", got)
	}
	res := ParseOrganizeResponse(raw)
	if res.Err != "" {
		t.Fatalf("parse failed: %s", res.Err)
	}
	if len(res.Tasks) != 1 || res.Tasks[0].Content != "use {curly} braces" {
		t.Errorf("tasks = %+v", res.Tasks)
	}
}

func TestExtractJSONObject_WholeText(t *testing.T) {
	raw := `{"organizedTasks": []}`
	if got := ExtractJSONObject(raw); got != raw {
		t.Errorf("got %q", got)
	}
}

func TestParseOrganizeResponse_Valid(t *testing.T) {
	raw := "```json\n" + `{"organizedTasks": [
		{"id": "t1", "content": "Write script", "type": "script", "order": 1,
		 "reason": "First", "expandedSteps": ["outline", "draft"]},
		{"id": "t2", "content": "Design thumbnail", "type": "thumbnail", "order": 2, "reason": "Second"}
	]}` + "\n```"

	res := ParseOrganizeResponse(raw)
	if res.Err != "" {
		t.Fatalf("unexpected error: %s", res.Err)
	}
	if len(res.Tasks) != 2 {
		t.Fatalf("tasks = %d, want 2", len(res.Tasks))
	}
	if res.Tasks[0].ID != "t1" || len(res.Tasks[0].ExpandedSteps) != 2 {
		t.Errorf("first task = %+v", res.Tasks[0])
	}
}

func TestParseOrganizeResponse_Idempotent(t *testing.T) {
	raw := `{"organizedTasks": [{"id": "t1", "content": "x", "type": "script"}]}`
	first := ParseOrganizeResponse(raw)
	second := ParseOrganizeResponse(raw)
	if first.Err != "" || second.Err != "" {
		t.Fatalf("errors: %q, %q", first.Err, second.Err)
	}
	if len(first.Tasks) != len(second.Tasks) || first.Tasks[0].ID != second.Tasks[0].ID {
		t.Error("repeated parse of identical input diverged")
	}
}

func TestParseOrganizeResponse_InvalidJSON(t *testing.T) {
	res := ParseOrganizeResponse("I could not produce JSON, sorry.")
	if !strings.HasPrefix(res.Err, "Failed to parse AI response JSON:") {
		t.Errorf("err = %q", res.Err)
	}
	if res.RawResponsePreview == "" {
		t.Error("expected a response preview for diagnostics")
	}
	if res.RawResponse != "" {
		t.Error("full raw response should only accompany the missing-array error")
	}
}

func TestParseOrganizeResponse_PreviewTruncated(t *testing.T) {
	raw := strings.Repeat("x", 500)
	res := ParseOrganizeResponse(raw)
	if res.Err == "" {
		t.Fatal("expected parse error")
	}
	if got := len([]rune(res.RawResponsePreview)); got > 203 { // 200 + "..."
		t.Errorf("preview length = %d", got)
	}
	if !strings.HasSuffix(res.RawResponsePreview, "...") {
		t.Errorf("preview = %q", res.RawResponsePreview)
	}
}

func TestParseOrganizeResponse_MissingTasksArray(t *testing.T) {
	for _, raw := range []string{
		`{"somethingElse": []}`,
		`{"organizedTasks": "not an array"}`,
		`{"organizedTasks": {"id": "t1"}}`,
		`{"organizedTasks": null}`,
	} {
		res := ParseOrganizeResponse(raw)
		if res.Err != "Invalid AI response format - missing tasks array" {
			t.Errorf("raw %q: err = %q", raw, res.Err)
		}
		if res.RawResponse != raw {
			t.Errorf("raw %q: RawResponse = %q", raw, res.RawResponse)
		}
	}
}

func TestParseOrganizeResponse_MalformedFieldsTolerated(t *testing.T) {
	// Wrong-typed fields inside a task degrade to zero values; the array
	// itself still parses.
	raw := `{"organizedTasks": [{"id": 42, "content": "ok", "order": "three", "expandedSteps": "nope"}]}`
	res := ParseOrganizeResponse(raw)
	if res.Err != "" {
		t.Fatalf("unexpected error: %s", res.Err)
	}
	task := res.Tasks[0]
	if task.ID != "" || task.Content != "ok" || task.Order != 0 || task.ExpandedSteps != nil {
		t.Errorf("task = %+v", task)
	}
}
