package engine

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestOrganizeTasks_Empty(t *testing.T) {
	res := OrganizeTasks(context.Background(), "user-1", nil)
	if res.Error != "No tasks to organize" {
		t.Errorf("error = %q", res.Error)
	}
}

func TestOrganizeTasks_EndToEnd(t *testing.T) {
	primary := &fakeCompleter{reply: "```json\n" + `{"organizedTasks": [
		{"id": "10", "content": "Write the script", "type": "script", "order": 1,
		 "reason": "Everything depends on the script",
		 "expandedSteps": ["Outline the hook", "Draft the body"]}
	]}` + "\n```"}
	setProviders(t, primary, nil)

	res := OrganizeTasks(context.Background(), "user-1", []RawTask{
		{ID: "10", Content: "Write the script", Type: "script"},
	})
	if res.Error != "" {
		t.Fatalf("error = %q", res.Error)
	}
	if res.Provider != ProviderClaude {
		t.Errorf("provider = %q", res.Provider)
	}
	// One parent plus two generated sub-steps.
	if len(res.OrganizedTasks) != 3 {
		t.Fatalf("organized = %d, want 3", len(res.OrganizedTasks))
	}
	if res.OrganizedTasks[2].ID != "10_step_1" || res.OrganizedTasks[2].Order != 3 {
		t.Errorf("last = %+v", res.OrganizedTasks[2])
	}
}

func TestOrganizeTasks_GatewayFailureIsData(t *testing.T) {
	setProviders(t, nil, nil)

	res := OrganizeTasks(context.Background(), "user-1", []RawTask{{ID: "1", Content: "x"}})
	if !strings.HasPrefix(res.Error, "No AI service available.") {
		t.Errorf("error = %q", res.Error)
	}
	if len(res.OrganizedTasks) != 0 {
		t.Error("no tasks expected on failure")
	}
}

func TestOrganizeTasks_ParseFailureCarriesDiagnostics(t *testing.T) {
	primary := &fakeCompleter{reply: "Sorry, I can only answer in prose today."}
	setProviders(t, primary, nil)

	res := OrganizeTasks(context.Background(), "user-1", []RawTask{{ID: "1", Content: "x"}})
	if !strings.HasPrefix(res.Error, "Failed to parse AI response JSON:") {
		t.Errorf("error = %q", res.Error)
	}
	if res.RawResponsePreview == "" {
		t.Error("preview expected for parse failures")
	}
}

func TestOrganizeTasks_MissingArrayCarriesRawResponse(t *testing.T) {
	raw := `{"tasks": []}`
	primary := &fakeCompleter{reply: raw}
	setProviders(t, primary, nil)

	res := OrganizeTasks(context.Background(), "user-1", []RawTask{{ID: "1", Content: "x"}})
	if res.Error != "Invalid AI response format - missing tasks array" {
		t.Errorf("error = %q", res.Error)
	}
	if res.RawResponse != raw {
		t.Errorf("raw response = %q", res.RawResponse)
	}
}

func TestOrganizeTasks_FallbackProvider(t *testing.T) {
	primary := &fakeCompleter{err: errors.New("down")}
	fallback := &fakeCompleter{reply: validReply}
	setProviders(t, primary, fallback)

	res := OrganizeTasks(context.Background(), "user-1", []RawTask{{ID: "1", Content: "x"}})
	if res.Error != "" {
		t.Fatalf("error = %q", res.Error)
	}
	if res.Provider != ProviderOpenAI {
		t.Errorf("provider = %q", res.Provider)
	}
}
