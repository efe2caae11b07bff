package engine

import "encoding/json"

// Task types accepted by the pipeline and the task store.
const (
	TypeScript    = "script"
	TypeTitle     = "title"
	TypeThumbnail = "thumbnail"
	TypeGeneral   = "general"
)

// ValidTaskType reports whether t is a known task type.
func ValidTaskType(t string) bool {
	switch t {
	case TypeScript, TypeTitle, TypeThumbnail, TypeGeneral:
		return true
	}
	return false
}

// RawTask is a user-saved task as it enters the organization pipeline.
// Owned by the task store; immutable here.
type RawTask struct {
	ID        string `json:"id"`
	Content   string `json:"content"`
	Type      string `json:"type"`
	Completed bool   `json:"completed"`
}

// RawOrganizedTask is one entry of the LLM's organizedTasks array.
// Model output is untrusted: any field may be missing or carry the wrong
// JSON type, so decoding is per-field and best-effort — a malformed field
// is left at its zero value instead of failing the whole array.
type RawOrganizedTask struct {
	ID            string
	Content       string
	Type          string
	Order         int
	Reason        string
	ExpandedSteps []string
}

// UnmarshalJSON decodes each field independently, tolerating wrong types.
func (t *RawOrganizedTask) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	tryStr := func(key string, dst *string) {
		if raw, ok := fields[key]; ok {
			var s string
			if json.Unmarshal(raw, &s) == nil {
				*dst = s
			}
		}
	}
	tryStr("id", &t.ID)
	tryStr("content", &t.Content)
	tryStr("type", &t.Type)
	tryStr("reason", &t.Reason)
	if raw, ok := fields["order"]; ok {
		var n int
		if json.Unmarshal(raw, &n) == nil {
			t.Order = n
		}
	}
	if raw, ok := fields["expandedSteps"]; ok {
		var steps []string
		if json.Unmarshal(raw, &steps) == nil {
			t.ExpandedSteps = steps
		}
	}
	return nil
}

// OrganizedTask is the canonical checklist entry produced by expansion.
// Order values are globally unique and dense, starting at 1, across parents
// and generated sub-steps in generation sequence.
type OrganizedTask struct {
	ID            string   `json:"id"`
	Content       string   `json:"content"`
	Type          string   `json:"type"`
	Order         int      `json:"order"`
	Reason        string   `json:"reason"`
	ExpandedSteps []string `json:"expandedSteps,omitempty"`
	IsParent      bool     `json:"isParent,omitempty"`
	ParentID      string   `json:"parentId,omitempty"`
	ParentOrder   int      `json:"parentOrder,omitempty"`
}

// Simplified returns a copy with ExpandedSteps stripped — the shape written
// to durable storage.
func (t OrganizedTask) Simplified() OrganizedTask {
	t.ExpandedSteps = nil
	return t
}

// VideoInfo is basic metadata for a YouTube video.
type VideoInfo struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Channel     string `json:"channel"`
	Duration    int    `json:"durationSeconds,omitempty"`
	Views       string `json:"views,omitempty"`
	Description string `json:"description,omitempty"`
}
