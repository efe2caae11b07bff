package engine

import "fmt"

// Defaults applied when the model omits a field.
const (
	defaultContent = "Unnamed task"
	defaultReason  = "This task is an important part of the workflow"
)

// ExpandTasks flattens the model's hierarchical result into a single ordered
// list: each parent entry, then one task per expandedSteps string. A single
// counter assigns Order across parents and children in generation sequence;
// any order values the model supplied are ignored — untrusted output does not
// get to decide structural integrity. Pure; malformed input degrades to
// defaults, never an error.
func ExpandTasks(raw []RawOrganizedTask) []OrganizedTask {
	out := make([]OrganizedTask, 0, len(raw))
	order := 1

	for i, parent := range raw {
		id := parent.ID
		if id == "" {
			id = fmt.Sprintf("task_%d", i)
		}
		content := parent.Content
		if content == "" {
			content = defaultContent
		}
		typ := parent.Type
		if typ == "" {
			typ = TypeGeneral
		}
		reason := parent.Reason
		if reason == "" {
			reason = defaultReason
		}

		parentOrder := order
		order++
		out = append(out, OrganizedTask{
			ID:      id,
			Content: content,
			Type:    typ,
			Order:   parentOrder,
			Reason:  reason,
			// Steps become discrete tasks below; the inline copy is cleared.
			ExpandedSteps: []string{},
			IsParent:      true,
		})

		childRef := parent.Content
		if childRef == "" {
			childRef = "parent task"
		}
		for j, step := range parent.ExpandedSteps {
			out = append(out, OrganizedTask{
				ID:          fmt.Sprintf("%s_step_%d", id, j),
				Content:     step,
				Type:        typ,
				Order:       order,
				Reason:      fmt.Sprintf("Sub-task for: %s", childRef),
				ParentID:    id,
				ParentOrder: parentOrder,
			})
			order++
		}
	}
	return out
}
