package engine

import "sort"

// Checklist is the state of a gated, steppable checklist over an organized
// task list. Values are immutable: every event method returns the next state,
// so transitions can be tested without a rendering surface.
//
// Visibility: parents are always rendered; a child only while its parent id
// is in ExpandedParents. Hidden children are excluded from gating and
// stepping, not just from display.
type Checklist struct {
	Tasks           []OrganizedTask
	Completed       map[string]bool
	CurrentStep     int
	ExpandedTaskID  string          // at most one open reason panel
	ExpandedParents map[string]bool // parent ids shown as child rows
	Generation      uint64          // organize-request token; stale applies are dropped
}

// NewChecklist builds the initial state for an organized task list.
// completed carries live completion flags from the task store, keyed by id.
func NewChecklist(tasks []OrganizedTask, completed map[string]bool) Checklist {
	return Checklist{
		Tasks:           tasks,
		Completed:       copyBoolMap(completed),
		CurrentStep:     1,
		ExpandedParents: map[string]bool{},
	}
}

func copyBoolMap(m map[string]bool) map[string]bool {
	out := make(map[string]bool, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (c Checklist) clone() Checklist {
	c.Completed = copyBoolMap(c.Completed)
	c.ExpandedParents = copyBoolMap(c.ExpandedParents)
	return c
}

// VisibleTasks returns parents plus children of expanded parents, sorted by
// order.
func (c Checklist) VisibleTasks() []OrganizedTask {
	out := make([]OrganizedTask, 0, len(c.Tasks))
	for _, t := range c.Tasks {
		if t.IsParent || (t.ParentID != "" && c.ExpandedParents[t.ParentID]) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

// taskByID looks up a task in the full (unfiltered) list.
func (c Checklist) taskByID(id string) (OrganizedTask, bool) {
	for _, t := range c.Tasks {
		if t.ID == id {
			return t, true
		}
	}
	return OrganizedTask{}, false
}

// CanProceedToStep reports whether the task at the given order may be
// completed: every visible task with a smaller order must be complete.
func (c Checklist) CanProceedToStep(order int) bool {
	if order == 1 {
		return true
	}
	for _, t := range c.VisibleTasks() {
		if t.Order < order && !c.Completed[t.ID] {
			return false
		}
	}
	return true
}

// ToggleReason opens the task's explanation panel, closing any other; a
// second toggle on the same id closes it.
func (c Checklist) ToggleReason(id string) Checklist {
	next := c.clone()
	if next.ExpandedTaskID == id {
		next.ExpandedTaskID = ""
	} else {
		next.ExpandedTaskID = id
	}
	return next
}

// ToggleParent expands or collapses a parent's child rows.
func (c Checklist) ToggleParent(parentID string) Checklist {
	next := c.clone()
	if next.ExpandedParents[parentID] {
		delete(next.ExpandedParents, parentID)
	} else {
		next.ExpandedParents[parentID] = true
	}
	return next
}

// ToggleComplete flips a task's completion flag, subject to gating. The
// second return value reports whether the event was applied; a gated toggle
// is a no-op. Completing the task at CurrentStep auto-advances the stepper.
func (c Checklist) ToggleComplete(id string) (Checklist, bool) {
	task, ok := c.taskByID(id)
	if !ok {
		return c, false
	}
	if !c.CanProceedToStep(task.Order) {
		return c, false
	}
	next := c.clone()
	nowComplete := !next.Completed[id]
	next.Completed[id] = nowComplete
	if nowComplete && task.Order == next.CurrentStep {
		next = next.NextStep()
	}
	return next, true
}

// NextStep advances CurrentStep to the nearest visible order greater than
// the current one. Orders are not necessarily contiguous once collapsed
// children are filtered out.
func (c Checklist) NextStep() Checklist {
	next := c.clone()
	best := 0
	for _, t := range c.VisibleTasks() {
		if t.Order > c.CurrentStep && (best == 0 || t.Order < best) {
			best = t.Order
		}
	}
	if best > 0 {
		next.CurrentStep = best
	}
	return next
}

// PrevStep moves CurrentStep to the nearest visible order less than the
// current one.
func (c Checklist) PrevStep() Checklist {
	next := c.clone()
	best := 0
	for _, t := range c.VisibleTasks() {
		if t.Order < c.CurrentStep && t.Order > best {
			best = t.Order
		}
	}
	if best > 0 {
		next.CurrentStep = best
	}
	return next
}

// SyncCompletion replaces completion flags with fresh store state. The store
// is the single source of truth; there is no local-only completion cache.
func (c Checklist) SyncCompletion(completed map[string]bool) Checklist {
	next := c.clone()
	next.Completed = copyBoolMap(completed)
	return next
}

// ApplyOrganized replaces the task list with the result of an organize
// request carrying generation token gen. Results from a request older than
// the one already applied are dropped, so a slow in-flight organize cannot
// overwrite a newer one. UI state resets; completion flags are kept for ids
// that survive.
func (c Checklist) ApplyOrganized(tasks []OrganizedTask, gen uint64) Checklist {
	if gen <= c.Generation && c.Generation != 0 {
		return c
	}
	next := NewChecklist(tasks, nil)
	next.Generation = gen
	for _, t := range tasks {
		if c.Completed[t.ID] {
			next.Completed[t.ID] = true
		}
	}
	return next
}
