package engine

import (
	"fmt"
	"strings"
)

// LLM prompt templates — data only, no logic.

// organizeSystemPrompt frames the assistant for task organization. Sent as
// the system message to whichever provider handles the request.
const organizeSystemPrompt = `You are a video production assistant that helps organize tasks in an optimal sequential order for creating YouTube videos. Your job is to:

1. Break down high-level tasks into MANY specific actionable items - be extremely granular
2. Add detailed context and instructions to each task, especially for scripts
3. Create a comprehensive step-by-step workflow with 10+ steps minimum for each major task type
4. Provide thorough explanations for WHY each step matters and HOW to execute it
5. For script tasks, provide detailed breakdowns including camera angles, lighting suggestions, dialogue notes, b-roll opportunities, etc.

BE EXTREMELY DETAILED. Each high-level task should be broken down into at least 5-10 specific steps with clear guidance.`

// organizeUserPrompt carries the formatted task list and the strict JSON
// contract the parser expects. Args: task list.
const organizeUserPrompt = `I have the following tasks for my YouTube video project. Please:

1. ANALYZE each task and identify any that are vague or high-level
2. EXPAND those tasks into MANY specific, actionable items with detailed instructions (at least 5-10 steps per high-level task)
3. ORGANIZE everything into a comprehensive sequential checklist
4. For script tasks especially, break them down extensively with specific:
   - Scene-by-scene shooting instructions
   - Camera angles and movements
   - Lighting recommendations
   - Dialogue delivery notes
   - B-roll suggestions
   - Visual effects considerations
   - Transitions between segments
5. EXPLAIN in detail why each step should be completed at that stage and how to execute it properly

Please respond in this JSON format:
{
  "organizedTasks": [
    {
      "id": "task_id",
      "content": "The original task content",
      "type": "task type (script, title, thumbnail, etc.)",
      "order": 1,
      "reason": "Detailed explanation of why this task is at this position and its importance to the overall workflow",
      "expandedSteps": [
        "Detailed step 1 with specific instructions for execution",
        "Detailed step 2 with specific instructions for execution"
      ]
    }
  ]
}

Here are my tasks:

%s`

// BuildTaskList formats raw tasks as the prompt block both providers receive.
// Callers must reject empty input before reaching the LLM.
func BuildTaskList(tasks []RawTask) string {
	blocks := make([]string, 0, len(tasks))
	for _, t := range tasks {
		blocks = append(blocks, fmt.Sprintf("- Task ID: %s\nType: %s\nContent: %s\nCompleted: %t",
			t.ID, t.Type, t.Content, t.Completed))
	}
	return strings.Join(blocks, "\n\n")
}

// buildOrganizePrompt assembles the full user prompt for a task list.
func buildOrganizePrompt(taskList string) string {
	return fmt.Sprintf(organizeUserPrompt, taskList)
}
