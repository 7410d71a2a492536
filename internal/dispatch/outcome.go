package dispatch

import (
	"productif-agent/internal/intent"
	"productif-agent/internal/model"
)

// ItemError 批量操作中单个条目的失败
type ItemError struct {
	Term  string
	Cause error
}

// Outcome aggregates a batch write. Batches are never atomic: each item lands
// in exactly one of the lists.
type Outcome struct {
	Succeeded   []string
	NotFound    []string
	AlreadyDone []string
	Errors      []ItemError
}

// Empty reports whether nothing at all happened.
func (o Outcome) Empty() bool {
	return len(o.Succeeded) == 0 && len(o.NotFound) == 0 && len(o.AlreadyDone) == 0 && len(o.Errors) == 0
}

// Result carries everything the formatter needs for one intent. Only the
// fields relevant to Intent are set.
type Result struct {
	Intent  intent.Intent
	Outcome Outcome

	// 读操作
	Tasks     []model.Task
	Habits    []model.Habit
	Processes []model.Process
	Habit     *model.Habit

	// 写操作
	CreatedTask    *model.Task
	ProjectName    string
	CreatedHabit   *model.Habit
	CreatedProcess *model.Process
	Steps          []string
	Preferences    model.Preferences

	// Term is the name that failed to resolve for single-entity intents.
	Term string
}
