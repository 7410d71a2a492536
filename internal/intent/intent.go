// Package intent turns a chat message into exactly one Intent. Explicit
// emoji commands and completion phrases are recognised deterministically;
// everything else goes through a Completer that returns a label.
package intent

import (
	"productif-agent/internal/model"
)

// Kind is a stable name for an intent variant, used in logs and metrics.
type Kind string

const (
	KindCompleteItems     Kind = "complete_items"
	KindCreateTask        Kind = "create_task"
	KindCreateHabit       Kind = "create_habit"
	KindCreateProcess     Kind = "create_process"
	KindRateDay           Kind = "rate_day"
	KindGetTasks          Kind = "get_tasks"
	KindGetHabits         Kind = "get_habits"
	KindGetProcesses      Kind = "get_processes"
	KindGetHabitDetails   Kind = "get_habit_details"
	KindGetSummary        Kind = "get_summary"
	KindUpdatePreferences Kind = "update_preferences"
	KindHelp              Kind = "help"
	KindChat              Kind = "chat"
)

// Intent is a closed set: only the types in this file implement it.
// Consumers switch on the concrete type.
type Intent interface {
	Kind() Kind
	isIntent()
}

// Target says which collection a completion applies to.
type Target int

const (
	TargetHabits Target = iota
	TargetTasks
)

func (t Target) String() string {
	if t == TargetTasks {
		return "tasks"
	}
	return "habits"
}

// CompleteItems marks one or more habits or tasks as done.
type CompleteItems struct {
	Items  []string
	Date   Date
	Note   *string
	Rating *int
	Target Target
}

// CreateTask creates a task. Options hold only the fields the user gave.
type CreateTask struct {
	Title       string
	Description string
	Options     TaskOptions
}

type CreateHabit struct {
	Name string
}

// CreateProcess creates a process whose steps become an ordered checklist.
type CreateProcess struct {
	Name  string
	Steps []string
}

// RateDay records a 0..10 rating for the day with an optional comment.
type RateDay struct {
	Rating  int
	Comment string
	Date    Date
}

type GetTasks struct{}

type GetHabits struct{}

type GetProcesses struct{}

type GetHabitDetails struct {
	Name string
}

type GetSummary struct{}

type UpdatePreferences struct {
	Preferences model.Preferences
}

type Help struct{}

type Chat struct{}

func (CompleteItems) Kind() Kind     { return KindCompleteItems }
func (CreateTask) Kind() Kind        { return KindCreateTask }
func (CreateHabit) Kind() Kind       { return KindCreateHabit }
func (CreateProcess) Kind() Kind     { return KindCreateProcess }
func (RateDay) Kind() Kind           { return KindRateDay }
func (GetTasks) Kind() Kind          { return KindGetTasks }
func (GetHabits) Kind() Kind         { return KindGetHabits }
func (GetProcesses) Kind() Kind      { return KindGetProcesses }
func (GetHabitDetails) Kind() Kind   { return KindGetHabitDetails }
func (GetSummary) Kind() Kind        { return KindGetSummary }
func (UpdatePreferences) Kind() Kind { return KindUpdatePreferences }
func (Help) Kind() Kind              { return KindHelp }
func (Chat) Kind() Kind              { return KindChat }

func (CompleteItems) isIntent()     {}
func (CreateTask) isIntent()        {}
func (CreateHabit) isIntent()       {}
func (CreateProcess) isIntent()     {}
func (RateDay) isIntent()           {}
func (GetTasks) isIntent()          {}
func (GetHabits) isIntent()         {}
func (GetProcesses) isIntent()      {}
func (GetHabitDetails) isIntent()   {}
func (GetSummary) isIntent()        {}
func (UpdatePreferences) isIntent() {}
func (Help) isIntent()              {}
func (Chat) isIntent()              {}

// RequiresAuth reports whether dispatching i needs an authenticated session.
// Everything that touches the Domain API does.
func RequiresAuth(i Intent) bool {
	switch i.(type) {
	case Help, Chat:
		return false
	default:
		return true
	}
}
