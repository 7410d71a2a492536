// Package dispatch executes an Intent against the Domain API on behalf of
// one user session. It resolves names, performs the calls and aggregates the
// per-item results. It keeps no state between messages.
package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"productif-agent/internal/intent"
	"productif-agent/internal/matcher"
	"productif-agent/internal/model"
	"productif-agent/pkg/logger"
	"productif-agent/pkg/metrics"
)

const (
	DefaultDayRatingHabit = "Note de sa journée"
	defaultHabitFrequency = "daily"
)

// DomainAPI is the subset of the productif client the dispatcher uses.
type DomainAPI interface {
	ListHabits(ctx context.Context, credential string) ([]model.Habit, error)
	CompleteHabit(ctx context.Context, credential string, in model.HabitCompletion) error
	CreateHabit(ctx context.Context, credential string, in model.NewHabit) (*model.Habit, error)
	ListTasks(ctx context.Context, credential string) ([]model.Task, error)
	CreateTask(ctx context.Context, credential string, in model.NewTask) (*model.Task, error)
	CompleteTask(ctx context.Context, credential, taskID string) error
	ListProjects(ctx context.Context, credential string) ([]model.Project, error)
	ListProcesses(ctx context.Context, credential string) ([]model.Process, error)
	CreateProcess(ctx context.Context, credential string, in model.NewProcess) (*model.Process, error)
	UpdatePreferences(ctx context.Context, credential string, prefs model.Preferences) error
}

type Options struct {
	// DayRatingHabit is the habit a ⭐ rating completes.
	DayRatingHabit string
}

type Dispatcher struct {
	api            DomainAPI
	dayRatingHabit string
	newID          func() string
	logger         *zap.Logger
}

func NewDispatcher(api DomainAPI, opts Options, logger *zap.Logger) *Dispatcher {
	if opts.DayRatingHabit == "" {
		opts.DayRatingHabit = DefaultDayRatingHabit
	}
	return &Dispatcher{
		api:            api,
		dayRatingHabit: opts.DayRatingHabit,
		newID:          uuid.NewString,
		logger:         logger,
	}
}

// Dispatch runs in for the session. Errors are from the taxonomy in
// errors.go; per-item failures of a batch are reported in Result.Outcome
// instead.
func (d *Dispatcher) Dispatch(ctx context.Context, sess model.Session, in intent.Intent) (Result, error) {
	res := Result{Intent: in}
	if intent.RequiresAuth(in) && !sess.Authenticated {
		return res, ErrAuthenticationRequired
	}

	log := logger.WithTrace(ctx, d.logger).With(zap.String("intent", string(in.Kind())))
	cred := sess.Credential

	var err error
	switch v := in.(type) {
	case intent.CompleteItems:
		if v.Target == intent.TargetTasks {
			err = d.completeTasks(ctx, cred, v, &res)
		} else {
			err = d.completeHabits(ctx, cred, v, &res)
		}
	case intent.RateDay:
		err = d.rateDay(ctx, cred, v, &res)
	case intent.CreateTask:
		err = d.createTask(ctx, cred, v, &res, log)
	case intent.CreateHabit:
		err = d.createHabit(ctx, cred, v, &res)
	case intent.CreateProcess:
		err = d.createProcess(ctx, cred, v, &res)
	case intent.UpdatePreferences:
		err = d.updatePreferences(ctx, cred, v, &res)
	case intent.GetTasks:
		res.Tasks, err = d.api.ListTasks(ctx, cred)
	case intent.GetHabits:
		res.Habits, err = d.api.ListHabits(ctx, cred)
	case intent.GetProcesses:
		res.Processes, err = d.api.ListProcesses(ctx, cred)
	case intent.GetHabitDetails:
		err = d.habitDetails(ctx, cred, v, &res)
	case intent.GetSummary:
		err = d.summary(ctx, cred, &res)
	case intent.Help, intent.Chat:
	default:
		return res, fmt.Errorf("unsupported intent %T", in)
	}

	d.recordOutcome(in.Kind(), res.Outcome)
	if err != nil {
		err = asDispatchError(err)
		log.Info("dispatch failed", zap.Error(err))
		return res, err
	}
	return res, nil
}

// completeHabits 习惯列表每批只拉取一次，单个条目失败不影响其它条目
func (d *Dispatcher) completeHabits(ctx context.Context, cred string, v intent.CompleteItems, res *Result) error {
	if len(v.Items) == 0 {
		return ErrMissingEntity
	}
	habits, err := d.api.ListHabits(ctx, cred)
	if err != nil {
		return err
	}

	done := make(map[string]bool)
	for _, item := range v.Items {
		m := matcher.Best(habits, model.HabitName, item)
		if !m.Found() {
			res.Outcome.NotFound = append(res.Outcome.NotFound, item)
			continue
		}
		habit := m.Candidate
		// 同一批次里重复提到的习惯只完成一次
		if done[habit.ID] {
			res.Outcome.AlreadyDone = append(res.Outcome.AlreadyDone, habit.Name)
			continue
		}
		err := d.api.CompleteHabit(ctx, cred, model.HabitCompletion{
			HabitID:   habit.ID,
			Date:      v.Date.String(),
			Completed: true,
			Note:      v.Note,
			Rating:    v.Rating,
		})
		if err != nil {
			res.Outcome.Errors = append(res.Outcome.Errors, ItemError{Term: item, Cause: err})
			continue
		}
		done[habit.ID] = true
		res.Outcome.Succeeded = append(res.Outcome.Succeeded, habit.Name)
	}
	return nil
}

// completeTasks 已完成的任务不再发送 PATCH
func (d *Dispatcher) completeTasks(ctx context.Context, cred string, v intent.CompleteItems, res *Result) error {
	if len(v.Items) == 0 {
		return ErrMissingEntity
	}
	tasks, err := d.api.ListTasks(ctx, cred)
	if err != nil {
		return err
	}

	for _, item := range v.Items {
		m := matcher.Best(tasks, model.TaskTitle, item)
		switch {
		case !m.Found():
			res.Outcome.NotFound = append(res.Outcome.NotFound, item)
		case m.Candidate.Completed:
			res.Outcome.AlreadyDone = append(res.Outcome.AlreadyDone, m.Candidate.Title)
		default:
			if err := d.api.CompleteTask(ctx, cred, m.Candidate.ID); err != nil {
				res.Outcome.Errors = append(res.Outcome.Errors, ItemError{Term: item, Cause: err})
				continue
			}
			m.Candidate.Completed = true
			res.Outcome.Succeeded = append(res.Outcome.Succeeded, m.Candidate.Title)
		}
	}

	// 找不到时回复里列出当前未完成的任务
	if len(res.Outcome.NotFound) > 0 {
		for _, t := range tasks {
			if !t.Completed {
				res.Tasks = append(res.Tasks, t)
			}
		}
	}
	return nil
}

func (d *Dispatcher) rateDay(ctx context.Context, cred string, v intent.RateDay, res *Result) error {
	items := intent.CompleteItems{
		Items:  []string{d.dayRatingHabit},
		Date:   v.Date,
		Rating: &v.Rating,
		Target: intent.TargetHabits,
	}
	if v.Comment != "" {
		items.Note = &v.Comment
	}
	return d.completeHabits(ctx, cred, items, res)
}

// createTask 项目名称匹配不到时任务不挂项目，不算错误
func (d *Dispatcher) createTask(ctx context.Context, cred string, v intent.CreateTask, res *Result, log *zap.Logger) error {
	if v.Title == "" {
		return ErrMissingEntity
	}
	in := model.NewTask{
		Title:       v.Title,
		Description: v.Description,
		Priority:    v.Options.PriorityOrDefault(),
		EnergyLevel: v.Options.EnergyOrDefault(),
	}
	if v.Options.DueDate != "" {
		due := v.Options.DueDate
		in.DueDate = &due
	}
	if v.Options.ProjectName != "" {
		projects, err := d.api.ListProjects(ctx, cred)
		if err != nil {
			log.Warn("project lookup failed, creating task without project", zap.Error(err))
		} else if m := matcher.Best(projects, model.ProjectName, v.Options.ProjectName); m.Found() {
			id := m.Candidate.ID
			in.ProjectID = &id
			res.ProjectName = m.Candidate.Name
		}
	}

	task, err := d.api.CreateTask(ctx, cred, in)
	if err != nil {
		return err
	}
	res.CreatedTask = task
	return nil
}

func (d *Dispatcher) createHabit(ctx context.Context, cred string, v intent.CreateHabit, res *Result) error {
	if v.Name == "" {
		return ErrMissingEntity
	}
	habit, err := d.api.CreateHabit(ctx, cred, model.NewHabit{Name: v.Name, Frequency: defaultHabitFrequency})
	if err != nil {
		return err
	}
	res.CreatedHabit = habit
	return nil
}

// createProcess 步骤以有序 JSON 清单保存在 description 中
func (d *Dispatcher) createProcess(ctx context.Context, cred string, v intent.CreateProcess, res *Result) error {
	if v.Name == "" {
		return ErrMissingEntity
	}
	steps := make([]model.ProcessStep, 0, len(v.Steps))
	for _, title := range v.Steps {
		steps = append(steps, model.ProcessStep{
			ID:         d.newID(),
			Title:      title,
			IsExpanded: true,
			SubSteps:   []model.ProcessStep{},
		})
	}
	desc, err := json.Marshal(steps)
	if err != nil {
		return fmt.Errorf("encoding process steps: %w", err)
	}

	process, err := d.api.CreateProcess(ctx, cred, model.NewProcess{Name: v.Name, Description: string(desc)})
	if err != nil {
		return err
	}
	res.CreatedProcess = process
	res.Steps = v.Steps
	return nil
}

func (d *Dispatcher) updatePreferences(ctx context.Context, cred string, v intent.UpdatePreferences, res *Result) error {
	if v.Preferences.IsEmpty() {
		return ErrMissingEntity
	}
	if err := d.api.UpdatePreferences(ctx, cred, v.Preferences); err != nil {
		return err
	}
	res.Preferences = v.Preferences
	return nil
}

func (d *Dispatcher) habitDetails(ctx context.Context, cred string, v intent.GetHabitDetails, res *Result) error {
	if v.Name == "" {
		return ErrMissingEntity
	}
	habits, err := d.api.ListHabits(ctx, cred)
	if err != nil {
		return err
	}
	m := matcher.Best(habits, model.HabitName, v.Name)
	if !m.Found() {
		res.Term = v.Name
		return ErrNoMatchFound
	}
	res.Habit = m.Candidate
	return nil
}

func (d *Dispatcher) summary(ctx context.Context, cred string, res *Result) error {
	tasks, err := d.api.ListTasks(ctx, cred)
	if err != nil {
		return err
	}
	habits, err := d.api.ListHabits(ctx, cred)
	if err != nil {
		return err
	}
	res.Tasks, res.Habits = tasks, habits
	return nil
}

func (d *Dispatcher) recordOutcome(kind intent.Kind, o Outcome) {
	metrics.AddDispatchItems(string(kind), "succeeded", len(o.Succeeded))
	metrics.AddDispatchItems(string(kind), "not_found", len(o.NotFound))
	metrics.AddDispatchItems(string(kind), "already_done", len(o.AlreadyDone))
	metrics.AddDispatchItems(string(kind), "error", len(o.Errors))
}

// asDispatchError 非分类内的错误（Domain API 失败）统一包装为 ErrExternalAPI
func asDispatchError(err error) error {
	switch {
	case errors.Is(err, ErrAuthenticationRequired),
		errors.Is(err, ErrNoMatchFound),
		errors.Is(err, ErrMissingEntity),
		errors.Is(err, ErrExternalAPI):
		return err
	}
	return fmt.Errorf("%w: %w", ErrExternalAPI, err)
}
