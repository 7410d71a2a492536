// Package productif is the HTTP client for the productif.io Domain API.
// Every call carries the user's bearer credential.
package productif

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"productif-agent/internal/model"
	"productif-agent/pkg/logger"
	"productif-agent/pkg/metrics"
	"productif-agent/pkg/otel"
	"productif-agent/pkg/trace"
	"productif-agent/pkg/util"
)

const maxErrorBody = 512

type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second // 避免单次调用拖住整条消息
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// ValidateToken reports whether the Domain API accepts credential.
// Any non-200 answer is a refused credential (false, nil); only transport
// failures are errors.
func (c *Client) ValidateToken(ctx context.Context, credential string) (bool, error) {
	err := c.do(ctx, "validate_token", credential, http.MethodGet, "/api/test-token", nil, nil)
	if err == nil {
		return true, nil
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return false, nil
	}
	return false, err
}

func (c *Client) ListHabits(ctx context.Context, credential string) ([]model.Habit, error) {
	var habits []model.Habit
	if err := c.do(ctx, "list_habits", credential, http.MethodGet, "/api/habits/agent", nil, &habits); err != nil {
		return nil, err
	}
	return habits, nil
}

func (c *Client) CompleteHabit(ctx context.Context, credential string, in model.HabitCompletion) error {
	return c.do(ctx, "complete_habit", credential, http.MethodPost, "/api/habits/agent", in, nil)
}

func (c *Client) CreateHabit(ctx context.Context, credential string, in model.NewHabit) (*model.Habit, error) {
	var habit model.Habit
	if err := c.do(ctx, "create_habit", credential, http.MethodPost, "/api/habits", in, &habit); err != nil {
		return nil, err
	}
	return &habit, nil
}

func (c *Client) ListTasks(ctx context.Context, credential string) ([]model.Task, error) {
	var tasks []model.Task
	if err := c.do(ctx, "list_tasks", credential, http.MethodGet, "/api/tasks/agent", nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (c *Client) CreateTask(ctx context.Context, credential string, in model.NewTask) (*model.Task, error) {
	var task model.Task
	if err := c.do(ctx, "create_task", credential, http.MethodPost, "/api/tasks/agent", in, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) CompleteTask(ctx context.Context, credential, taskID string) error {
	body := map[string]bool{"completed": true}
	return c.do(ctx, "complete_task", credential, http.MethodPatch, "/api/tasks/agent/"+url.PathEscape(taskID), body, nil)
}

func (c *Client) ListProjects(ctx context.Context, credential string) ([]model.Project, error) {
	var projects []model.Project
	if err := c.do(ctx, "list_projects", credential, http.MethodGet, "/api/projects/agent", nil, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

func (c *Client) ListProcesses(ctx context.Context, credential string) ([]model.Process, error) {
	var processes []model.Process
	if err := c.do(ctx, "list_processes", credential, http.MethodGet, "/api/processes/agent?includeStats=true", nil, &processes); err != nil {
		return nil, err
	}
	return processes, nil
}

func (c *Client) CreateProcess(ctx context.Context, credential string, in model.NewProcess) (*model.Process, error) {
	var process model.Process
	if err := c.do(ctx, "create_process", credential, http.MethodPost, "/api/processes/agent", in, &process); err != nil {
		return nil, err
	}
	return &process, nil
}

func (c *Client) UpdatePreferences(ctx context.Context, credential string, prefs model.Preferences) error {
	return c.do(ctx, "update_preferences", credential, http.MethodPatch, "/api/users/preferences", prefs, nil)
}

// do 发送一次请求：bearer 认证、trace 传播、span、耗时指标
func (c *Client) do(ctx context.Context, op, credential, method, path string, in, out any) (err error) {
	ctx, span := otel.StartSpan(ctx, "productif."+op)
	span.SetAttributes(
		attribute.String("http.method", method),
		attribute.String("productif.operation", op),
	)
	start := time.Now()
	defer func() {
		metrics.RecordDomainAPIDuration(op, util.ClassifyError(err), time.Since(start))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			logger.WithTrace(ctx, c.logger).Warn("domain api call failed",
				zap.String("operation", op),
				zap.String("error_type", util.ClassifyError(err)),
				zap.Error(err))
		}
		span.End()
	}()

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encoding %s request: %w", op, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+credential)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	// 传播 trace_id
	if traceID := trace.FromContext(ctx); traceID != "" {
		req.Header.Set(trace.HeaderName(), traceID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("productif api %s: %w", path, err)
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &APIError{Status: resp.StatusCode, Path: path, Body: strings.TrimSpace(string(snippet))}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", op, err)
	}
	return nil
}
