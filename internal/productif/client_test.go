package productif

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"productif-agent/internal/model"
	"productif-agent/pkg/trace"
	"productif-agent/pkg/util"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/", time.Second, zaptest.NewLogger(t))
}

func TestListHabitsSendsBearerAndTrace(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/habits/agent", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "trace-1", r.Header.Get(trace.HeaderName()))
		_, _ = w.Write([]byte(`[{"id":"h1","name":"Méditation","completed":false,"currentStreak":3}]`))
	})

	ctx := trace.WithContext(context.Background(), "trace-1")
	habits, err := c.ListHabits(ctx, "tok")
	require.NoError(t, err)
	require.Len(t, habits, 1)
	assert.Equal(t, "Méditation", habits[0].Name)
	assert.Equal(t, 3, habits[0].CurrentStreak)
}

func TestCompleteHabitBody(t *testing.T) {
	var got map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/habits/agent", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	})

	rating := 8
	err := c.CompleteHabit(context.Background(), "tok", model.HabitCompletion{
		HabitID: "h1", Date: "2025-06-16", Completed: true, Rating: &rating,
	})
	require.NoError(t, err)
	assert.Equal(t, "h1", got["habitId"])
	assert.Equal(t, "2025-06-16", got["date"])
	assert.Equal(t, true, got["completed"])
	assert.Equal(t, float64(8), got["rating"])
	assert.Nil(t, got["note"])
}

func TestCompleteTaskPatchesTask(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/api/tasks/agent/t-42", r.URL.Path)
		var body map[string]bool
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.True(t, body["completed"])
	})
	require.NoError(t, c.CompleteTask(context.Background(), "tok", "t-42"))
}

func TestListProcessesAsksForStats(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/processes/agent", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("includeStats"))
		_, _ = w.Write([]byte(`[{"id":"p1","name":"Revue","stats":{"completionPercentage":50,"totalTasks":2,"completedTasks":1}}]`))
	})
	processes, err := c.ListProcesses(context.Background(), "tok")
	require.NoError(t, err)
	require.Len(t, processes, 1)
	require.NotNil(t, processes[0].Stats)
	assert.Equal(t, 50, processes[0].Stats.CompletionPercentage)
}

func TestNon2xxBecomesAPIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	})

	_, err := c.ListTasks(context.Background(), "tok")
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Equal(t, "/api/tasks/agent", apiErr.Path)
	assert.Equal(t, "boom", apiErr.Body)
	assert.Equal(t, "api_5xx", util.ClassifyError(err))
}

func TestDecodeErrorIsClassified(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{not json`))
	})
	_, err := c.ListProjects(context.Background(), "tok")
	require.Error(t, err)
	assert.Equal(t, "decode_error", util.ClassifyError(err))
}

func TestValidateToken(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/test-token", r.URL.Path)
		switch r.Header.Get("Authorization") {
		case "Bearer good":
			w.WriteHeader(http.StatusOK)
		case "Bearer down":
			w.WriteHeader(http.StatusInternalServerError)
		case "Bearer malformed":
			w.WriteHeader(http.StatusBadRequest)
		case "Bearer unknown":
			w.WriteHeader(http.StatusNotFound)
		default:
			w.WriteHeader(http.StatusUnauthorized)
		}
	})

	ok, err := c.ValidateToken(context.Background(), "good")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.ValidateToken(context.Background(), "bad")
	require.NoError(t, err)
	assert.False(t, ok)

	// 非 200 一律视为凭证无效
	for _, cred := range []string{"down", "malformed", "unknown"} {
		ok, err = c.ValidateToken(context.Background(), cred)
		require.NoError(t, err, cred)
		assert.False(t, ok, cred)
	}
}

func TestValidateTokenTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := NewClient(url, time.Second, zaptest.NewLogger(t))
	ok, err := c.ValidateToken(context.Background(), "good")
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestUpdatePreferencesOmitsEmptyFields(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/api/users/preferences", r.URL.Path)
		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]any{"wakeUpTime": "06:30"}, body)
	})
	require.NoError(t, c.UpdatePreferences(context.Background(), "tok", model.Preferences{WakeUpTime: "06:30"}))
}
