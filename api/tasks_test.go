package main

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTask(t *testing.T, handler http.Handler, token string, body map[string]any) task {
	t.Helper()
	rec := doRequest(t, handler, http.MethodPost, "/tasks", token, body)
	require.Equal(t, http.StatusCreated, rec.Code, "body: %s", rec.Body.String())
	var created task
	decodeBody(t, rec, &created)
	return created
}

func TestCreateTaskDefaults(t *testing.T) {
	app := newTestApp()
	handler := composeRoutes(app)
	token := registerAndLogin(t, handler, "gopher", "gopher@example.com")

	created := createTask(t, handler, token, map[string]any{"title": "write the report"})
	assert.Equal(t, "write the report", created.Title)
	assert.Equal(t, "", created.Description)
	assert.Equal(t, defaultPriority, created.Priority)
	assert.Equal(t, statusTodo, created.Status)
	assert.Equal(t, 1, created.Position)
	assert.Equal(t, 1, created.CreatedBy)
	assert.Nil(t, created.AssignedTo)
	assert.Nil(t, created.DueDate)
}

func TestCreateTaskRequiresTitle(t *testing.T) {
	app := newTestApp()
	handler := composeRoutes(app)
	token := registerAndLogin(t, handler, "gopher", "gopher@example.com")

	rec := doRequest(t, handler, http.MethodPost, "/tasks", token, map[string]any{"description": "no title here"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	var out struct {
		Message string `json:"message"`
	}
	decodeBody(t, rec, &out)
	assert.Equal(t, "Title is required!", out.Message)

	// nothing was persisted
	rec = doRequest(t, handler, http.MethodGet, "/tasks", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var tasks []task
	decodeBody(t, rec, &tasks)
	assert.Empty(t, tasks)
}

func TestCreateTaskDueDate(t *testing.T) {
	app := newTestApp()
	handler := composeRoutes(app)
	token := registerAndLogin(t, handler, "gopher", "gopher@example.com")

	created := createTask(t, handler, token, map[string]any{
		"title":    "with deadline",
		"due_date": "2026-09-01T12:30:00Z",
	})
	require.NotNil(t, created.DueDate)
	assert.Equal(t, time.Date(2026, 9, 1, 12, 30, 0, 0, time.UTC), created.DueDate.UTC())

	rec := doRequest(t, handler, http.MethodPost, "/tasks", token, map[string]any{
		"title":    "broken deadline",
		"due_date": "next tuesday",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	var out struct {
		Message string `json:"message"`
	}
	decodeBody(t, rec, &out)
	assert.Equal(t, "Invalid due_date format!", out.Message)
}

func TestSequentialPositions(t *testing.T) {
	app := newTestApp()
	handler := composeRoutes(app)
	token := registerAndLogin(t, handler, "gopher", "gopher@example.com")

	for i := 1; i <= 5; i++ {
		created := createTask(t, handler, token, map[string]any{
			"title":  fmt.Sprintf("task %d", i),
			"status": "backlog",
		})
		assert.Equal(t, i, created.Position)
	}

	// a different column starts over at 1
	created := createTask(t, handler, token, map[string]any{"title": "elsewhere", "status": "todo"})
	assert.Equal(t, 1, created.Position)
}

func TestUpdateTask(t *testing.T) {
	app := newTestApp()
	handler := composeRoutes(app)
	token := registerAndLogin(t, handler, "gopher", "gopher@example.com")

	created := createTask(t, handler, token, map[string]any{"title": "original"})

	rec := doRequest(t, handler, http.MethodPut, fmt.Sprintf("/tasks/%d", created.ID), token, map[string]any{
		"title":       "renamed",
		"priority":    "high",
		"assigned_to": 1,
	})
	require.Equal(t, http.StatusOK, rec.Code, "body: %s", rec.Body.String())
	var updated task
	decodeBody(t, rec, &updated)
	assert.Equal(t, "renamed", updated.Title)
	assert.Equal(t, "high", updated.Priority)
	require.NotNil(t, updated.AssignedTo)
	assert.Equal(t, 1, *updated.AssignedTo)
	// untouched fields keep their values
	assert.Equal(t, statusTodo, updated.Status)
	assert.Equal(t, 1, updated.Position)

	rec = doRequest(t, handler, http.MethodPut, "/tasks/999", token, map[string]any{"title": "ghost"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStatusChangeAppendsToDestination(t *testing.T) {
	app := newTestApp()
	handler := composeRoutes(app)
	token := registerAndLogin(t, handler, "gopher", "gopher@example.com")

	moved := createTask(t, handler, token, map[string]any{"title": "mover", "status": "todo"})
	createTask(t, handler, token, map[string]any{"title": "done 1", "status": "done"})
	createTask(t, handler, token, map[string]any{"title": "done 2", "status": "done"})

	// caller-supplied position is ignored when the status changes
	rec := doRequest(t, handler, http.MethodPut, fmt.Sprintf("/tasks/%d", moved.ID), token, map[string]any{
		"status":   "done",
		"position": 1,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var updated task
	decodeBody(t, rec, &updated)
	assert.Equal(t, "done", updated.Status)
	assert.Equal(t, 3, updated.Position)
}

func TestExplicitPositionSameStatus(t *testing.T) {
	app := newTestApp()
	handler := composeRoutes(app)
	token := registerAndLogin(t, handler, "gopher", "gopher@example.com")

	created := createTask(t, handler, token, map[string]any{"title": "movable"})
	createTask(t, handler, token, map[string]any{"title": "neighbor"})

	// written verbatim, no collision resolution
	rec := doRequest(t, handler, http.MethodPut, fmt.Sprintf("/tasks/%d", created.ID), token, map[string]any{
		"position": 42,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var updated task
	decodeBody(t, rec, &updated)
	assert.Equal(t, statusTodo, updated.Status)
	assert.Equal(t, 42, updated.Position)
}

func TestDeleteTask(t *testing.T) {
	app := newTestApp()
	handler := composeRoutes(app)
	token := registerAndLogin(t, handler, "gopher", "gopher@example.com")

	created := createTask(t, handler, token, map[string]any{"title": "short-lived"})

	rec := doRequest(t, handler, http.MethodDelete, fmt.Sprintf("/tasks/%d", created.ID), token, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())

	rec = doRequest(t, handler, http.MethodGet, fmt.Sprintf("/tasks/%d", created.ID), token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(t, handler, http.MethodDelete, fmt.Sprintf("/tasks/%d", created.ID), token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReorderTasks(t *testing.T) {
	app := newTestApp()
	handler := composeRoutes(app)
	token := registerAndLogin(t, handler, "gopher", "gopher@example.com")

	first := createTask(t, handler, token, map[string]any{"title": "first"})
	second := createTask(t, handler, token, map[string]any{"title": "second"})

	rec := doRequest(t, handler, http.MethodPost, "/tasks/reorder", token, map[string]any{
		"tasks": []map[string]any{
			{"id": first.ID, "position": 2},
			{"id": second.ID, "status": "in_progress", "position": 1},
			{"id": 999, "position": 7}, // unknown ids are silently skipped
		},
	})
	require.Equal(t, http.StatusOK, rec.Code, "body: %s", rec.Body.String())
	var out struct {
		Message string `json:"message"`
	}
	decodeBody(t, rec, &out)
	assert.Equal(t, "Tasks reordered successfully!", out.Message)

	rec = doRequest(t, handler, http.MethodGet, fmt.Sprintf("/tasks/%d", first.ID), token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var got task
	decodeBody(t, rec, &got)
	assert.Equal(t, statusTodo, got.Status) // status omitted, keeps current
	assert.Equal(t, 2, got.Position)

	rec = doRequest(t, handler, http.MethodGet, fmt.Sprintf("/tasks/%d", second.ID), token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeBody(t, rec, &got)
	assert.Equal(t, statusInProgress, got.Status)
	assert.Equal(t, 1, got.Position)
}

func TestReorderRequiresTasksArray(t *testing.T) {
	app := newTestApp()
	handler := composeRoutes(app)
	token := registerAndLogin(t, handler, "gopher", "gopher@example.com")

	for _, body := range []any{
		map[string]any{},
		map[string]any{"tasks": []any{}},
	} {
		rec := doRequest(t, handler, http.MethodPost, "/tasks/reorder", token, body)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		var out struct {
			Message string `json:"message"`
		}
		decodeBody(t, rec, &out)
		assert.Equal(t, "Tasks array is required!", out.Message)
	}
}

func TestTasksByStatus(t *testing.T) {
	app := newTestApp()
	handler := composeRoutes(app)
	token := registerAndLogin(t, handler, "gopher", "gopher@example.com")

	a := createTask(t, handler, token, map[string]any{"title": "a", "status": "todo"})
	b := createTask(t, handler, token, map[string]any{"title": "b", "status": "todo"})
	createTask(t, handler, token, map[string]any{"title": "c", "status": "done"})

	// push a to the back of the column
	rec := doRequest(t, handler, http.MethodPut, fmt.Sprintf("/tasks/%d", a.ID), token, map[string]any{"position": 10})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, handler, http.MethodGet, "/tasks/by-status/todo", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var tasks []task
	decodeBody(t, rec, &tasks)
	require.Len(t, tasks, 2)
	assert.Equal(t, b.ID, tasks[0].ID)
	assert.Equal(t, a.ID, tasks[1].ID)

	rec = doRequest(t, handler, http.MethodGet, "/tasks/by-status/nonexistent", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeBody(t, rec, &tasks)
	assert.Empty(t, tasks)
}

func TestTaskStats(t *testing.T) {
	app := newTestApp()
	handler := composeRoutes(app)
	token := registerAndLogin(t, handler, "gopher", "gopher@example.com")

	for _, status := range []string{"todo", "todo", "in_progress", "done", "custom"} {
		createTask(t, handler, token, map[string]any{"title": "t", "status": status})
	}

	rec := doRequest(t, handler, http.MethodGet, "/tasks/stats", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var stats taskStats
	decodeBody(t, rec, &stats)
	assert.Equal(t, 2, stats.Todo)
	assert.Equal(t, 1, stats.InProgress)
	assert.Equal(t, 1, stats.Done)
	// "custom" is only visible in the total
	assert.Equal(t, 5, stats.Total)
}

func TestParseDueDate(t *testing.T) {
	tests := []struct {
		input   string
		want    time.Time
		wantErr bool
	}{
		{input: "2026-09-01T12:30:00Z", want: time.Date(2026, 9, 1, 12, 30, 0, 0, time.UTC)},
		{input: "2026-09-01T12:30:00+00:00", want: time.Date(2026, 9, 1, 12, 30, 0, 0, time.UTC)},
		{input: "2026-09-01T12:30:00-03:00", want: time.Date(2026, 9, 1, 15, 30, 0, 0, time.UTC)},
		{input: "2026-09-01T12:30:00", want: time.Date(2026, 9, 1, 12, 30, 0, 0, time.UTC)},
		{input: "2026-09-01", want: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)},
		{input: "2026-09-01T12:30:00.123456Z", want: time.Date(2026, 9, 1, 12, 30, 0, 123456000, time.UTC)},
		{input: "not-a-date", wantErr: true},
		{input: "2026-13-45", wantErr: true},
		{input: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseDueDate(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, errBadDueDate)
				return
			}
			require.NoError(t, err)
			assert.True(t, got.UTC().Equal(tt.want), "got %s want %s", got, tt.want)
		})
	}
}
