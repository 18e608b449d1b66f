package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"
)

var errBadDueDate = errors.New("invalid due_date format")

// parseDueDate accepts ISO-8601 with or without an offset, and bare dates.
// A trailing Z is normalized to an explicit +00:00 offset first.
func parseDueDate(value string) (time.Time, error) {
	if strings.HasSuffix(value, "Z") {
		value = strings.TrimSuffix(value, "Z") + "+00:00"
	}
	layouts := []string{
		"2006-01-02T15:04:05.999999999-07:00",
		"2006-01-02T15:04:05-07:00",
		"2006-01-02T15:04:05.999999999",
		"2006-01-02T15:04:05",
		"2006-01-02T15:04",
		"2006-01-02",
	}
	for _, layout := range layouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t, nil
		}
	}
	return time.Time{}, errBadDueDate
}

func (app *application) createTaskHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Priority    string `json:"priority"`
		Status      string `json:"status"`
		DueDate     string `json:"due_date"`
		AssignedTo  *int   `json:"assigned_to"`
	}
	err := json.NewDecoder(r.Body).Decode(&input)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Title is required!")
		return
	}
	if input.Title == "" {
		writeMessage(w, http.StatusBadRequest, "Title is required!")
		return
	}
	if input.Priority == "" {
		input.Priority = defaultPriority
	}
	if input.Status == "" {
		input.Status = statusTodo
	}

	t := &task{
		Title:       input.Title,
		Description: input.Description,
		Priority:    input.Priority,
		Status:      input.Status,
		CreatedBy:   getUserFromRequest(r).ID,
		AssignedTo:  input.AssignedTo,
	}
	if input.DueDate != "" {
		due, err := parseDueDate(input.DueDate)
		if err != nil {
			writeMessage(w, http.StatusBadRequest, "Invalid due_date format!")
			return
		}
		t.DueDate = &due
	}

	// Append to the end of the target column. Two concurrent creates into
	// the same column can read the same max and collide; position is an
	// ordering key, not a dense sequence, so that is tolerated.
	max, err := app.storage.maxTaskPosition(t.Status)
	if err != nil {
		app.serverError(w, err)
		return
	}
	t.Position = max + 1

	err = app.storage.insertTask(t)
	if err != nil {
		app.serverError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (app *application) getTasksHandler(w http.ResponseWriter, r *http.Request) {
	tasks, err := app.storage.getTasks()
	if err != nil {
		app.serverError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (app *application) getTaskHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeMessage(w, http.StatusNotFound, "Task not found!")
		return
	}
	t, err := app.storage.getTaskByID(id)
	if err != nil {
		app.serverError(w, err)
		return
	}
	if t == nil {
		writeMessage(w, http.StatusNotFound, "Task not found!")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (app *application) updateTaskHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeMessage(w, http.StatusNotFound, "Task not found!")
		return
	}
	t, err := app.storage.getTaskByID(id)
	if err != nil {
		app.serverError(w, err)
		return
	}
	if t == nil {
		writeMessage(w, http.StatusNotFound, "Task not found!")
		return
	}

	var input struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		Priority    *string `json:"priority"`
		Status      *string `json:"status"`
		Position    *int    `json:"position"`
		DueDate     string  `json:"due_date"`
		AssignedTo  *int    `json:"assigned_to"`
	}
	err = json.NewDecoder(r.Body).Decode(&input)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body!")
		return
	}

	oldStatus := t.Status
	if input.Title != nil {
		t.Title = *input.Title
	}
	if input.Description != nil {
		t.Description = *input.Description
	}
	if input.Priority != nil {
		t.Priority = *input.Priority
	}
	if input.Status != nil {
		t.Status = *input.Status
	}
	if input.AssignedTo != nil {
		t.AssignedTo = input.AssignedTo
	}
	if input.DueDate != "" {
		due, err := parseDueDate(input.DueDate)
		if err != nil {
			writeMessage(w, http.StatusBadRequest, "Invalid due_date format!")
			return
		}
		t.DueDate = &due
	}

	if t.Status != oldStatus {
		// Moving between columns appends at the end of the destination,
		// whatever position the caller sent.
		max, err := app.storage.maxTaskPosition(t.Status)
		if err != nil {
			app.serverError(w, err)
			return
		}
		t.Position = max + 1
	} else if input.Position != nil {
		t.Position = *input.Position
	}

	err = app.storage.updateTask(t)
	if err == errNotFound {
		writeMessage(w, http.StatusNotFound, "Task not found!")
		return
	}
	if err != nil {
		app.serverError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (app *application) deleteTaskHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeMessage(w, http.StatusNotFound, "Task not found!")
		return
	}
	err = app.storage.deleteTask(id)
	if err == errNotFound {
		writeMessage(w, http.StatusNotFound, "Task not found!")
		return
	}
	if err != nil {
		app.serverError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (app *application) reorderTasksHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Tasks []taskReorderEntry `json:"tasks"`
	}
	err := json.NewDecoder(r.Body).Decode(&input)
	if err != nil || len(input.Tasks) == 0 {
		writeMessage(w, http.StatusBadRequest, "Tasks array is required!")
		return
	}

	err = app.storage.reorderTasks(input.Tasks)
	if err != nil {
		app.serverError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "Tasks reordered successfully!")
}

func (app *application) tasksByStatusHandler(w http.ResponseWriter, r *http.Request) {
	tasks, err := app.storage.getTasksByStatus(r.PathValue("status"))
	if err != nil {
		app.serverError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (app *application) taskStatsHandler(w http.ResponseWriter, r *http.Request) {
	stats, err := app.storage.getTaskStats()
	if err != nil {
		app.serverError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
