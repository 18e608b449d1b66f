package main

import "errors"

var (
	errNotFound  = errors.New("record not found")
	errDuplicate = errors.New("duplicate record")
)

// taskReorderEntry is one element of a bulk reorder request. Status and
// Position default to the task's current values when omitted.
type taskReorderEntry struct {
	ID       int     `json:"id"`
	Status   *string `json:"status"`
	Position *int    `json:"position"`
}

// storage is the persistence contract shared by the postgres and in-memory
// backends. Single-record lookups return (nil, nil) when nothing matches;
// deletes report errNotFound instead.
type storage interface {
	getUserByID(id int) (*user, error)
	getUserByUsername(username string) (*user, error)
	getUserByEmail(email string) (*user, error)
	getUsers() ([]user, error)
	insertUser(u *user) error

	getTasks() ([]task, error)
	getTaskByID(id int) (*task, error)
	getTasksByStatus(status string) ([]task, error)
	maxTaskPosition(status string) (int, error)
	insertTask(t *task) error
	updateTask(t *task) error
	deleteTask(id int) error
	reorderTasks(entries []taskReorderEntry) error
	getTaskStats() (*taskStats, error)
}
