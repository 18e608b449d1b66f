package main

import "time"

type user struct {
	ID           int       `json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash []byte    `json:"-"`
}

type task struct {
	ID          int        `json:"id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Priority    string     `json:"priority"`
	Status      string     `json:"status"`
	Position    int        `json:"position"`
	DueDate     *time.Time `json:"due_date"`
	CreatedBy   int        `json:"created_by"`
	AssignedTo  *int       `json:"assigned_to"`
}

// Statuses the stats endpoint counts individually. Tasks may carry any other
// status string; those only show up in the total.
const (
	statusTodo       = "todo"
	statusInProgress = "in_progress"
	statusDone       = "done"
)

const defaultPriority = "medium"

type taskStats struct {
	Todo       int `json:"todo"`
	InProgress int `json:"in_progress"`
	Done       int `json:"done"`
	Total      int `json:"total"`
}
