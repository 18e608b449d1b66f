package main

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"
)

func openDB(cfg config) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.db.dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.db.maxOpenConnections)
	db.SetMaxIdleConns(cfg.db.maxIdleConnections)
	db.SetConnMaxIdleTime(cfg.db.maxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = db.PingContext(ctx)
	if err != nil {
		return nil, err
	}

	return db, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id SERIAL PRIMARY KEY,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	username TEXT UNIQUE NOT NULL,
	email TEXT UNIQUE NOT NULL,
	password_hash BYTEA NOT NULL
);

CREATE TABLE IF NOT EXISTS tasks (
	id SERIAL PRIMARY KEY,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	title TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	priority TEXT NOT NULL DEFAULT 'medium',
	status TEXT NOT NULL DEFAULT 'todo',
	position INTEGER NOT NULL DEFAULT 0,
	due_date TIMESTAMPTZ,
	created_by INTEGER NOT NULL,
	assigned_to INTEGER
);

CREATE INDEX IF NOT EXISTS tasks_status_position_idx ON tasks (status, position);
`

type postgresStorage struct {
	db *sql.DB
}

func newPostgresStorage(db *sql.DB) (*postgresStorage, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err := db.ExecContext(ctx, schema)
	if err != nil {
		return nil, err
	}
	return &postgresStorage{db: db}, nil
}

func (s *postgresStorage) getUserByID(id int) (*user, error) {
	query := `SELECT id, created_at, username, email, password_hash
			  FROM users
			  WHERE id = $1`
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	row := s.db.QueryRowContext(ctx, query, id)
	var u user
	err := row.Scan(&u.ID, &u.CreatedAt, &u.Username, &u.Email, &u.PasswordHash)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, nil
		default:
			return nil, err
		}
	}
	return &u, nil
}

func (s *postgresStorage) getUserByUsername(username string) (*user, error) {
	query := `SELECT id, created_at, username, email, password_hash
			  FROM users
			  WHERE username = $1`
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	row := s.db.QueryRowContext(ctx, query, username)
	var u user
	err := row.Scan(&u.ID, &u.CreatedAt, &u.Username, &u.Email, &u.PasswordHash)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, nil
		default:
			return nil, err
		}
	}
	return &u, nil
}

func (s *postgresStorage) getUserByEmail(email string) (*user, error) {
	query := `SELECT id, created_at, username, email, password_hash
			  FROM users
			  WHERE email = $1`
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	row := s.db.QueryRowContext(ctx, query, email)
	var u user
	err := row.Scan(&u.ID, &u.CreatedAt, &u.Username, &u.Email, &u.PasswordHash)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, nil
		default:
			return nil, err
		}
	}
	return &u, nil
}

func (s *postgresStorage) getUsers() ([]user, error) {
	query := `SELECT id, created_at, username, email, password_hash
			  FROM users
			  ORDER BY id`
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []user{}
	for rows.Next() {
		var u user
		err := rows.Scan(&u.ID, &u.CreatedAt, &u.Username, &u.Email, &u.PasswordHash)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *postgresStorage) insertUser(u *user) error {
	query := `INSERT INTO users (username, email, password_hash)
			  VALUES ($1, $2, $3)
			  RETURNING id, created_at`

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	row := s.db.QueryRowContext(ctx, query, u.Username, u.Email, u.PasswordHash)
	err := row.Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		// 23505 = unique_violation; the handler pre-checks but two
		// registrations can race past it.
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return errDuplicate
		}
		return err
	}
	return nil
}

func (s *postgresStorage) getTasks() ([]task, error) {
	query := `SELECT id, created_at, updated_at, title, description, priority, status, position, due_date, created_by, assigned_to
			  FROM tasks
			  ORDER BY id`
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTasks(rows)
}

func (s *postgresStorage) getTaskByID(id int) (*task, error) {
	query := `SELECT id, created_at, updated_at, title, description, priority, status, position, due_date, created_by, assigned_to
			  FROM tasks
			  WHERE id = $1`
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	row := s.db.QueryRowContext(ctx, query, id)
	var t task
	err := row.Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt, &t.Title, &t.Description, &t.Priority, &t.Status, &t.Position, &t.DueDate, &t.CreatedBy, &t.AssignedTo)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, nil
		default:
			return nil, err
		}
	}
	return &t, nil
}

func (s *postgresStorage) getTasksByStatus(status string) ([]task, error) {
	query := `SELECT id, created_at, updated_at, title, description, priority, status, position, due_date, created_by, assigned_to
			  FROM tasks
			  WHERE status = $1
			  ORDER BY position, id`
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	rows, err := s.db.QueryContext(ctx, query, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTasks(rows)
}

func (s *postgresStorage) maxTaskPosition(status string) (int, error) {
	query := `SELECT COALESCE(MAX(position), 0)
			  FROM tasks
			  WHERE status = $1`
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var max int
	err := s.db.QueryRowContext(ctx, query, status).Scan(&max)
	return max, err
}

func (s *postgresStorage) insertTask(t *task) error {
	query := `INSERT INTO tasks (title, description, priority, status, position, due_date, created_by, assigned_to)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			  RETURNING id, created_at, updated_at`

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	row := s.db.QueryRowContext(ctx, query, t.Title, t.Description, t.Priority, t.Status, t.Position, t.DueDate, t.CreatedBy, t.AssignedTo)
	return row.Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
}

func (s *postgresStorage) updateTask(t *task) error {
	query := `UPDATE tasks
			  SET title = $1, description = $2, priority = $3, status = $4, position = $5, due_date = $6, assigned_to = $7, updated_at = now()
			  WHERE id = $8
			  RETURNING updated_at`
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	row := s.db.QueryRowContext(ctx, query, t.Title, t.Description, t.Priority, t.Status, t.Position, t.DueDate, t.AssignedTo, t.ID)
	err := row.Scan(&t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return errNotFound
	}
	return err
}

func (s *postgresStorage) deleteTask(id int) error {
	query := `DELETE FROM tasks
			  WHERE id = $1`
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	res, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errNotFound
	}
	return nil
}

// reorderTasks applies the whole batch in one transaction. Entries whose id
// does not match a row update nothing and are skipped.
func (s *postgresStorage) reorderTasks(entries []taskReorderEntry) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `UPDATE tasks
			  SET status = COALESCE($2, status), position = COALESCE($3, position), updated_at = now()
			  WHERE id = $1`
	for _, e := range entries {
		_, err := tx.ExecContext(ctx, query, e.ID, e.Status, e.Position)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *postgresStorage) getTaskStats() (*taskStats, error) {
	query := `SELECT
				COUNT(*) FILTER (WHERE status = $1),
				COUNT(*) FILTER (WHERE status = $2),
				COUNT(*) FILTER (WHERE status = $3),
				COUNT(*)
			  FROM tasks`
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var stats taskStats
	err := s.db.QueryRowContext(ctx, query, statusTodo, statusInProgress, statusDone).
		Scan(&stats.Todo, &stats.InProgress, &stats.Done, &stats.Total)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func scanTasks(rows *sql.Rows) ([]task, error) {
	tasks := []task{}
	for rows.Next() {
		var t task
		err := rows.Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt, &t.Title, &t.Description, &t.Priority, &t.Status, &t.Position, &t.DueDate, &t.CreatedBy, &t.AssignedTo)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}
