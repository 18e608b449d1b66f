package main

import (
	"sort"
	"sync"
	"time"
)

// memoryStorage keeps everything in maps behind one RWMutex. It backs the
// server when no -db-dsn is given and is what the handler tests run against.
type memoryStorage struct {
	mu         sync.RWMutex
	users      map[int]*user
	tasks      map[int]*task
	nextUserID int
	nextTaskID int
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{
		users:      make(map[int]*user),
		tasks:      make(map[int]*task),
		nextUserID: 1,
		nextTaskID: 1,
	}
}

func (s *memoryStorage) getUserByID(id int) (*user, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (s *memoryStorage) getUserByUsername(username string) (*user, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *memoryStorage) getUserByEmail(email string) (*user, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *memoryStorage) getUsers() ([]user, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	users := []user{}
	for _, u := range s.users {
		users = append(users, *u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (s *memoryStorage) insertUser(u *user) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Username == u.Username || existing.Email == u.Email {
			return errDuplicate
		}
	}
	u.ID = s.nextUserID
	s.nextUserID++
	u.CreatedAt = time.Now().UTC()
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func (s *memoryStorage) getTasks() ([]task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tasks := []task{}
	for _, t := range s.tasks {
		tasks = append(tasks, *t)
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].ID < tasks[j].ID })
	return tasks, nil
}

func (s *memoryStorage) getTaskByID(id int) (*task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tasks[id]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (s *memoryStorage) getTasksByStatus(status string) ([]task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tasks := []task{}
	for _, t := range s.tasks {
		if t.Status == status {
			tasks = append(tasks, *t)
		}
	}
	sort.Slice(tasks, func(i, j int) bool {
		if tasks[i].Position != tasks[j].Position {
			return tasks[i].Position < tasks[j].Position
		}
		return tasks[i].ID < tasks[j].ID
	})
	return tasks, nil
}

func (s *memoryStorage) maxTaskPosition(status string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.maxTaskPositionLocked(status), nil
}

func (s *memoryStorage) maxTaskPositionLocked(status string) int {
	max := 0
	for _, t := range s.tasks {
		if t.Status == status && t.Position > max {
			max = t.Position
		}
	}
	return max
}

func (s *memoryStorage) insertTask(t *task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t.ID = s.nextTaskID
	s.nextTaskID++
	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now
	cp := *t
	s.tasks[t.ID] = &cp
	return nil
}

func (s *memoryStorage) updateTask(t *task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[t.ID]; !ok {
		return errNotFound
	}
	t.UpdatedAt = time.Now().UTC()
	cp := *t
	s.tasks[t.ID] = &cp
	return nil
}

func (s *memoryStorage) deleteTask(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[id]; !ok {
		return errNotFound
	}
	delete(s.tasks, id)
	return nil
}

func (s *memoryStorage) reorderTasks(entries []taskReorderEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	for _, e := range entries {
		t, ok := s.tasks[e.ID]
		if !ok {
			continue
		}
		if e.Status != nil {
			t.Status = *e.Status
		}
		if e.Position != nil {
			t.Position = *e.Position
		}
		t.UpdatedAt = now
	}
	return nil
}

func (s *memoryStorage) getTaskStats() (*taskStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stats := taskStats{}
	for _, t := range s.tasks {
		switch t.Status {
		case statusTodo:
			stats.Todo++
		case statusInProgress:
			stats.InProgress++
		case statusDone:
			stats.Done++
		}
		stats.Total++
	}
	return &stats, nil
}
