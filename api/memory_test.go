package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStorageReturnsCopies(t *testing.T) {
	s := newMemoryStorage()
	tk := &task{Title: "original", Status: statusTodo, Priority: defaultPriority}
	require.NoError(t, s.insertTask(tk))

	got, err := s.getTaskByID(tk.ID)
	require.NoError(t, err)
	got.Title = "mutated"

	again, err := s.getTaskByID(tk.ID)
	require.NoError(t, err)
	assert.Equal(t, "original", again.Title)
}

func TestMemoryStorageDuplicateUser(t *testing.T) {
	s := newMemoryStorage()
	require.NoError(t, s.insertUser(&user{Username: "gopher", Email: "gopher@example.com"}))

	err := s.insertUser(&user{Username: "gopher", Email: "other@example.com"})
	assert.ErrorIs(t, err, errDuplicate)
	err = s.insertUser(&user{Username: "other", Email: "gopher@example.com"})
	assert.ErrorIs(t, err, errDuplicate)
}

func TestMemoryStorageMaxTaskPosition(t *testing.T) {
	s := newMemoryStorage()

	max, err := s.maxTaskPosition("todo")
	require.NoError(t, err)
	assert.Equal(t, 0, max)

	require.NoError(t, s.insertTask(&task{Title: "a", Status: "todo", Position: 3}))
	require.NoError(t, s.insertTask(&task{Title: "b", Status: "todo", Position: 7}))
	require.NoError(t, s.insertTask(&task{Title: "c", Status: "done", Position: 50}))

	max, err = s.maxTaskPosition("todo")
	require.NoError(t, err)
	assert.Equal(t, 7, max)
}

func TestMemoryStorageReorderSkipsUnknown(t *testing.T) {
	s := newMemoryStorage()
	tk := &task{Title: "a", Status: "todo", Position: 1}
	require.NoError(t, s.insertTask(tk))

	status := "done"
	pos := 5
	err := s.reorderTasks([]taskReorderEntry{
		{ID: tk.ID, Status: &status, Position: &pos},
		{ID: 999, Position: &pos},
	})
	require.NoError(t, err)

	got, err := s.getTaskByID(tk.ID)
	require.NoError(t, err)
	assert.Equal(t, "done", got.Status)
	assert.Equal(t, 5, got.Position)
}
