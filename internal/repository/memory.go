package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"taskmanager/internal/models"
)

// MemoryStore keeps users and tasks in process memory.
type MemoryStore struct {
	hasher *PasswordHasher

	mu         sync.RWMutex
	users      map[int]models.User
	tasks      map[int]models.Task
	nextUserID int
	nextTaskID int
}

func NewMemoryStore(hasher *PasswordHasher) *MemoryStore {
	return &MemoryStore{
		hasher:     hasher,
		users:      make(map[int]models.User),
		tasks:      make(map[int]models.Task),
		nextUserID: 1,
		nextTaskID: 1,
	}
}

func (m *MemoryStore) CreateUser(_ context.Context, username, password string) (models.User, error) {
	if username == "" || password == "" {
		return models.User{}, fmt.Errorf("create user: username and password are required: %w", ErrValidation)
	}
	hash, err := m.hasher.Hash(password)
	if err != nil {
		return models.User{}, fmt.Errorf("create user: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username {
			return models.User{}, fmt.Errorf("create user: username %q: %w", username, ErrConflict)
		}
	}
	user := models.User{ID: m.nextUserID, Username: username, PasswordHash: hash}
	m.users[user.ID] = user
	m.nextUserID++
	return models.User{ID: user.ID, Username: user.Username}, nil
}

func (m *MemoryStore) VerifyCredentials(_ context.Context, username, password string) (models.Principal, bool, error) {
	m.mu.RLock()
	var (
		found models.User
		ok    bool
	)
	for _, u := range m.users {
		if u.Username == username {
			found, ok = u, true
			break
		}
	}
	m.mu.RUnlock()

	if !ok {
		m.hasher.Burn(password)
		return models.Principal{}, false, nil
	}
	if !m.hasher.Verify(found.PasswordHash, password) {
		return models.Principal{}, false, nil
	}
	return models.Principal{ID: found.ID, Username: found.Username}, true, nil
}

func (m *MemoryStore) GetUser(_ context.Context, id int) (models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return models.User{}, fmt.Errorf("user %d: %w", id, ErrNotFound)
	}
	return models.User{ID: u.ID, Username: u.Username}, nil
}

func (m *MemoryStore) CreateTask(_ context.Context, title, description string, done *bool) (models.Task, error) {
	if title == "" || description == "" || done == nil {
		return models.Task{}, fmt.Errorf("create task: title, description and done are required: %w", ErrValidation)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tasks {
		if t.Title == title {
			return models.Task{}, fmt.Errorf("create task: title %q: %w", title, ErrConflict)
		}
	}
	d := *done
	task := models.Task{ID: m.nextTaskID, Title: title, Description: description, Done: &d}
	m.tasks[task.ID] = task
	m.nextTaskID++
	return copyTask(task), nil
}

func (m *MemoryStore) ListTasks(_ context.Context) ([]models.Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.tasks) == 0 {
		return nil, fmt.Errorf("list tasks: %w", ErrNotFound)
	}
	tasks := make([]models.Task, 0, len(m.tasks))
	for _, t := range m.tasks {
		tasks = append(tasks, copyTask(t))
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].ID < tasks[j].ID })
	return tasks, nil
}

func (m *MemoryStore) GetTask(_ context.Context, id int) (models.Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tasks[id]
	if !ok {
		return models.Task{}, fmt.Errorf("task %d: %w", id, ErrNotFound)
	}
	return copyTask(t), nil
}

func (m *MemoryStore) UpdateTask(_ context.Context, id int, patch models.TaskPatch) (models.Task, error) {
	if err := checkPatch(patch); err != nil {
		return models.Task{}, fmt.Errorf("update task %d: %w", id, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[id]
	if !ok {
		return models.Task{}, fmt.Errorf("task %d: %w", id, ErrNotFound)
	}
	t = copyTask(t)
	patch.Apply(&t)
	m.tasks[id] = t
	return copyTask(t), nil
}

func (m *MemoryStore) DeleteTask(_ context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tasks[id]; !ok {
		return fmt.Errorf("task %d: %w", id, ErrNotFound)
	}
	delete(m.tasks, id)
	return nil
}

// copyTask detaches Done so callers cannot mutate stored state.
func copyTask(t models.Task) models.Task {
	if t.Done != nil {
		d := *t.Done
		t.Done = &d
	}
	return t
}
