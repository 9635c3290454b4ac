package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"

	"taskmanager/internal/models"
	"taskmanager/internal/repository"
	"taskmanager/pkg/logger"
)

func taskKey(id int) string { return fmt.Sprintf("task:%d", id) }
func userKey(id int) string { return fmt.Sprintf("user:%d", id) }

// CachedStore puts a read-through cache in front of single-entity reads.
// Cache errors are logged and never fail the call.
type CachedStore struct {
	repository.Store
	cache Cache

	// taskGen moves on every task write. A miss that raced a write drops
	// the copy it just cached.
	taskGen atomic.Uint64
}

func NewCachedStore(store repository.Store, cache Cache) *CachedStore {
	return &CachedStore{Store: store, cache: cache}
}

func (s *CachedStore) GetTask(ctx context.Context, id int) (models.Task, error) {
	var task models.Task
	if s.load(ctx, taskKey(id), &task) {
		return task, nil
	}
	gen := s.taskGen.Load()
	task, err := s.Store.GetTask(ctx, id)
	if err != nil {
		return models.Task{}, err
	}
	s.save(ctx, taskKey(id), task)
	if s.taskGen.Load() != gen {
		s.invalidate(ctx, id)
	}
	return task, nil
}

func (s *CachedStore) UpdateTask(ctx context.Context, id int, patch models.TaskPatch) (models.Task, error) {
	s.taskGen.Add(1)
	task, err := s.Store.UpdateTask(ctx, id, patch)
	if err != nil {
		return models.Task{}, err
	}
	s.save(ctx, taskKey(id), task)
	return task, nil
}

func (s *CachedStore) DeleteTask(ctx context.Context, id int) error {
	s.taskGen.Add(1)
	if err := s.Store.DeleteTask(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

func (s *CachedStore) invalidate(ctx context.Context, id int) {
	if err := s.cache.Del(ctx, taskKey(id)); err != nil {
		logger.ErrorLogger.Error("Error invalidating task cache", zap.Int("task_id", id), zap.Error(err))
	}
}

func (s *CachedStore) GetUser(ctx context.Context, id int) (models.User, error) {
	var user models.PublicUser
	if s.load(ctx, userKey(id), &user) {
		return models.User{ID: id, Username: user.Username}, nil
	}
	u, err := s.Store.GetUser(ctx, id)
	if err != nil {
		return models.User{}, err
	}
	s.save(ctx, userKey(id), u.Public())
	return u, nil
}

func (s *CachedStore) load(ctx context.Context, key string, dst any) bool {
	raw, found, err := s.cache.Get(ctx, key)
	if err != nil {
		logger.ErrorLogger.Error("Error reading cache", zap.String("key", key), zap.Error(err))
		return false
	}
	if !found {
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		logger.ErrorLogger.Error("Error decoding cached value", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (s *CachedStore) save(ctx context.Context, key string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		logger.ErrorLogger.Error("Error encoding cache value", zap.String("key", key), zap.Error(err))
		return
	}
	if err := s.cache.Set(ctx, key, raw); err != nil {
		logger.ErrorLogger.Error("Error caching value", zap.String("key", key), zap.Error(err))
	}
}
