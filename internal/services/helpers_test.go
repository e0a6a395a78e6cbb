package services

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/SAP-F-2025/exercise-authoring-service/internal/cache"
	"github.com/SAP-F-2025/exercise-authoring-service/internal/models"
	"github.com/SAP-F-2025/exercise-authoring-service/internal/repositories"
	"github.com/SAP-F-2025/exercise-authoring-service/internal/sequencer"
	"github.com/stretchr/testify/mock"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// MockActivityRepository is a mock implementation of ActivityRepository
type MockActivityRepository struct {
	mock.Mock
}

func (m *MockActivityRepository) Create(ctx context.Context, activity *models.Activity) error {
	args := m.Called(ctx, activity)
	return args.Error(0)
}

func (m *MockActivityRepository) GetByID(ctx context.Context, id uint) (*models.Activity, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Activity), args.Error(1)
}

func (m *MockActivityRepository) Update(ctx context.Context, activity *models.Activity) error {
	args := m.Called(ctx, activity)
	return args.Error(0)
}

func (m *MockActivityRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockActivityRepository) List(ctx context.Context, filters repositories.ActivityFilters) ([]*models.Activity, int64, error) {
	args := m.Called(ctx, filters)
	return args.Get(0).([]*models.Activity), args.Get(1).(int64), args.Error(2)
}

func (m *MockActivityRepository) GetByLesson(ctx context.Context, lessonID uint) ([]*models.Activity, error) {
	args := m.Called(ctx, lessonID)
	return args.Get(0).([]*models.Activity), args.Error(1)
}

func (m *MockActivityRepository) Reorder(ctx context.Context, lessonID uint, order []repositories.ActivityOrder) error {
	args := m.Called(ctx, lessonID, order)
	return args.Error(0)
}

// memoryRepository keeps activities in a map and enforces versions like the store does.
type memoryRepository struct {
	mu         sync.Mutex
	nextID     uint
	activities map[uint]models.Activity
	failWith   error

	// When hold is set, Create signals entered and waits for hold to close.
	entered chan struct{}
	hold    chan struct{}
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{nextID: 1, activities: make(map[uint]models.Activity)}
}

func (r *memoryRepository) Create(_ context.Context, activity *models.Activity) error {
	if r.hold != nil {
		r.entered <- struct{}{}
		<-r.hold
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return r.failWith
	}
	activity.ID = r.nextID
	activity.Version = 1
	r.nextID++
	r.activities[activity.ID] = *activity
	return nil
}

func (r *memoryRepository) GetByID(_ context.Context, id uint) (*models.Activity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	activity, ok := r.activities[id]
	if !ok {
		return nil, repositories.ErrActivityNotFound
	}
	return &activity, nil
}

func (r *memoryRepository) Update(_ context.Context, activity *models.Activity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return r.failWith
	}
	current, ok := r.activities[activity.ID]
	if !ok {
		return repositories.ErrActivityNotFound
	}
	if current.Version != activity.Version {
		return repositories.ErrVersionConflict
	}
	activity.Version++
	r.activities[activity.ID] = *activity
	return nil
}

func (r *memoryRepository) Delete(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.activities[id]; !ok {
		return repositories.ErrActivityNotFound
	}
	delete(r.activities, id)
	return nil
}

func (r *memoryRepository) List(ctx context.Context, filters repositories.ActivityFilters) ([]*models.Activity, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Activity
	for _, a := range r.activities {
		a := a
		if filters.LessonID != nil && a.LessonID != *filters.LessonID {
			continue
		}
		out = append(out, &a)
	}
	return out, int64(len(out)), nil
}

func (r *memoryRepository) GetByLesson(ctx context.Context, lessonID uint) ([]*models.Activity, error) {
	out, _, err := r.List(ctx, repositories.ActivityFilters{LessonID: &lessonID})
	sort.Slice(out, func(i, j int) bool { return out[i].SequenceOrder < out[j].SequenceOrder })
	return out, err
}

func (r *memoryRepository) Reorder(_ context.Context, _ uint, order []repositories.ActivityOrder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range order {
		a := r.activities[o.ActivityID]
		a.SequenceOrder = o.SequenceOrder
		r.activities[o.ActivityID] = a
	}
	return nil
}

// memoryCache is an in-process CacheService.
type memoryCache struct {
	mu    sync.Mutex
	items map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{items: make(map[string][]byte)}
}

func (c *memoryCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.items[key] = data
	c.mu.Unlock()
	return nil
}

func (c *memoryCache) Get(_ context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	data, ok := c.items[key]
	c.mu.Unlock()
	if !ok {
		return cache.ErrCacheMiss
	}
	return json.Unmarshal(data, dest)
}

func (c *memoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
	return nil
}

func (c *memoryCache) DeletePattern(_ context.Context, pattern string) error {
	prefix := strings.TrimSuffix(pattern, "*")
	c.mu.Lock()
	for key := range c.items {
		if strings.HasPrefix(key, prefix) {
			delete(c.items, key)
		}
	}
	c.mu.Unlock()
	return nil
}

type idleTimer struct{}

func (idleTimer) Stop() bool { return true }

// idleClock never fires, so sequences only advance on media signals.
type idleClock struct{}

func (idleClock) AfterFunc(time.Duration, func()) sequencer.Timer { return idleTimer{} }

const (
	fillBlankDoc = `{"sentence":"The ___ barks.","choices":[{"id":"a","text":"cat"},{"id":"b","text":"dog"}],"correctAnswer":"dog"}`
	sunDoc       = `{"sentence":"The ___ is hot.","choices":[{"id":"a","text":"sun"},{"id":"b","text":"ice"}],"correctAnswer":"sun"}`
	brokenDoc    = `{"sentence": "x", "choices": [`
	dialogueDoc  = `{"steps":[{"id":"1","text":"Hello","audioUrl":"https://cdn.example.com/1.mp3"},{"id":"2","text":"Bye","audioUrl":"https://cdn.example.com/2.mp3"}]}`
)
