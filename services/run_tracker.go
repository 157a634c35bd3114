package services

import (
	"sync"
	"time"

	"student/models"
)

// DefaultRunHistory is how many runs the tracker remembers
const DefaultRunHistory = 500

// RunTracker keeps an in-memory, bounded history of round executions.
// Once full, the oldest finished run is evicted first.
type RunTracker struct {
	mu    sync.RWMutex
	runs  map[string]*models.RunInfo
	order []string
	limit int
	now   func() time.Time
}

func NewRunTracker(limit int) *RunTracker {
	if limit <= 0 {
		limit = DefaultRunHistory
	}
	return &RunTracker{
		runs:  make(map[string]*models.RunInfo),
		limit: limit,
		now:   time.Now,
	}
}

// Start registers a run in the received state
func (t *RunTracker) Start(id string, req models.TaskRequest) models.RunInfo {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	info := &models.RunInfo{
		ID:        id,
		Task:      req.Task,
		Round:     req.Round,
		State:     models.RunStateReceived,
		StartedAt: now,
		UpdatedAt: now,
	}
	t.runs[id] = info
	t.order = append(t.order, id)
	t.evict()
	return *info
}

// Update implements RunObserver. Unknown ids are ignored, as are changes to finished runs.
func (t *RunTracker) Update(id string, mutate func(*models.RunInfo)) {
	t.mu.Lock()
	defer t.mu.Unlock()

	info, ok := t.runs[id]
	if !ok || info.State.IsTerminal() {
		return
	}
	mutate(info)
	info.UpdatedAt = t.now()
}

// Get returns a copy of the run
func (t *RunTracker) Get(id string) (models.RunInfo, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	info, ok := t.runs[id]
	if !ok {
		return models.RunInfo{}, false
	}
	return *info, true
}

// List returns runs newest first
func (t *RunTracker) List() []models.RunInfo {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]models.RunInfo, 0, len(t.order))
	for i := len(t.order) - 1; i >= 0; i-- {
		out = append(out, *t.runs[t.order[i]])
	}
	return out
}

// Stats counts runs per state
func (t *RunTracker) Stats() map[string]int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	stats := map[string]int{"total": len(t.runs)}
	for _, info := range t.runs {
		stats[string(info.State)]++
	}
	return stats
}

// evict drops runs beyond the limit, finished ones first. Callers hold mu.
func (t *RunTracker) evict() {
	for len(t.order) > t.limit {
		victim := 0
		for i, id := range t.order {
			if t.runs[id].State.IsTerminal() {
				victim = i
				break
			}
		}
		delete(t.runs, t.order[victim])
		t.order = append(t.order[:victim], t.order[victim+1:]...)
	}
}
