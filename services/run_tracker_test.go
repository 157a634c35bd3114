package services

import (
	"fmt"
	"testing"

	"student/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunTracker_Lifecycle(t *testing.T) {
	tracker := NewRunTracker(10)
	info := tracker.Start("a", models.TaskRequest{Task: "demo", Round: 1})
	assert.Equal(t, models.RunStateReceived, info.State)

	tracker.Update("a", func(i *models.RunInfo) { i.State = models.RunStateGenerating })
	got, ok := tracker.Get("a")
	require.True(t, ok)
	assert.Equal(t, models.RunStateGenerating, got.State)
	assert.False(t, got.UpdatedAt.Before(got.StartedAt))

	tracker.Update("a", func(i *models.RunInfo) { i.State = models.RunStateDone })
	tracker.Update("a", func(i *models.RunInfo) { i.State = models.RunStateFailed })
	got, _ = tracker.Get("a")
	assert.Equal(t, models.RunStateDone, got.State, "finished runs are frozen")

	tracker.Update("missing", func(i *models.RunInfo) { i.State = models.RunStateDone })
	_, ok = tracker.Get("missing")
	assert.False(t, ok)
}

func TestRunTracker_ListAndStats(t *testing.T) {
	tracker := NewRunTracker(10)
	tracker.Start("a", models.TaskRequest{Task: "one", Round: 1})
	tracker.Start("b", models.TaskRequest{Task: "two", Round: 2})
	tracker.Update("a", func(i *models.RunInfo) { i.State = models.RunStateDone })

	list := tracker.List()
	require.Len(t, list, 2)
	assert.Equal(t, "b", list[0].ID)
	assert.Equal(t, "a", list[1].ID)

	stats := tracker.Stats()
	assert.Equal(t, 2, stats["total"])
	assert.Equal(t, 1, stats["done"])
	assert.Equal(t, 1, stats["received"])
}

func TestRunTracker_EvictsFinishedRunsFirst(t *testing.T) {
	tracker := NewRunTracker(3)
	for i := 0; i < 3; i++ {
		tracker.Start(fmt.Sprintf("run-%d", i), models.TaskRequest{Round: 1})
	}
	tracker.Update("run-1", func(i *models.RunInfo) { i.State = models.RunStateFailed })

	tracker.Start("run-3", models.TaskRequest{Round: 1})
	_, ok := tracker.Get("run-1")
	assert.False(t, ok, "finished run evicted before older active ones")
	_, ok = tracker.Get("run-0")
	assert.True(t, ok)

	tracker.Start("run-4", models.TaskRequest{Round: 1})
	_, ok = tracker.Get("run-0")
	assert.False(t, ok, "oldest run evicted when none are finished")
	assert.Len(t, tracker.List(), 3)
}
