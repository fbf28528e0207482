// ABOUTME: Tests for the task manager
// ABOUTME: Covers due offsets, one-way completion, ordering, and restore
package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/warmpath/models"
)

func TestTaskCreateDueOffset(t *testing.T) {
	m := NewTaskManager(time.UTC)

	task := m.Create("C1__P1", "Ask for phone", models.TaskTypeAskCoordinates, 2, day("2026-02-01"))

	assert.NotEmpty(t, task.ID)
	assert.Equal(t, "2026-02-03", task.DueDate.String())
	assert.Equal(t, models.TaskStatusOpen, task.Status)
	assert.Nil(t, task.CompletedAt)
	assert.Equal(t, models.TaskTypeAskCoordinates, task.Type)
}

func TestTaskCreateDefaultsType(t *testing.T) {
	m := NewTaskManager(time.UTC)
	task := m.Create("C1__P1", "Call", "", 0, day("2026-02-01"))
	assert.Equal(t, models.TaskTypeGeneric, task.Type)
	assert.Equal(t, "2026-02-01", task.DueDate.String())
}

func TestTaskCreateNeverDeduplicates(t *testing.T) {
	m := NewTaskManager(time.UTC)
	a := m.Create("C1__P1", "Same", models.TaskTypeFollowup, 3, day("2026-02-01"))
	b := m.Create("C1__P1", "Same", models.TaskTypeFollowup, 3, day("2026-02-01"))

	assert.NotEqual(t, a.ID, b.ID)
	assert.Len(t, m.All(), 2)
}

func TestTaskCompleteIsOneWay(t *testing.T) {
	m := NewTaskManager(time.UTC)
	task := m.Create("C1__P1", "Ask", models.TaskTypeAskCoordinates, 2, day("2026-02-01"))

	first := day("2026-02-02")
	require.True(t, m.Complete(task.ID, first))

	got, ok := m.Get(task.ID)
	require.True(t, ok)
	assert.Equal(t, models.TaskStatusDone, got.Status)
	require.NotNil(t, got.CompletedAt)
	assert.Equal(t, first, *got.CompletedAt)

	assert.False(t, m.Complete(task.ID, day("2026-02-05")))
	got, _ = m.Get(task.ID)
	assert.Equal(t, first, *got.CompletedAt, "completion time must not move")

	assert.False(t, m.Complete("missing", day("2026-02-05")))
}

func TestOpenTasksSortedByDueDate(t *testing.T) {
	m := NewTaskManager(time.UTC)
	now := day("2026-02-01")
	late := m.Create("C1__P1", "late", "", 10, now)
	early := m.Create("C1__P2", "early", "", 1, now)
	mid := m.Create("C1__P1", "mid", "", 4, now)
	done := m.Create("C1__P1", "done", "", 0, now)
	m.Complete(done.ID, now)

	open := m.Open()
	require.Len(t, open, 3)
	assert.Equal(t, []string{early.ID, mid.ID, late.ID}, []string{open[0].ID, open[1].ID, open[2].ID})

	forP1 := m.OpenFor("C1__P1")
	require.Len(t, forP1, 2)
	assert.Equal(t, mid.ID, forP1[0].ID)
	assert.Equal(t, late.ID, forP1[1].ID)

	for i := 1; i < len(open); i++ {
		assert.False(t, open[i].DueDate.Before(open[i-1].DueDate))
	}
}

func TestOverdueTasks(t *testing.T) {
	m := NewTaskManager(time.UTC)
	now := day("2026-02-01")
	m.Create("C1__P1", "due tomorrow", "", 1, now)
	past := m.Create("C1__P1", "due today", "", 0, now)

	assert.Empty(t, m.Overdue(models.MustParseDate("2026-02-01")))

	overdue := m.Overdue(models.MustParseDate("2026-02-02"))
	require.Len(t, overdue, 1)
	assert.Equal(t, past.ID, overdue[0].ID)
}

func TestTaskDueDateUsesReferenceZone(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)
	m := NewTaskManager(tokyo)

	// 20:00 UTC on Feb 1 is already Feb 2 in Tokyo.
	task := m.Create("C1__P1", "Ask", "", 2, time.Date(2026, 2, 1, 20, 0, 0, 0, time.UTC))
	assert.Equal(t, "2026-02-04", task.DueDate.String())
}

func TestTaskRestore(t *testing.T) {
	m := NewTaskManager(time.UTC)
	m.Create("old", "gone after restore", "", 1, day("2026-02-01"))

	m.Restore([]models.Task{
		{ID: "T1", ReferralID: "C1__P1", Title: "one", DueDate: models.MustParseDate("2026-02-05")},
		{ID: "T1", ReferralID: "C1__P1", Title: "dup"},
		{ID: "", Title: "no id"},
	})

	all := m.All()
	require.Len(t, all, 1)
	assert.Equal(t, "one", all[0].Title)
	assert.Equal(t, models.TaskStatusOpen, all[0].Status)
}
