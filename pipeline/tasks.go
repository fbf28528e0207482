// ABOUTME: Task manager for follow-up work items linked to referrals
// ABOUTME: Handles task creation with due offsets, one-way completion, and open-task queries
package pipeline

import (
	"io"
	"math/rand"
	"sort"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/harperreed/warmpath/models"
)

// TaskManager tracks follow-up tasks. It is not safe for concurrent use;
// Engine serializes access to it.
type TaskManager struct {
	loc     *time.Location
	entropy io.Reader
	tasks   []*models.Task
	byID    map[string]*models.Task
}

func NewTaskManager(loc *time.Location) *TaskManager {
	if loc == nil {
		loc = time.UTC
	}
	return &TaskManager{
		loc:     loc,
		entropy: ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
		byID:    make(map[string]*models.Task),
	}
}

func (m *TaskManager) newID(now time.Time) string {
	return ulid.MustNew(ulid.Timestamp(now), m.entropy).String()
}

// Create always adds a new open task due offsetDays after the day of now.
func (m *TaskManager) Create(referralID, title, taskType string, offsetDays int, now time.Time) models.Task {
	if taskType == "" {
		taskType = models.TaskTypeGeneric
	}
	task := &models.Task{
		ID:         m.newID(now),
		ReferralID: referralID,
		Type:       taskType,
		Title:      title,
		DueDate:    models.DateOf(now, m.loc).AddDays(offsetDays),
		Status:     models.TaskStatusOpen,
		CreatedAt:  now,
	}
	m.tasks = append(m.tasks, task)
	m.byID[task.ID] = task
	return *task
}

// Complete marks an open task done. Unknown and already-done tasks are left
// untouched, so CompletedAt records the first completion only.
func (m *TaskManager) Complete(id string, now time.Time) bool {
	task, ok := m.byID[id]
	if !ok || !task.IsOpen() {
		return false
	}
	completed := now
	task.Status = models.TaskStatusDone
	task.CompletedAt = &completed
	return true
}

func (m *TaskManager) Get(id string) (models.Task, bool) {
	task, ok := m.byID[id]
	if !ok {
		return models.Task{}, false
	}
	return *task, true
}

// All returns every task in creation order.
func (m *TaskManager) All() []models.Task {
	out := make([]models.Task, 0, len(m.tasks))
	for _, t := range m.tasks {
		out = append(out, *t)
	}
	return out
}

// Open returns open tasks ordered by ascending due date.
func (m *TaskManager) Open() []models.Task {
	return m.openWhere(func(*models.Task) bool { return true })
}

// OpenFor returns the open tasks of one referral ordered by ascending due date.
func (m *TaskManager) OpenFor(referralID string) []models.Task {
	return m.openWhere(func(t *models.Task) bool { return t.ReferralID == referralID })
}

// Overdue returns open tasks due before asOf.
func (m *TaskManager) Overdue(asOf models.Date) []models.Task {
	return m.openWhere(func(t *models.Task) bool { return t.DueDate.Before(asOf) })
}

func (m *TaskManager) openWhere(keep func(*models.Task) bool) []models.Task {
	var out []models.Task
	for _, t := range m.tasks {
		if t.IsOpen() && keep(t) {
			out = append(out, *t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DueDate.Before(out[j].DueDate)
	})
	return out
}

// Snapshot returns every task for persistence.
func (m *TaskManager) Snapshot() []models.Task {
	return m.All()
}

// Restore replaces the manager's tasks. Tasks without an id are dropped.
func (m *TaskManager) Restore(tasks []models.Task) {
	m.tasks = m.tasks[:0]
	m.byID = make(map[string]*models.Task, len(tasks))
	for i := range tasks {
		t := tasks[i]
		if t.ID == "" {
			continue
		}
		if _, dup := m.byID[t.ID]; dup {
			continue
		}
		if t.Status == "" {
			t.Status = models.TaskStatusOpen
		}
		m.tasks = append(m.tasks, &t)
		m.byID[t.ID] = &t
	}
}
