// ABOUTME: Engine composing referral store, task manager, SLA policy, and clock
// ABOUTME: Serializes every operation so stage and due date are never seen out of sync
package pipeline

import (
	"sync"
	"time"

	"github.com/harperreed/warmpath/models"
)

// Auto-task settings for referrals that enter Client Agreed without a way to
// reach the prospect directly.
const (
	CoordinatesTaskDueDays = 2
	FollowupTaskDueDays    = 3
)

// Options configures a new Engine.
type Options struct {
	SLA      SLAPolicy
	Location *time.Location
	Clock    Clock
}

// Engine is the referral lifecycle engine. All methods are safe to call from
// multiple goroutines; each runs to completion under a single lock.
type Engine struct {
	mu        sync.Mutex
	clock     Clock
	loc       *time.Location
	sla       SLAPolicy
	referrals *ReferralStore
	tasks     *TaskManager
}

func NewEngine(opts Options) *Engine {
	if opts.SLA == nil {
		opts.SLA = DefaultSLAPolicy()
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Clock == nil {
		opts.Clock = SystemClock{}
	}
	return &Engine{
		clock:     opts.Clock,
		loc:       opts.Location,
		sla:       opts.SLA,
		referrals: NewReferralStore(opts.SLA, opts.Location),
		tasks:     NewTaskManager(opts.Location),
	}
}

// Now returns the engine clock's current instant.
func (e *Engine) Now() time.Time {
	return e.clock.Now()
}

// Today returns the current calendar day in the engine's reference zone.
func (e *Engine) Today() models.Date {
	return models.DateOf(e.clock.Now(), e.loc)
}

func (e *Engine) SLA() SLAPolicy {
	return e.sla
}

// Restore replaces all referrals and tasks, typically with persisted state.
func (e *Engine) Restore(refs []models.Referral, tasks []models.Task) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.referrals.Restore(refs)
	e.tasks.Restore(tasks)
}

// CreateReferral creates a single referral stamped with the current time.
func (e *Engine) CreateReferral(in CreateReferralInput) (models.Referral, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if in.CreatedAt.IsZero() {
		in.CreatedAt = e.clock.Now()
	}
	return e.referrals.Create(in)
}

func (e *Engine) SetStage(id string, stage models.Stage) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.referrals.SetStage(id, stage, e.clock.Now())
}

// Advance moves a referral to the next stage. Outcome stays put.
func (e *Engine) Advance(id string) (models.Stage, bool) {
	return e.shift(id, models.Stage.Next)
}

// Retreat moves a referral to the previous stage.
func (e *Engine) Retreat(id string) (models.Stage, bool) {
	return e.shift(id, models.Stage.Prev)
}

func (e *Engine) shift(id string, step func(models.Stage) models.Stage) (models.Stage, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	r, ok := e.referrals.Get(id)
	if !ok {
		return "", false
	}
	next := step(r.Stage)
	if !e.referrals.SetStage(id, next, e.clock.Now()) {
		return "", false
	}
	return next, true
}

func (e *Engine) UpdateFields(id string, patch ReferralPatch) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.referrals.UpdateFields(id, patch, e.clock.Now())
}

func (e *Engine) RemoveReferral(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.referrals.Remove(id)
}

func (e *Engine) RemoveClientReferrals(clientID string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.referrals.RemoveByClient(clientID)
}

func (e *Engine) Referral(id string) (models.Referral, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.referrals.Get(id)
}

func (e *Engine) Referrals(f ReferralFilter) []models.Referral {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.referrals.List(f)
}

// StaleReferrals returns referrals overdue as of today.
func (e *Engine) StaleReferrals() []models.Referral {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.referrals.Stale(models.DateOf(e.clock.Now(), e.loc))
}

func (e *Engine) CreateTask(referralID, title, taskType string, dueOffsetDays int) models.Task {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tasks.Create(referralID, title, taskType, dueOffsetDays, e.clock.Now())
}

func (e *Engine) CompleteTask(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tasks.Complete(id, e.clock.Now())
}

func (e *Engine) Task(id string) (models.Task, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tasks.Get(id)
}

func (e *Engine) OpenTasks() []models.Task {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tasks.Open()
}

func (e *Engine) OpenTasksFor(referralID string) []models.Task {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tasks.OpenFor(referralID)
}

func (e *Engine) OverdueTasks() []models.Task {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tasks.Overdue(models.DateOf(e.clock.Now(), e.loc))
}

// TaskView pairs a task with the referral it points at. ReferralMissing is
// set when the referral has since been removed.
type TaskView struct {
	models.Task
	Referral        *models.Referral
	ReferralMissing bool
}

// OpenTaskViews returns open tasks (optionally for one referral) resolved
// against the current referrals.
func (e *Engine) OpenTaskViews(referralID string) []TaskView {
	e.mu.Lock()
	defer e.mu.Unlock()

	var tasks []models.Task
	if referralID != "" {
		tasks = e.tasks.OpenFor(referralID)
	} else {
		tasks = e.tasks.Open()
	}

	views := make([]TaskView, 0, len(tasks))
	for _, t := range tasks {
		v := TaskView{Task: t}
		if r, ok := e.referrals.Get(t.ReferralID); ok {
			v.Referral = &r
		} else {
			v.ReferralMissing = true
		}
		views = append(views, v)
	}
	return views
}

// Snapshot returns copies of all referrals and tasks for persistence.
func (e *Engine) Snapshot() ([]models.Referral, []models.Task) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.referrals.Snapshot(), e.tasks.Snapshot()
}
