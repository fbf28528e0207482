// ABOUTME: Referral and task mutations routed through the engine
// ABOUTME: Each successful change is persisted before returning
package workspace

import (
	"fmt"

	"github.com/harperreed/warmpath/models"
	"github.com/harperreed/warmpath/pipeline"
	"github.com/harperreed/warmpath/storage"
)

func (w *Workspace) Referral(id string) (models.Referral, bool) {
	return w.engine.Referral(id)
}

func (w *Workspace) Referrals(f pipeline.ReferralFilter) []models.Referral {
	return w.engine.Referrals(f)
}

func (w *Workspace) StaleReferrals() []models.Referral {
	return w.engine.StaleReferrals()
}

// SetStage moves a referral to stage. ok is false for unknown ids and stages.
func (w *Workspace) SetStage(id string, stage models.Stage) (ok bool, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.engine.SetStage(id, stage) {
		return false, nil
	}
	return true, w.persist(storage.KeyPipeline)
}

func (w *Workspace) Advance(id string) (models.Stage, bool, error) {
	return w.shift(id, w.engine.Advance)
}

func (w *Workspace) Retreat(id string) (models.Stage, bool, error) {
	return w.shift(id, w.engine.Retreat)
}

func (w *Workspace) shift(id string, step func(string) (models.Stage, bool)) (models.Stage, bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	stage, ok := step(id)
	if !ok {
		return "", false, nil
	}
	return stage, true, w.persist(storage.KeyPipeline)
}

// UpdateReferral merges note and contact changes into a referral.
func (w *Workspace) UpdateReferral(id string, patch pipeline.ReferralPatch) (bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.engine.UpdateFields(id, patch) {
		return false, nil
	}
	return true, w.persist(storage.KeyPipeline)
}

// RemoveReferral deletes a referral. Its tasks stay and show as orphaned.
func (w *Workspace) RemoveReferral(id string) (bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.engine.RemoveReferral(id) {
		return false, nil
	}
	return true, w.persist(storage.KeyPipeline)
}

// CreateTask adds a task for an existing referral. The engine accepts any
// referral id; the workspace refuses unknown ones so a mistyped id from a
// surface never creates a task that starts out orphaned.
func (w *Workspace) CreateTask(referralID, title, taskType string, dueOffsetDays int) (models.Task, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.engine.Referral(referralID); !ok {
		return models.Task{}, fmt.Errorf("%w: %s", ErrUnknownReferral, referralID)
	}
	task := w.engine.CreateTask(referralID, title, taskType, dueOffsetDays)
	return task, w.persist(storage.KeyTasks)
}

// CompleteTask marks a task done. ok is false for unknown or completed tasks.
func (w *Workspace) CompleteTask(id string) (bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.engine.CompleteTask(id) {
		return false, nil
	}
	return true, w.persist(storage.KeyTasks)
}

func (w *Workspace) Task(id string) (models.Task, bool) {
	return w.engine.Task(id)
}

// OpenTasks returns open tasks, optionally for one referral, resolved
// against current referrals.
func (w *Workspace) OpenTasks(referralID string) []pipeline.TaskView {
	return w.engine.OpenTaskViews(referralID)
}

// OverdueTasks returns open tasks due before today.
func (w *Workspace) OverdueTasks() []pipeline.TaskView {
	today := w.engine.Today()
	var out []pipeline.TaskView
	for _, v := range w.engine.OpenTaskViews("") {
		if v.DueDate.Before(today) {
			out = append(out, v)
		}
	}
	return out
}
