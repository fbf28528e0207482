// ABOUTME: Converts a client review session into pipeline referrals and auto-tasks
// ABOUTME: Deduplicates against the store, inserts one batch, then seeds coordinate tasks
package pipeline

import (
	"fmt"

	"github.com/harperreed/warmpath/models"
)

// ReviewEntry is one prospect's outcome from a review session.
type ReviewEntry struct {
	Prospect models.Prospect
	Response models.Response
	Note     string
}

// ReviewSession is the output of a client walking through their shortlist.
type ReviewSession struct {
	ClientID   string
	ClientName string
	Entries    []ReviewEntry
}

// ReviewResult reports what a conversion added to the pipeline.
type ReviewResult struct {
	// Created lists ids of referrals that entered the store, in input order.
	Created []string
	// AgreedCount counts created referrals that entered at Client Agreed.
	AgreedCount int
	// TasksCreated counts auto-created coordinate tasks.
	TasksCreated int
	// Duplicates counts candidates dropped because they already existed.
	Duplicates int
	// Skipped counts entries whose response created nothing.
	Skipped int
}

// CoordinatesTaskTitle is the title given to auto-created coordinate tasks.
func CoordinatesTaskTitle(clientName, prospectName string) string {
	return fmt.Sprintf("Ask %s for best email/phone for %s", clientName, prospectName)
}

// ConvertReview turns a review session into referrals. The whole batch is
// built and inserted under one lock, and coordinate tasks are only created for
// referrals that were actually inserted.
func (e *Engine) ConvertReview(session ReviewSession) ReviewResult {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.clock.Now()
	var result ReviewResult

	var batch []models.Referral
	seen := make(map[string]bool)
	for _, entry := range session.Entries {
		in := CreateReferralInput{
			ClientID:   session.ClientID,
			ClientName: session.ClientName,
			Prospect:   entry.Prospect,
			Response:   entry.Response,
			Note:       entry.Note,
			CreatedAt:  now,
		}
		if in.Validate() != nil {
			result.Skipped++
			continue
		}
		candidate, ok := e.referrals.build(in)
		if !ok {
			result.Skipped++
			continue
		}
		if seen[candidate.ID] || e.referrals.Has(candidate.ID) {
			result.Duplicates++
			continue
		}
		seen[candidate.ID] = true
		batch = append(batch, candidate)
	}

	for _, r := range batch {
		e.referrals.insert(r)
		result.Created = append(result.Created, r.ID)
		if r.Stage == models.StageClientAgreed {
			result.AgreedCount++
		}
	}

	for _, r := range batch {
		if r.Stage != models.StageClientAgreed || r.Contact.HasDirectLine() {
			continue
		}
		e.tasks.Create(
			r.ID,
			CoordinatesTaskTitle(r.ClientName, r.Prospect.Name),
			models.TaskTypeAskCoordinates,
			CoordinatesTaskDueDays,
			now,
		)
		result.TasksCreated++
	}

	return result
}
