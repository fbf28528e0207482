// ABOUTME: Runs a client review session through the pipeline converter
// ABOUTME: Resolves prospects, converts, then updates the client's review stats
package workspace

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/harperreed/warmpath/models"
	"github.com/harperreed/warmpath/pipeline"
	"github.com/harperreed/warmpath/storage"
)

// ReviewInput is one reviewed prospect. Either ProspectID names a prospect in
// the client's imported network, or Prospect carries it inline.
type ReviewInput struct {
	ProspectID string
	Prospect   *models.Prospect
	Response   models.Response
	Note       string
}

// ReviewOutcome is the converter result plus entries that could not be resolved.
type ReviewOutcome struct {
	pipeline.ReviewResult
	Unresolved []string
}

// RunReview converts a client's review into referrals and tasks, bumps the
// client's referral count by the number of agreed introductions, and records
// today as their last review.
func (w *Workspace) RunReview(clientID string, inputs []ReviewInput) (ReviewOutcome, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	ci := w.clientIndex(clientID)
	if ci < 0 {
		return ReviewOutcome{}, fmt.Errorf("%w: %s", ErrUnknownClient, clientID)
	}
	client := w.clients[ci]

	var outcome ReviewOutcome
	var prospectsChanged bool
	session := pipeline.ReviewSession{ClientID: client.ID, ClientName: client.Name}
	for _, in := range inputs {
		var p models.Prospect
		switch {
		case in.Prospect != nil:
			var added bool
			p, added = w.adoptProspect(clientID, *in.Prospect)
			prospectsChanged = prospectsChanged || added
		default:
			found, ok := w.prospect(clientID, in.ProspectID)
			if !ok {
				outcome.Unresolved = append(outcome.Unresolved, in.ProspectID)
				continue
			}
			p = found
		}
		session.Entries = append(session.Entries, pipeline.ReviewEntry{
			Prospect: p,
			Response: in.Response,
			Note:     in.Note,
		})
	}

	outcome.ReviewResult = w.engine.ConvertReview(session)

	today := w.engine.Today()
	w.clients[ci].Referrals += outcome.AgreedCount
	w.clients[ci].LastReview = &today

	w.logger.Info("review converted",
		"client", client.Name,
		"created", len(outcome.Created),
		"agreed", outcome.AgreedCount,
		"tasks", outcome.TasksCreated,
		"duplicates", outcome.Duplicates)

	keys := []string{storage.KeyPipeline, storage.KeyTasks, storage.KeyClients}
	if prospectsChanged {
		keys = append(keys, storage.KeyProspects)
	}
	return outcome, w.persist(keys...)
}

// adoptProspect gives an inline prospect a stable identity within clientID's
// network. A prospect matching a known one by id, email, profile URL, or name
// resolves to it; otherwise it is added under a name-derived id so the same
// person reviewed again maps to the same referral.
func (w *Workspace) adoptProspect(clientID string, p models.Prospect) (models.Prospect, bool) {
	p.ID = strings.TrimSpace(p.ID)
	p.Name = strings.TrimSpace(p.Name)

	for _, known := range w.prospects[clientID] {
		if sameProspect(known, p) {
			return known, false
		}
	}

	if p.ID == "" {
		p.ID = inlineProspectID(clientID, p)
	}
	w.prospects[clientID] = append(w.prospects[clientID], p)
	return p, true
}

func sameProspect(a, b models.Prospect) bool {
	if b.ID != "" {
		return a.ID == b.ID
	}
	switch {
	case b.Email != "" && strings.EqualFold(a.Email, b.Email):
		return true
	case b.ProfileURL != "" && strings.EqualFold(a.ProfileURL, b.ProfileURL):
		return true
	}
	return b.Name != "" && normalizeName(a.Name) == normalizeName(b.Name)
}

func normalizeName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// inlineProspectID derives a deterministic id from the client and the most
// specific identifying field the prospect carries.
func inlineProspectID(clientID string, p models.Prospect) string {
	key := "name:" + normalizeName(p.Name)
	switch {
	case p.Email != "":
		key = "email:" + strings.ToLower(strings.TrimSpace(p.Email))
	case p.ProfileURL != "":
		key = "url:" + strings.ToLower(strings.TrimSpace(p.ProfileURL))
	}
	return ImportedProspectPrefix + uuid.NewSHA1(uuid.NameSpaceURL, []byte(clientID+"/"+key)).String()
}
