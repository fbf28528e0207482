// ABOUTME: Referral store enforcing composite identity and stage/SLA consistency
// ABOUTME: All stage changes go through SetStage so due dates are never stale
package pipeline

import (
	"errors"
	"strings"
	"time"

	"github.com/harperreed/warmpath/models"
)

// IDSeparator joins client and prospect ids into a referral id.
const IDSeparator = "__"

var ErrInvalidInput = errors.New("invalid referral input")

// ReferralID returns the deterministic id for a (client, prospect) pair.
func ReferralID(clientID, prospectID string) string {
	return clientID + IDSeparator + prospectID
}

// CreateReferralInput describes a referral to be created from a review response.
type CreateReferralInput struct {
	ClientID   string
	ClientName string
	Prospect   models.Prospect
	Response   models.Response
	Note       string
	CreatedAt  time.Time
}

// Validate rejects inputs missing the identifiers the composite id is built from.
// The separator is also rejected inside ids so two pairs can never collide.
func (in CreateReferralInput) Validate() error {
	if in.ClientID == "" || in.Prospect.ID == "" {
		return ErrInvalidInput
	}
	if strings.Contains(in.ClientID, IDSeparator) || strings.Contains(in.Prospect.ID, IDSeparator) {
		return ErrInvalidInput
	}
	return nil
}

// ReferralPatch carries optional field updates. Nil fields are left unchanged.
type ReferralPatch struct {
	Note       *string
	Email      *string
	Phone      *string
	ProfileURL *string
}

// ReferralFilter narrows List results. Zero values match everything.
type ReferralFilter struct {
	ClientID string
	Stage    models.Stage
	// StaleAsOf, when set, keeps only referrals that are stale on that day.
	StaleAsOf *models.Date
}

// ReferralStore is the authoritative set of referrals. It is not safe for
// concurrent use; Engine serializes access to it.
type ReferralStore struct {
	sla   SLAPolicy
	loc   *time.Location
	byID  map[string]*models.Referral
	order []string
}

// NewReferralStore creates an empty store computing due dates with sla in loc.
func NewReferralStore(sla SLAPolicy, loc *time.Location) *ReferralStore {
	if sla == nil {
		sla = DefaultSLAPolicy()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &ReferralStore{
		sla:  sla,
		loc:  loc,
		byID: make(map[string]*models.Referral),
	}
}

// build turns an input into a referral without touching the store.
func (s *ReferralStore) build(in CreateReferralInput) (models.Referral, bool) {
	stage, ok := in.Response.Stage()
	if !ok {
		return models.Referral{}, false
	}

	day := models.DateOf(in.CreatedAt, s.loc)
	return models.Referral{
		ID:         ReferralID(in.ClientID, in.Prospect.ID),
		ClientID:   in.ClientID,
		ClientName: in.ClientName,
		Prospect:   in.Prospect,
		Contact: models.Contact{
			Email:      in.Prospect.Email,
			Phone:      in.Prospect.Phone,
			ProfileURL: in.Prospect.ProfileURL,
		},
		Stage:          stage,
		Note:           in.Note,
		Response:       in.Response,
		CreatedAt:      in.CreatedAt,
		UpdatedAt:      in.CreatedAt,
		StageEnteredAt: in.CreatedAt,
		NextDueDate:    s.sla.DueDate(stage, day),
	}, true
}

func (s *ReferralStore) insert(r models.Referral) {
	stored := r
	s.byID[r.ID] = &stored
	s.order = append(s.order, r.ID)
}

// Create adds a referral for the input's (client, prospect) pair. If one
// already exists it is returned unchanged with created=false. Responses that
// do not map to a stage create nothing.
func (s *ReferralStore) Create(in CreateReferralInput) (ref models.Referral, created bool) {
	candidate, ok := s.build(in)
	if !ok {
		return models.Referral{}, false
	}
	if existing, exists := s.byID[candidate.ID]; exists {
		return *existing, false
	}
	s.insert(candidate)
	return candidate, true
}

// SetStage moves a referral to stage and recomputes its due date from the
// day of now. Unknown ids and stages outside models.Stages are ignored.
func (s *ReferralStore) SetStage(id string, stage models.Stage, now time.Time) bool {
	r, ok := s.byID[id]
	if !ok || !stage.IsValid() {
		return false
	}
	r.Stage = stage
	r.StageEnteredAt = now
	r.NextDueDate = s.sla.DueDate(stage, models.DateOf(now, s.loc))
	r.UpdatedAt = now
	return true
}

// UpdateFields merges patch into the referral's note and contact. Unknown ids
// are ignored.
func (s *ReferralStore) UpdateFields(id string, patch ReferralPatch, now time.Time) bool {
	r, ok := s.byID[id]
	if !ok {
		return false
	}
	if patch.Note != nil {
		r.Note = *patch.Note
	}
	if patch.Email != nil {
		r.Contact.Email = *patch.Email
	}
	if patch.Phone != nil {
		r.Contact.Phone = *patch.Phone
	}
	if patch.ProfileURL != nil {
		r.Contact.ProfileURL = *patch.ProfileURL
	}
	r.UpdatedAt = now
	return true
}

// Remove deletes a referral. Tasks pointing at it are left alone.
func (s *ReferralStore) Remove(id string) bool {
	if _, ok := s.byID[id]; !ok {
		return false
	}
	delete(s.byID, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

// RemoveByClient deletes every referral created for clientID and returns
// how many were removed.
func (s *ReferralStore) RemoveByClient(clientID string) int {
	kept := s.order[:0]
	removed := 0
	for _, id := range s.order {
		if s.byID[id].ClientID == clientID {
			delete(s.byID, id)
			removed++
			continue
		}
		kept = append(kept, id)
	}
	s.order = kept
	return removed
}

func (s *ReferralStore) Get(id string) (models.Referral, bool) {
	r, ok := s.byID[id]
	if !ok {
		return models.Referral{}, false
	}
	return *r, true
}

func (s *ReferralStore) Has(id string) bool {
	_, ok := s.byID[id]
	return ok
}

func (s *ReferralStore) Len() int {
	return len(s.order)
}

// List returns matching referrals in insertion order.
func (s *ReferralStore) List(f ReferralFilter) []models.Referral {
	out := make([]models.Referral, 0, len(s.order))
	for _, id := range s.order {
		r := s.byID[id]
		if f.ClientID != "" && r.ClientID != f.ClientID {
			continue
		}
		if f.Stage != "" && r.Stage != f.Stage {
			continue
		}
		if f.StaleAsOf != nil && !IsStale(*r, *f.StaleAsOf) {
			continue
		}
		out = append(out, *r)
	}
	return out
}

// Stale returns referrals whose next action was due before asOf.
func (s *ReferralStore) Stale(asOf models.Date) []models.Referral {
	return s.List(ReferralFilter{StaleAsOf: &asOf})
}

// Snapshot returns every referral in insertion order for persistence.
func (s *ReferralStore) Snapshot() []models.Referral {
	return s.List(ReferralFilter{})
}

// Restore replaces the store's contents with refs. Later duplicates of an id
// are dropped. Due dates are recomputed under the store's SLA policy from the
// day each stage was entered, so a changed policy applies to loaded referrals.
func (s *ReferralStore) Restore(refs []models.Referral) {
	s.byID = make(map[string]*models.Referral, len(refs))
	s.order = s.order[:0]
	for _, r := range refs {
		if _, dup := s.byID[r.ID]; dup || r.ID == "" {
			continue
		}
		if r.StageEnteredAt.IsZero() {
			r.StageEnteredAt = r.UpdatedAt
		}
		r.NextDueDate = s.sla.DueDate(r.Stage, models.DateOf(r.StageEnteredAt, s.loc))
		s.insert(r)
	}
}

// IsStale reports whether the referral's next action is overdue as of asOf.
// Outcome referrals are never stale.
func IsStale(r models.Referral, asOf models.Date) bool {
	if r.Stage == models.StageOutcome || r.NextDueDate == nil {
		return false
	}
	return r.NextDueDate.Before(asOf)
}
