// ABOUTME: Tests for the referral store and SLA policy
// ABOUTME: Covers identity, response mapping, stage/SLA consistency, and staleness
package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/warmpath/models"
)

func day(s string) time.Time {
	d := models.MustParseDate(s)
	return time.Date(d.Year, d.Month, d.Day, 9, 30, 0, 0, time.UTC)
}

func newTestStore() *ReferralStore {
	return NewReferralStore(DefaultSLAPolicy(), time.UTC)
}

func input(clientID, prospectID string, resp models.Response, at time.Time) CreateReferralInput {
	return CreateReferralInput{
		ClientID:   clientID,
		ClientName: "Client " + clientID,
		Prospect:   models.Prospect{ID: prospectID, Name: "Prospect " + prospectID},
		Response:   resp,
		CreatedAt:  at,
	}
}

func TestReferralIDIsDeterministic(t *testing.T) {
	assert.Equal(t, "C1__P1", ReferralID("C1", "P1"))
	assert.Equal(t, ReferralID("C1", "P1"), ReferralID("C1", "P1"))
	assert.NotEqual(t, ReferralID("C1", "P1"), ReferralID("P1", "C1"))
}

func TestCreateReferralIsIdempotent(t *testing.T) {
	s := newTestStore()

	first, created := s.Create(input("C1", "P1", models.ResponseStrong, day("2026-02-01")))
	require.True(t, created)
	assert.Equal(t, 1, s.Len())

	again, created := s.Create(input("C1", "P1", models.ResponseCasual, day("2026-02-05")))
	assert.False(t, created)
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, first.Stage, again.Stage, "existing referral must not be overwritten")
	assert.Equal(t, first.CreatedAt, again.CreatedAt)
}

func TestCreateReferralResponseMapping(t *testing.T) {
	tests := []struct {
		response models.Response
		stage    models.Stage
		created  bool
	}{
		{models.ResponseStrong, models.StageClientAgreed, true},
		{models.ResponseCasual, models.StageIdentified, true},
		{models.ResponseSkip, "", false},
		{models.Response("unsure"), "", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.response), func(t *testing.T) {
			s := newTestStore()
			r, created := s.Create(input("C1", "P1", tt.response, day("2026-02-01")))
			assert.Equal(t, tt.created, created)
			assert.Equal(t, tt.stage, r.Stage)
			if !tt.created {
				assert.Equal(t, 0, s.Len())
			}
		})
	}
}

func TestCreateReferralSnapshotsProspect(t *testing.T) {
	s := newTestStore()
	in := input("C1", "P1", models.ResponseStrong, day("2026-02-01"))
	in.Prospect.Email = "p1@example.com"
	in.Prospect.ProfileURL = "https://linkedin.com/in/p1"
	in.Note = "sits on the hospital board"

	r, created := s.Create(in)
	require.True(t, created)

	assert.Equal(t, "p1@example.com", r.Contact.Email)
	assert.Equal(t, "https://linkedin.com/in/p1", r.Contact.ProfileURL)
	assert.Equal(t, "sits on the hospital board", r.Note)
	assert.Equal(t, models.ResponseStrong, r.Response)
	assert.Equal(t, r.CreatedAt, r.UpdatedAt)

	// Editing the caller's prospect afterwards must not leak into the store.
	in.Prospect.Name = "Renamed"
	stored, ok := s.Get(r.ID)
	require.True(t, ok)
	assert.Equal(t, "Prospect P1", stored.Prospect.Name)
}

func TestCreateReferralDueDates(t *testing.T) {
	s := newTestStore()

	casual, _ := s.Create(input("C1", "P1", models.ResponseCasual, day("2026-02-01")))
	require.NotNil(t, casual.NextDueDate)
	assert.Equal(t, "2026-02-08", casual.NextDueDate.String())

	strong, _ := s.Create(input("C1", "P2", models.ResponseStrong, day("2026-02-01")))
	require.NotNil(t, strong.NextDueDate)
	assert.Equal(t, "2026-02-04", strong.NextDueDate.String())
}

func TestSetStageRecomputesDueDate(t *testing.T) {
	s := newTestStore()
	r, _ := s.Create(input("C1", "P1", models.ResponseCasual, day("2026-02-01")))

	now := day("2026-02-10")
	require.True(t, s.SetStage(r.ID, models.StageMeetingBooked, now))

	got, _ := s.Get(r.ID)
	assert.Equal(t, models.StageMeetingBooked, got.Stage)
	require.NotNil(t, got.NextDueDate)
	assert.Equal(t, "2026-02-24", got.NextDueDate.String())
	assert.Equal(t, now, got.UpdatedAt)

	require.True(t, s.SetStage(r.ID, models.StageOutcome, day("2026-03-01")))
	got, _ = s.Get(r.ID)
	assert.Nil(t, got.NextDueDate, "Outcome carries no due date")

	// Outcome is not locked.
	require.True(t, s.SetStage(r.ID, models.StageIntroSent, day("2026-03-02")))
	got, _ = s.Get(r.ID)
	assert.Equal(t, "2026-03-09", got.NextDueDate.String())
}

func TestSetStageUnknownIDIsNoop(t *testing.T) {
	s := newTestStore()
	assert.False(t, s.SetStage("C9__P9", models.StageIntroSent, day("2026-02-01")))
	assert.Equal(t, 0, s.Len())
}

func TestSetStageRejectsUnknownStage(t *testing.T) {
	s := newTestStore()
	r, _ := s.Create(input("C1", "P1", models.ResponseCasual, day("2026-02-01")))

	assert.False(t, s.SetStage(r.ID, models.Stage("Bogus"), day("2026-02-03")))
	assert.False(t, s.SetStage(r.ID, "", day("2026-02-03")))

	got, _ := s.Get(r.ID)
	assert.Equal(t, models.StageIdentified, got.Stage)
	assert.Equal(t, r.NextDueDate, got.NextDueDate)
	assert.Equal(t, r.UpdatedAt, got.UpdatedAt)
}

func TestRestoreRecomputesDueDatesUnderCurrentPolicy(t *testing.T) {
	s := newTestStore()
	casual, _ := s.Create(input("C1", "P1", models.ResponseCasual, day("2026-02-01")))
	booked, _ := s.Create(input("C1", "P2", models.ResponseStrong, day("2026-02-01")))
	require.True(t, s.SetStage(booked.ID, models.StageMeetingBooked, day("2026-02-03")))
	note := "lunch moved"
	require.True(t, s.UpdateFields(booked.ID, ReferralPatch{Note: &note}, day("2026-02-10")))

	custom, err := DefaultSLAPolicy().WithOverrides(map[string]int{"identified": 0, "meeting-booked": 5})
	require.NoError(t, err)
	restored := NewReferralStore(custom, time.UTC)
	restored.Restore(s.Snapshot())

	got, _ := restored.Get(casual.ID)
	assert.Equal(t, models.StageIdentified, got.Stage)
	assert.Nil(t, got.NextDueDate, "identified has no SLA under the new policy")

	got, _ = restored.Get(booked.ID)
	require.NotNil(t, got.NextDueDate)
	assert.Equal(t, "2026-02-08", got.NextDueDate.String(), "counts from the day the stage was entered")

	// Referrals persisted without a stage entry time count from their last update.
	legacy := models.Referral{ID: "C2__P1", Stage: models.StageIntroSent, UpdatedAt: day("2026-02-01")}
	restored.Restore([]models.Referral{legacy})
	got, _ = restored.Get(legacy.ID)
	assert.Equal(t, "2026-02-08", got.NextDueDate.String())
}

func TestStageAndDueDateStayConsistent(t *testing.T) {
	s := newTestStore()
	sla := DefaultSLAPolicy()
	r, _ := s.Create(input("C1", "P1", models.ResponseStrong, day("2026-02-01")))

	check := func() {
		got, _ := s.Get(r.ID)
		want := sla.DueDate(got.Stage, models.DateOf(got.UpdatedAt, time.UTC))
		assert.Equal(t, want, got.NextDueDate, "stage %s", got.Stage)
	}

	check()
	now := day("2026-02-02")
	for _, stage := range models.Stages {
		now = now.Add(36 * time.Hour)
		s.SetStage(r.ID, stage, now)
		check()

		note := "touched " + now.Format(time.RFC3339)
		s.UpdateFields(r.ID, ReferralPatch{Note: &note}, now)
		check()
	}
}

func TestUpdateFieldsMergesPatch(t *testing.T) {
	s := newTestStore()
	in := input("C1", "P1", models.ResponseStrong, day("2026-02-01"))
	in.Prospect.Phone = "+1 555 0100"
	r, _ := s.Create(in)

	email := "p1@example.com"
	now := day("2026-02-03")
	require.True(t, s.UpdateFields(r.ID, ReferralPatch{Email: &email}, now))

	got, _ := s.Get(r.ID)
	assert.Equal(t, "p1@example.com", got.Contact.Email)
	assert.Equal(t, "+1 555 0100", got.Contact.Phone, "unpatched fields are kept")
	assert.Equal(t, models.StageClientAgreed, got.Stage)
	assert.Equal(t, r.NextDueDate, got.NextDueDate)
	assert.Equal(t, now, got.UpdatedAt)

	assert.False(t, s.UpdateFields("nope", ReferralPatch{Email: &email}, now))
}

func TestRemoveAndRemoveByClient(t *testing.T) {
	s := newTestStore()
	s.Create(input("C1", "P1", models.ResponseStrong, day("2026-02-01")))
	s.Create(input("C1", "P2", models.ResponseCasual, day("2026-02-01")))
	s.Create(input("C2", "P1", models.ResponseCasual, day("2026-02-01")))

	assert.True(t, s.Remove("C1__P2"))
	assert.False(t, s.Remove("C1__P2"))
	assert.Equal(t, 2, s.Len())

	assert.Equal(t, 1, s.RemoveByClient("C1"))
	remaining := s.Snapshot()
	require.Len(t, remaining, 1)
	assert.Equal(t, "C2__P1", remaining[0].ID)
}

func TestIsStale(t *testing.T) {
	due := models.MustParseDate("2026-02-08")
	r := models.Referral{Stage: models.StageIdentified, NextDueDate: &due}

	assert.False(t, IsStale(r, models.MustParseDate("2026-02-08")), "due today is not stale")
	assert.True(t, IsStale(r, models.MustParseDate("2026-02-09")))

	r.Stage = models.StageOutcome
	assert.False(t, IsStale(r, models.MustParseDate("2026-03-01")), "Outcome is never stale")

	r.Stage = models.StageIntroSent
	r.NextDueDate = nil
	assert.False(t, IsStale(r, models.MustParseDate("2026-03-01")))
}

func TestListFilters(t *testing.T) {
	s := newTestStore()
	s.Create(input("C1", "P1", models.ResponseStrong, day("2026-02-01")))
	s.Create(input("C1", "P2", models.ResponseCasual, day("2026-02-01")))
	s.Create(input("C2", "P3", models.ResponseCasual, day("2026-02-06")))

	assert.Len(t, s.List(ReferralFilter{ClientID: "C1"}), 2)
	assert.Len(t, s.List(ReferralFilter{Stage: models.StageIdentified}), 2)

	stale := s.Stale(models.MustParseDate("2026-02-09"))
	ids := make([]string, 0, len(stale))
	for _, r := range stale {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"C1__P1", "C1__P2"}, ids)
}

func TestRestoreDropsDuplicates(t *testing.T) {
	s := newTestStore()
	s.Restore([]models.Referral{
		{ID: "C1__P1", Stage: models.StageIntroSent},
		{ID: "C1__P1", Stage: models.StageOutcome},
		{ID: ""},
	})
	require.Equal(t, 1, s.Len())
	got, _ := s.Get("C1__P1")
	assert.Equal(t, models.StageIntroSent, got.Stage)
}

func TestValidateRejectsSeparatorInIDs(t *testing.T) {
	assert.ErrorIs(t, input("", "P1", models.ResponseStrong, day("2026-02-01")).Validate(), ErrInvalidInput)
	assert.ErrorIs(t, input("C__1", "P1", models.ResponseStrong, day("2026-02-01")).Validate(), ErrInvalidInput)
	assert.NoError(t, input("C1", "P1", models.ResponseStrong, day("2026-02-01")).Validate())
}

func TestSLAPolicy(t *testing.T) {
	sla := DefaultSLAPolicy()
	today := models.MustParseDate("2026-02-01")

	require.NotNil(t, sla.DueDate(models.StageIdentified, today))
	assert.Equal(t, "2026-02-08", sla.DueDate(models.StageIdentified, today).String())
	assert.Nil(t, sla.DueDate(models.StageOutcome, today))

	custom, err := sla.WithOverrides(map[string]int{"meeting-booked": 10, "intro_sent": -1})
	require.NoError(t, err)
	assert.Equal(t, "2026-02-11", custom.DueDate(models.StageMeetingBooked, today).String())
	assert.Nil(t, custom.DueDate(models.StageIntroSent, today))
	assert.Equal(t, 14, sla.Days(models.StageMeetingBooked), "overrides must not mutate the base policy")

	_, err = sla.WithOverrides(map[string]int{"closed": 3})
	assert.Error(t, err)
}
