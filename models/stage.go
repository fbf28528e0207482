// ABOUTME: Pipeline stage and client response enumerations
// ABOUTME: Provides ordering helpers and validation for stages and responses
package models

import "strings"

// Stage is a referral's position in the pipeline.
type Stage string

const (
	StageIdentified    Stage = "Identified"
	StageClientAgreed  Stage = "Client Agreed"
	StageIntroSent     Stage = "Intro Sent"
	StageMeetingBooked Stage = "Meeting Booked"
	StageOutcome       Stage = "Outcome"
)

// Stages lists every stage in pipeline order.
var Stages = []Stage{
	StageIdentified,
	StageClientAgreed,
	StageIntroSent,
	StageMeetingBooked,
	StageOutcome,
}

// IsValid reports whether s is one of the pipeline stages.
func (s Stage) IsValid() bool {
	return s.Index() >= 0
}

// Index returns the position of s in Stages, or -1.
func (s Stage) Index() int {
	for i, stage := range Stages {
		if stage == s {
			return i
		}
	}
	return -1
}

// Next returns the following stage. Outcome and unknown stages return themselves.
func (s Stage) Next() Stage {
	i := s.Index()
	if i < 0 || i == len(Stages)-1 {
		return s
	}
	return Stages[i+1]
}

// Prev returns the preceding stage. Identified and unknown stages return themselves.
func (s Stage) Prev() Stage {
	i := s.Index()
	if i <= 0 {
		return s
	}
	return Stages[i-1]
}

// ParseStage accepts a stage by display name or by a slug such as
// "client-agreed" or "meeting_booked". Matching ignores case.
func ParseStage(s string) (Stage, bool) {
	norm := strings.NewReplacer("-", " ", "_", " ").Replace(strings.TrimSpace(s))
	for _, stage := range Stages {
		if strings.EqualFold(string(stage), norm) {
			return stage, true
		}
	}
	return "", false
}

// Response is the client's read on a prospect during a review session.
type Response string

const (
	ResponseStrong Response = "strong"
	ResponseCasual Response = "casual"
	ResponseSkip   Response = "skip"
)

// Stage maps a response to the stage a new referral enters. Skip and
// unrecognized responses yield ok=false.
func (r Response) Stage() (Stage, bool) {
	switch r {
	case ResponseStrong:
		return StageClientAgreed, true
	case ResponseCasual:
		return StageIdentified, true
	}
	return "", false
}
