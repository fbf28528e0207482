// ABOUTME: SLA policy mapping pipeline stages to days until the next action
// ABOUTME: Computes due dates as calendar-day offsets from a reference day
package pipeline

import (
	"fmt"

	"github.com/harperreed/warmpath/models"
)

// SLAPolicy maps a stage to the number of days until its next action is due.
// A missing or non-positive entry means the stage carries no due date.
type SLAPolicy map[models.Stage]int

// DefaultSLAPolicy returns the stock stage SLAs.
func DefaultSLAPolicy() SLAPolicy {
	return SLAPolicy{
		models.StageIdentified:    7,
		models.StageClientAgreed:  3,
		models.StageIntroSent:     7,
		models.StageMeetingBooked: 14,
		models.StageOutcome:       0,
	}
}

// WithOverrides returns a copy of p with the given per-stage day counts applied.
// Stage names are parsed with models.ParseStage.
func (p SLAPolicy) WithOverrides(overrides map[string]int) (SLAPolicy, error) {
	out := make(SLAPolicy, len(p))
	for stage, days := range p {
		out[stage] = days
	}
	for name, days := range overrides {
		stage, ok := models.ParseStage(name)
		if !ok {
			return nil, fmt.Errorf("unknown stage in SLA overrides: %q", name)
		}
		out[stage] = days
	}
	return out, nil
}

// Days returns the SLA for stage.
func (p SLAPolicy) Days(stage models.Stage) int {
	return p[stage]
}

// DueDate returns the date the next action for stage is due when the stage
// is entered on day, or nil when the stage has no SLA.
func (p SLAPolicy) DueDate(stage models.Stage, day models.Date) *models.Date {
	days := p.Days(stage)
	if days <= 0 {
		return nil
	}
	due := day.AddDays(days)
	return &due
}
