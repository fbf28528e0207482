// ABOUTME: Referral pipeline MCP tool handlers
// ABOUTME: Implements review_prospects, list_referrals, set_referral_stage, update_referral, remove_referral
package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/warmpath/models"
	"github.com/harperreed/warmpath/pipeline"
	"github.com/harperreed/warmpath/workspace"
)

type ReferralHandlers struct {
	ws *workspace.Workspace
}

func NewReferralHandlers(ws *workspace.Workspace) *ReferralHandlers {
	return &ReferralHandlers{ws: ws}
}

type ReferralOutput struct {
	ID          string `json:"id"`
	ClientID    string `json:"client_id"`
	ClientName  string `json:"client_name"`
	Prospect    string `json:"prospect"`
	Title       string `json:"title,omitempty"`
	Company     string `json:"company,omitempty"`
	Stage       string `json:"stage"`
	Response    string `json:"response"`
	Note        string `json:"note,omitempty"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
	ProfileURL  string `json:"profile_url,omitempty"`
	NextDueDate string `json:"next_due_date,omitempty"`
	Stale       bool   `json:"stale"`
	UpdatedAt   string `json:"updated_at"`
}

func referralToOutput(r models.Referral, today models.Date) ReferralOutput {
	out := ReferralOutput{
		ID:         r.ID,
		ClientID:   r.ClientID,
		ClientName: r.ClientName,
		Prospect:   r.Prospect.Name,
		Title:      r.Prospect.Title,
		Company:    r.Prospect.Company,
		Stage:      string(r.Stage),
		Response:   string(r.Response),
		Note:       r.Note,
		Email:      r.Contact.Email,
		Phone:      r.Contact.Phone,
		ProfileURL: r.Contact.ProfileURL,
		Stale:      pipeline.IsStale(r, today),
		UpdatedAt:  r.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if r.NextDueDate != nil {
		out.NextDueDate = r.NextDueDate.String()
	}
	return out
}

// warning turns a persistence failure into a message for the caller and
// passes any other error through.
func warning(err error) (string, error) {
	if err == nil {
		return "", nil
	}
	if errors.Is(err, workspace.ErrPersistence) {
		return "change applied but not saved: " + err.Error(), nil
	}
	return "", err
}

type ReviewEntryInput struct {
	ProspectID string `json:"prospect_id,omitempty" jsonschema:"ID of a prospect in the client's imported network"`
	ID         string `json:"id,omitempty" jsonschema:"Stable ID for an inline prospect; reviews with the same ID or name map to the same referral"`
	Name       string `json:"name,omitempty" jsonschema:"Prospect name when not using prospect_id"`
	Title      string `json:"title,omitempty" jsonschema:"Prospect job title"`
	Company    string `json:"company,omitempty" jsonschema:"Prospect company"`
	Email      string `json:"email,omitempty" jsonschema:"Prospect email if known"`
	Phone      string `json:"phone,omitempty" jsonschema:"Prospect phone if known"`
	ProfileURL string `json:"profile_url,omitempty" jsonschema:"Prospect profile URL"`
	Response   string `json:"response" jsonschema:"Client's read on the prospect: strong, casual, or skip"`
	Note       string `json:"note,omitempty" jsonschema:"Why this prospect is a fit"`
}

type ReviewProspectsInput struct {
	ClientID string             `json:"client_id" jsonschema:"Client ID (required)"`
	Entries  []ReviewEntryInput `json:"entries" jsonschema:"One entry per reviewed prospect"`
}

type ReviewProspectsOutput struct {
	Created      []string `json:"created"`
	AgreedCount  int      `json:"agreed_count"`
	TasksCreated int      `json:"tasks_created"`
	Duplicates   int      `json:"duplicates"`
	Skipped      int      `json:"skipped"`
	Unresolved   []string `json:"unresolved,omitempty"`
	Warning      string   `json:"warning,omitempty"`
}

func (h *ReferralHandlers) ReviewProspects(_ context.Context, request *mcp.CallToolRequest, input ReviewProspectsInput) (*mcp.CallToolResult, ReviewProspectsOutput, error) {
	if input.ClientID == "" {
		return nil, ReviewProspectsOutput{}, fmt.Errorf("client_id is required")
	}

	inputs := make([]workspace.ReviewInput, 0, len(input.Entries))
	for i, e := range input.Entries {
		in := workspace.ReviewInput{
			ProspectID: e.ProspectID,
			Response:   models.Response(e.Response),
			Note:       e.Note,
		}
		if e.ProspectID == "" {
			if e.Name == "" && e.ID == "" {
				return nil, ReviewProspectsOutput{}, fmt.Errorf("entry %d: prospect_id or name is required", i+1)
			}
			in.Prospect = &models.Prospect{
				ID:         e.ID,
				Name:       e.Name,
				Title:      e.Title,
				Company:    e.Company,
				Email:      e.Email,
				Phone:      e.Phone,
				ProfileURL: e.ProfileURL,
			}
		}
		inputs = append(inputs, in)
	}

	outcome, err := h.ws.RunReview(input.ClientID, inputs)
	warn, err := warning(err)
	if err != nil {
		return nil, ReviewProspectsOutput{}, err
	}

	return nil, ReviewProspectsOutput{
		Created:      append([]string{}, outcome.Created...),
		AgreedCount:  outcome.AgreedCount,
		TasksCreated: outcome.TasksCreated,
		Duplicates:   outcome.Duplicates,
		Skipped:      outcome.Skipped,
		Unresolved:   outcome.Unresolved,
		Warning:      warn,
	}, nil
}

type ListReferralsInput struct {
	ClientID  string `json:"client_id,omitempty" jsonschema:"Only referrals for this client"`
	Stage     string `json:"stage,omitempty" jsonschema:"Only referrals in this stage"`
	StaleOnly bool   `json:"stale_only,omitempty" jsonschema:"Only referrals past their due date"`
}

type ListReferralsOutput struct {
	Referrals []ReferralOutput `json:"referrals"`
	Count     int              `json:"count"`
}

func (h *ReferralHandlers) ListReferrals(_ context.Context, request *mcp.CallToolRequest, input ListReferralsInput) (*mcp.CallToolResult, ListReferralsOutput, error) {
	filter := pipeline.ReferralFilter{ClientID: input.ClientID}
	if input.Stage != "" {
		stage, ok := models.ParseStage(input.Stage)
		if !ok {
			return nil, ListReferralsOutput{}, fmt.Errorf("invalid stage: %s (valid: %s)", input.Stage, stageNames())
		}
		filter.Stage = stage
	}
	today := h.ws.Today()
	if input.StaleOnly {
		filter.StaleAsOf = &today
	}

	refs := h.ws.Referrals(filter)
	out := ListReferralsOutput{Referrals: make([]ReferralOutput, 0, len(refs)), Count: len(refs)}
	for _, r := range refs {
		out.Referrals = append(out.Referrals, referralToOutput(r, today))
	}
	return nil, out, nil
}

type SetReferralStageInput struct {
	ID    string `json:"id" jsonschema:"Referral ID (required)"`
	Stage string `json:"stage" jsonschema:"Target stage: Identified, Client Agreed, Intro Sent, Meeting Booked, Outcome"`
}

type ReferralChangeOutput struct {
	Referral ReferralOutput `json:"referral"`
	Warning  string         `json:"warning,omitempty"`
}

func (h *ReferralHandlers) SetReferralStage(_ context.Context, request *mcp.CallToolRequest, input SetReferralStageInput) (*mcp.CallToolResult, ReferralChangeOutput, error) {
	if input.ID == "" {
		return nil, ReferralChangeOutput{}, fmt.Errorf("id is required")
	}
	stage, ok := models.ParseStage(input.Stage)
	if !ok {
		return nil, ReferralChangeOutput{}, fmt.Errorf("invalid stage: %s (valid: %s)", input.Stage, stageNames())
	}

	found, err := h.ws.SetStage(input.ID, stage)
	return h.changed(input.ID, found, err)
}

type UpdateReferralInput struct {
	ID         string  `json:"id" jsonschema:"Referral ID (required)"`
	Note       *string `json:"note,omitempty" jsonschema:"Replacement note"`
	Email      *string `json:"email,omitempty" jsonschema:"Prospect email"`
	Phone      *string `json:"phone,omitempty" jsonschema:"Prospect phone"`
	ProfileURL *string `json:"profile_url,omitempty" jsonschema:"Prospect profile URL"`
}

func (h *ReferralHandlers) UpdateReferral(_ context.Context, request *mcp.CallToolRequest, input UpdateReferralInput) (*mcp.CallToolResult, ReferralChangeOutput, error) {
	if input.ID == "" {
		return nil, ReferralChangeOutput{}, fmt.Errorf("id is required")
	}
	found, err := h.ws.UpdateReferral(input.ID, pipeline.ReferralPatch{
		Note:       input.Note,
		Email:      input.Email,
		Phone:      input.Phone,
		ProfileURL: input.ProfileURL,
	})
	return h.changed(input.ID, found, err)
}

func (h *ReferralHandlers) changed(id string, found bool, err error) (*mcp.CallToolResult, ReferralChangeOutput, error) {
	warn, err := warning(err)
	if err != nil {
		return nil, ReferralChangeOutput{}, err
	}
	if !found {
		return nil, ReferralChangeOutput{}, fmt.Errorf("referral not found: %s", id)
	}
	r, _ := h.ws.Referral(id)
	return nil, ReferralChangeOutput{Referral: referralToOutput(r, h.ws.Today()), Warning: warn}, nil
}

type RemoveReferralInput struct {
	ID string `json:"id" jsonschema:"Referral ID (required)"`
}

type RemoveReferralOutput struct {
	Removed bool   `json:"removed"`
	Warning string `json:"warning,omitempty"`
}

func (h *ReferralHandlers) RemoveReferral(_ context.Context, request *mcp.CallToolRequest, input RemoveReferralInput) (*mcp.CallToolResult, RemoveReferralOutput, error) {
	if input.ID == "" {
		return nil, RemoveReferralOutput{}, fmt.Errorf("id is required")
	}
	removed, err := h.ws.RemoveReferral(input.ID)
	warn, err := warning(err)
	if err != nil {
		return nil, RemoveReferralOutput{}, err
	}
	if !removed {
		return nil, RemoveReferralOutput{}, fmt.Errorf("referral not found: %s", input.ID)
	}
	return nil, RemoveReferralOutput{Removed: true, Warning: warn}, nil
}

func stageNames() string {
	names := ""
	for i, s := range models.Stages {
		if i > 0 {
			names += ", "
		}
		names += string(s)
	}
	return names
}
