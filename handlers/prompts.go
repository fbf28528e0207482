// ABOUTME: MCP prompt handlers for recurring referral workflows
// ABOUTME: Builds prompts for drafting intros and for the weekly pipeline review
package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/warmpath/workspace"
)

type PromptHandlers struct {
	ws *workspace.Workspace
}

func NewPromptHandlers(ws *workspace.Workspace) *PromptHandlers {
	return &PromptHandlers{ws: ws}
}

// GetPrompt generates the prompt message for the named workflow
func (h *PromptHandlers) GetPrompt(ctx context.Context, request *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	switch request.Params.Name {
	case "draft-intro":
		return h.draftIntroPrompt(request.Params.Arguments)
	case "weekly-review":
		return h.weeklyReviewPrompt()
	default:
		return nil, fmt.Errorf("unknown prompt: %s", request.Params.Name)
	}
}

func userPrompt(description, text string) *mcp.GetPromptResult {
	return &mcp.GetPromptResult{
		Description: description,
		Messages: []*mcp.PromptMessage{
			{
				Role:    "user",
				Content: &mcp.TextContent{Text: text},
			},
		},
	}
}

func (h *PromptHandlers) draftIntroPrompt(args map[string]string) (*mcp.GetPromptResult, error) {
	referralID := args["referral_id"]
	if referralID == "" {
		return nil, fmt.Errorf("referral_id is required")
	}
	msg, err := h.ws.RenderMessage(referralID, args["template_id"])
	if err != nil {
		return nil, err
	}
	r, _ := h.ws.Referral(referralID)

	var b strings.Builder
	b.WriteString("Polish this warm introduction message. Keep it short and personal.\n\n")
	fmt.Fprintf(&b, "Client: %s\n", r.ClientName)
	fmt.Fprintf(&b, "Prospect: %s", r.Prospect.Name)
	if r.Prospect.Title != "" {
		fmt.Fprintf(&b, ", %s", r.Prospect.Title)
	}
	if r.Prospect.Company != "" {
		fmt.Fprintf(&b, " at %s", r.Prospect.Company)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "Stage: %s\n", r.Stage)
	if r.Note != "" {
		fmt.Fprintf(&b, "Why they fit: %s\n", r.Note)
	}
	fmt.Fprintf(&b, "\nDraft (%s):\n%s\n", msg.Template.Name, msg.Body)

	return userPrompt(fmt.Sprintf("Intro draft for %s", r.Prospect.Name), b.String()), nil
}

func (h *PromptHandlers) weeklyReviewPrompt() (*mcp.GetPromptResult, error) {
	today := h.ws.Today()
	stale := h.ws.StaleReferrals()
	overdue := h.ws.OverdueTasks()

	var b strings.Builder
	fmt.Fprintf(&b, "It is %s. Review my referral pipeline and suggest the next action for each item.\n", today)

	fmt.Fprintf(&b, "\nStale referrals (%d):\n", len(stale))
	for _, r := range stale {
		fmt.Fprintf(&b, "- %s → %s [%s], was due %s\n", r.ClientName, r.Prospect.Name, r.Stage, r.NextDueDate)
	}

	fmt.Fprintf(&b, "\nOverdue tasks (%d):\n", len(overdue))
	for _, t := range overdue {
		label := "(referral removed)"
		if t.Referral != nil {
			label = t.Referral.Prospect.Name
		}
		fmt.Fprintf(&b, "- %s for %s, due %s\n", t.Title, label, t.DueDate)
	}

	if len(stale) == 0 && len(overdue) == 0 {
		b.WriteString("\nNothing is overdue. Suggest which clients are due for a new review session.\n")
	}

	return userPrompt("Weekly pipeline review", b.String()), nil
}

// RegisterPrompts adds the workflow prompts to server.
func RegisterPrompts(server *mcp.Server, ws *workspace.Workspace) {
	h := NewPromptHandlers(ws)
	server.AddPrompt(&mcp.Prompt{
		Name:        "draft-intro",
		Description: "Draft a warm introduction message for a referral",
		Arguments: []*mcp.PromptArgument{
			{Name: "referral_id", Description: "Referral to draft for", Required: true},
			{Name: "template_id", Description: "Template to start from"},
		},
	}, h.GetPrompt)
	server.AddPrompt(&mcp.Prompt{
		Name:        "weekly-review",
		Description: "Walk through stale referrals and overdue tasks",
	}, h.GetPrompt)
}
