// ABOUTME: Message rendering MCP tool handler
// ABOUTME: Implements render_message over the workspace template library
package handlers

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/warmpath/workspace"
)

type MessageHandlers struct {
	ws *workspace.Workspace
}

func NewMessageHandlers(ws *workspace.Workspace) *MessageHandlers {
	return &MessageHandlers{ws: ws}
}

type RenderMessageInput struct {
	ReferralID string `json:"referral_id" jsonschema:"Referral to draft a message for (required)"`
	TemplateID string `json:"template_id,omitempty" jsonschema:"Template ID (defaults to the first template)"`
}

type RenderMessageOutput struct {
	ReferralID   string   `json:"referral_id"`
	TemplateID   string   `json:"template_id"`
	TemplateName string   `json:"template_name"`
	Body         string   `json:"body"`
	Unknown      []string `json:"unknown_placeholders,omitempty"`
}

func (h *MessageHandlers) RenderMessage(_ context.Context, request *mcp.CallToolRequest, input RenderMessageInput) (*mcp.CallToolResult, RenderMessageOutput, error) {
	if input.ReferralID == "" {
		return nil, RenderMessageOutput{}, fmt.Errorf("referral_id is required")
	}
	msg, err := h.ws.RenderMessage(input.ReferralID, input.TemplateID)
	if err != nil {
		return nil, RenderMessageOutput{}, err
	}
	return nil, RenderMessageOutput{
		ReferralID:   msg.ReferralID,
		TemplateID:   msg.Template.ID,
		TemplateName: msg.Template.Name,
		Body:         msg.Body,
		Unknown:      msg.Unknown,
	}, nil
}

type ListTemplatesInput struct{}

type TemplateOutput struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

type ListTemplatesOutput struct {
	Templates []TemplateOutput `json:"templates"`
}

func (h *MessageHandlers) ListTemplates(_ context.Context, request *mcp.CallToolRequest, input ListTemplatesInput) (*mcp.CallToolResult, ListTemplatesOutput, error) {
	list := h.ws.Templates()
	out := ListTemplatesOutput{Templates: make([]TemplateOutput, 0, len(list))}
	for _, t := range list {
		out.Templates = append(out.Templates, TemplateOutput{ID: t.ID, Name: t.Name, Type: t.Type})
	}
	return nil, out, nil
}
