// ABOUTME: MCP resource handlers exposing pipeline state
// ABOUTME: Serves read-only JSON views of referrals, tasks, templates, and stage counts
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/warmpath/models"
	"github.com/harperreed/warmpath/pipeline"
	"github.com/harperreed/warmpath/workspace"
)

const resourceScheme = "warmpath://"

type ResourceHandlers struct {
	ws *workspace.Workspace
}

func NewResourceHandlers(ws *workspace.Workspace) *ResourceHandlers {
	return &ResourceHandlers{ws: ws}
}

// ReadResource handles resource read requests
func (h *ResourceHandlers) ReadResource(ctx context.Context, request *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	uri := request.Params.URI
	if !strings.HasPrefix(uri, resourceScheme) {
		return nil, fmt.Errorf("invalid URI scheme: expected %s", resourceScheme)
	}

	parts := strings.Split(strings.TrimPrefix(uri, resourceScheme), "/")
	switch parts[0] {
	case "pipeline":
		return h.jsonResult(uri, h.stageCounts())

	case "referrals":
		if len(parts) == 1 {
			return h.jsonResult(uri, h.allReferrals())
		}
		return h.readReferral(uri, parts[1])

	case "tasks":
		return h.jsonResult(uri, h.openTasks())

	case "templates":
		return h.jsonResult(uri, h.ws.Templates())

	default:
		return nil, fmt.Errorf("unknown resource: %s", parts[0])
	}
}

func (h *ResourceHandlers) jsonResult(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", uri, err)
	}
	return &mcp.ReadResourceResult{Contents: []*mcp.ResourceContents{
		{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}}, nil
}

type stageCount struct {
	Stage string `json:"stage"`
	Count int    `json:"count"`
	Stale int    `json:"stale"`
}

func (h *ResourceHandlers) stageCounts() []stageCount {
	today := h.ws.Today()
	counts := make([]stageCount, len(models.Stages))
	for i, s := range models.Stages {
		counts[i].Stage = string(s)
	}
	for _, r := range h.ws.Referrals(pipeline.ReferralFilter{}) {
		i := r.Stage.Index()
		if i < 0 {
			continue
		}
		counts[i].Count++
		if pipeline.IsStale(r, today) {
			counts[i].Stale++
		}
	}
	return counts
}

func (h *ResourceHandlers) allReferrals() []ReferralOutput {
	today := h.ws.Today()
	refs := h.ws.Referrals(pipeline.ReferralFilter{})
	out := make([]ReferralOutput, 0, len(refs))
	for _, r := range refs {
		out = append(out, referralToOutput(r, today))
	}
	return out
}

func (h *ResourceHandlers) readReferral(uri, id string) (*mcp.ReadResourceResult, error) {
	r, ok := h.ws.Referral(id)
	if !ok {
		return nil, fmt.Errorf("referral not found: %s", id)
	}

	today := h.ws.Today()
	views := h.ws.OpenTasks(id)
	tasks := make([]TaskOutput, 0, len(views))
	for _, v := range views {
		tasks = append(tasks, viewToOutput(v, today))
	}

	return h.jsonResult(uri, struct {
		ReferralOutput
		OpenTasks []TaskOutput `json:"open_tasks"`
	}{
		ReferralOutput: referralToOutput(r, today),
		OpenTasks:      tasks,
	})
}

func (h *ResourceHandlers) openTasks() []TaskOutput {
	today := h.ws.Today()
	views := h.ws.OpenTasks("")
	out := make([]TaskOutput, 0, len(views))
	for _, v := range views {
		out = append(out, viewToOutput(v, today))
	}
	return out
}

// RegisterResources adds the static resources and the per-referral template.
func RegisterResources(server *mcp.Server, ws *workspace.Workspace) {
	h := NewResourceHandlers(ws)
	for _, r := range []*mcp.Resource{
		{URI: resourceScheme + "pipeline", Name: "pipeline", Description: "Referral counts per stage", MIMEType: "application/json"},
		{URI: resourceScheme + "referrals", Name: "referrals", Description: "All referrals", MIMEType: "application/json"},
		{URI: resourceScheme + "tasks", Name: "tasks", Description: "Open tasks ordered by due date", MIMEType: "application/json"},
		{URI: resourceScheme + "templates", Name: "templates", Description: "Message templates", MIMEType: "application/json"},
	} {
		server.AddResource(r, h.ReadResource)
	}
	server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: resourceScheme + "referrals/{id}",
		Name:        "referral",
		Description: "One referral with its open tasks",
		MIMEType:    "application/json",
	}, h.ReadResource)
}
