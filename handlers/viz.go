// ABOUTME: Visualization MCP handlers
// ABOUTME: Provides pipeline graph and dashboard tools for agents
package handlers

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/warmpath/pipeline"
	"github.com/harperreed/warmpath/viz"
	"github.com/harperreed/warmpath/workspace"
)

type VizHandlers struct {
	ws *workspace.Workspace
}

func NewVizHandlers(ws *workspace.Workspace) *VizHandlers {
	return &VizHandlers{ws: ws}
}

type GenerateGraphInput struct {
	ClientID string `json:"client_id,omitempty" jsonschema:"Only graph this client's referrals"`
}

type GenerateGraphOutput struct {
	DOTSource string `json:"dot_source"`
	NodeCount int    `json:"node_count"`
	EdgeCount int    `json:"edge_count"`
}

func (h *VizHandlers) GenerateGraph(_ context.Context, request *mcp.CallToolRequest, input GenerateGraphInput) (*mcp.CallToolResult, GenerateGraphOutput, error) {
	refs := h.ws.Referrals(pipeline.ReferralFilter{ClientID: input.ClientID})
	dot, err := viz.PipelineGraph(refs, h.ws.Today())
	if err != nil {
		return nil, GenerateGraphOutput{}, fmt.Errorf("failed to generate graph: %w", err)
	}

	clients := make(map[string]bool)
	for _, r := range refs {
		clients[r.ClientID] = true
	}

	return nil, GenerateGraphOutput{
		DOTSource: dot,
		NodeCount: len(refs) + len(clients),
		EdgeCount: len(refs),
	}, nil
}

type DashboardInput struct{}

type DashboardOutput struct {
	Text           string         `json:"text"`
	ByStage        map[string]int `json:"by_stage"`
	TotalReferrals int            `json:"total_referrals"`
	OpenTasks      int            `json:"open_tasks"`
	StaleCount     int            `json:"stale_count"`
	OverdueCount   int            `json:"overdue_count"`
}

func (h *VizHandlers) Dashboard(_ context.Context, request *mcp.CallToolRequest, input DashboardInput) (*mcp.CallToolResult, DashboardOutput, error) {
	stats := viz.GenerateDashboardStats(h.ws)
	byStage := make(map[string]int, len(stats.ByStage))
	for s, n := range stats.ByStage {
		byStage[string(s)] = n
	}
	return nil, DashboardOutput{
		Text:           viz.RenderDashboard(stats),
		ByStage:        byStage,
		TotalReferrals: stats.TotalReferrals,
		OpenTasks:      stats.OpenTasks,
		StaleCount:     len(stats.StaleReferrals),
		OverdueCount:   len(stats.OverdueTasks),
	}, nil
}
