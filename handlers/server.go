// ABOUTME: Registers every warmpath MCP tool on a server
// ABOUTME: Keeps tool names and descriptions in one place
package handlers

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/warmpath/workspace"
)

// RegisterTools adds the referral, task, and message tools to server.
func RegisterTools(server *mcp.Server, ws *workspace.Workspace) {
	referrals := NewReferralHandlers(ws)
	tasks := NewTaskHandlers(ws)
	messages := NewMessageHandlers(ws)
	vizHandlers := NewVizHandlers(ws)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "review_prospects",
		Description: "Record a client's review of prospects. strong creates a Client Agreed referral, casual creates an Identified referral, skip creates nothing.",
	}, referrals.ReviewProspects)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_referrals",
		Description: "List referrals, optionally filtered by client, stage, or staleness",
	}, referrals.ListReferrals)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "set_referral_stage",
		Description: "Move a referral to a stage; its next due date is recomputed from today",
	}, referrals.SetReferralStage)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "update_referral",
		Description: "Update a referral's note or prospect contact details",
	}, referrals.UpdateReferral)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "remove_referral",
		Description: "Remove a referral from the pipeline. Its tasks are kept.",
	}, referrals.RemoveReferral)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "create_task",
		Description: "Create a follow-up task for a referral",
	}, tasks.CreateTask)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "complete_task",
		Description: "Mark an open task as done",
	}, tasks.CompleteTask)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_tasks",
		Description: "List open tasks ordered by due date",
	}, tasks.ListTasks)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_templates",
		Description: "List message templates",
	}, messages.ListTemplates)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "render_message",
		Description: "Draft a message for a referral from a template and the advisor profile",
	}, messages.RenderMessage)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "generate_graph",
		Description: "Render the referral pipeline as Graphviz DOT, optionally for one client",
	}, vizHandlers.GenerateGraph)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "dashboard",
		Description: "Pipeline dashboard with stage counts, stale referrals, and overdue tasks",
	}, vizHandlers.Dashboard)
}

// NewServer builds an MCP server with every tool, resource, and prompt registered.
func NewServer(ws *workspace.Workspace, version string) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "warmpath",
		Version: version,
	}, nil)
	RegisterTools(server, ws)
	RegisterResources(server, ws)
	RegisterPrompts(server, ws)
	return server
}
