// ABOUTME: Tests for warmpath MCP tool, resource, and prompt handlers
// ABOUTME: Drives handler methods directly against an in-memory workspace
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/warmpath/logging"
	"github.com/harperreed/warmpath/models"
	"github.com/harperreed/warmpath/pipeline"
	"github.com/harperreed/warmpath/storage"
	"github.com/harperreed/warmpath/workspace"
)

type testEnv struct {
	ws      *workspace.Workspace
	backend *storage.MemoryBackend
	clock   *pipeline.FixedClock
	client  models.Client
}

func setup(t *testing.T) *testEnv {
	t.Helper()
	backend := storage.NewMemoryBackend()
	clock := pipeline.NewFixedClock(time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC))
	ws := workspace.Open(storage.New(backend, logging.Discard()), pipeline.Options{Clock: clock}, logging.Discard())

	c, err := ws.AddClient(workspace.ClientInput{Name: "Alice Client"})
	require.NoError(t, err)
	_, err = ws.ImportProspects(c.ID, strings.NewReader(`[
		{"id": "p1", "name": "Bob Builder", "title": "Owner", "company": "Builder Co"},
		{"id": "p2", "name": "Carol Chen", "email": "carol@example.com"},
		{"id": "p3", "name": "Dan Doe"}
	]`))
	require.NoError(t, err)

	return &testEnv{ws: ws, backend: backend, clock: clock, client: c}
}

func (e *testEnv) review(t *testing.T) ReviewProspectsOutput {
	t.Helper()
	h := NewReferralHandlers(e.ws)
	_, out, err := h.ReviewProspects(context.Background(), nil, ReviewProspectsInput{
		ClientID: e.client.ID,
		Entries: []ReviewEntryInput{
			{ProspectID: "p1", Response: "strong", Note: "board member"},
			{ProspectID: "p2", Response: "strong"},
			{ProspectID: "p3", Response: "casual"},
		},
	})
	require.NoError(t, err)
	return out
}

func TestReviewProspects(t *testing.T) {
	e := setup(t)
	out := e.review(t)

	assert.Len(t, out.Created, 3)
	assert.Equal(t, 2, out.AgreedCount)
	assert.Equal(t, 1, out.TasksCreated, "only the strong prospect without coordinates gets a task")
	assert.Empty(t, out.Warning)

	again := e.review(t)
	assert.Empty(t, again.Created)
	assert.Equal(t, 3, again.Duplicates)
}

func TestReviewProspectsInlineAndErrors(t *testing.T) {
	e := setup(t)
	h := NewReferralHandlers(e.ws)
	ctx := context.Background()

	_, out, err := h.ReviewProspects(ctx, nil, ReviewProspectsInput{
		ClientID: e.client.ID,
		Entries: []ReviewEntryInput{
			{Name: "Erin Inline", Phone: "+1 555 0101", Response: "strong"},
			{ProspectID: "missing", Response: "strong"},
			{ProspectID: "p3", Response: "skip"},
		},
	})
	require.NoError(t, err)
	assert.Len(t, out.Created, 1)
	assert.Equal(t, 0, out.TasksCreated)
	assert.Equal(t, []string{"missing"}, out.Unresolved)
	assert.Equal(t, 1, out.Skipped)

	_, repeat, err := h.ReviewProspects(ctx, nil, ReviewProspectsInput{
		ClientID: e.client.ID,
		Entries:  []ReviewEntryInput{{Name: "erin  inline", Response: "strong"}},
	})
	require.NoError(t, err)
	assert.Empty(t, repeat.Created, "same inline prospect maps to the existing referral")
	assert.Equal(t, 1, repeat.Duplicates)

	_, _, err = h.ReviewProspects(ctx, nil, ReviewProspectsInput{})
	assert.Error(t, err)

	_, _, err = h.ReviewProspects(ctx, nil, ReviewProspectsInput{
		ClientID: e.client.ID,
		Entries:  []ReviewEntryInput{{Response: "strong"}},
	})
	assert.Error(t, err)

	_, _, err = h.ReviewProspects(ctx, nil, ReviewProspectsInput{ClientID: "nobody"})
	assert.True(t, errors.Is(err, workspace.ErrUnknownClient))
}

func TestListReferrals(t *testing.T) {
	e := setup(t)
	e.review(t)
	h := NewReferralHandlers(e.ws)
	ctx := context.Background()

	_, all, err := h.ListReferrals(ctx, nil, ListReferralsInput{})
	require.NoError(t, err)
	assert.Equal(t, 3, all.Count)

	_, agreed, err := h.ListReferrals(ctx, nil, ListReferralsInput{Stage: "client-agreed"})
	require.NoError(t, err)
	assert.Equal(t, 2, agreed.Count)
	for _, r := range agreed.Referrals {
		assert.Equal(t, "Client Agreed", r.Stage)
		assert.Equal(t, "2026-02-04", r.NextDueDate)
	}

	_, _, err = h.ListReferrals(ctx, nil, ListReferralsInput{Stage: "closed"})
	assert.Error(t, err)

	e.clock.Set(time.Date(2026, 2, 5, 10, 0, 0, 0, time.UTC))
	_, stale, err := h.ListReferrals(ctx, nil, ListReferralsInput{StaleOnly: true})
	require.NoError(t, err)
	assert.Equal(t, 2, stale.Count)
	for _, r := range stale.Referrals {
		assert.True(t, r.Stale)
	}
}

func TestSetReferralStage(t *testing.T) {
	e := setup(t)
	out := e.review(t)
	h := NewReferralHandlers(e.ws)
	ctx := context.Background()
	id := out.Created[0]

	e.clock.Set(time.Date(2026, 2, 3, 10, 0, 0, 0, time.UTC))
	_, changed, err := h.SetReferralStage(ctx, nil, SetReferralStageInput{ID: id, Stage: "Intro Sent"})
	require.NoError(t, err)
	assert.Equal(t, "Intro Sent", changed.Referral.Stage)
	assert.Equal(t, "2026-02-10", changed.Referral.NextDueDate)

	_, changed, err = h.SetReferralStage(ctx, nil, SetReferralStageInput{ID: id, Stage: "outcome"})
	require.NoError(t, err)
	assert.Empty(t, changed.Referral.NextDueDate)

	_, _, err = h.SetReferralStage(ctx, nil, SetReferralStageInput{ID: id, Stage: "won"})
	assert.Error(t, err)
	_, _, err = h.SetReferralStage(ctx, nil, SetReferralStageInput{ID: "nope", Stage: "Outcome"})
	assert.Error(t, err)
}

func TestUpdateAndRemoveReferral(t *testing.T) {
	e := setup(t)
	out := e.review(t)
	h := NewReferralHandlers(e.ws)
	ctx := context.Background()
	id := out.Created[0]

	email := "bob@builder.co"
	_, changed, err := h.UpdateReferral(ctx, nil, UpdateReferralInput{ID: id, Email: &email})
	require.NoError(t, err)
	assert.Equal(t, email, changed.Referral.Email)
	assert.Equal(t, "board member", changed.Referral.Note)

	_, removed, err := h.RemoveReferral(ctx, nil, RemoveReferralInput{ID: id})
	require.NoError(t, err)
	assert.True(t, removed.Removed)

	_, _, err = h.RemoveReferral(ctx, nil, RemoveReferralInput{ID: id})
	assert.Error(t, err)
}

func TestPersistenceFailureBecomesWarning(t *testing.T) {
	e := setup(t)
	out := e.review(t)
	e.backend.FailWrites = errors.New("disk full")

	h := NewReferralHandlers(e.ws)
	_, changed, err := h.SetReferralStage(context.Background(), nil, SetReferralStageInput{ID: out.Created[0], Stage: "Intro Sent"})
	require.NoError(t, err)
	assert.Equal(t, "Intro Sent", changed.Referral.Stage)
	assert.Contains(t, changed.Warning, "not saved")
}

func TestTaskTools(t *testing.T) {
	e := setup(t)
	out := e.review(t)
	h := NewTaskHandlers(e.ws)
	ctx := context.Background()

	_, list, err := h.ListTasks(ctx, nil, ListTasksInput{})
	require.NoError(t, err)
	require.Equal(t, 1, list.Count)
	auto := list.Tasks[0]
	assert.Equal(t, models.TaskTypeAskCoordinates, auto.Type)
	assert.Equal(t, "Ask Alice Client for best email/phone for Bob Builder", auto.Title)
	assert.Equal(t, "2026-02-03", auto.DueDate)
	assert.Equal(t, "Bob Builder", auto.Prospect)

	_, created, err := h.CreateTask(ctx, nil, CreateTaskInput{ReferralID: out.Created[1], Title: "Send intro"})
	require.NoError(t, err)
	assert.Equal(t, models.TaskTypeFollowup, created.Task.Type)
	assert.Equal(t, "2026-02-04", created.Task.DueDate)

	_, _, err = h.CreateTask(ctx, nil, CreateTaskInput{ReferralID: "nope", Title: "x"})
	assert.Error(t, err)
	_, _, err = h.CreateTask(ctx, nil, CreateTaskInput{ReferralID: out.Created[1]})
	assert.Error(t, err)

	e.clock.Set(time.Date(2026, 2, 4, 10, 0, 0, 0, time.UTC))
	_, overdue, err := h.ListTasks(ctx, nil, ListTasksInput{OverdueOnly: true})
	require.NoError(t, err)
	require.Equal(t, 1, overdue.Count)
	assert.True(t, overdue.Tasks[0].Overdue)

	_, done, err := h.CompleteTask(ctx, nil, CompleteTaskInput{ID: auto.ID})
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusDone, done.Task.Status)

	_, _, err = h.CompleteTask(ctx, nil, CompleteTaskInput{ID: auto.ID})
	assert.Error(t, err, "completion is one-way")
	_, _, err = h.CompleteTask(ctx, nil, CompleteTaskInput{ID: "nope"})
	assert.Error(t, err)
}

func TestListTasksShowsOrphans(t *testing.T) {
	e := setup(t)
	out := e.review(t)
	_, err := e.ws.RemoveReferral(out.Created[0])
	require.NoError(t, err)

	_, list, err := NewTaskHandlers(e.ws).ListTasks(context.Background(), nil, ListTasksInput{})
	require.NoError(t, err)
	require.Equal(t, 1, list.Count)
	assert.True(t, list.Tasks[0].ReferralMissing)
	assert.Empty(t, list.Tasks[0].Prospect)
}

func TestRenderMessage(t *testing.T) {
	e := setup(t)
	out := e.review(t)
	h := NewMessageHandlers(e.ws)
	ctx := context.Background()

	_, msg, err := h.RenderMessage(ctx, nil, RenderMessageInput{ReferralID: out.Created[0], TemplateID: "tpl-ask-intro"})
	require.NoError(t, err)
	assert.Equal(t, "tpl-ask-intro", msg.TemplateID)
	assert.Contains(t, msg.Body, "Bob Builder")
	assert.NotContains(t, msg.Body, "{")

	_, _, err = h.RenderMessage(ctx, nil, RenderMessageInput{ReferralID: out.Created[0], TemplateID: "nope"})
	assert.True(t, errors.Is(err, workspace.ErrUnknownTemplate))

	_, _, err = h.RenderMessage(ctx, nil, RenderMessageInput{ReferralID: "nope"})
	assert.True(t, errors.Is(err, workspace.ErrUnknownReferral))

	_, tpls, err := h.ListTemplates(ctx, nil, ListTemplatesInput{})
	require.NoError(t, err)
	assert.Len(t, tpls.Templates, 3)
}

func TestReadResource(t *testing.T) {
	e := setup(t)
	out := e.review(t)
	h := NewResourceHandlers(e.ws)
	ctx := context.Background()

	read := func(uri string) string {
		t.Helper()
		res, err := h.ReadResource(ctx, &mcp.ReadResourceRequest{Params: &mcp.ReadResourceParams{URI: uri}})
		require.NoError(t, err)
		require.Len(t, res.Contents, 1)
		return res.Contents[0].Text
	}

	var counts []stageCount
	require.NoError(t, json.Unmarshal([]byte(read("warmpath://pipeline")), &counts))
	require.Len(t, counts, len(models.Stages))
	assert.Equal(t, 1, counts[0].Count)
	assert.Equal(t, 2, counts[1].Count)

	assert.Contains(t, read("warmpath://referrals/"+out.Created[0]), "open_tasks")
	assert.Contains(t, read("warmpath://tasks"), "ask_coordinates")

	_, err := h.ReadResource(ctx, &mcp.ReadResourceRequest{Params: &mcp.ReadResourceParams{URI: "crm://contacts"}})
	assert.Error(t, err)
	_, err = h.ReadResource(ctx, &mcp.ReadResourceRequest{Params: &mcp.ReadResourceParams{URI: "warmpath://referrals/nope"}})
	assert.Error(t, err)
}

func TestPrompts(t *testing.T) {
	e := setup(t)
	out := e.review(t)
	h := NewPromptHandlers(e.ws)
	ctx := context.Background()

	res, err := h.GetPrompt(ctx, &mcp.GetPromptRequest{Params: &mcp.GetPromptParams{
		Name:      "draft-intro",
		Arguments: map[string]string{"referral_id": out.Created[0]},
	}})
	require.NoError(t, err)
	require.Len(t, res.Messages, 1)
	text := res.Messages[0].Content.(*mcp.TextContent).Text
	assert.Contains(t, text, "Bob Builder")
	assert.Contains(t, text, "board member")

	e.clock.Set(time.Date(2026, 2, 10, 10, 0, 0, 0, time.UTC))
	res, err = h.GetPrompt(ctx, &mcp.GetPromptRequest{Params: &mcp.GetPromptParams{Name: "weekly-review"}})
	require.NoError(t, err)
	text = res.Messages[0].Content.(*mcp.TextContent).Text
	assert.Contains(t, text, "Stale referrals (3)")
	assert.Contains(t, text, "Overdue tasks (1)")

	_, err = h.GetPrompt(ctx, &mcp.GetPromptRequest{Params: &mcp.GetPromptParams{Name: "nope"}})
	assert.Error(t, err)
}

func TestVizTools(t *testing.T) {
	e := setup(t)
	e.review(t)
	h := NewVizHandlers(e.ws)
	ctx := context.Background()

	_, graph, err := h.GenerateGraph(ctx, nil, GenerateGraphInput{})
	require.NoError(t, err)
	assert.Equal(t, 4, graph.NodeCount)
	assert.Equal(t, 3, graph.EdgeCount)

	_, dash, err := h.Dashboard(ctx, nil, DashboardInput{})
	require.NoError(t, err)
	assert.Equal(t, 3, dash.TotalReferrals)
	assert.Equal(t, 2, dash.ByStage["Client Agreed"])
	assert.Contains(t, dash.Text, "WARMPATH DASHBOARD")
}

func TestNewServerRegistersEverything(t *testing.T) {
	e := setup(t)
	assert.NotNil(t, NewServer(e.ws, "test"))
}
