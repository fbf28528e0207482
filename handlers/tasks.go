// ABOUTME: Task MCP tool handlers
// ABOUTME: Implements create_task, complete_task, and list_tasks
package handlers

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/warmpath/models"
	"github.com/harperreed/warmpath/pipeline"
	"github.com/harperreed/warmpath/workspace"
)

type TaskHandlers struct {
	ws *workspace.Workspace
}

func NewTaskHandlers(ws *workspace.Workspace) *TaskHandlers {
	return &TaskHandlers{ws: ws}
}

type TaskOutput struct {
	ID              string `json:"id"`
	ReferralID      string `json:"referral_id"`
	Type            string `json:"type"`
	Title           string `json:"title"`
	DueDate         string `json:"due_date"`
	Status          string `json:"status"`
	Overdue         bool   `json:"overdue"`
	Prospect        string `json:"prospect,omitempty"`
	ClientName      string `json:"client_name,omitempty"`
	ReferralMissing bool   `json:"referral_missing,omitempty"`
}

func taskToOutput(t models.Task, today models.Date) TaskOutput {
	return TaskOutput{
		ID:         t.ID,
		ReferralID: t.ReferralID,
		Type:       t.Type,
		Title:      t.Title,
		DueDate:    t.DueDate.String(),
		Status:     t.Status,
		Overdue:    t.IsOpen() && t.DueDate.Before(today),
	}
}

func viewToOutput(v pipeline.TaskView, today models.Date) TaskOutput {
	out := taskToOutput(v.Task, today)
	out.ReferralMissing = v.ReferralMissing
	if v.Referral != nil {
		out.Prospect = v.Referral.Prospect.Name
		out.ClientName = v.Referral.ClientName
	}
	return out
}

type CreateTaskInput struct {
	ReferralID string `json:"referral_id" jsonschema:"Referral the task belongs to (required)"`
	Title      string `json:"title" jsonschema:"What needs doing (required)"`
	Type       string `json:"type,omitempty" jsonschema:"Task type: ask_coordinates, followup, or generic (default followup)"`
	DueInDays  *int   `json:"due_in_days,omitempty" jsonschema:"Days from today until due (default 3)"`
}

type TaskChangeOutput struct {
	Task    TaskOutput `json:"task"`
	Warning string     `json:"warning,omitempty"`
}

func (h *TaskHandlers) CreateTask(_ context.Context, request *mcp.CallToolRequest, input CreateTaskInput) (*mcp.CallToolResult, TaskChangeOutput, error) {
	if input.ReferralID == "" {
		return nil, TaskChangeOutput{}, fmt.Errorf("referral_id is required")
	}
	if input.Title == "" {
		return nil, TaskChangeOutput{}, fmt.Errorf("title is required")
	}
	taskType := input.Type
	if taskType == "" {
		taskType = models.TaskTypeFollowup
	}
	days := pipeline.FollowupTaskDueDays
	if input.DueInDays != nil {
		days = *input.DueInDays
	}

	task, err := h.ws.CreateTask(input.ReferralID, input.Title, taskType, days)
	warn, err := warning(err)
	if err != nil {
		return nil, TaskChangeOutput{}, err
	}
	return nil, TaskChangeOutput{Task: taskToOutput(task, h.ws.Today()), Warning: warn}, nil
}

type CompleteTaskInput struct {
	ID string `json:"id" jsonschema:"Task ID (required)"`
}

func (h *TaskHandlers) CompleteTask(_ context.Context, request *mcp.CallToolRequest, input CompleteTaskInput) (*mcp.CallToolResult, TaskChangeOutput, error) {
	if input.ID == "" {
		return nil, TaskChangeOutput{}, fmt.Errorf("id is required")
	}
	task, ok := h.ws.Task(input.ID)
	if !ok {
		return nil, TaskChangeOutput{}, fmt.Errorf("task not found: %s", input.ID)
	}
	if !task.IsOpen() {
		return nil, TaskChangeOutput{}, fmt.Errorf("task already completed: %s", input.ID)
	}

	_, err := h.ws.CompleteTask(input.ID)
	warn, err := warning(err)
	if err != nil {
		return nil, TaskChangeOutput{}, err
	}
	task, _ = h.ws.Task(input.ID)
	return nil, TaskChangeOutput{Task: taskToOutput(task, h.ws.Today()), Warning: warn}, nil
}

type ListTasksInput struct {
	ReferralID  string `json:"referral_id,omitempty" jsonschema:"Only tasks for this referral"`
	OverdueOnly bool   `json:"overdue_only,omitempty" jsonschema:"Only tasks due before today"`
}

type ListTasksOutput struct {
	Tasks []TaskOutput `json:"tasks"`
	Count int          `json:"count"`
}

func (h *TaskHandlers) ListTasks(_ context.Context, request *mcp.CallToolRequest, input ListTasksInput) (*mcp.CallToolResult, ListTasksOutput, error) {
	today := h.ws.Today()

	var views []pipeline.TaskView
	if input.OverdueOnly {
		for _, v := range h.ws.OverdueTasks() {
			if input.ReferralID == "" || v.ReferralID == input.ReferralID {
				views = append(views, v)
			}
		}
	} else {
		views = h.ws.OpenTasks(input.ReferralID)
	}

	out := ListTasksOutput{Tasks: make([]TaskOutput, 0, len(views)), Count: len(views)}
	for _, v := range views {
		out.Tasks = append(out.Tasks, viewToOutput(v, today))
	}
	return nil, out, nil
}
