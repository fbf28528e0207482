// ABOUTME: Follow-up task CLI commands
// ABOUTME: Commands for listing, adding, and completing tasks
package cli

import (
	"fmt"
	"io"

	"github.com/harperreed/warmpath/models"
	"github.com/harperreed/warmpath/pipeline"
	"github.com/harperreed/warmpath/workspace"
)

// TasksListCommand lists open tasks, soonest due first.
func TasksListCommand(ws *workspace.Workspace, out io.Writer, args []string) error {
	fs := flagSet("tasks list", out)
	referralID := fs.String("referral", "", "Only tasks for this referral")
	overdue := fs.Bool("overdue", false, "Only overdue tasks")
	if _, err := parseArgs(fs, args); err != nil {
		return err
	}

	var views []pipeline.TaskView
	if *overdue {
		for _, v := range ws.OverdueTasks() {
			if *referralID == "" || v.ReferralID == *referralID {
				views = append(views, v)
			}
		}
	} else {
		views = ws.OpenTasks(*referralID)
	}

	if len(views) == 0 {
		fmt.Fprintln(out, "No open tasks.")
		return nil
	}

	today := ws.Today()
	w := newTable(out)
	_, _ = fmt.Fprintln(w, "ID\tDUE\tTYPE\tTITLE\tREFERRAL")
	_, _ = fmt.Fprintln(w, "--\t---\t----\t-----\t--------")
	for _, v := range views {
		indicator := "🟢"
		switch {
		case v.DueDate.Before(today):
			indicator = "🔴"
		case v.DueDate == today:
			indicator = "🟡"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s %s\t%s\t%s\t%s\n",
			v.ID, indicator, v.DueDate, v.Type, truncate(v.Title, 60), taskReferralLabel(v))
	}
	_ = w.Flush()
	return nil
}

func taskReferralLabel(v pipeline.TaskView) string {
	if v.ReferralMissing {
		return "(referral removed)"
	}
	return v.Referral.Prospect.Name + " via " + v.Referral.ClientName
}

// TasksAddCommand creates a task for a referral.
func TasksAddCommand(ws *workspace.Workspace, out io.Writer, args []string) error {
	fs := flagSet("tasks add", out)
	referralID := fs.String("referral", "", "Referral ID (required)")
	title := fs.String("title", "", "Task title (required)")
	taskType := fs.String("type", models.TaskTypeFollowup, "Task type")
	dueDays := fs.Int("due-days", pipeline.FollowupTaskDueDays, "Days from today until due")
	if _, err := parseArgs(fs, args); err != nil {
		return err
	}
	if *referralID == "" || *title == "" {
		return fmt.Errorf("--referral and --title are required")
	}

	task, err := ws.CreateTask(*referralID, *title, *taskType, *dueDays)
	if !keepGoing(err) {
		return err
	}
	fmt.Fprintf(out, "✓ Created task %s (due %s)\n", task.ID, task.DueDate)
	return err
}

// TasksDoneCommand completes a task.
func TasksDoneCommand(ws *workspace.Workspace, out io.Writer, args []string) error {
	fs := flagSet("tasks done", out)
	positional, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	id, err := requireOne(positional, "task ID")
	if err != nil {
		return err
	}

	completed, err := ws.CompleteTask(id)
	if !keepGoing(err) {
		return err
	}
	if !completed {
		if _, exists := ws.Task(id); exists {
			fmt.Fprintf(out, "Task %s was already done\n", id)
			return nil
		}
		return fmt.Errorf("task not found: %s", id)
	}
	fmt.Fprintf(out, "✓ Completed task %s\n", id)
	return err
}
