// ABOUTME: Terminal dashboard statistics and rendering
// ABOUTME: Provides an ASCII overview of the referral pipeline and task queue
package viz

import (
	"fmt"
	"strings"

	"github.com/harperreed/warmpath/models"
	"github.com/harperreed/warmpath/pipeline"
)

// Source is the read side of a workspace.
type Source interface {
	Clients() []models.Client
	Referrals(f pipeline.ReferralFilter) []models.Referral
	OpenTasks(referralID string) []pipeline.TaskView
	Today() models.Date
}

type DashboardStats struct {
	Today models.Date

	ByStage map[models.Stage]int

	TotalClients   int
	TotalReferrals int
	OpenTasks      int

	StaleReferrals []StaleReferral
	OverdueTasks   []OverdueTask
	DueToday       int
}

type StaleReferral struct {
	ID          string
	Prospect    string
	Client      string
	Stage       models.Stage
	DaysOverdue int
}

type OverdueTask struct {
	Title       string
	DaysOverdue int
	Orphaned    bool
}

func GenerateDashboardStats(src Source) *DashboardStats {
	today := src.Today()
	stats := &DashboardStats{
		Today:   today,
		ByStage: make(map[models.Stage]int),
	}

	stats.TotalClients = len(src.Clients())

	refs := src.Referrals(pipeline.ReferralFilter{})
	stats.TotalReferrals = len(refs)
	for _, r := range refs {
		stats.ByStage[r.Stage]++
		if pipeline.IsStale(r, today) {
			stats.StaleReferrals = append(stats.StaleReferrals, StaleReferral{
				ID:          r.ID,
				Prospect:    r.Prospect.Name,
				Client:      r.ClientName,
				Stage:       r.Stage,
				DaysOverdue: r.NextDueDate.DaysUntil(today),
			})
		}
	}

	tasks := src.OpenTasks("")
	stats.OpenTasks = len(tasks)
	for _, t := range tasks {
		switch {
		case t.DueDate.Before(today):
			stats.OverdueTasks = append(stats.OverdueTasks, OverdueTask{
				Title:       t.Title,
				DaysOverdue: t.DueDate.DaysUntil(today),
				Orphaned:    t.ReferralMissing,
			})
		case t.DueDate == today:
			stats.DueToday++
		}
	}

	return stats
}

func RenderDashboard(stats *DashboardStats) string {
	var out strings.Builder

	out.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
	out.WriteString(fmt.Sprintf("  WARMPATH DASHBOARD  %s\n", stats.Today))
	out.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n\n")

	out.WriteString("PIPELINE\n")
	renderPipeline(&out, stats.ByStage)
	out.WriteString("\n")

	out.WriteString("STATS\n")
	out.WriteString(fmt.Sprintf("  👥 %d clients  🤝 %d referrals  ✅ %d open tasks (%d due today)\n\n",
		stats.TotalClients, stats.TotalReferrals, stats.OpenTasks, stats.DueToday))

	if len(stats.StaleReferrals) > 0 || len(stats.OverdueTasks) > 0 {
		out.WriteString("NEEDS ATTENTION\n")
		for _, r := range stats.StaleReferrals {
			out.WriteString(fmt.Sprintf("  ⚠️  %s via %s - %s, %d days overdue\n",
				r.Prospect, r.Client, r.Stage, r.DaysOverdue))
		}
		for _, t := range stats.OverdueTasks {
			suffix := ""
			if t.Orphaned {
				suffix = " (referral removed)"
			}
			out.WriteString(fmt.Sprintf("  🔴 %s - %d days overdue%s\n", t.Title, t.DaysOverdue, suffix))
		}
	}

	return out.String()
}

func renderPipeline(out *strings.Builder, byStage map[models.Stage]int) {
	maxCount := 0
	for _, n := range byStage {
		if n > maxCount {
			maxCount = n
		}
	}
	if maxCount == 0 {
		maxCount = 1
	}

	for _, stage := range models.Stages {
		count := byStage[stage]
		barLength := (count * 10) / maxCount
		bar := strings.Repeat("█", barLength) + strings.Repeat("░", 10-barLength)
		out.WriteString(fmt.Sprintf("  %-15s %s  %2d\n", stage, bar, count))
	}
}
