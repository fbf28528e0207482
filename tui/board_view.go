package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/warmpath/models"
	"github.com/harperreed/warmpath/pipeline"
)

func (m Model) renderBoardView() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(fmt.Sprintf("WARMPATH  %s", m.ws.Today())))
	s.WriteString("\n\n")

	s.WriteString(m.renderTabs())
	s.WriteString("\n\n")

	s.WriteString(m.renderTable())
	s.WriteString("\n")

	if m.status != "" {
		s.WriteString("\n")
		s.WriteString(statusStyle.Render(m.status))
	}
	s.WriteString("\n")
	s.WriteString(m.renderBoardHelp())

	return s.String()
}

func (m Model) renderTabs() string {
	var rendered []string
	for i, tab := range tabNames {
		label := tab
		if Tab(i) == TabOverdue {
			label = fmt.Sprintf("%s (%d)", tab, len(m.ws.OverdueTasks()))
		}
		if Tab(i) == m.tab {
			rendered = append(rendered, tabActiveStyle.Render(label))
		} else {
			rendered = append(rendered, tabInactiveStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func (m Model) tableHeight() int {
	if h := m.height - 12; h > 3 {
		return h
	}
	return 3
}

func (m Model) renderTable() string {
	var columns []table.Column
	var rows []table.Row

	switch m.tab {
	case TabPipeline:
		columns = []table.Column{
			{Title: "Prospect", Width: 24},
			{Title: "Client", Width: 20},
			{Title: "Stage", Width: 15},
			{Title: "Due", Width: 13},
		}
		today := m.ws.Today()
		for _, r := range m.referrals() {
			due := "-"
			if r.NextDueDate != nil {
				due = r.NextDueDate.String()
			}
			if pipeline.IsStale(r, today) {
				due += " ⚠"
			}
			rows = append(rows, table.Row{r.Prospect.Name, r.ClientName, string(r.Stage), due})
		}
	default:
		columns = []table.Column{
			{Title: "Due", Width: 10},
			{Title: "Task", Width: 50},
			{Title: "Referral", Width: 24},
		}
		for _, t := range m.tasks() {
			label := "(referral removed)"
			if t.Referral != nil {
				label = t.Referral.Prospect.Name
			}
			rows = append(rows, table.Row{t.DueDate.String(), t.Title, label})
		}
	}

	if len(rows) == 0 {
		return helpStyle.Render("  Nothing here yet.")
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(m.tableHeight()),
	)
	if m.selectedRow < len(rows) {
		t.SetCursor(m.selectedRow)
	}
	return t.View()
}

func (m Model) renderBoardHelp() string {
	help := []string{"j/k: Navigate", "Tab: Switch tabs"}
	switch m.tab {
	case TabPipeline:
		help = append(help, "]/[: Advance/Back", "Enter: Details", "d: Remove")
	default:
		help = append(help, "x: Complete")
	}
	help = append(help, "g: Dashboard", "r: Reload", "q: Quit")
	return helpStyle.Render(strings.Join(help, " • "))
}

func (m Model) referrals() []models.Referral {
	return m.ws.Referrals(pipeline.ReferralFilter{})
}

func (m Model) tasks() []pipeline.TaskView {
	if m.tab == TabOverdue {
		return m.ws.OverdueTasks()
	}
	return m.ws.OpenTasks("")
}

func (m Model) rowCount() int {
	if m.tab == TabPipeline {
		return len(m.referrals())
	}
	return len(m.tasks())
}

func (m Model) selectedReferral() (models.Referral, bool) {
	refs := m.referrals()
	if m.tab != TabPipeline || m.selectedRow >= len(refs) {
		return models.Referral{}, false
	}
	return refs[m.selectedRow], true
}

func (m Model) selectedTask() (pipeline.TaskView, bool) {
	tasks := m.tasks()
	if m.tab == TabPipeline || m.selectedRow >= len(tasks) {
		return pipeline.TaskView{}, false
	}
	return tasks[m.selectedRow], true
}

func (m Model) handleBoardKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.selectedRow > 0 {
			m.selectedRow--
		}
	case "down", "j":
		if m.selectedRow < m.rowCount()-1 {
			m.selectedRow++
		}
	case "tab":
		m.tab = (m.tab + 1) % Tab(len(tabNames))
		m.selectedRow = 0
		m.status = ""
	case "shift+tab":
		m.tab = (m.tab + Tab(len(tabNames)) - 1) % Tab(len(tabNames))
		m.selectedRow = 0
		m.status = ""
	case "]", "[":
		if r, ok := m.selectedReferral(); ok {
			m.shift(r.ID, msg.String() == "]")
		}
	case "enter":
		if r, ok := m.selectedReferral(); ok {
			m.selectedID = r.ID
			m.templateIndex = 0
			m.viewMode = ViewDetail
		}
	case "d":
		if r, ok := m.selectedReferral(); ok {
			m.selectedID = r.ID
			m.viewMode = ViewConfirmDelete
		}
	case "x":
		if t, ok := m.selectedTask(); ok {
			_, err := m.ws.CompleteTask(t.ID)
			m.report("✓ Completed: "+t.Title, err)
			if m.selectedRow >= m.rowCount() && m.selectedRow > 0 {
				m.selectedRow--
			}
		}
	case "g":
		m.viewMode = ViewDashboard
	case "r":
		m.ws.Reload()
		m.selectedRow = 0
		m.status = "Reloaded"
	}

	return m, nil
}

func (m *Model) shift(id string, forward bool) {
	step := m.ws.Retreat
	if forward {
		step = m.ws.Advance
	}
	stage, _, err := step(id)
	r, _ := m.ws.Referral(id)
	m.report(fmt.Sprintf("✓ %s → %s", r.Prospect.Name, stage), err)
}
