package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/warmpath/pipeline"
)

var (
	fieldLabelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			Width(14)

	fieldValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	messageBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
)

func (m Model) renderDetailView() string {
	r, ok := m.ws.Referral(m.selectedID)
	if !ok {
		return fmt.Sprintf("Referral %s no longer exists.\n\n%s", m.selectedID, m.renderDetailHelp())
	}

	var s strings.Builder
	s.WriteString(titleStyle.Render(fmt.Sprintf("%s via %s", r.Prospect.Name, r.ClientName)))
	s.WriteString("\n\n")

	due := "-"
	if r.NextDueDate != nil {
		due = r.NextDueDate.String()
		if pipeline.IsStale(r, m.ws.Today()) {
			due += " (overdue)"
		}
	}

	s.WriteString(m.renderField("Stage", string(r.Stage)))
	s.WriteString(m.renderField("Next due", due))
	s.WriteString(m.renderField("Response", string(r.Response)))
	s.WriteString(m.renderField("Title", r.Prospect.Title))
	s.WriteString(m.renderField("Company", r.Prospect.Company))
	s.WriteString(m.renderField("Email", r.Contact.Email))
	s.WriteString(m.renderField("Phone", r.Contact.Phone))
	s.WriteString(m.renderField("Profile", r.Contact.ProfileURL))
	s.WriteString(m.renderField("Note", r.Note))

	if tasks := m.ws.OpenTasks(r.ID); len(tasks) > 0 {
		s.WriteString("\n")
		s.WriteString(fieldLabelStyle.Render("Open tasks"))
		s.WriteString("\n")
		for _, t := range tasks {
			s.WriteString(fmt.Sprintf("  • %s (due %s)\n", t.Title, t.DueDate))
		}
	}

	if tpls := m.ws.Templates(); len(tpls) > 0 {
		tpl := tpls[m.templateIndex%len(tpls)]
		msg, err := m.ws.RenderMessage(r.ID, tpl.ID)
		s.WriteString("\n")
		s.WriteString(fieldLabelStyle.Render("Message"))
		s.WriteString(fmt.Sprintf(" %s (%d/%d)\n", tpl.Name, m.templateIndex%len(tpls)+1, len(tpls)))
		if err != nil {
			s.WriteString(fmt.Sprintf("Error: %v\n", err))
		} else {
			s.WriteString(messageBoxStyle.Render(msg.Body))
			s.WriteString("\n")
		}
	}

	if m.status != "" {
		s.WriteString("\n")
		s.WriteString(statusStyle.Render(m.status))
	}
	s.WriteString("\n")
	s.WriteString(m.renderDetailHelp())
	return s.String()
}

func (m Model) renderField(label, value string) string {
	if value == "" {
		value = "-"
	}
	return fieldLabelStyle.Render(label+":") + " " + fieldValueStyle.Render(value) + "\n"
}

func (m Model) renderDetailHelp() string {
	help := []string{
		"Esc: Back",
		"]/[: Advance/Back",
		"t: Next template",
		"d: Remove",
		"q: Quit",
	}
	return helpStyle.Render(strings.Join(help, " • "))
}

func (m Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.viewMode = ViewBoard
		m.status = ""
	case "]", "[":
		if _, ok := m.ws.Referral(m.selectedID); ok {
			m.shift(m.selectedID, msg.String() == "]")
		}
	case "t":
		m.templateIndex++
	case "d":
		if _, ok := m.ws.Referral(m.selectedID); ok {
			m.viewMode = ViewConfirmDelete
		}
	}
	return m, nil
}
