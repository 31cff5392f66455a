package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/clash-cost/internal/model"
	"github.com/Veraticus/clash-cost/internal/tui/themes"
)

// View renders the UI.
func (m Model) View() string {
	sections := []string{m.renderHeader()}

	if m.state == StateFinished {
		sections = append(sections, m.renderResult())
		return lipgloss.JoinVertical(lipgloss.Left, sections...) + "\n"
	}

	sections = append(sections, m.renderProgress())
	if len(m.operations) > 0 {
		sections = append(sections, m.renderOperations())
	}
	if len(m.history) > 0 {
		sections = append(sections, m.renderHistory())
	}
	sections = append(sections, m.help.View(m.keymap))

	return lipgloss.JoinVertical(lipgloss.Left, sections...) + "\n"
}

func (m Model) renderHeader() string {
	title := m.theme.Title.Render(fmt.Sprintf("Bulk %s", kindTitle(m.kind)))
	elapsed := m.theme.Subtitle.Render(time.Since(m.startTime).Round(time.Second).String())
	return lipgloss.JoinHorizontal(lipgloss.Top, title, "  ", elapsed)
}

func (m Model) renderProgress() string {
	if m.run == nil {
		return m.theme.StatusPending.Render("Preparing candidates...")
	}

	label := m.run.Label
	status := m.theme.StatusInfo
	switch m.state {
	case StateStopping:
		label = "Stopping after the current item..."
		status = m.theme.StatusWarning
	case StateAborting:
		label = "Aborting..."
		status = m.theme.StatusError
	}

	count := m.theme.Bold.Render(fmt.Sprintf("%d/%d", m.run.Current, m.run.Total))
	return lipgloss.JoinVertical(lipgloss.Left,
		m.bar.ViewAs(runFraction(m.run))+" "+count,
		status.Render(label),
	)
}

func (m Model) renderOperations() string {
	lines := make([]string, 0, len(m.operations))
	for _, op := range m.operations {
		lines = append(lines, fmt.Sprintf("%s %-28s %3.0f%%  %s",
			m.theme.DisciplineIcon.Render(operationIcon(op.id)),
			op.id.String(),
			op.progress,
			m.theme.StatusPending.Render(op.label)))
	}
	return m.theme.RoundedBox.Render(strings.Join(lines, "\n"))
}

func (m Model) renderHistory() string {
	lines := make([]string, 0, len(m.history))
	for i, label := range m.history {
		style := m.theme.Normal
		if i == len(m.history)-1 {
			style = m.theme.Highlighted
		}
		lines = append(lines, style.Render(label))
	}
	return m.theme.Box.Render(strings.Join(lines, "\n"))
}

func (m Model) renderResult() string {
	if m.err != nil {
		return m.theme.StatusError.Render("Run ended: " + m.err.Error())
	}
	s := m.summary
	if s == nil {
		return m.theme.StatusPending.Render("No result.")
	}
	if s.NoOp {
		return m.theme.StatusInfo.Render("Nothing to do: every item is already processed.")
	}

	head := m.theme.StatusSuccess.Render("Completed")
	if s.Stopped {
		head = m.theme.StatusWarning.Render("Stopped")
	}
	body := fmt.Sprintf("Succeeded: %d\nFailed: %d\nSkipped: %d\nTime taken: %s",
		s.Succeeded, s.Failed, s.Skipped, s.Elapsed.Round(100*time.Millisecond))
	return m.theme.RoundedBox.Render(lipgloss.JoinVertical(lipgloss.Left, head, body))
}

// runFraction is the completed share of a run; the current item counts as
// not yet done.
func runFraction(run *model.BulkRun) float64 {
	if run == nil || run.Total <= 0 || run.Current <= 0 {
		return 0
	}
	return float64(run.Current-1) / float64(run.Total)
}

func operationIcon(id model.OperationID) string {
	switch id.Kind {
	case model.OperationLoad:
		return themes.GetDisciplineIcon(id.Key)
	case model.OperationGenerate:
		row, _, _ := strings.Cut(id.Key, ":")
		return themes.GetDisciplineIcon(row)
	default:
		return "🔗"
	}
}

func kindTitle(kind model.BulkKind) string {
	s := string(kind)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
