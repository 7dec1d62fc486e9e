package runclient

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/okian/autoapply/internal/domain/model"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	matchStyles = map[model.MatchStatus]lipgloss.Style{
		model.MatchApplied: lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true),
		model.MatchSkipped: lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		model.MatchPending: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		model.MatchFailed:  lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
	}
)

// Render formats a snapshot for a terminal.
func Render(snap model.RunSnapshot) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("run %s  %s", snap.RunID, snap.Status)))
	b.WriteString(dimStyle.Render(fmt.Sprintf("  threshold %.2f", snap.Threshold)))

	if snap.Error != "" {
		b.WriteString("\n  " + errorStyle.Render("error: "+snap.Error))
	}
	if len(snap.Jobs) == 0 {
		if !snap.Status.Terminal() {
			b.WriteString("\n  " + dimStyle.Render("matching..."))
		}
		return b.String()
	}

	for _, j := range snap.Jobs {
		style, ok := matchStyles[j.Status]
		if !ok {
			style = dimStyle
		}
		b.WriteString(fmt.Sprintf("\n  %3.0f%%  %-9s %s @ %s  %s",
			j.MatchScore*100,
			style.Render(string(j.Status)),
			j.Title,
			j.Company,
			dimStyle.Render(j.Reason),
		))
	}
	return b.String()
}
