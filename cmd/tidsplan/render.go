package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/hylla/tidsplan/internal/domain"
	"github.com/hylla/tidsplan/internal/schedule"
)

var (
	headerStyle   = lipgloss.NewStyle().Bold(true)
	criticalStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	warningStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	dimStyle      = lipgloss.NewStyle().Faint(true)
)

// renderTasks writes a plain task listing.
func renderTasks(w io.Writer, tasks []domain.Task) {
	if len(tasks) == 0 {
		fmt.Fprintln(w, dimStyle.Render("no tasks"))
		return
	}
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%-24s %-28s %-12s %5s %-12s %-12s", "ID", "TITLE", "STATUS", "DAYS", "START", "END")))
	for _, t := range tasks {
		duration := "-"
		if t.DurationDays != nil {
			duration = fmt.Sprintf("%d", *t.DurationDays)
		}
		fmt.Fprintf(w, "%-24s %-28s %-12s %5s %-12s %-12s\n",
			truncate(t.ID, 24),
			truncate(t.Title, 28),
			string(t.Status),
			duration,
			formatOptionalDate(t.StartDate),
			formatOptionalDate(t.EndDate),
		)
	}
}

// renderResult writes a schedule run as a table, flagging critical tasks and
// listing warnings. A cycle aborts the table entirely.
func renderResult(w io.Writer, result schedule.Result) {
	if len(result.CycleNodes) > 0 {
		fmt.Fprintln(w, criticalStyle.Render("dependency cycle detected; nothing scheduled"))
		fmt.Fprintf(w, "cycle nodes: %s\n", strings.Join(result.CycleNodes, ", "))
		return
	}
	if len(result.Items) == 0 {
		fmt.Fprintln(w, dimStyle.Render("nothing to schedule"))
		return
	}

	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%-24s %-12s %-12s %-12s %-12s %6s  %s", "TASK", "START", "END", "LATE START", "LATE END", "FLOAT", "CRIT")))
	for _, item := range result.Items {
		line := fmt.Sprintf("%-24s %-12s %-12s %-12s %-12s %6d  %s",
			truncate(item.TaskID, 24),
			item.ScheduledStart.Format("2006-01-02"),
			item.ScheduledEnd.Format("2006-01-02"),
			item.LatestStart.Format("2006-01-02"),
			item.LatestFinish.Format("2006-01-02"),
			item.TotalFloat,
			markCritical(item.IsCritical),
		)
		if item.IsCritical {
			line = criticalStyle.Render(line)
		}
		fmt.Fprintln(w, line)
	}

	if len(result.CriticalPath) > 0 {
		fmt.Fprintf(w, "\ncritical path: %s\n", strings.Join(result.CriticalPath, " -> "))
	}
	for _, warning := range result.Warnings {
		fmt.Fprintln(w, warningStyle.Render(fmt.Sprintf("warning [%s] %s: %s", warning.Type, warning.TaskID, warning.Message)))
	}
}

func markCritical(critical bool) string {
	if critical {
		return "*"
	}
	return ""
}

func formatOptionalDate(ts *time.Time) string {
	if ts == nil {
		return "-"
	}
	return ts.Format("2006-01-02")
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 1 {
		return s[:max]
	}
	return s[:max-1] + "…"
}
