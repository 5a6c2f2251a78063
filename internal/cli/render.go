package cli

import (
	"fmt"
	"io"
	"strings"

	"task-tracker/internal/models"
	"task-tracker/internal/services"

	"github.com/charmbracelet/lipgloss"
)

var statusColors = map[models.Status]lipgloss.Color{
	models.StatusPending:    lipgloss.Color("#eed49f"),
	models.StatusOnProgress: lipgloss.Color("#8aadf4"),
	models.StatusCompleted:  lipgloss.Color("#a6da95"),
	models.StatusCancelled:  lipgloss.Color("#ed8796"),
	models.StatusOnHold:     lipgloss.Color("#a5adcb"),
}

var priorityColors = map[models.Priority]lipgloss.Color{
	models.PriorityLow:    lipgloss.Color("#8bd5ca"),
	models.PriorityMedium: lipgloss.Color("#eed49f"),
	models.PriorityHigh:   lipgloss.Color("#ed8796"),
}

// styles binds every style to the renderer of one writer, so color is only
// emitted when that writer is a terminal.
type styles struct {
	title  lipgloss.Style
	header lipgloss.Style
	muted  lipgloss.Style
	r      *lipgloss.Renderer
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		title:  r.NewStyle().Bold(true),
		header: r.NewStyle().Bold(true).Underline(true),
		muted:  r.NewStyle().Faint(true),
		r:      r,
	}
}

func (s styles) status(st models.Status) string {
	return s.r.NewStyle().Foreground(statusColors[st]).Width(12).Render(st.Label())
}

func (s styles) priority(p models.Priority) string {
	return s.r.NewStyle().Foreground(priorityColors[p]).Width(7).Render(p.Label())
}

func (s styles) cell(value string, width int) string {
	return s.r.NewStyle().Width(width).MaxWidth(width).Render(value)
}

func renderTaskPage(w io.Writer, page services.TaskPage) {
	st := newStyles(w)

	if page.Total == 0 {
		fmt.Fprintln(w, st.muted.Render("No tasks yet."))
		return
	}

	fmt.Fprintln(w, st.header.Render(fmt.Sprintf("%-14s %-12s %-7s %-11s %-16s %s", "ID", "STATUS", "PRIO", "START", "CATEGORY", "TITLE")))
	for _, t := range page.Tasks {
		fmt.Fprintln(w, strings.Join([]string{
			st.cell(fmt.Sprint(t.ID), 14),
			st.status(t.Status),
			st.priority(t.Priority),
			st.cell(t.StartDate.String(), 11),
			st.cell(t.Category, 16),
			t.Title,
		}, " "))
	}
	fmt.Fprintln(w, st.muted.Render(fmt.Sprintf("page %d of %d, %d tasks", page.Page, page.TotalPages, page.Total)))
}

func renderTask(w io.Writer, t models.Task) {
	st := newStyles(w)

	fmt.Fprintln(w, st.title.Render(t.Title))
	fmt.Fprintf(w, "id        %d\n", t.ID)
	fmt.Fprintf(w, "status    %s\n", strings.TrimRight(st.status(t.Status), " "))
	fmt.Fprintf(w, "priority  %s\n", strings.TrimRight(st.priority(t.Priority), " "))
	fmt.Fprintf(w, "category  %s\n", t.Category)
	dates := t.StartDate.String()
	if !t.EndDate.IsZero() {
		dates += " -> " + t.EndDate.String()
	}
	fmt.Fprintf(w, "dates     %s\n", dates)
	if t.Description != "" {
		fmt.Fprintf(w, "\n%s\n", t.Description)
	}

	if len(t.Progress) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, st.header.Render("Progress"))
	for i, e := range t.Progress {
		fmt.Fprintf(w, "%3d  %s  %s\n", i, e.Date, e.Note)
	}
}

func renderProgressPage(w io.Writer, page services.ProgressPage) {
	st := newStyles(w)

	if page.Total == 0 {
		fmt.Fprintln(w, st.muted.Render("No progress notes yet."))
		return
	}
	for i, e := range page.Entries {
		fmt.Fprintf(w, "%3d  %s  %s  %s\n", page.Offset+i, e.Date, e.Note, st.muted.Render(fmt.Sprintf("#%d", e.ID)))
	}
	fmt.Fprintln(w, st.muted.Render(fmt.Sprintf("page %d of %d, %d notes", page.Page, page.TotalPages, page.Total)))
}

func renderDashboard(w io.Writer, d services.Dashboard) {
	st := newStyles(w)

	fmt.Fprintln(w, st.title.Render(fmt.Sprintf("%d tasks, %.0f%% completed", d.Total, d.Completed*100)))
	for _, status := range models.Statuses {
		fmt.Fprintf(w, "  %s %d\n", st.status(status), d.Counts[status])
	}

	if len(d.Recent) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, st.header.Render("Recent"))
	for _, t := range d.Recent {
		fmt.Fprintf(w, "  %d  %s\n", t.ID, t.Title)
	}
}
