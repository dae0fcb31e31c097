package views

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

// AppData is one frame of the calendar screen: a title bar, the agenda and
// detail panes side by side, a status line, the reminder log and a key hint.
type AppData struct {
	Title       string
	Day         string
	Path        string
	Agenda      string
	Details     string
	Status      string
	StatusError bool
	ReminderLog string
	KeyHints    string
	PaneWidth   int
}

const defaultPaneWidth = 58

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	dayStyle      = lipgloss.NewStyle().Bold(true)
	todayStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	paneStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	reminderStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("11")).Padding(0, 1)
	okStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	failStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	firedStyle    = dimStyle.Strikethrough(true)
)

func RenderApp(data AppData) string {
	width := data.PaneWidth
	if width <= 0 {
		width = defaultPaneWidth
	}

	title := titleStyle.Render(data.Title)
	if data.Day != "" {
		title += " " + dayStyle.Render(data.Day)
	}
	if data.Path != "" {
		title += " " + dimStyle.Render(data.Path)
	}

	lines := []string{
		title,
		lipgloss.JoinHorizontal(lipgloss.Top,
			paneStyle.Width(width).Render(data.Agenda),
			paneStyle.Width(width).Render(data.Details)),
	}
	if data.Status != "" {
		if data.StatusError {
			lines = append(lines, failStyle.Render(data.Status))
		} else {
			lines = append(lines, okStyle.Render(data.Status))
		}
	}
	if data.ReminderLog != "" {
		lines = append(lines, reminderStyle.Width(2*width+2).Render(data.ReminderLog))
	}
	if data.KeyHints != "" {
		lines = append(lines, dimStyle.Render(data.KeyHints))
	}
	return strings.Join(lines, "\n")
}

var (
	renderersMu sync.Mutex
	renderers   = map[int]*glamour.TermRenderer{}
)

// RenderMarkdown renders an event description at the given wrap width. The
// raw text is returned if rendering fails.
func RenderMarkdown(md string, width int) string {
	if strings.TrimSpace(md) == "" {
		return ""
	}
	if width <= 0 {
		width = defaultPaneWidth
	}

	renderersMu.Lock()
	defer renderersMu.Unlock()
	r, ok := renderers[width]
	if !ok {
		var err error
		r, err = glamour.NewTermRenderer(glamour.WithStandardStyle("dark"), glamour.WithWordWrap(width))
		if err != nil {
			return md
		}
		renderers[width] = r
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimSpace(out)
}
