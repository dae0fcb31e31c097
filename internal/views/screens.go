package views

import (
	"fmt"
	"strings"
)

type AgendaPanelData struct {
	DateLabel string
	IsToday   bool
	ListView  string
	Count     int
}

type ReminderData struct {
	Label string
	Fired bool
}

type DetailPanelData struct {
	Number       int
	Title        string
	When         string
	Reminders    []ReminderData
	Pending      int
	ViewportView string
}

type HelpPanelData struct {
	Bindings []string
	HelpView string
	Presets  string
}

type ReminderLogEntry struct {
	At       string
	Headline string
	Title    string
}

func RenderAgendaPanel(data AgendaPanelData) string {
	var b strings.Builder
	label := data.DateLabel
	if data.IsToday {
		label = todayStyle.Render(label + " (today)")
	}
	b.WriteString(fmt.Sprintf("agenda: %s\n", label))
	b.WriteString("actions: [h/l]day [t]today [j/k]move [a]add [e]edit [x]delete\n")
	if data.Count == 0 {
		b.WriteString("\n(no events)")
		return b.String()
	}
	b.WriteString(data.ListView)
	return strings.TrimSpace(b.String())
}

func RenderDetailPanel(data DetailPanelData) string {
	if strings.TrimSpace(data.Title) == "" {
		return "details:\n(no selection)"
	}
	var b strings.Builder
	b.WriteString("details:\n")
	b.WriteString(fmt.Sprintf("#%d %s\n", data.Number, data.Title))
	b.WriteString(fmt.Sprintf("when: %s\n", data.When))
	if len(data.Reminders) == 0 {
		b.WriteString("reminders: none\n")
	} else {
		labels := make([]string, 0, len(data.Reminders))
		for _, r := range data.Reminders {
			if r.Fired {
				labels = append(labels, firedStyle.Render(r.Label))
				continue
			}
			labels = append(labels, r.Label)
		}
		b.WriteString(fmt.Sprintf("reminders: %s (%d pending)\n", strings.Join(labels, ", "), data.Pending))
	}
	if strings.TrimSpace(data.ViewportView) != "" {
		b.WriteString("\n" + data.ViewportView)
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func RenderWeekPanel(tableView string) string {
	if strings.TrimSpace(tableView) == "" {
		return ""
	}
	return "\nweek:\n" + tableView
}

func RenderCommandPalette(active bool, inputView string) string {
	if !active {
		return ""
	}
	return "\ncommand: " + inputView
}

func RenderReminderLog(entries []ReminderLogEntry) string {
	if len(entries) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("reminders:\n")
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		b.WriteString(fmt.Sprintf("%s %s %s\n", dimStyle.Render(e.At), e.Headline, e.Title))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func RenderHelpPanel(data HelpPanelData) string {
	out := fmt.Sprintf("\nhelp:\n%s\n%s\n\npalette:\n%s",
		strings.Join(data.Bindings, "\n"),
		data.HelpView,
		strings.Join(PaletteUsage, "\n"),
	)
	if data.Presets != "" {
		out += "\nreminder presets: " + data.Presets
	}
	return out
}

// PaletteUsage lists the command palette grammar.
var PaletteUsage = []string{
	"add DATE TIME TITLE [r=60,0] [-- description]",
	"edit N DATE TIME TITLE [r=...] [-- description]",
	"delete N",
	"goto DATE|today|+N",
	"import merge|replace PATH",
	"export PATH",
	"ics PATH",
	"save",
}
