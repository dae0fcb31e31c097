package update

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/eventd/internal/calendar"
	"github.com/sandeepkv93/eventd/internal/commands"
	"github.com/sandeepkv93/eventd/internal/importer"
)

func (m *Model) openPalette(prefill string) {
	m.Palette.Active = true
	m.Palette.Input = prefill
	m.commandInput.SetValue(prefill)
	m.commandInput.CursorEnd()
	m.commandInput.Focus()
	m.Status = StatusBar{Text: "command palette active"}
}

func (m *Model) closePalette() {
	m.Palette.Active = false
	m.Palette.Input = ""
	m.commandInput.SetValue("")
	m.commandInput.Blur()
}

func (m Model) handlePaletteKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.closePalette()
		m.Status = StatusBar{Text: "command palette closed"}
		return m, nil
	case "enter":
		m.Palette.Input = m.commandInput.Value()
		return m.executePaletteCommand(), nil
	}
	if msg.Type == tea.KeyRunes {
		m.commandInput.SetValue(m.commandInput.Value() + string(msg.Runes))
		m.commandInput.CursorEnd()
		m.Palette.Input = m.commandInput.Value()
		return m, nil
	}
	var cmd tea.Cmd
	m.commandInput, cmd = m.commandInput.Update(msg)
	m.Palette.Input = m.commandInput.Value()
	return m, cmd
}

func (m Model) executePaletteCommand() Model {
	raw := strings.TrimSpace(m.Palette.Input)
	m.closePalette()

	cmd, err := commands.Parse(raw, m.today())
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m
	}

	res, err := commands.Execute(cmd, commands.Handlers{
		Add: func(a commands.AddArgs) (commands.Result, error) {
			ev, err := m.cal.AddEvent(a.Date, a.Title, a.Clock, a.Description, a.Offsets)
			if err != nil {
				return commands.Result{}, err
			}
			m.Selected = a.Date
			m.Cursor = len(m.cal.EventsOn(a.Date)) - 1
			return commands.Result{Message: fmt.Sprintf("added: %s", ev.Title)}, nil
		},
		Edit: func(a commands.EditArgs) (commands.Result, error) {
			ev, err := a.Event()
			if err != nil {
				return commands.Result{}, err
			}
			if err := m.cal.EditEvent(m.Selected, a.Index, ev); err != nil {
				return commands.Result{}, err
			}
			m.Selected = ev.Date()
			m.Cursor = len(m.cal.EventsOn(m.Selected)) - 1
			return commands.Result{Message: fmt.Sprintf("updated: %s", ev.Title)}, nil
		},
		Delete: func(a commands.DeleteArgs) (commands.Result, error) {
			removed, err := m.cal.DeleteEvent(m.Selected, a.Index)
			if err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: fmt.Sprintf("deleted: %s", removed.Title)}, nil
		},
		Goto: func(a commands.GotoArgs) (commands.Result, error) {
			m.Selected = a.Date
			m.Cursor = 0
			return commands.Result{Message: fmt.Sprintf("day: %s", a.Date)}, nil
		},
		Import: func(a commands.ImportArgs) (commands.Result, error) {
			var (
				report calendar.ImportReport
				err    error
			)
			if a.Mode == importer.ModeReplace {
				report, err = m.cal.ImportReplace(a.Path)
			} else {
				report, err = m.cal.ImportMerge(a.Path)
			}
			if err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: fmt.Sprintf("imported %d event(s) (%s), %d line(s) skipped",
				report.Imported, report.Mode, len(report.Skipped))}, nil
		},
		Export: func(a commands.PathArgs) (commands.Result, error) {
			if err := m.cal.ExportTo(a.Path); err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: fmt.Sprintf("exported to %s", a.Path)}, nil
		},
		ICS: func(a commands.PathArgs) (commands.Result, error) {
			if err := m.cal.ExportICS(a.Path); err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: fmt.Sprintf("exported iCalendar to %s", a.Path)}, nil
		},
		Save: func() (commands.Result, error) {
			if err := m.cal.Save(); err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: fmt.Sprintf("saved %d event(s)", m.cal.Len())}, nil
		},
	})
	if err != nil {
		m.LastError = err
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		m.log.Warn("palette command failed", "command", cmd.Type, "err", err)
	} else {
		m.Status = StatusBar{Text: res.Message}
		m.log.Info("palette command", "command", cmd.Type)
	}
	m.refresh()
	return m
}
