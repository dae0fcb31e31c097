package update

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/eventd/internal/views"
)

func (m Model) Init() tea.Cmd {
	return tea.SetWindowTitle("eventd")
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(typed.Width, typed.Height)
		return m, nil
	case tea.KeyMsg:
		if typed.String() == "ctrl+c" {
			return m.quit()
		}
		if m.Palette.Active {
			return m.handlePaletteKey(typed)
		}
		switch typed.String() {
		case "/":
			m.openPalette("")
			return m, nil
		case m.Keys.Help:
			m.HelpVisible = !m.HelpVisible
			if m.HelpVisible {
				m.Status = StatusBar{Text: "help shown"}
			} else {
				m.Status = StatusBar{Text: "help hidden"}
			}
			return m, nil
		case m.Keys.Quit:
			return m.quit()
		}
		return m.handleAgendaKey(typed)
	case SetStatusMsg:
		m.Status = StatusBar{Text: typed.Text, IsError: typed.IsError}
		return m, nil
	case ClearStatusMsg:
		m.Status = StatusBar{}
		return m, nil
	case AppErrorMsg:
		m.LastError = typed.Err
		if typed.Err != nil {
			m.Status = StatusBar{Text: typed.Err.Error(), IsError: true}
		}
		return m, nil
	case StoreChangedMsg:
		m.refresh()
		return m, nil
	case GotoDateMsg:
		m.gotoDate(typed.Date)
		return m, nil
	case ReminderDueMsg:
		m.recordReminder(typed)
		m.refresh()
		return m, nil
	}
	return m, nil
}

// quit flushes the calendar before leaving. A failed save keeps the program
// running so the user can retry or export.
func (m Model) quit() (tea.Model, tea.Cmd) {
	if m.cal != nil && m.cal.Path() != "" {
		if err := m.cal.Flush(); err != nil {
			m.LastError = err
			m.Status = StatusBar{Text: fmt.Sprintf("save before exit failed: %v", err), IsError: true}
			m.log.Error("save before exit", "err", err)
			return m, nil
		}
	}
	m.Quitting = true
	return m, tea.Quit
}

func (m *Model) resize(width, height int) {
	m.width = width
	pane := width/2 - 4
	if pane < 30 {
		pane = 30
	}
	m.paneWidth = pane
	listHeight := height - 12
	if listHeight < 6 {
		listHeight = 6
	}
	m.agendaList.SetSize(pane-2, listHeight)
	m.detailView.Width = pane - 2
	m.commandInput.Width = pane - 4
	m.syncBubbleData()
}

func (m Model) View() string {
	if m.Quitting {
		return ""
	}
	status := m.Status.Text
	if status != "" && m.Status.IsError {
		status = "error: " + status
	}
	path := ""
	if m.cal != nil {
		path = m.cal.Path()
	}
	return views.RenderApp(views.AppData{
		Title:       "eventd",
		Day:         m.Selected.String(),
		Path:        path,
		Agenda:      m.renderAgendaPanel(),
		Details:     m.renderDetailPanel() + m.renderWeekPanel() + m.renderCommandPalette() + m.renderHelpIfVisible(),
		Status:      status,
		StatusError: m.Status.IsError,
		ReminderLog: m.renderReminderLog(),
		KeyHints: fmt.Sprintf("%s/%s day  %s today  %s add  %s edit  %s delete  / command  %s help  %s quit",
			m.Keys.PrevDay, m.Keys.NextDay, m.Keys.Today, m.Keys.Add, m.Keys.Edit, m.Keys.Delete, m.Keys.Help, m.Keys.Quit),
		PaneWidth: m.paneWidth,
	})
}
