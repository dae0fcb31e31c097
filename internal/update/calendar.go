package update

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/eventd/internal/model"
)

func (m Model) handleAgendaKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case m.Keys.PrevDay, "left":
		m.shiftDay(-1)
	case m.Keys.NextDay, "right":
		m.shiftDay(1)
	case m.Keys.Today:
		m.gotoDate(m.today())
	case m.Keys.Up, "up":
		if m.Cursor > 0 {
			m.Cursor--
		}
		m.syncBubbleData()
	case m.Keys.Down, "down":
		if m.Cursor < len(m.Events)-1 {
			m.Cursor++
		}
		m.syncBubbleData()
	case "pgdown":
		m.detailView.SetYOffset(m.detailView.YOffset + m.detailView.Height/2)
	case "pgup":
		m.detailView.SetYOffset(m.detailView.YOffset - m.detailView.Height/2)
	case m.Keys.Add:
		m.openPalette(fmt.Sprintf("add %s ", m.Selected))
	case m.Keys.Edit:
		ev, ok := m.selectedEvent()
		if !ok {
			m.Status = StatusBar{Text: "no event selected", IsError: true}
			break
		}
		m.openPalette(editPrefill(m.Cursor, ev))
	case m.Keys.Delete:
		return m.deleteSelected()
	}
	return m, nil
}

func (m *Model) shiftDay(delta int) {
	m.gotoDate(m.Selected.AddDays(delta))
}

func (m *Model) gotoDate(d model.Date) {
	m.Selected = d
	m.Cursor = 0
	m.refresh()
	m.Status = StatusBar{Text: fmt.Sprintf("day: %s", d.At(0, 0, 0).Format("Mon Jan 02, 2006"))}
}

func (m Model) deleteSelected() (Model, tea.Cmd) {
	if _, ok := m.selectedEvent(); !ok {
		m.Status = StatusBar{Text: "no event selected", IsError: true}
		return m, nil
	}
	removed, err := m.cal.DeleteEvent(m.Selected, m.Cursor)
	if err != nil {
		m.LastError = err
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m, nil
	}
	m.refresh()
	m.Status = StatusBar{Text: fmt.Sprintf("deleted: %s", removed.Title)}
	return m, nil
}

// editPrefill renders ev as an edit command the user can amend.
func editPrefill(index int, ev model.Event) string {
	clock := ev.OccursAt.Format(model.ClockLayout)
	if ev.OccursAt.Second() != 0 {
		clock = ev.OccursAt.Format("15:04:05")
	}
	parts := []string{"edit", fmt.Sprintf("%d", index+1), ev.Date().String(), clock, ev.Title}
	if r := offsetsArg(ev.Offsets()); r != "" {
		parts = append(parts, r)
	}
	if ev.Description != "" {
		parts = append(parts, "--", strings.ReplaceAll(ev.Description, "\n", " "))
	}
	return strings.Join(parts, " ")
}
