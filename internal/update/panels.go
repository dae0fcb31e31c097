package update

import (
	"github.com/sandeepkv93/eventd/internal/model"
	"github.com/sandeepkv93/eventd/internal/views"
)

func (m Model) renderAgendaPanel() string {
	return views.RenderAgendaPanel(views.AgendaPanelData{
		DateLabel: m.Selected.At(0, 0, 0).Format("Mon Jan 02, 2006"),
		IsToday:   m.Selected == m.today(),
		ListView:  m.agendaList.View(),
		Count:     len(m.Events),
	})
}

func (m Model) renderDetailPanel() string {
	ev, ok := m.selectedEvent()
	if !ok {
		return views.RenderDetailPanel(views.DetailPanelData{})
	}
	reminders := make([]views.ReminderData, 0, len(ev.Reminders))
	for _, r := range ev.Reminders {
		reminders = append(reminders, views.ReminderData{Label: r.Label(), Fired: r.Fired})
	}
	return views.RenderDetailPanel(views.DetailPanelData{
		Number:       m.Cursor + 1,
		Title:        ev.Title,
		When:         ev.OccursAt.Format(model.DisplayLayout),
		Reminders:    reminders,
		Pending:      ev.PendingCount(),
		ViewportView: m.detailView.View(),
	})
}

func (m Model) renderWeekPanel() string {
	return views.RenderWeekPanel(m.weekTable.View())
}

func (m Model) renderCommandPalette() string {
	return views.RenderCommandPalette(m.Palette.Active, m.commandInput.View())
}
