package update

import (
	"fmt"
	"time"

	"github.com/sandeepkv93/eventd/internal/notify"
	"github.com/sandeepkv93/eventd/internal/views"
)

// recordReminder appends a delivered reminder to the log panel and surfaces
// it in the status bar.
func (m *Model) recordReminder(msg ReminderDueMsg) {
	at := msg.At
	if at.IsZero() {
		at = m.now()
	}
	m.ReminderLog = append(m.ReminderLog, ReminderEntry{
		Title:         msg.Due.Event.Title,
		OccursAt:      msg.Due.Event.OccursAt,
		OffsetMinutes: msg.Due.OffsetMinutes,
		DeliveredAt:   at,
	})
	if len(m.ReminderLog) > m.history {
		m.ReminderLog = m.ReminderLog[len(m.ReminderLog)-m.history:]
	}
	m.Status = StatusBar{Text: fmt.Sprintf("%s %s", notify.Headline(msg.Due.OffsetMinutes), msg.Due.Event.Title)}
}

func (m Model) renderReminderLog() string {
	entries := make([]views.ReminderLogEntry, 0, len(m.ReminderLog))
	for _, e := range m.ReminderLog {
		entries = append(entries, views.ReminderLogEntry{
			At:       e.DeliveredAt.Format(time.TimeOnly),
			Headline: notify.Headline(e.OffsetMinutes),
			Title:    fmt.Sprintf("%s (%s)", e.Title, e.OccursAt.Format("Jan 02 15:04")),
		})
	}
	return views.RenderReminderLog(entries)
}
