package update

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"

	"github.com/sandeepkv93/eventd/internal/calendar"
	"github.com/sandeepkv93/eventd/internal/model"
	"github.com/sandeepkv93/eventd/internal/store"
)

const defaultReminderHistory = 20

type StatusBar struct {
	Text    string
	IsError bool
}

type GlobalKeyMap struct {
	PrevDay string
	NextDay string
	Today   string
	Up      string
	Down    string
	Add     string
	Edit    string
	Delete  string
	Help    string
	Quit    string
}

type CommandPaletteState struct {
	Active bool
	Input  string
}

// ReminderEntry is one delivered reminder shown in the log panel.
type ReminderEntry struct {
	Title         string
	OccursAt      time.Time
	OffsetMinutes int
	DeliveredAt   time.Time
}

type Model struct {
	Selected    model.Date
	Cursor      int
	Events      []model.Event
	ReminderLog []ReminderEntry
	Palette     CommandPaletteState
	HelpVisible bool
	Status      StatusBar
	Keys        GlobalKeyMap
	Quitting    bool
	LastError   error

	cal     *calendar.Calendar
	log     *slog.Logger
	now     func() time.Time
	history int

	width        int
	paneWidth    int
	agendaList   list.Model
	weekTable    table.Model
	commandInput textinput.Model
	helpModel    help.Model
	detailView   viewport.Model
}

type Options struct {
	Logger *slog.Logger
	Now    func() time.Time
	// ReminderHistory caps the reminder log panel.
	ReminderHistory int
	// Recent seeds the reminder log, oldest first.
	Recent []ReminderEntry
}

type listItem struct {
	title       string
	description string
}

func (i listItem) FilterValue() string { return i.title + " " + i.description }
func (i listItem) Title() string       { return i.title }
func (i listItem) Description() string { return i.description }

type SetStatusMsg struct {
	Text    string
	IsError bool
}

type ClearStatusMsg struct{}

type AppErrorMsg struct {
	Err error
}

// StoreChangedMsg is sent after any committed mutation or reload.
type StoreChangedMsg struct{}

// ReminderDueMsg carries one reminder delivered by the scheduler.
type ReminderDueMsg struct {
	Due store.Due
	At  time.Time
}

type GotoDateMsg struct {
	Date model.Date
}

func NewModel(cal *calendar.Calendar, opts Options) Model {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.ReminderHistory <= 0 {
		opts.ReminderHistory = defaultReminderHistory
	}
	m := Model{
		Selected: model.DateOf(opts.Now()),
		Keys: GlobalKeyMap{
			PrevDay: "h",
			NextDay: "l",
			Today:   "t",
			Up:      "k",
			Down:    "j",
			Add:     "a",
			Edit:    "e",
			Delete:  "x",
			Help:    "?",
			Quit:    "q",
		},
		cal:       cal,
		log:       opts.Logger,
		now:       opts.Now,
		history:   opts.ReminderHistory,
		paneWidth: 58,
	}
	if n := len(opts.Recent); n > 0 {
		start := max(0, n-m.history)
		m.ReminderLog = append([]ReminderEntry(nil), opts.Recent[start:]...)
	}
	m.initBubbleComponents()
	m.refresh()
	return m
}

func (m *Model) initBubbleComponents() {
	m.agendaList = list.New([]list.Item{}, list.NewDefaultDelegate(), m.paneWidth-2, 14)
	m.agendaList.SetShowTitle(false)
	m.agendaList.SetShowHelp(false)
	m.agendaList.SetShowStatusBar(false)
	m.agendaList.SetFilteringEnabled(false)

	cols := []table.Column{
		{Title: "Date", Width: 12},
		{Title: "Day", Width: 4},
		{Title: "#", Width: 3},
		{Title: "First", Width: 28},
	}
	m.weekTable = table.New(table.WithColumns(cols), table.WithRows([]table.Row{}), table.WithHeight(8))

	m.commandInput = textinput.New()
	m.commandInput.Prompt = "/"
	m.commandInput.CharLimit = 512
	m.commandInput.Width = m.paneWidth - 4

	m.helpModel = help.New()
	m.detailView = viewport.New(m.paneWidth-2, 8)
}

// refresh reloads the selected day from the calendar and rebuilds the
// bubble components that mirror it.
func (m *Model) refresh() {
	if m.cal != nil {
		m.Events = m.cal.EventsOn(m.Selected)
	}
	if m.Cursor >= len(m.Events) {
		m.Cursor = len(m.Events) - 1
	}
	if m.Cursor < 0 {
		m.Cursor = 0
	}
	m.syncBubbleData()
}

func (m *Model) syncBubbleData() {
	items := make([]list.Item, 0, len(m.Events))
	for i, ev := range m.Events {
		items = append(items, listItem{
			title:       fmt.Sprintf("%d. %s  %s", i+1, ev.OccursAt.Format(model.ClockLayout), ev.Title),
			description: reminderSummary(ev),
		})
	}
	m.agendaList.SetItems(items)
	if len(items) > 0 {
		m.agendaList.Select(m.Cursor)
	}

	m.weekTable.SetRows(m.weekRows())

	md := ""
	if ev, ok := m.selectedEvent(); ok {
		md = ev.Description
	}
	m.detailView.SetContent(renderDescription(md, m.paneWidth-4))
	m.detailView.GotoTop()

	m.commandInput.SetValue(m.Palette.Input)
	if m.Palette.Active {
		m.commandInput.Focus()
	} else {
		m.commandInput.Blur()
	}
}

func (m Model) weekRows() []table.Row {
	if m.cal == nil {
		return nil
	}
	rows := make([]table.Row, 0, 7)
	for i := 0; i < 7; i++ {
		day := m.Selected.AddDays(i)
		events := m.cal.EventsOn(day)
		first := ""
		if len(events) > 0 {
			first = events[0].OccursAt.Format(model.ClockLayout) + " " + events[0].Title
		}
		rows = append(rows, table.Row{
			day.String(),
			day.At(0, 0, 0).Format("Mon"),
			fmt.Sprintf("%d", len(events)),
			first,
		})
	}
	return rows
}

func (m Model) selectedEvent() (model.Event, bool) {
	if m.Cursor < 0 || m.Cursor >= len(m.Events) {
		return model.Event{}, false
	}
	return m.Events[m.Cursor], true
}

func (m Model) today() model.Date {
	return model.DateOf(m.now())
}
