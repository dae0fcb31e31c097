package ics

import (
	"bytes"
	"strings"
	"testing"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandeepkv93/eventd/internal/model"
	"github.com/sandeepkv93/eventd/internal/store"
)

func TestExportWritesOneAlarmPerReminder(t *testing.T) {
	d := model.Date{Year: 2024, Month: time.January, Day: 10}
	s := store.New()
	standup, err := model.NewEvent("Standup", d.At(9, 0, 0), "daily sync", []int{60, 0})
	require.NoError(t, err)
	lunch, err := model.NewEvent("Lunch", d.At(12, 30, 0), "", nil)
	require.NoError(t, err)
	s.Add(d, standup)
	s.Add(d, lunch)

	var buf bytes.Buffer
	require.NoError(t, Export(&buf, s.All(), time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
	out := buf.String()

	assert.Equal(t, 2, strings.Count(out, "BEGIN:VEVENT"))
	assert.Equal(t, 2, strings.Count(out, "BEGIN:VALARM"))
	assert.Contains(t, out, "TRIGGER:-PT60M")
	assert.Contains(t, out, "TRIGGER:-PT0M")
	assert.Contains(t, out, "SUMMARY:Standup")
	assert.Contains(t, out, "METHOD:PUBLISH")

	cal, err := ical.ParseCalendar(strings.NewReader(out))
	require.NoError(t, err)
	events := cal.Events()
	require.Len(t, events, 2)
	assert.Equal(t, "Lunch", events[1].GetProperty(ical.ComponentPropertySummary).Value)
}

func TestUIDIsStableAndDistinct(t *testing.T) {
	a := UID("2024-01-10|Standup|09:00||60", 0)
	assert.Equal(t, a, UID("2024-01-10|Standup|09:00||60", 0))
	assert.NotEqual(t, a, UID("2024-01-10|Standup|09:00||60", 1))
	assert.True(t, strings.HasSuffix(a, "@eventd"))
}

func TestDuplicateEventsGetDistinctUIDs(t *testing.T) {
	d := model.Date{Year: 2024, Month: time.March, Day: 1}
	ev, err := model.NewEvent("Pills", d.At(8, 0, 0), "", []int{0})
	require.NoError(t, err)
	s := store.New()
	s.Add(d, ev)
	s.Add(d, ev)

	cal := Build(s.All(), time.Now())
	events := cal.Events()
	require.Len(t, events, 2)
	assert.NotEqual(t, events[0].Id(), events[1].Id())
}
