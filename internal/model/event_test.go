package model

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestNewEventStartsPending(t *testing.T) {
	at := time.Date(2024, 1, 10, 9, 0, 0, 0, time.Local)
	ev, err := NewEvent("Standup", at, "", []int{60, 0, 60})
	if err != nil {
		t.Fatalf("new event: %v", err)
	}
	if len(ev.Reminders) != 3 {
		t.Fatalf("expected 3 reminders, got %d", len(ev.Reminders))
	}
	for i, r := range ev.Reminders {
		if r.Fired {
			t.Fatalf("reminder %d should start pending", i)
		}
	}
	if got := ev.ReminderAt(0); !got.Equal(at.Add(-time.Hour)) {
		t.Fatalf("unexpected reminder instant: %s", got)
	}
	if ev.Date() != (Date{Year: 2024, Month: time.January, Day: 10}) {
		t.Fatalf("unexpected date: %s", ev.Date())
	}
}

func TestNewEventRejectsEmptyTitle(t *testing.T) {
	_, err := NewEvent("   ", time.Now(), "", nil)
	if !errors.Is(err, ErrEmptyTitle) {
		t.Fatalf("expected ErrEmptyTitle, got %v", err)
	}
}

func TestNewEventRejectsNegativeOffset(t *testing.T) {
	_, err := NewEvent("Dentist", time.Now(), "", []int{10, -1})
	if !errors.Is(err, ErrNegativeOffset) {
		t.Fatalf("expected ErrNegativeOffset, got %v", err)
	}
}

func TestNewEventTruncatesToSeconds(t *testing.T) {
	at := time.Date(2024, 3, 1, 14, 30, 15, 999, time.Local)
	ev, err := NewEvent("Call", at, "", nil)
	if err != nil {
		t.Fatalf("new event: %v", err)
	}
	if ev.OccursAt.Nanosecond() != 0 {
		t.Fatalf("expected whole seconds, got %s", ev.OccursAt)
	}
}

func TestInheritDelivery(t *testing.T) {
	at := time.Date(2024, 1, 10, 9, 0, 0, 0, time.Local)
	prev, _ := NewEvent("Standup", at, "", []int{60, 0, 60})
	prev.Reminders[0].Fired = true
	prev.Reminders[2].Fired = true

	next, _ := NewEvent("Standup (moved room)", at, "", []int{60, 30, 60, 60})
	next.InheritDelivery(prev)
	want := []bool{true, false, true, false}
	for i, r := range next.Reminders {
		if r.Fired != want[i] {
			t.Fatalf("reminder %d fired=%v, want %v", i, r.Fired, want[i])
		}
	}

	moved, _ := NewEvent("Standup", at.Add(time.Hour), "", []int{60})
	moved.InheritDelivery(prev)
	if moved.Reminders[0].Fired {
		t.Fatal("a rescheduled event must not inherit delivery state")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	ev, _ := NewEvent("Lunch", time.Now(), "", []int{10})
	cp := ev.Clone()
	cp.Reminders[0].Fired = true
	if ev.Reminders[0].Fired {
		t.Fatal("clone shares reminder storage with original")
	}
	if !ev.Equal(cp) {
		t.Fatal("Equal must ignore delivery state")
	}
}

func TestEventString(t *testing.T) {
	at := time.Date(2024, 1, 10, 9, 5, 0, 0, time.Local)
	ev, _ := NewEvent("Standup", at, "daily sync", []int{60, 0})
	got := ev.String()
	for _, part := range []string{"09:05 - Standup", "daily sync", "60min before, at time"} {
		if !strings.Contains(got, part) {
			t.Fatalf("agenda line %q missing %q", got, part)
		}
	}
}
