package model

import (
	"errors"
	"testing"
)

func TestReminderValidateNegativeOffset(t *testing.T) {
	err := Reminder{OffsetMinutes: -5}.Validate()
	if !errors.Is(err, ErrNegativeOffset) {
		t.Fatalf("expected ErrNegativeOffset, got %v", err)
	}
	if err := (Reminder{OffsetMinutes: 0}).Validate(); err != nil {
		t.Fatalf("zero offset should be valid: %v", err)
	}
}

func TestFormatOffset(t *testing.T) {
	cases := []struct {
		in   int
		want string
	}{
		{0, "0 minute(s)"},
		{10, "10 minute(s)"},
		{60, "1 hour(s)"},
		{150, "2 hour(s)"},
		{1440, "1 day(s)"},
		{4320, "3 day(s)"},
	}
	for _, tc := range cases {
		if got := FormatOffset(tc.in); got != tc.want {
			t.Fatalf("FormatOffset(%d) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestReminderLabel(t *testing.T) {
	if got := (Reminder{}).Label(); got != "at time" {
		t.Fatalf("unexpected label for zero offset: %q", got)
	}
	if got := (Reminder{OffsetMinutes: 30}).Label(); got != "30min before" {
		t.Fatalf("unexpected label: %q", got)
	}
}
