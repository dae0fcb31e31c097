// Package notify turns due reminders into user-facing notifications.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sandeepkv93/eventd/internal/model"
	"github.com/sandeepkv93/eventd/internal/store"
)

const AppName = "eventd"

type Notification struct {
	Title string
	Body  string
}

type Notifier interface {
	Send(ctx context.Context, n Notification) error
}

type NopNotifier struct{}

func (NopNotifier) Send(context.Context, Notification) error { return nil }

// Headline is the short line shown for a reminder at the given offset.
func Headline(offsetMinutes int) string {
	if offsetMinutes == 0 {
		return "Event happening now!"
	}
	return "Event in " + model.FormatOffset(offsetMinutes)
}

// Message renders a due reminder.
func Message(due store.Due) Notification {
	var b strings.Builder
	fmt.Fprintf(&b, "Event: %s\nTime: %s", due.Event.Title, due.Event.OccursAt.Format(model.DisplayLayout))
	if due.Event.Description != "" {
		b.WriteString("\n\n" + due.Event.Description)
	}
	return Notification{Title: Headline(due.OffsetMinutes), Body: b.String()}
}

// New picks a notifier by config name. An unavailable session bus falls back
// to the exec notifier.
func New(kind string, logger *slog.Logger) Notifier {
	switch kind {
	case "dbus":
		n, err := NewDBusNotifier()
		if err != nil {
			logger.Warn("dbus notifier unavailable, falling back to exec", "err", err)
			return ExecNotifier{}
		}
		return n
	case "exec":
		return ExecNotifier{}
	default:
		return NopNotifier{}
	}
}
