package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/godbus/dbus/v5"
)

const (
	notifyObj    = "org.freedesktop.Notifications"
	notifyPath   = "/org/freedesktop/Notifications"
	notifyMethod = "org.freedesktop.Notifications.Notify"

	expireDefault = int32(-1)
)

// DBusNotifier talks to org.freedesktop.Notifications on the session bus.
type DBusNotifier struct {
	bus *dbus.Conn
}

func NewDBusNotifier() (*DBusNotifier, error) {
	bus, err := dbus.SessionBus()
	if err != nil {
		return nil, fmt.Errorf("notify: connect session bus: %w", err)
	}
	return &DBusNotifier{bus: bus}, nil
}

func (d *DBusNotifier) Send(ctx context.Context, n Notification) error {
	if d == nil || d.bus == nil {
		return errors.New("notify: dbus notifier is not connected")
	}
	obj := d.bus.Object(notifyObj, dbus.ObjectPath(notifyPath))
	call := obj.CallWithContext(ctx,
		notifyMethod,
		0,
		AppName,
		uint32(0),
		"",
		n.Title,
		n.Body,
		[]string{},
		map[string]dbus.Variant{},
		expireDefault,
	)
	if call.Err != nil {
		return fmt.Errorf("notify: send %q: %w", n.Title, call.Err)
	}
	return nil
}
