//go:build linux

package notify

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/godbus/dbus/v5"
)

const (
	busName      = "org.freedesktop.Notifications"
	busPath      = "/org/freedesktop/Notifications"
	appName      = "Cadence"
	desktopEntry = "cadence"
)

// caller is the part of dbus.BusObject the notifier uses.
type caller interface {
	Call(method string, flags dbus.Flags, args ...any) *dbus.Call
}

// DBus posts notifications to the freedesktop notification daemon.
type DBus struct {
	obj caller
}

// New connects to the session bus. It returns ErrUnavailable when there is
// no session bus.
func New() (*DBus, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "session bus"), ErrUnavailable)
	}
	return &DBus{obj: conn.Object(busName, busPath)}, nil
}

// Notify posts n and returns the id the daemon assigned to it.
func (d *DBus) Notify(n Notification) (uint32, error) {
	var id uint32
	if err := d.obj.Call(busName+".Notify", 0, notifyArgs(n)...).Store(&id); err != nil {
		return 0, errors.Wrap(err, "notify")
	}
	return id, nil
}

// Close withdraws notification id. Zero is ignored.
func (d *DBus) Close(id uint32) error {
	if id == 0 {
		return nil
	}
	if err := d.obj.Call(busName+".CloseNotification", 0, id).Err; err != nil {
		return errors.Wrapf(err, "close notification %d", id)
	}
	return nil
}

// notifyArgs lays out n as the arguments of
// Notify(app_name, replaces_id, app_icon, summary, body, actions, hints, expire_timeout).
func notifyArgs(n Notification) []any {
	return []any{
		appName,
		n.ReplacesID,
		n.Icon,
		n.Title,
		escapeBody(n.Body),
		[]string{},
		hints(n),
		n.Timeout,
	}
}

func hints(n Notification) map[string]dbus.Variant {
	h := map[string]dbus.Variant{
		"urgency":       dbus.MakeVariant(byte(n.Urgency)),
		"desktop-entry": dbus.MakeVariant(desktopEntry),
	}
	if strings.HasPrefix(n.Icon, "/") {
		h["image-path"] = dbus.MakeVariant("file://" + n.Icon)
	}
	// Track changes expire on their own; keep them out of the history.
	if n.Timeout > 0 && n.Urgency == UrgencyLow {
		h["transient"] = dbus.MakeVariant(true)
	}
	return h
}

var bodyEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// escapeBody keeps titles like "Rock & Roll" from being read as markup.
func escapeBody(s string) string { return bodyEscaper.Replace(s) }

var _ Notifier = (*DBus)(nil)
