//go:build linux

package notify

import (
	"os"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	method string
	args   []any
}

type fakeBus struct {
	calls []call
	reply *dbus.Call
}

func (f *fakeBus) Call(method string, _ dbus.Flags, args ...any) *dbus.Call {
	f.calls = append(f.calls, call{method: method, args: args})
	if f.reply != nil {
		return f.reply
	}
	return &dbus.Call{}
}

func TestNotifyArgs_Layout(t *testing.T) {
	args := notifyArgs(Notification{
		Title:      "One",
		Body:       "Artist - Album",
		Icon:       "/music/cover.jpg",
		Timeout:    trackTimeout,
		ReplacesID: 9,
		Urgency:    UrgencyLow,
	})
	require.Len(t, args, 8)
	assert.Equal(t, "Cadence", args[0])
	assert.Equal(t, uint32(9), args[1])
	assert.Equal(t, "/music/cover.jpg", args[2])
	assert.Equal(t, "One", args[3])
	assert.Equal(t, "Artist - Album", args[4])
	assert.Equal(t, []string{}, args[5])
	assert.Equal(t, int32(trackTimeout), args[7])

	h, ok := args[6].(map[string]dbus.Variant)
	require.True(t, ok)
	assert.Equal(t, byte(UrgencyLow), h["urgency"].Value())
	assert.Equal(t, "cadence", h["desktop-entry"].Value())
	assert.Equal(t, "file:///music/cover.jpg", h["image-path"].Value())
	assert.Equal(t, true, h["transient"].Value())
}

func TestHints_IconNameAndCritical(t *testing.T) {
	h := hints(Notification{Icon: "audio-x-generic", Timeout: 1000, Urgency: UrgencyCritical})
	assert.NotContains(t, h, "image-path")
	assert.NotContains(t, h, "transient")
	assert.Equal(t, byte(UrgencyCritical), h["urgency"].Value())

	h = hints(Notification{Timeout: 0, Urgency: UrgencyLow})
	assert.NotContains(t, h, "transient", "sticky notifications stay in history")
}

func TestEscapeBody(t *testing.T) {
	assert.Equal(t, "Rock &amp; Roll &lt;live&gt;", escapeBody("Rock & Roll <live>"))
	assert.Equal(t, "plain", escapeBody("plain"))
}

func TestDBus_NotifyReturnsDaemonID(t *testing.T) {
	bus := &fakeBus{reply: &dbus.Call{Body: []any{uint32(42)}}}
	d := &DBus{obj: bus}

	id, err := d.Notify(Notification{Title: "One", ReplacesID: 41})
	require.NoError(t, err)
	assert.Equal(t, uint32(42), id)
	require.Len(t, bus.calls, 1)
	assert.Equal(t, "org.freedesktop.Notifications.Notify", bus.calls[0].method)
	assert.Equal(t, uint32(41), bus.calls[0].args[1])
}

func TestDBus_NotifyError(t *testing.T) {
	d := &DBus{obj: &fakeBus{reply: &dbus.Call{Err: errors.New("no daemon")}}}

	id, err := d.Notify(Notification{Title: "One"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no daemon")
	assert.Zero(t, id)
}

func TestDBus_Close(t *testing.T) {
	bus := &fakeBus{}
	d := &DBus{obj: bus}

	require.NoError(t, d.Close(0))
	assert.Empty(t, bus.calls)

	require.NoError(t, d.Close(5))
	require.Len(t, bus.calls, 1)
	assert.Equal(t, "org.freedesktop.Notifications.CloseNotification", bus.calls[0].method)
	assert.Equal(t, []any{uint32(5)}, bus.calls[0].args)
}

func TestNew_SessionBus(t *testing.T) {
	if os.Getenv("DBUS_SESSION_BUS_ADDRESS") == "" {
		t.Skip("no D-Bus session available")
	}
	d, err := New()
	if errors.Is(err, ErrUnavailable) {
		t.Skip("session bus unreachable")
	}
	require.NoError(t, err)
	assert.NotNil(t, d)
}
