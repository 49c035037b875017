//go:build linux

package notify

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDBusNowPlaying(t *testing.T) {
	if os.Getenv("DBUS_SESSION_BUS_ADDRESS") == "" {
		t.Skip("no D-Bus session available")
	}

	notifier, err := New()
	require.NoError(t, err)

	id, err := notifier.Notify(NowPlaying("Test source", "reel test", 0))
	require.NoError(t, err)
	require.NoError(t, notifier.Close(id))
}
