package ipcsock

import (
	"bufio"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DJ-Laser/homeslashmusic/internal/dispatcher"
	"github.com/DJ-Laser/homeslashmusic/internal/eventbus"
	"github.com/DJ-Laser/homeslashmusic/internal/player"
	"github.com/DJ-Laser/homeslashmusic/internal/trackcache"
)

func newTestDispatcher(t *testing.T) *dispatcher.Dispatcher {
	t.Helper()
	bus := eventbus.New()
	p, _ := player.New(bus)
	t.Cleanup(func() {
		p.Shutdown()
		bus.Close()
	})
	return dispatcher.New("test", p, trackcache.New())
}

func TestSocketPathUsesOverrideDir(t *testing.T) {
	got := SocketPath("/tmp/custom")
	assert.Equal(t, "/tmp/custom/homeslashmusic.sock", got)
}

func TestServeRoundTripsOneRequest(t *testing.T) {
	dir := t.TempDir()
	d := newTestDispatcher(t)

	srv, err := New(dir, d)
	require.NoError(t, err)

	go srv.Serve()
	defer srv.Shutdown()

	conn, err := net.DialTimeout("unix", SocketPath(dir), time.Second)
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Write([]byte(`{"QueryVersion":null}` + "\n"))
	require.NoError(t, err)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	line, err := bufio.NewReader(conn).ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, `{"Ok":"test"}`+"\n", line)
}

func TestNewRefusesToBindIfSocketExists(t *testing.T) {
	dir := t.TempDir()
	d := newTestDispatcher(t)

	require.NoError(t, os.WriteFile(filepath.Join(dir, socketFilename), nil, 0o600))

	_, err := New(dir, d)
	assert.Error(t, err, "expected New to refuse binding over an existing socket file")
}

func TestShutdownUnlinksSocketFile(t *testing.T) {
	dir := t.TempDir()
	d := newTestDispatcher(t)

	srv, err := New(dir, d)
	require.NoError(t, err)
	go srv.Serve()

	require.NoError(t, srv.Shutdown())

	_, err = os.Stat(SocketPath(dir))
	assert.True(t, os.IsNotExist(err), "expected socket file to be removed, stat err = %v", err)
}
