package integration

import (
	"bytes"
	"context"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/findme/internal/config"
	"github.com/oshokin/findme/internal/service/client"
	"github.com/oshokin/findme/internal/service/control"
	"github.com/oshokin/findme/internal/service/server"
)

// reservePort returns a loopback address with a currently free port.
func reservePort(t *testing.T) string {
	t.Helper()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	addr := l.Addr().String()
	_ = l.Close()

	return addr
}

// startTag runs a tag on the air radio with a temporary config file.
// Returns the config path and a stop function that waits for Run to return.
func startTag(t *testing.T, addr string) (cfgPath string, stop func()) {
	t.Helper()

	// Create cancellable context for tag lifecycle.
	ctx, cancel := context.WithCancel(context.Background())
	cfgPath = filepath.Join(t.TempDir(), "settings.yaml")

	settings := config.Default()
	settings.ControlAddress = addr
	settings.Radio = config.RadioAir
	settings.LogLevel = "error"

	require.NoError(t, config.Save(cfgPath, settings))

	done := make(chan error, 1)

	go func() {
		done <- server.Run(ctx, &server.Options{ConfigPath: cfgPath})
	}()

	// Wait briefly for the control plane to start listening.
	time.Sleep(150 * time.Millisecond)

	return cfgPath, func() {
		cancel()

		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("tag did not stop")
		}
	}
}

// field reads a string status field.
func field(ctx context.Context, t *testing.T, c *control.Client, key string) string {
	t.Helper()

	st, err := c.Status(ctx)
	require.NoError(t, err)

	return st.GetFields()[key].GetStringValue()
}

// TestControl_Roundtrip drives a running tag through the control plane.
func TestControl_Roundtrip(t *testing.T) {
	t.Parallel()

	addr := reservePort(t)

	_, stop := startTag(t, addr)
	defer stop()

	ctx := context.Background()

	c, err := control.Dial(ctx, addr, control.WithCallTimeout(3*time.Second))
	require.NoError(t, err)

	defer func() {
		_ = c.Close()
	}()

	require.Equal(t, "target", field(ctx, t, c, "role"))

	// A peer write is played; a button release clears it.
	require.NoError(t, c.WriteAlert(ctx, "mild"))
	require.Eventually(t, func() bool {
		return field(ctx, t, c, "local_alert") == "mild" && field(ctx, t, c, "playing") != ""
	}, 2*time.Second, 20*time.Millisecond)

	require.NoError(t, c.PressButton(ctx, "high"))
	require.Eventually(t, func() bool {
		return field(ctx, t, c, "local_alert") == "none"
	}, 2*time.Second, 20*time.Millisecond)
	require.Equal(t, "target", field(ctx, t, c, "role"))

	// Without a local alert the press starts locating, the next one cancels.
	require.NoError(t, c.PressButton(ctx, "high"))
	require.Eventually(t, func() bool {
		return field(ctx, t, c, "role") == "locating" && field(ctx, t, c, "severity") == "high"
	}, 2*time.Second, 20*time.Millisecond)

	require.NoError(t, c.PressButton(ctx, "mild"))
	require.Eventually(t, func() bool {
		return field(ctx, t, c, "role") == "target"
	}, 10*time.Second, 50*time.Millisecond)

	require.Error(t, c.PressButton(ctx, "loud"))
}

// TestClient_Commands runs the findme-ctl commands against a running tag.
func TestClient_Commands(t *testing.T) {
	t.Parallel()

	addr := reservePort(t)

	cfgPath, stop := startTag(t, addr)
	defer stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, client.Run(ctx, &client.Options{
		ConfigPath: cfgPath,
		Action:     client.ActionAlert,
		Argument:   "high",
		Wait:       true,
	}))

	var out bytes.Buffer

	require.NoError(t, client.Run(ctx, &client.Options{
		ConfigPath: cfgPath,
		Action:     client.ActionStatus,
		Out:        &out,
	}))
	require.Contains(t, out.String(), "local_alert: high")
	require.Contains(t, out.String(), "role: target")

	out.Reset()

	require.NoError(t, client.Run(ctx, &client.Options{
		ConfigPath: cfgPath,
		Action:     client.ActionStatus,
		JSON:       true,
		Out:        &out,
	}))
	require.Contains(t, out.String(), `"local_alert"`)
}
