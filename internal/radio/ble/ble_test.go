package ble

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"tinygo.org/x/bluetooth"

	"github.com/oshokin/findme/internal/domain/alert"
	"github.com/oshokin/findme/internal/radio"
)

var (
	peerAddr    = radio.Address{0xF1, 0xD0, 0x00, 0x00, 0x00, 0x01}
	centralAddr = radio.Address{0xC0, 0xFF, 0xEE, 0x00, 0x00, 0x01}
)

// TestLink_ConnectedUntilAdapterEvent keeps a link connected after Disconnect until the event arrives.
func TestLink_ConnectedUntilAdapterEvent(t *testing.T) {
	t.Parallel()

	tr := newTransport(context.Background())

	var closes int

	l := tr.track(peerAddr, bluetooth.Device{}, func() error {
		closes++
		return nil
	})

	require.True(t, l.Connected())
	require.NoError(t, l.Disconnect())
	require.NoError(t, l.Disconnect())
	require.Equal(t, 1, closes)

	// The adapter has not released the link yet.
	require.True(t, l.Connected())

	level := &alertLevel{link: l}
	require.ErrorIs(t, level.Write(alert.High), radio.ErrNotConnected)

	tr.connectionChanged(peerAddr, false)
	require.False(t, l.Connected())
	require.NotContains(t, tr.outbound, peerAddr)
	require.False(t, tr.Connected())
}

// TestLink_DisconnectError leaves the link usable when the adapter refuses.
func TestLink_DisconnectError(t *testing.T) {
	t.Parallel()

	tr := newTransport(context.Background())
	errRefused := errors.New("refused")

	l := tr.track(peerAddr, bluetooth.Device{}, func() error { return errRefused })

	require.ErrorIs(t, l.Disconnect(), errRefused)
	require.True(t, l.Connected())
	require.True(t, l.usable())
}

// TestConnectionChanged_TracksCentrals separates incoming centrals from outbound links.
func TestConnectionChanged_TracksCentrals(t *testing.T) {
	t.Parallel()

	tr := newTransport(context.Background())
	tr.advertising = true

	// A connect event during Connect belongs to the pending outbound link.
	tr.outbound[peerAddr] = nil
	tr.connectionChanged(peerAddr, true)
	require.False(t, tr.Connected())

	tr.connectionChanged(centralAddr, true)
	require.True(t, tr.Connected())
	require.False(t, tr.Advertising())

	tr.connectionChanged(centralAddr, false)
	require.False(t, tr.Connected())
}
