package device

import (
	"context"

	"github.com/oshokin/findme/internal/domain/alert"
	"github.com/oshokin/findme/internal/edge"
	"github.com/oshokin/findme/internal/logger"
	"github.com/oshokin/findme/internal/radio"
	"github.com/oshokin/findme/internal/tone"
)

// targetCoordinator keeps the device discoverable and sounds local alerts.
type targetCoordinator struct {
	// ctx carries the coordinator logger.
	ctx context.Context
	// radio is the transport.
	radio radio.Transport
	// player sounds the local alert.
	player *tone.Player
	// tunes maps an active severity to its tune name.
	tunes map[alert.Severity]string
	// connected tracks the central connection.
	connected *edge.Detector[bool]
	// advertising tracks the advertising state.
	advertising *edge.Detector[bool]
	// localAlert tracks the alert level written by peers.
	localAlert *edge.Detector[alert.Severity]
}

func newTargetCoordinator(
	ctx context.Context,
	transport radio.Transport,
	player *tone.Player,
	tunes map[alert.Severity]string,
) *targetCoordinator {
	return &targetCoordinator{
		ctx:         logger.WithName(ctx, "target"),
		radio:       transport,
		player:      player,
		tunes:       tunes,
		connected:   edge.New(false),
		advertising: edge.New(false),
		localAlert:  edge.New(alert.None),
	}
}

// Tick keeps advertising in line with the connection and reacts to alert
// level changes.
func (t *targetCoordinator) Tick() {
	connected := t.radio.Connected()
	if _, ok := t.connected.Changed(connected); ok {
		logger.InfoKV(t.ctx, "Connection changed", "connected", connected)
	}

	switch advertising := t.radio.Advertising(); {
	case connected && advertising:
		if err := t.radio.StopAdvertising(); err != nil {
			logger.WarnKV(t.ctx, "Failed to stop advertising", "error", err)
		}
	case !connected && !advertising:
		if err := t.radio.StartAdvertising(); err != nil {
			logger.WarnKV(t.ctx, "Failed to start advertising", "error", err)
		}
	}

	if advertising, ok := t.advertising.Changed(t.radio.Advertising()); ok {
		logger.InfoKV(t.ctx, "Advertising changed", "advertising", advertising)
	}

	level, ok := t.localAlert.Changed(t.radio.LocalAlert())
	if !ok {
		return
	}

	logger.InfoKV(t.ctx, "Local alert changed", "level", level.String())

	if !level.Active() {
		t.player.Stop()
		return
	}

	if name := t.tunes[level]; t.player.Playing() != name {
		t.player.Play(name, true)
	}
}

// ClearAlert resets the local alert level. The tone stops on the next Tick
// through the alert edge.
func (t *targetCoordinator) ClearAlert() {
	if err := t.radio.ResetLocalAlert(); err != nil {
		logger.WarnKV(t.ctx, "Failed to reset local alert", "error", err)
		return
	}

	logger.Info(t.ctx, "Local alert cleared")
}
