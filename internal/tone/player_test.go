package tone

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/findme/internal/board/virtual"
	"github.com/oshokin/findme/internal/tick"
)

const testTune = "t:d=4,o=5,b=250:c,p,e"

// newTestPlayer returns a player with testTune loaded.
func newTestPlayer(t *testing.T) (*Player, *virtual.Piezo, *tick.ManualClock) {
	t.Helper()

	piezo := new(virtual.Piezo)
	clock := tick.NewManualClock(0)
	p := NewPlayer(context.Background(), piezo, clock)

	name, err := p.Load(testTune)
	require.NoError(t, err)
	require.Equal(t, "t", name)

	return p, piezo, clock
}

// TestPlayer_SequencesNotes plays each note for its length and stops at the end.
func TestPlayer_SequencesNotes(t *testing.T) {
	t.Parallel()

	p, piezo, clock := newTestPlayer(t)

	p.Play("t", false)
	require.Equal(t, "t", p.Playing())

	// Quarter note at b=250 is 960/4 = 240 ms.
	p.Tick()
	require.Equal(t, uint32(523), piezo.Frequency())

	clock.Advance(239 * time.Millisecond)
	p.Tick()
	require.Equal(t, uint32(523), piezo.Frequency())

	clock.Advance(time.Millisecond)
	p.Tick()
	require.Zero(t, piezo.Frequency())

	clock.Advance(240 * time.Millisecond)
	p.Tick()
	require.Equal(t, uint32(659), piezo.Frequency())

	clock.Advance(240 * time.Millisecond)
	p.Tick()
	require.Zero(t, piezo.Frequency())
	require.Empty(t, p.Playing())
}

// TestPlayer_Repeat loops back to the first note.
func TestPlayer_Repeat(t *testing.T) {
	t.Parallel()

	p, piezo, clock := newTestPlayer(t)
	p.Play("t", true)
	p.Tick()

	for range 3 {
		clock.Advance(240 * time.Millisecond)
		p.Tick()
	}

	require.Equal(t, "t", p.Playing())
	require.Equal(t, uint32(523), piezo.Frequency())
}

// TestPlayer_StopAndUnknown silences on Stop and ignores unknown tunes.
func TestPlayer_StopAndUnknown(t *testing.T) {
	t.Parallel()

	p, piezo, _ := newTestPlayer(t)

	p.Play("missing", true)
	require.Empty(t, p.Playing())

	p.Play("t", false)
	p.Tick()
	require.NotZero(t, piezo.Frequency())

	p.Stop()
	require.Zero(t, piezo.Frequency())
	require.Empty(t, p.Playing())

	p.Tick()
	require.Zero(t, piezo.Frequency())
}

// TestPlayer_LoadRejectsMalformed wraps parse errors.
func TestPlayer_LoadRejectsMalformed(t *testing.T) {
	t.Parallel()

	p, _, _ := newTestPlayer(t)

	_, err := p.Load("garbage")
	require.ErrorIs(t, err, ErrMalformedTune)
}
