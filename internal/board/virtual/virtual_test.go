package virtual

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/findme/internal/board"
)

// TestTapProducesPressAndRelease checks a tap yields one press and one release edge.
func TestTapProducesPressAndRelease(t *testing.T) {
	t.Parallel()

	b := NewBoard()
	b.TapHigh()

	require.Equal(t, board.EdgePressed, b.High.Read())
	require.Equal(t, board.EdgeReleased, b.High.Read())
	require.Equal(t, board.EdgeNone, b.High.Read())
	require.Equal(t, board.EdgeNone, b.Mild.Read())
}

// TestLEDsReachPins verifies LED writes land on the virtual output pins.
func TestLEDsReachPins(t *testing.T) {
	t.Parallel()

	b := NewBoard()
	b.LedA.Write(true)

	require.True(t, b.LedAPin.Level())
	require.False(t, b.LedBPin.Level())
}

// TestPiezoCountsNotes counts only frequency changes.
func TestPiezoCountsNotes(t *testing.T) {
	t.Parallel()

	p := new(Piezo)
	p.Tone(440)
	p.Tone(440)
	p.Tone(0)

	require.Zero(t, p.Frequency())
	require.Equal(t, 2, p.Notes())
}
