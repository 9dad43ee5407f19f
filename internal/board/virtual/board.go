package virtual

import (
	"github.com/oshokin/findme/internal/board"
)

// Board is a board.Board backed by virtual pins, with access to the pins.
type Board struct {
	board.Board

	// HighPin is the high button input.
	HighPin *Pin
	// MildPin is the mild button input.
	MildPin *Pin
	// LedAPin is the radio indicator output.
	LedAPin *Pin
	// LedBPin is the alert indicator output.
	LedBPin *Pin
	// Speaker is the virtual piezo.
	Speaker *Piezo
}

// NewBoard wires virtual pins into a board with active-high buttons and LEDs.
func NewBoard() *Board {
	b := &Board{
		HighPin: NewPin(false),
		MildPin: NewPin(false),
		LedAPin: NewPin(false),
		LedBPin: NewPin(false),
		Speaker: new(Piezo),
	}

	b.Board = board.Board{
		High:  board.NewButton(b.HighPin, false),
		Mild:  board.NewButton(b.MildPin, false),
		LedA:  board.NewLED(b.LedAPin, false),
		LedB:  board.NewLED(b.LedBPin, false),
		Piezo: b.Speaker,
	}

	return b
}

// TapHigh presses and releases the high button.
func (b *Board) TapHigh() {
	b.HighPin.Tap(true)
}

// TapMild presses and releases the mild button.
func (b *Board) TapMild() {
	b.MildPin.Tap(true)
}
