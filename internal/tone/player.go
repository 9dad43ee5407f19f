package tone

import (
	"context"
	"fmt"

	"github.com/oshokin/findme/internal/board"
	"github.com/oshokin/findme/internal/logger"
	"github.com/oshokin/findme/internal/tick"
)

const (
	// minAudibleHz and maxAudibleHz bound the piezo range (C0 to B8).
	minAudibleHz = 16
	maxAudibleHz = 7902
)

// Player sequences tunes on a piezo without blocking.
type Player struct {
	// ctx carries the player's logger.
	ctx context.Context
	// piezo produces the sound.
	piezo board.Piezo
	// timer ends the current note.
	timer *tick.Timer
	// tunes holds the registered tunes by name.
	tunes map[string]Tune
	// current is the tune being played.
	current *Tune
	// next is the index of the note to play when the timer fires.
	next int
	// repeat restarts the tune after the last note.
	repeat bool
}

// NewPlayer returns a silent player.
func NewPlayer(ctx context.Context, piezo board.Piezo, clock tick.Clock) *Player {
	piezo.Tone(0)

	return &Player{
		ctx:   logger.WithName(ctx, "tone"),
		piezo: piezo,
		timer: tick.NewTimer(clock),
		tunes: make(map[string]Tune),
	}
}

// Load parses text and registers the tune under its own name.
func (p *Player) Load(text string) (string, error) {
	t, err := Parse(text)
	if err != nil {
		return "", fmt.Errorf("load tune: %w", err)
	}

	p.Add(t)

	return t.Name, nil
}

// Add registers a parsed tune, replacing any tune with the same name.
func (p *Player) Add(t Tune) {
	p.tunes[t.Name] = t

	logger.DebugKV(p.ctx, "Tune loaded", "tune", t.Name, "notes", len(t.Notes), "duration_ms", t.Duration())
}

// Play starts the named tune from its first note. Unknown names are logged
// and ignored.
func (p *Player) Play(name string, repeat bool) {
	t, ok := p.tunes[name]
	if !ok {
		logger.WarnKV(p.ctx, "Unknown tune", "tune", name)
		return
	}

	p.current = &t
	p.next = 0
	p.repeat = repeat

	p.timer.Arm(1, false)
	p.timer.Fire()

	logger.DebugKV(p.ctx, "Tune started", "tune", name, "repeat", repeat)
}

// Stop silences the piezo.
func (p *Player) Stop() {
	if p.current != nil {
		logger.DebugKV(p.ctx, "Tune stopped", "tune", p.current.Name)
	}

	p.current = nil
	p.timer.Stop()
	p.piezo.Tone(0)
}

// Playing returns the name of the tune being played, or "".
func (p *Player) Playing() string {
	if p.current == nil {
		return ""
	}

	return p.current.Name
}

// Tick advances the sequencer. Call it on every loop pass.
func (p *Player) Tick() {
	if p.current == nil || !p.timer.Poll() {
		return
	}

	if p.next >= len(p.current.Notes) {
		if !p.repeat {
			p.Stop()
			return
		}

		p.next = 0
	}

	note := p.current.Notes[p.next]
	p.next++

	hz := note.Hz
	if hz < minAudibleHz || hz > maxAudibleHz {
		hz = 0
	}

	p.piezo.Tone(hz)
	p.timer.Arm(max(note.Millis, 1), false)
}
