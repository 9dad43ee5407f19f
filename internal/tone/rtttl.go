package tone

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Note is one step of a tune.
type Note struct {
	// Hz is the frequency, zero for a pause.
	Hz uint32
	// Millis is the note length.
	Millis uint32
}

// Tune is a parsed RTTTL melody.
type Tune struct {
	// Name is the tune title from the first section.
	Name string
	// Notes is the melody in playing order.
	Notes []Note
}

const (
	defaultDuration = 4
	defaultOctave   = 6
	defaultBPM      = 63

	minOctave = 4
	maxOctave = 7
	minBPM    = 25
	maxBPM    = 900

	// thirtySecond keeps a whole note divisible down to 1/32.
	thirtySecond = 32
)

// ErrMalformedTune is returned for text that is not RTTTL.
var ErrMalformedTune = errors.New("malformed RTTTL tune")

// frequencies maps pitch plus octave to Hz for C4..B7.
//
//nolint:gochecknoglobals // Lookup table.
var frequencies = map[string]uint32{
	"c4": 262, "c#4": 277, "d4": 294, "d#4": 311, "e4": 330, "f4": 349,
	"f#4": 370, "g4": 392, "g#4": 415, "a4": 440, "a#4": 466, "b4": 494,
	"c5": 523, "c#5": 554, "d5": 587, "d#5": 622, "e5": 659, "f5": 698,
	"f#5": 740, "g5": 784, "g#5": 831, "a5": 880, "a#5": 932, "b5": 988,
	"c6": 1047, "c#6": 1109, "d6": 1175, "d#6": 1245, "e6": 1319, "f6": 1397,
	"f#6": 1480, "g6": 1568, "g#6": 1661, "a6": 1760, "a#6": 1865, "b6": 1976,
	"c7": 2093, "c#7": 2217, "d7": 2349, "d#7": 2489, "e7": 2637, "f7": 2794,
	"f#7": 2960, "g7": 3136, "g#7": 3322, "a7": 3520, "a#7": 3729, "b7": 3951,
}

// Parse decodes "name:d=4,o=5,b=120:8c,8d#.6,p" or the two section form
// "name:notes". Spaces are ignored and case does not matter. Out of range
// defaults fall back to d=4, o=6, b=63.
func Parse(text string) (Tune, error) {
	text = strings.ToLower(strings.ReplaceAll(text, " ", ""))

	parts := strings.Split(text, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return Tune{}, fmt.Errorf("split %d sections: %w", len(parts), ErrMalformedTune)
	}

	name := parts[0]
	if name == "" {
		return Tune{}, fmt.Errorf("empty name: %w", ErrMalformedTune)
	}

	duration, octave, bpm := defaultDuration, defaultOctave, defaultBPM
	if len(parts) == 3 {
		duration, octave, bpm = parseDefaults(parts[1])
	}

	// Four beats per whole note, rounded down to a multiple of a 32nd.
	wholeMillis := uint32(60000*4/bpm) / thirtySecond * thirtySecond

	notes := make([]Note, 0, strings.Count(parts[len(parts)-1], ",")+1)

	for _, token := range strings.Split(parts[len(parts)-1], ",") {
		if token == "" {
			continue
		}

		notes = append(notes, parseNote(token, duration, octave, wholeMillis))
	}

	if len(notes) == 0 {
		return Tune{}, fmt.Errorf("tune %q has no notes: %w", name, ErrMalformedTune)
	}

	return Tune{Name: name, Notes: notes}, nil
}

// MustParse is like Parse but panics on malformed input. It is meant for
// built-in tunes.
func MustParse(text string) Tune {
	t, err := Parse(text)
	if err != nil {
		panic(err)
	}

	return t
}

// Duration returns the total playing time of the tune in milliseconds.
func (t Tune) Duration() uint32 {
	var total uint32
	for _, n := range t.Notes {
		total += n.Millis
	}

	return total
}

func parseDefaults(section string) (duration, octave, bpm int) {
	duration, octave, bpm = defaultDuration, defaultOctave, defaultBPM

	for _, field := range strings.Split(section, ",") {
		key, raw, ok := strings.Cut(field, "=")
		if !ok {
			continue
		}

		value, err := strconv.Atoi(raw)
		if err != nil {
			continue
		}

		switch key {
		case "d":
			if validDuration(value) {
				duration = value
			}
		case "o":
			if value >= minOctave && value <= maxOctave {
				octave = value
			}
		case "b":
			if value >= minBPM && value <= maxBPM {
				bpm = value
			}
		}
	}

	return duration, octave, bpm
}

func validDuration(d int) bool {
	switch d {
	case 1, 2, 4, 8, 16, 32:
		return true
	default:
		return false
	}
}

// parseNote decodes [duration]pitch[#][octave][.] where octave and dot may
// come in either order. Unknown pitches play as pauses.
func parseNote(token string, defDuration, defOctave int, wholeMillis uint32) Note {
	i := 0
	for i < len(token) && strings.IndexByte("123468", token[i]) >= 0 {
		i++
	}

	duration, err := strconv.Atoi(token[:i])
	if err != nil || !validDuration(duration) {
		duration = defDuration
	}

	pitch := "p"
	if i < len(token) && strings.IndexByte("abcdefgp", token[i]) >= 0 {
		pitch = token[i : i+1]
		i++
	}

	octave := ""
	dotted := false

	if pitch != "p" {
		if i < len(token) && token[i] == '#' {
			pitch += "#"
			i++
		}

		for ; i < len(token); i++ {
			switch c := token[i]; {
			case c >= '4' && c <= '7':
				if octave == "" {
					octave = string(c)
				}
			case c == '.':
				dotted = true
			}
		}
	}

	if octave == "" {
		octave = strconv.Itoa(defOctave)
	}

	millis := wholeMillis / uint32(duration)
	if dotted {
		millis += millis / 2
	}

	return Note{
		Hz:     frequencies[pitch+octave],
		Millis: millis,
	}
}
