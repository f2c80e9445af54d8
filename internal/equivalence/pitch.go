package equivalence

import (
	"fmt"
	"math"

	"soundcraft/internal/variables"
)

// Reference pitch constants. Both tunings are first-class; the reference is
// a Tier I variable, not a label.
const (
	RefFreqA440 = 440.0
	RefFreqA432 = 432.0
)

// MIDI note 69 is A4.
const midiA4 = 69

// Audible band for octave folding of arbitrary cycle rates (C0 up to the
// nominal limit of hearing).
const (
	minAudibleHz = 16.35
	maxAudibleHz = 20000.0
)

// ReferenceFreq resolves a reference pitch choice into its A4 frequency.
func ReferenceFreq(choice string) (float64, error) {
	switch choice {
	case variables.RefA440:
		return RefFreqA440, nil
	case variables.RefA432:
		return RefFreqA432, nil
	default:
		return 0, fmt.Errorf("unknown reference pitch %q", choice)
	}
}

// NoteToFreq converts a MIDI note number to a frequency under the given A4
// reference, using equal temperament.
func NoteToFreq(note int, a4 float64) float64 {
	return a4 * math.Pow(2, float64(note-midiA4)/12.0)
}

// FreqToNote converts a frequency to a fractional MIDI note number under the
// given A4 reference.
func FreqToNote(freq, a4 float64) float64 {
	return float64(midiA4) + 12.0*math.Log2(freq/a4)
}

// NearestNote snaps a frequency to the nearest equal-tempered note and
// returns the note number together with its exact frequency.
func NearestNote(freq, a4 float64) (int, float64) {
	note := int(math.Round(FreqToNote(freq, a4)))
	return note, NoteToFreq(note, a4)
}

// CycleToHz maps an arbitrary cycle rate (events per second) into the
// audible band by octave translation.
func CycleToHz(cycleRate float64) (float64, error) {
	if cycleRate <= 0 {
		return 0, fmt.Errorf("cycle rate must be positive, got %g", cycleRate)
	}
	hz := cycleRate
	for hz < minAudibleHz {
		hz *= 2.0
	}
	for hz > maxAudibleHz {
		hz /= 2.0
	}
	return hz, nil
}

var semitoneFromC = map[string]int{
	"C": 0, "C#": 1, "D": 2, "D#": 3, "E": 4, "F": 5,
	"F#": 6, "G": 7, "G#": 8, "A": 9, "A#": 10, "B": 11,
}

// rootNote returns the MIDI note of the key signature's tonic in the fourth
// octave (C4 = 60).
func rootNote(key string) (int, error) {
	offset, ok := semitoneFromC[key]
	if !ok {
		return 0, fmt.Errorf("unknown key signature %q", key)
	}
	return 60 + offset, nil
}
