package equivalence

import "fmt"

// Interval patterns in semitone steps between successive degrees. The sum
// of each pattern is one octave.
var scaleSteps = map[string][]int{
	"Major":      {2, 2, 1, 2, 2, 2, 1},
	"Minor":      {2, 1, 2, 2, 1, 2, 2},
	"Pentatonic": {2, 2, 3, 2, 3},
}

var modeRotation = map[string]int{
	"Ionian":     0,
	"Dorian":     1,
	"Phrygian":   2,
	"Lydian":     3,
	"Mixolydian": 4,
	"Aeolian":    5,
	"Locrian":    6,
}

// ScaleDegrees returns the semitone offsets from the tonic for one octave of
// the requested scale. The mode rotates the interval pattern; for scales
// with fewer degrees than seven the rotation is taken modulo the pattern
// length.
func ScaleDegrees(scaleType, mode string) ([]int, error) {
	steps, ok := scaleSteps[scaleType]
	if !ok {
		return nil, fmt.Errorf("unknown scale type %q", scaleType)
	}
	rotation, ok := modeRotation[mode]
	if !ok {
		return nil, fmt.Errorf("unknown scale mode %q", mode)
	}
	rotation %= len(steps)

	rotated := make([]int, len(steps))
	for i := range steps {
		rotated[i] = steps[(i+rotation)%len(steps)]
	}

	offsets := make([]int, len(rotated))
	total := 0
	for i, step := range rotated {
		offsets[i] = total
		total += step
	}
	return offsets, nil
}
