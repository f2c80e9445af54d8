package equivalence

import (
	"fmt"
	"math"

	"soundcraft/internal/variables"
)

// PolicyVersion identifies the pinned table values below. Changing any
// constant requires a version bump so rendered artifacts stay reproducible.
const PolicyVersion = "v1"

// beatTable maps intent polarity to the binaural beat frequency in Hz.
// Entries follow the classic brainwave-band associations: delta for
// grounding, theta for healing and release, alpha for clarity, and beta for
// expansion and activation.
var beatTable = map[string]float64{
	variables.PolarityGrounding:  2.0,
	variables.PolarityHealing:    4.0,
	variables.PolarityRelease:    6.0,
	variables.PolarityClarity:    8.0,
	variables.PolarityExpansion:  10.0,
	variables.PolarityActivation: 14.0,
}

// gainTable maps invocation intensity to the post-envelope voice gain.
var gainTable = map[string]float64{
	variables.IntensitySubtle:   0.1,
	variables.IntensityBalanced: 0.2,
	variables.IntensityPowerful: 0.35,
}

// BeatFrequency returns the binaural beat delta for an intent polarity.
func BeatFrequency(polarity string) (float64, error) {
	beat, ok := beatTable[polarity]
	if !ok {
		return 0, fmt.Errorf("unknown intent polarity %q", polarity)
	}
	return beat, nil
}

// IntensityGain returns the amplitude for an invocation intensity.
func IntensityGain(intensity string) (float64, error) {
	gain, ok := gainTable[intensity]
	if !ok {
		return 0, fmt.Errorf("unknown invocation intensity %q", intensity)
	}
	return gain, nil
}

// VelocityForGain derives a MIDI velocity from a voice gain. The factor
// places the Balanced gain (0.2) at velocity 64, the center of the MIDI
// range.
func VelocityForGain(gain float64) int {
	velocity := int(math.Round(gain * 320))
	if velocity < 1 {
		velocity = 1
	}
	if velocity > 127 {
		velocity = 127
	}
	return velocity
}
