package equivalence

import "soundcraft/internal/variables"

// Envelope is a gain curve applied over the full artifact duration.
type Envelope string

const (
	// EnvelopeFlat holds unity gain throughout.
	EnvelopeFlat Envelope = "flat"
	// EnvelopeRise climbs linearly from silence to unity.
	EnvelopeRise Envelope = "rise"
	// EnvelopeArc climbs to unity at the midpoint and falls back to
	// silence, both segments linear.
	EnvelopeArc Envelope = "arc"
)

// Gain evaluates the envelope at normalized position x in [0, 1]. All
// shapes are piecewise linear and continuous at segment boundaries.
func (e Envelope) Gain(x float64) float64 {
	if x < 0 {
		x = 0
	}
	if x > 1 {
		x = 1
	}
	switch e {
	case EnvelopeRise:
		return x
	case EnvelopeArc:
		if x < 0.5 {
			return 2 * x
		}
		return 2 * (1 - x)
	default:
		return 1
	}
}

func envelopeForEvolution(evolution string) Envelope {
	switch evolution {
	case variables.EvolutionAscending:
		return EnvelopeRise
	case variables.EvolutionArc:
		return EnvelopeArc
	default:
		return EnvelopeFlat
	}
}
