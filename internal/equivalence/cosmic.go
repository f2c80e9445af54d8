package equivalence

import (
	"fmt"
	"math"
)

// Cycle is one entry of the cosmic cycle table: a long-period natural cycle
// with its period in seconds and base frequency in nanohertz.
type Cycle struct {
	Name          string
	PeriodSeconds float64
	BaseNanoHz    float64
}

// Cycles is the fixed cosmic cycle table, ordered from shortest to longest
// period.
var Cycles = []Cycle{
	{Name: "Sidereal Day", PeriodSeconds: 86164.091, BaseNanoHz: 11605.8},
	{Name: "Synodic Month", PeriodSeconds: 2551443, BaseNanoHz: 391.935},
	{Name: "Tropical Year", PeriodSeconds: 31556925.2, BaseNanoHz: 31.689},
	{Name: "Nodal Cycle", PeriodSeconds: 586953600, BaseNanoHz: 1.704},
	{Name: "Precession", PeriodSeconds: 813532800000, BaseNanoHz: 0.001229},
	{Name: "Galactic Year", PeriodSeconds: 7.1e15, BaseNanoHz: 1.41e-13},
}

// Octave folding band for cosmic frequencies, A1 through A6.
const (
	cosmicFoldMin = 55.0
	cosmicFoldMax = 1760.0
)

// LookupCycle finds a cycle by name.
func LookupCycle(name string) (Cycle, bool) {
	for _, cycle := range Cycles {
		if cycle.Name == name {
			return cycle, true
		}
	}
	return Cycle{}, false
}

// OWMToAudible folds a cosmic frequency into the audible band using the
// octave-wise mapping: the frequency is first scaled so the cycle's base
// lands on 220 Hz, then shifted by whole octaves into [55 Hz, 1760 Hz].
func OWMToAudible(cosmicHz, baseHz float64) (float64, error) {
	if baseHz <= 0 || cosmicHz <= 0 {
		return 0, fmt.Errorf("cosmic and base frequencies must be positive (cosmic=%g base=%g)", cosmicHz, baseHz)
	}
	f := cosmicHz * (220.0 / baseHz)
	if f < cosmicFoldMin {
		k := math.Ceil(math.Log2(cosmicFoldMin / f))
		f *= math.Pow(2, k)
	} else if f > cosmicFoldMax {
		k := math.Ceil(math.Log2(f / cosmicFoldMax))
		f /= math.Pow(2, k)
	}
	return f, nil
}

// CosmicAudible resolves a cycle name and harmonic number into an audible
// frequency.
func CosmicAudible(cycleName string, harmonic int) (float64, error) {
	cycle, ok := LookupCycle(cycleName)
	if !ok {
		return 0, fmt.Errorf("unknown cosmic cycle %q", cycleName)
	}
	if harmonic < 1 {
		return 0, fmt.Errorf("harmonic must be at least 1, got %d", harmonic)
	}
	baseHz := cycle.BaseNanoHz * 1e-9
	harmonicHz := float64(harmonic) * baseHz
	return OWMToAudible(harmonicHz, baseHz)
}

// cosmicAnchorVoice builds the extra drone voice appended when a cosmic
// anchor is declared. The anchor rides below the musical voices at half
// their per-voice gain.
func cosmicAnchorVoice(cycleName string, harmonic int, perVoiceGain float64, envelope Envelope) (VoiceSpec, error) {
	freq, err := CosmicAudible(cycleName, harmonic)
	if err != nil {
		return VoiceSpec{}, err
	}
	return VoiceSpec{
		Oscillators: 1,
		FreqA:       freq,
		Gain:        perVoiceGain / 2,
		Envelope:    envelope,
	}, nil
}
