package equivalence

import (
	"fmt"
	"math"

	"soundcraft/internal/fulfillment"
	"soundcraft/internal/services"
	"soundcraft/internal/variables"
)

// SampleFormat selects the WAV sample encoding.
type SampleFormat string

const (
	FormatPCM16   SampleFormat = "pcm16"
	FormatFloat32 SampleFormat = "float32"
)

// VoiceSpec describes one synthesized voice. A single-oscillator voice uses
// FreqA only. A dual-oscillator (binaural) voice places FreqA below and
// FreqB above the carrier so that FreqB-FreqA equals the beat delta; in a
// stereo plan FreqA is delivered to the left channel and FreqB to the
// right, in a mono plan both are summed at equal weight.
type VoiceSpec struct {
	Oscillators int
	FreqA       float64
	FreqB       float64
	Gain        float64
	Envelope    Envelope
}

// NoteEvent is one sustained note in the MIDI export timeline.
type NoteEvent struct {
	Key           int
	StartTick     int
	DurationTicks int
	Velocity      int
}

// RenderPlan is the fully resolved, purely numeric description the
// synthesis engine and exporters consume.
type RenderPlan struct {
	SampleRate      int
	Channels        int
	TotalSamples    int
	Format          SampleFormat
	TempoBPM        int
	TicksPerQuarter int
	TotalTicks      int
	Voices          []VoiceSpec
	Notes           []NoteEvent
}

// DurationSeconds returns the plan duration derived from the sample count.
func (p RenderPlan) DurationSeconds() float64 {
	return float64(p.TotalSamples) / float64(p.SampleRate)
}

// Options carries renderer-level settings that are not ritual variables.
type Options struct {
	SampleRate      int
	TicksPerQuarter int
}

// Map resolves a parameter set into a render plan. It is deterministic:
// identical inputs yield identical plans.
//
// Map must only be called with a parameter set built by the fulfillment
// machine. A set missing Tier I values indicates an integration bug and
// fails loudly with the services.ErrMapping marker rather than substituting
// defaults.
func Map(params fulfillment.ParameterSet, opts Options) (RenderPlan, error) {
	if opts.SampleRate <= 0 {
		opts.SampleRate = 48000
	}
	if opts.TicksPerQuarter <= 0 {
		opts.TicksPerQuarter = 480
	}

	for _, id := range variables.RequiredIDs() {
		if value, ok := params.Get(id); !ok || value == "" {
			return RenderPlan{}, services.Wrap(services.ErrMapping, "equivalence", "map",
				fmt.Sprintf("parameter set missing mandatory variable %s", id), nil)
		}
	}

	key, _ := params.Get(variables.KeySignature)
	scaleType, _ := params.Get(variables.ScaleType)
	scaleMode, _ := params.Get(variables.ScaleMode)
	refChoice, _ := params.Get(variables.ReferencePitch)
	lengthRaw, _ := params.Get(variables.OutputLength)
	instrumentation, _ := params.Get(variables.Instrumentation)

	tempo, err := params.ResolveInt(variables.Tempo)
	if err != nil {
		return RenderPlan{}, services.Wrap(services.ErrMapping, "equivalence", "map", "tempo is not numeric", err)
	}
	refFreq, err := ReferenceFreq(refChoice)
	if err != nil {
		return RenderPlan{}, services.Wrap(services.ErrMapping, "equivalence", "map", "", err)
	}
	root, err := rootNote(key)
	if err != nil {
		return RenderPlan{}, services.Wrap(services.ErrMapping, "equivalence", "map", "", err)
	}
	degrees, err := ScaleDegrees(scaleType, scaleMode)
	if err != nil {
		return RenderPlan{}, services.Wrap(services.ErrMapping, "equivalence", "map", "", err)
	}
	length, err := variables.ParseLength(lengthRaw)
	if err != nil {
		return RenderPlan{}, services.Wrap(services.ErrMapping, "equivalence", "map", "", err)
	}

	// Optional tiers resolve to their documented neutral defaults.
	spatial, _ := params.Resolve(variables.SpatialMode)
	polarity, _ := params.Resolve(variables.IntentPolarity)
	intensity, _ := params.Resolve(variables.InvocationIntensity)
	evolution, _ := params.Resolve(variables.DynamicEvolution)
	melodic, _ := params.Resolve(variables.MelodicStructure)
	exportFormat, _ := params.Resolve(variables.ExportFormat)

	gain, err := IntensityGain(intensity)
	if err != nil {
		return RenderPlan{}, services.Wrap(services.ErrMapping, "equivalence", "map", "", err)
	}
	envelope := envelopeForEvolution(evolution)

	binaural := spatial == variables.SpatialBinaural
	var beat float64
	if binaural {
		beat, err = BeatFrequency(polarity)
		if err != nil {
			return RenderPlan{}, services.Wrap(services.ErrMapping, "equivalence", "map", "", err)
		}
	}

	// Duration: absolute time overrides the tempo-derived bar count. Both
	// the sample count and the tick count derive from the same duration so
	// the two timelines agree within rounding.
	seconds := length.Duration(tempo).Seconds()
	totalSamples := int(math.Round(seconds * float64(opts.SampleRate)))
	totalTicks := int(math.Round(seconds * float64(tempo) / 60.0 * float64(opts.TicksPerQuarter)))

	// Voiced scale degrees: a drone voices only the tonic; Scale Degrees
	// sustains every degree of the resolved mode.
	voicedNotes := []int{root}
	if melodic == variables.MelodicScaleDegrees {
		voicedNotes = voicedNotes[:0]
		for _, offset := range degrees {
			voicedNotes = append(voicedNotes, root+offset)
		}
	}

	partials := 1
	if instrumentation == variables.InstrumentHarmonicPad {
		partials, err = params.ResolveInt(variables.HarmonicPartials)
		if err != nil {
			return RenderPlan{}, services.Wrap(services.ErrMapping, "equivalence", "map", "harmonic partials not numeric", err)
		}
	}

	// Gain is split across fundamentals so intensity stays comparable
	// between a lone drone and a full scale voicing; the post-mix clamp in
	// the synthesis engine remains the final safety net.
	perVoice := gain / float64(len(voicedNotes))

	voices := make([]VoiceSpec, 0, len(voicedNotes)*partials)
	for _, note := range voicedNotes {
		fundamental := NoteToFreq(note, refFreq)
		for k := 1; k <= partials; k++ {
			voice := VoiceSpec{
				Oscillators: 1,
				FreqA:       fundamental * float64(k),
				Gain:        perVoice / float64(k),
				Envelope:    envelope,
			}
			if binaural {
				voice.Oscillators = 2
				voice.FreqA = fundamental*float64(k) - beat/2
				voice.FreqB = fundamental*float64(k) + beat/2
			}
			voices = append(voices, voice)
		}
	}

	if anchor, _ := params.Resolve(variables.CosmicAnchor); anchor != variables.AnchorNone {
		harmonic, err := params.ResolveInt(variables.CosmicHarmonic)
		if err != nil {
			return RenderPlan{}, services.Wrap(services.ErrMapping, "equivalence", "map", "cosmic harmonic not numeric", err)
		}
		anchorVoice, err := cosmicAnchorVoice(anchor, harmonic, perVoice, envelope)
		if err != nil {
			return RenderPlan{}, services.Wrap(services.ErrMapping, "equivalence", "map", "", err)
		}
		voices = append(voices, anchorVoice)
	}

	// The MIDI timeline is built from the voiced degrees, not the voice
	// specs, so partials and binaural offsets never leak into note events.
	velocity := VelocityForGain(gain)
	notes := make([]NoteEvent, 0, len(voicedNotes))
	for _, note := range voicedNotes {
		notes = append(notes, NoteEvent{
			Key:           note,
			StartTick:     0,
			DurationTicks: totalTicks,
			Velocity:      velocity,
		})
	}

	channels := 1
	if binaural {
		channels = 2
	}

	format := FormatPCM16
	if exportFormat == variables.FormatFloat32 {
		format = FormatFloat32
	}

	return RenderPlan{
		SampleRate:      opts.SampleRate,
		Channels:        channels,
		TotalSamples:    totalSamples,
		Format:          format,
		TempoBPM:        tempo,
		TicksPerQuarter: opts.TicksPerQuarter,
		TotalTicks:      totalTicks,
		Voices:          voices,
		Notes:           notes,
	}, nil
}
