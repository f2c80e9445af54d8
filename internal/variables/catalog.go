package variables

// Variable identifiers. These are the keys used in parameter sets, CLI
// --set flags, and stored presets.
const (
	KeySignature        = "key_signature"
	ScaleType           = "scale_type"
	ScaleMode           = "scale_mode"
	ReferencePitch      = "reference_pitch"
	Tempo               = "tempo"
	OutputLength        = "output_length"
	Instrumentation     = "instrumentation"
	SpatialMode         = "spatial_mode"
	IntentPolarity      = "intent_polarity"
	InvocationIntensity = "invocation_intensity"
	DynamicEvolution    = "dynamic_evolution"
	MelodicStructure    = "melodic_structure"
	HarmonicPartials    = "harmonic_partials"
	ExportFormat        = "export_format"
	ArtifactName        = "artifact_name"
	CosmicAnchor        = "cosmic_anchor"
	CosmicHarmonic      = "cosmic_harmonic"
)

// Canonical choice labels referenced by the equivalence mapper.
const (
	RefA440 = "A440"
	RefA432 = "A432"

	InstrumentSineDrone   = "Sine Drone"
	InstrumentHarmonicPad = "Harmonic Pad"

	SpatialMono     = "Mono"
	SpatialBinaural = "Binaural"

	PolarityGrounding  = "Grounding"
	PolarityHealing    = "Healing"
	PolarityRelease    = "Release"
	PolarityClarity    = "Clarity"
	PolarityExpansion  = "Expansion"
	PolarityActivation = "Activation"

	IntensitySubtle   = "Subtle"
	IntensityBalanced = "Balanced"
	IntensityPowerful = "Powerful"

	EvolutionStill     = "Still"
	EvolutionAscending = "Ascending"
	EvolutionArc       = "Arc"

	MelodicRootDrone    = "Root Drone"
	MelodicScaleDegrees = "Scale Degrees"

	FormatPCM16   = "PCM16"
	FormatFloat32 = "Float32"

	AnchorNone = "None"
)

var catalog = []Definition{
	{
		ID: KeySignature, Label: "Key Signature", Tier: TierI, Kind: KindChoice,
		Choices: []string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"},
	},
	{
		ID: ScaleType, Label: "Scale Type", Tier: TierI, Kind: KindChoice,
		Choices: []string{"Major", "Minor", "Pentatonic"},
	},
	{
		ID: ScaleMode, Label: "Scale Mode", Tier: TierI, Kind: KindChoice,
		Choices: []string{"Ionian", "Dorian", "Phrygian", "Lydian", "Mixolydian", "Aeolian", "Locrian"},
	},
	{
		ID: ReferencePitch, Label: "Reference Pitch", Tier: TierI, Kind: KindChoice,
		Choices: []string{RefA440, RefA432},
	},
	{
		ID: Tempo, Label: "Tempo", Tier: TierI, Kind: KindInt,
		Min: 20, Max: 300, Unit: "BPM",
	},
	{
		ID: OutputLength, Label: "Output Length", Tier: TierI, Kind: KindLength,
		Unit: "bars or seconds",
	},
	{
		ID: Instrumentation, Label: "Instrumentation", Tier: TierI, Kind: KindChoice,
		Choices: []string{InstrumentSineDrone, InstrumentHarmonicPad},
	},

	{
		ID: SpatialMode, Label: "Spatial Mode", Tier: TierII, Kind: KindChoice,
		Choices: []string{SpatialMono, SpatialBinaural}, Default: SpatialMono,
	},
	{
		ID: IntentPolarity, Label: "Intent Polarity", Tier: TierII, Kind: KindChoice,
		Choices: []string{PolarityGrounding, PolarityHealing, PolarityRelease, PolarityClarity, PolarityExpansion, PolarityActivation},
		Default: PolarityHealing,
	},
	{
		ID: InvocationIntensity, Label: "Invocation Intensity", Tier: TierII, Kind: KindChoice,
		Choices: []string{IntensitySubtle, IntensityBalanced, IntensityPowerful},
		Default: IntensityBalanced,
	},

	{
		ID: DynamicEvolution, Label: "Dynamic Evolution", Tier: TierIII, Kind: KindChoice,
		Choices: []string{EvolutionStill, EvolutionAscending, EvolutionArc},
		Default: EvolutionStill,
	},
	{
		ID: MelodicStructure, Label: "Melodic Structure", Tier: TierIII, Kind: KindChoice,
		Choices: []string{MelodicRootDrone, MelodicScaleDegrees},
		Default: MelodicRootDrone,
	},

	{
		ID: HarmonicPartials, Label: "Harmonic Partials", Tier: TierIV, Kind: KindInt,
		Min: 1, Max: 8, Default: "4",
	},

	{
		ID: ExportFormat, Label: "Export Format", Tier: TierV, Kind: KindChoice,
		Choices: []string{FormatPCM16, FormatFloat32}, Default: FormatPCM16,
	},
	{
		ID: ArtifactName, Label: "Artifact Name", Tier: TierV, Kind: KindText,
	},

	{
		ID: CosmicAnchor, Label: "Cosmic Anchor", Tier: TierVI, Kind: KindChoice,
		Choices: []string{AnchorNone, "Sidereal Day", "Synodic Month", "Tropical Year", "Nodal Cycle", "Precession", "Galactic Year"},
		Default: AnchorNone,
	},
	{
		ID: CosmicHarmonic, Label: "Cosmic Harmonic", Tier: TierVI, Kind: KindInt,
		Min: 1, Max: 64, Default: "1",
	},
}

var catalogIndex = func() map[string]Definition {
	index := make(map[string]Definition, len(catalog))
	for _, def := range catalog {
		index[def.ID] = def
	}
	return index
}()

// Catalog returns the ordered variable catalog.
func Catalog() []Definition {
	cp := make([]Definition, len(catalog))
	copy(cp, catalog)
	return cp
}

// Lookup returns the definition for an identifier.
func Lookup(id string) (Definition, bool) {
	def, ok := catalogIndex[id]
	return def, ok
}

// RequiredIDs returns the Tier I identifiers in catalog order.
func RequiredIDs() []string {
	var ids []string
	for _, def := range catalog {
		if def.Required() {
			ids = append(ids, def.ID)
		}
	}
	return ids
}
