package render

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"soundcraft/internal/config"
	"soundcraft/internal/equivalence"
	"soundcraft/internal/export/midifile"
	"soundcraft/internal/export/wavfile"
	"soundcraft/internal/fulfillment"
	"soundcraft/internal/logging"
	"soundcraft/internal/services"
	"soundcraft/internal/synth"
	"soundcraft/internal/variables"
)

// Renderer executes the full pipeline for a confirmed parameter set: map to
// a plan, synthesize, then export WAV, MIDI, and the grimoire log side by
// side under the configured output directory.
type Renderer struct {
	cfg       *config.Config
	logger    *slog.Logger
	now       func() time.Time
	outputDir string
	skipWAV   bool
	skipMIDI  bool
}

// Option configures the renderer.
type Option func(*Renderer)

// WithOutputDir overrides the configured output directory.
func WithOutputDir(dir string) Option {
	return func(r *Renderer) {
		if strings.TrimSpace(dir) != "" {
			r.outputDir = dir
		}
	}
}

// WithOutputs selects which audio artifacts are written. The grimoire log is
// always written.
func WithOutputs(wav, midi bool) Option {
	return func(r *Renderer) {
		r.skipWAV = !wav
		r.skipMIDI = !midi
	}
}

// New constructs a renderer bound to the given configuration.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) *Renderer {
	r := &Renderer{
		cfg:       cfg,
		logger:    logging.NewComponentLogger(logger, "render"),
		now:       time.Now,
		outputDir: cfg.Paths.OutputDir,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render implements fulfillment.Renderer.
func (r *Renderer) Render(ctx context.Context, params fulfillment.ParameterSet) (fulfillment.Artifacts, error) {
	plan, err := equivalence.Map(params, equivalence.Options{
		SampleRate:      r.cfg.Audio.SampleRate,
		TicksPerQuarter: r.cfg.Audio.TicksPerQuarter,
	})
	if err != nil {
		return fulfillment.Artifacts{}, err
	}

	r.logger.Info("plan resolved",
		logging.Int("voices", len(plan.Voices)),
		logging.Int("samples", plan.TotalSamples),
		logging.Int("channels", plan.Channels),
		logging.String("format", string(plan.Format)))

	buf, err := synth.Render(ctx, plan)
	if err != nil {
		return fulfillment.Artifacts{}, err
	}
	if buf.Clipped > 0 {
		r.logger.Warn("post-mix clamp engaged", logging.Int("clipped", buf.Clipped))
	}

	if err := r.cfg.EnsureDirectories(); err != nil {
		return fulfillment.Artifacts{}, services.Wrap(services.ErrExport, "render", "render", "", err)
	}
	if err := os.MkdirAll(r.outputDir, 0o755); err != nil {
		return fulfillment.Artifacts{}, services.Wrap(services.ErrExport, "render", "render", "", err)
	}

	name := r.artifactName(params)
	var wavPath, midiPath string
	logPath := filepath.Join(r.outputDir, name+"_GrimoireLog.md")

	if !r.skipWAV {
		wavPath = filepath.Join(r.outputDir, name+".wav")
		if err := wavfile.Write(wavPath, buf, plan.Format); err != nil {
			return fulfillment.Artifacts{}, err
		}
	}
	if !r.skipMIDI {
		midiPath = filepath.Join(r.outputDir, name+".mid")
		if err := midifile.Write(midiPath, plan); err != nil {
			return fulfillment.Artifacts{}, err
		}
	}
	if err := writeGrimoireLog(logPath, name, r.now().UTC(), params, plan, buf); err != nil {
		return fulfillment.Artifacts{}, err
	}

	r.logger.Info("artifacts written",
		logging.String(logging.FieldArtifact, wavPath),
		logging.Int("clipped", buf.Clipped))

	return fulfillment.Artifacts{
		WAVPath:  wavPath,
		MIDIPath: midiPath,
		LogPath:  logPath,
		Samples:  buf.Frames(),
		Clipped:  buf.Clipped,
	}, nil
}

// artifactName derives the output basename: the collaborator's chosen name
// when present, a fresh UUID otherwise. Names are flattened to a single safe
// path element.
func (r *Renderer) artifactName(params fulfillment.ParameterSet) string {
	name, ok := params.Get(variables.ArtifactName)
	if !ok || strings.TrimSpace(name) == "" {
		return uuid.NewString()
	}
	name = strings.TrimSpace(name)
	name = strings.ReplaceAll(name, " ", "_")
	return filepath.Base(name)
}
