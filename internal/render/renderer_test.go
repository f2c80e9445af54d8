package render

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-audio/wav"

	"soundcraft/internal/fulfillment"
	"soundcraft/internal/logging"
	"soundcraft/internal/testsupport"
	"soundcraft/internal/variables"
)

func completeParams(t *testing.T, overrides map[string]string) fulfillment.ParameterSet {
	t.Helper()
	values := map[string]string{
		variables.KeySignature:    "A",
		variables.ScaleType:       "Major",
		variables.ScaleMode:       "Ionian",
		variables.ReferencePitch:  "A440",
		variables.Tempo:           "120",
		variables.OutputLength:    "1s",
		variables.Instrumentation: variables.InstrumentSineDrone,
	}
	for id, value := range overrides {
		values[id] = value
	}
	params, err := fulfillment.NewParameterSet(values)
	if err != nil {
		t.Fatalf("parameter set: %v", err)
	}
	return params
}

func TestRenderWritesAllArtifacts(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	renderer := New(cfg, logging.NewNop())

	artifacts, err := renderer.Render(context.Background(), completeParams(t, map[string]string{
		variables.ArtifactName: "evening rite",
	}))
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	if filepath.Base(artifacts.WAVPath) != "evening_rite.wav" {
		t.Fatalf("wav path %q: spaces not flattened", artifacts.WAVPath)
	}
	if filepath.Base(artifacts.MIDIPath) != "evening_rite.mid" {
		t.Fatalf("midi path %q", artifacts.MIDIPath)
	}
	if filepath.Base(artifacts.LogPath) != "evening_rite_GrimoireLog.md" {
		t.Fatalf("log path %q", artifacts.LogPath)
	}
	if artifacts.Samples != cfg.Audio.SampleRate {
		t.Fatalf("samples %d want %d for a one second render", artifacts.Samples, cfg.Audio.SampleRate)
	}
	if artifacts.Clipped != 0 {
		t.Fatalf("unexpected clipping: %d", artifacts.Clipped)
	}

	for _, path := range []string{artifacts.WAVPath, artifacts.MIDIPath, artifacts.LogPath} {
		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("artifact missing: %v", err)
		}
		if info.Size() == 0 {
			t.Fatalf("artifact %s is empty", path)
		}
	}

	file, err := os.Open(artifacts.WAVPath)
	if err != nil {
		t.Fatalf("open wav: %v", err)
	}
	defer file.Close()
	dec := wav.NewDecoder(file)
	dec.ReadInfo()
	if dec.Err() != nil {
		t.Fatalf("wav not decodable: %v", dec.Err())
	}
	if int(dec.SampleRate) != cfg.Audio.SampleRate {
		t.Fatalf("wav sample rate %d want %d", dec.SampleRate, cfg.Audio.SampleRate)
	}
}

func TestRenderGrimoireLogContents(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	renderer := New(cfg, logging.NewNop())

	artifacts, err := renderer.Render(context.Background(), completeParams(t, map[string]string{
		variables.ArtifactName:   "logged",
		variables.SpatialMode:    variables.SpatialBinaural,
		variables.IntentPolarity: variables.PolarityClarity,
	}))
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	data, err := os.ReadFile(artifacts.LogPath)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	log := string(data)

	for _, want := range []string{
		"# Grimoire Log: logged",
		"**Policy Version:** v1",
		"- **Key Signature:** A",
		"- **Spatial Mode:** Binaural",
		"- **Intent Polarity:** Clarity",
		"- **Invocation Intensity:** Balanced (default)",
		"beat 8.00 Hz",
		"- **Clipped Samples:** 0",
	} {
		if !strings.Contains(log, want) {
			t.Errorf("grimoire log missing %q", want)
		}
	}
}

func TestRenderGeneratesNameWhenUnset(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	renderer := New(cfg, logging.NewNop())

	artifacts, err := renderer.Render(context.Background(), completeParams(t, nil))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	base := strings.TrimSuffix(filepath.Base(artifacts.WAVPath), ".wav")
	if len(base) != 36 {
		t.Fatalf("generated name %q is not a UUID", base)
	}
}

func TestRenderFailsOnUnwritableOutputDir(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := os.MkdirAll(filepath.Dir(cfg.Paths.OutputDir), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	// Occupy the output path with a file so directory creation fails.
	if err := os.WriteFile(cfg.Paths.OutputDir, []byte("x"), 0o644); err != nil {
		t.Fatalf("write blocker: %v", err)
	}
	renderer := New(cfg, logging.NewNop())

	if _, err := renderer.Render(context.Background(), completeParams(t, nil)); err == nil {
		t.Fatal("expected error when output directory cannot be created")
	}
}
