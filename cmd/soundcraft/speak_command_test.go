package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSpeakWritesOutputFile(t *testing.T) {
	env := setupCLITestEnv(t)

	outPath := filepath.Join(env.baseDir, "spoken.wav")
	out, _, err := runCLI(t, []string{"speak", "so", "mote", "it", "be", "--out", outPath}, env.configPath)
	if err != nil {
		t.Fatalf("speak: %v", err)
	}
	requireContains(t, out, "Speech written to "+outPath)

	if _, err := os.Stat(outPath); err != nil {
		t.Fatalf("expected speech file: %v", err)
	}
}

func TestSpeakRejectsUnknownVoice(t *testing.T) {
	env := setupCLITestEnv(t)

	if _, _, err := runCLI(t, []string{"speak", "hello", "--voice", "missing"}, env.configPath); err == nil {
		t.Fatal("expected error for a voice model that does not exist")
	}
}
