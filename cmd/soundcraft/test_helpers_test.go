package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type cliTestEnv struct {
	baseDir    string
	configPath string
	outputDir  string
	sessionDir string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)

	outputDir := filepath.Join(base, "output")
	logDir := filepath.Join(base, "logs")
	sessionDir := filepath.Join(base, "sessions")

	modelDir := filepath.Join(base, "models")
	if err := os.MkdirAll(modelDir, 0o755); err != nil {
		t.Fatalf("mkdir model dir: %v", err)
	}
	for _, name := range []string{"test.onnx", "test.onnx.json"} {
		if err := os.WriteFile(filepath.Join(modelDir, name), []byte("stub"), 0o644); err != nil {
			t.Fatalf("write model stub: %v", err)
		}
	}
	piperStub := filepath.Join(base, "piper")
	stubScript := `#!/bin/sh
while [ $# -gt 0 ]; do
    if [ "$1" = "--output_file" ]; then
        out=$2
        shift
    fi
    shift
done
cat > /dev/null
printf 'RIFF' > "$out"
`
	if err := os.WriteFile(piperStub, []byte(stubScript), 0o755); err != nil {
		t.Fatalf("write piper stub: %v", err)
	}

	configPath := filepath.Join(base, "config.toml")
	content := fmt.Sprintf(`[paths]
output_dir = %q
log_dir = %q
session_dir = %q

[audio]
sample_rate = 8000
ticks_per_quarter = 480

[notifications]
ntfy_topic = ""

[tts]
binary = %q
model_dir = %q
voice = "test"
timeout_seconds = 10

[logging]
level = "error"
format = "console"
`, outputDir, logDir, sessionDir, piperStub, modelDir)
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	return &cliTestEnv{
		baseDir:    base,
		configPath: configPath,
		outputDir:  outputDir,
		sessionDir: sessionDir,
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	flags := []string{}
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// tierOneSets returns --set flags covering every mandatory variable, with a
// short absolute length so renders stay fast.
func tierOneSets() []string {
	return []string{
		"--set", "key_signature=A",
		"--set", "scale_type=Major",
		"--set", "scale_mode=Ionian",
		"--set", "reference_pitch=A440",
		"--set", "tempo=120",
		"--set", "output_length=1s",
		"--set", "instrumentation=Sine Drone",
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
