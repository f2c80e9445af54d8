package main

import "testing"

func TestPresetsSaveListRemove(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"presets"}, env.configPath)
	if err != nil {
		t.Fatalf("presets empty list: %v", err)
	}
	requireContains(t, out, "No presets stored.")

	out, _, err = runCLI(t, []string{
		"presets", "save", "healing",
		"--set", "intent_polarity=Healing",
		"--set", "invocation_intensity=Powerful",
	}, env.configPath)
	if err != nil {
		t.Fatalf("presets save: %v", err)
	}
	requireContains(t, out, `Saved preset "healing" with 2 assignments`)

	out, _, err = runCLI(t, []string{"presets"}, env.configPath)
	if err != nil {
		t.Fatalf("presets list: %v", err)
	}
	requireContains(t, out, "healing")
	requireContains(t, out, `"intent_polarity":"Healing"`)

	out, _, err = runCLI(t, []string{"presets", "show", "healing"}, env.configPath)
	if err != nil {
		t.Fatalf("presets show: %v", err)
	}
	requireContains(t, out, "intent_polarity")
	requireContains(t, out, "Powerful")

	if _, _, err := runCLI(t, []string{"presets", "show", "missing"}, env.configPath); err == nil {
		t.Fatal("expected error showing a missing preset")
	}

	if _, _, err := runCLI(t, []string{
		"presets", "save", "bad",
		"--set", "intent_polarity=Vengeance",
	}, env.configPath); err == nil {
		t.Fatal("expected validation error for unknown choice")
	}

	out, _, err = runCLI(t, []string{"presets", "rm", "healing"}, env.configPath)
	if err != nil {
		t.Fatalf("presets rm: %v", err)
	}
	requireContains(t, out, `Removed preset "healing"`)

	if _, _, err := runCLI(t, []string{"presets", "rm", "healing"}, env.configPath); err == nil {
		t.Fatal("expected error removing a missing preset")
	}
}
