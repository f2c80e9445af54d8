package session_test

import (
	"context"
	"testing"

	"soundcraft/internal/session"
	"soundcraft/internal/testsupport"
)

func TestSessionLifecycle(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	record, err := store.NewSession(ctx, "midnight-drone", "collecting")
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	if record.ID == 0 {
		t.Fatal("session id not assigned")
	}
	if record.State != "collecting" {
		t.Fatalf("state %q want collecting", record.State)
	}
	if record.CreatedAt.IsZero() || record.UpdatedAt.IsZero() {
		t.Fatal("timestamps not populated")
	}

	record.State = "sealed"
	record.ParametersJSON = `{"tempo":"72"}`
	record.WAVPath = "/tmp/out.wav"
	record.MIDIPath = "/tmp/out.mid"
	if err := store.Update(ctx, record); err != nil {
		t.Fatalf("update: %v", err)
	}

	loaded, err := store.GetByID(ctx, record.ID)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if loaded == nil {
		t.Fatal("session missing after update")
	}
	if loaded.State != "sealed" || loaded.ParametersJSON != `{"tempo":"72"}` {
		t.Fatalf("update not persisted: %+v", loaded)
	}
	if loaded.WAVPath != "/tmp/out.wav" || loaded.MIDIPath != "/tmp/out.mid" {
		t.Fatalf("artifact paths not persisted: %+v", loaded)
	}

	byName, err := store.GetByName(ctx, "midnight-drone")
	if err != nil {
		t.Fatalf("get by name: %v", err)
	}
	if byName == nil || byName.ID != record.ID {
		t.Fatal("lookup by name failed")
	}

	deleted, err := store.Delete(ctx, record.ID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !deleted {
		t.Fatal("delete reported no rows")
	}
	gone, err := store.GetByID(ctx, record.ID)
	if err != nil {
		t.Fatalf("get after delete: %v", err)
	}
	if gone != nil {
		t.Fatal("session still present after delete")
	}
}

func TestGetMissingSessionReturnsNil(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))

	record, err := store.GetByID(context.Background(), 999)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if record != nil {
		t.Fatal("expected nil for missing session")
	}
}

func TestListOrdersMostRecentFirst(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	for _, name := range []string{"first", "second", "third"} {
		if _, err := store.NewSession(ctx, name, "idle"); err != nil {
			t.Fatalf("new session %s: %v", name, err)
		}
	}

	records, err := store.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("list returned %d sessions want 3", len(records))
	}
	if records[0].Name != "third" || records[2].Name != "first" {
		t.Fatalf("unexpected order: %s, %s, %s", records[0].Name, records[1].Name, records[2].Name)
	}
}

func TestDuplicateSessionNameRejected(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	if _, err := store.NewSession(ctx, "dup", "idle"); err != nil {
		t.Fatalf("new session: %v", err)
	}
	if _, err := store.NewSession(ctx, "dup", "idle"); err == nil {
		t.Fatal("expected unique constraint violation")
	}
}

func TestPresetRoundTrip(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	params := `{"key_signature":"A","tempo":"72"}`
	if err := store.SavePreset(ctx, "evening", params); err != nil {
		t.Fatalf("save preset: %v", err)
	}

	preset, err := store.GetPreset(ctx, "evening")
	if err != nil {
		t.Fatalf("get preset: %v", err)
	}
	if preset == nil {
		t.Fatal("preset missing")
	}
	if preset.ParametersJSON != params {
		t.Fatalf("parameters %q want %q", preset.ParametersJSON, params)
	}

	// Saving again replaces the parameters.
	updated := `{"key_signature":"C"}`
	if err := store.SavePreset(ctx, "evening", updated); err != nil {
		t.Fatalf("resave preset: %v", err)
	}
	preset, err = store.GetPreset(ctx, "evening")
	if err != nil {
		t.Fatalf("get preset after resave: %v", err)
	}
	if preset.ParametersJSON != updated {
		t.Fatalf("parameters %q want %q", preset.ParametersJSON, updated)
	}

	presets, err := store.ListPresets(ctx)
	if err != nil {
		t.Fatalf("list presets: %v", err)
	}
	if len(presets) != 1 || presets[0].Name != "evening" {
		t.Fatalf("unexpected preset list: %+v", presets)
	}

	deleted, err := store.DeletePreset(ctx, "evening")
	if err != nil {
		t.Fatalf("delete preset: %v", err)
	}
	if !deleted {
		t.Fatal("delete reported no rows")
	}
	missing, err := store.GetPreset(ctx, "evening")
	if err != nil {
		t.Fatalf("get after delete: %v", err)
	}
	if missing != nil {
		t.Fatal("preset still present after delete")
	}
}

func TestOpenLocksSessionDirectory(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	_ = store

	if _, err := session.Open(cfg); err == nil {
		t.Fatal("second open should fail while the directory is locked")
	}
}

func TestClearByState(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	seed := []struct {
		name  string
		state string
	}{
		{"one", "sealed"},
		{"two", "aborted"},
		{"three", "aborted"},
	}
	for _, s := range seed {
		if _, err := store.NewSession(ctx, s.name, s.state); err != nil {
			t.Fatalf("seed %s: %v", s.name, err)
		}
	}

	cleared, err := store.Clear(ctx, "aborted")
	if err != nil {
		t.Fatalf("clear aborted: %v", err)
	}
	if cleared != 2 {
		t.Fatalf("cleared %d want 2", cleared)
	}

	remaining, err := store.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(remaining) != 1 || remaining[0].Name != "one" {
		t.Fatalf("unexpected survivors: %+v", remaining)
	}

	cleared, err = store.Clear(ctx, "")
	if err != nil {
		t.Fatalf("clear all: %v", err)
	}
	if cleared != 1 {
		t.Fatalf("cleared %d want 1", cleared)
	}
}
