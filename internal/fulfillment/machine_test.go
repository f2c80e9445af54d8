package fulfillment

import (
	"context"
	"errors"
	"sync"
	"testing"

	"soundcraft/internal/services"
	"soundcraft/internal/variables"
)

type fakeRenderer struct {
	mu      sync.Mutex
	calls   int
	lastSet ParameterSet
	err     error

	// when set, Render blocks until release is closed.
	started chan struct{}
	release chan struct{}
}

func (f *fakeRenderer) Render(_ context.Context, params ParameterSet) (Artifacts, error) {
	f.mu.Lock()
	f.calls++
	f.lastSet = params
	f.mu.Unlock()
	if f.started != nil {
		close(f.started)
	}
	if f.release != nil {
		<-f.release
	}
	if f.err != nil {
		return Artifacts{}, f.err
	}
	return Artifacts{WAVPath: "out.wav", MIDIPath: "out.mid", Samples: 640000}, nil
}

func (f *fakeRenderer) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func assignAllRequired(t *testing.T, m *Machine) {
	t.Helper()
	assignments := map[string]string{
		variables.KeySignature:    "A",
		variables.ScaleType:       "Major",
		variables.ScaleMode:       "Ionian",
		variables.ReferencePitch:  "A440",
		variables.Tempo:           "72",
		variables.OutputLength:    "8 bars",
		variables.Instrumentation: "Sine Drone",
	}
	for id, value := range assignments {
		if err := m.Assign(id, value); err != nil {
			t.Fatalf("assign %s: %v", id, err)
		}
	}
}

func TestBeginTransitionsToCollecting(t *testing.T) {
	m := NewMachine(&fakeRenderer{}, nil)
	if got := m.State(); got != StateIdle {
		t.Fatalf("initial state %s", got)
	}
	if err := m.Begin("new moon intent"); err != nil {
		t.Fatalf("begin: %v", err)
	}
	if got := m.State(); got != StateCollecting {
		t.Fatalf("state %s want collecting", got)
	}
	if err := m.Begin("again"); err == nil {
		t.Fatal("second begin should be rejected")
	}
}

func TestRejectedAssignmentLeavesNoPartialWrite(t *testing.T) {
	m := NewMachine(&fakeRenderer{}, nil)
	if err := m.Begin("intent"); err != nil {
		t.Fatalf("begin: %v", err)
	}
	err := m.Assign(variables.Tempo, "nine hundred")
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if got := m.State(); got != StateCollecting {
		t.Fatalf("state %s want collecting", got)
	}
	if _, err := m.Snapshot(); err == nil {
		t.Fatal("snapshot should still be incomplete")
	}
}

func TestAwaitingConsentOnlyWhenTierIComplete(t *testing.T) {
	m := NewMachine(&fakeRenderer{}, nil)
	if err := m.Begin("intent"); err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := m.Assign(variables.KeySignature, "A"); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if got := m.State(); got != StateCollecting {
		t.Fatalf("state %s want collecting after partial fill", got)
	}
	assignAllRequired(t, m)
	if got := m.State(); got != StateAwaitingConsent {
		t.Fatalf("state %s want awaiting_consent", got)
	}

	// An edit drops back to Collecting semantics but the set stays complete,
	// so the machine returns to AwaitingConsent with the edit applied.
	if err := m.Assign(variables.Tempo, "80"); err != nil {
		t.Fatalf("edit: %v", err)
	}
	if got := m.State(); got != StateAwaitingConsent {
		t.Fatalf("state %s want awaiting_consent after edit", got)
	}
	params, err := m.Snapshot()
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if tempo, _ := params.Get(variables.Tempo); tempo != "80" {
		t.Fatalf("edit not applied, tempo %s", tempo)
	}
}

func TestConsentIncompleteReturnsExactMissingSet(t *testing.T) {
	renderer := &fakeRenderer{}
	m := NewMachine(renderer, nil)
	if err := m.Begin("intent"); err != nil {
		t.Fatalf("begin: %v", err)
	}
	assignAllRequired(t, m)
	// Re-create with key signature removed via a fresh machine.
	m = NewMachine(renderer, nil)
	if err := m.Begin("intent"); err != nil {
		t.Fatalf("begin: %v", err)
	}
	for id, value := range map[string]string{
		variables.ScaleType:       "Major",
		variables.ScaleMode:       "Ionian",
		variables.ReferencePitch:  "A440",
		variables.Tempo:           "72",
		variables.OutputLength:    "8 bars",
		variables.Instrumentation: "Sine Drone",
	} {
		if err := m.Assign(id, value); err != nil {
			t.Fatalf("assign %s: %v", id, err)
		}
	}

	_, err := m.Consent(context.Background())
	var incomplete *IncompleteError
	if !errors.As(err, &incomplete) {
		t.Fatalf("expected IncompleteError, got %v", err)
	}
	if len(incomplete.Missing) != 1 || incomplete.Missing[0] != variables.KeySignature {
		t.Fatalf("missing listing %v want [%s]", incomplete.Missing, variables.KeySignature)
	}
	if !errors.Is(err, services.ErrIncomplete) {
		t.Fatalf("expected ErrIncomplete marker, got %v", err)
	}
	if got := m.State(); got != StateCollecting {
		t.Fatalf("state %s want collecting", got)
	}
	if renderer.callCount() != 0 {
		t.Fatal("renderer must not be invoked on incomplete consent")
	}
}

func TestConsentSealsAndRecordsArtifacts(t *testing.T) {
	renderer := &fakeRenderer{}
	m := NewMachine(renderer, nil)
	if err := m.Begin("intent"); err != nil {
		t.Fatalf("begin: %v", err)
	}
	assignAllRequired(t, m)

	artifacts, err := m.Consent(context.Background())
	if err != nil {
		t.Fatalf("consent: %v", err)
	}
	if artifacts.WAVPath != "out.wav" {
		t.Fatalf("artifacts %+v", artifacts)
	}
	if got := m.State(); got != StateSealed {
		t.Fatalf("state %s want sealed", got)
	}
	if renderer.callCount() != 1 {
		t.Fatalf("renderer called %d times", renderer.callCount())
	}
	if _, ok := renderer.lastSet.Get(variables.KeySignature); !ok {
		t.Fatal("renderer received incomplete set")
	}

	// Sealed machines are terminal.
	if err := m.Assign(variables.Tempo, "90"); err == nil {
		t.Fatal("assign after seal should be rejected")
	}
	if _, err := m.Consent(context.Background()); err == nil {
		t.Fatal("consent after seal should be rejected")
	}
}

func TestRenderFailureAborts(t *testing.T) {
	cause := services.Wrap(services.ErrExport, "wav", "write", "disk full", nil)
	m := NewMachine(&fakeRenderer{err: cause}, nil)
	if err := m.Begin("intent"); err != nil {
		t.Fatalf("begin: %v", err)
	}
	assignAllRequired(t, m)

	_, err := m.Consent(context.Background())
	if !errors.Is(err, services.ErrExport) {
		t.Fatalf("expected export error, got %v", err)
	}
	if got := m.State(); got != StateAborted {
		t.Fatalf("state %s want aborted", got)
	}
	if !errors.Is(m.Err(), services.ErrExport) {
		t.Fatalf("aborted machine should carry error, got %v", m.Err())
	}
}

func TestAssignmentsDuringRenderAreQueuedFIFO(t *testing.T) {
	renderer := &fakeRenderer{
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	m := NewMachine(renderer, nil)
	if err := m.Begin("intent"); err != nil {
		t.Fatalf("begin: %v", err)
	}
	assignAllRequired(t, m)

	done := make(chan error, 1)
	go func() {
		_, err := m.Consent(context.Background())
		done <- err
	}()

	<-renderer.started
	if got := m.State(); got != StateRendering {
		t.Fatalf("state %s want rendering", got)
	}
	if err := m.Assign(variables.Tempo, "100"); err != nil {
		t.Fatalf("queued assign: %v", err)
	}
	if err := m.Assign(variables.Tempo, "120"); err != nil {
		t.Fatalf("queued assign: %v", err)
	}
	close(renderer.release)
	if err := <-done; err != nil {
		t.Fatalf("consent: %v", err)
	}

	// Queued edits never mutate the sealed machine; the later edit wins in
	// the carry-over map.
	carry := m.CarryOver()
	if carry[variables.Tempo] != "120" {
		t.Fatalf("carry-over %v", carry)
	}
	if tempo, _ := renderer.lastSet.Get(variables.Tempo); tempo != "72" {
		t.Fatalf("render saw queued edit: tempo %s", tempo)
	}
}

func TestSkipRules(t *testing.T) {
	m := NewMachine(&fakeRenderer{}, nil)
	if err := m.Begin("intent"); err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := m.Skip(variables.SpatialMode); err != nil {
		t.Fatalf("skip optional: %v", err)
	}
	if err := m.Skip(variables.KeySignature); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("skip of tier I should be rejected, got %v", err)
	}
}

func TestSessionRegenerate(t *testing.T) {
	renderer := &fakeRenderer{}
	session := NewSession(renderer, nil)
	machine, err := session.Begin("intent")
	if err != nil {
		t.Fatalf("session begin: %v", err)
	}
	assignAllRequired(t, machine)
	if _, err := session.Consent(context.Background()); err != nil {
		t.Fatalf("consent: %v", err)
	}

	if _, ok := session.LastConfirmed(); !ok {
		t.Fatal("last confirmed set missing")
	}
	if _, err := session.Regenerate(context.Background(), "again"); err != nil {
		t.Fatalf("regenerate: %v", err)
	}
	if renderer.callCount() != 2 {
		t.Fatalf("renderer called %d times want 2", renderer.callCount())
	}
	if session.Machine().State() != StateSealed {
		t.Fatalf("regenerated machine state %s", session.Machine().State())
	}
}

func TestSessionBeginAfterSealStartsFreshMachine(t *testing.T) {
	renderer := &fakeRenderer{}
	session := NewSession(renderer, nil)
	machine, err := session.Begin("intent")
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	assignAllRequired(t, machine)
	if _, err := session.Consent(context.Background()); err != nil {
		t.Fatalf("consent: %v", err)
	}

	next, err := session.Begin("second pass")
	if err != nil {
		t.Fatalf("second begin: %v", err)
	}
	if next == machine {
		t.Fatal("sealed machine must not be reused")
	}
	if next.State() != StateCollecting {
		t.Fatalf("fresh machine state %s", next.State())
	}
}
