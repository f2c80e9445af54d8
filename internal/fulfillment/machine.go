package fulfillment

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"soundcraft/internal/logging"
	"soundcraft/internal/services"
	"soundcraft/internal/variables"
)

// State represents the lifecycle of a fulfillment machine.
type State string

const (
	StateIdle            State = "idle"
	StateCollecting      State = "collecting"
	StateAwaitingConsent State = "awaiting_consent"
	StateRendering       State = "rendering"
	StateSealed          State = "sealed"
	StateAborted         State = "aborted"
)

// Terminal reports whether the state accepts no further signals.
func (s State) Terminal() bool {
	return s == StateSealed || s == StateAborted
}

// Artifacts identifies the outputs of a sealed render. Paths are owned by
// the caller; the machine only records them.
type Artifacts struct {
	WAVPath  string
	MIDIPath string
	LogPath  string
	Samples  int
	Clipped  int
}

// Renderer executes the mapping, synthesis, and export chain for a completed
// parameter set. It is invoked synchronously from Consent.
type Renderer interface {
	Render(ctx context.Context, params ParameterSet) (Artifacts, error)
}

// Machine is the variable-fulfillment state machine. All methods are safe
// for concurrent use; signals are applied strictly in arrival order.
type Machine struct {
	mu     sync.Mutex
	state  State
	values map[string]string
	// skipped records optional variables the collaborator explicitly
	// declined, so they are reported distinctly from "never asked".
	skipped map[string]struct{}
	// pending holds assignments that arrived while a render was in
	// flight. They are never applied to this machine; see CarryOver.
	pending  []pendingAssignment
	renderer Renderer
	logger   *slog.Logger

	intent    string
	artifacts Artifacts
	renderErr error
}

type pendingAssignment struct {
	id    string
	value string
}

// NewMachine constructs a machine in the Idle state.
func NewMachine(renderer Renderer, logger *slog.Logger) *Machine {
	return &Machine{
		state:    StateIdle,
		values:   make(map[string]string),
		skipped:  make(map[string]struct{}),
		renderer: renderer,
		logger:   logging.NewComponentLogger(logger, "fulfillment"),
	}
}

// State returns the current state.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Intent returns the opaque intent signal that started collection.
func (m *Machine) Intent() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.intent
}

// Begin moves an Idle machine into Collecting. The intent payload is opaque
// to the core; it is recorded for the session log only.
func (m *Machine) Begin(intent string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateIdle {
		return m.stateError("begin")
	}
	m.intent = intent
	m.state = StateCollecting
	m.logger.Info("collection started", logging.String(logging.FieldState, string(m.state)))
	return nil
}

// Assign validates and applies a single variable assignment. Out-of-domain
// values are rejected without any partial write. An assignment arriving in
// AwaitingConsent returns the machine to Collecting with the edit applied.
// During Rendering the assignment is queued for carry-over instead.
func (m *Machine) Assign(id, raw string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	def, ok := variables.Lookup(id)
	if !ok {
		return services.Wrap(services.ErrValidation, "fulfillment", "assign",
			fmt.Sprintf("unknown variable %q", id), nil)
	}

	switch m.state {
	case StateCollecting, StateAwaitingConsent:
	case StateRendering:
		value, err := def.Validate(raw)
		if err != nil {
			return err
		}
		m.pending = append(m.pending, pendingAssignment{id: id, value: value})
		m.logger.Info("assignment queued during render", logging.String(logging.FieldVariable, id))
		return nil
	default:
		return m.stateError("assign")
	}

	value, err := def.Validate(raw)
	if err != nil {
		return err
	}

	m.values[id] = value
	delete(m.skipped, id)
	if m.state == StateAwaitingConsent {
		m.state = StateCollecting
	}
	if len(missingRequired(m.values)) == 0 {
		m.state = StateAwaitingConsent
	}
	m.logger.Info("variable assigned",
		logging.String(logging.FieldVariable, id),
		logging.String("value", value),
		logging.String(logging.FieldState, string(m.state)))
	return nil
}

// Skip records an explicit decline of an optional variable. Tier I
// variables cannot be skipped.
func (m *Machine) Skip(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateCollecting && m.state != StateAwaitingConsent {
		return m.stateError("skip")
	}
	def, ok := variables.Lookup(id)
	if !ok {
		return services.Wrap(services.ErrValidation, "fulfillment", "skip",
			fmt.Sprintf("unknown variable %q", id), nil)
	}
	if def.Required() {
		return services.Wrap(services.ErrValidation, "fulfillment", "skip",
			fmt.Sprintf("%s is mandatory and cannot be skipped", id), nil)
	}
	delete(m.values, id)
	m.skipped[id] = struct{}{}
	return nil
}

// Missing returns the Tier I identifiers still unfulfilled, in catalog
// order. An empty slice means the machine is ready for consent.
func (m *Machine) Missing() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return missingRequired(m.values)
}

// Snapshot returns the current assignments as a parameter set, or the
// structured incomplete listing when Tier I values are missing.
func (m *Machine) Snapshot() (ParameterSet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return NewParameterSet(m.values)
}

// Consent seals the collected parameter set and runs the render pipeline
// synchronously. On success the machine reaches Sealed; a pipeline failure
// moves it to Aborted carrying the error. Consent requested with missing
// Tier I variables returns the structured listing and leaves the machine in
// Collecting.
func (m *Machine) Consent(ctx context.Context) (Artifacts, error) {
	m.mu.Lock()
	switch m.state {
	case StateAwaitingConsent:
	case StateCollecting:
		missing := missingRequired(m.values)
		m.mu.Unlock()
		return Artifacts{}, &IncompleteError{Missing: missing}
	default:
		defer m.mu.Unlock()
		return Artifacts{}, m.stateError("consent")
	}

	params, err := NewParameterSet(m.values)
	if err != nil {
		// Unreachable while the AwaitingConsent invariant holds; fail
		// loudly instead of defaulting.
		m.mu.Unlock()
		return Artifacts{}, services.Wrap(services.ErrMapping, "fulfillment", "consent",
			"awaiting consent with incomplete parameter set", err)
	}

	m.state = StateRendering
	renderer := m.renderer
	m.mu.Unlock()

	// The render has no suspension points and appears atomic to callers;
	// assignments arriving now are queued by Assign.
	artifacts, renderErr := renderer.Render(ctx, params)

	m.mu.Lock()
	defer m.mu.Unlock()
	if renderErr != nil {
		m.state = StateAborted
		m.renderErr = renderErr
		m.logger.Error("render aborted", logging.Error(renderErr))
		return Artifacts{}, renderErr
	}
	m.state = StateSealed
	m.artifacts = artifacts
	m.logger.Info("render sealed",
		logging.String(logging.FieldArtifact, artifacts.WAVPath),
		logging.Int("samples", artifacts.Samples),
		logging.Int("clipped", artifacts.Clipped))
	return artifacts, nil
}

// Artifacts returns the sealed artifact identifiers. Zero value unless the
// machine is Sealed.
func (m *Machine) Artifacts() Artifacts {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.artifacts
}

// Err returns the error carried by an Aborted machine.
func (m *Machine) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.renderErr
}

// CarryOver returns assignments queued during rendering, in arrival order.
// A terminal machine is never edited; the caller seeds the next machine
// with these values instead.
func (m *Machine) CarryOver() map[string]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.pending) == 0 {
		return nil
	}
	out := make(map[string]string, len(m.pending))
	for _, p := range m.pending {
		out[p.id] = p.value
	}
	return out
}

func (m *Machine) stateError(signal string) error {
	return services.Wrap(services.ErrValidation, "fulfillment", signal,
		fmt.Sprintf("not accepted in state %s", m.state), nil)
}
