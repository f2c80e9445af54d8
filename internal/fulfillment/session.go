package fulfillment

import (
	"context"
	"log/slog"
	"sync"
)

// Session owns the current machine and the last confirmed parameter set.
// It exists for re-entry: a collaborator can regenerate the previous
// artifact or start a fresh collection pass without tracking machine
// lifecycles itself. Sessions have no cross-process persistence; the
// session store records outcomes separately.
type Session struct {
	mu       sync.Mutex
	machine  *Machine
	lastSet  *ParameterSet
	renderer Renderer
	logger   *slog.Logger
}

// NewSession constructs a session with an Idle machine.
func NewSession(renderer Renderer, logger *slog.Logger) *Session {
	return &Session{
		machine:  NewMachine(renderer, logger),
		renderer: renderer,
		logger:   logger,
	}
}

// Machine returns the active machine.
func (s *Session) Machine() *Machine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.machine
}

// Begin starts a collection pass. If the current machine is terminal a
// fresh machine is created, seeded with any assignments queued during the
// previous render.
func (s *Session) Begin(intent string) (*Machine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.machine.State().Terminal() {
		carry := s.machine.CarryOver()
		s.machine = NewMachine(s.renderer, s.logger)
		if err := s.machine.Begin(intent); err != nil {
			return nil, err
		}
		for id, value := range carry {
			if err := s.machine.Assign(id, value); err != nil {
				return nil, err
			}
		}
		return s.machine, nil
	}

	if s.machine.State() == StateIdle {
		if err := s.machine.Begin(intent); err != nil {
			return nil, err
		}
	}
	return s.machine, nil
}

// Consent drives the active machine through rendering and records the
// confirmed parameter set on success.
func (s *Session) Consent(ctx context.Context) (Artifacts, error) {
	s.mu.Lock()
	machine := s.machine
	s.mu.Unlock()

	params, snapErr := machine.Snapshot()
	artifacts, err := machine.Consent(ctx)
	if err != nil {
		return Artifacts{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if snapErr == nil {
		s.lastSet = &params
	}
	return artifacts, nil
}

// LastConfirmed returns the parameter set from the most recent sealed
// render, if any.
func (s *Session) LastConfirmed() (ParameterSet, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastSet == nil {
		return ParameterSet{}, false
	}
	return *s.lastSet, true
}

// Regenerate starts a fresh machine seeded from the last confirmed set and
// renders it again.
func (s *Session) Regenerate(ctx context.Context, intent string) (Artifacts, error) {
	s.mu.Lock()
	last := s.lastSet
	s.mu.Unlock()
	if last == nil {
		return Artifacts{}, &IncompleteError{Missing: missingRequired(nil)}
	}

	machine := NewMachine(s.renderer, s.logger)
	if err := machine.Begin(intent); err != nil {
		return Artifacts{}, err
	}
	for _, id := range last.IDs() {
		value, _ := last.Get(id)
		if err := machine.Assign(id, value); err != nil {
			return Artifacts{}, err
		}
	}

	s.mu.Lock()
	s.machine = machine
	s.mu.Unlock()
	return s.Consent(ctx)
}
