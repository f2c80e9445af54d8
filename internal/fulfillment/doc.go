// Package fulfillment gates rendering behind the variable collection
// protocol.
//
// A Machine moves through Idle, Collecting, AwaitingConsent, Rendering, and
// the terminal Sealed or Aborted states. Assignments are validated against
// the variable catalog one at a time; consent is only accepted once every
// Tier I variable holds a valid value, and the completed ParameterSet is the
// only path into the equivalence mapper. Signals are processed strictly in
// arrival order; assignments that arrive while a render is in flight are
// queued and surfaced as carry-over values for the next machine.
//
// Terminal machines are never reused. A Session owns the current machine and
// the last confirmed parameter set so callers can regenerate artifacts or
// start a fresh collection pass.
package fulfillment
