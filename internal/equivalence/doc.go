// Package equivalence maps a completed parameter set into a concrete render
// plan: the Smith Equivalence.
//
// The mapping is a pure function. Symbolic ritual variables (key, scale,
// intent polarity, invocation intensity, ...) resolve through fixed,
// versioned lookup tables into oscillator frequencies, gains, envelope
// shapes, and MIDI note events. Identical parameter sets always produce
// identical plans; there is no randomness and no clock access anywhere in
// this package.
//
// Table values are policy, not physics. They are pinned in tables.go and
// must only change together with a policy version bump.
package equivalence
