// Package synth renders resolved plans into raw sample buffers.
//
// Rendering is purely deterministic: phase-accumulated sine oscillators,
// per-voice envelopes, and a final clamp to [-1, 1]. The same plan always
// produces the same buffer.
package synth
