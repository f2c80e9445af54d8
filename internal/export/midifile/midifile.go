// Package midifile writes render plans as standard MIDI files.
//
// Output is a type-0 SMF with a single track: one set-tempo meta event
// followed by the plan's note events, all on channel 0. Durations use the
// plan's ticks-per-quarter division so the MIDI timeline matches the audio
// timeline.
package midifile

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"sort"

	"soundcraft/internal/equivalence"
	"soundcraft/internal/services"
)

const (
	microsecondsPerMinute = 60_000_000

	eventTempo = iota
	eventNoteOff
	eventNoteOn
)

type event struct {
	tick int
	kind int
	key  int
	vel  int
}

// Write encodes the plan's note timeline to path as a type-0 MIDI file.
func Write(path string, plan equivalence.RenderPlan) error {
	data, err := Encode(plan)
	if err != nil {
		return services.Wrap(services.ErrExport, "midifile", "write", "", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return services.Wrap(services.ErrExport, "midifile", "write", "writing output file", err)
	}
	return nil
}

// Encode renders the plan to SMF bytes.
func Encode(plan equivalence.RenderPlan) ([]byte, error) {
	if plan.TempoBPM <= 0 {
		return nil, fmt.Errorf("tempo %d is not positive", plan.TempoBPM)
	}
	if plan.TicksPerQuarter <= 0 || plan.TicksPerQuarter > 0x7FFF {
		return nil, fmt.Errorf("division %d outside SMF range", plan.TicksPerQuarter)
	}

	events := []event{{tick: 0, kind: eventTempo}}
	for _, note := range plan.Notes {
		if note.Key < 0 || note.Key > 127 {
			return nil, fmt.Errorf("note key %d outside MIDI range", note.Key)
		}
		if note.StartTick < 0 || note.DurationTicks <= 0 {
			return nil, fmt.Errorf("note timeline invalid: start %d duration %d", note.StartTick, note.DurationTicks)
		}
		vel := note.Velocity
		if vel < 1 {
			vel = 1
		}
		if vel > 127 {
			vel = 127
		}
		events = append(events,
			event{tick: note.StartTick, kind: eventNoteOn, key: note.Key, vel: vel},
			event{tick: note.StartTick + note.DurationTicks, kind: eventNoteOff, key: note.Key, vel: 64},
		)
	}

	// Note-offs sort ahead of note-ons on the same tick so adjacent notes on
	// the same key never overlap.
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].tick != events[j].tick {
			return events[i].tick < events[j].tick
		}
		return events[i].kind < events[j].kind
	})

	var track bytes.Buffer
	tempo := microsecondsPerMinute / plan.TempoBPM
	lastTick := 0
	for _, ev := range events {
		writeVarLen(&track, ev.tick-lastTick)
		lastTick = ev.tick
		switch ev.kind {
		case eventTempo:
			track.Write([]byte{0xFF, 0x51, 0x03, byte(tempo >> 16), byte(tempo >> 8), byte(tempo)})
		case eventNoteOn:
			track.Write([]byte{0x90, byte(ev.key), byte(ev.vel)})
		case eventNoteOff:
			track.Write([]byte{0x80, byte(ev.key), byte(ev.vel)})
		}
	}
	writeVarLen(&track, 0)
	track.Write([]byte{0xFF, 0x2F, 0x00})

	var out bytes.Buffer
	out.WriteString("MThd")
	binary.Write(&out, binary.BigEndian, uint32(6))
	binary.Write(&out, binary.BigEndian, uint16(0)) // format 0
	binary.Write(&out, binary.BigEndian, uint16(1)) // single track
	binary.Write(&out, binary.BigEndian, uint16(plan.TicksPerQuarter))
	out.WriteString("MTrk")
	binary.Write(&out, binary.BigEndian, uint32(track.Len()))
	out.Write(track.Bytes())
	return out.Bytes(), nil
}

// writeVarLen emits a delta time as an SMF variable-length quantity: seven
// payload bits per byte, high bit set on all but the last.
func writeVarLen(buf *bytes.Buffer, value int) {
	if value < 0 {
		value = 0
	}
	encoded := []byte{byte(value & 0x7F)}
	for value >>= 7; value > 0; value >>= 7 {
		encoded = append(encoded, byte(value&0x7F)|0x80)
	}
	for i := len(encoded) - 1; i >= 0; i-- {
		buf.WriteByte(encoded[i])
	}
}
