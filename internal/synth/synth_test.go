package synth

import (
	"context"
	"math"
	"reflect"
	"testing"

	"soundcraft/internal/equivalence"
)

func dronePlan(frames int, voices ...equivalence.VoiceSpec) equivalence.RenderPlan {
	return equivalence.RenderPlan{
		SampleRate:   48000,
		Channels:     1,
		TotalSamples: frames,
		Voices:       voices,
	}
}

func TestRenderFrameCount(t *testing.T) {
	plan := dronePlan(12345, equivalence.VoiceSpec{
		Oscillators: 1, FreqA: 440, Gain: 0.2, Envelope: equivalence.EnvelopeFlat,
	})
	buf, err := Render(context.Background(), plan)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if buf.Frames() != 12345 {
		t.Fatalf("frames %d want 12345", buf.Frames())
	}
	if len(buf.Data) != 12345 {
		t.Fatalf("mono data length %d want 12345", len(buf.Data))
	}
}

func TestRenderDeterminism(t *testing.T) {
	plan := equivalence.RenderPlan{
		SampleRate:   48000,
		Channels:     2,
		TotalSamples: 4800,
		Voices: []equivalence.VoiceSpec{
			{Oscillators: 2, FreqA: 438, FreqB: 442, Gain: 0.2, Envelope: equivalence.EnvelopeArc},
			{Oscillators: 1, FreqA: 220, Gain: 0.1, Envelope: equivalence.EnvelopeRise},
		},
	}
	first, err := Render(context.Background(), plan)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	second, err := Render(context.Background(), plan)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatal("identical plans rendered different buffers")
	}
}

func TestRenderSineAmplitude(t *testing.T) {
	plan := dronePlan(48000, equivalence.VoiceSpec{
		Oscillators: 1, FreqA: 440, Gain: 0.2, Envelope: equivalence.EnvelopeFlat,
	})
	buf, err := Render(context.Background(), plan)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	peak := 0.0
	for _, s := range buf.Data {
		if a := math.Abs(s); a > peak {
			peak = a
		}
	}
	if math.Abs(peak-0.2) > 1e-3 {
		t.Fatalf("peak %g want ~0.2", peak)
	}
	if buf.Clipped != 0 {
		t.Fatalf("unexpected clipping: %d samples", buf.Clipped)
	}
	// Phase starts at zero.
	if buf.Data[0] != 0 {
		t.Fatalf("first sample %g want 0", buf.Data[0])
	}
}

func TestRenderBinauralChannelRouting(t *testing.T) {
	stereo := equivalence.RenderPlan{
		SampleRate:   48000,
		Channels:     2,
		TotalSamples: 4800,
		Voices: []equivalence.VoiceSpec{
			{Oscillators: 2, FreqA: 438, FreqB: 442, Gain: 0.2, Envelope: equivalence.EnvelopeFlat},
		},
	}
	buf, err := Render(context.Background(), stereo)
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	left := dronePlan(4800, equivalence.VoiceSpec{
		Oscillators: 1, FreqA: 438, Gain: 0.2, Envelope: equivalence.EnvelopeFlat,
	})
	leftBuf, err := Render(context.Background(), left)
	if err != nil {
		t.Fatalf("render left reference: %v", err)
	}
	right := dronePlan(4800, equivalence.VoiceSpec{
		Oscillators: 1, FreqA: 442, Gain: 0.2, Envelope: equivalence.EnvelopeFlat,
	})
	rightBuf, err := Render(context.Background(), right)
	if err != nil {
		t.Fatalf("render right reference: %v", err)
	}

	for frame := 0; frame < 4800; frame++ {
		if got, want := buf.Data[frame*2], leftBuf.Data[frame]; math.Abs(got-want) > 1e-9 {
			t.Fatalf("left frame %d: %g want %g", frame, got, want)
		}
		if got, want := buf.Data[frame*2+1], rightBuf.Data[frame]; math.Abs(got-want) > 1e-9 {
			t.Fatalf("right frame %d: %g want %g", frame, got, want)
		}
	}
}

func TestRenderMonoSumsDualOscillator(t *testing.T) {
	plan := dronePlan(4800, equivalence.VoiceSpec{
		Oscillators: 2, FreqA: 438, FreqB: 442, Gain: 0.2, Envelope: equivalence.EnvelopeFlat,
	})
	buf, err := Render(context.Background(), plan)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	// Equal-weight sum keeps the voice at its nominal gain.
	peak := 0.0
	for _, s := range buf.Data {
		if a := math.Abs(s); a > peak {
			peak = a
		}
	}
	if peak > 0.2+1e-9 {
		t.Fatalf("mono sum peak %g exceeds voice gain", peak)
	}
}

func TestRenderClampCountsClippedSamples(t *testing.T) {
	plan := dronePlan(4800, equivalence.VoiceSpec{
		Oscillators: 1, FreqA: 100, Gain: 1.5, Envelope: equivalence.EnvelopeFlat,
	})
	buf, err := Render(context.Background(), plan)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if buf.Clipped == 0 {
		t.Fatal("expected clipped samples at gain 1.5")
	}
	for i, s := range buf.Data {
		if s < -1 || s > 1 {
			t.Fatalf("sample %d = %g escaped the clamp", i, s)
		}
	}
}

func TestRenderEnvelopeShapesOutput(t *testing.T) {
	plan := dronePlan(48000, equivalence.VoiceSpec{
		Oscillators: 1, FreqA: 440, Gain: 0.2, Envelope: equivalence.EnvelopeRise,
	})
	buf, err := Render(context.Background(), plan)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	firstPeak := 0.0
	for _, s := range buf.Data[:4800] {
		if a := math.Abs(s); a > firstPeak {
			firstPeak = a
		}
	}
	lastPeak := 0.0
	for _, s := range buf.Data[len(buf.Data)-4800:] {
		if a := math.Abs(s); a > lastPeak {
			lastPeak = a
		}
	}
	if firstPeak >= lastPeak {
		t.Fatalf("rise envelope did not grow: first %g last %g", firstPeak, lastPeak)
	}
}

func TestRenderCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	plan := dronePlan(480000, equivalence.VoiceSpec{
		Oscillators: 1, FreqA: 440, Gain: 0.2, Envelope: equivalence.EnvelopeFlat,
	})
	if _, err := Render(ctx, plan); err == nil {
		t.Fatal("expected cancellation error")
	}
}

func TestRenderRejectsBadPlans(t *testing.T) {
	if _, err := Render(context.Background(), equivalence.RenderPlan{SampleRate: 0, Channels: 1}); err == nil {
		t.Fatal("expected error for zero sample rate")
	}
	if _, err := Render(context.Background(), equivalence.RenderPlan{SampleRate: 48000, Channels: 5}); err == nil {
		t.Fatal("expected error for bad channel count")
	}
}
