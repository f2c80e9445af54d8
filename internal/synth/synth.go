package synth

import (
	"context"
	"fmt"
	"math"

	"soundcraft/internal/equivalence"
	"soundcraft/internal/services"
)

// Buffer holds rendered audio as interleaved float64 samples in [-1, 1].
type Buffer struct {
	Channels   int
	SampleRate int
	Data       []float64
	// Clipped counts the samples that exceeded full scale before the final
	// clamp.
	Clipped int
}

// Frames returns the number of sample frames in the buffer.
func (b *Buffer) Frames() int {
	if b.Channels == 0 {
		return 0
	}
	return len(b.Data) / b.Channels
}

// Cancellation is checked between blocks of this many frames.
const blockFrames = 8192

// Render synthesizes a plan into a sample buffer. Dual-oscillator voices
// send their low oscillator to the left channel and the high oscillator to
// the right; in a mono plan the pair is summed at equal weight. Single
// oscillator voices are delivered identically to every channel.
func Render(ctx context.Context, plan equivalence.RenderPlan) (*Buffer, error) {
	if plan.SampleRate <= 0 {
		return nil, services.Wrap(services.ErrValidation, "synth", "render",
			fmt.Sprintf("sample rate %d is not positive", plan.SampleRate), nil)
	}
	if plan.Channels != 1 && plan.Channels != 2 {
		return nil, services.Wrap(services.ErrValidation, "synth", "render",
			fmt.Sprintf("unsupported channel count %d", plan.Channels), nil)
	}
	if plan.TotalSamples < 0 {
		return nil, services.Wrap(services.ErrValidation, "synth", "render",
			fmt.Sprintf("negative sample count %d", plan.TotalSamples), nil)
	}

	buf := &Buffer{
		Channels:   plan.Channels,
		SampleRate: plan.SampleRate,
		Data:       make([]float64, plan.TotalSamples*plan.Channels),
	}

	for _, voice := range plan.Voices {
		if err := renderVoice(ctx, buf, voice, plan.TotalSamples); err != nil {
			return nil, err
		}
	}

	for i, sample := range buf.Data {
		if sample > 1 {
			buf.Data[i] = 1
			buf.Clipped++
		} else if sample < -1 {
			buf.Data[i] = -1
			buf.Clipped++
		}
	}
	return buf, nil
}

func renderVoice(ctx context.Context, buf *Buffer, voice equivalence.VoiceSpec, frames int) error {
	rate := float64(buf.SampleRate)
	stepA := 2 * math.Pi * voice.FreqA / rate
	stepB := 2 * math.Pi * voice.FreqB / rate
	dual := voice.Oscillators == 2

	var phaseA, phaseB float64
	for frame := 0; frame < frames; frame++ {
		if frame%blockFrames == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		pos := 0.0
		if frames > 1 {
			pos = float64(frame) / float64(frames-1)
		}
		gain := voice.Gain * voice.Envelope.Gain(pos)

		a := gain * math.Sin(phaseA)
		phaseA += stepA
		if phaseA >= 2*math.Pi {
			phaseA -= 2 * math.Pi
		}

		base := frame * buf.Channels
		if dual {
			b := gain * math.Sin(phaseB)
			phaseB += stepB
			if phaseB >= 2*math.Pi {
				phaseB -= 2 * math.Pi
			}
			if buf.Channels == 2 {
				buf.Data[base] += a
				buf.Data[base+1] += b
			} else {
				buf.Data[base] += (a + b) * 0.5
			}
			continue
		}
		for ch := 0; ch < buf.Channels; ch++ {
			buf.Data[base+ch] += a
		}
	}
	return nil
}
