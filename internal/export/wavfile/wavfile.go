// Package wavfile writes rendered sample buffers as RIFF/WAVE files.
package wavfile

import (
	"fmt"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"soundcraft/internal/equivalence"
	"soundcraft/internal/services"
	"soundcraft/internal/synth"
)

// Write encodes the buffer to path in the requested sample format. PCM16
// produces a 16-bit integer WAV, Float32 a 32-bit IEEE float WAV. The file
// is created or truncated.
func Write(path string, buf *synth.Buffer, format equivalence.SampleFormat) error {
	file, err := os.Create(path)
	if err != nil {
		return services.Wrap(services.ErrExport, "wavfile", "write", "creating output file", err)
	}
	defer file.Close()

	var encodeErr error
	switch format {
	case equivalence.FormatPCM16:
		encodeErr = writePCM16(file, buf)
	case equivalence.FormatFloat32:
		encodeErr = writeFloat32(file, buf)
	default:
		encodeErr = fmt.Errorf("unknown sample format %q", format)
	}
	if encodeErr != nil {
		return services.Wrap(services.ErrExport, "wavfile", "write", "encoding samples", encodeErr)
	}
	if err := file.Close(); err != nil {
		return services.Wrap(services.ErrExport, "wavfile", "write", "closing output file", err)
	}
	return nil
}

func writePCM16(file *os.File, buf *synth.Buffer) error {
	enc := wav.NewEncoder(file, buf.SampleRate, 16, buf.Channels, 1)
	ints := make([]int, len(buf.Data))
	for i, sample := range buf.Data {
		ints[i] = int(math.Round(sample * 32767))
	}
	intBuf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: buf.Channels,
			SampleRate:  buf.SampleRate,
		},
		Data:           ints,
		SourceBitDepth: 16,
	}
	if err := enc.Write(intBuf); err != nil {
		return err
	}
	return enc.Close()
}

func writeFloat32(file *os.File, buf *synth.Buffer) error {
	enc := wav.NewEncoder(file, buf.SampleRate, 32, buf.Channels, 3)
	for _, sample := range buf.Data {
		if err := enc.WriteFrame(float32(sample)); err != nil {
			return err
		}
	}
	return enc.Close()
}
