package wavfile

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/wav"

	"soundcraft/internal/equivalence"
	"soundcraft/internal/synth"
)

func sineBuffer(channels int) *synth.Buffer {
	const frames = 4800
	buf := &synth.Buffer{
		Channels:   channels,
		SampleRate: 48000,
		Data:       make([]float64, frames*channels),
	}
	for frame := 0; frame < frames; frame++ {
		v := 0.2 * math.Sin(2*math.Pi*440*float64(frame)/48000)
		for ch := 0; ch < channels; ch++ {
			buf.Data[frame*channels+ch] = v
		}
	}
	return buf
}

func TestWritePCM16(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.wav")
	buf := sineBuffer(1)
	if err := Write(path, buf, equivalence.FormatPCM16); err != nil {
		t.Fatalf("write: %v", err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer file.Close()

	dec := wav.NewDecoder(file)
	dec.ReadInfo()
	if dec.Err() != nil {
		t.Fatalf("decode header: %v", dec.Err())
	}
	if dec.SampleRate != 48000 {
		t.Errorf("sample rate %d want 48000", dec.SampleRate)
	}
	if dec.NumChans != 1 {
		t.Errorf("channels %d want 1", dec.NumChans)
	}
	if dec.BitDepth != 16 {
		t.Errorf("bit depth %d want 16", dec.BitDepth)
	}
	if dec.WavAudioFormat != 1 {
		t.Errorf("audio format %d want 1 (PCM)", dec.WavAudioFormat)
	}

	pcm, err := dec.FullPCMBuffer()
	if err != nil {
		t.Fatalf("decode samples: %v", err)
	}
	if len(pcm.Data) != len(buf.Data) {
		t.Fatalf("sample count %d want %d", len(pcm.Data), len(buf.Data))
	}
	for i, want := range buf.Data {
		got := float64(pcm.Data[i]) / 32767
		if math.Abs(got-want) > 1.0/32767 {
			t.Fatalf("sample %d: %g want %g", i, got, want)
		}
	}
}

func TestWriteFloat32Stereo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.wav")
	buf := sineBuffer(2)
	if err := Write(path, buf, equivalence.FormatFloat32); err != nil {
		t.Fatalf("write: %v", err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer file.Close()

	dec := wav.NewDecoder(file)
	dec.ReadInfo()
	if dec.Err() != nil {
		t.Fatalf("decode header: %v", dec.Err())
	}
	if dec.NumChans != 2 {
		t.Errorf("channels %d want 2", dec.NumChans)
	}
	if dec.BitDepth != 32 {
		t.Errorf("bit depth %d want 32", dec.BitDepth)
	}
	if dec.WavAudioFormat != 3 {
		t.Errorf("audio format %d want 3 (IEEE float)", dec.WavAudioFormat)
	}
}

func TestWriteUnknownFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.wav")
	if err := Write(path, sineBuffer(1), equivalence.SampleFormat("mp3")); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestWriteBadPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "out.wav")
	if err := Write(path, sineBuffer(1), equivalence.FormatPCM16); err == nil {
		t.Fatal("expected error for unwritable path")
	}
}
