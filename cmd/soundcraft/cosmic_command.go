package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"soundcraft/internal/almanac"
	"soundcraft/internal/equivalence"
	"soundcraft/internal/export/wavfile"
	"soundcraft/internal/synth"
)

const cosmicToneSeconds = 60

func newCosmicCommand(ctx *commandContext) *cobra.Command {
	var (
		harmonicFlag int
		latFlag      float64
		lonFlag      float64
		atFlag       string
		offsetFlag   float64
		toneFlag     bool
		logFlag      bool
	)

	cmd := &cobra.Command{
		Use:   "cosmic <cycle>",
		Short: "Derive an audible frequency from a cosmic cycle",
		Long: `Cosmic prints the full sidereal derivation for a cycle harmonic: Julian
date, local sidereal time, the galactic center's hour angle and altitude,
the phase and altitude weights, and the octave-folded audible frequency.
With --tone and --log the derivation is written out as a sixty second
tone and a markdown grimoire log.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cycle, ok := equivalence.LookupCycle(args[0])
			if !ok {
				names := make([]string, 0, len(equivalence.Cycles))
				for _, c := range equivalence.Cycles {
					names = append(names, c.Name)
				}
				return fmt.Errorf("unknown cycle %q (one of: %s)", args[0], strings.Join(names, ", "))
			}
			if harmonicFlag < 1 || harmonicFlag > 64 {
				return fmt.Errorf("harmonic %d outside [1, 64]", harmonicFlag)
			}

			at, err := resolveInstant(atFlag, offsetFlag)
			if err != nil {
				return err
			}

			sighting := almanac.GalacticCenter(at, latFlag, lonFlag)

			baseHz := cycle.BaseNanoHz * 1e-9
			cosmicHz := float64(harmonicFlag) * baseHz
			representedHz := cosmicHz * sighting.CompositeWeight
			audible, err := equivalence.OWMToAudible(representedHz, baseHz)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Cycle:                  %s (base %g nHz)\n", cycle.Name, cycle.BaseNanoHz)
			fmt.Fprintf(out, "Harmonic:               %d\n", harmonicFlag)
			fmt.Fprintf(out, "Instant (UTC):          %s\n", at.UTC().Format(time.RFC3339))
			fmt.Fprintf(out, "Julian Date:            %.5f\n", sighting.JulianDate)
			fmt.Fprintf(out, "Local Sidereal Time:    %.4f h\n", sighting.LSTHours)
			fmt.Fprintf(out, "GC Hour Angle:          %.4f h\n", sighting.HourAngleHours)
			fmt.Fprintf(out, "GC Altitude:            %.4f deg\n", sighting.AltitudeDeg)
			fmt.Fprintf(out, "Phase Weight:           %.6f\n", sighting.PhaseWeight)
			fmt.Fprintf(out, "Altitude Weight:        %.6f\n", sighting.AltitudeWeight)
			fmt.Fprintf(out, "Composite Weight:       %.6g\n", sighting.CompositeWeight)
			fmt.Fprintf(out, "Audible Frequency:      %.6f Hz\n", audible)

			if !toneFlag && !logFlag {
				return nil
			}

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			base := fmt.Sprintf("%s_n%d_%s",
				strings.ReplaceAll(cycle.Name, " ", "_"),
				harmonicFlag,
				at.UTC().Format("20060102_1504"))

			var tonePath string
			if toneFlag {
				tonePath = filepath.Join(cfg.Paths.OutputDir, base+"_Tone.wav")
				if err := writeCosmicTone(cmd.Context(), tonePath, audible, cfg.Audio.SampleRate); err != nil {
					return err
				}
				fmt.Fprintf(out, "Tone written:           %s\n", tonePath)
			}
			if logFlag {
				logPath := filepath.Join(cfg.Paths.OutputDir, base+"_GrimoireLog.md")
				md := cosmicLog(cycle, harmonicFlag, at, latFlag, lonFlag, sighting, representedHz, audible, tonePath)
				if err := os.WriteFile(logPath, []byte(md), 0o644); err != nil {
					return fmt.Errorf("write grimoire log: %w", err)
				}
				fmt.Fprintf(out, "Log written:            %s\n", logPath)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&harmonicFlag, "harmonic", "n", 1, "Harmonic multiple of the cycle's base frequency")
	cmd.Flags().Float64Var(&latFlag, "lat", 0, "Observer latitude in decimal degrees")
	cmd.Flags().Float64Var(&lonFlag, "lon", 0, "Observer longitude in decimal degrees (east positive)")
	cmd.Flags().StringVar(&atFlag, "at", "", "Local instant as 2006-01-02 15:04 (default: now)")
	cmd.Flags().Float64Var(&offsetFlag, "utc-offset", 0, "Hours ahead of UTC for --at")
	cmd.Flags().BoolVar(&toneFlag, "tone", false, "Write a sixty second tone at the derived frequency")
	cmd.Flags().BoolVar(&logFlag, "log", false, "Write a markdown grimoire log of the derivation")
	return cmd
}

// resolveInstant converts a local "2006-01-02 15:04" instant and UTC offset
// into absolute time. An empty instant means now.
func resolveInstant(at string, utcOffsetHours float64) (time.Time, error) {
	at = strings.TrimSpace(at)
	if at == "" {
		return time.Now().UTC(), nil
	}
	local, err := time.Parse("2006-01-02 15:04", at)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse --at %q: expected 2006-01-02 15:04", at)
	}
	return local.Add(-time.Duration(utcOffsetHours * float64(time.Hour))), nil
}

func writeCosmicTone(ctx context.Context, path string, freq float64, sampleRate int) error {
	plan := equivalence.RenderPlan{
		SampleRate:   sampleRate,
		Channels:     1,
		TotalSamples: cosmicToneSeconds * sampleRate,
		Voices: []equivalence.VoiceSpec{
			{Oscillators: 1, FreqA: freq, Gain: 0.9, Envelope: equivalence.EnvelopeFlat},
		},
	}
	buf, err := synth.Render(ctx, plan)
	if err != nil {
		return err
	}
	return wavfile.Write(path, buf, equivalence.FormatPCM16)
}

func cosmicLog(cycle equivalence.Cycle, harmonic int, at time.Time, lat, lon float64, s almanac.Sighting, representedHz, audible float64, tonePath string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Cosmic to Audible Frequency Log\n\n")
	fmt.Fprintf(&b, "**Cycle:** %s  \n", cycle.Name)
	fmt.Fprintf(&b, "**Harmonic (n):** %d  \n\n", harmonic)
	fmt.Fprintf(&b, "**UTC Date/Time:** %s  \n", at.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "**Julian Date (UTC):** %.5f  \n\n", s.JulianDate)
	fmt.Fprintf(&b, "**Latitude:** %g deg  \n", lat)
	fmt.Fprintf(&b, "**Longitude:** %g deg  \n", lon)
	fmt.Fprintf(&b, "**Local Sidereal Time:** %.4f h  \n", s.LSTHours)
	fmt.Fprintf(&b, "**Galactic Center Hour Angle:** %.4f h  \n", s.HourAngleHours)
	fmt.Fprintf(&b, "**Galactic Center Altitude:** %.4f deg  \n\n", s.AltitudeDeg)
	fmt.Fprintf(&b, "**Weights**  \n")
	fmt.Fprintf(&b, "- Phase = %.6f  \n", s.PhaseWeight)
	fmt.Fprintf(&b, "- Altitude = %.6f  \n", s.AltitudeWeight)
	fmt.Fprintf(&b, "- Composite = %.6g  \n\n", s.CompositeWeight)
	fmt.Fprintf(&b, "**Base f0:** %g nHz  \n", cycle.BaseNanoHz)
	fmt.Fprintf(&b, "**Cosmic fn (Represented):** %.6g Hz  \n", representedHz)
	fmt.Fprintf(&b, "**Audible (OWM):** %.6f Hz  \n", audible)
	if tonePath != "" {
		fmt.Fprintf(&b, "\n**Tone File:** %s  \n", tonePath)
	}
	return b.String()
}
