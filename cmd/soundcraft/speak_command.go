package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"soundcraft/internal/services/piper"
)

func newSpeakCommand(ctx *commandContext) *cobra.Command {
	var (
		voiceFlag string
		outFlag   string
	)

	cmd := &cobra.Command{
		Use:   "speak <text>",
		Short: "Synthesize spoken audio with piper",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			voice := strings.TrimSpace(voiceFlag)
			if voice == "" {
				voice = cfg.TTS.Voice
			}
			outPath := strings.TrimSpace(outFlag)
			if outPath == "" {
				outPath = filepath.Join(cfg.Paths.OutputDir, uuid.NewString()+"_Speech.wav")
			}

			client, err := piper.New(cfg.TTS.Binary, cfg.TTS.ModelDir, cfg.TTS.TimeoutSeconds)
			if err != nil {
				return err
			}
			text := strings.Join(args, " ")
			if err := client.Speak(cmd.Context(), text, voice, outPath); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Speech written to %s\n", outPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&voiceFlag, "voice", "", "Voice model name (default from config)")
	cmd.Flags().StringVarP(&outFlag, "out", "o", "", "Output WAV path")
	return cmd
}
