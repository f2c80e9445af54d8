package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"soundcraft/internal/fulfillment"
	"soundcraft/internal/logging"
	"soundcraft/internal/render"
	"soundcraft/internal/session"
	"soundcraft/internal/variables"
)

func newRenderCommand(ctx *commandContext) *cobra.Command {
	var (
		setFlags   []string
		skipFlags  []string
		presetFlag string
		intentFlag string
		outFlag    string
		wavOnly    bool
		midiOnly   bool
		yesFlag    bool
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Collect ritual variables and render audio artifacts",
		Long: `Render drives one full fulfillment pass: variables are assigned with
--set, optional tiers declined with --skip, and the render is confirmed
with --yes. Without --yes the resolved variables are printed for review
and nothing is rendered.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger := ctx.logger()
			out := cmd.OutOrStdout()

			writeWAV, writeMIDI := true, true
			if wavOnly || midiOnly {
				writeWAV, writeMIDI = wavOnly, midiOnly
			}
			renderer := render.New(cfg, logger,
				render.WithOutputDir(outFlag),
				render.WithOutputs(writeWAV, writeMIDI))
			machine := fulfillment.NewMachine(renderer, logger)
			if err := machine.Begin(strings.TrimSpace(intentFlag)); err != nil {
				return err
			}

			return ctx.withStore(func(store *session.Store) error {
				if presetFlag != "" {
					preset, err := store.GetPreset(cmd.Context(), presetFlag)
					if err != nil {
						return err
					}
					if preset == nil {
						return fmt.Errorf("preset %q not found", presetFlag)
					}
					var values map[string]string
					if err := json.Unmarshal([]byte(preset.ParametersJSON), &values); err != nil {
						return fmt.Errorf("decode preset %q: %w", presetFlag, err)
					}
					for _, def := range variables.Catalog() {
						if value, ok := values[def.ID]; ok {
							if err := machine.Assign(def.ID, value); err != nil {
								return err
							}
						}
					}
				}

				for _, assignment := range setFlags {
					id, value, err := splitAssignment(assignment)
					if err != nil {
						return err
					}
					if err := machine.Assign(id, value); err != nil {
						return err
					}
				}
				for _, id := range skipFlags {
					if err := machine.Skip(strings.TrimSpace(id)); err != nil {
						return err
					}
				}

				if missing := machine.Missing(); len(missing) > 0 {
					fmt.Fprintln(out, "Mandatory variables still unfulfilled:")
					for _, id := range missing {
						def, _ := variables.Lookup(id)
						fmt.Fprintf(out, "  --set %s=...  (%s)\n", id, def.Label)
					}
					return errors.New("cannot render an incomplete variable set")
				}

				params, err := machine.Snapshot()
				if err != nil {
					return err
				}

				if !yesFlag {
					fmt.Fprintln(out, renderParameterTable(params))
					fmt.Fprintln(out, "Re-run with --yes to confirm and render.")
					return nil
				}

				record, err := store.NewSession(cmd.Context(), sessionName(params), string(machine.State()))
				if err != nil {
					return err
				}
				record.ParametersJSON = encodeParameters(params)

				artifacts, renderErr := machine.Consent(cmd.Context())

				record.State = string(machine.State())
				notifier := ctx.notifier()
				if renderErr != nil {
					record.ErrorMessage = renderErr.Error()
					if err := store.Update(cmd.Context(), record); err != nil {
						logger.Error("session record update failed", logging.Error(err))
					}
					if err := notifier.NotifySessionAborted(context.WithoutCancel(cmd.Context()), record.Name, renderErr); err != nil {
						logger.Warn("abort notification failed", logging.Error(err))
					}
					return renderErr
				}

				record.WAVPath = artifacts.WAVPath
				record.MIDIPath = artifacts.MIDIPath
				record.LogPath = artifacts.LogPath
				if err := store.Update(cmd.Context(), record); err != nil {
					return err
				}
				if err := notifier.NotifySessionSealed(cmd.Context(), record.Name, artifacts.WAVPath); err != nil {
					logger.Warn("sealed notification failed", logging.Error(err))
				}

				fmt.Fprintf(out, "Sealed session %s\n", record.Name)
				if artifacts.WAVPath != "" {
					fmt.Fprintf(out, "  WAV:  %s\n", artifacts.WAVPath)
				}
				if artifacts.MIDIPath != "" {
					fmt.Fprintf(out, "  MIDI: %s\n", artifacts.MIDIPath)
				}
				fmt.Fprintf(out, "  Log:  %s\n", artifacts.LogPath)
				if artifacts.Clipped > 0 {
					fmt.Fprintf(out, "  Warning: %d samples clipped; consider a lower intensity\n", artifacts.Clipped)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringArrayVar(&setFlags, "set", nil, "Assign a variable as id=value (repeatable)")
	cmd.Flags().StringArrayVar(&skipFlags, "skip", nil, "Decline an optional variable by id (repeatable)")
	cmd.Flags().StringVar(&presetFlag, "preset", "", "Seed assignments from a stored preset")
	cmd.Flags().StringVar(&intentFlag, "intent", "", "Free-form intent recorded with the session")
	cmd.Flags().StringVar(&outFlag, "out", "", "Override the configured output directory")
	cmd.Flags().BoolVar(&wavOnly, "wav", false, "Write only the WAV artifact")
	cmd.Flags().BoolVar(&midiOnly, "midi", false, "Write only the MIDI artifact")
	cmd.Flags().BoolVarP(&yesFlag, "yes", "y", false, "Confirm the variable set and render")
	return cmd
}

func splitAssignment(raw string) (string, string, error) {
	id, value, found := strings.Cut(raw, "=")
	id = strings.TrimSpace(id)
	value = strings.TrimSpace(value)
	if !found || id == "" || value == "" {
		return "", "", fmt.Errorf("invalid assignment %q: expected id=value", raw)
	}
	return id, value, nil
}

func sessionName(params fulfillment.ParameterSet) string {
	if name, ok := params.Get(variables.ArtifactName); ok && strings.TrimSpace(name) != "" {
		return strings.ReplaceAll(strings.TrimSpace(name), " ", "_")
	}
	return uuid.NewString()
}

func encodeParameters(params fulfillment.ParameterSet) string {
	values := make(map[string]string, params.Len())
	for _, id := range params.IDs() {
		value, _ := params.Get(id)
		values[id] = value
	}
	data, err := json.Marshal(values)
	if err != nil {
		return ""
	}
	return string(data)
}

func renderParameterTable(params fulfillment.ParameterSet) string {
	rows := make([][]string, 0, len(variables.Catalog()))
	for _, def := range variables.Catalog() {
		value, assigned := params.Get(def.ID)
		source := "assigned"
		if !assigned {
			if def.Default == "" {
				continue
			}
			value = def.Default
			source = "default"
		}
		rows = append(rows, []string{def.Tier.String(), def.Label, value, source})
	}
	return renderTable(
		[]string{"Tier", "Variable", "Value", "Source"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft},
	)
}
