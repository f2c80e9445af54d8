package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"soundcraft/internal/session"
	"soundcraft/internal/variables"
)

func newPresetsCommand(ctx *commandContext) *cobra.Command {
	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "Manage reusable variable presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *session.Store) error {
				presets, err := store.ListPresets(cmd.Context())
				if err != nil {
					return err
				}
				if len(presets) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No presets stored.")
					return nil
				}
				rows := make([][]string, 0, len(presets))
				for _, preset := range presets {
					rows = append(rows, []string{
						preset.Name,
						preset.ParametersJSON,
						preset.UpdatedAt.Local().Format("2006-01-02 15:04"),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"Name", "Parameters", "Updated"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft},
				))
				return nil
			})
		},
	}

	presetsCmd.AddCommand(newPresetsSaveCommand(ctx))
	presetsCmd.AddCommand(newPresetsShowCommand(ctx))
	presetsCmd.AddCommand(newPresetsRemoveCommand(ctx))
	return presetsCmd
}

func newPresetsSaveCommand(ctx *commandContext) *cobra.Command {
	var setFlags []string

	cmd := &cobra.Command{
		Use:   "save <name>",
		Short: "Save a preset from --set assignments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(setFlags) == 0 {
				return fmt.Errorf("a preset needs at least one --set assignment")
			}
			values := make(map[string]string, len(setFlags))
			for _, assignment := range setFlags {
				id, raw, err := splitAssignment(assignment)
				if err != nil {
					return err
				}
				def, ok := variables.Lookup(id)
				if !ok {
					return fmt.Errorf("unknown variable %q", id)
				}
				value, err := def.Validate(raw)
				if err != nil {
					return err
				}
				values[id] = value
			}
			data, err := json.Marshal(values)
			if err != nil {
				return err
			}
			return ctx.withStore(func(store *session.Store) error {
				if err := store.SavePreset(cmd.Context(), args[0], string(data)); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Saved preset %q with %d assignments\n", args[0], len(values))
				return nil
			})
		},
	}

	cmd.Flags().StringArrayVar(&setFlags, "set", nil, "Assign a variable as id=value (repeatable)")
	return cmd
}

func newPresetsShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "Show one preset's assignments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *session.Store) error {
				preset, err := store.GetPreset(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if preset == nil {
					return fmt.Errorf("preset %q not found", args[0])
				}
				var values map[string]string
				if err := json.Unmarshal([]byte(preset.ParametersJSON), &values); err != nil {
					return fmt.Errorf("decode preset %q: %w", args[0], err)
				}
				rows := make([][]string, 0, len(values))
				for _, def := range variables.Catalog() {
					if value, ok := values[def.ID]; ok {
						rows = append(rows, []string{def.Tier.String(), def.ID, value})
					}
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"Tier", "ID", "Value"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft},
				))
				return nil
			})
		},
	}
}

func newPresetsRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <name>",
		Short: "Remove a preset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *session.Store) error {
				deleted, err := store.DeletePreset(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if !deleted {
					return fmt.Errorf("preset %q not found", args[0])
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed preset %q\n", args[0])
				return nil
			})
		},
	}
}
