package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"soundcraft/internal/session"
)

func newSessionsCommand(ctx *commandContext) *cobra.Command {
	sessionsCmd := &cobra.Command{
		Use:   "sessions",
		Short: "Inspect recorded rendering sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *session.Store) error {
				records, err := store.List(cmd.Context())
				if err != nil {
					return err
				}
				if len(records) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No sessions recorded.")
					return nil
				}
				rows := make([][]string, 0, len(records))
				for _, record := range records {
					rows = append(rows, []string{
						strconv.FormatInt(record.ID, 10),
						record.Name,
						record.State,
						record.CreatedAt.Local().Format("2006-01-02 15:04"),
						record.WAVPath,
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"ID", "Name", "State", "Created", "WAV"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft},
				))
				return nil
			})
		},
	}

	sessionsCmd.AddCommand(newSessionsShowCommand(ctx))
	sessionsCmd.AddCommand(newSessionsRemoveCommand(ctx))
	sessionsCmd.AddCommand(newSessionsClearCommand(ctx))
	return sessionsCmd
}

func newSessionsShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "Show one session in full",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *session.Store) error {
				record, err := store.GetByName(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if record == nil {
					return fmt.Errorf("session %q not found", args[0])
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Name:       %s\n", record.Name)
				fmt.Fprintf(out, "State:      %s\n", record.State)
				fmt.Fprintf(out, "Created:    %s\n", record.CreatedAt.Local().Format("2006-01-02 15:04:05"))
				fmt.Fprintf(out, "Updated:    %s\n", record.UpdatedAt.Local().Format("2006-01-02 15:04:05"))
				if record.ParametersJSON != "" {
					fmt.Fprintf(out, "Parameters: %s\n", record.ParametersJSON)
				}
				if record.WAVPath != "" {
					fmt.Fprintf(out, "WAV:        %s\n", record.WAVPath)
				}
				if record.MIDIPath != "" {
					fmt.Fprintf(out, "MIDI:       %s\n", record.MIDIPath)
				}
				if record.LogPath != "" {
					fmt.Fprintf(out, "Log:        %s\n", record.LogPath)
				}
				if record.ErrorMessage != "" {
					fmt.Fprintf(out, "Error:      %s\n", record.ErrorMessage)
				}
				return nil
			})
		},
	}
}

func newSessionsClearCommand(ctx *commandContext) *cobra.Command {
	var abortedOnly bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove session records",
		RunE: func(cmd *cobra.Command, args []string) error {
			state := ""
			if abortedOnly {
				state = "aborted"
			}
			return ctx.withStore(func(store *session.Store) error {
				cleared, err := store.Clear(cmd.Context(), state)
				if err != nil {
					return err
				}
				if abortedOnly {
					fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d aborted sessions\n", cleared)
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d sessions\n", cleared)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&abortedOnly, "aborted", false, "Clear only aborted sessions")
	return cmd
}

func newSessionsRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Remove a session record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid session id %q", args[0])
			}
			return ctx.withStore(func(store *session.Store) error {
				deleted, err := store.Delete(cmd.Context(), id)
				if err != nil {
					return err
				}
				if !deleted {
					return fmt.Errorf("session %d not found", id)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed session %d\n", id)
				return nil
			})
		},
	}
}
