package main

import (
	"encoding/json"
	"fmt"

	"github.com/livingtrust/livingtrust/internal/cli"
	"github.com/livingtrust/livingtrust/internal/presentation/graph"
	"github.com/livingtrust/livingtrust/internal/wizard"
	"github.com/livingtrust/livingtrust/pkg/persistence/middleware"
	"github.com/livingtrust/livingtrust/pkg/ports"
	"github.com/spf13/cobra"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage saved wizard sessions",
	Long:  `List, inspect, and remove the wizard sessions kept for resuming.`,
}

var sessionLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List all saved sessions",
	RunE: withSessionStore(func(cmd *cobra.Command, store ports.WizardStore, args []string) error {
		sessions, err := store.List(cmd.Context())
		if err != nil {
			return fmt.Errorf("listing sessions: %w", err)
		}
		out := cmd.OutOrStdout()
		if len(sessions) == 0 {
			fmt.Fprintln(out, "No saved sessions found.")
			return nil
		}
		fmt.Fprintln(out, "Saved Sessions:")
		for _, id := range sessions {
			st, err := store.Load(cmd.Context(), id)
			if err != nil {
				fmt.Fprintf(out, "- %s (unreadable: %v)\n", id, err)
				continue
			}
			fmt.Fprintf(out, "- %s  %-10s  updated %s\n", id, st.Phase, st.UpdatedAt.Format("2006-01-02 15:04"))
		}
		return nil
	}),
}

var sessionInspectCmd = &cobra.Command{
	Use:   "inspect <session-id>",
	Short: "Inspect the state of a session",
	Args:  cobra.ExactArgs(1),
	RunE: withSessionStore(func(cmd *cobra.Command, store ports.WizardStore, args []string) error {
		if redact, _ := cmd.Flags().GetBool("redact"); redact {
			store = middleware.Chain(store, middleware.NewRedactingView(middleware.PersonalFields))
		}
		state, err := store.Load(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("loading session '%s': %w", args[0], err)
		}

		if asGraph, _ := cmd.Flags().GetBool("graph"); asGraph {
			fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(wizard.Steps(), graph.OverlayOf(state)))
			return nil
		}
		data, err := json.MarshalIndent(state, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling state: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}),
}

var sessionRmCmd = &cobra.Command{
	Use:   "rm [session-id...]",
	Short: "Remove one or more sessions",
	RunE: withSessionStore(func(cmd *cobra.Command, store ports.WizardStore, args []string) error {
		if all, _ := cmd.Flags().GetBool("all"); all {
			ids, err := store.List(cmd.Context())
			if err != nil {
				return err
			}
			args = ids
		} else if len(args) == 0 {
			return fmt.Errorf("requires at least 1 session id or --all")
		}

		var failed int
		for _, id := range args {
			if err := store.Delete(cmd.Context(), id); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Error removing '%s': %v\n", id, err)
				failed++
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed session '%s'\n", id)
		}
		if failed > 0 {
			return fmt.Errorf("%d session(s) could not be removed", failed)
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionLsCmd, sessionInspectCmd, sessionRmCmd)
	sessionInspectCmd.Flags().Bool("redact", false, "Mask personal details")
	sessionInspectCmd.Flags().Bool("graph", false, "Print the step graph with this session's path as Mermaid")
	sessionRmCmd.Flags().Bool("all", false, "Remove every saved session")
}

func withSessionStore(fn func(*cobra.Command, ports.WizardStore, []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, _, err := setup(cmd)
		if err != nil {
			return err
		}
		store, closeFn, err := cli.OpenSessionStore(cfg)
		if err != nil {
			return err
		}
		defer func() { _ = closeFn() }()
		return fn(cmd, store, args)
	}
}
