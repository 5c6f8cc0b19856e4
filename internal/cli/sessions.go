package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Inspect and export conversation sessions",
}

var sessionsShowCmd = &cobra.Command{
	Use:   "show <session-id>",
	Short: "Show the retained context for a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Sessions == nil {
			return fmt.Errorf("session store not initialized")
		}

		sctx, err := Sessions.Context(args[0])
		if err != nil {
			return fmt.Errorf("loading session context: %w", err)
		}

		if !sctx.Compacted && len(sctx.Turns) == 0 {
			fmt.Printf("Session %s has no recorded turns.\n", args[0])
			return nil
		}

		if sctx.Compacted {
			fmt.Printf("Compacted summary (%d earlier turns):\n  %s\n\n", sctx.Summary.TurnsCompacted, sctx.Summary.Text)
		}
		for _, turn := range sctx.Turns {
			fmt.Printf("  [%d] %d клас, %s: %s\n", turn.Index, turn.Request.Grade, turn.Request.Subject, turn.Request.Topic)
			if turn.PlanSummary != "" {
				fmt.Printf("      %s\n", turn.PlanSummary)
			}
		}

		return nil
	},
}

var sessionsExportCmd = &cobra.Command{
	Use:   "export <session-id> <path>",
	Short: "Export a session's retained context to a YAML file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Sessions == nil {
			return fmt.Errorf("session store not initialized")
		}

		if err := Sessions.ExportSession(args[0], args[1]); err != nil {
			return fmt.Errorf("exporting session: %w", err)
		}

		fmt.Printf("Session %s exported to %s\n", args[0], args[1])
		return nil
	},
}

func init() {
	sessionsCmd.AddCommand(sessionsShowCmd)
	sessionsCmd.AddCommand(sessionsExportCmd)
	rootCmd.AddCommand(sessionsCmd)
}
