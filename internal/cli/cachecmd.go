package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and persist the standards lookup cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show lookup cache counters",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Lookups == nil {
			return fmt.Errorf("lookup cache not initialized")
		}

		stats := Lookups.Stats()
		fmt.Printf("  %-12s %d / %d\n", "Entries:", stats.Size, stats.Capacity)
		fmt.Printf("  %-12s %d\n", "Hits:", stats.Hits)
		fmt.Printf("  %-12s %d\n", "Misses:", stats.Misses)
		fmt.Printf("  %-12s %d\n", "Evictions:", stats.Evictions)
		return nil
	},
}

var cacheSnapshotCmd = &cobra.Command{
	Use:   "snapshot <path>",
	Short: "Write the fresh cache entries to a YAML file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Lookups == nil {
			return fmt.Errorf("lookup cache not initialized")
		}

		if err := Lookups.Snapshot(args[0]); err != nil {
			return fmt.Errorf("writing cache snapshot: %w", err)
		}
		fmt.Printf("Cache snapshot written to %s\n", args[0])
		return nil
	},
}

var cacheRestoreCmd = &cobra.Command{
	Use:   "restore <path>",
	Short: "Load cache entries from a snapshot file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Lookups == nil {
			return fmt.Errorf("lookup cache not initialized")
		}

		if err := Lookups.Restore(args[0]); err != nil {
			return fmt.Errorf("restoring cache snapshot: %w", err)
		}
		fmt.Printf("Cache restored from %s (%d entries)\n", args[0], Lookups.Len())
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheSnapshotCmd)
	cacheCmd.AddCommand(cacheRestoreCmd)
	rootCmd.AddCommand(cacheCmd)
}
