package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	appVersion = "dev"
	appCommit  = "none"
	appDate    = "unknown"
)

// SetVersionInfo sets the version information injected via ldflags.
func SetVersionInfo(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}

var rootCmd = &cobra.Command{
	Use:   "pedagogue",
	Short: "Pedagogue - AI lesson plan generator for Ukrainian teachers",
	Long: `Pedagogue generates complete lesson plans aligned with the Ukrainian
state curriculum (НУШ). It runs a staged workflow that gathers curriculum
standards and learning-science strategies in parallel, drafts the plan,
reviews it against quality criteria, and assembles the final document.

It remembers each teacher's subjects, grades, and preferred strategies
across sessions and keeps a per-session conversation context.`,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("pedagogue %s\ncommit: %s\nbuilt:  %s\n", appVersion, appCommit, appDate)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
