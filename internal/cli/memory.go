package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

var memoryCmd = &cobra.Command{
	Use:   "memory",
	Short: "Inspect the long-term teacher memory bank",
}

var memoryShowCmd = &cobra.Command{
	Use:   "show <teacher-id>",
	Short: "Show a teacher's accumulated profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Memory == nil {
			return fmt.Errorf("memory bank not initialized")
		}

		profile, err := Memory.Load(args[0])
		if err != nil {
			return fmt.Errorf("loading teacher profile: %w", err)
		}

		if profile.PlanCount == 0 {
			fmt.Printf("No plans recorded for teacher %s.\n", args[0])
			return nil
		}

		fmt.Printf("Teacher %s: %d plan(s)\n", profile.TeacherID, profile.PlanCount)
		if profile.LastSubject != "" {
			fmt.Printf("  Last request: %d клас, %s\n", profile.LastGrade, profile.LastSubject)
		}
		if profile.PreferredTier != "" {
			fmt.Printf("  Preferred tier: %s\n", profile.PreferredTier)
		}
		if profile.TeachingStyle != "" {
			fmt.Printf("  Teaching style: %s\n", profile.TeachingStyle)
		}
		if len(profile.SubjectCounts) > 0 {
			fmt.Printf("  Subjects: %s\n", formatCounts(profile.SubjectCounts))
		}
		if len(profile.StrategyCounts) > 0 {
			fmt.Printf("  Strategies: %s\n", formatCounts(profile.StrategyCounts))
		}

		return nil
	},
}

var memorySuggestCmd = &cobra.Command{
	Use:   "suggest <teacher-id>",
	Short: "Show suggestions derived from a teacher's history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Memory == nil {
			return fmt.Errorf("memory bank not initialized")
		}

		sug, err := Memory.Suggestions(args[0])
		if err != nil {
			return fmt.Errorf("deriving suggestions: %w", err)
		}

		if sug.PlanCount == 0 {
			fmt.Printf("No history for teacher %s yet.\n", args[0])
			return nil
		}

		fmt.Printf("Based on %d plan(s):\n", sug.PlanCount)
		if len(sug.TopSubjects) > 0 {
			fmt.Printf("  Frequent subjects: %s\n", strings.Join(sug.TopSubjects, ", "))
		}
		if len(sug.TopGrades) > 0 {
			grades := make([]string, len(sug.TopGrades))
			for i, g := range sug.TopGrades {
				grades[i] = fmt.Sprintf("%d", g)
			}
			fmt.Printf("  Frequent grades: %s\n", strings.Join(grades, ", "))
		}
		if len(sug.TopStrategies) > 0 {
			fmt.Printf("  Effective strategies: %s\n", strings.Join(sug.TopStrategies, ", "))
		}

		return nil
	},
}

var memoryExportCmd = &cobra.Command{
	Use:   "export <path>",
	Short: "Export all teacher profiles to a YAML file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Memory == nil {
			return fmt.Errorf("memory bank not initialized")
		}

		if err := Memory.ExportAll(args[0]); err != nil {
			return fmt.Errorf("exporting profiles: %w", err)
		}

		count, err := Memory.ProfileCount()
		if err != nil {
			return fmt.Errorf("counting profiles: %w", err)
		}
		fmt.Printf("%d profile(s) exported to %s\n", count, args[0])
		return nil
	},
}

// formatCounts renders a counter map as "name (n)" pairs, most frequent
// first, ties alphabetical.
func formatCounts(counts map[string]int) string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s (%d)", k, counts[k])
	}
	return strings.Join(parts, ", ")
}

func init() {
	memoryCmd.AddCommand(memoryShowCmd)
	memoryCmd.AddCommand(memorySuggestCmd)
	memoryCmd.AddCommand(memoryExportCmd)
	rootCmd.AddCommand(memoryCmd)
}
