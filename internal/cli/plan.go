package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pedagogue-ai/pedagogue/internal/export"
	"github.com/pedagogue-ai/pedagogue/pkg/models"
)

var (
	planGrade    int
	planSubject  string
	planTopic    string
	planDuration int
	planSession  string
	planTeacher  string
	planExport   string
	planOutDir   string
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Generate a lesson plan for a grade, subject, and topic",
	Long: `Run the full generation workflow for one lesson request.

The workflow fetches curriculum standards and learning strategies in
parallel, generates the plan, reviews it, and prints the assembled result.
Pass --session to keep conversation context across requests and --teacher
to accumulate a long-term profile.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Orchestrator == nil {
			return fmt.Errorf("orchestrator not initialized")
		}

		req := models.LessonRequest{
			Grade:           planGrade,
			Subject:         planSubject,
			Topic:           planTopic,
			DurationMinutes: planDuration,
			SessionID:       planSession,
			TeacherID:       planTeacher,
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		artifact, err := Orchestrator.Run(ctx, req)
		if err != nil {
			return err
		}

		printArtifact(artifact)

		if planExport != "" {
			dir := planOutDir
			if dir == "" && Cfg != nil {
				dir = Cfg.Export.Dir
			}
			path, err := exportArtifact(artifact, planExport, dir)
			if err != nil {
				return err
			}
			fmt.Printf("\nExported to %s\n", path)
		}

		return nil
	},
}

func printArtifact(a *models.LessonArtifact) {
	fmt.Printf("Plan for grade %d %s: %s (%d min)\n", a.Request.Grade, a.Request.Subject, a.Request.Topic, a.Request.DurationMinutes)
	fmt.Printf("Quality: %.1f/10, status: %s\n", a.QualityScore, a.ReviewStatus)
	if a.Degraded() {
		fmt.Printf("Degraded: %d component(s) unavailable\n", a.UnavailableCount())
	}
	fmt.Println()

	for _, name := range []string{models.ComponentStandards, models.ComponentStrategies, models.ComponentContent, models.ComponentReview} {
		c, ok := a.Components[name]
		if !ok {
			continue
		}
		fmt.Printf("=== %s ===\n", name)
		if c.Status == models.ComponentUnavailable {
			fmt.Printf("unavailable: %s\n\n", c.Reason)
			continue
		}
		fmt.Printf("%s\n\n", strings.TrimSpace(c.Content))
	}

	if len(a.Suggestions) > 0 {
		fmt.Println("Suggestions:")
		for _, s := range a.Suggestions {
			fmt.Printf("  - %s\n", s)
		}
	}
}

func exportArtifact(a *models.LessonArtifact, format, dir string) (string, error) {
	switch format {
	case "txt":
		return export.ToTXT(a, dir)
	case "md", "markdown":
		return export.ToMarkdown(a, dir)
	default:
		return "", fmt.Errorf("unsupported export format %q (use txt or md)", format)
	}
}

func init() {
	planCmd.Flags().IntVar(&planGrade, "grade", 0, "school grade (1-11)")
	planCmd.Flags().StringVar(&planSubject, "subject", "", "subject name (e.g. Математика)")
	planCmd.Flags().StringVar(&planTopic, "topic", "", "lesson topic")
	planCmd.Flags().IntVar(&planDuration, "duration", models.DefaultDurationMinutes, "lesson duration in minutes")
	planCmd.Flags().StringVar(&planSession, "session", "", "session id for conversation context")
	planCmd.Flags().StringVar(&planTeacher, "teacher", "", "teacher id for long-term memory")
	planCmd.Flags().StringVar(&planExport, "export", "", "export format: txt or md")
	planCmd.Flags().StringVar(&planOutDir, "out", "", "export directory (defaults to the configured export dir)")
	_ = planCmd.MarkFlagRequired("grade")
	_ = planCmd.MarkFlagRequired("subject")
	_ = planCmd.MarkFlagRequired("topic")
	rootCmd.AddCommand(planCmd)
}
