package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
)

var (
	interactiveSession string
	interactiveTeacher string
)

var interactiveCmd = &cobra.Command{
	Use:   "interactive",
	Short: "Describe lessons in plain language, one request per line",
	Long: `Start an interactive loop that reads free-form lesson requests,
extracts the grade, subject, topic, and duration with the language model,
and runs the generation workflow for each request.

Example request: "Підготуй урок з математики для 5 класу про дроби".`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Orchestrator == nil {
			return fmt.Errorf("orchestrator not initialized")
		}
		if Parser == nil {
			return fmt.Errorf("request parser not initialized (completion service may be unconfigured)")
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		fmt.Println("Опишіть урок, який потрібно підготувати (порожній рядок — вихід).")

		scanner := bufio.NewScanner(os.Stdin)
		for {
			fmt.Print("> ")
			if !scanner.Scan() {
				break
			}
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				break
			}

			req, err := Parser.Parse(ctx, line)
			if err != nil {
				fmt.Fprintf(os.Stderr, "не вдалося розібрати запит: %v\n", err)
				continue
			}
			req.SessionID = interactiveSession
			req.TeacherID = interactiveTeacher

			artifact, err := Orchestrator.Run(ctx, req)
			if err != nil {
				fmt.Fprintf(os.Stderr, "помилка генерації: %v\n", err)
				continue
			}

			printArtifact(artifact)
		}

		return scanner.Err()
	},
}

func init() {
	interactiveCmd.Flags().StringVar(&interactiveSession, "session", "", "session id for conversation context")
	interactiveCmd.Flags().StringVar(&interactiveTeacher, "teacher", "", "teacher id for long-term memory")
	rootCmd.AddCommand(interactiveCmd)
}
