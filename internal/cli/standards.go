package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pedagogue-ai/pedagogue/internal/capability"
	"github.com/pedagogue-ai/pedagogue/internal/standards"
)

var (
	standardsGrade   int
	standardsSubject string
)

var standardsCmd = &cobra.Command{
	Use:   "standards",
	Short: "Work with local curriculum documents",
}

var standardsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the curriculum documents available locally",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Loader == nil {
			return fmt.Errorf("standards loader not initialized")
		}

		docs, err := Loader.ListAvailable()
		if err != nil {
			return fmt.Errorf("listing documents: %w", err)
		}

		if len(docs) == 0 {
			fmt.Println("No curriculum documents found.")
			return nil
		}

		for _, name := range docs {
			fmt.Println(name)
		}
		return nil
	},
}

var standardsSearchCmd = &cobra.Command{
	Use:   "search",
	Short: "Find and summarize the standards for a grade and subject",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Loader == nil {
			return fmt.Errorf("standards loader not initialized")
		}

		// Serve repeated lookups from the cache, same as the workflow does.
		key := capability.CacheKey(standardsGrade, standardsSubject)
		if Lookups != nil {
			if summary, ok := Lookups.Get(key); ok {
				fmt.Println(summary)
				return nil
			}
		}

		doc, err := Loader.Load(cmd.Context(), standardsGrade, standardsSubject)
		if err != nil {
			var notFound *standards.ErrNotFound
			if errors.As(err, &notFound) {
				fmt.Println(err.Error())
				return nil
			}
			return fmt.Errorf("loading standards: %w", err)
		}

		summary := doc.Summary()
		if Lookups != nil && Cfg != nil {
			Lookups.Put(key, summary, Cfg.Cache.TTL)
		}

		fmt.Println(summary)
		return nil
	},
}

func init() {
	standardsSearchCmd.Flags().IntVar(&standardsGrade, "grade", 0, "school grade (1-11)")
	standardsSearchCmd.Flags().StringVar(&standardsSubject, "subject", "", "subject name")
	_ = standardsSearchCmd.MarkFlagRequired("grade")
	_ = standardsSearchCmd.MarkFlagRequired("subject")
	standardsCmd.AddCommand(standardsListCmd)
	standardsCmd.AddCommand(standardsSearchCmd)
	rootCmd.AddCommand(standardsCmd)
}
