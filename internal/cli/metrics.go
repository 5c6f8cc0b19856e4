package cli

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var (
	metricsJSON  bool
	metricsSince string
)

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Display workflow metrics",
	Long: `Display aggregated metrics derived from the event log.

Metrics include generated plan counts, failures by stage, degraded plans,
missing capabilities, and average quality and duration.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if MetricsCalc == nil {
			return fmt.Errorf("metrics calculator not initialized (observability may be disabled)")
		}

		sinceTime, err := parseSinceDuration(metricsSince)
		if err != nil {
			return fmt.Errorf("parsing --since: %w", err)
		}

		metrics, err := MetricsCalc.Calculate(sinceTime)
		if err != nil {
			return fmt.Errorf("calculating metrics: %w", err)
		}

		if metricsJSON {
			data, err := json.MarshalIndent(metrics, "", "  ")
			if err != nil {
				return fmt.Errorf("formatting metrics as JSON: %w", err)
			}
			fmt.Println(string(data))
			return nil
		}

		fmt.Printf("Metrics (since %s)\n\n", sinceTime.Format("2006-01-02"))
		fmt.Printf("  %-24s %d\n", "Events recorded:", metrics.EventCount)
		fmt.Printf("  %-24s %d\n", "Plans generated:", metrics.PlansGenerated)
		fmt.Printf("  %-24s %d\n", "Workflows failed:", metrics.WorkflowsFailed)
		fmt.Printf("  %-24s %d\n", "Degraded plans:", metrics.DegradedPlans)
		if metrics.PlansGenerated > 0 {
			fmt.Printf("  %-24s %.1f/10\n", "Average quality:", metrics.AverageQuality)
			fmt.Printf("  %-24s %.0f ms\n", "Average duration:", metrics.AverageDurationMS)
		}

		if len(metrics.FailuresByStage) > 0 {
			fmt.Println("\n  Failures by stage:")
			for _, stage := range sortedKeys(metrics.FailuresByStage) {
				fmt.Printf("    %-20s %d\n", stage, metrics.FailuresByStage[stage])
			}
		}

		if len(metrics.MissingByCapability) > 0 {
			fmt.Println("\n  Missing by capability:")
			for _, name := range sortedKeys(metrics.MissingByCapability) {
				fmt.Printf("    %-20s %d\n", name, metrics.MissingByCapability[name])
			}
		}

		return nil
	},
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// parseSinceDuration parses "7d", "24h" style windows into a point in the past.
func parseSinceDuration(s string) (time.Time, error) {
	now := time.Now().UTC()

	if len(s) < 2 {
		return time.Time{}, fmt.Errorf("invalid duration %q", s)
	}

	numStr := s[:len(s)-1]
	num, err := strconv.Atoi(numStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid duration %q: %w", s, err)
	}

	switch strings.ToLower(s[len(s)-1:]) {
	case "d":
		return now.AddDate(0, 0, -num), nil
	case "h":
		return now.Add(-time.Duration(num) * time.Hour), nil
	default:
		return time.Time{}, fmt.Errorf("unsupported duration suffix in %q (use d or h)", s)
	}
}

func init() {
	metricsCmd.Flags().BoolVar(&metricsJSON, "json", false, "output metrics as JSON")
	metricsCmd.Flags().StringVar(&metricsSince, "since", "7d", "time window (e.g. 7d, 24h)")
	rootCmd.AddCommand(metricsCmd)
}
