// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/copy-engine/internal/history"
	"github.com/pdiddy/copy-engine/internal/learn"
	"github.com/pdiddy/copy-engine/pkg/types"
)

var insightsCmd = &cobra.Command{
	Use:   "insights",
	Short: "Report issue/quality correlations mined from attempt history",
	Long: `Insights partitions recorded attempts by each validation issue category
and each boolean generation parameter, and reports the mean-quality
contrast per category, sorted by absolute impact. Contrasts are
observational; confidence scales with raw sample count.`,
	RunE: runInsights,
}

func init() {
	insightsCmd.Flags().String("domain", "", "restrict to one publication domain")
	insightsCmd.Flags().Int("days", 0, "restrict to the last N days (0 = all history)")
	insightsCmd.Flags().String("out", "", "write insights to a YAML file instead of stdout")
	insightsCmd.Flags().Bool("json", false, "emit insights as JSON")

	rootCmd.AddCommand(insightsCmd)
}

func runInsights(cmd *cobra.Command, args []string) error {
	domain, _ := cmd.Flags().GetString("domain")
	days, _ := cmd.Flags().GetInt("days")
	out, _ := cmd.Flags().GetString("out")
	jsonOut, _ := cmd.Flags().GetBool("json")

	store, err := history.NewStore(historyConfig(cmd))
	if err != nil {
		return err
	}
	defer store.Close()

	engine := learn.NewEngine(store, learningConfig())
	insights, err := engine.Analyze(context.Background(), learn.Window{
		Since:  sinceFromDays(days),
		Domain: domain,
	})
	if err != nil {
		return err
	}

	if out != "" {
		data, err := yaml.Marshal(insights)
		if err != nil {
			return fmt.Errorf("marshaling insights: %w", err)
		}
		if err := os.WriteFile(out, data, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", out, err)
		}
		fmt.Printf("Exported %d insight(s) to %s\n", len(insights), out)
		return nil
	}

	if jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(insights)
	}

	if len(insights) == 0 {
		fmt.Println("No history to analyze.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-10s  %-24s  %6s  %8s  %8s  %8s  %5s\n",
		"Kind", "Category", "N", "With", "Without", "Impact", "Conf")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 80))
	for _, in := range insights {
		if in.InsufficientContrast {
			fmt.Fprintf(os.Stdout, "%-10s  %-24s  %6d  %26s  %5.2f\n",
				in.Kind, in.Category, in.Samples, "insufficient contrast", in.Confidence)
			continue
		}
		fmt.Fprintf(os.Stdout, "%-10s  %-24s  %6d  %8.1f  %8.1f  %+8.1f  %5.2f\n",
			in.Kind, in.Category, in.Samples, in.MeanWith, in.MeanWithout, in.Impact, in.Confidence)
	}
	return nil
}

// insightSummary is a compact line for one insight, used by recommend to
// explain exclusions.
func insightSummary(in types.CorrelationInsight) string {
	if in.InsufficientContrast {
		return fmt.Sprintf("%s: insufficient contrast (%d samples)", in.Category, in.Samples)
	}
	return fmt.Sprintf("%s: impact %+.1f at confidence %.2f", in.Category, in.Impact, in.Confidence)
}
