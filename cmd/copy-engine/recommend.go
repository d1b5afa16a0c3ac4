// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/copy-engine/internal/history"
	"github.com/pdiddy/copy-engine/internal/learn"
)

var recommendCmd = &cobra.Command{
	Use:   "recommend <subject-class> <component>",
	Short: "Derive a sweet-spot parameter bundle from history",
	Long: `Recommend mines the recorded attempts of one (subject class, component)
pair and derives a parameter bundle from the top quartile by composite
quality: per-parameter median for numeric knobs, mode for categorical
ones. Parameters currently correlated with worse quality are omitted.

With too little history the command reports "no data"; callers fall back
to the static defaults.`,
	Args: cobra.ExactArgs(2),
	RunE: runRecommend,
}

func init() {
	recommendCmd.Flags().String("domain", "", "restrict to one publication domain")
	recommendCmd.Flags().Int("days", 0, "restrict to the last N days (0 = all history)")

	rootCmd.AddCommand(recommendCmd)
}

func runRecommend(cmd *cobra.Command, args []string) error {
	domain, _ := cmd.Flags().GetString("domain")
	days, _ := cmd.Flags().GetInt("days")

	store, err := history.NewStore(historyConfig(cmd))
	if err != nil {
		return err
	}
	defer store.Close()

	learningCfg := learningConfig()
	engine := learn.NewEngine(store, learningCfg)
	recommender := learn.NewRecommender(store, engine, learningCfg)

	ctx := context.Background()
	window := learn.Window{Since: sinceFromDays(days), Domain: domain}
	rec, err := recommender.Recommend(ctx, args[0], args[1], window)
	if errors.Is(err, learn.ErrNoData) {
		fmt.Printf("no data: %v\n", err)
		return nil
	}
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshaling recommendation: %w", err)
	}
	fmt.Print(string(data))

	if len(rec.Omitted) > 0 {
		insights, err := engine.Analyze(ctx, window)
		if err != nil {
			return err
		}
		byCategory := make(map[string]int, len(insights))
		for i, in := range insights {
			byCategory[in.Category] = i
		}
		omitted := append([]string(nil), rec.Omitted...)
		sort.Strings(omitted)
		fmt.Println("\nomitted for negative correlation:")
		for _, name := range omitted {
			if i, ok := byCategory[name]; ok {
				fmt.Printf("  %s\n", insightSummary(insights[i]))
			}
		}
	}
	return nil
}
