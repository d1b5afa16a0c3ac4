// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/copy-engine/internal/history"
	"github.com/pdiddy/copy-engine/internal/learn"
)

var weightsCmd = &cobra.Command{
	Use:   "weights",
	Short: "Fit composite-scoring weights from recorded outcomes",
	Long: `Weights fits the composite weight profile maximizing correlation with
editorial ground truth recorded via "history outcome". Below the minimum
sample count the static default profile is reported unchanged.`,
	RunE: runWeights,
}

func init() {
	weightsCmd.Flags().Int("days", 0, "restrict to the last N days (0 = all history)")

	rootCmd.AddCommand(weightsCmd)
}

func runWeights(cmd *cobra.Command, args []string) error {
	days, _ := cmd.Flags().GetInt("days")

	store, err := history.NewStore(historyConfig(cmd))
	if err != nil {
		return err
	}
	defer store.Close()

	learner := learn.NewLearner(store, learningConfig())
	profile, fitted, err := learner.Learn(context.Background(), learn.Window{Since: sinceFromDays(days)})
	if err != nil {
		return err
	}

	source := "static default (not enough ground truth)"
	if fitted {
		source = "fitted from history"
	}
	fmt.Printf("pattern:    %.2f\nvoice:      %.2f\nstructural: %.2f\n(%s)\n",
		profile.Pattern, profile.Voice, profile.Structural, source)
	return nil
}
