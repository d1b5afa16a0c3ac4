// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/copy-engine/internal/generate"
	"github.com/pdiddy/copy-engine/internal/history"
	"github.com/pdiddy/copy-engine/internal/learn"
	"github.com/pdiddy/copy-engine/internal/profile"
	"github.com/pdiddy/copy-engine/internal/score"
	"github.com/pdiddy/copy-engine/internal/session"
	"github.com/pdiddy/copy-engine/pkg/types"
)

var regenerateCmd = &cobra.Command{
	Use:   "regenerate <subject>",
	Short: "Generate copy for one target with quality-gated retries",
	Long: `Regenerate runs a bounded retry session for one (subject, component)
target: it pulls parameters from the sweet-spot recommender, calls the
generator, scores the candidate, and retries with fresh parameters until
the composite clears the threshold or the attempt budget is exhausted.
Both outcomes return the best-scoring attempt of the session.`,
	Args: cobra.ExactArgs(1),
	RunE: runRegenerate,
}

func init() {
	regenerateCmd.Flags().String("class", "", "subject class for learning (e.g. metal)")
	regenerateCmd.Flags().String("component", "description", "copy component to generate")
	regenerateCmd.Flags().String("domain", "", "publication domain")
	regenerateCmd.Flags().String("profile", "", "author voice profile name (from profiles dir)")
	regenerateCmd.Flags().String("model", "", "generator model identifier")
	regenerateCmd.Flags().Int("max-attempts", 0, "attempt budget (default from config)")
	regenerateCmd.Flags().Float64("threshold", 0, "composite acceptance threshold (default from config)")
	regenerateCmd.Flags().Bool("json", false, "emit the session result as JSON")

	rootCmd.AddCommand(regenerateCmd)
}

func runRegenerate(cmd *cobra.Command, args []string) error {
	subject := args[0]
	class, _ := cmd.Flags().GetString("class")
	component, _ := cmd.Flags().GetString("component")
	domain, _ := cmd.Flags().GetString("domain")
	profileName, _ := cmd.Flags().GetString("profile")
	jsonOut, _ := cmd.Flags().GetBool("json")

	store, err := history.NewStore(historyConfig(cmd))
	if err != nil {
		return err
	}
	defer store.Close()

	var author *types.AuthorProfile
	if profileName != "" {
		profiles, err := profile.LoadDir(profilesDir())
		if err != nil {
			return err
		}
		author = profiles[profileName]
		if author == nil {
			return fmt.Errorf("profile %q not found in %s (known: %v)",
				profileName, profilesDir(), profile.Names(profiles))
		}
	}

	sessionCfg := sessionConfigFromFlags(cmd)
	learningCfg := learningConfig()
	engine := learn.NewEngine(store, learningCfg)
	controller := session.NewController(
		generate.NewAnthropicBackend(generatorConfig(cmd)),
		score.NewScorer(),
		store,
		learn.NewRecommender(store, engine, learningCfg),
		learn.NewLearner(store, learningCfg),
		sessionCfg,
		os.Stderr,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	result, err := controller.Regenerate(ctx, session.Target{
		Subject:      subject,
		SubjectClass: class,
		Component:    component,
		Domain:       domain,
		Profile:      author,
	})
	if err != nil {
		return err
	}

	if jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	fmt.Printf("session %s: %s (%s)\n", result.SessionID, result.State, result.StopReason)
	if best, ok := result.BestComposite(); ok {
		fmt.Printf("best attempt #%d, composite %.1f:\n\n%s\n", result.Best.Ordinal, best, result.Best.Text)
	} else {
		fmt.Printf("no attempt produced text (%d tried)\n", result.Attempts)
	}
	if !result.Accepted {
		// Non-zero exit so calling pipelines can gate on acceptance.
		os.Exit(2)
	}
	return nil
}

func sessionConfigFromFlags(cmd *cobra.Command) types.SessionConfig {
	maxAttempts, _ := cmd.Flags().GetInt("max-attempts")
	if maxAttempts <= 0 {
		maxAttempts = viper.GetInt("session.max_attempts")
	}
	threshold, _ := cmd.Flags().GetFloat64("threshold")
	if threshold <= 0 {
		threshold = viper.GetFloat64("session.accept_threshold")
	}
	return types.SessionConfig{MaxAttempts: maxAttempts, AcceptThreshold: threshold}
}
