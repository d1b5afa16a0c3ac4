// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the copy-engine CLI.
// Implements: prd001-scoring … prd007-regeneration (CLI surface).
// See docs/ARCHITECTURE § Pipeline Interface.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/copy-engine/internal/secrets"
	"github.com/pdiddy/copy-engine/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretDefault returns fallback if non-empty, else the loaded secret for key.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// rootCmd is the base command for the copy-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "copy-engine",
	Short: "Quality-gated copy regeneration with parameter learning",
	Long: `copy-engine generates short technical copy through an LLM backend, scores
every candidate along independent heuristic dimensions, and retries with
fresh parameters until the composite clears the acceptance threshold or
the attempt budget runs out.

Every attempt is recorded; the insights, recommend, and weights commands
mine that history to improve future generation parameters and scoring
weights.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./copy-engine.yaml or ~/.config/copy-engine/config.yaml)")
	rootCmd.PersistentFlags().String("history-dir", "", "directory holding the attempt history database (default: history)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("copy-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "copy-engine"))
		}
	}

	viper.SetEnvPrefix("COPY_ENGINE")
	viper.AutomaticEnv()

	viper.SetDefault("history_dir", "history")
	viper.SetDefault("profiles_dir", "profiles")
	viper.SetDefault("generator.model", "claude-sonnet-4-5-20250929")
	viper.SetDefault("generator.requests_per_minute", 30)
	viper.SetDefault("generator.timeout", "60s")
	viper.SetDefault("session.max_attempts", 5)
	viper.SetDefault("session.accept_threshold", 75.0)
	viper.SetDefault("learning.min_samples", 20)
	viper.SetDefault("learning.min_recommend_samples", 10)
	viper.SetDefault("learning.exclusion_confidence", 0.5)

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// --- shared config helpers ---

func historyConfig(cmd *cobra.Command) types.HistoryConfig {
	dir, _ := cmd.Flags().GetString("history-dir")
	if dir == "" {
		dir = viper.GetString("history_dir")
	}
	return types.HistoryConfig{HistoryDir: dir}
}

func learningConfig() types.LearningConfig {
	return types.LearningConfig{
		MinSamples:          viper.GetInt("learning.min_samples"),
		MinRecommendSamples: viper.GetInt("learning.min_recommend_samples"),
		ExclusionConfidence: viper.GetFloat64("learning.exclusion_confidence"),
	}
}

func generatorConfig(cmd *cobra.Command) types.GeneratorConfig {
	model, _ := cmd.Flags().GetString("model")
	if model == "" {
		model = viper.GetString("generator.model")
	}
	return types.GeneratorConfig{
		Model:             model,
		APIKey:            secretDefault(secrets.AnthropicKey, viper.GetString("generator.api_key")),
		RequestsPerMinute: viper.GetInt("generator.requests_per_minute"),
		Timeout:           viper.GetDuration("generator.timeout"),
	}
}

func profilesDir() string {
	return viper.GetString("profiles_dir")
}

// sinceFromDays converts a --days flag value to a window start; zero means
// all of history.
func sinceFromDays(days int) time.Time {
	if days <= 0 {
		return time.Time{}
	}
	return time.Now().AddDate(0, 0, -days).UTC()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
