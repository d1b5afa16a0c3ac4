// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/copy-engine/internal/profile"
	"github.com/pdiddy/copy-engine/internal/score"
	"github.com/pdiddy/copy-engine/pkg/types"
)

var scoreCmd = &cobra.Command{
	Use:   "score <file>",
	Short: "Score a text file without generating",
	Long: `Score reads copy from a file and prints the sub-score breakdown under
the static default weights, optionally against an author profile. Useful
for calibrating thresholds and debugging profile markers.`,
	Args: cobra.ExactArgs(1),
	RunE: runScore,
}

func init() {
	scoreCmd.Flags().String("profile", "", "author voice profile name (from profiles dir)")

	rootCmd.AddCommand(scoreCmd)
}

func runScore(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading text: %w", err)
	}

	var author *types.AuthorProfile
	profileName, _ := cmd.Flags().GetString("profile")
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

	res := score.NewScorer().Score(string(data), author, types.DefaultWeights())

	fmt.Printf("pattern:    %s\n", subscoreLabel(res.Score.Pattern))
	fmt.Printf("voice:      %s\n", subscoreLabel(res.Score.Voice))
	fmt.Printf("structural: %s\n", subscoreLabel(res.Score.Structural))
	fmt.Printf("composite:  %.1f\n", res.Score.Composite)

	for _, is := range res.Issues {
		fmt.Printf("issue [%s] %s: %s\n", is.Severity, is.Category, is.Message)
	}
	return nil
}

func subscoreLabel(s types.Subscore) string {
	if !s.Available {
		return "n/a"
	}
	return fmt.Sprintf("%.1f", s.Value)
}
