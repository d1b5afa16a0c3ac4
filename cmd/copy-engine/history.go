// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/copy-engine/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect attempt history and record editorial outcomes",
}

// --- list subcommand ---

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded generation attempts, newest first",
	RunE:  runHistoryList,
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	class, _ := cmd.Flags().GetString("class")
	component, _ := cmd.Flags().GetString("component")
	limit, _ := cmd.Flags().GetInt("limit")
	includeFailed, _ := cmd.Flags().GetBool("failed")

	store, err := history.NewStore(historyConfig(cmd))
	if err != nil {
		return err
	}
	defer store.Close()

	attempts, err := store.Attempts(context.Background(), history.QueryOptions{
		SubjectClass:  class,
		Component:     component,
		Limit:         limit,
		IncludeFailed: includeFailed,
	})
	if err != nil {
		return err
	}

	if len(attempts) == 0 {
		fmt.Println("No attempts recorded.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-6s  %-20s  %-14s  %-3s  %-9s  %-40s\n",
		"ID", "Subject", "Component", "Ord", "Composite", "Text")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 100))
	for _, a := range attempts {
		text := strings.ReplaceAll(a.Text, "\n", " ")
		if len(text) > 40 {
			text = text[:37] + "..."
		}
		subject := a.Subject
		if len(subject) > 20 {
			subject = subject[:17] + "..."
		}
		composite := "failed"
		if !a.GeneratorFailed {
			composite = fmt.Sprintf("%.1f", a.Score.Composite)
		}
		fmt.Fprintf(os.Stdout, "%-6d  %-20s  %-14s  %-3d  %-9s  %-40s\n",
			a.ID, subject, a.Component, a.Ordinal, composite, text)
	}
	fmt.Fprintf(os.Stdout, "\n%d attempt(s)\n", len(attempts))
	return nil
}

// --- outcome subcommand ---

var historyOutcomeCmd = &cobra.Command{
	Use:   "outcome <attempt-id> <score>",
	Short: "Record editorial ground truth (0-100) for an attempt",
	Long: `Outcome attaches an editorial accept/reject score to a recorded attempt.
Outcomes are the ground truth the weights command fits against.`,
	Args: cobra.ExactArgs(2),
	RunE: runHistoryOutcome,
}

func runHistoryOutcome(cmd *cobra.Command, args []string) error {
	attemptID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid attempt id %q", args[0])
	}
	outcome, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("invalid outcome %q", args[1])
	}

	store, err := history.NewStore(historyConfig(cmd))
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.RecordOutcome(context.Background(), attemptID, outcome); err != nil {
		return err
	}
	fmt.Printf("Recorded outcome %.1f for attempt %d\n", outcome, attemptID)
	return nil
}

func init() {
	historyListCmd.Flags().String("class", "", "filter by subject class")
	historyListCmd.Flags().String("component", "", "filter by component")
	historyListCmd.Flags().Int("limit", 20, "maximum attempts to list")
	historyListCmd.Flags().Bool("failed", false, "include generator failures")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyOutcomeCmd)
	rootCmd.AddCommand(historyCmd)
}
