package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/drillcards/internal/app"
	"github.com/example/drillcards/internal/config"
	"github.com/example/drillcards/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:   "drillcards",
	Short: "Speed-graded flashcard drills with spaced repetition",
	Long: `drillcards drills small fact decks (multiplication, subtraction,
katakana) from the terminal or Telegram. Answers are graded by correctness
and by speed relative to your own history, and each item is rescheduled
with FSRS.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// Execute runs the command tree
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "❌", err)
		os.Exit(1)
	}
}

// withApp loads configuration, wires the app and runs fn against it
func withApp(ctx context.Context, fn func(a *app.App) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.Env)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}
