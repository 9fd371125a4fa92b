package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/drillcards/internal/app"
)

var decksCmd = &cobra.Command{
	Use:   "decks",
	Short: "List decks and whether they are enabled",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app.App) error {
			out := cmd.OutOrStdout()
			settings := a.Reviewer.Snapshot().Settings
			fmt.Fprintln(out, "🗂 Decks")
			for _, d := range a.Registry.All() {
				mark := "[ ]"
				if settings.DeckEnabled(d.ID()) {
					mark = "[x]"
				}
				fmt.Fprintf(out, "%s %-15s %s: %s\n", mark, d.ID(), d.Name(), d.Description())
			}
			return nil
		})
	},
}

var decksEnableCmd = &cobra.Command{
	Use:   "enable <deck>",
	Short: "Enable a deck, creating its items on first use",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setDeck(cmd, args[0], true)
	},
}

var decksDisableCmd = &cobra.Command{
	Use:   "disable <deck>",
	Short: "Disable a deck; its progress is kept",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setDeck(cmd, args[0], false)
	},
}

func init() {
	rootCmd.AddCommand(decksCmd)
	decksCmd.AddCommand(decksEnableCmd)
	decksCmd.AddCommand(decksDisableCmd)
}

func setDeck(cmd *cobra.Command, id string, enabled bool) error {
	return withApp(cmd.Context(), func(a *app.App) error {
		if err := a.Reviewer.SetDeckEnabled(cmd.Context(), id, enabled, a.Now()); err != nil {
			return err
		}
		state := "disabled"
		if enabled {
			state = "enabled"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✅ Deck %s %s.\n", id, state)
		return nil
	})
}
