package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/drillcards/internal/app"
	"github.com/example/drillcards/internal/session"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change preferences",
	Long: `Show preferences, or change them with flags:
  drillcards settings --warmup 30 --sound=false`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app.App) error {
			var u session.SettingsUpdate
			flags := cmd.Flags()
			if flags.Changed("warmup") {
				v, _ := flags.GetInt("warmup")
				u.WarmupTarget = &v
			}
			if flags.Changed("sound") {
				v, _ := flags.GetBool("sound")
				u.SoundEnabled = &v
			}
			if flags.Changed("upcoming") {
				v, _ := flags.GetBool("upcoming")
				u.ShowUpcomingReviews = &v
			}

			settings, err := a.Reviewer.UpdateSettings(cmd.Context(), u)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "⚙️ Settings")
			fmt.Fprintf(out, "Warm-up target:        %d answers\n", settings.WarmupTarget)
			fmt.Fprintf(out, "Sound:                 %t\n", settings.SoundEnabled)
			fmt.Fprintf(out, "Show upcoming reviews: %t\n", settings.ShowUpcomingReviews)
			fmt.Fprintf(out, "Enabled decks:         %s\n", strings.Join(settings.EnabledDecks, ", "))
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(settingsCmd)
	settingsCmd.Flags().Int("warmup", 0, "Answers per deck before speed affects grading")
	settingsCmd.Flags().Bool("sound", true, "Ring the terminal bell on correct answers")
	settingsCmd.Flags().Bool("upcoming", true, "Show upcoming reviews with stats")
}
