package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/example/drillcards/internal/app"
	"github.com/example/drillcards/internal/bot"
)

var botCmd = &cobra.Command{
	Use:   "bot",
	Short: "Run the Telegram drill bot",
	Long: `Run the Telegram front-end. Requires TELEGRAM_BOT_TOKEN and
OWNER_CHAT_ID; due-item reminders follow REMINDER_INTERVAL and the
NOTIFICATION_START_HOUR/NOTIFICATION_END_HOUR window.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		return withApp(ctx, func(a *app.App) error {
			b, err := bot.New(bot.ConfigFrom(a.Config), a.Reviewer, a.Registry, a.Log)
			if err != nil {
				return err
			}
			a.Log.Info("starting bot")
			return b.Start(ctx)
		})
	},
}

func init() {
	rootCmd.AddCommand(botCmd)
}
