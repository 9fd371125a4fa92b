package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/drillcards/internal/app"
	"github.com/example/drillcards/internal/scheduler"
	"github.com/example/drillcards/internal/session"
)

var upcomingDays int

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show pool statistics and progress",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app.App) error {
			out := cmd.OutOrStdout()
			now := a.Now()
			s := a.Reviewer.Stats(now)

			fmt.Fprintln(out, "📊 Statistics")
			fmt.Fprintln(out, "-------------")
			fmt.Fprintf(out, "Total items:  %d\n", s.Total)
			fmt.Fprintf(out, "Due now:      %d\n", s.Due)
			fmt.Fprintf(out, "New:          %d\n", s.New)
			fmt.Fprintf(out, "Learning:     %d\n", s.Learning)
			fmt.Fprintf(out, "Review:       %d\n", s.Review)
			fmt.Fprintf(out, "Relearning:   %d\n", s.Relearning)
			fmt.Fprintf(out, "Avg elapsed:  %.1f days\n", s.AverageElapsedDays)
			if s.Total > 0 {
				fmt.Fprintf(out, "Mastered:     %.0f%%\n", float64(s.Review)/float64(s.Total)*100)
			}
			fmt.Fprintln(out)
			printSummary(out, a.Reviewer.Summary())

			if a.Reviewer.Snapshot().Settings.ShowUpcomingReviews {
				fmt.Fprintln(out)
				printUpcoming(out, a.Reviewer.Upcoming(now, scheduler.DefaultHorizonDays))
			}
			return nil
		})
	},
}

var upcomingCmd = &cobra.Command{
	Use:   "upcoming",
	Short: "Show how many reviews fall due on each coming day",
	RunE: func(cmd *cobra.Command, args []string) error {
		if upcomingDays < 1 {
			return fmt.Errorf("--days must be at least 1")
		}
		return withApp(cmd.Context(), func(a *app.App) error {
			printUpcoming(cmd.OutOrStdout(), a.Reviewer.Upcoming(a.Now(), upcomingDays))
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(upcomingCmd)
	upcomingCmd.Flags().IntVarP(&upcomingDays, "days", "d", scheduler.DefaultHorizonDays, "Number of days to show")
}

func printSummary(out io.Writer, s session.Summary) {
	fmt.Fprintf(out, "Answers:      %d (%.0f%% correct, last %d: %.0f%%)\n",
		s.TotalResponses, s.Accuracy*100, session.RecentWindow, s.RecentAccuracy*100)
	if s.AverageCorrectMs > 0 {
		fmt.Fprintf(out, "Avg correct:  %.1fs\n", s.AverageCorrectMs/1000)
	}
	fmt.Fprintf(out, "Session:      %s since %s\n",
		s.SessionTime.Round(time.Second), s.SessionStart.Local().Format("Jan 2 15:04"))
	for _, d := range s.Decks {
		if d.WarmedUp {
			fmt.Fprintf(out, "  %-15s p25 %.1fs  p50 %.1fs  p75 %.1fs\n", d.DeckID,
				d.Percentiles.P25/1000, d.Percentiles.P50/1000, d.Percentiles.P75/1000)
		} else {
			fmt.Fprintf(out, "  %-15s warming up %d/%d\n", d.DeckID, d.Samples, d.Target)
		}
	}
}

func printUpcoming(out io.Writer, counts []int) {
	fmt.Fprintln(out, "📅 Upcoming reviews")
	for i, n := range counts {
		label := fmt.Sprintf("In %d days", i)
		switch i {
		case 0:
			label = "Today"
		case 1:
			label = "Tomorrow"
		}
		fmt.Fprintf(out, "  %-12s %d\n", label+":", n)
	}
}
