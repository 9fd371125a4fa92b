package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/drillcards/internal/app"
	"github.com/example/drillcards/internal/deck"
)

var drillLimit int

var drillCmd = &cobra.Command{
	Use:   "drill",
	Short: "Start an interactive review session",
	Long: `Start a review session in the terminal.
Type the answer and press Enter; the time until Enter is your response time.
A wrong answer must be retyped correctly before moving on.
Type :q or press Ctrl+D to stop.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app.App) error {
			return runDrill(cmd, a, cmd.InOrStdin(), cmd.OutOrStdout())
		})
	},
}

func init() {
	rootCmd.AddCommand(drillCmd)
	drillCmd.Flags().IntVarP(&drillLimit, "limit", "n", 0, "Stop after this many answers (0 means no limit)")
}

// errQuit ends the drill from inside a prompt
var errQuit = errors.New("quit")

func readAnswer(reader *bufio.Reader) (string, error) {
	line, err := reader.ReadString('\n')
	if err == io.EOF && line != "" {
		err = nil
	}
	if err != nil {
		return "", errQuit
	}
	line = strings.TrimRight(line, "\r\n")
	switch strings.TrimSpace(line) {
	case ":q", "quit", "exit":
		return "", errQuit
	}
	return line, nil
}

func runDrill(cmd *cobra.Command, a *app.App, in io.Reader, out io.Writer) error {
	ctx := cmd.Context()
	reader := bufio.NewReader(in)
	answered := 0

	fmt.Fprintln(out, "🎯 Drill started. Type :q to stop.")
	for drillLimit == 0 || answered < drillLimit {
		q, err := a.Reviewer.Next(a.Now())
		if err != nil {
			return err
		}
		if q == nil {
			fmt.Fprintln(out, "✅ Nothing to review. Enable a deck with `drillcards decks enable <id>`.")
			break
		}

		fmt.Fprintf(out, "\n[%s] %s = ", q.DeckName, q.Prompt)
		start := time.Now()
		var answer string
		for {
			answer, err = readAnswer(reader)
			if err != nil {
				break
			}
			if verr := deck.ValidateInput(q.InputType, answer); verr != nil {
				fmt.Fprintf(out, "⚠️ %s\n%s = ", inputHint(q.InputType), q.Prompt)
				continue
			}
			break
		}
		if err == errQuit {
			break
		}

		latency := time.Since(start)
		fb, err := a.Reviewer.Submit(ctx, q.Item.ID, answer, latency, a.Now())
		if err != nil {
			fmt.Fprintf(out, "⚠️ Could not grade that answer: %v\n", err)
			continue
		}
		answered++

		if fb.SoundCue {
			fmt.Fprint(out, "\a")
		}
		if fb.Correct {
			fmt.Fprintf(out, "✅ Correct! %s, %.1fs. Next review %s.\n",
				fb.Grade, fb.LatencyMs/1000, fb.NextDue.Local().Format("Jan 2 15:04"))
			continue
		}

		fmt.Fprintf(out, "❌ The answer is %s. (%s)\n", fb.AnswerDisplay, fb.Grade)
		quit := false
		for {
			fmt.Fprint(out, "Type the correct answer: ")
			retry, err := readAnswer(reader)
			if err != nil {
				quit = true
				break
			}
			ok, err := a.Reviewer.CheckCorrection(q.Item.ID, retry)
			if err != nil {
				return err
			}
			if ok {
				break
			}
		}
		if quit {
			break
		}
	}

	fmt.Fprintln(out)
	printSummary(out, a.Reviewer.Summary())
	return nil
}

func inputHint(t deck.InputType) string {
	if t == deck.InputNumeric {
		return fmt.Sprintf("Please answer with a whole number of at most %d characters.", deck.MaxNumericInput)
	}
	return fmt.Sprintf("Please answer with at most %d characters.", deck.MaxTextInput)
}
