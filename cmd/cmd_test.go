package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// resetFlags restores defaults; cobra keeps parsed flag values between runs.
func resetFlags(c *cobra.Command) {
	c.Flags().VisitAll(func(f *pflag.Flag) {
		f.Value.Set(f.DefValue)
		f.Changed = false
	})
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func run(t *testing.T, input string, args ...string) string {
	t.Helper()
	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetIn(strings.NewReader(input))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("%v: %v\n%s", args, err, out.String())
	}
	return out.String()
}

func TestDecksEnableAndList(t *testing.T) {
	t.Setenv("DATA_DIR", t.TempDir())

	out := run(t, "", "decks", "enable", "katakana")
	if !strings.Contains(out, "Deck katakana enabled") {
		t.Errorf("enable output = %q", out)
	}
	out = run(t, "", "decks")
	if !strings.Contains(out, "[x] katakana") || !strings.Contains(out, "[ ] subtraction") {
		t.Errorf("decks output = %q", out)
	}
}

func TestDrillQuitPrintsSummary(t *testing.T) {
	t.Setenv("DATA_DIR", t.TempDir())
	out := run(t, ":q\n", "drill")
	if !strings.Contains(out, "[Multiplication Tables]") || !strings.Contains(out, "Answers:") {
		t.Errorf("drill output = %q", out)
	}
}

func TestExportImportFiles(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DATA_DIR", dir)
	path := filepath.Join(dir, "backup.json")

	run(t, "", "settings", "--warmup", "12")
	if out := run(t, "", "export", path); !strings.Contains(out, "Exported to") {
		t.Fatalf("export output = %q", out)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatal(err)
	}
	run(t, "", "reset", "--yes")
	out := run(t, "", "settings")
	if !strings.Contains(out, "Warm-up target:        50") {
		t.Errorf("settings after reset = %q", out)
	}

	if out := run(t, "", "import", path); !strings.Contains(out, "Imported 784 items") {
		t.Errorf("import output = %q", out)
	}
	out = run(t, "", "settings")
	if !strings.Contains(out, "Warm-up target:        12") {
		t.Errorf("settings after import = %q", out)
	}
}

func TestReportWritesWorkbook(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DATA_DIR", dir)
	path := filepath.Join(dir, "report.xlsx")
	if out := run(t, "", "report", path); !strings.Contains(out, "784 items") {
		t.Errorf("report output = %q", out)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatal(err)
	}
}
