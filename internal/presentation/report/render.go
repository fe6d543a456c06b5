package report

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/aretw0/harrow/pkg/runner"
)

// Markdown builds the end-of-run summary as a markdown document.
func Markdown(scenario string, stats *runner.Stats, summaries []ActionSummary) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# %s\n\n", scenario)
	fmt.Fprintf(&sb, "- users: **%d**\n", stats.Users)
	fmt.Fprintf(&sb, "- runs: **%d** (%.1f/s)\n", stats.Runs, stats.Throughput())
	fmt.Fprintf(&sb, "- failures: **%d** (%.1f%%)\n", stats.Failures, stats.FailureRate()*100)
	fmt.Fprintf(&sb, "- elapsed: **%s**\n\n", stats.Elapsed.Round(time.Millisecond))

	if len(summaries) == 0 {
		return sb.String()
	}

	sb.WriteString("| action | count | ko | mean | max |\n")
	sb.WriteString("|--------|------:|---:|-----:|----:|\n")
	for _, s := range summaries {
		fmt.Fprintf(&sb, "| %s | %d | %d | %s | %s |\n",
			s.Name, s.Count, s.Failures,
			s.Mean().Round(time.Microsecond), s.Max.Round(time.Microsecond))
	}
	return sb.String()
}

// Write renders the summary to w. When w is a terminal the markdown is
// rendered with glamour; otherwise the raw markdown is written as is.
func Write(w io.Writer, scenario string, stats *runner.Stats, summaries []ActionSummary) error {
	md := Markdown(scenario, stats, summaries)

	if !isTerminal(w) {
		_, err := io.WriteString(w, md)
		return err
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
	)
	if err != nil {
		_, werr := io.WriteString(w, md)
		return werr
	}
	out, err := r.Render(md)
	if err != nil {
		_, werr := io.WriteString(w, md)
		return werr
	}
	_, err = io.WriteString(w, out)
	return err
}

// Banner prints the tool banner when w is a terminal.
func Banner(w io.Writer) {
	if !isTerminal(w) {
		return
	}
	p := termenv.ColorProfile()
	s1 := termenv.String("  _                                ").Foreground(p.Color("#818cf8"))
	s2 := termenv.String(" | |__   __ _ _ __ _ __ _____      __").Foreground(p.Color("#a78bfa"))
	s3 := termenv.String(" | '_ \\ / _` | '__| '__/ _ \\ \\ /\\ / /").Foreground(p.Color("#c084fc"))
	s4 := termenv.String(" | | | | (_| | |  | | | (_) \\ V  V / ").Foreground(p.Color("#e879f9"))
	s5 := termenv.String(" |_| |_|\\__,_|_|  |_|  \\___/ \\_/\\_/  ").Foreground(p.Color("#f472b6"))

	fmt.Fprintln(w)
	fmt.Fprintln(w, s1)
	fmt.Fprintln(w, s2)
	fmt.Fprintln(w, s3)
	fmt.Fprintln(w, s4)
	fmt.Fprintln(w, s5)
	fmt.Fprintln(w)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
