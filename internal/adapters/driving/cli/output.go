package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/archivevault/internal/core/domain"
)

// snippetRunes caps how much of a hit's text is printed.
const snippetRunes = 160

var flatten = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ", "\t", " ")

var highlightStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFCC00"))

func outputJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

// colorEnabled reports whether highlights can be styled: output must be a
// terminal.
func colorEnabled(cmd *cobra.Command) bool {
	f, ok := cmd.OutOrStdout().(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// renderHighlights prints text with its UTF-16 highlight ranges marked,
// styled on a terminal and bracketed otherwise. Newlines are flattened and
// the output is cut after limit runes.
func renderHighlights(text string, ranges []domain.Range, color bool, limit int) string {
	var b strings.Builder
	remaining := limit
	truncated := false
	for _, seg := range domain.SplitHighlights(text, ranges) {
		if remaining <= 0 {
			truncated = true
			break
		}
		s := flatten.Replace(seg.Text)
		if r := []rune(s); len(r) > remaining {
			s = string(r[:remaining])
			truncated = true
		}
		remaining -= len([]rune(s))
		switch {
		case !seg.Highlight:
			b.WriteString(s)
		case color:
			b.WriteString(highlightStyle.Render(s))
		default:
			b.WriteString("[" + s + "]")
		}
	}
	if truncated {
		b.WriteString("…")
	}
	return b.String()
}

// location returns the zone archive dates are shown and filtered in.
func location() *time.Location {
	if settingsService != nil {
		return settingsService.Get().Location()
	}
	return domain.DefaultSettings("").Location()
}

func formatDay(unix int64) string {
	return time.Unix(unix, 0).In(location()).Format(domain.DayLayout)
}

// progressPrinter writes progress events on one line, at most ten times a
// second. Final events are always written.
type progressPrinter struct {
	w       io.Writer
	limiter *rate.Limiter
}

func newProgressPrinter(w io.Writer) *progressPrinter {
	return &progressPrinter{
		w:       w,
		limiter: rate.NewLimiter(rate.Every(100*time.Millisecond), 1),
	}
}

// Print implements driving.ProgressFunc.
func (p *progressPrinter) Print(ev domain.ProgressEvent) {
	if !ev.Complete && !p.limiter.Allow() {
		return
	}
	pct := 0
	if ev.Total > 0 {
		pct = ev.Current * 100 / ev.Total
	}
	fmt.Fprintf(p.w, "\r\033[K%s %3d%% %s: %s", ev.Operation, pct, ev.Step, ev.Message)
	if ev.Complete {
		fmt.Fprintln(p.w)
	}
}
