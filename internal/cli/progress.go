package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/Veraticus/clash-cost/internal/engine"
	"github.com/Veraticus/clash-cost/internal/model"
)

// BulkProgress renders a bulk run as a terminal progress bar.
type BulkProgress struct {
	writer io.Writer
	bar    *progressbar.ProgressBar
	mu     sync.Mutex
}

var _ engine.Observer = (*BulkProgress)(nil)

// NewBulkProgress creates a progress observer writing to writer.
func NewBulkProgress(writer io.Writer) *BulkProgress {
	if writer == nil {
		writer = os.Stderr
	}
	return &BulkProgress{writer: writer}
}

// BulkStarted creates the bar.
func (p *BulkProgress) BulkStarted(run model.BulkRun) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.bar = progressbar.NewOptions(run.Total,
		progressbar.OptionSetWriter(p.writer),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription(describe(run.Label)),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			if _, err := fmt.Fprintln(p.writer); err != nil {
				slog.Warn("Failed to write newline after progress bar", "error", err)
			}
		}),
	)
}

// Selected moves the bar to the candidate about to be processed.
func (p *BulkProgress) Selected(run model.BulkRun, _ string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.bar == nil {
		return
	}
	p.bar.Describe(describe(run.Label))
	if err := p.bar.Set(run.Current - 1); err != nil {
		slog.Warn("Failed to update progress bar", "error", err)
	}
}

// BulkFinished completes the bar and prints the summary box.
func (p *BulkProgress) BulkFinished(summary engine.BulkSummary) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.bar != nil {
		if !summary.Stopped {
			if err := p.bar.Finish(); err != nil {
				slog.Warn("Failed to finish progress bar", "error", err)
			}
		} else if _, err := fmt.Fprintln(p.writer); err != nil {
			slog.Warn("Failed to write newline after progress bar", "error", err)
		}
		p.bar = nil
	}

	if _, err := fmt.Fprintln(p.writer, RenderSummary(summary)); err != nil {
		slog.Warn("Failed to write bulk summary", "error", err)
	}
}

func describe(label string) string {
	return "[cyan][bold]" + label + "[reset]"
}

// RenderSummary formats a bulk summary as a box.
func RenderSummary(summary engine.BulkSummary) string {
	title := "Bulk " + titleCase(string(summary.Kind)) + " Complete"
	if summary.NoOp {
		return RenderBox(title, FormatInfo("Nothing to do: every item is already processed."))
	}
	if summary.Stopped {
		title = "Bulk " + titleCase(string(summary.Kind)) + " Stopped"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s Summary:\n", ChartIcon)
	fmt.Fprintf(&b, "  • Succeeded: %d\n", summary.Succeeded)
	fmt.Fprintf(&b, "  • Failed: %d\n", summary.Failed)
	fmt.Fprintf(&b, "  • Skipped: %d\n", summary.Skipped)
	fmt.Fprintf(&b, "  • Time taken: %s", summary.Elapsed.Round(100*time.Millisecond))
	return RenderBox(title, b.String())
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
