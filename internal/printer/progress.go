package printer

import (
	"fmt"
	"io"
	"strings"
	"time"
)

const progressBarWidth = 30

// ProgressPrinter renders a live progress line for a copy run. It satisfies
// the copy engine's progress notifier contract and is driven from the
// engine's reporting loop, so rendering speed never affects the copy itself.
type ProgressPrinter struct {
	writer  io.Writer
	started time.Time
	lastLen int
}

// NewProgressPrinter creates a new progress printer. For a CLI the writer is
// usually stderr so the bar doesn't mix with stdout output.
func NewProgressPrinter(w io.Writer) *ProgressPrinter {
	return &ProgressPrinter{writer: w}
}

// Start announces the run and resets the ETA clock.
func (p *ProgressPrinter) Start(totalBytes int64, slices int) {
	p.started = time.Now()
	fmt.Fprintf(p.writer, "Copying %s in %d slices\n", FormatBytes(totalBytes), slices)
}

// Progress renders the current state as a single rewritten line:
// bytes counter, percentage, bar and ETA.
func (p *ProgressPrinter) Progress(copiedBytes, totalBytes int64) {
	fraction := 1.0
	if totalBytes > 0 {
		fraction = float64(copiedBytes) / float64(totalBytes)
	}

	filled := int(fraction * progressBarWidth)
	if filled > progressBarWidth {
		filled = progressBarWidth
	}
	bar := strings.Repeat("=", filled) + strings.Repeat(" ", progressBarWidth-filled)

	line := fmt.Sprintf("%s/%s  (%3.0f%%)  [%s]  ETA %s",
		FormatBytes(copiedBytes),
		FormatBytes(totalBytes),
		fraction*100,
		bar,
		p.eta(fraction),
	)

	// Pad with spaces so a shorter line fully overwrites the previous one.
	if pad := p.lastLen - len(line); pad > 0 {
		line += strings.Repeat(" ", pad)
	}
	p.lastLen = len(line)

	fmt.Fprintf(p.writer, "\r%s", line)
}

// Finish terminates the progress line.
func (p *ProgressPrinter) Finish() {
	fmt.Fprintln(p.writer)
}

func (p *ProgressPrinter) eta(fraction float64) string {
	if fraction <= 0 {
		return "--:--"
	}
	if fraction >= 1 {
		return "00:00"
	}

	elapsed := time.Since(p.started)
	remaining := time.Duration(float64(elapsed)/fraction) - elapsed
	remaining = remaining.Round(time.Second)

	if remaining >= time.Hour {
		return fmt.Sprintf("%d:%02d:%02d", int(remaining.Hours()), int(remaining.Minutes())%60, int(remaining.Seconds())%60)
	}
	return fmt.Sprintf("%02d:%02d", int(remaining.Minutes()), int(remaining.Seconds())%60)
}
