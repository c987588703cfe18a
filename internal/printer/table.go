package printer

import (
	"fmt"
	"io"
	"path/filepath"
	"text/tabwriter"

	"github.com/slok/pcp/internal/model"
)

// TablePrinter prints copy run information in a table format.
type TablePrinter struct {
	writer io.Writer
}

// NewTablePrinter creates a new table printer.
func NewTablePrinter(w io.Writer) *TablePrinter {
	return &TablePrinter{writer: w}
}

// PrintRunList prints copy runs in a table format.
func (t *TablePrinter) PrintRunList(runs []model.CopyRun) error {
	if len(runs) == 0 {
		return nil
	}

	tw := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	// Print header
	fmt.Fprintln(tw, "ID\tSOURCE\tSIZE\tSLICES\tOUTCOME\tDURATION\tSTARTED")

	// Print rows
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\t%s\n",
			r.ID,
			filepath.Base(r.Source),
			FormatBytes(r.FileSize),
			r.SliceCount,
			r.Result.Outcome,
			FormatDuration(r.Duration()),
			TimeAgo(r.StartedAt),
		)
	}

	return nil
}

// PrintRun prints a detailed copy run, including the slices that didn't
// succeed.
func (t *TablePrinter) PrintRun(run model.CopyRun) error {
	fmt.Fprintf(t.writer, "ID:           %s\n", run.ID)
	fmt.Fprintf(t.writer, "Source:       %s\n", run.Source)
	fmt.Fprintf(t.writer, "Destination:  %s\n", run.Destination)
	fmt.Fprintf(t.writer, "Size:         %s\n", FormatBytes(run.FileSize))
	fmt.Fprintf(t.writer, "Slices:       %d\n", run.SliceCount)
	fmt.Fprintf(t.writer, "Concurrency:  %d\n", run.Concurrency)
	fmt.Fprintf(t.writer, "Outcome:      %s\n", run.Result.Outcome)
	fmt.Fprintf(t.writer, "Copied:       %s\n", FormatBytes(run.Result.TotalBytesCopied))
	fmt.Fprintf(t.writer, "Started:      %s\n", FormatTimestamp(run.StartedAt))
	fmt.Fprintf(t.writer, "Duration:     %s\n", FormatDuration(run.Duration()))

	failed := run.Result.FailedSlices()
	if len(failed) == 0 {
		return nil
	}

	fmt.Fprintln(t.writer)
	tw := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintln(tw, "SLICE\tSTATUS\tCOPIED\tOFFSET\tERROR")
	for _, s := range failed {
		errMsg := ""
		if s.Err != nil {
			errMsg = s.Err.Error()
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\n", s.Index, s.Status, FormatBytes(s.BytesCopied), s.FailOffset, errMsg)
	}

	return nil
}

// PrintMessage prints a simple message.
func (t *TablePrinter) PrintMessage(msg string) error {
	_, err := fmt.Fprintln(t.writer, msg)
	return err
}
