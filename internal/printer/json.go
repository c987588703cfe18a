package printer

import (
	"encoding/json"
	"io"
	"time"

	"github.com/slok/pcp/internal/model"
)

// JSONPrinter prints copy run information in JSON format.
type JSONPrinter struct {
	writer io.Writer
}

// NewJSONPrinter creates a new JSON printer.
func NewJSONPrinter(w io.Writer) *JSONPrinter {
	return &JSONPrinter{writer: w}
}

// runItem represents a copy run in the list output (subset of fields).
type runItem struct {
	ID          string    `json:"id"`
	Source      string    `json:"source"`
	Destination string    `json:"destination"`
	FileSize    int64     `json:"file_size"`
	SliceCount  int       `json:"slice_count"`
	Outcome     string    `json:"outcome"`
	StartedAt   time.Time `json:"started_at"`
}

// runOutput represents the full copy run output.
type runOutput struct {
	ID          string        `json:"id"`
	Source      string        `json:"source"`
	Destination string        `json:"destination"`
	FileSize    int64         `json:"file_size"`
	SliceCount  int           `json:"slice_count"`
	Concurrency int           `json:"concurrency"`
	Outcome     string        `json:"outcome"`
	BytesCopied int64         `json:"bytes_copied"`
	StartedAt   time.Time     `json:"started_at"`
	FinishedAt  time.Time     `json:"finished_at"`
	Slices      []sliceOutput `json:"failed_slices,omitempty"`
}

// sliceOutput represents a slice that didn't succeed.
type sliceOutput struct {
	Index       int    `json:"index"`
	Status      string `json:"status"`
	BytesCopied int64  `json:"bytes_copied"`
	FailOffset  int64  `json:"fail_offset"`
	Error       string `json:"error,omitempty"`
}

// messageOutput represents a simple message output.
type messageOutput struct {
	Message string `json:"message"`
}

// PrintRunList prints copy runs in JSON format with a subset of fields.
func (j *JSONPrinter) PrintRunList(runs []model.CopyRun) error {
	items := make([]runItem, len(runs))
	for i, r := range runs {
		items[i] = runItem{
			ID:          r.ID,
			Source:      r.Source,
			Destination: r.Destination,
			FileSize:    r.FileSize,
			SliceCount:  r.SliceCount,
			Outcome:     string(r.Result.Outcome),
			StartedAt:   r.StartedAt.UTC(),
		}
	}

	enc := json.NewEncoder(j.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(items)
}

// PrintRun prints a detailed copy run in JSON format.
func (j *JSONPrinter) PrintRun(run model.CopyRun) error {
	output := runOutput{
		ID:          run.ID,
		Source:      run.Source,
		Destination: run.Destination,
		FileSize:    run.FileSize,
		SliceCount:  run.SliceCount,
		Concurrency: run.Concurrency,
		Outcome:     string(run.Result.Outcome),
		BytesCopied: run.Result.TotalBytesCopied,
		StartedAt:   run.StartedAt.UTC(),
		FinishedAt:  run.FinishedAt.UTC(),
	}

	for _, s := range run.Result.FailedSlices() {
		so := sliceOutput{
			Index:       s.Index,
			Status:      string(s.Status),
			BytesCopied: s.BytesCopied,
			FailOffset:  s.FailOffset,
		}
		if s.Err != nil {
			so.Error = s.Err.Error()
		}
		output.Slices = append(output.Slices, so)
	}

	enc := json.NewEncoder(j.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(output)
}

// PrintMessage prints a simple message in JSON format.
func (j *JSONPrinter) PrintMessage(msg string) error {
	enc := json.NewEncoder(j.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(messageOutput{Message: msg})
}
