package printer

import "github.com/slok/pcp/internal/model"

// Printer knows how to print copy run information in different formats.
type Printer interface {
	PrintRunList(runs []model.CopyRun) error
	PrintRun(run model.CopyRun) error
	PrintMessage(msg string) error
}
