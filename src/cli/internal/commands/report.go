package commands

import (
	"fmt"
	"io"
	"strconv"

	"github.com/veedubyou/timbre/src/shared/stage/batch"
)

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}

func printReport(w io.Writer, report batch.Report) {
	fmt.Fprintf(w, "%s: %d processed, %d failed\n", report.Stage, len(report.Processed), len(report.Failed))

	for _, failure := range report.Failed {
		fmt.Fprintf(w, "  %s: %v\n", failure.File.Name, failure.Err)
	}
}

func printDataset(w io.Writer, path string) {
	if path == "" {
		return
	}

	fmt.Fprintf(w, "dataset written to %s\n", path)
}
