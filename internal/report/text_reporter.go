package report

import (
	"fmt"
	"io"
	"time"

	"github.com/qaops/insider-e2e/internal/scenarios"
)

// TextReporter renders a human-readable run summary, one line per scenario.
type TextReporter struct {
	writer io.WriteCloser
}

// NewTextReporter takes ownership of the writer.
func NewTextReporter(writer io.WriteCloser) *TextReporter {
	return &TextReporter{writer: writer}
}

func (r *TextReporter) Write(results []scenarios.Result) error {
	for _, res := range results {
		status := "PASS"
		if res.Err != nil {
			status = "FAIL"
		}
		if _, err := fmt.Fprintf(r.writer, "%-4s %-28s %10s  run=%s\n",
			status, res.Scenario, res.Duration.Round(time.Millisecond), res.RunID); err != nil {
			return err
		}
		if res.Err != nil {
			if _, err := fmt.Fprintf(r.writer, "     %v\n", res.Err); err != nil {
				return err
			}
		}
	}
	failed := scenarios.Failed(results)
	_, err := fmt.Fprintf(r.writer, "\n%d scenarios, %d failed\n", len(results), failed)
	return err
}

func (r *TextReporter) Close() error {
	return r.writer.Close()
}
