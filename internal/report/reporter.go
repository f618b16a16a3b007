// Package report writes run results to an output in a chosen format.
package report

import (
	"fmt"
	"io"
	"os"

	"github.com/qaops/insider-e2e/internal/scenarios"
)

// Reporter defines the interface for writing scenario results to an output.
type Reporter interface {
	// Write renders the full result set.
	Write(results []scenarios.Result) error
	// Close finalizes the report and closes any underlying resources (e.g., file handles).
	Close() error
}

// nopWriteCloser wraps an io.Writer and provides a no-op Close method.
type nopWriteCloser struct {
	io.Writer
}

func (nwc *nopWriteCloser) Close() error {
	return nil
}

// New creates a reporter for the given format and output path. An empty or
// "stdout" path writes to standard output.
func New(format, outputPath string) (Reporter, error) {
	var writer io.WriteCloser
	isStdOut := outputPath == "" || outputPath == "stdout"

	if isStdOut {
		// Wrap Stdout so Close() is a no-op.
		writer = &nopWriteCloser{os.Stdout}
	} else {
		f, err := os.Create(outputPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create output file %s: %w", outputPath, err)
		}
		writer = f
	}

	cleanup := func() {
		if !isStdOut {
			writer.Close()
		}
	}

	switch format {
	case "json":
		return NewJSONReporter(writer), nil
	case "text":
		return NewTextReporter(writer), nil
	default:
		cleanup()
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}
