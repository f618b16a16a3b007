package report

import (
	"encoding/json"
	"io"
	"time"

	"github.com/qaops/insider-e2e/internal/scenarios"
)

// runDocument is the serialized shape of one suite run.
type runDocument struct {
	GeneratedAt time.Time   `json:"generated_at"`
	Total       int         `json:"total"`
	Failed      int         `json:"failed"`
	Results     []runResult `json:"results"`
}

type runResult struct {
	Scenario   string  `json:"scenario"`
	RunID      string  `json:"run_id"`
	DurationMS int64   `json:"duration_ms"`
	Status     string  `json:"status"`
	Error      *string `json:"error,omitempty"`
}

// JSONReporter renders the run as a single JSON document.
type JSONReporter struct {
	writer io.WriteCloser
	now    func() time.Time
}

// NewJSONReporter takes ownership of the writer.
func NewJSONReporter(writer io.WriteCloser) *JSONReporter {
	return &JSONReporter{writer: writer, now: time.Now}
}

func (r *JSONReporter) Write(results []scenarios.Result) error {
	doc := runDocument{
		GeneratedAt: r.now().UTC(),
		Total:       len(results),
		Failed:      scenarios.Failed(results),
		Results:     make([]runResult, 0, len(results)),
	}
	for _, res := range results {
		out := runResult{
			Scenario:   res.Scenario,
			RunID:      res.RunID,
			DurationMS: res.Duration.Milliseconds(),
			Status:     "passed",
		}
		if res.Err != nil {
			out.Status = "failed"
			msg := res.Err.Error()
			out.Error = &msg
		}
		doc.Results = append(doc.Results, out)
	}

	enc := json.NewEncoder(r.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

func (r *JSONReporter) Close() error {
	return r.writer.Close()
}
