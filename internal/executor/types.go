package executor

import (
	"errors"

	"github.com/vk/runexp/internal/outparse"
	"github.com/vk/runexp/internal/resultstore"
	"github.com/vk/runexp/internal/sweep"
)

var (
	ErrSubprocessFailed = errors.New("subprocess failed")
	ErrMissingMetric    = errors.New("missing metrics in output")
	ErrInterrupted      = errors.New("run interrupted")
)

// Outcome classifies one combination's execution.
type Outcome int

const (
	Succeeded Outcome = iota
	Failed
	Interrupted
)

func (o Outcome) String() string {
	switch o {
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	case Interrupted:
		return "interrupted"
	}
	return "unknown"
}

// Result is the outcome of running one combination.
type Result struct {
	// Index is the 1-based position in the full sequence.
	Index       int
	Total       int
	Combination sweep.Combination
	Outcome     Outcome
	// Metrics holds the parsed labels kept by the metric filter.
	Metrics *outparse.Metrics
	// Values holds one formatted value per configured metric.
	Values   []string
	Stdout   string
	Stderr   string
	ExitCode int
	// Err explains a failure.
	Err error
}

// Summary counts outcomes across a run.
type Summary struct {
	Total       int
	Succeeded   int
	Skipped     int
	Failed      int
	Interrupted int
	// NotStarted counts combinations never claimed because the run stopped.
	NotStarted int
	// Samples holds each configured metric's values from successful runs.
	Samples map[string][]float64
}

// Store is the part of the result store the executor uses.
type Store interface {
	Contains(params []string) bool
	Append(row resultstore.Row) error
}

// Reporter receives progress. Started may be called from several workers
// at once; Skipped and Finished are called from one goroutine at a time.
type Reporter interface {
	Skipped(index, total int, c sweep.Combination)
	Started(index, total int, c sweep.Combination)
	Finished(r Result)
}

type nopReporter struct{}

func (nopReporter) Skipped(int, int, sweep.Combination) {}
func (nopReporter) Started(int, int, sweep.Combination) {}
func (nopReporter) Finished(Result)                     {}
