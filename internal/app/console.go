package app

import (
	"fmt"
	"io"
	"math"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/vk/runexp/internal/executor"
	"github.com/vk/runexp/internal/sweep"
	"gonum.org/v1/gonum/stat"
)

// console prints progress for humans. Progress goes to out; failure banners
// and captured output go to errOut.
type console struct {
	mu     sync.Mutex
	out    io.Writer
	errOut io.Writer

	fail *color.Color
	warn *color.Color
	ok   *color.Color
	bold *color.Color
}

func newConsole(out, errOut io.Writer) *console {
	return &console{
		out:    out,
		errOut: errOut,
		fail:   color.New(color.FgRed, color.Bold),
		warn:   color.New(color.FgYellow),
		ok:     color.New(color.FgGreen),
		bold:   color.New(color.Bold),
	}
}

func (c *console) Generated(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, "Generated %d parameter combinations\n", n)
}

func (c *console) Skipped(index, total int, combo sweep.Combination) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, "Skipping combination %d/%d (already exists): %s\n", index, total, combo)
}

func (c *console) Started(index, total int, combo sweep.Combination) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, "Running combination %d/%d: %s\n", index, total, combo)
}

func (c *console) Finished(r executor.Result) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch r.Outcome {
	case executor.Succeeded:
		if r.Metrics != nil && r.Metrics.Len() > 0 {
			parts := make([]string, 0, r.Metrics.Len())
			for _, m := range r.Metrics.All() {
				parts = append(parts, m.Label+"="+m.Format())
			}
			c.ok.Fprintf(c.out, "Finished combination %d/%d: %s\n", r.Index, r.Total, strings.Join(parts, " "))
		}
	case executor.Interrupted:
		c.warn.Fprintf(c.errOut, "Combination %d/%d interrupted: %s\n", r.Index, r.Total, r.Combination)
	default:
		c.fail.Fprintf(c.errOut, "Combination %d/%d failed: %s\n", r.Index, r.Total, r.Combination)
		fmt.Fprintf(c.errOut, "Error: %v\n", r.Err)
		if r.Stdout != "" || r.Stderr != "" {
			fmt.Fprintf(c.errOut, "=== stdout ===\n%s\n=== stderr ===\n%s\n", r.Stdout, r.Stderr)
		}
	}
}

// Summary prints the completion count and statistics for each metric.
func (c *console) Summary(s executor.Summary, metrics []string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.bold.Fprintf(c.out, "Completed %d out of %d\n", s.Succeeded+s.Skipped, s.Total)
	fmt.Fprintf(c.out, "  succeeded: %d, skipped: %d, failed: %d, interrupted: %d, not started: %d\n",
		s.Succeeded, s.Skipped, s.Failed, s.Interrupted, s.NotStarted)

	for _, name := range metrics {
		xs := s.Samples[name]
		if len(xs) == 0 {
			continue
		}
		mean, std := stat.MeanStdDev(xs, nil)
		if math.IsNaN(std) {
			std = 0
		}
		fmt.Fprintf(c.out, "  %s: mean=%g stddev=%g n=%d\n", name, mean, std, len(xs))
	}
}
