package executor

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/vk/runexp/internal/ctxlog"
	"github.com/vk/runexp/internal/launcher"
	"github.com/vk/runexp/internal/outparse"
	"github.com/vk/runexp/internal/resultstore"
	"github.com/vk/runexp/internal/sweep"
	"golang.org/x/sync/errgroup"
)

// Config describes what each worker launches and how output is judged.
type Config struct {
	Concurrency int
	// Args is the command line; when empty, Script is run by the shell.
	Args   []string
	Script string
	// Env is added to every child before the combination's variables.
	Env      []string
	Metrics  []string
	Stream   outparse.Stream
	Preserve bool
}

// Executor dispatches combinations to a worker pool.
type Executor struct {
	cfg      Config
	store    Store
	launcher launcher.Launcher
	reporter Reporter
}

// Option configures an Executor.
type Option func(*Executor)

// WithReporter sets the progress receiver.
func WithReporter(r Reporter) Option {
	return func(e *Executor) { e.reporter = r }
}

// New creates an Executor. A concurrency below one means one worker.
func New(store Store, l launcher.Launcher, cfg Config, opts ...Option) *Executor {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	e := &Executor{cfg: cfg, store: store, launcher: l, reporter: nopReporter{}}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

type job struct {
	index int
	combo sweep.Combination
}

// Run executes every combination not already in the store. It returns
// ErrInterrupted when ctx is cancelled, after all running children have
// exited, and an error when a successful result cannot be recorded.
// Individual failures only show up in the Summary.
func (e *Executor) Run(ctx context.Context, combos []sweep.Combination) (Summary, error) {
	logger := ctxlog.FromContext(ctx)
	summary := Summary{Total: len(combos), Samples: make(map[string][]float64)}

	var jobs []job
	for i, c := range combos {
		if e.store.Contains(c.Rendered()) {
			summary.Skipped++
			e.reporter.Skipped(i+1, len(combos), c)
			continue
		}
		jobs = append(jobs, job{index: i + 1, combo: c})
	}
	logger.Debug("Dispatching combinations.", "pending", len(jobs), "skipped", summary.Skipped, "workers", e.cfg.Concurrency)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		g       errgroup.Group
		workers sync.WaitGroup
		cursor  atomic.Int64
		claimed atomic.Int64
		results = make(chan Result)
	)
	for w := range min(e.cfg.Concurrency, max(len(jobs), 1)) {
		workers.Add(1)
		g.Go(func() error {
			defer workers.Done()
			e.worker(runCtx, w+1, len(combos), jobs, &cursor, &claimed, results)
			return nil
		})
	}
	g.Go(func() error {
		workers.Wait()
		close(results)
		return nil
	})
	g.Go(func() error {
		return e.record(runCtx, cancel, results, &summary)
	})

	err := g.Wait()
	summary.NotStarted = len(jobs) - int(claimed.Load())
	if err != nil {
		return summary, err
	}
	if ctx.Err() != nil {
		return summary, ErrInterrupted
	}
	return summary, nil
}

// worker claims combinations until the cursor runs out or ctx is done.
func (e *Executor) worker(ctx context.Context, workerID, total int, jobs []job, cursor, claimed *atomic.Int64, results chan<- Result) {
	ctx = ctxlog.With(ctx, "workerID", workerID)
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Worker started.")

	for ctx.Err() == nil {
		i := cursor.Add(1) - 1
		if i >= int64(len(jobs)) {
			break
		}
		claimed.Add(1)
		j := jobs[i]

		comboLogger := logger.With("combination", j.combo.String())
		comboLogger.Debug("Worker claimed combination.", "index", j.index)
		e.reporter.Started(j.index, total, j.combo)

		r := e.execute(ctxlog.WithLogger(ctx, comboLogger), j, total)
		comboLogger.Debug("Combination finished.", "outcome", r.Outcome)
		results <- r
	}
	logger.Debug("Worker finished.")
}

// execute runs one combination and classifies the outcome.
func (e *Executor) execute(ctx context.Context, j job, total int) Result {
	r := Result{Index: j.index, Total: total, Combination: j.combo}

	spec := launcher.Spec{
		Args:   e.cfg.Args,
		Script: e.cfg.Script,
		Env:    append(slices.Clone(e.cfg.Env), j.combo.Environ()...),
	}
	res, err := e.launcher.Run(ctx, spec)
	if err != nil {
		r.Outcome = Failed
		r.Err = fmt.Errorf("%w: %v", ErrSubprocessFailed, err)
		return r
	}
	r.Stdout, r.Stderr, r.ExitCode = res.Stdout, res.Stderr, res.ExitCode

	switch {
	case res.Interrupted:
		r.Outcome = Interrupted
		r.Err = ErrInterrupted
		return r
	case !res.Success():
		r.Outcome = Failed
		r.Err = fmt.Errorf("%w: exit code %d", ErrSubprocessFailed, res.ExitCode)
		return r
	}

	parsed := outparse.Parse(e.cfg.Stream.Select(res.Stdout, res.Stderr))
	if missing := parsed.Missing(e.cfg.Metrics); len(missing) > 0 {
		r.Outcome = Failed
		r.Err = fmt.Errorf("%w: %s", ErrMissingMetric, strings.Join(missing, ", "))
		return r
	}

	r.Metrics = parsed.Filter(e.cfg.Metrics)
	r.Values = make([]string, len(e.cfg.Metrics))
	for i, name := range e.cfg.Metrics {
		m, _ := parsed.Lookup(name)
		r.Values[i] = m.Format()
	}
	r.Outcome = Succeeded
	return r
}

// record is the only goroutine that appends to the store. After a failed
// append it cancels the run but keeps draining so workers never block.
func (e *Executor) record(ctx context.Context, cancel context.CancelFunc, results <-chan Result, summary *Summary) error {
	logger := ctxlog.FromContext(ctx)
	var fatal error

	for r := range results {
		if r.Outcome == Succeeded && fatal == nil {
			if err := e.store.Append(e.row(r)); err != nil {
				fatal = fmt.Errorf("recording %s: %w", r.Combination, err)
				logger.Error("Failed to record result, stopping run.", "error", err)
				cancel()
				r.Outcome = Failed
				r.Err = fatal
			}
		} else if r.Outcome == Succeeded {
			r.Outcome = Failed
			r.Err = fatal
		}

		switch r.Outcome {
		case Succeeded:
			summary.Succeeded++
			for _, name := range e.cfg.Metrics {
				if m, ok := r.Metrics.Lookup(name); ok {
					summary.Samples[name] = append(summary.Samples[name], m.Value)
				}
			}
		case Failed:
			summary.Failed++
		case Interrupted:
			summary.Interrupted++
		}
		e.reporter.Finished(r)
	}
	return fatal
}

func (e *Executor) row(r Result) resultstore.Row {
	row := resultstore.Row{Params: r.Combination.Rendered(), Metrics: r.Values}
	if e.cfg.Preserve {
		switch e.cfg.Stream {
		case outparse.Stdout:
			row.Outputs = []string{r.Stdout}
		case outparse.Stderr:
			row.Outputs = []string{r.Stderr}
		default:
			row.Outputs = []string{r.Stdout, r.Stderr}
		}
	}
	return row
}
