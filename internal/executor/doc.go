// Package executor runs a sequence of combinations on a fixed pool of
// workers and records the successful ones.
//
// Before dispatch the executor takes one snapshot of the result store and
// reports combinations already present as skipped. The rest sit behind a
// shared cursor; each worker claims the next combination, launches the
// experiment with the combination's values in its environment and waits for
// it. Results flow to a single recorder goroutine, which is the only code
// that appends to the store, so rows are written one at a time in completion
// order.
//
// A combination fails when its command exits non-zero or its output lacks a
// configured metric. Failures are reported and never recorded, so a later
// run retries exactly those combinations. Cancelling the context stops new
// claims, interrupts the running children and waits for them to exit.
package executor
