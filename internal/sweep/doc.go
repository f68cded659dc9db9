// Package sweep resolves parameter definitions into the ordered sequence of
// combinations a run executes.
//
// Resolve parses every definition, orders parameters by their references and
// expands each free parameter into its domain. The resulting Plan enumerates
// combinations as nested loops over the free parameters in declaration order,
// the first declared parameter being the outermost loop. Parameters that
// reference others add no loop of their own; their single value is computed
// from the current assignment once per combination.
//
// Enumeration is deterministic and drops repeated value tuples, so two runs
// over the same definitions see the same combinations in the same order.
package sweep
