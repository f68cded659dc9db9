// Package app contains the core application logic. It merges the sweep
// definition with command-line settings, resolves the parameter plan and
// drives one run of the executor, decoupled from any specific entrypoint.
package app
