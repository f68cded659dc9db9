// Package config defines the format-agnostic model of a sweep: the
// parameters, the command, metric selection and storage settings, along with
// the Loader interface for reading it from files.
//
// The Model is the single source of truth for the app package. It is built
// by merging a sweep definition file, decoded by a concrete Loader such as
// the one in the hcl package, with command-line flags.
package config
