package config

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultOutput is the result file used when none is configured.
const DefaultOutput = "results.csv"

var ErrInvalidConfig = errors.New("invalid configuration")

// Model is the merged configuration of one run.
type Model struct {
	Params []ParamDef
	// Command is the argument vector of the experiment. When empty, Script
	// is run by the shell instead.
	Command []string
	Script  string

	Metrics  []string
	Preserve bool
	// Stream is "stdout", "stderr", "both" or empty for both.
	Stream string

	Output      string
	Concurrency int
	EnvFile     string
}

// ParamDef is one parameter as written by the user.
type ParamDef struct {
	Name string
	Expr string
}

// Merge overlays other onto m: scalar fields set in other win, parameters
// are appended after m's.
func (m *Model) Merge(other *Model) {
	if other == nil {
		return
	}
	m.Params = append(m.Params, other.Params...)
	if len(other.Command) > 0 {
		m.Command = other.Command
	}
	if other.Script != "" {
		m.Script = other.Script
	}
	if len(other.Metrics) > 0 {
		m.Metrics = other.Metrics
	}
	if other.Preserve {
		m.Preserve = true
	}
	if other.Stream != "" {
		m.Stream = other.Stream
	}
	if other.Output != "" {
		m.Output = other.Output
	}
	if other.Concurrency != 0 {
		m.Concurrency = other.Concurrency
	}
	if other.EnvFile != "" {
		m.EnvFile = other.EnvFile
	}
}

// ApplyDefaults fills the output path and concurrency when unset.
func (m *Model) ApplyDefaults() {
	if m.Output == "" {
		m.Output = DefaultOutput
	}
	if m.Concurrency == 0 {
		m.Concurrency = 1
	}
}

// Validate reports the first problem that prevents a run.
func (m *Model) Validate() error {
	switch {
	case len(m.Params) == 0:
		return fmt.Errorf("%w: no parameters provided", ErrInvalidConfig)
	case m.Concurrency < 1:
		return fmt.Errorf("%w: concurrency must be at least 1, got %d", ErrInvalidConfig, m.Concurrency)
	case len(m.Metrics) == 0 && !m.Preserve:
		return fmt.Errorf("%w: either metrics or preserve output must be specified", ErrInvalidConfig)
	case len(m.Command) == 0 && strings.TrimSpace(m.Script) == "":
		return fmt.Errorf("%w: no command or script provided", ErrInvalidConfig)
	}
	for _, p := range m.Params {
		if strings.TrimSpace(p.Name) == "" {
			return fmt.Errorf("%w: parameter with an empty name", ErrInvalidConfig)
		}
	}
	switch strings.ToLower(m.Stream) {
	case "", "both", "stdout", "stderr":
	default:
		return fmt.Errorf("%w: invalid stream %q", ErrInvalidConfig, m.Stream)
	}
	return nil
}
