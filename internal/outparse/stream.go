package outparse

import (
	"fmt"
	"strings"
)

// Stream selects which captured output is parsed and preserved.
type Stream int

const (
	Both Stream = iota
	Stdout
	Stderr
)

// ParseStream accepts "both", "stdout" or "stderr". The empty string means
// both.
func ParseStream(s string) (Stream, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "both":
		return Both, nil
	case "stdout":
		return Stdout, nil
	case "stderr":
		return Stderr, nil
	}
	return Both, fmt.Errorf("invalid stream %q: must be 'stdout', 'stderr' or 'both'", s)
}

func (s Stream) String() string {
	switch s {
	case Stdout:
		return "stdout"
	case Stderr:
		return "stderr"
	}
	return "both"
}

// Select returns the text to parse. Both streams are joined by a newline so
// the last stdout line never runs into the first stderr line.
func (s Stream) Select(stdout, stderr string) string {
	switch s {
	case Stdout:
		return stdout
	case Stderr:
		return stderr
	}
	return stdout + "\n" + stderr
}

// Columns names the raw output columns preserved for this stream.
func (s Stream) Columns() []string {
	switch s {
	case Stdout:
		return []string{"stdout"}
	case Stderr:
		return []string{"stderr"}
	}
	return []string{"stdout", "stderr"}
}
