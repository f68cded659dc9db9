//go:build !unix && !windows

package launcher

import (
	"os"
	"os/exec"
)

func isolate(*exec.Cmd) {}

func interrupt(p *os.Process) error {
	return p.Signal(os.Interrupt)
}

func defaultShell() []string {
	return []string{"sh", "-s"}
}
