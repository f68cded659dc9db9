//go:build unix

package launcher

import (
	"errors"
	"os"
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

// isolate puts the child in a new process group so an interrupt reaches
// everything it spawns.
func isolate(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

func interrupt(p *os.Process) error {
	err := unix.Kill(-p.Pid, unix.SIGINT)
	if errors.Is(err, unix.ESRCH) {
		return os.ErrProcessDone
	}
	return err
}

func defaultShell() []string {
	if path, err := exec.LookPath("bash"); err == nil {
		return []string{path, "-s"}
	}
	return []string{"/bin/sh", "-s"}
}
