//go:build !windows
// +build !windows

package daemon

import (
	"os/exec"
	"syscall"
)

// setDetached starts cmd in its own session so it is not killed when the
// parent's controlling terminal is closed.
func setDetached(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
}
