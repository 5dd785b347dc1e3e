// Package daemon detaches the current process into the background by
// re-executing itself in a new session, the standard Go daemonization
// idiom on Unix (there is no fork(2) exposed to a running Go runtime).
package daemon

import (
	"fmt"
	"os"
	"os/exec"
)

// reexecEnv marks a process that has already been re-executed as a
// daemon, so Daemonize does not recurse.
const reexecEnv = "RECMD_DAEMONIZED"

// Daemonize reports, via its bool return, whether the caller is now
// running as the detached child (true) or is the original foreground
// process that should exit immediately (false). The child's stdin,
// stdout, and stderr are redirected to /dev/null and it runs in its own
// session via setsid, so it survives the parent's terminal closing.
func Daemonize() (bool, error) {
	if os.Getenv(reexecEnv) != "" {
		return true, nil
	}

	exe, err := os.Executable()
	if err != nil {
		return false, fmt.Errorf("daemon: executable path: %w", err)
	}

	devnull, err := os.OpenFile(os.DevNull, os.O_RDWR, 0)
	if err != nil {
		return false, fmt.Errorf("daemon: open %s: %w", os.DevNull, err)
	}
	defer devnull.Close()

	cmd := exec.Command(exe, os.Args[1:]...)
	cmd.Env = append(os.Environ(), reexecEnv+"=1")
	cmd.Stdin = devnull
	cmd.Stdout = devnull
	cmd.Stderr = devnull
	setDetached(cmd)

	if err := cmd.Start(); err != nil {
		return false, fmt.Errorf("daemon: start child: %w", err)
	}

	return false, nil
}
