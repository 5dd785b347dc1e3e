//go:build windows
// +build windows

package daemon

import "os/exec"

// setDetached is a no-op on Windows: services are the supported
// background-execution mechanism there (see internal/service), and
// session detachment has no setsid equivalent worth emulating.
func setDetached(cmd *exec.Cmd) {}
