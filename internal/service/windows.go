//go:build windows
// +build windows

package service

import (
	"fmt"
	"os"
	"time"

	"golang.org/x/sys/windows/svc"
	"golang.org/x/sys/windows/svc/eventlog"
	"golang.org/x/sys/windows/svc/mgr"
)

// windowsService adapts a (start, stop) pair to svc.Handler.
type windowsService struct {
	name  string
	start func() error
	stop  func()
}

func (s *windowsService) Execute(args []string, r <-chan svc.ChangeRequest, changes chan<- svc.Status) (bool, uint32) {
	const cmdsAccepted = svc.AcceptStop | svc.AcceptShutdown

	changes <- svc.Status{State: svc.StartPending}

	errCh := make(chan error, 1)
	go func() { errCh <- s.start() }()

	select {
	case err := <-errCh:
		if err != nil {
			s.logError(fmt.Sprintf("start failed: %v", err))
			return false, 1
		}
	case <-time.After(5 * time.Second):
	}

	changes <- svc.Status{State: svc.Running, Accepts: cmdsAccepted}

loop:
	for {
		select {
		case err := <-errCh:
			if err != nil {
				s.logError(fmt.Sprintf("service error: %v", err))
			}
			break loop
		case c := <-r:
			switch c.Cmd {
			case svc.Interrogate:
				changes <- c.CurrentStatus
			case svc.Stop, svc.Shutdown:
				break loop
			default:
				s.logWarning(fmt.Sprintf("unexpected control request #%d", c.Cmd))
			}
		}
	}

	changes <- svc.Status{State: svc.StopPending}
	s.stop()
	return false, 0
}

func (s *windowsService) logError(msg string) {
	if elog, err := eventlog.Open(s.name); err == nil {
		elog.Error(1, msg)
		elog.Close()
	}
}

func (s *windowsService) logWarning(msg string) {
	if elog, err := eventlog.Open(s.name); err == nil {
		elog.Warning(1, msg)
		elog.Close()
	}
}

// buildServiceConfig derives the SCM registration for name from args,
// independent of any actual SCM connection so it can be unit tested.
// recmd listens for TCP connections from the moment it starts, so the
// service depends on the Windows TCP/IP stack having already come up
// rather than starting in whatever order the SCM would otherwise pick.
func buildServiceConfig(displayName string, args []string) (mgr.Config, []string) {
	cfg := mgr.Config{
		DisplayName:  displayName,
		StartType:    mgr.StartAutomatic,
		Description:  "remote command execution service",
		Dependencies: []string{"Tcpip"},
	}
	return cfg, filterInstallFlag(args)
}

// Install registers name as a Windows service that re-runs the current
// executable with args, minus -install, plus -service.
func Install(name, displayName string, args []string) error {
	exePath, err := os.Executable()
	if err != nil {
		return fmt.Errorf("service: executable path: %w", err)
	}

	m, err := mgr.Connect()
	if err != nil {
		return fmt.Errorf("service: connect to SCM: %w", err)
	}
	defer m.Disconnect()

	if s, err := m.OpenService(name); err == nil {
		s.Close()
		return fmt.Errorf("service: %s already exists", name)
	}

	mgrCfg, serviceArgs := buildServiceConfig(displayName, args)

	s, err := m.CreateService(name, exePath, mgrCfg, serviceArgs...)
	if err != nil {
		return fmt.Errorf("service: create: %w", err)
	}
	defer s.Close()

	if err := eventlog.InstallAsEventCreate(name, eventlog.Error|eventlog.Warning|eventlog.Info); err != nil {
		s.Delete()
		return fmt.Errorf("service: install event source: %w", err)
	}
	return nil
}

// Uninstall stops, deletes, and removes the event log source for name.
func Uninstall(name string) error {
	m, err := mgr.Connect()
	if err != nil {
		return fmt.Errorf("service: connect to SCM: %w", err)
	}
	defer m.Disconnect()

	s, err := m.OpenService(name)
	if err != nil {
		return fmt.Errorf("service: %s not found: %w", name, err)
	}
	defer s.Close()

	if status, err := s.Query(); err == nil && status.State != svc.Stopped {
		s.Control(svc.Stop)
		for i := 0; i < 10; i++ {
			time.Sleep(500 * time.Millisecond)
			if status, err := s.Query(); err != nil || status.State == svc.Stopped {
				break
			}
		}
	}

	if err := s.Delete(); err != nil {
		return fmt.Errorf("service: delete: %w", err)
	}
	eventlog.Remove(name)
	return nil
}

// Run dispatches to the Windows SCM when launched as a service, or runs
// start directly when launched interactively (e.g. under a debugger).
func Run(name string, start func() error, stop func()) error {
	isInteractive, err := svc.IsWindowsService()
	if err != nil {
		return fmt.Errorf("service: determine session type: %w", err)
	}
	if !isInteractive {
		return svc.Run(name, &windowsService{name: name, start: start, stop: stop})
	}
	return start()
}

// IsService reports whether the process was launched by the SCM.
func IsService() bool {
	isService, _ := svc.IsWindowsService()
	return isService
}
