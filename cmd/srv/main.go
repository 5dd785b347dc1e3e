// Command srv runs the remote-command server: it listens on a TCP port,
// decrypts each incoming request, executes the command it carries, and
// replies with the captured output.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"recmd/internal/config"
	"recmd/internal/daemon"
	"recmd/internal/server"
	"recmd/internal/service"
)

const serviceName = "recmd-srv"

func main() {
	var (
		port         = flag.Uint("p", config.DefaultPort, "listening port")
		daemonize    = flag.Bool("d", false, "daemonize: detach and run in the background")
		installSvc   = flag.Bool("install", false, "install as a system service")
		uninstallSvc = flag.Bool("uninstall", false, "uninstall the system service")
		runSvc       = flag.Bool("service", false, "run under the system service manager")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "srv - remote command execution server\n\n")
		fmt.Fprintf(os.Stderr, "Usage:\n  %s [options]\n\nOptions:\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if *installSvc {
		if err := service.Install(serviceName, "recmd server", os.Args[1:]); err != nil {
			log.Fatalf("install service: %v", err)
		}
		fmt.Println("service installed")
		return
	}
	if *uninstallSvc {
		if err := service.Uninstall(serviceName); err != nil {
			log.Fatalf("uninstall service: %v", err)
		}
		fmt.Println("service uninstalled")
		return
	}

	if *daemonize {
		isChild, err := daemon.Daemonize()
		if err != nil {
			log.Fatalf("daemonize: %v", err)
		}
		if !isChild {
			return
		}
	}

	cfg := config.New()
	addr := fmt.Sprintf(":%d", *port)

	if *runSvc {
		if err := service.Run(serviceName, func() error {
			return runServer(cfg, addr)
		}, func() {}); err != nil {
			log.Fatalf("service error: %v", err)
		}
		return
	}

	if err := runServer(cfg, addr); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(cfg *config.Config, addr string) error {
	logger := log.New(os.Stderr, "", log.LstdFlags)

	srv, err := server.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("build server: %w", err)
	}

	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.ListenAndServe(addr) }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serveErr:
		return err
	case sig := <-sigCh:
		logger.Printf("received signal %v, shutting down", sig)
		return nil
	}
}
