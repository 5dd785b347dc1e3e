// Package server implements the remote-command server: a TCP listener
// that dispatches each accepted connection to an independent worker
// running the read → replay-check → execute → respond pipeline.
package server

import (
	"fmt"
	"log"
	"net"

	"golang.org/x/sync/errgroup"

	"recmd/internal/command"
	"recmd/internal/config"
	"recmd/internal/crypto"
	"recmd/internal/replay"
	"recmd/internal/wire"
)

// Server binds a TCP listener and accepts connections for its lifetime.
type Server struct {
	cfg     *config.Config
	codec   *wire.Codec
	history *replay.History
	runner  *command.Runner
	logger  *log.Logger
}

// New builds a Server from cfg. ReplayHistory and Config are the state
// shared, by reference, across every connection worker the Server spawns.
func New(cfg *config.Config, logger *log.Logger) (*Server, error) {
	cipher, err := crypto.NewCipher(cfg.Key[:])
	if err != nil {
		return nil, fmt.Errorf("server: %w", err)
	}

	return &Server{
		cfg:     cfg,
		codec:   wire.NewCodec(cipher),
		history: replay.New(cfg.HistoryDepth),
		runner:  command.NewRunner(),
		logger:  logger,
	}, nil
}

// ListenAndServe binds addr (e.g. ":3666") and runs the accept loop until
// the listener fails or is closed. Each accepted connection is handled by
// an independent goroutine tracked in an errgroup; the accept loop itself
// never blocks on a worker's completion.
func (s *Server) ListenAndServe(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("server: listen: %w", err)
	}
	defer ln.Close()

	s.logger.Printf("listening on %s", ln.Addr())

	var g errgroup.Group
	for {
		conn, err := ln.Accept()
		if err != nil {
			g.Wait()
			return fmt.Errorf("server: accept: %w", err)
		}

		g.Go(func() error {
			w := newWorker(conn, s.codec, s.history, s.runner, s.cfg, s.logger)
			w.run()
			return nil
		})
	}
}
