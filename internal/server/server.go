// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package server

import (
	"context"
	"errors"
	"sync"

	"github.com/MKhiriev/go-sync-engine/internal/config"
	"github.com/MKhiriev/go-sync-engine/internal/handler"
	"github.com/MKhiriev/go-sync-engine/internal/logger"
)

type server struct {
	httpServer *httpServer
	gRPCServer *grpcServer
	logger     *logger.Logger

	shutdownOnce sync.Once
}

// NewServer creates a transport server per handler present in handlers.
func NewServer(handlers *handler.Handlers, cfg config.Server, logger *logger.Logger) (Server, error) {
	logger.Info().Msg("creating new server...")
	servers := new(server)

	if cfg.HTTPAddress != "" && handlers.HTTP != nil {
		servers.httpServer = newHTTPServer(handlers.HTTP.Init(), cfg, logger)
	}
	if cfg.GRPCAddress != "" && handlers.GRPC != nil {
		servers.gRPCServer = newGRPCServer(handlers.GRPC, cfg, logger)
	}

	if servers.httpServer == nil && servers.gRPCServer == nil {
		return nil, errNoServersAreCreated
	}

	servers.logger = logger

	return servers, nil
}

func (s *server) Run(ctx context.Context) error {
	if err := s.listen(); err != nil {
		s.Shutdown()
		return err
	}
	return s.serve(ctx)
}

func (s *server) Shutdown() {
	s.shutdownOnce.Do(func() {
		// finish HTTP server
		if s.httpServer != nil {
			s.httpServer.Shutdown()
		}

		// finish gRPC server
		if s.gRPCServer != nil {
			s.gRPCServer.Shutdown()
		}
	})
}

// listen binds every configured address, so that a bad address fails
// startup before anything is served.
func (s *server) listen() error {
	if s.httpServer != nil {
		if err := s.httpServer.listen(); err != nil {
			return err
		}
	}
	if s.gRPCServer != nil {
		if err := s.gRPCServer.listen(); err != nil {
			return err
		}
	}
	return nil
}

func (s *server) serve(ctx context.Context) error {
	errCh := make(chan error, 2)

	// launch all created servers
	if s.httpServer != nil {
		s.logger.Info().Str("address", s.httpServer.address()).Msg("Launching HTTP server")
		go func() { errCh <- s.httpServer.serve() }()
	}
	if s.gRPCServer != nil {
		s.logger.Info().Str("address", s.gRPCServer.address()).Msg("Launching GRPC server")
		go func() { errCh <- s.gRPCServer.serve() }()
	}

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errCh:
		s.logger.Err(runErr).Str("func", "*server.serve").Msg("transport stopped unexpectedly")
	}

	// finish started servers
	s.Shutdown()

	if runErr != nil {
		return runErr
	}
	s.logger.Info().Msg("server Shutdown gracefully")
	return nil
}

// isClosed reports whether err only signals a requested shutdown.
func isClosed(err error, closedErrs ...error) bool {
	if err == nil {
		return true
	}
	for _, closed := range closedErrs {
		if errors.Is(err, closed) {
			return true
		}
	}
	return false
}
