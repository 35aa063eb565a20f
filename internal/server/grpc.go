// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package server

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/MKhiriev/go-sync-engine/internal/config"
	myGRPC "github.com/MKhiriev/go-sync-engine/internal/handler/grpc"
	"github.com/MKhiriev/go-sync-engine/internal/logger"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

type grpcServer struct {
	handler *myGRPC.Handler

	server          *grpc.Server
	health          *health.Server
	gRPCNetListener net.Listener
	addr            string

	shutdownTimeout time.Duration

	logger *logger.Logger
}

func newGRPCServer(handler *myGRPC.Handler, cfg config.Server, logger *logger.Logger) *grpcServer {
	opts := handler.ServerOptions()
	if cfg.RequestTimeout > 0 {
		opts = append(opts, grpc.ChainUnaryInterceptor(withTimeout(cfg.RequestTimeout)))
	}

	server := grpc.NewServer(opts...)
	handler.Register(server)

	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(server, healthServer)
	healthServer.SetServingStatus(myGRPC.ServiceName, healthpb.HealthCheckResponse_SERVING)

	return &grpcServer{
		handler:         handler,
		server:          server,
		health:          healthServer,
		addr:            cfg.GRPCAddress,
		shutdownTimeout: cfg.ShutdownTimeout,
		logger:          logger,
	}
}

func (g *grpcServer) listen() error {
	listener, err := net.Listen("tcp", g.addr)
	if err != nil {
		return fmt.Errorf("%w: grpc %s: %w", errListening, g.addr, err)
	}
	g.gRPCNetListener = listener
	return nil
}

func (g *grpcServer) address() string {
	if g.gRPCNetListener != nil {
		return g.gRPCNetListener.Addr().String()
	}
	return g.addr
}

func (g *grpcServer) serve() error {
	if err := g.server.Serve(g.gRPCNetListener); !isClosed(err, grpc.ErrServerStopped) {
		return fmt.Errorf("gRPC server Serve: %w", err)
	}
	return nil
}

// Shutdown drains in-flight calls and falls back to a hard stop once the
// shutdown timeout expires.
func (g *grpcServer) Shutdown() {
	g.logger.Info().Msg("GRPC server Shutdown")
	g.health.Shutdown()

	// a listener that was never served is not owned by g.server
	if g.gRPCNetListener != nil {
		defer g.gRPCNetListener.Close()
	}

	if g.shutdownTimeout <= 0 {
		g.server.GracefulStop()
		return
	}

	stopped := make(chan struct{})
	go func() {
		g.server.GracefulStop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(g.shutdownTimeout):
		g.logger.Warn().Msg("GRPC graceful stop timed out")
		g.server.Stop()
	}
}

func withTimeout(timeout time.Duration) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, _ *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		return handler(ctx, req)
	}
}
