// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package grpc

import (
	"context"
	"strings"
	"time"

	"github.com/MKhiriev/go-sync-engine/internal/logger"
	"github.com/MKhiriev/go-sync-engine/internal/utils"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

const (
	traceIDKey       = "x-trace-id"
	authorizationKey = "authorization"

	maxTraceIDLength = 128
)

// withTraceID attaches a call-scoped logger carrying trace_id. The id is
// taken from the x-trace-id metadata when present and echoed back as a
// header.
func (h *Handler) withTraceID(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	traceID := firstMetadataValue(ctx, traceIDKey)
	if traceID == "" || len(traceID) > maxTraceIDLength {
		traceID = uuid.NewString()
	}

	l := h.logger.GetChildLogger()
	l.UpdateContext(func(c zerolog.Context) zerolog.Context {
		return c.Str("trace_id", traceID)
	})

	if err := grpc.SetHeader(ctx, metadata.Pairs(traceIDKey, traceID)); err != nil {
		l.Warn().Err(err).Str("func", "*Handler.withTraceID").Msg("failed to set trace id header")
	}

	return handler(l.WithContext(ctx), req)
}

func (h *Handler) withLogging(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	log := logger.FromContext(ctx)
	start := time.Now()

	resp, err := handler(ctx, req)

	code := status.Code(err)
	event := log.Info()
	if code == codes.Internal || code == codes.Unavailable || code == codes.Unknown {
		event = log.Error().Err(err)
	}
	event.
		Str("method", info.FullMethod).
		Str("code", code.String()).
		Dur("duration", time.Since(start)).
		Send()

	return resp, err
}

// auth verifies the bearer token in the authorization metadata and stores
// the user id in the context. Services registered next to the sync service,
// such as health checks, are not authenticated.
func (h *Handler) auth(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if !strings.HasPrefix(info.FullMethod, "/"+ServiceName+"/") {
		return handler(ctx, req)
	}

	log := logger.FromContext(ctx)

	if _, ok := metadata.FromIncomingContext(ctx); !ok {
		return nil, ErrMissingMetadata
	}

	authorization := firstMetadataValue(ctx, authorizationKey)
	if authorization == "" {
		return nil, ErrEmptyAuthorization
	}

	tokenString, err := utils.ParseBearerToken(authorization)
	if err != nil {
		log.Err(err).Str("func", "*Handler.auth").Send()
		return nil, ErrInvalidAuthorization
	}

	token, err := h.services.AuthService.ParseToken(ctx, tokenString)
	if err != nil {
		log.Err(err).Str("func", "*Handler.auth").Msg("error occurred during parsing token")
		return nil, err
	}

	l := log.GetChildLogger()
	l.UpdateContext(func(c zerolog.Context) zerolog.Context {
		return c.Int64("user_id", token.UserID)
	})

	return handler(l.WithContext(utils.WithUserID(ctx, token.UserID)), req)
}

func firstMetadataValue(ctx context.Context, key string) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	values := md.Get(key)
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
