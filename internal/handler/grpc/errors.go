// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package grpc

import (
	"context"
	"errors"

	"github.com/MKhiriev/go-sync-engine/internal/service"
	"github.com/MKhiriev/go-sync-engine/internal/store"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var (
	ErrMissingMetadata      = errors.New("missing metadata")
	ErrEmptyAuthorization   = errors.New("authorization metadata is empty")
	ErrInvalidAuthorization = errors.New("invalid authorization metadata")
	ErrNoUserID             = errors.New("no user id in context")
)

// errorCodes is checked in order; the first match wins.
var errorCodes = []struct {
	err  error
	code codes.Code
}{
	{service.ErrValidation, codes.InvalidArgument},
	{ErrNoUserID, codes.InvalidArgument},

	{ErrMissingMetadata, codes.Unauthenticated},
	{ErrEmptyAuthorization, codes.Unauthenticated},
	{ErrInvalidAuthorization, codes.Unauthenticated},
	{service.ErrTokenIsExpired, codes.Unauthenticated},
	{service.ErrTokenIsExpiredOrInvalid, codes.Unauthenticated},

	{store.ErrBatchNotFound, codes.NotFound},
	{store.ErrConflictNotFound, codes.NotFound},

	{store.ErrVersionConflict, codes.Aborted},

	{service.ErrBatchInProgress, codes.FailedPrecondition},
	{service.ErrBatchAlreadyFailed, codes.FailedPrecondition},
	{service.ErrConflictAlreadyResolved, codes.FailedPrecondition},

	{service.ErrStorage, codes.Unavailable},

	{context.DeadlineExceeded, codes.DeadlineExceeded},
	{context.Canceled, codes.Canceled},
}

func codeFromError(err error) codes.Code {
	for _, candidate := range errorCodes {
		if errors.Is(err, candidate.err) {
			return candidate.code
		}
	}
	return codes.Internal
}

// toStatus converts a service error into a gRPC status error. Messages of
// server-side failures are not leaked to the caller.
func toStatus(err error) error {
	if _, ok := status.FromError(err); ok {
		return err
	}

	code := codeFromError(err)
	switch code {
	case codes.Internal, codes.Unavailable:
		return status.Error(code, code.String())
	default:
		return status.Error(code, err.Error())
	}
}

// withStatusErrors maps errors returned by the handlers below it.
func withStatusErrors(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	resp, err := handler(ctx, req)
	if err != nil {
		return nil, toStatus(err)
	}
	return resp, nil
}
