// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"testing"
	"time"

	"github.com/MKhiriev/go-sync-engine/internal/config"
	"github.com/MKhiriev/go-sync-engine/internal/logger"
	"github.com/MKhiriev/go-sync-engine/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAuthService() AuthService {
	return NewAuthService(config.App{TokenSignKey: "secret", TokenIssuer: "sync-engine"}, logger.Nop())
}

func TestAuthService_CreateAndParseToken(t *testing.T) {
	svc := newTestAuthService()
	ctx := context.Background()

	token, err := svc.CreateToken(ctx, 42, time.Hour)
	require.NoError(t, err)
	assert.NotEmpty(t, token.SignedString)
	assert.Equal(t, int64(42), token.UserID)

	parsed, err := svc.ParseToken(ctx, token.SignedString)
	require.NoError(t, err)
	assert.Equal(t, int64(42), parsed.UserID)
}

func TestAuthService_CreateToken_Invalid(t *testing.T) {
	svc := newTestAuthService()

	_, err := svc.CreateToken(context.Background(), 0, time.Hour)
	assert.ErrorIs(t, err, ErrTokenCreationFailed)

	_, err = svc.CreateToken(context.Background(), 1, 0)
	assert.ErrorIs(t, err, ErrTokenCreationFailed)
}

func TestAuthService_ParseToken_Rejects(t *testing.T) {
	svc := newTestAuthService()

	expired, err := utils.GenerateJWTToken("sync-engine", 1, -time.Minute, "secret")
	require.NoError(t, err)
	foreignIssuer, err := utils.GenerateJWTToken("someone-else", 1, time.Hour, "secret")
	require.NoError(t, err)
	foreignKey, err := utils.GenerateJWTToken("sync-engine", 1, time.Hour, "other-secret")
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{name: "expired", token: expired.SignedString, wantErr: ErrTokenIsExpired},
		{name: "wrong issuer", token: foreignIssuer.SignedString, wantErr: ErrTokenIsExpiredOrInvalid},
		{name: "wrong key", token: foreignKey.SignedString, wantErr: ErrTokenIsExpiredOrInvalid},
		{name: "garbage", token: "not-a-jwt", wantErr: ErrTokenIsExpiredOrInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ParseToken(context.Background(), tt.token)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
