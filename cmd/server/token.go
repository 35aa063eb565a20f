// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package main

import (
	"fmt"
	"time"

	"github.com/MKhiriev/go-sync-engine/internal/config"
	"github.com/MKhiriev/go-sync-engine/internal/logger"
	"github.com/MKhiriev/go-sync-engine/internal/service"
	"github.com/spf13/cobra"
)

const defaultTokenTTL = 24 * time.Hour

// newTokenCommand issues a bearer token signed with the server key. It is
// operator tooling for development setups; production tokens come from the
// identity provider sharing the same key and issuer.
func newTokenCommand() *cobra.Command {
	var (
		userID     int64
		ttl        time.Duration
		configPath string
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for a user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var configArgs []string
			if configPath != "" {
				configArgs = []string{"-c", configPath}
			}

			cfg, err := config.GetStructuredConfig(configArgs)
			if err != nil {
				return fmt.Errorf("error getting configs: %w", err)
			}

			auth := service.NewAuthService(cfg.App, logger.Nop())
			token, err := auth.CreateToken(cmd.Context(), userID, ttl)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), token.SignedString)
			return err
		},
	}

	cmd.Flags().Int64Var(&userID, "user-id", 0, "owner of the token")
	cmd.Flags().DurationVar(&ttl, "ttl", defaultTokenTTL, "token lifetime")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "JSON or YAML config file path")
	_ = cmd.MarkFlagRequired("user-id")

	return cmd
}
