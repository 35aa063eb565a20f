// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/MKhiriev/go-sync-engine/internal/app"
	"github.com/MKhiriev/go-sync-engine/internal/config"
	"github.com/MKhiriev/go-sync-engine/internal/logger"
	"github.com/MKhiriev/go-sync-engine/models"
	"github.com/spf13/cobra"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

// newRootCommand serves the sync API. Flags of the root command are parsed
// by the config package so that env, file and flag sources merge in one
// place.
func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:                "sync-server [flags]",
		Short:              "Offline-first sync and conflict resolution server",
		Args:               cobra.ArbitraryArgs,
		DisableFlagParsing: true,
		SilenceUsage:       true,
		SilenceErrors:      true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), args)
		},
	}

	cmd.AddCommand(newTokenCommand())
	return cmd
}

func serve(ctx context.Context, args []string) error {
	build := models.NewAppBuildInfo(buildVersion, buildDate, buildCommit)
	printBuildInfo(build)

	cfg, err := config.GetStructuredConfig(args)
	if err != nil {
		return fmt.Errorf("error getting configs: %w", err)
	}
	if cfg.App.Version == "" {
		cfg.App.Version = build.BuildVersion
	}

	log := logger.NewLoggerWithOptions("sync-server", logger.Options{
		Level: cfg.App.LogLevel,
		File:  cfg.App.LogFile,
	})
	log.Debug().Str("driver", cfg.Storage.DB.Driver).
		Str("http_address", cfg.Server.HTTPAddress).
		Str("grpc_address", cfg.Server.GRPCAddress).
		Msg("received configs")

	application, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Err(err).Msg("error creating application")
		return err
	}
	defer func() {
		if closeErr := application.Close(); closeErr != nil {
			log.Err(closeErr).Msg("error closing database")
		}
	}()

	return application.Run(ctx)
}

func printBuildInfo(build models.AppBuildInfo) {
	fmt.Printf("Build version: %s\n", build.BuildVersion)
	fmt.Printf("Build date: %s\n", build.BuildDate)
	fmt.Printf("Build commit: %s\n", build.BuildCommit)
}
