// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/MKhiriev/go-sync-engine/internal/cli"
	"github.com/MKhiriev/go-sync-engine/models"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	cmd := cli.NewRootCommand(cli.DefaultEnv)
	cmd.Version = buildInfo()

	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

func buildInfo() string {
	build := models.NewAppBuildInfo(buildVersion, buildDate, buildCommit)
	return fmt.Sprintf("%s (date %s, commit %s)", build.BuildVersion, build.BuildDate, build.BuildCommit)
}
