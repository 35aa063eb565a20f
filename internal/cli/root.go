// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package cli

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/MKhiriev/go-sync-engine/internal/adapter"
	"github.com/MKhiriev/go-sync-engine/internal/config"
	"github.com/MKhiriev/go-sync-engine/internal/logger"
	"github.com/MKhiriev/go-sync-engine/internal/store"
	"github.com/spf13/cobra"
)

// DefaultStateFile is used when no state file is configured.
const DefaultStateFile = "sync-state.json"

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	Format     string // "json" | "text"
	Verbose    bool
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// Env is what the commands work with once the configuration is loaded.
type Env struct {
	Adapter  adapter.SyncAdapter
	State    store.ClientStateFileStorage
	ClientID string
	Logger   *logger.Logger
}

// EnvFactory builds the command environment from the parsed global flags.
type EnvFactory func(opts *RootOptions) (*Env, error)

var errNoEnv = errors.New("command environment is not initialised")

type app struct {
	opts    *RootOptions
	factory EnvFactory
	env     *Env
}

// NewRootCommand creates the root command of the sync client.
func NewRootCommand(factory EnvFactory) *cobra.Command {
	a := &app{opts: &RootOptions{}, factory: factory}

	cmd := &cobra.Command{
		Use:   "sync-client",
		Short: "Offline-first sync client",
		Long: `Submit change batches, resolve conflicts and pull changes from a sync server.

The last authoritative server time is kept in a local state file and used as
the cursor of the next status pull.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, a.opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", a.opts.Format, ValidFormats)
			}

			env, err := a.factory(a.opts)
			if err != nil {
				return err
			}
			a.env = env
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&a.opts.ConfigPath, "config", "c", "", "path to a JSON or YAML config file")
	cmd.PersistentFlags().StringVar(&a.opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().BoolVarP(&a.opts.Verbose, "verbose", "v", false, "log debug output to stderr")

	cmd.AddCommand(newQueueCommand(a))
	cmd.AddCommand(newSyncCommand(a))
	cmd.AddCommand(newProcessCommand(a))
	cmd.AddCommand(newBatchCommand(a))
	cmd.AddCommand(newConflictsCommand(a))
	cmd.AddCommand(newResolveCommand(a))
	cmd.AddCommand(newStatusCommand(a))
	cmd.AddCommand(newInfoCommand(a))

	return cmd
}

// DefaultEnv loads the client configuration and connects to the server over
// HTTP.
func DefaultEnv(opts *RootOptions) (*Env, error) {
	cfg, err := config.GetClientConfig(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("error getting configs: %w", err)
	}

	level := "warn"
	if opts.Verbose {
		level = "debug"
	}
	log := logger.NewLoggerWithOptions("sync-client", logger.Options{
		Level:   level,
		File:    cfg.App.LogFile,
		Console: os.Stderr,
	})

	syncAdapter, err := adapter.NewHTTPSyncAdapter(cfg.Adapter, cfg.App.HashKey, log)
	if err != nil {
		return nil, err
	}

	stateFile := cfg.Adapter.StateFile
	if stateFile == "" {
		stateFile = DefaultStateFile
	}

	return &Env{
		Adapter:  syncAdapter,
		State:    store.NewClientStateFileStorage(stateFile),
		ClientID: cfg.Adapter.ClientID,
		Logger:   log,
	}, nil
}

func (a *app) environment() (*Env, error) {
	if a.env == nil {
		return nil, errNoEnv
	}
	return a.env, nil
}

func (a *app) output(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{Format: a.opts.Format, Writer: cmd.OutOrStdout()}
}
