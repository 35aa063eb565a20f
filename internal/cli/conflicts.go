// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/MKhiriev/go-sync-engine/models"
	"github.com/spf13/cobra"
)

func newConflictsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "conflicts",
		Short: "List open conflicts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := a.environment()
			if err != nil {
				return err
			}

			conflicts, err := env.Adapter.GetConflicts(cmd.Context())
			if err != nil {
				return fmt.Errorf("get conflicts: %w", err)
			}
			if conflicts == nil {
				conflicts = []models.Conflict{}
			}

			return a.output(cmd).Print(conflicts, func(w io.Writer) { printConflicts(w, conflicts) })
		},
	}
}

type resolveOptions struct {
	strategy    string
	dataFile    string
	deleted     bool
	maxAttempts int
}

func newResolveCommand(a *app) *cobra.Command {
	opts := &resolveOptions{}

	cmd := &cobra.Command{
		Use:   "resolve <conflict-id>",
		Short: "Resolve a conflict",
		Long: `Resolve a conflict with one of the strategies:

  server  keep the server state
  client  re-apply the device's change over the current server state
  manual  apply merged data read from --data, or a tombstone with --deleted`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := a.environment()
			if err != nil {
				return err
			}

			request := models.ResolveRequest{
				Resolution:  models.Resolution(opts.strategy),
				Deleted:     opts.deleted,
				MaxAttempts: opts.maxAttempts,
			}
			if !request.Resolution.IsValid() {
				return fmt.Errorf("invalid strategy %q: must be one of server, client, manual", opts.strategy)
			}

			if opts.dataFile != "" {
				raw, err := os.ReadFile(opts.dataFile)
				if err != nil {
					return fmt.Errorf("read data file: %w", err)
				}
				request.Data = models.Payload(raw)
			}

			if err = env.Adapter.ResolveConflict(cmd.Context(), args[0], request); err != nil {
				return fmt.Errorf("resolve conflict: %w", err)
			}

			done := map[string]string{"conflict_id": args[0], "resolution": opts.strategy}
			return a.output(cmd).Print(done, func(w io.Writer) {
				fmt.Fprintf(w, "conflict %s resolved (%s)\n", args[0], opts.strategy)
			})
		},
	}

	cmd.Flags().StringVarP(&opts.strategy, "strategy", "s", "", "resolution strategy (server|client|manual)")
	cmd.Flags().StringVar(&opts.dataFile, "data", "", "file with merged JSON data for a manual resolution")
	cmd.Flags().BoolVar(&opts.deleted, "deleted", false, "settle a manual resolution on a tombstone")
	cmd.Flags().IntVar(&opts.maxAttempts, "max-attempts", 0, "attempts when the record keeps changing underneath")
	_ = cmd.MarkFlagRequired("strategy")

	return cmd
}
