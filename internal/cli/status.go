// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func newStatusCommand(a *app) *cobra.Command {
	var full bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Pull changes since the last status call",
		Long: `Pull every record changed since the stored cursor. The server time of the
response becomes the new cursor; the device clock is never used.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := a.environment()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			state, err := env.State.LoadClientState(ctx)
			if err != nil {
				return fmt.Errorf("load state: %w", err)
			}

			since := state.ServerTime
			if full || state.DeviceID != env.ClientID {
				since = nil
			}

			status, err := env.Adapter.GetSyncStatus(ctx, env.ClientID, since)
			if err != nil {
				return fmt.Errorf("get sync status: %w", err)
			}

			serverTime := status.ServerTime
			state.DeviceID = env.ClientID
			state.ServerTime = &serverTime
			if err = env.State.SaveClientState(ctx, state); err != nil {
				return fmt.Errorf("save state: %w", err)
			}

			return a.output(cmd).Print(status, func(w io.Writer) { printStatus(w, status) })
		},
	}

	cmd.Flags().BoolVar(&full, "full", false, "ignore the stored cursor and pull everything")

	return cmd
}

func newInfoCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show server version and limits",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := a.environment()
			if err != nil {
				return err
			}

			info, err := env.Adapter.GetServerInfo(cmd.Context())
			if err != nil {
				return fmt.Errorf("get server info: %w", err)
			}

			return a.output(cmd).Print(info, func(w io.Writer) { printInfo(w, info) })
		},
	}
}
