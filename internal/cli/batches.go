// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/MKhiriev/go-sync-engine/internal/adapter"
	"github.com/MKhiriev/go-sync-engine/models"
	"github.com/spf13/cobra"
)

var errNoItems = errors.New("no items to submit")

func newQueueCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "queue [items-file|-]",
		Short: "Queue a batch without processing it",
		Long: `Queue a batch of changes. Items are read as a JSON array (or an object with an
"items" field) from the given file or from stdin.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := a.environment()
			if err != nil {
				return err
			}

			request, err := batchRequest(cmd, env, args)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			batch, err := env.Adapter.QueueSync(ctx, request)
			if err != nil {
				return fmt.Errorf("queue batch: %w", err)
			}
			rememberBatch(ctx, env, batch.ID)

			return a.output(cmd).Print(batch, func(w io.Writer) { printBatch(w, batch) })
		},
	}
}

func newSyncCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sync [items-file|-]",
		Short: "Submit a batch and wait for its result",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := a.environment()
			if err != nil {
				return err
			}

			request, err := batchRequest(cmd, env, args)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			result, err := env.Adapter.Sync(ctx, request)
			return a.printProcessResult(cmd, env, result, err)
		},
	}
}

func newProcessCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "process <batch-id>",
		Short: "Process a queued batch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := a.environment()
			if err != nil {
				return err
			}

			result, err := env.Adapter.ProcessBatch(cmd.Context(), args[0])
			return a.printProcessResult(cmd, env, result, err)
		},
	}
}

func newBatchCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "batch <batch-id>",
		Short: "Show a batch and its result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := a.environment()
			if err != nil {
				return err
			}

			batch, err := env.Adapter.GetBatch(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("get batch: %w", err)
			}

			return a.output(cmd).Print(batch, func(w io.Writer) { printBatch(w, batch) })
		},
	}
}

// printProcessResult prints the outcomes of a failed batch before reporting
// the failure.
func (a *app) printProcessResult(cmd *cobra.Command, env *Env, result models.ProcessResult, err error) error {
	if err != nil && !errors.Is(err, adapter.ErrBatchFailed) {
		return fmt.Errorf("process batch: %w", err)
	}

	rememberBatch(cmd.Context(), env, result.BatchID)

	if printErr := a.output(cmd).Print(result, func(w io.Writer) { printResult(w, result) }); printErr != nil {
		return printErr
	}
	return err
}

func batchRequest(cmd *cobra.Command, env *Env, args []string) (models.NewBatchRequest, error) {
	source := cmd.InOrStdin()
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return models.NewBatchRequest{}, fmt.Errorf("open items file: %w", err)
		}
		defer f.Close()
		source = f
	}

	items, err := readItems(source)
	if err != nil {
		return models.NewBatchRequest{}, err
	}

	return models.NewBatchRequest{
		ClientID:  env.ClientID,
		Timestamp: time.Now().UTC(),
		Items:     items,
	}, nil
}

// readItems accepts either a JSON array of items or an object with an
// "items" field.
func readItems(r io.Reader) ([]models.SyncItem, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read items: %w", err)
	}

	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, errNoItems
	}

	var items []models.SyncItem
	if raw[0] == '[' {
		err = json.Unmarshal(raw, &items)
	} else {
		var wrapped struct {
			Items []models.SyncItem `json:"items"`
		}
		err = json.Unmarshal(raw, &wrapped)
		items = wrapped.Items
	}
	if err != nil {
		return nil, fmt.Errorf("decode items: %w", err)
	}
	if len(items) == 0 {
		return nil, errNoItems
	}

	return items, nil
}

// rememberBatch records the last submitted batch. A state write failure
// does not fail the command.
func rememberBatch(ctx context.Context, env *Env, batchID string) {
	if batchID == "" {
		return
	}

	state, err := env.State.LoadClientState(ctx)
	if err == nil {
		state.DeviceID = env.ClientID
		state.LastBatchID = batchID
		err = env.State.SaveClientState(ctx, state)
	}
	if err != nil {
		env.Logger.Warn().Err(err).Str("func", "rememberBatch").Msg("failed to update state file")
	}
}
