// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/MKhiriev/go-sync-engine/models"
)

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format string
	Writer io.Writer
}

// Print writes v as indented JSON in json mode and calls text otherwise.
func (f *OutputFormatter) Print(v any, text func(w io.Writer)) error {
	if f.Format == "json" {
		enc := json.NewEncoder(f.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}

	text(f.Writer)
	return nil
}

func printBatch(w io.Writer, batch models.SyncBatch) {
	fmt.Fprintf(w, "batch %s %s (%d items)\n", batch.ID, batch.Status, len(batch.Items))
	if batch.Error != "" {
		fmt.Fprintf(w, "  error: %s\n", batch.Error)
	}
	if batch.Result != nil {
		printResultSummary(w, *batch.Result)
	}
}

func printResult(w io.Writer, result models.ProcessResult) {
	fmt.Fprintf(w, "batch %s %s\n", result.BatchID, result.Status)
	printResultSummary(w, result)
}

func printResultSummary(w io.Writer, result models.ProcessResult) {
	fmt.Fprintf(w, "  applied=%d conflicts=%d errors=%d\n", result.Applied, result.Conflicts, result.Errors)
	for _, outcome := range result.Outcomes {
		switch outcome.Status {
		case models.OutcomeApplied:
			fmt.Fprintf(w, "  [%d] %s applied v%d\n", outcome.Index, outcome.RecordID, outcome.Version)
		case models.OutcomeConflict:
			fmt.Fprintf(w, "  [%d] %s conflict %s\n", outcome.Index, outcome.RecordID, outcome.ConflictID)
		default:
			fmt.Fprintf(w, "  [%d] %s error: %s\n", outcome.Index, outcome.RecordID, outcome.Error)
		}
	}
}

func printConflicts(w io.Writer, conflicts []models.Conflict) {
	if len(conflicts) == 0 {
		fmt.Fprintln(w, "no open conflicts")
		return
	}

	for _, c := range conflicts {
		fmt.Fprintf(w, "%s record=%s client=v%d server=v%d device=%s", c.ID, c.RecordID, c.ClientVersion, c.ServerVersion, c.ClientID)
		if c.SameContent {
			fmt.Fprint(w, " same-content")
		}
		fmt.Fprintln(w)
	}
}

func printStatus(w io.Writer, status models.SyncStatus) {
	fmt.Fprintf(w, "server time %s\n", status.ServerTime.UTC().Format(time.RFC3339Nano))
	fmt.Fprintf(w, "changed=%d open_conflicts=%d pending_batches=%d\n", len(status.Records), status.OpenConflicts, status.PendingBatches)
	for _, r := range status.Records {
		state := "live"
		if r.Deleted {
			state = "deleted"
		}
		fmt.Fprintf(w, "  %s v%d %s\n", r.ID, r.Version, state)
	}
}

func printInfo(w io.Writer, info models.AppInfo) {
	fmt.Fprintf(w, "version %s\n", info.Version)
	fmt.Fprintf(w, "storage %s\n", info.StorageDriver)
	fmt.Fprintf(w, "max batch items %d, max payload bytes %d\n", info.MaxBatchItems, info.MaxPayloadBytes)
}
