package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/downyt/internal/formatter"
	"github.com/urfave/cli/v3"
)

// History lists downloads recorded by this client, newest first.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	if err := r.openStores(); err != nil {
		return err
	}

	entries, err := r.history.List(ctx, int(cmd.Int("limit")))
	if err != nil {
		return fmt.Errorf("failed to list history: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(entries, true)
	}

	if len(entries) == 0 {
		r.writePlain("Nenhum download registrado\n")
		return nil
	}
	r.writePlain("%s\n", formatter.HistoryTable(entries, formatter.ShouldColorize(r.output)))
	return nil
}
