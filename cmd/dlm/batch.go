package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/Lepecin/dlm-dissertation/base"
	"github.com/Lepecin/dlm-dissertation/config"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var batchFlags struct {
	workers int
	style   string
}

func newBatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch [config...]",
		Short: "Fit several models concurrently and compare their log-likelihoods",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runBatch,
	}
	cmd.Flags().IntVar(&batchFlags.workers, "workers", 4, "Models fitted at once")
	cmd.Flags().StringVar(&batchFlags.style, "style", "default", "Table style: default, light, round, bold, double")
	return cmd
}

func runBatch(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	batch := base.NewBatch(logger)
	for _, path := range args {
		cfg, err := config.Load(path)
		if err != nil {
			return err
		}
		prime, err := cfg.Build()
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		name := cfg.Name
		if name == "" {
			name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		}
		if err := batch.AddItem(name, prime, cfg.Options()...); err != nil {
			return err
		}
	}
	if err := batch.Fit(ctx, batchFlags.workers); err != nil {
		return err
	}

	w := newTable(cmd.OutOrStdout(), batchFlags.style)
	w.AppendHeader(table.Row{"MODEL", "OBSERVED", "LOG-LIKELIHOOD"})
	for _, item := range batch.Items() {
		w.AppendRow(table.Row{item.Name(), item.Model().Prime().Observed, cell(item.LogLikelihood())})
	}
	w.AppendFooter(table.Row{"TOTAL", "", cell(batch.LogLikelihood())})
	w.Render()
	return nil
}
