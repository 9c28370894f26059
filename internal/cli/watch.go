package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sqlpilot-ai/vecmem/internal/config"
	"github.com/sqlpilot-ai/vecmem/internal/ingest"
	"github.com/sqlpilot-ai/vecmem/internal/jobs"
)

// WatchCmd creates the watch command.
func WatchCmd() *cobra.Command {
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-ingest the knowledge base on an interval",
		Long: `Runs the ingestion pipeline periodically so changes to the export
files reach the vector store. Uploads are upserts keyed on chunk_id, so
unchanged corpora produce no duplicates.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd.Context(), interval)
		},
	}

	cmd.Flags().DurationVarP(&interval, "interval", "i", 10*time.Minute, "Time between ingestion runs")

	return cmd
}

// pipelineRunner adapts the ingestion pipeline to the worker interface.
type pipelineRunner struct {
	pipeline *ingest.Pipeline
}

func (r *pipelineRunner) Run(ctx context.Context) error {
	_, err := r.pipeline.IngestAll(ctx)
	return err
}

func runWatch(ctx context.Context, interval time.Duration) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	pipeline, err := newPipeline(ctx, cfg)
	if err != nil {
		return err
	}

	// First pass immediately; the worker handles the rest.
	if _, err := pipeline.IngestAll(ctx); err != nil {
		return fmt.Errorf("initial ingestion failed: %w", err)
	}

	worker := jobs.NewWorker(&pipelineRunner{pipeline: pipeline}, interval)

	workerCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	go worker.Start(workerCtx)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	worker.Stop()
	return nil
}
