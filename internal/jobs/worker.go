package jobs

import (
	"context"
	"log"
	"time"
)

// IngestRunner re-runs an ingestion pass. Safe to invoke repeatedly
// because uploads are upserts keyed on chunk_id.
type IngestRunner interface {
	Run(ctx context.Context) error
}

// Worker periodically re-ingests the knowledge base so edits to the
// export files reach the vector store without manual runs.
type Worker struct {
	runner       IngestRunner
	pollInterval time.Duration
	stopChan     chan struct{}
	doneChan     chan struct{}
}

// NewWorker creates a new Worker instance
func NewWorker(runner IngestRunner, pollInterval time.Duration) *Worker {
	return &Worker{
		runner:       runner,
		pollInterval: pollInterval,
		stopChan:     make(chan struct{}),
		doneChan:     make(chan struct{}),
	}
}

// Start begins the worker's polling loop
func (w *Worker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()
	defer close(w.doneChan)

	log.Printf("ingestion worker started with poll interval: %v", w.pollInterval)

	for {
		select {
		case <-ctx.Done():
			log.Println("ingestion worker stopped: context cancelled")
			return
		case <-w.stopChan:
			log.Println("ingestion worker stopped: stop signal received")
			return
		case <-ticker.C:
			if err := w.runner.Run(ctx); err != nil {
				log.Printf("error running ingestion: %v", err)
			}
		}
	}
}

// Stop gracefully stops the worker
func (w *Worker) Stop() {
	close(w.stopChan)
	<-w.doneChan
	log.Println("ingestion worker shutdown complete")
}
