package ingest

import (
	"context"
	"log"

	"github.com/sqlpilot-ai/vecmem/internal/domain"
	"github.com/sqlpilot-ai/vecmem/internal/vectorstore"
)

// VectorPutter is the store-side interface the uploader needs.
type VectorPutter interface {
	PutVectors(ctx context.Context, bucket, index string, records []domain.VectorRecord) error
}

// BatchUploader splits vector records into fixed-size batches and
// writes them sequentially. A failed batch is logged and skipped; the
// remaining batches are still attempted. There is no retry and no
// rollback — completeness comes from re-running ingestion, which is
// idempotent by upsert-on-key.
type BatchUploader struct {
	store     VectorPutter
	batchSize int
}

// NewBatchUploader creates a BatchUploader with the store's batch limit.
func NewBatchUploader(store VectorPutter) *BatchUploader {
	return &BatchUploader{store: store, batchSize: vectorstore.MaxBatchSize}
}

// Upload writes all records to the given bucket/index and returns the
// number actually uploaded, which may be less than len(records) when
// batches fail.
func (u *BatchUploader) Upload(ctx context.Context, records []domain.VectorRecord, bucket, index string) int {
	if len(records) == 0 {
		return 0
	}

	totalUploaded := 0

	for i := 0; i < len(records); i += u.batchSize {
		end := i + u.batchSize
		if end > len(records) {
			end = len(records)
		}
		batch := records[i:end]

		if err := u.store.PutVectors(ctx, bucket, index, batch); err != nil {
			log.Printf("failed to upload batch %d to %s/%s: %v", i/u.batchSize+1, bucket, index, err)
			continue
		}

		totalUploaded += len(batch)
		log.Printf("uploaded batch %d: %d vectors to %s/%s", i/u.batchSize+1, len(batch), bucket, index)
	}

	log.Printf("total uploaded to %s/%s: %d vectors", bucket, index, totalUploaded)
	return totalUploaded
}
