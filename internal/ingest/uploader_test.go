package ingest

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqlpilot-ai/vecmem/internal/domain"
)

// fakePutter records batch sizes and fails on the configured calls.
type fakePutter struct {
	batchSizes []int
	failCalls  map[int]bool
}

func (f *fakePutter) PutVectors(ctx context.Context, bucket, index string, records []domain.VectorRecord) error {
	call := len(f.batchSizes) + 1
	f.batchSizes = append(f.batchSizes, len(records))
	if f.failCalls[call] {
		return errors.New("batch write failed")
	}
	return nil
}

func makeRecords(n int) []domain.VectorRecord {
	records := make([]domain.VectorRecord, n)
	for i := range records {
		records[i] = domain.VectorRecord{Key: fmt.Sprintf("chunk-%d", i), Embedding: []float32{0.1}}
	}
	return records
}

func TestBatchUploader_Empty(t *testing.T) {
	putter := &fakePutter{}
	uploader := NewBatchUploader(putter)

	uploaded := uploader.Upload(context.Background(), nil, "bucket", "index")

	assert.Zero(t, uploaded)
	assert.Empty(t, putter.batchSizes)
}

func TestBatchUploader_BatchSplitting(t *testing.T) {
	tests := []struct {
		name      string
		count     int
		wantSizes []int
		wantCalls int
	}{
		{name: "under one batch", count: 42, wantSizes: []int{42}, wantCalls: 1},
		{name: "exactly one batch", count: 100, wantSizes: []int{100}, wantCalls: 1},
		{name: "exact multiple", count: 200, wantSizes: []int{100, 100}, wantCalls: 2},
		{name: "remainder batch", count: 250, wantSizes: []int{100, 100, 50}, wantCalls: 3},
		{name: "one over", count: 101, wantSizes: []int{100, 1}, wantCalls: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			putter := &fakePutter{}
			uploader := NewBatchUploader(putter)

			uploaded := uploader.Upload(context.Background(), makeRecords(tt.count), "bucket", "index")

			assert.Equal(t, tt.count, uploaded)
			require.Len(t, putter.batchSizes, tt.wantCalls)
			assert.Equal(t, tt.wantSizes, putter.batchSizes)
		})
	}
}

func TestBatchUploader_PartialFailureContinues(t *testing.T) {
	// 2nd of 3 batches fails; the 3rd is still attempted and the count
	// reflects batches 1 and 3 only.
	putter := &fakePutter{failCalls: map[int]bool{2: true}}
	uploader := NewBatchUploader(putter)

	uploaded := uploader.Upload(context.Background(), makeRecords(250), "bucket", "index")

	assert.Equal(t, 150, uploaded)
	assert.Equal(t, []int{100, 100, 50}, putter.batchSizes)
}

func TestBatchUploader_AllBatchesFail(t *testing.T) {
	putter := &fakePutter{failCalls: map[int]bool{1: true, 2: true}}
	uploader := NewBatchUploader(putter)

	uploaded := uploader.Upload(context.Background(), makeRecords(150), "bucket", "index")

	assert.Zero(t, uploaded)
	assert.Equal(t, []int{100, 50}, putter.batchSizes)
}
