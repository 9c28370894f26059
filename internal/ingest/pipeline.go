package ingest

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/sqlpilot-ai/vecmem/internal/domain"
	"github.com/sqlpilot-ai/vecmem/internal/vectorstore"
)

// Embedder generates a fixed-dimension embedding for a text.
type Embedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// VectorStore is the store-side interface the pipeline needs.
type VectorStore interface {
	VectorPutter
	EnsureBucket(ctx context.Context, name string) (vectorstore.EnsureOutcome, error)
	EnsureIndex(ctx context.Context, bucket, index string, dimension int) (vectorstore.EnsureOutcome, error)
}

// PipelineConfig holds the target buckets and embedding dimension.
type PipelineConfig struct {
	SemanticBucket   string
	ProceduralBucket string
	EpisodicBucket   string
	Dimension        int
}

// Result summarizes one ingestion run. Counts are vectors embedded per
// partition; Uploaded counts can be lower when batches fail.
type Result struct {
	RunID              string `json:"run_id"`
	Files              int    `json:"files"`
	SemanticCount      int    `json:"semantic_count"`
	ProceduralCount    int    `json:"procedural_count"`
	SemanticUploaded   int    `json:"semantic_uploaded"`
	ProceduralUploaded int    `json:"procedural_uploaded"`
	SemanticBucket     string `json:"semantic_bucket"`
	ProceduralBucket   string `json:"procedural_bucket"`
}

// Pipeline composes loading, classification, embedding, and batched
// upload into one sequential ingestion run.
type Pipeline struct {
	loader   *Loader
	embedder Embedder
	store    VectorStore
	uploader *BatchUploader
	cfg      PipelineConfig
}

// NewPipeline creates an ingestion Pipeline.
func NewPipeline(loader *Loader, embedder Embedder, store VectorStore, cfg PipelineConfig) *Pipeline {
	return &Pipeline{
		loader:   loader,
		embedder: embedder,
		store:    store,
		uploader: NewBatchUploader(store),
		cfg:      cfg,
	}
}

// IngestAll runs the full pipeline: ensure buckets and indexes, load
// every document, classify and embed every chunk, then upload per
// partition in batches.
//
// Provisioning failures are logged and skipped on the assumption the
// resource already exists; misprovisioning surfaces later as upload or
// query failures. Embedding failures abort the run — an unembeddable
// chunk is a data problem, not a transient one.
func (p *Pipeline) IngestAll(ctx context.Context) (*Result, error) {
	runID := uuid.NewString()
	log.Printf("starting ingestion run %s", runID)

	p.ensureResources(ctx)

	files, err := p.loader.ListFiles()
	if err != nil {
		return nil, err
	}
	log.Printf("found %d knowledge files", len(files))

	var semanticVectors, proceduralVectors []domain.VectorRecord

	for _, file := range files {
		doc, err := p.loader.LoadDocument(file)
		if err != nil {
			return nil, err
		}

		semCount, procCount := 0, 0
		for _, chunk := range doc.Chunks {
			classified := Classify(chunk, doc.TableName())
			if classified.Defaulted {
				log.Printf("chunk in %s is missing chunk_id or entity_type, keyed as %q", file, classified.Key)
			}

			embedding, err := p.embedder.GenerateEmbedding(ctx, classified.Text)
			if err != nil {
				return nil, fmt.Errorf("failed to embed chunk %s: %w", classified.Key, err)
			}

			record := domain.VectorRecord{
				Key:       classified.Key,
				Embedding: embedding,
				Metadata:  classified.Metadata,
			}

			if classified.Partition == domain.PartitionProcedural {
				proceduralVectors = append(proceduralVectors, record)
				procCount++
			} else {
				semanticVectors = append(semanticVectors, record)
				semCount++
			}
		}

		log.Printf("%s: %d semantic, %d procedural", doc.TableName(), semCount, procCount)
	}

	log.Printf("uploading %d semantic vectors", len(semanticVectors))
	semanticUploaded := p.uploader.Upload(ctx, semanticVectors, p.cfg.SemanticBucket, domain.PartitionSemantic.IndexName())

	log.Printf("uploading %d procedural vectors", len(proceduralVectors))
	proceduralUploaded := p.uploader.Upload(ctx, proceduralVectors, p.cfg.ProceduralBucket, domain.PartitionProcedural.IndexName())

	log.Printf("ingestion run %s complete", runID)

	return &Result{
		RunID:              runID,
		Files:              len(files),
		SemanticCount:      len(semanticVectors),
		ProceduralCount:    len(proceduralVectors),
		SemanticUploaded:   semanticUploaded,
		ProceduralUploaded: proceduralUploaded,
		SemanticBucket:     p.cfg.SemanticBucket,
		ProceduralBucket:   p.cfg.ProceduralBucket,
	}, nil
}

// ensureResources provisions all three bucket/index pairs, episodic
// included even though the pipeline never writes to it.
func (p *Pipeline) ensureResources(ctx context.Context) {
	targets := []struct {
		bucket    string
		partition domain.MemoryPartition
	}{
		{p.cfg.SemanticBucket, domain.PartitionSemantic},
		{p.cfg.ProceduralBucket, domain.PartitionProcedural},
		{p.cfg.EpisodicBucket, domain.PartitionEpisodic},
	}

	for _, t := range targets {
		outcome, err := p.store.EnsureBucket(ctx, t.bucket)
		if err != nil {
			log.Printf("failed to ensure vector bucket %s (continuing): %v", t.bucket, err)
		} else if outcome == vectorstore.Created {
			log.Printf("created vector bucket %s", t.bucket)
		}

		index := t.partition.IndexName()
		outcome, err = p.store.EnsureIndex(ctx, t.bucket, index, p.cfg.Dimension)
		if err != nil {
			log.Printf("failed to ensure index %s/%s (continuing): %v", t.bucket, index, err)
		} else if outcome == vectorstore.Created {
			log.Printf("created index %s/%s", t.bucket, index)
		}
	}
}
