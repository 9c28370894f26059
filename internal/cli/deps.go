package cli

import (
	"context"
	"fmt"

	openaisdk "github.com/sashabaranov/go-openai"

	"github.com/sqlpilot-ai/vecmem/internal/config"
	"github.com/sqlpilot-ai/vecmem/internal/ingest"
	"github.com/sqlpilot-ai/vecmem/internal/openai"
	"github.com/sqlpilot-ai/vecmem/internal/retrieval"
	"github.com/sqlpilot-ai/vecmem/internal/vectorstore"
)

func newStoreClient(ctx context.Context, cfg *config.Config) (*vectorstore.Client, error) {
	client, err := vectorstore.NewClient(ctx, vectorstore.ClientConfig{
		Region:          cfg.AWSRegion,
		AccessKeyID:     cfg.AWSAccessKeyID,
		SecretAccessKey: cfg.AWSSecretAccessKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create vector store client: %w", err)
	}
	return client, nil
}

func newEmbeddingClient(cfg *config.Config) (*openai.Client, error) {
	if !cfg.HasOpenAI() {
		return nil, openai.ErrNoAPIKey
	}
	return openai.NewClientWithConfig(openai.Config{
		APIKey:              cfg.OpenAIAPIKey,
		EmbeddingModel:      openaisdk.EmbeddingModel(cfg.EmbeddingModel),
		EmbeddingDimensions: cfg.EmbeddingDimension,
	}), nil
}

func newPipeline(ctx context.Context, cfg *config.Config) (*ingest.Pipeline, error) {
	store, err := newStoreClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	embedder, err := newEmbeddingClient(cfg)
	if err != nil {
		return nil, err
	}

	return ingest.NewPipeline(
		ingest.NewLoader(cfg.DataPath),
		embedder,
		store,
		ingest.PipelineConfig{
			SemanticBucket:   cfg.SemanticBucket,
			ProceduralBucket: cfg.ProceduralBucket,
			EpisodicBucket:   cfg.EpisodicBucket,
			Dimension:        cfg.EmbeddingDimension,
		},
	), nil
}

func newRetriever(ctx context.Context, cfg *config.Config) (*retrieval.Retriever, error) {
	store, err := newStoreClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	embedder, err := newEmbeddingClient(cfg)
	if err != nil {
		return nil, err
	}

	return retrieval.NewRetriever(embedder, store, retrieval.Buckets{
		Semantic:   cfg.SemanticBucket,
		Procedural: cfg.ProceduralBucket,
		Episodic:   cfg.EpisodicBucket,
	}), nil
}
