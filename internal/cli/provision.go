package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sqlpilot-ai/vecmem/internal/config"
	"github.com/sqlpilot-ai/vecmem/internal/domain"
	"github.com/sqlpilot-ai/vecmem/internal/vectorstore"
)

// ProvisionCmd creates the provision command. Unlike the ingestion
// pipeline's optimistic ensure, any provisioning failure here is fatal.
func ProvisionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "provision",
		Short: "Create the vector buckets and indexes",
		Long: `Creates the semantic, procedural, and episodic vector buckets and
their cosine indexes if absent. Safe to repeat.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProvision(cmd.Context())
		},
	}
}

func runProvision(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	store, err := newStoreClient(ctx, cfg)
	if err != nil {
		return err
	}

	partitions := []domain.MemoryPartition{
		domain.PartitionSemantic,
		domain.PartitionProcedural,
		domain.PartitionEpisodic,
	}

	for _, p := range partitions {
		bucket := cfg.BucketFor(p)

		outcome, err := store.EnsureBucket(ctx, bucket)
		if err != nil {
			return fmt.Errorf("failed to provision bucket %s: %w", bucket, err)
		}
		fmt.Printf("bucket %s: %s\n", bucket, outcomeString(outcome))

		index := p.IndexName()
		outcome, err = store.EnsureIndex(ctx, bucket, index, cfg.EmbeddingDimension)
		if err != nil {
			return fmt.Errorf("failed to provision index %s/%s: %w", bucket, index, err)
		}
		fmt.Printf("index %s/%s: %s (dimension %d, cosine)\n", bucket, index, outcomeString(outcome), cfg.EmbeddingDimension)
	}

	return nil
}

func outcomeString(o vectorstore.EnsureOutcome) string {
	if o == vectorstore.Created {
		return "created"
	}
	return "exists"
}
