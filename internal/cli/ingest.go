package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sqlpilot-ai/vecmem/internal/config"
)

// IngestCmd creates the ingest command.
func IngestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Ingest the knowledge base into the vector store",
		Long: `Reads semantic_*.json files from the data directory, embeds every
chunk, and upserts the vectors into the semantic and procedural memory
indexes. Re-running on an unchanged corpus is idempotent.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runIngest(cmd.Context(), outputJSON)
		},
	}

	return cmd
}

func runIngest(ctx context.Context, outputJSON bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	pipeline, err := newPipeline(ctx, cfg)
	if err != nil {
		return err
	}

	result, err := pipeline.IngestAll(ctx)
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	if outputJSON {
		payload, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(payload))
		return nil
	}

	fmt.Println("Results:")
	fmt.Printf("  Files processed:   %d\n", result.Files)
	fmt.Printf("  Semantic vectors:  %d embedded, %d uploaded\n", result.SemanticCount, result.SemanticUploaded)
	fmt.Printf("  Procedural vectors: %d embedded, %d uploaded\n", result.ProceduralCount, result.ProceduralUploaded)
	fmt.Printf("  Semantic bucket:   %s\n", result.SemanticBucket)
	fmt.Printf("  Procedural bucket: %s\n", result.ProceduralBucket)

	return nil
}
