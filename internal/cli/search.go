package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sqlpilot-ai/vecmem/internal/config"
	"github.com/sqlpilot-ai/vecmem/internal/domain"
)

// SearchCmd creates the search command.
func SearchCmd() *cobra.Command {
	var (
		partition string
		topK      int
		table     string
		both      bool
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the memory partitions",
		Long:  "Embeds the query and runs a nearest-neighbor lookup against the vector store.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runSearch(cmd.Context(), args[0], partition, topK, table, both, outputJSON)
		},
	}

	cmd.Flags().StringVarP(&partition, "partition", "p", "semantic", "Memory partition to search (semantic, procedural, episodic)")
	cmd.Flags().IntVarP(&topK, "top-k", "k", 0, "Maximum number of results (0 uses the partition default)")
	cmd.Flags().StringVarP(&table, "table", "t", "", "Restrict results to one table")
	cmd.Flags().BoolVar(&both, "both", false, "Search semantic and procedural memory together")

	return cmd
}

func runSearch(ctx context.Context, query, partition string, topK int, table string, both, outputJSON bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	retriever, err := newRetriever(ctx, cfg)
	if err != nil {
		return err
	}

	if both {
		results := retriever.SearchBoth(ctx, query, cfg.SemanticTopK, cfg.ProceduralTopK)
		if outputJSON {
			payload, _ := json.MarshalIndent(results, "", "  ")
			fmt.Println(string(payload))
			return nil
		}

		fmt.Printf("Query: %s\n\n", query)
		fmt.Printf("Semantic results: %d\n", len(results.Semantic))
		printResults(results.Semantic)
		fmt.Printf("Procedural results: %d\n", len(results.Procedural))
		printResults(results.Procedural)
		return nil
	}

	p, err := domain.ParsePartition(partition)
	if err != nil {
		return err
	}
	if topK <= 0 {
		topK = cfg.TopKFor(p)
	}

	var results []domain.QueryResult
	if table != "" {
		results = retriever.SearchWithFilter(ctx, query, p, topK, table)
	} else {
		results = retriever.Search(ctx, query, p, topK)
	}

	if outputJSON {
		payload, _ := json.MarshalIndent(results, "", "  ")
		fmt.Println(string(payload))
		return nil
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Printf("Query: %s\n\n", query)
	fmt.Printf("%s results: %d\n", p, len(results))
	printResults(results)
	return nil
}

func printResults(results []domain.QueryResult) {
	for _, res := range results {
		fmt.Printf("  Key: %s, Distance: %.4f\n", res.Key, res.Distance)
		fmt.Printf("  Table: %s, Entity: %s\n\n", res.Metadata.TableName, res.Metadata.EntityType)
	}
}
