package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sqlpilot-ai/vecmem/internal/cli"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "vecmem",
		Short: "vecmem - NL2SQL knowledge base memory over S3 Vectors",
		Long: `vecmem ingests chunked knowledge-base exports into AWS S3 Vectors
indexes (semantic and procedural memory) and serves nearest-neighbor
retrieval over them.

Environment variables use the VECMEM_ prefix (VECMEM_DATA_PATH,
VECMEM_SEMANTIC_BUCKET, ...); OPENAI_API_KEY and AWS credentials are
read with their standard names.`,
		Version: version,
	}

	rootCmd.PersistentFlags().Bool("output", false, "Output as JSON")
	cli.AddHelpJSONFlag(rootCmd)

	rootCmd.AddCommand(cli.ProvisionCmd())
	rootCmd.AddCommand(cli.IngestCmd())
	rootCmd.AddCommand(cli.SearchCmd())
	rootCmd.AddCommand(cli.ServeCmd())
	rootCmd.AddCommand(cli.WatchCmd())

	cli.CheckHelpJSON(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
