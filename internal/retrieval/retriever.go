package retrieval

import (
	"context"
	"log"

	"github.com/sqlpilot-ai/vecmem/internal/domain"
)

// Embedder generates a fixed-dimension embedding for a text.
type Embedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// VectorQuerier is the store-side interface the retriever needs.
type VectorQuerier interface {
	Query(ctx context.Context, bucket, index string, queryVector []float32, topK int, filter map[string]string) ([]domain.QueryResult, error)
}

// Buckets maps memory partitions to their vector buckets.
type Buckets struct {
	Semantic   string
	Procedural string
	Episodic   string
}

// For returns the bucket for a partition.
func (b Buckets) For(p domain.MemoryPartition) string {
	switch p {
	case domain.PartitionProcedural:
		return b.Procedural
	case domain.PartitionEpisodic:
		return b.Episodic
	default:
		return b.Semantic
	}
}

// BothResults holds independent result sets from the two populated
// partitions. No cross-partition merging or score normalization is
// performed; the store's per-index ranking is the only ranking.
type BothResults struct {
	Semantic   []domain.QueryResult `json:"semantic"`
	Procedural []domain.QueryResult `json:"procedural"`
}

// Retriever answers nearest-neighbor queries against the memory
// partitions. Retrieval is best-effort: every failure, embedding
// included, is logged and reported as an empty result set. Callers
// cannot distinguish "no matches" from "query failed" except by logs.
type Retriever struct {
	embedder Embedder
	store    VectorQuerier
	buckets  Buckets
}

// NewRetriever creates a Retriever.
func NewRetriever(embedder Embedder, store VectorQuerier, buckets Buckets) *Retriever {
	return &Retriever{embedder: embedder, store: store, buckets: buckets}
}

// Search embeds the query once and returns up to topK results from the
// given partition, in the store's distance order.
func (r *Retriever) Search(ctx context.Context, query string, partition domain.MemoryPartition, topK int) []domain.QueryResult {
	return r.search(ctx, query, partition, topK, nil)
}

// SearchWithFilter restricts results to records whose table_name
// metadata equals tableName.
func (r *Retriever) SearchWithFilter(ctx context.Context, query string, partition domain.MemoryPartition, topK int, tableName string) []domain.QueryResult {
	return r.search(ctx, query, partition, topK, map[string]string{"table_name": tableName})
}

// SearchBoth queries semantic and procedural memory independently and
// returns both result sets unmerged.
func (r *Retriever) SearchBoth(ctx context.Context, query string, semanticK, proceduralK int) *BothResults {
	return &BothResults{
		Semantic:   r.Search(ctx, query, domain.PartitionSemantic, semanticK),
		Procedural: r.Search(ctx, query, domain.PartitionProcedural, proceduralK),
	}
}

func (r *Retriever) search(ctx context.Context, query string, partition domain.MemoryPartition, topK int, filter map[string]string) []domain.QueryResult {
	embedding, err := r.embedder.GenerateEmbedding(ctx, query)
	if err != nil {
		log.Printf("failed to embed query for %s search: %v", partition, err)
		return []domain.QueryResult{}
	}

	results, err := r.store.Query(ctx, r.buckets.For(partition), partition.IndexName(), embedding, topK, filter)
	if err != nil {
		log.Printf("%s search failed: %v", partition, err)
		return []domain.QueryResult{}
	}

	log.Printf("found %d %s results", len(results), partition)
	return results
}
