package ingest

import "github.com/sqlpilot-ai/vecmem/internal/domain"

// ClassifiedChunk is the classifier's output for one knowledge chunk.
type ClassifiedChunk struct {
	Key       string
	Text      string
	Metadata  domain.VectorMetadata
	Partition domain.MemoryPartition

	// Defaulted is true when chunk_id or entity_type was missing and
	// the "unknown" fallback fired. Multiple defaulted chunks collide
	// on upsert.
	Defaulted bool
}

// Classify routes one chunk to its memory partition. Pure function:
// query_example chunks go to procedural memory, everything else
// (including chunks with a missing entity_type) to semantic memory.
func Classify(chunk domain.KnowledgeChunk, tableName string) ClassifiedChunk {
	defaulted := false

	key := chunk.ChunkID
	if key == "" {
		key = domain.UnknownField
		defaulted = true
	}

	entityType := chunk.EntityType
	if entityType == "" {
		entityType = domain.UnknownField
		defaulted = true
	}

	partition := domain.PartitionSemantic
	if entityType == domain.EntityTypeQueryExample {
		partition = domain.PartitionProcedural
	}

	metadata := domain.VectorMetadata{
		TableName:  tableName,
		EntityType: entityType,
		Keywords:   chunk.KeywordString(),
		ColumnName: chunk.ColumnName,
	}

	return ClassifiedChunk{
		Key:       key,
		Text:      chunk.Text,
		Metadata:  metadata,
		Partition: partition,
		Defaulted: defaulted,
	}
}
