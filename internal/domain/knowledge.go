package domain

import "strings"

// UnknownField is the fallback value for chunks missing chunk_id or
// entity_type. Chunks sharing the fallback key overwrite each other on
// upsert; see ValidateChunk.
const UnknownField = "unknown"

// EntityTypeQueryExample routes a chunk to procedural memory.
const EntityTypeQueryExample = "query_example"

// MemoryPartition identifies one of the memory classes, each backed by
// its own vector bucket and index.
type MemoryPartition string

const (
	PartitionSemantic   MemoryPartition = "semantic"
	PartitionProcedural MemoryPartition = "procedural"
	// PartitionEpisodic is provisioned but never populated by the
	// ingestion pipeline.
	PartitionEpisodic MemoryPartition = "episodic"
)

// ParsePartition converts a string to a MemoryPartition
func ParsePartition(s string) (MemoryPartition, error) {
	switch MemoryPartition(s) {
	case PartitionSemantic, PartitionProcedural, PartitionEpisodic:
		return MemoryPartition(s), nil
	default:
		return "", ErrInvalidPartition
	}
}

// IndexName returns the vector index name for the partition.
func (p MemoryPartition) IndexName() string {
	return string(p) + "_index"
}

// KnowledgeDocument is one source table's worth of knowledge chunks,
// read from a semantic_*.json file.
type KnowledgeDocument struct {
	Table  string           `json:"table"`
	Chunks []KnowledgeChunk `json:"chunks"`
}

// TableName returns the document's table, defaulting when absent.
func (d *KnowledgeDocument) TableName() string {
	if d.Table == "" {
		return UnknownField
	}
	return d.Table
}

// KnowledgeChunk is the atomic unit of ingestion.
type KnowledgeChunk struct {
	ChunkID    string   `json:"chunk_id"`
	EntityType string   `json:"entity_type"`
	Text       string   `json:"text"`
	Keywords   []string `json:"keywords"`
	ColumnName string   `json:"column_name,omitempty"`
}

// KeywordString joins the chunk's keywords for metadata storage.
func (c *KnowledgeChunk) KeywordString() string {
	return strings.Join(c.Keywords, ",")
}

// ValidateChunk reports data-quality problems that the pipeline
// tolerates but operators should know about. Missing fields do not
// abort ingestion; they collapse onto the "unknown" key.
func ValidateChunk(c *KnowledgeChunk) error {
	if c == nil {
		return ErrMissingRequiredField
	}
	if c.ChunkID == "" {
		return ErrMissingChunkID
	}
	if c.EntityType == "" {
		return ErrMissingEntityType
	}
	return nil
}

// VectorMetadata is the metadata stored alongside each vector.
type VectorMetadata struct {
	TableName  string `json:"table_name"`
	EntityType string `json:"entity_type"`
	Keywords   string `json:"keywords"`
	ColumnName string `json:"column_name,omitempty"`
}

// ToMap converts metadata to the generic map shape the vector store
// API accepts.
func (m VectorMetadata) ToMap() map[string]interface{} {
	out := map[string]interface{}{
		"table_name":  m.TableName,
		"entity_type": m.EntityType,
		"keywords":    m.Keywords,
	}
	if m.ColumnName != "" {
		out["column_name"] = m.ColumnName
	}
	return out
}

// MetadataFromMap rebuilds metadata from the vector store's generic map.
func MetadataFromMap(raw map[string]interface{}) VectorMetadata {
	var m VectorMetadata
	if v, ok := raw["table_name"].(string); ok {
		m.TableName = v
	}
	if v, ok := raw["entity_type"].(string); ok {
		m.EntityType = v
	}
	if v, ok := raw["keywords"].(string); ok {
		m.Keywords = v
	}
	if v, ok := raw["column_name"].(string); ok {
		m.ColumnName = v
	}
	return m
}

// VectorRecord is the unit stored remotely. Once uploaded the vector
// store owns the record; no durable local copy is kept.
type VectorRecord struct {
	Key       string
	Embedding []float32
	Metadata  VectorMetadata
}

// QueryResult is a ranked record returned from a nearest-neighbor
// lookup. Lower distance means more similar under cosine distance.
type QueryResult struct {
	Key      string
	Distance float32
	Metadata VectorMetadata
}
