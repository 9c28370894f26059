package retrieval

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sqlpilot-ai/vecmem/internal/domain"
)

// MockEmbedder is a mock implementation of Embedder
type MockEmbedder struct {
	mock.Mock
}

func (m *MockEmbedder) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float32), args.Error(1)
}

// MockQuerier is a mock implementation of VectorQuerier
type MockQuerier struct {
	mock.Mock
}

func (m *MockQuerier) Query(ctx context.Context, bucket, index string, queryVector []float32, topK int, filter map[string]string) ([]domain.QueryResult, error) {
	args := m.Called(ctx, bucket, index, queryVector, topK, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.QueryResult), args.Error(1)
}

func testBuckets() Buckets {
	return Buckets{Semantic: "sem-bucket", Procedural: "proc-bucket", Episodic: "epi-bucket"}
}

func TestRetriever_Search_ReturnsStoreRanking(t *testing.T) {
	embedder := new(MockEmbedder)
	querier := new(MockQuerier)
	retriever := NewRetriever(embedder, querier, testBuckets())

	embedding := []float32{0.1, 0.2}
	ranked := []domain.QueryResult{
		{Key: "c1", Distance: 0.05, Metadata: domain.VectorMetadata{TableName: "customers"}},
		{Key: "c2", Distance: 0.20, Metadata: domain.VectorMetadata{TableName: "orders"}},
		{Key: "c3", Distance: 0.20},
	}

	embedder.On("GenerateEmbedding", mock.Anything, "customers in California").Return(embedding, nil)
	querier.On("Query", mock.Anything, "sem-bucket", "semantic_index", embedding, 8, map[string]string(nil)).
		Return(ranked, nil)

	results := retriever.Search(context.Background(), "customers in California", domain.PartitionSemantic, 8)

	require.Len(t, results, 3)
	// the store's ordering comes back untouched
	assert.Equal(t, ranked, results)
	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i].Distance, results[i-1].Distance)
	}
	embedder.AssertExpectations(t)
	querier.AssertExpectations(t)
}

func TestRetriever_Search_ProceduralPartition(t *testing.T) {
	embedder := new(MockEmbedder)
	querier := new(MockQuerier)
	retriever := NewRetriever(embedder, querier, testBuckets())

	embedding := []float32{0.3}
	embedder.On("GenerateEmbedding", mock.Anything, "example query").Return(embedding, nil)
	querier.On("Query", mock.Anything, "proc-bucket", "procedural_index", embedding, 3, map[string]string(nil)).
		Return([]domain.QueryResult{{Key: "q1", Distance: 0.1}}, nil)

	results := retriever.Search(context.Background(), "example query", domain.PartitionProcedural, 3)

	require.Len(t, results, 1)
	assert.Equal(t, "q1", results[0].Key)
	querier.AssertExpectations(t)
}

func TestRetriever_Search_EmbeddingFailureReturnsEmpty(t *testing.T) {
	embedder := new(MockEmbedder)
	querier := new(MockQuerier)
	retriever := NewRetriever(embedder, querier, testBuckets())

	embedder.On("GenerateEmbedding", mock.Anything, "broken").Return(nil, errors.New("provider down"))

	results := retriever.Search(context.Background(), "broken", domain.PartitionSemantic, 8)

	assert.NotNil(t, results)
	assert.Empty(t, results)
	querier.AssertNotCalled(t, "Query", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRetriever_Search_QueryFailureReturnsEmpty(t *testing.T) {
	embedder := new(MockEmbedder)
	querier := new(MockQuerier)
	retriever := NewRetriever(embedder, querier, testBuckets())

	embedder.On("GenerateEmbedding", mock.Anything, "anything").Return([]float32{0.1}, nil)
	querier.On("Query", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("index not ready"))

	results := retriever.Search(context.Background(), "anything", domain.PartitionSemantic, 8)

	assert.NotNil(t, results)
	assert.Empty(t, results)
}

func TestRetriever_SearchWithFilter_PassesTableName(t *testing.T) {
	embedder := new(MockEmbedder)
	querier := new(MockQuerier)
	retriever := NewRetriever(embedder, querier, testBuckets())

	embedding := []float32{0.1}
	filtered := []domain.QueryResult{
		{Key: "c1", Distance: 0.1, Metadata: domain.VectorMetadata{TableName: "customers"}},
	}

	embedder.On("GenerateEmbedding", mock.Anything, "customer columns").Return(embedding, nil)
	querier.On("Query", mock.Anything, "sem-bucket", "semantic_index", embedding, 5,
		map[string]string{"table_name": "customers"}).Return(filtered, nil)

	results := retriever.SearchWithFilter(context.Background(), "customer columns", domain.PartitionSemantic, 5, "customers")

	require.Len(t, results, 1)
	for _, res := range results {
		assert.Equal(t, "customers", res.Metadata.TableName)
	}
	querier.AssertExpectations(t)
}

func TestRetriever_SearchBoth_Independent(t *testing.T) {
	embedder := new(MockEmbedder)
	querier := new(MockQuerier)
	retriever := NewRetriever(embedder, querier, testBuckets())

	embedding := []float32{0.1}
	embedder.On("GenerateEmbedding", mock.Anything, "customers in California").Return(embedding, nil).Twice()
	querier.On("Query", mock.Anything, "sem-bucket", "semantic_index", embedding, 8, map[string]string(nil)).
		Return([]domain.QueryResult{{Key: "c1", Distance: 0.1}}, nil)
	querier.On("Query", mock.Anything, "proc-bucket", "procedural_index", embedding, 3, map[string]string(nil)).
		Return([]domain.QueryResult{{Key: "q1", Distance: 0.4}}, nil)

	both := retriever.SearchBoth(context.Background(), "customers in California", 8, 3)

	require.Len(t, both.Semantic, 1)
	require.Len(t, both.Procedural, 1)
	assert.Equal(t, "c1", both.Semantic[0].Key)
	assert.Equal(t, "q1", both.Procedural[0].Key)
	querier.AssertExpectations(t)
}

func TestRetriever_SearchBoth_EmptyPartitions(t *testing.T) {
	embedder := new(MockEmbedder)
	querier := new(MockQuerier)
	retriever := NewRetriever(embedder, querier, testBuckets())

	embedder.On("GenerateEmbedding", mock.Anything, "customers in California").Return([]float32{0.1}, nil).Twice()
	querier.On("Query", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return([]domain.QueryResult{}, nil)

	both := retriever.SearchBoth(context.Background(), "customers in California", 8, 3)

	assert.NotNil(t, both.Semantic)
	assert.NotNil(t, both.Procedural)
	assert.Empty(t, both.Semantic)
	assert.Empty(t, both.Procedural)
}

func TestBuckets_For(t *testing.T) {
	b := testBuckets()
	assert.Equal(t, "sem-bucket", b.For(domain.PartitionSemantic))
	assert.Equal(t, "proc-bucket", b.For(domain.PartitionProcedural))
	assert.Equal(t, "epi-bucket", b.For(domain.PartitionEpisodic))
}
