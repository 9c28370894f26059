package vectorstore

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3vectors/document"
	"github.com/aws/aws-sdk-go-v2/service/s3vectors"
	"github.com/aws/aws-sdk-go-v2/service/s3vectors/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sqlpilot-ai/vecmem/internal/domain"
)

// MockS3VectorsAPI is a mock for the S3 Vectors service
type MockS3VectorsAPI struct {
	mock.Mock
}

func (m *MockS3VectorsAPI) GetVectorBucket(ctx context.Context, params *s3vectors.GetVectorBucketInput, optFns ...func(*s3vectors.Options)) (*s3vectors.GetVectorBucketOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3vectors.GetVectorBucketOutput), args.Error(1)
}

func (m *MockS3VectorsAPI) CreateVectorBucket(ctx context.Context, params *s3vectors.CreateVectorBucketInput, optFns ...func(*s3vectors.Options)) (*s3vectors.CreateVectorBucketOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3vectors.CreateVectorBucketOutput), args.Error(1)
}

func (m *MockS3VectorsAPI) GetIndex(ctx context.Context, params *s3vectors.GetIndexInput, optFns ...func(*s3vectors.Options)) (*s3vectors.GetIndexOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3vectors.GetIndexOutput), args.Error(1)
}

func (m *MockS3VectorsAPI) CreateIndex(ctx context.Context, params *s3vectors.CreateIndexInput, optFns ...func(*s3vectors.Options)) (*s3vectors.CreateIndexOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3vectors.CreateIndexOutput), args.Error(1)
}

func (m *MockS3VectorsAPI) PutVectors(ctx context.Context, params *s3vectors.PutVectorsInput, optFns ...func(*s3vectors.Options)) (*s3vectors.PutVectorsOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3vectors.PutVectorsOutput), args.Error(1)
}

func (m *MockS3VectorsAPI) QueryVectors(ctx context.Context, params *s3vectors.QueryVectorsInput, optFns ...func(*s3vectors.Options)) (*s3vectors.QueryVectorsOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3vectors.QueryVectorsOutput), args.Error(1)
}

func notFound() error {
	return &types.NotFoundException{Message: aws.String("resource not found")}
}

func TestClient_EnsureBucket_Exists(t *testing.T) {
	mockAPI := new(MockS3VectorsAPI)
	client := NewClientWithAPI(mockAPI)

	mockAPI.On("GetVectorBucket", mock.Anything, mock.MatchedBy(func(in *s3vectors.GetVectorBucketInput) bool {
		return aws.ToString(in.VectorBucketName) == "sem-bucket"
	})).Return(&s3vectors.GetVectorBucketOutput{}, nil)

	outcome, err := client.EnsureBucket(context.Background(), "sem-bucket")

	assert.NoError(t, err)
	assert.Equal(t, Existed, outcome)
	mockAPI.AssertNotCalled(t, "CreateVectorBucket", mock.Anything, mock.Anything)
}

func TestClient_EnsureBucket_Creates(t *testing.T) {
	mockAPI := new(MockS3VectorsAPI)
	client := NewClientWithAPI(mockAPI)

	mockAPI.On("GetVectorBucket", mock.Anything, mock.Anything).Return(nil, notFound())
	mockAPI.On("CreateVectorBucket", mock.Anything, mock.MatchedBy(func(in *s3vectors.CreateVectorBucketInput) bool {
		return aws.ToString(in.VectorBucketName) == "sem-bucket" &&
			in.EncryptionConfiguration != nil &&
			in.EncryptionConfiguration.SseType == types.SseTypeAes256
	})).Return(&s3vectors.CreateVectorBucketOutput{}, nil)

	outcome, err := client.EnsureBucket(context.Background(), "sem-bucket")

	assert.NoError(t, err)
	assert.Equal(t, Created, outcome)
	mockAPI.AssertExpectations(t)
}

func TestClient_EnsureBucket_DescribeError(t *testing.T) {
	mockAPI := new(MockS3VectorsAPI)
	client := NewClientWithAPI(mockAPI)

	mockAPI.On("GetVectorBucket", mock.Anything, mock.Anything).Return(nil, errors.New("access denied"))

	_, err := client.EnsureBucket(context.Background(), "sem-bucket")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to describe vector bucket")
	mockAPI.AssertNotCalled(t, "CreateVectorBucket", mock.Anything, mock.Anything)
}

func TestClient_EnsureBucket_CreateError(t *testing.T) {
	mockAPI := new(MockS3VectorsAPI)
	client := NewClientWithAPI(mockAPI)

	mockAPI.On("GetVectorBucket", mock.Anything, mock.Anything).Return(nil, notFound())
	mockAPI.On("CreateVectorBucket", mock.Anything, mock.Anything).Return(nil, errors.New("quota exceeded"))

	_, err := client.EnsureBucket(context.Background(), "sem-bucket")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create vector bucket")
}

func TestClient_EnsureIndex_Creates(t *testing.T) {
	mockAPI := new(MockS3VectorsAPI)
	client := NewClientWithAPI(mockAPI)

	mockAPI.On("GetIndex", mock.Anything, mock.Anything).Return(nil, notFound())
	mockAPI.On("CreateIndex", mock.Anything, mock.MatchedBy(func(in *s3vectors.CreateIndexInput) bool {
		return aws.ToString(in.VectorBucketName) == "sem-bucket" &&
			aws.ToString(in.IndexName) == "semantic_index" &&
			aws.ToInt32(in.Dimension) == 1536 &&
			in.DataType == types.DataTypeFloat32 &&
			in.DistanceMetric == types.DistanceMetricCosine
	})).Return(&s3vectors.CreateIndexOutput{}, nil)

	outcome, err := client.EnsureIndex(context.Background(), "sem-bucket", "semantic_index", 1536)

	assert.NoError(t, err)
	assert.Equal(t, Created, outcome)
	mockAPI.AssertExpectations(t)
}

func TestClient_EnsureIndex_Exists(t *testing.T) {
	mockAPI := new(MockS3VectorsAPI)
	client := NewClientWithAPI(mockAPI)

	mockAPI.On("GetIndex", mock.Anything, mock.Anything).Return(&s3vectors.GetIndexOutput{}, nil)

	outcome, err := client.EnsureIndex(context.Background(), "sem-bucket", "semantic_index", 1536)

	assert.NoError(t, err)
	assert.Equal(t, Existed, outcome)
	mockAPI.AssertNotCalled(t, "CreateIndex", mock.Anything, mock.Anything)
}

func TestClient_PutVectors_Empty(t *testing.T) {
	mockAPI := new(MockS3VectorsAPI)
	client := NewClientWithAPI(mockAPI)

	err := client.PutVectors(context.Background(), "sem-bucket", "semantic_index", nil)

	assert.NoError(t, err)
	mockAPI.AssertNotCalled(t, "PutVectors", mock.Anything, mock.Anything)
}

func TestClient_PutVectors_BatchTooLarge(t *testing.T) {
	mockAPI := new(MockS3VectorsAPI)
	client := NewClientWithAPI(mockAPI)

	records := make([]domain.VectorRecord, MaxBatchSize+1)
	err := client.PutVectors(context.Background(), "sem-bucket", "semantic_index", records)

	assert.ErrorIs(t, err, ErrBatchTooLarge)
	mockAPI.AssertNotCalled(t, "PutVectors", mock.Anything, mock.Anything)
}

func TestClient_PutVectors_Success(t *testing.T) {
	mockAPI := new(MockS3VectorsAPI)
	client := NewClientWithAPI(mockAPI)

	records := []domain.VectorRecord{
		{
			Key:       "c1",
			Embedding: []float32{0.1, 0.2, 0.3},
			Metadata: domain.VectorMetadata{
				TableName:  "customers",
				EntityType: "column",
				Keywords:   "id,pk",
				ColumnName: "customer_id",
			},
		},
	}

	mockAPI.On("PutVectors", mock.Anything, mock.MatchedBy(func(in *s3vectors.PutVectorsInput) bool {
		if aws.ToString(in.VectorBucketName) != "sem-bucket" || aws.ToString(in.IndexName) != "semantic_index" {
			return false
		}
		if len(in.Vectors) != 1 {
			return false
		}
		vec := in.Vectors[0]
		data, ok := vec.Data.(*types.VectorDataMemberFloat32)
		return aws.ToString(vec.Key) == "c1" && ok && len(data.Value) == 3 && vec.Metadata != nil
	})).Return(&s3vectors.PutVectorsOutput{}, nil)

	err := client.PutVectors(context.Background(), "sem-bucket", "semantic_index", records)

	assert.NoError(t, err)
	mockAPI.AssertExpectations(t)
}

func TestClient_PutVectors_ServiceError(t *testing.T) {
	mockAPI := new(MockS3VectorsAPI)
	client := NewClientWithAPI(mockAPI)

	mockAPI.On("PutVectors", mock.Anything, mock.Anything).Return(nil, errors.New("throttled"))

	err := client.PutVectors(context.Background(), "sem-bucket", "semantic_index", []domain.VectorRecord{{Key: "c1"}})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to put 1 vectors")
}

func TestClient_Query_Success(t *testing.T) {
	mockAPI := new(MockS3VectorsAPI)
	client := NewClientWithAPI(mockAPI)

	out := &s3vectors.QueryVectorsOutput{
		Vectors: []types.QueryOutputVector{
			{
				Key:      aws.String("c1"),
				Distance: aws.Float32(0.12),
				Metadata: document.NewLazyDocument(map[string]interface{}{
					"table_name":  "customers",
					"entity_type": "column",
					"keywords":    "id,pk",
				}),
			},
			{
				Key:      aws.String("c2"),
				Distance: aws.Float32(0.34),
			},
		},
	}

	mockAPI.On("QueryVectors", mock.Anything, mock.MatchedBy(func(in *s3vectors.QueryVectorsInput) bool {
		data, ok := in.QueryVector.(*types.VectorDataMemberFloat32)
		return aws.ToString(in.VectorBucketName) == "sem-bucket" &&
			aws.ToString(in.IndexName) == "semantic_index" &&
			aws.ToInt32(in.TopK) == 5 &&
			in.ReturnDistance &&
			in.ReturnMetadata &&
			in.Filter == nil &&
			ok && len(data.Value) == 3
	})).Return(out, nil)

	results, err := client.Query(context.Background(), "sem-bucket", "semantic_index", []float32{0.1, 0.2, 0.3}, 5, nil)

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "c1", results[0].Key)
	assert.InDelta(t, 0.12, results[0].Distance, 1e-6)
	assert.Equal(t, "customers", results[0].Metadata.TableName)
	assert.Equal(t, "column", results[0].Metadata.EntityType)
	assert.Equal(t, "c2", results[1].Key)
	assert.Empty(t, results[1].Metadata.TableName)
}

func TestClient_Query_WithFilter(t *testing.T) {
	mockAPI := new(MockS3VectorsAPI)
	client := NewClientWithAPI(mockAPI)

	mockAPI.On("QueryVectors", mock.Anything, mock.MatchedBy(func(in *s3vectors.QueryVectorsInput) bool {
		return in.Filter != nil
	})).Return(&s3vectors.QueryVectorsOutput{}, nil)

	results, err := client.Query(context.Background(), "sem-bucket", "semantic_index", []float32{0.1}, 5,
		map[string]string{"table_name": "customers"})

	require.NoError(t, err)
	assert.Empty(t, results)
	mockAPI.AssertExpectations(t)
}

func TestClient_Query_ServiceError(t *testing.T) {
	mockAPI := new(MockS3VectorsAPI)
	client := NewClientWithAPI(mockAPI)

	mockAPI.On("QueryVectors", mock.Anything, mock.Anything).Return(nil, errors.New("index not ready"))

	results, err := client.Query(context.Background(), "sem-bucket", "semantic_index", []float32{0.1}, 5, nil)

	assert.Error(t, err)
	assert.Nil(t, results)
}
