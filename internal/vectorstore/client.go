package vectorstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3vectors/document"
	"github.com/aws/aws-sdk-go-v2/service/s3vectors"
	"github.com/aws/aws-sdk-go-v2/service/s3vectors/types"

	"github.com/sqlpilot-ai/vecmem/internal/domain"
)

// MaxBatchSize is the per-call ceiling of the PutVectors API.
const MaxBatchSize = 100

// ErrBatchTooLarge is returned when a single put exceeds MaxBatchSize.
var ErrBatchTooLarge = errors.New("vector batch exceeds put_vectors limit")

// S3VectorsAPI is the subset of the S3 Vectors service the client uses.
type S3VectorsAPI interface {
	GetVectorBucket(ctx context.Context, params *s3vectors.GetVectorBucketInput, optFns ...func(*s3vectors.Options)) (*s3vectors.GetVectorBucketOutput, error)
	CreateVectorBucket(ctx context.Context, params *s3vectors.CreateVectorBucketInput, optFns ...func(*s3vectors.Options)) (*s3vectors.CreateVectorBucketOutput, error)
	GetIndex(ctx context.Context, params *s3vectors.GetIndexInput, optFns ...func(*s3vectors.Options)) (*s3vectors.GetIndexOutput, error)
	CreateIndex(ctx context.Context, params *s3vectors.CreateIndexInput, optFns ...func(*s3vectors.Options)) (*s3vectors.CreateIndexOutput, error)
	PutVectors(ctx context.Context, params *s3vectors.PutVectorsInput, optFns ...func(*s3vectors.Options)) (*s3vectors.PutVectorsOutput, error)
	QueryVectors(ctx context.Context, params *s3vectors.QueryVectorsInput, optFns ...func(*s3vectors.Options)) (*s3vectors.QueryVectorsOutput, error)
}

// ClientConfig holds configuration for the vector store client.
type ClientConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
}

// Client wraps the AWS S3 Vectors API with bucket/index provisioning,
// batched upserts, and nearest-neighbor queries.
type Client struct {
	api S3VectorsAPI
}

// NewClient creates a Client backed by the real S3 Vectors service.
func NewClient(ctx context.Context, cfg ClientConfig) (*Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &Client{api: s3vectors.NewFromConfig(awsCfg)}, nil
}

// NewClientWithAPI creates a Client with an explicit API implementation.
func NewClientWithAPI(api S3VectorsAPI) *Client {
	return &Client{api: api}
}

// EnsureOutcome reports what EnsureBucket/EnsureIndex did.
type EnsureOutcome int

const (
	// Existed means the resource was already present.
	Existed EnsureOutcome = iota
	// Created means the resource was created by this call.
	Created
)

// EnsureBucket creates the vector bucket if it doesn't exist.
func (c *Client) EnsureBucket(ctx context.Context, name string) (EnsureOutcome, error) {
	_, err := c.api.GetVectorBucket(ctx, &s3vectors.GetVectorBucketInput{
		VectorBucketName: aws.String(name),
	})
	if err == nil {
		return Existed, nil
	}
	if !isNotFound(err) {
		return Existed, fmt.Errorf("failed to describe vector bucket %s: %w", name, err)
	}

	_, err = c.api.CreateVectorBucket(ctx, &s3vectors.CreateVectorBucketInput{
		VectorBucketName: aws.String(name),
		EncryptionConfiguration: &types.EncryptionConfiguration{
			SseType: types.SseTypeAes256,
		},
	})
	if err != nil {
		return Existed, fmt.Errorf("failed to create vector bucket %s: %w", name, err)
	}

	return Created, nil
}

// EnsureIndex creates the index if it doesn't exist. Dimension and the
// cosine distance metric are fixed at creation time; vectors of any
// other dimension are rejected by the service on upload.
func (c *Client) EnsureIndex(ctx context.Context, bucket, index string, dimension int) (EnsureOutcome, error) {
	_, err := c.api.GetIndex(ctx, &s3vectors.GetIndexInput{
		VectorBucketName: aws.String(bucket),
		IndexName:        aws.String(index),
	})
	if err == nil {
		return Existed, nil
	}
	if !isNotFound(err) {
		return Existed, fmt.Errorf("failed to describe index %s/%s: %w", bucket, index, err)
	}

	_, err = c.api.CreateIndex(ctx, &s3vectors.CreateIndexInput{
		VectorBucketName: aws.String(bucket),
		IndexName:        aws.String(index),
		DataType:         types.DataTypeFloat32,
		Dimension:        aws.Int32(int32(dimension)),
		DistanceMetric:   types.DistanceMetricCosine,
	})
	if err != nil {
		return Existed, fmt.Errorf("failed to create index %s/%s: %w", bucket, index, err)
	}

	return Created, nil
}

// PutVectors upserts one batch of records. Callers batch to
// MaxBatchSize; larger slices are rejected without a service call.
// Upsert is keyed on VectorRecord.Key, so repeat calls overwrite.
func (c *Client) PutVectors(ctx context.Context, bucket, index string, records []domain.VectorRecord) error {
	if len(records) == 0 {
		return nil
	}
	if len(records) > MaxBatchSize {
		return fmt.Errorf("%w: %d > %d", ErrBatchTooLarge, len(records), MaxBatchSize)
	}

	vectors := make([]types.PutInputVector, 0, len(records))
	for _, rec := range records {
		vectors = append(vectors, types.PutInputVector{
			Key:      aws.String(rec.Key),
			Data:     &types.VectorDataMemberFloat32{Value: rec.Embedding},
			Metadata: document.NewLazyDocument(rec.Metadata.ToMap()),
		})
	}

	_, err := c.api.PutVectors(ctx, &s3vectors.PutVectorsInput{
		VectorBucketName: aws.String(bucket),
		IndexName:        aws.String(index),
		Vectors:          vectors,
	})
	if err != nil {
		return fmt.Errorf("failed to put %d vectors to %s/%s: %w", len(records), bucket, index, err)
	}

	return nil
}

// Query runs a nearest-neighbor lookup and returns the service's
// ranking unmodified. A nil filter matches everything; otherwise the
// filter is an equality constraint on metadata fields.
func (c *Client) Query(ctx context.Context, bucket, index string, queryVector []float32, topK int, filter map[string]string) ([]domain.QueryResult, error) {
	input := &s3vectors.QueryVectorsInput{
		VectorBucketName: aws.String(bucket),
		IndexName:        aws.String(index),
		QueryVector:      &types.VectorDataMemberFloat32{Value: queryVector},
		TopK:             aws.Int32(int32(topK)),
		ReturnDistance:   true,
		ReturnMetadata:   true,
	}
	if len(filter) > 0 {
		input.Filter = document.NewLazyDocument(filter)
	}

	out, err := c.api.QueryVectors(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s/%s: %w", bucket, index, err)
	}

	results := make([]domain.QueryResult, 0, len(out.Vectors))
	for _, v := range out.Vectors {
		res := domain.QueryResult{
			Key:      aws.ToString(v.Key),
			Distance: aws.ToFloat32(v.Distance),
		}
		if v.Metadata != nil {
			var raw map[string]interface{}
			if err := v.Metadata.UnmarshalSmithyDocument(&raw); err == nil {
				res.Metadata = domain.MetadataFromMap(raw)
			}
		}
		results = append(results, res)
	}

	return results, nil
}

func isNotFound(err error) bool {
	var nf *types.NotFoundException
	return errors.As(err, &nf)
}
