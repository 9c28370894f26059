package config

import (
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/sqlpilot-ai/vecmem/internal/domain"
)

type Config struct {
	Port  string `envconfig:"PORT" default:"8080"`
	Debug bool   `envconfig:"DEBUG" default:"false"`

	SemanticBucket   string `envconfig:"SEMANTIC_BUCKET" default:"nl2sql-semantic-memory"`
	ProceduralBucket string `envconfig:"PROCEDURAL_BUCKET" default:"nl2sql-procedural-memory"`
	EpisodicBucket   string `envconfig:"EPISODIC_BUCKET" default:"nl2sql-episodic-memory"`

	AWSRegion          string `envconfig:"AWS_REGION" default:"us-east-1"`
	AWSAccessKeyID     string `envconfig:"AWS_ACCESS_KEY_ID"`
	AWSSecretAccessKey string `envconfig:"AWS_SECRET_ACCESS_KEY"`

	DataPath string `envconfig:"DATA_PATH" default:"./data/knowledge_base"`

	OpenAIAPIKey       string `envconfig:"OPENAI_API_KEY"`
	EmbeddingModel     string `envconfig:"EMBEDDING_MODEL" default:"text-embedding-3-small"`
	EmbeddingDimension int    `envconfig:"EMBEDDING_DIMENSION" default:"1536"`

	SemanticTopK   int `envconfig:"SEMANTIC_TOP_K" default:"8"`
	ProceduralTopK int `envconfig:"PROCEDURAL_TOP_K" default:"3"`
	EpisodicTopK   int `envconfig:"EPISODIC_TOP_K" default:"5"`

	SentryDSN   string `envconfig:"SENTRY_DSN"`
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("VECMEM", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

func (c *Config) HasOpenAI() bool {
	return c.OpenAIAPIKey != ""
}

func (c *Config) HasStaticCredentials() bool {
	return c.AWSAccessKeyID != "" && c.AWSSecretAccessKey != ""
}

// BucketFor maps a memory partition to its vector bucket name.
func (c *Config) BucketFor(p domain.MemoryPartition) string {
	switch p {
	case domain.PartitionProcedural:
		return c.ProceduralBucket
	case domain.PartitionEpisodic:
		return c.EpisodicBucket
	default:
		return c.SemanticBucket
	}
}

// TopKFor returns the default result count for a partition.
func (c *Config) TopKFor(p domain.MemoryPartition) int {
	switch p {
	case domain.PartitionProcedural:
		return c.ProceduralTopK
	case domain.PartitionEpisodic:
		return c.EpisodicTopK
	default:
		return c.SemanticTopK
	}
}
