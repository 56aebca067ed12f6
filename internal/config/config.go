// Package config loads and exposes the application configuration.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Conf holds all settings loaded from the config file.
var Conf Config

// Config mirrors the structure of config.yaml.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Log         LogConfig         `mapstructure:"log"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Kafka       KafkaConfig       `mapstructure:"kafka"`
	MinIO       MinIOConfig       `mapstructure:"minio"`
	VectorIndex VectorIndexConfig `mapstructure:"vector_index"`
	Tika        TikaConfig        `mapstructure:"tika"`
	Embedding   EmbeddingConfig   `mapstructure:"embedding"`
	LLM         LLMConfig         `mapstructure:"llm"`
	Search      SearchConfig      `mapstructure:"search"`
	Ingest      IngestConfig      `mapstructure:"ingest"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
	Env  string `mapstructure:"env"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

// DatabaseConfig groups all datastore connections.
type DatabaseConfig struct {
	MySQL MySQLConfig `mapstructure:"mysql"`
	Redis RedisConfig `mapstructure:"redis"`
}

// MySQLConfig holds the document catalog database settings.
type MySQLConfig struct {
	DSN string `mapstructure:"dsn"`
}

// RedisConfig holds the Redis connection settings.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// KafkaConfig holds the ingest task queue settings.
type KafkaConfig struct {
	Brokers string `mapstructure:"brokers"`
	Topic   string `mapstructure:"topic"`
	GroupID string `mapstructure:"group_id"`
}

// MinIOConfig holds the raw-file object storage settings.
type MinIOConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	UseSSL          bool   `mapstructure:"use_ssl"`
	BucketName      string `mapstructure:"bucket_name"`
}

// VectorIndexConfig selects and configures the vector index backend.
type VectorIndexConfig struct {
	// Backend is one of "elasticsearch", "chroma", "memory".
	Backend        string              `mapstructure:"backend"`
	TimeoutSeconds int                 `mapstructure:"timeout_seconds"`
	Elasticsearch  ElasticsearchConfig `mapstructure:"elasticsearch"`
	Chroma         ChromaConfig        `mapstructure:"chroma"`
}

// ElasticsearchConfig holds the Elasticsearch backend settings.
type ElasticsearchConfig struct {
	Addresses string `mapstructure:"addresses"`
	Username  string `mapstructure:"username"`
	Password  string `mapstructure:"password"`
	IndexName string `mapstructure:"index_name"`
}

// ChromaConfig holds the Chroma backend settings.
type ChromaConfig struct {
	URL        string `mapstructure:"url"`
	Collection string `mapstructure:"collection"`
}

// TikaConfig holds the Tika extraction server settings.
type TikaConfig struct {
	ServerURL string `mapstructure:"server_url"`
}

// EmbeddingConfig holds the embedding provider settings. The same provider
// and model serve both ingestion and query vectorization.
type EmbeddingConfig struct {
	APIKey          string `mapstructure:"api_key"`
	BaseURL         string `mapstructure:"base_url"`
	Model           string `mapstructure:"model"`
	Dimensions      int    `mapstructure:"dimensions"`
	TimeoutSeconds  int    `mapstructure:"timeout_seconds"`
	CacheTTLMinutes int    `mapstructure:"cache_ttl_minutes"`
}

// LLMConfig holds the answer-synthesis provider settings.
type LLMConfig struct {
	APIKey     string `mapstructure:"api_key"`
	BaseURL    string `mapstructure:"base_url"`
	Model      string `mapstructure:"model"`
	MaxContext int    `mapstructure:"max_context"`
}

// SearchConfig carries the ranking and curation tuning values.
type SearchConfig struct {
	KeywordWeight       float64 `mapstructure:"keyword_weight"`
	RecencyHalfLifeDays float64 `mapstructure:"recency_half_life_days"`
	DefaultTopK         int     `mapstructure:"default_top_k"`
	MaxPerSource        int     `mapstructure:"max_per_source"`
	FinalCap            int     `mapstructure:"final_cap"`
	DedupePrefixLen     int     `mapstructure:"dedupe_prefix_len"`
}

// IngestConfig holds ingestion-side settings.
type IngestConfig struct {
	SeedDir string `mapstructure:"seed_dir"`
}

// Init reads the YAML file at configPath and parses it into Conf.
func Init(configPath string) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		panic(fmt.Errorf("failed to read config file: %w", err))
	}

	if err := viper.Unmarshal(&Conf); err != nil {
		panic(fmt.Errorf("failed to unmarshal config: %w", err))
	}
}
