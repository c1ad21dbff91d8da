// Package config loads the application configuration from a YAML file,
// falling back to defaults when the file is absent.
package config

import (
	"errors"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/poiesic/docchat/ai"
	"github.com/poiesic/docchat/corpus"
	"github.com/poiesic/docchat/retrieval"
)

// DefaultCacheDir is where embedding cache entries are stored unless the
// configuration says otherwise.
const DefaultCacheDir = "embeddings_cache"

// AIConfig configures the model service endpoints.
type AIConfig struct {
	EmbeddingHost   string `yaml:"embedding_host"`
	EmbeddingModel  string `yaml:"embedding_model"`
	EmbeddingDim    int    `yaml:"embedding_dim"`
	RerankHost      string `yaml:"rerank_host"`
	RerankModel     string `yaml:"rerank_model"`
	GenerationHost  string `yaml:"generation_host"`
	GenerationModel string `yaml:"generation_model"`
}

// ChunkingConfig configures how documents are split into fragments.
type ChunkingConfig struct {
	ChunkSize int `yaml:"chunk_size"`
	Overlap   int `yaml:"overlap"`
}

// RetrievalConfig configures the retrieval pipeline.
type RetrievalConfig struct {
	// Candidates is the semantic-stage pool size.
	Candidates int `yaml:"candidates"`

	// TopK is the number of results returned after reranking.
	TopK int `yaml:"top_k"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	AI        AIConfig        `yaml:"ai"`
	Chunking  ChunkingConfig  `yaml:"chunking"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	CacheDir  string          `yaml:"cache_dir"`
}

// Load reads a config from the given path. If the file does not exist,
// returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultConfig(), nil
		}
		return nil, err
	}

	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

// AIConfig converts the YAML section into the ai package's configuration.
func (c *AppConfig) AIConfig() *ai.Config {
	return ai.NewConfig(
		ai.WithEmbeddingHost(c.AI.EmbeddingHost),
		ai.WithEmbeddingModel(c.AI.EmbeddingModel),
		ai.WithEmbeddingDim(c.AI.EmbeddingDim),
		ai.WithRerankHost(c.AI.RerankHost),
		ai.WithRerankModel(c.AI.RerankModel),
		ai.WithGenerationHost(c.AI.GenerationHost),
		ai.WithGenerationModel(c.AI.GenerationModel),
	)
}

// ChunkConfig converts the YAML section into the corpus package's
// configuration.
func (c *AppConfig) ChunkConfig() corpus.ChunkConfig {
	return corpus.ChunkConfig{
		ChunkSize: c.Chunking.ChunkSize,
		Overlap:   c.Chunking.Overlap,
	}
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *AppConfig) {
	defaults := ai.DefaultConfig()
	if cfg.AI.EmbeddingHost == "" {
		cfg.AI.EmbeddingHost = defaults.EmbeddingHost
	}
	if cfg.AI.EmbeddingModel == "" {
		cfg.AI.EmbeddingModel = defaults.EmbeddingModel
	}
	if cfg.AI.EmbeddingDim == 0 {
		cfg.AI.EmbeddingDim = defaults.EmbeddingDim
	}
	if cfg.AI.RerankHost == "" {
		cfg.AI.RerankHost = defaults.RerankHost
	}
	if cfg.AI.RerankModel == "" {
		cfg.AI.RerankModel = defaults.RerankModel
	}
	if cfg.AI.GenerationHost == "" {
		cfg.AI.GenerationHost = defaults.GenerationHost
	}
	if cfg.AI.GenerationModel == "" {
		cfg.AI.GenerationModel = defaults.GenerationModel
	}

	if cfg.Chunking.ChunkSize == 0 {
		cfg.Chunking.ChunkSize = corpus.DefaultChunkSize
	}
	// The overlap default only applies when it stays below the effective
	// chunk size; a small explicit chunk size keeps zero overlap rather than
	// producing an invalid configuration.
	if cfg.Chunking.Overlap == 0 && corpus.DefaultOverlap < cfg.Chunking.ChunkSize {
		cfg.Chunking.Overlap = corpus.DefaultOverlap
	}
	if cfg.Retrieval.Candidates == 0 {
		cfg.Retrieval.Candidates = retrieval.DefaultCandidateCount
	}
	if cfg.Retrieval.TopK == 0 {
		cfg.Retrieval.TopK = retrieval.DefaultTopK
	}
	if cfg.CacheDir == "" {
		cfg.CacheDir = DefaultCacheDir
	}
}
