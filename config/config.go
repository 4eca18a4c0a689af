// Copyright 2026 Lattice Works
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// AIConfig holds connection settings for the embedding and generation hosts.
type AIConfig struct {
	EmbeddingHost  string `yaml:"embedding_host"`
	GeneratorHost  string `yaml:"generator_host"`
	GeneratorModel string `yaml:"generator_model"`
	Token          string `yaml:"token"`
}

// EmbeddingConfig configures the embedding fallback ladder.
type EmbeddingConfig struct {
	PreferredModel string `yaml:"preferred_model"`
	Dimension      int    `yaml:"dimension"`
	MaxBatchSize   int    `yaml:"max_batch_size"`
}

// SegmenterConfig configures document splitting.
type SegmenterConfig struct {
	ChunkSize int `yaml:"chunk_size"`
	Overlap   int `yaml:"overlap"`
}

// MinioConfig contains connection details for an S3-compatible object store.
type MinioConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	UseSSL    bool   `yaml:"use_ssl"`
	Region    string `yaml:"region"`
}

// StorageConfig selects where document rows and object content live.
type StorageConfig struct {
	DataDir string `yaml:"data_dir"`
	// ObjectStore is "minio" or "local".
	ObjectStore string       `yaml:"object_store"`
	LocalRoot   string       `yaml:"local_root"`
	Minio       *MinioConfig `yaml:"minio,omitempty"`
}

// PipelineConfig configures the ingestion worker pool.
type PipelineConfig struct {
	PoolSize int `yaml:"pool_size"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Corpus    string          `yaml:"corpus"`
	AI        AIConfig        `yaml:"ai"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Segmenter SegmenterConfig `yaml:"segmenter"`
	Storage   StorageConfig   `yaml:"storage"`
	Pipeline  PipelineConfig  `yaml:"pipeline"`
}

// ErrInvalidObjectStore indicates an unknown storage.object_store value.
var ErrInvalidObjectStore = errors.New("object_store must be \"minio\" or \"local\"")

// Load reads the config file, then applies environment overrides. A missing
// file yields defaults. A .env file in the working directory is loaded
// first, so variables defined there participate in the overrides.
func Load(path string) (*AppConfig, error) {
	// Best effort; a missing .env file is the common case.
	_ = godotenv.Load()

	cfg := defaultConfig()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
		// Defaults stand.
	default:
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	applyDefaults(cfg)
	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field consistency.
func (c *AppConfig) Validate() error {
	switch c.Storage.ObjectStore {
	case "minio", "local":
		return nil
	default:
		return fmt.Errorf("%w: got %q", ErrInvalidObjectStore, c.Storage.ObjectStore)
	}
}

func defaultConfig() *AppConfig {
	return &AppConfig{
		Corpus: "default",
		AI: AIConfig{
			EmbeddingHost:  "http://localhost:11434",
			GeneratorHost:  "http://localhost:11434",
			GeneratorModel: "qwen2.5:3b",
			Token:          "none",
		},
		Embedding: EmbeddingConfig{Dimension: 768},
		Segmenter: SegmenterConfig{ChunkSize: 800, Overlap: 100},
		Storage: StorageConfig{
			DataDir:     defaultDataDir(),
			ObjectStore: "local",
		},
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".semdex"
	}
	return home + "/.semdex"
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Corpus == "" {
		cfg.Corpus = "default"
	}
	if cfg.Embedding.Dimension <= 0 {
		cfg.Embedding.Dimension = 768
	}
	if cfg.Segmenter.ChunkSize <= 0 {
		cfg.Segmenter.ChunkSize = 800
	}
	if cfg.Segmenter.Overlap < 0 {
		cfg.Segmenter.Overlap = 100
	}
	if cfg.Storage.DataDir == "" {
		cfg.Storage.DataDir = defaultDataDir()
	}
	if cfg.Storage.ObjectStore == "" {
		cfg.Storage.ObjectStore = "local"
	}
	if cfg.Storage.ObjectStore == "minio" && cfg.Storage.Minio == nil {
		cfg.Storage.Minio = &MinioConfig{Endpoint: "localhost:9000"}
	}
}

// applyEnvOverrides lets deployment environments override the secrets and
// hosts without editing the config file.
func applyEnvOverrides(cfg *AppConfig) {
	setString(&cfg.Corpus, "SEMDEX_CORPUS")
	setString(&cfg.AI.EmbeddingHost, "SEMDEX_EMBEDDING_HOST")
	setString(&cfg.AI.GeneratorHost, "SEMDEX_GENERATOR_HOST")
	setString(&cfg.AI.GeneratorModel, "SEMDEX_GENERATOR_MODEL")
	setString(&cfg.AI.Token, "SEMDEX_AI_TOKEN")
	setString(&cfg.Storage.DataDir, "SEMDEX_DATA_DIR")
	setInt(&cfg.Embedding.Dimension, "SEMDEX_EMBEDDING_DIMENSION")

	if cfg.Storage.Minio != nil {
		setString(&cfg.Storage.Minio.Endpoint, "SEMDEX_MINIO_ENDPOINT")
		setString(&cfg.Storage.Minio.AccessKey, "SEMDEX_MINIO_ACCESS_KEY")
		setString(&cfg.Storage.Minio.SecretKey, "SEMDEX_MINIO_SECRET_KEY")
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
