// Package config provides configuration loading and structs for the Kotae engine.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug     bool            `yaml:"debug"`
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	OpenAI    OpenAIConfig    `yaml:"openai"`
}

// ServerConfig holds HTTP gateway settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StorageConfig holds the corpus, asset, and index file paths.
type StorageConfig struct {
	KnowledgeDir   string `yaml:"knowledge_dir"`
	ImagesDir      string `yaml:"images_dir"`
	TextIndexPath  string `yaml:"text_index_path"`
	ImageIndexPath string `yaml:"image_index_path"`
}

// RetrievalConfig holds retrieval and routing tunables.
type RetrievalConfig struct {
	// TopK is the number of highest-scoring chunks returned per text retrieval.
	TopK int `yaml:"top_k"`
	// SimThreshold gates grounded answers: the best chunk must score at least
	// this cosine similarity or the retrieved context is discarded.
	SimThreshold float64 `yaml:"sim_threshold"`
	// Greetings are the phrase prefixes that route a query to the casual
	// template without retrieval. Matched case-insensitively.
	Greetings []string `yaml:"greetings"`
}

// OpenAIConfig holds model names and fallback strings for the collaborator calls.
type OpenAIConfig struct {
	ChatModel      string `yaml:"chat_model"`
	EmbeddingModel string `yaml:"embedding_model"`
	VisionModel    string `yaml:"vision_model"`
	// FallbackCaption replaces the caption when the captioning call fails.
	FallbackCaption string `yaml:"fallback_caption"`
	// UnavailableReply is returned to the user when generation fails.
	UnavailableReply string `yaml:"unavailable_reply"`
	// CacheSize bounds the LRU embedding cache (entries).
	CacheSize int `yaml:"cache_size"`
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Storage.KnowledgeDir = expandPath(cfg.Storage.KnowledgeDir, configDir)
	cfg.Storage.ImagesDir = expandPath(cfg.Storage.ImagesDir, configDir)
	cfg.Storage.TextIndexPath = expandPath(cfg.Storage.TextIndexPath, configDir)
	cfg.Storage.ImageIndexPath = expandPath(cfg.Storage.ImageIndexPath, configDir)

	return &cfg, nil
}

// Save writes the config to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
