// Package config loads the application configuration.
//
// Values resolve in three layers: compiled-in defaults, an optional YAML
// file, then the environment. Later layers win, so an environment variable
// always overrides the file. A .env file in the working directory is
// honored when present.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// DefaultPath is where Load looks for a config file when no path is given.
const DefaultPath = "configs/config.yml"

// Config carries everything the binaries need to wire an engine.
type Config struct {
	LogLevel    string      `yaml:"log_level" split_words:"true"`
	HTTP        HTTP        `yaml:"http"`
	Redis       Redis       `yaml:"redis"`
	Gemini      Gemini      `yaml:"gemini"`
	Graph       Graph       `yaml:"graph"`
	Persistence Persistence `yaml:"persistence"`
}

// HTTP configures the REST/SSE server.
type HTTP struct {
	Addr string `yaml:"addr"`
}

// Redis configures the checkpoint store and thread locks.
// An empty Addr selects the in-memory store instead.
type Redis struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"-"`
	DB       int    `yaml:"db"`
	TTL      string `yaml:"ttl"`
}

// ParseTTL converts the configured TTL into a duration.
// An empty TTL means checkpoints never expire.
func (r Redis) ParseTTL() (time.Duration, error) {
	if r.TTL == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(r.TTL)
	if err != nil {
		return 0, fmt.Errorf("parse redis ttl: %w", err)
	}
	return d, nil
}

// Gemini configures the chat model. The API key comes from the
// environment only; it never belongs in a config file.
type Gemini struct {
	APIKey      string  `yaml:"-" split_words:"true"`
	Model       string  `yaml:"model"`
	Temperature float32 `yaml:"temperature"`
}

// Graph bounds a single conversation turn.
type Graph struct {
	RecursionLimit int `yaml:"recursion_limit" split_words:"true"`
	EmptyRetries   int `yaml:"empty_retries" split_words:"true"`
}

// Persistence hardens checkpoints at rest. Keys come from the environment
// only; mask patterns may live in the file.
type Persistence struct {
	// EncryptionKey is a base64-encoded 32-byte key. When set, stored
	// conversation state is sealed with AES-256-GCM.
	EncryptionKey string `yaml:"-" split_words:"true"`
	// FallbackKeys are previous base64 keys accepted during key rotation.
	FallbackKeys []string `yaml:"-" split_words:"true"`
	// MaskPatterns are regular expressions whose matches are redacted from
	// persisted transcripts.
	MaskPatterns []string `yaml:"mask_patterns" split_words:"true"`
}

// Default returns the compiled-in configuration.
func Default() Config {
	return Config{
		LogLevel: "info",
		HTTP:     HTTP{Addr: ":8080"},
		Redis:    Redis{TTL: "24h"},
		Gemini:   Gemini{Model: "gemini-2.0-flash", Temperature: 0.7},
		Graph:    Graph{RecursionLimit: 50, EmptyRetries: 8},
	}
}

// Load builds the configuration: defaults first, then the YAML file at
// path, then the environment. An empty path falls back to DefaultPath,
// which is skipped silently when absent; a path given explicitly must
// exist.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
		// No file; defaults plus environment carry the run.
	default:
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("process environment: %w", err)
	}
	return cfg, nil
}
