// Package config loads the service configuration from a TOML file with
// environment variable overrides. A .env file in the working directory
// is loaded first, so local development needs no exported variables.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// Config is the full service configuration.
type Config struct {
	Server      ServerConfig      `toml:"server"`
	Storage     StorageConfig     `toml:"storage"`
	Transcriber TranscriberConfig `toml:"transcriber"`
	Insights    InsightsConfig    `toml:"insights"`
	Embedding   EmbeddingConfig   `toml:"embedding"`
	Log         LogConfig         `toml:"log"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// StorageConfig configures file and database locations.
type StorageConfig struct {
	// DataDir holds the SQLite database. Empty means ~/.recapd/data.
	DataDir string `toml:"data_dir"`

	// UploadDir is where HTTP uploads are stored.
	UploadDir string `toml:"upload_dir"`

	// WatchDir is the watch folder. Watching is off when empty.
	WatchDir string `toml:"watch_dir"`
}

// TranscriberConfig configures the whisper.cpp invocation.
type TranscriberConfig struct {
	Binary    string `toml:"binary"`
	ModelPath string `toml:"model_path"`
}

// InsightsConfig selects and configures the insight provider.
type InsightsConfig struct {
	// Provider is "ollama" or "openai". Empty means ollama.
	Provider string `toml:"provider"`

	OllamaBaseURL string `toml:"ollama_base_url"`
	OllamaModel   string `toml:"ollama_model"`

	OpenAIAPIKey string `toml:"openai_api_key"`
	OpenAIModel  string `toml:"openai_model"`
}

// EmbeddingConfig configures the Ollama embedding service.
type EmbeddingConfig struct {
	BaseURL string `toml:"base_url"`
	Model   string `toml:"model"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	// Environment selects the format; "" and "local" mean text.
	Environment string `toml:"environment"`

	// Level is one of debug, info, warn, error.
	Level string `toml:"level"`
}

// Default returns the configuration used when no file and no
// environment overrides are present.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr: ":8080",
		},
		Storage: StorageConfig{
			UploadDir: "./uploads",
		},
		Transcriber: TranscriberConfig{
			Binary:    "main",
			ModelPath: "./models/ggml-small.bin",
		},
		Insights: InsightsConfig{
			Provider: "ollama",
		},
		Log: LogConfig{
			Environment: "local",
			Level:       "info",
		},
	}
}

// Load builds the configuration: defaults, then the TOML file at path
// (skipped when path is empty or missing), then environment variables.
func Load(path string) (Config, error) {
	// Ignore a missing .env; exported variables still apply.
	_ = godotenv.Load()

	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := toml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parsing %s: %w", path, err)
			}
		case os.IsNotExist(err):
			// No file is fine; defaults plus env apply.
		default:
			return Config{}, fmt.Errorf("reading %s: %w", path, err)
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

// applyEnv overrides config fields from RECAPD_* variables.
func applyEnv(cfg *Config) {
	envString("RECAPD_ADDR", &cfg.Server.Addr)
	envString("RECAPD_DATA_DIR", &cfg.Storage.DataDir)
	envString("RECAPD_UPLOAD_DIR", &cfg.Storage.UploadDir)
	envString("RECAPD_WATCH_DIR", &cfg.Storage.WatchDir)
	envString("RECAPD_WHISPER_BINARY", &cfg.Transcriber.Binary)
	envString("RECAPD_WHISPER_MODEL", &cfg.Transcriber.ModelPath)
	envString("RECAPD_INSIGHT_PROVIDER", &cfg.Insights.Provider)
	envString("RECAPD_OLLAMA_BASE_URL", &cfg.Insights.OllamaBaseURL)
	envString("RECAPD_OLLAMA_MODEL", &cfg.Insights.OllamaModel)
	envString("OPENAI_API_KEY", &cfg.Insights.OpenAIAPIKey)
	envString("RECAPD_OPENAI_MODEL", &cfg.Insights.OpenAIModel)
	envString("RECAPD_EMBEDDING_BASE_URL", &cfg.Embedding.BaseURL)
	envString("RECAPD_EMBEDDING_MODEL", &cfg.Embedding.Model)
	envString("RECAPD_ENV", &cfg.Log.Environment)
	envString("RECAPD_LOG_LEVEL", &cfg.Log.Level)
}

func envString(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
