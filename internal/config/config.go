package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	StorageSQLite = "sqlite"
	StorageLocal  = "local"
	StorageMemory = "memory"

	AIOllama = "ollama"
	AIClaude = "claude"
)

type Config struct {
	ListenAddr        string
	StorageBackend    string
	DBPath            string
	StorageLocalPath  string
	StorageQuotaBytes int64
	AIBackend         string
	AITimeout         time.Duration
	OllamaHost        string
	OllamaModel       string
	ClaudeAPIKey      string
	ClaudeModel       string
	CameraBackURL     string
	CameraFrontURL    string
	MaxPhotoBytes     int64
	SessionTTL        time.Duration
	LogLevel          string
	LogFile           string
	LogFormat         string
}

// settings maps each key to its environment variable and default.
var settings = []struct {
	key, env string
	def      any
}{
	{"listen_addr", "LISTEN_ADDR", ":8080"},
	{"storage.backend", "STORAGE_BACKEND", StorageSQLite},
	{"db_path", "DB_PATH", "/data/moveassist.db"},
	{"storage.local_path", "STORAGE_LOCAL_PATH", "/data/store"},
	{"storage.quota_bytes", "STORAGE_QUOTA_BYTES", 5 << 20},
	{"ai.backend", "AI_BACKEND", AIOllama},
	{"ai.timeout", "AI_TIMEOUT", "60s"},
	{"ollama.host", "OLLAMA_HOST", "http://localhost:11434"},
	{"ollama.model", "OLLAMA_MODEL", "llava"},
	{"claude.api_key", "CLAUDE_API_KEY", ""},
	{"claude.model", "CLAUDE_MODEL", "claude-sonnet-4-5"},
	{"camera.back_url", "CAMERA_BACK_URL", ""},
	{"camera.front_url", "CAMERA_FRONT_URL", ""},
	{"capture.max_photo_bytes", "MAX_PHOTO_BYTES", 5 << 20},
	{"capture.session_ttl", "CAPTURE_SESSION_TTL", "30m"},
	{"log.level", "LOG_LEVEL", "info"},
	{"log.file", "LOG_FILE", ""},
	{"log.format", "LOG_FORMAT", "json"},
}

// NewViper returns a viper instance with every key defaulted and bound to its
// environment variable. Callers may bind command-line flags on top.
func NewViper() *viper.Viper {
	v := viper.New()
	for _, s := range settings {
		v.SetDefault(s.key, s.def)
		_ = v.BindEnv(s.key, s.env)
	}
	return v
}

// Load reads an optional .env file and an optional config file into v and
// returns the resulting configuration. Variables already set in the
// environment win over .env entries.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{
		ListenAddr:        v.GetString("listen_addr"),
		StorageBackend:    v.GetString("storage.backend"),
		DBPath:            v.GetString("db_path"),
		StorageLocalPath:  v.GetString("storage.local_path"),
		StorageQuotaBytes: v.GetInt64("storage.quota_bytes"),
		AIBackend:         v.GetString("ai.backend"),
		AITimeout:         v.GetDuration("ai.timeout"),
		OllamaHost:        v.GetString("ollama.host"),
		OllamaModel:       v.GetString("ollama.model"),
		ClaudeAPIKey:      v.GetString("claude.api_key"),
		ClaudeModel:       v.GetString("claude.model"),
		CameraBackURL:     v.GetString("camera.back_url"),
		CameraFrontURL:    v.GetString("camera.front_url"),
		MaxPhotoBytes:     v.GetInt64("capture.max_photo_bytes"),
		SessionTTL:        v.GetDuration("capture.session_ttl"),
		LogLevel:          v.GetString("log.level"),
		LogFile:           v.GetString("log.file"),
		LogFormat:         v.GetString("log.format"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.StorageBackend {
	case StorageSQLite, StorageLocal, StorageMemory:
	default:
		return fmt.Errorf("unknown storage backend %q", c.StorageBackend)
	}

	switch c.AIBackend {
	case AIOllama:
	case AIClaude:
		if c.ClaudeAPIKey == "" {
			return errors.New("CLAUDE_API_KEY is required for the claude backend")
		}
	default:
		return fmt.Errorf("unknown AI backend %q", c.AIBackend)
	}

	if c.StorageQuotaBytes < 0 {
		return errors.New("storage quota must not be negative")
	}
	if c.MaxPhotoBytes <= 0 {
		return errors.New("max photo size must be positive")
	}
	if c.AITimeout <= 0 || c.SessionTTL <= 0 {
		return errors.New("timeouts must be positive")
	}
	return nil
}
