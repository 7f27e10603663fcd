package main

import (
	"fmt"
	"log/slog"

	"github.com/vbonduro/moveassist/internal/ai"
	"github.com/vbonduro/moveassist/internal/ai/claude"
	"github.com/vbonduro/moveassist/internal/ai/ollama"
	"github.com/vbonduro/moveassist/internal/camera"
	"github.com/vbonduro/moveassist/internal/camera/snapshot"
	"github.com/vbonduro/moveassist/internal/config"
	"github.com/vbonduro/moveassist/internal/db"
	"github.com/vbonduro/moveassist/internal/medium"
	"github.com/vbonduro/moveassist/internal/medium/local"
	"github.com/vbonduro/moveassist/internal/medium/memory"
	"github.com/vbonduro/moveassist/internal/medium/sqlite"
)

// newMedium opens the configured storage backend. The returned func releases
// it.
func newMedium(cfg *config.Config) (medium.Medium, func() error, error) {
	switch cfg.StorageBackend {
	case config.StorageSQLite:
		database, err := db.Open(cfg.DBPath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open database: %w", err)
		}
		return sqlite.NewSQLiteMedium(database, cfg.StorageQuotaBytes), database.Close, nil
	case config.StorageLocal:
		m, err := local.NewLocalMedium(cfg.StorageLocalPath, cfg.StorageQuotaBytes)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open local storage: %w", err)
		}
		return m, func() error { return nil }, nil
	case config.StorageMemory:
		return memory.NewMemoryMedium(cfg.StorageQuotaBytes), func() error { return nil }, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

func newAssistant(cfg *config.Config, logger *slog.Logger) ai.Assistant {
	if cfg.AIBackend == config.AIClaude {
		logger.Info("using Claude AI backend", "model", cfg.ClaudeModel)
		return claude.NewClaudeAssistant(cfg.ClaudeAPIKey, cfg.ClaudeModel, claude.WithTimeout(cfg.AITimeout))
	}
	logger.Info("using Ollama AI backend", "host", cfg.OllamaHost, "model", cfg.OllamaModel)
	return ollama.NewOllamaAssistant(cfg.OllamaHost, cfg.OllamaModel, cfg.AITimeout)
}

// newCamera returns nil when no snapshot URL is configured, so the capture
// flow falls back to uploads.
func newCamera(cfg *config.Config, logger *slog.Logger) camera.Device {
	if cfg.CameraBackURL == "" && cfg.CameraFrontURL == "" {
		logger.Info("no camera configured; photos must be uploaded")
		return nil
	}
	return snapshot.NewSnapshotCamera(cfg.CameraBackURL, cfg.CameraFrontURL, cfg.AITimeout, logger)
}
