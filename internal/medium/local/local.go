package local

import (
	"bufio"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/vbonduro/moveassist/internal/medium"
)

const (
	entryExt = ".entry"
	// hashedPrefix marks file names derived from a key hash. '~' is outside
	// the base64url alphabet.
	hashedPrefix = "~"
	maxNameLen   = 200
)

// LocalMedium keeps one file per key under basePath. Keys are base64url
// encoded into file names so arbitrary box ids are safe on disk. Keys whose
// encoding would make an over-long name are stored under a SHA-256 name, with
// the encoded key on the file's first line.
type LocalMedium struct {
	basePath string
	quota    int64
	mu       sync.Mutex
}

func NewLocalMedium(basePath string, quota int64) (*LocalMedium, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &LocalMedium{basePath: basePath, quota: quota}, nil
}

func (m *LocalMedium) Get(_ context.Context, key string) (string, bool, error) {
	filePath, err := m.safeJoin(fileName(key))
	if err != nil {
		return "", false, err
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to read entry: %w", err)
	}
	if !isHashed(filepath.Base(filePath)) {
		return string(data), true, nil
	}

	header, value, ok := strings.Cut(string(data), "\n")
	if !ok || header != encodeKey(key) {
		return "", false, fmt.Errorf("failed to read entry: header does not match key")
	}
	return value, true, nil
}

func (m *LocalMedium) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	filePath, err := m.safeJoin(fileName(key))
	if err != nil {
		return err
	}

	if m.quota > 0 {
		usage, err := m.usage(key)
		if err != nil {
			return err
		}
		if err := medium.CheckQuota(usage.UsedBytes, medium.EntrySize(key, value), m.quota); err != nil {
			return err
		}
	}

	// Write to a temp file and rename so readers never see a partial entry.
	f, err := os.CreateTemp(m.basePath, "tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	tmpPath := f.Name()
	if isHashed(filepath.Base(filePath)) {
		value = encodeKey(key) + "\n" + value
	}
	if _, err := f.WriteString(value); err != nil {
		if cerr := f.Close(); cerr != nil {
			slog.Error("failed to close file after write error", "error", cerr)
		}
		if rerr := os.Remove(tmpPath); rerr != nil {
			slog.Error("failed to remove file after write error", "error", rerr)
		}
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := f.Close(); err != nil {
		if rerr := os.Remove(tmpPath); rerr != nil {
			slog.Error("failed to remove file after close error", "error", rerr)
		}
		return fmt.Errorf("failed to close file: %w", err)
	}
	if err := os.Rename(tmpPath, filePath); err != nil {
		if rerr := os.Remove(tmpPath); rerr != nil {
			slog.Error("failed to remove file after rename error", "error", rerr)
		}
		return fmt.Errorf("failed to store entry: %w", err)
	}
	return nil
}

func (m *LocalMedium) Remove(_ context.Context, key string) error {
	filePath, err := m.safeJoin(fileName(key))
	if err != nil {
		return err
	}

	if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

func (m *LocalMedium) Usage(_ context.Context) (medium.Usage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.usage("")
}

// usage sums every entry except the one stored under skipKey.
func (m *LocalMedium) usage(skipKey string) (medium.Usage, error) {
	entries, err := os.ReadDir(m.basePath)
	if err != nil {
		return medium.Usage{}, fmt.Errorf("failed to read storage directory: %w", err)
	}

	skipName := ""
	if skipKey != "" {
		skipName = fileName(skipKey)
	}

	u := medium.Usage{QuotaBytes: m.quota}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, entryExt) || name == skipName {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return medium.Usage{}, fmt.Errorf("failed to stat entry: %w", err)
		}
		size := info.Size()

		var key string
		if isHashed(name) {
			header, err := m.readHeader(name)
			if err != nil {
				if os.IsNotExist(err) {
					continue
				}
				return medium.Usage{}, err
			}
			raw, ok := decodeKey(header)
			if !ok {
				continue
			}
			key = raw
			size -= int64(len(header)) + 1
		} else {
			raw, ok := keyFromFileName(name)
			if !ok {
				continue
			}
			key = raw
		}
		u.UsedBytes += int64(len(key)) + size
		u.Entries++
	}
	return u, nil
}

// readHeader returns the encoded key line of a hashed entry.
func (m *LocalMedium) readHeader(name string) (string, error) {
	f, err := os.Open(filepath.Join(m.basePath, name))
	if err != nil {
		return "", err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			slog.Error("failed to close entry", "error", cerr)
		}
	}()

	line, err := bufio.NewReader(f).ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read entry header: %w", err)
	}
	return strings.TrimSuffix(line, "\n"), nil
}

// safeJoin resolves name relative to basePath and rejects directory traversal.
func (m *LocalMedium) safeJoin(name string) (string, error) {
	absBase, err := filepath.Abs(m.basePath)
	if err != nil {
		return "", fmt.Errorf("invalid base path: %w", err)
	}

	absPath, err := filepath.Abs(filepath.Join(m.basePath, name))
	if err != nil {
		return "", fmt.Errorf("invalid path: %w", err)
	}

	if !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) {
		return "", fmt.Errorf("path traversal attempt")
	}
	return absPath, nil
}

func fileName(key string) string {
	encoded := encodeKey(key)
	if len(encoded)+len(entryExt) <= maxNameLen {
		return encoded + entryExt
	}
	sum := sha256.Sum256([]byte(key))
	return hashedPrefix + hex.EncodeToString(sum[:]) + entryExt
}

func isHashed(name string) bool {
	return strings.HasPrefix(name, hashedPrefix)
}

func keyFromFileName(name string) (string, bool) {
	return decodeKey(strings.TrimSuffix(name, entryExt))
}

func encodeKey(key string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(key))
}

func decodeKey(encoded string) (string, bool) {
	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return "", false
	}
	return string(raw), true
}
