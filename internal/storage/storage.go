package storage

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/nikbrunner/bmr/internal/event"
	"github.com/nikbrunner/bmr/internal/model"
)

// Storage defines the interface for persisting the client cache.
type Storage interface {
	Load() (*model.Cache, error)
	Save(cache *model.Cache) error
}

// JSONStorage implements Storage using a JSON file.
type JSONStorage struct {
	path string
}

// NewJSONStorage creates a new JSONStorage with the given file path.
func NewJSONStorage(path string) *JSONStorage {
	return &JSONStorage{path: path}
}

// Path returns the storage file path.
func (s *JSONStorage) Path() string {
	return s.path
}

// Load reads the cache from the JSON file.
// Returns an empty cache if the file doesn't exist.
func (s *JSONStorage) Load() (*model.Cache, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return model.NewCache(), nil
		}
		return nil, err
	}

	var cache model.Cache
	if err := json.Unmarshal(data, &cache); err != nil {
		return nil, err
	}

	// Ensure slices are not nil
	if cache.Folders == nil {
		cache.Folders = []model.CachedFolder{}
	}

	return &cache, nil
}

// Save writes the cache to the JSON file.
// Creates the directory if it doesn't exist.
func (s *JSONStorage) Save(cache *model.Cache) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(cache, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(s.path, data, 0644)
}

// DefaultDir returns the directory holding config and cache: ~/.config/bmr
func DefaultDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "bmr"), nil
}

// DefaultCachePath returns the default JSON cache path: ~/.config/bmr/cache.json
func DefaultCachePath() (string, error) {
	dir, err := DefaultDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "cache.json"), nil
}

// OpenStorage opens the appropriate storage backend.
// Prefers SQLite if the database file exists, otherwise falls back to JSON.
func OpenStorage() (Storage, error) {
	sqlitePath, err := DefaultSQLitePath()
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(sqlitePath); err == nil {
		return NewSQLiteStorage(sqlitePath)
	}

	jsonPath, err := DefaultCachePath()
	if err != nil {
		return nil, err
	}
	return NewJSONStorage(jsonPath), nil
}

// WatchAuth drops the cached identity whenever an authentication failure is
// published on bus.
func WatchAuth(bus *event.Bus, s Storage, logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	bus.Subscribe(event.AuthRequired, func(event.Event) {
		cache, err := s.Load()
		if err != nil {
			logger.Warn("loading cache to clear identity", zap.Error(err))
			return
		}
		if cache.Identity == nil {
			return
		}
		cache.ClearIdentity()
		if err := s.Save(cache); err != nil {
			logger.Warn("clearing cached identity", zap.Error(err))
			return
		}
		logger.Debug("cached identity cleared")
	})
}
