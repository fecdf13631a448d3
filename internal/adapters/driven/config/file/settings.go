// Package file provides the TOML-backed settings store, including the
// database label registry.
package file

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/minsukim/notisync/internal/core/domain"
	"github.com/minsukim/notisync/internal/core/ports/driven"
)

// Ensure SettingsStore implements the interface.
var _ driven.SourceRegistry = (*SettingsStore)(nil)

// Default settings values.
const (
	DefaultQueryModel     = "gemini-2.5-flash-lite"
	DefaultEmbeddingModel = "gemini-embedding-001"
	DefaultVisionModel    = "gemini-3-flash-preview"

	DefaultSyncDays        = 2
	DefaultIndexWaitSec    = 5
	DefaultPollIntervalSec = 2
	DefaultPollMaxAttempts = 150

	DefaultServerHost = "127.0.0.1"
	DefaultServerPort = 8000
)

// Settings is the on-disk configuration shape. Zero fields fall back to
// defaults through the accessor methods.
type Settings struct {
	// Databases maps registered labels to database URLs.
	Databases map[string]string `toml:"databases"`

	Models struct {
		Query     string `toml:"query"`
		Embedding string `toml:"embedding"`
		Vision    string `toml:"vision"`
	} `toml:"models"`

	Sync struct {
		// Days is the trailing modification window in days.
		Days int `toml:"days"`

		// IndexWaitSec is the post-batch settle delay in seconds.
		IndexWaitSec int `toml:"index_wait_sec"`

		// PollIntervalSec is the upload completion poll interval.
		PollIntervalSec int `toml:"poll_interval_sec"`

		// PollMaxAttempts bounds the completion poll.
		PollMaxAttempts int `toml:"poll_max_attempts"`
	} `toml:"sync"`

	Server struct {
		Host string `toml:"host"`
		Port int    `toml:"port"`
	} `toml:"server"`
}

// SettingsStore persists settings as TOML under the config directory.
type SettingsStore struct {
	mu       sync.RWMutex
	filePath string
	settings Settings
}

// NewSettingsStore creates a TOML settings store. If configDir is empty,
// it defaults to ~/.notisync.
func NewSettingsStore(configDir string) (*SettingsStore, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		configDir = filepath.Join(home, ".notisync")
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, err
	}

	s := &SettingsStore{
		filePath: filepath.Join(configDir, "config.toml"),
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// load reads the settings file, starting empty when it does not exist.
func (s *SettingsStore) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			s.settings = Settings{}
			return nil
		}
		return err
	}
	return toml.Unmarshal(data, &s.settings)
}

// save writes settings to disk (caller must hold the lock).
func (s *SettingsStore) save() error {
	data, err := toml.Marshal(s.settings)
	if err != nil {
		return err
	}
	return os.WriteFile(s.filePath, data, 0600)
}

// Path returns the settings file path.
func (s *SettingsStore) Path() string {
	return s.filePath
}

// Resolve returns the label and URL for a registered database. An empty
// label auto-selects when exactly one database is registered.
func (s *SettingsStore) Resolve(label string) (string, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	dbs := s.settings.Databases
	if label != "" {
		url, ok := dbs[label]
		if !ok {
			return "", "", fmt.Errorf("%w: %q (available: %s)",
				domain.ErrUnknownLabel, label, availableLabels(dbs))
		}
		return label, url, nil
	}

	switch len(dbs) {
	case 0:
		return "", "", domain.ErrNoDatabases
	case 1:
		for l, u := range dbs {
			return l, u, nil
		}
	}
	return "", "", fmt.Errorf("%w: specify one of: %s",
		domain.ErrAmbiguousLabel, availableLabels(dbs))
}

// Save registers or replaces a label's database URL and persists.
func (s *SettingsStore) Save(label, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.settings.Databases == nil {
		s.settings.Databases = map[string]string{}
	}
	s.settings.Databases[label] = url
	return s.save()
}

// Labels returns a copy of the registered label to URL mapping.
func (s *SettingsStore) Labels() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]string, len(s.settings.Databases))
	for l, u := range s.settings.Databases {
		out[l] = u
	}
	return out
}

// QueryModel returns the default query model.
func (s *SettingsStore) QueryModel() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return stringOr(s.settings.Models.Query, DefaultQueryModel)
}

// EmbeddingModel returns the embedding model used for token pricing.
func (s *SettingsStore) EmbeddingModel() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return stringOr(s.settings.Models.Embedding, DefaultEmbeddingModel)
}

// VisionModel returns the image analysis model.
func (s *SettingsStore) VisionModel() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return stringOr(s.settings.Models.Vision, DefaultVisionModel)
}

// SyncDays returns the trailing sync window in days.
func (s *SettingsStore) SyncDays() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return intOr(s.settings.Sync.Days, DefaultSyncDays)
}

// IndexWaitSec returns the post-batch settle delay in seconds.
func (s *SettingsStore) IndexWaitSec() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return intOr(s.settings.Sync.IndexWaitSec, DefaultIndexWaitSec)
}

// PollIntervalSec returns the upload poll interval in seconds.
func (s *SettingsStore) PollIntervalSec() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return intOr(s.settings.Sync.PollIntervalSec, DefaultPollIntervalSec)
}

// PollMaxAttempts returns the upload poll attempt budget.
func (s *SettingsStore) PollMaxAttempts() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return intOr(s.settings.Sync.PollMaxAttempts, DefaultPollMaxAttempts)
}

// ServerAddr returns the HTTP server listen address.
func (s *SettingsStore) ServerAddr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	host := stringOr(s.settings.Server.Host, DefaultServerHost)
	port := intOr(s.settings.Server.Port, DefaultServerPort)
	return fmt.Sprintf("%s:%d", host, port)
}

func stringOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func intOr(v, fallback int) int {
	if v == 0 {
		return fallback
	}
	return v
}

// availableLabels renders the sorted label set for error messages.
func availableLabels(dbs map[string]string) string {
	if len(dbs) == 0 {
		return "(none)"
	}
	labels := make([]string, 0, len(dbs))
	for l := range dbs {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	return strings.Join(labels, ", ")
}
