package config

import (
	"sync"

	"go.uber.org/atomic"

	"go.viam.com/sslmotion/logging"
)

// Store hands out the current configuration snapshot. Readers call Get once per operation and
// use that snapshot throughout; Reload and Set swap in a new snapshot atomically.
type Store struct {
	path    string
	logger  logging.Logger
	current atomic.Pointer[Config]

	// reloadMu serializes reloads so the file is never decoded twice concurrently.
	reloadMu sync.Mutex
}

// NewStore returns a store holding cfg that cannot be reloaded from disk.
func NewStore(cfg *Config) *Store {
	s := &Store{logger: logging.NewBlankLogger("config")}
	s.current.Store(cfg)
	return s
}

// NewDefaultStore returns a store holding the default configuration.
func NewDefaultStore() *Store {
	return NewStore(Default())
}

// LoadStore reads path and returns a store that reloads from it.
func LoadStore(path string, logger logging.Logger) (*Store, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	s := &Store{path: path, logger: logger.Sublogger("config")}
	s.current.Store(cfg)
	return s, nil
}

// Path returns the file the store reloads from, or "" when it has none.
func (s *Store) Path() string {
	return s.path
}

// Get returns the current snapshot.
func (s *Store) Get() *Config {
	return s.current.Load()
}

// Set replaces the current snapshot.
func (s *Store) Set(cfg *Config) {
	s.current.Store(cfg)
}

// Reload re-reads the backing file. On error the current snapshot is kept. Reloading an
// unchanged file yields an equal snapshot, and a store without a file is left as is.
func (s *Store) Reload() error {
	if s.path == "" {
		return nil
	}
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	cfg, err := Load(s.path)
	if err != nil {
		s.logger.Warnw("keeping previous configuration", "path", s.path, "error", err)
		return err
	}
	s.current.Store(cfg)
	s.logger.Infow("configuration reloaded", "path", s.path)
	return nil
}
