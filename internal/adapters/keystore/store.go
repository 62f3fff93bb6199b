// Package keystore persists each target's last-built rule keys in a flat
// JSON file, enabling incremental runs and the interface-hash early cutoff.
package keystore

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"go.trai.ch/forge/internal/core/domain"
	"go.trai.ch/forge/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.RuleKeyStore = (*Store)(nil)

// DefaultPath is where the store lives relative to the project root.
const DefaultPath = ".forge/rulekeys.json"

// Store implements ports.RuleKeyStore over a single JSON file. Writes go
// through a temp file and rename, so an interrupted build never corrupts the
// previous run's records.
type Store struct {
	path  string
	mu    sync.RWMutex
	cache map[string]domain.RuleKeyRecord
}

// NewStore creates a Store backed by the file at path, loading any existing
// records.
func NewStore(path string) (*Store, error) {
	s := &Store{
		path:  filepath.Clean(path),
		cache: make(map[string]domain.RuleKeyRecord),
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	//nolint:gosec // Path is cleaned and provided by trusted caller
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return zerr.Wrap(err, "failed to read rule key store")
	}

	if len(data) == 0 {
		return nil
	}

	if err := json.Unmarshal(data, &s.cache); err != nil {
		return zerr.Wrap(err, "failed to unmarshal rule key store")
	}

	return nil
}

func (s *Store) save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(s.cache, "", "  ")
	if err != nil {
		return zerr.Wrap(err, "failed to marshal rule key store")
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return zerr.Wrap(err, "failed to create directory for rule key store")
	}

	tmp, err := os.CreateTemp(dir, ".rulekeys-*")
	if err != nil {
		return zerr.Wrap(err, "failed to create rule key store temp file")
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return zerr.Wrap(err, "failed to write rule key store")
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return zerr.Wrap(err, "failed to finish rule key store")
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return zerr.Wrap(err, "failed to publish rule key store")
	}

	return nil
}

// Get retrieves the record for a target. Returns nil, nil when absent.
func (s *Store) Get(target string) (*domain.RuleKeyRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.cache[target]
	if !ok {
		return nil, nil
	}
	return &record, nil
}

// Put stores the record and persists the store.
func (s *Store) Put(record domain.RuleKeyRecord) error {
	s.mu.Lock()
	s.cache[record.Target] = record
	s.mu.Unlock()

	return s.save()
}
