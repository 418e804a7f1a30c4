// Package database provides the bot's storage: JSON flat files for the XP and
// warn mappings, and the SQLite article archive.
package database

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"

	"github.com/PancyStudios/VeilleBot/pkg/errors"
	"github.com/PancyStudios/VeilleBot/pkg/logger"
)

// FileStore persists one string-keyed mapping as a JSON document.
type FileStore[V any] struct {
	path string
	name string
}

// NewFileStore creates a store backed by path. name is only used in logs.
func NewFileStore[V any](name, path string) *FileStore[V] {
	return &FileStore[V]{path: path, name: name}
}

// Path returns the backing file path
func (s *FileStore[V]) Path() string {
	return s.path
}

// Load reads the mapping from disk. A missing file yields an empty mapping.
// An unreadable or corrupt file also yields an empty mapping, after a warning.
func (s *FileStore[V]) Load() map[string]V {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn(fmt.Sprintf("Could not read %s (%s), starting empty: %v", s.name, s.path, err), "DB")
		}
		return make(map[string]V)
	}

	var m map[string]V
	if err := json.Unmarshal(data, &m); err != nil {
		logger.Warn(fmt.Sprintf("%s file %s is empty or corrupt, resetting: %v", s.name, s.path, err), "DB")
		return make(map[string]V)
	}
	if m == nil {
		m = make(map[string]V)
	}
	return m
}

// Save overwrites the file with the full mapping. The write goes to a
// temporary file first and is renamed into place.
func (s *FileStore[V]) Save(m map[string]V) error {
	const op = "database.save"

	data, err := json.Marshal(m)
	if err != nil {
		return errors.E(errors.KindIO, op, fmt.Errorf("encode %s: %w", s.name, err))
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return errors.E(errors.KindIO, op, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.E(errors.KindIO, op, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.E(errors.KindIO, op, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return errors.E(errors.KindIO, op, err)
	}
	return nil
}
