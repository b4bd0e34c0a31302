// Package enrollment persists labeled reference images as plain files. The
// directory layout is the durable state: each record is one file named
// <sanitizedLabel>_<sanitizedFilename>.<ext> and no index is kept.
package enrollment

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrEmptyLabel indicates the label sanitized down to nothing.
	ErrEmptyLabel = errors.New("enrollment label is empty after sanitization")
	// ErrEmptyFilename indicates the filename sanitized down to nothing.
	ErrEmptyFilename = errors.New("enrollment filename is empty after sanitization")
)

// Record is one enrolled reference image. Label is the identity the record
// matches as; Key is the filename inside the store directory.
type Record struct {
	Key   string
	Label string
	Path  string
}

// Store is a directory of reference images. It holds no lock: keys derived
// from distinct sanitized label+filename pairs never collide, and colliding
// keys simply overwrite, which is accepted behavior.
type Store struct {
	dir string
}

// NewStore opens (creating if needed) the store directory.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create enrollment dir %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the backing directory path.
func (s *Store) Dir() string {
	return s.dir
}

// Save writes data under the key derived from the sanitized label and
// original filename. An existing record under the same key is overwritten.
func (s *Store) Save(label, filename string, data []byte) (*Record, error) {
	cleanLabel := Sanitize(label)
	if cleanLabel == "" {
		return nil, ErrEmptyLabel
	}

	cleanName := Sanitize(filepath.Base(filename))
	if cleanName == "" {
		return nil, ErrEmptyFilename
	}

	key := cleanLabel + "_" + cleanName
	path := filepath.Join(s.dir, key)

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("write enrollment record %s: %w", key, err)
	}

	return &Record{
		Key:   key,
		Label: cleanLabel,
		Path:  path,
	}, nil
}

// Remove deletes the record stored under key. Removing a key that is already
// gone is not an error.
func (s *Store) Remove(key string) error {
	path := filepath.Join(s.dir, filepath.Base(key))
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove enrollment record %s: %w", key, err)
	}
	return nil
}

// List returns every record in the store. The label of a record is the key
// segment before the first underscore; labels that themselves contain
// underscores therefore truncate, which mirrors the on-disk contract.
func (s *Store) List() ([]Record, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read enrollment dir: %w", err)
	}

	records := make([]Record, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		key := entry.Name()
		records = append(records, Record{
			Key:   key,
			Label: labelOf(key),
			Path:  filepath.Join(s.dir, key),
		})
	}

	return records, nil
}

// Count returns the number of records currently enrolled.
func (s *Store) Count() (int, error) {
	records, err := s.List()
	if err != nil {
		return 0, err
	}
	return len(records), nil
}

func labelOf(key string) string {
	if idx := strings.Index(key, "_"); idx > 0 {
		return key[:idx]
	}
	// Records written without a filename segment match as the whole key
	// minus extension.
	return strings.TrimSuffix(key, filepath.Ext(key))
}
