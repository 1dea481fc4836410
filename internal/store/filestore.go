package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// FileStore reads and writes the JSON document backing file mode.
type FileStore struct {
	path   string
	logger zerolog.Logger
}

// NewFileStore creates a FileStore for the document at path.
func NewFileStore(path string, logger zerolog.Logger) *FileStore {
	return &FileStore{
		path:   path,
		logger: logger.With().Str("component", "filestore").Str("path", path).Logger(),
	}
}

// Path returns the location of the document.
func (s *FileStore) Path() string {
	return s.path
}

// Read loads the document. A missing file is created with the empty
// skeleton. A file that cannot be read or parsed degrades to the skeleton
// without error so that the storefront keeps serving.
func (s *FileStore) Read() (Document, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		doc := NewDocument()
		if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
		if err := s.Write(doc); err != nil {
			return nil, err
		}
		s.logger.Info().Msg("initialised empty data file")
		return doc, nil
	}
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to read data file, using empty document")
		return NewDocument(), nil
	}

	doc, err := decodeDocument(data)
	if err != nil {
		s.logger.Warn().Err(err).Msg("data file is corrupt, using empty document")
		return NewDocument(), nil
	}
	return doc, nil
}

// Write replaces the file with doc, pretty-printed with two-space indentation.
// The document is written to a temporary file in the same directory and
// renamed over the target, so readers never observe a partial write.
func (s *FileStore) Write(doc Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".filedb-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to write data file: %w", err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write data file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write data file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write data file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return fmt.Errorf("failed to write data file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("failed to write data file: %w", err)
	}
	committed = true
	return nil
}
